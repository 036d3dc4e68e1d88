package workflow

// The engine wraps job results inconsistently: the true result map may sit
// under several nesting combinations, and individual fields may or may not be
// wrapped in a {value,type} envelope. NormalizeResults collapses both layers
// into a flat key to value map matching the result schema keys.

func isRecord(value interface{}) (map[string]interface{}, bool) {
	m, ok := value.(map[string]interface{})
	return m, ok
}

// unwrapResults peels the known envelope nestings in fixed priority order,
// most specific first, and returns the first level that is an object.
func unwrapResults(payload map[string]interface{}) map[string]interface{} {
	if results, ok := isRecord(payload["results"]); ok {
		if data, ok := isRecord(results["data"]); ok {
			if inner, ok := isRecord(data["jobResultsPayloadSchema"]); ok {
				return inner
			}
			return data
		}
		if inner, ok := isRecord(results["jobResultsPayloadSchema"]); ok {
			return inner
		}
		return results
	}

	if inner, ok := isRecord(payload["jobResultsPayloadSchema"]); ok {
		return inner
	}

	if data, ok := isRecord(payload["data"]); ok {
		return data
	}

	return payload
}

// typedEnvelope reports whether a value is a {value, type} wrapper and
// returns the inner value if so.
func typedEnvelope(value interface{}) (interface{}, bool) {
	m, ok := isRecord(value)
	if !ok {
		return nil, false
	}
	inner, hasValue := m["value"]
	_, typeIsString := m["type"].(string)
	if !hasValue || !typeIsString {
		return nil, false
	}
	return inner, true
}

// unwrapEnvelopes strips {value,type} wrappers from every entry. The engine
// is assumed to use envelopes uniformly within a single response, so a map
// with no envelope at all passes through untouched. Mixed payloads keep their
// non-envelope entries as-is; known upstream limitation.
func unwrapEnvelopes(payload map[string]interface{}) map[string]interface{} {
	normalized := make(map[string]interface{}, len(payload))
	foundEnvelope := false

	for key, value := range payload {
		if inner, ok := typedEnvelope(value); ok {
			normalized[key] = inner
			foundEnvelope = true
			continue
		}
		normalized[key] = value
	}

	if !foundEnvelope {
		return payload
	}
	return normalized
}

// NormalizeResults collapses an engine result payload into a flat map.
// Normalizing an already-flat map is the identity; non-object payloads
// normalize to an empty map.
func NormalizeResults(payload interface{}) map[string]interface{} {
	record, ok := isRecord(payload)
	if !ok {
		return map[string]interface{}{}
	}
	return unwrapEnvelopes(unwrapResults(record))
}
