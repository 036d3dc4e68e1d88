package workflow

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Tone classifies a rendered result row for the UI.
type Tone string

const (
	TonePass    Tone = "pass"
	ToneIssue   Tone = "issue"
	ToneNeutral Tone = "neutral"
)

// ResultRow is one flattened, display-ready result entry.
type ResultRow struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
	Tone  Tone   `json:"tone"`
}

var passValues = map[string]struct{}{
	"valid": {}, "compliant": {}, "approved": {}, "pass": {}, "authentic": {}, "approval": {},
}

var issueHints = []string{"mismatch", "flagged", "invalid", "reject", "error", "failed", "disapprove", "review"}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case string:
		return v
	case float64, int, int64, bool:
		return fmt.Sprintf("%v", v)
	default:
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(data)
	}
}

func classifyValue(key string, value interface{}) Tone {
	label := strings.ToLower(key)
	text := ""
	if s, ok := value.(string); ok {
		text = strings.ToLower(strings.TrimSpace(s))
	}

	if (strings.Contains(label, "status") || strings.Contains(label, "validation")) && text != "" {
		if _, ok := passValues[text]; ok {
			return TonePass
		}
		for _, hint := range issueHints {
			if strings.Contains(text, hint) {
				return ToneIssue
			}
		}
		return ToneNeutral
	}

	if strings.Contains(label, "reason") && text != "" {
		return ToneIssue
	}

	return ToneNeutral
}

// FlattenResults renders a normalized result map against the result schema:
// schema-declared keys first (labeled from the schema), then any extra keys
// the engine returned beyond the schema.
func FlattenResults(schema map[string]*Variable, result map[string]interface{}) []ResultRow {
	if result == nil {
		return nil
	}

	normalized := NormalizeResults(result)

	schemaKeys := make([]string, 0, len(schema))
	for key := range schema {
		schemaKeys = append(schemaKeys, key)
	}
	sort.Strings(schemaKeys)

	extraKeys := make([]string, 0)
	for key := range normalized {
		if _, ok := schema[key]; !ok {
			extraKeys = append(extraKeys, key)
		}
	}
	sort.Strings(extraKeys)

	rows := make([]ResultRow, 0, len(schemaKeys)+len(extraKeys))
	for _, key := range schemaKeys {
		value := normalized[key]
		rows = append(rows, ResultRow{
			Key:   key,
			Label: schema[key].Label(key),
			Value: formatValue(value),
			Tone:  classifyValue(key, value),
		})
	}
	for _, key := range extraKeys {
		rows = append(rows, ResultRow{
			Key:   key,
			Label: PrettyLabel(key),
			Value: formatValue(normalized[key]),
			Tone:  classifyValue(key, normalized[key]),
		})
	}

	return rows
}
