package compliance

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// WorkItem is one non-passing finding extracted from normalized results.
// Work items are derived and ephemeral: recomputed on every result fetch,
// never persisted.
type WorkItem struct {
	Path   string `json:"path"`
	Status string `json:"status"`
	Action string `json:"action"`
}

const (
	remediationAction = "Update and re-submit supporting documents or contact details."
	manualReviewNote  = "No explicit pass/fail statuses detected; perform manual compliance review."
	needsReviewStatus = "needs review"
)

var passVocabulary = []string{"valid", "compliant", "approved", "pass", "authentic"}

func keyLooksLikeStatus(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "status") ||
		strings.Contains(lower, "validation") ||
		strings.Contains(lower, "compliance")
}

func statusPasses(raw string) bool {
	lower := strings.ToLower(raw)
	for _, word := range passVocabulary {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func statusText(value interface{}) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	if value == nil {
		return ""
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(encoded)
}

func walkForWorkItems(value interface{}, path []string, out []WorkItem) []WorkItem {
	switch v := value.(type) {
	case []interface{}:
		for i, entry := range v {
			nextPath := append(append([]string(nil), path...), strconv.Itoa(i))
			out = walkForWorkItems(entry, nextPath, out)
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			nextPath := append(append([]string(nil), path...), key)
			if keyLooksLikeStatus(key) {
				status := statusText(v[key])
				if status == "" || !statusPasses(status) {
					if status == "" {
						status = needsReviewStatus
					}
					out = append(out, WorkItem{
						Path:   strings.Join(nextPath, "."),
						Status: status,
						Action: remediationAction,
					})
				}
			}
			out = walkForWorkItems(v[key], nextPath, out)
		}
	}
	return out
}

// ExtractWorkItems walks a normalized result tree for status-like keys whose
// values don't read as passing, and returns one WorkItem per finding. A walk
// that classifies nothing still yields a single sentinel item at path
// "overall": a clean-looking result needs at least a trivial confirmation.
func ExtractWorkItems(result map[string]interface{}) []WorkItem {
	if result == nil {
		return nil
	}

	items := walkForWorkItems(result, nil, nil)
	if len(items) == 0 {
		return []WorkItem{{
			Path:   "overall",
			Status: needsReviewStatus,
			Action: manualReviewNote,
		}}
	}
	return items
}

// BuildVendorNotification renders the vendor-facing remediation message,
// listing at most the first six findings.
func BuildVendorNotification(items []WorkItem) string {
	limit := len(items)
	if limit > 6 {
		limit = 6
	}
	lines := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, items[i].Path, items[i].Status))
	}
	return "Please address the following compliance items:\n" + strings.Join(lines, "\n")
}

// BuildAdminNotification renders the admin-facing summary line.
func BuildAdminNotification(items []WorkItem) string {
	return fmt.Sprintf("Compliance review generated %d follow-up item(s).", len(items))
}
