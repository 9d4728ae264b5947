package refine

import (
	"strings"

	"lookout/internal/services/llm"
)

// parseStringItems extracts a list of strings from an LLM response. Accepted
// shapes are a JSON string array and a JSON object array, where each object's
// value is read from the first present key among keys. Anything unparseable
// yields nil.
func parseStringItems(text string, keys ...string) []string {
	var raw []any
	if err := llm.DecodeLLMJSON(text, &raw); err != nil {
		return nil
	}
	var items []string
	seen := make(map[string]bool)
	for _, element := range raw {
		var value string
		switch typed := element.(type) {
		case string:
			value = typed
		case map[string]any:
			for _, key := range keys {
				if field, ok := typed[key].(string); ok && strings.TrimSpace(field) != "" {
					value = field
					break
				}
			}
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		dedupe := strings.ToLower(value)
		if seen[dedupe] {
			continue
		}
		seen[dedupe] = true
		items = append(items, value)
	}
	return items
}
