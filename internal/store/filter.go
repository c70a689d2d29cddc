package store

import (
	"encoding/json"
	"reflect"
)

// matchesFilter reports whether every filter entry equals the corresponding
// top-level field of the JSON payload. A payload that is not a JSON object
// matches only the empty filter.
func matchesFilter(payload json.RawMessage, filter map[string]any) bool {
	if len(filter) == 0 {
		return true
	}

	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return false
	}

	for field, want := range filter {
		got, ok := doc[field]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(got, normalizeJSONValue(want)) {
			return false
		}
	}

	return true
}

// normalizeJSONValue round-trips v through JSON so Go-typed filter values
// (int, custom types) compare equal to the decoded payload representation
// (float64, string, ...).
func normalizeJSONValue(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}

	return out
}
