package audit

import (
	"encoding/json"
	"reflect"
)

// Snapshot flattens v into its JSON object form. Non-object values and nil
// produce a nil map.
func Snapshot(v any) map[string]any {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// Diff reports top-level keys whose values differ between the two snapshots.
func Diff(before, after map[string]any) map[string]Change {
	changes := make(map[string]Change)
	for k, b := range before {
		a, ok := after[k]
		if !ok || !reflect.DeepEqual(a, b) {
			changes[k] = Change{From: b, To: a}
		}
	}
	for k, a := range after {
		if _, ok := before[k]; !ok {
			changes[k] = Change{From: nil, To: a}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return changes
}

// NewDetails builds details with before/after snapshots and their diff.
func NewDetails(before, after any) Details {
	b, a := Snapshot(before), Snapshot(after)
	return Details{Before: b, After: a, Changes: Diff(b, a)}
}
