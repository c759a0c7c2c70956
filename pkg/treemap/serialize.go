package treemap

import (
	"encoding/json"
	"fmt"
)

// MarshalResult serializes a Result to pretty-printed JSON bytes.
func MarshalResult(r Result) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// UnmarshalResult deserializes JSON bytes into a Result.
// The frame must have positive dimensions and a known grouping.
func UnmarshalResult(data []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return Result{}, fmt.Errorf("layout must have a positive frame, got %vx%v", r.Width, r.Height)
	}
	if r.GroupBy == "" {
		r.GroupBy = GroupBySector
	}
	if !r.GroupBy.Valid() {
		return Result{}, fmt.Errorf("layout has unknown group_by %q", r.GroupBy)
	}
	return r, nil
}
