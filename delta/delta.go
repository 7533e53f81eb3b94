// Package delta computes day-over-day changes. A change only exists when
// both endpoints are usable numbers; one bad side poisons the delta to nil
// instead of pretending the movement was the whole current value.
package delta

import (
	"jsmdash/record"
)

// Change is current minus previous, rounded to two decimals, or nil when
// either side is missing, non-numeric or non-finite. Sentinel strings such
// as "N/A" fail coercion and propagate nil.
func Change(current, previous any) *float64 {
	cur, ok := record.FiniteFloat(current)
	if !ok {
		return nil
	}
	prev, ok := record.FiniteFloat(previous)
	if !ok {
		return nil
	}
	d := record.Round2(cur - prev)
	return &d
}

// Ints is Change over two integer counts. Always defined.
func Ints(current, previous int) int {
	return current - previous
}

// Movement pairs the two observations with their change for the wire format
// every comparison block in the report shares.
type Movement struct {
	Current  any      `json:"current"`
	Previous any      `json:"previous"`
	Change   *float64 `json:"change"`
}

// Of builds a Movement from two raw observations.
func Of(current, previous any) Movement {
	return Movement{Current: current, Previous: previous, Change: Change(current, previous)}
}
