package delta

import (
	"math"
	"testing"
)

func TestChange(t *testing.T) {
	if got := Change(12.5, 10.0); got == nil || *got != 2.5 {
		t.Fatalf("change = %v", got)
	}
	if got := Change(10.0, 12.5); got == nil || *got != -2.5 {
		t.Fatalf("negative change = %v", got)
	}
	if got := Change("21.5", "20"); got == nil || *got != 1.5 {
		t.Fatalf("string change = %v", got)
	}
}

func TestChangeNullPropagation(t *testing.T) {
	cases := []struct {
		name      string
		cur, prev any
	}{
		{"nil current", nil, 5.0},
		{"nil previous", 5.0, nil},
		{"sentinel current", "N/A", 5.0},
		{"sentinel previous", 5.0, "N/A"},
		{"nan", math.NaN(), 5.0},
		{"inf", 5.0, math.Inf(1)},
	}
	for _, c := range cases {
		if got := Change(c.cur, c.prev); got != nil {
			t.Errorf("%s: change = %v, want nil", c.name, *got)
		}
	}
}

func TestChangeRounding(t *testing.T) {
	got := Change(1.005, 0.0015)
	if got == nil || *got != 1.0 {
		t.Fatalf("rounded change = %v, want 1", got)
	}
}

func TestOf(t *testing.T) {
	m := Of(44, 40)
	if m.Change == nil || *m.Change != 4 {
		t.Fatalf("movement change = %v", m.Change)
	}
	m = Of(44, nil)
	if m.Change != nil {
		t.Fatalf("movement with missing previous = %v", *m.Change)
	}
	if m.Current != 44 || m.Previous != nil {
		t.Fatalf("movement endpoints = %+v", m)
	}
}
