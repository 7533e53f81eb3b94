package rank

import (
	"math"
	"testing"
)

func fptr(f float64) *float64 { return &f }
func iptr(n int) *int         { return &n }

func TestCompetitionTies(t *testing.T) {
	ranks := Competition(map[string]*float64{
		"BHOPAL":  fptr(10),
		"SEHORE":  fptr(10),
		"RAISEN":  fptr(8),
		"VIDISHA": fptr(2),
	})
	want := map[string]int{"BHOPAL": 1, "SEHORE": 1, "RAISEN": 3, "VIDISHA": 4}
	for name, r := range want {
		if ranks[name] != r {
			t.Errorf("rank[%s] = %d, want %d", name, ranks[name], r)
		}
	}
}

func TestCompetitionFiltersInvalid(t *testing.T) {
	ranks := Competition(map[string]*float64{
		"BHOPAL":  fptr(10),
		"SEHORE":  nil,
		"RAISEN":  fptr(math.NaN()),
		"VIDISHA": fptr(math.Inf(1)),
	})
	if len(ranks) != 1 || ranks["BHOPAL"] != 1 {
		t.Fatalf("ranks = %v, want only BHOPAL at 1", ranks)
	}
	if _, ok := ranks["SEHORE"]; ok {
		t.Fatal("nil score received a rank")
	}
}

func TestCompetitionDense(t *testing.T) {
	ranks := Competition(map[string]*float64{
		"A": fptr(3), "B": fptr(2), "C": fptr(1),
	})
	if ranks["A"] != 1 || ranks["B"] != 2 || ranks["C"] != 3 {
		t.Fatalf("ranks = %v", ranks)
	}
}

func TestCompetitionEmpty(t *testing.T) {
	if got := Competition(nil); len(got) != 0 {
		t.Fatalf("ranks on empty input = %v", got)
	}
}

func TestImprovement(t *testing.T) {
	if got := Improvement(iptr(5), iptr(2)); got == nil || *got != 3 {
		t.Fatalf("climb = %v", got)
	}
	if got := Improvement(iptr(2), iptr(7)); got == nil || *got != -5 {
		t.Fatalf("drop = %v", got)
	}
	if got := Improvement(nil, iptr(1)); got != nil {
		t.Fatalf("missing previous = %v", got)
	}
	if got := Improvement(iptr(1), nil); got != nil {
		t.Fatalf("missing current = %v", got)
	}
}
