package record

import (
	"encoding/json"
	"math"
	"testing"
)

func TestGetNested(t *testing.T) {
	tree := map[string]any{
		"stats": map[string]any{
			"score": 12.5,
			"empty": nil,
		},
	}
	if got := Get(tree, "stats", "score"); got != 12.5 {
		t.Fatalf("Get stats.score = %v, want 12.5", got)
	}
	if got := Get(tree, "stats", "missing"); got != nil {
		t.Fatalf("Get missing key = %v, want nil", got)
	}
	if got := Get(tree, "stats", "empty"); got != nil {
		t.Fatalf("Get null value = %v, want nil", got)
	}
	if got := Get(tree, "stats", "score", "deeper"); got != nil {
		t.Fatalf("Get through scalar = %v, want nil", got)
	}
	if got := Get(nil, "stats"); got != nil {
		t.Fatalf("Get on nil tree = %v, want nil", got)
	}
	if got := Get(map[string]any{"x": math.NaN()}, "x"); got != nil {
		t.Fatalf("Get NaN = %v, want nil", got)
	}
}

func TestGetOr(t *testing.T) {
	tree := map[string]any{"a": 1.0}
	if got := GetOr(tree, 9.0, "a"); got != 1.0 {
		t.Fatalf("GetOr present = %v", got)
	}
	if got := GetOr(tree, 9.0, "b"); got != 9.0 {
		t.Fatalf("GetOr absent = %v", got)
	}
}

func TestFloatCoercion(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{12.5, 12.5},
		{"3.25", 3.25},
		{" 7 ", 7},
		{int(4), 4},
		{nil, -1},
		{"abc", -1},
		{math.NaN(), -1},
		{math.Inf(1), -1},
		{[]any{}, -1},
	}
	for _, c := range cases {
		if got := Float(c.in, -1); got != c.want {
			t.Errorf("Float(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestIntCoercion(t *testing.T) {
	if got := Int("41", 0); got != 41 {
		t.Fatalf("Int string = %d", got)
	}
	if got := Int(12.9, 0); got != 12 {
		t.Fatalf("Int truncation = %d, want 12", got)
	}
	if got := Int(nil, 3); got != 3 {
		t.Fatalf("Int fallback = %d", got)
	}
}

func TestName(t *testing.T) {
	if got, ok := Name("  Sehore "); !ok || got != "SEHORE" {
		t.Fatalf("Name = %q, %v", got, ok)
	}
	if _, ok := Name("   "); ok {
		t.Fatal("blank name accepted")
	}
	if _, ok := Name(12); ok {
		t.Fatal("non-string name accepted")
	}
}

func TestMetricOf(t *testing.T) {
	if got := MetricOf(87.456); got.String() != "87.46" {
		t.Fatalf("numeric metric = %s", got)
	}
	if got := MetricOf("inf"); !got.IsInf() {
		t.Fatalf("string inf metric = %s", got)
	}
	if got := MetricOf(math.Inf(1)); !got.IsInf() {
		t.Fatalf("float inf metric = %s", got)
	}
	if got := MetricOf("garbage"); got.String() != "N/A" {
		t.Fatalf("garbage metric = %s", got)
	}
	if got := MetricOf(nil); got.String() != "N/A" {
		t.Fatalf("nil metric = %s", got)
	}
	if got := MetricOf("55.5"); got.String() != "55.5" {
		t.Fatalf("string numeric metric = %s", got)
	}
}

func TestMetricJSON(t *testing.T) {
	cases := []struct {
		m    Metric
		want string
	}{
		{Num(30), "30"},
		{Num(12.345), "12.35"},
		{Inf, `"Inf"`},
		{NA, `"N/A"`},
	}
	for _, c := range cases {
		b, err := json.Marshal(c.m)
		if err != nil {
			t.Fatalf("marshal %v: %v", c.m, err)
		}
		if string(b) != c.want {
			t.Errorf("marshal %v = %s, want %s", c.m, b, c.want)
		}
	}
}

func TestTargetJSON(t *testing.T) {
	b, _ := json.Marshal(TargetOf(0))
	if string(b) != "0" {
		t.Fatalf("zero target = %s, want 0", b)
	}
	b, _ = json.Marshal(NoTarget)
	if string(b) != `"N/A"` {
		t.Fatalf("absent target = %s", b)
	}
	if got := TargetFrom("150"); got.String() != "150" {
		t.Fatalf("TargetFrom string = %s", got)
	}
	if got := TargetFrom([]any{}); got.String() != "N/A" {
		t.Fatalf("TargetFrom junk = %s", got)
	}
}

func TestNormalize(t *testing.T) {
	fm := FieldMap{Name: "name", Score: "marks", Count: "actual_count"}
	raw := map[string]any{
		"name":                   " Vidisha ",
		"marks":                  "21.756",
		"actual_count":           44.0,
		"target":                 50.0,
		"achievement_percentage": 88.0,
	}
	rec, ok := Normalize(raw, fm)
	if !ok {
		t.Fatal("record rejected")
	}
	if rec.Name != "VIDISHA" || rec.Count != 44 || rec.Score != 21.76 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if n, ok := rec.Target.Count(); !ok || n != 50 {
		t.Fatalf("target = %s", rec.Target)
	}
	if v, ok := rec.Achievement.Number(); !ok || v != 88 {
		t.Fatalf("achievement = %s", rec.Achievement)
	}
}

func TestNormalizeDefaultsAndRejection(t *testing.T) {
	fm := FieldMap{Name: "district", Score: "marks", Count: "total_count"}
	rec, ok := Normalize(map[string]any{"district": "Raisen"}, fm)
	if !ok {
		t.Fatal("sparse record rejected")
	}
	if rec.Count != 0 || rec.Score != 0 {
		t.Fatalf("defaults not applied: %+v", rec)
	}
	if rec.Target.String() != "N/A" || rec.Achievement.String() != "N/A" {
		t.Fatalf("sentinels not applied: %+v", rec)
	}

	if _, ok := Normalize(map[string]any{"marks": 10.0}, fm); ok {
		t.Fatal("unnamed record accepted")
	}
	if _, ok := Normalize("not an object", fm); ok {
		t.Fatal("non-object record accepted")
	}
}
