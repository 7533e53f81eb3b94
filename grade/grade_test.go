package grade

import "testing"

func TestAbsoluteBands(t *testing.T) {
	cases := []struct {
		value float64
		want  Band
	}{
		{27, Excellent}, // 90%
		{26.9, Good},
		{21, Good}, // 70%
		{20.9, Average},
		{15, Average}, // 50%
		{14.9, Poor},
		{9, Poor}, // 30%
		{8.9, VeryPoor},
		{0, VeryPoor},
	}
	for _, c := range cases {
		if got := Of(c.value, 30, nil); got != c.want {
			t.Errorf("Of(%v, 30) = %s, want %s", c.value, got, c.want)
		}
	}
}

func TestRelativeBands(t *testing.T) {
	st := &StateStats{Average: 20, Median: 16}
	cases := []struct {
		value float64
		want  Band
	}{
		{25, Excellent}, // 1.25 * avg
		{24.9, Good},
		{20, Good},
		{19.9, Average},
		{16, Average},
		{15.9, Poor},
		{11.2, Poor}, // 0.7 * median
		{11.1, VeryPoor},
	}
	for _, c := range cases {
		if got := Of(c.value, 30, st); got != c.want {
			t.Errorf("relative Of(%v) = %s, want %s", c.value, got, c.want)
		}
	}
}

func TestRelativeDisabledbyZeroStats(t *testing.T) {
	// A zero median means the cohort figures are unusable; grading must fall
	// back to percentage of maximum.
	if got := Of(27, 30, &StateStats{Average: 20, Median: 0}); got != Excellent {
		t.Fatalf("fallback grade = %s", got)
	}
}

func TestZeroMaxValue(t *testing.T) {
	if got := Of(10, 0, nil); got != NotApplicable {
		t.Fatalf("grade with zero max = %s", got)
	}
	if got := Of(10, 0, &StateStats{Average: 5, Median: 5}); got != NotApplicable {
		t.Fatalf("relative grade with zero max = %s", got)
	}
}

func TestLabelsAndClasses(t *testing.T) {
	if Excellent.Label() != "उत्कृष्ट" || VeryPoor.Label() != "अति निम्न" {
		t.Fatal("unexpected band labels")
	}
	if NotApplicable.Label() != "N/A" {
		t.Fatalf("N/A label = %q", NotApplicable.Label())
	}
	if VeryPoor.Class() != "grade-badge very-poor" {
		t.Fatalf("very poor class = %q", VeryPoor.Class())
	}
	if NotApplicable.Class() != "grade-badge" {
		t.Fatalf("N/A class = %q", NotApplicable.Class())
	}
}
