// Package grade classifies a district score into one of five qualitative
// bands. When statewide average and median are known the bands are relative
// to the cohort; otherwise they fall back to fixed percentage-of-maximum
// thresholds. Labels are the Hindi terms the published dashboard uses.
package grade

// Band is one of the five quality tiers, ordered best to worst, plus NotApplicable.
type Band int

const (
	NotApplicable Band = iota
	Excellent
	Good
	Average
	Poor
	VeryPoor
)

// StateStats carries the cohort figures relative grading needs. Zero-valued
// fields disable relative mode, matching the upstream convention of treating
// a zero average or median as absent.
type StateStats struct {
	Average float64
	Median  float64
}

// Of grades value against maxValue, using relative thresholds when stats
// provides both cohort figures. A zero or negative maxValue cannot be graded.
func Of(value, maxValue float64, stats *StateStats) Band {
	if maxValue == 0 {
		return NotApplicable
	}
	if stats != nil && stats.Average != 0 && stats.Median != 0 {
		switch {
		case value >= stats.Average*1.25:
			return Excellent
		case value >= stats.Average:
			return Good
		case value >= stats.Median:
			return Average
		case value >= stats.Median*0.7:
			return Poor
		default:
			return VeryPoor
		}
	}
	pct := value / maxValue * 100
	switch {
	case pct >= 90:
		return Excellent
	case pct >= 70:
		return Good
	case pct >= 50:
		return Average
	case pct >= 30:
		return Poor
	default:
		return VeryPoor
	}
}

// Label is the Hindi display term for the band.
func (b Band) Label() string {
	switch b {
	case Excellent:
		return "उत्कृष्ट"
	case Good:
		return "अच्छा"
	case Average:
		return "औसत"
	case Poor:
		return "निम्न"
	case VeryPoor:
		return "अति निम्न"
	default:
		return "N/A"
	}
}

// Class is the CSS badge class for the band. NotApplicable renders an
// unstyled badge rather than no badge.
func (b Band) Class() string {
	switch b {
	case Excellent:
		return "grade-badge excellent"
	case Good:
		return "grade-badge good"
	case Average:
		return "grade-badge average"
	case Poor:
		return "grade-badge poor"
	case VeryPoor:
		return "grade-badge very-poor"
	default:
		return "grade-badge"
	}
}

func (b Band) String() string {
	switch b {
	case Excellent:
		return "excellent"
	case Good:
		return "good"
	case Average:
		return "average"
	case Poor:
		return "poor"
	case VeryPoor:
		return "very_poor"
	default:
		return "n/a"
	}
}
