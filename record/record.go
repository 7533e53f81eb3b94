// Package record normalizes loosely-shaped upstream API records into strict
// typed values. The reporting API mixes missing keys, nulls, stringified
// numbers, NaN and Infinity across endpoints; nothing outside this package
// should touch a raw JSON tree directly.
package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Get walks a nested JSON tree along path. It returns nil when any
// intermediate node is not an object, a key is absent, or the resolved value
// is null or a NaN float. It never panics on malformed trees.
func Get(tree any, path ...string) any {
	cur := tree
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
		if cur == nil {
			return nil
		}
	}
	if f, ok := cur.(float64); ok && math.IsNaN(f) {
		return nil
	}
	return cur
}

// GetOr is Get with a caller-supplied default.
func GetOr(tree any, def any, path ...string) any {
	if v := Get(tree, path...); v != nil {
		return v
	}
	return def
}

// FiniteFloat reports the value as a finite float64. Strings holding numbers
// are accepted; NaN and ±Inf are rejected.
func FiniteFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Float coerces v to a finite float64, falling back on nil, non-numeric or
// non-finite input.
func Float(v any, fallback float64) float64 {
	f, ok := FiniteFloat(v)
	if !ok {
		return fallback
	}
	return f
}

// Int coerces v to an int, falling back on nil, non-numeric or non-finite
// input. Fractional values truncate toward zero.
func Int(v any, fallback int) int {
	f, ok := FiniteFloat(v)
	if !ok {
		return fallback
	}
	return int(f)
}

// Round2 rounds to two decimal places, the precision every score and
// statistic in the report carries.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Name canonicalizes an entity name: trimmed and upper-cased. Entity identity
// throughout the module is this canonical form.
func Name(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	return s, true
}

type metricKind int

const (
	metricNA metricKind = iota
	metricInf
	metricNumber
)

// Metric is a score-like value that is either a finite number, the "N/A"
// sentinel, or the "Inf" sentinel. Upstream encodes unbounded achievement
// (target near zero) as Infinity or the string "inf"; that is meaningful and
// must stay distinct from both zero and absence.
type Metric struct {
	kind metricKind
	num  float64
}

// NA is the absent-metric sentinel.
var NA = Metric{kind: metricNA}

// Inf is the unbounded-metric sentinel.
var Inf = Metric{kind: metricInf}

// Num builds a numeric metric rounded to two decimals. Non-finite input
// degrades to the matching sentinel.
func Num(f float64) Metric {
	if math.IsInf(f, 0) {
		return Inf
	}
	if math.IsNaN(f) {
		return NA
	}
	return Metric{kind: metricNumber, num: Round2(f)}
}

// MetricOf interprets an arbitrary JSON value as a Metric. Numbers and
// numeric strings become numeric metrics; Infinity in either form becomes
// Inf; everything else is N/A.
func MetricOf(v any) Metric {
	switch n := v.(type) {
	case nil:
		return NA
	case float64:
		return Num(n)
	case int:
		return Num(float64(n))
	case string:
		s := strings.TrimSpace(n)
		if strings.EqualFold(s, "inf") || strings.EqualFold(s, "infinity") {
			return Inf
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Num(f)
		}
		return NA
	default:
		if f, ok := FiniteFloat(v); ok {
			return Num(f)
		}
		return NA
	}
}

// Number reports the metric's value when it is numeric.
func (m Metric) Number() (float64, bool) {
	return m.num, m.kind == metricNumber
}

// IsInf reports whether the metric is the unbounded sentinel.
func (m Metric) IsInf() bool { return m.kind == metricInf }

func (m Metric) String() string {
	switch m.kind {
	case metricNumber:
		return strconv.FormatFloat(m.num, 'f', -1, 64)
	case metricInf:
		return "Inf"
	default:
		return "N/A"
	}
}

// MarshalJSON renders a number, or the literal strings "Inf" / "N/A".
func (m Metric) MarshalJSON() ([]byte, error) {
	switch m.kind {
	case metricNumber:
		return json.Marshal(m.num)
	case metricInf:
		return json.Marshal("Inf")
	default:
		return json.Marshal("N/A")
	}
}

// Target is a work target: a non-negative count when known, or the "N/A"
// sentinel. Zero is a valid target and distinct from N/A.
type Target struct {
	set   bool
	value int
}

// NoTarget is the absent-target sentinel.
var NoTarget = Target{}

// TargetOf wraps a known target count.
func TargetOf(n int) Target {
	return Target{set: true, value: n}
}

// TargetFrom coerces an arbitrary JSON value: convertible numbers become
// known targets, everything else (including nil) stays N/A.
func TargetFrom(v any) Target {
	if v == nil {
		return NoTarget
	}
	if f, ok := FiniteFloat(v); ok {
		return TargetOf(int(f))
	}
	return NoTarget
}

// Count reports the target count when known.
func (t Target) Count() (int, bool) {
	return t.value, t.set
}

func (t Target) String() string {
	if !t.set {
		return "N/A"
	}
	return strconv.Itoa(t.value)
}

// MarshalJSON renders an integer or the literal string "N/A".
func (t Target) MarshalJSON() ([]byte, error) {
	if !t.set {
		return json.Marshal("N/A")
	}
	return json.Marshal(t.value)
}

// FieldMap names the raw keys a component's endpoint uses for the canonical
// fields. Components differ only in these names (e.g. actual_count vs
// total_count, name vs district).
type FieldMap struct {
	Name        string
	Score       string
	Count       string
	Target      string
	Achievement string
}

// Record is the canonical snapshot of one entity's performance in one
// component on one date.
type Record struct {
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	Score       float64 `json:"score"`
	Target      Target  `json:"target"`
	Achievement Metric  `json:"achievement_percentage"`
}

// Normalize converts one raw entry into a Record. Records without a usable
// name are rejected; the caller skips them. Missing or malformed numerics
// default (count 0, score 0.0) rather than failing the record.
func Normalize(raw any, fm FieldMap) (Record, bool) {
	name, ok := Name(Get(raw, fm.Name))
	if !ok {
		return Record{}, false
	}
	achKey := fm.Achievement
	if achKey == "" {
		achKey = "achievement_percentage"
	}
	targetKey := fm.Target
	if targetKey == "" {
		targetKey = "target"
	}
	return Record{
		Name:        name,
		Count:       Int(Get(raw, fm.Count), 0),
		Score:       Round2(Float(Get(raw, fm.Score), 0)),
		Target:      TargetFrom(Get(raw, targetKey)),
		Achievement: MetricOf(Get(raw, achKey)),
	}, true
}
