// Package kpi aggregates all scored components into the district's headline
// figures: statewide rank, total marks out of 100, and completion counts per
// component, each with a day-over-day delta and statewide context.
package kpi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jsmdash/component"
	"jsmdash/delta"
	"jsmdash/fetch"
	"jsmdash/rank"
	"jsmdash/record"
	"jsmdash/stats"
)

const dateLayout = "2006-01-02"

// performanceMarks is the old-works slice of a district's combined data.
type performanceMarks struct {
	TargetMarks      float64
	PaymentMarks     float64
	OldWorkCompleted int
}

// districtData is one district's slice of every component for one date. A
// component appears in the maps only when that component's endpoint actually
// listed the district; absence and zero are different things here.
type districtData struct {
	Name        string
	Marks       map[string]float64
	Counts      map[string]int
	Performance *performanceMarks
	TotalMarks  *float64
}

// stateData is the combined per-district map for one date.
type stateData struct {
	Districts   map[string]*districtData
	FetchErrors []string
}

// Value is one KPI's observation pair with its change. All fields are nil
// when the district is missing from the relevant data; a nil change also
// results from either endpoint missing.
type Value struct {
	Current  *float64 `json:"current"`
	Previous *float64 `json:"previous"`
	Change   *float64 `json:"change"`
}

// RankValue is the rank KPI. Change is oriented so positive means the
// district climbed.
type RankValue struct {
	Current          *int `json:"current"`
	Previous         *int `json:"previous"`
	Change           *int `json:"change"`
	TotalRankedToday int  `json:"total_districts_ranked_today"`
}

// KPIs is the fixed set of headline figures.
type KPIs struct {
	Rank                     RankValue `json:"rank"`
	TotalMarks               Value     `json:"total_marks"`
	FarmPondsCompleted       Value     `json:"farm_ponds_completed"`
	DugwellRechargeCompleted Value     `json:"dugwell_recharge_completed"`
	AmritSarovarCompleted    Value     `json:"amrit_sarovar_completed"`
	OldWorkCompleted         Value     `json:"old_work_completed"`
	MyBharatCompleted        Value     `json:"mybharat_completed"`
}

// PerformerSummary is a district reduced to name and total marks.
type PerformerSummary struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// TotalMarksStats is the statewide total-marks spread.
type TotalMarksStats struct {
	Top                 *PerformerSummary `json:"top_performer"`
	Bottom              *PerformerSummary `json:"bottom_performer"`
	Average             *float64          `json:"average"`
	Median              *float64          `json:"median"`
	CountValidDistricts int               `json:"count_valid_districts"`
}

// ComponentStat is the statewide spread of one component's marks.
type ComponentStat struct {
	Average *float64 `json:"average"`
	Median  *float64 `json:"median"`
	Count   int      `json:"count"`
}

// componentStatKeys orders the component_stats map for iteration.
var componentStatKeys = []string{
	"performance_target",
	"performance_payment",
	"farm_ponds",
	"dugwell",
	"amrit_sarovar",
	"mybharat",
}

// StateContext is the statewide backdrop for the report date.
type StateContext struct {
	ReportDate     string                   `json:"report_date"`
	TotalMarks     TotalMarksStats          `json:"total_marks_stats"`
	ComponentStats map[string]ComponentStat `json:"component_stats"`
}

// FetchErrors records which side of the comparison had fetch problems.
type FetchErrors struct {
	Current  string `json:"current,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// Analysis is the complete KPI result for one district and date.
type Analysis struct {
	District     string       `json:"district_name"`
	ReportDate   string       `json:"report_date"`
	PreviousDate string       `json:"previous_report_date"`
	KPIs         KPIs         `json:"kpis"`
	StateContext StateContext `json:"state_context"`
	FetchErrors  FetchErrors  `json:"fetch_errors"`
	Notes        []string     `json:"notes"`
	Explanation  string       `json:"explanation"`
}

// Aggregator computes district KPIs from the component endpoints.
type Aggregator struct {
	fetcher fetch.Fetcher
	logger  fetch.Logger
}

// NewAggregator builds an Aggregator over f.
func NewAggregator(f fetch.Fetcher, logger fetch.Logger) *Aggregator {
	return &Aggregator{fetcher: f, logger: logger}
}

func (a *Aggregator) logf(format string, args ...any) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}

// Analyze builds the KPI picture for district on reportDate, compared
// against the previous day.
func (a *Aggregator) Analyze(ctx context.Context, district, reportDate string) (*Analysis, error) {
	name, ok := record.Name(district)
	if !ok {
		return nil, fmt.Errorf("analyze kpis: district name required")
	}
	day, err := time.Parse(dateLayout, reportDate)
	if err != nil {
		return nil, fmt.Errorf("analyze kpis: invalid report date %q: %w", reportDate, err)
	}
	prevDate := day.AddDate(0, 0, -1).Format(dateLayout)

	current := a.fetchState(ctx, reportDate)
	previous := a.fetchState(ctx, prevDate)

	currentRanks := rank.Competition(totals(current))
	previousRanks := rank.Competition(totals(previous))

	result := &Analysis{
		District:     name,
		ReportDate:   reportDate,
		PreviousDate: prevDate,
		Notes:        []string{},
		FetchErrors: FetchErrors{
			Current:  strings.Join(current.FetchErrors, "; "),
			Previous: strings.Join(previous.FetchErrors, "; "),
		},
	}
	result.StateContext = a.stateContext(reportDate, current)

	curr := current.Districts[name]
	prev := previous.Districts[name]
	if curr == nil {
		result.Notes = append(result.Notes,
			fmt.Sprintf("Data for %s missing for current date %s.", name, reportDate))
	}
	if prev == nil {
		result.Notes = append(result.Notes,
			fmt.Sprintf("Data for %s missing for previous date %s.", name, prevDate))
	}

	currRank, prevRank := rankOf(currentRanks, name), rankOf(previousRanks, name)
	result.KPIs.Rank = RankValue{
		Current:          currRank,
		Previous:         prevRank,
		Change:           rank.Improvement(prevRank, currRank),
		TotalRankedToday: result.StateContext.TotalMarks.CountValidDistricts,
	}
	result.KPIs.TotalMarks = valueOf(totalOf(curr), totalOf(prev))
	result.KPIs.FarmPondsCompleted = valueOf(countOf(curr, component.FarmPonds.Key), countOf(prev, component.FarmPonds.Key))
	result.KPIs.DugwellRechargeCompleted = valueOf(countOf(curr, component.Dugwell.Key), countOf(prev, component.Dugwell.Key))
	result.KPIs.AmritSarovarCompleted = valueOf(countOf(curr, component.AmritSarovar.Key), countOf(prev, component.AmritSarovar.Key))
	result.KPIs.OldWorkCompleted = valueOf(oldWorkOf(curr), oldWorkOf(prev))
	result.KPIs.MyBharatCompleted = valueOf(countOf(curr, component.MyBharat.Key), countOf(prev, component.MyBharat.Key))

	result.Explanation = a.explain(result)
	return result, nil
}

// fetchState pulls every component's state list for one date and merges the
// records by district name.
func (a *Aggregator) fetchState(ctx context.Context, date string) *stateData {
	state := &stateData{Districts: map[string]*districtData{}}

	get := func(name string) *districtData {
		d := state.Districts[name]
		if d == nil {
			d = &districtData{
				Name:   name,
				Marks:  map[string]float64{},
				Counts: map[string]int{},
			}
			state.Districts[name] = d
		}
		return d
	}

	for _, cfg := range component.Configs() {
		params := map[string]string{}
		if cfg.UseDateParam {
			params["date"] = date
		}
		tree, err := a.fetcher.JSON(ctx, cfg.Endpoint, params)
		if err != nil {
			state.FetchErrors = append(state.FetchErrors, fmt.Sprintf(
				"Failed to fetch data for component '%s' on %s from %s.", cfg.Key, date, cfg.Endpoint))
			a.logf("kpi: %s fetch for %s failed: %v", cfg.Key, date, err)
			continue
		}
		rows, _ := record.Get(tree, cfg.ResultsKey).([]any)
		for _, row := range rows {
			rec, ok := record.Normalize(row, cfg.Fields)
			if !ok {
				continue
			}
			d := get(rec.Name)
			d.Marks[cfg.Key] = rec.Score
			d.Counts[cfg.Key] = rec.Count
		}
	}

	tree, err := a.fetcher.JSON(ctx, "/report_jsm/performance-marks", map[string]string{"date": date})
	if err != nil {
		state.FetchErrors = append(state.FetchErrors, fmt.Sprintf(
			"Failed to fetch data for component 'performance' on %s from /report_jsm/performance-marks.", date))
		a.logf("kpi: performance fetch for %s failed: %v", date, err)
	}
	rows, _ := record.Get(tree, "results").([]any)
	for _, row := range rows {
		name, ok := record.Name(record.Get(row, "name"))
		if !ok {
			continue
		}
		perf := &performanceMarks{
			TargetMarks:  record.Float(record.Get(row, "target_marks"), 0),
			PaymentMarks: record.Float(record.Get(row, "payment_marks"), 0),
		}
		for _, cat := range component.NRMCategories {
			perf.OldWorkCompleted += record.Int(record.Get(row, "categories", cat, "completed"), 0)
		}
		get(name).Performance = perf
	}

	for _, d := range state.Districts {
		total := d.Marks[component.FarmPonds.Key] +
			d.Marks[component.Dugwell.Key] +
			d.Marks[component.AmritSarovar.Key] +
			d.Marks[component.MyBharat.Key]
		if d.Performance != nil {
			total += d.Performance.TargetMarks + d.Performance.PaymentMarks
		}
		total = record.Round2(total)
		d.TotalMarks = &total
	}
	return state
}

func totals(s *stateData) map[string]*float64 {
	out := make(map[string]*float64, len(s.Districts))
	for name, d := range s.Districts {
		out[name] = d.TotalMarks
	}
	return out
}

func rankOf(ranks map[string]int, name string) *int {
	if r, ok := ranks[name]; ok {
		return &r
	}
	return nil
}

func totalOf(d *districtData) *float64 {
	if d == nil {
		return nil
	}
	return d.TotalMarks
}

func countOf(d *districtData, key string) *float64 {
	if d == nil {
		return nil
	}
	n, ok := d.Counts[key]
	if !ok {
		return nil
	}
	f := float64(n)
	return &f
}

func oldWorkOf(d *districtData) *float64 {
	if d == nil || d.Performance == nil {
		return nil
	}
	f := float64(d.Performance.OldWorkCompleted)
	return &f
}

func valueOf(current, previous *float64) Value {
	v := Value{Current: current, Previous: previous}
	if current != nil && previous != nil {
		v.Change = delta.Change(*current, *previous)
	}
	return v
}

func (a *Aggregator) stateContext(date string, state *stateData) StateContext {
	ctx := StateContext{
		ReportDate:     date,
		ComponentStats: map[string]ComponentStat{},
	}
	for _, key := range componentStatKeys {
		ctx.ComponentStats[key] = ComponentStat{}
	}

	var valid []*districtData
	for _, d := range state.Districts {
		if d.TotalMarks != nil {
			valid = append(valid, d)
		}
	}
	if len(valid) == 0 {
		return ctx
	}

	top, bottom := stats.TopBottom(valid,
		func(d *districtData) string { return d.Name },
		func(d *districtData) float64 { return *d.TotalMarks })
	ctx.TotalMarks.Top = &PerformerSummary{Name: (*top).Name, Score: *(*top).TotalMarks}
	ctx.TotalMarks.Bottom = &PerformerSummary{Name: (*bottom).Name, Score: *(*bottom).TotalMarks}

	allTotals := make([]float64, len(valid))
	for i, d := range valid {
		allTotals[i] = *d.TotalMarks
	}
	ctx.TotalMarks.Average, ctx.TotalMarks.Median = stats.MeanMedian(allTotals)
	ctx.TotalMarks.CountValidDistricts = len(valid)

	samples := map[string][]float64{}
	for _, d := range valid {
		if d.Performance != nil {
			samples["performance_target"] = append(samples["performance_target"], d.Performance.TargetMarks)
			samples["performance_payment"] = append(samples["performance_payment"], d.Performance.PaymentMarks)
		}
		for _, cfg := range component.Configs() {
			if marks, ok := d.Marks[cfg.Key]; ok {
				samples[cfg.Key] = append(samples[cfg.Key], marks)
			}
		}
	}
	for _, key := range componentStatKeys {
		avg, median := stats.MeanMedian(samples[key])
		ctx.ComponentStats[key] = ComponentStat{Average: avg, Median: median, Count: len(samples[key])}
	}
	return ctx
}
