// Package component analyzes the individual scored components of the water
// conservation program: farm ponds, dugwell recharge, amrit sarovar sites,
// volunteer enrolment and the old NRM works. Each analysis compares one
// district against the statewide cohort for a report date, with a
// day-before delta where the endpoint supports dated queries.
package component

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"jsmdash/fetch"
	"jsmdash/record"
	"jsmdash/stats"
)

const dateLayout = "2006-01-02"

// Config describes one scored component: where its data lives and how the
// endpoint shapes it. All component endpoints share one response layout up
// to these names.
type Config struct {
	Name       string // display name
	Key        string // machine key used in report output and storage
	Endpoint   string
	ResultsKey string
	Fields     record.FieldMap
	MaxMarks   float64
	Unit       string // what Count counts, for the narrative

	// UseDateParam is false for endpoints that ignore dates and always
	// serve the latest snapshot. Those components get no previous-day
	// comparison.
	UseDateParam bool
	// DrillDown enables the block and panchayat breakdown. Some endpoints
	// only aggregate at district level.
	DrillDown bool
}

// The four config-driven components. Old works has its own analyzer in this
// package; its endpoint returns a different shape.
var (
	FarmPonds = Config{
		Name:       "Farm Ponds",
		Key:        "farm_ponds",
		Endpoint:   "/report_jsm/farm-ponds-marks",
		ResultsKey: "results",
		Fields:     record.FieldMap{Name: "name", Score: "marks", Count: "actual_count"},
		MaxMarks:   30.0,
		Unit:       "units",

		UseDateParam: true,
		DrillDown:    true,
	}

	Dugwell = Config{
		Name:       "Dugwell Recharge",
		Key:        "dugwell",
		Endpoint:   "/report_jsm/dugwell-marks",
		ResultsKey: "results",
		Fields:     record.FieldMap{Name: "name", Score: "marks", Count: "actual_count"},
		MaxMarks:   20.0,
		Unit:       "structures",

		UseDateParam: true,
		DrillDown:    true,
	}

	AmritSarovar = Config{
		Name:       "Amrit Sarovar",
		Key:        "amrit_sarovar",
		Endpoint:   "/report_jsm/amritsarovar-stats",
		ResultsKey: "details",
		Fields:     record.FieldMap{Name: "name", Score: "marks", Count: "actual_count"},
		MaxMarks:   20.0,
		Unit:       "sites",
	}

	MyBharat = Config{
		Name:       "MyBharat Volunteer Stats",
		Key:        "mybharat",
		Endpoint:   "/report_jsm/mybharat/gender-stats",
		ResultsKey: "districts_data",
		Fields:     record.FieldMap{Name: "district", Score: "marks", Count: "total_count"},
		MaxMarks:   10.0,
		Unit:       "volunteers",

		UseDateParam: true,
	}
)

// Configs lists the config-driven components in report order.
func Configs() []Config {
	return []Config{FarmPonds, Dugwell, AmritSarovar, MyBharat}
}

// Change is the district's day-over-day movement.
type Change struct {
	Score float64 `json:"score_change"`
	Count int     `json:"count_change"`
}

// Comparison pairs the selected district's current and previous snapshots.
// Status explains an absent Change.
type Comparison struct {
	Current  *record.Record `json:"current_data"`
	Previous *record.Record `json:"previous_data"`
	Change   *Change        `json:"change"`
	Status   string         `json:"status,omitempty"`
}

// Extrema holds the full records of the statewide best and worst.
type Extrema struct {
	Top    *record.Record `json:"top_performer"`
	Bottom *record.Record `json:"bottom_performer"`
}

// StateSummary names the statewide extremes, once by score and once by
// physical count. They frequently differ.
type StateSummary struct {
	ByScore Extrema `json:"by_score"`
	ByCount Extrema `json:"by_count"`
}

// PanchayatCount is one panchayat's contribution within a block.
type PanchayatCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// BlockComparison is one block's current count against the previous day.
// PreviousCount is nil when the block did not appear in yesterday's data.
type BlockComparison struct {
	Name          string           `json:"name"`
	Score         float64          `json:"score"`
	CountToday    int              `json:"count_today"`
	PreviousCount *int             `json:"count_previous"`
	TopPanchayats []PanchayatCount `json:"top_panchayats"`
}

// StateStatistics is the cohort spread for the report date.
type StateStatistics struct {
	DistrictsReporting int           `json:"districts_reporting"`
	Score              stats.Summary `json:"score"`
	Count              stats.Summary `json:"count"`
	Notes              []string      `json:"calculation_notes"`
}

// Position places the district relative to the cohort mean and median.
type Position struct {
	Score string `json:"score_comparison"`
	Count string `json:"count_comparison"`
}

// Analysis is the complete per-component result for one district and date.
type Analysis struct {
	Component    string  `json:"component"`
	Key          string  `json:"component_key"`
	MaxMarks     float64 `json:"max_marks"`
	District     string  `json:"selected_district"`
	ReportDate   string  `json:"report_date"`
	PreviousDate string  `json:"previous_report_date,omitempty"`

	Explanation        string            `json:"explanation"`
	DistrictComparison Comparison        `json:"selected_district_comparison"`
	StateSummary       StateSummary      `json:"state_level_summary_today"`
	Blocks             []BlockComparison `json:"block_level_comparison,omitempty"`
	StateStats         StateStatistics   `json:"state_statistics_today"`
	Position           Position          `json:"selected_district_position_vs_state"`

	CurrentError  string `json:"current_analysis_error,omitempty"`
	PreviousError string `json:"previous_analysis_error,omitempty"`
}

// Analyzer runs one component's analysis against the API.
type Analyzer struct {
	cfg     Config
	fetcher fetch.Fetcher
	logger  fetch.Logger
	topN    int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger attaches a logger.
func WithLogger(l fetch.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithTopPanchayats overrides how many panchayats each block lists.
func WithTopPanchayats(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.topN = n
		}
	}
}

// New builds an Analyzer for cfg over f.
func New(cfg Config, f fetch.Fetcher, opts ...Option) *Analyzer {
	a := &Analyzer{cfg: cfg, fetcher: f, topN: 5}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) logf(format string, args ...any) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}

// dayData is everything one fetch pass yields for a single date.
type dayData struct {
	stateRecords []record.Record
	district     *record.Record
	blocks       []BlockComparison
	fetchErrors  []string
}

func (d *dayData) errorString() string {
	return strings.Join(d.fetchErrors, "; ")
}

// Analyze compares district against the state for reportDate and, when the
// component supports dated queries, against the previous day. Partial data
// degrades the result rather than failing it; only an unusable district
// name or date is an error.
func (a *Analyzer) Analyze(ctx context.Context, district, reportDate string) (*Analysis, error) {
	name, ok := record.Name(district)
	if !ok {
		return nil, fmt.Errorf("analyze %s: district name required", a.cfg.Key)
	}
	day, err := time.Parse(dateLayout, reportDate)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: invalid report date %q: %w", a.cfg.Key, reportDate, err)
	}

	result := &Analysis{
		Component:  a.cfg.Name,
		Key:        a.cfg.Key,
		MaxMarks:   a.cfg.MaxMarks,
		District:   name,
		ReportDate: reportDate,
	}

	current := a.fetchDay(ctx, name, reportDate)
	result.CurrentError = current.errorString()

	var previous *dayData
	if a.cfg.UseDateParam {
		prevDate := day.AddDate(0, 0, -1).Format(dateLayout)
		result.PreviousDate = prevDate
		previous = a.fetchDay(ctx, name, prevDate)
		result.PreviousError = previous.errorString()
	}

	a.populateComparison(result, current, previous)
	a.populateStateStats(result, current)
	a.populateBlocks(result, current, previous)
	result.Explanation = a.explain(result)

	if current.district == nil && len(current.stateRecords) == 0 && len(result.Blocks) == 0 {
		result.Explanation = fmt.Sprintf(
			"Error: Could not retrieve essential performance data for %s (%s) on %s. Analysis is incomplete. %s",
			name, a.cfg.Name, reportDate, result.Explanation)
	}
	return result, nil
}

func (a *Analyzer) fetchDay(ctx context.Context, district, date string) *dayData {
	day := &dayData{}

	stateParams := map[string]string{}
	if a.cfg.UseDateParam {
		stateParams["date"] = date
	}
	tree, err := a.fetcher.JSON(ctx, a.cfg.Endpoint, stateParams)
	if err != nil {
		a.logf("%s: state fetch for %s failed: %v", a.cfg.Key, date, err)
	}
	rows, _ := record.Get(tree, a.cfg.ResultsKey).([]any)
	if len(rows) == 0 {
		day.fetchErrors = append(day.fetchErrors, fmt.Sprintf(
			"Could not fetch or parse state-level %s data for %s from %s.",
			a.cfg.Name, date, a.cfg.Endpoint))
	}
	for _, row := range rows {
		if rec, ok := record.Normalize(row, a.cfg.Fields); ok {
			day.stateRecords = append(day.stateRecords, rec)
		}
	}
	for i := range day.stateRecords {
		if day.stateRecords[i].Name == district {
			day.district = &day.stateRecords[i]
			break
		}
	}
	if day.district == nil && len(day.stateRecords) > 0 {
		a.logf("%s: district %s not found among %d state records for %s",
			a.cfg.Key, district, len(day.stateRecords), date)
	}

	if a.cfg.DrillDown {
		day.blocks = a.fetchBlocks(ctx, district, date)
	}
	return day
}

func (a *Analyzer) fetchBlocks(ctx context.Context, district, date string) []BlockComparison {
	params := map[string]string{"district": district, "date": date}
	tree, err := a.fetcher.JSON(ctx, a.cfg.Endpoint, params)
	if err != nil {
		a.logf("%s: block fetch for %s on %s failed: %v", a.cfg.Key, district, date, err)
		return nil
	}
	rows, _ := record.Get(tree, a.cfg.ResultsKey).([]any)

	var blocks []BlockComparison
	for _, row := range rows {
		rec, ok := record.Normalize(row, a.cfg.Fields)
		if !ok {
			continue
		}
		blocks = append(blocks, BlockComparison{
			Name:          rec.Name,
			Score:         rec.Score,
			CountToday:    rec.Count,
			TopPanchayats: a.fetchTopPanchayats(ctx, district, rec.Name, date),
		})
	}
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].CountToday != blocks[j].CountToday {
			return blocks[i].CountToday > blocks[j].CountToday
		}
		return blocks[i].Name < blocks[j].Name
	})
	return blocks
}

func (a *Analyzer) fetchTopPanchayats(ctx context.Context, district, block, date string) []PanchayatCount {
	params := map[string]string{"district": district, "block": block, "date": date}
	tree, err := a.fetcher.JSON(ctx, a.cfg.Endpoint, params)
	if err != nil {
		a.logf("%s: panchayat fetch for block %s on %s failed: %v", a.cfg.Key, block, date, err)
		return nil
	}
	rows, _ := record.Get(tree, a.cfg.ResultsKey).([]any)

	var panchayats []PanchayatCount
	for _, row := range rows {
		if rec, ok := record.Normalize(row, a.cfg.Fields); ok {
			panchayats = append(panchayats, PanchayatCount{Name: rec.Name, Count: rec.Count})
		}
	}
	sort.Slice(panchayats, func(i, j int) bool {
		if panchayats[i].Count != panchayats[j].Count {
			return panchayats[i].Count > panchayats[j].Count
		}
		return panchayats[i].Name < panchayats[j].Name
	})
	if len(panchayats) > a.topN {
		panchayats = panchayats[:a.topN]
	}
	return panchayats
}

func (a *Analyzer) populateComparison(result *Analysis, current, previous *dayData) {
	result.DistrictComparison.Current = current.district
	if previous != nil {
		result.DistrictComparison.Previous = previous.district
	}
	switch {
	case current.district != nil && previous != nil && previous.district != nil:
		result.DistrictComparison.Change = &Change{
			Score: record.Round2(current.district.Score - previous.district.Score),
			Count: current.district.Count - previous.district.Count,
		}
	case current.district != nil && previous != nil:
		result.DistrictComparison.Status = "Previous data unavailable"
	}
}

func (a *Analyzer) populateStateStats(result *Analysis, current *dayData) {
	records := current.stateRecords
	result.StateStats.DistrictsReporting = len(records)
	if len(records) == 0 {
		result.StateStats.Notes = []string{"No reporting districts found."}
		return
	}

	top, bottom := stats.TopBottom(records,
		func(r record.Record) string { return r.Name },
		func(r record.Record) float64 { return r.Score })
	result.StateSummary.ByScore = Extrema{Top: top, Bottom: bottom}

	top, bottom = stats.TopBottom(records,
		func(r record.Record) string { return r.Name },
		func(r record.Record) float64 { return float64(r.Count) })
	result.StateSummary.ByCount = Extrema{Top: top, Bottom: bottom}

	scores := make([]float64, len(records))
	counts := make([]float64, len(records))
	for i, r := range records {
		scores[i] = r.Score
		counts[i] = float64(r.Count)
	}
	scoreStats := stats.Summarize(scores, "score")
	countStats := stats.Summarize(counts, "count")
	notes := append(append([]string{}, scoreStats.Notes...), countStats.Notes...)
	scoreStats.Notes, countStats.Notes = nil, nil
	result.StateStats.Score = scoreStats
	result.StateStats.Count = countStats
	result.StateStats.Notes = notes

	if current.district != nil {
		result.Position.Score = positionOrNA(current.district.Score, scoreStats)
		result.Position.Count = positionOrNA(float64(current.district.Count), countStats)
	} else {
		result.Position.Score = "District data missing"
		result.Position.Count = "District data missing"
	}
}

func positionOrNA(value float64, s stats.Summary) string {
	if pos := stats.Position(value, s.Mean, s.Median); pos != "" {
		return pos
	}
	return "Comparison N/A"
}

func (a *Analyzer) populateBlocks(result *Analysis, current, previous *dayData) {
	if !a.cfg.DrillDown {
		return
	}
	prevCounts := map[string]int{}
	if previous != nil {
		for _, b := range previous.blocks {
			prevCounts[b.Name] = b.CountToday
		}
	}
	for _, b := range current.blocks {
		if prev, ok := prevCounts[b.Name]; ok {
			p := prev
			b.PreviousCount = &p
		}
		result.Blocks = append(result.Blocks, b)
	}
}
