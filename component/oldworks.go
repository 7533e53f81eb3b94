package component

import (
	"context"
	"fmt"
	"sort"
	"time"

	"jsmdash/fetch"
	"jsmdash/record"
	"jsmdash/stats"
)

const (
	oldWorksName     = "Old Works (NRM)"
	oldWorksEndpoint = "/report_jsm/performance-marks"
	blocksEndpoint   = "/report_jsm/blocks"

	// OldWorksKey identifies the component in report output and storage.
	OldWorksKey = "old_works"
	// OldWorksMaxMarks is the component's score ceiling.
	OldWorksMaxMarks = 20.0
)

// NRMCategories is the fixed list of tracked NRM work types. The endpoint
// reports more categories; only these count.
var NRMCategories = []string{
	"Talab Nirman",
	"Check_Stop Dam",
	"Recharge Pit",
	"Koop Nirman",
	"Percolation Talab",
	"Khet Talab",
	"Other NRM Work",
}

// CategoryDetail is one NRM category's performance for one entity.
type CategoryDetail struct {
	Target      record.Target `json:"target"`
	Completed   int           `json:"completed"`
	Achievement record.Metric `json:"achievement_percentage"`
	Marks       float64       `json:"marks"`
}

// FinancialProgress tracks pending-payment reduction. Pending amounts come
// from the API in rupees and are reported in lakhs.
type FinancialProgress struct {
	BaselinePendingLakhs float64 `json:"baseline_pending_lakhs"`
	CurrentPendingLakhs  float64 `json:"current_pending_lakhs"`
	ReductionPercentage  float64 `json:"reduction_percentage"`
	Marks                float64 `json:"marks"`
}

// WorkRecord is one entity's old-works performance. The overall score is the
// sum of target achievement and payment marks. RelevantCount counts works in
// the scoring period; TotalCompleted sums completions across the tracked
// categories. The two routinely differ and both matter downstream.
type WorkRecord struct {
	Name           string                    `json:"name"`
	Score          float64                   `json:"overall_old_work_score"`
	RelevantCount  int                       `json:"total_work_count"`
	TotalCompleted int                       `json:"total_work_completed"`
	TargetMarks    float64                   `json:"target_achievement_marks"`
	PaymentMarks   float64                   `json:"financial_progress_marks"`
	Financial      FinancialProgress         `json:"financial_progress_details"`
	Categories     map[string]CategoryDetail `json:"individual_work_types,omitempty"`
}

// summarized returns a copy without the per-category breakdown, for the
// state summary where the full detail would bloat the report.
func (w *WorkRecord) summarized() *WorkRecord {
	if w == nil {
		return nil
	}
	c := *w
	c.Categories = nil
	return &c
}

// normalizeWork converts one raw performance entry. Unnamed entries are
// rejected.
func normalizeWork(raw any) (*WorkRecord, bool) {
	name, ok := record.Name(record.Get(raw, "name"))
	if !ok {
		return nil, false
	}
	targetMarks := record.Float(record.Get(raw, "target_marks"), 0)
	paymentMarks := record.Float(record.Get(raw, "payment_marks"), 0)

	w := &WorkRecord{
		Name:         name,
		Score:        record.Round2(targetMarks + paymentMarks),
		TargetMarks:  record.Round2(targetMarks),
		PaymentMarks: record.Round2(paymentMarks),
		Financial: FinancialProgress{
			BaselinePendingLakhs: record.Round2(record.Float(record.Get(raw, "payment_details", "baseline_pending_for_calc"), 0) / 100000),
			CurrentPendingLakhs:  record.Round2(record.Float(record.Get(raw, "payment_details", "current_pending"), 0) / 100000),
			ReductionPercentage:  record.Round2(record.Float(record.Get(raw, "payment_details", "reduction_percentage"), 0)),
			Marks:                record.Round2(paymentMarks),
		},
		Categories: make(map[string]CategoryDetail, len(NRMCategories)),
	}

	for _, cat := range NRMCategories {
		w.RelevantCount += record.Int(record.Get(raw, "category_counts", cat), 0)
		completed := record.Int(record.Get(raw, "categories", cat, "completed"), 0)
		w.TotalCompleted += completed
		w.Categories[cat] = CategoryDetail{
			Target:      record.TargetFrom(record.Get(raw, "categories", cat, "target")),
			Completed:   completed,
			Achievement: record.MetricOf(record.Get(raw, "categories", cat, "achievement_percentage")),
			Marks:       record.Round2(record.Float(record.Get(raw, "categories", cat, "marks"), 0)),
		}
	}
	return w, true
}

// CategoryChange is one category's day-over-day movement. Only categories
// where something actually moved appear in a change map.
type CategoryChange struct {
	CompletedChange int     `json:"completed_change"`
	MarksChange     float64 `json:"marks_change"`
}

// WorkChange is the selected district's day-over-day movement.
type WorkChange struct {
	Score           float64                   `json:"score_change"`
	RelevantCount   int                       `json:"count_change"`
	TotalCompleted  int                       `json:"total_work_completed_change"`
	FinancialMarks  float64                   `json:"financial_marks_change"`
	CategoryChanges map[string]CategoryChange `json:"individual_work_type_changes"`
}

// WorkComparison pairs the district's snapshots with its movement.
type WorkComparison struct {
	Current *WorkRecord `json:"current_data"`
	Change  *WorkChange `json:"change"`
	Status  string      `json:"status,omitempty"`
}

// WorkExtrema holds the statewide best and worst, category detail stripped.
type WorkExtrema struct {
	Top    *WorkRecord `json:"top_performer"`
	Bottom *WorkRecord `json:"bottom_performer"`
}

// WorkStateSummary names statewide extremes by overall score and by total
// completed works.
type WorkStateSummary struct {
	ByScore WorkExtrema `json:"by_score"`
	ByCount WorkExtrema `json:"by_count"`
}

// WorkBlockComparison is one block's completed counts per category with the
// sparse day-over-day changes.
type WorkBlockComparison struct {
	Name           string         `json:"name"`
	CompletedToday map[string]int `json:"completed_works_by_type_till_today"`
	Changes        map[string]int `json:"completed_works_change_by_type"`
}

// CategoryLeader is the district with the highest marks in one category.
type CategoryLeader struct {
	Name    string          `json:"name"`
	Details *CategoryDetail `json:"category_details"`
}

// FinancialStats is the statewide payment-reduction spread.
type FinancialStats struct {
	MedianReduction float64 `json:"median_reduction"`
	MeanReduction   float64 `json:"mean_reduction"`
	CountDistricts  int     `json:"count_districts_calculated"`
}

// WorkStateContext carries statewide context beyond the extremes.
type WorkStateContext struct {
	FinancialStats FinancialStats `json:"financial_stats"`
}

// OldWorksAnalysis is the complete old-works result for one district and date.
type OldWorksAnalysis struct {
	Component    string  `json:"component"`
	Key          string  `json:"component_key"`
	MaxMarks     float64 `json:"max_marks"`
	District     string  `json:"selected_district"`
	ReportDate   string  `json:"report_date"`
	PreviousDate string  `json:"previous_report_date"`

	Explanation        string                    `json:"explanation"`
	DistrictComparison WorkComparison            `json:"selected_district_comparison"`
	StateSummary       WorkStateSummary          `json:"state_level_summary_today"`
	Blocks             []WorkBlockComparison     `json:"block_level_comparison"`
	CategoryLeaders    map[string]CategoryLeader `json:"state_category_leaders_today"`
	StateContext       WorkStateContext          `json:"state_context"`

	CurrentError  string `json:"current_analysis_error,omitempty"`
	PreviousError string `json:"previous_analysis_error,omitempty"`
}

// OldWorksAnalyzer runs the old-works analysis. Unlike the config-driven
// components it needs the district's block list up front and drills into
// per-category completion counts.
type OldWorksAnalyzer struct {
	fetcher fetch.Fetcher
	logger  fetch.Logger
}

// NewOldWorks builds an OldWorksAnalyzer over f.
func NewOldWorks(f fetch.Fetcher, logger fetch.Logger) *OldWorksAnalyzer {
	return &OldWorksAnalyzer{fetcher: f, logger: logger}
}

func (a *OldWorksAnalyzer) logf(format string, args ...any) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}

type workDayData struct {
	stateRecords []*WorkRecord
	district     *WorkRecord
	blockCounts  map[string]map[string]int
	fetchErrors  []string
}

// Analyze compares district against the state for reportDate and the
// previous day. The block list is a hard prerequisite; when it cannot be
// fetched the analysis aborts with an error instead of producing a report
// with a silently missing breakdown.
func (a *OldWorksAnalyzer) Analyze(ctx context.Context, district, reportDate string) (*OldWorksAnalysis, error) {
	name, ok := record.Name(district)
	if !ok {
		return nil, fmt.Errorf("analyze %s: district name required", OldWorksKey)
	}
	day, err := time.Parse(dateLayout, reportDate)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: invalid report date %q: %w", OldWorksKey, reportDate, err)
	}
	prevDate := day.AddDate(0, 0, -1).Format(dateLayout)

	blockList, err := a.fetchBlockList(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: block list for %s: %w", OldWorksKey, name, err)
	}

	current := a.fetchDay(ctx, name, reportDate, blockList)
	previous := a.fetchDay(ctx, name, prevDate, blockList)

	result := &OldWorksAnalysis{
		Component:    oldWorksName,
		Key:          OldWorksKey,
		MaxMarks:     OldWorksMaxMarks,
		District:     name,
		ReportDate:   reportDate,
		PreviousDate: prevDate,
		Blocks:       []WorkBlockComparison{},

		CurrentError:  joinErrors(current.fetchErrors),
		PreviousError: joinErrors(previous.fetchErrors),
	}

	a.populateComparison(result, current, previous)
	a.populateState(result, current)
	a.populateBlocks(result, blockList, current, previous)
	result.Explanation = a.explain(result)

	if current.district == nil && len(current.stateRecords) == 0 {
		result.Explanation = fmt.Sprintf(
			"Error: Could not retrieve essential performance data for %s or state on %s. Analysis is incomplete. %s",
			name, reportDate, result.Explanation)
	}
	return result, nil
}

func joinErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	out := errs[0]
	for _, e := range errs[1:] {
		out += "; " + e
	}
	return out
}

func (a *OldWorksAnalyzer) fetchBlockList(ctx context.Context, district string) ([]string, error) {
	tree, err := a.fetcher.JSON(ctx, blocksEndpoint, map[string]string{"district": district})
	if err != nil {
		return nil, err
	}
	rows, _ := record.Get(tree, "blocks").([]any)
	var blocks []string
	for _, row := range rows {
		if name, ok := record.Name(row); ok {
			blocks = append(blocks, name)
		}
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("empty block list")
	}
	return blocks, nil
}

func (a *OldWorksAnalyzer) fetchDay(ctx context.Context, district, date string, blockList []string) *workDayData {
	day := &workDayData{blockCounts: map[string]map[string]int{}}

	tree, err := a.fetcher.JSON(ctx, oldWorksEndpoint, map[string]string{"date": date})
	if err != nil {
		a.logf("%s: state fetch for %s failed: %v", OldWorksKey, date, err)
	}
	rows, _ := record.Get(tree, "results").([]any)
	if len(rows) == 0 {
		day.fetchErrors = append(day.fetchErrors, fmt.Sprintf(
			"Could not fetch state-level %s performance data for %s.", oldWorksName, date))
	}
	for _, row := range rows {
		if w, ok := normalizeWork(row); ok {
			day.stateRecords = append(day.stateRecords, w)
		}
	}
	for _, w := range day.stateRecords {
		if w.Name == district {
			day.district = w
			break
		}
	}

	blockTree, err := a.fetcher.JSON(ctx, oldWorksEndpoint, map[string]string{"district": district, "date": date})
	if err != nil {
		a.logf("%s: block fetch for %s on %s failed: %v", OldWorksKey, district, date, err)
	}
	blockRows, _ := record.Get(blockTree, "results").([]any)
	if len(blockRows) == 0 {
		day.fetchErrors = append(day.fetchErrors, fmt.Sprintf(
			"Could not fetch block-level performance data for %s on %s.", district, date))
		return day
	}
	byName := map[string]any{}
	for _, row := range blockRows {
		if name, ok := record.Name(record.Get(row, "name")); ok {
			byName[name] = row
		}
	}
	for _, block := range blockList {
		counts := map[string]int{}
		raw := byName[block]
		for _, cat := range NRMCategories {
			counts[cat] = record.Int(record.Get(raw, "categories", cat, "completed"), 0)
		}
		day.blockCounts[block] = counts
	}
	return day
}

func (a *OldWorksAnalyzer) populateComparison(result *OldWorksAnalysis, current, previous *workDayData) {
	result.DistrictComparison.Current = current.district
	if current.district == nil {
		return
	}
	if previous.district == nil {
		result.DistrictComparison.Status = "Previous day data unavailable for district"
		return
	}
	cur, prev := current.district, previous.district

	catChanges := map[string]CategoryChange{}
	for _, cat := range NRMCategories {
		completedChange := cur.Categories[cat].Completed - prev.Categories[cat].Completed
		marksChange := record.Round2(cur.Categories[cat].Marks - prev.Categories[cat].Marks)
		if completedChange != 0 || marksChange != 0 {
			catChanges[cat] = CategoryChange{
				CompletedChange: completedChange,
				MarksChange:     marksChange,
			}
		}
	}
	result.DistrictComparison.Change = &WorkChange{
		Score:           record.Round2(cur.Score - prev.Score),
		RelevantCount:   cur.RelevantCount - prev.RelevantCount,
		TotalCompleted:  cur.TotalCompleted - prev.TotalCompleted,
		FinancialMarks:  record.Round2(cur.PaymentMarks - prev.PaymentMarks),
		CategoryChanges: catChanges,
	}
}

func (a *OldWorksAnalyzer) populateState(result *OldWorksAnalysis, current *workDayData) {
	records := current.stateRecords
	result.CategoryLeaders = map[string]CategoryLeader{}
	if len(records) == 0 {
		return
	}

	top, bottom := stats.TopBottom(records,
		func(w *WorkRecord) string { return w.Name },
		func(w *WorkRecord) float64 { return w.Score })
	result.StateSummary.ByScore = WorkExtrema{
		Top:    deref(top).summarized(),
		Bottom: deref(bottom).summarized(),
	}
	top, bottom = stats.TopBottom(records,
		func(w *WorkRecord) string { return w.Name },
		func(w *WorkRecord) float64 { return float64(w.TotalCompleted) })
	result.StateSummary.ByCount = WorkExtrema{
		Top:    deref(top).summarized(),
		Bottom: deref(bottom).summarized(),
	}

	for _, cat := range NRMCategories {
		leader := CategoryLeader{Name: "N/A"}
		best := -1.0
		for _, w := range records {
			detail, ok := w.Categories[cat]
			if !ok {
				continue
			}
			if detail.Marks > best || (detail.Marks == best && leader.Name != "N/A" && w.Name < leader.Name) {
				best = detail.Marks
				d := detail
				leader = CategoryLeader{Name: w.Name, Details: &d}
			}
		}
		result.CategoryLeaders[cat] = leader
	}

	var reductions []float64
	for _, w := range records {
		reductions = append(reductions, w.Financial.ReductionPercentage)
	}
	if mean, median := stats.MeanMedian(reductions); mean != nil {
		result.StateContext.FinancialStats = FinancialStats{
			MeanReduction:   *mean,
			MedianReduction: *median,
			CountDistricts:  len(reductions),
		}
	}
}

func deref(w **WorkRecord) *WorkRecord {
	if w == nil {
		return nil
	}
	return *w
}

func (a *OldWorksAnalyzer) populateBlocks(result *OldWorksAnalysis, blockList []string, current, previous *workDayData) {
	for _, block := range blockList {
		today := current.blockCounts[block]
		if today == nil {
			today = map[string]int{}
		}
		yesterday := previous.blockCounts[block]
		changes := map[string]int{}
		for _, cat := range NRMCategories {
			if d := today[cat] - yesterday[cat]; d != 0 {
				changes[cat] = d
			}
		}
		result.Blocks = append(result.Blocks, WorkBlockComparison{
			Name:           block,
			CompletedToday: today,
			Changes:        changes,
		})
	}
	sort.Slice(result.Blocks, func(i, j int) bool {
		return result.Blocks[i].Name < result.Blocks[j].Name
	})
}
