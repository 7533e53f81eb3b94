package component

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// signedComma renders a count delta with an explicit sign and comma
// grouping, e.g. "+1,234".
func signedComma(n int) string {
	if n >= 0 {
		return "+" + humanize.Comma(int64(n))
	}
	return humanize.Comma(int64(n))
}

// explain builds the deterministic narrative for a config-driven component.
// Identical inputs always produce identical text.
func (a *Analyzer) explain(r *Analysis) string {
	var parts []string

	comp := r.DistrictComparison
	if comp.Current != nil {
		parts = append(parts, fmt.Sprintf(
			"On %s, for %s, %s reported %s %s (Target: %s), scoring %.2f/%.0f.",
			r.ReportDate, r.Component, r.District,
			humanize.Comma(int64(comp.Current.Count)), a.cfg.Unit,
			comp.Current.Target, comp.Current.Score, r.MaxMarks))

		switch {
		case comp.Change != nil:
			var changes []string
			if comp.Change.Score != 0 {
				changes = append(changes, fmt.Sprintf("score changed by %+.2f points", comp.Change.Score))
			} else {
				changes = append(changes, "score remained the same")
			}
			if comp.Change.Count != 0 {
				changes = append(changes, fmt.Sprintf("count changed by %s", signedComma(comp.Change.Count)))
			} else {
				changes = append(changes, "count remained the same")
			}
			parts = append(parts, fmt.Sprintf("Compared to %s, the %s.",
				r.PreviousDate, strings.Join(changes, " and the ")))
		case r.PreviousDate != "" && r.PreviousError != "":
			parts = append(parts, fmt.Sprintf(
				"Could not retrieve comparison data for %s from %s due to an error.",
				r.District, r.PreviousDate))
		case r.PreviousDate != "":
			parts = append(parts, fmt.Sprintf(
				"Data for the previous day (%s) was not available for comparison for %s.",
				r.PreviousDate, r.District))
		}
	} else {
		parts = append(parts, fmt.Sprintf(
			"Could not retrieve specific %s performance data for %s on %s.",
			r.Component, r.District, r.ReportDate))
		if r.CurrentError != "" {
			parts = append(parts, fmt.Sprintf("(Error fetching current data: %s)", r.CurrentError))
		}
	}

	if len(r.Blocks) > 0 {
		withPrev := 0
		for _, b := range r.Blocks {
			if b.PreviousCount != nil {
				withPrev++
			}
		}
		parts = append(parts, fmt.Sprintf("Block-level data for %d blocks within %s is included.",
			len(r.Blocks), r.District))
		if withPrev > 0 {
			parts = append(parts, fmt.Sprintf(
				"Counts for today (%s) and the previous day (%s) are shown (%d/%d blocks had previous day data).",
				r.ReportDate, r.PreviousDate, withPrev, len(r.Blocks)))
		} else if r.PreviousDate != "" {
			parts = append(parts, fmt.Sprintf(
				"Previous day (%s) block counts were not available for comparison.", r.PreviousDate))
		}
		parts = append(parts, fmt.Sprintf(
			"Top %d panchayats by count (as of today) are listed for each block.", a.topN))
	} else if a.cfg.DrillDown && r.CurrentError == "" {
		parts = append(parts, fmt.Sprintf(
			"Block-level breakdown for %s in %s could not be retrieved for %s.",
			r.Component, r.District, r.ReportDate))
	}

	parts = append(parts, a.explainState(r)...)
	return strings.Join(parts, " ")
}

func (a *Analyzer) explainState(r *Analysis) []string {
	if r.StateStats.DistrictsReporting == 0 {
		if r.CurrentError == "" {
			return []string{fmt.Sprintf("State-level comparison data could not be retrieved for %s.", r.ReportDate)}
		}
		return nil
	}

	parts := []string{fmt.Sprintf("Across the state (%d districts reporting on %s):",
		r.StateStats.DistrictsReporting, r.ReportDate)}

	if top, bottom := r.StateSummary.ByScore.Top, r.StateSummary.ByScore.Bottom; top != nil && bottom != nil {
		parts = append(parts, fmt.Sprintf("- Top performer by Score: %s (%.2f). Bottom: %s (%.2f).",
			top.Name, top.Score, bottom.Name, bottom.Score))
	} else {
		parts = append(parts, "- Top/Bottom performers by SCORE could not be fully determined.")
	}
	if top, bottom := r.StateSummary.ByCount.Top, r.StateSummary.ByCount.Bottom; top != nil && bottom != nil {
		parts = append(parts, fmt.Sprintf("- Top performer by Count: %s (%s). Bottom: %s (%s).",
			top.Name, humanize.Comma(int64(top.Count)),
			bottom.Name, humanize.Comma(int64(bottom.Count))))
	} else {
		parts = append(parts, "- Top/Bottom districts by COUNT could not be fully determined.")
	}

	var statBits []string
	if m := r.StateStats.Score.Mean; m != nil {
		statBits = append(statBits, fmt.Sprintf("Mean Score: %.2f", *m))
	}
	if m := r.StateStats.Score.Median; m != nil {
		statBits = append(statBits, fmt.Sprintf("Median Score: %.2f", *m))
	}
	if m := r.StateStats.Count.Mean; m != nil {
		statBits = append(statBits, fmt.Sprintf("Mean Count: %.2f", *m))
	}
	if m := r.StateStats.Count.Median; m != nil {
		statBits = append(statBits, fmt.Sprintf("Median Count: %s", humanize.Commaf(*m)))
	}
	if len(statBits) > 0 {
		parts = append(parts, fmt.Sprintf("- State Statistics: %s.", strings.Join(statBits, "; ")))
	} else {
		parts = append(parts, "- State descriptive statistics could not be calculated.")
	}

	if r.DistrictComparison.Current != nil {
		if strings.Contains(r.Position.Score, "Mean") {
			parts = append(parts, fmt.Sprintf("- %s's position: Score is %s; Count is %s.",
				r.District, r.Position.Score, r.Position.Count))
		} else {
			parts = append(parts, fmt.Sprintf(
				"- Could not determine %s's position relative to state averages.", r.District))
		}
	}
	return parts
}

// explain builds the deterministic old-works narrative.
func (a *OldWorksAnalyzer) explain(r *OldWorksAnalysis) string {
	var parts []string

	if cur := r.DistrictComparison.Current; cur != nil {
		parts = append(parts, fmt.Sprintf(
			"On %s, for %s, %s's overall performance score was %.2f/%.0f (Target Marks: %.2f, Payment Marks: %.2f).",
			r.ReportDate, r.Component, r.District, cur.Score, r.MaxMarks, cur.TargetMarks, cur.PaymentMarks))
		parts = append(parts, fmt.Sprintf(
			"This score considers %s NRM works relevant to the performance calculation period. A total of %s NRM works were completed across the tracked categories.",
			humanize.Comma(int64(cur.RelevantCount)), humanize.Comma(int64(cur.TotalCompleted))))

		switch {
		case r.DistrictComparison.Change != nil:
			ch := r.DistrictComparison.Change
			var changes []string
			if ch.Score != 0 {
				changes = append(changes, fmt.Sprintf("overall score changed by %+.2f", ch.Score))
			} else {
				changes = append(changes, "overall score remained the same")
			}
			if ch.RelevantCount != 0 {
				changes = append(changes, fmt.Sprintf("relevant NRM work count changed by %s", signedComma(ch.RelevantCount)))
			} else {
				changes = append(changes, "relevant NRM work count remained the same")
			}
			if ch.TotalCompleted != 0 {
				changes = append(changes, fmt.Sprintf("total completed works changed by %s", signedComma(ch.TotalCompleted)))
			} else {
				changes = append(changes, "total completed works remained the same")
			}
			if ch.FinancialMarks != 0 {
				changes = append(changes, fmt.Sprintf("payment marks changed by %+.2f", ch.FinancialMarks))
			}
			parts = append(parts, fmt.Sprintf("Compared to %s, the %s.",
				r.PreviousDate, strings.Join(changes, ", the ")))
			if n := len(ch.CategoryChanges); n > 0 {
				parts = append(parts, fmt.Sprintf(
					"Changes in completed works/marks were observed in %d specific NRM categories (details in 'change' data).", n))
			}
		case r.DistrictComparison.Status != "":
			parts = append(parts, fmt.Sprintf("Data for %s was not available for district comparison.", r.PreviousDate))
		case r.PreviousError != "":
			parts = append(parts, fmt.Sprintf("Could not retrieve comparison data for %s from %s due to error.",
				r.District, r.PreviousDate))
		}
		parts = append(parts, "Detailed current district data includes financial progress metrics and NRM work type breakdown.")
	} else {
		parts = append(parts, fmt.Sprintf(
			"Could not retrieve specific %s performance data for %s on %s.",
			r.Component, r.District, r.ReportDate))
		if r.CurrentError != "" {
			parts = append(parts, fmt.Sprintf("(Error: %s)", r.CurrentError))
		}
	}

	if len(r.Blocks) > 0 {
		anyChanged := false
		for _, b := range r.Blocks {
			if len(b.Changes) > 0 {
				anyChanged = true
				break
			}
		}
		parts = append(parts, fmt.Sprintf("Block-level data for %d blocks within %s:", len(r.Blocks), r.District))
		parts = append(parts, fmt.Sprintf(
			"- Shows the total number of completed NRM works by category as of today (%s).", r.ReportDate))
		if anyChanged {
			parts = append(parts, fmt.Sprintf(
				"- Also shows the CHANGE in completed works for each category compared to the previous day (%s) (only categories with changes listed).",
				r.PreviousDate))
		} else {
			parts = append(parts,
				"- No changes in completed works per category were observed compared to the previous day (or previous data was unavailable).")
		}
		parts = append(parts, "Note: Panchayat-level data is not available from this performance endpoint.")
	}

	if top := r.StateSummary.ByScore.Top; top != nil {
		bottom := r.StateSummary.ByScore.Bottom
		parts = append(parts, fmt.Sprintf("State-wide summary for %s:", r.ReportDate))
		parts = append(parts, fmt.Sprintf("- Top performer by Overall Score: %s (%.2f). Bottom: %s (%.2f).",
			top.Name, top.Score, bottom.Name, bottom.Score))
		if topC, botC := r.StateSummary.ByCount.Top, r.StateSummary.ByCount.Bottom; topC != nil && botC != nil {
			parts = append(parts, fmt.Sprintf("- Highest Total Completed NRM Work Count: %s (%s). Lowest: %s (%s).",
				topC.Name, humanize.Comma(int64(topC.TotalCompleted)),
				botC.Name, humanize.Comma(int64(botC.TotalCompleted))))
		}
	} else if r.CurrentError == "" {
		parts = append(parts, fmt.Sprintf("State-level comparison data could not be generated for %s.", r.ReportDate))
	}

	var leaders []string
	for _, cat := range NRMCategories {
		leader, ok := r.CategoryLeaders[cat]
		if !ok || leader.Name == "N/A" || leader.Details == nil {
			continue
		}
		leaders = append(leaders, fmt.Sprintf("%s: %s (Marks: %.2f)", cat, leader.Name, leader.Details.Marks))
	}
	if len(leaders) > 0 {
		parts = append(parts, fmt.Sprintf("State Leaders by Marks (as of %s) within specific NRM categories:", r.ReportDate))
		parts = append(parts, "- "+strings.Join(leaders, "; ")+".")
	}

	return strings.Join(parts, " ")
}
