package kpi

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// explain builds the deterministic KPI narrative.
func (a *Aggregator) explain(r *Analysis) string {
	var parts []string

	rankInfo := r.KPIs.Rank
	rankStr := fmt.Sprintf("for %s on %s: ", r.District, r.ReportDate)
	if rankInfo.Current != nil && rankInfo.TotalRankedToday > 0 {
		rankStr += fmt.Sprintf("Rank %d/%d.", *rankInfo.Current, rankInfo.TotalRankedToday)
		switch {
		case rankInfo.Change != nil && rankInfo.Previous != nil:
			var desc string
			switch {
			case *rankInfo.Change > 0:
				desc = fmt.Sprintf("Improved by %d", *rankInfo.Change)
			case *rankInfo.Change < 0:
				desc = fmt.Sprintf("Declined by %d", -*rankInfo.Change)
			default:
				desc = "No change"
			}
			rankStr += fmt.Sprintf(" (%s from rank %d on %s).", desc, *rankInfo.Previous, r.PreviousDate)
		case rankInfo.Previous == nil:
			rankStr += fmt.Sprintf(" (Previous rank on %s unavailable).", r.PreviousDate)
		}
	} else {
		rankStr += "Rank unavailable."
	}
	parts = append(parts, rankStr)

	marks := r.KPIs.TotalMarks
	if marks.Current != nil {
		markStr := fmt.Sprintf("Total Marks: %.2f.", *marks.Current)
		if marks.Change != nil {
			markStr += fmt.Sprintf(" Change vs %s: %+.2f.", r.PreviousDate, *marks.Change)
		} else {
			markStr += fmt.Sprintf(" Comparison vs %s unavailable.", r.PreviousDate)
		}
		parts = append(parts, markStr)
	} else {
		parts = append(parts, "Total marks unavailable.")
	}

	tm := r.StateContext.TotalMarks
	if tm.CountValidDistricts > 0 {
		stateParts := []string{fmt.Sprintf("State Context (%d districts):", tm.CountValidDistricts)}
		if tm.Top != nil {
			stateParts = append(stateParts, fmt.Sprintf("Highest: %.2f (%s)", tm.Top.Score, tm.Top.Name))
		}
		if tm.Bottom != nil && (tm.Top == nil || tm.Bottom.Name != tm.Top.Name) {
			stateParts = append(stateParts, fmt.Sprintf("Lowest: %.2f (%s)", tm.Bottom.Score, tm.Bottom.Name))
		}
		if tm.Average != nil {
			stateParts = append(stateParts, fmt.Sprintf("Average: %.2f", *tm.Average))
		}
		if tm.Median != nil {
			stateParts = append(stateParts, fmt.Sprintf("Median: %.2f", *tm.Median))
		}
		parts = append(parts, strings.Join(stateParts, " ")+".")
	} else {
		parts = append(parts, fmt.Sprintf("Could not determine state-wide performance context for %s.", r.ReportDate))
	}

	parts = append(parts, "Progress vs Previous Day:")
	changeNotes := formatKPIChanges(r.KPIs)
	if len(changeNotes) > 0 {
		parts = append(parts, changeNotes...)
	} else {
		parts = append(parts, "No component change data available.")
	}

	var errorNotes []string
	if r.FetchErrors.Current != "" {
		errorNotes = append(errorNotes, fmt.Sprintf("current date (%s)", r.ReportDate))
	}
	if r.FetchErrors.Previous != "" {
		errorNotes = append(errorNotes, fmt.Sprintf("previous date (%s)", r.PreviousDate))
	}
	if len(errorNotes) > 0 {
		parts = append(parts, fmt.Sprintf(
			"Note: Fetch errors occurred for %s which may affect results.", strings.Join(errorNotes, " and ")))
	}
	if len(r.Notes) > 0 {
		parts = append(parts, "Data Notes: "+strings.Join(r.Notes, "; "))
	}

	return strings.Join(parts, " ")
}

func formatKPIChanges(k KPIs) []string {
	entries := []struct {
		name  string
		value Value
	}{
		{"Farm Ponds", k.FarmPondsCompleted},
		{"Dugwell Recharge", k.DugwellRechargeCompleted},
		{"Amrit Sarovar", k.AmritSarovarCompleted},
		{"Old Work (Completed)", k.OldWorkCompleted},
		{"MyBharat (Jaldoot)", k.MyBharatCompleted},
	}
	var notes []string
	for _, e := range entries {
		if e.value.Current == nil {
			continue
		}
		s := fmt.Sprintf("%s: %s", e.name, humanize.Comma(int64(*e.value.Current)))
		if ch := e.value.Change; ch != nil {
			switch {
			case *ch > 0:
				s += fmt.Sprintf(" (+%s)", humanize.Comma(int64(*ch)))
			case *ch < 0:
				s += fmt.Sprintf(" (%s)", humanize.Comma(int64(*ch)))
			default:
				s += " (No change)"
			}
		}
		notes = append(notes, s+".")
	}
	return notes
}
