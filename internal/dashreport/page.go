package dashreport

import (
	"fmt"

	"jsmdash/component"
	"jsmdash/kpi"
	"jsmdash/render"
)

// recommendations derives the advice list from the finished sections. The
// rules are deterministic so two runs over the same data agree.
func recommendations(dash *Dashboard) []string {
	var recs []string

	type scored struct {
		name  string
		score float64
		max   float64
	}
	var weakest *scored
	consider := func(name string, score, max float64) {
		if max <= 0 {
			return
		}
		s := scored{name: name, score: score, max: max}
		if weakest == nil || s.score/s.max < weakest.score/weakest.max {
			weakest = &s
		}
	}
	for _, c := range dash.Components {
		if cur := c.DistrictComparison.Current; cur != nil {
			consider(c.Component, cur.Score, c.MaxMarks)
		}
	}
	if dash.OldWorks != nil {
		if cur := dash.OldWorks.DistrictComparison.Current; cur != nil {
			consider(dash.OldWorks.Component, cur.Score, dash.OldWorks.MaxMarks)
		}
	}
	if weakest != nil {
		pct := weakest.score / weakest.max * 100
		if pct < 70 {
			recs = append(recs, fmt.Sprintf(
				"Focus on %s: %.2f of %.0f marks (%.0f%%), the weakest component today.",
				weakest.name, weakest.score, weakest.max, pct))
		}
	}

	if dash.KPI != nil {
		if ch := dash.KPI.KPIs.Rank.Change; ch != nil && *ch < 0 {
			recs = append(recs, fmt.Sprintf(
				"District rank fell by %d place(s) since %s; review the day's declines.",
				-*ch, dash.KPI.PreviousDate))
		}
	}

	if dash.OldWorks != nil {
		if cur := dash.OldWorks.DistrictComparison.Current; cur != nil && cur.PaymentMarks < cur.TargetMarks {
			recs = append(recs, fmt.Sprintf(
				"Payment progress (%.2f marks) trails target achievement (%.2f marks); clearing pending payments lifts the old works score.",
				cur.PaymentMarks, cur.TargetMarks))
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "All components are holding steady; maintain the current pace of work.")
	}
	return recs
}

// buildPage maps the dashboard into the template's view model.
func buildPage(dash *Dashboard) *render.Page {
	page := &render.Page{
		District:        dash.District,
		ReportDate:      dash.ReportDate,
		GeneratedAt:     dash.GeneratedAt,
		OverallGrade:    render.GradeBadge(dash.OverallGrade),
		Rank:            "N/A",
		TotalMarks:      "N/A",
		Recommendations: dash.Recommendations,
		Narrative:       dash.Narrative,
	}

	if dash.KPI != nil {
		k := dash.KPI.KPIs
		if k.Rank.Current != nil {
			page.Rank = fmt.Sprintf("%d / %d", *k.Rank.Current, k.Rank.TotalRankedToday)
		}
		if k.TotalMarks.Current != nil {
			page.TotalMarks = fmt.Sprintf("%.2f", *k.TotalMarks.Current)
		}
		page.Cards = []render.KPICard{
			kpiCard("Farm Ponds", k.FarmPondsCompleted),
			kpiCard("Dugwell Recharge", k.DugwellRechargeCompleted),
			kpiCard("Amrit Sarovar", k.AmritSarovarCompleted),
			kpiCard("Old Works", k.OldWorkCompleted),
			kpiCard("MyBharat Volunteers", k.MyBharatCompleted),
		}
	}

	for _, c := range dash.Components {
		page.Components = append(page.Components, componentView(c))
	}
	if dash.OldWorks != nil {
		page.Components = append(page.Components, oldWorksView(dash.OldWorks))
	}
	return page
}

func kpiCard(title string, v kpi.Value) render.KPICard {
	card := render.KPICard{Title: title, Value: "N/A"}
	if v.Current != nil {
		card.Value = fmt.Sprintf("%.0f", *v.Current)
	}
	if v.Change != nil {
		if *v.Change == 0 {
			card.Change = "No change vs previous day"
		} else {
			card.Change = fmt.Sprintf("%+.0f vs previous day", *v.Change)
		}
	}
	return card
}

func componentView(c ComponentSection) render.ComponentView {
	view := render.ComponentView{
		Name:        c.Component,
		Grade:       render.GradeBadge(c.Grade),
		Score:       "N/A",
		Explanation: c.Explanation,
	}
	if cur := c.DistrictComparison.Current; cur != nil {
		view.Score = fmt.Sprintf("%.2f / %.0f", cur.Score, c.MaxMarks)
		view.Count = fmt.Sprintf("%d", cur.Count)
	}
	for _, b := range c.Blocks {
		view.Blocks = append(view.Blocks, blockRow(b))
	}
	return view
}

func blockRow(b component.BlockComparison) render.BlockRow {
	row := render.BlockRow{
		Name:   b.Name,
		Count:  fmt.Sprintf("%d", b.CountToday),
		Change: "new",
	}
	if b.PreviousCount != nil {
		diff := b.CountToday - *b.PreviousCount
		if diff == 0 {
			row.Change = "0"
		} else {
			row.Change = fmt.Sprintf("%+d", diff)
		}
	}
	return row
}

func oldWorksView(o *OldWorksSection) render.ComponentView {
	view := render.ComponentView{
		Name:        o.Component,
		Grade:       render.GradeBadge(o.Grade),
		Score:       "N/A",
		Explanation: o.Explanation,
	}
	if cur := o.DistrictComparison.Current; cur != nil {
		view.Score = fmt.Sprintf("%.2f / %.0f", cur.Score, o.MaxMarks)
		view.Count = fmt.Sprintf("%d", cur.TotalCompleted)
	}
	return view
}
