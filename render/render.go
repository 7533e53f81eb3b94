// Package render turns a finished dashboard result into a standalone HTML
// page. The template is embedded so the binary has no runtime assets.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed dashboard.html.tmpl
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "dashboard.html.tmpl"))

// GradeBadge is a qualitative grade with its CSS class.
type GradeBadge struct {
	Label string
	Class string
}

// KPICard is one headline figure with its day-over-day movement.
type KPICard struct {
	Title  string
	Value  string
	Change string
}

// BlockRow is one block's count line in a component table.
type BlockRow struct {
	Name   string
	Count  string
	Change string
}

// ComponentView is one program component's section of the page.
type ComponentView struct {
	Name        string
	Grade       GradeBadge
	Score       string
	Count       string
	Explanation string
	Blocks      []BlockRow
}

// Page is everything the dashboard template needs.
type Page struct {
	District        string
	ReportDate      string
	GeneratedAt     string
	OverallGrade    GradeBadge
	Rank            string
	TotalMarks      string
	Cards           []KPICard
	Components      []ComponentView
	Recommendations []string
	Narrative       string
}

// Dashboard writes the HTML page for p to w.
func Dashboard(w io.Writer, p *Page) error {
	if p == nil {
		return fmt.Errorf("render dashboard: nil page")
	}
	if err := dashboardTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}
