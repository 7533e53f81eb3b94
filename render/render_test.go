package render

import (
	"strings"
	"testing"
)

func TestDashboardRendersPage(t *testing.T) {
	page := &Page{
		District:     "SEHORE",
		ReportDate:   "2025-06-15",
		GeneratedAt:  "2025-06-15T10:00:00Z",
		OverallGrade: GradeBadge{Label: "अच्छा", Class: "grade-badge good"},
		Rank:         "3 / 52",
		TotalMarks:   "78.25",
		Cards: []KPICard{
			{Title: "Farm Ponds", Value: "120", Change: "+10 vs previous day"},
		},
		Components: []ComponentView{
			{
				Name:        "Farm Ponds",
				Grade:       GradeBadge{Label: "उत्कृष्ट", Class: "grade-badge excellent"},
				Score:       "24.50 / 30",
				Count:       "120 units",
				Explanation: "On 2025-06-15, SEHORE reported 120 units.",
				Blocks: []BlockRow{
					{Name: "ASHTA", Count: "70", Change: "+5"},
				},
			},
		},
		Recommendations: []string{"Focus on Dugwell Recharge."},
		Narrative:       "A short narrative.",
	}

	var b strings.Builder
	if err := Dashboard(&b, page); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	html := b.String()

	for _, want := range []string{
		"SEHORE",
		"grade-badge excellent",
		"उत्कृष्ट",
		"24.50 / 30",
		"ASHTA",
		"Focus on Dugwell Recharge.",
		"A short narrative.",
		"3 / 52",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}

func TestDashboardEscapesValues(t *testing.T) {
	page := &Page{
		District:   "X<script>alert(1)</script>",
		ReportDate: "2025-06-15",
	}
	var b strings.Builder
	if err := Dashboard(&b, page); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if strings.Contains(b.String(), "<script>alert(1)</script>") {
		t.Fatal("district name was not escaped")
	}
}

func TestDashboardNilPage(t *testing.T) {
	var b strings.Builder
	if err := Dashboard(&b, nil); err == nil {
		t.Fatal("expected error for nil page")
	}
}
