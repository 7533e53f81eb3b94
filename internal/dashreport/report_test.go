package dashreport

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"jsmdash/config"
	"jsmdash/store"
)

type stubFetcher struct {
	responses map[string]string
}

func stubKey(path string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := []string{path}
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, "&")
}

func (s *stubFetcher) JSON(_ context.Context, path string, params map[string]string) (any, error) {
	body, ok := s.responses[stubKey(path, params)]
	if !ok {
		return nil, fmt.Errorf("no data for %s", stubKey(path, params))
	}
	var tree any
	if err := json.Unmarshal([]byte(body), &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

const (
	fixtureDate = "2026-08-30"
	fixturePrev = "2026-08-29"
)

func dashboardFixture() *stubFetcher {
	marks := func(name string, marks float64, count int) string {
		return fmt.Sprintf(`{"name": %q, "marks": %v, "actual_count": %d}`, name, marks, count)
	}
	mybharat := func(name string, marks float64, count int) string {
		return fmt.Sprintf(`{"district": %q, "marks": %v, "total_count": %d}`, name, marks, count)
	}
	perf := func(name string, target, payment float64, completed int) string {
		return fmt.Sprintf(`{"name": %q, "target_marks": %v, "payment_marks": %v,
			"payment_details": {"baseline_pending_for_calc": 25000000, "current_pending": 10000000, "reduction_percentage": 60.0},
			"categories": {"Talab Nirman": {"target": 20, "completed": %d, "achievement_percentage": 50.0, "marks": 5.0}},
			"category_counts": {"Talab Nirman": %d}}`, name, target, payment, completed, completed)
	}
	list := func(key string, items ...string) string {
		return fmt.Sprintf(`{%q: [%s]}`, key, strings.Join(items, ","))
	}

	r := map[string]string{}
	for _, date := range []string{fixtureDate, fixturePrev} {
		dp := map[string]string{"date": date}
		r[stubKey("/report_jsm/farm-ponds-marks", dp)] =
			list("results", marks("SEHORE", 24.5, 120), marks("BHOPAL", 28, 200))
		r[stubKey("/report_jsm/dugwell-marks", dp)] =
			list("results", marks("SEHORE", 15, 40), marks("BHOPAL", 16, 60))
		r[stubKey("/report_jsm/mybharat/gender-stats", dp)] =
			list("districts_data", mybharat("SEHORE", 8, 500), mybharat("BHOPAL", 6, 400))
		r[stubKey("/report_jsm/performance-marks", dp)] =
			list("results", perf("SEHORE", 9, 7.75, 14), perf("BHOPAL", 10, 9, 20))

		// Block drill-down for the components that support it.
		bp := map[string]string{"district": "SEHORE", "date": date}
		r[stubKey("/report_jsm/farm-ponds-marks", bp)] =
			list("results", marks("ASHTA", 0, 70), marks("ICHHAWAR", 0, 50))
		r[stubKey("/report_jsm/dugwell-marks", bp)] =
			list("results", marks("ASHTA", 0, 25), marks("ICHHAWAR", 0, 15))
		r[stubKey("/report_jsm/performance-marks", bp)] = list("results",
			`{"name": "ASHTA", "categories": {"Talab Nirman": {"completed": 8}}}`,
			`{"name": "ICHHAWAR", "categories": {"Talab Nirman": {"completed": 6}}}`)
	}
	r[stubKey("/report_jsm/amritsarovar-stats", nil)] =
		list("details", marks("SEHORE", 18, 30), marks("BHOPAL", 12, 20))
	r[stubKey("/report_jsm/blocks", map[string]string{"district": "SEHORE"})] =
		`{"blocks": ["ASHTA", "ICHHAWAR"]}`
	return &stubFetcher{responses: r}
}

func fixtureOptions(t *testing.T) (Options, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Report.OutputDir = dir
	cfg.Database.Path = filepath.Join(dir, "runs.db")
	date, err := time.Parse("2006-01-02", fixtureDate)
	if err != nil {
		t.Fatalf("parse fixture date: %v", err)
	}
	return Options{
		District: "sehore",
		Date:     date,
		Config:   cfg,
		Fetcher:  dashboardFixture(),
		NoLLM:    true,
	}, cfg
}

func TestGenerateDashboard(t *testing.T) {
	opts, _ := fixtureOptions(t)
	result, err := Generate(context.Background(), opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	dash := result.Dashboard
	if dash.District != "SEHORE" || dash.ReportDate != fixtureDate {
		t.Fatalf("header: %+v", dash)
	}
	if len(dash.Components) != 4 {
		t.Fatalf("components = %d, want 4", len(dash.Components))
	}
	if dash.OldWorks == nil {
		t.Fatal("old works section missing")
	}
	if len(dash.Errors) != 0 {
		t.Fatalf("unexpected section errors: %v", dash.Errors)
	}

	// 16.75 of 20 marks sits in the 70 percent absolute band.
	if dash.OldWorks.Grade.Label != "अच्छा" {
		t.Fatalf("old works grade = %q", dash.OldWorks.Grade.Label)
	}
	for _, c := range dash.Components {
		if c.Grade.Label == "" || !strings.HasPrefix(c.Grade.Class, "grade-badge") {
			t.Fatalf("%s grade badge: %+v", c.Key, c.Grade)
		}
	}
	if dash.OverallGrade.Label == "" {
		t.Fatal("overall grade missing")
	}

	if dash.KPI == nil || dash.KPI.KPIs.TotalMarks.Current == nil {
		t.Fatal("kpi total marks missing")
	}
	if got := *dash.KPI.KPIs.TotalMarks.Current; got != 82.25 {
		t.Fatalf("total marks = %v, want 82.25", got)
	}
	if len(dash.Recommendations) == 0 {
		t.Fatal("no recommendations")
	}
}

func TestGenerateWritesOutputs(t *testing.T) {
	opts, cfg := fixtureOptions(t)
	result, err := Generate(context.Background(), opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	jsonBytes, err := os.ReadFile(result.JSONPath)
	if err != nil {
		t.Fatalf("read JSON output: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(jsonBytes, &decoded); err != nil {
		t.Fatalf("decode JSON output: %v", err)
	}
	if decoded["district"] != "SEHORE" {
		t.Fatalf("JSON district = %v", decoded["district"])
	}
	if _, ok := decoded["district_kpis"]; !ok {
		t.Fatal("JSON output missing district_kpis")
	}

	htmlBytes, err := os.ReadFile(result.HTMLPath)
	if err != nil {
		t.Fatalf("read HTML output: %v", err)
	}
	html := string(htmlBytes)
	for _, want := range []string{"SEHORE", "grade-badge", "Farm Ponds", "ASHTA"} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}

	if result.RunID == "" {
		t.Fatal("run was not stored")
	}
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	meta, stored, err := st.GetRun(context.Background(), result.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if meta.District != "SEHORE" || meta.ReportDate != fixtureDate {
		t.Fatalf("stored meta: %+v", meta)
	}
	if len(stored) != len(jsonBytes) {
		t.Fatalf("stored payload differs: %d vs %d bytes", len(stored), len(jsonBytes))
	}
}

func TestGenerateDegradesWithoutBlockList(t *testing.T) {
	opts, _ := fixtureOptions(t)
	fetcher := opts.Fetcher.(*stubFetcher)
	delete(fetcher.responses, stubKey("/report_jsm/blocks", map[string]string{"district": "SEHORE"}))

	result, err := Generate(context.Background(), opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Dashboard.OldWorks != nil {
		t.Fatal("old works section should be absent")
	}
	found := false
	for _, e := range result.Dashboard.Errors {
		if strings.HasPrefix(e, "old_works:") {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors = %v, want old_works entry", result.Dashboard.Errors)
	}
}

func TestGenerateRequiresDistrict(t *testing.T) {
	opts, cfg := fixtureOptions(t)
	opts.District = ""
	cfg.Report.District = ""
	if _, err := Generate(context.Background(), opts); err == nil {
		t.Fatal("expected error without a district")
	}
}

func TestRecommendationsPaymentNudge(t *testing.T) {
	opts, _ := fixtureOptions(t)
	result, err := Generate(context.Background(), opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// Payment marks trail target marks in the fixture.
	found := false
	for _, rec := range result.Dashboard.Recommendations {
		if strings.Contains(rec, "Payment progress") {
			found = true
		}
	}
	if !found {
		t.Fatalf("recommendations = %v, want payment nudge", result.Dashboard.Recommendations)
	}
}
