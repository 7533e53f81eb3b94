// Package dashreport builds the full district dashboard for one date: the
// KPI block, every program component's analysis, grades, recommendations
// and the rendered HTML page, with the run stored for later retrieval.
package dashreport

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jsmdash/component"
	"jsmdash/config"
	"jsmdash/fetch"
	"jsmdash/grade"
	"jsmdash/internal/openaiutil"
	"jsmdash/kpi"
	"jsmdash/record"
	"jsmdash/render"
	"jsmdash/store"
)

// TotalMaxMarks is the ceiling of a district's combined score: performance
// marks plus the four component marks.
const TotalMaxMarks = 100.0

const dateLayout = "2006-01-02"

type Logger interface {
	Printf(format string, args ...any)
}

type Options struct {
	District string
	Date     time.Time
	Config   *config.Config

	// Fetcher overrides the HTTP client, mainly for tests.
	Fetcher fetch.Fetcher

	JSONOut string
	HTMLOut string
	NoLLM   bool
	Logger  Logger
}

type Result struct {
	JSONPath  string
	HTMLPath  string
	RunID     string
	Dashboard *Dashboard
}

// GradeBadge is a section grade as it appears in the JSON output.
type GradeBadge struct {
	Label string `json:"label"`
	Class string `json:"css_class"`
}

// ComponentSection wraps one config-driven component's analysis with its grade.
type ComponentSection struct {
	*component.Analysis
	Grade GradeBadge `json:"grade"`
}

// OldWorksSection wraps the old-works analysis with its grade.
type OldWorksSection struct {
	*component.OldWorksAnalysis
	Grade GradeBadge `json:"grade"`
}

// Dashboard is the complete report written to JSON and fed to the template.
type Dashboard struct {
	District        string             `json:"district"`
	ReportDate      string             `json:"report_date"`
	GeneratedAt     string             `json:"generated_at"`
	OverallGrade    GradeBadge         `json:"overall_grade"`
	KPI             *kpi.Analysis      `json:"district_kpis"`
	Components      []ComponentSection `json:"components"`
	OldWorks        *OldWorksSection   `json:"old_works"`
	Recommendations []string           `json:"recommendations"`
	Errors          []string           `json:"errors,omitempty"`
	Narrative       string             `json:"llm_narrative,omitempty"`
}

func Generate(ctx context.Context, opts Options) (Result, error) {
	var result Result

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logf := func(format string, args ...any) {
		if opts.Logger != nil {
			opts.Logger.Printf(format, args...)
		}
	}

	district := opts.District
	if district == "" {
		district = cfg.Report.District
	}
	name, ok := record.Name(district)
	if !ok {
		return result, fmt.Errorf("generate dashboard: district name required")
	}

	date := opts.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	reportDate := date.Format(dateLayout)

	fetcher := opts.Fetcher
	if fetcher == nil {
		fopts := []fetch.Option{}
		if cfg.API.CacheDir != "" {
			fopts = append(fopts, fetch.WithCacheDir(cfg.API.CacheDir))
		}
		if opts.Logger != nil {
			fopts = append(fopts, fetch.WithLogger(opts.Logger))
		}
		fetcher = fetch.New(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, fopts...)
	}

	dash := &Dashboard{
		District:    name,
		ReportDate:  reportDate,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	kpiAgg := kpi.NewAggregator(fetcher, opts.Logger)
	kpiResult, err := kpiAgg.Analyze(ctx, name, reportDate)
	if err != nil {
		return result, fmt.Errorf("generate dashboard: %w", err)
	}
	dash.KPI = kpiResult

	for _, cc := range component.Configs() {
		analyzer := component.New(cc, fetcher,
			component.WithLogger(opts.Logger),
			component.WithTopPanchayats(cfg.Report.TopPanchayats))
		analysis, err := analyzer.Analyze(ctx, name, reportDate)
		if err != nil {
			logf("Warning: %s analysis failed: %v", cc.Key, err)
			dash.Errors = append(dash.Errors, fmt.Sprintf("%s: %v", cc.Key, err))
			continue
		}
		dash.Components = append(dash.Components, ComponentSection{
			Analysis: analysis,
			Grade:    componentGrade(analysis),
		})
	}

	oldWorks := component.NewOldWorks(fetcher, opts.Logger)
	owResult, err := oldWorks.Analyze(ctx, name, reportDate)
	if err != nil {
		logf("Warning: old works analysis failed: %v", err)
		dash.Errors = append(dash.Errors, fmt.Sprintf("%s: %v", component.OldWorksKey, err))
	} else {
		dash.OldWorks = &OldWorksSection{
			OldWorksAnalysis: owResult,
			Grade:            oldWorksGrade(owResult),
		}
	}

	dash.OverallGrade = overallGrade(kpiResult)
	dash.Recommendations = recommendations(dash)

	if cfg.OpenAI.Enabled && !opts.NoLLM {
		dash.Narrative = llmNarrative(ctx, cfg, dash, logf)
	}

	jsonBytes, err := json.MarshalIndent(dash, "", "  ")
	if err != nil {
		return result, fmt.Errorf("generate dashboard: marshal: %w", err)
	}

	slug := districtSlug(name)
	jsonOut := opts.JSONOut
	if jsonOut == "" {
		jsonOut = filepath.Join(cfg.Report.OutputDir, fmt.Sprintf("report-%s-%s.json", slug, reportDate))
	}
	htmlOut := opts.HTMLOut
	if htmlOut == "" {
		htmlOut = filepath.Join(cfg.Report.OutputDir, fmt.Sprintf("dashboard-%s-%s.html", slug, reportDate))
	}

	if err := writeFile(jsonOut, jsonBytes); err != nil {
		return result, err
	}

	htmlFile, err := createFile(htmlOut)
	if err != nil {
		return result, err
	}
	renderErr := render.Dashboard(htmlFile, buildPage(dash))
	if closeErr := htmlFile.Close(); renderErr == nil {
		renderErr = closeErr
	}
	if renderErr != nil {
		return result, fmt.Errorf("generate dashboard: %w", renderErr)
	}

	if cfg.Database.Path != "" {
		runID, err := saveRun(ctx, cfg.Database.Path, name, reportDate, jsonBytes)
		if err != nil {
			logf("Warning: failed to store report run: %v", err)
		} else {
			result.RunID = runID
		}
	}

	result.JSONPath = jsonOut
	result.HTMLPath = htmlOut
	result.Dashboard = dash
	return result, nil
}

func saveRun(ctx context.Context, dbPath, district, reportDate string, reportJSON []byte) (string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()
	return st.SaveRun(ctx, district, reportDate, reportJSON)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func districtSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

func badge(b grade.Band) GradeBadge {
	return GradeBadge{Label: b.Label(), Class: b.Class()}
}

func componentGrade(a *component.Analysis) GradeBadge {
	current := a.DistrictComparison.Current
	if current == nil {
		return badge(grade.NotApplicable)
	}
	return badge(grade.Of(current.Score, a.MaxMarks, cohortStats(a.StateStats.Score.Mean, a.StateStats.Score.Median)))
}

func oldWorksGrade(a *component.OldWorksAnalysis) GradeBadge {
	current := a.DistrictComparison.Current
	if current == nil {
		return badge(grade.NotApplicable)
	}
	return badge(grade.Of(current.Score, a.MaxMarks, nil))
}

func overallGrade(a *kpi.Analysis) GradeBadge {
	if a == nil || a.KPIs.TotalMarks.Current == nil {
		return badge(grade.NotApplicable)
	}
	stats := cohortStats(a.StateContext.TotalMarks.Average, a.StateContext.TotalMarks.Median)
	return badge(grade.Of(*a.KPIs.TotalMarks.Current, TotalMaxMarks, stats))
}

func cohortStats(average, median *float64) *grade.StateStats {
	if average == nil || median == nil {
		return nil
	}
	return &grade.StateStats{Average: *average, Median: *median}
}

func llmNarrative(ctx context.Context, cfg *config.Config, dash *Dashboard, logf func(string, ...any)) string {
	payload, err := json.Marshal(dash)
	if err != nil {
		logf("Warning: failed to marshal dashboard for narrative: %v", err)
		return ""
	}
	timeout := time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	text, err := openaiutil.Generate(reqCtx, openaiutil.Config{
		APIKey:  cfg.OpenAI.ResolveAPIKey(),
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
	}, string(payload))
	if err != nil {
		logf("Warning: OpenAI narrative failed: %v", err)
		return ""
	}
	return text
}
