// component_analysis runs a single program component's analysis and prints
// or writes the JSON result, without building the full dashboard.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"jsmdash/component"
	"jsmdash/config"
	"jsmdash/fetch"
)

func main() {
	componentFlag := flag.String("component", "", "Component key: farm_ponds, dugwell, amrit_sarovar, mybharat or old_works")
	districtFlag := flag.String("district", "", "District to analyze (defaults to report.district from config)")
	dateFlag := flag.String("date", "", "Report date (YYYY-MM-DD, defaults to today UTC)")
	configFlag := flag.String("config", "", "Path to YAML config (defaults apply when omitted)")
	outFlag := flag.String("o", "", "Output file (defaults to stdout)")
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.LUTC)

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			log.Fatalf("Failed to load config %s: %v", *configFlag, err)
		}
		cfg = loaded
	}

	district := *districtFlag
	if district == "" {
		district = cfg.Report.District
	}
	if district == "" {
		log.Fatal("No district given; pass -district or set report.district in the config")
	}

	reportDate := time.Now().UTC().Format("2006-01-02")
	if *dateFlag != "" {
		if _, err := time.Parse("2006-01-02", *dateFlag); err != nil {
			log.Fatalf("Invalid date %q: %v", *dateFlag, err)
		}
		reportDate = *dateFlag
	}

	fopts := []fetch.Option{fetch.WithLogger(log.Default())}
	if cfg.API.CacheDir != "" {
		fopts = append(fopts, fetch.WithCacheDir(cfg.API.CacheDir))
	}
	fetcher := fetch.New(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, fopts...)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := runComponent(ctx, *componentFlag, fetcher, cfg, district, reportDate)
	if err != nil {
		log.Fatal(err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal result: %v", err)
	}
	if *outFlag == "" {
		fmt.Println(string(out))
		return
	}
	if err := os.WriteFile(*outFlag, append(out, '\n'), 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outFlag, err)
	}
	fmt.Printf("Wrote analysis: %s\n", *outFlag)
}

func runComponent(ctx context.Context, key string, fetcher fetch.Fetcher, cfg *config.Config, district, reportDate string) (any, error) {
	if key == component.OldWorksKey {
		analyzer := component.NewOldWorks(fetcher, log.Default())
		return analyzer.Analyze(ctx, district, reportDate)
	}
	for _, cc := range component.Configs() {
		if cc.Key == key {
			analyzer := component.New(cc, fetcher,
				component.WithLogger(log.Default()),
				component.WithTopPanchayats(cfg.Report.TopPanchayats))
			return analyzer.Analyze(ctx, district, reportDate)
		}
	}
	keys := []string{component.OldWorksKey}
	for _, cc := range component.Configs() {
		keys = append(keys, cc.Key)
	}
	return nil, fmt.Errorf("unknown component %q; valid keys: %s", key, strings.Join(keys, ", "))
}
