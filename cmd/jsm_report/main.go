package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"jsmdash/config"
	"jsmdash/internal/dashreport"
	"jsmdash/logging"
)

func main() {
	districtFlag := flag.String("district", "", "District to report on (defaults to report.district from config)")
	dateFlag := flag.String("date", "", "Report date (YYYY-MM-DD, defaults to today UTC)")
	configFlag := flag.String("config", "", "Path to YAML config (defaults apply when omitted)")
	jsonOutFlag := flag.String("json-out", "", "Output JSON path (defaults to <output_dir>/report-<district>-<date>.json)")
	htmlOutFlag := flag.String("html-out", "", "Output HTML path (defaults to <output_dir>/dashboard-<district>-<date>.html)")
	outDirFlag := flag.String("out", "", "Override the configured output directory")
	noLLMFlag := flag.Bool("no-llm", false, "Disable the OpenAI narrative")
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
	if *outDirFlag != "" {
		cfg.Report.OutputDir = *outDirFlag
	}

	logSink, err := logging.Setup(cfg.Logging, os.Stderr)
	if err != nil {
		log.Printf("Warning: file logging unavailable: %v", err)
	}
	log.SetOutput(logSink)
	defer logSink.Close()

	date := time.Now().UTC()
	if *dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			log.Fatalf("Invalid date %q: %v", *dateFlag, err)
		}
		date = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := dashreport.Generate(ctx, dashreport.Options{
		District: *districtFlag,
		Date:     date,
		Config:   cfg,
		JSONOut:  *jsonOutFlag,
		HTMLOut:  *htmlOutFlag,
		NoLLM:    *noLLMFlag,
		Logger:   log.Default(),
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Wrote report JSON: %s\n", result.JSONPath)
	fmt.Printf("Wrote dashboard: %s\n", result.HTMLPath)
	if result.RunID != "" {
		fmt.Printf("Stored run: %s\n", result.RunID)
	}
}
