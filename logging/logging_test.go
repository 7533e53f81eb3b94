package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jsmdash/config"
)

func TestSetupTeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "report.log")
	var console strings.Builder

	f, err := Setup(config.LoggingConfig{File: path}, &console)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if _, err := f.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if console.String() != "hello\n" {
		t.Fatalf("console = %q", console.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if string(data) != "hello\n" {
		t.Fatalf("file = %q", data)
	}
}

func TestSetupQuietSuppressesConsole(t *testing.T) {
	var console strings.Builder
	f, err := Setup(config.LoggingConfig{Level: "quiet"}, &console)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	_, _ = f.Write([]byte("noise\n"))
	if console.String() != "" {
		t.Fatalf("console should be empty, got %q", console.String())
	}
}

func TestSetupConsoleOnlyWithoutFile(t *testing.T) {
	var console strings.Builder
	f, err := Setup(config.LoggingConfig{}, &console)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	_, _ = f.Write([]byte("line\n"))
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if console.String() != "line\n" {
		t.Fatalf("console = %q", console.String())
	}
}
