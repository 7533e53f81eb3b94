// Package logging tees the process log to the console and an optional file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"jsmdash/config"
)

// Fanout duplicates log writes to a console writer and an append-only file.
// Either sink may be absent. It is safe for concurrent use, matching the
// stdlib log package's locking around single Write calls.
type Fanout struct {
	mu      sync.Mutex
	console io.Writer
	file    *os.File
}

// Setup builds a Fanout from the logging config. A "quiet" level suppresses
// console output so only the file receives log lines. File setup failures
// return an error alongside a console-only fanout the caller can still use.
func Setup(cfg config.LoggingConfig, console io.Writer) (*Fanout, error) {
	f := &Fanout{console: console}
	if strings.EqualFold(strings.TrimSpace(cfg.Level), "quiet") {
		f.console = nil
	}
	path := strings.TrimSpace(cfg.File)
	if path == "" {
		return f, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return f, fmt.Errorf("create log directory %q: %w", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return f, fmt.Errorf("open log file %q: %w", path, err)
	}
	f.file = file
	return f, nil
}

func (f *Fanout) Write(p []byte) (int, error) {
	if f == nil {
		return len(p), nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.console != nil {
		_, _ = f.console.Write(p)
	}
	if f.file != nil {
		_, _ = f.file.Write(p)
	}
	return len(p), nil
}

// Close releases the file sink. Safe for repeated calls.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
