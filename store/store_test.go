package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs", "report_runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	body := []byte(`{"district_name": "SEHORE"}`)
	id, err := s.SaveRun(ctx, "SEHORE", "2026-08-30", body)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id == "" {
		t.Fatal("empty run id")
	}

	meta, got, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if meta.District != "SEHORE" || meta.ReportDate != "2026-08-30" {
		t.Fatalf("meta: %+v", meta)
	}
	if string(got) != string(body) {
		t.Fatalf("body = %s", got)
	}
	if meta.CreatedAt.IsZero() {
		t.Fatal("created_at not recorded")
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, _, err := s.GetRun(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, run := range []struct{ district, date string }{
		{"SEHORE", "2026-08-28"},
		{"SEHORE", "2026-08-29"},
		{"RAISEN", "2026-08-29"},
	} {
		if _, err := s.SaveRun(ctx, run.district, run.date, []byte("{}")); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	all, err := s.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all runs = %d", len(all))
	}

	sehore, err := s.ListRuns(ctx, "SEHORE", 0)
	if err != nil {
		t.Fatalf("ListRuns district: %v", err)
	}
	if len(sehore) != 2 {
		t.Fatalf("sehore runs = %d", len(sehore))
	}

	limited, err := s.ListRuns(ctx, "", 1)
	if err != nil {
		t.Fatalf("ListRuns limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limited runs = %d", len(limited))
	}
}

func TestDeleteOlderThan(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveRun(ctx, "SEHORE", "2026-08-30", []byte("{}")); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	n, err := s.DeleteOlderThan(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if n != 0 {
		t.Fatalf("deleted %d fresh runs", n)
	}

	n, err = s.DeleteOlderThan(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if n != 1 {
		t.Fatalf("deleted %d, want 1", n)
	}
}
