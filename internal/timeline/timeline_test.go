package timeline

import (
	"path/filepath"
	"testing"
)

func TestLoggerRoundTrip(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "activity.jsonl"))

	if err := logger.Log("start", "abc123", "Processing: inquiry.txt"); err != nil {
		t.Fatal(err)
	}
	if err := logger.Log("quote", "abc123", "Generated complete quote"); err != nil {
		t.Fatal(err)
	}
	if err := logger.Log("error", "def456", "Failed to process"); err != nil {
		t.Fatal(err)
	}

	recent, err := logger.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[1].Action != "error" {
		t.Fatalf("recent=%+v", recent)
	}

	byEmail, err := logger.ByEmail("abc123")
	if err != nil {
		t.Fatal(err)
	}
	if len(byEmail) != 2 {
		t.Fatalf("byEmail len=%d", len(byEmail))
	}

	byAction, err := logger.ByAction("quote")
	if err != nil {
		t.Fatal(err)
	}
	if len(byAction) != 1 || byAction[0].Message != "Generated complete quote" {
		t.Fatalf("byAction=%+v", byAction)
	}

	stats, err := logger.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalEntries != 3 || stats.UniqueEmails != 2 || stats.Errors != 1 {
		t.Fatalf("stats=%+v", stats)
	}
}

func TestLoggerMissingFile(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "nope.jsonl"))
	entries, err := logger.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
