package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"quoteflow/internal"
	"quoteflow/internal/artifacts"
	"quoteflow/internal/timeline"
)

func newTestService(t *testing.T) (*ProcessingService, *artifacts.Store) {
	t.Helper()
	store, err := artifacts.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	log := timeline.NewLogger(store.TimelinePath())
	return NewProcessingService(testConfig(), testCatalog(), store, log), store
}

func writeInbox(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessFileEndToEnd(t *testing.T) {
	svc, store := newTestService(t)
	inbox := t.TempDir()
	path := writeInbox(t, inbox, "inquiry.txt", `From: John Smith <john@example.com>

I need 10 Widget Pro pieces urgently. Please quote in USD.
`)

	res, err := svc.ProcessFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped || res.Status != internal.QuoteComplete {
		t.Fatalf("result=%+v", res)
	}

	quote, err := store.ReadQuote(res.EmailID)
	if err != nil {
		t.Fatal(err)
	}
	if quote.Total != 246.38 {
		t.Fatalf("total=%v", quote.Total)
	}

	event, err := store.ReadEvent(res.EmailID)
	if err != nil {
		t.Fatal(err)
	}
	if len(event.Products) != 1 || event.Products[0].Name != "Widget Pro" {
		t.Fatalf("event=%+v", event)
	}
}

func TestProcessFileIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	inbox := t.TempDir()
	path := writeInbox(t, inbox, "inquiry.txt", "Need 2 Tool Kit please.")

	first, err := svc.ProcessFile(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.ProcessFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if first.Skipped || !second.Skipped {
		t.Fatalf("first=%+v second=%+v", first, second)
	}
	if first.EmailID != second.EmailID {
		t.Fatalf("ids differ: %s vs %s", first.EmailID, second.EmailID)
	}
}

func TestProcessInboxIsolatesFailures(t *testing.T) {
	svc, store := newTestService(t)
	inbox := t.TempDir()
	writeInbox(t, inbox, "a_good.txt", "Need 4 Widget Pro.")
	writeInbox(t, inbox, "b_empty.txt", "   \n  ")
	writeInbox(t, inbox, "c_vague.txt", "Hello, can someone call me back?")

	res, err := svc.ProcessInbox(inbox)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 3 || res.Processed != 2 || res.Failed != 1 || res.Skipped != 0 {
		t.Fatalf("result=%+v", res)
	}

	// The vague email still produced a pending quote rather than an error.
	ids, err := store.ListQuoteIDs()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("quote ids=%v", ids)
	}
}

func TestProcessInboxMissingDir(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.ProcessInbox(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing inbox directory")
	}
}
