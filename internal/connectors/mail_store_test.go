package connectors

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quoteflow/internal"
	"quoteflow/internal/storage"
)

func TestMailStoreQueuesInquiry(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "mail.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rawMailDir := filepath.Join(dir, "raw_mail")
	inboxDir := filepath.Join(dir, "inbox")
	svc := NewMailStoreService(db, rawMailDir, inboxDir)

	msg := internal.FetchedMailMessage{
		Provider:   "imap",
		MessageID:  "<msg-1>",
		Subject:    "Widget order",
		From:       "John Smith <john@example.com>",
		ReceivedAt: "2026-08-28T10:00:00Z",
		Raw: []byte("From: John Smith <john@example.com>\r\n" +
			"Subject: Widget order\r\n" +
			"Content-Type: text/plain\r\n" +
			"\r\n" +
			"I need 10 Widget Pro pieces.\r\n"),
	}

	row, err := svc.Store(msg)
	if err != nil {
		t.Fatal(err)
	}
	if row.Status != "queued" {
		t.Fatalf("status=%s", row.Status)
	}

	if _, err := os.Stat(row.RawRef); err != nil {
		t.Fatalf("raw copy missing: %v", err)
	}
	inboxBytes, err := os.ReadFile(row.InboxRef)
	if err != nil {
		t.Fatalf("inbox copy missing: %v", err)
	}
	if !strings.Contains(string(inboxBytes), "I need 10 Widget Pro pieces.") {
		t.Fatalf("inbox text=%q", inboxBytes)
	}

	// Same message again lands on the same ledger row and files.
	again, err := svc.Store(msg)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != row.ID || again.InboxRef != row.InboxRef {
		t.Fatalf("first=%+v second=%+v", row, again)
	}
}
