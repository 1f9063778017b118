package storage

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "mail.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUpsertEmailDeduplicates(t *testing.T) {
	db := openTestDB(t)

	first, err := db.UpsertEmail("gmail", "<msg-1>", "Quote request", "john@example.com", "2026-08-28T10:00:00Z", "hash1", "/raw/a.eml", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.UpsertEmail("gmail", "<msg-1>", "Quote request (edited)", "john@example.com", "2026-08-28T10:05:00Z", "hash2", "/raw/b.eml", "fetched")
	if err != nil {
		t.Fatal(err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected same row, got ids %d and %d", first.ID, second.ID)
	}
	if second.Subject != "Quote request (edited)" || second.Hash != "hash2" {
		t.Fatalf("row=%+v", second)
	}
}

func TestEmailStatusFlow(t *testing.T) {
	db := openTestDB(t)

	row, err := db.UpsertEmail("imap", "<msg-2>", "Inquiry", "jane@example.com", "2026-08-28T11:00:00Z", "hash3", "/raw/c.eml", "fetched")
	if err != nil {
		t.Fatal(err)
	}

	if err := db.SetEmailInboxRef(row.ID, "/inbox/hash3.txt"); err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateEmailStatus(row.ID, "queued"); err != nil {
		t.Fatal(err)
	}

	queued, err := db.ListEmailsByStatus("queued", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(queued) != 1 || queued[0].InboxRef != "/inbox/hash3.txt" {
		t.Fatalf("queued=%+v", queued)
	}

	fetched, err := db.ListEmailsByStatus("fetched", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(fetched) != 0 {
		t.Fatalf("fetched=%+v", fetched)
	}
}

func TestGetEmailMissing(t *testing.T) {
	db := openTestDB(t)

	row, err := db.GetEmailByProviderMessageID("gmail", "<nope>")
	if err != nil {
		t.Fatal(err)
	}
	if row != nil {
		t.Fatalf("row=%+v", row)
	}

	if _, err := db.MustEmailByProviderMessageID("gmail", "<nope>"); err == nil {
		t.Fatal("expected error for missing email")
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if err := db.SetMetadata("lastPoll", "2026-08-28T12:00:00Z"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("lastPoll", "2026-08-28T12:30:00Z"); err != nil {
		t.Fatal(err)
	}

	value, err := db.GetMetadata("lastPoll")
	if err != nil {
		t.Fatal(err)
	}
	if value == nil || *value != "2026-08-28T12:30:00Z" {
		t.Fatalf("value=%v", value)
	}

	missing, err := db.GetMetadata("nope")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("missing=%v", *missing)
	}
}
