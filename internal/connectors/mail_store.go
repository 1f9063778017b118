package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"quoteflow/internal"
	"quoteflow/internal/storage"
)

// MailStoreService persists each fetched message twice: the untouched
// .eml under rawMailDir, and the converted plain-text inquiry in the
// inbox directory where the processing workflow picks it up.
type MailStoreService struct {
	db         *storage.DB
	rawMailDir string
	inboxDir   string
}

func NewMailStoreService(db *storage.DB, rawMailDir, inboxDir string) *MailStoreService {
	return &MailStoreService{db: db, rawMailDir: rawMailDir, inboxDir: inboxDir}
}

func (s *MailStoreService) Store(msg internal.FetchedMailMessage) (internal.EmailRow, error) {
	hashBytes := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.rawMailDir, 0o755); err != nil {
		return internal.EmailRow{}, err
	}
	if err := os.MkdirAll(s.inboxDir, 0o755); err != nil {
		return internal.EmailRow{}, err
	}

	rawPath := filepath.Join(s.rawMailDir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.EmailRow{}, err
		}
	}

	row, err := s.db.UpsertEmail(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, "fetched")
	if err != nil {
		return internal.EmailRow{}, err
	}

	text, err := InquiryText(msg.Raw)
	if err != nil {
		_ = s.db.UpdateEmailStatus(row.ID, "convert_failed")
		return row, err
	}

	inboxPath := filepath.Join(s.inboxDir, hash[:16]+".txt")
	if _, err := os.Stat(inboxPath); os.IsNotExist(err) {
		if err := os.WriteFile(inboxPath, []byte(text), 0o644); err != nil {
			return internal.EmailRow{}, err
		}
	}

	if err := s.db.SetEmailInboxRef(row.ID, inboxPath); err != nil {
		return internal.EmailRow{}, err
	}
	if err := s.db.UpdateEmailStatus(row.ID, "queued"); err != nil {
		return internal.EmailRow{}, err
	}

	row.InboxRef = inboxPath
	row.Status = "queued"
	return row, nil
}
