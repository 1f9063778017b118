package connectors

import (
	"quoteflow/internal/storage"
)

type FetchService struct {
	db        *storage.DB
	connector MailConnector
	store     *MailStoreService
}

type FetchResult struct {
	Fetched int
	Queued  int
}

func NewFetchService(db *storage.DB, rawMailDir, inboxDir string, connector MailConnector) *FetchService {
	return &FetchService{
		db:        db,
		connector: connector,
		store:     NewMailStoreService(db, rawMailDir, inboxDir),
	}
}

// FetchAndStore pulls up to max messages and queues each one for the
// quoting workflow. A message that fails conversion is recorded in the
// ledger but does not stop the batch.
func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		row, err := s.store.Store(msg)
		if err != nil {
			continue
		}
		if row.Status == "queued" {
			result.Queued++
		}
	}

	return result, nil
}
