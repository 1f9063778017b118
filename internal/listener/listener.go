package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"quoteflow/internal/artifacts"
	"quoteflow/internal/catalog"
	"quoteflow/internal/config"
	"quoteflow/internal/connectors"
	gmailconnector "quoteflow/internal/connectors/gmail"
	imapconnector "quoteflow/internal/connectors/imap"
	"quoteflow/internal/pipeline"
	"quoteflow/internal/storage"
	"quoteflow/internal/timeline"
)

// Service polls a mail provider, queues new inquiries into the inbox
// directory, runs the quoting workflow over them, and optionally writes
// a refreshed XLSX summary after each cycle.
type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle() error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	rawMailDir := filepath.Join(s.cfg.DataDir, "raw_mail")
	fetchService := connectors.NewFetchService(s.db, rawMailDir, s.cfg.InboxDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}

	cat, err := catalog.Load(s.cfg.PriceListPath, s.cfg.DiscountRulesPath)
	if err != nil {
		return err
	}
	store, err := artifacts.NewStore(s.cfg.DataDir)
	if err != nil {
		return err
	}
	log := timeline.NewLogger(store.TimelinePath())

	processor := pipeline.NewProcessingService(s.cfg, cat, store, log)
	inboxResult, err := processor.ProcessInbox(s.cfg.InboxDir)
	if err != nil {
		return err
	}

	if err := s.markQueuedProcessed(provider); err != nil {
		return err
	}

	if s.cfg.MailListenerAutoExport && inboxResult.Processed > 0 {
		if err := s.exportQuotes(store); err != nil {
			return err
		}
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d queued=%d processed=%d failed=%d skipped=%d\n",
		provider, fetchResult.Fetched, fetchResult.Queued,
		inboxResult.Processed, inboxResult.Failed, inboxResult.Skipped)
	return nil
}

// markQueuedProcessed flips ledger rows whose inbox file went through the
// workflow. The artifact store is idempotent per content hash, so a row
// is done as soon as its cycle completes.
func (s *Service) markQueuedProcessed(provider string) error {
	emails, err := s.db.ListEmailsByStatus("queued", 200)
	if err != nil {
		return err
	}
	for _, email := range emails {
		if email.Provider != provider {
			continue
		}
		if err := s.db.UpdateEmailStatus(email.ID, "processed"); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) exportQuotes(store *artifacts.Store) error {
	rows, err := pipeline.BuildExportRows(store)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	outputPath := filepath.Join(s.cfg.OutputDir, "listener", "quotes.xlsx")
	return pipeline.ExportRowsToXLSX(rows, outputPath)
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
