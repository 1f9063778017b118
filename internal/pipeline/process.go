package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"quoteflow/internal"
	"quoteflow/internal/artifacts"
	"quoteflow/internal/catalog"
	"quoteflow/internal/config"
	"quoteflow/internal/timeline"
)

// ProcessingService runs one email through the full pipeline: extract,
// acknowledge, quote, persist. The catalog snapshot is loaded once and
// shared read-only across the run.
type ProcessingService struct {
	cfg       config.Config
	extractor *Extractor
	quoter    *Quoter
	acks      *AckGenerator
	store     *artifacts.Store
	log       *timeline.Logger
}

func NewProcessingService(cfg config.Config, cat catalog.Catalog, store *artifacts.Store, log *timeline.Logger) *ProcessingService {
	return &ProcessingService{
		cfg:       cfg,
		extractor: NewExtractor(catalog.BuildIndex(cat.Prices)),
		quoter:    NewQuoter(cfg, cat),
		acks:      NewAckGenerator(cfg),
		store:     store,
		log:       log,
	}
}

type ProcessResult struct {
	EmailID string
	Status  internal.QuoteStatus
	Skipped bool
}

// ProcessFile handles a single .txt email end to end. Already-processed
// ids (same content hash) are skipped, which makes re-runs idempotent.
func (s *ProcessingService) ProcessFile(path string) (ProcessResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ProcessResult{}, err
	}
	content := string(raw)

	emailID := EmailID(content)
	if s.store.HasEvent(emailID) {
		_ = s.log.Log("skip", emailID, fmt.Sprintf("Already processed: %s", filepath.Base(path)))
		return ProcessResult{EmailID: emailID, Skipped: true}, nil
	}

	_ = s.log.Log("start", emailID, fmt.Sprintf("Processing: %s", filepath.Base(path)))

	event, err := s.extractor.ParseEmail(content)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if err := s.store.WriteEvent(event); err != nil {
		return ProcessResult{}, err
	}
	_ = s.log.Log("parse", emailID, fmt.Sprintf("Extracted %d products", len(event.Products)))

	ack := s.acks.Generate(event)
	if err := s.store.WriteAcknowledgment(ack); err != nil {
		return ProcessResult{}, err
	}
	_ = s.log.Log("ack", emailID, fmt.Sprintf("Generated acknowledgment with %d questions", len(ack.Questions)))

	quote := s.quoter.Generate(event)
	if err := s.store.WriteQuote(quote); err != nil {
		return ProcessResult{}, err
	}
	_ = s.log.Log("quote", emailID, fmt.Sprintf("Generated %s quote: %.2f", quote.Status, quote.Total))

	return ProcessResult{EmailID: emailID, Status: quote.Status}, nil
}

type InboxResult struct {
	Processed int
	Failed    int
	Skipped   int
	Total     int
}

// ProcessInbox walks every .txt file in dir. A fault in one email is
// logged and counted, never aborts the rest of the batch.
func (s *ProcessingService) ProcessInbox(dir string) (InboxResult, error) {
	if _, err := os.Stat(dir); err != nil {
		return InboxResult{}, fmt.Errorf("inbox directory not found: %s", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return InboxResult{}, err
	}
	sort.Strings(files)

	result := InboxResult{Total: len(files)}
	if len(files) == 0 {
		_ = s.log.Log("info", "system", fmt.Sprintf("No .txt files found in %s", dir))
		return result, nil
	}

	_ = s.log.Log("start", "system", fmt.Sprintf("Processing %d emails from %s", len(files), dir))

	for _, file := range files {
		res, err := s.ProcessFile(file)
		if err != nil {
			result.Failed++
			_ = s.log.Log("error", "system", fmt.Sprintf("Failed to process %s: %v", filepath.Base(file), err))
			continue
		}
		if res.Skipped {
			result.Skipped++
			continue
		}
		result.Processed++
	}

	_ = s.log.Log("complete", "system", fmt.Sprintf("Workflow complete: %d processed, %d failed, %d skipped",
		result.Processed, result.Failed, result.Skipped))

	return result, nil
}
