package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"quoteflow/internal"
)

// Store writes the per-email output artifacts: one event, one
// acknowledgment and one quote JSON file per email id, all under the
// data directory. The file layout is the persistence model; there is no
// database behind the quote data.
type Store struct {
	dataDir string
}

func NewStore(dataDir string) (*Store, error) {
	for _, sub := range []string{"events", "outbox", "quotes", "timeline"} {
		if err := os.MkdirAll(filepath.Join(dataDir, sub), 0o755); err != nil {
			return nil, err
		}
	}
	return &Store{dataDir: dataDir}, nil
}

func (s *Store) TimelinePath() string {
	return filepath.Join(s.dataDir, "timeline", "activity.jsonl")
}

func (s *Store) EventPath(emailID string) string {
	return filepath.Join(s.dataDir, "events", emailID+".json")
}

// HasEvent reports whether an email id was already processed in a
// previous run.
func (s *Store) HasEvent(emailID string) bool {
	_, err := os.Stat(s.EventPath(emailID))
	return err == nil
}

func (s *Store) WriteEvent(event internal.ParsedEvent) error {
	return writeJSON(s.EventPath(event.EmailID), event)
}

func (s *Store) WriteAcknowledgment(ack internal.Acknowledgment) error {
	return writeJSON(filepath.Join(s.dataDir, "outbox", ack.EmailID+"_ack.json"), ack)
}

func (s *Store) WriteQuote(quote internal.Quote) error {
	return writeJSON(filepath.Join(s.dataDir, "quotes", quote.EmailID+".json"), quote)
}

func (s *Store) ReadQuote(emailID string) (internal.Quote, error) {
	var quote internal.Quote
	blob, err := os.ReadFile(filepath.Join(s.dataDir, "quotes", emailID+".json"))
	if err != nil {
		return internal.Quote{}, err
	}
	if err := json.Unmarshal(blob, &quote); err != nil {
		return internal.Quote{}, fmt.Errorf("parse quote %s: %w", emailID, err)
	}
	return quote, nil
}

func (s *Store) ReadEvent(emailID string) (internal.ParsedEvent, error) {
	var event internal.ParsedEvent
	blob, err := os.ReadFile(s.EventPath(emailID))
	if err != nil {
		return internal.ParsedEvent{}, err
	}
	if err := json.Unmarshal(blob, &event); err != nil {
		return internal.ParsedEvent{}, fmt.Errorf("parse event %s: %w", emailID, err)
	}
	return event, nil
}

// ListQuoteIDs returns every email id with a stored quote, sorted by
// filename.
func (s *Store) ListQuoteIDs() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dataDir, "quotes", "*.json"))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		out = append(out, base[:len(base)-len(".json")])
	}
	return out, nil
}

func writeJSON(path string, v any) error {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(blob, '\n'), 0o644)
}
