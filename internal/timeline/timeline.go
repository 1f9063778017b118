package timeline

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Entry is one activity record in the JSONL timeline.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	EmailID   string         `json:"email_id"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// Logger appends activity entries to a JSONL file, one line per entry.
// Each call opens and closes the file so concurrent-run crashes never
// lose more than the entry being written.
type Logger struct {
	path string
}

func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

func (l *Logger) Log(action, emailID, message string) error {
	return l.LogDetails(action, emailID, message, nil)
}

func (l *Logger) LogDetails(action, emailID, message string, details map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}

	entry := Entry{
		Timestamp: time.Now().UTC(),
		Action:    action,
		EmailID:   emailID,
		Message:   message,
		Details:   details,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return nil
}

// Recent returns the last limit entries, oldest first.
func (l *Logger) Recent(limit int) ([]Entry, error) {
	entries, err := l.readAll(func(Entry) bool { return true })
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (l *Logger) ByEmail(emailID string) ([]Entry, error) {
	return l.readAll(func(e Entry) bool { return e.EmailID == emailID })
}

func (l *Logger) ByAction(action string) ([]Entry, error) {
	return l.readAll(func(e Entry) bool { return e.Action == action })
}

// Stats summarizes the timeline: entry counts per action, distinct
// email ids, error count.
type Stats struct {
	TotalEntries int            `json:"total_entries"`
	Actions      map[string]int `json:"actions"`
	UniqueEmails int            `json:"unique_emails"`
	Errors       int            `json:"errors"`
}

func (l *Logger) Summary() (Stats, error) {
	stats := Stats{Actions: map[string]int{}}
	emails := map[string]struct{}{}

	entries, err := l.readAll(func(Entry) bool { return true })
	if err != nil {
		return Stats{}, err
	}
	for _, entry := range entries {
		stats.TotalEntries++
		stats.Actions[entry.Action]++
		emails[entry.EmailID] = struct{}{}
		if entry.Action == "error" {
			stats.Errors++
		}
	}
	stats.UniqueEmails = len(emails)
	return stats, nil
}

func (l *Logger) readAll(keep func(Entry) bool) ([]Entry, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			// Torn writes are skipped, not fatal.
			continue
		}
		if keep(entry) {
			out = append(out, entry)
		}
	}
	return out, scanner.Err()
}
