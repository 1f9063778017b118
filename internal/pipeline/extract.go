package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"

	"quoteflow/internal"
	"quoteflow/internal/catalog"
	"quoteflow/internal/util"
)

// ErrEmptyInput is the only hard extraction failure. Everything else
// degrades to absent fields and lower confidence.
var ErrEmptyInput = errors.New("empty email content")

var (
	fromFullPattern = regexp.MustCompile(`(?im)^[ \t]*From:\s*([^<\n]+?)\s*<([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})>`)
	fromLinePattern = regexp.MustCompile(`(?im)^[ \t]*From:\s*([^<\n]+)$`)
	emailPattern    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	urgencyPattern  = regexp.MustCompile(`(?i)\b(asap|urgent|rush|immediately|immediate|quickly|quick|fast|soon)\b`)
	currencyPattern = regexp.MustCompile(`(?i)\b(USD|EUR|GBP|CAD|AUD|JPY)\b`)
	genericPattern  = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s+((?:[A-Z][A-Za-z0-9-]*)(?:\s+[A-Z][A-Za-z0-9-]*){0,3})`)
)

var highUrgencyWords = map[string]bool{"asap": true, "urgent": true, "rush": true, "immediate": true, "immediately": true}

var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
}

// quantity search window around a product mention, in bytes
const quantityWindow = 50

// Extractor turns free-form inquiry text into a ParsedEvent. It depends
// on the catalog index only to recognize product names; pricing stays in
// the quoting engine.
type Extractor struct {
	index *catalog.Index
}

func NewExtractor(index *catalog.Index) *Extractor {
	return &Extractor{index: index}
}

// EmailID derives the stable identifier for one email from its content.
func EmailID(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:8]
}

// ParseEmail extracts sender, products, urgency, currency and gaps from
// raw email text. Each field is derived independently; malformed input
// yields absent fields, never an error.
func (e *Extractor) ParseEmail(raw string) (internal.ParsedEvent, error) {
	if strings.TrimSpace(raw) == "" {
		return internal.ParsedEvent{}, ErrEmptyInput
	}

	clean := cleanContent(raw)
	products := e.extractProducts(clean)

	return internal.ParsedEvent{
		EmailID:    EmailID(raw),
		Timestamp:  time.Now().UTC(),
		Sender:     extractSender(clean),
		Products:   products,
		Urgency:    extractUrgency(clean),
		Currency:   extractCurrency(clean),
		Gaps:       IdentifyGaps(products),
		RawContent: raw,
	}, nil
}

// IdentifyGaps lists the missing-but-required fields that block a
// complete quote. It is a pure function of the products alone: only a
// missing quantity blocks pricing, a missing unit does not.
func IdentifyGaps(products []internal.Product) []string {
	gaps := make([]string, 0)
	seen := map[string]struct{}{}
	for _, p := range products {
		if p.Quantity != nil {
			continue
		}
		gap := "Missing quantity for " + p.Name
		if _, ok := seen[gap]; ok {
			continue
		}
		seen[gap] = struct{}{}
		gaps = append(gaps, gap)
	}
	return gaps
}

func extractSender(content string) internal.Sender {
	if m := fromFullPattern.FindStringSubmatch(content); m != nil {
		name := strings.TrimSpace(m[1])
		email := m[2]
		return internal.Sender{Name: &name, Email: &email, Confidence: 1.0}
	}

	var name string
	if m := fromLinePattern.FindStringSubmatch(content); m != nil {
		candidate := strings.TrimSpace(m[1])
		if candidate != "" && !strings.Contains(candidate, "@") {
			name = candidate
		}
	}
	email := emailPattern.FindString(content)

	switch {
	case name != "" && email != "":
		return internal.Sender{Name: &name, Email: &email, Confidence: 1.0}
	case email != "":
		return internal.Sender{Email: &email, Confidence: 0.6}
	case name != "":
		return internal.Sender{Name: &name, Confidence: 0.5}
	default:
		return internal.Sender{Confidence: 0.0}
	}
}

type mention struct {
	name    string
	catalog bool
	pos     int
	line    string
}

func (e *Extractor) extractProducts(content string) []internal.Product {
	out := make([]internal.Product, 0)
	byName := map[string]int{}

	for _, line := range splitLines(content) {
		for _, m := range e.findMentions(line) {
			qty, unit := quantityNear(m.line, m.pos, len(m.name))
			idx, exists := byName[m.name]
			if exists {
				// Recorded once per product; later mentions only
				// backfill what the first one missed.
				if out[idx].Quantity == nil && qty != nil {
					out[idx].Quantity = qty
					out[idx].Confidence = productConfidence(m.catalog, qty, m.line)
					out[idx].Notes = productNotes(qty, unit)
				}
				if out[idx].Unit == nil && unit != nil {
					out[idx].Unit = unit
					out[idx].Notes = productNotes(out[idx].Quantity, unit)
				}
				continue
			}

			byName[m.name] = len(out)
			out = append(out, internal.Product{
				Name:       m.name,
				Quantity:   qty,
				Unit:       unit,
				Confidence: productConfidence(m.catalog, qty, m.line),
				Notes:      productNotes(qty, unit),
			})
		}
	}

	return out
}

// findMentions scans one line for catalog product names (longest match
// first, case-insensitive) and then for generic "quantity + noun phrase"
// mentions of unknown items. A shorter catalog name never matches inside
// the span an earlier, longer one already claimed.
func (e *Extractor) findMentions(line string) []mention {
	lower := strings.ToLower(line)
	var consumed [][2]int
	var mentions []mention

	overlaps := func(start, end int) bool {
		for _, span := range consumed {
			if start < span[1] && end > span[0] {
				return true
			}
		}
		return false
	}

	for _, name := range e.index.Names() {
		needle := strings.ToLower(name)
		from := 0
		for {
			rel := strings.Index(lower[from:], needle)
			if rel < 0 {
				break
			}
			start := from + rel
			end := start + len(needle)
			from = end
			if overlaps(start, end) {
				continue
			}
			consumed = append(consumed, [2]int{start, end})
			mentions = append(mentions, mention{name: name, catalog: true, pos: start, line: line})
		}
	}

	for _, gm := range genericPattern.FindAllStringSubmatchIndex(line, -1) {
		phraseStart, phraseEnd := gm[4], gm[5]
		if overlaps(phraseStart, phraseEnd) {
			continue
		}
		phrase := strings.TrimSpace(line[phraseStart:phraseEnd])
		if phrase == "" {
			continue
		}
		if _, _, ok := e.index.Resolve(phrase); ok {
			// Already covered by the catalog scan in some casing.
			continue
		}
		consumed = append(consumed, [2]int{phraseStart, phraseEnd})
		mentions = append(mentions, mention{name: phrase, catalog: false, pos: phraseStart, line: line})
	}

	sortMentionsByPos(mentions)
	return mentions
}

func sortMentionsByPos(mentions []mention) {
	for i := 1; i < len(mentions); i++ {
		for j := i; j > 0 && mentions[j].pos < mentions[j-1].pos; j-- {
			mentions[j], mentions[j-1] = mentions[j-1], mentions[j]
		}
	}
}

// quantityNear looks for a number adjacent to a product mention: the
// last one in the window before it, else the first one after it.
func quantityNear(line string, pos, nameLen int) (*float64, *string) {
	beforeStart := pos - quantityWindow
	if beforeStart < 0 {
		beforeStart = 0
	}
	before := line[beforeStart:pos]
	if parsed := util.ParseQty(before); parsed.Qty != nil {
		return parsed.Qty, parsed.Unit
	}

	afterStart := pos + nameLen
	if afterStart > len(line) {
		afterStart = len(line)
	}
	afterEnd := afterStart + quantityWindow
	if afterEnd > len(line) {
		afterEnd = len(line)
	}
	after := line[afterStart:afterEnd]
	parsed := util.ParseQtyFirst(after)
	if parsed.Qty != nil {
		return parsed.Qty, parsed.Unit
	}
	// No quantity anywhere; a stray unit word after the name is still worth keeping.
	return nil, parsed.Unit
}

// productConfidence mirrors the additive scoring model: base 0.5, +0.3
// for a catalog name, +0.2 for a quantity, +0.1 for non-trivial context,
// capped at 1.0.
func productConfidence(catalogMatch bool, qty *float64, context string) float64 {
	confidence := 0.5
	if catalogMatch {
		confidence += 0.3
	}
	if qty != nil {
		confidence += 0.2
	}
	if len(strings.TrimSpace(context)) > 10 {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func productNotes(qty *float64, unit *string) string {
	var notes []string
	if qty == nil {
		notes = append(notes, "Quantity not specified")
	}
	if unit == nil {
		notes = append(notes, "Unit not specified")
	}
	if len(notes) == 0 {
		return "Complete information extracted"
	}
	return strings.Join(notes, "; ")
}

func extractUrgency(content string) *internal.Urgency {
	matches := urgencyPattern.FindAllString(strings.ToLower(content), -1)
	if len(matches) == 0 {
		return nil
	}
	urgency := internal.UrgencyMedium
	for _, m := range matches {
		if highUrgencyWords[m] {
			urgency = internal.UrgencyHigh
			break
		}
	}
	return &urgency
}

func extractCurrency(content string) *string {
	if m := currencyPattern.FindString(content); m != "" {
		return util.StringPtr(strings.ToUpper(m))
	}
	for _, sym := range currencySymbols {
		if strings.Contains(content, sym.symbol) {
			return util.StringPtr(sym.code)
		}
	}
	return nil
}

func splitLines(text string) []string {
	parts := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
