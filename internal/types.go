package internal

import "time"

type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

type QuoteStatus string

const (
	QuoteComplete QuoteStatus = "complete"
	QuotePending  QuoteStatus = "pending"
)

// Sender is the identity extracted from a "From:"-style header.
// Name and Email are nil when the corresponding pattern did not match.
type Sender struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Confidence float64 `json:"confidence"`
}

// Product is one requested item. Name is a catalog key when the text
// matched the catalog, otherwise the free-text name kept verbatim.
type Product struct {
	Name       string   `json:"name"`
	Quantity   *float64 `json:"quantity"`
	Unit       *string  `json:"unit"`
	Confidence float64  `json:"confidence"`
	Notes      string   `json:"notes"`
}

// ParsedEvent is the structured extraction of one inquiry email.
type ParsedEvent struct {
	EmailID    string    `json:"email_id"`
	Timestamp  time.Time `json:"timestamp"`
	Sender     Sender    `json:"sender"`
	Products   []Product `json:"products"`
	Urgency    *Urgency  `json:"urgency"`
	Currency   *string   `json:"currency"`
	Gaps       []string  `json:"gaps"`
	RawContent string    `json:"raw_content"`
}

type LineItem struct {
	Product   string  `json:"product"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
	Unit      string  `json:"unit"`
}

// Quote is the priced or pending result for one ParsedEvent.
// All monetary fields are zero when Status is pending.
type Quote struct {
	EmailID        string      `json:"email_id"`
	Timestamp      time.Time   `json:"timestamp"`
	Status         QuoteStatus `json:"status"`
	LineItems      []LineItem  `json:"line_items"`
	Subtotal       float64     `json:"subtotal"`
	Discount       float64     `json:"discount"`
	Tax            float64     `json:"tax"`
	Total          float64     `json:"total"`
	Currency       *string     `json:"currency"`
	PendingReasons []string    `json:"pending_reasons"`
	ValidUntil     time.Time   `json:"valid_until"`
	DiscountRate   float64     `json:"discount_rate"`
}

// Acknowledgment is the reply generated for every ParsedEvent,
// complete quote or not.
type Acknowledgment struct {
	EmailID      string    `json:"email_id"`
	Timestamp    time.Time `json:"timestamp"`
	To           string    `json:"to"`
	Subject      string    `json:"subject"`
	Greeting     string    `json:"greeting"`
	Body         string    `json:"body"`
	Questions    []string  `json:"questions"`
	Closing      string    `json:"closing"`
	SLAHours     int       `json:"sla_hours"`
	UrgencyLevel *Urgency  `json:"urgency_level"`
}

// PriceEntry is one catalog record.
type PriceEntry struct {
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
	Description string  `json:"description,omitempty"`
}

// DiscountTier is a half-open subtotal range [MinAmount, MaxAmount) with a
// discount fraction. MaxAmount nil means unbounded above.
type DiscountTier struct {
	MinAmount float64  `json:"min_amount"`
	MaxAmount *float64 `json:"max_amount"`
	Discount  float64  `json:"discount"`
}

// QuoteExportRow flattens one quote line (or one pending quote) for XLSX export.
type QuoteExportRow struct {
	EmailID        string
	Status         string
	SenderName     *string
	SenderEmail    *string
	Product        *string
	Quantity       *float64
	Unit           *string
	UnitPrice      *float64
	LineTotal      *float64
	Subtotal       float64
	Discount       float64
	Tax            float64
	Total          float64
	Currency       *string
	DiscountRate   float64
	PendingReasons *string
	ValidUntil     string
}

// EmailRow is one fetched-mail ledger record.
type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
	InboxRef   string
}

// FetchedMailMessage is a raw message pulled from a mail provider.
type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
