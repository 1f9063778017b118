package pipeline

import (
	"quoteflow/internal"
	"quoteflow/internal/catalog"
	"quoteflow/internal/config"
	"quoteflow/internal/util"
)

const noProductsReason = "No products identified in the inquiry"

// Quoter prices ParsedEvents against one catalog snapshot. Generate is
// pure and total: any well-formed event yields a Quote, complete or
// pending, never an error.
type Quoter struct {
	cfg   config.Config
	index *catalog.Index
	tiers []internal.DiscountTier
}

func NewQuoter(cfg config.Config, cat catalog.Catalog) *Quoter {
	return &Quoter{cfg: cfg, index: catalog.BuildIndex(cat.Prices), tiers: cat.Tiers}
}

type priceable struct {
	name     string
	quantity float64
	entry    internal.PriceEntry
}

func (q *Quoter) Generate(event internal.ParsedEvent) internal.Quote {
	reasons := make([]string, 0)
	seen := map[string]struct{}{}
	addReason := func(reason string) {
		if _, ok := seen[reason]; ok {
			return
		}
		seen[reason] = struct{}{}
		reasons = append(reasons, reason)
	}

	items := make([]priceable, 0, len(event.Products))
	for _, product := range event.Products {
		// Independent checks: a product can be both unknown and
		// unquantified, and then both reasons block the quote.
		canonical, entry, ok := q.index.Resolve(product.Name)
		if !ok {
			addReason("Unknown product: " + product.Name)
		}
		if product.Quantity == nil {
			// Same wording the extraction stage put into gaps.
			addReason("Missing quantity for " + product.Name)
		}
		if !ok || product.Quantity == nil {
			continue
		}
		items = append(items, priceable{name: canonical, quantity: *product.Quantity, entry: entry})
	}

	if len(event.Products) == 0 {
		addReason(noProductsReason)
	}

	quote := internal.Quote{
		EmailID:        event.EmailID,
		Timestamp:      event.Timestamp,
		Currency:       q.currency(event),
		PendingReasons: reasons,
		ValidUntil:     event.Timestamp.AddDate(0, 0, q.cfg.QuoteValidityDays),
		LineItems:      []internal.LineItem{},
	}

	if len(reasons) > 0 || len(items) == 0 {
		quote.Status = internal.QuotePending
		return quote
	}

	subtotal := 0.0
	for _, item := range items {
		// Catalog unit is authoritative for billing, whatever the text said.
		total := util.Round2(item.quantity * item.entry.Price)
		quote.LineItems = append(quote.LineItems, internal.LineItem{
			Product:   item.name,
			Quantity:  item.quantity,
			UnitPrice: item.entry.Price,
			Total:     total,
			Unit:      item.entry.Unit,
		})
		subtotal += total
	}
	subtotal = util.Round2(subtotal)

	tier := selectTier(q.tiers, subtotal)
	discount := 0.0
	if tier != nil {
		discount = util.Round2(subtotal * tier.Discount)
		quote.DiscountRate = tier.Discount * 100
	}
	tax := util.Round2((subtotal - discount) * q.cfg.TaxRate)

	quote.Status = internal.QuoteComplete
	quote.Subtotal = subtotal
	quote.Discount = discount
	quote.Tax = tax
	quote.Total = util.Round2(subtotal - discount + tax)
	return quote
}

// selectTier returns the first tier whose half-open interval
// [min, max) contains the subtotal. A subtotal equal to a tier's upper
// bound belongs to the next tier.
func selectTier(tiers []internal.DiscountTier, subtotal float64) *internal.DiscountTier {
	for i := range tiers {
		tier := tiers[i]
		if subtotal < tier.MinAmount {
			continue
		}
		if tier.MaxAmount == nil || subtotal < *tier.MaxAmount {
			return &tiers[i]
		}
	}
	return nil
}

func (q *Quoter) currency(event internal.ParsedEvent) *string {
	if event.Currency != nil {
		return event.Currency
	}
	if q.cfg.DefaultCurrency != "" {
		return util.StringPtr(q.cfg.DefaultCurrency)
	}
	return nil
}
