package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"quoteflow/internal"
	"quoteflow/internal/artifacts"
	"quoteflow/internal/util"
)

// BuildExportRows flattens every stored quote into spreadsheet rows:
// one row per line item for complete quotes, one summary row for
// pending ones.
func BuildExportRows(store *artifacts.Store) ([]internal.QuoteExportRow, error) {
	ids, err := store.ListQuoteIDs()
	if err != nil {
		return nil, err
	}

	rows := make([]internal.QuoteExportRow, 0, len(ids))
	for _, id := range ids {
		quote, err := store.ReadQuote(id)
		if err != nil {
			return nil, err
		}
		event, err := store.ReadEvent(id)
		if err != nil {
			return nil, err
		}

		base := internal.QuoteExportRow{
			EmailID:      quote.EmailID,
			Status:       string(quote.Status),
			SenderName:   event.Sender.Name,
			SenderEmail:  event.Sender.Email,
			Subtotal:     quote.Subtotal,
			Discount:     quote.Discount,
			Tax:          quote.Tax,
			Total:        quote.Total,
			Currency:     quote.Currency,
			DiscountRate: quote.DiscountRate,
			ValidUntil:   quote.ValidUntil.UTC().Format(time.RFC3339),
		}

		if quote.Status == internal.QuotePending {
			row := base
			row.PendingReasons = util.StringPtr(strings.Join(quote.PendingReasons, "; "))
			rows = append(rows, row)
			continue
		}

		for _, item := range quote.LineItems {
			row := base
			row.Product = util.StringPtr(item.Product)
			row.Quantity = util.FloatPtr(item.Quantity)
			row.Unit = util.StringPtr(item.Unit)
			row.UnitPrice = util.FloatPtr(item.UnitPrice)
			row.LineTotal = util.FloatPtr(item.Total)
			rows = append(rows, row)
		}
	}

	return rows, nil
}

func ExportRowsToXLSX(rows []internal.QuoteExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"email_id", "status", "sender_name", "sender_email",
		"product", "quantity", "unit", "unit_price", "line_total",
		"subtotal", "discount", "tax", "total", "currency",
		"discount_rate", "pending_reasons", "valid_until",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.EmailID)
		set(2, row.Status)
		set(3, derefString(row.SenderName))
		set(4, derefString(row.SenderEmail))
		set(5, derefString(row.Product))
		set(6, derefFloat(row.Quantity))
		set(7, derefString(row.Unit))
		set(8, derefFloat(row.UnitPrice))
		set(9, derefFloat(row.LineTotal))
		set(10, row.Subtotal)
		set(11, row.Discount)
		set(12, row.Tax)
		set(13, row.Total)
		set(14, derefString(row.Currency))
		set(15, row.DiscountRate)
		set(16, derefString(row.PendingReasons))
		set(17, row.ValidUntil)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
