package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"quoteflow/internal"
)

func TestBuildExportRows(t *testing.T) {
	svc, store := newTestService(t)
	inbox := t.TempDir()
	writeInbox(t, inbox, "complete.txt", `From: John Smith <john@example.com>

Need 10 Widget Pro and 2 Tool Kit.
`)
	writeInbox(t, inbox, "pending.txt", "I'm interested in Gadget Basic.")

	if _, err := svc.ProcessInbox(inbox); err != nil {
		t.Fatal(err)
	}

	rows, err := BuildExportRows(store)
	if err != nil {
		t.Fatal(err)
	}

	// Two line-item rows for the complete quote, one summary row for the
	// pending one.
	if len(rows) != 3 {
		t.Fatalf("rows=%+v", rows)
	}

	var pending, complete int
	for _, row := range rows {
		switch row.Status {
		case string(internal.QuotePending):
			pending++
			if row.PendingReasons == nil || *row.PendingReasons != "Missing quantity for Gadget Basic" {
				t.Fatalf("pending row=%+v", row)
			}
			if row.Product != nil {
				t.Fatalf("pending row carries a product: %+v", row)
			}
		case string(internal.QuoteComplete):
			complete++
			if row.Product == nil || row.LineTotal == nil {
				t.Fatalf("complete row=%+v", row)
			}
		default:
			t.Fatalf("status=%q", row.Status)
		}
	}
	if pending != 1 || complete != 2 {
		t.Fatalf("pending=%d complete=%d", pending, complete)
	}
}

func TestExportRowsToXLSX(t *testing.T) {
	svc, store := newTestService(t)
	inbox := t.TempDir()
	writeInbox(t, inbox, "inquiry.txt", "Need 4 Widget Pro.")

	if _, err := svc.ProcessInbox(inbox); err != nil {
		t.Fatal(err)
	}
	rows, err := BuildExportRows(store)
	if err != nil {
		t.Fatal(err)
	}

	outputPath := filepath.Join(t.TempDir(), "out", "quotes.xlsx")
	if err := ExportRowsToXLSX(rows, outputPath); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheetRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(sheetRows) != 2 {
		t.Fatalf("sheet rows=%d", len(sheetRows))
	}
	if sheetRows[0][0] != "email_id" || sheetRows[0][4] != "product" {
		t.Fatalf("header=%v", sheetRows[0])
	}
	if sheetRows[1][4] != "Widget Pro" {
		t.Fatalf("data row=%v", sheetRows[1])
	}
}
