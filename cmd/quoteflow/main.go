package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"quoteflow/internal"
	"quoteflow/internal/artifacts"
	"quoteflow/internal/catalog"
	"quoteflow/internal/config"
	"quoteflow/internal/connectors"
	gmailconnector "quoteflow/internal/connectors/gmail"
	imapconnector "quoteflow/internal/connectors/imap"
	"quoteflow/internal/listener"
	"quoteflow/internal/pipeline"
	"quoteflow/internal/storage"
	"quoteflow/internal/timeline"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		inbox := fs.String("inbox", cfg.InboxDir, "inbox directory of .txt inquiries")
		_ = fs.Parse(os.Args[2:])
		svc, _, err := buildService(cfg)
		must(err)
		result, err := svc.ProcessInbox(*inbox)
		must(err)
		fmt.Printf("workflow complete: %d processed, %d failed, %d skipped (of %d)\n",
			result.Processed, result.Failed, result.Skipped, result.Total)
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "single .txt inquiry file")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		svc, store, err := buildService(cfg)
		must(err)
		result, err := svc.ProcessFile(*input)
		must(err)
		if result.Skipped {
			fmt.Printf("already processed: %s\n", result.EmailID)
			return
		}
		quote, err := store.ReadQuote(result.EmailID)
		must(err)
		fmt.Printf("email %s: %s quote", quote.EmailID, quote.Status)
		if quote.Status == internal.QuoteComplete {
			fmt.Printf(", total %.2f", quote.Total)
			if quote.Currency != nil {
				fmt.Printf(" %s", *quote.Currency)
			}
		}
		fmt.Println()
		for _, reason := range quote.PendingReasons {
			fmt.Printf("  pending: %s\n", reason)
		}
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", filepath.Join(cfg.OutputDir, "quotes.xlsx"), "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		store, err := artifacts.NewStore(cfg.DataDir)
		must(err)
		rows, err := pipeline.BuildExportRows(store)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no quotes to export in %s", cfg.DataDir))
		}
		must(pipeline.ExportRowsToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.MailListenerProvider, "gmail|imap")
		label := fs.String("label", cfg.MailListenerLabel, "mailbox/label")
		max := fs.Int("max", cfg.MailListenerFetchMax, "max messages")
		_ = fs.Parse(os.Args[2:])
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		conn, err := makeConnector(cfg, *provider)
		must(err)
		rawMailDir := filepath.Join(cfg.DataDir, "raw_mail")
		fetch := connectors.NewFetchService(db, rawMailDir, cfg.InboxDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d queued=%d\n", *provider, result.Fetched, result.Queued)
	case "mail:listen":
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))
	case "timeline:recent":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "entries to show")
		_ = fs.Parse(os.Args[2:])
		log, err := openTimeline(cfg)
		must(err)
		entries, err := log.Recent(*limit)
		must(err)
		for _, entry := range entries {
			fmt.Printf("%s  %-8s  %-10s  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Action, entry.EmailID, entry.Message)
		}
	case "timeline:email":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "email id")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*id) == "" {
			must(fmt.Errorf("--id is required"))
		}
		log, err := openTimeline(cfg)
		must(err)
		entries, err := log.ByEmail(*id)
		must(err)
		for _, entry := range entries {
			fmt.Printf("%s  %-8s  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Action, entry.Message)
		}
	case "timeline:summary":
		log, err := openTimeline(cfg)
		must(err)
		stats, err := log.Summary()
		must(err)
		fmt.Printf("entries=%d emails=%d errors=%d\n", stats.TotalEntries, stats.UniqueEmails, stats.Errors)
		for action, count := range stats.Actions {
			fmt.Printf("  %s: %d\n", action, count)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func buildService(cfg config.Config) (*pipeline.ProcessingService, *artifacts.Store, error) {
	cat, err := catalog.Load(cfg.PriceListPath, cfg.DiscountRulesPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := artifacts.NewStore(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	log := timeline.NewLogger(store.TimelinePath())
	return pipeline.NewProcessingService(cfg, cat, store, log), store, nil
}

func openTimeline(cfg config.Config) (*timeline.Logger, error) {
	store, err := artifacts.NewStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return timeline.NewLogger(store.TimelinePath()), nil
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: quoteflow <command>")
	fmt.Println("commands:")
	fmt.Println("  process [--inbox=./inbox]")
	fmt.Println("  run --input=./inbox/email.txt")
	fmt.Println("  export:xlsx [--out=./out/quotes.xlsx]")
	fmt.Println("  mail:fetch [--provider=gmail|imap] [--label=INBOX] [--max=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  timeline:recent [--limit=20]")
	fmt.Println("  timeline:email --id=abc12345")
	fmt.Println("  timeline:summary")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
