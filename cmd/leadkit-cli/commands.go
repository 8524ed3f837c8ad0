package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"leadkit/internal/adapters/downloader"
	"leadkit/internal/adapters/localstorage"
	"leadkit/internal/adapters/notify"
	"leadkit/internal/adapters/xlsx"
	"leadkit/internal/adapters/zerobounce"
	"leadkit/internal/config"
	"leadkit/internal/core/ports"
	"leadkit/internal/service"
	"leadkit/internal/tabular"
)

const timeFormat = "2006-01-02 15:04:05 UTC"

// cli holds the configuration and the running batch job, if any.
type cli struct {
	cfg    *config.Config
	logger *slog.Logger

	mu    sync.Mutex
	batch *service.Orchestrator
}

// interrupt cancels a batch job that is being polled.
func (c *cli) interrupt() {
	c.mu.Lock()
	batch := c.batch
	c.mu.Unlock()
	if batch == nil {
		return
	}
	if err := batch.Cancel(context.Background()); err != nil {
		logger := c.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("cancel batch", "error", err)
	}
}

func (c *cli) credential() ports.Credential {
	return ports.Credential{APIKey: c.cfg.ZeroBounce.APIKey}
}

func (c *cli) client() (*zerobounce.Client, error) {
	return zerobounce.NewClient(zerobounce.Config{
		APIURL:  c.cfg.ZeroBounce.APIURL,
		BulkURL: c.cfg.ZeroBounce.BulkURL,
		Timeout: c.cfg.ZeroBounce.Timeout,
	}, downloader.NewHTTPDownloader(c.cfg.ZeroBounce.Timeout))
}

func (c *cli) check(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	email := fs.String("email", "", "address to validate")
	fs.Parse(args)

	client, err := c.client()
	if err != nil {
		return err
	}
	res, err := service.NewValidator(client, c.credential(), nil).Validate(ctx, *email)
	if err != nil {
		return err
	}

	fmt.Println("\n=== Validation Result ===")
	fmt.Printf("Address:    %s\n", res.Address)
	fmt.Printf("Status:     %s\n", res.Status.Label())
	fmt.Printf("Sub-status: %s\n", res.SubStatus)
	if res.DidYouMean != "" {
		fmt.Printf("Did you mean: %s\n", res.DidYouMean)
	}
	return nil
}

func (c *cli) validate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	file := fs.String("file", "", "address list (.csv, .txt or .xlsx)")
	out := fs.String("out", "validation_results.xls", "results spreadsheet to write")
	fs.Parse(args)
	if *file == "" {
		fs.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	addresses, err := service.AddressesFromFile(*file, data, xlsx.NewCodec())
	if err != nil {
		return err
	}

	client, err := c.client()
	if err != nil {
		return err
	}
	batch := service.NewOrchestrator(client, service.NewTickerScheduler(), notify.NewLogNotifier(nil),
		service.OrchestratorConfig{
			Credential:   c.credential(),
			PollInterval: c.cfg.Batch.PollInterval,
		}, nil)
	c.mu.Lock()
	c.batch = batch
	c.mu.Unlock()

	handle, err := batch.Submit(ctx, addresses)
	if err != nil {
		return err
	}
	fmt.Printf("Submitted %d addresses as job %s\n", len(addresses), handle.ID)

	job, err := batch.Wait(ctx)
	if err != nil {
		return err
	}

	records := batch.Results()
	doc := tabular.RenderSpreadsheet(tabular.ValidationRecords(records), tabular.ValidationColumns)
	if err := os.WriteFile(*out, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}

	counts := map[string]int{}
	for _, r := range records {
		counts[r.Status.Label()]++
	}
	fmt.Println("\n=== Batch Summary ===")
	fmt.Printf("Job ID:    %s\n", job.ID)
	fmt.Printf("Addresses: %d\n", len(records))
	for _, label := range []string{"Valid", "Invalid", "Catch-all", "Unknown", "Spamtrap", "Abuse", "Do not mail"} {
		if n := counts[label]; n > 0 {
			fmt.Printf("  %-11s %d\n", label+":", n)
		}
	}
	fmt.Printf("Results:   %s\n", *out)
	return nil
}

func (c *cli) extractor(dataDir string) *service.Extractor {
	return service.NewExtractor(xlsx.NewCodec(), localstorage.NewLocalStorage(dataDir), nil)
}

func (c *cli) extract(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	file := fs.String("file", "", "partner contacts (.csv, .txt, .xml or .xlsx)")
	dataDir := fs.String("data-dir", c.cfg.Storage.DataDir, "base directory for run artifacts")
	fs.Parse(args)
	if *file == "" {
		fs.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	res, err := c.extractor(*dataDir).Extract(ctx, *file, data)
	if err != nil {
		return err
	}

	fmt.Println("\n=== Extraction Summary ===")
	printRun(res)
	fmt.Printf("Partners:     %d\n", res.Partners)
	fmt.Printf("Dropped rows: %d\n", res.Dropped)
	fmt.Printf("Emails:       %d\n", len(res.Emails))
	fmt.Printf("Contacts:     %d\n", len(res.Contacts))
	printArtifacts(res)
	return nil
}

func (c *cli) calling(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("calling", flag.ExitOnError)
	file := fs.String("file", "", "company export (.xlsx)")
	dataDir := fs.String("data-dir", c.cfg.Storage.DataDir, "base directory for run artifacts")
	fs.Parse(args)
	if *file == "" {
		fs.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	res, err := c.extractor(*dataDir).ExtractSlots(ctx, *file, data)
	if err != nil {
		return err
	}

	fmt.Println("\n=== Calling Lists ===")
	printRun(res)
	fmt.Printf("Contacts:     %d\n", len(res.Contacts))
	printArtifacts(res)
	return nil
}

func printRun(res *service.ExtractionResult) {
	fmt.Printf("Run ID:       %s\n", res.RunID)
	fmt.Printf("Source:       %s\n", res.Source)
	fmt.Printf("Created At:   %s\n", res.CreatedAt.Format(timeFormat))
}

func printArtifacts(res *service.ExtractionResult) {
	for _, a := range res.Artifacts {
		path := a.Name
		if res.Path != "" {
			path = filepath.Join(res.Path, a.Name)
		}
		fmt.Printf("  %-32s %7d bytes  %s\n", a.Name, len(a.Data), path)
	}
}
