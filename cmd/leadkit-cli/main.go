package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"leadkit/internal/config"
	"leadkit/internal/core/domain"
	"leadkit/internal/logging"
)

const usage = `Usage: leadkit-cli <command> [flags]

Commands:
  check    -email <address>                 validate one address
  validate -file <list> [-out <file.xls>]   batch-validate a list of addresses
  extract  -file <partners> [-data-dir <d>] build the mailing and contact lists
  calling  -file <export.xlsx> [-data-dir <d>] build the three calling lists

Examples:
  leadkit-cli check -email ana@example.com
  leadkit-cli validate -file emails_socios.csv
  leadkit-cli extract -file socios.xlsx`

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := &cli{cfg: cfg, logger: slog.Default()}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, cancelling...")
		app.interrupt()
		cancel()
	}()

	var runErr error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "check":
		runErr = app.check(ctx, args)
	case "validate":
		runErr = app.validate(ctx, args)
	case "extract":
		runErr = app.extract(ctx, args)
	case "calling":
		runErr = app.calling(ctx, args)
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Printf("Unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(1)
	}

	if runErr != nil {
		n := domain.Describe(runErr)
		fmt.Printf("%s: %s", n.Title, n.Detail)
		if n.Code != "" {
			fmt.Printf(" [%s]", n.Code)
		}
		fmt.Println()
		os.Exit(1)
	}
}
