package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lixing-Zhang/terminal-pos/internal/config"
	"github.com/Lixing-Zhang/terminal-pos/internal/metrics"
	"github.com/Lixing-Zhang/terminal-pos/internal/repository"
	"github.com/Lixing-Zhang/terminal-pos/internal/service"
	"github.com/Lixing-Zhang/terminal-pos/internal/terminal"
	"github.com/Lixing-Zhang/terminal-pos/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	settings := flag.String("config", "", "YAML settings file (default "+config.DefaultFile+" if present)")
	flag.Parse()

	// Load settings from file and environment
	cfg, err := config.Load(*settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// Audit log
	log, closer := logger.NewAuditFile(cfg.Paths.AuditLog, cfg.LogLevel, logger.Rotation{
		MaxSizeMB:  cfg.Audit.MaxSizeMB,
		MaxBackups: cfg.Audit.MaxBackups,
		MaxAgeDays: cfg.Audit.MaxAgeDays,
	})
	defer closer.Close()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Business configuration
	configStore := repository.NewFileConfigStore(cfg.Paths.Inventory, cfg.Paths.Backups, log,
		repository.WithRetention(cfg.Backup.Retention))
	doc, err := configStore.Load(ctx)
	if err != nil {
		log.Error("failed to load configuration", "path", cfg.Paths.Inventory, "error", err)
		fmt.Fprintln(os.Stderr, configProblem(cfg.Paths.Inventory, err))
		return 1
	}

	verifier, err := service.VerifierFor(cfg.Auth.PasswordScheme)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	m := metrics.New()
	writeMetrics := func() {
		if err := m.WriteTextfile(cfg.Paths.MetricsFile); err != nil {
			log.Warn("failed to write metrics textfile", "path", cfg.Paths.MetricsFile, "error", err)
		}
	}
	defer writeMetrics()

	// Services
	catalog := service.NewCatalog(doc, configStore, log, m)
	auth := service.NewAuthenticator(doc.Users, verifier, log, m)
	ledger := service.NewLedger(repository.NewFileLedgerStore(cfg.Paths.Transactions, log), nil, log)
	checkout := service.NewCheckout(ledger, doc.Currency, cfg.Checkout.ProcessingDelay, log, m)

	log.Info("system started", "business", doc.BusinessName, "products", len(catalog.List()))

	session := terminal.NewSession(os.Stdin, os.Stdout, terminal.Services{
		Catalog:  catalog,
		Auth:     auth,
		Ledger:   ledger,
		Checkout: checkout,
		Backups:  configStore,
	}, log, terminal.Options{
		TopProducts:        cfg.Report.TopProducts,
		RecentTransactions: cfg.Report.RecentTransactions,
		OnSale:             writeMetrics,
	})

	// Reading stdin cannot be interrupted, so the session runs on its own
	// goroutine and an interrupt ends the process without waiting for it.
	done := make(chan error, 1)
	go func() {
		done <- session.Run(ctx)
	}()

	code := 0
	select {
	case <-ctx.Done():
		fmt.Println("\n\nProgram interrupted by the user")
		log.Warn("program interrupted by the user")
	case err := <-done:
		switch {
		case err == nil, errors.Is(err, terminal.ErrAccessDenied):
		case errors.Is(err, io.EOF):
			log.Info("input closed, session ended")
		default:
			fmt.Printf("\nUnexpected error: %v\n", err)
			log.Error("unexpected error", "error", err)
			code = 1
		}
	}

	fmt.Println("\nThank you for using the system")
	return code
}

// configProblem turns a configuration load failure into an operator message
func configProblem(path string, err error) string {
	switch {
	case errors.Is(err, repository.ErrConfigMissing):
		return fmt.Sprintf("Error: configuration file %s not found", path)
	case errors.Is(err, repository.ErrConfigMalformed):
		return fmt.Sprintf("Error: configuration file %s is not valid JSON", path)
	case errors.Is(err, repository.ErrConfigInvalid):
		return fmt.Sprintf("Error: configuration file %s is incomplete: %v", path, err)
	default:
		return fmt.Sprintf("Error: could not read configuration file %s: %v", path, err)
	}
}
