package terminal

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/terminal-pos/internal/report"
	"github.com/Lixing-Zhang/terminal-pos/internal/repository"
	"github.com/Lixing-Zhang/terminal-pos/internal/service"
)

var confirmations = map[string]bool{"sí": true, "si": true, "yes": true, "s": true, "y": true}

func (s *Session) adminPanel(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printf("\n%s\n  ADMIN PANEL\n%s\n", rule, rule)
		s.printf("1. View menu\n2. Add product\n3. Remove product\n4. Change price\n")
		s.printf("5. Sales report\n6. Recent transactions\n7. Create backup\n8. Exit\n")

		choice, err := s.prompt("\nSelect an option: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			s.showMenu()
		case "2":
			err = s.addProduct(ctx)
		case "3":
			err = s.removeProduct(ctx)
		case "4":
			err = s.changePrice(ctx)
		case "5":
			s.salesReport(ctx)
		case "6":
			s.recentTransactions(ctx)
		case "7":
			s.backup(ctx)
		case "8":
			s.printf("\nLogging out...\n")
			return nil
		default:
			s.printf("Invalid option\n")
		}
		if err != nil {
			return err
		}
	}
}

func (s *Session) addProduct(ctx context.Context) error {
	s.printf("\nAdd New Product\n%s\n", rule)

	name, err := s.prompt("Product name: ")
	if err != nil {
		return err
	}
	if name == "" {
		s.printf("Invalid name\n")
		return nil
	}

	price, ok, err := s.readPrice("Price: ")
	if err != nil || !ok {
		return err
	}

	if err := s.svc.Catalog.Add(ctx, name, price); err != nil {
		s.reportCatalogError(name, err)
		return nil
	}
	s.printf("Product added: %s (%s)\n", name, s.money(price))
	return nil
}

func (s *Session) removeProduct(ctx context.Context) error {
	s.showMenu()

	name, err := s.prompt("\nProduct to remove: ")
	if err != nil || name == "" {
		return err
	}

	answer, err := s.prompt("Are you sure? (yes/no): ")
	if err != nil {
		return err
	}
	if !confirmations[strings.ToLower(answer)] {
		s.printf("Nothing removed\n")
		return nil
	}

	if err := s.svc.Catalog.Remove(ctx, name); err != nil {
		s.reportCatalogError(name, err)
		return nil
	}
	s.printf("Product removed: %s\n", name)
	return nil
}

func (s *Session) changePrice(ctx context.Context) error {
	s.showMenu()

	name, err := s.prompt("\nProduct name: ")
	if err != nil {
		return err
	}
	current, lookupErr := s.svc.Catalog.PriceOf(name)
	if name == "" || lookupErr != nil {
		s.printf("Product not found\n")
		return nil
	}

	price, ok, err := s.readPrice("New price (current: " + s.money(current) + "): ")
	if err != nil || !ok {
		return err
	}

	if err := s.svc.Catalog.SetPrice(ctx, name, price); err != nil {
		s.reportCatalogError(name, err)
		return nil
	}
	s.printf("Price updated: %s %s -> %s\n", name, s.money(current), s.money(price))
	return nil
}

// readPrice reads a positive price. ok is false when the input was
// rejected and the operator has been told why.
func (s *Session) readPrice(label string) (decimal.Decimal, bool, error) {
	text, err := s.prompt(label)
	if err != nil {
		return decimal.Zero, false, err
	}
	price, err := decimal.NewFromString(text)
	if err != nil {
		s.printf("Invalid price. It must be a number\n")
		return decimal.Zero, false, nil
	}
	if !price.IsPositive() {
		s.printf("Price must be greater than 0\n")
		return decimal.Zero, false, nil
	}
	return price, true, nil
}

func (s *Session) reportCatalogError(name string, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateProduct):
		s.printf("Product already exists: %s\n", name)
	case errors.Is(err, service.ErrProductNotFound):
		s.printf("Product not found: %s\n", name)
	case errors.Is(err, service.ErrInvalidPrice):
		s.printf("Price must be greater than 0\n")
	case errors.Is(err, service.ErrInvalidProductName):
		s.printf("Invalid name\n")
	case errors.Is(err, repository.ErrPersistence):
		s.printf("Could not save the change, nothing was modified: %v\n", err)
	default:
		s.printf("Error: %v\n", err)
	}
}

func (s *Session) salesReport(ctx context.Context) {
	stats, err := s.svc.Ledger.Statistics(ctx)
	if err != nil {
		s.printf("Could not read the transaction history: %v\n", err)
		return
	}
	view := report.Sales(stats, s.opts.TopProducts)

	s.printf("\n%s\n  SALES REPORT\n%s\n", rule, rule)
	s.printf("  Transactions:   %d\n", view.TransactionCount)
	s.printf("  Total revenue:  %s\n", s.money(view.TotalRevenue))
	s.printf("  Average sale:   %s\n", s.money(view.AverageSale))

	if len(view.TopProducts) > 0 {
		s.printf("\nBest sellers:\n%s\n", rule)
		for _, p := range view.TopProducts {
			s.printf("  %d. %-40s %d units\n", p.Rank, p.Name, p.Units)
		}
	}
	s.printf("%s\n", rule)

	s.logger.InfoContext(ctx, "sales report generated")
}

func (s *Session) recentTransactions(ctx context.Context) {
	txs, err := s.svc.Ledger.Recent(ctx, s.opts.RecentTransactions)
	if err != nil {
		s.printf("Could not read the transaction history: %v\n", err)
		return
	}
	if len(txs) == 0 {
		s.printf("\nNo transactions recorded\n")
		return
	}

	s.printf("\n%s\n  RECENT TRANSACTIONS\n%s\n", rule, rule)
	for _, v := range report.Recent(txs) {
		s.printf("ID: %s\n  Date: %s\n  User: %s\n  Total: %s\n  Products: %s\n%s\n",
			v.ID, v.Time, v.Username, v.Total, v.Products, rule)
	}

	s.logger.InfoContext(ctx, "transaction report generated")
}

func (s *Session) backup(ctx context.Context) {
	name, err := s.svc.Backups.Backup(ctx)
	if err != nil {
		s.printf("Backup failed: %v\n", err)
		return
	}
	if name == "" {
		s.printf("No configuration file to back up\n")
		return
	}
	s.printf("Backup created: %s\n", filepath.Base(name))
}
