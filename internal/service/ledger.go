package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/terminal-pos/internal/models"
	"github.com/Lixing-Zhang/terminal-pos/internal/repository"
	"github.com/Lixing-Zhang/terminal-pos/pkg/logger"
)

// Ledger is the append-only history of completed sales.
// Every operation loads the whole history; Record rewrites it.
type Ledger struct {
	store  repository.LedgerStore
	ids    *IDGenerator
	now    func() time.Time
	logger *slog.Logger
}

// NewLedger creates a ledger over store. Transactions are timestamped with
// the generator's clock; a nil ids uses the wall clock.
func NewLedger(store repository.LedgerStore, ids *IDGenerator, logger *slog.Logger) *Ledger {
	if ids == nil {
		ids = NewIDGenerator(nil)
	}
	return &Ledger{
		store:  store,
		ids:    ids,
		now:    ids.now,
		logger: logger,
	}
}

// Record appends a sale to the history.
// On failure the unsaved transaction is still returned, and written to the
// audit log, so the sale is not lost.
func (l *Ledger) Record(ctx context.Context, username string, items models.OrderItems, total decimal.Decimal, currency string) (models.Transaction, error) {
	tx := models.Transaction{
		Timestamp: l.now(),
		Username:  username,
		Items:     items.Clone(),
		Total:     total,
		Currency:  currency,
	}

	history, err := l.store.LoadAll(ctx)
	if err != nil {
		tx.ID = l.ids.Next(nil)
		l.logUnsaved(ctx, tx, err)
		return tx, fmt.Errorf("record sale: %w", err)
	}

	taken := make(map[string]struct{}, len(history))
	for _, h := range history {
		taken[h.ID] = struct{}{}
	}
	tx.ID = l.ids.Next(func(id string) bool {
		_, ok := taken[id]
		return ok
	})

	history = append(history, tx)
	if err := l.store.SaveAll(ctx, history); err != nil {
		l.logUnsaved(ctx, tx, err)
		return tx, fmt.Errorf("record sale: %w", err)
	}

	logger.Success(ctx, l.logger, "sale recorded",
		"id", tx.ID,
		"user", tx.Username,
		"total", currency+tx.Total.StringFixed(2),
	)
	return tx, nil
}

func (l *Ledger) logUnsaved(ctx context.Context, tx models.Transaction, err error) {
	l.logger.ErrorContext(ctx, "sale not saved to history",
		"id", tx.ID,
		"timestamp", tx.Timestamp.Format(time.RFC3339),
		"user", tx.Username,
		"items", FormatItems(tx.Items),
		"total", tx.Total.StringFixed(2),
		"currency", tx.Currency,
		"error", err,
	)
}

// All returns the whole history in append order
func (l *Ledger) All(ctx context.Context) ([]models.Transaction, error) {
	return l.store.LoadAll(ctx)
}

// Recent returns up to limit transactions, most recent first
func (l *Ledger) Recent(ctx context.Context, limit int) ([]models.Transaction, error) {
	history, err := l.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []models.Transaction{}, nil
	}

	start := len(history) - limit
	if start < 0 {
		start = 0
	}
	recent := make([]models.Transaction, 0, len(history)-start)
	for i := len(history) - 1; i >= start; i-- {
		recent = append(recent, history[i])
	}
	return recent, nil
}

// Statistics aggregates revenue, count, average sale and units per product
func (l *Ledger) Statistics(ctx context.Context) (models.Statistics, error) {
	history, err := l.store.LoadAll(ctx)
	if err != nil {
		return models.Statistics{}, err
	}
	return Aggregate(history), nil
}

// Aggregate computes statistics over txs. An empty history gives zeroes.
func Aggregate(txs []models.Transaction) models.Statistics {
	stats := models.Statistics{
		TotalRevenue:   decimal.Zero,
		AverageSale:    decimal.Zero,
		UnitsByProduct: []models.ProductUnits{},
	}

	index := make(map[string]int)
	for _, tx := range txs {
		stats.TotalRevenue = stats.TotalRevenue.Add(tx.Total)
		stats.TransactionCount++

		for _, it := range tx.Items.Items() {
			i, ok := index[it.Name]
			if !ok {
				i = len(stats.UnitsByProduct)
				index[it.Name] = i
				stats.UnitsByProduct = append(stats.UnitsByProduct, models.ProductUnits{Name: it.Name})
			}
			stats.UnitsByProduct[i].Units += it.Quantity
		}
	}

	if stats.TransactionCount > 0 {
		stats.AverageSale = RoundMoney(stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.TransactionCount))))
	}
	return stats
}

// FormatItems renders items as "Coffee (2), Muffin (1)"
func FormatItems(items models.OrderItems) string {
	parts := make([]string, 0, items.Len())
	for _, it := range items.Items() {
		parts = append(parts, fmt.Sprintf("%s (%d)", it.Name, it.Quantity))
	}
	return strings.Join(parts, ", ")
}
