package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/terminal-pos/internal/models"
)

// SaleRecorder appends completed sales to the history
type SaleRecorder interface {
	Record(ctx context.Context, username string, items models.OrderItems, total decimal.Decimal, currency string) (models.Transaction, error)
}

// Checkout turns an order into a recorded sale
type Checkout struct {
	ledger   SaleRecorder
	currency string
	delay    time.Duration
	logger   *slog.Logger
	recorder Recorder
}

// NewCheckout creates a checkout. delay is the pause taken while the
// payment is processed; it cannot be cancelled.
func NewCheckout(ledger SaleRecorder, currency string, delay time.Duration, logger *slog.Logger, recorder Recorder) *Checkout {
	return &Checkout{
		ledger:   ledger,
		currency: currency,
		delay:    delay,
		logger:   logger,
		recorder: recorderOrNop(recorder),
	}
}

// Pay records the order as a sale for username and clears it.
// If the sale cannot be saved the order is kept so payment can be retried.
func (c *Checkout) Pay(ctx context.Context, username string, order *Order) (models.Transaction, error) {
	if order.IsEmpty() {
		return models.Transaction{}, ErrEmptyOrder
	}

	total, err := order.Total()
	if err != nil {
		c.logger.Warn("order references unknown product", "session", order.ID(), "error", err)
		return models.Transaction{}, err
	}
	snapshot := order.Snapshot()
	units := order.Units()

	c.logger.Info("processing payment", "session", order.ID(), "user", username, "total", total.StringFixed(2))
	if c.delay > 0 {
		time.Sleep(c.delay)
	}

	tx, err := c.ledger.Record(ctx, username, snapshot, total, c.currency)
	if err != nil {
		c.recorder.ObserveSaleFailure()
		return tx, err
	}

	c.recorder.ObserveSale(total.InexactFloat64(), units)
	order.Clear()
	return tx, nil
}
