package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/terminal-pos/internal/models"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrDuplicateProduct   = errors.New("product already exists")
	ErrInvalidPrice       = errors.New("price must be greater than zero")
	ErrInvalidProductName = errors.New("product name must not be empty")
)

// DocumentSaver persists the configuration document
type DocumentSaver interface {
	Save(ctx context.Context, doc *models.Document) error
}

// Catalog owns the in-memory configuration document and exposes the menu.
// Mutations are applied to a copy, persisted, and only then made visible,
// so memory always matches the last successful save.
type Catalog struct {
	doc      *models.Document
	store    DocumentSaver
	logger   *slog.Logger
	recorder Recorder
}

// NewCatalog creates a catalog over a copy of doc
func NewCatalog(doc *models.Document, store DocumentSaver, logger *slog.Logger, recorder Recorder) *Catalog {
	return &Catalog{
		doc:      doc.Clone(),
		store:    store,
		logger:   logger,
		recorder: recorderOrNop(recorder),
	}
}

func (c *Catalog) BusinessName() string { return c.doc.BusinessName }
func (c *Catalog) Currency() string     { return c.doc.Currency }

// List returns products in configuration order
func (c *Catalog) List() []models.MenuItem {
	return c.doc.Menu.Items()
}

// Contains reports whether name is on the menu
func (c *Catalog) Contains(name string) bool {
	return c.doc.Menu.Has(name)
}

// PriceOf returns the unit price of name
func (c *Catalog) PriceOf(name string) (decimal.Decimal, error) {
	price, ok := c.doc.Menu.Price(name)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrProductNotFound, name)
	}
	return price, nil
}

// Add puts a new product at the end of the menu and saves
func (c *Catalog) Add(ctx context.Context, name string, price decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidProductName
	}
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if c.doc.Menu.Has(name) {
		c.logger.Warn("product already exists", "name", name)
		return fmt.Errorf("%w: %s", ErrDuplicateProduct, name)
	}

	err := c.mutate(ctx, "add", func(doc *models.Document) {
		doc.Menu.Set(name, price)
	})
	if err != nil {
		return err
	}

	c.logger.Info("product added", "name", name, "price", price.String())
	return nil
}

// Remove deletes a product from the menu and saves
func (c *Catalog) Remove(ctx context.Context, name string) error {
	previous, ok := c.doc.Menu.Price(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrProductNotFound, name)
	}

	err := c.mutate(ctx, "remove", func(doc *models.Document) {
		doc.Menu.Delete(name)
	})
	if err != nil {
		return err
	}

	c.logger.Info("product removed", "name", name, "previous_price", previous.String())
	return nil
}

// SetPrice changes the unit price of an existing product and saves
func (c *Catalog) SetPrice(ctx context.Context, name string, price decimal.Decimal) error {
	previous, ok := c.doc.Menu.Price(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrProductNotFound, name)
	}
	if !price.IsPositive() {
		return ErrInvalidPrice
	}

	err := c.mutate(ctx, "set_price", func(doc *models.Document) {
		doc.Menu.Set(name, price)
	})
	if err != nil {
		return err
	}

	c.logger.Info("price changed", "name", name, "from", previous.String(), "to", price.String())
	return nil
}

func (c *Catalog) mutate(ctx context.Context, op string, apply func(*models.Document)) error {
	next := c.doc.Clone()
	apply(next)

	if err := c.store.Save(ctx, next); err != nil {
		c.logger.Error("catalog change not saved", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	c.doc = next
	c.recorder.ObserveCatalogMutation(op)
	return nil
}
