package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/terminal-pos/internal/models"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrEmptyOrder       = errors.New("order must contain at least one item")
	ErrQuantityTooLarge = errors.New("quantity too large")
)

// PriceLookup resolves products against the catalog
type PriceLookup interface {
	Contains(name string) bool
	PriceOf(name string) (decimal.Decimal, error)
}

// Order accumulates product quantities for one checkout session
type Order struct {
	id      string
	catalog PriceLookup
	items   models.OrderItems
}

// NewOrder starts an empty order with a fresh session id
func NewOrder(catalog PriceLookup) *Order {
	return &Order{
		id:      generateOrderID(),
		catalog: catalog,
	}
}

// generateOrderID generates a unique session id using UUID
func generateOrderID() string {
	return uuid.New().String()
}

func (o *Order) ID() string { return o.id }

// AddItem adds quantity of name, accumulating onto any existing quantity
func (o *Order) AddItem(name string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !o.catalog.Contains(name) {
		return fmt.Errorf("%w: %s", ErrProductNotFound, name)
	}
	// bounded by the whole order so Units never overflows either
	if quantity > math.MaxInt-o.Units() {
		return fmt.Errorf("%w: %d more of %s", ErrQuantityTooLarge, quantity, name)
	}
	o.items.Add(name, quantity)
	return nil
}

// Lines prices every item against the catalog
func (o *Order) Lines() ([]models.OrderLine, error) {
	lines := make([]models.OrderLine, 0, o.items.Len())
	for _, it := range o.items.Items() {
		price, err := o.catalog.PriceOf(it.Name)
		if err != nil {
			return nil, err
		}
		lines = append(lines, models.OrderLine{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: price,
			Subtotal:  price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}
	return lines, nil
}

// Total sums quantity × unit price over all items, rounded half-up to cents
func (o *Order) Total() (decimal.Decimal, error) {
	lines, err := o.Lines()
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return RoundMoney(total), nil
}

// Snapshot returns a copy of the items that later changes do not affect
func (o *Order) Snapshot() models.OrderItems {
	return o.items.Clone()
}

// Units returns the number of product units in the order
func (o *Order) Units() int {
	n := 0
	for _, it := range o.items.Items() {
		n += it.Quantity
	}
	return n
}

func (o *Order) IsEmpty() bool { return o.items.Len() == 0 }

// Clear empties the order
func (o *Order) Clear() {
	o.items = models.OrderItems{}
}

// RoundMoney rounds to two decimal places, halves away from zero
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
