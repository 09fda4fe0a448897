package models

import "github.com/shopspring/decimal"

// OrderItem represents a single line of an order
type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// OrderLine is an order item priced against the catalog
type OrderLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// OrderItems maps product names to quantities in the order they were first added
type OrderItems struct {
	entries[int]
}

// NewOrderItems builds order items, accumulating repeated names
func NewOrderItems(items ...OrderItem) OrderItems {
	var o OrderItems
	for _, it := range items {
		o.Add(it.Name, it.Quantity)
	}
	return o
}

// Add accumulates quantity onto name
func (o *OrderItems) Add(name string, quantity int) {
	current, _ := o.get(name)
	o.set(name, current+quantity)
}

func (o OrderItems) Quantity(name string) int {
	q, _ := o.get(name)
	return q
}

func (o OrderItems) Len() int        { return o.len() }
func (o OrderItems) Names() []string { return o.names() }

// Items returns the items as a slice in insertion order
func (o OrderItems) Items() []OrderItem {
	items := make([]OrderItem, 0, o.len())
	for _, name := range o.keys {
		items = append(items, OrderItem{Name: name, Quantity: o.values[name]})
	}
	return items
}

// Clone returns an independent copy
func (o OrderItems) Clone() OrderItems { return OrderItems{o.clone()} }
