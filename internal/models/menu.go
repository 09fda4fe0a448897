package models

import "github.com/shopspring/decimal"

func init() {
	// Prices and totals are written as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// MenuItem represents a sellable product and its unit price
type MenuItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Menu maps product names to unit prices in configuration order
type Menu struct {
	entries[decimal.Decimal]
}

// NewMenu builds a menu from items, keeping their order
func NewMenu(items ...MenuItem) Menu {
	var m Menu
	for _, it := range items {
		m.Set(it.Name, it.Price)
	}
	return m
}

// Items returns the menu as a slice in configuration order
func (m Menu) Items() []MenuItem {
	items := make([]MenuItem, 0, m.len())
	for _, name := range m.keys {
		items = append(items, MenuItem{Name: name, Price: m.values[name]})
	}
	return items
}

func (m Menu) Price(name string) (decimal.Decimal, bool) { return m.get(name) }
func (m Menu) Has(name string) bool                      { return m.has(name) }
func (m Menu) Len() int                                  { return m.len() }
func (m Menu) Names() []string                           { return m.names() }

// Set adds name at the end or updates its price in place
func (m *Menu) Set(name string, price decimal.Decimal) { m.set(name, price) }

// Delete removes name and reports whether it was present
func (m *Menu) Delete(name string) bool { return m.remove(name) }

// Clone returns a deep copy
func (m Menu) Clone() Menu { return Menu{m.clone()} }

// Equal reports whether both menus hold the same products, prices and order
func (m Menu) Equal(o Menu) bool {
	if m.len() != o.len() {
		return false
	}
	for i, name := range m.keys {
		if o.keys[i] != name || !m.values[name].Equal(o.values[name]) {
			return false
		}
	}
	return true
}
