package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the immutable receipt of one completed sale
type Transaction struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Username  string          `json:"username"`
	Items     OrderItems      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
}

// ProductUnits is the number of units sold of one product
type ProductUnits struct {
	Name  string
	Units int
}

// Statistics aggregates the whole transaction history
type Statistics struct {
	TotalRevenue     decimal.Decimal
	TransactionCount int
	AverageSale      decimal.Decimal
	// UnitsByProduct is ordered by the first transaction that sold each product.
	UnitsByProduct []ProductUnits
}
