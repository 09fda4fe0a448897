// Package report builds the sales and transaction views shown to admins.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/terminal-pos/internal/models"
	"github.com/Lixing-Zhang/terminal-pos/internal/service"
)

// TimestampLayout is how transaction times are shown
const TimestampLayout = "2006-01-02 15:04:05"

// ProductRank is one row of the best sellers table
type ProductRank struct {
	Rank  int
	Name  string
	Units int
}

// SalesView is the sales report
type SalesView struct {
	TransactionCount int
	TotalRevenue     decimal.Decimal
	AverageSale      decimal.Decimal
	TopProducts      []ProductRank
}

// TransactionView is one transaction formatted for display
type TransactionView struct {
	ID       string
	Time     string
	Username string
	Total    string
	Products string
}

// TopProducts returns the n best selling products by units, highest first.
// Ties keep the order in which products first appear in the history.
func TopProducts(stats models.Statistics, n int) []ProductRank {
	units := make([]models.ProductUnits, len(stats.UnitsByProduct))
	copy(units, stats.UnitsByProduct)
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].Units > units[j].Units
	})

	if n < 0 {
		n = 0
	}
	if n < len(units) {
		units = units[:n]
	}

	ranks := make([]ProductRank, 0, len(units))
	for i, u := range units {
		ranks = append(ranks, ProductRank{Rank: i + 1, Name: u.Name, Units: u.Units})
	}
	return ranks
}

// Sales builds the sales report with the top n products
func Sales(stats models.Statistics, n int) SalesView {
	return SalesView{
		TransactionCount: stats.TransactionCount,
		TotalRevenue:     stats.TotalRevenue,
		AverageSale:      stats.AverageSale,
		TopProducts:      TopProducts(stats, n),
	}
}

// Recent formats txs for display, keeping their order
func Recent(txs []models.Transaction) []TransactionView {
	views := make([]TransactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, TransactionView{
			ID:       tx.ID,
			Time:     tx.Timestamp.Format(TimestampLayout),
			Username: tx.Username,
			Total:    tx.Currency + tx.Total.StringFixed(2),
			Products: service.FormatItems(tx.Items),
		})
	}
	return views
}
