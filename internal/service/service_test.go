package service

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/terminal-pos/internal/models"
	"github.com/Lixing-Zhang/terminal-pos/internal/repository"
)

// fakeSaver records saved documents and can be told to fail
type fakeSaver struct {
	saves []*models.Document
	err   error
}

func (f *fakeSaver) Save(ctx context.Context, doc *models.Document) error {
	if f.err != nil {
		return f.err
	}
	f.saves = append(f.saves, doc.Clone())
	return nil
}

// memoryLedgerStore keeps the history in memory
type memoryLedgerStore struct {
	txs     []models.Transaction
	loadErr error
	saveErr error
}

func (m *memoryLedgerStore) LoadAll(ctx context.Context) ([]models.Transaction, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]models.Transaction, len(m.txs))
	copy(out, m.txs)
	return out, nil
}

func (m *memoryLedgerStore) SaveAll(ctx context.Context, txs []models.Transaction) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.txs = make([]models.Transaction, len(txs))
	copy(m.txs, txs)
	return nil
}

// fakeRecorder counts observed events
type fakeRecorder struct {
	mu           sync.Mutex
	sales        int
	revenue      float64
	units        int
	saleFailures int
	auth         map[string]int
	mutations    map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{auth: map[string]int{}, mutations: map[string]int{}}
}

func (f *fakeRecorder) ObserveSale(total float64, units int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sales++
	f.revenue += total
	f.units += units
}

func (f *fakeRecorder) ObserveSaleFailure() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saleFailures++
}

func (f *fakeRecorder) ObserveAuth(role string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := role + "/failure"
	if ok {
		key = role + "/success"
	}
	f.auth[key]++
}

func (f *fakeRecorder) ObserveCatalogMutation(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations[op]++
}

var errDiskFull = errors.New("disk full")

func persistenceError() error {
	return errors.Join(repository.ErrPersistence, errDiskFull)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testDocument(items ...models.MenuItem) *models.Document {
	return &models.Document{
		BusinessName: "Cafe Central",
		Currency:     "$",
		Users: models.Users{
			Admin:   map[string]string{"root": "secret"},
			Regular: map[string]string{"ana": "1234"},
		},
		Menu: models.NewMenu(items...),
	}
}

func coffeeShop() *models.Document {
	return testDocument(
		models.MenuItem{Name: "Coffee", Price: price("2.50")},
		models.MenuItem{Name: "Muffin", Price: price("3.00")},
	)
}
