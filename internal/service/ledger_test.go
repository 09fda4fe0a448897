package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Lixing-Zhang/terminal-pos/internal/models"
	"github.com/Lixing-Zhang/terminal-pos/internal/repository"
	"github.com/Lixing-Zhang/terminal-pos/pkg/logger"
)

var ledgerEpoch = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTransactionID(t *testing.T) {
	tests := []struct {
		ts   time.Time
		want string
	}{
		{ledgerEpoch, "499813EB"},
		{ledgerEpoch.Add(time.Microsecond), "7EB11B2C"},
		{time.Date(2026, 10, 15, 9, 30, 0, 123456789, time.UTC), "558C8D89"},
	}

	for _, tt := range tests {
		if got := TransactionID(tt.ts); got != tt.want {
			t.Errorf("TransactionID(%s) = %s, want %s", tt.ts.Format(time.RFC3339Nano), got, tt.want)
		}
	}
}

func TestIDGenerator_SameMicrosecond(t *testing.T) {
	gen := NewIDGenerator(fixedClock(ledgerEpoch))

	first := gen.Next(nil)
	second := gen.Next(nil)
	third := gen.Next(nil)

	if first != "499813EB" || second != "7EB11B2C" || third != "FD549D0D" {
		t.Errorf("ids = %s, %s, %s", first, second, third)
	}
}

func TestIDGenerator_SkipsTakenIDs(t *testing.T) {
	gen := NewIDGenerator(fixedClock(ledgerEpoch))

	id := gen.Next(func(id string) bool { return id == "499813EB" })
	if id != "7EB11B2C" {
		t.Errorf("Next() = %s, want the id of the following microsecond", id)
	}
}

func TestLedger_RecordAssignsUniqueIDs(t *testing.T) {
	store := &memoryLedgerStore{}
	ledger := NewLedger(store, NewIDGenerator(fixedClock(ledgerEpoch)), logger.Discard())
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		items := models.NewOrderItems(models.OrderItem{Name: "Coffee", Quantity: 1})
		tx, err := ledger.Record(ctx, "ana", items, price("2.50"), "$")
		if err != nil {
			t.Fatalf("Record() unexpected error = %v", err)
		}
		if len(tx.ID) != 8 || strings.ToUpper(tx.ID) != tx.ID {
			t.Errorf("id %q is not 8 uppercase characters", tx.ID)
		}
		if seen[tx.ID] {
			t.Fatalf("duplicate id %s on record %d", tx.ID, i)
		}
		seen[tx.ID] = true
	}
	if len(store.txs) != 50 {
		t.Errorf("stored %d transactions, want 50", len(store.txs))
	}
}

func TestLedger_RecordAvoidsIDsFromEarlierRuns(t *testing.T) {
	store := &memoryLedgerStore{txs: []models.Transaction{{ID: "499813EB", Total: price("1")}}}
	ledger := NewLedger(store, NewIDGenerator(fixedClock(ledgerEpoch)), logger.Discard())

	tx, err := ledger.Record(context.Background(), "ana", models.NewOrderItems(), price("1"), "$")
	if err != nil {
		t.Fatalf("Record() unexpected error = %v", err)
	}
	if tx.ID == "499813EB" {
		t.Error("Record() reused an id already in the history")
	}
}

func TestLedger_RecordKeepsHistoryOrder(t *testing.T) {
	store := &memoryLedgerStore{}
	clock := ledgerEpoch
	ledger := NewLedger(store, NewIDGenerator(func() time.Time { return clock }), logger.Discard())
	ctx := context.Background()

	for i, user := range []string{"ana", "luis", "root"} {
		clock = ledgerEpoch.Add(time.Duration(i) * time.Minute)
		if _, err := ledger.Record(ctx, user, models.NewOrderItems(), price("1"), "$"); err != nil {
			t.Fatalf("Record() unexpected error = %v", err)
		}
	}

	all, err := ledger.All(ctx)
	if err != nil {
		t.Fatalf("All() unexpected error = %v", err)
	}
	for i, user := range []string{"ana", "luis", "root"} {
		if all[i].Username != user {
			t.Errorf("All()[%d].Username = %s, want %s", i, all[i].Username, user)
		}
	}
	if !all[1].Timestamp.Equal(ledgerEpoch.Add(time.Minute)) {
		t.Errorf("timestamp = %s", all[1].Timestamp)
	}
}

func TestLedger_PersistenceFailure(t *testing.T) {
	var buf bytes.Buffer
	store := &memoryLedgerStore{saveErr: persistenceError()}
	ledger := NewLedger(store, NewIDGenerator(fixedClock(ledgerEpoch)), logger.NewWithWriter(&buf, "info"))
	items := models.NewOrderItems(
		models.OrderItem{Name: "Coffee", Quantity: 2},
		models.OrderItem{Name: "Muffin", Quantity: 1},
	)

	tx, err := ledger.Record(context.Background(), "ana", items, price("8"), "$")
	if !errors.Is(err, repository.ErrPersistence) {
		t.Fatalf("Record() error = %v, want ErrPersistence", err)
	}
	if tx.ID != "499813EB" || !tx.Total.Equal(price("8")) {
		t.Errorf("unsaved transaction not returned: %+v", tx)
	}

	out := buf.String()
	for _, want := range []string{"level=ERROR", "id=499813EB", "Coffee (2), Muffin (1)", "user=ana"} {
		if !strings.Contains(out, want) {
			t.Errorf("audit log missing %q:\n%s", want, out)
		}
	}
}

func TestLedger_LoadFailure(t *testing.T) {
	store := &memoryLedgerStore{loadErr: persistenceError()}
	ledger := NewLedger(store, NewIDGenerator(fixedClock(ledgerEpoch)), logger.Discard())
	ctx := context.Background()

	tx, err := ledger.Record(ctx, "ana", models.NewOrderItems(), price("1"), "$")
	if !errors.Is(err, repository.ErrPersistence) || tx.ID == "" {
		t.Errorf("Record() = %+v, %v", tx, err)
	}
	if _, err := ledger.Recent(ctx, 5); !errors.Is(err, repository.ErrPersistence) {
		t.Errorf("Recent() error = %v", err)
	}
	if _, err := ledger.Statistics(ctx); !errors.Is(err, repository.ErrPersistence) {
		t.Errorf("Statistics() error = %v", err)
	}
}

func TestLedger_Recent(t *testing.T) {
	history := []models.Transaction{{ID: "A"}, {ID: "B"}, {ID: "C"}}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"fewer than history", 2, []string{"C", "B"}},
		{"exactly history", 3, []string{"C", "B", "A"}},
		{"more than history", 10, []string{"C", "B", "A"}},
		{"zero limit", 0, []string{}},
		{"negative limit", -1, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger(&memoryLedgerStore{txs: history}, nil, logger.Discard())

			got, err := ledger.Recent(context.Background(), tt.limit)
			if err != nil {
				t.Fatalf("Recent() unexpected error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Recent(%d) returned %d transactions, want %d", tt.limit, len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("Recent(%d)[%d] = %s, want %s", tt.limit, i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestLedger_Statistics(t *testing.T) {
	history := []models.Transaction{
		{ID: "A", Total: price("8.00"), Items: models.NewOrderItems(
			models.OrderItem{Name: "Coffee", Quantity: 2},
			models.OrderItem{Name: "Muffin", Quantity: 1},
		)},
		{ID: "B", Total: price("3.00"), Items: models.NewOrderItems(
			models.OrderItem{Name: "Muffin", Quantity: 1},
		)},
		{ID: "C", Total: price("5.00"), Items: models.NewOrderItems(
			models.OrderItem{Name: "Tea", Quantity: 4},
			models.OrderItem{Name: "Coffee", Quantity: 1},
		)},
	}
	ledger := NewLedger(&memoryLedgerStore{txs: history}, nil, logger.Discard())

	stats, err := ledger.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics() unexpected error = %v", err)
	}

	if !stats.TotalRevenue.Equal(price("16")) {
		t.Errorf("TotalRevenue = %s, want 16", stats.TotalRevenue)
	}
	if stats.TransactionCount != 3 {
		t.Errorf("TransactionCount = %d, want 3", stats.TransactionCount)
	}
	if !stats.AverageSale.Equal(price("5.33")) {
		t.Errorf("AverageSale = %s, want 5.33", stats.AverageSale)
	}

	want := []models.ProductUnits{{Name: "Coffee", Units: 3}, {Name: "Muffin", Units: 2}, {Name: "Tea", Units: 4}}
	if len(stats.UnitsByProduct) != len(want) {
		t.Fatalf("UnitsByProduct = %v", stats.UnitsByProduct)
	}
	for i := range want {
		if stats.UnitsByProduct[i] != want[i] {
			t.Errorf("UnitsByProduct[%d] = %v, want %v", i, stats.UnitsByProduct[i], want[i])
		}
	}

	sum := 0
	for _, tx := range history {
		for _, it := range tx.Items.Items() {
			sum += it.Quantity
		}
	}
	total := 0
	for _, pu := range stats.UnitsByProduct {
		total += pu.Units
	}
	if total != sum {
		t.Errorf("units by product sum to %d, history holds %d", total, sum)
	}
}

func TestLedger_StatisticsEmpty(t *testing.T) {
	ledger := NewLedger(&memoryLedgerStore{}, nil, logger.Discard())

	stats, err := ledger.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics() unexpected error = %v", err)
	}
	if !stats.TotalRevenue.IsZero() || stats.TransactionCount != 0 || !stats.AverageSale.IsZero() {
		t.Errorf("Statistics() = %+v, want zeroes", stats)
	}
	if stats.UnitsByProduct == nil || len(stats.UnitsByProduct) != 0 {
		t.Errorf("UnitsByProduct = %v, want empty", stats.UnitsByProduct)
	}
}

func TestFormatItems(t *testing.T) {
	items := models.NewOrderItems(
		models.OrderItem{Name: "Coffee", Quantity: 2},
		models.OrderItem{Name: "Muffin", Quantity: 1},
	)
	if got := FormatItems(items); got != "Coffee (2), Muffin (1)" {
		t.Errorf("FormatItems() = %q", got)
	}
	if got := FormatItems(models.NewOrderItems()); got != "" {
		t.Errorf("FormatItems(empty) = %q", got)
	}
}

func TestLedger_FileStoreRoundTrip(t *testing.T) {
	store := repository.NewFileLedgerStore(t.TempDir()+"/transactions.json", logger.Discard())
	ledger := NewLedger(store, NewIDGenerator(fixedClock(ledgerEpoch)), logger.Discard())
	ctx := context.Background()

	items := models.NewOrderItems(
		models.OrderItem{Name: "Muffin", Quantity: 1},
		models.OrderItem{Name: "Coffee", Quantity: 2},
	)
	if _, err := ledger.Record(ctx, "ana", items, price("8.00"), "$"); err != nil {
		t.Fatalf("Record() unexpected error = %v", err)
	}

	all, err := ledger.All(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("All() = %v, %v", all, err)
	}
	if names := all[0].Items.Names(); names[0] != "Muffin" || names[1] != "Coffee" {
		t.Errorf("item order not preserved: %v", names)
	}
	if !all[0].Total.Equal(price("8")) || all[0].ID != "499813EB" {
		t.Errorf("reloaded transaction = %+v", all[0])
	}
}
