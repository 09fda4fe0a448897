package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/google/renameio/v2"

	"github.com/Lixing-Zhang/terminal-pos/internal/models"
)

// LedgerStore defines the interface for transaction history persistence.
// The history is read and written as one document.
type LedgerStore interface {
	LoadAll(ctx context.Context) ([]models.Transaction, error)
	SaveAll(ctx context.Context, txs []models.Transaction) error
}

// FileLedgerStore keeps the transaction history as a JSON array in a file
type FileLedgerStore struct {
	path   string
	logger *slog.Logger
}

// NewFileLedgerStore creates a ledger store for the file at path
func NewFileLedgerStore(path string, logger *slog.Logger) *FileLedgerStore {
	return &FileLedgerStore{
		path:   path,
		logger: logger,
	}
}

// LoadAll returns the full history in append order.
// A missing file is an empty history.
func (s *FileLedgerStore) LoadAll(ctx context.Context) ([]models.Transaction, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.Transaction{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Transaction{}, nil
	}

	var txs []models.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		s.logger.Error("transaction history is unreadable", "path", s.path, "error", err)
		return nil, fmt.Errorf("%w: decode %s: %v", ErrPersistence, s.path, err)
	}
	for i, tx := range txs {
		if tx.ID == "" || tx.Timestamp.IsZero() {
			s.logger.Error("transaction history has an incomplete record", "path", s.path, "index", i)
			return nil, fmt.Errorf("%w: %s: record %d has no id or timestamp", ErrPersistence, s.path, i)
		}
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return txs, nil
}

// SaveAll atomically replaces the history file with txs
func (s *FileLedgerStore) SaveAll(ctx context.Context, txs []models.Transaction) error {
	if txs == nil {
		txs = []models.Transaction{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(txs); err != nil {
		return fmt.Errorf("%w: encode history: %v", ErrPersistence, err)
	}

	if err := renameio.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		s.logger.Error("failed to write transaction history", "path", s.path, "error", err)
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, s.path, err)
	}
	return nil
}
