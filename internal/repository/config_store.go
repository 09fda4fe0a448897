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
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"github.com/Lixing-Zhang/terminal-pos/internal/models"
)

var (
	ErrConfigMissing   = errors.New("configuration file not found")
	ErrConfigMalformed = errors.New("configuration file is malformed")
	ErrConfigInvalid   = errors.New("configuration file is invalid")
	ErrPersistence     = errors.New("persistence failure")
)

const (
	backupPrefix     = "inventory_backup_"
	backupSuffix     = ".json"
	backupTimeLayout = "20060102_150405"

	// DefaultBackupRetention is the number of configuration backups kept
	DefaultBackupRetention = 10
)

// ConfigStore defines the interface for configuration document persistence
type ConfigStore interface {
	Load(ctx context.Context) (*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
	Backup(ctx context.Context) (string, error)
}

// FileConfigStore keeps the configuration document in a JSON file and
// timestamped copies of it in a backup directory
type FileConfigStore struct {
	path      string
	backupDir string
	retention int
	now       func() time.Time
	logger    *slog.Logger
}

// Option customises a FileConfigStore
type Option func(*FileConfigStore)

// WithRetention sets how many backups are kept
func WithRetention(n int) Option {
	return func(s *FileConfigStore) {
		if n > 0 {
			s.retention = n
		}
	}
}

// WithClock replaces the time source used to name backups
func WithClock(now func() time.Time) Option {
	return func(s *FileConfigStore) {
		s.now = now
	}
}

// NewFileConfigStore creates a store for the document at path
func NewFileConfigStore(path, backupDir string, logger *slog.Logger, opts ...Option) *FileConfigStore {
	s := &FileConfigStore{
		path:      path,
		backupDir: backupDir,
		retention: DefaultBackupRetention,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and validates the configuration document
func (s *FileConfigStore) Load(ctx context.Context) (*models.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("configuration file not found", "path", s.path)
			return nil, fmt.Errorf("%w: %s", ErrConfigMissing, s.path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfigMissing, s.path, err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		s.logger.Error("failed to load configuration", "path", s.path, "error", err)
		return nil, err
	}

	s.logger.Info("configuration loaded", "path", s.path, "products", doc.Menu.Len())
	return doc, nil
}

// decodeDocument checks required keys before decoding so that absent keys
// are told apart from zero values
func decodeDocument(data []byte) (*models.Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: document is null", ErrConfigMalformed)
	}

	for _, key := range []string{"business_name", "currency", "users", "menu"} {
		if _, ok := top[key]; !ok {
			return nil, fmt.Errorf("%w: missing required key %q", ErrConfigInvalid, key)
		}
	}

	var users map[string]json.RawMessage
	if err := json.Unmarshal(top["users"], &users); err != nil {
		return nil, fmt.Errorf("%w: users: %v", ErrConfigMalformed, err)
	}
	for _, key := range []string{string(models.RoleAdmin), string(models.RoleRegular)} {
		if _, ok := users[key]; !ok {
			return nil, fmt.Errorf("%w: users must contain %q", ErrConfigInvalid, key)
		}
	}

	if err := checkPrices(top["menu"]); err != nil {
		return nil, err
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
	}
	if doc.Users.Admin == nil {
		doc.Users.Admin = map[string]string{}
	}
	if doc.Users.Regular == nil {
		doc.Users.Regular = map[string]string{}
	}

	for _, item := range doc.Menu.Items() {
		if item.Price.IsNegative() {
			return nil, fmt.Errorf("%w: negative price for %q", ErrConfigInvalid, item.Name)
		}
	}

	return &doc, nil
}

// checkPrices requires every menu price to be a bare JSON number.
// decimal.Decimal on its own also takes null and quoted strings.
func checkPrices(menu json.RawMessage) error {
	var prices map[string]json.RawMessage
	if err := json.Unmarshal(menu, &prices); err != nil {
		return fmt.Errorf("%w: menu: %v", ErrConfigMalformed, err)
	}
	for name, raw := range prices {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("%w: price of %q: %v", ErrConfigMalformed, name, err)
		}
		if _, ok := v.(json.Number); !ok {
			return fmt.Errorf("%w: price of %q is not a number: %s", ErrConfigMalformed, name, raw)
		}
	}
	return nil
}

// Save backs up the current file, then atomically replaces it with doc.
// A failed backup aborts the save and leaves the file untouched.
func (s *FileConfigStore) Save(ctx context.Context, doc *models.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("%w: encode configuration: %v", ErrPersistence, err)
	}

	if _, err := s.Backup(ctx); err != nil {
		return err
	}

	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Error("failed to save configuration", "path", s.path, "error", err)
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, s.path, err)
	}

	s.logger.Info("configuration saved", "path", s.path)
	return nil
}

func encodeDocument(doc *models.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Backup copies the current configuration file into the backup directory
// and prunes old copies. It returns the new backup path, or "" when there
// is no configuration file yet.
func (s *FileConfigStore) Backup(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("%w: read %s for backup: %v", ErrPersistence, s.path, err)
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create backup dir: %v", ErrPersistence, err)
	}

	name := backupPrefix + s.now().Format(backupTimeLayout) + backupSuffix
	dst := filepath.Join(s.backupDir, name)
	if err := renameio.WriteFile(dst, data, 0o644); err != nil {
		s.logger.Error("failed to create backup", "path", dst, "error", err)
		return "", fmt.Errorf("%w: write backup: %v", ErrPersistence, err)
	}
	s.logger.Info("backup created", "path", dst)

	if err := s.prune(); err != nil {
		return dst, err
	}
	return dst, nil
}

// Backups lists retained backup files, oldest first
func (s *FileConfigStore) Backups() ([]string, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: list backups: %v", ErrPersistence, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasPrefix(e.Name(), backupPrefix) {
			names = append(names, e.Name())
		}
	}
	// the timestamp layout sorts lexicographically in chronological order
	sort.Strings(names)
	return names, nil
}

func (s *FileConfigStore) prune() error {
	names, err := s.Backups()
	if err != nil {
		return err
	}

	for len(names) > s.retention {
		oldest := names[0]
		names = names[1:]
		if err := os.Remove(filepath.Join(s.backupDir, oldest)); err != nil {
			return fmt.Errorf("%w: remove old backup %s: %v", ErrPersistence, oldest, err)
		}
		s.logger.Info("old backup removed", "name", oldest)
	}
	return nil
}
