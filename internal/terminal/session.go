// Package terminal runs one interactive operator session over a reader and
// a writer: role selection, login, then the admin or sales panel.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/terminal-pos/internal/models"
	"github.com/Lixing-Zhang/terminal-pos/internal/service"
)

// ErrAccessDenied is returned by Run when the credentials are rejected
var ErrAccessDenied = errors.New("access denied")

const rule = "------------------------------------------------------------"

// Backupper takes a copy of the current configuration document
type Backupper interface {
	Backup(ctx context.Context) (string, error)
}

// Services are the operations a session drives
type Services struct {
	Catalog  *service.Catalog
	Auth     *service.Authenticator
	Ledger   *service.Ledger
	Checkout *service.Checkout
	Backups  Backupper
}

// Options tune what the session shows
type Options struct {
	TopProducts        int
	RecentTransactions int
	// OnSale runs after every recorded sale.
	OnSale func()
}

// Session is a single operator session
type Session struct {
	in     *bufio.Reader
	out    io.Writer
	svc    Services
	opts   Options
	logger *slog.Logger
}

func NewSession(in io.Reader, out io.Writer, svc Services, logger *slog.Logger, opts Options) *Session {
	if opts.TopProducts <= 0 {
		opts.TopProducts = 10
	}
	if opts.RecentTransactions <= 0 {
		opts.RecentTransactions = 10
	}
	return &Session{
		in:     bufio.NewReader(in),
		out:    out,
		svc:    svc,
		opts:   opts,
		logger: logger,
	}
}

// Run drives the session until the operator leaves.
// It returns io.EOF if input ends first and ErrAccessDenied on a failed login.
func (s *Session) Run(ctx context.Context) error {
	s.printf("%s\n  %s\n%s\n", rule, s.svc.Catalog.BusinessName(), rule)
	s.printf("Welcome to %s\n\n", s.svc.Catalog.BusinessName())

	role, err := s.selectRole(ctx)
	if err != nil {
		return err
	}

	s.printf("\n")
	username, err := s.prompt("Username: ")
	if err != nil {
		return err
	}
	password, err := s.prompt("Password: ")
	if err != nil {
		return err
	}

	if !s.svc.Auth.Authenticate(ctx, username, password, role) {
		s.printf("\nInvalid credentials. Access denied.\n")
		return ErrAccessDenied
	}
	s.printf("\nAccess granted. Welcome, %s!\n", username)

	if role == models.RoleAdmin {
		return s.adminPanel(ctx)
	}
	return s.salesPanel(ctx, username)
}

func (s *Session) selectRole(ctx context.Context) (models.Role, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		s.printf("Select your role:\n  1. Administrator\n  2. User\n")
		choice, err := s.prompt("\nOption: ")
		if err != nil {
			return "", err
		}
		switch choice {
		case "1":
			return models.RoleAdmin, nil
		case "2":
			return models.RoleRegular, nil
		default:
			s.printf("Invalid option. Try again.\n\n")
		}
	}
}

// prompt writes label and reads one trimmed line.
// A final line without a newline is still returned.
func (s *Session) prompt(label string) (string, error) {
	s.printf("%s", label)
	line, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Session) money(amount decimal.Decimal) string {
	return s.svc.Catalog.Currency() + amount.StringFixed(2)
}

func (s *Session) showMenu() {
	items := s.svc.Catalog.List()
	s.printf("\n%s\n  MENU - %s\n%s\n", rule, s.svc.Catalog.BusinessName(), rule)
	if len(items) == 0 {
		s.printf("  The menu is empty\n")
	}
	for _, it := range items {
		s.printf("  %-40s %s\n", it.Name, s.money(it.Price))
	}
	s.printf("%s\n", rule)
}
