package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/Lixing-Zhang/terminal-pos/internal/models"
)

// PasswordVerifier compares a stored credential with a supplied password
type PasswordVerifier interface {
	Verify(stored, supplied string) bool
}

// PlaintextVerifier compares passwords verbatim.
// Stored passwords are plain text in the configuration file; this is a
// known weakness kept for compatibility with existing files.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Verify(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// BcryptVerifier treats stored passwords as bcrypt hashes
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

// VerifierFor returns the verifier for a password scheme name
func VerifierFor(scheme string) (PasswordVerifier, error) {
	switch scheme {
	case "", "plaintext":
		return PlaintextVerifier{}, nil
	case "bcrypt":
		return BcryptVerifier{}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme: %s", scheme)
	}
}

// Authenticator checks credentials against the admin and regular tables
type Authenticator struct {
	users    models.Users
	verifier PasswordVerifier
	logger   *slog.Logger
	recorder Recorder
}

// NewAuthenticator creates an authenticator over a copy of the credential tables
func NewAuthenticator(users models.Users, verifier PasswordVerifier, logger *slog.Logger, recorder Recorder) *Authenticator {
	if verifier == nil {
		verifier = PlaintextVerifier{}
	}
	return &Authenticator{
		users:    users.Clone(),
		verifier: verifier,
		logger:   logger,
		recorder: recorderOrNop(recorder),
	}
}

// Authenticate reports whether username/password is valid for role.
// Every attempt is logged.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string, role models.Role) bool {
	ok := a.check(username, password, role)

	a.recorder.ObserveAuth(string(role), ok)
	if ok {
		a.logger.InfoContext(ctx, "authentication succeeded", "user", username, "role", string(role))
	} else {
		a.logger.WarnContext(ctx, "authentication failed", "user", username, "role", string(role))
	}
	return ok
}

func (a *Authenticator) check(username, password string, role models.Role) bool {
	table, ok := a.users.Table(role)
	if !ok {
		return false
	}
	stored, ok := table[username]
	if !ok {
		return false
	}
	return a.verifier.Verify(stored, password)
}
