package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"port-ops-api-server/config"
	"port-ops-api-server/internal/auth"
	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/store"

	"github.com/google/uuid"
)

const minPasswordLength = 6

// AccountsConfig holds the lockout and reset policy.
type AccountsConfig struct {
	MaxFailedAttempts int
	LockDuration      time.Duration
	ResetTokenTTL     time.Duration
	Demo              config.DemoConfig
}

// NewAccountsConfig resolves the auth section of the config, applying defaults.
func NewAccountsConfig(cfg config.Config) AccountsConfig {
	attempts := cfg.Auth.MaxFailedAttempts
	if attempts <= 0 {
		attempts = 5
	}
	return AccountsConfig{
		MaxFailedAttempts: attempts,
		LockDuration:      config.Duration(cfg.Auth.LockDuration, 15*time.Minute),
		ResetTokenTTL:     config.Duration(cfg.Auth.ResetTokenTTL, time.Hour),
		Demo:              cfg.Demo,
	}
}

// Accounts handles login with lockout and the password lifecycle.
type Accounts struct {
	store  *store.Store
	tokens *auth.TokenManager
	cfg    AccountsConfig
	now    clock
}

func NewAccounts(s *store.Store, tokens *auth.TokenManager, cfg AccountsConfig) *Accounts {
	return &Accounts{store: s, tokens: tokens, cfg: cfg, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Login verifies the credentials and returns a signed token. Repeated failures
// lock the account for the configured duration; an expired lock is lifted here.
func (a *Accounts) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	u, err := a.store.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	now := a.now()
	if u.Locked && !u.IsLocked(now) {
		u.Locked, u.FailedAttempts, u.LockExpiry = false, 0, nil
	}
	if u.IsLocked(now) {
		return "", nil, ErrAccountLocked
	}

	if !auth.CheckPasswordHash(password, u.Password) {
		u.FailedAttempts++
		locked := u.FailedAttempts >= a.cfg.MaxFailedAttempts
		if locked {
			until := now.Add(a.cfg.LockDuration)
			u.Locked, u.LockExpiry = true, &until
			log.Printf("account locked: email=%s until=%s", u.Email, until.Format(time.RFC3339))
		}
		if err := a.store.SaveUser(ctx, u); err != nil {
			return "", nil, err
		}
		if locked {
			return "", nil, ErrAccountLocked
		}
		return "", nil, ErrInvalidCredentials
	}

	u.FailedAttempts, u.Locked, u.LockExpiry = 0, false, nil
	u.LastLoginAt = &now
	if err := a.store.SaveUser(ctx, u); err != nil {
		return "", nil, err
	}
	token, err := a.tokens.Generate(u.Email, u.Role)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}

// Register creates an account. An empty role defaults to USER.
func (a *Accounts) Register(ctx context.Context, email, password, nom, role string) (*models.User, error) {
	email = normalizeEmail(email)
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{Email: email, Nom: nom, Password: hashed, Role: role}
	if err := a.store.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword requires the current password.
func (a *Accounts) ChangePassword(ctx context.Context, email, current, next string) error {
	u, err := a.store.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if !auth.CheckPasswordHash(current, u.Password) {
		return ErrInvalidCredentials
	}
	if err := checkPassword(next); err != nil {
		return err
	}
	hashed, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	u.Password = hashed
	return a.store.SaveUser(ctx, u)
}

// ForgotPassword issues a single-use reset token. Unknown emails return an
// empty token and no error so callers cannot tell which accounts exist.
func (a *Accounts) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := a.store.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	token := uuid.NewString()
	expiry := a.now().Add(a.cfg.ResetTokenTTL)
	u.ResetToken, u.ResetTokenExpiry = &token, &expiry
	if err := a.store.SaveUser(ctx, u); err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword consumes a reset token. It also clears any lock.
func (a *Accounts) ResetPassword(ctx context.Context, token, next string) error {
	if token == "" {
		return auth.ErrInvalidToken
	}
	u, err := a.store.UserByResetToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return auth.ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if u.ResetTokenExpiry == nil || !a.now().Before(*u.ResetTokenExpiry) {
		return auth.ErrInvalidToken
	}
	if err := checkPassword(next); err != nil {
		return err
	}
	hashed, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	u.Password = hashed
	u.ResetToken, u.ResetTokenExpiry = nil, nil
	u.Locked, u.FailedAttempts, u.LockExpiry = false, 0, nil
	return a.store.SaveUser(ctx, u)
}

// Unlock clears the lock and failure counter of a user.
func (a *Accounts) Unlock(ctx context.Context, id uint) (*models.User, error) {
	u, err := a.store.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Locked, u.FailedAttempts, u.LockExpiry = false, 0, nil
	if err := a.store.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ResetDemoPasswords restores the configured passwords of the demo accounts,
// creating them when missing. It returns the emails that were touched.
func (a *Accounts) ResetDemoPasswords(ctx context.Context) ([]string, error) {
	demo := a.cfg.Demo
	accounts := []struct{ email, password, role string }{
		{demo.AdminEmail, demo.AdminPassword, models.RoleAdmin},
		{demo.UserEmail, demo.UserPassword, models.RoleUser},
	}

	touched := []string{}
	for _, d := range accounts {
		if d.email == "" || d.password == "" {
			continue
		}
		hashed, err := auth.HashPassword(d.password)
		if err != nil {
			return touched, err
		}
		u, err := a.store.UserByEmail(ctx, d.email)
		switch {
		case errors.Is(err, store.ErrNotFound):
			u = &models.User{Email: d.email, Nom: "Demo " + d.role, Role: d.role}
		case err != nil:
			return touched, err
		}
		u.Password = hashed
		u.Locked, u.FailedAttempts, u.LockExpiry = false, 0, nil
		if err := a.store.SaveUser(ctx, u); err != nil {
			return touched, err
		}
		touched = append(touched, d.email)
	}
	return touched, nil
}
