package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"port-ops-api-server/config"
	"port-ops-api-server/internal/auth"
	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/store"
)

func newTestAccounts(t *testing.T, now *time.Time) (*Accounts, *store.Store) {
	t.Helper()
	s := setupTestStore(t)
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	cfg := NewAccountsConfig(config.Config{Demo: config.DemoConfig{
		AdminEmail: "admin@port.local", AdminPassword: "admin123",
		UserEmail: "user@port.local", UserPassword: "user123",
	}})
	a := NewAccounts(s, tokens, cfg)
	a.now = fixedClock(now)
	return a, s
}

func TestLoginIssuesTokenWithRole(t *testing.T) {
	now := time.Now()
	a, _ := newTestAccounts(t, &now)
	ctx := context.Background()
	if _, err := a.Register(ctx, " Agent@Port.local ", "secret1", "Agent", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, u, err := a.Login(ctx, "agent@port.local", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.Role != models.RoleUser || u.LastLoginAt == nil {
		t.Fatalf("unexpected user %+v", u)
	}
	claims, err := a.tokens.Parse(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "agent@port.local" || !claims.HasRole(models.RoleUser) {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, _, err := a.Login(ctx, "nobody@port.local", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email should be invalid credentials, got %v", err)
	}
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	now := time.Now()
	a, s := newTestAccounts(t, &now)
	ctx := context.Background()
	if _, err := a.Register(ctx, "lock@port.local", "secret1", "", models.RoleUser); err != nil {
		t.Fatal(err)
	}

	for i := 1; i < 5; i++ {
		if _, _, err := a.Login(ctx, "lock@port.local", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials got %v", i, err)
		}
	}
	if _, _, err := a.Login(ctx, "lock@port.local", "wrong"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("fifth failure should lock, got %v", err)
	}
	if _, _, err := a.Login(ctx, "lock@port.local", "secret1"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("correct password while locked should fail, got %v", err)
	}

	now = now.Add(16 * time.Minute)
	if _, _, err := a.Login(ctx, "lock@port.local", "secret1"); err != nil {
		t.Fatalf("lock should have expired: %v", err)
	}
	u, _ := s.UserByEmail(ctx, "lock@port.local")
	if u.Locked || u.FailedAttempts != 0 || u.LockExpiry != nil {
		t.Fatalf("counters not reset: %+v", u)
	}
}

func TestUnlockClearsLock(t *testing.T) {
	now := time.Now()
	a, _ := newTestAccounts(t, &now)
	ctx := context.Background()
	u, _ := a.Register(ctx, "x@port.local", "secret1", "", "")
	for i := 0; i < 5; i++ {
		a.Login(ctx, "x@port.local", "bad")
	}
	unlocked, err := a.Unlock(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if unlocked.Locked {
		t.Fatalf("still locked: %+v", unlocked)
	}
	if _, _, err := a.Login(ctx, "x@port.local", "secret1"); err != nil {
		t.Fatalf("login after unlock: %v", err)
	}
	if _, err := a.Unlock(ctx, 9999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	now := time.Now()
	a, _ := newTestAccounts(t, &now)
	ctx := context.Background()
	if _, err := a.Register(ctx, "a@port.local", "123", "", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword got %v", err)
	}
	if _, err := a.Register(ctx, "a@port.local", "secret1", "", "ROOT"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole got %v", err)
	}
	if _, err := a.Register(ctx, "a@port.local", "secret1", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Register(ctx, "A@port.local", "secret1", "", ""); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	now := time.Now()
	a, _ := newTestAccounts(t, &now)
	ctx := context.Background()
	a.Register(ctx, "c@port.local", "secret1", "", "")

	if err := a.ChangePassword(ctx, "c@port.local", "nope", "secret2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials got %v", err)
	}
	if err := a.ChangePassword(ctx, "c@port.local", "secret1", "secret2"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := a.Login(ctx, "c@port.local", "secret2"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	now := time.Now()
	a, _ := newTestAccounts(t, &now)
	ctx := context.Background()
	a.Register(ctx, "r@port.local", "secret1", "", "")

	token, err := a.ForgotPassword(ctx, "ghost@port.local")
	if err != nil || token != "" {
		t.Fatalf("unknown email should be silent, got %q %v", token, err)
	}

	token, err = a.ForgotPassword(ctx, "r@port.local")
	if err != nil || token == "" {
		t.Fatalf("forgot: %q %v", token, err)
	}
	if err := a.ResetPassword(ctx, "not-a-token", "secret2"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}
	if err := a.ResetPassword(ctx, token, "123"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword got %v", err)
	}
	if err := a.ResetPassword(ctx, token, "secret2"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, _, err := a.Login(ctx, "r@port.local", "secret2"); err != nil {
		t.Fatalf("login after reset: %v", err)
	}
	if err := a.ResetPassword(ctx, token, "secret3"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("token must be single use, got %v", err)
	}
}

func TestResetTokenExpires(t *testing.T) {
	now := time.Now()
	a, _ := newTestAccounts(t, &now)
	ctx := context.Background()
	a.Register(ctx, "e@port.local", "secret1", "", "")
	token, _ := a.ForgotPassword(ctx, "e@port.local")

	now = now.Add(2 * time.Hour)
	if err := a.ResetPassword(ctx, token, "secret2"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expired token should be rejected, got %v", err)
	}
}

func TestResetDemoPasswords(t *testing.T) {
	now := time.Now()
	a, s := newTestAccounts(t, &now)
	ctx := context.Background()
	a.Register(ctx, "admin@port.local", "changed!", "", models.RoleAdmin)

	touched, err := a.ResetDemoPasswords(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(touched) != 2 {
		t.Fatalf("expected both demo accounts, got %v", touched)
	}
	if _, _, err := a.Login(ctx, "admin@port.local", "admin123"); err != nil {
		t.Fatalf("admin login: %v", err)
	}
	u, err := s.UserByEmail(ctx, "user@port.local")
	if err != nil {
		t.Fatalf("user account should be created: %v", err)
	}
	if u.Role != models.RoleUser {
		t.Fatalf("unexpected role %s", u.Role)
	}
}
