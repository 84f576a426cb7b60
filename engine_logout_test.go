package authkit

import (
	"context"
	"errors"
	"testing"
)

func TestGlobalLogoutInvalidatesOutstandingTokens(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(t, testConfig(), store, nil)
	p := seedPrincipal(t, engine, store, "alice@example.com", "Sup3r-Secret!", "Admin")

	res, err := engine.Login(context.Background(), "alice@example.com", "Sup3r-Secret!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := engine.Validate(context.Background(), res.Token); err != nil {
		t.Fatalf("Validate before logout failed: %v", err)
	}

	out, err := engine.GlobalLogout(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GlobalLogout failed: %v", err)
	}
	if out.OldVersion == out.NewVersion {
		t.Fatalf("version did not advance: %s -> %s", out.OldVersion, out.NewVersion)
	}

	if _, err := engine.Validate(context.Background(), res.Token); !errors.Is(err, ErrTokenInvalidated) {
		t.Fatalf("want ErrTokenInvalidated, got %v", err)
	}

	// A fresh login picks up the new version and validates again.
	again, err := engine.Login(context.Background(), "alice@example.com", "Sup3r-Secret!")
	if err != nil {
		t.Fatalf("re-login failed: %v", err)
	}
	if _, err := engine.Validate(context.Background(), again.Token); err != nil {
		t.Fatalf("Validate after re-login failed: %v", err)
	}
}

func TestGlobalLogoutAffectsAllPrincipals(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(t, testConfig(), store, nil)
	admin := seedPrincipal(t, engine, store, "admin@example.com", "Sup3r-Secret!", "Admin")
	seedPrincipal(t, engine, store, "bob@example.com", "0ther-Secret!", "Mentor")

	bob, err := engine.Login(context.Background(), "bob@example.com", "0ther-Secret!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := engine.GlobalLogout(context.Background(), admin.ID); err != nil {
		t.Fatalf("GlobalLogout failed: %v", err)
	}

	if _, err := engine.Validate(context.Background(), bob.Token); !errors.Is(err, ErrTokenInvalidated) {
		t.Fatalf("want ErrTokenInvalidated for another account's token, got %v", err)
	}
}

func TestGlobalLogoutUnknownPrincipal(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(t, testConfig(), store, nil)

	if _, err := engine.GlobalLogout(context.Background(), "ghost"); !errors.Is(err, ErrPrincipalNotFound) {
		t.Fatalf("want ErrPrincipalNotFound, got %v", err)
	}
}

func TestGlobalLogoutRepeatedCallsKeepAdvancing(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(t, testConfig(), store, nil)
	p := seedPrincipal(t, engine, store, "alice@example.com", "Sup3r-Secret!", "Admin")

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		out, err := engine.GlobalLogout(context.Background(), p.ID)
		if err != nil {
			t.Fatalf("GlobalLogout #%d failed: %v", i, err)
		}
		if seen[out.NewVersion] {
			t.Fatalf("version %s repeated", out.NewVersion)
		}
		seen[out.NewVersion] = true
	}
}

func TestLogoutIsAuditOnly(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(t, testConfig(), store, nil)
	p := seedPrincipal(t, engine, store, "alice@example.com", "Sup3r-Secret!", "Mentor")

	res, err := engine.Login(context.Background(), "alice@example.com", "Sup3r-Secret!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := engine.Logout(context.Background(), p.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	// Stateless tokens stay valid until expiry or a global logout.
	if _, err := engine.Validate(context.Background(), res.Token); err != nil {
		t.Fatalf("Validate after logout failed: %v", err)
	}
}
