package authkit

import (
	"context"
	"errors"
	"testing"
)

func TestValidateAcceptsBearerPrefix(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(t, testConfig(), store, nil)
	p := seedPrincipal(t, engine, store, "alice@example.com", "Sup3r-Secret!", "Mentor")

	res, err := engine.Login(context.Background(), "alice@example.com", "Sup3r-Secret!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	for _, header := range []string{res.Token, "Bearer " + res.Token} {
		rp, err := engine.Validate(context.Background(), header)
		if err != nil {
			t.Fatalf("Validate(%q...) failed: %v", header[:6], err)
		}
		if rp.Principal.ID != p.ID {
			t.Fatalf("resolved principal %s, want %s", rp.Principal.ID, p.ID)
		}
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(t, testConfig(), store, nil)

	if _, err := engine.Validate(context.Background(), "not-a-jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("want ErrTokenInvalid, got %v", err)
	}
}

func TestValidateRejectsRefreshToken(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(t, testConfig(), store, nil)
	seedPrincipal(t, engine, store, "alice@example.com", "Sup3r-Secret!", "Mentor")

	res, err := engine.Login(context.Background(), "alice@example.com", "Sup3r-Secret!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := engine.Validate(context.Background(), res.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("want ErrTokenInvalid for a refresh token, got %v", err)
	}
}

func TestValidateRejectsDeactivatedPrincipal(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(t, testConfig(), store, nil)
	p := seedPrincipal(t, engine, store, "alice@example.com", "Sup3r-Secret!", "Mentor")

	res, err := engine.Login(context.Background(), "alice@example.com", "Sup3r-Secret!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	p.Active = false
	store.put(p)

	if _, err := engine.Validate(context.Background(), res.Token); !errors.Is(err, ErrAccountDeactivated) {
		t.Fatalf("want ErrAccountDeactivated, got %v", err)
	}
}

func TestValidateFailsClosedWhenVersionUnavailable(t *testing.T) {
	store := newFakeStore()
	engine, mr := newTestEngine(t, testConfig(), store, nil)
	seedPrincipal(t, engine, store, "alice@example.com", "Sup3r-Secret!", "Mentor")

	res, err := engine.Login(context.Background(), "alice@example.com", "Sup3r-Secret!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	mr.Close()

	if _, err := engine.Validate(context.Background(), res.Token); !errors.Is(err, ErrLogoutVersionUnavailable) {
		t.Fatalf("want ErrLogoutVersionUnavailable, got %v", err)
	}
}

func TestValidatePermissionsDeriveFromTitle(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(t, testConfig(), store, nil)
	seedPrincipal(t, engine, store, "alice@example.com", "Sup3r-Secret!", "Admin")

	res, err := engine.Login(context.Background(), "alice@example.com", "Sup3r-Secret!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	rp, err := engine.Validate(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(rp.Permissions) != 1 || rp.Permissions[0] != "admin" {
		t.Fatalf("Permissions = %v", rp.Permissions)
	}
}
