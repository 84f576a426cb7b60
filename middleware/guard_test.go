package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authkit "github.com/edumentor/authkit"
	"github.com/edumentor/authkit/internal"
)

type memStore struct {
	mu   sync.Mutex
	byID map[string]*authkit.Principal
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*authkit.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byID {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindByUsername(_ context.Context, username string) (*authkit.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byID {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*authkit.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) Create(_ context.Context, input authkit.CreatePrincipalInput) (*authkit.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &authkit.Principal{
		ID:           internal.NewPrincipalID(),
		Email:        input.Email,
		Username:     input.Username,
		FullName:     input.FullName,
		PasswordHash: input.PasswordHash,
		Title:        input.Title,
		Active:       true,
		Approval:     input.Approval,
	}
	s.byID[p.ID] = p
	cp := *p
	return &cp, nil
}

func (s *memStore) UpdateByID(_ context.Context, id string, patch authkit.PrincipalPatch) (*authkit.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byID[id]
	if patch.PasswordHash != nil {
		p.PasswordHash = *patch.PasswordHash
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if patch.MFAEnabled != nil {
		p.MFAEnabled = *patch.MFAEnabled
	}
	if patch.MFASecret != nil {
		p.MFASecret = *patch.MFASecret
	}
	cp := *p
	return &cp, nil
}

func newGuardedServer(t *testing.T) (*httptest.Server, *authkit.Engine, string) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := authkit.DefaultConfig()
	cfg.Token.AccessSecret = []byte("guard-test-access-secret")
	cfg.Token.RefreshSecret = []byte("guard-test-refresh-secret")
	cfg.Password.Pepper = []byte("guard-test-pepper-16")

	store := &memStore{byID: map[string]*authkit.Principal{}}
	engine, err := authkit.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithPrincipalStore(store).
		WithLogger(func(string) {}).
		Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	reg, err := engine.Register(context.Background(), authkit.RegisterInput{
		Email:    "alice@example.com",
		FullName: "Alice Guard",
		Title:    "Admin",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	login, err := engine.Login(context.Background(), reg.Principal.Email, reg.InitialPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rp, ok := PrincipalFromContext(r.Context())
		if !ok {
			http.Error(w, "principal missing", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(rp.Principal.FullName))
	}))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, engine, login.Token
}

func get(t *testing.T, url, token string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return resp, string(body)
}

func TestGuardAllowsValidToken(t *testing.T) {
	srv, _, token := newGuardedServer(t)

	resp, body := get(t, srv.URL, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %q", resp.StatusCode, body)
	}
	if body != "Alice Guard" {
		t.Fatalf("body = %q", body)
	}
}

func TestGuardRejectsMissingToken(t *testing.T) {
	srv, _, _ := newGuardedServer(t)

	resp, _ := get(t, srv.URL, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestGuardRejectsGarbageToken(t *testing.T) {
	srv, _, _ := newGuardedServer(t)

	resp, _ := get(t, srv.URL, "garbage")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestGuardDistinguishesInvalidatedSessions(t *testing.T) {
	srv, engine, token := newGuardedServer(t)

	rp, err := engine.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if _, err := engine.GlobalLogout(context.Background(), rp.Principal.ID); err != nil {
		t.Fatalf("GlobalLogout: %v", err)
	}

	resp, body := get(t, srv.URL, token)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "session invalidated") {
		t.Fatalf("body = %q", body)
	}
}
