package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// resetSecretSuffix derives the password-reset signing secret from the access
// secret. A reset token therefore fails signature verification against the
// access verifier even before its purpose claim is inspected.
const resetSecretSuffix = "_RESET"

// PurposePasswordReset is the purpose tag carried by reset tokens.
const PurposePasswordReset = "password_reset"

var (
	// ErrInvalidToken covers malformed, expired, and badly signed tokens.
	// The cases are deliberately indistinguishable.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidPurpose is returned when a reset token's purpose claim is not
	// [PurposePasswordReset].
	ErrInvalidPurpose = errors.New("invalid token purpose")
)

// Config holds the per-kind signing material. Access and temporary tokens
// share AccessSecret; refresh tokens use RefreshSecret.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
	Issuer        string
}

// Claims is the decoded payload of any authkit token. Wire names match the
// original deployment so tokens stay interchangeable across services:
// "id", "isGlobalLogOut", "mfaPending", "purpose".
type Claims struct {
	PrincipalID         string `json:"id"`
	GlobalLogoutVersion string `json:"isGlobalLogOut,omitempty"`
	MFAPending          bool   `json:"mfaPending,omitempty"`
	Purpose             string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens with HMAC-SHA256.
type Manager struct {
	config      Config
	resetSecret []byte
}

// NewManager validates the signing configuration and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 {
		return nil, errors.New("access secret is required")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("refresh secret is required")
	}
	if cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid refresh TTL")
	}
	if cfg.ResetTTL <= 0 {
		return nil, errors.New("invalid reset TTL")
	}

	resetSecret := make([]byte, 0, len(cfg.AccessSecret)+len(resetSecretSuffix))
	resetSecret = append(resetSecret, cfg.AccessSecret...)
	resetSecret = append(resetSecret, resetSecretSuffix...)

	return &Manager{config: cfg, resetSecret: resetSecret}, nil
}

// IssueAccess creates an access token embedding the given global-logout
// version as a snapshot taken at issuance time.
func (m *Manager) IssueAccess(principalID, logoutVersion string, ttl time.Duration) (string, error) {
	return m.sign(m.config.AccessSecret, Claims{
		PrincipalID:         principalID,
		GlobalLogoutVersion: logoutVersion,
		RegisteredClaims:    m.registered(ttl),
	})
}

// IssueTemporary creates an MFA-pending token. It shares the access secret
// and version snapshot but is marked so it cannot authorize normal requests.
func (m *Manager) IssueTemporary(principalID, logoutVersion string, ttl time.Duration) (string, error) {
	return m.sign(m.config.AccessSecret, Claims{
		PrincipalID:         principalID,
		GlobalLogoutVersion: logoutVersion,
		MFAPending:          true,
		RegisteredClaims:    m.registered(ttl),
	})
}

// IssueRefresh creates a refresh token carrying only the principal ID, with
// the fixed refresh lifetime.
func (m *Manager) IssueRefresh(principalID string) (string, error) {
	return m.sign(m.config.RefreshSecret, Claims{
		PrincipalID:      principalID,
		RegisteredClaims: m.registered(m.config.RefreshTTL),
	})
}

// IssueReset creates a purpose-scoped password-reset token signed with the
// derived reset secret.
func (m *Manager) IssueReset(principalID string) (string, error) {
	return m.sign(m.resetSecret, Claims{
		PrincipalID:      principalID,
		Purpose:          PurposePasswordReset,
		RegisteredClaims: m.registered(m.config.ResetTTL),
	})
}

// ParseAccess verifies an access or temporary token. Callers must still check
// Claims.MFAPending and compare Claims.GlobalLogoutVersion against the
// current version.
func (m *Manager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(m.config.AccessSecret, tokenStr)
}

// ParseRefresh verifies a refresh token.
func (m *Manager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(m.config.RefreshSecret, tokenStr)
}

// ParseReset verifies a password-reset token, including its purpose binding.
func (m *Manager) ParseReset(tokenStr string) (*Claims, error) {
	claims, err := m.parse(m.resetSecret, tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != PurposePasswordReset {
		return nil, ErrInvalidPurpose
	}
	return claims, nil
}

func (m *Manager) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    m.config.Issuer,
	}
}

func (m *Manager) sign(secret []byte, claims Claims) (string, error) {
	if m == nil {
		return "", ErrInvalidToken
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(secret)
}

func (m *Manager) parse(secret []byte, tokenStr string) (*Claims, error) {
	if m == nil || tokenStr == "" {
		return nil, ErrInvalidToken
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.PrincipalID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
