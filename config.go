package authkit

import (
	"bytes"
	"errors"
	"time"
)

// Config is the full engine configuration. Instances are treated as immutable
// after [Builder.Build]; the builder stores a deep copy.
type Config struct {
	Token         TokenConfig
	TOTP          TOTPConfig
	Password      PasswordConfig
	PasswordReset PasswordResetConfig
	Account       AccountConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
	Settings      SettingsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls token signing. Access and temporary tokens share
// AccessSecret; refresh tokens use RefreshSecret; password-reset tokens are
// signed with AccessSecret + "_RESET" so they can never verify as access
// tokens.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration // fallback when the expiredToken setting is absent
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
	Issuer        string
}

/*
====================================
TOTP CONFIG
====================================
*/

// TOTPConfig controls MFA enrollment and verification.
type TOTPConfig struct {
	Issuer         string
	Digits         int
	Period         int
	Algorithm      string
	Skew           int
	ElevatedTitles []string // titles allowed to enroll in MFA
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig controls the keyed Argon2id hasher. Pepper is the
// process-wide secret mixed into every hash; it is required.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	Pepper      []byte
}

// PasswordResetConfig controls the reset flows. AllowDirectForgot re-enables
// the legacy email-only password overwrite; it is off by default because that
// path bypasses the token challenge.
type PasswordResetConfig struct {
	AllowDirectForgot bool
	ResetURLBase      string
}

// AccountConfig controls registration behaviour.
type AccountConfig struct {
	DefaultTitle      string
	WelcomeMailTitles []string // titles that receive a password-setup email on creation
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the internal counter registry.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
SETTINGS CONFIG
====================================
*/

// SettingsConfig names the runtime settings consulted by the engine.
type SettingsConfig struct {
	KeyPrefix        string
	ExpiredTokenKey  string // numeric day count overriding Token.AccessTTL
	LogoutVersionKey string
	DefaultVersion   string
}

// DefaultConfig returns the configuration baseline used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  24 * time.Hour,
			RefreshTTL: 60 * 24 * time.Hour,
			ResetTTL:   time.Hour,
			Issuer:     "authkit",
		},
		TOTP: TOTPConfig{
			Issuer:         "EduMentor",
			Digits:         6,
			Period:         30,
			Algorithm:      "SHA1",
			Skew:           1,
			ElevatedTitles: []string{"Admin", "Mentor"},
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		PasswordReset: PasswordResetConfig{
			AllowDirectForgot: false,
		},
		Account: AccountConfig{
			DefaultTitle:      "Member",
			WelcomeMailTitles: []string{"Admin", "Mentor"},
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
		Settings: SettingsConfig{
			KeyPrefix:        "ak",
			ExpiredTokenKey:  "expiredToken",
			LogoutVersionKey: "GLOBAL_LOGOUT_VERSION",
			DefaultVersion:   "1",
		},
	}
}

func validateConfig(cfg Config) error {
	if len(cfg.Token.AccessSecret) == 0 {
		return errors.New("token access secret is required")
	}
	if len(cfg.Token.RefreshSecret) == 0 {
		return errors.New("token refresh secret is required")
	}
	if bytes.Equal(cfg.Token.AccessSecret, cfg.Token.RefreshSecret) {
		return errors.New("access and refresh secrets must differ")
	}
	if cfg.Token.AccessTTL <= 0 || cfg.Token.RefreshTTL <= 0 || cfg.Token.ResetTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if cfg.TOTP.Digits < 6 || cfg.TOTP.Digits > 10 {
		return errors.New("totp digits must be between 6 and 10")
	}
	if cfg.TOTP.Period <= 0 {
		return errors.New("totp period must be positive")
	}
	if cfg.TOTP.Skew < 0 || cfg.TOTP.Skew > 2 {
		return errors.New("totp skew must be between 0 and 2")
	}
	if len(cfg.Password.Pepper) == 0 {
		return errors.New("password pepper is required")
	}
	if cfg.Settings.LogoutVersionKey == "" {
		return errors.New("logout version key is required")
	}
	if cfg.Settings.DefaultVersion == "" {
		return errors.New("default logout version is required")
	}
	if cfg.Audit.Enabled && cfg.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.AccessSecret = append([]byte(nil), cfg.Token.AccessSecret...)
	out.Token.RefreshSecret = append([]byte(nil), cfg.Token.RefreshSecret...)
	out.Password.Pepper = append([]byte(nil), cfg.Password.Pepper...)
	out.TOTP.ElevatedTitles = append([]string(nil), cfg.TOTP.ElevatedTitles...)
	out.Account.WelcomeMailTitles = append([]string(nil), cfg.Account.WelcomeMailTitles...)
	return out
}
