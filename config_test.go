package authkit

import (
	"testing"
	"time"
)

func TestValidateConfigDefaultsNeedSecrets(t *testing.T) {
	cfg := defaultConfig()
	if err := validateConfig(cfg); err == nil {
		t.Fatal("defaults without secrets must not validate")
	}
}

func TestValidateConfigAccepts(t *testing.T) {
	if err := validateConfig(testConfig()); err != nil {
		t.Fatalf("validateConfig: %v", err)
	}
}

func TestValidateConfigRejections(t *testing.T) {
	mutations := map[string]func(*Config){
		"equal secrets":     func(c *Config) { c.Token.RefreshSecret = append([]byte(nil), c.Token.AccessSecret...) },
		"zero access TTL":   func(c *Config) { c.Token.AccessTTL = 0 },
		"negative reset":    func(c *Config) { c.Token.ResetTTL = -time.Hour },
		"too few digits":    func(c *Config) { c.TOTP.Digits = 4 },
		"too many digits":   func(c *Config) { c.TOTP.Digits = 11 },
		"zero period":       func(c *Config) { c.TOTP.Period = 0 },
		"excessive skew":    func(c *Config) { c.TOTP.Skew = 3 },
		"missing pepper":    func(c *Config) { c.Password.Pepper = nil },
		"no version key":    func(c *Config) { c.Settings.LogoutVersionKey = "" },
		"no default":        func(c *Config) { c.Settings.DefaultVersion = "" },
		"zero audit buffer": func(c *Config) { c.Audit.BufferSize = 0 },
	}
	for name, mutate := range mutations {
		cfg := testConfig()
		mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestCloneConfigIsDeep(t *testing.T) {
	cfg := testConfig()
	clone := cloneConfig(cfg)

	cfg.Token.AccessSecret[0] ^= 0xff
	cfg.TOTP.ElevatedTitles[0] = "Nobody"

	if clone.Token.AccessSecret[0] == cfg.Token.AccessSecret[0] {
		t.Fatal("access secret is shared")
	}
	if clone.TOTP.ElevatedTitles[0] == "Nobody" {
		t.Fatal("elevated titles are shared")
	}
}
