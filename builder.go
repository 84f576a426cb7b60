package authkit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/edumentor/authkit/password"
	"github.com/edumentor/authkit/settings"
	"github.com/edumentor/authkit/token"
)

// Builder assembles an Engine. Zero value is unusable; start with New.
//
//	eng, err := authkit.New().
//		WithConfig(cfg).
//		WithRedis(client).
//		WithPrincipalStore(store).
//		Build(ctx)
type Builder struct {
	config     Config
	configSet  bool
	redis      *redis.Client
	principals PrincipalStore
	mailer     MailSender
	auditSink  AuditSink
	logger     func(string)
}

// New returns a Builder seeded with defaults.
func New() *Builder {
	return &Builder{}
}

// WithConfig replaces the default configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	b.configSet = true
	return b
}

// WithRedis attaches the Redis client backing settings and the global
// logout version. Required.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithPrincipalStore attaches the account backend. Required.
func (b *Builder) WithPrincipalStore(store PrincipalStore) *Builder {
	b.principals = store
	return b
}

// WithMailSender attaches the outbound mail transport. Optional; flows that
// would send mail return ErrMailUnavailable without one.
func (b *Builder) WithMailSender(m MailSender) *Builder {
	b.mailer = m
	return b
}

// WithAuditSink attaches the audit destination. Optional; defaults to a
// no-op sink when auditing is enabled without one.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger attaches a warning logger. Optional; defaults to the standard
// library logger.
func (b *Builder) WithLogger(fn func(string)) *Builder {
	b.logger = fn
	return b
}

// Build validates the configuration, wires the components, and starts the
// audit dispatcher. Global-version initialization is attempted but a failure
// is non-fatal: the key is also created lazily on first increment.
func (b *Builder) Build(ctx context.Context) (*Engine, error) {
	cfg := b.config
	if !b.configSet {
		cfg = defaultConfig()
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, fmt.Errorf("authkit: redis client is required: %w", ErrEngineNotReady)
	}
	if b.principals == nil {
		return nil, fmt.Errorf("authkit: principal store is required: %w", ErrEngineNotReady)
	}

	cfg = cloneConfig(cfg)

	tokens, err := token.NewManager(token.Config{
		AccessSecret:  cfg.Token.AccessSecret,
		RefreshSecret: cfg.Token.RefreshSecret,
		RefreshTTL:    cfg.Token.RefreshTTL,
		ResetTTL:      cfg.Token.ResetTTL,
		Issuer:        cfg.Token.Issuer,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.New(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
		Pepper:      cfg.Password.Pepper,
	})
	if err != nil {
		return nil, err
	}

	settingsStore, err := settings.NewStore(b.redis, cfg.Settings.KeyPrefix)
	if err != nil {
		return nil, err
	}
	versions, err := settings.NewGlobalVersion(b.redis, cfg.Settings.KeyPrefix, cfg.Settings.LogoutVersionKey, cfg.Settings.DefaultVersion)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config:        cfg,
		principals:    b.principals,
		settingsStore: settingsStore,
		versions:      versions,
		tokens:        tokens,
		passwordHash:  hasher,
		totp:          newTOTPManager(cfg.TOTP),
		metrics:       NewMetrics(cfg.Metrics),
		mailer:        b.mailer,
		logger:        b.logger,
	}

	sink := b.auditSink
	if sink == nil {
		sink = NoOpSink{}
	}
	e.audit = newAuditDispatcher(cfg.Audit, sink, func(total uint64) {
		e.warn(fmt.Sprintf("authkit: audit buffer full, %d event(s) dropped", total))
	})

	if err := versions.Initialize(ctx); err != nil {
		e.warn("authkit: global logout version initialization failed, deferring to first increment")
	}

	return e, nil
}
