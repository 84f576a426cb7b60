package authkit

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/edumentor/authkit/password"
	"github.com/edumentor/authkit/settings"
	"github.com/edumentor/authkit/token"
)

// Engine orchestrates the authentication flows: login, MFA challenge and
// enrollment, token refresh and validation, logout, global logout, and the
// password lifecycle. Build one through [Builder.Build]; it is immutable and
// safe for concurrent use afterwards.
type Engine struct {
	config        Config
	principals    PrincipalStore
	settingsStore *settings.Store
	versions      *settings.GlobalVersion
	tokens        *token.Manager
	passwordHash  *password.Hasher
	totp          *totpManager
	audit         *auditDispatcher
	metrics       *Metrics
	mailer        MailSender
	logger        func(string)
}

// Close drains the audit dispatcher. Call it on shutdown.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the internal counters for exporters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) warn(msg string) {
	if e == nil {
		return
	}
	if e.logger != nil {
		e.logger(msg)
		return
	}
	log.Println(msg)
}

// accessTTL resolves the access-token lifetime. The expiredToken setting is a
// day count maintained at runtime; when absent or unreadable the configured
// fallback applies.
func (e *Engine) accessTTL(ctx context.Context) time.Duration {
	if e.settingsStore == nil {
		return e.config.Token.AccessTTL
	}
	raw, err := e.settingsStore.GetByKey(ctx, e.config.Settings.ExpiredTokenKey)
	if err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			e.warn("authkit: expiredToken setting unavailable, using configured TTL")
		}
		return e.config.Token.AccessTTL
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		e.warn("authkit: expiredToken setting is not a positive day count")
		return e.config.Token.AccessTTL
	}
	return time.Duration(days) * 24 * time.Hour
}

// issueVersion snapshots the current global-logout version for embedding in
// a new token. Issuance stays available when the version store is down: the
// default version is used and a warning logged (validation, by contrast,
// fails closed).
func (e *Engine) issueVersion(ctx context.Context) string {
	current, err := e.versions.Current(ctx)
	if err != nil {
		e.warn("authkit: global logout version unavailable at issuance, using default")
		return e.config.Settings.DefaultVersion
	}
	return current
}

func expiredInSeconds(ttl time.Duration) int64 {
	return int64(ttl / time.Second)
}

// loadActivePrincipal fetches a principal by ID and applies the lifecycle
// gates shared by the token flows.
func (e *Engine) loadActivePrincipal(ctx context.Context, id string) (*Principal, error) {
	p, err := e.principals.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	if p == nil {
		return nil, ErrPrincipalNotFound
	}
	if !p.Active {
		return nil, ErrAccountDeactivated
	}
	return p, nil
}
