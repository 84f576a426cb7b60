package authkit

import (
	"context"
	"errors"
	"fmt"
)

// Logout records a single-session logout. Access tokens are stateless, so
// the server-side effect is the audit trail; clients discard their pair.
func (e *Engine) Logout(ctx context.Context, principalID string) error {
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditUserLogout, "LOGOUT", principalID, nil, nil)
	return nil
}

// GlobalLogout bumps the global logout version, invalidating every access
// token issued before the call, across all devices and all accounts. The
// increment is atomic; concurrent calls each observe a distinct new version.
func (e *Engine) GlobalLogout(ctx context.Context, principalID string) (*GlobalLogoutResult, error) {
	p, err := e.principals.FindByID(ctx, principalID)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	if p == nil {
		return nil, ErrPrincipalNotFound
	}

	old, err := e.versions.Current(ctx)
	if err != nil {
		old = e.config.Settings.DefaultVersion
	}
	next, err := e.versions.Increment(ctx)
	if err != nil {
		e.emitAudit(ctx, auditGlobalLogoutFail, "LOGOUT", p.ID, err, nil)
		return nil, errors.Join(ErrLogoutVersionUnavailable, err)
	}

	e.metricInc(MetricGlobalLogout)
	e.emitAudit(ctx, auditGlobalLogout, "LOGOUT", p.ID, nil, func() map[string]string {
		return map[string]string{"oldVersion": old, "newVersion": next}
	})

	return &GlobalLogoutResult{
		OldVersion: old,
		NewVersion: next,
		Message:    fmt.Sprintf("All sessions invalidated, new version %s", next),
	}, nil
}
