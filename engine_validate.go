package authkit

import (
	"context"
	"strings"
	"time"
)

// Validate authenticates a bearer token and resolves the calling principal.
// The "Bearer " prefix is tolerated. Challenge tokens from a pending MFA
// login are rejected here; only VerifyMFALogin accepts them. When the global
// logout version cannot be read validation fails closed.
func (e *Engine) Validate(ctx context.Context, bearer string) (*RequestPrincipal, error) {
	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.Observe(MetricValidateLatency, time.Since(start))
		}
	}()

	raw := strings.TrimSpace(bearer)
	if rest, ok := strings.CutPrefix(raw, "Bearer "); ok {
		raw = strings.TrimSpace(rest)
	}

	claims, err := e.tokens.ParseAccess(raw)
	if err != nil {
		e.metricInc(MetricValidateFailure)
		return nil, ErrTokenInvalid
	}
	if claims.MFAPending {
		e.metricInc(MetricValidateFailure)
		return nil, ErrMFAChallengePending
	}
	if err := e.checkTokenVersion(ctx, claims.GlobalLogoutVersion); err != nil {
		e.metricInc(MetricValidateFailure)
		return nil, err
	}

	p, err := e.loadActivePrincipal(ctx, claims.PrincipalID)
	if err != nil {
		e.metricInc(MetricValidateFailure)
		return nil, err
	}

	e.metricInc(MetricValidateSuccess)
	return &RequestPrincipal{
		Principal:   p,
		Permissions: permissionsFor(p),
	}, nil
}

// checkTokenVersion compares a token's embedded logout version against the
// live counter. Any mismatch means a global logout happened after issuance.
func (e *Engine) checkTokenVersion(ctx context.Context, tokenVersion string) error {
	current, err := e.versions.Current(ctx)
	if err != nil {
		return ErrLogoutVersionUnavailable
	}
	if tokenVersion != current {
		e.metricInc(MetricTokenInvalidated)
		return ErrTokenInvalidated
	}
	return nil
}

// permissionsFor derives the coarse permission set from the account title.
// Authorization beyond title matching belongs to the caller.
func permissionsFor(p *Principal) []string {
	if p.Title == "" {
		return nil
	}
	return []string{strings.ToLower(p.Title)}
}
