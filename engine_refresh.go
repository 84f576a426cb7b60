package authkit

import "context"

// Refresh exchanges a refresh token for a fresh token pair. The new access
// token carries the current global logout version, so a refresh after a
// global logout re-admits the session; the refresh token itself is rotated.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := e.tokens.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, ErrTokenInvalid
	}

	p, err := e.loadActivePrincipal(ctx, claims.PrincipalID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	ttl := e.accessTTL(ctx)
	access, err := e.tokens.IssueAccess(p.ID, e.issueVersion(ctx), ttl)
	if err != nil {
		return nil, err
	}
	rotated, err := e.tokens.IssueRefresh(p.ID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditTokenRefreshed, "TOKEN", p.ID, nil, nil)

	return &RefreshResult{
		Token:        access,
		RefreshToken: rotated,
		ExpiredIn:    expiredInSeconds(ttl),
		Principal:    p,
	}, nil
}
