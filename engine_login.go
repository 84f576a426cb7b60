package authkit

import (
	"context"
	"errors"
	"strings"
)

// Login verifies an email/password pair and issues tokens. When the account
// has MFA enabled the returned Token is a short-lived challenge token that
// only VerifyMFALogin accepts; the refresh token is withheld until the
// challenge completes. Lookup misses and password mismatches both surface as
// ErrInvalidCredentials.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	p, err := e.principals.FindByEmail(ctx, email)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	if p == nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditLoginFailed, "LOGIN", "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"email": email, "reason": "unknown account"}
		})
		return nil, ErrInvalidCredentials
	}
	if !p.Active {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditLoginFailed, "LOGIN", p.ID, ErrAccountDeactivated, nil)
		return nil, ErrAccountDeactivated
	}
	if p.Approval == ApprovalPending {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditLoginFailed, "LOGIN", p.ID, ErrAccountPendingApproval, nil)
		return nil, ErrAccountPendingApproval
	}

	ok, err := e.passwordHash.Verify(plaintext, p.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditLoginFailed, "LOGIN", p.ID, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "password mismatch"}
		})
		return nil, ErrInvalidCredentials
	}

	version := e.issueVersion(ctx)
	ttl := e.accessTTL(ctx)

	if p.MFAEnabled {
		temp, err := e.tokens.IssueTemporary(p.ID, version, ttl)
		if err != nil {
			return nil, err
		}
		e.metricInc(MetricLoginMFARequired)
		e.emitAudit(ctx, auditLoginMFARequired, "LOGIN", p.ID, nil, nil)
		return &LoginResult{
			Token:        temp,
			ExpiredIn:    expiredInSeconds(ttl),
			MFARequired:  true,
			IsMFAEnabled: true,
			Principal:    p,
		}, nil
	}

	access, err := e.tokens.IssueAccess(p.ID, version, ttl)
	if err != nil {
		return nil, err
	}
	refresh, err := e.tokens.IssueRefresh(p.ID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditLoginSuccess, "LOGIN", p.ID, nil, nil)

	return &LoginResult{
		Token:        access,
		RefreshToken: refresh,
		ExpiredIn:    expiredInSeconds(ttl),
		IsMFAEnabled: false,
		Principal:    p,
	}, nil
}
