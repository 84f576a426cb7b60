package authkit

import (
	"context"
	"strings"
	"time"
)

// SetupMFA generates a TOTP secret for the principal and returns the
// provisioning URI plus a QR code PNG for authenticator apps. The secret is
// stored immediately but MFA stays disabled until the first code verifies.
// Enrollment is restricted to elevated titles.
func (e *Engine) SetupMFA(ctx context.Context, principalID string) (*MFASetup, error) {
	p, err := e.loadActivePrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if !e.titleMayEnroll(p.Title) {
		e.emitAudit(ctx, auditMFASetupRequested, "MFA", p.ID, ErrMFASetupForbidden, nil)
		return nil, ErrMFASetupForbidden
	}
	if p.MFAEnabled {
		return nil, ErrMFAAlreadyEnabled
	}

	secret, err := e.totp.GenerateSecret()
	if err != nil {
		return nil, err
	}
	uri := e.totp.ProvisionURI(secret, p.Email)

	png, err := renderQRCode(uri)
	if err != nil {
		e.metricInc(MetricQRGenerationFailure)
		return nil, err
	}

	if _, err := e.principals.UpdateByID(ctx, p.ID, PrincipalPatch{MFASecret: &secret}); err != nil {
		return nil, err
	}

	e.metricInc(MetricMFASetupRequested)
	e.emitAudit(ctx, auditMFASetupRequested, "MFA", p.ID, nil, nil)

	return &MFASetup{
		Secret:          secret,
		ProvisioningURL: uri,
		QRCodePNG:       png,
	}, nil
}

// VerifyMFAToken checks a TOTP code for the principal and issues an access
// token. The first successful verification after enrollment flips MFA on.
func (e *Engine) VerifyMFAToken(ctx context.Context, principalID, code string) (*MFAVerifyResult, error) {
	p, err := e.loadActivePrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if p.MFASecret == "" {
		return nil, ErrMFANotConfigured
	}

	ok, err := e.totp.VerifyCode(p.MFASecret, code, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		e.metricInc(MetricMFAVerifyFailure)
		e.emitAudit(ctx, auditMFAVerifyFailed, "MFA", p.ID, ErrMFAInvalidCode, nil)
		return nil, ErrMFAInvalidCode
	}

	if !p.MFAEnabled {
		enabled := true
		p, err = e.principals.UpdateByID(ctx, p.ID, PrincipalPatch{MFAEnabled: &enabled})
		if err != nil {
			return nil, err
		}
	}

	ttl := e.accessTTL(ctx)
	access, err := e.tokens.IssueAccess(p.ID, e.issueVersion(ctx), ttl)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricMFAVerifySuccess)
	e.emitAudit(ctx, auditMFAVerifySuccess, "MFA", p.ID, nil, nil)

	return &MFAVerifyResult{
		Token:        access,
		ExpiredIn:    expiredInSeconds(ttl),
		IsMFAEnabled: true,
		Principal:    p,
	}, nil
}

// VerifyMFALogin completes a login that Login answered with a challenge
// token. On success it returns the full token pair.
func (e *Engine) VerifyMFALogin(ctx context.Context, challengeToken, code string) (*LoginResult, error) {
	claims, err := e.tokens.ParseAccess(challengeToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if !claims.MFAPending {
		return nil, ErrTokenInvalid
	}
	if err := e.checkTokenVersion(ctx, claims.GlobalLogoutVersion); err != nil {
		return nil, err
	}

	verified, err := e.VerifyMFAToken(ctx, claims.PrincipalID, code)
	if err != nil {
		return nil, err
	}

	refresh, err := e.tokens.IssueRefresh(verified.Principal.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:        verified.Token,
		RefreshToken: refresh,
		ExpiredIn:    verified.ExpiredIn,
		IsMFAEnabled: true,
		Principal:    verified.Principal,
	}, nil
}

func (e *Engine) titleMayEnroll(title string) bool {
	for _, elevated := range e.config.TOTP.ElevatedTitles {
		if strings.Contains(strings.ToLower(title), strings.ToLower(elevated)) {
			return true
		}
	}
	return false
}
