package authkit

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/edumentor/authkit/token"
)

// RequestPasswordReset issues a reset token for the account and mails the
// reset link. The boolean mirrors the mail being sent; an unknown email
// returns (false, nil) so callers can respond uniformly without leaking
// account existence.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	p, err := e.principals.FindByEmail(ctx, email)
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	if p == nil || !p.Active {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditResetFailed, "PASSWORD", "", ErrPrincipalNotFound, func() map[string]string {
			return map[string]string{"email": email}
		})
		return false, nil
	}
	if e.mailer == nil {
		return false, ErrMailUnavailable
	}

	reset, err := e.tokens.IssueReset(p.ID)
	if err != nil {
		return false, err
	}

	mail := Mail{
		To:       p.Email,
		Subject:  "Reset your password",
		Template: "password-reset",
		Context: map[string]string{
			"fullName": p.FullName,
			"resetURL": e.config.PasswordReset.ResetURLBase + reset,
		},
	}
	if err := e.mailer.Send(ctx, mail); err != nil {
		return false, errors.Join(ErrMailUnavailable, err)
	}

	e.metricInc(MetricPasswordResetRequest)
	e.emitAudit(ctx, auditResetRequested, "PASSWORD", p.ID, nil, nil)
	return true, nil
}

// ResetPassword completes a mailed reset: the token must be a reset token
// with the reset purpose, and the new password must satisfy policy.
func (e *Engine) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := e.tokens.ParseReset(resetToken)
	if err != nil {
		e.metricInc(MetricPasswordResetFailure)
		if errors.Is(err, token.ErrInvalidPurpose) {
			return ErrInvalidPurpose
		}
		return ErrTokenInvalid
	}

	p, err := e.loadActivePrincipal(ctx, claims.PrincipalID)
	if err != nil {
		return err
	}
	if err := validatePasswordPolicy(newPassword); err != nil {
		return err
	}

	hash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		return err
	}
	if _, err := e.principals.UpdateByID(ctx, p.ID, PrincipalPatch{PasswordHash: &hash}); err != nil {
		return err
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, auditResetCompleted, "PASSWORD", p.ID, nil, nil)
	return nil
}

// ForgotPassword replaces a password given only the email address, with no
// token or mail round trip. It is disabled unless explicitly opted into via
// PasswordResetConfig.AllowDirectForgot.
func (e *Engine) ForgotPassword(ctx context.Context, email, newPassword string) error {
	if !e.config.PasswordReset.AllowDirectForgot {
		return ErrDirectResetDisabled
	}
	email = strings.ToLower(strings.TrimSpace(email))

	p, err := e.principals.FindByEmail(ctx, email)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if p == nil {
		return ErrPrincipalNotFound
	}
	if err := validatePasswordPolicy(newPassword); err != nil {
		return err
	}

	hash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		return err
	}
	if _, err := e.principals.UpdateByID(ctx, p.ID, PrincipalPatch{PasswordHash: &hash}); err != nil {
		return err
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, auditForgotChanged, "PASSWORD", p.ID, nil, nil)
	return nil
}

// ChangePassword rotates a password for an authenticated principal after
// re-verifying the current one.
func (e *Engine) ChangePassword(ctx context.Context, principalID, current, next string) error {
	p, err := e.loadActivePrincipal(ctx, principalID)
	if err != nil {
		return err
	}

	ok, err := e.passwordHash.Verify(current, p.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		e.emitAudit(ctx, auditPasswordChanged, "PASSWORD", p.ID, ErrCurrentPasswordMismatch, nil)
		return ErrCurrentPasswordMismatch
	}
	if err := validatePasswordPolicy(next); err != nil {
		return err
	}

	hash, err := e.passwordHash.Hash(next)
	if err != nil {
		return err
	}
	if _, err := e.principals.UpdateByID(ctx, p.ID, PrincipalPatch{PasswordHash: &hash}); err != nil {
		return err
	}

	e.metricInc(MetricPasswordChanged)
	e.emitAudit(ctx, auditPasswordChanged, "PASSWORD", p.ID, nil, nil)
	return nil
}

// validatePasswordPolicy enforces the minimum bar: eight characters with at
// least one lowercase, one uppercase, one digit, and one symbol.
func validatePasswordPolicy(plaintext string) error {
	trimmed := strings.TrimSpace(plaintext)
	if len(trimmed) < 8 {
		return ErrPasswordPolicy
	}
	var lower, upper, digit, symbol bool
	for _, r := range trimmed {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !lower || !upper || !digit || !symbol {
		return ErrPasswordPolicy
	}
	return nil
}
