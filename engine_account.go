package authkit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/edumentor/authkit/internal"
)

// RegisterInput describes a new account. Title defaults to
// AccountConfig.DefaultTitle when empty.
type RegisterInput struct {
	Email    string
	FullName string
	Title    string
}

// Register creates an account with a generated initial password and a
// username derived from the full name. Accounts with an elevated title are
// approved immediately; others start pending. For titles listed in
// AccountConfig.WelcomeMailTitles a welcome mail with the initial password
// is sent.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	fullName := strings.TrimSpace(input.FullName)
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = e.config.Account.DefaultTitle
	}

	existing, err := e.principals.FindByEmail(ctx, email)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}
	username := usernameFromFullName(fullName)
	taken, err := e.principals.FindByUsername(ctx, username)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	if taken != nil {
		return nil, ErrUsernameExists
	}

	initial, err := internal.GeneratePassword(12)
	if err != nil {
		return nil, err
	}
	hash, err := e.passwordHash.Hash(initial)
	if err != nil {
		return nil, err
	}

	approval := ApprovalPending
	if e.titleMayEnroll(title) {
		approval = ApprovalApproved
	}

	p, err := e.principals.Create(ctx, CreatePrincipalInput{
		Email:        email,
		Username:     username,
		FullName:     fullName,
		PasswordHash: hash,
		Title:        title,
		Approval:     approval,
	})
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	e.metricInc(MetricAccountCreated)
	e.emitAudit(ctx, auditUserCreated, "ACCOUNT", p.ID, nil, func() map[string]string {
		return map[string]string{"email": email, "title": title}
	})

	if e.mailer != nil && e.titleGetsWelcomeMail(title) {
		mail := Mail{
			To:       email,
			Subject:  "Your account is ready",
			Template: "welcome",
			Context: map[string]string{
				"fullName": fullName,
				"username": p.Username,
				"password": initial,
			},
		}
		if err := e.mailer.Send(ctx, mail); err != nil {
			e.warn("authkit: welcome mail delivery failed")
		}
	}

	return &RegisterResult{Principal: p, InitialPassword: initial}, nil
}

// Deactivate soft-deletes an account. The record stays in the store with
// Active=false so audits and historical lookups keep resolving; a second
// call fails
// with ErrAlreadyDeactivated.
func (e *Engine) Deactivate(ctx context.Context, principalID, reason string) (*Principal, error) {
	p, err := e.principals.FindByID(ctx, principalID)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	if p == nil {
		return nil, ErrPrincipalNotFound
	}
	if !p.Active {
		return nil, ErrAlreadyDeactivated
	}

	inactive := false
	now := time.Now().UTC()
	updated, err := e.principals.UpdateByID(ctx, p.ID, PrincipalPatch{
		Active:           &inactive,
		DeactivatedAt:    &now,
		DeactivateReason: &reason,
	})
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	e.metricInc(MetricAccountDeactivated)
	e.emitAudit(ctx, auditUserSoftDeleted, "ACCOUNT", p.ID, nil, func() map[string]string {
		return map[string]string{"reason": reason}
	})
	return updated, nil
}

// usernameFromFullName lowercases the full name and joins its words with
// hyphens, keeping only letters and digits within each word.
func usernameFromFullName(fullName string) string {
	words := strings.Fields(strings.ToLower(fullName))
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		var b strings.Builder
		for _, r := range w {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			cleaned = append(cleaned, b.String())
		}
	}
	return strings.Join(cleaned, "-")
}

func (e *Engine) titleGetsWelcomeMail(title string) bool {
	for _, t := range e.config.Account.WelcomeMailTitles {
		if strings.EqualFold(t, title) {
			return true
		}
	}
	return false
}
