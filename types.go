package authkit

import (
	"context"
	"time"
)

// ApprovalState represents the role-dependent approval gate applied at login.
type ApprovalState uint8

const (
	// ApprovalApproved allows login.
	ApprovalApproved ApprovalState = iota
	// ApprovalPending blocks login with [ErrAccountPendingApproval].
	ApprovalPending
)

// Principal is the authenticating account entity. Principals are soft-deleted
// (Active=false) and never physically removed.
type Principal struct {
	ID           string
	Email        string
	Username     string
	FullName     string
	PasswordHash string
	Title        string
	Active       bool
	Approval     ApprovalState
	MFAEnabled   bool
	MFASecret    string

	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeactivatedAt    time.Time
	DeactivateReason string
}

// PrincipalField names a Principal field for $unset-style removal in a patch.
type PrincipalField string

const (
	// FieldMFASecret removes the stored TOTP secret.
	FieldMFASecret PrincipalField = "mfaSecret"
	// FieldDeactivateReason removes the stored deactivation reason.
	FieldDeactivateReason PrincipalField = "deactivateReason"
)

// PrincipalPatch is a partial update. Nil pointer fields are left untouched;
// fields listed in Unset are removed from the record entirely.
type PrincipalPatch struct {
	PasswordHash     *string
	Title            *string
	Active           *bool
	Approval         *ApprovalState
	MFAEnabled       *bool
	MFASecret        *string
	DeactivatedAt    *time.Time
	DeactivateReason *string

	Unset []PrincipalField
}

// CreatePrincipalInput is the input for [PrincipalStore.Create].
type CreatePrincipalInput struct {
	Email        string
	Username     string
	FullName     string
	PasswordHash string
	Title        string
	Approval     ApprovalState
}

// PrincipalStore is the interface callers implement to integrate authkit with
// their account database. Lookups return (nil, nil) when no record matches;
// a non-nil error always means the backend itself failed.
type PrincipalStore interface {
	FindByEmail(ctx context.Context, email string) (*Principal, error)
	FindByUsername(ctx context.Context, username string) (*Principal, error)
	FindByID(ctx context.Context, id string) (*Principal, error)
	Create(ctx context.Context, input CreatePrincipalInput) (*Principal, error)
	UpdateByID(ctx context.Context, id string, patch PrincipalPatch) (*Principal, error)
}

// Mail is a templated message handed to the [MailSender].
type Mail struct {
	To       string
	Subject  string
	Template string
	Context  map[string]string
}

// MailSender delivers transactional email. Implementations are external to
// this core; a failed send surfaces as [ErrMailUnavailable] only where the
// flow depends on delivery.
type MailSender interface {
	Send(ctx context.Context, mail Mail) error
}

// LoginResult is returned by [Engine.Login]. When MFARequired is true, Token
// is a temporary MFA-pending token that must be exchanged through
// [Engine.VerifyMFALogin]; otherwise Token is a normal access token.
type LoginResult struct {
	Token        string
	RefreshToken string
	ExpiredIn    int64
	MFARequired  bool
	IsMFAEnabled bool
	Principal    *Principal
}

// MFAVerifyResult is returned after a successful MFA code verification.
type MFAVerifyResult struct {
	Token        string
	ExpiredIn    int64
	IsMFAEnabled bool
	Principal    *Principal
}

// MFASetup carries the freshly generated TOTP secret, its otpauth
// provisioning URL, and the URL rendered as a PNG image.
type MFASetup struct {
	Secret          string
	ProvisioningURL string
	QRCodePNG       []byte
}

// RefreshResult is returned by [Engine.Refresh].
type RefreshResult struct {
	Token        string
	RefreshToken string
	ExpiredIn    int64
	Principal    *Principal
}

// GlobalLogoutResult reports the version bump performed by
// [Engine.GlobalLogout].
type GlobalLogoutResult struct {
	OldVersion string
	NewVersion string
	Message    string
}

// RegisterResult is returned by [Engine.Register]. InitialPassword is only
// populated when the engine generated one.
type RegisterResult struct {
	Principal       *Principal
	InitialPassword string
}

// RequestPrincipal is the authenticated request context produced by
// [Engine.Validate] and attached by the middleware. It replaces re-sniffing a
// wrapped-user shape per call site: the principal and permissions are resolved
// exactly once at the authentication boundary.
type RequestPrincipal struct {
	Principal   *Principal
	Permissions []string
}
