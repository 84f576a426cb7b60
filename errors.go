package authkit

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine method is called before the
	// required dependencies were wired through [Builder.Build].
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrInvalidCredentials covers both unknown email and password mismatch so
	// callers cannot distinguish the two cases.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPrincipalNotFound is returned when a principal lookup by ID fails.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrAccountDeactivated is returned when the principal was soft-deleted.
	ErrAccountDeactivated = errors.New("account deactivated")
	// ErrAccountPendingApproval is returned when the principal's approval
	// state blocks login. Unlike the generic credential failure this one is
	// surfaced to the user verbatim.
	ErrAccountPendingApproval = errors.New("account pending approval")

	// ErrTokenInvalid covers malformed, expired, and badly signed tokens.
	// The cases are indistinguishable to callers to avoid oracle leaks.
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrTokenInvalidated marks an access or temporary token whose embedded
	// global-logout version no longer matches the current one. Clients should
	// treat it as "please log in again" rather than a generic auth failure.
	ErrTokenInvalidated = errors.New("token invalidated by global logout")
	// ErrInvalidPurpose is returned when a password-reset token carries a
	// purpose claim other than "password_reset".
	ErrInvalidPurpose = errors.New("invalid token purpose")
	// ErrMFAChallengePending is returned when a temporary MFA-pending token is
	// presented for normal API access.
	ErrMFAChallengePending = errors.New("mfa challenge pending")
	// ErrLogoutVersionUnavailable is returned when the global-logout version
	// cannot be read during validation. Validation fails closed.
	ErrLogoutVersionUnavailable = errors.New("global logout version unavailable")

	// ErrMFANotConfigured is returned when MFA verification is attempted for a
	// principal with no stored secret.
	ErrMFANotConfigured = errors.New("mfa not configured")
	// ErrMFAInvalidCode is returned when the submitted one-time code does not
	// verify against the principal's secret.
	ErrMFAInvalidCode = errors.New("invalid mfa code")
	// ErrMFAAlreadyEnabled is returned when setup is requested for a principal
	// that already confirmed MFA.
	ErrMFAAlreadyEnabled = errors.New("mfa already enabled")
	// ErrMFASetupForbidden is returned when a principal without an elevated
	// title requests MFA setup.
	ErrMFASetupForbidden = errors.New("mfa setup not permitted for this role")
	// ErrQRGeneration wraps a failure to encode the provisioning URL as a QR
	// image. Retryable by the client.
	ErrQRGeneration = errors.New("qr code generation failed")

	// ErrEmailExists is returned by Register when the email is taken.
	ErrEmailExists = errors.New("email already registered")
	// ErrUsernameExists is returned by Register when the derived username is taken.
	ErrUsernameExists = errors.New("username already exists")
	// ErrPasswordPolicy is returned when a new password violates the policy.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrCurrentPasswordMismatch is returned by ChangePassword when the
	// presented current password does not verify.
	ErrCurrentPasswordMismatch = errors.New("current password is incorrect")
	// ErrAlreadyDeactivated is returned by Deactivate for an inactive principal.
	ErrAlreadyDeactivated = errors.New("account already deactivated")

	// ErrDirectResetDisabled is returned by ForgotPassword unless the
	// email-only reset path was explicitly enabled in the configuration.
	ErrDirectResetDisabled = errors.New("direct password reset disabled; use the reset-token flow")
	// ErrStoreUnavailable wraps principal-store failures that are neither a
	// lookup miss nor a domain rejection.
	ErrStoreUnavailable = errors.New("principal store unavailable")
	// ErrMailUnavailable is returned when a required mail delivery fails.
	ErrMailUnavailable = errors.New("mail delivery failed")
)
