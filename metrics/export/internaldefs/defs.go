// Package internaldefs holds the metric definitions shared by the exporter
// packages so the Prometheus and OTel views stay in lockstep.
package internaldefs

import (
	authkit "github.com/edumentor/authkit"
)

// CounterDef maps a core counter ID to its exported name and help text.
type CounterDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// HistogramDef maps a core histogram ID to its exported name and help text.
type HistogramDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter.
var CounterDefs = []CounterDef{
	{ID: authkit.MetricLoginSuccess, Name: "authkit_login_success_total", Help: "Successful login attempts."},
	{ID: authkit.MetricLoginFailure, Name: "authkit_login_failure_total", Help: "Failed login attempts."},
	{ID: authkit.MetricLoginMFARequired, Name: "authkit_login_mfa_required_total", Help: "Login flows answered with an MFA challenge."},
	{ID: authkit.MetricMFASetupRequested, Name: "authkit_mfa_setup_requested_total", Help: "MFA enrollment secrets generated."},
	{ID: authkit.MetricMFAVerifySuccess, Name: "authkit_mfa_verify_success_total", Help: "Successful MFA code verifications."},
	{ID: authkit.MetricMFAVerifyFailure, Name: "authkit_mfa_verify_failure_total", Help: "Failed MFA code verifications."},
	{ID: authkit.MetricRefreshSuccess, Name: "authkit_refresh_success_total", Help: "Successful token refreshes."},
	{ID: authkit.MetricRefreshFailure, Name: "authkit_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: authkit.MetricLogout, Name: "authkit_logout_total", Help: "Single-session logout operations."},
	{ID: authkit.MetricGlobalLogout, Name: "authkit_global_logout_total", Help: "Global logout version bumps."},
	{ID: authkit.MetricTokenInvalidated, Name: "authkit_token_invalidated_total", Help: "Tokens rejected for carrying a stale logout version."},
	{ID: authkit.MetricValidateSuccess, Name: "authkit_validate_success_total", Help: "Successful token validations."},
	{ID: authkit.MetricValidateFailure, Name: "authkit_validate_failure_total", Help: "Failed token validations."},
	{ID: authkit.MetricPasswordResetRequest, Name: "authkit_password_reset_request_total", Help: "Password reset requests."},
	{ID: authkit.MetricPasswordResetSuccess, Name: "authkit_password_reset_success_total", Help: "Completed password resets."},
	{ID: authkit.MetricPasswordResetFailure, Name: "authkit_password_reset_failure_total", Help: "Failed password reset attempts."},
	{ID: authkit.MetricPasswordChanged, Name: "authkit_password_changed_total", Help: "Authenticated password changes."},
	{ID: authkit.MetricAccountCreated, Name: "authkit_account_created_total", Help: "Created accounts."},
	{ID: authkit.MetricAccountDeactivated, Name: "authkit_account_deactivated_total", Help: "Soft-deleted accounts."},
	{ID: authkit.MetricQRGenerationFailure, Name: "authkit_qr_generation_failure_total", Help: "MFA QR code render failures."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authkit.MetricValidateLatency, Name: "authkit_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds are the upper bounds of the core latency buckets, in
// seconds, for the Prometheus le label.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters legal in
// OTel instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form both
// exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
