// Package authkit implements the authentication and session-invalidation core
// of the EduMentor backend: credential verification, access/refresh/temporary/
// reset token lifecycle, TOTP multi-factor authentication with QR provisioning,
// and a global-logout version counter that invalidates every outstanding
// access token without per-token bookkeeping.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authkit is the public surface. It exposes [Engine], [Builder], [Config],
// the [PrincipalStore] and [MailSender] integration interfaces, and value
// types (LoginResult, MFASetup, RequestPrincipal, MetricsSnapshot). Token
// signing lives in authkit/token, password hashing in authkit/password, and
// the Redis-backed settings and global-logout-version store in
// authkit/settings.
//
// # Trust model
//
// The only write-shared resource is the global logout version, a single Redis
// key bumped atomically by [Engine.GlobalLogout]. Access and temporary tokens
// carry a snapshot of that version; [Engine.Validate] compares the snapshot
// against the current value, so one increment invalidates every previously
// issued token across every replica with no session enumeration.
package authkit
