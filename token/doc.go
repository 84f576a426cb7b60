// Package token issues and verifies the four signed token kinds used by the
// authentication core: access, refresh, temporary (MFA-pending), and
// password-reset. Each kind is bound to its own secret or purpose tag so a
// token can never be replayed across kinds.
package token
