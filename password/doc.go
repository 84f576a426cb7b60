// Package password hashes and verifies credentials with Argon2id in PHC
// string format. Every hash is keyed with a process-wide secret pepper: the
// password is HMAC-SHA256'd with the pepper before key derivation, so a
// leaked hash database cannot be attacked without the pepper.
package password
