// Package settings provides the Redis-backed runtime settings store and the
// global logout version counter built on top of it.
//
// The version counter is the core of the session-invalidation design: a
// single key, bumped with INCR, whose value is snapshotted into every access
// token at issuance. Redis serializes INCR against concurrent GETs, so a
// reader always observes either the pre- or post-increment value.
package settings
