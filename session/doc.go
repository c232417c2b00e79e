// Package session provides dual-backend session persistence: a Redis primary
// with per-key TTL and an in-process memory fallback.
//
// # Fallback model
//
// The Redis backend is an accelerator, not a source of truth. The [Store]
// composes the two backends so that every operation has a correctness-
// preserving fallback path: creates land in memory when Redis is down,
// validates consult both backends, destroys always hit both. Callers never
// observe backend-specific errors.
//
// The memory backend enforces no TTL of its own — entries persist until
// explicit deletion or process restart. [MemoryBackend] documents this
// limitation; enumeration derives a synthetic expiry from the creation time.
//
// # Architecture boundaries
//
// This package owns session persistence and the [Session] model. It does NOT
// evaluate permissions or enforce authentication policy — those
// responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import crewauth or permission (no upward imports).
//   - Perform application-level authorization decisions.
//   - Store plaintext secrets in [Session] fields.
package session
