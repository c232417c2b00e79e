// Package crewauth provides the authentication and authorization core for a
// personnel/qualification tracking backend: session lifecycle on a
// dual-backend store (Redis primary, in-memory fallback), bcrypt password
// handling with reset tokens and reuse history, and role-based
// resource:action permission resolution.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// crewauth is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (AuthResult, MetricsSnapshot, etc.). Internal coordination
// — flow orchestration, audit dispatch — lives under internal/ and is never
// exported. Storage collaborators integrate through [UserDirectory] and
// [permission.Directory]; ready-made Postgres implementations live in the
// directory sub-package.
//
// # What this package must NOT do
//
//   - Expose Redis clients, backend internals, or serialization details in
//     its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Import any sub-package that re-imports crewauth (no import cycles).
//
// # Failure contract
//
// Authenticate never returns credential problems as errors: user-level
// failures come back as a structured [AuthResult] with a [FailureReason].
// Session operations never surface backend errors — the store's fallback
// path absorbs them. Permission-directory failures DO propagate; they signal
// a genuine backend problem.
package crewauth
