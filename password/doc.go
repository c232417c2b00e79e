// Package password implements password hashing, strength validation, and
// secure token/password generation for the crewauth engine.
//
// # Hashing
//
// Hashes are produced with bcrypt at a configurable cost factor (default 12).
// [Hasher.Verify] is tolerant: a malformed or foreign hash yields false, never
// an error, so a corrupted credential row degrades to a failed login instead
// of a 500.
//
// # Architecture boundaries
//
// This package owns hashing, strength scoring, and random generation only.
// Password policy orchestration (reuse history, reset-token persistence) is
// enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other crewauth package.
//   - Log plaintext passwords at runtime.
package password
