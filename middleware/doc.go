// Package middleware exposes HTTP middleware adapters for session-cookie
// authentication and resource:action authorization built on top of
// crewauth.Engine.
//
// # Guards
//
//   - [Guard] — resolves the session cookie into a request principal.
//   - [RequirePermission] — gates a route on a resource:action permission.
//
// Guard reads the crewauth_session cookie, calls Engine.ResolveSession, and
// injects the resolved principal into the request context. It also stamps the
// client IP and User-Agent into the context so engine-side audit events carry
// request attribution. RequirePermission consults the principal's effective
// permission set and fails closed.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to the
// Engine and its permission resolver.
//
// # What this package must NOT do
//
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from the resolved
//     principal.
package middleware
