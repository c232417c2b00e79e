// Package directory provides PostgreSQL-backed implementations of the
// crewauth user directory and permission directory contracts, built on pgx.
//
// # Components
//
//   - [PostgresUserDirectory] — users, credentials, password history, reset
//     tokens.
//   - [PostgresPermissionDirectory] — roles, permissions, and the
//     role-permission junction queried by the permission resolver.
//
// # Architecture boundaries
//
// This package owns SQL and row mapping only. Policy (failure messages,
// history limits, token lifetimes) lives in the engine; this package reports
// what the database holds and returns nil records for absent rows.
//
// # What this package must NOT do
//
//   - Hash or verify passwords.
//   - Cache query results.
//   - Import the session package.
package directory
