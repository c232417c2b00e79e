// Package permission implements resource:action permission resolution over
// the role model: every user has exactly one primary role plus zero or more
// additional roles, and the effective permission set is the deduplicated
// union of everything those roles grant.
//
// # Architecture boundaries
//
// The [Resolver] is a pure query/mutation surface over a [Directory]. It
// holds no per-entity state machine and no cache; every answer reflects the
// directory state at the time of the query.
//
// Directory failures propagate — they indicate a genuine backend problem
// with no sane fallback, unlike the session store's accelerator model.
//
// # What this package must NOT do
//
//   - Import crewauth or session (no upward imports).
//   - Cache resolution results across queries.
//   - Swallow directory errors.
package permission
