// Package ledger persists generation run progress in SQLite so operators can
// audit which records produced artifacts, which were skipped, and why a run
// stopped. The database is an operational record for in-flight and recent
// runs, not a long-term archive; schema changes bump the version in
// ledger.go and stale databases are recreated rather than migrated.
//
// Only the owner rank writes the ledger, mirroring the rank gating on
// artifact emission.
package ledger
