// Package ledger records completed client sessions for operator forensics:
// which upstream carried the session, which protocol negotiated, how it
// ended, and how long it took. It is deliberately non-authoritative — the
// pool never reads from it — and hash-chained so tampering with the
// on-disk history is detectable.
//
// # Storage
//
// Backed by an in-memory ring buffer by default, or github.com/mattn/go-sqlite3
// when durability across restarts is required. Retention pruning runs on a
// cron schedule via the retention subpackage.
package ledger
