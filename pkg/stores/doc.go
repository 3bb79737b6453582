// Package stores provides the persistence layer for medstore.
// It includes a SQLite-based medication store with WAL mode, a pooled
// long-lived connection, embedded schema migrations, and an instrumented
// decorator that adds logging, tracing and metrics to every operation.
package stores
