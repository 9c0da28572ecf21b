// Package sink persists preference entries outside the process.
//
// Each sink appends one entry per human selection and never rewrites earlier
// entries. File sinks (CSV, JSONL) take an advisory flock around every append
// so several askgreg processes can share a file. The SQL sinks (SQLite,
// Postgres) also answer history and stats queries for the CLI and HTTP
// surfaces.
package sink
