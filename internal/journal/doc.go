// Package journal persists run history in SQLite: which scenes each run
// attempted per variable, their outcomes, and per-run counters. It is an
// operational record only and can be deleted without losing extracted data.
package journal
