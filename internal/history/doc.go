// Package history records pipeline runs in a SQLite database so that row
// counts, violations and quality reports can be compared across runs.
package history
