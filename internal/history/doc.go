// Package history persists a record of organize runs in SQLite.
//
// Each run stores its settings and final tally plus one row per source file
// with the disposition it received, so `photoorg history show` can explain
// after the fact where a given photo went and why. Older runs are pruned to
// the configured retention count.
package history
