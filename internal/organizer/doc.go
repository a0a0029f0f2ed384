// Package organizer sorts a flat directory of photos into a year-partitioned
// tree.
//
// Each source file is resolved through the metadata package and given exactly
// one disposition: copied into {target}/{year} when a capture date exists,
// left in place when the image carries no date, or copied into the
// Unprocessed folder when its content is not a recognized image. Per-file I/O
// failures are recorded as their own disposition so one unreadable file never
// aborts the rest of the run. Every disposition bumps exactly one counter in
// Result, and Progress observers are called once per file after the
// disposition is final.
package organizer
