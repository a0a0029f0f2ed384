// Package preflight runs readiness checks before an organize run touches the
// filesystem.
//
// The CLI calls RunAll after listing the source directory. Failing checks
// abort the run with a configuration error; advisory checks, such as free
// space on the target filesystem, are only reported.
package preflight
