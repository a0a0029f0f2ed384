// Package fileutil holds the file copy primitive used when placing photos
// into the target tree.
package fileutil
