// Package testsupport holds fixtures shared by package tests: temp-dir
// configs, a run history store opener, synthetic JPEG/PNG files with
// hand-built EXIF, and filesystem assertions.
package testsupport
