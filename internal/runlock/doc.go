// Package runlock serializes organize runs that write into the same target
// tree. Locks are advisory flock(2) files kept under the state directory, one
// per absolute target path, so nothing extra appears in the photo library.
package runlock
