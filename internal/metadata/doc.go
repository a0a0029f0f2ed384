// Package metadata resolves the capture date embedded in image files.
//
// Resolve reads the EXIF DateTimeOriginal tag (Exif sub-IFD, 0x9003) with
// goexif and separates three outcomes: a dated file, a readable image that
// carries no usable date, and content that is not a recognized image
// container at all. The last case is reported as a *MalformedError so the
// organizer can route it to the fallback folder; plain read failures are
// reported as services.ErrIO so they are never mistaken for bad metadata.
package metadata
