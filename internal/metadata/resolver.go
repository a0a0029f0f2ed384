package metadata

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"photoorg/internal/services"
)

// Layouts accepted for DateTimeOriginal, most common first. Cameras are
// supposed to write the first; the others show up from editing tools and
// phone exports. Fractional seconds after the seconds field are accepted by
// time.Parse without a dedicated layout.
var captureLayouts = []string{
	"2006:01:02 15:04:05",
	"2006:01:02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006.01.02 15:04:05",
	"2006/01/02 15:04:05",
	"2006:01:02 15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006.01.02 15:04",
	"2006:01:02",
	"2006-01-02",
	"2006.01.02",
	"20060102",
	"2006:01",
	"2006-01",
}

// Resolution is the outcome of reading one file's metadata.
type Resolution struct {
	// Format is the recognized container ("exif" when EXIF decoded directly,
	// otherwise the image.DecodeConfig format name).
	Format string
	// Captured is the original capture time; zero when no date was found.
	Captured time.Time
}

// HasDate reports whether a capture time was found.
func (r Resolution) HasDate() bool {
	return !r.Captured.IsZero()
}

// Year returns the capture year, or 0 when no date was found.
func (r Resolution) Year() int {
	if !r.HasDate() {
		return 0
	}
	return r.Captured.Year()
}

// MalformedError reports content that is not a parseable image container.
type MalformedError struct {
	Path string
	Err  error
}

func (e *MalformedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: unrecognized image format", e.Path)
	}
	return fmt.Sprintf("%s: unrecognized image format: %v", e.Path, e.Err)
}

func (e *MalformedError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrMalformedMetadata}
	}
	return []error{services.ErrMalformedMetadata, e.Err}
}

// Resolver reads capture dates from files on the local filesystem.
type Resolver struct{}

// NewResolver returns a ready-to-use resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve extracts the capture time of the file at path.
//
// The container is identified from its leading bytes before any metadata is
// parsed. JPEG and TIFF-based files (including camera raw) are read with
// goexif, ISO-BMFF files (HEIC, HEIF, AVIF, CR3) with imagemeta, and other
// formats are only checked with image.DecodeConfig. A recognized image
// without a usable DateTimeOriginal returns a Resolution with
// HasDate() == false and a nil error. Unrecognized content returns
// *MalformedError. Open and read failures return an error matching
// services.ErrIO.
func (r *Resolver) Resolve(path string) (Resolution, error) {
	file, err := os.Open(path)
	if err != nil {
		return Resolution{}, services.Wrap(services.ErrIO, "metadata", "open", path, err)
	}
	defer file.Close()

	reader := &trackingReader{f: file}
	header := make([]byte, sniffLen)
	n, _ := io.ReadFull(reader, header)
	if reader.err != nil {
		return Resolution{}, services.Wrap(services.ErrIO, "metadata", "read", path, reader.err)
	}
	kind := sniffContainer(header[:n])

	switch kind {
	case containerJPEG, containerTIFF:
		if err := reader.rewind(); err != nil {
			return Resolution{}, services.Wrap(services.ErrIO, "metadata", "rewind", path, err)
		}
		x, exifErr := exif.Decode(reader)
		if reader.err != nil {
			return Resolution{}, services.Wrap(services.ErrIO, "metadata", "read", path, reader.err)
		}
		if x != nil && (exifErr == nil || !exif.IsCriticalError(exifErr)) {
			return Resolution{Format: "exif", Captured: captureTime(x)}, nil
		}
	case containerBMFF:
		return resolveBMFF(path, reader, header[:n])
	}

	if err := reader.rewind(); err != nil {
		return Resolution{}, services.Wrap(services.ErrIO, "metadata", "rewind", path, err)
	}
	_, format, cfgErr := image.DecodeConfig(reader)
	if reader.err != nil {
		return Resolution{}, services.Wrap(services.ErrIO, "metadata", "read", path, reader.err)
	}
	if cfgErr != nil {
		// Covers image.ErrFormat as well as a registered decoder that
		// matched the magic bytes but could not parse the header.
		return Resolution{}, &MalformedError{Path: path, Err: cfgErr}
	}
	return Resolution{Format: format}, nil
}

// resolveBMFF reads EXIF from an ISO-BMFF container. The ftyp box already
// identifies the file as a media container, so a missing or unreadable EXIF
// item means "no date" rather than malformed content.
func resolveBMFF(path string, reader *trackingReader, header []byte) (Resolution, error) {
	res := Resolution{Format: bmffFormat(header)}
	if err := reader.rewind(); err != nil {
		return Resolution{}, services.Wrap(services.ErrIO, "metadata", "rewind", path, err)
	}
	x, err := imagemeta.Decode(reader)
	if reader.err != nil {
		return Resolution{}, services.Wrap(services.ErrIO, "metadata", "read", path, reader.err)
	}
	if err != nil {
		return res, nil
	}
	if captured := x.DateTimeOriginal(); !captured.IsZero() && captured.Year() > 0 {
		res.Captured = captured
	}
	return res, nil
}

func captureTime(x *exif.Exif) time.Time {
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}
	}
	raw, err := tag.StringVal()
	if err != nil {
		return time.Time{}
	}
	t, ok := ParseCaptureTime(raw)
	if !ok {
		return time.Time{}
	}
	return t
}

// ParseCaptureTime parses an EXIF date string. Placeholder values such as
// "0000:00:00 00:00:00" and blank strings are rejected.
func ParseCaptureTime(raw string) (time.Time, bool) {
	value := strings.TrimRight(raw, "\x00 ")
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range captureLayouts {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil && t.Year() > 0 {
			return t, true
		}
	}
	return time.Time{}, false
}

// trackingReader remembers the first non-EOF read failure so decoder errors
// caused by the storage layer are not reported as bad metadata.
type trackingReader struct {
	f   *os.File
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.f.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err
}

func (t *trackingReader) Seek(offset int64, whence int) (int64, error) {
	return t.f.Seek(offset, whence)
}

func (t *trackingReader) rewind() error {
	_, err := t.f.Seek(0, io.SeekStart)
	return err
}
