package metadata_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"photoorg/internal/metadata"
	"photoorg/internal/services"
	"photoorg/internal/testsupport"
)

func TestResolveReadsDateTimeOriginal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jpg")
	testsupport.WriteJPEG(t, path, "2020:06:01 12:34:56")

	res, err := metadata.NewResolver().Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.HasDate() {
		t.Fatal("expected capture date")
	}
	if res.Year() != 2020 {
		t.Fatalf("unexpected year: %d", res.Year())
	}
	if res.Captured.Month() != time.June || res.Captured.Day() != 1 {
		t.Fatalf("unexpected capture time: %v", res.Captured)
	}
	if res.Format != "exif" {
		t.Fatalf("unexpected format: %q", res.Format)
	}
}

func TestResolveExifWithoutCaptureTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodate.jpg")
	testsupport.WriteJPEG(t, path, "")

	res, err := metadata.NewResolver().Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.HasDate() || res.Year() != 0 {
		t.Fatalf("expected no date, got %v", res.Captured)
	}
}

func TestResolveUnparsableCaptureTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.jpg")
	testsupport.WriteJPEG(t, path, "0000:00:00 00:00:00")

	res, err := metadata.NewResolver().Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.HasDate() {
		t.Fatalf("expected placeholder date to be ignored, got %v", res.Captured)
	}
}

func TestResolveImageWithoutExif(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		data   []byte
		format string
	}{
		{name: "plain.jpg", data: testsupport.PlainJPEG(t), format: "jpeg"},
		{name: "plain.png", data: testsupport.PlainPNG(t), format: "png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			testsupport.WriteBytes(t, path, tt.data)

			res, err := metadata.NewResolver().Resolve(path)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if res.HasDate() {
				t.Fatalf("expected no date, got %v", res.Captured)
			}
			if res.Format != tt.format {
				t.Fatalf("unexpected format: got %q want %q", res.Format, tt.format)
			}
		})
	}
}

func TestResolveMalformedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.txt")
	testsupport.WriteText(t, path, "definitely not an image\n")

	_, err := metadata.NewResolver().Resolve(path)
	if err == nil {
		t.Fatal("expected malformed error")
	}
	var malformed *metadata.MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedError, got %T: %v", err, err)
	}
	if malformed.Path != path {
		t.Fatalf("unexpected path on error: %q", malformed.Path)
	}
	if !errors.Is(err, services.ErrMalformedMetadata) {
		t.Fatalf("expected ErrMalformedMetadata marker, got %v", err)
	}
	if errors.Is(err, services.ErrIO) {
		t.Fatalf("malformed content must not be reported as I/O, got %v", err)
	}
}

func TestResolveIgnoresJPEGEmbeddedInOtherContent(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		prefix string
	}{
		{name: "notes.txt", prefix: "plain text notes about the trip\n"},
		{name: "archive.zip", prefix: "PK\x03\x04stored entry header"},
		{name: "scan.pdf", prefix: "%PDF-1.4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			data := append([]byte(tt.prefix), testsupport.JPEGWithCapture(t, "2019:01:02 03:04:05")...)
			testsupport.WriteBytes(t, path, data)

			res, err := metadata.NewResolver().Resolve(path)
			if !errors.Is(err, services.ErrMalformedMetadata) {
				t.Fatalf("expected malformed error, got res=%+v err=%v", res, err)
			}
			if res.HasDate() {
				t.Fatalf("embedded JPEG date must not be used, got %v", res.Captured)
			}
		})
	}
}

func TestResolveTIFFWithoutExifDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.tif")
	testsupport.WriteBytes(t, path, testsupport.PlainTIFF(t))

	res, err := metadata.NewResolver().Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.HasDate() {
		t.Fatalf("expected no date, got %v", res.Captured)
	}
}

func TestResolveHEIFContainerIsRecognized(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		brand  string
		format string
	}{
		{name: "IMG_0001.HEIC", brand: "heic", format: "heif"},
		{name: "IMG_0002.HEIF", brand: "mif1", format: "heif"},
		{name: "IMG_0003.AVIF", brand: "avif", format: "avif"},
		{name: "IMG_0004.MOV", brand: "qt  ", format: "quicktime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			testsupport.WriteBytes(t, path, testsupport.BMFFContainer(tt.brand))

			res, err := metadata.NewResolver().Resolve(path)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if res.HasDate() {
				t.Fatalf("expected no date, got %v", res.Captured)
			}
			if res.Format != tt.format {
				t.Fatalf("format = %q, want %q", res.Format, tt.format)
			}
		})
	}
}

func TestResolveEmptyFileIsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jpg")
	testsupport.WriteBytes(t, path, nil)

	_, err := metadata.NewResolver().Resolve(path)
	if !errors.Is(err, services.ErrMalformedMetadata) {
		t.Fatalf("expected malformed error for empty file, got %v", err)
	}
}

func TestResolveMissingFileIsIOError(t *testing.T) {
	_, err := metadata.NewResolver().Resolve(filepath.Join(t.TempDir(), "missing.jpg"))
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if errors.Is(err, services.ErrMalformedMetadata) {
		t.Fatalf("missing file must not be reported as malformed, got %v", err)
	}
}

func TestResolveDirectoryIsIOError(t *testing.T) {
	_, err := metadata.NewResolver().Resolve(t.TempDir())
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected ErrIO for directory read, got %v", err)
	}
}

func TestParseCaptureTime(t *testing.T) {
	tests := []struct {
		raw  string
		ok   bool
		year int
	}{
		{raw: "2019:12:31 23:59:59", ok: true, year: 2019},
		{raw: "2019:12:31 23:59:59\x00", ok: true, year: 2019},
		{raw: " 2018-01-02 03:04:05 ", ok: true, year: 2018},
		{raw: "2017:05:06 07:08", ok: true, year: 2017},
		{raw: "2016:05:06", ok: true, year: 2016},
		{raw: "2015-03-04", ok: true, year: 2015},
		{raw: "2014.03.04 05:06:07", ok: true, year: 2014},
		{raw: "2013-03-04T05:06:07", ok: true, year: 2013},
		{raw: "2013-03-04T05:06:07+02:00", ok: true, year: 2013},
		{raw: "2012:03:04 05:06:07.250", ok: true, year: 2012},
		{raw: "2011/03/04 05:06:07", ok: true, year: 2011},
		{raw: "20100304", ok: true, year: 2010},
		{raw: "0000:00:00 00:00:00", ok: false},
		{raw: "    :  :     :  :  ", ok: false},
		{raw: "", ok: false},
		{raw: "yesterday", ok: false},
	}
	for _, tt := range tests {
		got, ok := metadata.ParseCaptureTime(tt.raw)
		if ok != tt.ok {
			t.Fatalf("ParseCaptureTime(%q) ok=%v want %v", tt.raw, ok, tt.ok)
		}
		if ok && got.Year() != tt.year {
			t.Fatalf("ParseCaptureTime(%q) year=%d want %d", tt.raw, got.Year(), tt.year)
		}
	}
}
