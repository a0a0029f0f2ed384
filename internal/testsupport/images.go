package testsupport

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

const (
	tagImageWidth       = 0x0100
	tagImageLength      = 0x0101
	tagBitsPerSample    = 0x0102
	tagCompression      = 0x0103
	tagPhotometric      = 0x0106
	tagStripOffsets     = 0x0111
	tagOrientation      = 0x0112
	tagRowsPerStrip     = 0x0116
	tagStripByteCounts  = 0x0117
	tagExifIFDPointer   = 0x8769
	tagDateTimeOriginal = 0x9003

	typeASCII = 2
	typeShort = 3
	typeLong  = 4
)

// JPEGWithCapture returns a small baseline JPEG carrying an EXIF APP1 segment
// whose Exif sub-IFD holds DateTimeOriginal = captured. An empty captured
// value produces EXIF that has only IFD0 (Orientation) and no capture date.
func JPEGWithCapture(t testing.TB, captured string) []byte {
	t.Helper()
	return spliceAPP1(PlainJPEG(t), exifPayload(captured))
}

// PlainJPEG returns a small JPEG without any APP1/EXIF segment.
func PlainJPEG(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, sampleImage(), &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// PlainPNG returns a small PNG without metadata chunks.
func PlainPNG(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, sampleImage()); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// PlainTIFF returns a minimal little-endian TIFF with a single 1x1 grayscale
// strip and no Exif sub-IFD.
func PlainTIFF(t testing.TB) []byte {
	t.Helper()
	le := binary.LittleEndian
	out := []byte("II")
	out = le.AppendUint16(out, 42)
	out = le.AppendUint32(out, 8)

	const entries = 8
	const pixelOffset = 8 + 2 + entries*12 + 4
	out = le.AppendUint16(out, entries)
	out = appendEntry(out, tagImageWidth, typeShort, 1, 1)
	out = appendEntry(out, tagImageLength, typeShort, 1, 1)
	out = appendEntry(out, tagBitsPerSample, typeShort, 1, 8)
	out = appendEntry(out, tagCompression, typeShort, 1, 1)
	out = appendEntry(out, tagPhotometric, typeShort, 1, 1)
	out = appendEntry(out, tagStripOffsets, typeLong, 1, pixelOffset)
	out = appendEntry(out, tagRowsPerStrip, typeShort, 1, 1)
	out = appendEntry(out, tagStripByteCounts, typeLong, 1, 1)
	out = le.AppendUint32(out, 0)
	return append(out, 0x80)
}

// BMFFContainer returns an ISO-BMFF file holding only an ftyp box with the
// given major brand and an empty mdat box. It is recognized as a container
// but carries no metadata.
func BMFFContainer(brand string) []byte {
	be := binary.BigEndian
	var out []byte
	out = be.AppendUint32(out, 24)
	out = append(out, "ftyp"...)
	out = append(out, brand...)
	out = be.AppendUint32(out, 0)
	out = append(out, "mif1"...)
	out = append(out, brand...)
	out = be.AppendUint32(out, 8)
	return append(out, "mdat"...)
}

// WriteBytes writes data to path, creating parent directories.
func WriteBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteJPEG writes a JPEG whose DateTimeOriginal is captured (see JPEGWithCapture).
func WriteJPEG(t testing.TB, path, captured string) {
	t.Helper()
	WriteBytes(t, path, JPEGWithCapture(t, captured))
}

func sampleImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	return img
}

func spliceAPP1(jpegData, tiffPayload []byte) []byte {
	body := append([]byte("Exif\x00\x00"), tiffPayload...)
	segment := make([]byte, 0, len(body)+4)
	segment = append(segment, 0xFF, 0xE1)
	segment = binary.BigEndian.AppendUint16(segment, uint16(len(body)+2))
	segment = append(segment, body...)

	out := make([]byte, 0, len(jpegData)+len(segment))
	out = append(out, jpegData[:2]...) // SOI
	out = append(out, segment...)
	return append(out, jpegData[2:]...)
}

// exifPayload builds a little-endian TIFF structure. With a capture value it
// is IFD0 -> ExifIFDPointer -> Exif IFD -> DateTimeOriginal.
func exifPayload(captured string) []byte {
	le := binary.LittleEndian
	out := []byte("II")
	out = le.AppendUint16(out, 42)
	out = le.AppendUint32(out, 8)

	if captured == "" {
		out = le.AppendUint16(out, 1)
		out = appendEntry(out, tagOrientation, typeShort, 1, 1)
		return le.AppendUint32(out, 0)
	}

	value := append([]byte(captured), 0)
	for len(value) <= 4 {
		value = append(value, 0)
	}
	const ifd0Offset = 8
	const entrySize = 2 + 12 + 4
	const exifIFDOffset = ifd0Offset + entrySize
	const valueOffset = exifIFDOffset + entrySize

	out = le.AppendUint16(out, 1)
	out = appendEntry(out, tagExifIFDPointer, typeLong, 1, exifIFDOffset)
	out = le.AppendUint32(out, 0)

	out = le.AppendUint16(out, 1)
	out = appendEntry(out, tagDateTimeOriginal, typeASCII, uint32(len(value)), valueOffset)
	out = le.AppendUint32(out, 0)

	return append(out, value...)
}

func appendEntry(out []byte, tag, typ uint16, count, value uint32) []byte {
	le := binary.LittleEndian
	out = le.AppendUint16(out, tag)
	out = le.AppendUint16(out, typ)
	out = le.AppendUint32(out, count)
	return le.AppendUint32(out, value)
}
