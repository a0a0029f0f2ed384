package metadata

import "bytes"

// sniffLen covers the longest signature checked below: the ISO-BMFF box size
// plus "ftyp" and the major brand.
const sniffLen = 12

type container int

const (
	containerUnknown container = iota
	containerJPEG
	containerTIFF
	containerBMFF
)

var (
	jpegMagic      = []byte{0xFF, 0xD8}
	tiffLittleEnd  = []byte("II*\x00")
	tiffBigEnd     = []byte("MM\x00*")
	bmffBoxType    = []byte("ftyp")
	heifBrands     = []string{"heic", "heix", "heim", "heis", "hevc", "hevx", "mif1", "msf1"}
	quicktimeBrand = "qt  "
)

// sniffContainer classifies a file by its leading bytes. Only JPEG and TIFF
// streams are safe to hand to goexif, which otherwise scans the whole input
// for an APP1 marker and would pick up JPEGs embedded in arbitrary files.
func sniffContainer(header []byte) container {
	switch {
	case bytes.HasPrefix(header, jpegMagic):
		return containerJPEG
	case bytes.HasPrefix(header, tiffLittleEnd), bytes.HasPrefix(header, tiffBigEnd):
		return containerTIFF
	case len(header) >= 8 && bytes.Equal(header[4:8], bmffBoxType):
		return containerBMFF
	default:
		return containerUnknown
	}
}

// bmffFormat names an ISO-BMFF container by its major brand.
func bmffFormat(header []byte) string {
	if len(header) < sniffLen {
		return "isobmff"
	}
	brand := string(header[8:12])
	for _, b := range heifBrands {
		if brand == b {
			return "heif"
		}
	}
	switch brand {
	case "avif", "avis":
		return "avif"
	case "crx ":
		return "cr3"
	case quicktimeBrand:
		return "quicktime"
	}
	return "isobmff"
}
