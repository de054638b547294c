package imgutil

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Kind identifies a supported image type.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindTIFF
	KindGIF
	KindBMP
	KindWEBP
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindTIFF:
		return "tiff"
	case KindGIF:
		return "gif"
	case KindBMP:
		return "bmp"
	case KindWEBP:
		return "webp"
	default:
		return "unknown"
	}
}

// HasExif reports whether the format can carry an EXIF block we know how to read.
func (k Kind) HasExif() bool {
	return k == KindJPEG || k == KindTIFF || k == KindPNG || k == KindWEBP
}

// headerSize covers the longest signature we match ourselves and the
// RIFF/WEBP check done by filetype.
const headerSize = 16

var (
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
)

var extensionKinds = map[string]Kind{
	".jpg":  KindJPEG,
	".jpeg": KindJPEG,
	".png":  KindPNG,
	".bmp":  KindBMP,
	".gif":  KindGIF,
	".tiff": KindTIFF,
	".webp": KindWEBP,
}

// KindFromExtension maps a file name to the kind its extension claims,
// case-insensitively. Unsupported extensions yield KindUnknown.
func KindFromExtension(name string) Kind {
	if kind, ok := extensionKinds[strings.ToLower(filepath.Ext(name))]; ok {
		return kind
	}
	return KindUnknown
}

// SupportedExtension reports whether name carries one of the image
// extensions the triage pipeline accepts.
func SupportedExtension(name string) bool {
	return KindFromExtension(name) != KindUnknown
}

// DetectHeader inspects the first bytes of a file for known signatures.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < 8 {
		return KindUnknown, errors.New("header too short")
	}

	if hasPrefix(header, jpegSig) {
		return KindJPEG, nil
	}
	if hasPrefix(header, pngSig) {
		return KindPNG, nil
	}
	if hasPrefix(header, tiffSigLE) || hasPrefix(header, tiffSigBE) {
		return KindTIFF, nil
	}

	switch {
	case filetype.Is(header, "gif"):
		return KindGIF, nil
	case filetype.Is(header, "bmp"):
		return KindBMP, nil
	case filetype.Is(header, "webp"):
		return KindWEBP, nil
	}

	return KindUnknown, nil
}

// SniffReader reads up to 16 bytes from r and determines its type. Inputs
// shorter than 8 bytes are rejected.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, headerSize)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUnknown, err
	}

	return DetectHeader(header[:n])
}

func hasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i := range prefix {
		if buf[i] != prefix[i] {
			return false
		}
	}
	return true
}
