package classifier

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"shotsort/pkg/imgutil"
)

func TestCheckImageReadsHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "full.png")
	writePNG(t, full)

	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	// Signature plus the IHDR chunk; no pixel data follows.
	headerOnly := filepath.Join(dir, "header.png")
	if err := os.WriteFile(headerOnly, data[:33], 0o644); err != nil {
		t.Fatalf("write header: %v", err)
	}

	for _, path := range []string{full, headerOnly} {
		kind, err := checkImage(path)
		if err != nil {
			t.Fatalf("checkImage(%s): %v", filepath.Base(path), err)
		}
		if kind != imgutil.KindPNG {
			t.Fatalf("checkImage(%s) kind = %v", filepath.Base(path), kind)
		}
	}
}

func TestCheckImageRejectsZeroDimensions(t *testing.T) {
	header := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], 0)
	binary.BigEndian.PutUint32(ihdr[4:8], 4)
	ihdr[8] = 8
	ihdr[9] = 6

	chunk := make([]byte, 0, 25)
	chunk = binary.BigEndian.AppendUint32(chunk, uint32(len(ihdr)))
	chunk = append(chunk, "IHDR"...)
	chunk = append(chunk, ihdr...)
	chunk = append(chunk, 0, 0, 0, 0)

	path := filepath.Join(t.TempDir(), "zero.png")
	if err := os.WriteFile(path, append(header, chunk...), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	if _, err := checkImage(path); err == nil {
		t.Fatalf("expected zero-width image to be rejected")
	}
}
