package imgutil

import (
	"bytes"
	"testing"
)

func TestDetectHeader(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		want   Kind
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F'}, KindJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d}, KindPNG},
		{"tiff little endian", []byte{'I', 'I', 0x2a, 0, 8, 0, 0, 0}, KindTIFF},
		{"tiff big endian", []byte{'M', 'M', 0, 0x2a, 0, 0, 0, 8}, KindTIFF},
		{"gif", []byte("GIF89a\x01\x00\x01\x00"), KindGIF},
		{"bmp", []byte{'B', 'M', 0x3a, 0, 0, 0, 0, 0, 0, 0}, KindBMP},
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), KindWEBP},
		{"text", []byte("package main\n"), KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectHeader(tc.header)
			if err != nil {
				t.Fatalf("DetectHeader: %v", err)
			}
			if got != tc.want {
				t.Fatalf("DetectHeader = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDetectHeaderTooShort(t *testing.T) {
	if _, err := DetectHeader([]byte{0xff, 0xd8}); err == nil {
		t.Fatal("expected error for short header")
	}
}

func TestSniffReaderShortInput(t *testing.T) {
	kind, err := SniffReader(bytes.NewReader([]byte("GIF89a\x01\x00\x01\x00")))
	if err != nil {
		t.Fatalf("SniffReader: %v", err)
	}
	if kind != KindGIF {
		t.Fatalf("SniffReader = %s, want gif", kind)
	}

	if _, err := SniffReader(bytes.NewReader(nil)); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestSupportedExtension(t *testing.T) {
	accepted := []string{"a.jpg", "b.JPEG", "c.Png", "d.bmp", "e.GIF", "f.tiff", "g.webp"}
	for _, name := range accepted {
		if !SupportedExtension(name) {
			t.Errorf("expected %q to be supported", name)
		}
	}
	rejected := []string{"notes.txt", "archive.tar.gz", "noext", "image.tif", "photo.heic", ".png.bak"}
	for _, name := range rejected {
		if SupportedExtension(name) {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}
