package imgutil

import (
	"errors"
	"io"
	"os"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// Camera is the capture device recorded in an image's EXIF block.
type Camera struct {
	Make  string
	Model string
	Taken string
}

// Empty reports whether no camera fields were found.
func (c Camera) Empty() bool {
	return c.Make == "" && c.Model == "" && c.Taken == ""
}

// Device joins make and model, e.g. "Apple iPhone 13".
func (c Camera) Device() string {
	if c.Make != "" && strings.HasPrefix(strings.ToLower(c.Model), strings.ToLower(c.Make)) {
		return c.Model
	}
	return strings.TrimSpace(c.Make + " " + c.Model)
}

// ReadCamera extracts camera fields from the EXIF data in rs. Images without
// EXIF yield an empty Camera and no error.
func ReadCamera(rs io.ReadSeeker) (Camera, error) {
	camera := Camera{}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return camera, err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if isNoExif(err) {
			return camera, nil
		}
		return camera, err
	}

	for _, tag := range tags {
		value := strings.TrimSpace(strings.TrimRight(tag.Formatted, "\x00"))
		if value == "" {
			continue
		}
		switch tag.TagName {
		case "Make":
			camera.Make = value
		case "Model", "CameraModelName":
			if camera.Model == "" {
				camera.Model = value
			}
		case "DateTimeOriginal":
			camera.Taken = value
		case "DateTimeDigitized", "DateTime":
			if camera.Taken == "" {
				camera.Taken = value
			}
		}
	}

	return camera, nil
}

// ReadCameraFile is ReadCamera for a path. Formats that cannot carry EXIF
// return an empty Camera without opening the parser.
func ReadCameraFile(path string) (Camera, error) {
	file, err := os.Open(path)
	if err != nil {
		return Camera{}, err
	}
	defer file.Close()

	kind, err := SniffReader(file)
	if err != nil {
		return Camera{}, err
	}
	if !kind.HasExif() {
		return Camera{}, nil
	}
	return ReadCamera(file)
}

func isNoExif(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exif.ErrNoExif) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
