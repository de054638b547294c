package classifier

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"shotsort/internal/errors"
	"shotsort/pkg/imgutil"
)

// checkImage confirms path holds a recognised image with a readable header
// and non-zero dimensions, so broken files fail here instead of inside the
// backend. Only the header is decoded; pixel data is left to the backend.
func checkImage(path string) (imgutil.Kind, error) {
	file, err := os.Open(path)
	if err != nil {
		return imgutil.KindUnknown, err
	}
	defer file.Close()

	kind, err := imgutil.SniffReader(file)
	if err != nil {
		return imgutil.KindUnknown, err
	}
	if kind == imgutil.KindUnknown {
		return kind, errors.New("unrecognised image content")
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return kind, err
	}

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return kind, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return kind, errors.Newf("image has no pixels (%dx%d)", cfg.Width, cfg.Height)
	}
	return kind, nil
}
