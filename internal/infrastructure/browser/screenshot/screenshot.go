// Package screenshot normalizes raw captures from any driver into the JPEG
// artifacts stored by the report.
package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"swagflow/internal/domain/entity"

	"github.com/disintegration/imaging"
)

const (
	MaxWidth = 1024
	Quality  = 75
)

// Encode decodes a PNG or JPEG capture, scales it down to MaxWidth and
// re-encodes it as JPEG.
func Encode(raw []byte) (*entity.Screenshot, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > MaxWidth {
		img = imaging.Resize(img, MaxWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}
