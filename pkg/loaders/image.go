package loaders

import (
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	"github.com/pkg/errors"

	"github.com/df07/go-photon-raytracer/pkg/material"
)

// LoadImageTexture loads a PNG or JPEG image as a texture
func LoadImageTexture(filename string) (*material.ImageTexture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening image file")
	}
	defer file.Close()

	// Decode image (auto-detects PNG/JPEG from file header)
	img, format, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", filename)
	}

	logger.Debugf("loaded %s texture %s (%dx%d)", format, filename, img.Bounds().Dx(), img.Bounds().Dy())
	return material.NewImageTextureFromImage(img), nil
}
