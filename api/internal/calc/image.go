package calc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"

	"mathcalc/api/internal/util"
)

var formatMIME = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// DefaultMaxImagePixels bounds width*height of an upload.
const DefaultMaxImagePixels = 40_000_000

// DecodeImage turns a "<prefix>,<base64>" string into a validated raster image.
// The header is checked against maxPixels before any pixel data is decoded;
// maxPixels <= 0 means DefaultMaxImagePixels.
func DecodeImage(dataURL string, maxPixels int) (Image, error) {
	if strings.TrimSpace(dataURL) == "" {
		return Image{}, fmt.Errorf("%w: image is empty", ErrInvalidInput)
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxImagePixels
	}
	raw, err := util.DecodeDataURL(dataURL)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrBadImageData, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrBadImageData, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Image{}, fmt.Errorf("%w: empty dimensions %dx%d", ErrBadImageData, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return Image{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrBadImageData, cfg.Width, cfg.Height, maxPixels)
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrBadImageData, err)
	}
	mime, ok := formatMIME[format]
	if !ok {
		mime = util.SniffMimeHTTP(raw)
	}
	b := img.Bounds()
	return Image{Data: raw, MIME: mime, Width: b.Dx(), Height: b.Dy()}, nil
}
