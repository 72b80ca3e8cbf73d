package services

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Watermarker overlays a logo onto preview images so marketplace previews
// cannot be used as-is.
type Watermarker struct {
	overlay image.Image
}

// NewWatermarker loads the overlay image from disk. An empty path disables
// watermarking and returns nil.
func NewWatermarker(path string) (*Watermarker, error) {
	if path == "" {
		return nil, nil
	}
	overlay, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load watermark: %w", err)
	}
	return &Watermarker{overlay: overlay}, nil
}

// Apply stamps the overlay across the bottom-right quarter of the image and
// re-encodes it as PNG.
func (w *Watermarker) Apply(data []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	markWidth := bounds.Dx() / 3
	if markWidth < 1 {
		markWidth = bounds.Dx()
	}
	mark := imaging.Resize(w.overlay, markWidth, 0, imaging.Lanczos)

	pos := image.Pt(
		bounds.Dx()-mark.Bounds().Dx()-bounds.Dx()/20,
		bounds.Dy()-mark.Bounds().Dy()-bounds.Dy()/20,
	)
	out := imaging.Overlay(src, mark, pos, 0.45)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
