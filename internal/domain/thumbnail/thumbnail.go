// Package thumbnail renders the fixed size classes stored next to every image.
package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"

	"github.com/nfnt/resize"
	"github.com/samber/lo"
)

// Size is a thumbnail size class.
type Size string

const (
	Small  Size = "small"
	Medium Size = "medium"
	Large  Size = "large"
)

// All lists every size class, smallest first.
var All = []Size{Small, Medium, Large}

// ErrUnknownSize is returned for a size class outside the table.
var ErrUnknownSize = errors.New("thumbnail: unknown size class")

// ErrUndecodable is returned when the source bytes are not a supported image.
var ErrUndecodable = errors.New("thumbnail: source is not a decodable image")

// Bounds returns the bounding box of a size class.
func (s Size) Bounds() (width, height uint, err error) {
	switch s {
	case Small:
		return 64, 64, nil
	case Medium:
		return 128, 128, nil
	case Large:
		return 256, 256, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownSize, string(s))
	}
}

// Suffix is appended to the base blob name of the original image.
func (s Size) Suffix() string {
	return "_" + string(s)
}

// ContentType of every rendered thumbnail.
const ContentType = "image/png"

// Make decodes original once and renders one PNG per requested size, one
// size after another. Each output fits inside its bounding box with the
// source aspect ratio kept.
func Make(original []byte, sizes []Size) (map[Size][]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	out := make(map[Size][]byte, len(sizes))
	for _, size := range lo.Uniq(sizes) {
		body, err := render(src, size)
		if err != nil {
			return nil, err
		}
		out[size] = body
	}
	return out, nil
}

func render(src image.Image, size Size) ([]byte, error) {
	maxW, maxH, err := size.Bounds()
	if err != nil {
		return nil, err
	}
	w, h := fitInside(src.Bounds().Dx(), src.Bounds().Dy(), maxW, maxH)
	resized := resize.Resize(w, h, src, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, fmt.Errorf("encode %s thumbnail: %w", size, err)
	}
	return buf.Bytes(), nil
}

// fitInside scales (w, h) so it fits inside (maxW, maxH), never to zero.
func fitInside(w, h int, maxW, maxH uint) (uint, uint) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	fw := uint(math.Round(float64(w) * scale))
	fh := uint(math.Round(float64(h) * scale))
	if fw == 0 {
		fw = 1
	}
	if fh == 0 {
		fh = 1
	}
	if fw > maxW {
		fw = maxW
	}
	if fh > maxH {
		fh = maxH
	}
	return fw, fh
}
