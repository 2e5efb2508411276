package raster

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// defaultFontSize matches the browser default for unstyled text.
const defaultFontSize = 16

type faceKey struct {
	size float64
	bold bool
}

// faces caches parsed fonts and sized faces. Faces are not safe for
// concurrent use, so callers hold mu while drawing.
type faces struct {
	mu      sync.Mutex
	regular *sfnt.Font
	bold    *sfnt.Font
	cache   map[faceKey]font.Face
}

func newFaces() (*faces, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("%w: regular: %w", ErrFont, err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("%w: bold: %w", ErrFont, err)
	}
	return &faces{regular: regular, bold: bold, cache: make(map[faceKey]font.Face)}, nil
}

// face returns the face for size pixels; mu must be held.
func (f *faces) face(size float64, bold bool) (font.Face, error) {
	if size <= 0 {
		size = defaultFontSize
	}
	key := faceKey{size: size, bold: bold}
	if fc, ok := f.cache[key]; ok {
		return fc, nil
	}
	src := f.regular
	if bold {
		src = f.bold
	}
	fc, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFont, err)
	}
	f.cache[key] = fc
	return fc, nil
}
