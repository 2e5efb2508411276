package raster

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// parseColor resolves a CSS color. ok is false for "none", empty or
// unknown values, which are not painted.
func parseColor(s, current string) (color.NRGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "transparent":
		return color.NRGBA{}, false
	case "currentcolor":
		if strings.EqualFold(current, "currentColor") {
			return color.NRGBA{}, false
		}
		return parseColor(current, "")
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	if strings.HasPrefix(s, "rgb") {
		return parseFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, true
	}
	return color.NRGBA{}, false
}

func parseHex(h string) (color.NRGBA, bool) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// parseFunc handles rgb(r, g, b) and rgba(r, g, b, a).
func parseFunc(s string) (color.NRGBA, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return color.NRGBA{}, false
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, false
	}
	var ch [3]uint8
	for i := range 3 {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return color.NRGBA{}, false
		}
		ch[i] = uint8(min(max(v, 0), 255))
	}
	alpha := 1.0
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return color.NRGBA{}, false
		}
		alpha = min(max(a, 0), 1)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: uint8(alpha*255 + 0.5)}, true
}

// withOpacity scales the alpha channel.
func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(float64(c.A)*min(max(opacity, 0), 1) + 0.5)
	return c
}
