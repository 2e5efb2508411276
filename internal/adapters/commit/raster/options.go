package raster

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithBackground fills the canvas with color before drawing. Empty keeps
// the canvas transparent.
func WithBackground(color string) Option {
	return func(r *Rasterizer) {
		r.background = color
	}
}

// WithForeground sets the color that "currentColor" resolves to.
func WithForeground(color string) Option {
	return func(r *Rasterizer) {
		if color != "" {
			r.foreground = color
		}
	}
}

// WithScale multiplies every coordinate. Values below or equal to zero are
// ignored.
func WithScale(scale float64) Option {
	return func(r *Rasterizer) {
		if scale > 0 {
			r.scale = scale
		}
	}
}
