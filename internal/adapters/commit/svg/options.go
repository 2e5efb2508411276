package svg

// Option applies a configuration option to the Encoder.
type Option func(*Encoder)

// WithBackground paints a full-size rectangle behind the chart.
func WithBackground(color string) Option {
	return func(e *Encoder) {
		e.background = color
	}
}

// WithForeground sets the color that "currentColor" resolves to.
func WithForeground(color string) Option {
	return func(e *Encoder) {
		if color != "" {
			e.foreground = color
		}
	}
}

// WithAnimations toggles SMIL animation output. Without animations the
// scene is written in its final state.
func WithAnimations(enabled bool) Option {
	return func(e *Encoder) {
		e.animate = enabled
	}
}
