package dedupe

// Option applies a configuration option to the Window.
type Option func(*Window)

// WithCapacity sets how many IDs the window remembers. Non-positive values
// keep the default.
func WithCapacity(n int) Option {
	return func(w *Window) {
		if n > 0 {
			w.ring = make([]string, n)
		}
	}
}
