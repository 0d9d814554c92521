package dedupe

// Option applies a configuration option to the Window.
type Option func(*Window)

// WithMaxSize sets how many ids are remembered. Non-positive keeps all.
func WithMaxSize(maxSize int) Option {
	return func(w *Window) {
		w.maxSize = maxSize
	}
}
