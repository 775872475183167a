package arena

type options struct {
	copyOnRelocate bool
}

// Option is a configuration option for Arena.
type Option func(*options)

// WithCopyOnRelocate makes Realloc copy min(old, new) bytes when a non-tail
// block has to be relocated. By default the relocated block's contents are
// left as they are in the buffer.
func WithCopyOnRelocate() Option {
	return func(o *options) {
		o.copyOnRelocate = true
	}
}
