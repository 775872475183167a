package hashmap

type options struct {
	hash HashFunc
}

// Option is a configuration option for HashMap.
type Option func(*options)

// WithHasher sets the key hash function. A nil function keeps the default.
func WithHasher(fn HashFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.hash = fn
		}
	}
}
