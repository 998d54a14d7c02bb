package gosquirrelstash

// DefaultOptions returns the recommended set of options for production use.
// Currently this includes a modest near cache; additional defaults may be
// added in future versions.
func DefaultOptions() []Option {
	return []Option{
		WithNearCache(10_000),
	}
}
