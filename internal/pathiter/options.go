package pathiter

// Option configures an Iterator.
type Option func(*options)

type options struct {
	batch          int
	sorted         bool
	followSymlinks bool
	exclude        map[string]struct{}
	ignore         *Matcher
}

func defaultOptions() *options {
	return &options{
		batch:          64,
		followSymlinks: true,
		exclude:        map[string]struct{}{},
	}
}

// WithSortedEntries yields each directory's children in name order instead of
// the order the operating system lists them. The whole listing of one
// directory is read and its handle closed before the first child is yielded.
func WithSortedEntries() Option {
	return func(o *options) {
		o.sorted = true
	}
}

// WithoutFollowSymlinks stops the iterator from descending into symlinked
// directories. They are still yielded as directories. By default links are
// followed like any other directory and cycles are not detected.
func WithoutFollowSymlinks() Option {
	return func(o *options) {
		o.followSymlinks = false
	}
}

// WithExclude skips entries whose base name equals one of names. An excluded
// directory is not descended.
func WithExclude(names ...string) Option {
	return func(o *options) {
		for _, n := range names {
			if n != "" {
				o.exclude[n] = struct{}{}
			}
		}
	}
}

// WithIgnore skips entries matched by m.
func WithIgnore(m *Matcher) Option {
	return func(o *options) {
		o.ignore = o.ignore.merge(m)
	}
}

// WithIgnorePatterns is WithIgnore for inline gitignore-style patterns.
func WithIgnorePatterns(patterns ...string) Option {
	return WithIgnore(ParsePatterns(patterns))
}

// WithBatchSize sets how many entries are read from a directory handle at a
// time in unsorted mode.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batch = n
		}
	}
}
