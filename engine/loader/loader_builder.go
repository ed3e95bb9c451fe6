package loader

import (
	"io/fs"
)

// LoaderBuilderOption is a function that configures a Loader during NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets how many textures are decoded concurrently. Defaults to the number of CPUs.
//
// Parameters:
//   - n: the number of decode workers
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a Loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithProgress sets the callback reporting each finished texture.
//
// Parameters:
//   - fn: the progress callback
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a Loader
func WithProgress(fn ProgressFunc) LoaderBuilderOption {
	return func(l *loader) {
		l.onProgress = fn
	}
}

// WithFS reads texture paths from fsys instead of the operating system, e.g. an embed.FS.
//
// Parameters:
//   - fsys: the file system to read from
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a Loader
func WithFS(fsys fs.FS) LoaderBuilderOption {
	return func(l *loader) {
		l.backend = newFSLoaderBackend(fsys)
	}
}
