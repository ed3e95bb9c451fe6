// Package loader decodes texture files in parallel and uploads them through a texture.Creator, caching the
// resulting handles by path.
package loader

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
)

// ErrClosed is returned by loads after Close.
var ErrClosed = errors.New("loader: closed")

// ProgressFunc is called on the loading goroutine after each texture is uploaded or has failed.
type ProgressFunc func(done, total int, path string)

// Loader loads textures and caches them by path. Decoding runs on a worker pool; uploads always happen on
// the goroutine that called the load, so the creator can be a GPU backend bound to that thread.
type Loader interface {
	// LoadTextures loads every path that is not cached yet. Failures do not stop the other loads.
	//
	// Parameters:
	//   - ctx: cancels waiting for outstanding decodes
	//   - paths: the texture paths, resolved by the loader's source
	//
	// Returns:
	//   - []texture.Texture: one entry per path in order, nil where loading failed
	//   - error: the joined errors of every failed path, or the context error
	LoadTextures(ctx context.Context, paths ...string) ([]texture.Texture, error)

	// LoadTexture loads one texture.
	//
	// Parameters:
	//   - path: the texture path
	//
	// Returns:
	//   - texture.Texture: the loaded or cached texture
	//   - error: an error if decoding or upload failed
	LoadTexture(path string) (texture.Texture, error)

	// Get returns a cached texture, nil if path has not been loaded.
	Get(path string) texture.Texture

	// Textures returns a copy of the cache.
	//
	// Returns:
	//   - map[string]texture.Texture: every loaded texture keyed by path
	Textures() map[string]texture.Texture

	// Close stops the worker pool. Cached textures stay owned by the creator.
	Close()
}

type loader struct {
	mu sync.RWMutex

	creator    texture.Creator
	backend    loaderBackend
	cache      map[string]texture.Texture
	workers    int
	onProgress ProgressFunc

	pool   worker.DynamicWorkerPool
	closed bool
}

var _ Loader = &loader{}

// decoded is the outcome of one decode task.
type decoded struct {
	index int
	path  string
	data  common.TextureStagingData
	err   error
}

// NewLoader creates a Loader uploading through creator. Files are read from disk unless WithFS is given.
//
// Parameters:
//   - creator: uploads decoded textures, usually the backend
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the new loader
func NewLoader(creator texture.Creator, options ...LoaderBuilderOption) Loader {
	l := &loader{
		creator: creator,
		backend: newFileLoaderBackend(),
		cache:   make(map[string]texture.Texture),
		workers: runtime.NumCPU(),
	}
	for _, option := range options {
		option(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 64, 1*time.Second)
	return l
}

func (l *loader) LoadTextures(ctx context.Context, paths ...string) ([]texture.Texture, error) {
	l.mu.RLock()
	closed := l.closed
	l.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	out := make([]texture.Texture, len(paths))
	pending := make(map[string][]int)
	var order []string
	for i, p := range paths {
		if t := l.Get(p); t != nil {
			out[i] = t
			continue
		}
		if _, ok := pending[p]; !ok {
			order = append(order, p)
		}
		pending[p] = append(pending[p], i)
	}
	if len(order) == 0 {
		return out, nil
	}

	results := make(chan decoded, len(order))
	for i, p := range order {
		index, path := i, p
		l.pool.SubmitTask(worker.Task{
			ID:      index,
			Payload: path,
			Do: func() (any, error) {
				data, err := l.backend.Decode(path)
				results <- decoded{index: index, path: path, data: data, err: err}
				return nil, err
			},
		})
	}

	var errs []error
	for done := 1; done <= len(order); done++ {
		var r decoded
		select {
		case r = <-results:
		case <-ctx.Done():
			return out, ctx.Err()
		}

		if r.err == nil {
			var tex texture.Texture
			tex, r.err = l.creator.CreateTexture(r.path, r.data)
			if r.err == nil {
				l.mu.Lock()
				l.cache[r.path] = tex
				l.mu.Unlock()
				for _, i := range pending[r.path] {
					out[i] = tex
				}
				logger.Logger().Debug("texture loaded", "path", r.path, "width", r.data.Width, "height", r.data.Height)
			}
		}
		if r.err != nil {
			logger.Logger().Error("texture load failed", "path", r.path, "err", r.err)
			errs = append(errs, fmt.Errorf("loader: %s: %w", r.path, r.err))
		}
		if l.onProgress != nil {
			l.onProgress(done, len(order), r.path)
		}
	}
	return out, errors.Join(errs...)
}

func (l *loader) LoadTexture(path string) (texture.Texture, error) {
	textures, err := l.LoadTextures(context.Background(), path)
	if err != nil {
		return nil, err
	}
	return textures[0], nil
}

func (l *loader) Get(path string) texture.Texture {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[path]
}

func (l *loader) Textures() map[string]texture.Texture {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]texture.Texture, len(l.cache))
	for k, v := range l.cache {
		result[k] = v
	}
	return result
}

func (l *loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.pool.Stop()
}
