package loader

import (
	"fmt"
	"io/fs"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
)

// loaderBackend reads and decodes one texture. Implementations must be safe for concurrent use.
type loaderBackend interface {
	// Decode reads the image at path and converts it to RGBA staging data.
	//
	// Parameters:
	//   - path: the image path
	//
	// Returns:
	//   - common.TextureStagingData: the decoded pixels
	//   - error: an error if the image cannot be read or decoded
	Decode(path string) (common.TextureStagingData, error)
}

// fileLoaderBackend decodes from the operating system's file system.
type fileLoaderBackend struct{}

func newFileLoaderBackend() loaderBackend {
	return fileLoaderBackend{}
}

func (fileLoaderBackend) Decode(path string) (common.TextureStagingData, error) {
	return texture.DecodeFile(path)
}

// fsLoaderBackend decodes from an fs.FS.
type fsLoaderBackend struct {
	fsys fs.FS
}

func newFSLoaderBackend(fsys fs.FS) loaderBackend {
	return fsLoaderBackend{fsys: fsys}
}

func (b fsLoaderBackend) Decode(path string) (common.TextureStagingData, error) {
	data, err := fs.ReadFile(b.fsys, path)
	if err != nil {
		return common.TextureStagingData{}, err
	}
	staging, err := texture.DecodeBytes(data)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("%s: %w", path, err)
	}
	return staging, nil
}
