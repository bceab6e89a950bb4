package loader

import (
	"context"
)

// GraphFile represents a document that can be processed into text for
// graph construction. The actual content is retrieved via the associated
// GraphFileLoader.
type GraphFile struct {
	ID       string
	FilePath string
	Filename string
	Loader   GraphFileLoader
}

// NewGraphFileParams defines the input parameters for creating a new
// GraphFile instance.
type NewGraphFileParams struct {
	ID       string
	FilePath string
	Filename string
	Loader   GraphFileLoader
}

// NewGraphFile creates a GraphFile using the provided parameters.
func NewGraphFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		Filename: params.Filename,
		Loader:   params.Loader,
	}
}

// GetText retrieves the raw text content of the file using its Loader.
func (f *GraphFile) GetText(ctx context.Context) ([]byte, error) {
	return f.Loader.GetFileText(ctx, *f)
}

// GraphFileLoader defines the interface for loading the contents of a
// GraphFile. Implementations may load files from disk, object storage,
// or decode a container format by wrapping another loader.
type GraphFileLoader interface {
	GetFileText(ctx context.Context, file GraphFile) ([]byte, error)
}

// CacheKey identifies a file for loader-level caching.
func CacheKey(file GraphFile) string {
	return file.ID + ":" + file.FilePath
}
