package pdf

import (
	"context"
	"sync"

	"docgraph/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// PDFGraphLoader wraps another loader and extracts plain text from the
// PDF bytes it returns. Extraction is page level so a single broken page
// does not lose the rest of the document.
type PDFGraphLoader struct {
	loader loader.GraphFileLoader

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewPDFGraphLoader creates a PDF loader that extracts text directly from
// PDF content fetched by the underlying loader.
func NewPDFGraphLoader(inner loader.GraphFileLoader) *PDFGraphLoader {
	return &PDFGraphLoader{
		loader: inner,
		cache:  make(map[string][]byte),
	}
}

// GetFileText extracts the text of all readable pages, joined by blank
// lines. A PDF whose container cannot be opened returns an error; pages
// that fail individually are skipped.
func (l *PDFGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		content, err := l.loader.GetFileText(ctx, file)
		if err != nil {
			return nil, err
		}

		text, err := parsePDF(content)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = text
		l.cacheMu.Unlock()

		return text, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
