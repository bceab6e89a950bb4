package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"docgraph/pkg/logger"

	"github.com/ledongthuc/pdf"
)

// parsePDF extracts the plain text of every page. Opening the container
// fails hard; a page that panics or errors is skipped with a warning so
// the remaining pages still contribute.
func parsePDF(content []byte) ([]byte, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		text, err := extractPageText(reader, i)
		if err != nil {
			logger.Warn("[PDF] Skipping unreadable page", "page", i, "err", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return []byte(strings.Join(pages, "\n\n")), nil
}

// extractPageText isolates a single page. The underlying parser panics on
// some malformed content streams, so the recover keeps the failure scoped
// to this page.
func extractPageText(reader *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page extraction panicked: %v", r)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d is null", pageNum)
	}

	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return text, nil
}
