package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page holds the extracted text of one PDF page.
type Page struct {
	Number int
	Text   string
}

// Pages extracts page-level text from an in-memory PDF payload. The page
// count drives plan-limit enforcement, so every page is represented even
// when its text is empty.
func Pages(ctx context.Context, data []byte) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty pdf data")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	if total <= 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	fonts := make(map[string]*pdf.Font)
	pages := make([]Page, 0, total)
	for num := 1; num <= total; num++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(num)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: num})
			continue
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", num, err)
		}
		pages = append(pages, Page{Number: num, Text: strings.TrimSpace(text)})
	}
	return pages, nil
}
