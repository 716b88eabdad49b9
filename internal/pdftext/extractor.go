// Package pdftext extracts plain text from uploaded PDF documents using the
// pure-Go github.com/ledongthuc/pdf reader.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable is returned for input that cannot be opened as a PDF.
var ErrUnreadable = errors.New("error reading PDF")

// DefaultPageLimit is the page selector's initial value for a fresh upload.
const DefaultPageLimit = 3

// Document is an opened PDF held in memory.
type Document struct {
	reader *pdf.Reader
	pages  int
}

// Open parses data as a PDF document.
func Open(data []byte) (doc *Document, err error) {
	if !IsPDF(data) {
		return nil, fmt.Errorf("%w: missing %%PDF- header", ErrUnreadable)
	}
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return &Document{reader: r, pages: r.NumPage()}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int { return d.pages }

// ExtractText returns the plain text of the first numPages pages, one page
// per paragraph. numPages is clamped to the document's page range. Pages that
// fail to decode are skipped.
func (d *Document) ExtractText(numPages int) (string, error) {
	if d.pages == 0 {
		return "", nil
	}
	pages, err := d.pageTexts(ClampPages(numPages, d.pages))
	if err != nil {
		return "", err
	}
	return JoinPages(pages, len(pages)), nil
}

// PageTexts returns the trimmed text of every page. Unreadable pages are
// returned as empty strings; an error is returned only when no page decodes.
func (d *Document) PageTexts() ([]string, error) {
	return d.pageTexts(d.pages)
}

func (d *Document) pageTexts(n int) ([]string, error) {
	if n == 0 {
		return nil, nil
	}
	texts := make([]string, n)
	failed := 0
	for i := 1; i <= n; i++ {
		text, err := d.pageText(i)
		if err != nil {
			failed++
			continue
		}
		texts[i-1] = strings.TrimSpace(text)
	}
	if failed == n {
		return nil, fmt.Errorf("%w: no readable text in pages 1-%d", ErrUnreadable, n)
	}
	return texts, nil
}

// JoinPages joins the non-empty texts of the first n pages with newlines.
func JoinPages(pages []string, n int) string {
	if n > len(pages) {
		n = len(pages)
	}
	var sb strings.Builder
	for _, text := range pages[:max(n, 0)] {
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func (d *Document) pageText(i int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", i, r)
		}
	}()
	page := d.reader.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// IsPDF checks the %PDF- magic bytes.
func IsPDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// DefaultPages is the initial page selection for a document of total pages.
func DefaultPages(total int) int {
	return ClampPages(DefaultPageLimit, total)
}

// ClampPages bounds a page selection to [1, total]. A document reporting no
// pages is treated as having one.
func ClampPages(n, total int) int {
	if total < 1 {
		total = 1
	}
	if n < 1 {
		return 1
	}
	if n > total {
		return total
	}
	return n
}
