// Package extract pulls plain text out of PDF research papers.
package extract

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DefaultMaxChars bounds extracted text per document to keep prompt
// construction and memory in check for very large PDFs.
const DefaultMaxChars = 1_000_000

// Extractor extracts plain text from PDF files.
type Extractor struct {
	maxChars int
	logger   *slog.Logger
}

// New creates an Extractor with the given character cap.
// A non-positive cap falls back to DefaultMaxChars.
func New(maxChars int, logger *slog.Logger) *Extractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{maxChars: maxChars, logger: logger}
}

// Extract returns the concatenated plain text of all pages in the PDF.
// It never returns an error: any failure (corrupt file, I/O error, parser
// panic) degrades to an empty string so a bad document does not abort a
// whole batch. The character cap is enforced while reading: once the
// accumulated text reaches the cap no further pages are read.
func (e *Extractor) Extract(path string) string {
	text, err := e.extract(path)
	if err != nil {
		e.logger.Error("failed to extract text", "path", path, "error", err)
		return ""
	}
	return text
}

func (e *Extractor) extract(path string) (text string, err error) {
	// The pdf parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	totalPages := reader.NumPage()
	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}

		b.WriteString(pageText)
		b.WriteString("\n")
		if b.Len() > e.maxChars {
			e.logger.Warn("extraction character cap reached", "path", path, "pages_read", i, "pages_total", totalPages)
			break
		}
	}

	return b.String(), nil
}

// ValidateInputs checks that every path exists and is a readable PDF.
// Unlike Extract, a failure here is fatal to the run: bad input files are
// reported before any pipeline stage starts.
func ValidateInputs(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("input file not found: %s", p)
		}
		if err := api.ValidateFile(p, nil); err != nil {
			return fmt.Errorf("not a readable PDF: %s: %w", p, err)
		}
	}
	return nil
}

// PageCount returns the number of pages in a PDF.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}
