package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrExternalExtraction marks failures of the underlying document library
// or tool to produce text.
var ErrExternalExtraction = errors.New("document text extraction failed")

// ExtractionError wraps a library failure for one file.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract text from %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExternalExtraction, e.Err}
}

// Parser converts raw document bytes into plain text, one table line per
// text line where the format allows it.
type Parser interface {
	Parse(r io.Reader, filename string) (string, error)
}

// Options tunes parser construction.
type Options struct {
	// FallbackPdftotext retries PDFs with the pdftotext binary when the Go
	// reader fails.
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this tool can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
