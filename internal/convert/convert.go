package convert

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/secopslab/playtrack/internal/element"
)

// Converter turns raw document bytes into an ordered element stream. The
// downstream tree builder never touches the source format itself.
type Converter interface {
	Convert(r io.Reader, filename string) ([]element.Element, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".docx":     true,
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
	".pdf":      true,
}

// ForFile returns the appropriate converter for a filename.
func ForFile(filename string) (Converter, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DOCXConverter{}, nil
	case ".html", ".htm":
		return &HTMLConverter{}, nil
	case ".md", ".markdown":
		return &MarkdownConverter{}, nil
	case ".pdf":
		return &PDFConverter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
