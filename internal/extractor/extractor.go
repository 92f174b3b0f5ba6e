package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ErrUnsupportedFormat is returned when a file's extension is not in the
// allowed set. Parser-level failures are not classified and propagate as
// plain extraction errors.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var supportedExtensions = []string{".pdf", ".txt", ".docx", ".doc"}

// Extensions returns the allowed file extensions in a stable order.
func Extensions() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

// Supported reports whether ext (with leading dot, any case) is an
// allowed extension.
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range supportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Extract converts the file at filePath into a single plain-text string.
// PDF pages are concatenated in document order, word-processor paragraphs
// are newline-joined, text files are read verbatim.
func Extract(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return extractPDF(filePath)
	case ".txt":
		return extractText(filePath)
	case ".docx", ".doc":
		return extractDOCX(filePath)
	default:
		return "", fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedFormat, ext, strings.Join(supportedExtensions, ", "))
	}
}

func extractPDF(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", fmt.Errorf("failed to read pdf %s: %w", filePath, err)
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract page %d of %s: %w", i, filePath, err)
		}
		text.WriteString(pageText)
	}
	return text.String(), nil
}

func extractText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func extractDOCX(filePath string) (string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read docx %s: %w", filePath, err)
	}
	defer r.Close()

	// GetContent returns the raw document XML; pull the run text out of it
	content := r.Editable().GetContent()
	return documentText(content), nil
}

// documentText extracts paragraph text from WordprocessingML, one line
// per <w:p> paragraph, skipping empty paragraphs.
func documentText(xmlContent string) string {
	var lines []string
	for _, para := range strings.Split(xmlContent, "</w:p>") {
		var line strings.Builder
		rest := para
		for {
			start := strings.Index(rest, "<w:t")
			if start < 0 {
				break
			}
			rest = rest[start:]
			open := strings.Index(rest, ">")
			if open < 0 {
				break
			}
			rest = rest[open+1:]
			end := strings.Index(rest, "</w:t>")
			if end < 0 {
				break
			}
			line.WriteString(rest[:end])
			rest = rest[end+len("</w:t>"):]
		}
		if s := line.String(); strings.TrimSpace(s) != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}
