package extractor

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMinimalPDF writes a single-page PDF with one text showing
// operation. Object offsets are computed while building so the xref
// table stays byte-exact.
func writeMinimalPDF(t *testing.T, path, text string) {
	t.Helper()

	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// writeMinimalDocx zips up the smallest package the docx reader
// accepts: document.xml plus its relationship parts.
func writeMinimalDocx(t *testing.T, path string, paragraphs []string) {
	t.Helper()

	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	entries := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
		{"word/document.xml", doc.String()},
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestExtractText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.txt")
	require.NoError(t, os.WriteFile(path, []byte("Vacation days: 20 per year."), 0o644))

	text, err := Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "Vacation days: 20 per year.", text)
}

func TestExtractPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.pdf")
	writeMinimalPDF(t, path, "Vacation days: 20 per year.")

	text, err := Extract(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Vacation days: 20 per year.")
}

func TestExtractDocx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.docx")
	writeMinimalDocx(t, path, []string{"Vacation days: 20 per year.", "Remote work requires approval."})

	text, err := Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "Vacation days: 20 per year.\nRemote work requires approval.", text)
}

func TestExtractAllSupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range Extensions() {
		path := filepath.Join(dir, "fixture"+ext)
		switch ext {
		case ".txt":
			require.NoError(t, os.WriteFile(path, []byte("Vacation days: 20 per year."), 0o644))
		case ".pdf":
			writeMinimalPDF(t, path, "Vacation days: 20 per year.")
		case ".docx", ".doc":
			writeMinimalDocx(t, path, []string{"Vacation days: 20 per year."})
		}

		text, err := Extract(path)
		require.NoError(t, err, ext)
		assert.NotEmpty(t, strings.TrimSpace(text), ext)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "setup.exe")
	require.NoError(t, os.WriteFile(path, []byte("binary"), 0o644))

	_, err := Extract(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.Contains(t, err.Error(), ".exe")
	assert.Contains(t, err.Error(), ".pdf")
	assert.Contains(t, err.Error(), ".docx")
}

func TestExtractMissingFile(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".pdf", ".txt", ".docx", ".doc", ".PDF", ".Txt"} {
		assert.True(t, Supported(ext), ext)
	}
	for _, ext := range []string{".exe", ".md", ".csv", "", "txt"} {
		assert.False(t, Supported(ext), ext)
	}
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf", ".txt", ".docx", ".doc"}, Extensions())
}

func TestDocumentText(t *testing.T) {
	xml := `<w:document><w:body>` +
		`<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve"> world</w:t></w:r></w:p>` +
		`<w:p></w:p>` +
		`<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	assert.Equal(t, "Hello world\nSecond paragraph", documentText(xml))
}

func TestDocumentTextEmpty(t *testing.T) {
	assert.Equal(t, "", documentText("<w:document><w:body></w:body></w:document>"))
}
