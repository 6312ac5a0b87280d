package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// DOCX is a ZIP containing word/document.xml (OOXML). Pulling every
// <w:t>...</w:t> text node keeps content regardless of paragraph or run
// attributes.
const docxDocumentXMLPath = "word/document.xml"

var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}
	docXML, err := readZipFile(zr, docxDocumentXMLPath)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}
	parts := wtTag.FindAllStringSubmatch(string(docXML), -1)
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimSpace(p[1]))
	}
	return strings.TrimSpace(b.String()), nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found", name)
}
