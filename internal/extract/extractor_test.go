package extract

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractBytes_Plain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("hello docs"), ".txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello docs" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_HTML(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("<h1>API</h1><p>body text</p>"), ".html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "API") || !strings.Contains(got, "body text") {
		t.Errorf("got %q", got)
	}
	if strings.Contains(got, "<") {
		t.Errorf("tags not stripped: %q", got)
	}
}

func TestExtractBytes_UnknownExtensionAsPlain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("raw"), ".log")
	if err != nil {
		t.Fatal(err)
	}
	if got != "raw" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_XLSX(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetCellValue("Sheet1", "A1", "parameter"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Sheet1", "B1", "description"); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	e := NewExtractor()
	got, err := e.ExtractBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "parameter description") {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_InvalidUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte{0xff, 'o', 'k'}, ".txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "ok") {
		t.Errorf("got %q", got)
	}
}
