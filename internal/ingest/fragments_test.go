package ingest

import (
	"strings"
	"testing"
)

func TestReadFragments(t *testing.T) {
	input := strings.Join([]string{
		`{"source_id":"a","url":"https://docs/a","title":"A","raw_content":"<p>hello</p>"}`,
		``,
		`not json at all`,
		`{"url":"https://docs/x","raw_content":"missing source id"}`,
		`{"source_id":"b","raw_content":"plain text"}`,
	}, "\n")

	frags, err := ReadFragments(strings.NewReader(input), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(frags))
	}
	if frags[0].SourceID != "a" || frags[1].SourceID != "b" {
		t.Errorf("got %q, %q", frags[0].SourceID, frags[1].SourceID)
	}
	if frags[0].URL != "https://docs/a" || frags[0].Title != "A" {
		t.Errorf("fragment metadata not parsed: %+v", frags[0])
	}
}

func TestFileSourceID_Stable(t *testing.T) {
	a := FileSourceID("/data/docs/guide.md")
	b := FileSourceID("/data/docs/guide.md")
	if a != b {
		t.Error("same path must produce the same source ID")
	}
	if !strings.HasPrefix(a, "file:") {
		t.Errorf("got %q, want file: prefix", a)
	}
	if FileSourceID("/data/docs/other.md") == a {
		t.Error("different paths must produce different source IDs")
	}
}
