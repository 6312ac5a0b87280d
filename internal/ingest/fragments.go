package ingest

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/extract"
	"github.com/hyperjump/shirabe/internal/models"
)

// ReadFragments parses fragments from a JSONL stream, one JSON object per
// line. Malformed lines are skipped, not fatal: a scraper dump with a few
// broken records should still ingest the rest.
func ReadFragments(r io.Reader, logger *zap.Logger) ([]models.Fragment, error) {
	var fragments []models.Fragment
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var frag models.Fragment
		if err := json.Unmarshal([]byte(line), &frag); err != nil {
			if logger != nil {
				logger.Warn("Skipping malformed fragment line",
					zap.Int("line", lineNo),
					zap.Error(err))
			}
			continue
		}
		if frag.SourceID == "" {
			if logger != nil {
				logger.Warn("Skipping fragment without source_id", zap.Int("line", lineNo))
			}
			continue
		}
		fragments = append(fragments, frag)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fragments: %w", err)
	}
	return fragments, nil
}

// ReadFragmentsFile reads a JSONL fragment file from disk.
func ReadFragmentsFile(path string, logger *zap.Logger) ([]models.Fragment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fragments file: %w", err)
	}
	defer f.Close()
	return ReadFragments(f, logger)
}

// FileSourceID derives a stable source ID for a local file from its absolute
// path. Re-ingesting the same path supersedes the previous version, matching
// the superseding behavior of scraper-delivered source IDs.
func FileSourceID(absPath string) string {
	sum := sha256.Sum256([]byte(absPath))
	return "file:" + hex.EncodeToString(sum[:16])
}

// FileFragment turns a local file into a fragment, extracting text from
// binary formats (PDF, DOCX, XLSX) before it enters the pipeline.
func FileFragment(extractor *extract.Extractor, path string) (*models.Fragment, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	text, err := extractor.Extract(abs)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", abs, err)
	}
	return &models.Fragment{
		SourceID:   FileSourceID(abs),
		URL:        "file://" + abs,
		Title:      filepath.Base(abs),
		RawContent: text,
	}, nil
}
