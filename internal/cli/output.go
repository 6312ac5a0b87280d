// Package cli provides output helpers for the Shirabe CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/shirabe/internal/models"
)

// OutputFormat is the format for retrieval result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteRetrieveResults writes retrieval results to w in the given format.
func WriteRetrieveResults(w io.Writer, response *models.RetrieveResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeRetrieveResultsText(w, response)
		return nil
	}
}

func writeRetrieveResultsText(w io.Writer, response *models.RetrieveResponse) {
	fmt.Fprintf(w, "\nFound %d chunks in %dms for %q\n\n", response.Total, response.QueryTime, response.Query)
	for _, result := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f | Chunk: %s\n", result.Rank, result.Score, result.ChunkID)
		if result.Title != "" {
			fmt.Fprintf(w, "Title: %s\n", result.Title)
		}
		if result.URL != "" {
			fmt.Fprintf(w, "URL: %s\n", result.URL)
		}
		fmt.Fprintf(w, "\n%s\n\n", Truncate(result.Text, 300))
	}
}

// WriteIngestReport writes an ingestion summary to w.
func WriteIngestReport(w io.Writer, report *models.IngestReport, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(w, "fragments:            %d\n", report.Fragments)
	fmt.Fprintf(w, "documents kept:       %d\n", report.DocumentsKept)
	fmt.Fprintf(w, "documents no text:    %d\n", report.DocumentsNoText)
	fmt.Fprintf(w, "documents duplicate:  %d\n", report.DocumentsDupes)
	fmt.Fprintf(w, "chunks produced:      %d\n", report.ChunksProduced)
	fmt.Fprintf(w, "chunks exact dup:     %d\n", report.ChunksExactDup)
	fmt.Fprintf(w, "chunks near dup:      %d\n", report.ChunksNearDup)
	fmt.Fprintf(w, "chunks indexed:       %d\n", report.ChunksIndexed)
	return nil
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
