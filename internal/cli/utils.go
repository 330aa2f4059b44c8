// Package cli provides CLI output utilities for Omiai.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/omiai/internal/models"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat maps a -output flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "json":
		return OutputJSON, nil
	case "text", "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteRecommendations writes a recommendation response to w in the given format.
func WriteRecommendations(w io.Writer, response *models.RecommendResponse, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	}
	fmt.Fprintf(w, "\n%s: %d of %d candidates in %dms\n\n",
		Truncate(response.TitleClean, 80), len(response.Results), response.PoolSize, response.QueryTime)
	for _, rec := range response.Results {
		fmt.Fprintf(w, "%3d. %-30s score %.4f", rec.Rank, Truncate(rec.Name, 30), rec.Score)
		if rec.HireProbability != nil {
			fmt.Fprintf(w, "  hire prob %.2f", *rec.HireProbability)
		}
		fmt.Fprintf(w, "  (%s)\n", rec.CandidateID)
	}
	if len(response.Results) == 0 {
		fmt.Fprintln(w, "No candidates matched.")
	}
	return nil
}

// WriteTrainReport writes a training report to w in the given format.
func WriteTrainReport(w io.Writer, report *models.TrainReport, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(w, "trained %s\n", report.Fingerprint)
	fmt.Fprintf(w, "samples:            %d\n", report.Samples)
	fmt.Fprintf(w, "positives:          %d\n", report.Positives)
	fmt.Fprintf(w, "dropped_prospects:  %d\n", report.DroppedProspects)
	fmt.Fprintf(w, "vocabulary_size:    %d\n", report.VocabularySize)
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
