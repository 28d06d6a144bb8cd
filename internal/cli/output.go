// Package cli renders rwascore results for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/hyperjump/rwascore/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat returns the format named s.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteScore writes a score response to w in the given format.
func WriteScore(w io.Writer, resp *models.ScoreResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	label := resp.Strategy
	if resp.Profile != "" {
		label += "/" + resp.Profile
	}
	fmt.Fprintf(w, "Score: %s (%s)\n", strconv.FormatFloat(resp.Score, 'f', -1, 64), label)
	if resp.AssetID != "" {
		fmt.Fprintf(w, "Asset: %s\n", resp.AssetID)
	}
	fmt.Fprintln(w)
	for _, e := range resp.Breakdown {
		fmt.Fprintf(w, "  %-28s +%s", e.Reason, strconv.FormatFloat(e.Score, 'f', -1, 64))
		if e.Value != nil {
			fmt.Fprintf(w, "  (%v)", e.Value)
		}
		fmt.Fprintln(w)
		terms := make([]string, 0, len(e.Detail))
		for term := range e.Detail {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			fmt.Fprintf(w, "      %s x%d\n", term, e.Detail[term])
		}
	}
	return nil
}

// WriteUpload writes an upload response to w in the given format.
func WriteUpload(w io.Writer, resp *models.UploadResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "asset_id:  %s\n", resp.AssetID)
	fmt.Fprintf(w, "filename:  %s\n", resp.Filename)
	if resp.Format != "" {
		fmt.Fprintf(w, "format:    %s\n", resp.Format)
	}
	if resp.ExtractError != "" {
		fmt.Fprintf(w, "warning:   text extraction failed: %s\n", resp.ExtractError)
		return nil
	}
	fmt.Fprintf(w, "\n%s\n", resp.ExtractedText)
	return nil
}

// WriteStatus writes the service status to w in the given format.
func WriteStatus(w io.Writer, st *models.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "assets:            %d   # catalogued documents\n", st.Assets)
	fmt.Fprintf(w, "disk_usage_bytes:  %d   # catalog + uploads on disk\n", st.DiskUsageBytes)
	fmt.Fprintf(w, "default_strategy:  %s\n", st.DefaultStrategy)
	fmt.Fprintf(w, "model_configured:  %t\n", st.ModelConfigured)
	fmt.Fprintf(w, "model_loaded:      %t\n", st.ModelLoaded)
	if st.Version != "" {
		fmt.Fprintf(w, "version:           %s\n", st.Version)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
