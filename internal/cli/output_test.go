package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/rwascore/internal/models"
	"github.com/hyperjump/rwascore/internal/scoring"
)

func sampleScore() *models.ScoreResponse {
	return &models.ScoreResponse{
		Score: 47,
		Breakdown: []scoring.Entry{
			{Reason: scoring.ReasonKeywordPresence, Detail: map[string]int{"property": 1, "deed": 1, "valuation": 1}, Score: 26},
			{Reason: scoring.ReasonNumericEntities, Value: 3, Score: 6},
			{Reason: scoring.ReasonDatePresence, Value: true, Score: 5},
		},
		Strategy: scoring.StrategyHeuristic,
		Profile:  scoring.ProfilePoints,
		AssetID:  "a1",
	}
}

func TestParseOutputFormat(t *testing.T) {
	for _, s := range []string{"text", "json"} {
		if _, err := ParseOutputFormat(s); err != nil {
			t.Errorf("ParseOutputFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseOutputFormat("yaml"); err == nil {
		t.Error("expected error for yaml")
	}
}

func TestWriteScore_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteScore(&buf, sampleScore(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Score: 47 (heuristic/points)",
		"Asset: a1",
		"keyword_presence",
		"+26",
		"numeric_entities",
		"(3)",
		"deed x1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "deed x1") > strings.Index(out, "property x1") {
		t.Errorf("keyword detail should be sorted:\n%s", out)
	}
}

func TestWriteScore_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteScore(&buf, sampleScore(), OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.ScoreResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Score != 47 || len(decoded.Breakdown) != 3 || decoded.Breakdown[0].Detail["deed"] != 1 {
		t.Errorf("decoded: %+v", decoded)
	}
}

func TestWriteUpload(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteUpload(&buf, &models.UploadResponse{AssetID: "a1", Filename: "deed.txt", ExtractedText: "Property deed"}, OutputText)
	if !strings.Contains(buf.String(), "asset_id:  a1") || !strings.Contains(buf.String(), "Property deed") {
		t.Errorf("output:\n%s", buf.String())
	}

	buf.Reset()
	_ = WriteUpload(&buf, &models.UploadResponse{AssetID: "a2", Filename: "x.png", ExtractError: "unsupported format"}, OutputText)
	if !strings.Contains(buf.String(), "warning:") {
		t.Errorf("expected extraction warning:\n%s", buf.String())
	}
}

func TestWriteStatus(t *testing.T) {
	st := &models.Status{Assets: 3, DiskUsageBytes: 2048, DefaultStrategy: "heuristic", ModelConfigured: true, Version: "v1"}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, st, OutputText); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"assets:            3", "model_configured:  true", "model_loaded:      false", "version:           v1"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := WriteStatus(&buf, st, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.Status
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || decoded.Assets != 3 {
		t.Errorf("decoded: %+v, err %v", decoded, err)
	}
}
