package models

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hyperjump/rwascore/internal/scoring"
)

func TestScoreRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ScoreRequest
		wantErr bool
	}{
		{"empty", ScoreRequest{}, true},
		{"whitespace asset id only", ScoreRequest{AssetID: "  "}, true},
		{"raw text", ScoreRequest{RawText: "deed"}, false},
		{"asset id", ScoreRequest{AssetID: "abc"}, false},
		{"strategy case folded", ScoreRequest{RawText: "x", Strategy: "MODEL"}, false},
		{"unknown strategy", ScoreRequest{RawText: "x", Strategy: "oracle"}, true},
		{"profile", ScoreRequest{RawText: "x", Profile: "weighted"}, false},
		{"unknown profile", ScoreRequest{RawText: "x", Profile: "fancy"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	r := ScoreRequest{}
	if err := r.Validate(); !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
}

func TestScoreRequest_MetadataMap(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantOK bool
	}{
		{"absent", "", false},
		{"null", "null", false},
		{"list", `[1, 2]`, false},
		{"string", `"verified"`, false},
		{"object", `{"verified_offchain": true}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ScoreRequest{Metadata: json.RawMessage(tt.raw)}
			meta, ok := r.MetadataMap()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && meta["verified_offchain"] != true {
				t.Errorf("meta = %v", meta)
			}
		})
	}
}

func TestScoreRequest_DecodeAnyMetadata(t *testing.T) {
	var r ScoreRequest
	if err := json.Unmarshal([]byte(`{"raw_text":"x","metadata":[1,2,3]}`), &r); err != nil {
		t.Fatalf("non-object metadata should decode: %v", err)
	}
	if _, ok := r.MetadataMap(); ok {
		t.Error("list metadata should be ignored")
	}
}

func TestTokenizeRequest_Validate(t *testing.T) {
	valid := TokenizeRequest{AssetID: "a1", TokenName: "Deed Token", TokenSymbol: "DEED", TotalSupply: 1000, FractionCount: 100}
	if err := Validate(&valid); err != nil {
		t.Fatalf("valid request: %v", err)
	}

	bad := []TokenizeRequest{
		{TokenName: "x", TokenSymbol: "X", TotalSupply: 1, FractionCount: 1},
		{AssetID: "a", TokenName: "x", TokenSymbol: "X-1", TotalSupply: 1, FractionCount: 1},
		{AssetID: "a", TokenName: "x", TokenSymbol: "X", TotalSupply: 0, FractionCount: 1},
		{AssetID: "a", TokenName: "x", TokenSymbol: "X", TotalSupply: 10, FractionCount: 20},
	}
	for i, req := range bad {
		if err := Validate(&req); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestNewTokenizeResponse(t *testing.T) {
	req := &TokenizeRequest{AssetID: "a1", TokenName: "Deed", TokenSymbol: "DEED", TotalSupply: 10, FractionCount: 5}
	resp := NewTokenizeResponse(req)
	if resp.Status != "ready" {
		t.Errorf("status = %q", resp.Status)
	}
	if len(resp.ContractABI) != 1 || resp.ContractABI[0].Name != "mintAsset" {
		t.Errorf("abi = %+v", resp.ContractABI)
	}
	if resp.ConstructorArgs.Symbol != "DEED" || resp.ConstructorArgs.AssetID != "a1" {
		t.Errorf("constructor args = %+v", resp.ConstructorArgs)
	}
}

func TestNewScoreResponse(t *testing.T) {
	h, err := scoring.NewHeuristicScorer(scoring.DefaultHeuristicConfig())
	if err != nil {
		t.Fatal(err)
	}
	weighted, err := h.WithProfile(scoring.ProfileWeighted)
	if err != nil {
		t.Fatal(err)
	}
	res, err := weighted.Score(context.Background(), "Property deed, valuation $120,000, signed 2021", nil)
	if err != nil {
		t.Fatal(err)
	}
	res.Score = 12.34567
	resp := NewScoreResponse(res, weighted, "a1")
	if resp.Score != 12.346 {
		t.Errorf("score should be rounded to 3 decimals, got %v", resp.Score)
	}
	if resp.Strategy != scoring.StrategyHeuristic || resp.Profile != scoring.ProfileWeighted || resp.AssetID != "a1" {
		t.Errorf("response: %+v", resp)
	}
	if resp.Pretty != scoring.Pretty(res.Breakdown) {
		t.Errorf("pretty: got %q", resp.Pretty)
	}
}
