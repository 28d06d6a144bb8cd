package embedding

import (
	"fmt"
	"strings"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// BERT special token IDs used by the hash tokenizer.
const (
	clsTokenID = 101
	sepTokenID = 102
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
// All three slices have length maxTokens; unused positions are zero.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error)
}

// NewTokenizer loads the HuggingFace tokenizer at path, or returns the hash tokenizer when path is empty.
func NewTokenizer(path string) (Tokenizer, error) {
	if path == "" {
		return &SimpleTokenizer{}, nil
	}
	return NewHFTokenizer(path)
}

// HFTokenizer wraps a HuggingFace tokenizer.json (WordPiece for MiniLM-style models).
type HFTokenizer struct {
	tk *tokenizer.Tokenizer
}

// NewHFTokenizer loads a tokenizer.json file.
func NewHFTokenizer(path string) (*HFTokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return &HFTokenizer{tk: tk}, nil
}

// Tokenize encodes text with special tokens, truncating to maxTokens while keeping the trailing [SEP].
func (t *HFTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	en, err := t.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode: %w", err)
	}
	inputIDs = fitTokens(en.Ids, maxTokens, true)
	attentionMask = fitTokens(en.AttentionMask, maxTokens, true)
	tokenTypeIDs = fitTokens(en.TypeIds, maxTokens, false)
	return inputIDs, attentionMask, tokenTypeIDs, nil
}

// fitTokens copies ids into a zero-padded slice of length n. When ids is longer than n it is
// truncated; keepLast preserves the final element (the [SEP] token or its mask bit).
func fitTokens(ids []int, n int, keepLast bool) []int64 {
	out := make([]int64, n)
	if len(ids) <= n {
		for i, id := range ids {
			out[i] = int64(id)
		}
		return out
	}
	for i := 0; i < n; i++ {
		out[i] = int64(ids[i])
	}
	if keepLast && n > 0 {
		out[n-1] = int64(ids[len(ids)-1])
	}
	return out
}

// SimpleTokenizer is a word-split tokenizer with hash-based token IDs (for testing or when no
// tokenizer.json is configured).
type SimpleTokenizer struct{}

// Tokenize splits text into words and produces padded token IDs up to maxTokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = clsTokenID
	attentionMask[0] = 1

	pos := 1
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = int64(HashString(word) % 30000)
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = sepTokenID
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs, nil
}

// HashString returns a deterministic non-negative hash for use as a simple token ID.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
