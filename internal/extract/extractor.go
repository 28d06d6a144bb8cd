// Package extract turns uploaded document files into plain text for scoring.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for formats that need OCR or have no text layer.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// DefaultMaxBytes is the largest file Text will read.
const DefaultMaxBytes = 32 << 20

// Result is the outcome of extracting a file. Extraction never fails outright: when the file
// cannot be read or parsed, Text is empty and Err records the cause.
type Result struct {
	Text   string
	Format string
	Err    error
}

// OK reports whether extraction succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

type formatFunc func(content []byte) (string, error)

// formats maps a lower-case extension to its format name and extractor.
var formats = map[string]struct {
	name string
	fn   formatFunc
}{
	".pdf":  {"pdf", extractPDF},
	".docx": {"docx", extractDOCX},
	".xlsx": {"xlsx", extractExcel},
	".pptx": {"pptx", extractPPTX},
	".odt":  {"odt", extractODT},
	".odp":  {"odp", extractODT},
	".ods":  {"ods", extractODT},
	".txt":  {"text", extractPlain},
	".md":   {"text", extractPlain},
	".rst":  {"text", extractPlain},
	".csv":  {"text", extractPlain},
	".json": {"text", extractPlain},
	"":      {"text", extractPlain},
}

// imageExts have no text layer; reading them needs OCR.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true, ".gif": true, ".bmp": true,
}

// Extractor extracts plain text from document files.
type Extractor struct {
	maxBytes int64
}

// NewExtractor returns an Extractor that reads files up to maxBytes (DefaultMaxBytes when <= 0).
func NewExtractor(maxBytes int64) *Extractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Extractor{maxBytes: maxBytes}
}

// Text reads the file at path and returns its normalized text.
func (e *Extractor) Text(path string) Result {
	ext := strings.ToLower(filepath.Ext(path))
	info, err := os.Stat(path)
	if err != nil {
		return Result{Format: formatName(ext), Err: fmt.Errorf("stat file: %w", err)}
	}
	if info.Size() > e.maxBytes {
		return Result{Format: formatName(ext), Err: fmt.Errorf("file is %d bytes, limit is %d", info.Size(), e.maxBytes)}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Result{Format: formatName(ext), Err: fmt.Errorf("read file: %w", err)}
	}
	return e.Bytes(content, ext)
}

// Bytes extracts normalized text from content based on ext, which includes the leading dot.
// Unknown extensions are read as plain text.
func (e *Extractor) Bytes(content []byte, ext string) Result {
	ext = strings.ToLower(ext)
	if imageExts[ext] {
		return Result{Format: "image", Err: fmt.Errorf("%w: %s needs OCR", ErrUnsupportedFormat, ext)}
	}
	f, ok := formats[ext]
	if !ok {
		f = formats[""]
	}
	text, err := f.fn(content)
	if err != nil {
		return Result{Format: f.name, Err: err}
	}
	return Result{Text: Normalize(text), Format: f.name}
}

// Supported reports whether ext names a format with a text layer.
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	if imageExts[ext] {
		return false
	}
	_, ok := formats[ext]
	return ok
}

func formatName(ext string) string {
	if imageExts[ext] {
		return "image"
	}
	if f, ok := formats[ext]; ok {
		return f.name
	}
	return "text"
}
