// Package models defines the API and catalog data structures.
package models

import "time"

// Asset is an uploaded or ingested document and its extracted text.
type Asset struct {
	ID           string    `json:"id" db:"id"`
	Filename     string    `json:"filename" db:"filename"`
	Path         string    `json:"path" db:"path"`
	Content      string    `json:"content" db:"content"`
	Format       string    `json:"format" db:"format"`
	ExtractError string    `json:"extract_error,omitempty" db:"extract_error"`
	Size         int64     `json:"size" db:"size"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	AssetID       string `json:"asset_id"`
	Filename      string `json:"filename"`
	ExtractedText string `json:"extracted_text"`
	Format        string `json:"format,omitempty"`
	ExtractError  string `json:"extract_error,omitempty"`
}

// Status summarizes the service state.
type Status struct {
	Assets          int64  `json:"assets"`
	DiskUsageBytes  int64  `json:"disk_usage_bytes"`
	DefaultStrategy string `json:"default_strategy"`
	ModelConfigured bool   `json:"model_configured"`
	ModelLoaded     bool   `json:"model_loaded"`
	Version         string `json:"version"`
}
