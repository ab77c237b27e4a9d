package models

import "time"

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error" example:"volume not found"`
	Code    string `json:"code,omitempty" example:"VOLUME_NOT_FOUND"`
	Details string `json:"details,omitempty"`
} // @name ErrorResponse

// HealthResponse represents a health check response
type HealthResponse struct {
	Status     string                 `json:"status" example:"ok"`
	Service    string                 `json:"service" example:"volumedex"`
	Version    string                 `json:"version" example:"v1"`
	Timestamp  time.Time              `json:"timestamp"`
	Components map[string]interface{} `json:"components,omitempty"`
} // @name HealthResponse

// DriveResponse represents a registered volume (spec.md §3 "Volume").
type DriveResponse struct {
	ID          string     `json:"id" example:"a1b2c3d4"`
	DisplayName string     `json:"display_name" example:"Backup Drive"`
	TotalBytes  int64      `json:"total_bytes" example:"1000204886016"`
	UsedBytes   int64      `json:"used_bytes" example:"450204886016"`
	LastSeen    time.Time  `json:"last_seen"`
	LastScan    *time.Time `json:"last_scan,omitempty"`
	FileCount   int64      `json:"file_count" example:"128302"`
	Excluded    bool       `json:"excluded" example:"false"`
	IsConnected bool       `json:"is_connected" example:"true"`
} // @name DriveResponse

// DriveListResponse represents a list of registered volumes.
type DriveListResponse struct {
	Drives []DriveResponse `json:"drives"`
	Total  int             `json:"total" example:"3"`
} // @name DriveListResponse

// ScanRequestResponse acknowledges a scan request (spec.md §4.5); the scan
// itself runs asynchronously and its progress is reported over the
// websocket progress stream.
type ScanRequestResponse struct {
	VolumeID string `json:"volume_id" example:"a1b2c3d4"`
	Status   string `json:"status" example:"started" enums:"started,already_running"`
} // @name ScanRequestResponse

// ScanStatusResponse reports the last-known state of a volume's scan.
type ScanStatusResponse struct {
	VolumeID     string     `json:"volume_id" example:"a1b2c3d4"`
	Running      bool       `json:"running" example:"true"`
	LastScan     *time.Time `json:"last_scan,omitempty"`
	FileCount    int64      `json:"file_count" example:"128302"`
	CurrentPath  string     `json:"current_path,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
} // @name ScanStatusResponse

// SearchResultResponse mirrors internal/search.Result for JSON responses.
type SearchResultResponse struct {
	FileID            int64  `json:"file_id" example:"42"`
	Name              string `json:"name" example:"vacation.jpg"`
	RelativePath      string `json:"relative_path" example:"photos/2024/vacation.jpg"`
	Size              int64  `json:"size" example:"4829184"`
	VolumeID          string `json:"volume_id" example:"a1b2c3d4"`
	VolumeDisplayName string `json:"volume_display_name" example:"Backup Drive"`
	IsConnected       bool   `json:"is_connected" example:"true"`
	DuplicateCount    int64  `json:"duplicate_count,omitempty" example:"1"`
} // @name SearchResultResponse

// SearchResponse wraps a ranked list of search hits.
type SearchResponse struct {
	Query   string                 `json:"query" example:"vacation"`
	Results []SearchResultResponse `json:"results"`
	Total   int                    `json:"total" example:"1"`
} // @name SearchResponse
