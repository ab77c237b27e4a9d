package models

import "time"

// DriveV1 represents a volume row in the paginated v1 listing format.
type DriveV1 struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	TotalBytes  int64      `json:"total_bytes"`
	UsedBytes   int64      `json:"used_bytes"`
	LastSeen    time.Time  `json:"last_seen"`
	LastScan    *time.Time `json:"last_scan_at,omitempty"`
	FileCount   int64      `json:"file_count"`
	Excluded    bool       `json:"excluded"`
	IsConnected bool       `json:"is_connected"`
}

// ErrorV1 represents the uniform error response format
type ErrorV1 struct {
	Error ErrorDetailsV1 `json:"error"`
}

// ErrorDetailsV1 contains error details
type ErrorDetailsV1 struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id"`
}
