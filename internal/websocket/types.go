package websocket

import (
	"time"
)

// MessageType defines the type of WebSocket message.
type MessageType string

const (
	// Client to Server
	MessageTypePing MessageType = "ping"

	// Server to Client
	MessageTypePong         MessageType = "pong"
	MessageTypeDriveEvent   MessageType = "drive_event"
	MessageTypeScanProgress MessageType = "scan_progress"
	MessageTypeScanComplete MessageType = "scan_complete"
	MessageTypeScanError    MessageType = "scan_error"
)

// Message is the envelope for every server-to-client push (spec.md §4.5's
// progress stream and §4.2's mount/unmount notifications).
type Message struct {
	Type      MessageType `json:"type"`
	Data      any         `json:"data,omitempty"`
	VolumeID  string      `json:"volume_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// DriveEventData reports a volume transitioning mounted/unmounted
// (internal/volumes.Event).
type DriveEventData struct {
	ID        string `json:"id"`
	Mounted   bool   `json:"mounted"`
	MountPath string `json:"mount_path,omitempty"`
}

// ScanProgressData mirrors internal/scanner.ProgressUpdate for the wire.
type ScanProgressData struct {
	EntriesProcessed int    `json:"entries_processed"`
	CurrentPath      string `json:"current_path,omitempty"`
}

// ScanCompleteData reports a finished scan (internal/orchestrator.CompletionEvent).
type ScanCompleteData struct {
	VolumeID  string `json:"volume_id"`
	FileCount int64  `json:"file_count"`
}

// ScanErrorData reports a failed scan.
type ScanErrorData struct {
	Error string `json:"error"`
}
