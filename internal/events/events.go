// Package events provides an event system for scan progress notifications.
package events

import (
	"fmt"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	// EventScanStarted is emitted when a scan begins walking its root
	EventScanStarted EventType = "scan_started"
	// EventFileHashed is emitted when a job finishes hashing a file
	EventFileHashed EventType = "file_hashed"
	// EventFileFailed is emitted when a file cannot be read or hashed
	EventFileFailed EventType = "file_failed"
	// EventJobPanicked is emitted when a job panics inside a worker
	EventJobPanicked EventType = "job_panicked"
	// EventScanCompleted is emitted after the pool has drained and results are aggregated
	EventScanCompleted EventType = "scan_completed"
)

// Event represents a scan event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ScanID    string    `json:"scan_id"`
	Data      EventData `json:"data,omitempty"`
}

// EventData contains event-specific data
type EventData struct {
	Root       string `json:"root,omitempty"`
	Path       string `json:"path,omitempty"`
	Digest     string `json:"digest,omitempty"`
	Size       int64  `json:"size,omitempty"`
	WorkerID   int    `json:"worker_id,omitempty"`
	Files      int    `json:"files,omitempty"`
	Duplicates int    `json:"duplicates,omitempty"`
	Error      string `json:"error,omitempty"`
}

func newEvent(t EventType, scanID string, data EventData) Event {
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		ScanID:    scanID,
		Data:      data,
	}
}

// NewScanStartedEvent creates a scan started event
func NewScanStartedEvent(scanID, root string) Event {
	return newEvent(EventScanStarted, scanID, EventData{Root: root})
}

// NewFileHashedEvent creates a file hashed event
func NewFileHashedEvent(scanID, path, digest string, size int64) Event {
	return newEvent(EventFileHashed, scanID, EventData{Path: path, Digest: digest, Size: size})
}

// NewFileFailedEvent creates a file failed event
func NewFileFailedEvent(scanID, path string, err error) Event {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return newEvent(EventFileFailed, scanID, EventData{Path: path, Error: errMsg})
}

// NewJobPanickedEvent creates a job panicked event
func NewJobPanickedEvent(scanID string, workerID int, recovered any) Event {
	return newEvent(EventJobPanicked, scanID, EventData{WorkerID: workerID, Error: formatRecovered(recovered)})
}

// NewScanCompletedEvent creates a scan completed event
func NewScanCompletedEvent(scanID string, files, duplicates int) Event {
	return newEvent(EventScanCompleted, scanID, EventData{Files: files, Duplicates: duplicates})
}

func formatRecovered(r any) string {
	switch v := r.(type) {
	case nil:
		return ""
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}
