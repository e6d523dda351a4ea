package api

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jetsetgo/shopfloor-kiosk/internal/endpoint"
	"github.com/jetsetgo/shopfloor-kiosk/internal/forms"
	"github.com/jetsetgo/shopfloor-kiosk/internal/jobs"
)

// SubmissionRecord is one action sent to the spreadsheet
type SubmissionRecord struct {
	ID          string      `json:"id"`
	Action      string      `json:"action"`
	Key         jobs.JobKey `json:"key"`
	Status      string      `json:"status"` // ok, rejected, failed
	Screen      string      `json:"screen"`
	Message     string      `json:"message,omitempty"`
	SubmittedAt time.Time   `json:"submitted_at"`
}

// SubmissionBuffer is a thread-safe ring buffer of recent submissions
type SubmissionBuffer struct {
	mu      sync.RWMutex
	entries []SubmissionRecord
	cap     int
}

// NewSubmissionBuffer creates a new submission buffer with the given capacity
func NewSubmissionBuffer(capacity int) *SubmissionBuffer {
	if capacity <= 0 {
		capacity = 50
	}
	return &SubmissionBuffer{
		entries: make([]SubmissionRecord, 0, capacity),
		cap:     capacity,
	}
}

// Record stores a finished submission. It matches forms.Session.OnSubmitted.
func (sb *SubmissionBuffer) Record(sub forms.Submission) SubmissionRecord {
	rec := SubmissionRecord{
		ID:          uuid.NewString(),
		Action:      sub.Action,
		Key:         sub.Key,
		Status:      "ok",
		Screen:      string(sub.Outcome.Screen),
		Message:     sub.Outcome.Alert,
		SubmittedAt: time.Now(),
	}
	var remote *endpoint.RemoteError
	switch {
	case errors.As(sub.Err, &remote):
		rec.Status = "rejected"
	case sub.Err != nil:
		rec.Status = "failed"
		rec.Message = sub.Err.Error()
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	if len(sb.entries) >= sb.cap {
		copy(sb.entries, sb.entries[1:])
		sb.entries[len(sb.entries)-1] = rec
	} else {
		sb.entries = append(sb.entries, rec)
	}
	return rec
}

// Entries returns all records (newest first)
func (sb *SubmissionBuffer) Entries() []SubmissionRecord {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	result := make([]SubmissionRecord, len(sb.entries))
	for i, j := 0, len(sb.entries)-1; j >= 0; i, j = i+1, j-1 {
		result[i] = sb.entries[j]
	}
	return result
}
