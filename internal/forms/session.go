package forms

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jetsetgo/shopfloor-kiosk/internal/config"
	"github.com/jetsetgo/shopfloor-kiosk/internal/jobs"
)

// Screen names the kiosk screen the operator should see next
type Screen string

const (
	ScreenLoading  Screen = "loading-screen"
	ScreenInfo     Screen = "info-screen"
	ScreenConfirm  Screen = "confirm-screen"
	ScreenStopForm Screen = "stop-form"
)

// Outcome tells the page what to show after an action
type Outcome struct {
	Screen    Screen `json:"screen,omitempty"`
	Alert     string `json:"alert,omitempty"`
	Busy      bool   `json:"busy,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	// Response is the endpoint's text answer on success
	Response string `json:"response,omitempty"`
}

// Submitter sends a payload to the spreadsheet endpoint
type Submitter interface {
	Submit(ctx context.Context, payload map[string]any) (string, error)
}

// Refresher schedules an authoritative reload of the open-jobs list
type Refresher interface {
	Trigger()
}

// ScanContext is the decoded QR code of the work order being handled
type ScanContext map[string]any

// Field returns a scan field as text, or "" when absent
func (s ScanContext) Field(name string) string {
	v, ok := s[name]
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

func (s ScanContext) ambient() jobs.Ambient {
	return jobs.Ambient{
		ProjectNo: s.Field("projectNo"),
		PartName:  s.Field("partName"),
	}
}

// Submission is reported to the observer after every remote call
type Submission struct {
	Action  string
	Key     jobs.JobKey
	Outcome Outcome
	Err     error
}

// Session is the single kiosk session: the scanned work order, the job picked
// for stopping and the guard against double submission.
type Session struct {
	store     *jobs.Store
	submitter Submitter
	kiosk     config.KioskConfig

	mu          sync.Mutex
	scan        ScanContext
	stopJob     *jobs.Job
	refresher   Refresher
	submitting  atomic.Bool
	onSubmitted func(Submission)
}

// NewSession creates a session around the shared open-jobs store
func NewSession(store *jobs.Store, submitter Submitter, kiosk config.KioskConfig) *Session {
	return &Session{
		store:     store,
		submitter: submitter,
		kiosk:     kiosk,
	}
}

// SetRefresher sets the authoritative refresh triggered after scans and
// actions whose effect the kiosk cannot predict
func (s *Session) SetRefresher(r Refresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresher = r
}

// OnSubmitted registers a callback invoked after every remote call
func (s *Session) OnSubmitted(fn func(Submission)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSubmitted = fn
}

// Store returns the open-jobs store
func (s *Session) Store() *jobs.Store {
	return s.store
}

// Scan replaces the active work order and reloads its open jobs
func (s *Session) Scan(qr map[string]any) {
	scan := make(ScanContext, len(qr))
	for k, v := range qr {
		scan[k] = v
	}

	s.mu.Lock()
	s.scan = scan
	s.stopJob = nil
	s.mu.Unlock()
	s.store.Advance()

	s.triggerRefresh()
}

// ScanContext returns a copy of the active scan, or nil before the first scan
func (s *Session) ScanContext() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scan == nil {
		return nil
	}
	out := make(map[string]any, len(s.scan))
	for k, v := range s.scan {
		out[k] = v
	}
	return out
}

// Reset forgets the scan and the cached jobs, as a full page reload does. A
// submission still in flight keeps the guard until it returns.
func (s *Session) Reset() {
	s.mu.Lock()
	s.scan = nil
	s.stopJob = nil
	s.mu.Unlock()
	s.store.Reset()
}

// PauseReasons lists the reasons offered in the pause dialog
func (s *Session) PauseReasons() []config.PauseReason {
	reasons := make([]config.PauseReason, 0, len(s.kiosk.PauseReasons)+1)
	reasons = append(reasons, s.kiosk.PauseReasons...)
	return append(reasons, config.PauseReason{Label: s.kiosk.OtherReasonLabel, Type: string(jobs.StatusPause)})
}

// SelectedStopJob returns the job picked for stopping, if any
func (s *Session) SelectedStopJob() (jobs.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopJob == nil {
		return jobs.Job{}, false
	}
	return *s.stopJob, true
}

func (s *Session) scanSnapshot() ScanContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scan
}

// payload starts a request body from the scan fields
func (s *Session) payload() map[string]any {
	scan := s.scanSnapshot()
	out := make(map[string]any, len(scan)+8)
	for k, v := range scan {
		out[k] = v
	}
	return out
}

func (s *Session) acquire() bool {
	return s.submitting.CompareAndSwap(false, true)
}

func (s *Session) release() {
	s.submitting.Store(false)
}

func (s *Session) triggerRefresh() {
	s.mu.Lock()
	r := s.refresher
	s.mu.Unlock()
	if r != nil {
		r.Trigger()
	}
}

func (s *Session) notify(sub Submission) {
	s.mu.Lock()
	fn := s.onSubmitted
	s.mu.Unlock()
	if fn != nil {
		fn(sub)
	}
}

func isMachineSetting(processName string) bool {
	return strings.ToLower(strings.TrimSpace(processName)) == "machine setting"
}

func keyFields(payload map[string]any, key jobs.JobKey) {
	payload["processName"] = key.ProcessName
	payload["processNo"] = string(key.ProcessNo)
	payload["stepNo"] = string(key.StepNo)
	payload["machineNo"] = key.MachineNo
}
