package forms

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/jetsetgo/shopfloor-kiosk/internal/endpoint"
	"github.com/jetsetgo/shopfloor-kiosk/internal/jobs"
)

// StartForm is the start-job form
type StartForm struct {
	ProcessName  string     `json:"processName"`
	ProcessNo    jobs.Ident `json:"processNo"`
	StepNo       jobs.Ident `json:"stepNo"`
	MachineNo    *string    `json:"machineNo"`
	EmployeeCode string     `json:"employeeCode"`
}

// StopForm is the stop-job form. Quantities are ignored for Machine Setting.
type StopForm struct {
	EmployeeCode string `json:"employeeCode"`
	FG           string `json:"fg"`
	NG           string `json:"ng"`
	Rework       string `json:"rework"`
}

// PauseForm is the pause-reason dialog
type PauseForm struct {
	Key         jobs.JobKey `json:"key"`
	Reason      string      `json:"reason"`
	OtherReason string      `json:"otherReason"`
}

// DailyReportForm is the daily report dialog. The job fields are the ones
// displayed in the dialog header.
type DailyReportForm struct {
	Date            string `json:"date"`
	ProjectNo       string `json:"projectNo"`
	CustomerName    string `json:"customerName"`
	PartName        string `json:"partName"`
	DrawingNo       string `json:"drawingNo"`
	QuantityOrdered string `json:"quantityOrdered"`
	ProcessName     string `json:"processName"`
	ProcessNo       string `json:"processNo"`
	StepNo          string `json:"stepNo"`
	MachineNo       string `json:"machineNo"`
	EmployeeCode    string `json:"employeeCode"`
	FG              string `json:"fg"`
	NG              string `json:"ng"`
	Rework          string `json:"rework"`
	Remark          string `json:"remark"`
}

// QCReportForm is the QC report dialog
type QCReportForm struct {
	EmployeeCode string `json:"employeeCode"`
	FG           string `json:"fg"`
	NG           string `json:"ng"`
	Rework       string `json:"rework"`
	Remark       string `json:"remark"`
}

// StopSelection is returned when a job is picked for stopping
type StopSelection struct {
	Outcome
	Job jobs.Job `json:"job"`
	// QuantitiesRequired is false for Machine Setting jobs
	QuantitiesRequired bool `json:"quantitiesRequired"`
}

var busy = Outcome{Busy: true}

// Start opens a new job. The job is added to the open-jobs list once the
// spreadsheet accepts it.
func (s *Session) Start(ctx context.Context, form StartForm) Outcome {
	if !s.acquire() {
		return busy
	}
	defer s.release()

	job := jobs.Job{
		ProcessName:  form.ProcessName,
		ProcessNo:    form.ProcessNo,
		StepNo:       form.StepNo,
		MachineNo:    form.MachineNo,
		Status:       jobs.StatusOpen,
		EmployeeCode: form.EmployeeCode,
	}
	key := job.Key()

	if existing, ok := s.store.Find(key); ok && existing.Status.IsOpen() {
		return Outcome{Alert: duplicateAlert(key), Duplicate: true}
	}

	payload := s.payload()
	keyFields(payload, key)
	payload["employeeCode"] = form.EmployeeCode
	payload["status"] = string(jobs.StatusOpen)

	text, err := s.submitter.Submit(ctx, payload)
	var out Outcome
	var remote *endpoint.RemoteError
	switch {
	case errors.As(err, &remote) && remote.Duplicate():
		out = Outcome{Screen: ScreenInfo, Alert: duplicateAlert(key), Duplicate: true}
	case err != nil:
		out = failure(err)
	default:
		s.store.Apply(jobs.AddIntent(jobs.Job{
			ProcessName: job.ProcessName,
			ProcessNo:   job.ProcessNo,
			StepNo:      job.StepNo,
			MachineNo:   job.MachineNo,
			Status:      jobs.StatusOpen,
		}), s.scanSnapshot().ambient())
		out = Outcome{Screen: ScreenConfirm, Response: text}
	}

	s.notify(Submission{Action: "START", Key: key, Outcome: out, Err: err})
	return out
}

// SelectStop picks an open job for the stop form
func (s *Session) SelectStop(key jobs.JobKey) StopSelection {
	job, ok := s.store.Find(key)
	if !ok {
		return StopSelection{Outcome: Outcome{Alert: msgNoSelectedJob}}
	}

	s.mu.Lock()
	s.stopJob = &job
	s.mu.Unlock()

	return StopSelection{
		Outcome:            Outcome{Screen: ScreenStopForm},
		Job:                job,
		QuantitiesRequired: !isMachineSetting(job.ProcessName),
	}
}

// Stop closes the selected job and drops it from the open-jobs list
func (s *Session) Stop(ctx context.Context, form StopForm) Outcome {
	if !s.acquire() {
		return busy
	}
	defer s.release()

	job, ok := s.SelectedStopJob()
	if !ok {
		return Outcome{Screen: ScreenInfo, Alert: msgNoSelectedJob}
	}

	payload := s.payload()
	keyFields(payload, job.Key())
	payload["employeeCode"] = form.EmployeeCode
	if isMachineSetting(job.ProcessName) {
		payload["fg"] = 0
		payload["ng"] = 0
		payload["rework"] = 0
	} else {
		if strings.TrimSpace(form.FG) == "" || strings.TrimSpace(form.NG) == "" || strings.TrimSpace(form.Rework) == "" {
			return Outcome{Alert: msgQuantitiesRequired}
		}
		payload["fg"] = form.FG
		payload["ng"] = form.NG
		payload["rework"] = form.Rework
	}
	payload["status"] = string(jobs.StatusClose)

	s.store.Apply(jobs.RemoveIntent(job.Key()), s.scanSnapshot().ambient())

	text, err := s.submitter.Submit(ctx, payload)
	var out Outcome
	if err != nil {
		out = failure(err)
	} else {
		s.mu.Lock()
		s.stopJob = nil
		s.mu.Unlock()
		out = Outcome{Screen: ScreenConfirm, Response: text}
	}

	s.notify(Submission{Action: "STOP", Key: job.Key(), Outcome: out, Err: err})
	return out
}

// Pause records a pause with its reason. The job's status changes in the
// open-jobs list before the spreadsheet answers.
func (s *Session) Pause(ctx context.Context, form PauseForm) Outcome {
	job, ok := s.store.Find(form.Key)
	if !ok {
		return Outcome{Screen: ScreenInfo, Alert: msgNoSelectedJob}
	}

	reason := strings.TrimSpace(form.Reason)
	if reason == "" {
		return Outcome{Alert: msgPauseReasonRequired}
	}

	finalReason := reason
	pauseType := s.kiosk.PauseType(reason)
	if reason == s.kiosk.OtherReasonLabel {
		other := strings.TrimSpace(form.OtherReason)
		if other == "" {
			return Outcome{Alert: msgOtherReasonRequired}
		}
		finalReason = "Other: " + other
		pauseType = string(jobs.StatusPause)
	}

	key := job.Key()
	s.store.Apply(jobs.UpdateIntent(key, jobs.Status(pauseType)), s.scanSnapshot().ambient())

	payload := s.payload()
	keyFields(payload, key)
	payload["status"] = string(jobs.StatusPause)
	payload["pauseType"] = pauseType
	payload["pauseReason"] = finalReason

	text, err := s.submitter.Submit(ctx, payload)
	out := Outcome{Screen: ScreenConfirm, Response: text}
	if err != nil {
		out = failure(err)
	}

	s.notify(Submission{Action: "PAUSE", Key: key, Outcome: out, Err: err})
	return out
}

// Continue resumes a paused job
func (s *Session) Continue(ctx context.Context, key jobs.JobKey) Outcome {
	job, ok := s.store.Find(key)
	if !ok {
		return Outcome{Screen: ScreenInfo, Alert: msgNoSelectedJob}
	}
	key = job.Key()

	s.store.Apply(jobs.UpdateIntent(key, jobs.StatusOpen), s.scanSnapshot().ambient())

	payload := s.payload()
	keyFields(payload, key)
	payload["status"] = string(jobs.StatusOpen)
	payload["action"] = "CONTINUE"

	return s.oneShot(ctx, "CONTINUE", key, payload, msgContinued)
}

// StartOT starts overtime on an open job
func (s *Session) StartOT(ctx context.Context, key jobs.JobKey) Outcome {
	return s.overtime(ctx, key, "START_OT", msgOTStarted)
}

// StopOT ends overtime on an open job
func (s *Session) StopOT(ctx context.Context, key jobs.JobKey) Outcome {
	return s.overtime(ctx, key, "STOP_OT", msgOTStopped)
}

func (s *Session) overtime(ctx context.Context, key jobs.JobKey, action, done string) Outcome {
	job, ok := s.store.Find(key)
	if !ok {
		return Outcome{Screen: ScreenInfo, Alert: msgNoSelectedJob}
	}

	payload := s.payload()
	keyFields(payload, job.Key())
	payload["action"] = action

	return s.oneShot(ctx, action, job.Key(), payload, done)
}

// oneShot submits an action whose result only shows up in the open-jobs list
// after a reload, so a refresh follows whatever the answer was
func (s *Session) oneShot(ctx context.Context, action string, key jobs.JobKey, payload map[string]any, done string) Outcome {
	text, err := s.submitter.Submit(ctx, payload)
	s.triggerRefresh()

	out := Outcome{Screen: ScreenInfo, Alert: done, Response: text}
	if err != nil {
		out = failure(err)
	}

	s.notify(Submission{Action: action, Key: key, Outcome: out, Err: err})
	return out
}

// DailyReport records the day's quantities for a job
func (s *Session) DailyReport(ctx context.Context, form DailyReportForm) Outcome {
	if !s.acquire() {
		return busy
	}
	defer s.release()

	employee := strings.ToUpper(strings.TrimSpace(form.EmployeeCode))
	fg, ng, rework := parseCount(form.FG), parseCount(form.NG), parseCount(form.Rework)

	if employee == "" {
		return Outcome{Alert: msgEmployeeRequired}
	}
	if fg == 0 && ng == 0 && rework == 0 {
		return Outcome{Alert: msgQuantityRequired}
	}

	payload := map[string]any{
		"date":            form.Date,
		"projectNo":       form.ProjectNo,
		"customerName":    form.CustomerName,
		"partName":        form.PartName,
		"drawingNo":       form.DrawingNo,
		"quantityOrdered": form.QuantityOrdered,
		"processName":     form.ProcessName,
		"processNo":       form.ProcessNo,
		"stepNo":          form.StepNo,
		"machineNo":       form.MachineNo,
		"employeeCode":    employee,
		"fg":              fg,
		"ng":              ng,
		"rework":          rework,
		"remark":          strings.TrimSpace(form.Remark),
		"action":          "DAILY_REPORT",
	}

	key := jobs.JobKey{
		ProcessName: form.ProcessName,
		ProcessNo:   jobs.Ident(form.ProcessNo),
		StepNo:      jobs.Ident(form.StepNo),
		MachineNo:   jobs.Machine(form.MachineNo),
	}
	return s.report(ctx, "DAILY_REPORT", key, payload, msgDailyReportSaved)
}

// QCReport records a QC inspection against the scanned work order
func (s *Session) QCReport(ctx context.Context, form QCReportForm) Outcome {
	if s.scanSnapshot() == nil {
		return Outcome{Alert: msgScanFirst}
	}
	if !s.acquire() {
		return busy
	}
	defer s.release()

	payload := map[string]any{"action": "QC_REPORT"}
	for k, v := range s.scanSnapshot() {
		payload[k] = v
	}
	payload["employeeCode"] = form.EmployeeCode
	payload["fg"] = parseCount(form.FG)
	payload["ng"] = parseCount(form.NG)
	payload["rework"] = parseCount(form.Rework)
	payload["remark"] = form.Remark
	payload["processName"] = "QC"
	payload["processNo"] = 1
	payload["stepNo"] = "1"
	payload["machineNo"] = "QC01"

	key := jobs.JobKey{ProcessName: "QC", ProcessNo: "1", StepNo: "1", MachineNo: jobs.Machine("QC01")}
	return s.report(ctx, "QC_REPORT", key, payload, msgQCReportSaved)
}

func (s *Session) report(ctx context.Context, action string, key jobs.JobKey, payload map[string]any, done string) Outcome {
	text, err := s.submitter.Submit(ctx, payload)
	out := Outcome{Screen: ScreenInfo, Alert: done, Response: text}
	if err != nil {
		out = failure(err)
	}

	s.notify(Submission{Action: action, Key: key, Outcome: out, Err: err})
	return out
}

// failure turns a submit error into the info screen with an alert. The
// optimistic change already applied stays until the next refresh.
func failure(err error) Outcome {
	var remote *endpoint.RemoteError
	if errors.As(err, &remote) {
		return Outcome{Screen: ScreenInfo, Alert: remote.Message}
	}
	log.Printf("Submit failed: %v", err)
	return Outcome{Screen: ScreenInfo, Alert: msgSendFailed + err.Error()}
}
