package jobs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the state of a job as reported by the spreadsheet
type Status string

const (
	StatusOpen  Status = "OPEN"
	StatusPause Status = "PAUSE"
	StatusClose Status = "CLOSE"
)

// IsOpen reports whether a job with this status belongs in the open-jobs list.
// Pause sub-types count as open.
func (s Status) IsOpen() bool {
	return s != StatusClose && s != ""
}

// IsPaused reports whether the status is PAUSE or one of its sub-types
func (s Status) IsPaused() bool {
	return s == StatusPause || strings.HasPrefix(string(s), string(StatusPause)+"_")
}

// Ident is a process or step identifier. The spreadsheet hands these back as
// numbers or strings depending on the column, so both decode to the same text.
type Ident string

func (i *Ident) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = Ident(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*i = Ident(n.String())
	return nil
}

// Job is one unit of production work in the open-jobs list
type Job struct {
	ProcessName  string  `json:"processName"`
	ProcessNo    Ident   `json:"processNo"`
	StepNo       Ident   `json:"stepNo"`
	MachineNo    *string `json:"machineNo"`
	Status       Status  `json:"status"`
	EmployeeCode string  `json:"employeeCode,omitempty"`

	// Copied from the scan context when the job is added locally
	ProjectNo string `json:"projectNo,omitempty"`
	PartName  string `json:"partName,omitempty"`
}

// Key returns the identifying tuple of the job
func (j Job) Key() JobKey {
	return JobKey{
		ProcessName: j.ProcessName,
		ProcessNo:   j.ProcessNo,
		StepNo:      j.StepNo,
		MachineNo:   j.MachineNo,
	}
}

// JobKey uniquely identifies a job in the open-jobs cache
type JobKey struct {
	ProcessName string  `json:"processName"`
	ProcessNo   Ident   `json:"processNo"`
	StepNo      Ident   `json:"stepNo"`
	MachineNo   *string `json:"machineNo"`
}

// Equal compares all four fields by value. A nil machine number only equals
// another nil; it is never the same as an empty string.
func (k JobKey) Equal(other JobKey) bool {
	if k.ProcessName != other.ProcessName || k.ProcessNo != other.ProcessNo || k.StepNo != other.StepNo {
		return false
	}
	if k.MachineNo == nil || other.MachineNo == nil {
		return k.MachineNo == nil && other.MachineNo == nil
	}
	return *k.MachineNo == *other.MachineNo
}

func (k JobKey) String() string {
	machine := "<nil>"
	if k.MachineNo != nil {
		machine = fmt.Sprintf("%q", *k.MachineNo)
	}
	return fmt.Sprintf("%s/%s/%s/%s", k.ProcessName, k.ProcessNo, k.StepNo, machine)
}

// Machine returns a pointer to a machine number, for building keys in code
func Machine(no string) *string {
	return &no
}
