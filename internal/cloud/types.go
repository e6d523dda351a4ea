package cloud

import "time"

// ConnectionStatus represents the spreadsheet connection status
type ConnectionStatus struct {
	Connected   bool      `json:"connected"`
	LastError   string    `json:"last_error,omitempty"`
	LastSeen    time.Time `json:"last_seen"`
	OpenJobs    int       `json:"open_jobs"`
	Refreshes   int       `json:"refreshes"`
	NextRefresh time.Time `json:"next_refresh,omitempty"`
}
