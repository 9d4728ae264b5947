package ipc

// StartRequest triggers daemon capture and generation startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops capture and generation.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon/workflow status information.
type StatusResponse struct {
	Running       bool   `json:"running"`
	Capturing     bool   `json:"capturing"`
	PassCount     int    `json:"pass_count"`
	LastPassAt    string `json:"last_pass_at"`
	LastPassError string `json:"last_pass_error"`
	DatabasePath  string `json:"database_path"`
	LockPath      string `json:"lock_path"`
	PID           int    `json:"pid"`
}

// TriggerPassRequest runs a generation pass immediately.
type TriggerPassRequest struct{}

// TriggerPassResponse reports the outcome of a manually triggered pass.
type TriggerPassResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
