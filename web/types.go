package web

import (
	"database/sql"
	"time"
)

// ExecRow represents an exec event for the web API
type ExecRow struct {
	ID             int64        `json:"id"`
	Timestamp      time.Time    `json:"timestamp"`
	PID            uint32       `json:"pid"`
	PPID           uint32       `json:"ppid"`
	Comm           string       `json:"comm"`
	CmdLine        string       `json:"cmdline"`
	ExePath        string       `json:"exePath"`
	WorkingDir     string       `json:"workingDir"`
	Username       string       `json:"username"`
	SigningID      string       `json:"signingId"`
	TeamID         string       `json:"teamId"`
	CDHash         string       `json:"cdhash"`
	PlatformBinary bool          `json:"platformBinary"`
	BinaryHash     string        `json:"binaryHash"`
	ExitCode       sql.NullInt64 `json:"exitCode"`
	ExitTime       sql.NullTime  `json:"exitTime"`
}

// EndpointRow represents a unix-socket event for the web API
type EndpointRow struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	PID         uint32    `json:"pid"`
	ProcessName string    `json:"processName"`
	SigningID   string    `json:"signingId"`
	Operation   string    `json:"operation"`
	SocketPath  string    `json:"socketPath"`
	SockType    int32     `json:"sockType"`
	Protocol    int32     `json:"protocol"`
	Mode        uint32    `json:"mode"`
}

// SessionRow represents an authentication event for the web API
type SessionRow struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	PID       uint32    `json:"pid"`
	Kind      string    `json:"kind"`
	Username  string    `json:"username"`
	Success   bool      `json:"success"`
	Details   string    `json:"details"`
}

