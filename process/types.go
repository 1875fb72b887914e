package process

import (
	"sync"
	"time"
)

// Key identifies a process across pid reuse. The kernel bumps the pid
// version on every exec, so a (pid, version) pair never aliases.
type Key struct {
	PID     uint32
	Version uint32
}

// ProcessInfo holds what the recorder knows about a live process.
type ProcessInfo struct {
	Mu sync.RWMutex // Protects all fields

	// Identity
	PID        uint32
	PIDVersion uint32
	PPID       uint32
	Comm       string
	CmdLine    string
	ExePath    string
	WorkingDir string
	UID        uint32
	GID        uint32
	Username   string

	// Code signing
	SigningID      string
	TeamID         string
	CDHash         string // hex
	PlatformBinary bool
	ESClient       bool

	// Environment at exec time
	Environment []string
	TTYPath     string
	ParentComm  string

	// Timing
	StartTime time.Time
	ExitTime  time.Time
	ExitCode  uint32
}

// ProcessTracker defines the interface for process tracking.
type ProcessTracker interface {
	Add(key Key, info *ProcessInfo)
	Get(key Key) (*ProcessInfo, bool)
	Remove(key Key)
	List() []*ProcessInfo
}
