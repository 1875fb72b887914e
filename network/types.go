// Package network tracks unix-domain socket activity observed through
// uipc bind and connect events: which processes expose which socket
// paths, and who connects to them.
package network

import (
	"time"
)

// Socket operations.
const (
	OpBind    = "bind"
	OpConnect = "connect"
)

// EndpointInfo holds one observed socket operation.
type EndpointInfo struct {
	PID         uint32
	ProcessName string
	SigningID   string

	Path      string
	Operation string // OpBind or OpConnect
	Domain    int32
	SockType  int32
	Protocol  int32
	Mode      uint32 // socket file mode, bind only
	Timestamp time.Time
}

// EndpointTracker defines the interface for socket endpoint tracking.
type EndpointTracker interface {
	Add(info *EndpointInfo)
	ByPath(path string) []*EndpointInfo
	ByPID(pid uint32) []*EndpointInfo
	Listeners() []*EndpointInfo
}
