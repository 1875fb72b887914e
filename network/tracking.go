package network

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"es-recorder/esmsg"
)

// EndpointMap is a thread-safe index of socket activity, by path and by
// pid. Bounded by dropping the oldest observations per path.
type EndpointMap struct {
	mu      sync.RWMutex
	byPath  map[string][]*EndpointInfo
	byPID   map[uint32][]*EndpointInfo
	perPath int
}

// NewEndpointMap creates an endpoint map keeping at most perPath
// observations for any one socket path.
func NewEndpointMap(perPath int) *EndpointMap {
	if perPath <= 0 {
		perPath = 64
	}
	return &EndpointMap{
		byPath:  make(map[string][]*EndpointInfo),
		byPID:   make(map[uint32][]*EndpointInfo),
		perPath: perPath,
	}
}

// Add records one socket operation.
func (em *EndpointMap) Add(info *EndpointInfo) {
	em.mu.Lock()
	defer em.mu.Unlock()

	list := append(em.byPath[info.Path], info)
	if len(list) > em.perPath {
		list = list[len(list)-em.perPath:]
	}
	em.byPath[info.Path] = list
	em.byPID[info.PID] = append(em.byPID[info.PID], info)
}

// ByPath returns the observations for one socket path, oldest first.
func (em *EndpointMap) ByPath(path string) []*EndpointInfo {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return append([]*EndpointInfo{}, em.byPath[path]...)
}

// ByPID returns the observations made by one process.
func (em *EndpointMap) ByPID(pid uint32) []*EndpointInfo {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return append([]*EndpointInfo{}, em.byPID[pid]...)
}

// Listeners returns the most recent bind observation per socket path.
func (em *EndpointMap) Listeners() []*EndpointInfo {
	em.mu.RLock()
	defer em.mu.RUnlock()
	var out []*EndpointInfo
	for _, list := range em.byPath {
		for i := len(list) - 1; i >= 0; i-- {
			if list[i].Operation == OpBind {
				out = append(out, list[i])
				break
			}
		}
	}
	return out
}

// Forget drops a process's observations, on exit.
func (em *EndpointMap) Forget(pid uint32) {
	em.mu.Lock()
	defer em.mu.Unlock()
	delete(em.byPID, pid)
}

// CreateBindInfo builds an observation from a socket bind event. The
// socket path joins the bind directory and the socket filename.
func CreateBindInfo(rec *esmsg.Record, ev esmsg.UipcBind) *EndpointInfo {
	proc := rec.Process()
	return &EndpointInfo{
		PID:         proc.PID(),
		ProcessName: filepath.Base(proc.Executable().Path()),
		SigningID:   proc.SigningID(),
		Path:        filepath.Join(ev.Dir().Path(), ev.Filename()),
		Operation:   OpBind,
		Mode:        ev.Mode(),
		Timestamp:   rec.Time(),
	}
}

// CreateConnectInfo builds an observation from a socket connect event.
func CreateConnectInfo(rec *esmsg.Record, ev esmsg.UipcConnect) *EndpointInfo {
	proc := rec.Process()
	return &EndpointInfo{
		PID:         proc.PID(),
		ProcessName: filepath.Base(proc.Executable().Path()),
		SigningID:   proc.SigningID(),
		Path:        ev.File().Path(),
		Operation:   OpConnect,
		Domain:      ev.Domain(),
		SockType:    ev.Type(),
		Protocol:    ev.Protocol(),
		Timestamp:   rec.Time(),
	}
}

// FormatEndpointEvent formats a socket observation for logging.
func FormatEndpointEvent(info *EndpointInfo) string {
	basic := fmt.Sprintf("UIPC_%s: pid=%d comm=%s path=%s",
		opLabel(info.Operation), info.PID, info.ProcessName, info.Path)
	if info.Operation == OpBind {
		return fmt.Sprintf("%s mode=%04o", basic, info.Mode)
	}
	return fmt.Sprintf("%s type=%d protocol=%d", basic, info.SockType, info.Protocol)
}

func opLabel(op string) string {
	switch op {
	case OpBind:
		return "BIND"
	case OpConnect:
		return "CONNECT"
	default:
		return "UNKNOWN"
	}
}

// Age reports how long ago an observation happened.
func (info *EndpointInfo) Age(now time.Time) time.Duration {
	return now.Sub(info.Timestamp)
}
