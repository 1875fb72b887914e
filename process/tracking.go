package process

import (
	"encoding/hex"
	"fmt"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"es-recorder/esmsg"
)

// ProcessMap tracks live processes keyed by (pid, pid version). LRU-bounded
// so a burst of short-lived processes cannot grow it without limit; evicted
// entries only lose exit correlation, never recorded history.
type ProcessMap struct {
	cache *lru.Cache
	mu    sync.Mutex // serializes compound cache operations
}

// DefaultMapSize fits the typical count of concurrently live processes on a
// busy workstation with headroom.
const DefaultMapSize = 8192

// NewProcessMap creates a size-constrained process map.
func NewProcessMap(size int) (*ProcessMap, error) {
	if size <= 0 {
		size = DefaultMapSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &ProcessMap{cache: cache}, nil
}

// Add adds or updates a process in the map.
func (pm *ProcessMap) Add(key Key, info *ProcessInfo) {
	pm.cache.Add(key, info)
}

// Get retrieves process info from the map.
func (pm *ProcessMap) Get(key Key) (*ProcessInfo, bool) {
	v, ok := pm.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*ProcessInfo), true
}

// GetByPID retrieves the newest tracked incarnation of a pid. Exit events
// carry only the pid half of the key on old schema versions.
func (pm *ProcessMap) GetByPID(pid uint32) (*ProcessInfo, bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	var best *ProcessInfo
	for _, k := range pm.cache.Keys() {
		key := k.(Key)
		if key.PID != pid {
			continue
		}
		if v, ok := pm.cache.Peek(k); ok {
			info := v.(*ProcessInfo)
			if best == nil || info.PIDVersion > best.PIDVersion {
				best = info
			}
		}
	}
	return best, best != nil
}

// Remove removes a process from the map.
func (pm *ProcessMap) Remove(key Key) {
	pm.cache.Remove(key)
}

// List returns all tracked processes.
func (pm *ProcessMap) List() []*ProcessInfo {
	keys := pm.cache.Keys()
	out := make([]*ProcessInfo, 0, len(keys))
	for _, k := range keys {
		if v, ok := pm.cache.Peek(k); ok {
			out = append(out, v.(*ProcessInfo))
		}
	}
	return out
}

// Len reports how many processes are tracked.
func (pm *ProcessMap) Len() int { return pm.cache.Len() }

// Simple cache for username lookups
var (
	usernameCacheMutex sync.RWMutex
	usernameCache      = make(map[uint32]string)
)

func GetUsernameFromUID(uid uint32) string {
	usernameCacheMutex.RLock()
	if username, ok := usernameCache[uid]; ok {
		usernameCacheMutex.RUnlock()
		return username
	}
	usernameCacheMutex.RUnlock()

	if u, err := user.LookupId(fmt.Sprintf("%d", uid)); err == nil {
		usernameCacheMutex.Lock()
		usernameCache[uid] = u.Username
		usernameCacheMutex.Unlock()
		return u.Username
	}
	return ""
}

// KeyFor extracts the tracking key from a decoded process view.
func KeyFor(p esmsg.Process) Key {
	tok := p.AuditToken()
	return Key{PID: tok.PID(), Version: tok.PIDVersion()}
}

// FromProcess builds tracking info from any decoded process view.
func FromProcess(p esmsg.Process) *ProcessInfo {
	tok := p.AuditToken()
	cd := p.CDHash()
	info := &ProcessInfo{
		PID:            tok.PID(),
		PIDVersion:     tok.PIDVersion(),
		PPID:           uint32(p.PPID()),
		ExePath:        p.Executable().Path(),
		UID:            tok.EUID(),
		GID:            tok.EGID(),
		SigningID:      p.SigningID(),
		TeamID:         p.TeamID(),
		CDHash:         hex.EncodeToString(cd[:]),
		PlatformBinary: p.IsPlatformBinary(),
		ESClient:       p.IsESClient(),
	}
	if info.ExePath != "" {
		info.Comm = filepath.Base(info.ExePath)
	}
	info.Username = GetUsernameFromUID(info.UID)
	if tty, ok := p.TTY(); ok {
		info.TTYPath = tty.Path()
	}
	if start, ok := p.StartTime(); ok {
		info.StartTime = start
	}
	return info
}

// FromExec builds tracking info for the image an exec event installs,
// folding in arguments, environment, and working directory.
func FromExec(ev esmsg.Exec) *ProcessInfo {
	info := FromProcess(ev.Target())
	args := ev.Args()
	if argv := args.Collect(); len(argv) > 0 {
		info.CmdLine = strings.Join(argv, " ")
	}
	envs := ev.Envs()
	info.Environment = envs.Collect()
	if cwd, ok := ev.Cwd(); ok {
		info.WorkingDir = cwd.Path()
	}
	if info.StartTime.IsZero() {
		info.StartTime = time.Now()
	}
	return info
}

// FormatProcessEvent formats a process event for logging.
func FormatProcessEvent(info *ProcessInfo, class string) string {
	basic := fmt.Sprintf("%s: pid=%d comm=%s", strings.ToUpper(class), info.PID, info.Comm)

	switch class {
	case "exec":
		details := fmt.Sprintf("ppid=%d uid=%d", info.PPID, info.UID)
		if info.Username != "" {
			details += fmt.Sprintf(" user=%s", info.Username)
		}
		if info.ExePath != "" {
			details += fmt.Sprintf(" path=%s", info.ExePath)
		}
		if info.CmdLine != "" {
			details += fmt.Sprintf(" cmdline=%s", info.CmdLine)
		}
		if info.SigningID != "" {
			details += fmt.Sprintf(" signing_id=%s", info.SigningID)
		}
		if info.TeamID != "" {
			details += fmt.Sprintf(" team_id=%s", info.TeamID)
		}
		return fmt.Sprintf("%s %s", basic, details)
	case "exit":
		duration := "unknown"
		if !info.StartTime.IsZero() && !info.ExitTime.IsZero() {
			duration = info.ExitTime.Sub(info.StartTime).String()
		}
		return fmt.Sprintf("%s exit_code=%d runtime=%s", basic, info.ExitCode, duration)
	}

	return basic
}
