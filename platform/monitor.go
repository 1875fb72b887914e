package platform

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sync"

	"es-recorder/binary"
	"es-recorder/database"
	"es-recorder/esmsg"
	"es-recorder/network"
	"es-recorder/process"
	"es-recorder/types"
)

// defaultKinds is the subscription set the monitor records.
var defaultKinds = []esmsg.EventType{
	esmsg.NotifyExec,
	esmsg.NotifyFork,
	esmsg.NotifyExit,
	esmsg.NotifyClose,
	esmsg.NotifyCreate,
	esmsg.NotifyRename,
	esmsg.NotifyUnlink,
	esmsg.NotifyWrite,
	esmsg.NotifyUipcBind,
	esmsg.NotifyUipcConnect,
	esmsg.NotifyOpensshLogin,
	esmsg.NotifyOpensshLogout,
	esmsg.NotifyLoginLogin,
	esmsg.NotifyLoginLogout,
	esmsg.NotifyLWSessionLogin,
	esmsg.NotifyLWSessionLogout,
	esmsg.NotifySu,
	esmsg.NotifySudo,
}

// MonitorConfig holds the collaborators a monitor records into.
type MonitorConfig struct {
	DB          *database.DB
	BinaryCache *binary.Cache
	ProcessMap  *process.ProcessMap
	EndpointMap *network.EndpointMap
	Kinds       []esmsg.EventType // nil means defaultKinds
}

// Monitor consumes records from a session and feeds the trackers and
// the database. Auth records are answered allow-all; this is a
// recorder, not an enforcement point.
type Monitor struct {
	conn        *Connection
	db          *database.DB
	binaryCache *binary.Cache
	processes   *process.ProcessMap
	endpoints   *network.EndpointMap
	kinds       []esmsg.EventType

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewMonitor creates a monitor on an established session.
func NewMonitor(conn *Connection, cfg MonitorConfig) *Monitor {
	kinds := cfg.Kinds
	if kinds == nil {
		kinds = defaultKinds
	}
	return &Monitor{
		conn:        conn,
		db:          cfg.DB,
		binaryCache: cfg.BinaryCache,
		processes:   cfg.ProcessMap,
		endpoints:   cfg.EndpointMap,
		kinds:       kinds,
		stopChan:    make(chan struct{}),
	}
}

// Start subscribes and begins consuming records.
func (m *Monitor) Start() error {
	if err := m.conn.Subscribe(m.kinds...); err != nil {
		return fmt.Errorf("failed to subscribe: %v", err)
	}

	log.Printf("Monitoring %d event kinds at schema version %d", len(m.kinds), m.conn.SchemaVersion())

	m.wg.Add(1)
	go m.readLoop()

	return nil
}

// Stop closes the session and waits for the read loop to drain.
func (m *Monitor) Stop() error {
	close(m.stopChan)
	m.conn.Close()
	m.wg.Wait()
	return nil
}

func (m *Monitor) readLoop() {
	defer m.wg.Done()

	for {
		rec, err := m.conn.Next()
		if err != nil {
			select {
			case <-m.stopChan:
				return
			default:
			}
			if err == io.EOF {
				log.Printf("Event stream closed")
				return
			}
			log.Printf("Error reading event: %v", err)
			return
		}

		m.handleRecord(rec)
		rec.Release()
	}
}

func (m *Monitor) handleRecord(rec *esmsg.Record) {
	if resp, ok := rec.ExpectedResponse(); ok {
		m.respond(rec, resp)
	}

	switch ev := rec.Event().(type) {
	case esmsg.Exec:
		m.handleExec(rec, ev)
	case esmsg.Fork:
		m.handleFork(ev)
	case esmsg.Exit:
		m.handleExit(rec, ev)
	case esmsg.Close:
		m.handleFileEvent(rec, "close", ev.Target().Path(), "", ev.Modified())
	case esmsg.Create:
		m.handleCreate(rec, ev)
	case esmsg.Rename:
		m.handleRename(rec, ev)
	case esmsg.Unlink:
		m.handleFileEvent(rec, "unlink", ev.Target().Path(), "", false)
	case esmsg.Write:
		m.handleFileEvent(rec, "write", ev.Target().Path(), "", false)
	case esmsg.UipcBind:
		m.handleEndpoint(network.CreateBindInfo(rec, ev))
	case esmsg.UipcConnect:
		m.handleEndpoint(network.CreateConnectInfo(rec, ev))
	case esmsg.OpensshLogin:
		m.handleSession(rec, "ssh_login", ev.Username(), ev.Success(), map[string]interface{}{
			"source_address": ev.SourceAddress(),
		})
	case esmsg.OpensshLogout:
		m.handleSession(rec, "ssh_logout", ev.Username(), true, map[string]interface{}{
			"source_address": ev.SourceAddress(),
		})
	case esmsg.LoginLogin:
		details := map[string]interface{}{}
		if !ev.Success() {
			details["failure_message"] = ev.FailureMessage()
		}
		m.handleSession(rec, "login", ev.Username(), ev.Success(), details)
	case esmsg.LoginLogout:
		m.handleSession(rec, "logout", ev.Username(), true, nil)
	case esmsg.LWSessionLogin:
		m.handleSession(rec, "lw_login", ev.Username(), true, map[string]interface{}{
			"graphical_session_id": ev.GraphicalSessionID(),
		})
	case esmsg.LWSessionLogout:
		m.handleSession(rec, "lw_logout", ev.Username(), true, map[string]interface{}{
			"graphical_session_id": ev.GraphicalSessionID(),
		})
	case esmsg.Su:
		details := map[string]interface{}{
			"from_username": ev.FromUsername(),
		}
		if to, ok := ev.ToUsername(); ok {
			details["to_username"] = to
		}
		m.handleSession(rec, "su", ev.FromUsername(), ev.Success(), details)
	case esmsg.Sudo:
		details := map[string]interface{}{
			"command": ev.Command(),
		}
		if to, ok := ev.ToUsername(); ok {
			details["to_username"] = to
		}
		m.handleSession(rec, "sudo", ev.FromUsername(), ev.Success(), details)
	}
}

func (m *Monitor) respond(rec *esmsg.Record, resp esmsg.Response) {
	var err error
	switch resp.Kind {
	case esmsg.ResponseAuth:
		err = m.conn.RespondAuth(rec, true, false)
	case esmsg.ResponseFlags:
		err = m.conn.RespondFlags(rec, uint32(resp.Flags), false)
	}
	if err != nil {
		log.Printf("Error responding to %v: %v", rec.Kind(), err)
	}
}

func (m *Monitor) handleExec(rec *esmsg.Record, ev esmsg.Exec) {
	info := process.FromExec(ev)
	m.processes.Add(process.KeyFor(ev.Target()), info)

	binaryHash := m.archiveBinary(info.ExePath)

	if m.db != nil {
		if err := m.db.InsertExec(info, binaryHash); err != nil {
			log.Printf("Error inserting exec event: %v", err)
		}
	}

	log.Print(process.FormatProcessEvent(info, types.EventClassExec))
}

func (m *Monitor) handleFork(ev esmsg.Fork) {
	child := ev.Child()
	info := process.FromProcess(child)
	if parent, ok := m.processes.GetByPID(info.PPID); ok {
		parent.Mu.RLock()
		info.CmdLine = parent.CmdLine
		info.WorkingDir = parent.WorkingDir
		info.Environment = parent.Environment
		parent.Mu.RUnlock()
	}
	m.processes.Add(process.KeyFor(child), info)
}

func (m *Monitor) handleExit(rec *esmsg.Record, ev esmsg.Exit) {
	proc := rec.Process()
	key := process.KeyFor(proc)

	if info, ok := m.processes.Get(key); ok {
		info.Mu.Lock()
		info.ExitCode = uint32(ev.Status())
		info.ExitTime = rec.Time()
		info.Mu.Unlock()
		log.Print(process.FormatProcessEvent(info, types.EventClassExit))
	}

	if m.db != nil {
		if err := m.db.UpdateProcessExit(key.PID, key.Version, uint32(ev.Status()), rec.Time()); err != nil {
			log.Printf("Error updating process exit: %v", err)
		}
	}

	m.endpoints.Forget(key.PID)
	m.processes.Remove(key)
}

func (m *Monitor) handleCreate(rec *esmsg.Record, ev esmsg.Create) {
	var path string
	switch ev.DestinationType() {
	case esmsg.DestinationExistingFile:
		path = ev.ExistingFile().Path()
	case esmsg.DestinationNewPath:
		dir, name, _ := ev.NewPath()
		path = dir.Path() + "/" + name
	}
	m.handleFileEvent(rec, "create", path, "", false)
}

func (m *Monitor) handleRename(rec *esmsg.Record, ev esmsg.Rename) {
	var dest string
	switch ev.DestinationType() {
	case esmsg.DestinationExistingFile:
		dest = ev.ExistingFile().Path()
	case esmsg.DestinationNewPath:
		dir, name := ev.NewPath()
		dest = dir.Path() + "/" + name
	}
	m.handleFileEvent(rec, "rename", ev.Source().Path(), dest, false)
}

func (m *Monitor) handleFileEvent(rec *esmsg.Record, operation, path, destPath string, modified bool) {
	if m.db == nil {
		return
	}

	proc := rec.Process()
	record := &database.FileRecord{
		Timestamp:   rec.Time(),
		PID:         proc.PID(),
		ProcessName: filepath.Base(proc.Executable().Path()),
		SigningID:   proc.SigningID(),
		Operation:   operation,
		Path:        path,
		DestPath:    destPath,
		Modified:    modified,
	}

	if err := m.db.InsertFileEvent(record); err != nil {
		log.Printf("Error inserting file event: %v", err)
	}
}

func (m *Monitor) handleEndpoint(info *network.EndpointInfo) {
	m.endpoints.Add(info)

	if m.db != nil {
		if err := m.db.InsertUipcEvent(info); err != nil {
			log.Printf("Error inserting uipc event: %v", err)
		}
	}

	log.Print(network.FormatEndpointEvent(info))
}

func (m *Monitor) handleSession(rec *esmsg.Record, kind, username string, success bool, details map[string]interface{}) {
	if m.db == nil {
		return
	}

	record := &database.SessionRecord{
		Timestamp: rec.Time(),
		PID:       rec.Process().PID(),
		Kind:      kind,
		Username:  username,
		Success:   success,
		Details:   details,
	}

	if err := m.db.InsertSessionEvent(record); err != nil {
		log.Printf("Error inserting session event: %v", err)
	}
}

// archiveBinary hashes and stores the executable, best effort. Returns
// the hash, or empty when the file could not be read.
func (m *Monitor) archiveBinary(exePath string) string {
	if m.binaryCache == nil || exePath == "" {
		return ""
	}

	hash, err := binary.HashFile(exePath)
	if err != nil {
		return ""
	}

	if !m.binaryCache.Has(hash) {
		if err := m.binaryCache.Store(exePath, hash); err != nil {
			log.Printf("Error archiving binary %s: %v", exePath, err)
		}
	}

	return hash
}
