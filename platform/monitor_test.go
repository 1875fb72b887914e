package platform

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"es-recorder/database"
	"es-recorder/esmsg"
	"es-recorder/network"
	"es-recorder/process"
)

func newTestMonitor(t *testing.T, kinds ...esmsg.EventType) (*fakeShim, *Monitor, *database.DB) {
	t.Helper()

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pm, err := process.NewProcessMap(64)
	require.NoError(t, err)

	s, c := newFakeShim(t, 4)
	m := NewMonitor(c, MonitorConfig{
		DB:          db,
		ProcessMap:  pm,
		EndpointMap: network.NewEndpointMap(8),
		Kinds:       kinds,
	})
	require.NoError(t, m.Start())

	// The subscription frame is always first.
	f := s.expect(t)
	require.Equal(t, uint32(opSubscribe), f.op)

	return s, m, db
}

func execRecord(kind esmsg.EventType, pid uint32) []byte {
	b := esmsg.NewBuilder(4, kind)
	b.ActingProcess(esmsg.ProcessSpec{
		Token:          esmsg.AuditToken{501, 501, 20, 501, 20, 100, 100005, 1},
		ExecutablePath: "/bin/zsh",
	})

	targetOff := b.Process(esmsg.ProcessSpec{
		Token:          esmsg.AuditToken{501, 501, 20, 501, 20, pid, 100005, 1},
		ExecutablePath: "/usr/bin/id",
		SigningID:      "com.apple.id",
	})
	cwdOff := b.File("/Users/demo", esmsg.StatSpec{})
	argArr := b.StringArray([]string{"id", "-u"})
	envArr := b.StringArray(nil)

	b.Event(
		uint64(targetOff),
		0, 0,
		uint64(cwdOff),
		3, 0, 0,
		2, uint64(argArr),
		0, uint64(envArr),
		0, 0,
	)
	return b.Build()
}

func exitRecord(pid uint32, status int32) []byte {
	b := esmsg.NewBuilder(4, esmsg.NotifyExit)
	b.ActingProcess(esmsg.ProcessSpec{
		Token:          esmsg.AuditToken{501, 501, 20, 501, 20, pid, 100005, 1},
		ExecutablePath: "/usr/bin/id",
	})
	b.Event(uint64(uint32(status)))
	return b.Build()
}

func bindRecord(pid uint32) []byte {
	b := esmsg.NewBuilder(4, esmsg.NotifyUipcBind)
	b.ActingProcess(esmsg.ProcessSpec{
		Token:          esmsg.AuditToken{501, 501, 20, 501, 20, pid, 100005, 1},
		ExecutablePath: "/usr/local/bin/agentd",
	})
	dirOff := b.File("/var/run", esmsg.StatSpec{})
	nameRef := b.String("agent.sock")
	b.Event(uint64(dirOff), nameRef, 0o600)
	return b.Build()
}

func TestMonitorSubscribesToDefaultKinds(t *testing.T) {
	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pm, err := process.NewProcessMap(64)
	require.NoError(t, err)

	s, c := newFakeShim(t, 4)
	m := NewMonitor(c, MonitorConfig{
		DB:          db,
		ProcessMap:  pm,
		EndpointMap: network.NewEndpointMap(8),
	})
	require.NoError(t, m.Start())

	f := s.expect(t)
	assert.Equal(t, uint32(opSubscribe), f.op)
	assert.Len(t, f.body, 4*len(defaultKinds))
	assert.Equal(t, uint32(esmsg.NotifyExec), binary.LittleEndian.Uint32(f.body[0:]))
}

func TestMonitorRecordsExec(t *testing.T) {
	s, m, db := newTestMonitor(t, esmsg.NotifyExec)
	s.deliver(1, execRecord(esmsg.NotifyExec, 4321))

	s.expect(t) // retain
	s.expect(t) // release after handling

	info, ok := m.processes.GetByPID(4321)
	require.True(t, ok)
	assert.Equal(t, "id", info.Comm)
	assert.Equal(t, "id -u", info.CmdLine)
	assert.Equal(t, "/Users/demo", info.WorkingDir)

	var count int
	require.NoError(t, db.Db.QueryRow(
		"SELECT COUNT(*) FROM exec_events WHERE pid = 4321").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMonitorExitClosesProcess(t *testing.T) {
	s, m, db := newTestMonitor(t, esmsg.NotifyExec, esmsg.NotifyExit)

	s.deliver(1, execRecord(esmsg.NotifyExec, 555))
	s.expect(t)
	s.expect(t)
	require.Equal(t, 1, m.processes.Len())

	s.deliver(2, exitRecord(555, 0))
	s.expect(t)
	s.expect(t)

	assert.Equal(t, 0, m.processes.Len())

	var open int
	require.NoError(t, db.Db.QueryRow(
		"SELECT COUNT(*) FROM exec_events WHERE pid = 555 AND exit_time IS NULL").Scan(&open))
	assert.Equal(t, 0, open)
}

func TestMonitorRecordsEndpoints(t *testing.T) {
	s, m, db := newTestMonitor(t, esmsg.NotifyUipcBind)
	s.deliver(1, bindRecord(700))

	s.expect(t)
	s.expect(t)

	listeners := m.endpoints.Listeners()
	require.Len(t, listeners, 1)
	assert.Equal(t, "/var/run/agent.sock", listeners[0].Path)

	var path string
	require.NoError(t, db.Db.QueryRow(
		"SELECT socket_path FROM uipc_events WHERE pid = 700").Scan(&path))
	assert.Equal(t, "/var/run/agent.sock", path)
}

func TestMonitorAnswersAuthRecords(t *testing.T) {
	s, _, _ := newTestMonitor(t, esmsg.AuthExec)
	s.deliver(7, execRecord(esmsg.AuthExec, 900))

	s.expect(t) // retain

	f := s.expect(t)
	assert.Equal(t, uint32(opRespondAuth), f.op)
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(f.body[0:]))
	assert.Equal(t, uint32(verdictAllow), binary.LittleEndian.Uint32(f.body[8:]))

	f = s.expect(t)
	assert.Equal(t, uint32(opRelease), f.op)
}

func TestMonitorStopDrainsLoop(t *testing.T) {
	_, m, _ := newTestMonitor(t, esmsg.NotifyExec)

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}
