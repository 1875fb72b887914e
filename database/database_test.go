package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"es-recorder/network"
	"es-recorder/process"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertExecAndExit(t *testing.T) {
	db := openTestDB(t)

	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	info := &process.ProcessInfo{
		PID:         4321,
		PIDVersion:  7,
		PPID:        1,
		Comm:        "id",
		CmdLine:     "id -u",
		ExePath:     "/usr/bin/id",
		WorkingDir:  "/Users/demo",
		Username:    "demo",
		UID:         501,
		GID:         20,
		SigningID:   "com.apple.id",
		Environment: []string{"PATH=/usr/bin"},
		StartTime:   started,
	}
	require.NoError(t, db.InsertExec(info, "deadbeef"))

	var count int
	require.NoError(t, db.Db.QueryRow(
		"SELECT COUNT(*) FROM exec_events WHERE pid = 4321 AND exit_time IS NULL").Scan(&count))
	assert.Equal(t, 1, count)

	require.NoError(t, db.UpdateProcessExit(4321, 7, 0, started.Add(time.Second)))

	var exitCode int
	require.NoError(t, db.Db.QueryRow(
		"SELECT exit_code FROM exec_events WHERE pid = 4321 AND pid_version = 7").Scan(&exitCode))
	assert.Equal(t, 0, exitCode)
}

func TestExitOnlyClosesMatchingIncarnation(t *testing.T) {
	db := openTestDB(t)

	for _, version := range []uint32{1, 2} {
		info := &process.ProcessInfo{PID: 99, PIDVersion: version, Comm: "sh", StartTime: time.Now()}
		require.NoError(t, db.InsertExec(info, ""))
	}
	require.NoError(t, db.UpdateProcessExit(99, 1, 1, time.Now()))

	var open int
	require.NoError(t, db.Db.QueryRow(
		"SELECT COUNT(*) FROM exec_events WHERE pid = 99 AND exit_time IS NULL").Scan(&open))
	assert.Equal(t, 1, open)
}

func TestInsertFileAndUipcEvents(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.InsertFileEvent(&FileRecord{
		Timestamp:   time.Now(),
		PID:         7,
		ProcessName: "vim",
		Operation:   "rename",
		Path:        "/tmp/.swp",
		DestPath:    "/tmp/notes.txt",
	}))

	require.NoError(t, db.InsertUipcEvent(&network.EndpointInfo{
		PID:         8,
		ProcessName: "agentd",
		Operation:   network.OpBind,
		Path:        "/var/run/agent.sock",
		Mode:        0o600,
		Timestamp:   time.Now(),
	}))

	var dest string
	require.NoError(t, db.Db.QueryRow(
		"SELECT dest_path FROM file_events WHERE operation = 'rename'").Scan(&dest))
	assert.Equal(t, "/tmp/notes.txt", dest)

	var mode int
	require.NoError(t, db.Db.QueryRow(
		"SELECT mode FROM uipc_events WHERE socket_path = '/var/run/agent.sock'").Scan(&mode))
	assert.Equal(t, 0o600, mode)
}

func TestInsertSessionEvent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.InsertSessionEvent(&SessionRecord{
		Timestamp: time.Now(),
		PID:       12,
		Kind:      "sudo",
		Username:  "demo",
		Success:   true,
		Details:   map[string]interface{}{"command": "/usr/bin/make"},
	}))

	var details string
	require.NoError(t, db.Db.QueryRow(
		"SELECT details FROM session_events WHERE kind = 'sudo'").Scan(&details))
	assert.Contains(t, details, "/usr/bin/make")
}
