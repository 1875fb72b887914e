package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"es-recorder/binary"
	"es-recorder/database"
	"es-recorder/network"
	"es-recorder/process"
	"es-recorder/sigma"
)

const testRule = `title: Suspicious Curl
id: aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee
status: test
level: medium
logsource:
    category: process_creation
    product: macos
detection:
    selection:
        Image|endswith: '/curl'
    condition: selection
`

func newTestServer(t *testing.T) (*Server, *database.DB) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.NewDB(dir)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache, err := binary.NewCache(8, filepath.Join(dir, "bins"))
	require.NoError(t, err)

	rulesDir := filepath.Join(dir, "rules")
	enabledDir := filepath.Join(rulesDir, "enabled_rules")
	require.NoError(t, os.MkdirAll(enabledDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(enabledDir, "curl.yml"), []byte(testRule), 0644))

	detector, err := sigma.NewDetector(rulesDir, db.Db)
	require.NoError(t, err)
	t.Cleanup(detector.StopPolling)

	return NewServer(db.Db, detector, cache, ":0"), db
}

func TestRecentProcesses(t *testing.T) {
	s, db := newTestServer(t)

	require.NoError(t, db.InsertExec(&process.ProcessInfo{
		PID: 101, PIDVersion: 1, PPID: 1,
		Comm: "curl", ExePath: "/usr/bin/curl", CmdLine: "curl http://x",
		SigningID: "com.apple.curl", StartTime: time.Now(),
	}, "abc123"))

	w := httptest.NewRecorder()
	s.handleProcesses(w, httptest.NewRequest(http.MethodGet, "/api/processes", nil))
	require.Equal(t, 200, w.Code)

	var rows []ExecRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, uint32(101), rows[0].PID)
	assert.Equal(t, "com.apple.curl", rows[0].SigningID)
	assert.Equal(t, "abc123", rows[0].BinaryHash)
	assert.False(t, rows[0].ExitTime.Valid)
}

func TestProcessTreeEndpoint(t *testing.T) {
	s, db := newTestServer(t)

	chain := []struct {
		pid, ppid uint32
		comm      string
	}{
		{1, 0, "launchd"},
		{50, 1, "zsh"},
		{51, 50, "git"},
	}
	for _, p := range chain {
		require.NoError(t, db.InsertExec(&process.ProcessInfo{
			PID: p.pid, PIDVersion: 1, PPID: p.ppid,
			Comm: p.comm, ExePath: "/bin/" + p.comm, StartTime: time.Now(),
		}, ""))
	}

	w := httptest.NewRecorder()
	s.handleProcesses(w, httptest.NewRequest(http.MethodGet, "/api/processes?pid=50", nil))
	require.Equal(t, 200, w.Code)

	var rows []ExecRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 3, "ancestors and children")
}

func TestEndpointsEndpoint(t *testing.T) {
	s, db := newTestServer(t)

	require.NoError(t, db.InsertUipcEvent(&network.EndpointInfo{
		PID: 9, ProcessName: "agentd", Operation: network.OpBind,
		Path: "/var/run/agent.sock", Mode: 0o600, Timestamp: time.Now(),
	}))

	w := httptest.NewRecorder()
	s.handleEndpoints(w, httptest.NewRequest(http.MethodGet, "/api/endpoints", nil))
	require.Equal(t, 200, w.Code)

	var rows []EndpointRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "/var/run/agent.sock", rows[0].SocketPath)
	assert.Equal(t, "bind", rows[0].Operation)
}

func TestBinariesEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	s.handleBinaries(w, httptest.NewRequest(http.MethodGet, "/api/binaries", nil))
	assert.Equal(t, 400, w.Code, "hash is required")

	w = httptest.NewRecorder()
	s.handleBinaries(w, httptest.NewRequest(http.MethodGet, "/api/binaries?sha256=0000000000000000000000000000000000000000000000000000000000000000", nil))
	assert.Equal(t, 404, w.Code)

	src := filepath.Join(t.TempDir(), "tool")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\n"), 0755))
	hash, err := binary.HashFile(src)
	require.NoError(t, err)
	require.NoError(t, s.binaryCache.Store(src, hash))

	w = httptest.NewRecorder()
	s.handleBinaries(w, httptest.NewRequest(http.MethodGet, "/api/binaries?sha256="+hash, nil))
	require.Equal(t, 200, w.Code)
	assert.Equal(t, "#!/bin/sh\n", w.Body.String())
}

func TestSigmaRulesListAndToggle(t *testing.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	s.handleSigmaRules(w, httptest.NewRequest(http.MethodGet, "/api/sigma/rules", nil))
	require.Equal(t, 200, w.Code)

	var rules []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, "Suspicious Curl", rules[0]["title"])
	assert.Equal(t, true, rules[0]["enabled"])

	w = httptest.NewRecorder()
	s.handleSigmaRuleToggle(w, httptest.NewRequest(http.MethodPost,
		"/api/sigma/rules/toggle/aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", nil))
	require.Equal(t, 200, w.Code)

	var toggled map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toggled))
	assert.Equal(t, false, toggled["enabled"])
	assert.True(t, strings.Contains(toggled["filepath"].(string), "disabled_rules"))
}

func TestSigmaRuleUploadValidates(t *testing.T) {
	s, _ := newTestServer(t)

	body := strings.NewReader(`{"content": "not: [valid", "filename": "x.yml", "enabled": true}`)
	w := httptest.NewRecorder()
	s.handleSigmaRuleUpload(w, httptest.NewRequest(http.MethodPost, "/api/sigma/rules/upload", body))
	assert.Equal(t, 400, w.Code)

	valid, err := json.Marshal(map[string]interface{}{
		"content":  testRule,
		"filename": "up.yml",
		"enabled":  true,
	})
	require.NoError(t, err)

	w = httptest.NewRecorder()
	s.handleSigmaRuleUpload(w, httptest.NewRequest(http.MethodPost, "/api/sigma/rules/upload", strings.NewReader(string(valid))))
	require.Equal(t, 200, w.Code)
}
