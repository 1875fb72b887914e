// Package database persists recorded endpoint-security events in sqlite.
package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"es-recorder/network"
	"es-recorder/process"
)

// DB handles database operations
type DB struct {
	Db *sql.DB
}

// FileRecord represents a file event in the database.
type FileRecord struct {
	Timestamp   time.Time
	PID         uint32
	ProcessName string
	SigningID   string
	Operation   string // open, close, create, rename, unlink, write
	Path        string
	DestPath    string // rename destination, empty otherwise
	Modified    bool   // close events only
}

// SessionRecord represents an authentication or session event.
type SessionRecord struct {
	Timestamp time.Time
	PID       uint32
	Kind      string // login, logout, su, sudo, lw_login, ...
	Username  string
	Success   bool
	Details   map[string]interface{}
}

func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "es_recorder.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %v", err)
	}

	if err := initExecSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize exec schema: %v", err)
	}

	if err := initFileSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize file schema: %v", err)
	}

	if err := initUipcSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize uipc schema: %v", err)
	}

	if err := initSessionSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize session schema: %v", err)
	}

	if err := initSigmaSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sigma schema: %v", err)
	}

	return &DB{Db: db}, nil
}

func initExecSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS exec_events (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp       DATETIME NOT NULL,
		pid             INTEGER NOT NULL,
		pid_version     INTEGER NOT NULL,
		ppid            INTEGER NOT NULL,
		comm            TEXT NOT NULL,
		cmdline         TEXT,
		exe_path        TEXT,
		working_dir     TEXT,
		username        TEXT,
		uid             INTEGER,
		gid             INTEGER,
		signing_id      TEXT,
		team_id         TEXT,
		cdhash          TEXT,
		platform_binary BOOLEAN,
		es_client       BOOLEAN,
		tty             TEXT,
		environment     TEXT,           -- JSON array of environment variables
		binary_hash     TEXT,
		exit_code       INTEGER,
		exit_time       DATETIME
	);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create exec_events table: %v", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_exec_pid ON exec_events(pid);",
		"CREATE INDEX IF NOT EXISTS idx_exec_ppid ON exec_events(ppid);",
		"CREATE INDEX IF NOT EXISTS idx_exec_timestamp ON exec_events(timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_exec_signing_id ON exec_events(signing_id);",
		"CREATE INDEX IF NOT EXISTS idx_exec_cdhash ON exec_events(cdhash);",
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}

	return nil
}

func initFileSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS file_events (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp    DATETIME NOT NULL,
		pid          INTEGER NOT NULL,
		process_name TEXT NOT NULL,
		signing_id   TEXT,
		operation    TEXT NOT NULL,
		path         TEXT,
		dest_path    TEXT,
		modified     BOOLEAN
	);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create file_events table: %v", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_file_pid ON file_events(pid);",
		"CREATE INDEX IF NOT EXISTS idx_file_timestamp ON file_events(timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_file_path ON file_events(path);",
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}

	return nil
}

func initUipcSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS uipc_events (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp    DATETIME NOT NULL,
		pid          INTEGER NOT NULL,
		process_name TEXT NOT NULL,
		signing_id   TEXT,
		operation    TEXT NOT NULL,
		socket_path  TEXT,
		domain       INTEGER,
		sock_type    INTEGER,
		protocol     INTEGER,
		mode         INTEGER
	);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create uipc_events table: %v", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_uipc_pid ON uipc_events(pid);",
		"CREATE INDEX IF NOT EXISTS idx_uipc_timestamp ON uipc_events(timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_uipc_path ON uipc_events(socket_path);",
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}

	return nil
}

func initSessionSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS session_events (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		pid       INTEGER,
		kind      TEXT NOT NULL,
		username  TEXT,
		success   BOOLEAN,
		details   TEXT            -- JSON object with per-kind fields
	);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create session_events table: %v", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_session_timestamp ON session_events(timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_session_kind ON session_events(kind);",
		"CREATE INDEX IF NOT EXISTS idx_session_username ON session_events(username);",
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}

	return nil
}

func initSigmaSchema(db *sql.DB) error {
	schema := `
    CREATE TABLE IF NOT EXISTS detector_state (
        id INTEGER PRIMARY KEY,
        event_type TEXT NOT NULL,
        last_id INTEGER NOT NULL,
        last_processed_time DATETIME NOT NULL,
        rule_count INTEGER DEFAULT 0,
        match_count INTEGER DEFAULT 0,
        updated_at DATETIME NOT NULL,
        UNIQUE(event_type)
    );

    CREATE TABLE IF NOT EXISTS sigma_matches (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        event_id INTEGER NOT NULL,
        event_type TEXT NOT NULL,
        rule_id TEXT NOT NULL,
        rule_name TEXT NOT NULL,
        process_id INTEGER,
        process_name TEXT,
        command_line TEXT,
        signing_id TEXT,
        parent_process_name TEXT,
        username TEXT,
        timestamp DATETIME NOT NULL,
        severity TEXT NOT NULL,
        status TEXT DEFAULT 'new' NOT NULL,
        match_details TEXT,
        event_data TEXT,
        created_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_sigma_matches_rule_id ON sigma_matches(rule_id);
    CREATE INDEX IF NOT EXISTS idx_sigma_matches_timestamp ON sigma_matches(timestamp);
    CREATE INDEX IF NOT EXISTS idx_sigma_matches_status ON sigma_matches(status);
    CREATE INDEX IF NOT EXISTS idx_sigma_matches_event_id ON sigma_matches(event_id);`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create Sigma tables: %v", err)
	}

	return nil
}

// InsertExec adds an exec event record to the database.
func (db *DB) InsertExec(record *process.ProcessInfo, binaryHash string) error {
	// Gather all data under lock
	record.Mu.RLock()
	insertData := struct {
		startTime      time.Time
		pid            uint32
		pidVersion     uint32
		ppid           uint32
		comm           string
		cmdLine        string
		exePath        string
		workingDir     string
		username       string
		uid            uint32
		gid            uint32
		signingID      string
		teamID         string
		cdHash         string
		platformBinary bool
		esClient       bool
		tty            string
		environment    []string
	}{
		startTime:      record.StartTime,
		pid:            record.PID,
		pidVersion:     record.PIDVersion,
		ppid:           record.PPID,
		comm:           record.Comm,
		cmdLine:        record.CmdLine,
		exePath:        record.ExePath,
		workingDir:     record.WorkingDir,
		username:       record.Username,
		uid:            record.UID,
		gid:            record.GID,
		signingID:      record.SigningID,
		teamID:         record.TeamID,
		cdHash:         record.CDHash,
		platformBinary: record.PlatformBinary,
		esClient:       record.ESClient,
		tty:            record.TTYPath,
		environment:    append([]string{}, record.Environment...),
	}
	record.Mu.RUnlock()

	envJSON, err := json.Marshal(insertData.environment)
	if err != nil {
		return fmt.Errorf("failed to marshal environment: %v", err)
	}

	query := `
        INSERT INTO exec_events (
            timestamp, pid, pid_version, ppid, comm, cmdline, exe_path,
            working_dir, username, uid, gid,
            signing_id, team_id, cdhash, platform_binary, es_client,
            tty, environment, binary_hash
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = db.Db.Exec(query,
		insertData.startTime,
		insertData.pid,
		insertData.pidVersion,
		insertData.ppid,
		insertData.comm,
		insertData.cmdLine,
		insertData.exePath,
		insertData.workingDir,
		insertData.username,
		insertData.uid,
		insertData.gid,
		insertData.signingID,
		insertData.teamID,
		insertData.cdHash,
		insertData.platformBinary,
		insertData.esClient,
		insertData.tty,
		string(envJSON),
		binaryHash)

	return err
}

// UpdateProcessExit closes the open exec row for a process incarnation.
func (db *DB) UpdateProcessExit(pid, pidVersion uint32, exitCode uint32, exitTime time.Time) error {
	query := `
        UPDATE exec_events
        SET exit_code = ?,
            exit_time = ?
        WHERE pid = ?
        AND pid_version = ?
        AND exit_time IS NULL`

	_, err := db.Db.Exec(query, exitCode, exitTime, pid, pidVersion)
	return err
}

// InsertFileEvent adds a file event record to the database.
func (db *DB) InsertFileEvent(record *FileRecord) error {
	query := `
        INSERT INTO file_events (
            timestamp, pid, process_name, signing_id,
            operation, path, dest_path, modified
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.Db.Exec(query,
		record.Timestamp,
		record.PID,
		record.ProcessName,
		record.SigningID,
		record.Operation,
		record.Path,
		record.DestPath,
		record.Modified,
	)
	return err
}

// InsertUipcEvent adds a socket observation to the database.
func (db *DB) InsertUipcEvent(info *network.EndpointInfo) error {
	query := `
        INSERT INTO uipc_events (
            timestamp, pid, process_name, signing_id,
            operation, socket_path, domain, sock_type, protocol, mode
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.Db.Exec(query,
		info.Timestamp,
		info.PID,
		info.ProcessName,
		info.SigningID,
		info.Operation,
		info.Path,
		info.Domain,
		info.SockType,
		info.Protocol,
		info.Mode,
	)
	return err
}

// InsertSessionEvent adds an authentication or session event.
func (db *DB) InsertSessionEvent(record *SessionRecord) error {
	detailsJSON, err := json.Marshal(record.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal session details: %v", err)
	}

	query := `
        INSERT INTO session_events (
            timestamp, pid, kind, username, success, details
        ) VALUES (?, ?, ?, ?, ?, ?)`

	_, err = db.Db.Exec(query,
		record.Timestamp,
		record.PID,
		record.Kind,
		record.Username,
		record.Success,
		string(detailsJSON),
	)
	return err
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.Db.Close()
}
