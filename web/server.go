// Package web exposes the recorded events and Sigma rule management
// over a small HTTP API.
package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sigmago "github.com/bradleyjkemp/sigma-go"

	"es-recorder/binary"
	"es-recorder/sigma"
)

type Server struct {
	db            *sql.DB
	sigmaDetector *sigma.Detector
	binaryCache   *binary.Cache
	listenAddr    string
}

func NewServer(db *sql.DB, sigmaDetector *sigma.Detector, binaryCache *binary.Cache, listenAddr string) *Server {
	return &Server{
		db:            db,
		sigmaDetector: sigmaDetector,
		binaryCache:   binaryCache,
		listenAddr:    listenAddr,
	}
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	logHandler := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			log.Printf("%s %s", r.Method, r.URL.Path)
			h(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", logHandler(s.handleIndex))
	mux.HandleFunc("/api/processes", logHandler(s.handleProcesses))
	mux.HandleFunc("/api/endpoints", logHandler(s.handleEndpoints))
	mux.HandleFunc("/api/sessions", logHandler(s.handleSessions))
	mux.HandleFunc("/api/binaries", logHandler(s.handleBinaries))

	if s.sigmaDetector != nil {
		mux.HandleFunc("/api/sigma/rules", logHandler(s.handleSigmaRules))
		mux.HandleFunc("/api/sigma/rules/toggle/", logHandler(s.handleSigmaRuleToggle))
		mux.HandleFunc("/api/sigma/rules/upload", logHandler(s.handleSigmaRuleUpload))
		mux.HandleFunc("/api/sigma/matches", logHandler(s.handleSigmaMatchesList))
		mux.HandleFunc("/api/sigma/matches/", logHandler(s.handleSigmaMatchOperation))
	}

	srv := &http.Server{
		Addr:    s.listenAddr,
		Handler: mux,
	}

	log.Printf("Starting web server on %s", s.listenAddr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	tmpl := template.Must(template.New("index").Parse(indexTemplate))
	if err := tmpl.Execute(w, nil); err != nil {
		log.Printf("Error executing template: %v", err)
	}
}

// handleProcesses serves exec events: recent ones by default, a
// process tree when pid= is given.
func (s *Server) handleProcesses(w http.ResponseWriter, r *http.Request) {
	if pidParam := r.URL.Query().Get("pid"); pidParam != "" {
		s.handleProcessTree(w, r, pidParam)
		return
	}
	s.handleRecentProcesses(w, r)
}

const execColumns = `
	id, timestamp, pid, ppid, comm, cmdline, exe_path,
	working_dir, username, signing_id, team_id, cdhash,
	platform_binary, binary_hash, exit_code, exit_time`

func scanExecRow(rows *sql.Rows) (ExecRow, error) {
	var p ExecRow
	err := rows.Scan(
		&p.ID, &p.Timestamp, &p.PID, &p.PPID, &p.Comm,
		&p.CmdLine, &p.ExePath, &p.WorkingDir, &p.Username,
		&p.SigningID, &p.TeamID, &p.CDHash,
		&p.PlatformBinary, &p.BinaryHash, &p.ExitCode, &p.ExitTime,
	)
	return p, err
}

func (s *Server) handleRecentProcesses(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`
		SELECT ` + execColumns + `
		FROM exec_events
		ORDER BY timestamp DESC
		LIMIT 100`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	var processes []ExecRow
	for rows.Next() {
		p, err := scanExecRow(rows)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		processes = append(processes, p)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(processes)
}

func (s *Server) handleProcessTree(w http.ResponseWriter, r *http.Request, pidParam string) {
	pid, err := strconv.Atoi(pidParam)
	if err != nil {
		http.Error(w, "Invalid PID", 400)
		return
	}

	processes, err := s.fetchProcessTree(uint32(pid))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(processes)
}

// fetchProcessTree fetches a process, its ancestors and its children.
func (s *Server) fetchProcessTree(pid uint32) ([]ExecRow, error) {
	var pidList []uint32
	pidList = append(pidList, pid)

	tempPid := pid
	for tempPid > 0 {
		var ppid uint32
		err := s.db.QueryRow(
			"SELECT ppid FROM exec_events WHERE pid = ? ORDER BY timestamp DESC LIMIT 1",
			tempPid).Scan(&ppid)
		if err != nil {
			if err == sql.ErrNoRows {
				break
			}
			return nil, err
		}

		if ppid > 0 {
			pidList = append(pidList, ppid)
		}
		tempPid = ppid

		// Guard against ppid cycles in recorded data
		if len(pidList) > 100 {
			break
		}
	}

	childRows, err := s.db.Query(
		"SELECT DISTINCT pid FROM exec_events WHERE ppid = ? ORDER BY timestamp DESC", pid)
	if err != nil {
		return nil, err
	}
	defer childRows.Close()

	for childRows.Next() {
		var childPid uint32
		if err := childRows.Scan(&childPid); err != nil {
			return nil, err
		}
		pidList = append(pidList, childPid)
	}

	var placeholders []string
	var args []interface{}
	for _, p := range pidList {
		placeholders = append(placeholders, "?")
		args = append(args, p)
	}

	query := fmt.Sprintf(`
		SELECT `+execColumns+`
		FROM exec_events
		WHERE pid IN (%s)
		ORDER BY timestamp DESC`, strings.Join(placeholders, ","))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Keep only the most recent incarnation per PID
	pidMap := make(map[uint32]ExecRow)
	for rows.Next() {
		p, err := scanExecRow(rows)
		if err != nil {
			return nil, err
		}
		if existing, ok := pidMap[p.PID]; !ok || p.Timestamp.After(existing.Timestamp) {
			pidMap[p.PID] = p
		}
	}

	var processes []ExecRow
	for _, p := range pidMap {
		processes = append(processes, p)
	}
	return processes, nil
}

func (s *Server) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`
		SELECT
			id, timestamp, pid, process_name, signing_id,
			operation, socket_path, sock_type, protocol, mode
		FROM uipc_events
		ORDER BY timestamp DESC
		LIMIT 1000`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	var endpoints []EndpointRow
	for rows.Next() {
		var e EndpointRow
		err := rows.Scan(
			&e.ID, &e.Timestamp, &e.PID, &e.ProcessName, &e.SigningID,
			&e.Operation, &e.SocketPath, &e.SockType, &e.Protocol, &e.Mode,
		)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		endpoints = append(endpoints, e)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(endpoints)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, pid, kind, username, success, details
		FROM session_events
		ORDER BY timestamp DESC
		LIMIT 1000`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	var sessions []SessionRow
	for rows.Next() {
		var e SessionRow
		err := rows.Scan(&e.ID, &e.Timestamp, &e.PID, &e.Kind, &e.Username, &e.Success, &e.Details)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		sessions = append(sessions, e)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

// handleBinaries serves an archived executable by its sha256
func (s *Server) handleBinaries(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("sha256")
	if hash == "" {
		http.Error(w, "Missing sha256 parameter", 400)
		return
	}

	binPath := s.binaryCache.Path(hash)
	if _, err := os.Stat(binPath); os.IsNotExist(err) {
		http.Error(w, "Binary not found", 404)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.bin", hash))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, binPath)
}

func (s *Server) handleSigmaRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	enabledDir := filepath.Join(s.sigmaDetector.RulesDir, "enabled_rules")
	disabledDir := filepath.Join(s.sigmaDetector.RulesDir, "disabled_rules")

	var rules []map[string]interface{}

	enabledRules, err := s.readRulesFromDir(enabledDir, true)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error reading enabled rules: %v", err), http.StatusInternalServerError)
		return
	}
	rules = append(rules, enabledRules...)

	disabledRules, err := s.readRulesFromDir(disabledDir, false)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error reading disabled rules: %v", err), http.StatusInternalServerError)
		return
	}
	rules = append(rules, disabledRules...)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rules)
}

func ruleToMap(rule sigmago.Rule, path, name string, enabled bool) map[string]interface{} {
	ruleMap := map[string]interface{}{
		"id":          rule.ID,
		"title":       rule.Title,
		"description": rule.Description,
		"level":       rule.Level,
		"author":      rule.Author,
		"tags":        rule.Tags,
		"references":  rule.References,
		"detection":   rule.Detection,
		"filepath":    path,
		"filename":    name,
		"enabled":     enabled,
	}
	if date, ok := rule.AdditionalFields["date"]; ok {
		ruleMap["date"] = date
	}
	if modified, ok := rule.AdditionalFields["modified"]; ok {
		ruleMap["modified"] = modified
	}
	return ruleMap
}

func (s *Server) readRulesFromDir(dir string, enabled bool) ([]map[string]interface{}, error) {
	var rules []map[string]interface{}

	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return rules, nil
		}
		return nil, err
	}

	for _, file := range files {
		if file.IsDir() || (!strings.HasSuffix(file.Name(), ".yml") && !strings.HasSuffix(file.Name(), ".yaml")) {
			continue
		}
		filePath := filepath.Join(dir, file.Name())

		content, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}

		rule, err := sigmago.ParseRule(content)
		if err != nil {
			continue
		}

		ruleMap := ruleToMap(rule, filePath, file.Name(), enabled)
		ruleMap["yaml"] = string(content)
		rules = append(rules, ruleMap)
	}

	return rules, nil
}

// findRuleFile locates the file in dir holding the rule with the given ID.
func findRuleFile(dir, ruleID string) (path, name string) {
	files, _ := os.ReadDir(dir)
	for _, file := range files {
		if file.IsDir() || (!strings.HasSuffix(file.Name(), ".yml") && !strings.HasSuffix(file.Name(), ".yaml")) {
			continue
		}
		filePath := filepath.Join(dir, file.Name())
		content, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}
		rule, err := sigmago.ParseRule(content)
		if err != nil {
			continue
		}
		if rule.ID == ruleID {
			return filePath, file.Name()
		}
	}
	return "", ""
}

// handleSigmaRuleToggle moves a rule between the enabled and disabled
// directories. The file watcher picks up the move and reloads.
func (s *Server) handleSigmaRuleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ruleID := strings.TrimPrefix(r.URL.Path, "/api/sigma/rules/toggle/")
	if ruleID == "" {
		http.Error(w, "Rule ID required", http.StatusBadRequest)
		return
	}

	enabledDir := filepath.Join(s.sigmaDetector.RulesDir, "enabled_rules")
	disabledDir := filepath.Join(s.sigmaDetector.RulesDir, "disabled_rules")

	var targetDir string
	var ruleEnabled bool

	filePath, fileName := findRuleFile(enabledDir, ruleID)
	if filePath != "" {
		targetDir = disabledDir
		ruleEnabled = false
	} else {
		filePath, fileName = findRuleFile(disabledDir, ruleID)
		if filePath != "" {
			targetDir = enabledDir
			ruleEnabled = true
		}
	}

	if filePath == "" {
		http.Error(w, "Rule not found", http.StatusNotFound)
		return
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error reading rule file: %v", err), http.StatusInternalServerError)
		return
	}

	targetPath := filepath.Join(targetDir, fileName)
	if err := os.WriteFile(targetPath, content, 0644); err != nil {
		http.Error(w, fmt.Sprintf("Error writing rule file: %v", err), http.StatusInternalServerError)
		return
	}

	if err := os.Remove(filePath); err != nil {
		http.Error(w, fmt.Sprintf("Error removing original rule file: %v", err), http.StatusInternalServerError)
		return
	}

	rule, _ := sigmago.ParseRule(content)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ruleToMap(rule, targetPath, fileName, ruleEnabled))
}

func (s *Server) handleSigmaRuleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Content  string `json:"content"`
		Filename string `json:"filename"`
		Enabled  bool   `json:"enabled"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if request.Content == "" || request.Filename == "" {
		http.Error(w, "Content and filename are required", http.StatusBadRequest)
		return
	}

	if !strings.HasSuffix(request.Filename, ".yml") && !strings.HasSuffix(request.Filename, ".yaml") {
		http.Error(w, "Filename must have .yml or .yaml extension", http.StatusBadRequest)
		return
	}

	rule, err := sigmago.ParseRule([]byte(request.Content))
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid rule format: %v", err), http.StatusBadRequest)
		return
	}

	var targetDir string
	if request.Enabled {
		targetDir = filepath.Join(s.sigmaDetector.RulesDir, "enabled_rules")
	} else {
		targetDir = filepath.Join(s.sigmaDetector.RulesDir, "disabled_rules")
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		http.Error(w, fmt.Sprintf("Failed to create directory: %v", err), http.StatusInternalServerError)
		return
	}

	filePath := filepath.Join(targetDir, request.Filename)
	if err := os.WriteFile(filePath, []byte(request.Content), 0644); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write file: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ruleToMap(rule, filePath, request.Filename, request.Enabled))
}

func (s *Server) handleSigmaMatchesList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filters := map[string]string{
		"status":   r.URL.Query().Get("status"),
		"severity": r.URL.Query().Get("severity"),
		"rule":     r.URL.Query().Get("rule"),
	}

	matches, err := s.sigmaDetector.GetMatches(100, 0, filters)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error fetching matches: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(matches)
}

// handleSigmaMatchOperation handles requests on /api/sigma/matches/{id}
func (s *Server) handleSigmaMatchOperation(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(r.URL.Path, "/")
	if len(pathParts) < 5 {
		http.Error(w, "Invalid match ID", http.StatusBadRequest)
		return
	}

	matchID, err := strconv.ParseInt(pathParts[4], 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid match ID: %v", err), http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var request struct {
			Status string `json:"status"`
		}

		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
			return
		}

		if err := s.sigmaDetector.UpdateMatchStatus(matchID, request.Status); err != nil {
			http.Error(w, fmt.Sprintf("Error updating match status: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     matchID,
			"status": request.Status,
		})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

const indexTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>ES Recorder</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
    <h1>ES Recorder</h1>
    <ul>
        <li><a href="/api/processes">/api/processes</a></li>
        <li><a href="/api/endpoints">/api/endpoints</a></li>
        <li><a href="/api/sessions">/api/sessions</a></li>
        <li><a href="/api/sigma/rules">/api/sigma/rules</a></li>
        <li><a href="/api/sigma/matches">/api/sigma/matches</a></li>
    </ul>
</body>
</html>`
