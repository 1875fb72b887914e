// Package sigma evaluates Sigma rules against recorded exec events.
package sigma

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bradleyjkemp/sigma-go"
	"github.com/bradleyjkemp/sigma-go/evaluator"
	"github.com/fsnotify/fsnotify"
)

// Detector manages Sigma rules and detection
type Detector struct {
	RulesDir   string
	db         *sql.DB
	mu         sync.RWMutex
	evaluators map[string]*evaluator.RuleEvaluator
	running    bool
	eventTypes []string
	reloadChan chan bool         // Channel to signal rule reloading
	watcher    *fsnotify.Watcher // File system watcher
}

// MatchResult represents the result of a rule evaluation
type MatchResult struct {
	Match        bool
	Rule         sigma.Rule
	MatchDetails []string
}

// fieldConfig maps rule fields onto the columns recorded for exec
// events, including the code-signing identity fields.
func fieldConfig() sigma.Config {
	return sigma.Config{
		Title: "ES Recorder Config",
		FieldMappings: map[string]sigma.FieldMapping{
			"CommandLine":       {TargetNames: []string{"CommandLine"}},
			"ParentCommandLine": {TargetNames: []string{"ParentCommandLine"}},
			"Image":             {TargetNames: []string{"Image"}},
			"ParentImage":       {TargetNames: []string{"ParentImage"}},
			"User":              {TargetNames: []string{"Username"}},
			"ProcessId":         {TargetNames: []string{"ProcessId"}},
			"ParentProcessId":   {TargetNames: []string{"ParentProcessId"}},
			"SigningId":         {TargetNames: []string{"SigningID"}},
			"TeamId":            {TargetNames: []string{"TeamID"}},
		},
	}
}

// NewDetector creates a new Sigma detector
func NewDetector(rulesDir string, db *sql.DB) (*Detector, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %v", err)
	}

	detector := &Detector{
		RulesDir:   rulesDir,
		db:         db,
		evaluators: make(map[string]*evaluator.RuleEvaluator),
		running:    false,
		eventTypes: []string{"exec"},
		reloadChan: make(chan bool, 1), // Buffer of 1 to prevent blocking
		watcher:    watcher,
	}

	// Create enabled_rules and disabled_rules directories if they don't exist
	enabledDir := filepath.Join(rulesDir, "enabled_rules")
	disabledDir := filepath.Join(rulesDir, "disabled_rules")

	for _, dir := range []string{enabledDir, disabledDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				watcher.Close()
				return nil, fmt.Errorf("failed to create directory %s: %v", dir, err)
			}
		}
	}

	if err := detector.setupWatcher(); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to set up file watcher: %v", err)
	}

	if err := detector.LoadRules(); err != nil {
		return nil, fmt.Errorf("failed to load rules: %v", err)
	}

	return detector, nil
}

// setupWatcher watches the enabled_rules directory; changes in
// disabled_rules don't matter until a rule is moved over.
func (sd *Detector) setupWatcher() error {
	enabledDir := filepath.Join(sd.RulesDir, "enabled_rules")

	if err := sd.watcher.Add(enabledDir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %v", enabledDir, err)
	}
	log.Printf("Watching directory for rule changes: %s", enabledDir)

	go sd.watchFileChanges()

	return nil
}

func (sd *Detector) watchFileChanges() {
	for {
		select {
		case event, ok := <-sd.watcher.Events:
			if !ok {
				return // Channel closed
			}

			// We only care about rule files
			if !strings.HasSuffix(event.Name, ".yml") && !strings.HasSuffix(event.Name, ".yaml") {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				log.Printf("Detected rule change: %s", event.Name)
				sd.ReloadRules()
			}

		case err, ok := <-sd.watcher.Errors:
			if !ok {
				return // Channel closed
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// LoadRules loads all Sigma rules from the enabled_rules directory
func (sd *Detector) LoadRules() error {
	enabledDir := filepath.Join(sd.RulesDir, "enabled_rules")

	if _, err := os.Stat(enabledDir); os.IsNotExist(err) {
		if err := os.MkdirAll(enabledDir, 0755); err != nil {
			return fmt.Errorf("failed to create enabled_rules directory: %v", err)
		}
	}

	files, err := os.ReadDir(enabledDir)
	if err != nil {
		return err
	}

	sd.mu.Lock()
	sd.evaluators = make(map[string]*evaluator.RuleEvaluator)
	sd.mu.Unlock()

	count := 0
	for _, file := range files {
		if !file.IsDir() && (filepath.Ext(file.Name()) == ".yml" || filepath.Ext(file.Name()) == ".yaml") {
			filePath := filepath.Join(enabledDir, file.Name())
			if err := sd.LoadRuleFile(filePath); err != nil {
				log.Printf("Warning: failed to load rule file %s: %v", filePath, err)
				continue
			}
			count++
		}
	}

	log.Printf("Loaded %d Sigma rules from %s", count, enabledDir)
	return nil
}

// ReloadRules signals the polling loop to reload rules.
func (sd *Detector) ReloadRules() {
	select {
	case sd.reloadChan <- true:
	default:
		// Reload already pending
	}
}

// LoadRuleFile loads a single rule file
func (sd *Detector) LoadRuleFile(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if sigma.InferFileType(content) != sigma.RuleFile {
		return fmt.Errorf("file is not a Sigma rule: %s", filePath)
	}

	rule, err := sigma.ParseRule(content)
	if err != nil {
		return err
	}

	options := []evaluator.Option{
		evaluator.WithConfig(fieldConfig()),
		evaluator.WithPlaceholderExpander(func(ctx context.Context, placeholderName string) ([]string, error) {
			return nil, nil
		}),
		evaluator.CountImplementation(func(ctx context.Context, key evaluator.GroupedByValues) (float64, error) {
			return 0, nil
		}),
		evaluator.SumImplementation(func(ctx context.Context, key evaluator.GroupedByValues, value float64) (float64, error) {
			return 0, nil
		}),
		evaluator.AverageImplementation(func(ctx context.Context, key evaluator.GroupedByValues, value float64) (float64, error) {
			return 0, nil
		}),
	}

	ruleEvaluator := evaluator.ForRule(rule, options...)

	sd.mu.Lock()
	sd.evaluators[rule.ID] = ruleEvaluator
	sd.mu.Unlock()

	log.Printf("Loaded rule: %s (%s)", rule.Title, rule.ID)
	return nil
}

// GetLastProcessedID gets the last processed event row ID for an event type
func (sd *Detector) GetLastProcessedID(eventType string) (int64, error) {
	query := `SELECT last_id FROM detector_state WHERE event_type = ? LIMIT 1`

	var lastID int64
	err := sd.db.QueryRow(query, eventType).Scan(&lastID)
	if err != nil {
		if err == sql.ErrNoRows {
			initQuery := `
			INSERT INTO detector_state
				(event_type, last_id, last_processed_time, updated_at)
			VALUES
				(?, 0, datetime('now'), datetime('now'))`

			_, err = sd.db.Exec(initQuery, eventType)
			if err != nil {
				return 0, fmt.Errorf("failed to initialize state for event type %s: %v", eventType, err)
			}
			return 0, nil
		}
		return 0, err
	}

	return lastID, nil
}

// UpdateDetectorState updates the polling state for an event type
func (sd *Detector) UpdateDetectorState(eventType string, lastID int64, matchCount int) error {
	query := `
	UPDATE detector_state SET
		last_id = ?,
		last_processed_time = datetime('now'),
		match_count = match_count + ?,
		updated_at = datetime('now')
	WHERE event_type = ?`

	_, err := sd.db.Exec(query, lastID, matchCount, eventType)
	return err
}

// CheckEvent checks an event against all loaded rules and returns the matches
func (sd *Detector) CheckEvent(ctx context.Context, event map[string]interface{}, eventType string) []MatchResult {
	sd.mu.RLock()
	evaluators := make([]*evaluator.RuleEvaluator, 0, len(sd.evaluators))
	for _, e := range sd.evaluators {
		evaluators = append(evaluators, e)
	}
	sd.mu.RUnlock()

	var results []MatchResult

	for _, ruleEvaluator := range evaluators {
		result, err := ruleEvaluator.Matches(ctx, event)
		if err != nil {
			log.Printf("Error evaluating %s event against rule %s: %v", eventType, ruleEvaluator.Rule.ID, err)
			continue
		}

		if result.Match {
			var matchConditions []string
			for k, v := range result.SearchResults {
				if v {
					matchConditions = append(matchConditions, k)
				}
			}

			results = append(results, MatchResult{
				Match: true,
				Rule:  ruleEvaluator.Rule,
				MatchDetails: []string{
					fmt.Sprintf("Matched conditions: %s", strings.Join(matchConditions, ", ")),
				},
			})
			log.Printf("Event matched rule %s with conditions %s", ruleEvaluator.Rule.ID, strings.Join(matchConditions, ", "))
		}
	}

	return results
}

// StartPolling starts polling for all event types. Blocks until ctx is
// cancelled.
func (sd *Detector) StartPolling(ctx context.Context, interval time.Duration) error {
	if sd.running {
		return fmt.Errorf("detector is already running")
	}

	sd.running = true

	var wg sync.WaitGroup

	// Rule reloader goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sd.reloadChan:
				log.Println("Reloading Sigma rules...")
				if err := sd.LoadRules(); err != nil {
					log.Printf("Error reloading rules: %v", err)
				}
			}
		}
	}()

	for _, eventType := range sd.eventTypes {
		eventType := eventType
		wg.Add(1)

		go func() {
			defer wg.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					log.Printf("Stopping %s event polling...", eventType)
					return
				case <-ticker.C:
					lastID, err := sd.GetLastProcessedID(eventType)
					if err != nil {
						log.Printf("Error retrieving last processed ID for %s: %v", eventType, err)
						continue
					}

					events, err := sd.FetchNewEvents(eventType, lastID)
					if err != nil {
						log.Printf("Error fetching %s events: %v", eventType, err)
						continue
					}

					if len(events) == 0 {
						continue
					}

					var newLastID int64
					var matchCount int

					for _, event := range events {
						if ctx.Err() != nil {
							return
						}

						id := event["id"].(int64)
						if id > newLastID {
							newLastID = id
						}

						matches := sd.CheckEvent(ctx, event, eventType)
						for _, match := range matches {
							if err := sd.StoreMatch(match, event, eventType); err != nil {
								log.Printf("Error storing match: %v", err)
							}
							matchCount++
						}
					}

					if ctx.Err() == nil && newLastID > lastID {
						if err := sd.UpdateDetectorState(eventType, newLastID, matchCount); err != nil {
							log.Printf("Error updating state for %s: %v", eventType, err)
						}
					}
				}
			}
		}()

		log.Printf("Started polling for %s events", eventType)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		log.Println("Sigma detection stopping...")
		select {
		case <-done:
			log.Println("Sigma detection stopped gracefully")
		case <-time.After(5 * time.Second):
			log.Println("Warning: some Sigma detection goroutines didn't stop in time")
		}
	case <-done:
		log.Println("Sigma detection stopped")
	}

	sd.running = false
	return nil
}

// StopPolling closes the file watcher.
func (sd *Detector) StopPolling() {
	sd.running = false
	if sd.watcher != nil {
		sd.watcher.Close()
	}

	log.Println("Sigma detection polling stopped")
}

// FetchNewEvents fetches new events of a specific type since lastID
func (sd *Detector) FetchNewEvents(eventType string, lastID int64) ([]map[string]interface{}, error) {
	var query string

	switch eventType {
	case "exec":
		query = `
		SELECT
			e.id,
			e.exe_path as Image,
			e.cmdline as CommandLine,
			pe.exe_path as ParentImage,
			pe.cmdline as ParentCommandLine,
			e.username as Username,
			e.working_dir as CurrentDirectory,
			e.pid as ProcessId,
			pe.pid as ParentProcessId,
			e.signing_id as SigningID,
			e.team_id as TeamID,
			e.uid as UID,
			e.gid as GID
		FROM exec_events e
		LEFT JOIN exec_events pe ON e.ppid = pe.pid AND pe.id < e.id
		WHERE e.id > ?
		ORDER BY e.id ASC
		LIMIT 1000`
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	rows, err := sd.db.Query(query, lastID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []map[string]interface{}

	for rows.Next() {
		var (
			id                int64
			image             sql.NullString
			commandLine       sql.NullString
			parentImage       sql.NullString
			parentCommandLine sql.NullString
			username          sql.NullString
			currentDirectory  sql.NullString
			processId         sql.NullInt64
			parentProcessId   sql.NullInt64
			signingID         sql.NullString
			teamID            sql.NullString
			uid               sql.NullInt64
			gid               sql.NullInt64
		)

		err := rows.Scan(
			&id,
			&image,
			&commandLine,
			&parentImage,
			&parentCommandLine,
			&username,
			&currentDirectory,
			&processId,
			&parentProcessId,
			&signingID,
			&teamID,
			&uid,
			&gid,
		)
		if err != nil {
			return nil, err
		}

		event := map[string]interface{}{
			"id": id,
		}

		if image.Valid {
			event["Image"] = image.String
		}
		if commandLine.Valid {
			event["CommandLine"] = commandLine.String
		}
		if parentImage.Valid {
			event["ParentImage"] = parentImage.String
		}
		if parentCommandLine.Valid {
			event["ParentCommandLine"] = parentCommandLine.String
		}
		if username.Valid {
			event["Username"] = username.String
			event["User"] = username.String
		}
		if currentDirectory.Valid {
			event["CurrentDirectory"] = currentDirectory.String
		}
		if processId.Valid {
			event["ProcessId"] = processId.Int64
		}
		if parentProcessId.Valid {
			event["ParentProcessId"] = parentProcessId.Int64
		}
		if signingID.Valid {
			event["SigningID"] = signingID.String
		}
		if teamID.Valid {
			event["TeamID"] = teamID.String
		}
		if uid.Valid {
			event["UID"] = uid.Int64
		}
		if gid.Valid {
			event["GID"] = gid.Int64
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
