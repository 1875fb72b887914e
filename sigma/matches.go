package sigma

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// SigmaMatch represents an event that matched a Sigma rule
type SigmaMatch struct {
	ID                int64     `json:"id"`
	EventID           int64     `json:"event_id"`
	EventType         string    `json:"event_type"`
	RuleID            string    `json:"rule_id"`
	RuleName          string    `json:"rule_name"`
	ProcessID         int64     `json:"process_id"`
	ProcessName       string    `json:"process_name"`
	CommandLine       string    `json:"command_line"`
	SigningID         string    `json:"signing_id"`
	ParentProcessName string    `json:"parent_process_name"`
	Username          string    `json:"username"`
	Timestamp         time.Time `json:"timestamp"`
	Severity          string    `json:"severity"`
	Status            string    `json:"status"`
	MatchDetails      []string  `json:"match_details"`
	EventData         string    `json:"event_data"`
	CreatedAt         time.Time `json:"created_at"`
}

// StoreMatch stores a rule match in the database
func (sd *Detector) StoreMatch(match MatchResult, event map[string]interface{}, eventType string) error {
	eventDataJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %v", err)
	}

	eventID, ok := event["id"].(int64)
	if !ok {
		if id, ok := event["id"].(int); ok {
			eventID = int64(id)
		} else {
			return fmt.Errorf("event has no valid ID")
		}
	}

	var processID int64
	if id, ok := event["ProcessId"].(int64); ok {
		processID = id
	} else if id, ok := event["ProcessId"].(int); ok {
		processID = int64(id)
	}

	var processName, commandLine, signingID, parentProcessName, username string
	if name, ok := event["Image"].(string); ok {
		processName = name
	}
	if cmd, ok := event["CommandLine"].(string); ok {
		commandLine = cmd
	}
	if id, ok := event["SigningID"].(string); ok {
		signingID = id
	}
	if name, ok := event["ParentImage"].(string); ok {
		parentProcessName = name
	}
	if user, ok := event["Username"].(string); ok {
		username = user
	} else if user, ok := event["User"].(string); ok {
		username = user
	}

	matchDetailsJSON, _ := json.Marshal(match.MatchDetails)

	severity := match.Rule.Level
	if severity == "" {
		severity = "medium"
	}

	query := `
	INSERT INTO sigma_matches (
		event_id,
		event_type,
		rule_id,
		rule_name,
		process_id,
		process_name,
		command_line,
		signing_id,
		parent_process_name,
		username,
		timestamp,
		severity,
		status,
		match_details,
		event_data,
		created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'), ?, 'new', ?, ?, datetime('now'))`

	_, err = sd.db.Exec(
		query,
		eventID,
		eventType,
		match.Rule.ID,
		match.Rule.Title,
		processID,
		processName,
		commandLine,
		signingID,
		parentProcessName,
		username,
		severity,
		string(matchDetailsJSON),
		string(eventDataJSON),
	)

	if err != nil {
		return fmt.Errorf("failed to insert match: %v", err)
	}

	log.Printf("Stored match for rule %s: %s", match.Rule.ID, match.Rule.Title)
	return nil
}

// GetMatches retrieves sigma matches from the database with filters
func (sd *Detector) GetMatches(limit int, offset int, filters map[string]string) ([]SigmaMatch, error) {
	query := `
    SELECT
        id, event_id, event_type, rule_id, rule_name,
        process_id, process_name, command_line, signing_id,
        parent_process_name, username,
        timestamp, severity, status, match_details, event_data, created_at
    FROM sigma_matches`

	whereClause := []string{}
	args := []interface{}{}

	if status, ok := filters["status"]; ok && status != "" && status != "all" {
		whereClause = append(whereClause, "status = ?")
		args = append(args, status)
	}

	if severity, ok := filters["severity"]; ok && severity != "" && severity != "all" {
		whereClause = append(whereClause, "severity = ?")
		args = append(args, severity)
	}

	if ruleID, ok := filters["rule"]; ok && ruleID != "" && ruleID != "all" {
		whereClause = append(whereClause, "rule_id = ?")
		args = append(args, ruleID)
	}

	if len(whereClause) > 0 {
		query += " WHERE " + strings.Join(whereClause, " AND ")
	}

	query += ` ORDER BY timestamp DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := sd.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []SigmaMatch

	for rows.Next() {
		var match SigmaMatch
		var matchDetailsJSON, eventDataJSON string

		err := rows.Scan(
			&match.ID, &match.EventID, &match.EventType, &match.RuleID, &match.RuleName,
			&match.ProcessID, &match.ProcessName, &match.CommandLine, &match.SigningID,
			&match.ParentProcessName, &match.Username,
			&match.Timestamp, &match.Severity, &match.Status, &matchDetailsJSON, &eventDataJSON, &match.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		json.Unmarshal([]byte(matchDetailsJSON), &match.MatchDetails)
		match.EventData = eventDataJSON

		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return matches, nil
}

// GetMatchStats retrieves statistics about sigma matches
func (sd *Detector) GetMatchStats() (map[string]interface{}, error) {
	var totalRules int
	err := sd.db.QueryRow("SELECT COUNT(*) FROM (SELECT DISTINCT rule_id FROM sigma_matches)").Scan(&totalRules)
	if err != nil {
		return nil, err
	}

	sevCounts := make(map[string]int)
	rows, err := sd.db.Query("SELECT severity, COUNT(*) FROM sigma_matches GROUP BY severity")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, err
		}
		sevCounts[severity] = count
	}

	statusCounts := make(map[string]int)
	rows, err = sd.db.Query("SELECT status, COUNT(*) FROM sigma_matches GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		statusCounts[status] = count
	}

	var last24h int
	yesterday := time.Now().Add(-24 * time.Hour).Format(time.RFC3339)
	err = sd.db.QueryRow("SELECT COUNT(*) FROM sigma_matches WHERE timestamp > ?", yesterday).Scan(&last24h)
	if err != nil {
		return nil, err
	}

	var last7d int
	lastWeek := time.Now().Add(-7 * 24 * time.Hour).Format(time.RFC3339)
	err = sd.db.QueryRow("SELECT COUNT(*) FROM sigma_matches WHERE timestamp > ?", lastWeek).Scan(&last7d)
	if err != nil {
		return nil, err
	}

	sd.mu.RLock()
	activeRules := len(sd.evaluators)
	sd.mu.RUnlock()

	return map[string]interface{}{
		"totalRules":     totalRules,
		"activeRules":    activeRules,
		"alertsLast24h":  last24h,
		"alertsLast7d":   last7d,
		"severityCounts": sevCounts,
		"statusCounts":   statusCounts,
	}, nil
}

// UpdateMatchStatus updates the triage status of a match
func (sd *Detector) UpdateMatchStatus(matchID int64, newStatus string) error {
	validStatuses := map[string]bool{
		"new":            true,
		"in_progress":    true,
		"resolved":       true,
		"false_positive": true,
	}

	if !validStatuses[newStatus] {
		return fmt.Errorf("invalid status: %s", newStatus)
	}

	_, err := sd.db.Exec(
		"UPDATE sigma_matches SET status = ? WHERE id = ?",
		newStatus, matchID,
	)

	return err
}
