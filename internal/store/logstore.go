package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

const sqliteTime = "2006-01-02 15:04:05"

// LogEntry is one row of the telemetry log.
type LogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`     // error, warn, info
	Component string    `json:"component"` // deleter, hooks, gateway
	Message   string    `json:"message"`
}

// LogStore keeps background outcomes nobody waits on, with automatic cleanup.
type LogStore struct {
	db         *sql.DB
	mu         sync.Mutex
	maxEntries int // Max log entries to keep
	maxAgeDays int // Max age of logs in days
}

// NewLogStore creates a new log store with default limits.
func NewLogStore(db *sql.DB) *LogStore {
	return &LogStore{
		db:         db,
		maxEntries: 10000,
		maxAgeDays: 7,
	}
}

// Log writes a log entry.
func (s *LogStore) Log(level, component, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO system_logs (level, component, message) VALUES (?, ?, ?)",
		level, component, message,
	)
	return err
}

// LogError is a convenience method for error-level logs.
func (s *LogStore) LogError(component, message string) error {
	return s.Log("error", component, message)
}

// LogWarn is a convenience method for warn-level logs.
func (s *LogStore) LogWarn(component, message string) error {
	return s.Log("warn", component, message)
}

// LogInfo is a convenience method for info-level logs.
func (s *LogStore) LogInfo(component, message string) error {
	return s.Log("info", component, message)
}

// GetLogs retrieves recent logs, newest first, with optional filters.
func (s *LogStore) GetLogs(level, component string, limit int) ([]LogEntry, error) {
	query := "SELECT id, strftime('%Y-%m-%d %H:%M:%S', timestamp), level, component, message FROM system_logs WHERE 1=1"
	args := []interface{}{}

	if level != "" {
		query += " AND level = ?"
		args = append(args, level)
	}
	if component != "" {
		query += " AND component = ?"
		args = append(args, component)
	}

	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []LogEntry
	for rows.Next() {
		var entry LogEntry
		var ts string
		if err := rows.Scan(&entry.ID, &ts, &entry.Level, &entry.Component, &entry.Message); err != nil {
			return nil, err
		}
		entry.Timestamp, _ = time.Parse(sqliteTime, ts)
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// Cleanup removes old logs based on configured limits.
func (s *LogStore) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -s.maxAgeDays)
	_, err := s.db.Exec("DELETE FROM system_logs WHERE timestamp < ?", cutoff.Format(sqliteTime))
	if err != nil {
		return fmt.Errorf("cleanup by age: %w", err)
	}

	_, err = s.db.Exec(`
		DELETE FROM system_logs WHERE id NOT IN (
			SELECT id FROM system_logs ORDER BY timestamp DESC, id DESC LIMIT ?
		)
	`, s.maxEntries)
	if err != nil {
		return fmt.Errorf("cleanup by count: %w", err)
	}

	return nil
}

// Count returns the number of log entries.
func (s *LogStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM system_logs").Scan(&count)
	return count, err
}
