package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

// Table names for run tracking.
const (
	runsTable        = "repotrend_runs"
	jobOutcomesTable = "repotrend_job_outcomes"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, GetRunDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{jobOutcomesTable, getCreateJobOutcomesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for repotrend_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				command VARCHAR(32) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6) NULL,
				run_duration_ms BIGINT NULL,
				total_repos INT NULL,
				success_count INT NULL,
				skipped_count INT NULL,
				error_count INT NULL,
				config_params TEXT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				command TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ NULL,
				run_duration_ms BIGINT NULL,
				total_repos INTEGER NULL,
				success_count INTEGER NULL,
				skipped_count INTEGER NULL,
				error_count INTEGER NULL,
				config_params TEXT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				command TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT NULL,
				run_duration_ms INTEGER NULL,
				total_repos INTEGER NULL,
				success_count INTEGER NULL,
				skipped_count INTEGER NULL,
				error_count INTEGER NULL,
				config_params TEXT NULL
			);
		`, quotedTableName)
	}
}

// getCreateJobOutcomesQuery returns the CREATE TABLE query for repotrend_job_outcomes.
func getCreateJobOutcomesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(jobOutcomesTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				repository VARCHAR(255) NOT NULL,
				status VARCHAR(16) NOT NULL,
				reason VARCHAR(64) NOT NULL,
				message TEXT NOT NULL,
				stars INT NOT NULL,
				forks INT NOT NULL,
				issues INT NOT NULL,
				pull_requests INT NOT NULL,
				duration_ms BIGINT NOT NULL,
				recorded_at DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, repository)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				repository TEXT NOT NULL,
				status TEXT NOT NULL,
				reason TEXT NOT NULL,
				message TEXT NOT NULL,
				stars INTEGER NOT NULL,
				forks INTEGER NOT NULL,
				issues INTEGER NOT NULL,
				pull_requests INTEGER NOT NULL,
				duration_ms BIGINT NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, repository)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				repository TEXT NOT NULL,
				status TEXT NOT NULL,
				reason TEXT NOT NULL,
				message TEXT NOT NULL,
				stars INTEGER NOT NULL,
				forks INTEGER NOT NULL,
				issues INTEGER NOT NULL,
				pull_requests INTEGER NOT NULL,
				duration_ms INTEGER NOT NULL,
				recorded_at TEXT NOT NULL,
				PRIMARY KEY (run_id, repository)
			);
		`, quotedTableName)
	}
}

// disabled reports whether the store is a no-op.
func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(command string, startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (command, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, command, formatTime(startTime, rs.backend), string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (command, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, command, formatTime(startTime, rs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error {
	if rs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_repos = %s,
		success_count = %s, skipped_count = %s, error_count = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3),
		placeholder(rs.backend, 4), placeholder(rs.backend, 5), placeholder(rs.backend, 6),
		placeholder(rs.backend, 7))

	result, err := rs.db.Exec(query,
		formatTime(endTime, rs.backend), summary.Duration.Milliseconds(), summary.Total,
		summary.Success, summary.Skipped, summary.Errors, runID)
	if err != nil {
		return fmt.Errorf("failed to update run %d: %w", runID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %d does not exist", runID)
	}
	return nil
}

// RecordOutcome stores the outcome of one repository job.
func (rs *RunStoreImpl) RecordOutcome(runID int64, outcome schema.JobOutcome, recordedAt time.Time) error {
	if rs.disabled() {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, repository, status, reason, message,
		                stars, forks, issues, pull_requests, duration_ms, recorded_at)
		VALUES (%s)
	`, quoteTableName(jobOutcomesTable, rs.backend), placeholderList(rs.backend, 11))

	_, err := rs.db.Exec(query,
		runID, outcome.Repository.FullName(), string(outcome.Status), outcome.Reason, outcome.Message,
		outcome.Totals.Stars, outcome.Totals.Forks, outcome.Totals.Issues, outcome.Totals.PullRequests,
		outcome.Duration.Milliseconds(), formatTime(recordedAt, rs.backend))
	if err != nil {
		return fmt.Errorf("failed to insert job outcome: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// scanTime reads a timestamp column that SQLite keeps as text.
func (rs *RunStoreImpl) scanTime(row interface{ Scan(...any) error }, dest *time.Time) error {
	if rs.backend != schema.SQLiteBackend {
		return row.Scan(dest)
	}
	var raw string
	if err := row.Scan(&raw); err != nil {
		return err
	}
	t, err := parseStoredTime(raw)
	if err != nil {
		return fmt.Errorf("failed to parse time %q: %w", raw, err)
	}
	*dest = t
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.disabled() {
		return status, nil
	}

	runs := quoteTableName(runsTable, rs.backend)
	outcomes := quoteTableName(jobOutcomesTable, rs.backend)

	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT MAX(run_id) FROM %s", runs)).Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		lastQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs)
		if err := rs.scanTime(rs.db.QueryRow(lastQuery), &status.LastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}

		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)
		if err := rs.scanTime(rs.db.QueryRow(oldestQuery), &status.OldestRunTime); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		errorsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status = %s", outcomes, placeholder(rs.backend, 1))
		if err := rs.db.QueryRow(errorsQuery, string(schema.ErrorOutcome)).Scan(&status.TotalJobErrors); err != nil {
			return status, fmt.Errorf("failed to count job errors: %w", err)
		}
	}

	for _, table := range []string{runsTable, jobOutcomesTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, command, start_time, end_time, run_duration_ms, total_repos,
		success_count, skipped_count, error_count, config_params FROM %s ORDER BY run_id`,
		quoteTableName(runsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startStr string
			var endStr *string
			if err := rows.Scan(&record.RunID, &record.Command, &startStr, &endStr, &record.DurationMs,
				&record.TotalRepos, &record.SuccessCount, &record.SkippedCount, &record.ErrorCount,
				&record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = parseStoredTime(startStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endStr != nil {
				endTime, err := parseStoredTime(*endStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.Command, &record.StartTime, &record.EndTime, &record.DurationMs,
				&record.TotalRepos, &record.SuccessCount, &record.SkippedCount, &record.ErrorCount,
				&record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllOutcomes retrieves all job outcomes from the store.
func (rs *RunStoreImpl) GetAllOutcomes() ([]schema.OutcomeRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, repository, status, reason, message, stars, forks, issues,
		pull_requests, duration_ms, recorded_at FROM %s ORDER BY run_id, repository`,
		quoteTableName(jobOutcomesTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query job outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.OutcomeRecord
	for rows.Next() {
		var record schema.OutcomeRecord
		dest := []any{&record.RunID, &record.Repository, &record.Status, &record.Reason, &record.Message,
			&record.Stars, &record.Forks, &record.Issues, &record.PullRequests, &record.DurationMs}

		if rs.backend == schema.SQLiteBackend {
			var recordedStr string
			if err := rows.Scan(append(dest, &recordedStr)...); err != nil {
				return nil, fmt.Errorf("failed to scan job outcome: %w", err)
			}
			if record.RecordedAt, err = parseStoredTime(recordedStr); err != nil {
				return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
			}
		} else if err := rows.Scan(append(dest, &record.RecordedAt)...); err != nil {
			return nil, fmt.Errorf("failed to scan job outcome: %w", err)
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job outcomes: %w", err)
	}
	return results, nil
}
