package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/olist/pkg/core"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, derivations, filter, status, row_counts, started_at, completed_at, error`

var _ core.Store = (*SQLiteStore)(nil)

// CreateRun records a new running run.
func (s *SQLiteStore) CreateRun(derivations []string, filter *core.Filter) (*core.Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	run := &core.Run{
		ID:          generateID(),
		Derivations: derivations,
		Filter:      filter,
		Status:      core.RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}
	if filter.IsZero() {
		run.Filter = nil
	}

	derivationsJSON, err := json.Marshal(derivations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode derivations: %w", err)
	}
	var filterJSON *string
	if run.Filter != nil {
		b, err := json.Marshal(run.Filter)
		if err != nil {
			return nil, fmt.Errorf("failed to encode filter: %w", err)
		}
		str := string(b)
		filterJSON = &str
	}

	s.logger.Debug("creating run", slog.String("run_id", run.ID), slog.Any("derivations", derivations))

	_, err = s.db.Exec(
		`INSERT INTO runs (id, derivations, filter, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, string(derivationsJSON), filterJSON, string(run.Status), run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*core.Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// CompleteRun sets the final status, row counts and error of a run.
func (s *SQLiteStore) CompleteRun(id string, status core.RunStatus, rowCounts map[string]int, errMsg string) error {
	if s.db == nil {
		return errNotOpened
	}

	var countsJSON *string
	if len(rowCounts) > 0 {
		b, err := json.Marshal(rowCounts)
		if err != nil {
			return fmt.Errorf("failed to encode row counts: %w", err)
		}
		str := string(b)
		countsJSON = &str
	}
	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	s.logger.Debug("completing run", slog.String("run_id", id), slog.String("status", string(status)))

	result, err := s.db.Exec(
		`UPDATE runs SET status = ?, row_counts = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(status), countsJSON, time.Now().UTC().Format(timeLayout), errorPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetLatestRun returns the most recently started run, or nil if there are none.
func (s *SQLiteStore) GetLatestRun() (*core.Run, error) {
	runs, err := s.ListRuns(1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all runs.
func (s *SQLiteStore) ListRuns(limit int) ([]*core.Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*core.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*core.Run, error) {
	var (
		run                         core.Run
		derivations, status         string
		startedAt                   string
		filter, rowCounts, complete sql.NullString
		errMsg                      sql.NullString
	)
	if err := row.Scan(&run.ID, &derivations, &filter, &status, &rowCounts, &startedAt, &complete, &errMsg); err != nil {
		return nil, err
	}

	run.Status = core.RunStatus(status)
	run.Error = errMsg.String
	if err := json.Unmarshal([]byte(derivations), &run.Derivations); err != nil {
		return nil, fmt.Errorf("invalid derivations for run %s: %w", run.ID, err)
	}
	if filter.Valid {
		run.Filter = &core.Filter{}
		if err := json.Unmarshal([]byte(filter.String), run.Filter); err != nil {
			return nil, fmt.Errorf("invalid filter for run %s: %w", run.ID, err)
		}
	}
	if rowCounts.Valid {
		if err := json.Unmarshal([]byte(rowCounts.String), &run.RowCounts); err != nil {
			return nil, fmt.Errorf("invalid row counts for run %s: %w", run.ID, err)
		}
	}

	var err error
	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("invalid started_at for run %s: %w", run.ID, err)
	}
	if complete.Valid {
		t, err := time.Parse(timeLayout, complete.String)
		if err != nil {
			return nil, fmt.Errorf("invalid completed_at for run %s: %w", run.ID, err)
		}
		run.CompletedAt = &t
	}
	return &run, nil
}
