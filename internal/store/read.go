package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ferrule-dev/ferrule/internal/diag"
	"github.com/ferrule-dev/ferrule/internal/pipeline"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is one row of the run listing.
type RunSummary struct {
	RunID      string
	Module     string
	ModuleHash string
	ConfigHash string
	CreatedAt  string
	Errors     int
	Warnings   int
}

// ReadRun reconstructs a recorded run: row, reports in emission order,
// and diagnostics in emission order.
func (s *Store) ReadRun(ctx context.Context, runID string) (*pipeline.Result, error) {
	res := &pipeline.Result{RunID: runID}

	err := s.db.QueryRowContext(ctx, `
		SELECT module, module_hash, config_hash, source
		FROM runs WHERE id = ?
	`, runID).Scan(&res.Module, &res.ModuleHash, &res.ConfigHash, &res.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}

	reports, err := s.readReports(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}
	res.Reports = reports

	diags, err := s.readDiagnostics(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}
	res.Diagnostics = diags

	return res, nil
}

// ListRuns returns run summaries for a module, newest first. An empty
// module lists every run.
func (s *Store) ListRuns(ctx context.Context, module string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.module, r.module_hash, r.config_hash, r.created_at,
		       COALESCE(SUM(CASE WHEN d.severity = 'error' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN d.severity = 'warning' THEN 1 ELSE 0 END), 0)
		FROM runs r
		LEFT JOIN diagnostics d ON d.run_id = r.id
		WHERE (? = '' OR r.module = ?)
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ?
	`, module, module, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var sum RunSummary
		if err := rows.Scan(&sum.RunID, &sum.Module, &sum.ModuleHash, &sum.ConfigHash,
			&sum.CreatedAt, &sum.Errors, &sum.Warnings); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Store) readReports(ctx context.Context, runID string) ([]pipeline.FunctionReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, included, pure, termination, panic_free, strategies, lifetimes
		FROM function_reports
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []pipeline.FunctionReport
	for rows.Next() {
		var (
			report                 pipeline.FunctionReport
			termination, panicFree string
			strategies, lifetimes  string
		)
		if err := rows.Scan(&report.Name, &report.Included, &report.Properties.Pure,
			&termination, &panicFree, &strategies, &lifetimes); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		report.Properties.Termination = parseConfidence(termination)
		report.Properties.PanicFree = parseConfidence(panicFree)

		if report.Strategies, err = unmarshalStrategies(strategies); err != nil {
			return nil, fmt.Errorf("report %s: %w", report.Name, err)
		}
		if report.Lifetimes, err = unmarshalLifetimes(lifetimes); err != nil {
			return nil, fmt.Errorf("report %s: %w", report.Name, err)
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

func (s *Store) readDiagnostics(ctx context.Context, runID string) ([]diag.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT severity, scope, code, message, construct
		FROM diagnostics
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	var out []diag.Diagnostic
	for rows.Next() {
		var d diag.Diagnostic
		var severity string
		if err := rows.Scan(&severity, &d.Scope, &d.Code, &d.Message, &d.Construct); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		d.Severity = parseSeverity(severity)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Versions reports the transpiler and IR versions a run was recorded
// with. Useful when replaying old runs against a newer binary.
func (s *Store) Versions(ctx context.Context, runID string) (transpiler, irVersion string, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT transpiler_version, ir_version FROM runs WHERE id = ?
	`, runID).Scan(&transpiler, &irVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("versions for %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return "", "", fmt.Errorf("versions for %s: %w", runID, err)
	}
	return transpiler, irVersion, nil
}
