package store

import (
	"context"
	"fmt"

	"github.com/ferrule-dev/ferrule/internal/ir"
	"github.com/ferrule-dev/ferrule/internal/pipeline"
)

// WriteRun records a completed run: the run row, every function report,
// and the diagnostic union, atomically in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - replaying the same
// run ID is silently ignored.
func (s *Store) WriteRun(ctx context.Context, res *pipeline.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, module, module_hash, config_hash, source, transpiler_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		res.RunID,
		res.Module,
		res.ModuleHash,
		res.ConfigHash,
		res.Source,
		ir.TranspilerVersion,
		ir.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: rows affected: %w", err)
	}
	if affected == 0 {
		// Run already recorded; reports and diagnostics came with it.
		return tx.Commit()
	}

	for i, report := range res.Reports {
		strategies, err := marshalStrategies(report.Strategies)
		if err != nil {
			return fmt.Errorf("write run: function %s: %w", report.Name, err)
		}
		lifetimes, err := marshalLifetimes(report.Lifetimes)
		if err != nil {
			return fmt.Errorf("write run: function %s: %w", report.Name, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO function_reports
			(run_id, position, name, included, pure, termination, panic_free, strategies, lifetimes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			res.RunID,
			i,
			report.Name,
			report.Included,
			report.Properties.Pure,
			report.Properties.Termination.String(),
			report.Properties.PanicFree.String(),
			strategies,
			lifetimes,
		)
		if err != nil {
			return fmt.Errorf("write run: function %s: %w", report.Name, err)
		}
	}

	for i, d := range res.Diagnostics {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO diagnostics
			(run_id, position, severity, scope, code, message, construct)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			res.RunID,
			i,
			d.Severity.String(),
			d.Scope,
			d.Code,
			d.Message,
			d.Construct,
		)
		if err != nil {
			return fmt.Errorf("write run: diagnostic %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}
