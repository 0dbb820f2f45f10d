package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/google/uuid"

	"github.com/turtacn/scaffold-split/internal/domain/run"
	"github.com/turtacn/scaffold-split/internal/infrastructure/database/postgres"
	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/scaffold-split/pkg/errors"
)

const runColumns = `id, input, policy, seed, train_size, test_size, molecules, scaffolds,
	train_molecules, test_molecules, train_scaffolds, test_scaffolds,
	train_fraction, test_fraction, location, created_at`

// queryExecutor is satisfied by *sql.DB and *sql.Tx.
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

type postgresRunRepo struct {
	conn *postgres.Connection
	log  logging.Logger
	exec queryExecutor
}

// NewPostgresRunRepo returns a run.Repository backed by the split_runs table.
func NewPostgresRunRepo(conn *postgres.Connection, log logging.Logger) run.Repository {
	return &postgresRunRepo{conn: conn, log: log, exec: conn.DB()}
}

func (r *postgresRunRepo) Save(ctx context.Context, rec *run.Run) error {
	query := `INSERT INTO split_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.exec.ExecContext(ctx, query,
		rec.ID, rec.Input, rec.Policy, rec.Seed, rec.TrainSize, rec.TestSize,
		rec.Molecules, rec.Scaffolds, rec.TrainMolecules, rec.TestMolecules,
		rec.TrainScaffolds, rec.TestScaffolds, rec.TrainFraction, rec.TestFraction,
		rec.Location, rec.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save split run").
			WithDetailf("id=%s", rec.ID)
	}
	r.log.Debug("split run saved", logging.String("id", rec.ID.String()))
	return nil
}

func (r *postgresRunRepo) Get(ctx context.Context, id uuid.UUID) (*run.Run, error) {
	query := `SELECT ` + runColumns + ` FROM split_runs WHERE id = $1`
	rec, err := scanRun(r.exec.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("split run not found").WithDetailf("id=%s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load split run")
	}
	return rec, nil
}

func (r *postgresRunRepo) List(ctx context.Context, limit int) ([]*run.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + runColumns + ` FROM split_runs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.exec.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list split runs")
	}
	defer rows.Close()

	var out []*run.Run
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan split run")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list split runs")
	}
	return out, nil
}

func scanRun(s scanner) (*run.Run, error) {
	rec := &run.Run{}
	err := s.Scan(
		&rec.ID, &rec.Input, &rec.Policy, &rec.Seed, &rec.TrainSize, &rec.TestSize,
		&rec.Molecules, &rec.Scaffolds, &rec.TrainMolecules, &rec.TestMolecules,
		&rec.TrainScaffolds, &rec.TestScaffolds, &rec.TrainFraction, &rec.TestFraction,
		&rec.Location, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

//Personal.AI order the ending
