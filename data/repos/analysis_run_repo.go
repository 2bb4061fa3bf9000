package repos

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
	"github.com/jackc/pgx/v5"

	m "github.com/labib-r/portfolio-risk/data/models"
	q "github.com/labib-r/portfolio-risk/data/queries"
)

func (pg *Postgres) InsertAnalysisRun(ctx context.Context, run *m.AnalysisRun) error {
	sql := q.Get(q.QueryHelper.Insert.AnalysisRun)
	args := pgx.NamedArgs{
		"id":                   run.Id,
		"source":               run.Source,
		"asset_count":          run.AssetCount,
		"observation_count":    run.ObservationCount,
		"annualization_factor": run.AnnualizationFactor,
	}

	if err := pg.db.QueryRow(ctx, sql, args).Scan(&run.CreatedAt); err != nil {
		return fmt.Errorf("error inserting analysis run: %w", err)
	}

	return nil
}

// GetAnalysisRun returns nil without an error when the run does not exist
func (pg *Postgres) GetAnalysisRun(ctx context.Context, id uuid.UUID) (*m.AnalysisRun, error) {
	sql := q.Get(q.QueryHelper.Select.AnalysisRunById)
	args := pgx.NamedArgs{"id": id}

	res, err := Query[m.AnalysisRun](ctx, pg, sql, args)
	if err != nil {
		return nil, fmt.Errorf("unable to query analysis run (%s): %w", id, err)
	}

	if len(res) == 0 {
		return nil, nil
	}

	return res[0], nil
}

func (pg *Postgres) UpdateAnalysisRunAsFailure(ctx context.Context, id uuid.UUID, errorMessage string) error {
	cleanErrorMessage := strings.TrimSpace(errorMessage)
	if cleanErrorMessage == "" {
		return fmt.Errorf("error message is required if analysis run is failing, occured in %s", id)
	}

	return pg.updateAnalysisRun(ctx, pgx.NamedArgs{
		"id":                 id,
		"expected_return":    null.Float{},
		"volatility":         null.Float{},
		"weights_normalized": null.Bool{},
		"error_message":      null.StringFrom(cleanErrorMessage),
	})
}

func (pg *Postgres) UpdateAnalysisRunAsSuccess(ctx context.Context, id uuid.UUID, outcome m.AnalysisOutcome) error {
	return pg.updateAnalysisRun(ctx, pgx.NamedArgs{
		"id":                 id,
		"expected_return":    null.FloatFrom(outcome.ExpectedReturn),
		"volatility":         null.FloatFrom(outcome.Volatility),
		"weights_normalized": null.BoolFrom(outcome.WeightsNormalized),
		"error_message":      null.String{},
	})
}

func (pg *Postgres) updateAnalysisRun(ctx context.Context, args pgx.NamedArgs) error {
	sql := q.Get(q.QueryHelper.Update.AnalysisRun)
	tag, err := pg.db.Exec(ctx, sql, args)
	if err != nil {
		return fmt.Errorf("error updating analysis run: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("error updating analysis run %v, %d rows affected", args["id"], tag.RowsAffected())
	}
	return nil
}

// DeleteAnalysisRun removes a run and its archived prices
func (pg *Postgres) DeleteAnalysisRun(ctx context.Context, id uuid.UUID) error {
	tx, err := pg.GetTransaction(ctx)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) // this will kick off if we return before committing

	args := pgx.NamedArgs{"id": id, "run_id": id}
	if _, err := tx.Exec(ctx, q.Get(q.QueryHelper.Delete.PriceObservationsByRunId), args); err != nil {
		return fmt.Errorf("error deleting price observations for run %s: %w", id, err)
	}
	if _, err := tx.Exec(ctx, q.Get(q.QueryHelper.Delete.AnalysisRun), args); err != nil {
		return fmt.Errorf("error deleting analysis run %s: %w", id, err)
	}

	return tx.Commit(ctx)
}
