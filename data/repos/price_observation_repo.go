package repos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	m "github.com/labib-r/portfolio-risk/data/models"
	q "github.com/labib-r/portfolio-risk/data/queries"
)

const priceObservationTable = "price_observation"

// InsertPriceTable archives every cell of the table against the run
func (pg *Postgres) InsertPriceTable(ctx context.Context, runId uuid.UUID, table *m.PriceTable) (int64, error) {
	columns := []string{"run_id", "step", "label", "asset_position", "asset", "price"}

	entries := make([][]any, 0, table.Len()*table.AssetCount())
	for t, row := range table.Prices {
		label := ""
		if t < len(table.Labels) {
			label = table.Labels[t]
		}
		for j, price := range row {
			entries = append(entries, []any{
				runId, int32(t), label, int32(j), string(table.Assets[j]), price,
			})
		}
	}

	ct, err := pg.BulkInsert(ctx, priceObservationTable, columns, entries, nil)
	if err != nil {
		return 0, fmt.Errorf("error archiving price table for run %s: %w", runId, err)
	}

	return ct, nil
}

// GetPriceTable rebuilds the archived table of a run, nil when nothing was archived
func (pg *Postgres) GetPriceTable(ctx context.Context, runId uuid.UUID) (*m.PriceTable, error) {
	sql := q.Get(q.QueryHelper.Select.PriceObservationsByRunId)
	args := pgx.NamedArgs{"run_id": runId}

	observations, err := Query[m.PriceObservation](ctx, pg, sql, args)
	if err != nil {
		return nil, fmt.Errorf("unable to query price observations (%s): %w", runId, err)
	}

	if len(observations) == 0 {
		return nil, nil
	}

	return priceTableFromObservations(observations)
}

// priceTableFromObservations expects rows ordered by step then asset position
func priceTableFromObservations(observations []*m.PriceObservation) (*m.PriceTable, error) {
	res := &m.PriceTable{}

	for _, o := range observations {
		if o.Step == 0 {
			if int(o.AssetPosition) != len(res.Assets) {
				return nil, fmt.Errorf("asset position %d out of order in first step", o.AssetPosition)
			}
			res.Assets = append(res.Assets, m.AssetID(o.Asset))
		}

		if int(o.Step) == len(res.Prices) {
			res.Prices = append(res.Prices, make([]float64, 0, len(res.Assets)))
			res.Labels = append(res.Labels, o.Label)
		}

		step := int(o.Step)
		if step != len(res.Prices)-1 {
			return nil, fmt.Errorf("step %d out of order", o.Step)
		}
		res.Prices[step] = append(res.Prices[step], o.Price)
	}

	if err := res.Validate(); err != nil {
		return nil, err
	}

	return res, nil
}
