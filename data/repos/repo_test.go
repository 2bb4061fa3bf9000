package repos

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	ex "github.com/labib-r/portfolio-risk/data/extensions"
	m "github.com/labib-r/portfolio-risk/data/models"
)

func Test_PriceTableFromObservations_RebuildsTable(t *testing.T) {
	runId := uuid.New()
	observations := []*m.PriceObservation{
		{RunId: runId, Step: 0, Label: "2025-01-02", AssetPosition: 0, Asset: "AAA", Price: 100},
		{RunId: runId, Step: 0, Label: "2025-01-02", AssetPosition: 1, Asset: "BBB", Price: 50},
		{RunId: runId, Step: 1, Label: "2025-01-03", AssetPosition: 0, Asset: "AAA", Price: 110},
		{RunId: runId, Step: 1, Label: "2025-01-03", AssetPosition: 1, Asset: "BBB", Price: 55},
	}

	table, err := priceTableFromObservations(observations)
	if err != nil {
		t.Fatalf("error rebuilding price table: %s", err)
	}

	ex.AssertAreEqual(t, "observations", 2, table.Len())
	ex.AssertAreEqual(t, "assets", 2, table.AssetCount())
	ex.AssertAreEqual(t, "second asset", m.AssetID("BBB"), table.Assets[1])
	ex.AssertAreEqual(t, "second label", "2025-01-03", table.Labels[1])
	ex.AssertAreEqual(t, "last price", 55.0, table.Prices[1][1])
}

func Test_PriceTableFromObservations_RejectsRaggedRows(t *testing.T) {
	observations := []*m.PriceObservation{
		{Step: 0, AssetPosition: 0, Asset: "AAA", Price: 100},
		{Step: 0, AssetPosition: 1, Asset: "BBB", Price: 50},
		{Step: 1, AssetPosition: 0, Asset: "AAA", Price: 110},
	}

	if _, err := priceTableFromObservations(observations); err == nil {
		t.Fatalf("expected an error for a step missing an asset")
	}
}

func Test_AnalysisRunRepo_CanInsertUpdateAndGet(t *testing.T) {
	ctx := context.Background()
	pg := getConnection(t, ctx)

	if err := pg.EnsureSchema(ctx); err != nil {
		t.Fatalf("error ensuring schema: %s", err)
	}

	run := m.AnalysisRun{
		Id:                  uuid.New(),
		Source:              "_TEST",
		AssetCount:          2,
		ObservationCount:    3,
		AnnualizationFactor: 252,
	}

	if err := pg.InsertAnalysisRun(ctx, &run); err != nil {
		t.Fatalf("error inserting analysis run: %s", err)
	}
	defer pg.deleteTestAnalysisRun(t, ctx, run.Id)

	if run.CreatedAt.IsZero() {
		t.Fatalf("created at for the analysis run failed to set properly")
	}

	table := &m.PriceTable{
		Assets: []m.AssetID{"AAA", "BBB"},
		Labels: []string{"d1", "d2", "d3"},
		Prices: [][]float64{{100, 50}, {110, 55}, {121, 60.5}},
	}

	ct, err := pg.InsertPriceTable(ctx, run.Id, table)
	if err != nil {
		t.Fatalf("error archiving price table: %s", err)
	}
	ex.AssertAreEqual(t, "rows archived", int64(6), ct)

	outcome := m.AnalysisOutcome{ExpectedReturn: 25.2, Volatility: 0, WeightsNormalized: false}
	if err := pg.UpdateAnalysisRunAsSuccess(ctx, run.Id, outcome); err != nil {
		t.Fatalf("error marking run as success: %s", err)
	}

	res, err := pg.GetAnalysisRun(ctx, run.Id)
	if err != nil {
		t.Fatalf("error getting analysis run: %s", err)
	}
	if res == nil {
		t.Fatalf("analysis run %s was not found", run.Id)
	}

	ex.AssertAreEqual(t, "source", run.Source, res.Source)
	ex.AssertAreEqual(t, "succeeded", true, res.Succeeded())
	ex.AssertAreEqual(t, "expected return", 25.2, res.ExpectedReturn.Float64)

	archived, err := pg.GetPriceTable(ctx, run.Id)
	if err != nil {
		t.Fatalf("error getting archived price table: %s", err)
	}
	ex.AssertAreEqual(t, "archived observations", 3, archived.Len())
	ex.AssertAreEqual(t, "archived price", 60.5, archived.Prices[2][1])
}

func Test_AnalysisRunRepo_FailureRequiresMessage(t *testing.T) {
	ctx := context.Background()
	pg := getConnection(t, ctx)

	if err := pg.UpdateAnalysisRunAsFailure(ctx, uuid.New(), "   "); err == nil {
		t.Fatalf("expected an error for an empty failure message")
	}
}

func Test_AnalysisRunRepo_MissingRunIsNil(t *testing.T) {
	ctx := context.Background()
	pg := getConnection(t, ctx)

	if err := pg.EnsureSchema(ctx); err != nil {
		t.Fatalf("error ensuring schema: %s", err)
	}

	res, err := pg.GetAnalysisRun(ctx, uuid.New())
	if err != nil {
		t.Fatalf("error getting missing analysis run: %s", err)
	}
	if res != nil {
		t.Fatalf("expected nil for a run that was never inserted")
	}
}

func getConnection(t *testing.T, ctx context.Context) *Postgres {
	t.Helper()
	_ = godotenv.Load("../../.env")

	connectionString := os.Getenv("DATABASE_URL")
	if connectionString == "" {
		t.Skip("DATABASE_URL is not set, skipping postgres tests")
	}

	res, err := GetPostgresConnection(ctx, connectionString)
	if err != nil {
		t.Fatalf("error getting postgres connection: %s", err)
	}

	t.Cleanup(func() {
		res.Close()
	})

	if err := res.Ping(ctx); err != nil {
		t.Skipf("postgres is not reachable, skipping: %s", err)
	}

	return res
}

func (pg *Postgres) deleteTestAnalysisRun(t *testing.T, ctx context.Context, id uuid.UUID) {
	t.Helper()
	if err := pg.DeleteAnalysisRun(ctx, id); err != nil {
		t.Errorf("cleanup analysis_run failed: %s", err)
	}
}
