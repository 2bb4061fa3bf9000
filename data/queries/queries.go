package queries

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed create/*.sql delete/*.sql insert/*.sql select/*.sql update/*.sql
var Files embed.FS

// ^^^ the go:embed directive is used to embed the files in the queries package
// meaning on compile time it will convert the files to binary data and embed it in the queries package

type CreateQueries struct {
	Tables string
}

type DeleteQueries struct {
	AnalysisRun              string
	PriceObservationsByRunId string
}

type InsertQueries struct {
	AnalysisRun string
}

type SelectQueries struct {
	AnalysisRunById          string
	PriceObservationsByRunId string
}

type UpdateQueries struct {
	AnalysisRun string
}

type QueryHelperStruct struct {
	Create CreateQueries
	Delete DeleteQueries
	Insert InsertQueries
	Select SelectQueries
	Update UpdateQueries
}

var QueryHelper = QueryHelperStruct{
	Create: CreateQueries{
		Tables: "create/tables.sql",
	},
	Delete: DeleteQueries{
		AnalysisRun:              "delete/analysis_run.sql",
		PriceObservationsByRunId: "delete/price_observations_by_run_id.sql",
	},
	Insert: InsertQueries{
		AnalysisRun: "insert/analysis_run.sql",
	},
	Select: SelectQueries{
		AnalysisRunById:          "select/analysis_run_by_id.sql",
		PriceObservationsByRunId: "select/price_observations_by_run_id.sql",
	},
	Update: UpdateQueries{
		AnalysisRun: "update/analysis_run.sql",
	},
}

func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}

// Statements splits a multi statement file on ';', dropping empty statements
func Statements(path string) []string {
	parts := strings.Split(Get(path), ";")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			res = append(res, s)
		}
	}
	return res
}
