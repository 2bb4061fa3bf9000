package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sm "github.com/labib-r/portfolio-risk/service/models"
)

func serve(t *testing.T, sc *ServiceContext, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	GetRouter(sc).ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	rec := serve(t, newTestContext(), http.MethodGet, "/api/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res sm.ServiceResponse[pingResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "pong", res.Data.Message)
	assert.False(t, res.Data.History)
}

func TestPostAnalysis(t *testing.T) {
	sc := newTestContext()
	history := newMemoryHistory()
	sc.History = history

	body := `{"assets":["A","B"],"prices":[[100,50],[110,55],[121,60.5]],"weights":[0.3,0.3]}`
	rec := serve(t, sc, http.MethodPost, "/api/analysis", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res sm.ServiceResponse[sm.AnalysisResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Data)
	require.NotNil(t, res.Data.Portfolio)
	assert.Empty(t, res.Error)
	assert.InDelta(t, 25.2, res.Data.Portfolio.ExpectedReturn, 1e-9)
	assert.True(t, res.Data.Portfolio.WeightsNormalized)
	assert.InDelta(t, 0.6, res.Data.Portfolio.WeightSum, 1e-12)

	// the run can be read back
	rec = serve(t, sc, http.MethodGet, "/api/analysis/"+res.Data.RunId.String(), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var run sm.ServiceResponse[sm.AnalysisRunResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, res.Data.RunId, run.Data.Id)
	assert.Equal(t, "api", run.Data.Source)
}

func TestPostAnalysis_BadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `{"assets":`},
		{"too few rows", `{"assets":["A"],"prices":[[1],[2]],"weights":[1]}`},
		{"negative price", `{"assets":["A"],"prices":[[1],[-2],[3]],"weights":[1]}`},
		{"weight count", `{"assets":["A","B"],"prices":[[1,2],[2,3],[3,4]],"weights":[1]}`},
		{"duplicate asset", `{"assets":["A","A"],"prices":[[1,2],[2,3],[3,4]],"weights":[0.5,0.5]}`},
		{"no assets", `{"assets":[],"prices":[],"weights":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, newTestContext(), http.MethodPost, "/api/analysis", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var res sm.ServiceResponse[any]
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.NotEmpty(t, res.Error)
		})
	}
}

func TestGetAnalysisRun_Statuses(t *testing.T) {
	id := uuid.New().String()

	rec := serve(t, newTestContext(), http.MethodGet, "/api/analysis/"+id, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	sc := newTestContext()
	sc.History = newMemoryHistory()
	rec = serve(t, sc, http.MethodGet, "/api/analysis/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, sc, http.MethodGet, "/api/analysis/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
