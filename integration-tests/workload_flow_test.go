package integration_tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"quantlab/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_workloadFlow(t *testing.T) {
	db := newTestDb(t)

	require.NoError(t, cleanupResults(db))
	require.NoError(t, cleanupMarketData(db))
	require.NoError(t, seedDailyRows(db))

	gin.SetMode(gin.TestMode)
	router := newApiHandler(db).Router()

	type workloadPayload struct {
		WorkloadID uuid.UUID       `json:"workloadId"`
		Name       string          `json:"name"`
		Queries    json.RawMessage `json:"queries"`
	}
	response := workloadPayload{}
	err := hitEndpoint(router, http.MethodPost, "/workloads", map[string]any{
		"name":        "nightly-coverage",
		"description": "synthetic strategies over the seeded tape",
		"count":       20,
	}, &response)
	require.NoError(t, err)
	require.Equal(t, "nightly-coverage", response.Name)

	stored, err := repository.NewWorkloadRepository(db).Get(response.WorkloadID)
	require.NoError(t, err)
	require.Equal(t, "nightly-coverage", stored.WorkloadName)
	require.JSONEq(t, string(response.Queries), stored.Queries)

	// every stored statement has to execute as-is against the live schema
	queries := []repository.RenderedQuery{}
	require.NoError(t, json.Unmarshal([]byte(stored.Queries), &queries))
	require.GreaterOrEqual(t, len(queries), 20)
	for _, query := range queries {
		require.NotEmpty(t, query.SQL)
		rows, err := db.Query(query.SQL, query.Params...)
		require.NoError(t, err, "statement: %s", query.SQL)
		require.NoError(t, rows.Close())
	}
}
