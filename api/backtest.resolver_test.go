package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"quantlab/internal/db/models/postgres/public/model"
	"quantlab/internal/domain"
	"quantlab/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backtestServiceStub struct {
	runResult *service.RunBacktestResult
	runErr    error
	runCalls  int
	lastInput service.RunBacktestInput

	getResult *service.RunBacktestResult
	getErr    error
}

func (s *backtestServiceStub) Run(ctx context.Context, in service.RunBacktestInput) (*service.RunBacktestResult, error) {
	s.runCalls++
	s.lastInput = in
	if s.runErr != nil {
		return nil, s.runErr
	}
	return s.runResult, nil
}

func (s *backtestServiceStub) GetResult(id uuid.UUID) (*service.RunBacktestResult, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.getResult, nil
}

type workloadServiceStub struct {
	workload *model.Workload
	err      error
	calls    int
}

func (s *workloadServiceStub) Generate(ctx context.Context, name string, description string, count int) (*model.Workload, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.workload, nil
}

type constructionServiceStub struct {
	definition map[string]any
	err        error
}

func (s *constructionServiceStub) Construct(ctx context.Context, description string) (map[string]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.definition, nil
}

type apiRequestRepositoryStub struct {
	mu      sync.Mutex
	added   []model.APIRequest
	updated []model.APIRequest
}

func (s *apiRequestRepositoryStub) Add(db qrm.Queryable, ar model.APIRequest) (*model.APIRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ar.RequestID = uuid.New()
	s.added = append(s.added, ar)
	out := ar
	return &out, nil
}

func (s *apiRequestRepositoryStub) Update(db qrm.Executable, ar model.APIRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, ar)
	return nil
}

func (s *apiRequestRepositoryStub) ListSince(db qrm.Queryable, since time.Time) ([]model.APIRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.APIRequest{}, s.added...), nil
}

func newTestApi(backtest service.BacktestService, workload service.WorkloadService, construction service.StrategyConstructionService) (ApiHandler, *apiRequestRepositoryStub) {
	gin.SetMode(gin.TestMode)
	requests := &apiRequestRepositoryStub{}
	return ApiHandler{
		BacktestService:             backtest,
		WorkloadService:             workload,
		StrategyConstructionService: construction,
		ApiRequestRepository:        requests,
	}, requests
}

func doRequest(t *testing.T, handler ApiHandler, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.Router().ServeHTTP(w, req)
	return w
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func sampleDefinition() map[string]any {
	return map[string]any{
		"universe": map[string]any{"market": "KOSPI"},
		"factors": []any{
			map[string]any{"name": "rsi_14", "direction": "desc", "weight": 1.0},
		},
		"portfolio":   map[string]any{"top_n": 2, "weight_method": "equal"},
		"rebalancing": map[string]any{"frequency": "monthly"},
	}
}

func sampleResult() *service.RunBacktestResult {
	curve := []domain.EquityPoint{
		{Date: time.Date(2021, 1, 28, 0, 0, 0, 0, time.UTC), Equity: 1000},
		{Date: time.Date(2021, 2, 2, 0, 0, 0, 0, time.UTC), Equity: 1100},
	}
	return &service.RunBacktestResult{
		BacktestID:  uuid.New(),
		EquityCurve: curve,
		Metrics:     domain.BacktestMetrics{TotalReturn: 0.1},
	}
}

func Test_backtestResolver(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		stub := &backtestServiceStub{runResult: sampleResult()}
		handler, requests := newTestApi(stub, nil, nil)

		w := doRequest(t, handler, http.MethodPost, "/backtest", map[string]any{
			"definition":     sampleDefinition(),
			"startDate":      "2021-01-28",
			"endDate":        "2021-02-02",
			"initialCapital": 1000,
		})
		require.Equal(t, 200, w.Code, w.Body.String())

		body := parseBody(t, w)
		assert.Equal(t, stub.runResult.BacktestID.String(), body["backtestId"])
		curve, ok := body["equityCurve"].([]any)
		require.True(t, ok)
		require.Len(t, curve, 2)
		first, ok := curve[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "2021-01-28", first["date"])
		assert.Equal(t, 1000.0, first["equity"])

		assert.Equal(t, time.Date(2021, 1, 28, 0, 0, 0, 0, time.UTC), stub.lastInput.Start)
		assert.Equal(t, time.Date(2021, 2, 2, 0, 0, 0, 0, time.UTC), stub.lastInput.End)
		assert.True(t, stub.lastInput.InitialCapital.Equal(decimal.NewFromInt(1000)))
		assert.NotEqual(t, uuid.Nil, stub.lastInput.StrategyID)

		// the middleware should have logged the request and its outcome
		require.Len(t, requests.added, 1)
		assert.Equal(t, "POST", requests.added[0].Method)
		assert.Equal(t, "/backtest", requests.added[0].Route)
		require.Len(t, requests.updated, 1)
		require.NotNil(t, requests.updated[0].StatusCode)
		assert.Equal(t, int32(200), *requests.updated[0].StatusCode)
		require.NotNil(t, requests.updated[0].ResponseBody)
		assert.Contains(t, *requests.updated[0].ResponseBody, "backtestId")
	})

	t.Run("an explicit strategy id is passed through", func(t *testing.T) {
		stub := &backtestServiceStub{runResult: sampleResult()}
		handler, _ := newTestApi(stub, nil, nil)

		strategyID := uuid.New()
		w := doRequest(t, handler, http.MethodPost, "/backtest", map[string]any{
			"strategyId":     strategyID.String(),
			"definition":     sampleDefinition(),
			"startDate":      "2021-01-28",
			"endDate":        "2021-02-02",
			"initialCapital": 1000,
		})
		require.Equal(t, 200, w.Code, w.Body.String())
		assert.Equal(t, strategyID, stub.lastInput.StrategyID)
	})

	t.Run("unparseable dates fail before the engine runs", func(t *testing.T) {
		stub := &backtestServiceStub{runResult: sampleResult()}
		handler, _ := newTestApi(stub, nil, nil)

		w := doRequest(t, handler, http.MethodPost, "/backtest", map[string]any{
			"definition":     sampleDefinition(),
			"startDate":      "01/28/2021",
			"endDate":        "2021-02-02",
			"initialCapital": 1000,
		})
		assert.Equal(t, 400, w.Code)
		assert.Zero(t, stub.runCalls)
		assert.Contains(t, parseBody(t, w)["error"], "startDate")
	})

	t.Run("validation failures map to 400", func(t *testing.T) {
		stub := &backtestServiceStub{runErr: fmt.Errorf("engine: %w", domain.ErrUnsupportedFactor)}
		handler, _ := newTestApi(stub, nil, nil)

		w := doRequest(t, handler, http.MethodPost, "/backtest", map[string]any{
			"definition":     sampleDefinition(),
			"startDate":      "2021-01-28",
			"endDate":        "2021-02-02",
			"initialCapital": 1000,
		})
		assert.Equal(t, 400, w.Code)
	})

	t.Run("data gaps map to 422", func(t *testing.T) {
		stub := &backtestServiceStub{runErr: fmt.Errorf("engine: %w", domain.ErrEmptyUniverse)}
		handler, _ := newTestApi(stub, nil, nil)

		w := doRequest(t, handler, http.MethodPost, "/backtest", map[string]any{
			"definition":     sampleDefinition(),
			"startDate":      "2021-01-28",
			"endDate":        "2021-02-02",
			"initialCapital": 1000,
		})
		assert.Equal(t, 422, w.Code)
	})

	t.Run("unexpected failures map to 500", func(t *testing.T) {
		stub := &backtestServiceStub{runErr: errors.New("connection refused")}
		handler, requests := newTestApi(stub, nil, nil)

		w := doRequest(t, handler, http.MethodPost, "/backtest", map[string]any{
			"definition":     sampleDefinition(),
			"startDate":      "2021-01-28",
			"endDate":        "2021-02-02",
			"initialCapital": 1000,
		})
		assert.Equal(t, 500, w.Code)
		require.Len(t, requests.updated, 1)
		require.NotNil(t, requests.updated[0].StatusCode)
		assert.Equal(t, int32(500), *requests.updated[0].StatusCode)
	})
}

func Test_getBacktestResolver(t *testing.T) {
	t.Run("returns the stored result", func(t *testing.T) {
		stub := &backtestServiceStub{getResult: sampleResult()}
		handler, _ := newTestApi(stub, nil, nil)

		w := doRequest(t, handler, http.MethodGet, "/backtests/"+stub.getResult.BacktestID.String(), nil)
		require.Equal(t, 200, w.Code, w.Body.String())
		body := parseBody(t, w)
		assert.Equal(t, stub.getResult.BacktestID.String(), body["backtestId"])
	})

	t.Run("malformed ids map to 400", func(t *testing.T) {
		handler, _ := newTestApi(&backtestServiceStub{}, nil, nil)

		w := doRequest(t, handler, http.MethodGet, "/backtests/not-a-uuid", nil)
		assert.Equal(t, 400, w.Code)
	})

	t.Run("unknown ids map to 404", func(t *testing.T) {
		stub := &backtestServiceStub{getErr: fmt.Errorf("failed to get backtest result: %w", qrm.ErrNoRows)}
		handler, _ := newTestApi(stub, nil, nil)

		w := doRequest(t, handler, http.MethodGet, "/backtests/"+uuid.New().String(), nil)
		assert.Equal(t, 404, w.Code)
	})

	t.Run("storage failures map to 500", func(t *testing.T) {
		stub := &backtestServiceStub{getErr: errors.New("connection refused")}
		handler, _ := newTestApi(stub, nil, nil)

		w := doRequest(t, handler, http.MethodGet, "/backtests/"+uuid.New().String(), nil)
		assert.Equal(t, 500, w.Code)
	})
}
