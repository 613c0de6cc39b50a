package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sony/gobreaker"
)

// Client talks to the model scoring sidecar. One client is shared by every
// backtest; sessions are cached per model file so repeated runs against the
// same model skip the setup cost.
type Client struct {
	BaseURL    string
	HttpClient *http.Client

	breaker  *gobreaker.CircuitBreaker
	sessions *lru.Cache[string, *Session]
}

func NewClient(baseURL string) (*Client, error) {
	sessions, err := lru.New[string, *Session](16)
	if err != nil {
		return nil, err
	}

	settings := gobreaker.Settings{Name: "inference"}
	settings.Interval = 60 * time.Second
	settings.Timeout = 30 * time.Second
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	}

	return &Client{
		BaseURL:    baseURL,
		HttpClient: &http.Client{Timeout: 30 * time.Second},
		breaker:    gobreaker.NewCircuitBreaker(settings),
		sessions:   sessions,
	}, nil
}

// Session returns the scoring session for one model file. An empty path is a
// model with nothing to load; its session scores zero for every row.
func (c *Client) Session(filePath string) *Session {
	if session, ok := c.sessions.Get(filePath); ok {
		return session
	}
	session := &Session{client: c, filePath: filePath}
	c.sessions.Add(filePath, session)
	return session
}

type Session struct {
	client   *Client
	filePath string
}

type scoreRequest struct {
	ModelPath string      `json:"model_path"`
	Columns   []string    `json:"columns"`
	Rows      [][]float64 `json:"rows"`
}

type scoreResponse struct {
	Scores []float64 `json:"scores"`
	Error  string    `json:"error"`
}

// Score asks the sidecar for one score per feature row. Non-finite features
// are zeroed before serialization since JSON cannot carry them. Calls run
// through a circuit breaker, so a dead sidecar fails fast instead of holding
// every backtest on timeouts.
func (s *Session) Score(ctx context.Context, columns []string, rows [][]float64) ([]float64, error) {
	if s.filePath == "" {
		return make([]float64, len(rows)), nil
	}

	body, err := json.Marshal(scoreRequest{
		ModelPath: s.filePath,
		Columns:   columns,
		Rows:      sanitizeRows(rows),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize score request: %w", err)
	}

	result, err := s.client.breaker.Execute(func() (interface{}, error) {
		return s.client.post(ctx, body)
	})
	if err != nil {
		return nil, err
	}

	scores := result.([]float64)
	if len(scores) != len(rows) {
		return nil, fmt.Errorf("model returned %d scores for %d rows", len(scores), len(rows))
	}
	return scores, nil
}

func (c *Client) post(ctx context.Context, body []byte) ([]float64, error) {
	url := fmt.Sprintf("%s/v1/score", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}

	responseJson := scoreResponse{}
	if err := json.Unmarshal(responseBytes, &responseJson); err != nil {
		return nil, fmt.Errorf("received status code %d and failed to decode body: %w", response.StatusCode, err)
	}
	if response.StatusCode != http.StatusOK {
		if responseJson.Error != "" {
			return nil, fmt.Errorf("failed with status code %d: %s", response.StatusCode, responseJson.Error)
		}
		return nil, fmt.Errorf("failed with status code %d", response.StatusCode)
	}

	return responseJson.Scores, nil
}

func sanitizeRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			out[i][j] = v
		}
	}
	return out
}
