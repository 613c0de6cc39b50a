package api

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"time"

	"quantlab/internal/db/models/postgres/public/model"
	"quantlab/internal/logger"
	"quantlab/internal/repository"
	"quantlab/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ApiHandler carries every wired dependency. cmd/tool reaches services that
// have no HTTP route, so the fields stay exported.
type ApiHandler struct {
	Db                          *sql.DB
	BacktestService             service.BacktestService
	WorkloadService             service.WorkloadService
	StrategyConstructionService service.StrategyConstructionService
	IngestService               service.IngestService
	ApiRequestRepository        repository.ApiRequestRepository
}

func int64Ptr(i int64) *int64 {
	return &i
}
func int32Ptr(i int32) *int32 {
	return &i
}
func strPtr(s string) *string {
	return &s
}

func (m ApiHandler) StartApi(port int) error {
	return m.Router().Run(fmt.Sprintf(":%d", port))
}

// Router is separate from StartApi so the lambda adapter and tests can mount
// the same engine.
func (m ApiHandler) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to quantlab"})
	})
	router.POST("/backtest", m.backtest)
	router.GET("/backtests/:id", m.getBacktest)
	router.POST("/workloads", m.generateWorkload)
	router.POST("/constructStrategy", m.constructStrategy)

	return router
}

func returnErrorJson(err error, c *gin.Context) {
	logger.Error(err)
	c.AbortWithStatusJSON(500, gin.H{
		"error": err.Error(),
	})
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.Error(err)
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r responseBodyWriter) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (m ApiHandler) logRequestMiddleware(ctx *gin.Context) {
	w := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: ctx.Writer}
	ctx.Writer = w

	body, err := ctx.GetRawData()
	if err != nil {
		logger.Warn("failed to read request body: %v", err)
	}
	ctx.Request.Body = io.NopCloser(bytes.NewReader(body))

	start := time.Now().UTC()
	req, err := m.ApiRequestRepository.Add(m.Db, model.APIRequest{
		IPAddress:   strPtr(ctx.ClientIP()),
		Method:      ctx.Request.Method,
		Route:       ctx.Request.URL.Path,
		RequestBody: strPtr(string(body)),
		StartTs:     start,
	})
	if err != nil {
		logger.Error(err)
	}

	ctx.Next()

	if req != nil {
		req.DurationMs = int64Ptr(time.Since(start).Milliseconds())
		req.StatusCode = int32Ptr(int32(ctx.Writer.Status()))
		req.ResponseBody = strPtr(w.body.String())

		if err := m.ApiRequestRepository.Update(m.Db, *req); err != nil {
			logger.Error(err)
		}
	}
}
