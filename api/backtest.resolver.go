package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quantlab/internal/domain"
	"quantlab/internal/logger"
	"quantlab/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type backtestRequest struct {
	StrategyID     *uuid.UUID     `json:"strategyId"`
	Definition     map[string]any `json:"definition"`
	StartDate      string         `json:"startDate"`
	EndDate        string         `json:"endDate"`
	InitialCapital float64        `json:"initialCapital"`
	SkipPersist    bool           `json:"skipPersist"`
}

type backtestResponse struct {
	BacktestID  uuid.UUID              `json:"backtestId"`
	EquityCurve []domain.EquityPoint   `json:"equityCurve"`
	Metrics     domain.BacktestMetrics `json:"metrics"`
}

// backtestErrorCode maps the error taxonomy onto response codes: strategy
// validation failures are the caller's fault, data gaps are unprocessable,
// everything else is ours.
func backtestErrorCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidStrategy):
		return 400
	case errors.Is(err, domain.ErrNoSimulatableResult):
		return 422
	default:
		return 500
	}
}

func (m ApiHandler) backtest(c *gin.Context) {
	profile, endProfile := domain.NewProfile()
	defer endProfile()
	ctx := context.WithValue(c.Request.Context(), domain.ContextProfileKey, profile)
	ctx = logger.ToContext(ctx, logger.New())

	var requestBody backtestRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	startDate, err := time.Parse("2006-01-02", requestBody.StartDate)
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("could not parse startDate: %w", err), c, 400)
		return
	}
	endDate, err := time.Parse("2006-01-02", requestBody.EndDate)
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("could not parse endDate: %w", err), c, 400)
		return
	}

	strategyID := uuid.New()
	if requestBody.StrategyID != nil {
		strategyID = *requestBody.StrategyID
	}

	result, err := m.BacktestService.Run(ctx, service.RunBacktestInput{
		StrategyID:     strategyID,
		Definition:     requestBody.Definition,
		Start:          startDate,
		End:            endDate,
		InitialCapital: decimal.NewFromFloat(requestBody.InitialCapital),
		SkipPersist:    requestBody.SkipPersist,
	})
	if err != nil {
		returnErrorJsonCode(err, c, backtestErrorCode(err))
		return
	}

	endProfile()
	if spans, err := profile.ToJsonBytes(); err == nil {
		logger.FromContext(ctx).Debugf("backtest %s stage timings: %s", result.BacktestID, spans)
	}

	c.JSON(200, backtestResponse{
		BacktestID:  result.BacktestID,
		EquityCurve: result.EquityCurve,
		Metrics:     result.Metrics,
	})
}
