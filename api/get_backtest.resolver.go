package api

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/google/uuid"
)

func (m ApiHandler) getBacktest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("could not parse backtest id: %w", err), c, 400)
		return
	}

	result, err := m.BacktestService.GetResult(id)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			returnErrorJsonCode(fmt.Errorf("backtest %s not found", id), c, 404)
			return
		}
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, backtestResponse{
		BacktestID:  result.BacktestID,
		EquityCurve: result.EquityCurve,
		Metrics:     result.Metrics,
	})
}
