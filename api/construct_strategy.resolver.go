package api

import (
	"errors"

	"quantlab/internal/domain"

	"github.com/gin-gonic/gin"
)

type constructStrategyRequest struct {
	UserInput string `json:"input"`
}

func (m ApiHandler) constructStrategy(c *gin.Context) {
	var requestBody constructStrategyRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	definition, err := m.StrategyConstructionService.Construct(c.Request.Context(), requestBody.UserInput)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStrategy) {
			returnErrorJsonCode(err, c, 400)
			return
		}
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, gin.H{"definition": definition})
}
