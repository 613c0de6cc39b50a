package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type generateWorkloadRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

type generateWorkloadResponse struct {
	WorkloadID  uuid.UUID       `json:"workloadId"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Queries     json.RawMessage `json:"queries"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (m ApiHandler) generateWorkload(c *gin.Context) {
	var requestBody generateWorkloadRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}
	if requestBody.Count <= 0 {
		returnErrorJsonCode(fmt.Errorf("count must be positive, got %d", requestBody.Count), c, 400)
		return
	}
	if requestBody.Name == "" {
		returnErrorJsonCode(fmt.Errorf("name is required"), c, 400)
		return
	}

	workload, err := m.WorkloadService.Generate(c.Request.Context(), requestBody.Name, requestBody.Description, requestBody.Count)
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to generate workload: %w", err), c)
		return
	}

	c.JSON(200, generateWorkloadResponse{
		WorkloadID:  workload.WorkloadID,
		Name:        workload.WorkloadName,
		Description: workload.Description,
		Queries:     json.RawMessage(workload.Queries),
		CreatedAt:   workload.CreatedAt,
	})
}
