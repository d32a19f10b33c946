package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-trademark-similarity/services"
)

// ScoreHandler scores and ranks one candidate set.
// Request Body: services.ScoreRequest
func (api *API) ScoreHandler(c *gin.Context) {
	var req services.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}

	if result := ValidateScoreRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	result, err := api.backend.Score(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		SendScoringError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExploreHandler scores a candidate set, then filters, orders and pages the ranking.
// Request Body: services.ExploreRequest
func (api *API) ExploreHandler(c *gin.Context) {
	var req services.ExploreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}

	if result := ValidateExploreRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	result, err := api.backend.Explore(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		SendScoringError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitBatchHandler starts a background batch scoring job.
// Request Body: services.BatchRequest
func (api *API) SubmitBatchHandler(c *gin.Context) {
	var req services.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}

	if result := ValidateBatchRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobID, err := api.backend.SubmitBatch(req)
	if err != nil {
		_ = c.Error(err)
		SendJobExecutionError(c, "batch scoring", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Batch scoring started",
		"job_id":  jobID,
		"queries": len(req.Queries),
	})
}

// GetWeightsHandler returns the active weight table
func (api *API) GetWeightsHandler(c *gin.Context) {
	weights := api.backend.Weights()
	c.JSON(http.StatusOK, gin.H{
		"weights": weights,
		"sum":     weights.Sum(),
	})
}
