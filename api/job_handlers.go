package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-trademark-similarity/internal/engine"
	internalErrors "github.com/gcbaptista/go-trademark-similarity/internal/errors"
	"github.com/gcbaptista/go-trademark-similarity/model"
)

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := api.backend.GetJob(jobID)
	if err != nil {
		SendJobNotFoundError(c, jobID)
		return
	}

	c.JSON(http.StatusOK, job)
}

// GetJobResultHandler returns the stored result of a completed batch job
func (api *API) GetJobResultHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	result, err := api.backend.GetJobResult(jobID)
	if err != nil {
		var notCompleted *internalErrors.JobNotCompletedError
		switch {
		case errors.Is(err, internalErrors.ErrJobNotFound):
			SendJobNotFoundError(c, jobID)
		case errors.As(err, &notCompleted):
			SendJobNotCompletedError(c, jobID, notCompleted.Status)
		default:
			SendInternalError(c, "get job result", err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListJobsHandler lists jobs, optionally filtered by label and status
func (api *API) ListJobsHandler(c *gin.Context) {
	label := c.Query("label")
	statusParam := c.Query("status")

	if result := ValidateJobStatus(statusParam); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	var statusFilter *model.JobStatus
	if statusParam != "" {
		status := model.JobStatus(statusParam)
		statusFilter = &status
	}

	jobs := api.backend.ListJobs(label, statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"label": label,
		"total": len(jobs),
	})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	if engineWithMetrics, ok := api.backend.(*engine.Engine); ok {
		c.JSON(http.StatusOK, gin.H{
			"metrics":          engineWithMetrics.GetJobMetrics(),
			"success_rate":     engineWithMetrics.GetJobSuccessRate(),
			"current_workload": engineWithMetrics.GetCurrentWorkload(),
		})
	} else {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Job metrics not supported by this backend"})
	}
}
