// Package jobs runs batch scoring requests in the background on a bounded
// worker pool and keeps their status, progress and results.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/go-trademark-similarity/internal/errors"
	"github.com/gcbaptista/go-trademark-similarity/model"
)

// DefaultRetention is how long finished jobs and their results are kept.
const DefaultRetention = 24 * time.Hour

// JobFunc does the work of one job. The returned value is stored as the job
// result when err is nil. ctx is cancelled when the manager stops.
type JobFunc func(ctx context.Context, job model.Job) (any, error)

// Observer is notified whenever a job reaches a terminal status.
type Observer interface {
	JobFinished(jobType model.JobType, status model.JobStatus, duration time.Duration)
}

// Manager handles background job execution and tracking
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*model.Job
	results  map[string]any
	workers  chan struct{} // Limits concurrent jobs
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	metrics  *JobMetrics
	logger   *slog.Logger
	observer Observer
	stopOnce sync.Once
}

// NewManager creates a new job manager with specified worker count
func NewManager(maxWorkers int, logger *slog.Logger) *Manager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:    make(map[string]*model.Job),
		results: make(map[string]any),
		workers: make(chan struct{}, maxWorkers),
		ctx:     ctx,
		cancel:  cancel,
		metrics: NewJobMetrics(),
		logger:  logger.With("component", "jobs"),
	}
}

// SetObserver registers an observer for finished jobs. Call before Start.
func (m *Manager) SetObserver(observer Observer) {
	m.observer = observer
}

// Start begins background cleanup of finished jobs
func (m *Manager) Start() {
	m.logger.Info("job manager started", "max_workers", cap(m.workers))
	go m.cleanupRoutine()
}

// Stop cancels running jobs and waits for every worker to return
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		m.cancel()
		m.mu.Unlock()
		m.wg.Wait()
		m.logger.Info("job manager stopped")
	})
}

// CreateJob creates a new pending job and returns its ID
func (m *Manager) CreateJob(jobType model.JobType, label string, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		Label:     label,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.jobs[job.ID] = job
	m.metrics.RecordJobCreated(jobType)
	m.logger.Debug("job created", "job_id", job.ID, "type", job.Type, "label", label)
	return job.ID
}

// GetJob retrieves a copy of a job by ID
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns jobs with the given label (all jobs when label is empty),
// optionally filtered by status
func (m *Manager) ListJobs(label string, status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0)
	for _, job := range m.jobs {
		if label != "" && job.Label != label {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		result = append(result, copyJob(job))
	}
	return result
}

// GetJobResult returns the stored result of a completed job
func (m *Manager) GetJobResult(jobID string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusCompleted {
		return nil, errors.NewJobNotCompletedError(jobID, string(job.Status))
	}
	return m.results[jobID], nil
}

// ExecuteJob schedules a pending job. It returns immediately; the job stays
// pending until a worker slot frees up.
func (m *Manager) ExecuteJob(jobID string, jobFunc JobFunc) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusPending {
		status := job.Status
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, status)
	}
	// Stop cancels under m.mu, so the check and Add cannot interleave with its Wait.
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		m.updateJobStatus(jobID, model.JobStatusCancelled, "job manager shutting down")
		return fmt.Errorf("job manager is shutting down")
	}
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(jobID, jobFunc)
	return nil
}

func (m *Manager) run(jobID string, jobFunc JobFunc) {
	defer m.wg.Done()

	select {
	case m.workers <- struct{}{}:
	case <-m.ctx.Done():
		m.finish(jobID, model.JobStatusCancelled, "job manager shutting down", 0, nil)
		return
	}
	defer func() { <-m.workers }()

	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return
	}
	now := time.Now()
	job.StartedAt = &now
	m.metrics.RecordJobStatusChange(job.Status, model.JobStatusRunning)
	job.Status = model.JobStatusRunning
	snapshot := *copyJob(job)
	m.mu.Unlock()

	startTime := time.Now()
	result, err := jobFunc(m.ctx, snapshot)
	executionTime := time.Since(startTime)

	switch {
	case err != nil && m.ctx.Err() != nil:
		m.finish(jobID, model.JobStatusCancelled, err.Error(), executionTime, nil)
		m.logger.Warn("job cancelled", "job_id", jobID, "duration", executionTime)
	case err != nil:
		m.finish(jobID, model.JobStatusFailed, err.Error(), executionTime, nil)
		m.logger.Error("job failed", "job_id", jobID, "duration", executionTime, "error", err)
	default:
		m.finish(jobID, model.JobStatusCompleted, "", executionTime, result)
		m.logger.Info("job completed", "job_id", jobID, "type", snapshot.Type, "duration", executionTime)
	}
}

// finish moves a job to a terminal status and stores its result.
func (m *Manager) finish(jobID string, status model.JobStatus, errorMsg string, executionTime time.Duration, result any) {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if exists && status == model.JobStatusCompleted {
		m.results[jobID] = result
	}
	m.mu.Unlock()
	if !exists {
		return
	}

	m.updateJobStatus(jobID, status, errorMsg)

	switch status {
	case model.JobStatusCompleted:
		m.metrics.RecordJobCompleted(job.Type, executionTime)
	case model.JobStatusFailed:
		m.metrics.RecordJobFailed(job.Type)
	case model.JobStatusCancelled:
		m.metrics.RecordJobCancelled(job.Type)
	}

	if m.observer != nil {
		m.observer.JobFinished(job.Type, status, executionTime)
	}
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}

	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

// updateJobStatus updates the status of a job (internal method)
func (m *Manager) updateJobStatus(jobID string, status model.JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	oldStatus := job.Status
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}

	if status.IsTerminal() {
		now := time.Now()
		job.CompletedAt = &now
	}

	m.metrics.RecordJobStatusChange(oldStatus, status)
}

// cleanupRoutine runs periodic job cleanup
func (m *Manager) cleanupRoutine() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(DefaultRetention)
		case <-m.ctx.Done():
			return
		}
	}
}

// CleanupOldJobs removes finished jobs, and their results, older than maxAge
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0

	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			delete(m.results, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.Info("cleaned up old jobs", "count", cleaned)
	}
	return cleaned
}

// GetMetrics returns current job performance metrics
func (m *Manager) GetMetrics() JobMetricsData {
	return m.metrics.GetMetrics()
}

// GetJobSuccessRate returns the overall job success rate
func (m *Manager) GetJobSuccessRate() float64 {
	return m.metrics.GetSuccessRate()
}

// GetCurrentWorkload returns the number of pending and running jobs
func (m *Manager) GetCurrentWorkload() int64 {
	return m.metrics.GetCurrentWorkload()
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	if job.Metadata != nil {
		jobCopy.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			jobCopy.Metadata[k] = v
		}
	}
	return &jobCopy
}
