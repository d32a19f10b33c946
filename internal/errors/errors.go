package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrConfiguration is returned when the weight table or service configuration is unusable
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInvalidSignal marks a single signal value that could not be used
	ErrInvalidSignal = errors.New("invalid signal")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrJobNotCompleted is returned when a job result is requested before the job finished
	ErrJobNotCompleted = errors.New("job not completed")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// ConfigurationError represents a structural misconfiguration detected at startup.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Setting != "" {
		return fmt.Sprintf("configuration error in '%s': %s", e.Setting, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(setting, message string) *ConfigurationError {
	return &ConfigurationError{Setting: setting, Message: message}
}

// InvalidSignalWarning describes a signal value that was discarded during normalization.
// It is attached to the affected result rather than returned to the caller.
type InvalidSignalWarning struct {
	Signal string `json:"signal"`
	Reason string `json:"reason"`
}

func (e *InvalidSignalWarning) Error() string {
	return fmt.Sprintf("signal '%s' ignored: %s", e.Signal, e.Reason)
}

func (e *InvalidSignalWarning) Is(target error) bool {
	return target == ErrInvalidSignal
}

// NewInvalidSignalWarning creates a new InvalidSignalWarning
func NewInvalidSignalWarning(signal, reason string) *InvalidSignalWarning {
	return &InvalidSignalWarning{Signal: signal, Reason: reason}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// JobNotCompletedError is returned when a result is requested for an unfinished job
type JobNotCompletedError struct {
	JobID  string
	Status string
}

func (e *JobNotCompletedError) Error() string {
	return fmt.Sprintf("job with ID '%s' has no result yet (status: %s)", e.JobID, e.Status)
}

func (e *JobNotCompletedError) Is(target error) bool {
	return target == ErrJobNotCompleted
}

// NewJobNotCompletedError creates a new JobNotCompletedError
func NewJobNotCompletedError(jobID, status string) *JobNotCompletedError {
	return &JobNotCompletedError{JobID: jobID, Status: status}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
