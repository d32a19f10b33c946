// Package audit keeps an operational trail of scoring requests and summarizes it
// into a dashboard. Only aggregates are recorded, never candidate data.
package audit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gcbaptista/go-trademark-similarity/model"
)

const (
	maxEventsToKeep = 10000 // Keep last 10k events
	queueSize       = 256
	dashboardWindow = 24 * time.Hour
)

type request struct {
	event *model.ScoreEvent
	done  chan struct{} // flush marker when event is nil
}

// Service records score events asynchronously and builds the audit dashboard.
type Service struct {
	store   *Store
	queue   chan request
	logger  *slog.Logger
	now     func() time.Time
	wg      sync.WaitGroup
	closeMu sync.RWMutex
	closed  bool
}

// NewService opens the audit store at path and starts the background writer.
func NewService(path string, logger *slog.Logger) (*Service, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		store:  store,
		queue:  make(chan request, queueSize),
		logger: logger.With("component", "audit"),
		now:    time.Now,
	}
	s.wg.Add(1)
	go s.writeLoop()
	return s, nil
}

// Record queues an event for storage. It never blocks the caller: when the
// queue is full the event is dropped and logged.
func (s *Service) Record(event model.ScoreEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}

	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return fmt.Errorf("audit service is closed")
	}

	select {
	case s.queue <- request{event: &event}:
		return nil
	default:
		s.logger.Warn("audit queue full, dropping event", "query_id", event.QueryID, "kind", event.Kind)
		return fmt.Errorf("audit queue full")
	}
}

// Flush blocks until every event queued before the call has been written.
func (s *Service) Flush() {
	s.closeMu.RLock()
	if s.closed {
		s.closeMu.RUnlock()
		return
	}
	done := make(chan struct{})
	s.queue <- request{done: done}
	s.closeMu.RUnlock()
	<-done
}

// Close drains the queue and closes the store.
func (s *Service) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.closeMu.Unlock()

	s.wg.Wait()
	return s.store.Close()
}

func (s *Service) writeLoop() {
	defer s.wg.Done()
	for req := range s.queue {
		if req.event == nil {
			close(req.done)
			continue
		}
		if err := s.store.Append(*req.event, maxEventsToKeep); err != nil {
			s.logger.Error("failed to store score event", "query_id", req.event.QueryID, "error", err)
		}
	}
}

// Dashboard summarizes the last 24 hours of events.
func (s *Service) Dashboard() (model.AuditDashboard, error) {
	now := s.now()
	current := now.Add(-dashboardWindow)
	previous := current.Add(-dashboardWindow)

	events, err := s.store.Since(previous)
	if err != nil {
		return model.AuditDashboard{}, fmt.Errorf("failed to read audit events: %w", err)
	}
	stored, err := s.store.Count()
	if err != nil {
		return model.AuditDashboard{}, fmt.Errorf("failed to count audit events: %w", err)
	}

	last24h := filterEventsByTimeRange(events, current, now)
	prev24h := filterEventsByTimeRange(events, previous, current)

	return model.AuditDashboard{
		TotalRequests:         len(last24h),
		RequestsChangePercent: calculateChangePercent(len(last24h), len(prev24h)),
		CandidatesScored:      countCandidates(last24h),
		AvgResponseTime:       calculateAvgResponseTime(last24h),
		WarningRatePercent:    calculateWarningRate(last24h),
		TopScoreDistribution:  getTopScoreDistribution(last24h),
		Kinds:                 getKindStats(last24h),
		StoredEvents:          stored,
	}, nil
}

// filterEventsByTimeRange returns events in [start, end)
func filterEventsByTimeRange(events []model.ScoreEvent, start, end time.Time) []model.ScoreEvent {
	var filtered []model.ScoreEvent
	for _, event := range events {
		if !event.Timestamp.Before(start) && event.Timestamp.Before(end) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// calculateChangePercent calculates percentage change between current and previous values
func calculateChangePercent(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(current-previous) / float64(previous) * 100.0
}

// calculateAvgResponseTime calculates average response time for events in milliseconds
func calculateAvgResponseTime(events []model.ScoreEvent) int64 {
	if len(events) == 0 {
		return 0
	}

	var total time.Duration
	for _, event := range events {
		total += event.ResponseTime
	}
	return (total / time.Duration(len(events))).Milliseconds()
}

func countCandidates(events []model.ScoreEvent) int {
	total := 0
	for _, event := range events {
		total += event.CandidateCount
	}
	return total
}

// calculateWarningRate is the share of scored candidates that carried a signal warning
func calculateWarningRate(events []model.ScoreEvent) float64 {
	candidates := countCandidates(events)
	if candidates == 0 {
		return 0
	}

	warnings := 0
	for _, event := range events {
		warnings += event.WarningCount
	}
	return float64(warnings) / float64(candidates) * 100
}

// getTopScoreDistribution buckets each request by its best final score
func getTopScoreDistribution(events []model.ScoreEvent) model.ScoreDistribution {
	dist := model.ScoreDistribution{}
	total := 0

	for _, event := range events {
		if event.CandidateCount == 0 {
			continue
		}
		total++
		switch {
		case event.TopScore < 25:
			dist.Bucket0To25++
		case event.TopScore < 50:
			dist.Bucket25To50++
		case event.TopScore < 75:
			dist.Bucket50To75++
		default:
			dist.Bucket75To100++
		}
	}

	if total == 0 {
		return dist
	}

	dist.Percentage0To25 = float64(dist.Bucket0To25) / float64(total) * 100
	dist.Percentage25To50 = float64(dist.Bucket25To50) / float64(total) * 100
	dist.Percentage50To75 = float64(dist.Bucket50To75) / float64(total) * 100
	dist.Percentage75To100 = float64(dist.Bucket75To100) / float64(total) * 100

	return dist
}

func getKindStats(events []model.ScoreEvent) model.KindStats {
	stats := model.KindStats{}

	for _, event := range events {
		switch event.Kind {
		case model.ScoreEventKindScore:
			stats.Score++
		case model.ScoreEventKindExplore:
			stats.Explore++
		case model.ScoreEventKindBatch:
			stats.Batch++
		}
	}

	return stats
}

// NopRecorder discards events. It is used when auditing is disabled.
type NopRecorder struct{}

// Record discards the event.
func (NopRecorder) Record(model.ScoreEvent) error { return nil }

// Dashboard returns an empty dashboard.
func (NopRecorder) Dashboard() (model.AuditDashboard, error) { return model.AuditDashboard{}, nil }
