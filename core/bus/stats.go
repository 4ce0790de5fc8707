package bus

import (
	"sync"
	"time"
)

// HandlerStats aggregates outcomes for a single handler name.
type HandlerStats struct {
	Executions  int64
	Errors      int64
	AvgDuration time.Duration
}

// BusStats is a point-in-time snapshot of bus activity. Counters are
// cumulative for the bus lifetime and reset only by Clear.
type BusStats struct {
	Subscriptions     int
	EventTypes        int
	EventsPublished   int64
	EventsProcessed   int64
	Errors            int64
	AvgProcessingTime time.Duration
	Handlers          map[string]HandlerStats
}

// statsCollector accumulates running totals behind its own mutex so stat
// updates never contend with subscription changes.
type statsCollector struct {
	mu              sync.Mutex
	eventsPublished int64
	eventsProcessed int64
	errors          int64
	avgProcessing   time.Duration
	handlers        map[string]*handlerAggregate
}

type handlerAggregate struct {
	executions  int64
	errors      int64
	avgDuration time.Duration
}

func newStatsCollector() *statsCollector {
	return &statsCollector{
		handlers: make(map[string]*handlerAggregate),
	}
}

func (s *statsCollector) eventPublished() {
	s.mu.Lock()
	s.eventsPublished++
	s.mu.Unlock()
}

func (s *statsCollector) errorRecorded() {
	s.mu.Lock()
	s.errors++
	s.mu.Unlock()
}

// batchProcessed folds one event's handler results into the running totals.
// Averages use an incremental mean over the whole bus lifetime, not a window.
func (s *statsCollector) batchProcessed(results []ExecutionResult, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eventsProcessed++
	s.avgProcessing += (elapsed - s.avgProcessing) / time.Duration(s.eventsProcessed)

	for _, res := range results {
		agg, ok := s.handlers[res.HandlerName]
		if !ok {
			agg = &handlerAggregate{}
			s.handlers[res.HandlerName] = agg
		}

		agg.executions++
		agg.avgDuration += (res.Duration - agg.avgDuration) / time.Duration(agg.executions)

		if !res.Success {
			agg.errors++
			s.errors++
		}
	}
}

func (s *statsCollector) snapshot() BusStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	handlers := make(map[string]HandlerStats, len(s.handlers))
	for name, agg := range s.handlers {
		handlers[name] = HandlerStats{
			Executions:  agg.executions,
			Errors:      agg.errors,
			AvgDuration: agg.avgDuration,
		}
	}

	return BusStats{
		EventsPublished:   s.eventsPublished,
		EventsProcessed:   s.eventsProcessed,
		Errors:            s.errors,
		AvgProcessingTime: s.avgProcessing,
		Handlers:          handlers,
	}
}

func (s *statsCollector) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eventsPublished = 0
	s.eventsProcessed = 0
	s.errors = 0
	s.avgProcessing = 0
	s.handlers = make(map[string]*handlerAggregate)
}
