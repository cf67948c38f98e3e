// Package pipeline orchestrates the journey build: it partitions the
// sorted event stream by user, runs segmentation and fact derivation for
// each user on a bounded worker pool, and streams the resulting facts to
// the sink in batches.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/matthinz/idv-journey-analytics/internal/domain"
	"github.com/matthinz/idv-journey-analytics/internal/journey"
)

// Config tunes the pipeline.
type Config struct {
	// Workers bounds the per-user worker pool.
	Workers int

	// BatchSize and FlushTimeout govern sink writes.
	BatchSize    int
	FlushTimeout time.Duration

	// FailFast aborts the run on the first per-journey derivation error
	// instead of counting it and continuing. Contract violations abort
	// regardless.
	FailFast bool
}

// Stats summarizes one pipeline run.
type Stats struct {
	Users          uint64
	Journeys       uint64
	FactsWritten   uint64
	JourneysFailed uint64
}

// Pipeline wires the source through segmentation and derivation into the
// sink. Journeys never cross
// user boundaries, so users are processed independently; no cross-user
// state is kept.
type Pipeline struct {
	source    EventSource
	sink      FactsSink
	segmenter *journey.Segmenter
	deriver   FactsDeriver
	config    Config
	log       *zap.Logger
}

// userPartition is one user's full, ordered event slice: the unit of work
// and of retry.
type userPartition struct {
	userID string
	events []domain.EventRecord
}

// New creates a pipeline over the given source and sink using one flow
// definition for both segmentation and derivation.
func New(source EventSource, sink FactsSink, flow journey.Flow, cfg Config, log *zap.Logger) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 10 * time.Second
	}

	return &Pipeline{
		source:    source,
		sink:      sink,
		segmenter: journey.NewSegmenter(flow),
		deriver:   journey.NewDeriver(flow),
		config:    cfg,
		log:       log,
	}
}

// Run processes the whole stream and blocks until every stage has drained.
// It returns the run's stats along with the first fatal error, if any.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		runErr  error
		errOnce sync.Once

		users    atomic.Uint64
		journeys atomic.Uint64
		written  atomic.Uint64
		failed   atomic.Uint64
	)

	fail := func(err error) {
		errOnce.Do(func() {
			runErr = err
			cancel()
		})
	}

	eventChan := make(chan domain.EventRecord, 1024)
	partitionChan := make(chan userPartition, p.config.Workers)
	factsChan := make(chan *domain.JourneyFacts, p.config.BatchSize)

	// Stage 1: stream sorted events from the source.
	go func() {
		defer close(eventChan)
		if err := p.source.StreamSorted(ctx, eventChan); err != nil && !errors.Is(err, context.Canceled) {
			fail(fmt.Errorf("event source failed: %w", err))
		}
	}()

	// Stage 2: detect user-key boundaries. The last user's partition is
	// flushed when the stream ends.
	go func() {
		defer close(partitionChan)

		var current userPartition
		emit := func() bool {
			if len(current.events) == 0 {
				return true
			}
			users.Add(1)
			select {
			case <-ctx.Done():
				return false
			case partitionChan <- current:
				return true
			}
		}

		for event := range eventChan {
			if event.UserID != current.userID && len(current.events) > 0 {
				if !emit() {
					return
				}
				current = userPartition{}
			}
			current.userID = event.UserID
			current.events = append(current.events, event)
		}

		emit()
	}()

	// Stage 3: segment and derive, one user per task.
	var workers sync.WaitGroup
	workers.Add(p.config.Workers)
	for i := 0; i < p.config.Workers; i++ {
		go func() {
			defer workers.Done()
			for partition := range partitionChan {
				if !p.processUser(ctx, partition, factsChan, fail, &journeys, &failed) {
					return
				}
			}
		}()
	}

	go func() {
		workers.Wait()
		close(factsChan)
	}()

	// Stage 4: batch facts into the sink.
	p.writeFacts(ctx, factsChan, fail, &written)

	stats := Stats{
		Users:          users.Load(),
		Journeys:       journeys.Load(),
		FactsWritten:   written.Load(),
		JourneysFailed: failed.Load(),
	}

	if runErr != nil {
		return stats, runErr
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	p.log.Info("Journey build complete",
		zap.Uint64("users", stats.Users),
		zap.Uint64("journeys", stats.Journeys),
		zap.Uint64("facts_written", stats.FactsWritten),
		zap.Uint64("journeys_failed", stats.JourneysFailed))

	return stats, nil
}

// processUser segments and derives one user's events and forwards the facts in
// journey order. It returns false when the worker should stop.
func (p *Pipeline) processUser(ctx context.Context, partition userPartition, out chan<- *domain.JourneyFacts, fail func(error), journeys, failed *atomic.Uint64) bool {
	for _, j := range p.segmenter.Trace(partition.events) {
		journeys.Add(1)

		facts, err := p.deriver.Derive(j)
		if err != nil {
			var contractErr *journey.ContractError
			if errors.As(err, &contractErr) {
				// Segmenter and deriver disagree about the flow; this is a
				// logic defect, not bad input data.
				fail(fmt.Errorf("journey derivation contract violated for user %s: %w", partition.userID, err))
				return false
			}

			failed.Add(1)
			p.log.Warn("Failed to derive journey facts",
				zap.String("user_id", partition.userID),
				zap.Time("journey_start", j.First().Timestamp),
				zap.Int("journey_length", j.Len()),
				zap.Error(err))

			if p.config.FailFast {
				fail(fmt.Errorf("journey derivation failed for user %s: %w", partition.userID, err))
				return false
			}
			continue
		}

		select {
		case <-ctx.Done():
			return false
		case out <- facts:
		}
	}

	return true
}

// writeFacts batches facts and writes them to the sink, flushing on size,
// on timeout, and once more when the channel drains.
func (p *Pipeline) writeFacts(ctx context.Context, in <-chan *domain.JourneyFacts, fail func(error), written *atomic.Uint64) {
	ticker := time.NewTicker(p.config.FlushTimeout)
	defer ticker.Stop()

	batch := make([]*domain.JourneyFacts, 0, p.config.BatchSize)

	flush := func() bool {
		if len(batch) == 0 {
			return true
		}

		count, err := p.sink.InsertFacts(ctx, batch)
		if err != nil {
			fail(fmt.Errorf("failed to write journey facts: %w", err))
			return false
		}

		written.Add(uint64(count))
		batch = batch[:0]
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return

		case facts, ok := <-in:
			if !ok {
				flush()
				return
			}

			batch = append(batch, facts)
			if len(batch) >= p.config.BatchSize {
				if !flush() {
					return
				}
				ticker.Reset(p.config.FlushTimeout)
			}

		case <-ticker.C:
			if !flush() {
				return
			}
		}
	}
}
