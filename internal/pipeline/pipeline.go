package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/neo-approach-etl/internal/domain"
	"github.com/couchcryptid/neo-approach-etl/internal/observability"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw event into an output event.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline moves close approaches from the source topic to the sink topic,
// linking each one to its NEO on the way.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has loaded at least one batch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any approaches yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled. Extract and
// load failures are retried with exponential backoff; Run itself only
// returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	r := retry{delay: initialBackoff}
	for ctx.Err() == nil {
		if !p.cycle(ctx, &r) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// cycle runs one extract-transform-load round. It returns false when the
// pipeline should stop.
func (p *Pipeline) cycle(ctx context.Context, r *retry) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return r.wait(ctx)
	}
	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	r.reset()

	out, loadedRaws := p.transformBatch(ctx, rawBatch)
	if len(out) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, out); err != nil {
		// Offsets stay uncommitted. The reader keeps fetching past them, so
		// the batch only comes back after a rebalance or restart.
		p.logger.Error("load batch failed", "error", err, "batch_size", len(out))
		return r.wait(ctx)
	}
	p.metrics.MessagesProduced.Add(float64(len(out)))
	for _, raw := range loadedRaws {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	p.logBatch(out, len(rawBatch))
	return true
}

// transformBatch transforms each raw event, committing failures immediately
// so poison messages are not redelivered. Events sharing an approach ID are
// published once per batch; the raws behind every published or collapsed
// event are returned for commit after the load succeeds.
func (p *Pipeline) transformBatch(ctx context.Context, rawBatch []domain.RawEvent) ([]domain.OutputEvent, []domain.RawEvent) {
	out := make([]domain.OutputEvent, 0, len(rawBatch))
	toCommit := make([]domain.RawEvent, 0, len(rawBatch))
	seen := make(map[string]struct{}, len(rawBatch))

	for _, raw := range rawBatch {
		event, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("transform failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			continue
		}

		toCommit = append(toCommit, raw)
		key := string(event.Key)
		if _, dup := seen[key]; dup && key != "" {
			p.logger.Debug("duplicate approach in batch", "id", key, "offset", raw.Offset)
			continue
		}
		seen[key] = struct{}{}
		out = append(out, event)
	}
	return out, toCommit
}

func (p *Pipeline) logBatch(out []domain.OutputEvent, consumed int) {
	var linked int
	for _, ev := range out {
		if ev.Headers["linked"] == "true" {
			linked++
		}
	}
	p.logger.Debug("batch loaded",
		"consumed", consumed,
		"published", len(out),
		"linked", linked,
		"unlinked", len(out)-linked,
	)
}

// commit acknowledges the message offset if a commit function is available.
func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// retry tracks the exponential backoff between failed extract or load attempts.
type retry struct {
	delay time.Duration
}

func (r *retry) reset() { r.delay = initialBackoff }

// wait sleeps for the current delay and doubles it up to maxBackoff. It
// returns false if ctx is cancelled first.
func (r *retry) wait(ctx context.Context) bool {
	if ctx.Err() != nil || !sharedretry.SleepWithContext(ctx, r.delay) {
		return false
	}
	r.delay = sharedretry.NextBackoff(r.delay, maxBackoff)
	return true
}
