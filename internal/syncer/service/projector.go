package service

import (
	"context"
	"fmt"
	"time"

	"ticketing/internal/projection/repository"
	"ticketing/pkg/logger"
	"ticketing/pkg/metrics"
	"ticketing/pkg/model"
)

// ChangeSource is the system-of-record side of replication.
type ChangeSource interface {
	ServerTime(ctx context.Context) (time.Time, error)
	// FindUpdatedSince returns tickets with updated_at >= since, oldest first.
	FindUpdatedSince(ctx context.Context, since time.Time) ([]*model.Ticket, error)
}

type SeatApplier interface {
	ApplySeat(ctx context.Context, eventID int64, seat model.SeatSnapshot) (repository.ApplyResult, error)
}

type CheckpointStore interface {
	Load(ctx context.Context) (time.Time, error)
	Save(ctx context.Context, ts time.Time) error
}

type Options struct {
	Interval time.Duration
	// After this many failed cycles in a row the next wait is ErrorBackoff.
	// Zero disables the backoff.
	MaxConsecutiveErrors int
	ErrorBackoff         time.Duration
	// CycleTimeout bounds one cycle, which is detached from shutdown.
	CycleTimeout time.Duration
}

type CycleResult struct {
	Checkpoint    time.Time // loaded at cycle start
	NewCheckpoint time.Time // persisted at cycle end; equals Checkpoint when idle
	ServerTime    time.Time
	Applied       map[repository.ApplyResult]int
	Seats         int
}

type Projector struct {
	source      ChangeSource
	applier     SeatApplier
	checkpoints CheckpointStore
	opts        Options
	log         *logger.Logger
}

func NewProjector(source ChangeSource, applier SeatApplier, checkpoints CheckpointStore, opts Options, log *logger.Logger) *Projector {
	return &Projector{
		source:      source,
		applier:     applier,
		checkpoints: checkpoints,
		opts:        opts,
		log:         log,
	}
}

// Run executes cycles until ctx is cancelled. The next cycle is scheduled
// only after the previous one, checkpoint included, has finished.
func (p *Projector) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			p.log.Info("Sync projector stopped")
			return nil
		case <-timer.C:
		}

		cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.opts.CycleTimeout)
		result, err := p.RunCycle(cycleCtx)
		cancel()

		wait := p.opts.Interval
		if err != nil {
			failures++
			p.log.Error("Sync cycle failed", "consecutive_failures", failures, "error", err)
			if p.opts.MaxConsecutiveErrors > 0 && failures >= p.opts.MaxConsecutiveErrors {
				wait = p.opts.ErrorBackoff
				p.log.Warn("Too many consecutive sync failures, backing off",
					"consecutive_failures", failures,
					"backoff", wait,
				)
			}
		} else {
			failures = 0
			if result.Seats > 0 {
				p.log.Info("Sync cycle applied changes",
					"seats", result.Seats,
					"created", result.Applied[repository.EventCreated],
					"appended", result.Applied[repository.SeatAppended],
					"updated", result.Applied[repository.SeatUpdated],
					"checkpoint", result.NewCheckpoint,
				)
			}
		}

		timer.Reset(wait)
	}
}

// RunCycle replicates every ticket changed at or after the checkpoint and
// then advances the checkpoint to the newest change seen. Any error leaves
// the checkpoint untouched so the same window is read again.
func (p *Projector) RunCycle(ctx context.Context) (CycleResult, error) {
	result, err := p.runCycle(ctx)
	if err != nil {
		metrics.SyncCycles.WithLabelValues("failed").Inc()
		return result, err
	}
	if result.Seats == 0 {
		metrics.SyncCycles.WithLabelValues("idle").Inc()
	} else {
		metrics.SyncCycles.WithLabelValues("applied").Inc()
	}
	metrics.SyncLagSeconds.Set(max(result.ServerTime.Sub(result.NewCheckpoint).Seconds(), 0))
	return result, nil
}

func (p *Projector) runCycle(ctx context.Context) (CycleResult, error) {
	result := CycleResult{Applied: make(map[repository.ApplyResult]int)}

	checkpoint, err := p.checkpoints.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	result.Checkpoint = checkpoint
	result.NewCheckpoint = checkpoint

	serverNow, err := p.source.ServerTime(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read store time: %w", err)
	}
	result.ServerTime = serverNow
	if checkpoint.After(serverNow) {
		p.log.Warn("Sync checkpoint is ahead of store time",
			"checkpoint", checkpoint,
			"server_time", serverNow,
		)
	}

	tickets, err := p.source.FindUpdatedSince(ctx, checkpoint)
	if err != nil {
		return result, fmt.Errorf("failed to read changes since %s: %w", checkpoint.Format(time.RFC3339Nano), err)
	}
	if len(tickets) == 0 {
		p.log.Debug("No changes since checkpoint", "checkpoint", checkpoint)
		return result, nil
	}

	newest := checkpoint
	for _, t := range tickets {
		applied, err := p.applier.ApplySeat(ctx, t.EventID, t.Snapshot())
		if err != nil {
			return result, fmt.Errorf("failed to apply seat %s of event %d: %w", t.SeatID, t.EventID, err)
		}
		metrics.SyncSeatsApplied.WithLabelValues(applied.String()).Inc()
		result.Applied[applied]++
		result.Seats++
		if t.UpdatedAt.After(newest) {
			newest = t.UpdatedAt
		}
	}

	// The projection store keeps milliseconds. Rounding down keeps the
	// newest rows inside the next inclusive read.
	next := newest.UTC().Truncate(time.Millisecond)
	if next.Before(checkpoint) {
		next = checkpoint
	}
	if err := p.checkpoints.Save(ctx, next); err != nil {
		return result, fmt.Errorf("failed to save checkpoint: %w", err)
	}
	result.NewCheckpoint = next

	return result, nil
}
