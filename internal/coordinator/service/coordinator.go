package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketing/internal/intake/validator"
	ticketserrors "ticketing/internal/tickets/errors"
	"ticketing/pkg/kafka"
	"ticketing/pkg/lock"
	"ticketing/pkg/logger"
	"ticketing/pkg/metrics"
	"ticketing/pkg/model"
)

const defaultReleaseTimeout = 5 * time.Second

type Outcome int

const (
	OutcomeReserved Outcome = iota + 1
	OutcomeDeclined
	OutcomeContended
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReserved:
		return "reserved"
	case OutcomeDeclined:
		return "declined"
	case OutcomeContended:
		return "contended"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SeatReserver performs the conditional available -> reserved transition.
// It returns ticketserrors.ErrSeatUnavailable when no row matched.
type SeatReserver interface {
	ReserveSeat(ctx context.Context, claim *model.ClaimRequest) (*model.Ticket, error)
}

type Coordinator struct {
	reserver       SeatReserver
	locker         lock.Locker
	validator      *validator.ClaimValidator
	lockTTL        time.Duration
	releaseTimeout time.Duration
	log            *logger.Logger
}

func NewCoordinator(reserver SeatReserver, locker lock.Locker, lockTTL time.Duration, log *logger.Logger) *Coordinator {
	return &Coordinator{
		reserver:       reserver,
		locker:         locker,
		validator:      validator.NewClaimValidator(),
		lockTTL:        lockTTL,
		releaseTimeout: defaultReleaseTimeout,
		log:            log,
	}
}

// HandleMessage adapts Process to the consumer. Contended and declined
// claims are acknowledged. Store failures are transient so the consumer
// retries them; undecodable payloads are permanent.
func (c *Coordinator) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var claim model.ClaimRequest
	if err := msg.DecodeValue(&claim); err != nil {
		return kafka.NewPermanentError("malformed claim payload", err).
			WithDetail("key", msg.Key)
	}
	if err := c.validator.Validate(&claim); err != nil {
		return kafka.NewPermanentError("invalid claim", err).
			WithDetail("key", msg.Key)
	}

	outcome, err := c.Process(ctx, claim)
	if outcome == OutcomeFailed {
		return kafka.NewTransientError("booking failed", err).
			WithDetail("key", msg.Key)
	}
	return nil
}

// Process runs one claim: take the seat lock, apply the conditional update
// in a transaction, release the lock. The lock is released on every path,
// including cancellation of ctx.
func (c *Coordinator) Process(ctx context.Context, claim model.ClaimRequest) (Outcome, error) {
	key := lock.SeatKey(claim.EventID, claim.SeatID)
	log := c.log.With("lock_key", key, "user_id", claim.UserID, "event_id", claim.EventID, "seat_id", claim.SeatID)

	held, err := c.locker.Acquire(ctx, key, c.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			log.Info("Seat is being processed by another attempt, dropping claim")
			return c.record(OutcomeContended), nil
		}
		log.Error("Failed to acquire seat lock", "error", err)
		return c.record(OutcomeFailed), fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	defer c.release(ctx, held, log)

	ticket, err := c.reserver.ReserveSeat(ctx, &claim)
	if err != nil {
		if errors.Is(err, ticketserrors.ErrSeatUnavailable) {
			log.Info("Seat not available, claim declined")
			return c.record(OutcomeDeclined), nil
		}
		log.Error("Failed to reserve seat", "error", err)
		return c.record(OutcomeFailed), fmt.Errorf("failed to reserve seat %s: %w", key, err)
	}

	log.Info("Seat reserved", "ticket_id", ticket.ID, "updated_at", ticket.UpdatedAt)
	return c.record(OutcomeReserved), nil
}

func (c *Coordinator) release(ctx context.Context, held *lock.Lock, log *logger.Logger) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.releaseTimeout)
	defer cancel()

	if err := c.locker.Release(releaseCtx, held); err != nil {
		metrics.LockReleaseFailures.Inc()
		if errors.Is(err, lock.ErrLockLost) {
			log.Warn("Seat lock expired before release", "ttl", c.lockTTL)
			return
		}
		log.Error("Failed to release seat lock", "error", err)
	}
}

func (c *Coordinator) record(o Outcome) Outcome {
	metrics.BookingOutcomes.WithLabelValues(o.String()).Inc()
	return o
}
