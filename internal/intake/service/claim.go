package service

import (
	"context"
	"errors"

	"ticketing/internal/intake/validator"
	apperrors "ticketing/pkg/errors"
	"ticketing/pkg/kafka"
	"ticketing/pkg/logger"
	"ticketing/pkg/metrics"
	"ticketing/pkg/model"
	"ticketing/pkg/sanitizer"
)

const (
	MessageSource = "write-api"

	resultAccepted = "accepted"
	resultInvalid  = "invalid"
	resultFailed   = "failed"
)

// Publisher is the part of kafka.Producer the intake needs.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type ClaimService interface {
	// Submit validates the claim and enqueues it. It never waits for the
	// booking outcome.
	Submit(ctx context.Context, claim *model.ClaimRequest, correlationID string) error
}

type claimService struct {
	publisher Publisher
	validator *validator.ClaimValidator
	log       *logger.Logger
}

func NewClaimService(publisher Publisher, validator *validator.ClaimValidator, log *logger.Logger) ClaimService {
	return &claimService{
		publisher: publisher,
		validator: validator,
		log:       log,
	}
}

func (s *claimService) Submit(ctx context.Context, claim *model.ClaimRequest, correlationID string) error {
	sanitizer.Claim(claim)

	if err := s.validator.Validate(claim); err != nil {
		metrics.ClaimsSubmitted.WithLabelValues(resultInvalid).Inc()

		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			s.log.Warn("Claim validation failed",
				"correlation_id", correlationID,
				"fields", verrs.Fields(),
			)
			return apperrors.InvalidInput("Missing required fields.").WithDetails(map[string]any{
				"errors": []validator.ValidationError(verrs),
			})
		}
		return apperrors.InvalidInput("Missing required fields.")
	}

	msg, err := kafka.NewMessage().
		WithKey(claim.PartitionKey()).
		WithValue(claim).
		WithEventType(kafka.EventTypeBookingRequested).
		WithCorrelationID(correlationID).
		WithSource(MessageSource).
		Build()
	if err != nil {
		metrics.ClaimsSubmitted.WithLabelValues(resultFailed).Inc()
		return apperrors.Internal("Internal server error.", err)
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		metrics.ClaimsSubmitted.WithLabelValues(resultFailed).Inc()
		s.log.Error("Failed to publish claim",
			"correlation_id", correlationID,
			"key", msg.Key,
			"user_id", claim.UserID,
			"error", err,
		)
		return apperrors.Internal("Internal server error.", err)
	}

	metrics.ClaimsSubmitted.WithLabelValues(resultAccepted).Inc()
	s.log.Info("Claim accepted",
		"correlation_id", correlationID,
		"event_id", msg.GetEventID(),
		"key", msg.Key,
		"user_id", claim.UserID,
	)
	return nil
}
