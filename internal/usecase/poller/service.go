package poller

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/simaogato/payrun/internal/domain"
	"github.com/simaogato/payrun/internal/metrics"
)

const (
	// DefaultInterval is the pause between consecutive status queries
	DefaultInterval = 2 * time.Second

	// DefaultMaxAttempts is the status query budget per transfer
	DefaultMaxAttempts = 10
)

// Policy bounds the confirmation wait for a single transfer
type Policy struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPolicy returns the standard confirmation policy: ten queries two
// seconds apart, roughly an eighteen second ceiling per transfer.
func DefaultPolicy() Policy {
	return Policy{
		Interval:    DefaultInterval,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// normalize replaces unusable policy values with the defaults
func (p Policy) normalize() Policy {
	if p.Interval <= 0 {
		p.Interval = DefaultInterval
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	return p
}

// Service polls the ledger for the terminal status of submitted transfers.
// Each transfer gets a fixed attempt budget; a transfer whose status is still
// unknown when the budget runs out is reported as timed out, never as failed.
type Service struct {
	ledger  domain.LedgerClient
	policy  Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a poller that queries ledger under the given policy
func New(ledger domain.LedgerClient, policy Policy, opts ...Option) *Service {
	s := &Service{
		ledger: ledger,
		policy: policy.normalize(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Await polls until the transfer reaches a terminal ledger status or the
// attempt budget is spent. Transient query errors consume an attempt and are
// retried; they never fail the transfer on their own. Cancelling ctx ends the
// wait early with a timed out result.
func (s *Service) Await(ctx context.Context, requestID uuid.UUID, sig solana.Signature) domain.ConfirmationResult {
	start := time.Now()

	result := domain.ConfirmationResult{
		RequestID: requestID,
		Signature: sig,
		State:     domain.ConfirmationTimedOut,
	}

poll:
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		result.Attempts = attempt

		status, err := s.ledger.SignatureStatus(ctx, sig)
		switch {
		case err != nil:
			if s.logger != nil {
				s.logger.Debug("status query failed, retrying",
					"request_id", requestID,
					"signature", sig,
					"attempt", attempt,
					"error", err,
				)
			}
		case status != nil:
			if status.Failed {
				result.State = domain.ConfirmationFailed
			} else {
				result.State = domain.ConfirmationConfirmed
			}
			break poll
		}

		// The last attempt never waits: once the budget is spent the
		// outcome is already known to be timed out.
		if attempt == s.policy.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			break poll
		case <-time.After(s.policy.Interval):
		}
	}

	s.metrics.RecordConfirmation(stateLabel(result.State), result.Attempts, time.Since(start))
	s.logResult(result)

	return result
}

func (s *Service) logResult(result domain.ConfirmationResult) {
	if s.logger == nil {
		return
	}

	switch result.State {
	case domain.ConfirmationConfirmed:
		s.logger.Info("transfer confirmed",
			"request_id", result.RequestID,
			"signature", result.Signature,
			"attempts", result.Attempts,
		)
	case domain.ConfirmationFailed:
		s.logger.Warn("transfer failed on ledger",
			"request_id", result.RequestID,
			"signature", result.Signature,
			"attempts", result.Attempts,
		)
	default:
		s.logger.Warn("transfer unconfirmed within attempt budget",
			"request_id", result.RequestID,
			"signature", result.Signature,
			"attempts", result.Attempts,
		)
	}
}

// stateLabel maps a confirmation state to its metrics label
func stateLabel(state domain.ConfirmationState) string {
	return strings.ToLower(string(state))
}
