package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/simaogato/payrun/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent ledger calls within each phase
const DefaultWorkers = 8

// Submitter places a single transfer on the ledger
type Submitter interface {
	Submit(ctx context.Context, req domain.TransferRequest) domain.SubmissionResult
}

// Poller awaits the terminal status of a single submitted transfer
type Poller interface {
	Await(ctx context.Context, requestID uuid.UUID, sig solana.Signature) domain.ConfirmationResult
}

// Service drives a payment run through its two phases: submit everything,
// then await confirmation of everything that was accepted.
type Service struct {
	submitter Submitter
	poller    Poller
	workers   int
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithWorkers sets the per-phase concurrency bound.
// Zero or negative removes the bound entirely.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

// New creates an orchestrator over the given pipeline stages
func New(submitter Submitter, poller Poller, opts ...Option) *Service {
	s := &Service{
		submitter: submitter,
		poller:    poller,
		workers:   DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the whole batch and reports per-transfer outcomes plus the
// total elapsed wall clock time.
//
// The confirmation phase starts only after every submission has returned, and
// polls only transfers the ledger accepted. Individual failures never stop
// sibling transfers; the returned slices always account for every input
// request.
func (s *Service) Run(ctx context.Context, requests []domain.TransferRequest) ([]domain.SubmissionResult, []domain.ConfirmationResult, time.Duration) {
	start := time.Now()

	submissions := s.submitAll(ctx, requests)
	confirmations := s.awaitAll(ctx, submissions)

	return submissions, confirmations, time.Since(start)
}

// submitAll fans the requests out to the submitter and collects one result
// per request, in input order
func (s *Service) submitAll(ctx context.Context, requests []domain.TransferRequest) []domain.SubmissionResult {
	if s.logger != nil {
		s.logger.Info("submitting transfers", "count", len(requests), "workers", s.workers)
	}

	results := make([]domain.SubmissionResult, len(requests))

	group := new(errgroup.Group)
	group.SetLimit(s.limit())
	for i, req := range requests {
		group.Go(func() error {
			results[i] = s.submitter.Submit(ctx, req)
			return nil
		})
	}
	// Workers report outcomes through the results slice and never return an
	// error, so one rejected transfer cannot cancel the others.
	_ = group.Wait()

	return results
}

// awaitAll polls every accepted submission until it reaches a terminal state
func (s *Service) awaitAll(ctx context.Context, submissions []domain.SubmissionResult) []domain.ConfirmationResult {
	accepted := make([]domain.SubmissionResult, 0, len(submissions))
	for _, sub := range submissions {
		if sub.Accepted() {
			accepted = append(accepted, sub)
		}
	}

	if s.logger != nil {
		s.logger.Info("awaiting confirmations", "count", len(accepted), "skipped", len(submissions)-len(accepted))
	}

	if len(accepted) == 0 {
		return nil
	}

	results := make([]domain.ConfirmationResult, len(accepted))

	group := new(errgroup.Group)
	group.SetLimit(s.limit())
	for i, sub := range accepted {
		group.Go(func() error {
			results[i] = s.poller.Await(ctx, sub.Request.ID, sub.Signature)
			return nil
		})
	}
	_ = group.Wait()

	return results
}

func (s *Service) limit() int {
	if s.workers <= 0 {
		return -1
	}
	return s.workers
}
