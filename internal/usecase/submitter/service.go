package submitter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/simaogato/payrun/internal/domain"
	"github.com/simaogato/payrun/internal/metrics"
)

// Service builds, signs and submits one transfer per call.
// It never aborts a batch: every failure is classified and returned inside
// the SubmissionResult so sibling transfers proceed untouched.
type Service struct {
	ledger  domain.LedgerClient
	keyring domain.Keyring
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

// New creates a submitter backed by the given ledger client and keyring
func New(ledger domain.LedgerClient, keyring domain.Keyring, opts ...Option) *Service {
	s := &Service{
		ledger:  ledger,
		keyring: keyring,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit attempts to place one transfer on the ledger and reports the outcome.
// The returned result always carries the original request; on acceptance it
// holds the transaction signature, otherwise a classified submission error.
// Failures are never retried here: once the node has accepted a transaction,
// submitting the same request again would move the funds twice.
func (s *Service) Submit(ctx context.Context, req domain.TransferRequest) domain.SubmissionResult {
	start := time.Now()

	sig, err := s.submit(ctx, req)
	result := domain.SubmissionResult{
		Request:   req,
		Signature: sig,
		Err:       err,
	}

	s.metrics.RecordSubmission(resultLabel(err), time.Since(start))
	s.logResult(result)

	return result
}

func (s *Service) submit(ctx context.Context, req domain.TransferRequest) (solana.Signature, error) {
	payer, err := s.keyring.Load(req.KeypairPath)
	if err != nil {
		return solana.Signature{}, domain.NewSubmissionError(domain.SubmissionErrCredential, err)
	}

	recipient, err := solana.PublicKeyFromBase58(req.Recipient)
	if err != nil {
		return solana.Signature{}, domain.NewSubmissionError(domain.SubmissionErrAddress,
			fmt.Errorf("parse recipient %q: %w", req.Recipient, err))
	}

	lamports, err := req.Lamports()
	if err != nil {
		return solana.Signature{}, domain.NewSubmissionError(domain.SubmissionErrAmount, err)
	}

	blockhash, err := s.ledger.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, domain.NewSubmissionError(domain.SubmissionErrBlockhash, err)
	}

	tx, err := buildTransfer(payer, recipient, lamports, blockhash)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.ledger.SubmitTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, domain.NewSubmissionError(domain.SubmissionErrRejected, err)
	}

	return sig, nil
}

// buildTransfer assembles and signs a single system transfer transaction
func buildTransfer(payer solana.PrivateKey, recipient solana.PublicKey, lamports uint64, blockhash solana.Hash) (*solana.Transaction, error) {
	from := payer.PublicKey()

	instruction := system.NewTransferInstruction(lamports, from, recipient).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, domain.NewSubmissionError(domain.SubmissionErrRejected,
			fmt.Errorf("build transaction: %w", err))
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(from) {
			return &payer
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewSubmissionError(domain.SubmissionErrCredential,
			fmt.Errorf("sign transaction: %w", err))
	}

	return tx, nil
}

func (s *Service) logResult(result domain.SubmissionResult) {
	if s.logger == nil {
		return
	}

	if result.Accepted() {
		s.logger.Info("transfer submitted",
			"request_id", result.Request.ID,
			"recipient", result.Request.Recipient,
			"amount_sol", result.Request.Amount,
			"signature", result.Signature,
		)
		return
	}

	s.logger.Error("transfer submission failed",
		"request_id", result.Request.ID,
		"recipient", result.Request.Recipient,
		"amount_sol", result.Request.Amount,
		"kind", domain.SubmissionKind(result.Err),
		"error", result.Err,
	)
}

// resultLabel maps a submission outcome to its metrics label
func resultLabel(err error) string {
	if err == nil {
		return "accepted"
	}
	if kind := domain.SubmissionKind(err); kind != "" {
		return strings.ToLower(string(kind))
	}
	return "rejected"
}
