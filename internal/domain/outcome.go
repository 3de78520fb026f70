package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// SubmissionErrorKind classifies why a transfer never made it onto the ledger
type SubmissionErrorKind string

const (
	// SubmissionErrCredential means the signing keypair could not be loaded or used
	SubmissionErrCredential SubmissionErrorKind = "CREDENTIAL"
	// SubmissionErrAddress means the destination address could not be parsed
	SubmissionErrAddress SubmissionErrorKind = "ADDRESS"
	// SubmissionErrAmount means the amount could not be represented in lamports
	SubmissionErrAmount SubmissionErrorKind = "AMOUNT"
	// SubmissionErrBlockhash means the recent block reference could not be fetched
	SubmissionErrBlockhash SubmissionErrorKind = "BLOCKHASH"
	// SubmissionErrRejected means the ledger node refused the transaction
	SubmissionErrRejected SubmissionErrorKind = "REJECTED"
)

// SubmissionError wraps a submission failure with its classification.
// The orchestrator never inspects the underlying error; the kind alone decides
// how the failure is counted and labelled.
type SubmissionError struct {
	Kind SubmissionErrorKind
	Err  error
}

// NewSubmissionError creates a classified submission error wrapping cause
func NewSubmissionError(kind SubmissionErrorKind, cause error) *SubmissionError {
	return &SubmissionError{Kind: kind, Err: cause}
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed (%s): %v", e.Kind, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// SubmissionKind extracts the classification from err, or empty if err is not
// a SubmissionError
func SubmissionKind(err error) SubmissionErrorKind {
	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return subErr.Kind
	}
	return ""
}

// SubmissionResult records the outcome of attempting to submit one transfer.
// Exactly one of Signature and Err is meaningful: an accepted submission has a
// signature and a nil Err, a failed one has a zero signature and a non-nil Err.
type SubmissionResult struct {
	Request   TransferRequest
	Signature solana.Signature
	Err       error
}

// Accepted reports whether the ledger node accepted the transaction
func (r SubmissionResult) Accepted() bool {
	return r.Err == nil
}

// Status returns the transfer status implied by this submission outcome
func (r SubmissionResult) Status() TransferStatus {
	if r.Accepted() {
		return StatusSubmitted
	}
	return StatusSubmissionFailed
}

// ConfirmationState is the terminal result of awaiting finality for one
// submitted transfer
type ConfirmationState string

const (
	// ConfirmationConfirmed means the ledger finalized the transaction successfully
	ConfirmationConfirmed ConfirmationState = "CONFIRMED"
	// ConfirmationFailed means the ledger finalized the transaction with an error
	ConfirmationFailed ConfirmationState = "FAILED"
	// ConfirmationTimedOut means no terminal status was observed within the attempt budget
	ConfirmationTimedOut ConfirmationState = "TIMED_OUT"
)

// Confirmed reports whether the transfer definitively succeeded
func (s ConfirmationState) Confirmed() bool {
	return s == ConfirmationConfirmed
}

// ConfirmationResult records the outcome of polling one submitted transfer
// until finality or exhaustion of the attempt budget
type ConfirmationResult struct {
	RequestID uuid.UUID
	Signature solana.Signature
	State     ConfirmationState
	Attempts  int
}

// Status returns the transfer status implied by this confirmation outcome
func (r ConfirmationResult) Status() TransferStatus {
	switch r.State {
	case ConfirmationConfirmed:
		return StatusConfirmed
	case ConfirmationFailed:
		return StatusFailed
	default:
		return StatusTimedOut
	}
}

// BatchSummary aggregates the outcomes of a whole payment run
type BatchSummary struct {
	Submitted        int
	SubmissionFailed int
	Confirmed        int
	Failed           int
	TimedOut         int
	Elapsed          time.Duration
}

// Requests returns the total number of transfers the run attempted
func (s BatchSummary) Requests() int {
	return s.Submitted + s.SubmissionFailed
}

// Unconfirmed returns the number of submitted transfers that did not reach a
// confirmed state, whether they failed on the ledger or outlived the attempt
// budget
func (s BatchSummary) Unconfirmed() int {
	return s.Failed + s.TimedOut
}
