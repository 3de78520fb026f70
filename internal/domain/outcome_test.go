package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSubmissionError_Classification(t *testing.T) {
	cause := errors.New("no such file")
	err := NewSubmissionError(SubmissionErrCredential, cause)

	assert.Equal(t, SubmissionErrCredential, SubmissionKind(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "CREDENTIAL")
	assert.Contains(t, err.Error(), "no such file")
}

func TestSubmissionKind_WrappedError(t *testing.T) {
	err := fmt.Errorf("transfer 3: %w", NewSubmissionError(SubmissionErrAddress, errors.New("bad base58")))
	assert.Equal(t, SubmissionErrAddress, SubmissionKind(err))
}

func TestSubmissionKind_UnclassifiedError(t *testing.T) {
	assert.Equal(t, SubmissionErrorKind(""), SubmissionKind(errors.New("plain error")))
	assert.Equal(t, SubmissionErrorKind(""), SubmissionKind(nil))
}

func TestSubmissionResult_Status(t *testing.T) {
	sig := solana.Signature{0xaa, 0xbb}

	accepted := SubmissionResult{Request: TransferRequest{ID: uuid.New()}, Signature: sig}
	assert.True(t, accepted.Accepted())
	assert.Equal(t, StatusSubmitted, accepted.Status())

	rejected := SubmissionResult{
		Request: TransferRequest{ID: uuid.New()},
		Err:     NewSubmissionError(SubmissionErrRejected, errors.New("node refused")),
	}
	assert.False(t, rejected.Accepted())
	assert.Equal(t, StatusSubmissionFailed, rejected.Status())
}

func TestConfirmationResult_Status(t *testing.T) {
	tests := []struct {
		name  string
		state ConfirmationState
		want  TransferStatus
	}{
		{name: "confirmed", state: ConfirmationConfirmed, want: StatusConfirmed},
		{name: "failed on ledger", state: ConfirmationFailed, want: StatusFailed},
		{name: "timed out", state: ConfirmationTimedOut, want: StatusTimedOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ConfirmationResult{RequestID: uuid.New(), State: tt.state, Attempts: 1}
			assert.Equal(t, tt.want, res.Status())
		})
	}
}

func TestConfirmationState_Confirmed(t *testing.T) {
	assert.True(t, ConfirmationConfirmed.Confirmed())
	assert.False(t, ConfirmationFailed.Confirmed())
	assert.False(t, ConfirmationTimedOut.Confirmed())
}

func TestBatchSummary_Counts(t *testing.T) {
	summary := BatchSummary{
		Submitted:        5,
		SubmissionFailed: 2,
		Confirmed:        3,
		Failed:           1,
		TimedOut:         1,
		Elapsed:          21 * time.Second,
	}

	assert.Equal(t, 7, summary.Requests())
	assert.Equal(t, 2, summary.Unconfirmed())
}
