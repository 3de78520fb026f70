package domain

// TransferStatus represents the lifecycle state of a transfer within a run
type TransferStatus string

const (
	StatusPending          TransferStatus = "PENDING"
	StatusSubmitted        TransferStatus = "SUBMITTED"
	StatusSubmissionFailed TransferStatus = "SUBMISSION_FAILED"
	StatusConfirmed        TransferStatus = "CONFIRMED"
	StatusFailed           TransferStatus = "FAILED"
	StatusTimedOut         TransferStatus = "TIMED_OUT"
)

// allowedTransitions defines the valid lifecycle of a transfer.
// A transfer that fails submission never enters the confirmation phase, and
// every post-submission state is terminal.
var allowedTransitions = map[TransferStatus][]TransferStatus{
	StatusPending:          {StatusSubmitted, StatusSubmissionFailed},
	StatusSubmitted:        {StatusConfirmed, StatusFailed, StatusTimedOut},
	StatusSubmissionFailed: {},
	StatusConfirmed:        {},
	StatusFailed:           {},
	StatusTimedOut:         {},
}

// CanTransitionTo reports whether a transfer in status s may move to next
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether a transfer in status s has finished its lifecycle
func (s TransferStatus) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Unconfirmed reports whether the status is a terminal state of a submitted
// transfer that never reached confirmation
func (s TransferStatus) Unconfirmed() bool {
	return s == StatusFailed || s == StatusTimedOut
}
