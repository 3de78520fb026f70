package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the native scale of the ledger: one SOL is 10^9 lamports.
const LamportsPerSOL = 1_000_000_000

// lamportDecimalPlaces is the number of decimal places covered by the lamport scale
const lamportDecimalPlaces = 9

// TransferRequest represents a single requested value transfer in the domain layer.
// The amount is kept as an exact decimal in SOL until submission time, when it is
// converted to lamports.
type TransferRequest struct {
	ID          uuid.UUID
	KeypairPath string
	Recipient   string
	Amount      decimal.Decimal
}

// Validate ensures the transfer request adheres to domain rules.
// Recipient and keypair path contents are deliberately not checked here:
// an unparseable address or unreadable keypair fails the individual
// transfer at submission time instead of rejecting the whole batch.
func (r *TransferRequest) Validate() error {
	if r.Amount.IsNegative() {
		return errors.New("transfer amount cannot be negative")
	}
	return nil
}

// Lamports converts the decimal SOL amount to an exact lamport count.
// Amounts with sub-lamport precision or outside the uint64 range are rejected;
// the conversion never rounds.
func (r *TransferRequest) Lamports() (uint64, error) {
	if r.Amount.IsNegative() {
		return 0, errors.New("transfer amount cannot be negative")
	}

	shifted := r.Amount.Shift(lamportDecimalPlaces)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s SOL has sub-lamport precision", r.Amount)
	}

	lamports := shifted.BigInt()
	if !lamports.IsUint64() {
		return 0, fmt.Errorf("amount %s SOL exceeds the lamport range", r.Amount)
	}

	return lamports.Uint64(), nil
}
