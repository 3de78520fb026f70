package domain

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// TransactionStatus describes a terminal status the ledger reported for a
// submitted transaction
type TransactionStatus struct {
	// Failed is true when the ledger finalized the transaction with an error
	Failed bool

	// Slot is the slot the transaction was processed in
	Slot uint64
}

// LedgerClient defines the interface for the remote ledger node operations
// the transfer pipeline depends on
type LedgerClient interface {
	// LatestBlockhash fetches a recent block reference to anchor a new transaction
	LatestBlockhash(ctx context.Context) (solana.Hash, error)

	// SubmitTransaction sends a fully signed transaction to the ledger node
	// and returns its signature. An error means the node did not accept the
	// transaction for processing.
	SubmitTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)

	// SignatureStatus queries the finalized status of a submitted transaction.
	// It returns (nil, nil) while no finalized status is known yet, a non-nil
	// status once the transaction reached finality, and a non-nil error only
	// when the query itself failed.
	SignatureStatus(ctx context.Context, sig solana.Signature) (*TransactionStatus, error)
}

// Keyring defines the interface for resolving a credential reference to a
// signing keypair
type Keyring interface {
	// Load resolves locator to a private key.
	// The locator format is adapter specific; the file based keyring treats it
	// as a filesystem path.
	Load(locator string) (solana.PrivateKey, error)
}
