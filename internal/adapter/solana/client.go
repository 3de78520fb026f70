package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/simaogato/payrun/internal/domain"
)

// client implements domain.LedgerClient on top of a Solana JSON-RPC node.
// The underlying rpc.Client is safe for concurrent use, so a single client
// instance serves every worker in a run.
type client struct {
	rpc *rpc.Client
}

// NewClient creates a ledger client talking to the node at rpcURL
func NewClient(rpcURL string) domain.LedgerClient {
	return &client{rpc: rpc.New(rpcURL)}
}

// LatestBlockhash fetches a finalized recent blockhash to anchor transactions
func (c *client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to fetch latest blockhash: %w", err)
	}
	return out.Value.Blockhash, nil
}

// SubmitTransaction sends the signed transaction with preflight checks on.
// Preflight simulates against a recent state, so obviously invalid transfers
// (bad funds, bad blockhash) are rejected here instead of silently dropped.
func (c *client) SubmitTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to submit transaction: %w", err)
	}
	return sig, nil
}

// SignatureStatus reports the finalized status of sig.
// It returns (nil, nil) until the ledger has finalized the transaction; a
// status at a lower commitment level still counts as unknown.
func (c *client) SignatureStatus(ctx context.Context, sig solana.Signature) (*domain.TransactionStatus, error) {
	out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to query signature status: %w", err)
	}

	if len(out.Value) == 0 || out.Value[0] == nil {
		return nil, nil
	}

	status := out.Value[0]
	if status.ConfirmationStatus != rpc.ConfirmationStatusFinalized {
		return nil, nil
	}

	return &domain.TransactionStatus{
		Failed: status.Err != nil,
		Slot:   status.Slot,
	}, nil
}
