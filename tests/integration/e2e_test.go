//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/payrun/internal/adapter/keystore"
	solanaadapter "github.com/simaogato/payrun/internal/adapter/solana"
	"github.com/simaogato/payrun/internal/config"
	"github.com/simaogato/payrun/internal/domain"
	"github.com/simaogato/payrun/internal/usecase/orchestrator"
	"github.com/simaogato/payrun/internal/usecase/poller"
	"github.com/simaogato/payrun/internal/usecase/reporter"
	"github.com/simaogato/payrun/internal/usecase/submitter"
)

// submitPlan decides what the fake node does with the n-th accepted
// transaction: finalize it cleanly, finalize it with a ledger error, or
// leave its status unknown forever.
type submitPlan struct {
	failOnLedger bool
	neverFinal   bool
}

// fakeNode is an in-process Solana JSON-RPC node. It hands out sequential
// signatures, then answers status queries according to the submit plan,
// holding each answer back until finalizeAfter queries have been seen.
type fakeNode struct {
	t *testing.T

	mu            sync.Mutex
	plan          []submitPlan
	finalizeAfter int
	submitted     int
	queries       map[string]int
	failSigs      map[string]bool
	neverFinal    map[string]bool
}

func newFakeNode(t *testing.T, finalizeAfter int, plan []submitPlan) *fakeNode {
	return &fakeNode{
		t:             t,
		plan:          plan,
		finalizeAfter: finalizeAfter,
		queries:       make(map[string]int),
		failSigs:      make(map[string]bool),
		neverFinal:    make(map[string]bool),
	}
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	require.NoError(n.t, err)

	var req struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	require.NoError(n.t, json.Unmarshal(body, &req))

	w.Header().Set("Content-Type", "application/json")

	switch req.Method {
	case "getLatestBlockhash":
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":100},"value":{"blockhash":"EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N","lastValidBlockHeight":3090}}}`)

	case "sendTransaction":
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":"%s"}`, n.acceptTransaction())

	case "getSignatureStatuses":
		var sigs []string
		require.NoError(n.t, json.Unmarshal(req.Params[0], &sigs))
		require.Len(n.t, sigs, 1)
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":110},"value":[%s]}}`, n.statusFor(sigs[0]))

	default:
		n.t.Errorf("unexpected RPC method %q", req.Method)
	}
}

func (n *fakeNode) acceptTransaction() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	index := n.submitted
	n.submitted++
	require.Less(n.t, index, len(n.plan), "more submissions than planned")

	sig := solana.Signature{byte(index + 1)}.String()
	if n.plan[index].failOnLedger {
		n.failSigs[sig] = true
	}
	if n.plan[index].neverFinal {
		n.neverFinal[sig] = true
	}
	return sig
}

func (n *fakeNode) statusFor(sig string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.queries[sig]++
	if n.neverFinal[sig] || n.queries[sig] < n.finalizeAfter {
		return "null"
	}

	errField := "null"
	if n.failSigs[sig] {
		errField = `{"InstructionError":[0,{"Custom":1}]}`
	}
	return fmt.Sprintf(`{"slot":105,"confirmations":null,"err":%s,"confirmationStatus":"finalized"}`, errField)
}

func (n *fakeNode) submissions() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.submitted
}

// writeKeypair writes a fresh keypair in the solana-keygen file format and
// returns its path
func writeKeypair(t *testing.T, dir, name string) string {
	t.Helper()

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func writeRunFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func recipientAddress(t *testing.T) string {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.PublicKey().String()
}

// runPipeline wires the real adapters and services exactly like the binary
// does and executes the run described by the config file.
func runPipeline(t *testing.T, cfg *config.Config, workers int) domain.BatchSummary {
	t.Helper()

	ledger := solanaadapter.NewClient(cfg.RPCURL)
	keyring := keystore.NewFileKeyring()

	service := orchestrator.New(
		submitter.New(ledger, keyring),
		poller.New(ledger, poller.Policy{Interval: cfg.PollInterval, MaxAttempts: cfg.MaxPollAttempts}),
		orchestrator.WithWorkers(workers),
	)

	submissions, confirmations, elapsed := service.Run(context.Background(), cfg.Transfers)
	return reporter.Summarize(submissions, confirmations, elapsed)
}

func TestPaymentRun_AllTransfersConfirmed(t *testing.T) {
	node := newFakeNode(t, 2, []submitPlan{{}, {}, {}})
	server := httptest.NewServer(node)
	defer server.Close()

	dir := t.TempDir()
	runFile := writeRunFile(t, dir, fmt.Sprintf(`
rpc_url: %s
confirmation:
  poll_interval: 20ms
  max_attempts: 5
wallets:
  - from_keypair: %s
    to_address: %s
    amount_sol: 1.5
  - from_keypair: %s
    to_address: %s
    amount_sol: "0.25"
  - from_keypair: %s
    to_address: %s
    amount_sol: 0.000000001
`,
		server.URL,
		writeKeypair(t, dir, "payer1.json"), recipientAddress(t),
		writeKeypair(t, dir, "payer2.json"), recipientAddress(t),
		writeKeypair(t, dir, "payer3.json"), recipientAddress(t),
	))

	cfg, err := config.Load(runFile)
	require.NoError(t, err)

	summary := runPipeline(t, cfg, 8)

	assert.Equal(t, 3, summary.Requests())
	assert.Equal(t, 3, summary.Submitted)
	assert.Equal(t, 0, summary.SubmissionFailed)
	assert.Equal(t, 3, summary.Confirmed)
	assert.Equal(t, 0, summary.Unconfirmed())
	assert.Equal(t, 3, node.submissions())
	assert.Less(t, summary.Elapsed, 5*time.Second)
}

func TestPaymentRun_UnloadableKeypairIsIsolated(t *testing.T) {
	node := newFakeNode(t, 1, []submitPlan{{}, {}})
	server := httptest.NewServer(node)
	defer server.Close()

	dir := t.TempDir()
	runFile := writeRunFile(t, dir, fmt.Sprintf(`
rpc_url: %s
confirmation:
  poll_interval: 10ms
  max_attempts: 5
wallets:
  - from_keypair: %s
    to_address: %s
    amount_sol: 1
  - from_keypair: %s
    to_address: %s
    amount_sol: 2
  - from_keypair: %s
    to_address: %s
    amount_sol: 3
`,
		server.URL,
		writeKeypair(t, dir, "payer1.json"), recipientAddress(t),
		filepath.Join(dir, "missing.json"), recipientAddress(t),
		writeKeypair(t, dir, "payer3.json"), recipientAddress(t),
	))

	cfg, err := config.Load(runFile)
	require.NoError(t, err)

	summary := runPipeline(t, cfg, 8)

	// The broken keypair fails alone; its siblings submit and confirm, and
	// the node never sees a transaction for it.
	assert.Equal(t, 3, summary.Requests())
	assert.Equal(t, 2, summary.Submitted)
	assert.Equal(t, 1, summary.SubmissionFailed)
	assert.Equal(t, 2, summary.Confirmed)
	assert.Equal(t, 2, node.submissions())
}

func TestPaymentRun_LedgerFailureAndTimeout(t *testing.T) {
	// One transfer finalizes with a ledger error, one never finalizes
	node := newFakeNode(t, 1, []submitPlan{{failOnLedger: true}, {neverFinal: true}})
	server := httptest.NewServer(node)
	defer server.Close()

	dir := t.TempDir()
	runFile := writeRunFile(t, dir, fmt.Sprintf(`
rpc_url: %s
confirmation:
  poll_interval: 10ms
  max_attempts: 4
wallets:
  - from_keypair: %s
    to_address: %s
    amount_sol: 1
  - from_keypair: %s
    to_address: %s
    amount_sol: 2
`,
		server.URL,
		writeKeypair(t, dir, "payer1.json"), recipientAddress(t),
		writeKeypair(t, dir, "payer2.json"), recipientAddress(t),
	))

	cfg, err := config.Load(runFile)
	require.NoError(t, err)

	summary := runPipeline(t, cfg, 8)

	assert.Equal(t, 2, summary.Submitted)
	assert.Equal(t, 0, summary.Confirmed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.TimedOut)
	assert.Equal(t, 2, summary.Unconfirmed())
}

func TestPaymentRun_RenderedSummary(t *testing.T) {
	node := newFakeNode(t, 1, []submitPlan{{}})
	server := httptest.NewServer(node)
	defer server.Close()

	dir := t.TempDir()
	runFile := writeRunFile(t, dir, fmt.Sprintf(`
rpc_url: %s
wallets:
  - from_keypair: %s
    to_address: %s
    amount_sol: 0.5
`,
		server.URL,
		writeKeypair(t, dir, "payer.json"), recipientAddress(t),
	))

	cfg, err := config.Load(runFile)
	require.NoError(t, err)

	summary := runPipeline(t, cfg, 1)

	var buf bytes.Buffer
	reporter.Render(&buf, summary)

	assert.Contains(t, buf.String(), "requests:          1")
	assert.Contains(t, buf.String(), "confirmed:         1")
	assert.Contains(t, buf.String(), "unconfirmed:       0")
}
