package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/payrun/internal/domain"
	"gopkg.in/yaml.v3"
)

// runFile mirrors the YAML layout of a payment run file:
//
//	rpc_url: https://api.devnet.solana.com
//	confirmation:
//	  poll_interval: 2s
//	  max_attempts: 10
//	wallets:
//	  - from_keypair: /keys/payer1.json
//	    to_address: 7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2
//	    amount_sol: 1.5
type runFile struct {
	RPCURL       string              `yaml:"rpc_url"`
	Confirmation confirmationSection `yaml:"confirmation"`
	Wallets      []walletEntry       `yaml:"wallets"`
}

type confirmationSection struct {
	PollInterval string `yaml:"poll_interval"`
	MaxAttempts  int    `yaml:"max_attempts"`
}

// walletEntry keeps amount_sol as a string so the value reaches the decimal
// parser verbatim, without ever passing through a binary float
type walletEntry struct {
	FromKeypair string `yaml:"from_keypair"`
	ToAddress   string `yaml:"to_address"`
	AmountSOL   string `yaml:"amount_sol"`
}

// Config is a fully parsed payment run.
// Zero PollInterval and MaxPollAttempts mean the poller defaults apply.
type Config struct {
	RPCURL          string
	PollInterval    time.Duration
	MaxPollAttempts int
	Transfers       []domain.TransferRequest
}

// Load reads and validates the payment run file at path.
// Structural problems (unreadable file, bad YAML, missing rpc_url, malformed
// amounts) are fatal here; per-transfer problems like an unreadable keypair
// or a bad address surface later as individual submission failures.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var file runFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse run file: %w", err)
	}

	if file.RPCURL == "" {
		return nil, errors.New("rpc_url is required")
	}
	if len(file.Wallets) == 0 {
		return nil, errors.New("wallets must list at least one transfer")
	}

	cfg := &Config{RPCURL: file.RPCURL}

	if file.Confirmation.PollInterval != "" {
		interval, err := time.ParseDuration(file.Confirmation.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid confirmation.poll_interval: %w", err)
		}
		if interval <= 0 {
			return nil, fmt.Errorf("confirmation.poll_interval must be positive, got %s", interval)
		}
		cfg.PollInterval = interval
	}

	if file.Confirmation.MaxAttempts < 0 {
		return nil, fmt.Errorf("confirmation.max_attempts cannot be negative, got %d", file.Confirmation.MaxAttempts)
	}
	cfg.MaxPollAttempts = file.Confirmation.MaxAttempts

	cfg.Transfers = make([]domain.TransferRequest, 0, len(file.Wallets))
	for i, wallet := range file.Wallets {
		req, err := wallet.toRequest()
		if err != nil {
			return nil, fmt.Errorf("wallets[%d]: %w", i, err)
		}
		cfg.Transfers = append(cfg.Transfers, req)
	}

	return cfg, nil
}

// toRequest turns one wallet entry into a transfer request with a fresh ID
func (w walletEntry) toRequest() (domain.TransferRequest, error) {
	amount, err := decimal.NewFromString(w.AmountSOL)
	if err != nil {
		return domain.TransferRequest{}, fmt.Errorf("invalid amount_sol %q: %w", w.AmountSOL, err)
	}

	req := domain.TransferRequest{
		ID:          uuid.New(),
		KeypairPath: w.FromKeypair,
		Recipient:   w.ToAddress,
		Amount:      amount,
	}
	if err := req.Validate(); err != nil {
		return domain.TransferRequest{}, err
	}

	return req, nil
}
