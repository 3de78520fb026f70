package keystore

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/simaogato/payrun/internal/domain"
)

// fileKeyring implements domain.Keyring over Solana CLI keypair files,
// the JSON byte-array format written by solana-keygen
type fileKeyring struct{}

// NewFileKeyring creates a keyring that treats locators as filesystem paths
func NewFileKeyring() domain.Keyring {
	return fileKeyring{}
}

// Load reads and decodes the keypair file at path
func (fileKeyring) Load(path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair from %s: %w", path, err)
	}
	return key, nil
}
