package solana

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// Authority holds the service's signing key. It is loaded once at startup,
// passed to every component that signs, and never serialized back out; the
// String form is the public key only so the secret cannot leak through logs.
type Authority struct {
	key solana.PrivateKey
}

// NewAuthority wraps an existing private key.
func NewAuthority(key solana.PrivateKey) (*Authority, error) {
	if len(key) != 64 {
		return nil, fmt.Errorf("authority key must be 64 bytes, got %d", len(key))
	}
	return &Authority{key: key}, nil
}

// LoadAuthorityFromEnv loads the service authority. SOLANA_SECRET_KEY takes
// precedence and holds the key as a JSON byte array; otherwise the encrypted
// keystore is consulted via SOLANA_KEYSTORE_ADDRESS and
// SOLANA_KEYSTORE_PASSWORD.
func LoadAuthorityFromEnv() (*Authority, error) {
	if raw := os.Getenv("SOLANA_SECRET_KEY"); raw != "" {
		var bytes []byte
		if err := json.Unmarshal([]byte(raw), &bytes); err != nil {
			return nil, fmt.Errorf("failed to parse SOLANA_SECRET_KEY: %w", err)
		}
		return NewAuthority(solana.PrivateKey(bytes))
	}

	address := os.Getenv("SOLANA_KEYSTORE_ADDRESS")
	password := os.Getenv("SOLANA_KEYSTORE_PASSWORD")
	if address == "" || password == "" {
		return nil, fmt.Errorf("no signing authority configured: set SOLANA_SECRET_KEY or SOLANA_KEYSTORE_ADDRESS/SOLANA_KEYSTORE_PASSWORD")
	}

	km := NewKeyManager()
	account, err := km.LoadKeyStoreEntry(address, password)
	if err != nil {
		return nil, fmt.Errorf("failed to load keystore entry: %w", err)
	}
	return NewAuthority(solana.PrivateKey(account.PrivateKey))
}

// PublicKey returns the authority's public key.
func (a *Authority) PublicKey() solana.PublicKey {
	return a.key.PublicKey()
}

// privateKey hands the raw key to components in this package; it is
// deliberately unexported.
func (a *Authority) privateKey() solana.PrivateKey {
	return a.key
}

func (a *Authority) String() string {
	return a.PublicKey().String()
}
