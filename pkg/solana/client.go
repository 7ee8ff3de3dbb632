package solana

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Global HTTP client with connection pooling, shared by the hand-rolled
// JSON-RPC calls that the typed SDK client does not cover.
var (
	rawRPCClient *http.Client
	clientOnce   sync.Once
)

func getRawRPCClient() *http.Client {
	clientOnce.Do(func() {
		transport := &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableKeepAlives:   false,
		}
		rawRPCClient = &http.Client{
			Transport: transport,
			Timeout:   15 * time.Second,
		}
	})
	return rawRPCClient
}

// Client wraps the Solana RPC endpoint used by the launch workflow. Sends are
// paced by a shared rate limiter so a burst of launches does not trip the
// RPC provider.
type Client struct {
	rpc      *rpc.Client
	endpoint string
	limiter  *rate.Limiter
}

// NewClient creates a client for the given RPC endpoint. An empty endpoint
// falls back to the SOLANA_RPC_URL environment variable.
func NewClient(endpoint string) (*Client, error) {
	if endpoint == "" {
		endpoint = os.Getenv("SOLANA_RPC_URL")
	}
	if endpoint == "" {
		return nil, fmt.Errorf("solana rpc endpoint not configured")
	}

	return &Client{
		rpc:      rpc.New(endpoint),
		endpoint: endpoint,
		limiter:  rate.NewLimiter(rate.Limit(5), 5),
	}, nil
}

// RPC returns the underlying typed RPC client.
func (c *Client) RPC() *rpc.Client {
	return c.rpc
}

// AccountExists reports whether the account is present on the ledger. A
// not-found response means absent; any other lookup failure is propagated so
// a transient RPC error is never mistaken for a missing account.
func (c *Client) AccountExists(ctx context.Context, key solana.PublicKey) (bool, error) {
	info, err := c.rpc.GetAccountInfo(ctx, key)
	return classifyAccountLookup(info, err)
}

func classifyAccountLookup(info *rpc.GetAccountInfoResult, err error) (bool, error) {
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("account lookup failed: %w", err)
	}
	return info != nil && info.Value != nil, nil
}

// SendAndConfirm builds a transaction paid and signed by the authority (plus
// any extra signers, e.g. a fresh mint account), sends it and blocks until it
// reaches at least confirmed commitment.
func (c *Client) SendAndConfirm(ctx context.Context, instructions []solana.Instruction, authority *Authority, extraSigners ...solana.PrivateKey) (solana.Signature, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return solana.Signature{}, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	bh, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, bh.Value.Blockhash, solana.TransactionPayer(authority.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	signers := append([]solana.PrivateKey{authority.privateKey()}, extraSigners...)

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if key.Equals(signers[i].PublicKey()) {
				return &signers[i]
			}
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	if err := c.ConfirmTransaction(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// ConfirmTransaction polls signature statuses until the transaction is
// confirmed or finalized, or the deadline passes.
func (c *Client) ConfirmTransaction(ctx context.Context, sig solana.Signature) error {
	deadline := time.Now().Add(90 * time.Second)
	for time.Now().Before(deadline) {
		res, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			log.Warnf("GetSignatureStatuses failed for %s: %v", sig, err)
		} else if len(res.Value) > 0 && res.Value[0] != nil {
			status := res.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on chain: %v", sig, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return fmt.Errorf("transaction %s not confirmed before deadline", sig)
}
