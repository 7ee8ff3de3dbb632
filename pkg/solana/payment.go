package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"
)

const paymentLookupAttempts = 3

// Variable so tests can shorten the wait between lookup attempts.
var paymentLookupBackoff = 3 * time.Second

// ParsedTransfer is one system-program transfer instruction from a parsed
// transaction.
type ParsedTransfer struct {
	Source      string
	Destination string
	Lamports    uint64
}

// ConfirmedTransaction is the slice of a finalized transaction the payment
// verifier cares about.
type ConfirmedTransaction struct {
	Failed    bool
	Transfers []ParsedTransfer
}

// getTransaction response, jsonParsed encoding. Only the fields the verifier
// reads are mapped.
type parsedTxResponse struct {
	Result *struct {
		Meta *struct {
			Err interface{} `json:"err"`
		} `json:"meta"`
		Transaction struct {
			Message struct {
				Instructions []struct {
					Program string `json:"program"`
					Parsed  *struct {
						Type string `json:"type"`
						Info struct {
							Source      string `json:"source"`
							Destination string `json:"destination"`
							Lamports    uint64 `json:"lamports"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"instructions"`
			} `json:"message"`
		} `json:"transaction"`
	} `json:"result"`
	Error *json.RawMessage `json:"error"`
}

// GetConfirmedTransaction fetches a finalized transaction with jsonParsed
// encoding. The typed SDK client does not surface parsed system-program
// instructions, so the call is raw JSON-RPC. A nil result with nil error
// means the transaction is not (yet) visible.
func (c *Client) GetConfirmedTransaction(ctx context.Context, signature string) (*ConfirmedTransaction, error) {
	reqBody, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "getTransaction",
		"params": []interface{}{
			signature,
			map[string]interface{}{
				"encoding":                       "jsonParsed",
				"commitment":                     "finalized",
				"maxSupportedTransactionVersion": 0,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal getTransaction request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create getTransaction request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := getRawRPCClient().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("getTransaction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("getTransaction returned status %d", resp.StatusCode)
	}

	var parsed parsedTxResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode getTransaction response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("getTransaction rpc error: %s", string(*parsed.Error))
	}
	if parsed.Result == nil {
		return nil, nil
	}

	tx := &ConfirmedTransaction{}
	if parsed.Result.Meta != nil && parsed.Result.Meta.Err != nil {
		tx.Failed = true
	}
	for _, ix := range parsed.Result.Transaction.Message.Instructions {
		if ix.Program != "system" || ix.Parsed == nil || ix.Parsed.Type != "transfer" {
			continue
		}
		tx.Transfers = append(tx.Transfers, ParsedTransfer{
			Source:      ix.Parsed.Info.Source,
			Destination: ix.Parsed.Info.Destination,
			Lamports:    ix.Parsed.Info.Lamports,
		})
	}
	return tx, nil
}

// PaymentVerifier confirms that a submitted transaction actually moved the
// expected fee amounts from the payer to the commission and admin wallets.
type PaymentVerifier struct {
	client           *Client
	commissionWallet solana.PublicKey
	adminWallet      solana.PublicKey
	skipVerification bool
}

// NewPaymentVerifier builds a verifier against the given fee wallets. Live
// verification is skipped outside production, matching APP_ENV.
func NewPaymentVerifier(client *Client, commissionWallet, adminWallet string) (*PaymentVerifier, error) {
	commission, err := solana.PublicKeyFromBase58(commissionWallet)
	if err != nil {
		return nil, fmt.Errorf("invalid commission wallet: %w", err)
	}
	admin, err := solana.PublicKeyFromBase58(adminWallet)
	if err != nil {
		return nil, fmt.Errorf("invalid admin wallet: %w", err)
	}

	return &PaymentVerifier{
		client:           client,
		commissionWallet: commission,
		adminWallet:      admin,
		skipVerification: os.Getenv("APP_ENV") != "production",
	}, nil
}

// Verify polls for the transaction and checks that it carries two distinct
// transfers: payer to commission wallet of exactly commissionLamports, and
// payer to admin wallet of exactly adminLamports. Returns false for not
// found, mismatched amounts, or an errored transaction. Transport failures
// return an error the caller treats as verification failure.
func (v *PaymentVerifier) Verify(ctx context.Context, txSignature, payerWallet string, commissionLamports, adminLamports uint64) (bool, error) {
	if v.skipVerification {
		log.Warnf("payment verification skipped for %s (non-production environment)", txSignature)
		return true, nil
	}

	var tx *ConfirmedTransaction
	for attempt := 1; attempt <= paymentLookupAttempts; attempt++ {
		var err error
		tx, err = v.client.GetConfirmedTransaction(ctx, txSignature)
		if err != nil {
			return false, fmt.Errorf("payment lookup failed: %w", err)
		}
		if tx != nil {
			break
		}
		log.Infof("payment %s not found, attempt %d/%d", txSignature, attempt, paymentLookupAttempts)
		if attempt < paymentLookupAttempts {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(paymentLookupBackoff):
			}
		}
	}
	if tx == nil {
		log.Warnf("payment %s not found after %d attempts", txSignature, paymentLookupAttempts)
		return false, nil
	}
	if tx.Failed {
		log.Warnf("payment %s carries an execution error", txSignature)
		return false, nil
	}

	ok := MatchFeeTransfers(tx.Transfers, payerWallet,
		v.commissionWallet.String(), commissionLamports,
		v.adminWallet.String(), adminLamports)
	if !ok {
		log.Warnf("payment %s does not match expected fee transfers", txSignature)
	}
	return ok, nil
}

// MatchFeeTransfers reports whether the transfer set contains two distinct
// instructions paying the exact commission and admin amounts from the payer.
// Exact integer equality, no tolerance.
func MatchFeeTransfers(transfers []ParsedTransfer, payer, commissionWallet string, commissionLamports uint64, adminWallet string, adminLamports uint64) bool {
	commissionIdx := -1
	for i, t := range transfers {
		if t.Source == payer && t.Destination == commissionWallet && t.Lamports == commissionLamports {
			commissionIdx = i
			break
		}
	}
	if commissionIdx < 0 {
		return false
	}
	for i, t := range transfers {
		if i == commissionIdx {
			continue
		}
		if t.Source == payer && t.Destination == adminWallet && t.Lamports == adminLamports {
			return true
		}
	}
	return false
}
