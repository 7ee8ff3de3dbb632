package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPayer      = "PayerWallet11111111111111111111111111111111"
	testCommission = "CommissionWallet1111111111111111111111111111"
	testAdmin      = "AdminWallet111111111111111111111111111111111"
)

func TestMatchFeeTransfers(t *testing.T) {
	t.Run("Exact Pair Matches", func(t *testing.T) {
		transfers := []ParsedTransfer{
			{Source: testPayer, Destination: testCommission, Lamports: 49_000_000},
			{Source: testPayer, Destination: testAdmin, Lamports: 21_000_000},
		}
		assert.True(t, MatchFeeTransfers(transfers, testPayer, testCommission, 49_000_000, testAdmin, 21_000_000))
	})

	t.Run("Order Does Not Matter", func(t *testing.T) {
		transfers := []ParsedTransfer{
			{Source: testPayer, Destination: testAdmin, Lamports: 21_000_000},
			{Source: testPayer, Destination: testCommission, Lamports: 49_000_000},
		}
		assert.True(t, MatchFeeTransfers(transfers, testPayer, testCommission, 49_000_000, testAdmin, 21_000_000))
	})

	t.Run("Extra Unrelated Transfers Are Ignored", func(t *testing.T) {
		transfers := []ParsedTransfer{
			{Source: "SomeoneElse", Destination: testCommission, Lamports: 49_000_000},
			{Source: testPayer, Destination: testCommission, Lamports: 49_000_000},
			{Source: testPayer, Destination: "SomeoneElse", Lamports: 5},
			{Source: testPayer, Destination: testAdmin, Lamports: 21_000_000},
		}
		assert.True(t, MatchFeeTransfers(transfers, testPayer, testCommission, 49_000_000, testAdmin, 21_000_000))
	})

	t.Run("Wrong Commission Amount Rejected", func(t *testing.T) {
		transfers := []ParsedTransfer{
			{Source: testPayer, Destination: testCommission, Lamports: 48_999_999},
			{Source: testPayer, Destination: testAdmin, Lamports: 21_000_000},
		}
		assert.False(t, MatchFeeTransfers(transfers, testPayer, testCommission, 49_000_000, testAdmin, 21_000_000))
	})

	t.Run("Wrong Admin Amount Rejected", func(t *testing.T) {
		transfers := []ParsedTransfer{
			{Source: testPayer, Destination: testCommission, Lamports: 49_000_000},
			{Source: testPayer, Destination: testAdmin, Lamports: 21_000_001},
		}
		assert.False(t, MatchFeeTransfers(transfers, testPayer, testCommission, 49_000_000, testAdmin, 21_000_000))
	})

	t.Run("Wrong Payer Rejected", func(t *testing.T) {
		transfers := []ParsedTransfer{
			{Source: "SomeoneElse", Destination: testCommission, Lamports: 49_000_000},
			{Source: "SomeoneElse", Destination: testAdmin, Lamports: 21_000_000},
		}
		assert.False(t, MatchFeeTransfers(transfers, testPayer, testCommission, 49_000_000, testAdmin, 21_000_000))
	})

	t.Run("Single Instruction Cannot Satisfy Both Legs", func(t *testing.T) {
		// Same wallet configured for both fees still requires two
		// distinct transfer instructions.
		transfers := []ParsedTransfer{
			{Source: testPayer, Destination: testCommission, Lamports: 49_000_000},
		}
		assert.False(t, MatchFeeTransfers(transfers, testPayer, testCommission, 49_000_000, testCommission, 49_000_000))

		transfers = append(transfers, ParsedTransfer{Source: testPayer, Destination: testCommission, Lamports: 49_000_000})
		assert.True(t, MatchFeeTransfers(transfers, testPayer, testCommission, 49_000_000, testCommission, 49_000_000))
	})

	t.Run("Empty Transfer Set Rejected", func(t *testing.T) {
		assert.False(t, MatchFeeTransfers(nil, testPayer, testCommission, 49_000_000, testAdmin, 21_000_000))
	})
}

type rpcTxStub struct {
	responses []string
	requests  int
}

func (s *rpcTxStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx := s.requests
		if idx >= len(s.responses) {
			idx = len(s.responses) - 1
		}
		s.requests++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(s.responses[idx]))
	}
}

const txNotFoundResponse = `{"jsonrpc":"2.0","id":1,"result":null}`

func txResponse(t *testing.T, metaErr interface{}, transfers []ParsedTransfer) string {
	t.Helper()
	instructions := make([]map[string]interface{}, 0, len(transfers))
	for _, tr := range transfers {
		instructions = append(instructions, map[string]interface{}{
			"program": "system",
			"parsed": map[string]interface{}{
				"type": "transfer",
				"info": map[string]interface{}{
					"source":      tr.Source,
					"destination": tr.Destination,
					"lamports":    tr.Lamports,
				},
			},
		})
	}
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"result": map[string]interface{}{
			"meta": map[string]interface{}{"err": metaErr},
			"transaction": map[string]interface{}{
				"message": map[string]interface{}{"instructions": instructions},
			},
		},
	})
	require.NoError(t, err)
	return string(body)
}

func newVerifyFixture(t *testing.T, stub *rpcTxStub) (*PaymentVerifier, string) {
	t.Helper()
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	t.Setenv("APP_ENV", "production")

	originalBackoff := paymentLookupBackoff
	paymentLookupBackoff = 10 * time.Millisecond
	t.Cleanup(func() { paymentLookupBackoff = originalBackoff })

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	commission := solana.NewWallet().PublicKey().String()
	admin := solana.NewWallet().PublicKey().String()
	verifier, err := NewPaymentVerifier(client, commission, admin)
	require.NoError(t, err)

	payer := solana.NewWallet().PublicKey().String()
	return verifier, payer
}

func feeTransfers(payer string, v *PaymentVerifier) []ParsedTransfer {
	return []ParsedTransfer{
		{Source: payer, Destination: v.commissionWallet.String(), Lamports: 49_000_000},
		{Source: payer, Destination: v.adminWallet.String(), Lamports: 21_000_000},
	}
}

func TestVerify(t *testing.T) {
	t.Run("Matching Payment Is Accepted", func(t *testing.T) {
		stub := &rpcTxStub{}
		verifier, payer := newVerifyFixture(t, stub)
		stub.responses = []string{txResponse(t, nil, feeTransfers(payer, verifier))}

		ok, err := verifier.Verify(context.Background(), "sig1", payer, 49_000_000, 21_000_000)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, stub.requests)
	})

	t.Run("Errored Transaction Is Rejected", func(t *testing.T) {
		stub := &rpcTxStub{}
		verifier, payer := newVerifyFixture(t, stub)
		metaErr := map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}
		stub.responses = []string{txResponse(t, metaErr, feeTransfers(payer, verifier))}

		ok, err := verifier.Verify(context.Background(), "sig2", payer, 49_000_000, 21_000_000)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Found On Second Attempt", func(t *testing.T) {
		stub := &rpcTxStub{}
		verifier, payer := newVerifyFixture(t, stub)
		stub.responses = []string{
			txNotFoundResponse,
			txResponse(t, nil, feeTransfers(payer, verifier)),
		}

		ok, err := verifier.Verify(context.Background(), "sig3", payer, 49_000_000, 21_000_000)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2, stub.requests)
	})

	t.Run("Never Found Fails After Three Attempts", func(t *testing.T) {
		stub := &rpcTxStub{responses: []string{txNotFoundResponse}}
		verifier, payer := newVerifyFixture(t, stub)

		ok, err := verifier.Verify(context.Background(), "sig4", payer, 49_000_000, 21_000_000)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 3, stub.requests)
	})

	t.Run("Mismatched Amounts Are Rejected", func(t *testing.T) {
		stub := &rpcTxStub{}
		verifier, payer := newVerifyFixture(t, stub)
		transfers := feeTransfers(payer, verifier)
		transfers[0].Lamports = 1
		stub.responses = []string{txResponse(t, nil, transfers)}

		ok, err := verifier.Verify(context.Background(), "sig5", payer, 49_000_000, 21_000_000)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Transport Failure Is An Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}))
		t.Cleanup(server.Close)
		t.Setenv("APP_ENV", "production")

		client, err := NewClient(server.URL)
		require.NoError(t, err)
		commission := solana.NewWallet().PublicKey().String()
		admin := solana.NewWallet().PublicKey().String()
		verifier, err := NewPaymentVerifier(client, commission, admin)
		require.NoError(t, err)

		_, err = verifier.Verify(context.Background(), "sig6", "payer", 49_000_000, 21_000_000)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payment lookup failed")
	})

	t.Run("Verification Skipped Outside Production", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		client, err := NewClient("http://127.0.0.1:0")
		require.NoError(t, err)
		verifier, err := NewPaymentVerifier(client,
			solana.NewWallet().PublicKey().String(),
			solana.NewWallet().PublicKey().String())
		require.NoError(t, err)

		ok, err := verifier.Verify(context.Background(), "sig7", "payer", 49_000_000, 21_000_000)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
