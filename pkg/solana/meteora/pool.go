package meteora

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	log "github.com/sirupsen/logrus"

	launchsolana "launchtrade/pkg/solana"
)

// Meteora dynamic AMM program and the constant-product fee config the
// service launches pools under.
var (
	DynamicAmmProgramID = solana.MustPublicKeyFromBase58("Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB")

	defaultFeeConfig = "FiENCCbPi3rFh5pW2AJ59HC53yM32eLaCjMKxRqanKFJ"
)

// PriceFloor is the minimum accepted quote/token price ratio. A launch whose
// planned liquidity prices the token below this is rejected before any
// ledger mutation.
const PriceFloor = 1e-7

// PoolParams describes the liquidity to seed for a newly launched token
// against the wrapped SOL quote asset. Amounts are in base units (9
// decimals for the token, lamports for the quote).
type PoolParams struct {
	BaseMint       string
	TokenBaseUnits uint64
	QuoteLamports  uint64
}

// PoolResult reports the created pool.
type PoolResult struct {
	PoolAddress string
	Signature   string
}

// Provisioner creates and seeds constant-product pools. All transactions are
// paid and signed by the injected service authority.
type Provisioner struct {
	client    *launchsolana.Client
	minter    *launchsolana.Minter
	authority *launchsolana.Authority
	programID solana.PublicKey
	feeConfig solana.PublicKey
	quoteMint solana.PublicKey
}

// NewProvisioner builds a Provisioner. The fee config can be overridden with
// METEORA_FEE_CONFIG.
func NewProvisioner(client *launchsolana.Client, minter *launchsolana.Minter, authority *launchsolana.Authority) (*Provisioner, error) {
	feeConfigStr := os.Getenv("METEORA_FEE_CONFIG")
	if feeConfigStr == "" {
		feeConfigStr = defaultFeeConfig
	}
	feeConfig, err := solana.PublicKeyFromBase58(feeConfigStr)
	if err != nil {
		return nil, fmt.Errorf("invalid meteora fee config: %w", err)
	}

	return &Provisioner{
		client:    client,
		minter:    minter,
		authority: authority,
		programID: DynamicAmmProgramID,
		feeConfig: feeConfig,
		quoteMint: solana.WrappedSol,
	}, nil
}

// orderMints applies the canonical lexicographic ordering the pool program
// requires. Every pool-side computation in this package goes through it.
func orderMints(x, y solana.PublicKey) (a, b solana.PublicKey) {
	if x.String() <= y.String() {
		return x, y
	}
	return y, x
}

// DerivePoolAddress derives the pool account for a base/quote pair under the
// given fee config. Mints are ordered canonically before derivation.
func DerivePoolAddress(base, quote, feeConfig solana.PublicKey) (solana.PublicKey, error) {
	a, b := orderMints(base, quote)
	seeds := [][]byte{a[:], b[:], feeConfig[:]}
	address, _, err := solana.FindProgramAddress(seeds, DynamicAmmProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive pool address: %w", err)
	}
	return address, nil
}

func deriveLpMint(pool solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{[]byte("lp_mint"), pool[:]}, DynamicAmmProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive lp mint: %w", err)
	}
	return address, nil
}

func deriveVault(mint, pool solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{[]byte("token_vault"), mint[:], pool[:]}, DynamicAmmProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive token vault: %w", err)
	}
	return address, nil
}

// anchorDiscriminator computes the 8-byte instruction discriminator for an
// Anchor program method.
func anchorDiscriminator(method string) []byte {
	sum := sha256.Sum256([]byte("global:" + method))
	return sum[:8]
}

// CreatePool creates and seeds a constant-product pool for the token against
// wrapped SOL. Before touching the ledger it re-checks the price floor, then
// tops up the authority's own holding account with the base token when the
// canonical position A is the base token, wraps the quote lamports, and
// finally submits the pool initialization.
func (p *Provisioner) CreatePool(ctx context.Context, params PoolParams) (*PoolResult, error) {
	if params.TokenBaseUnits == 0 || params.QuoteLamports == 0 {
		return nil, fmt.Errorf("pool amounts must be positive")
	}
	if float64(params.QuoteLamports)/float64(params.TokenBaseUnits) < PriceFloor {
		return nil, fmt.Errorf("price ratio below floor %g", PriceFloor)
	}

	baseMint, err := solana.PublicKeyFromBase58(params.BaseMint)
	if err != nil {
		return nil, fmt.Errorf("invalid base mint: %w", err)
	}

	mintA, mintB := orderMints(baseMint, p.quoteMint)
	amountA, amountB := params.TokenBaseUnits, params.QuoteLamports
	if !mintA.Equals(baseMint) {
		amountA, amountB = params.QuoteLamports, params.TokenBaseUnits
	}

	// Operational top-up of the service's own base-token account for the
	// position-A side. Separate from the user-facing supply.
	if mintA.Equals(baseMint) {
		if _, err := p.minter.MintToSelf(ctx, params.BaseMint, params.TokenBaseUnits); err != nil {
			return nil, fmt.Errorf("failed to top up base token: %w", err)
		}
	}

	if err := p.wrapQuote(ctx, params.QuoteLamports); err != nil {
		return nil, err
	}

	pool, err := DerivePoolAddress(baseMint, p.quoteMint, p.feeConfig)
	if err != nil {
		return nil, err
	}
	lpMint, err := deriveLpMint(pool)
	if err != nil {
		return nil, err
	}
	vaultA, err := deriveVault(mintA, pool)
	if err != nil {
		return nil, err
	}
	vaultB, err := deriveVault(mintB, pool)
	if err != nil {
		return nil, err
	}

	authorityKey := p.authority.PublicKey()
	payerTokenA, _, err := solana.FindAssociatedTokenAddress(authorityKey, mintA)
	if err != nil {
		return nil, fmt.Errorf("failed to derive payer token A account: %w", err)
	}
	payerTokenB, _, err := solana.FindAssociatedTokenAddress(authorityKey, mintB)
	if err != nil {
		return nil, fmt.Errorf("failed to derive payer token B account: %w", err)
	}
	payerPoolLp, _, err := solana.FindAssociatedTokenAddress(authorityKey, lpMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive payer lp account: %w", err)
	}

	data := new(bytes.Buffer)
	data.Write(anchorDiscriminator("initialize_permissionless_constant_product_pool_with_config"))
	var amounts [16]byte
	binary.LittleEndian.PutUint64(amounts[:8], amountA)
	binary.LittleEndian.PutUint64(amounts[8:], amountB)
	data.Write(amounts[:])

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(pool, true, false),
		solana.NewAccountMeta(p.feeConfig, false, false),
		solana.NewAccountMeta(lpMint, true, false),
		solana.NewAccountMeta(mintA, false, false),
		solana.NewAccountMeta(mintB, false, false),
		solana.NewAccountMeta(vaultA, true, false),
		solana.NewAccountMeta(vaultB, true, false),
		solana.NewAccountMeta(payerTokenA, true, false),
		solana.NewAccountMeta(payerTokenB, true, false),
		solana.NewAccountMeta(payerPoolLp, true, false),
		solana.NewAccountMeta(authorityKey, true, true),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}

	ix := solana.NewInstruction(p.programID, accounts, data.Bytes())

	sig, err := p.client.SendAndConfirm(ctx, []solana.Instruction{ix}, p.authority)
	if err != nil {
		return nil, fmt.Errorf("pool creation failed: %w", err)
	}

	log.Infof("pool %s created for mint %s, tx %s", pool, params.BaseMint, sig)
	return &PoolResult{
		PoolAddress: pool.String(),
		Signature:   sig.String(),
	}, nil
}

// wrapQuote funds the authority's wrapped SOL account with the quote
// lamports: create the ATA if missing, transfer lamports in, sync.
func (p *Provisioner) wrapQuote(ctx context.Context, lamports uint64) error {
	authorityKey := p.authority.PublicKey()
	wsolATA, _, err := solana.FindAssociatedTokenAddress(authorityKey, p.quoteMint)
	if err != nil {
		return fmt.Errorf("failed to derive wsol account: %w", err)
	}

	instructions := []solana.Instruction{}

	exists, err := p.client.AccountExists(ctx, wsolATA)
	if err != nil {
		return fmt.Errorf("failed to check wsol account: %w", err)
	}
	if !exists {
		instructions = append(instructions, associatedtokenaccount.NewCreateInstruction(
			authorityKey,
			authorityKey,
			p.quoteMint,
		).Build())
	}

	instructions = append(instructions,
		system.NewTransferInstruction(lamports, authorityKey, wsolATA).Build(),
		token.NewSyncNativeInstruction(wsolATA).Build(),
	)

	if _, err := p.client.SendAndConfirm(ctx, instructions, p.authority); err != nil {
		return fmt.Errorf("failed to wrap quote lamports: %w", err)
	}
	return nil
}
