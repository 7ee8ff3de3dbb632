package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

const (
	// TokenDecimals is fixed for every launched token.
	TokenDecimals = 9

	mintAccountSize = 82
)

// MintParams describes a token launch on the ledger.
type MintParams struct {
	Name            string
	Symbol          string
	MetadataURI     string
	SupplyBaseUnits uint64
	OwnerWallet     string
	// Mintable keeps the service authority as freeze authority. When false
	// the freeze authority is irrevocably unset.
	Mintable bool
}

// MintResult reports the ledger identities created by a launch.
type MintResult struct {
	MintAddress       string
	TokenAccount      string
	MintSignature     string
	MetadataSignature string
}

// Minter creates token mints, holding accounts and on-ledger metadata, all
// signed by the injected service authority. The requester never signs.
type Minter struct {
	client    *Client
	authority *Authority
}

// NewMinter creates a Minter bound to the given client and authority.
func NewMinter(client *Client, authority *Authority) *Minter {
	return &Minter{client: client, authority: authority}
}

// newInitializeMintInstruction builds the InitializeMint instruction for a
// launch. The freeze authority is the service authority when the token stays
// mintable; otherwise it is left unset, which is irreversible.
func newInitializeMintInstruction(mint, authority solana.PublicKey, mintable bool) *token.InitializeMint {
	ix := token.NewInitializeMintInstructionBuilder().
		SetDecimals(TokenDecimals).
		SetMintAuthority(authority).
		SetMintAccount(mint).
		SetSysVarRentPubkeyAccount(solana.SysVarRentPubkey)
	if mintable {
		ix.SetFreezeAuthority(authority)
	}
	return ix
}

// LaunchMint creates a new mint with 9 decimals, creates the owner's
// associated token account, mints the supply into it, then attaches the
// metadata URI to the derived metadata account in a second confirmed
// transaction. Any failure aborts the launch; nothing is rolled back on
// chain because a confirmed mint is irreversible.
func (m *Minter) LaunchMint(ctx context.Context, p MintParams) (*MintResult, error) {
	owner, err := solana.PublicKeyFromBase58(p.OwnerWallet)
	if err != nil {
		return nil, fmt.Errorf("invalid owner wallet: %w", err)
	}

	mintAccount := solana.NewWallet()
	mint := mintAccount.PublicKey()
	authorityKey := m.authority.PublicKey()

	rentLamports, err := m.client.RPC().GetMinimumBalanceForRentExemption(ctx, mintAccountSize, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get rent exemption: %w", err)
	}

	initMint := newInitializeMintInstruction(mint, authorityKey, p.Mintable)

	ownerATA, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive owner ATA: %w", err)
	}

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(
			rentLamports,
			mintAccountSize,
			solana.TokenProgramID,
			authorityKey,
			mint,
		).Build(),
		initMint.Build(),
		associatedtokenaccount.NewCreateInstruction(
			authorityKey,
			owner,
			mint,
		).Build(),
		token.NewMintToInstruction(
			p.SupplyBaseUnits,
			mint,
			ownerATA,
			authorityKey,
			nil,
		).Build(),
	}

	mintSig, err := m.client.SendAndConfirm(ctx, instructions, m.authority, mintAccount.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("mint transaction failed: %w", err)
	}
	log.Infof("mint %s created for %s, supply %d minted to %s", mint, p.Symbol, p.SupplyBaseUnits, ownerATA)

	metadataAddress, err := FindMetadataAddress(mint)
	if err != nil {
		return nil, err
	}

	metadataIx := newCreateMetadataAccountV3Instruction(
		metadataAddress,
		mint,
		authorityKey,
		authorityKey,
		authorityKey,
		p.Name,
		p.Symbol,
		p.MetadataURI,
	)

	metadataSig, err := m.client.SendAndConfirm(ctx, []solana.Instruction{metadataIx}, m.authority)
	if err != nil {
		return nil, fmt.Errorf("metadata transaction failed: %w", err)
	}
	log.Infof("metadata attached to mint %s at %s", mint, metadataAddress)

	return &MintResult{
		MintAddress:       mint.String(),
		TokenAccount:      ownerATA.String(),
		MintSignature:     mintSig.String(),
		MetadataSignature: metadataSig.String(),
	}, nil
}

// MintToSelf mints additional base tokens into the authority's own holding
// account. This is the operational top-up used before pool seeding and is
// separate from the user-facing supply.
func (m *Minter) MintToSelf(ctx context.Context, mintAddress string, amount uint64) (string, error) {
	mint, err := solana.PublicKeyFromBase58(mintAddress)
	if err != nil {
		return "", fmt.Errorf("invalid mint: %w", err)
	}
	authorityKey := m.authority.PublicKey()

	ata, _, err := solana.FindAssociatedTokenAddress(authorityKey, mint)
	if err != nil {
		return "", fmt.Errorf("failed to derive authority ATA: %w", err)
	}

	instructions := []solana.Instruction{}

	exists, err := m.client.AccountExists(ctx, ata)
	if err != nil {
		return "", fmt.Errorf("failed to check authority token account: %w", err)
	}
	if !exists {
		instructions = append(instructions, associatedtokenaccount.NewCreateInstruction(
			authorityKey,
			authorityKey,
			mint,
		).Build())
	}

	instructions = append(instructions, token.NewMintToInstruction(
		amount,
		mint,
		ata,
		authorityKey,
		nil,
	).Build())

	sig, err := m.client.SendAndConfirm(ctx, instructions, m.authority)
	if err != nil {
		return "", fmt.Errorf("top-up mint failed: %w", err)
	}
	return sig.String(), nil
}
