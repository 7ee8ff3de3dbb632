package solana

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Metaplex Token Metadata program.
var MplTokenMetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

const createMetadataAccountV3Discriminator = 33

// FindMetadataAddress derives the metadata account for a mint from the fixed
// program namespace: ["metadata", program id, mint].
func FindMetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	seeds := [][]byte{
		[]byte("metadata"),
		MplTokenMetadataProgramID[:],
		mint[:],
	}
	address, _, err := solana.FindProgramAddress(seeds, MplTokenMetadataProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to find metadata PDA: %w", err)
	}
	return address, nil
}

func writeBorshString(buf *bytes.Buffer, s string) {
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(s)))
	buf.Write(length[:])
	buf.WriteString(s)
}

// newCreateMetadataAccountV3Instruction builds the Metaplex
// CreateMetadataAccountV3 instruction attaching name, symbol and the
// off-ledger URI to the mint's metadata PDA. Zero seller fee, no creators,
// mutable by the update authority.
func newCreateMetadataAccountV3Instruction(metadata, mint, mintAuthority, payer, updateAuthority solana.PublicKey, name, symbol, uri string) solana.Instruction {
	data := new(bytes.Buffer)
	data.WriteByte(createMetadataAccountV3Discriminator)

	// DataV2
	writeBorshString(data, name)
	writeBorshString(data, symbol)
	writeBorshString(data, uri)
	var sellerFee [2]byte
	binary.LittleEndian.PutUint16(sellerFee[:], 0)
	data.Write(sellerFee[:])
	data.WriteByte(0) // creators: None
	data.WriteByte(0) // collection: None
	data.WriteByte(0) // uses: None

	data.WriteByte(1) // is_mutable: true
	data.WriteByte(0) // collection_details: None

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(metadata, true, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(mintAuthority, false, true),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(updateAuthority, false, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}

	return solana.NewInstruction(MplTokenMetadataProgramID, accounts, data.Bytes())
}
