package solana

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitializeMintInstruction(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	t.Run("Mintable Keeps Service Authority As Freeze Authority", func(t *testing.T) {
		ix := newInitializeMintInstruction(mint, authority, true)
		require.NotNil(t, ix.FreezeAuthority)
		assert.Equal(t, authority, *ix.FreezeAuthority)
	})

	t.Run("Non Mintable Leaves Freeze Authority Unset", func(t *testing.T) {
		ix := newInitializeMintInstruction(mint, authority, false)
		assert.Nil(t, ix.FreezeAuthority)
	})

	t.Run("Fixed Decimals And Mint Authority", func(t *testing.T) {
		for _, mintable := range []bool{true, false} {
			ix := newInitializeMintInstruction(mint, authority, mintable)
			require.NotNil(t, ix.Decimals)
			assert.Equal(t, uint8(TokenDecimals), *ix.Decimals)
			require.NotNil(t, ix.MintAuthority)
			assert.Equal(t, authority, *ix.MintAuthority)

			built, err := ix.ValidateAndBuild()
			require.NoError(t, err)
			assert.Equal(t, solana.TokenProgramID, built.ProgramID())
		}
	})
}
