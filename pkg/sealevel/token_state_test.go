package sealevel

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMint_RoundTrip(t *testing.T) {
	mintAuthority := solana.NewWallet().PublicKey()
	freezeAuthority := solana.NewWallet().PublicKey()

	mint := TokenMint{
		MintAuthority:   &mintAuthority,
		Supply:          123456789,
		Decimals:        9,
		IsInitialized:   true,
		FreezeAuthority: &freezeAuthority,
	}

	data := make([]byte, TokenMintLen)
	require.NoError(t, mint.Pack(data))

	decoded, err := unmarshalTokenMint(data)
	require.NoError(t, err)
	assert.Equal(t, &mint, decoded)
}

func TestTokenMint_NoAuthorities(t *testing.T) {
	mint := TokenMint{Supply: 1, Decimals: 2, IsInitialized: true}

	data := make([]byte, TokenMintLen)
	require.NoError(t, mint.Pack(data))

	decoded, err := unmarshalTokenMint(data)
	require.NoError(t, err)
	assert.Nil(t, decoded.MintAuthority)
	assert.Nil(t, decoded.FreezeAuthority)
}

func TestTokenMint_Uninitialized(t *testing.T) {
	data := make([]byte, TokenMintLen)
	_, err := unmarshalTokenMint(data)
	assert.Equal(t, ErrUninitializedAccount, err)

	// the unchecked variant accepts a zeroed record
	mint, err := unmarshalTokenMintUnchecked(data)
	require.NoError(t, err)
	assert.False(t, mint.IsInitialized)
}

func TestTokenMint_BadOptionTag(t *testing.T) {
	data := make([]byte, TokenMintLen)
	data[0] = 2 // COption tags are 0 or 1
	_, err := unmarshalTokenMintUnchecked(data)
	assert.Equal(t, ErrInvalidAccountData, err)
}

func TestTokenMint_WrongLength(t *testing.T) {
	_, err := unmarshalTokenMintUnchecked(make([]byte, TokenMintLen-1))
	assert.Equal(t, ErrInvalidAccountData, err)

	_, err = unmarshalTokenMintUnchecked(make([]byte, TokenMintLen+1))
	assert.Equal(t, ErrInvalidAccountData, err)
}

func TestTokenAccount_RoundTrip(t *testing.T) {
	delegate := solana.NewWallet().PublicKey()
	closeAuthority := solana.NewWallet().PublicKey()
	reserve := uint64(2039280)

	acct := TokenAccount{
		Mint:            solana.NewWallet().PublicKey(),
		Owner:           solana.NewWallet().PublicKey(),
		Amount:          42,
		Delegate:        &delegate,
		State:           TokenAccountStateInitialized,
		IsNative:        &reserve,
		DelegatedAmount: 7,
		CloseAuthority:  &closeAuthority,
	}

	data := make([]byte, TokenAccountLen)
	require.NoError(t, acct.Pack(data))

	decoded, err := unmarshalTokenAccount(data)
	require.NoError(t, err)
	assert.Equal(t, &acct, decoded)
	assert.True(t, decoded.IsNativeAccount())
	assert.False(t, decoded.IsFrozen())
}

func TestTokenAccount_Minimal(t *testing.T) {
	acct := TokenAccount{
		Mint:  solana.NewWallet().PublicKey(),
		Owner: solana.NewWallet().PublicKey(),
		State: TokenAccountStateFrozen,
	}

	data := make([]byte, TokenAccountLen)
	require.NoError(t, acct.Pack(data))

	decoded, err := unmarshalTokenAccount(data)
	require.NoError(t, err)
	assert.Nil(t, decoded.Delegate)
	assert.Nil(t, decoded.IsNative)
	assert.Nil(t, decoded.CloseAuthority)
	assert.True(t, decoded.IsFrozen())
	assert.False(t, decoded.IsNativeAccount())
}

func TestTokenAccount_Uninitialized(t *testing.T) {
	data := make([]byte, TokenAccountLen)
	_, err := unmarshalTokenAccount(data)
	assert.Equal(t, ErrUninitializedAccount, err)
}

func TestTokenMultisig_RoundTrip(t *testing.T) {
	multisig := TokenMultisig{M: 2, N: 3, IsInitialized: true}
	for i := 0; i < int(multisig.N); i++ {
		multisig.Signers[i] = solana.NewWallet().PublicKey()
	}

	data := make([]byte, TokenMultisigLen)
	require.NoError(t, multisig.Pack(data))

	decoded, err := unmarshalTokenMultisig(data)
	require.NoError(t, err)
	assert.Equal(t, &multisig, decoded)
}

func TestTokenMultisig_WrongLength(t *testing.T) {
	_, err := unmarshalTokenMultisigUnchecked(make([]byte, TokenAccountLen))
	assert.Equal(t, ErrInvalidAccountData, err)
}
