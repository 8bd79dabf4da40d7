package sealevel

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAccountLenForExtensions(t *testing.T) {
	dataLen, err := getAccountLenForExtensions(TokenAccountTypeMint, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(TokenMintLen), dataLen)

	dataLen, err = getAccountLenForExtensions(TokenAccountTypeAccount, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(TokenAccountLen), dataLen)

	// base + type byte + 4-byte TLV header + 108-byte payload
	dataLen, err = getAccountLenForExtensions(TokenAccountTypeMint, []uint16{ExtensionTypeTransferFeeConfig})
	require.NoError(t, err)
	assert.Equal(t, uint64(TokenAccountLen+1+4+TransferFeeConfigLen), dataLen)

	dataLen, err = getAccountLenForExtensions(TokenAccountTypeAccount, []uint16{ExtensionTypeTransferFeeAmount})
	require.NoError(t, err)
	assert.Equal(t, uint64(TokenAccountLen+1+4+TransferFeeAmountLen), dataLen)

	// duplicates count once
	dataLen, err = getAccountLenForExtensions(TokenAccountTypeAccount,
		[]uint16{ExtensionTypeImmutableOwner, ExtensionTypeImmutableOwner})
	require.NoError(t, err)
	assert.Equal(t, uint64(TokenAccountLen+1+4), dataLen)

	_, err = getAccountLenForExtensions(TokenAccountTypeAccount, []uint16{9999})
	assert.Equal(t, ErrInvalidAccountData, err)
}

// buffer holding an initialized account plus room for the given TLV bytes
func extendedAccountBuffer(t *testing.T, tlvRoom int) []byte {
	data := make([]byte, TokenAccountLen+1+tlvRoom)
	acct := TokenAccount{
		Mint:  solana.NewWallet().PublicKey(),
		Owner: solana.NewWallet().PublicKey(),
		State: TokenAccountStateInitialized,
	}
	require.NoError(t, acct.Pack(data))
	data[TokenAccountLen] = TokenAccountTypeAccount
	return data
}

func TestExtensionTLV_InitAndLookup(t *testing.T) {
	// room for a memo transfer entry and an immutable owner entry
	data := extendedAccountBuffer(t, 4+MemoTransferLen+4)
	state, err := unpackTokenAccountState(data)
	require.NoError(t, err)

	assert.False(t, state.Exts.HasExtension(ExtensionTypeMemoTransfer))

	payload, err := state.Exts.InitExtension(ExtensionTypeMemoTransfer, false)
	require.NoError(t, err)
	require.Len(t, payload, MemoTransferLen)
	payload[0] = 1

	assert.True(t, state.Exts.HasExtension(ExtensionTypeMemoTransfer))

	// re-initializing requires overwrite
	_, err = state.Exts.InitExtension(ExtensionTypeMemoTransfer, false)
	assert.Equal(t, TokenErrExtensionAlreadyInitialized, err)

	payload, err = state.Exts.InitExtension(ExtensionTypeMemoTransfer, true)
	require.NoError(t, err)
	assert.Equal(t, byte(1), payload[0])

	_, err = state.Exts.InitExtension(ExtensionTypeImmutableOwner, false)
	require.NoError(t, err)

	types, err := state.Exts.ExtensionTypes()
	require.NoError(t, err)
	assert.Equal(t, []uint16{ExtensionTypeMemoTransfer, ExtensionTypeImmutableOwner}, types)

	// writes through the payload slice land in the account data
	reread, err := unpackTokenAccountState(data)
	require.NoError(t, err)
	payload, err = reread.Exts.Extension(ExtensionTypeMemoTransfer)
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, byte(1), payload[0])
}

func TestExtensionTLV_NoRoom(t *testing.T) {
	data := extendedAccountBuffer(t, 4)

	state, err := unpackTokenAccountState(data)
	require.NoError(t, err)

	// a memo transfer entry needs one payload byte beyond the header
	_, err = state.Exts.InitExtension(ExtensionTypeMemoTransfer, false)
	assert.Equal(t, ErrInvalidAccountData, err)
}

func TestExtensionTLV_TypeMismatch(t *testing.T) {
	data := extendedAccountBuffer(t, 4+MemoTransferLen)
	state, err := unpackTokenAccountState(data)
	require.NoError(t, err)

	// mint-side extensions cannot live on a token account
	_, err = state.Exts.Extension(ExtensionTypeTransferFeeConfig)
	assert.Equal(t, TokenErrExtensionTypeMismatch, err)

	_, err = state.Exts.InitExtension(ExtensionTypeDefaultAccountState, false)
	assert.Equal(t, TokenErrExtensionTypeMismatch, err)
}

func TestExtensionTLV_UnknownTypeSkipped(t *testing.T) {
	unknownPayloadLen := 3
	data := extendedAccountBuffer(t, 4+unknownPayloadLen+4+MemoTransferLen)

	// a record written by a newer program revision sits ahead of ours
	tlv := data[TokenAccountLen+1:]
	binary.LittleEndian.PutUint16(tlv, 9999)
	binary.LittleEndian.PutUint16(tlv[2:], uint16(unknownPayloadLen))

	state, err := unpackTokenAccountState(data)
	require.NoError(t, err)

	_, err = state.Exts.InitExtension(ExtensionTypeMemoTransfer, false)
	require.NoError(t, err)
	assert.True(t, state.Exts.HasExtension(ExtensionTypeMemoTransfer))

	types, err := state.Exts.ExtensionTypes()
	require.NoError(t, err)
	assert.Equal(t, []uint16{9999, ExtensionTypeMemoTransfer}, types)

	// the foreign record survives untouched
	assert.Equal(t, uint16(9999), binary.LittleEndian.Uint16(tlv))
}

func TestUnpackState_MultisigLenReserved(t *testing.T) {
	_, err := unpackMintState(make([]byte, TokenMultisigLen))
	assert.Equal(t, ErrInvalidAccountData, err)

	_, err = unpackTokenAccountStateUninitialized(make([]byte, TokenMultisigLen))
	assert.Equal(t, ErrInvalidAccountData, err)
}

func TestUnpackMintState_PaddingMustBeZero(t *testing.T) {
	dataLen, err := getAccountLenForExtensions(TokenAccountTypeMint, []uint16{ExtensionTypeNonTransferable})
	require.NoError(t, err)

	data := make([]byte, dataLen)
	data[TokenMintLen+5] = 1
	_, err = unpackMintStateUninitialized(data)
	assert.Equal(t, ErrInvalidAccountData, err)
}

func TestUnpackMintState_AccountTypeByte(t *testing.T) {
	dataLen, err := getAccountLenForExtensions(TokenAccountTypeMint, []uint16{ExtensionTypeNonTransferable})
	require.NoError(t, err)

	data := make([]byte, dataLen)
	mint := TokenMint{IsInitialized: true, Decimals: 6}
	require.NoError(t, mint.Pack(data))

	// an extended initialized mint must carry the mint discriminator
	data[TokenAccountLen] = TokenAccountTypeAccount
	_, err = unpackMintState(data)
	assert.Equal(t, ErrInvalidAccountData, err)

	data[TokenAccountLen] = TokenAccountTypeMint
	state, err := unpackMintState(data)
	require.NoError(t, err)
	assert.Equal(t, byte(6), state.Mint.Decimals)
}

func TestUnpackUninitialized_FirstExtensionSetsBaseType(t *testing.T) {
	dataLen, err := getAccountLenForExtensions(TokenAccountTypeAccount, []uint16{ExtensionTypeTransferFeeAmount})
	require.NoError(t, err)

	// an account-side extension forbids initializing the buffer as a mint
	data := make([]byte, dataLen)
	tlv := data[TokenAccountLen+1:]
	binary.LittleEndian.PutUint16(tlv, ExtensionTypeTransferFeeAmount)
	binary.LittleEndian.PutUint16(tlv[2:], TransferFeeAmountLen)

	_, err = unpackMintStateUninitialized(data)
	assert.Equal(t, TokenErrExtensionBaseMismatch, err)

	_, err = unpackTokenAccountStateUninitialized(data)
	require.NoError(t, err)
}

func TestRequiredAccountExtensions(t *testing.T) {
	assert.Equal(t, []uint16{ExtensionTypeTransferFeeAmount}, requiredAccountExtensions(ExtensionTypeTransferFeeConfig))
	assert.Equal(t, []uint16{ExtensionTypeImmutableOwner}, requiredAccountExtensions(ExtensionTypeNonTransferable))
	assert.Nil(t, requiredAccountExtensions(ExtensionTypeMintCloseAuthority))
}
