package sealevel

import (
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// body decoder positioned past the discriminant byte(s)
func bodyDecoder(t *testing.T, data []byte, discLen int) *bin.Decoder {
	require.Greater(t, len(data), discLen)
	return bin.NewBinDecoder(data[discLen:])
}

func TestTokenInstrInitializeMint_RoundTrip(t *testing.T) {
	freezeAuthority := solana.NewWallet().PublicKey()
	instr := TokenInstrInitializeMint{
		Decimals:        9,
		MintAuthority:   solana.NewWallet().PublicKey(),
		FreezeAuthority: &freezeAuthority,
	}

	data := mustMarshalInstr(t, &instr)
	assert.Equal(t, byte(TokenInstrTypeInitializeMint), data[0])

	var decoded TokenInstrInitializeMint
	require.NoError(t, decoded.UnmarshalWithDecoder(bodyDecoder(t, data, 1)))
	assert.Equal(t, instr, decoded)
}

func TestTokenInstrInitializeMint_NoFreezeAuthority(t *testing.T) {
	instr := TokenInstrInitializeMint{Decimals: 0, MintAuthority: solana.NewWallet().PublicKey()}

	data := mustMarshalInstr(t, &instr)

	var decoded TokenInstrInitializeMint
	require.NoError(t, decoded.UnmarshalWithDecoder(bodyDecoder(t, data, 1)))
	assert.Nil(t, decoded.FreezeAuthority)
	assert.Equal(t, instr.MintAuthority, decoded.MintAuthority)
}

func TestTokenInstrInitializeMint_BadOptionTag(t *testing.T) {
	instr := TokenInstrInitializeMint{MintAuthority: solana.NewWallet().PublicKey()}
	data := mustMarshalInstr(t, &instr)

	// the compact option tag is the last byte when no freeze authority follows
	data[len(data)-1] = 2

	var decoded TokenInstrInitializeMint
	err := decoded.UnmarshalWithDecoder(bodyDecoder(t, data, 1))
	assert.Equal(t, TokenErrInvalidInstruction, err)
}

func TestTokenInstrAmount_Truncated(t *testing.T) {
	var decoded TokenInstrAmount
	err := decoded.UnmarshalWithDecoder(bin.NewBinDecoder([]byte{1, 2, 3}))
	assert.Equal(t, TokenErrInvalidInstruction, err)
}

func TestTokenInstrSetAuthority_RoundTrip(t *testing.T) {
	newAuthority := solana.NewWallet().PublicKey()
	instr := TokenInstrSetAuthority{AuthorityType: TokenAuthorityTypeFreezeAccount, NewAuthority: &newAuthority}

	data := mustMarshalInstr(t, &instr)

	var decoded TokenInstrSetAuthority
	require.NoError(t, decoded.UnmarshalWithDecoder(bodyDecoder(t, data, 1)))
	assert.Equal(t, instr, decoded)
}

func TestTokenInstrSetAuthority_BadAuthorityType(t *testing.T) {
	var decoded TokenInstrSetAuthority
	err := decoded.UnmarshalWithDecoder(bin.NewBinDecoder([]byte{TokenAuthorityTypeInterestRate + 1, 0}))
	assert.Equal(t, TokenErrInvalidInstruction, err)
}

func TestReadExtensionTypeList(t *testing.T) {
	decoder := bin.NewBinDecoder([]byte{ExtensionTypeImmutableOwner, 0, ExtensionTypeMemoTransfer, 0})
	types, err := readExtensionTypeList(decoder)
	require.NoError(t, err)
	assert.Equal(t, []uint16{ExtensionTypeImmutableOwner, ExtensionTypeMemoTransfer}, types)

	// empty list is fine
	types, err = readExtensionTypeList(bin.NewBinDecoder(nil))
	require.NoError(t, err)
	assert.Nil(t, types)

	// odd trailing byte
	_, err = readExtensionTypeList(bin.NewBinDecoder([]byte{ExtensionTypeImmutableOwner, 0, 7}))
	assert.Equal(t, ErrInvalidAccountData, err)

	// unknown extension code
	_, err = readExtensionTypeList(bin.NewBinDecoder([]byte{0xff, 0xff}))
	assert.Equal(t, ErrInvalidAccountData, err)
}

func TestTokenInstrInitializeTransferFeeConfig_RoundTrip(t *testing.T) {
	configAuthority := solana.NewWallet().PublicKey()
	instr := TokenInstrInitializeTransferFeeConfig{
		TransferFeeConfigAuthority: &configAuthority,
		WithdrawWithheldAuthority:  nil,
		TransferFeeBasisPoints:     250,
		MaximumFee:                 1000000,
	}

	data := mustMarshalInstr(t, &instr)
	assert.Equal(t, byte(TokenInstrTypeTransferFeeExtension), data[0])
	assert.Equal(t, byte(TransferFeeInstrTypeInitializeTransferFeeConfig), data[1])

	var decoded TokenInstrInitializeTransferFeeConfig
	require.NoError(t, decoded.UnmarshalWithDecoder(bodyDecoder(t, data, 2)))
	assert.Equal(t, instr, decoded)
}

func TestTokenInstrTransferCheckedWithFee_RoundTrip(t *testing.T) {
	instr := TokenInstrTransferCheckedWithFee{Amount: 5000, Decimals: 6, Fee: 50}

	data := mustMarshalInstr(t, &instr)
	assert.Equal(t, byte(TransferFeeInstrTypeTransferCheckedWithFee), data[1])

	var decoded TokenInstrTransferCheckedWithFee
	require.NoError(t, decoded.UnmarshalWithDecoder(bodyDecoder(t, data, 2)))
	assert.Equal(t, instr, decoded)
}

func TestTokenInstrSetTransferFee_RoundTrip(t *testing.T) {
	instr := TokenInstrSetTransferFee{TransferFeeBasisPoints: 75, MaximumFee: 12345}

	data := mustMarshalInstr(t, &instr)

	var decoded TokenInstrSetTransferFee
	require.NoError(t, decoded.UnmarshalWithDecoder(bodyDecoder(t, data, 2)))
	assert.Equal(t, instr, decoded)
}

func TestTokenInstrInitializeInterestBearingMint_RoundTrip(t *testing.T) {
	instr := TokenInstrInitializeInterestBearingMint{
		RateAuthority: solana.NewWallet().PublicKey(),
		Rate:          -250,
	}

	data := mustMarshalInstr(t, &instr)
	assert.Equal(t, byte(TokenInstrTypeInterestBearingMintExtension), data[0])

	var decoded TokenInstrInitializeInterestBearingMint
	require.NoError(t, decoded.UnmarshalWithDecoder(bodyDecoder(t, data, 2)))
	assert.Equal(t, instr, decoded)
}

func TestTokenInstrUiAmountToAmount_Passthrough(t *testing.T) {
	var decoded TokenInstrUiAmountToAmount
	require.NoError(t, decoded.UnmarshalWithDecoder(bin.NewBinDecoder([]byte("1.5"))))
	assert.Equal(t, "1.5", decoded.UiAmount)

	require.NoError(t, decoded.UnmarshalWithDecoder(bin.NewBinDecoder(nil)))
	assert.Equal(t, "", decoded.UiAmount)
}
