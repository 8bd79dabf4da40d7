package sealevel

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// token program instruction discriminants
const (
	TokenInstrTypeInitializeMint = iota
	TokenInstrTypeInitializeAccount
	TokenInstrTypeInitializeMultisig
	TokenInstrTypeTransfer
	TokenInstrTypeApprove
	TokenInstrTypeRevoke
	TokenInstrTypeSetAuthority
	TokenInstrTypeMintTo
	TokenInstrTypeBurn
	TokenInstrTypeCloseAccount
	TokenInstrTypeFreezeAccount
	TokenInstrTypeThawAccount
	TokenInstrTypeTransferChecked
	TokenInstrTypeApproveChecked
	TokenInstrTypeMintToChecked
	TokenInstrTypeBurnChecked
	TokenInstrTypeInitializeAccount2
	TokenInstrTypeSyncNative
	TokenInstrTypeInitializeAccount3
	TokenInstrTypeInitializeMultisig2
	TokenInstrTypeInitializeMint2
	TokenInstrTypeGetAccountDataSize
	TokenInstrTypeInitializeImmutableOwner
	TokenInstrTypeAmountToUiAmount
	TokenInstrTypeUiAmountToAmount
	TokenInstrTypeInitializeMintCloseAuthority
	TokenInstrTypeTransferFeeExtension
	TokenInstrTypeConfidentialTransferExtension
	TokenInstrTypeDefaultAccountStateExtension
	TokenInstrTypeReallocate
	TokenInstrTypeMemoTransferExtension
	TokenInstrTypeCreateNativeMint
	TokenInstrTypeInitializeNonTransferableMint
	TokenInstrTypeInterestBearingMintExtension
)

// transfer fee sub-instruction discriminants
const (
	TransferFeeInstrTypeInitializeTransferFeeConfig = iota
	TransferFeeInstrTypeTransferCheckedWithFee
	TransferFeeInstrTypeWithdrawWithheldTokensFromMint
	TransferFeeInstrTypeWithdrawWithheldTokensFromAccounts
	TransferFeeInstrTypeHarvestWithheldTokensToMint
	TransferFeeInstrTypeSetTransferFee
)

// default account state sub-instruction discriminants
const (
	DefaultAccountStateInstrTypeInitialize = iota
	DefaultAccountStateInstrTypeUpdate
)

// memo transfer sub-instruction discriminants
const (
	MemoTransferInstrTypeEnable = iota
	MemoTransferInstrTypeDisable
)

// interest bearing mint sub-instruction discriminants
const (
	InterestBearingMintInstrTypeInitialize = iota
	InterestBearingMintInstrTypeUpdateRate
)

// authority types accepted by SetAuthority
const (
	TokenAuthorityTypeMintTokens = iota
	TokenAuthorityTypeFreezeAccount
	TokenAuthorityTypeAccountOwner
	TokenAuthorityTypeCloseAccount
	TokenAuthorityTypeTransferFeeConfig
	TokenAuthorityTypeWithheldWithdraw
	TokenAuthorityTypeCloseMint
	TokenAuthorityTypeInterestRate
)

// readCompactPubkeyOption reads the 1-byte-tagged optional pubkey used in
// instruction payloads. A zero tag carries no key bytes.
func readCompactPubkeyOption(decoder *bin.Decoder) (*solana.PublicKey, error) {
	tag, err := decoder.ReadByte()
	if err != nil {
		return nil, TokenErrInvalidInstruction
	}

	switch tag {
	case 0:
		return nil, nil
	case 1:
		keyBytes, err := decoder.ReadBytes(solana.PublicKeyLength)
		if err != nil {
			return nil, TokenErrInvalidInstruction
		}
		key := solana.PublicKeyFromBytes(keyBytes)
		return &key, nil
	default:
		return nil, TokenErrInvalidInstruction
	}
}

func writeCompactPubkeyOption(encoder *bin.Encoder, key *solana.PublicKey) error {
	if key == nil {
		return encoder.WriteByte(0)
	}
	err := encoder.WriteByte(1)
	if err != nil {
		return err
	}
	return encoder.WriteBytes(key[:], false)
}

func readPubkey(decoder *bin.Decoder) (solana.PublicKey, error) {
	keyBytes, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, TokenErrInvalidInstruction
	}
	return solana.PublicKeyFromBytes(keyBytes), nil
}

// readExtensionTypeList consumes the rest of the payload as 2-byte LE
// extension type codes. Unknown codes and odd-sized tails are rejected.
func readExtensionTypeList(decoder *bin.Decoder) ([]uint16, error) {
	var extensionTypes []uint16
	for decoder.Remaining() >= 2 {
		extType, err := decoder.ReadUint16(bin.LE)
		if err != nil {
			return nil, ErrInvalidAccountData
		}
		if _, known := extensionTypeLen(extType); !known {
			return nil, ErrInvalidAccountData
		}
		extensionTypes = append(extensionTypes, extType)
	}
	if decoder.Remaining() != 0 {
		return nil, ErrInvalidAccountData
	}
	return extensionTypes, nil
}

func writeExtensionTypeList(encoder *bin.Encoder, extensionTypes []uint16) error {
	for _, extType := range extensionTypes {
		err := encoder.WriteUint16(extType, bin.LE)
		if err != nil {
			return err
		}
	}
	return nil
}

type TokenInstrInitializeMint struct {
	Decimals        byte
	MintAuthority   solana.PublicKey
	FreezeAuthority *solana.PublicKey
}

func (instr *TokenInstrInitializeMint) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error

	instr.Decimals, err = decoder.ReadByte()
	if err != nil {
		return TokenErrInvalidInstruction
	}

	instr.MintAuthority, err = readPubkey(decoder)
	if err != nil {
		return err
	}

	instr.FreezeAuthority, err = readCompactPubkeyOption(decoder)
	return err
}

func (instr *TokenInstrInitializeMint) marshalBody(encoder *bin.Encoder) error {
	err := encoder.WriteByte(instr.Decimals)
	if err != nil {
		return err
	}

	err = encoder.WriteBytes(instr.MintAuthority[:], false)
	if err != nil {
		return err
	}

	return writeCompactPubkeyOption(encoder, instr.FreezeAuthority)
}

func (instr *TokenInstrInitializeMint) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteByte(TokenInstrTypeInitializeMint)
	if err != nil {
		return err
	}
	return instr.marshalBody(encoder)
}

type TokenInstrInitializeMint2 struct {
	TokenInstrInitializeMint
}

func (instr *TokenInstrInitializeMint2) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteByte(TokenInstrTypeInitializeMint2)
	if err != nil {
		return err
	}
	return instr.marshalBody(encoder)
}

type TokenInstrInitializeMultisig struct {
	M byte
}

func (instr *TokenInstrInitializeMultisig) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.M, err = decoder.ReadByte()
	if err != nil {
		return TokenErrInvalidInstruction
	}
	return nil
}

func (instr *TokenInstrInitializeMultisig) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteByte(TokenInstrTypeInitializeMultisig)
	if err != nil {
		return err
	}
	return encoder.WriteByte(instr.M)
}

type TokenInstrAmount struct {
	Amount uint64
}

func (instr *TokenInstrAmount) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.Amount, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return TokenErrInvalidInstruction
	}
	return nil
}

func marshalAmountInstr(encoder *bin.Encoder, instrType byte, amount uint64) error {
	err := encoder.WriteByte(instrType)
	if err != nil {
		return err
	}
	return encoder.WriteUint64(amount, bin.LE)
}

type TokenInstrAmountDecimals struct {
	Amount   uint64
	Decimals byte
}

func (instr *TokenInstrAmountDecimals) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error

	instr.Amount, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return TokenErrInvalidInstruction
	}

	instr.Decimals, err = decoder.ReadByte()
	if err != nil {
		return TokenErrInvalidInstruction
	}
	return nil
}

func marshalAmountDecimalsInstr(encoder *bin.Encoder, instrType byte, amount uint64, decimals byte) error {
	err := encoder.WriteByte(instrType)
	if err != nil {
		return err
	}
	err = encoder.WriteUint64(amount, bin.LE)
	if err != nil {
		return err
	}
	return encoder.WriteByte(decimals)
}

type TokenInstrSetAuthority struct {
	AuthorityType byte
	NewAuthority  *solana.PublicKey
}

func (instr *TokenInstrSetAuthority) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error

	instr.AuthorityType, err = decoder.ReadByte()
	if err != nil {
		return TokenErrInvalidInstruction
	}
	if instr.AuthorityType > TokenAuthorityTypeInterestRate {
		return TokenErrInvalidInstruction
	}

	instr.NewAuthority, err = readCompactPubkeyOption(decoder)
	return err
}

func (instr *TokenInstrSetAuthority) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteByte(TokenInstrTypeSetAuthority)
	if err != nil {
		return err
	}
	err = encoder.WriteByte(instr.AuthorityType)
	if err != nil {
		return err
	}
	return writeCompactPubkeyOption(encoder, instr.NewAuthority)
}

type TokenInstrInitializeAccountOwner struct {
	Owner solana.PublicKey
}

func (instr *TokenInstrInitializeAccountOwner) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.Owner, err = readPubkey(decoder)
	return err
}

type TokenInstrExtensionTypeList struct {
	ExtensionTypes []uint16
}

func (instr *TokenInstrExtensionTypeList) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.ExtensionTypes, err = readExtensionTypeList(decoder)
	return err
}

type TokenInstrUiAmountToAmount struct {
	UiAmount string
}

func (instr *TokenInstrUiAmountToAmount) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	rest, err := decoder.ReadBytes(decoder.Remaining())
	if err != nil {
		return TokenErrInvalidInstruction
	}
	instr.UiAmount = string(rest)
	return nil
}

type TokenInstrInitializeMintCloseAuthority struct {
	CloseAuthority *solana.PublicKey
}

func (instr *TokenInstrInitializeMintCloseAuthority) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.CloseAuthority, err = readCompactPubkeyOption(decoder)
	return err
}

func (instr *TokenInstrInitializeMintCloseAuthority) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteByte(TokenInstrTypeInitializeMintCloseAuthority)
	if err != nil {
		return err
	}
	return writeCompactPubkeyOption(encoder, instr.CloseAuthority)
}

type TokenInstrInitializeTransferFeeConfig struct {
	TransferFeeConfigAuthority *solana.PublicKey
	WithdrawWithheldAuthority  *solana.PublicKey
	TransferFeeBasisPoints     uint16
	MaximumFee                 uint64
}

func (instr *TokenInstrInitializeTransferFeeConfig) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error

	instr.TransferFeeConfigAuthority, err = readCompactPubkeyOption(decoder)
	if err != nil {
		return err
	}

	instr.WithdrawWithheldAuthority, err = readCompactPubkeyOption(decoder)
	if err != nil {
		return err
	}

	instr.TransferFeeBasisPoints, err = decoder.ReadUint16(bin.LE)
	if err != nil {
		return TokenErrInvalidInstruction
	}

	instr.MaximumFee, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return TokenErrInvalidInstruction
	}
	return nil
}

func (instr *TokenInstrInitializeTransferFeeConfig) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteByte(TokenInstrTypeTransferFeeExtension)
	if err != nil {
		return err
	}
	err = encoder.WriteByte(TransferFeeInstrTypeInitializeTransferFeeConfig)
	if err != nil {
		return err
	}
	err = writeCompactPubkeyOption(encoder, instr.TransferFeeConfigAuthority)
	if err != nil {
		return err
	}
	err = writeCompactPubkeyOption(encoder, instr.WithdrawWithheldAuthority)
	if err != nil {
		return err
	}
	err = encoder.WriteUint16(instr.TransferFeeBasisPoints, bin.LE)
	if err != nil {
		return err
	}
	return encoder.WriteUint64(instr.MaximumFee, bin.LE)
}

type TokenInstrTransferCheckedWithFee struct {
	Amount   uint64
	Decimals byte
	Fee      uint64
}

func (instr *TokenInstrTransferCheckedWithFee) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error

	instr.Amount, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return TokenErrInvalidInstruction
	}

	instr.Decimals, err = decoder.ReadByte()
	if err != nil {
		return TokenErrInvalidInstruction
	}

	instr.Fee, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return TokenErrInvalidInstruction
	}
	return nil
}

func (instr *TokenInstrTransferCheckedWithFee) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteByte(TokenInstrTypeTransferFeeExtension)
	if err != nil {
		return err
	}
	err = encoder.WriteByte(TransferFeeInstrTypeTransferCheckedWithFee)
	if err != nil {
		return err
	}
	err = encoder.WriteUint64(instr.Amount, bin.LE)
	if err != nil {
		return err
	}
	err = encoder.WriteByte(instr.Decimals)
	if err != nil {
		return err
	}
	return encoder.WriteUint64(instr.Fee, bin.LE)
}

type TokenInstrWithdrawWithheldTokensFromAccounts struct {
	NumTokenAccounts byte
}

func (instr *TokenInstrWithdrawWithheldTokensFromAccounts) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.NumTokenAccounts, err = decoder.ReadByte()
	if err != nil {
		return TokenErrInvalidInstruction
	}
	return nil
}

type TokenInstrSetTransferFee struct {
	TransferFeeBasisPoints uint16
	MaximumFee             uint64
}

func (instr *TokenInstrSetTransferFee) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error

	instr.TransferFeeBasisPoints, err = decoder.ReadUint16(bin.LE)
	if err != nil {
		return TokenErrInvalidInstruction
	}

	instr.MaximumFee, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return TokenErrInvalidInstruction
	}
	return nil
}

func (instr *TokenInstrSetTransferFee) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteByte(TokenInstrTypeTransferFeeExtension)
	if err != nil {
		return err
	}
	err = encoder.WriteByte(TransferFeeInstrTypeSetTransferFee)
	if err != nil {
		return err
	}
	err = encoder.WriteUint16(instr.TransferFeeBasisPoints, bin.LE)
	if err != nil {
		return err
	}
	return encoder.WriteUint64(instr.MaximumFee, bin.LE)
}

type TokenInstrDefaultAccountState struct {
	State byte
}

func (instr *TokenInstrDefaultAccountState) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.State, err = decoder.ReadByte()
	if err != nil {
		return TokenErrInvalidInstruction
	}
	if instr.State > TokenAccountStateFrozen {
		return TokenErrInvalidInstruction
	}
	return nil
}

type TokenInstrInitializeInterestBearingMint struct {
	RateAuthority solana.PublicKey
	Rate          int16
}

func (instr *TokenInstrInitializeInterestBearingMint) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error

	instr.RateAuthority, err = readPubkey(decoder)
	if err != nil {
		return err
	}

	instr.Rate, err = decoder.ReadInt16(bin.LE)
	if err != nil {
		return TokenErrInvalidInstruction
	}
	return nil
}

func (instr *TokenInstrInitializeInterestBearingMint) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteByte(TokenInstrTypeInterestBearingMintExtension)
	if err != nil {
		return err
	}
	err = encoder.WriteByte(InterestBearingMintInstrTypeInitialize)
	if err != nil {
		return err
	}
	err = encoder.WriteBytes(instr.RateAuthority[:], false)
	if err != nil {
		return err
	}
	return encoder.WriteInt16(instr.Rate, bin.LE)
}

type TokenInstrUpdateInterestRate struct {
	Rate int16
}

func (instr *TokenInstrUpdateInterestRate) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.Rate, err = decoder.ReadInt16(bin.LE)
	if err != nil {
		return TokenErrInvalidInstruction
	}
	return nil
}
