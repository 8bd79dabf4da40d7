package sealevel

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// base record sizes
const (
	TokenMintLen     = 82
	TokenAccountLen  = 165
	TokenMultisigLen = 355
)

// signer bounds for multisig accounts
const (
	TokenMinSigners = 1
	TokenMaxSigners = 11
)

// token account states
const (
	TokenAccountStateUninitialized = iota
	TokenAccountStateInitialized
	TokenAccountStateFrozen
)

// TokenMint is the base 82-byte mint record. Optional authorities use the
// 4-byte-tag optional key encoding on the wire; absent is nil here.
type TokenMint struct {
	MintAuthority   *solana.PublicKey
	Supply          uint64
	Decimals        byte
	IsInitialized   bool
	FreezeAuthority *solana.PublicKey
}

type TokenAccount struct {
	Mint            solana.PublicKey
	Owner           solana.PublicKey
	Amount          uint64
	Delegate        *solana.PublicKey
	State           byte
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *solana.PublicKey
}

type TokenMultisig struct {
	M             byte
	N             byte
	IsInitialized bool
	Signers       [TokenMaxSigners]solana.PublicKey
}

func readCOptionKey(decoder *bin.Decoder) (*solana.PublicKey, error) {
	tag, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}

	keyBytes, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return nil, err
	}

	switch tag {
	case 0:
		return nil, nil
	case 1:
		key := solana.PublicKeyFromBytes(keyBytes)
		return &key, nil
	default:
		return nil, ErrInvalidAccountData
	}
}

func writeCOptionKey(encoder *bin.Encoder, key *solana.PublicKey) error {
	var tag uint32
	var keyBytes [solana.PublicKeyLength]byte
	if key != nil {
		tag = 1
		keyBytes = *key
	}

	err := encoder.WriteUint32(tag, bin.LE)
	if err != nil {
		return err
	}
	return encoder.WriteBytes(keyBytes[:], false)
}

func readCOptionU64(decoder *bin.Decoder) (*uint64, error) {
	tag, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}

	value, err := decoder.ReadUint64(bin.LE)
	if err != nil {
		return nil, err
	}

	switch tag {
	case 0:
		return nil, nil
	case 1:
		return &value, nil
	default:
		return nil, ErrInvalidAccountData
	}
}

func writeCOptionU64(encoder *bin.Encoder, value *uint64) error {
	var tag uint32
	var v uint64
	if value != nil {
		tag = 1
		v = *value
	}

	err := encoder.WriteUint32(tag, bin.LE)
	if err != nil {
		return err
	}
	return encoder.WriteUint64(v, bin.LE)
}

func readBoolByte(decoder *bin.Decoder) (bool, error) {
	b, err := decoder.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, ErrInvalidAccountData
	}
}

func (mint *TokenMint) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error

	mint.MintAuthority, err = readCOptionKey(decoder)
	if err != nil {
		return err
	}

	mint.Supply, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}

	mint.Decimals, err = decoder.ReadByte()
	if err != nil {
		return err
	}

	mint.IsInitialized, err = readBoolByte(decoder)
	if err != nil {
		return err
	}

	mint.FreezeAuthority, err = readCOptionKey(decoder)
	return err
}

func (mint *TokenMint) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := writeCOptionKey(encoder, mint.MintAuthority)
	if err != nil {
		return err
	}

	err = encoder.WriteUint64(mint.Supply, bin.LE)
	if err != nil {
		return err
	}

	err = encoder.WriteByte(mint.Decimals)
	if err != nil {
		return err
	}

	err = encoder.WriteBool(mint.IsInitialized)
	if err != nil {
		return err
	}

	return writeCOptionKey(encoder, mint.FreezeAuthority)
}

func (acct *TokenAccount) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	mint, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	acct.Mint = solana.PublicKeyFromBytes(mint)

	owner, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	acct.Owner = solana.PublicKeyFromBytes(owner)

	acct.Amount, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}

	acct.Delegate, err = readCOptionKey(decoder)
	if err != nil {
		return err
	}

	acct.State, err = decoder.ReadByte()
	if err != nil {
		return err
	}
	if acct.State > TokenAccountStateFrozen {
		return ErrInvalidAccountData
	}

	acct.IsNative, err = readCOptionU64(decoder)
	if err != nil {
		return err
	}

	acct.DelegatedAmount, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}

	acct.CloseAuthority, err = readCOptionKey(decoder)
	return err
}

func (acct *TokenAccount) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteBytes(acct.Mint[:], false)
	if err != nil {
		return err
	}

	err = encoder.WriteBytes(acct.Owner[:], false)
	if err != nil {
		return err
	}

	err = encoder.WriteUint64(acct.Amount, bin.LE)
	if err != nil {
		return err
	}

	err = writeCOptionKey(encoder, acct.Delegate)
	if err != nil {
		return err
	}

	err = encoder.WriteByte(acct.State)
	if err != nil {
		return err
	}

	err = writeCOptionU64(encoder, acct.IsNative)
	if err != nil {
		return err
	}

	err = encoder.WriteUint64(acct.DelegatedAmount, bin.LE)
	if err != nil {
		return err
	}

	return writeCOptionKey(encoder, acct.CloseAuthority)
}

func (multisig *TokenMultisig) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error

	multisig.M, err = decoder.ReadByte()
	if err != nil {
		return err
	}

	multisig.N, err = decoder.ReadByte()
	if err != nil {
		return err
	}

	multisig.IsInitialized, err = readBoolByte(decoder)
	if err != nil {
		return err
	}

	for i := 0; i < TokenMaxSigners; i++ {
		signer, err := decoder.ReadBytes(solana.PublicKeyLength)
		if err != nil {
			return err
		}
		multisig.Signers[i] = solana.PublicKeyFromBytes(signer)
	}
	return nil
}

func (multisig *TokenMultisig) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteByte(multisig.M)
	if err != nil {
		return err
	}

	err = encoder.WriteByte(multisig.N)
	if err != nil {
		return err
	}

	err = encoder.WriteBool(multisig.IsInitialized)
	if err != nil {
		return err
	}

	for i := 0; i < TokenMaxSigners; i++ {
		err = encoder.WriteBytes(multisig.Signers[i][:], false)
		if err != nil {
			return err
		}
	}
	return nil
}

func (acct *TokenAccount) IsInitialized() bool {
	return acct.State != TokenAccountStateUninitialized
}

func (acct *TokenAccount) IsFrozen() bool {
	return acct.State == TokenAccountStateFrozen
}

func (acct *TokenAccount) IsNativeAccount() bool {
	return acct.IsNative != nil
}

func unmarshalTokenMintUnchecked(data []byte) (*TokenMint, error) {
	if len(data) != TokenMintLen {
		return nil, ErrInvalidAccountData
	}

	mint := new(TokenMint)
	decoder := bin.NewBinDecoder(data)
	err := mint.UnmarshalWithDecoder(decoder)
	if err != nil {
		return nil, ErrInvalidAccountData
	}
	return mint, nil
}

func unmarshalTokenMint(data []byte) (*TokenMint, error) {
	mint, err := unmarshalTokenMintUnchecked(data)
	if err != nil {
		return nil, err
	}
	if !mint.IsInitialized {
		return nil, ErrUninitializedAccount
	}
	return mint, nil
}

func unmarshalTokenAccountUnchecked(data []byte) (*TokenAccount, error) {
	if len(data) != TokenAccountLen {
		return nil, ErrInvalidAccountData
	}

	acct := new(TokenAccount)
	decoder := bin.NewBinDecoder(data)
	err := acct.UnmarshalWithDecoder(decoder)
	if err != nil {
		return nil, ErrInvalidAccountData
	}
	return acct, nil
}

func unmarshalTokenAccount(data []byte) (*TokenAccount, error) {
	acct, err := unmarshalTokenAccountUnchecked(data)
	if err != nil {
		return nil, err
	}
	if !acct.IsInitialized() {
		return nil, ErrUninitializedAccount
	}
	return acct, nil
}

func unmarshalTokenMultisigUnchecked(data []byte) (*TokenMultisig, error) {
	if len(data) != TokenMultisigLen {
		return nil, ErrInvalidAccountData
	}

	multisig := new(TokenMultisig)
	decoder := bin.NewBinDecoder(data)
	err := multisig.UnmarshalWithDecoder(decoder)
	if err != nil {
		return nil, ErrInvalidAccountData
	}
	return multisig, nil
}

func unmarshalTokenMultisig(data []byte) (*TokenMultisig, error) {
	multisig, err := unmarshalTokenMultisigUnchecked(data)
	if err != nil {
		return nil, err
	}
	if !multisig.IsInitialized {
		return nil, ErrUninitializedAccount
	}
	return multisig, nil
}

func (mint *TokenMint) Pack(data []byte) error {
	if len(data) < TokenMintLen {
		return ErrInvalidAccountData
	}

	buf := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buf)
	err := mint.MarshalWithEncoder(encoder)
	if err != nil {
		return err
	}
	copy(data[:TokenMintLen], buf.Bytes())
	return nil
}

func (acct *TokenAccount) Pack(data []byte) error {
	if len(data) < TokenAccountLen {
		return ErrInvalidAccountData
	}

	buf := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buf)
	err := acct.MarshalWithEncoder(encoder)
	if err != nil {
		return err
	}
	copy(data[:TokenAccountLen], buf.Bytes())
	return nil
}

func (multisig *TokenMultisig) Pack(data []byte) error {
	if len(data) < TokenMultisigLen {
		return ErrInvalidAccountData
	}

	buf := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buf)
	err := multisig.MarshalWithEncoder(encoder)
	if err != nil {
		return err
	}
	copy(data[:TokenMultisigLen], buf.Bytes())
	return nil
}
