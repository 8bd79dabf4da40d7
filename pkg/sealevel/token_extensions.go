package sealevel

import (
	"encoding/binary"

	"github.com/solwasm/tokenrt/pkg/safemath"
)

// account type discriminator byte at offset 165 of extended buffers
const (
	TokenAccountTypeUninitialized = iota
	TokenAccountTypeMint
	TokenAccountTypeAccount
)

const tokenAccountTypeIndex = TokenAccountLen

// extension type codes
const (
	ExtensionTypeUninitialized = iota
	ExtensionTypeTransferFeeConfig
	ExtensionTypeTransferFeeAmount
	ExtensionTypeMintCloseAuthority
	ExtensionTypeConfidentialTransferMint
	ExtensionTypeConfidentialTransferAccount
	ExtensionTypeDefaultAccountState
	ExtensionTypeImmutableOwner
	ExtensionTypeMemoTransfer
	ExtensionTypeNonTransferable
	ExtensionTypeInterestBearingConfig
)

const (
	tlvTypeLen   = 2
	tlvLengthLen = 2
)

// extensionTypeLen returns the fixed payload size of a known extension type.
// The confidential transfer payloads carry no data until the ZK machinery
// lands, matching the on-disk format this runtime must stay compatible with.
func extensionTypeLen(extType uint16) (uint64, bool) {
	switch extType {
	case ExtensionTypeUninitialized:
		return 0, true
	case ExtensionTypeTransferFeeConfig:
		return TransferFeeConfigLen, true
	case ExtensionTypeTransferFeeAmount:
		return TransferFeeAmountLen, true
	case ExtensionTypeMintCloseAuthority:
		return MintCloseAuthorityLen, true
	case ExtensionTypeConfidentialTransferMint:
		return 0, true
	case ExtensionTypeConfidentialTransferAccount:
		return 0, true
	case ExtensionTypeDefaultAccountState:
		return DefaultAccountStateLen, true
	case ExtensionTypeImmutableOwner:
		return 0, true
	case ExtensionTypeMemoTransfer:
		return MemoTransferLen, true
	case ExtensionTypeNonTransferable:
		return 0, true
	case ExtensionTypeInterestBearingConfig:
		return InterestBearingConfigLen, true
	}
	return 0, false
}

// extensionAccountType reports which account type a known extension belongs
// on. Unknown types return TokenAccountTypeUninitialized.
func extensionAccountType(extType uint16) byte {
	switch extType {
	case ExtensionTypeTransferFeeConfig, ExtensionTypeMintCloseAuthority,
		ExtensionTypeConfidentialTransferMint, ExtensionTypeDefaultAccountState,
		ExtensionTypeNonTransferable, ExtensionTypeInterestBearingConfig:
		return TokenAccountTypeMint
	case ExtensionTypeTransferFeeAmount, ExtensionTypeConfidentialTransferAccount,
		ExtensionTypeImmutableOwner, ExtensionTypeMemoTransfer:
		return TokenAccountTypeAccount
	}
	return TokenAccountTypeUninitialized
}

// requiredAccountExtensions lists the account extensions implied by a mint
// extension.
func requiredAccountExtensions(mintExtType uint16) []uint16 {
	switch mintExtType {
	case ExtensionTypeTransferFeeConfig:
		return []uint16{ExtensionTypeTransferFeeAmount}
	case ExtensionTypeNonTransferable:
		return []uint16{ExtensionTypeImmutableOwner}
	}
	return nil
}

func tlvEntryLen(extType uint16) (uint64, error) {
	typeLen, known := extensionTypeLen(extType)
	if !known {
		return 0, ErrInvalidAccountData
	}
	return tlvTypeLen + tlvLengthLen + typeLen, nil
}

// getTotalTlvLen computes the TLV area size for a deduplicated extension set,
// bumping by one extra type slot if the resulting account length would
// collide with the multisig record size.
func getTotalTlvLen(extensionTypes []uint16) (uint64, error) {
	var deduped []uint16
	for _, extType := range extensionTypes {
		var seen bool
		for _, d := range deduped {
			if d == extType {
				seen = true
				break
			}
		}
		if !seen {
			deduped = append(deduped, extType)
		}
	}

	var tlvLen uint64
	for _, extType := range deduped {
		entryLen, err := tlvEntryLen(extType)
		if err != nil {
			return 0, err
		}
		tlvLen = safemath.SaturatingAddU64(tlvLen, entryLen)
	}

	if tlvLen == TokenMultisigLen-TokenAccountLen-1 {
		tlvLen = safemath.SaturatingAddU64(tlvLen, tlvTypeLen)
	}
	return tlvLen, nil
}

// getAccountLenForExtensions returns the full account data size needed to
// hold a base record of the given account type plus the listed extensions.
func getAccountLenForExtensions(accountType byte, extensionTypes []uint16) (uint64, error) {
	if len(extensionTypes) == 0 {
		if accountType == TokenAccountTypeMint {
			return TokenMintLen, nil
		}
		return TokenAccountLen, nil
	}

	tlvLen, err := getTotalTlvLen(extensionTypes)
	if err != nil {
		return 0, err
	}
	return safemath.SaturatingAddU64(TokenAccountLen+1, tlvLen), nil
}

// checkMinLenAndNotMultisig rejects buffers below the base size and buffers
// that are exactly the multisig size, which is reserved.
func checkMinLenAndNotMultisig(data []byte, minimumLen uint64) error {
	if uint64(len(data)) == TokenMultisigLen || uint64(len(data)) < minimumLen {
		return ErrInvalidAccountData
	}
	return nil
}

// typeAndTlvIndices locates the account-type byte and the TLV start for an
// extended buffer, verifying that mint padding bytes are all zero. A buffer
// of exactly the base length has no extension area.
func typeAndTlvIndices(data []byte, baseLen uint64) (int, int, error) {
	if uint64(len(data)) == baseLen {
		return -1, -1, nil
	}

	// the buffer must have room for the account type discriminator
	if len(data) <= tokenAccountTypeIndex {
		return 0, 0, ErrInvalidAccountData
	}

	for i := baseLen; i < tokenAccountTypeIndex; i++ {
		if data[i] != 0 {
			return 0, 0, ErrInvalidAccountData
		}
	}
	return tokenAccountTypeIndex, tokenAccountTypeIndex + 1, nil
}

// tokenStateExtensions is a view over the TLV area of an extended buffer.
// The payload slices it returns alias the underlying account data so writes
// land directly in the account.
type tokenStateExtensions struct {
	data        []byte
	tlvStart    int
	accountType byte
}

func (ext *tokenStateExtensions) tlvData() []byte {
	if ext.tlvStart < 0 || ext.tlvStart > len(ext.data) {
		return nil
	}
	return ext.data[ext.tlvStart:]
}

// findExtension walks the TLV records looking for extType. With init set it
// returns the first uninitialized slot when the type is absent. Unknown type
// codes are skipped over using their recorded length so foreign records are
// preserved untouched.
func findExtension(tlv []byte, extType uint16, init bool) (start int, found bool, err error) {
	idx := 0
	for idx+tlvTypeLen+tlvLengthLen <= len(tlv) {
		entryType := binary.LittleEndian.Uint16(tlv[idx:])
		if entryType == extType {
			return idx, true, nil
		}
		if entryType == ExtensionTypeUninitialized {
			if init {
				return idx, false, nil
			}
			return 0, false, nil
		}

		length := int(binary.LittleEndian.Uint16(tlv[idx+tlvTypeLen:]))
		idx += tlvTypeLen + tlvLengthLen + length
	}

	if init {
		return 0, false, ErrInvalidAccountData
	}
	return 0, false, nil
}

// Extension returns the payload slice of an initialized extension, or nil if
// the extension is absent. The requested type must belong on this account
// type.
func (ext *tokenStateExtensions) Extension(extType uint16) ([]byte, error) {
	if extensionAccountType(extType) != ext.accountType {
		return nil, TokenErrExtensionTypeMismatch
	}

	tlv := ext.tlvData()
	if tlv == nil {
		return nil, nil
	}

	start, ok, err := findExtension(tlv, extType, false)
	if err != nil || !ok {
		return nil, err
	}

	length := int(binary.LittleEndian.Uint16(tlv[start+tlvTypeLen:]))
	valueStart := start + tlvTypeLen + tlvLengthLen
	if valueStart+length > len(tlv) {
		return nil, ErrInvalidAccountData
	}
	return tlv[valueStart : valueStart+length], nil
}

func (ext *tokenStateExtensions) HasExtension(extType uint16) bool {
	payload, err := ext.Extension(extType)
	return err == nil && payload != nil
}

// InitExtension reserves and returns the payload slice for extType, writing
// its type and length header. Without overwrite, an already present
// extension fails.
func (ext *tokenStateExtensions) InitExtension(extType uint16, overwrite bool) ([]byte, error) {
	if extensionAccountType(extType) != ext.accountType {
		return nil, TokenErrExtensionTypeMismatch
	}

	typeLen, known := extensionTypeLen(extType)
	if !known {
		return nil, ErrInvalidAccountData
	}

	tlv := ext.tlvData()
	if tlv == nil {
		return nil, ErrInvalidAccountData
	}

	start, found, err := findExtension(tlv, extType, true)
	if err != nil {
		return nil, err
	}
	if found && !overwrite {
		return nil, TokenErrExtensionAlreadyInitialized
	}

	valueStart := start + tlvTypeLen + tlvLengthLen
	if valueStart+int(typeLen) > len(tlv) {
		return nil, ErrInvalidAccountData
	}

	binary.LittleEndian.PutUint16(tlv[start:], extType)
	binary.LittleEndian.PutUint16(tlv[start+tlvTypeLen:], uint16(typeLen))
	return tlv[valueStart : valueStart+int(typeLen)], nil
}

// ExtensionTypes lists the initialized extension types in TLV order,
// including unknown codes.
func (ext *tokenStateExtensions) ExtensionTypes() ([]uint16, error) {
	tlv := ext.tlvData()

	var types []uint16
	idx := 0
	for idx+tlvTypeLen+tlvLengthLen <= len(tlv) {
		entryType := binary.LittleEndian.Uint16(tlv[idx:])
		if entryType == ExtensionTypeUninitialized {
			break
		}
		types = append(types, entryType)

		length := int(binary.LittleEndian.Uint16(tlv[idx+tlvTypeLen:]))
		idx += tlvTypeLen + tlvLengthLen + length
	}
	return types, nil
}

func firstExtensionType(tlv []byte) (uint16, bool) {
	if len(tlv) < tlvTypeLen {
		return 0, false
	}
	entryType := binary.LittleEndian.Uint16(tlv)
	if entryType == ExtensionTypeUninitialized {
		return 0, false
	}
	return entryType, true
}

// InitAccountType writes the account-type discriminator byte once the base
// record has been initialized. No-op for buffers without an extension area.
func (ext *tokenStateExtensions) InitAccountType() error {
	if ext.tlvStart < 0 {
		return nil
	}
	ext.data[tokenAccountTypeIndex] = ext.accountType
	return nil
}

// MintState is a mint record unpacked together with its extension area. The
// extension view aliases the source buffer.
type MintState struct {
	Mint TokenMint
	Exts tokenStateExtensions
}

// TokenAccountState is a token account record unpacked together with its
// extension area.
type TokenAccountState struct {
	Account TokenAccount
	Exts    tokenStateExtensions
}

func newExtensionsView(data []byte, baseLen uint64, accountType byte, expectInitialized bool) (tokenStateExtensions, error) {
	exts := tokenStateExtensions{data: data, tlvStart: -1, accountType: accountType}

	accountTypeIdx, tlvStart, err := typeAndTlvIndices(data, baseLen)
	if err != nil {
		return exts, err
	}
	if accountTypeIdx < 0 {
		return exts, nil
	}

	if expectInitialized {
		if data[accountTypeIdx] != accountType {
			return exts, ErrInvalidAccountData
		}
	} else {
		if data[accountTypeIdx] != TokenAccountTypeUninitialized {
			return exts, ErrInvalidAccountData
		}
	}

	exts.tlvStart = tlvStart
	return exts, nil
}

func unpackMintState(data []byte) (*MintState, error) {
	err := checkMinLenAndNotMultisig(data, TokenMintLen)
	if err != nil {
		return nil, err
	}

	mint, err := unmarshalTokenMint(data[:TokenMintLen])
	if err != nil {
		return nil, err
	}

	exts, err := newExtensionsView(data, TokenMintLen, TokenAccountTypeMint, true)
	if err != nil {
		return nil, err
	}

	return &MintState{Mint: *mint, Exts: exts}, nil
}

func unpackMintStateUninitialized(data []byte) (*MintState, error) {
	err := checkMinLenAndNotMultisig(data, TokenMintLen)
	if err != nil {
		return nil, err
	}

	mint, err := unmarshalTokenMintUnchecked(data[:TokenMintLen])
	if err != nil {
		return nil, err
	}
	if mint.IsInitialized {
		return nil, TokenErrAlreadyInUse
	}

	exts, err := newExtensionsView(data, TokenMintLen, TokenAccountTypeMint, false)
	if err != nil {
		return nil, err
	}

	// a pre-written extension determines the account type this buffer must
	// eventually hold
	if firstExtType, ok := firstExtensionType(exts.tlvData()); ok {
		accountType := extensionAccountType(firstExtType)
		if accountType != TokenAccountTypeUninitialized && accountType != TokenAccountTypeMint {
			return nil, TokenErrExtensionBaseMismatch
		}
	}

	return &MintState{Mint: *mint, Exts: exts}, nil
}

func unpackTokenAccountState(data []byte) (*TokenAccountState, error) {
	err := checkMinLenAndNotMultisig(data, TokenAccountLen)
	if err != nil {
		return nil, err
	}

	acct, err := unmarshalTokenAccount(data[:TokenAccountLen])
	if err != nil {
		return nil, err
	}

	exts, err := newExtensionsView(data, TokenAccountLen, TokenAccountTypeAccount, true)
	if err != nil {
		return nil, err
	}

	return &TokenAccountState{Account: *acct, Exts: exts}, nil
}

func unpackTokenAccountStateUninitialized(data []byte) (*TokenAccountState, error) {
	err := checkMinLenAndNotMultisig(data, TokenAccountLen)
	if err != nil {
		return nil, err
	}

	acct, err := unmarshalTokenAccountUnchecked(data[:TokenAccountLen])
	if err != nil {
		return nil, err
	}
	if acct.IsInitialized() {
		return nil, TokenErrAlreadyInUse
	}

	exts, err := newExtensionsView(data, TokenAccountLen, TokenAccountTypeAccount, false)
	if err != nil {
		return nil, err
	}

	if firstExtType, ok := firstExtensionType(exts.tlvData()); ok {
		accountType := extensionAccountType(firstExtType)
		if accountType != TokenAccountTypeUninitialized && accountType != TokenAccountTypeAccount {
			return nil, TokenErrExtensionBaseMismatch
		}
	}

	return &TokenAccountState{Account: *acct, Exts: exts}, nil
}

// PackBase serializes the base mint record back into the source buffer.
func (state *MintState) PackBase() error {
	return state.Mint.Pack(state.Exts.data)
}

func (state *TokenAccountState) PackBase() error {
	return state.Account.Pack(state.Exts.data)
}

// UnpackMintState exposes mint record unpacking to tooling outside the
// interpreter.
func UnpackMintState(data []byte) (*MintState, error) {
	return unpackMintState(data)
}

func UnpackTokenAccountState(data []byte) (*TokenAccountState, error) {
	return unpackTokenAccountState(data)
}

func UnpackTokenMultisig(data []byte) (*TokenMultisig, error) {
	return unmarshalTokenMultisig(data)
}
