package sealevel

import "errors"

// token program errors
var (
	TokenErrNotRentExempt                  = errors.New("TokenErrNotRentExempt")
	TokenErrInsufficientFunds              = errors.New("TokenErrInsufficientFunds")
	TokenErrInvalidMint                    = errors.New("TokenErrInvalidMint")
	TokenErrMintMismatch                   = errors.New("TokenErrMintMismatch")
	TokenErrOwnerMismatch                  = errors.New("TokenErrOwnerMismatch")
	TokenErrFixedSupply                    = errors.New("TokenErrFixedSupply")
	TokenErrAlreadyInUse                   = errors.New("TokenErrAlreadyInUse")
	TokenErrInvalidNumberOfProvidedSigners = errors.New("TokenErrInvalidNumberOfProvidedSigners")
	TokenErrInvalidNumberOfRequiredSigners = errors.New("TokenErrInvalidNumberOfRequiredSigners")
	TokenErrUninitializedState             = errors.New("TokenErrUninitializedState")
	TokenErrNativeNotSupported             = errors.New("TokenErrNativeNotSupported")
	TokenErrNonNativeHasBalance            = errors.New("TokenErrNonNativeHasBalance")
	TokenErrInvalidInstruction             = errors.New("TokenErrInvalidInstruction")
	TokenErrInvalidState                   = errors.New("TokenErrInvalidState")
	TokenErrOverflow                       = errors.New("TokenErrOverflow")
	TokenErrAuthorityTypeNotSupported      = errors.New("TokenErrAuthorityTypeNotSupported")
	TokenErrMintCannotFreeze               = errors.New("TokenErrMintCannotFreeze")
	TokenErrAccountFrozen                  = errors.New("TokenErrAccountFrozen")
	TokenErrMintDecimalsMismatch           = errors.New("TokenErrMintDecimalsMismatch")
	TokenErrNonNativeNotSupported          = errors.New("TokenErrNonNativeNotSupported")
	TokenErrExtensionTypeMismatch          = errors.New("TokenErrExtensionTypeMismatch")
	TokenErrExtensionBaseMismatch          = errors.New("TokenErrExtensionBaseMismatch")
	TokenErrExtensionAlreadyInitialized    = errors.New("TokenErrExtensionAlreadyInitialized")
	TokenErrMintHasSupply                  = errors.New("TokenErrMintHasSupply")
	TokenErrNoAuthorityExists              = errors.New("TokenErrNoAuthorityExists")
	TokenErrTransferFeeExceedsMaximum      = errors.New("TokenErrTransferFeeExceedsMaximum")
	TokenErrMintRequiredForTransfer        = errors.New("TokenErrMintRequiredForTransfer")
	TokenErrFeeMismatch                    = errors.New("TokenErrFeeMismatch")
	TokenErrFeeParametersMismatch          = errors.New("TokenErrFeeParametersMismatch")
	TokenErrImmutableOwner                 = errors.New("TokenErrImmutableOwner")
	TokenErrAccountHasWithheldTransferFees = errors.New("TokenErrAccountHasWithheldTransferFees")
	TokenErrNoMemo                         = errors.New("TokenErrNoMemo")
	TokenErrNonTransferable                = errors.New("TokenErrNonTransferable")
	TokenErrNonTransferableNeedsImmutableOwnership    = errors.New("TokenErrNonTransferableNeedsImmutableOwnership")
	TokenErrMaximumPendingBalanceCreditCounterExceeded = errors.New("TokenErrMaximumPendingBalanceCreditCounterExceeded")
)

// stable numeric codes for the token error taxonomy
const (
	TokenErrCodeNotRentExempt = iota
	TokenErrCodeInsufficientFunds
	TokenErrCodeInvalidMint
	TokenErrCodeMintMismatch
	TokenErrCodeOwnerMismatch
	TokenErrCodeFixedSupply
	TokenErrCodeAlreadyInUse
	TokenErrCodeInvalidNumberOfProvidedSigners
	TokenErrCodeInvalidNumberOfRequiredSigners
	TokenErrCodeUninitializedState
	TokenErrCodeNativeNotSupported
	TokenErrCodeNonNativeHasBalance
	TokenErrCodeInvalidInstruction
	TokenErrCodeInvalidState
	TokenErrCodeOverflow
	TokenErrCodeAuthorityTypeNotSupported
	TokenErrCodeMintCannotFreeze
	TokenErrCodeAccountFrozen
	TokenErrCodeMintDecimalsMismatch
	TokenErrCodeNonNativeNotSupported
	TokenErrCodeExtensionTypeMismatch
	TokenErrCodeExtensionBaseMismatch
	TokenErrCodeExtensionAlreadyInitialized
	TokenErrCodeMintHasSupply
	TokenErrCodeNoAuthorityExists
	TokenErrCodeTransferFeeExceedsMaximum
	TokenErrCodeMintRequiredForTransfer
	TokenErrCodeFeeMismatch
	TokenErrCodeFeeParametersMismatch
	TokenErrCodeImmutableOwner
	TokenErrCodeAccountHasWithheldTransferFees
	TokenErrCodeNoMemo
	TokenErrCodeNonTransferable
	TokenErrCodeNonTransferableNeedsImmutableOwnership
	TokenErrCodeMaximumPendingBalanceCreditCounterExceeded
)

var tokenErrCodes = map[error]int{
	TokenErrNotRentExempt:                  TokenErrCodeNotRentExempt,
	TokenErrInsufficientFunds:              TokenErrCodeInsufficientFunds,
	TokenErrInvalidMint:                    TokenErrCodeInvalidMint,
	TokenErrMintMismatch:                   TokenErrCodeMintMismatch,
	TokenErrOwnerMismatch:                  TokenErrCodeOwnerMismatch,
	TokenErrFixedSupply:                    TokenErrCodeFixedSupply,
	TokenErrAlreadyInUse:                   TokenErrCodeAlreadyInUse,
	TokenErrInvalidNumberOfProvidedSigners: TokenErrCodeInvalidNumberOfProvidedSigners,
	TokenErrInvalidNumberOfRequiredSigners: TokenErrCodeInvalidNumberOfRequiredSigners,
	TokenErrUninitializedState:             TokenErrCodeUninitializedState,
	TokenErrNativeNotSupported:             TokenErrCodeNativeNotSupported,
	TokenErrNonNativeHasBalance:            TokenErrCodeNonNativeHasBalance,
	TokenErrInvalidInstruction:             TokenErrCodeInvalidInstruction,
	TokenErrInvalidState:                   TokenErrCodeInvalidState,
	TokenErrOverflow:                       TokenErrCodeOverflow,
	TokenErrAuthorityTypeNotSupported:      TokenErrCodeAuthorityTypeNotSupported,
	TokenErrMintCannotFreeze:               TokenErrCodeMintCannotFreeze,
	TokenErrAccountFrozen:                  TokenErrCodeAccountFrozen,
	TokenErrMintDecimalsMismatch:           TokenErrCodeMintDecimalsMismatch,
	TokenErrNonNativeNotSupported:          TokenErrCodeNonNativeNotSupported,
	TokenErrExtensionTypeMismatch:          TokenErrCodeExtensionTypeMismatch,
	TokenErrExtensionBaseMismatch:          TokenErrCodeExtensionBaseMismatch,
	TokenErrExtensionAlreadyInitialized:    TokenErrCodeExtensionAlreadyInitialized,
	TokenErrMintHasSupply:                  TokenErrCodeMintHasSupply,
	TokenErrNoAuthorityExists:              TokenErrCodeNoAuthorityExists,
	TokenErrTransferFeeExceedsMaximum:      TokenErrCodeTransferFeeExceedsMaximum,
	TokenErrMintRequiredForTransfer:        TokenErrCodeMintRequiredForTransfer,
	TokenErrFeeMismatch:                    TokenErrCodeFeeMismatch,
	TokenErrFeeParametersMismatch:          TokenErrCodeFeeParametersMismatch,
	TokenErrImmutableOwner:                 TokenErrCodeImmutableOwner,
	TokenErrAccountHasWithheldTransferFees: TokenErrCodeAccountHasWithheldTransferFees,
	TokenErrNoMemo:                         TokenErrCodeNoMemo,
	TokenErrNonTransferable:                TokenErrCodeNonTransferable,
	TokenErrNonTransferableNeedsImmutableOwnership:    TokenErrCodeNonTransferableNeedsImmutableOwnership,
	TokenErrMaximumPendingBalanceCreditCounterExceeded: TokenErrCodeMaximumPendingBalanceCreditCounterExceeded,
}

// TranslateErrToTokenErrCode returns the stable numeric code for a token
// error, or -1 when the error is not part of the token taxonomy.
func TranslateErrToTokenErrCode(err error) int {
	code, ok := tokenErrCodes[err]
	if !ok {
		return -1
	}
	return code
}
