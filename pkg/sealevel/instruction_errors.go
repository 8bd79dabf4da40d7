package sealevel

import "errors"

// error values
var (

	// instruction errors
	ErrInvalidInstructionData      = errors.New("ErrInvalidInstructionData")
	ErrNotEnoughAccountKeys        = errors.New("ErrNotEnoughAccountKeys")
	ErrComputationalBudgetExceeded = errors.New("ErrComputationalBudgetExceeded")
	ErrMissingAccount              = errors.New("ErrMissingAccount")
	ErrInvalidAccountOwner         = errors.New("InvalidAccountOwner")
	ErrInvalidAccountData          = errors.New("ErrInvalidAccountData")
	ErrAccountDataTooSmall         = errors.New("ErrAccountDataTooSmall")
	ErrAccountAlreadyInitialized   = errors.New("ErrAccountAlreadyInitialized")
	ErrUninitializedAccount        = errors.New("ErrUninitializedAccount")
	ErrMissingRequiredSignature    = errors.New("ErrMissingRequiredSignature")
	ErrInvalidArgument             = errors.New("ErrInvalidArgument")
	ErrInsufficientFunds           = errors.New("ErrInsufficientFunds")
	ErrExecutableDataModified      = errors.New("ErrExecutableDataModified")
	ErrReadonlyDataModified        = errors.New("ErrReadonlyDataModified")
	ErrExternalAccountDataModified = errors.New("ErrExternalAccountDataModified")
	ErrExternalAccountLamportSpend = errors.New("ErrExternalAccountLamportSpend")
	ErrReadonlyLamportChange       = errors.New("ErrReadonlyLamportChange")
	ErrPrivilegeEscalation         = errors.New("ErrPrivilegeEscalation")
	ErrAccountNotExecutable        = errors.New("ErrAccountNotExecutable")
	ErrInvalidRealloc              = errors.New("InvalidRealloc")
	ErrCallDepth                   = errors.New("ErrCallDepth")
	ErrUnsupportedProgramId        = errors.New("ErrUnsupportedProgramId")
	ErrReentrancyNotAllowed        = errors.New("ErrReentrancyNotAllowed")
	ErrArithmeticOverflow          = errors.New("ErrArithmeticOverflow")
	ErrUnsupportedSysvar           = errors.New("ErrUnsupportedSysvar")
	ErrAccountBorrowOutstanding    = errors.New("ErrAccountBorrowOutstanding")
	ErrAccountBorrowFailed         = errors.New("ErrAccountBorrowFailed")
	ErrMaxInstructionTraceLengthExceeded = errors.New("ErrMaxInstructionTraceLengthExceeded")
)

// Solana error codes for instruction errors
const (
	InstrSuccess                        = 0
	InstrErrInvalidArgument             = 2
	InstrErrInvalidInstructionData      = 3
	InstrErrInvalidAccountData          = 4
	InstrErrAccountDataTooSmall         = 5
	InstrErrInsufficientFunds           = 6
	InstrErrMissingRequiredSignature    = 8
	InstrErrAccountAlreadyInitialized   = 9
	InstrErrUninitializedAccount        = 10
	InstrErrExternalAccountDataModified = 14
	InstrErrReadonlyDataModified        = 16
	InstrErrNotEnoughAccountKeys        = 20
	InstrErrExecutableDataModified      = 28
	InstrErrCallDepth                   = 29
	InstrErrMissingAccount              = 33
	InstrErrComputationalBudgetExceeded = 38
	InstrErrInvalidAccountOwner         = 47
	InstrErrArithmeticOverflow          = 48
	InstrErrUnsupportedSysvar           = 49
)

func translateErrToInstrErrCode(err error) int {
	var errorCode int
	switch err {
	case ErrInvalidInstructionData:
		errorCode = InstrErrInvalidInstructionData
	case ErrNotEnoughAccountKeys:
		errorCode = InstrErrNotEnoughAccountKeys
	case ErrComputationalBudgetExceeded:
		errorCode = InstrErrComputationalBudgetExceeded
	case ErrMissingAccount:
		errorCode = InstrErrMissingAccount
	case ErrInvalidAccountOwner:
		errorCode = InstrErrInvalidAccountOwner
	case ErrInvalidAccountData:
		errorCode = InstrErrInvalidAccountData
	case ErrAccountDataTooSmall:
		errorCode = InstrErrAccountDataTooSmall
	case ErrAccountAlreadyInitialized:
		errorCode = InstrErrAccountAlreadyInitialized
	case ErrUninitializedAccount:
		errorCode = InstrErrUninitializedAccount
	case ErrInsufficientFunds:
		errorCode = InstrErrInsufficientFunds
	case ErrMissingRequiredSignature:
		errorCode = InstrErrMissingRequiredSignature
	case ErrInvalidArgument:
		errorCode = InstrErrInvalidArgument
	case ErrExecutableDataModified:
		errorCode = InstrErrExecutableDataModified
	case ErrReadonlyDataModified:
		errorCode = InstrErrReadonlyDataModified
	case ErrExternalAccountDataModified:
		errorCode = InstrErrExternalAccountDataModified
	case ErrCallDepth:
		errorCode = InstrErrCallDepth
	case ErrArithmeticOverflow:
		errorCode = InstrErrArithmeticOverflow
	case ErrUnsupportedSysvar:
		errorCode = InstrErrUnsupportedSysvar
	}
	return errorCode
}
