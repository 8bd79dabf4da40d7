package sealevel

import (
	"github.com/gagliardetto/solana-go"
	"github.com/solwasm/tokenrt/pkg/accounts"
)

type TxReturnData struct {
	programId solana.PublicKey
	data      []byte
}

// TransactionAccounts holds the accounts referenced by a transaction along
// with their borrow state. An account may only be borrowed once at a time.
type TransactionAccounts struct {
	Accounts []*accounts.Account
	Locked   []bool
	Touched  []bool
}

func NewTransactionAccounts(accts []accounts.Account) *TransactionAccounts {
	transactionAccts := new(TransactionAccounts)
	for idx := range accts {
		acct := accts[idx]
		transactionAccts.Accounts = append(transactionAccts.Accounts, &acct)
	}
	transactionAccts.Locked = make([]bool, len(accts))
	transactionAccts.Touched = make([]bool, len(accts))
	return transactionAccts
}

func (transactionAccts *TransactionAccounts) GetAccount(idx uint64) (*accounts.Account, error) {
	if idx >= uint64(len(transactionAccts.Accounts)) {
		return nil, ErrNotEnoughAccountKeys
	}
	return transactionAccts.Accounts[idx], nil
}

func (transactionAccts *TransactionAccounts) Lock(idx uint64) (*accounts.Account, error) {
	if idx >= uint64(len(transactionAccts.Accounts)) {
		return nil, ErrMissingAccount
	}
	if transactionAccts.Locked[idx] {
		return nil, ErrAccountBorrowFailed
	}
	transactionAccts.Locked[idx] = true
	return transactionAccts.Accounts[idx], nil
}

func (transactionAccts *TransactionAccounts) Unlock(idx uint64) {
	if idx < uint64(len(transactionAccts.Accounts)) {
		transactionAccts.Locked[idx] = false
	}
}

func (transactionAccts *TransactionAccounts) Touch(idx uint64) error {
	if idx >= uint64(len(transactionAccts.Accounts)) {
		return ErrNotEnoughAccountKeys
	}
	transactionAccts.Touched[idx] = true
	return nil
}

type TransactionCtx struct {
	Accounts                  TransactionAccounts
	instructionTrace          []*InstructionCtx
	instructionStack          []uint64
	maxInstructionStackDepth  uint64
	maxInstructionTraceLength uint64
	returnData                TxReturnData
}

func NewTestTransactionCtx(transactionAccts TransactionAccounts, maxInstructionStackDepth uint64, maxInstructionTraceLength uint64) *TransactionCtx {
	return &TransactionCtx{
		Accounts:                  transactionAccts,
		maxInstructionStackDepth:  maxInstructionStackDepth,
		maxInstructionTraceLength: maxInstructionTraceLength,
	}
}

func (txCtx *TransactionCtx) KeyOfAccountAtIndex(idx uint64) (solana.PublicKey, error) {
	acct, err := txCtx.Accounts.GetAccount(idx)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return acct.Key, nil
}

func (txCtx *TransactionCtx) IndexOfAccount(pubkey solana.PublicKey) (uint64, error) {
	for idx, acct := range txCtx.Accounts.Accounts {
		if acct.Key == pubkey {
			return uint64(idx), nil
		}
	}
	return 0, ErrMissingAccount
}

func (txCtx *TransactionCtx) AccountAtIndex(idx uint64) (*accounts.Account, error) {
	return txCtx.Accounts.GetAccount(idx)
}

func (txCtx *TransactionCtx) InstructionCtxStackHeight() uint64 {
	return uint64(len(txCtx.instructionStack))
}

func (txCtx *TransactionCtx) InstructionTraceLength() uint64 {
	return uint64(len(txCtx.instructionTrace))
}

func (txCtx *TransactionCtx) CurrentInstructionCtx() (*InstructionCtx, error) {
	if len(txCtx.instructionStack) == 0 {
		return nil, ErrCallDepth
	}
	idx := txCtx.instructionStack[len(txCtx.instructionStack)-1]
	return txCtx.InstructionCtxAtIndexInTrace(idx)
}

func (txCtx *TransactionCtx) InstructionCtxAtIndexInTrace(idx uint64) (*InstructionCtx, error) {
	if idx >= uint64(len(txCtx.instructionTrace)) {
		return nil, ErrCallDepth
	}
	return txCtx.instructionTrace[idx], nil
}

func (txCtx *TransactionCtx) InstructionCtxAtNestingLevel(level uint64) (*InstructionCtx, error) {
	if level >= uint64(len(txCtx.instructionStack)) {
		return nil, ErrCallDepth
	}
	return txCtx.InstructionCtxAtIndexInTrace(txCtx.instructionStack[level])
}

// NextInstructionCtx appends a fresh instruction context to the trace; the
// caller configures it and then pushes it onto the stack.
func (txCtx *TransactionCtx) NextInstructionCtx() (*InstructionCtx, error) {
	if uint64(len(txCtx.instructionTrace)) >= txCtx.maxInstructionTraceLength {
		return nil, ErrMaxInstructionTraceLengthExceeded
	}
	instrCtx := new(InstructionCtx)
	txCtx.instructionTrace = append(txCtx.instructionTrace, instrCtx)
	return instrCtx, nil
}

func (txCtx *TransactionCtx) Push() error {
	if uint64(len(txCtx.instructionStack)) >= txCtx.maxInstructionStackDepth {
		return ErrCallDepth
	}
	if len(txCtx.instructionTrace) == 0 {
		return ErrCallDepth
	}
	txCtx.instructionStack = append(txCtx.instructionStack, uint64(len(txCtx.instructionTrace)-1))
	return nil
}

func (txCtx *TransactionCtx) Pop() error {
	if len(txCtx.instructionStack) == 0 {
		return ErrCallDepth
	}
	txCtx.instructionStack = txCtx.instructionStack[:len(txCtx.instructionStack)-1]
	return nil
}

func (txCtx *TransactionCtx) SetReturnData(programId solana.PublicKey, data []byte) {
	txCtx.returnData.programId = programId
	txCtx.returnData.data = data
}

func (txCtx *TransactionCtx) ReturnData() (solana.PublicKey, []byte) {
	return txCtx.returnData.programId, txCtx.returnData.data
}
