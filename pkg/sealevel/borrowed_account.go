package sealevel

import (
	"github.com/gagliardetto/solana-go"
	"github.com/solwasm/tokenrt/pkg/accounts"
	"github.com/solwasm/tokenrt/pkg/safemath"
)

// BorrowedAccount is an exclusive handle on a transaction account. Drop must
// be called before the same account can be borrowed again.
type BorrowedAccount struct {
	TxCtx              *TransactionCtx
	InstrCtx           *InstructionCtx
	IndexInTransaction uint64
	IndexInInstruction uint64
	Account            *accounts.Account
}

func (acct *BorrowedAccount) Drop() {
	acct.TxCtx.Accounts.Unlock(acct.IndexInTransaction)
}

func (acct *BorrowedAccount) Key() solana.PublicKey {
	key, err := acct.TxCtx.KeyOfAccountAtIndex(acct.IndexInTransaction)
	if err != nil {
		panic("supposedly impossible failure")
	}
	return key
}

func (acct *BorrowedAccount) Owner() solana.PublicKey {
	return acct.Account.Owner
}

func (acct *BorrowedAccount) SetOwner(owner solana.PublicKey) error {
	if !acct.IsWritable() {
		return ErrReadonlyDataModified
	}
	if err := acct.Touch(); err != nil {
		return err
	}
	acct.Account.Owner = owner
	return nil
}

func (acct *BorrowedAccount) Lamports() uint64 {
	return acct.Account.Lamports
}

func (acct *BorrowedAccount) SetLamports(lamports uint64) error {
	if !acct.IsOwnedByCurrentProgram() && lamports < acct.Account.Lamports {
		return ErrExternalAccountLamportSpend
	}
	if !acct.IsWritable() {
		return ErrReadonlyLamportChange
	}
	if err := acct.Touch(); err != nil {
		return err
	}
	acct.Account.Lamports = lamports
	return nil
}

func (acct *BorrowedAccount) Touch() error {
	return acct.TxCtx.Accounts.Touch(acct.IndexInTransaction)
}

func (acct *BorrowedAccount) Data() []byte {
	return acct.Account.Data
}

// DataMut returns the account's data slice for in-place mutation after
// verifying that the current program is allowed to change it.
func (acct *BorrowedAccount) DataMut() ([]byte, error) {
	if err := acct.DataCanBeChanged(); err != nil {
		return nil, err
	}
	if err := acct.Touch(); err != nil {
		return nil, err
	}
	return acct.Account.Data, nil
}

func (acct *BorrowedAccount) SetData(data []byte) error {
	if err := acct.DataCanBeChanged(); err != nil {
		return err
	}
	if err := acct.Touch(); err != nil {
		return err
	}
	acct.Account.Data = data
	return nil
}

// Resize grows or shrinks the account data in place, zero-filling new bytes.
func (acct *BorrowedAccount) Resize(newLen uint64) error {
	if err := acct.DataCanBeChanged(); err != nil {
		return err
	}
	if err := acct.Touch(); err != nil {
		return err
	}

	oldLen := uint64(len(acct.Account.Data))
	if newLen == oldLen {
		return nil
	}
	if newLen < oldLen {
		acct.Account.Data = acct.Account.Data[:newLen]
		return nil
	}
	grown := make([]byte, newLen)
	copy(grown, acct.Account.Data)
	acct.Account.Data = grown
	return nil
}

func (acct *BorrowedAccount) IsSigner() bool {
	instrCtx := acct.InstrCtx
	if acct.IndexInInstruction < instrCtx.NumberOfProgramAccounts() {
		return false
	}

	instrAcctIdx := safemath.SaturatingSubU64(acct.IndexInInstruction, instrCtx.NumberOfProgramAccounts())
	isSigner, err := instrCtx.IsInstructionAccountSigner(instrAcctIdx)
	if err != nil {
		return false
	}
	return isSigner
}

func (acct *BorrowedAccount) IsWritable() bool {
	instrCtx := acct.InstrCtx
	if acct.IndexInInstruction < instrCtx.NumberOfProgramAccounts() {
		return false
	}

	instrAcctIdx := safemath.SaturatingSubU64(acct.IndexInInstruction, instrCtx.NumberOfProgramAccounts())
	writable, err := instrCtx.IsInstructionAccountWritable(instrAcctIdx)
	if err != nil {
		return false
	}
	return writable
}

func (acct *BorrowedAccount) IsExecutable() bool {
	return acct.Account.Executable
}

func (acct *BorrowedAccount) IsOwnedByCurrentProgram() bool {
	lastProgramKey, err := acct.InstrCtx.LastProgramKey(acct.TxCtx)
	if err != nil {
		return false
	}
	return lastProgramKey == acct.Owner()
}

func (acct *BorrowedAccount) DataCanBeChanged() error {
	if acct.IsExecutable() {
		return ErrExecutableDataModified
	}
	if !acct.IsWritable() {
		return ErrReadonlyDataModified
	}
	if !acct.IsOwnedByCurrentProgram() {
		return ErrExternalAccountDataModified
	}
	return nil
}
