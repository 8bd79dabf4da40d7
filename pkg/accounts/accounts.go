package accounts

import (
	"github.com/gagliardetto/solana-go"
)

// Account is the in-memory representation of an on-chain account.
type Account struct {
	Key        solana.PublicKey
	Lamports   uint64
	Data       []byte
	Owner      solana.PublicKey
	Executable bool
	RentEpoch  uint64
}

func (a *Account) IsZero() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.Owner.IsZero()
}

// Accounts is a key-addressed account store. The execution context uses it
// for sysvar lookups; transaction accounts are addressed by index instead.
type Accounts interface {
	GetAccount(pubkey solana.PublicKey) (*Account, error)
	SetAccount(pubkey solana.PublicKey, acct *Account) error
}
