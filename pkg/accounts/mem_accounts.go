package accounts

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// MemAccounts is a map-backed account store for tests and tooling.
type MemAccounts struct {
	Map map[solana.PublicKey]*Account
}

func NewMemAccounts() MemAccounts {
	return MemAccounts{
		Map: make(map[solana.PublicKey]*Account),
	}
}

func (acc MemAccounts) GetAccount(pubkey solana.PublicKey) (*Account, error) {
	acct, ok := acc.Map[pubkey]
	if !ok {
		return nil, fmt.Errorf("account %s not present", pubkey)
	}
	return acct, nil
}

func (acc MemAccounts) SetAccount(pubkey solana.PublicKey, acct *Account) error {
	acc.Map[pubkey] = acct
	return nil
}
