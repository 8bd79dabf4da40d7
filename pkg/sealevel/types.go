package sealevel

import (
	"bytes"
	"io"

	"github.com/gagliardetto/solana-go"
)

type AccountMeta struct {
	Pubkey     solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

type Instruction struct {
	Accounts  []AccountMeta
	Data      []byte
	ProgramId solana.PublicKey
}

type InstructionAccount struct {
	IndexInTransaction uint64
	IndexInCaller      uint64
	IndexInCallee      uint64
	IsSigner           bool
	IsWritable         bool
}

func (accountMeta *AccountMeta) Marshal() []byte {
	buf := new(bytes.Buffer)

	var flags byte
	if accountMeta.IsSigner {
		flags |= 0b00000001
	}
	if accountMeta.IsWritable {
		flags |= 0b00000010
	}

	buf.WriteByte(flags)
	buf.Write(accountMeta.Pubkey[:])
	return buf.Bytes()
}

func (accountMeta *AccountMeta) Unmarshal(buf io.Reader) error {
	flagsAndKey := make([]byte, 1+solana.PublicKeyLength)
	_, err := io.ReadFull(buf, flagsAndKey)
	if err != nil {
		return ErrInvalidInstructionData
	}

	flags := flagsAndKey[0]
	accountMeta.IsSigner = flags&0b00000001 != 0
	accountMeta.IsWritable = flags&0b00000010 != 0
	accountMeta.Pubkey = solana.PublicKeyFromBytes(flagsAndKey[1:])
	return nil
}
