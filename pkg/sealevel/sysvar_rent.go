package sealevel

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/solwasm/tokenrt/pkg/accounts"
	"github.com/solwasm/tokenrt/pkg/base58"
)

const SysvarRentAddrStr = "SysvarRent111111111111111111111111111111111"

var SysvarRentAddr = base58.MustDecodeFromString(SysvarRentAddrStr)

const SysvarRentStructLen = 17

const rentAccountStorageOverhead = 128

type SysvarRent struct {
	LamportsPerUint8Year uint64
	ExemptionThreshold   float64
	BurnPercent          byte
}

func (sr *SysvarRent) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	lamportsPerUint8Year, err := decoder.ReadUint64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read LamportsPerUint8Year when decoding SysvarRent: %w", err)
	}
	sr.LamportsPerUint8Year = lamportsPerUint8Year

	exemptionThreshold, err := decoder.ReadFloat64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read ExemptionThreshold when decoding SysvarRent: %w", err)
	}
	sr.ExemptionThreshold = exemptionThreshold

	burnPercent, err := decoder.ReadByte()
	if err != nil {
		return fmt.Errorf("failed to read BurnPercent when decoding SysvarRent: %w", err)
	}
	sr.BurnPercent = burnPercent

	return
}

func (sr *SysvarRent) MustUnmarshalWithDecoder(decoder *bin.Decoder) {
	err := sr.UnmarshalWithDecoder(decoder)
	if err != nil {
		panic(err.Error())
	}
}

func (sr *SysvarRent) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteUint64(sr.LamportsPerUint8Year, bin.LE)
	if err != nil {
		return err
	}
	err = encoder.WriteFloat64(sr.ExemptionThreshold, bin.LE)
	if err != nil {
		return err
	}
	return encoder.WriteByte(sr.BurnPercent)
}

func (sr *SysvarRent) MinimumBalance(dataLen uint64) uint64 {
	return uint64(float64((rentAccountStorageOverhead+dataLen)*sr.LamportsPerUint8Year) * sr.ExemptionThreshold)
}

func (sr *SysvarRent) IsExempt(lamports uint64, dataLen uint64) bool {
	return lamports >= sr.MinimumBalance(dataLen)
}

func ReadRentSysvar(accts *accounts.Accounts) SysvarRent {
	rentAcct, err := (*accts).GetAccount(SysvarRentAddr)
	if err != nil {
		panic("failed to read rent sysvar account")
	}

	dec := bin.NewBinDecoder(rentAcct.Data)

	var rent SysvarRent
	rent.MustUnmarshalWithDecoder(dec)

	return rent
}

func WriteRentSysvar(accts *accounts.Accounts, rent SysvarRent) {
	rentAcct, err := (*accts).GetAccount(SysvarRentAddr)
	if err != nil {
		rentAcct = &accounts.Account{Key: SysvarRentAddr, Lamports: 1, Owner: SysvarOwnerAddr}
	}

	writer := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(writer)

	err = rent.MarshalWithEncoder(encoder)
	if err != nil {
		panic("failed to marshal rent sysvar")
	}

	rentAcct.Data = writer.Bytes()
	err = (*accts).SetAccount(SysvarRentAddr, rentAcct)
	if err != nil {
		panic("failed to write rent sysvar account")
	}
}

// rentSysvarFromInstructionAcct decodes the rent sysvar out of an account
// passed explicitly in an instruction's account list.
func rentSysvarFromInstructionAcct(acct *BorrowedAccount) (SysvarRent, error) {
	var rent SysvarRent
	if acct.Key() != SysvarRentAddr {
		return rent, ErrUnsupportedSysvar
	}

	dec := bin.NewBinDecoder(acct.Data())
	err := rent.UnmarshalWithDecoder(dec)
	if err != nil {
		return rent, ErrUnsupportedSysvar
	}
	return rent, nil
}
