package sealevel

import (
	bin "github.com/gagliardetto/binary"
	"github.com/solwasm/tokenrt/pkg/safemath"
	"k8s.io/klog/v2"
)

// incomingTransferMemoRequired reports whether the receiving account has
// opted into mandatory transfer memos.
func incomingTransferMemoRequired(state *TokenAccountState) (bool, error) {
	payload, err := state.Exts.Extension(ExtensionTypeMemoTransfer)
	if err != nil {
		return false, err
	}
	if payload == nil {
		return false, nil
	}
	var memoTransfer MemoTransfer
	err = unmarshalExtension(payload, &memoTransfer)
	if err != nil {
		return false, err
	}
	return memoTransfer.RequireIncomingTransferMemos, nil
}

func checkPreviousSiblingInstructionIsMemo(execCtx *ExecutionCtx) error {
	prevInstr, err := previousSiblingInstruction(execCtx)
	if err != nil {
		return err
	}
	if prevInstr == nil {
		return TokenErrNoMemo
	}
	if prevInstr.ProgramId != MemoProgramV1Addr && prevInstr.ProgramId != MemoProgramV3Addr {
		return TokenErrNoMemo
	}
	return nil
}

func tokenInitializeDefaultAccountState(execCtx *ExecutionCtx, state byte) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(1)
	if err != nil {
		return err
	}

	mintAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer mintAcct.Drop()

	data, err := mintAcct.DataMut()
	if err != nil {
		return err
	}
	mintState, err := unpackMintStateUninitialized(data)
	if err != nil {
		return err
	}

	payload, err := mintState.Exts.InitExtension(ExtensionTypeDefaultAccountState, true)
	if err != nil {
		return err
	}
	defaultState := DefaultAccountState{State: state}
	return packExtension(payload, &defaultState)
}

func tokenUpdateDefaultAccountState(execCtx *ExecutionCtx, state byte) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(2)
	if err != nil {
		return err
	}

	mintAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer mintAcct.Drop()

	data, err := mintAcct.DataMut()
	if err != nil {
		return err
	}
	mintState, err := unpackMintState(data)
	if err != nil {
		return err
	}

	if mintState.Mint.FreezeAuthority == nil {
		return TokenErrMintCannotFreeze
	}
	err = validateTokenOwner(execCtx, *mintState.Mint.FreezeAuthority, 1)
	if err != nil {
		return err
	}

	payload, err := mintState.Exts.requireExtension(ExtensionTypeDefaultAccountState)
	if err != nil {
		return err
	}
	defaultState := DefaultAccountState{State: state}
	return packExtension(payload, &defaultState)
}

func tokenToggleMemoTransfer(execCtx *ExecutionCtx, enable bool) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(2)
	if err != nil {
		return err
	}

	tokenAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer tokenAcct.Drop()

	data, err := tokenAcct.DataMut()
	if err != nil {
		return err
	}
	acctState, err := unpackTokenAccountState(data)
	if err != nil {
		return err
	}

	err = validateTokenOwner(execCtx, acctState.Account.Owner, 1)
	if err != nil {
		return err
	}

	payload, err := acctState.Exts.InitExtension(ExtensionTypeMemoTransfer, true)
	if err != nil {
		return err
	}
	memoTransfer := MemoTransfer{RequireIncomingTransferMemos: enable}
	return packExtension(payload, &memoTransfer)
}

func tokenInitializeInterestBearingMint(execCtx *ExecutionCtx, initialize TokenInstrInitializeInterestBearingMint) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(1)
	if err != nil {
		return err
	}

	mintAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer mintAcct.Drop()

	data, err := mintAcct.DataMut()
	if err != nil {
		return err
	}
	mintState, err := unpackMintStateUninitialized(data)
	if err != nil {
		return err
	}

	payload, err := mintState.Exts.InitExtension(ExtensionTypeInterestBearingConfig, true)
	if err != nil {
		return err
	}

	clock := ReadClockSysvar(&execCtx.Accounts)
	interestConfig := InterestBearingConfig{
		RateAuthority:           initialize.RateAuthority,
		InitializationTimestamp: clock.UnixTimestamp,
		PreUpdateAverageRate:    initialize.Rate,
		LastUpdateTimestamp:     clock.UnixTimestamp,
		CurrentRate:             initialize.Rate,
	}
	return packExtension(payload, &interestConfig)
}

func tokenUpdateInterestRate(execCtx *ExecutionCtx, rate int16) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(2)
	if err != nil {
		return err
	}

	mintAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer mintAcct.Drop()

	data, err := mintAcct.DataMut()
	if err != nil {
		return err
	}
	mintState, err := unpackMintState(data)
	if err != nil {
		return err
	}

	payload, err := mintState.Exts.requireExtension(ExtensionTypeInterestBearingConfig)
	if err != nil {
		return err
	}
	var interestConfig InterestBearingConfig
	err = unmarshalExtension(payload, &interestConfig)
	if err != nil {
		return err
	}

	rateAuthority := pubkeyFromOptionalNonZero(interestConfig.RateAuthority)
	if rateAuthority == nil {
		return TokenErrNoAuthorityExists
	}
	err = validateTokenOwner(execCtx, *rateAuthority, 1)
	if err != nil {
		return err
	}

	// the running average folds in the outgoing rate before it changes
	clock := ReadClockSysvar(&execCtx.Accounts)
	averageRate, err := interestConfig.TimeWeightedAverageRate(clock.UnixTimestamp)
	if err != nil {
		return err
	}
	interestConfig.PreUpdateAverageRate = averageRate
	interestConfig.LastUpdateTimestamp = clock.UnixTimestamp
	interestConfig.CurrentRate = rate

	return packExtension(payload, &interestConfig)
}

func tokenReallocate(execCtx *ExecutionCtx, newExtensionTypes []uint16) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(4)
	if err != nil {
		return err
	}

	for _, extType := range newExtensionTypes {
		if extensionAccountType(extType) != TokenAccountTypeAccount {
			return TokenErrExtensionTypeMismatch
		}
	}

	tokenAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}

	acctState, err := unpackTokenAccountState(tokenAcct.Data())
	if err != nil {
		tokenAcct.Drop()
		return err
	}
	acctOwner := acctState.Account.Owner
	currentExtensionTypes, err := acctState.Exts.ExtensionTypes()
	if err != nil {
		tokenAcct.Drop()
		return err
	}
	currentDataLen := uint64(len(tokenAcct.Data()))
	currentLamports := tokenAcct.Lamports()
	tokenAcctKey := tokenAcct.Key()
	tokenAcct.Drop()

	err = validateTokenOwner(execCtx, acctOwner, 3)
	if err != nil {
		return err
	}

	neededExtensionTypes := append(currentExtensionTypes, newExtensionTypes...)
	neededDataLen, err := getAccountLenForExtensions(TokenAccountTypeAccount, neededExtensionTypes)
	if err != nil {
		return err
	}
	if currentDataLen >= neededDataLen {
		return nil
	}

	rent := ReadRentSysvar(&execCtx.Accounts)
	newRentExemptReserve := rent.MinimumBalance(neededDataLen)
	lamportsDiff := safemath.SaturatingSubU64(newRentExemptReserve, currentLamports)
	if lamportsDiff > 0 {
		payerKey, err := extractAddress(txCtx, instrCtx, 1)
		if err != nil {
			return err
		}
		err = execCtx.NativeInvoke(*newTransferInstruction(payerKey, tokenAcctKey, lamportsDiff), nil)
		if err != nil {
			return err
		}
	}

	tokenAcct, err = instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer tokenAcct.Drop()

	err = tokenAcct.Resize(neededDataLen)
	if err != nil {
		return err
	}

	// accounts that carried no extensions before now gain the TLV framing
	data, err := tokenAcct.DataMut()
	if err != nil {
		return err
	}
	if data[TokenAccountLen] == TokenAccountTypeUninitialized {
		data[TokenAccountLen] = TokenAccountTypeAccount
	}
	return nil
}

func processDefaultAccountStateInstruction(execCtx *ExecutionCtx, decoder *bin.Decoder) error {
	instructionType, err := decoder.ReadByte()
	if err != nil {
		return TokenErrInvalidInstruction
	}

	var defaultAccountState TokenInstrDefaultAccountState
	err = defaultAccountState.UnmarshalWithDecoder(decoder)
	if err != nil {
		return err
	}

	switch instructionType {

	case DefaultAccountStateInstrTypeInitialize:
		{
			klog.Infof("Instruction: InitializeDefaultAccountState")
			return tokenInitializeDefaultAccountState(execCtx, defaultAccountState.State)
		}

	case DefaultAccountStateInstrTypeUpdate:
		{
			klog.Infof("Instruction: UpdateDefaultAccountState")
			return tokenUpdateDefaultAccountState(execCtx, defaultAccountState.State)
		}

	default:
		return TokenErrInvalidInstruction
	}
}

func processMemoTransferInstruction(execCtx *ExecutionCtx, decoder *bin.Decoder) error {
	instructionType, err := decoder.ReadByte()
	if err != nil {
		return TokenErrInvalidInstruction
	}

	switch instructionType {

	case MemoTransferInstrTypeEnable:
		{
			klog.Infof("Instruction: EnableRequiredMemoTransfers")
			return tokenToggleMemoTransfer(execCtx, true)
		}

	case MemoTransferInstrTypeDisable:
		{
			klog.Infof("Instruction: DisableRequiredMemoTransfers")
			return tokenToggleMemoTransfer(execCtx, false)
		}

	default:
		return TokenErrInvalidInstruction
	}
}

func processInterestBearingMintInstruction(execCtx *ExecutionCtx, decoder *bin.Decoder) error {
	instructionType, err := decoder.ReadByte()
	if err != nil {
		return TokenErrInvalidInstruction
	}

	switch instructionType {

	case InterestBearingMintInstrTypeInitialize:
		{
			klog.Infof("Instruction: InitializeInterestBearingMint")
			var initialize TokenInstrInitializeInterestBearingMint
			err = initialize.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenInitializeInterestBearingMint(execCtx, initialize)
		}

	case InterestBearingMintInstrTypeUpdateRate:
		{
			klog.Infof("Instruction: UpdateInterestRate")
			var update TokenInstrUpdateInterestRate
			err = update.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenUpdateInterestRate(execCtx, update.Rate)
		}

	default:
		return TokenErrInvalidInstruction
	}
}
