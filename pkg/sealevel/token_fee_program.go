package sealevel

import (
	bin "github.com/gagliardetto/binary"
	"github.com/solwasm/tokenrt/pkg/safemath"
	"k8s.io/klog/v2"
)

func tokenInitializeTransferFeeConfig(execCtx *ExecutionCtx, initialize TokenInstrInitializeTransferFeeConfig) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(1)
	if err != nil {
		return err
	}

	if initialize.TransferFeeBasisPoints > MaxTransferFeeBasisPoints {
		return TokenErrTransferFeeExceedsMaximum
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

	payload, err := mintState.Exts.InitExtension(ExtensionTypeTransferFeeConfig, true)
	if err != nil {
		return err
	}

	clock := ReadClockSysvar(&execCtx.Accounts)
	initialFee := TransferFee{
		Epoch:                  clock.Epoch,
		MaximumFee:             initialize.MaximumFee,
		TransferFeeBasisPoints: initialize.TransferFeeBasisPoints,
	}
	feeConfig := TransferFeeConfig{
		TransferFeeConfigAuthority: optionalNonZeroPubkey(initialize.TransferFeeConfigAuthority),
		WithdrawWithheldAuthority:  optionalNonZeroPubkey(initialize.WithdrawWithheldAuthority),
		WithheldAmount:             0,
		OlderTransferFee:           initialFee,
		NewerTransferFee:           initialFee,
	}
	return packExtension(payload, &feeConfig)
}

func tokenWithdrawWithheldTokensFromMint(execCtx *ExecutionCtx) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(3)
	if err != nil {
		return err
	}

	mintAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer mintAcct.Drop()

	mintData, err := mintAcct.DataMut()
	if err != nil {
		return err
	}
	mintState, err := unpackMintState(mintData)
	if err != nil {
		return err
	}

	feeConfigPayload, err := mintState.Exts.requireExtension(ExtensionTypeTransferFeeConfig)
	if err != nil {
		return err
	}
	var feeConfig TransferFeeConfig
	err = unmarshalExtension(feeConfigPayload, &feeConfig)
	if err != nil {
		return err
	}

	withdrawAuthority := pubkeyFromOptionalNonZero(feeConfig.WithdrawWithheldAuthority)
	if withdrawAuthority == nil {
		return TokenErrNoAuthorityExists
	}
	err = validateTokenOwner(execCtx, *withdrawAuthority, 2)
	if err != nil {
		return err
	}

	dstAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 1)
	if err != nil {
		return err
	}
	defer dstAcct.Drop()

	dstData, err := dstAcct.DataMut()
	if err != nil {
		return err
	}
	dstState, err := unpackTokenAccountState(dstData)
	if err != nil {
		return err
	}

	if dstState.Account.Mint != mintAcct.Key() {
		return TokenErrMintMismatch
	}
	if dstState.Account.IsFrozen() {
		return TokenErrAccountFrozen
	}

	if feeConfig.WithheldAmount > 0 {
		dstState.Account.Amount, err = safemath.CheckedAddU64(dstState.Account.Amount, feeConfig.WithheldAmount)
		if err != nil {
			return TokenErrOverflow
		}
		feeConfig.WithheldAmount = 0

		err = packExtension(feeConfigPayload, &feeConfig)
		if err != nil {
			return err
		}
		return dstState.PackBase()
	}
	return nil
}

func tokenWithdrawWithheldTokensFromAccounts(execCtx *ExecutionCtx, numTokenAccounts byte) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(3 + uint64(numTokenAccounts))
	if err != nil {
		return err
	}

	// the harvested accounts trail the instruction, after any multisig signers
	numInstrAccts := instrCtx.NumberOfInstructionAccounts()
	sourcesStart := numInstrAccts - uint64(numTokenAccounts)

	mintKey, err := extractAddress(txCtx, instrCtx, 0)
	if err != nil {
		return err
	}
	mintIdxInTx, err := instrCtx.IndexOfInstructionAccountInTransaction(0)
	if err != nil {
		return err
	}
	mintAcct, err := txCtx.AccountAtIndex(mintIdxInTx)
	if err != nil {
		return err
	}
	mintState, err := unpackMintState(mintAcct.Data)
	if err != nil {
		return err
	}

	feeConfigPayload, err := mintState.Exts.requireExtension(ExtensionTypeTransferFeeConfig)
	if err != nil {
		return err
	}
	var feeConfig TransferFeeConfig
	err = unmarshalExtension(feeConfigPayload, &feeConfig)
	if err != nil {
		return err
	}

	withdrawAuthority := pubkeyFromOptionalNonZero(feeConfig.WithdrawWithheldAuthority)
	if withdrawAuthority == nil {
		return TokenErrNoAuthorityExists
	}
	err = validateTokenOwnerRange(execCtx, *withdrawAuthority, 2, 3, sourcesStart)
	if err != nil {
		return err
	}

	dstAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 1)
	if err != nil {
		return err
	}
	defer dstAcct.Drop()

	dstData, err := dstAcct.DataMut()
	if err != nil {
		return err
	}
	dstState, err := unpackTokenAccountState(dstData)
	if err != nil {
		return err
	}
	if dstState.Account.IsFrozen() {
		return TokenErrAccountFrozen
	}

	dstKey := dstAcct.Key()
	for i := uint64(0); i < uint64(numTokenAccounts); i++ {
		srcAcctIdx := sourcesStart + i
		srcKey, err := extractAddress(txCtx, instrCtx, srcAcctIdx)
		if err != nil {
			return err
		}

		// the destination may appear among the harvested accounts; drain
		// its own withheld amount in place rather than borrowing it twice
		if srcKey == dstKey {
			feeAmountPayload, err := dstState.Exts.requireExtension(ExtensionTypeTransferFeeAmount)
			if err != nil {
				return err
			}
			var feeAmount TransferFeeAmount
			err = unmarshalExtension(feeAmountPayload, &feeAmount)
			if err != nil {
				return err
			}
			dstState.Account.Amount, err = safemath.CheckedAddU64(dstState.Account.Amount, feeAmount.WithheldAmount)
			if err != nil {
				return TokenErrOverflow
			}
			feeAmount.WithheldAmount = 0
			err = packExtension(feeAmountPayload, &feeAmount)
			if err != nil {
				return err
			}
			continue
		}

		srcAcct, err := instrCtx.BorrowInstructionAccount(txCtx, srcAcctIdx)
		if err != nil {
			return err
		}

		err = func() error {
			defer srcAcct.Drop()

			srcData, err := srcAcct.DataMut()
			if err != nil {
				return err
			}
			srcState, err := unpackTokenAccountState(srcData)
			if err != nil {
				return err
			}
			if srcState.Account.Mint != mintKey {
				return TokenErrMintMismatch
			}

			feeAmountPayload, err := srcState.Exts.requireExtension(ExtensionTypeTransferFeeAmount)
			if err != nil {
				return err
			}
			var feeAmount TransferFeeAmount
			err = unmarshalExtension(feeAmountPayload, &feeAmount)
			if err != nil {
				return err
			}
			dstState.Account.Amount, err = safemath.CheckedAddU64(dstState.Account.Amount, feeAmount.WithheldAmount)
			if err != nil {
				return TokenErrOverflow
			}
			feeAmount.WithheldAmount = 0
			return packExtension(feeAmountPayload, &feeAmount)
		}()
		if err != nil {
			return err
		}
	}

	return dstState.PackBase()
}

func tokenHarvestWithheldTokensToMint(execCtx *ExecutionCtx) error {
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

	mintData, err := mintAcct.DataMut()
	if err != nil {
		return err
	}
	mintState, err := unpackMintState(mintData)
	if err != nil {
		return err
	}

	feeConfigPayload, err := mintState.Exts.requireExtension(ExtensionTypeTransferFeeConfig)
	if err != nil {
		return err
	}
	var feeConfig TransferFeeConfig
	err = unmarshalExtension(feeConfigPayload, &feeConfig)
	if err != nil {
		return err
	}

	mintKey := mintAcct.Key()
	numInstrAccts := instrCtx.NumberOfInstructionAccounts()
	for srcAcctIdx := uint64(1); srcAcctIdx < numInstrAccts; srcAcctIdx++ {
		srcAcct, err := instrCtx.BorrowInstructionAccount(txCtx, srcAcctIdx)
		if err != nil {
			return err
		}

		err = func() error {
			defer srcAcct.Drop()

			srcData, err := srcAcct.DataMut()
			if err != nil {
				return err
			}
			srcState, err := unpackTokenAccountState(srcData)
			if err != nil {
				return err
			}
			if srcState.Account.Mint != mintKey {
				return TokenErrMintMismatch
			}

			feeAmountPayload, err := srcState.Exts.requireExtension(ExtensionTypeTransferFeeAmount)
			if err != nil {
				return err
			}
			var feeAmount TransferFeeAmount
			err = unmarshalExtension(feeAmountPayload, &feeAmount)
			if err != nil {
				return err
			}
			feeConfig.WithheldAmount, err = safemath.CheckedAddU64(feeConfig.WithheldAmount, feeAmount.WithheldAmount)
			if err != nil {
				return TokenErrOverflow
			}
			feeAmount.WithheldAmount = 0
			return packExtension(feeAmountPayload, &feeAmount)
		}()
		if err != nil {
			return err
		}
	}

	return packExtension(feeConfigPayload, &feeConfig)
}

func tokenSetTransferFee(execCtx *ExecutionCtx, transferFeeBasisPoints uint16, maximumFee uint64) error {
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

	mintData, err := mintAcct.DataMut()
	if err != nil {
		return err
	}
	mintState, err := unpackMintState(mintData)
	if err != nil {
		return err
	}

	feeConfigPayload, err := mintState.Exts.requireExtension(ExtensionTypeTransferFeeConfig)
	if err != nil {
		return err
	}
	var feeConfig TransferFeeConfig
	err = unmarshalExtension(feeConfigPayload, &feeConfig)
	if err != nil {
		return err
	}

	configAuthority := pubkeyFromOptionalNonZero(feeConfig.TransferFeeConfigAuthority)
	if configAuthority == nil {
		return TokenErrNoAuthorityExists
	}
	err = validateTokenOwner(execCtx, *configAuthority, 1)
	if err != nil {
		return err
	}

	if transferFeeBasisPoints > MaxTransferFeeBasisPoints {
		return TokenErrTransferFeeExceedsMaximum
	}

	// a scheduled fee that has already taken effect rolls into the older
	// slot, so at most one future entry is pending at a time
	clock := ReadClockSysvar(&execCtx.Accounts)
	if feeConfig.NewerTransferFee.Epoch <= clock.Epoch {
		feeConfig.OlderTransferFee = feeConfig.NewerTransferFee
	}
	feeConfig.NewerTransferFee = TransferFee{
		Epoch:                  safemath.SaturatingAddU64(clock.Epoch, 2),
		MaximumFee:             maximumFee,
		TransferFeeBasisPoints: transferFeeBasisPoints,
	}

	return packExtension(feeConfigPayload, &feeConfig)
}

func processTransferFeeInstruction(execCtx *ExecutionCtx, decoder *bin.Decoder) error {
	instructionType, err := decoder.ReadByte()
	if err != nil {
		return TokenErrInvalidInstruction
	}

	switch instructionType {

	case TransferFeeInstrTypeInitializeTransferFeeConfig:
		{
			klog.Infof("Instruction: InitializeTransferFeeConfig")
			var initialize TokenInstrInitializeTransferFeeConfig
			err = initialize.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenInitializeTransferFeeConfig(execCtx, initialize)
		}

	case TransferFeeInstrTypeTransferCheckedWithFee:
		{
			klog.Infof("Instruction: TransferCheckedWithFee")
			var transfer TokenInstrTransferCheckedWithFee
			err = transfer.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenTransfer(execCtx, transfer.Amount, &transfer.Decimals, &transfer.Fee)
		}

	case TransferFeeInstrTypeWithdrawWithheldTokensFromMint:
		{
			klog.Infof("Instruction: WithdrawWithheldTokensFromMint")
			return tokenWithdrawWithheldTokensFromMint(execCtx)
		}

	case TransferFeeInstrTypeWithdrawWithheldTokensFromAccounts:
		{
			klog.Infof("Instruction: WithdrawWithheldTokensFromAccounts")
			var withdraw TokenInstrWithdrawWithheldTokensFromAccounts
			err = withdraw.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenWithdrawWithheldTokensFromAccounts(execCtx, withdraw.NumTokenAccounts)
		}

	case TransferFeeInstrTypeHarvestWithheldTokensToMint:
		{
			klog.Infof("Instruction: HarvestWithheldTokensToMint")
			return tokenHarvestWithheldTokensToMint(execCtx)
		}

	case TransferFeeInstrTypeSetTransferFee:
		{
			klog.Infof("Instruction: SetTransferFee")
			var setFee TokenInstrSetTransferFee
			err = setFee.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenSetTransferFee(execCtx, setFee.TransferFeeBasisPoints, setFee.MaximumFee)
		}

	default:
		return TokenErrInvalidInstruction
	}
}
