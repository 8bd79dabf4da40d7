package sealevel

import (
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/solwasm/tokenrt/pkg/safemath"
	"k8s.io/klog/v2"
)

func checkTokenProgramAccount(owner solana.PublicKey) error {
	if owner != TokenProgramAddr {
		return ErrInvalidAccountOwner
	}
	return nil
}

func isValidSignerCount(n byte) bool {
	return n >= TokenMinSigners && n <= TokenMaxSigners
}

func (acct *TokenAccount) isOwnedBySystemProgramOrIncinerator() bool {
	return acct.Owner == SystemProgramAddr || acct.Owner == IncineratorAddr
}

// requireExtension returns the payload of an extension that must be present.
func (ext *tokenStateExtensions) requireExtension(extType uint16) ([]byte, error) {
	payload, err := ext.Extension(extType)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrInvalidAccountData
	}
	return payload, nil
}

// validateTokenOwnerRange proves authority over expectedOwner. The authority
// is either a direct signer or a multisig account whose required quorum
// appears among the instruction accounts in [signersStart, signersEnd).
func validateTokenOwnerRange(execCtx *ExecutionCtx, expectedOwner solana.PublicKey, authorityAcctIdx uint64, signersStart uint64, signersEnd uint64) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}

	authorityKey, err := extractAddress(txCtx, instrCtx, authorityAcctIdx)
	if err != nil {
		return err
	}
	if authorityKey != expectedOwner {
		return TokenErrOwnerMismatch
	}

	idxInTx, err := instrCtx.IndexOfInstructionAccountInTransaction(authorityAcctIdx)
	if err != nil {
		return err
	}
	authorityAcct, err := txCtx.AccountAtIndex(idxInTx)
	if err != nil {
		return err
	}

	if authorityAcct.Owner == TokenProgramAddr && len(authorityAcct.Data) == TokenMultisigLen {
		multisig, err := unmarshalTokenMultisig(authorityAcct.Data)
		if err != nil {
			return err
		}

		var matched [TokenMaxSigners]bool
		var numSigners byte
		for signerIdx := signersStart; signerIdx < signersEnd; signerIdx++ {
			signerKey, err := extractAddress(txCtx, instrCtx, signerIdx)
			if err != nil {
				return err
			}
			for position := byte(0); position < multisig.N; position++ {
				if multisig.Signers[position] == signerKey && !matched[position] {
					isSigner, err := instrCtx.IsInstructionAccountSigner(signerIdx)
					if err != nil {
						return err
					}
					if !isSigner {
						return ErrMissingRequiredSignature
					}
					matched[position] = true
					numSigners++
				}
			}
		}
		if numSigners < multisig.M {
			return ErrMissingRequiredSignature
		}
		return nil
	}

	isSigner, err := instrCtx.IsInstructionAccountSigner(authorityAcctIdx)
	if err != nil {
		return err
	}
	if !isSigner {
		return ErrMissingRequiredSignature
	}
	return nil
}

func validateTokenOwner(execCtx *ExecutionCtx, expectedOwner solana.PublicKey, authorityAcctIdx uint64) error {
	instrCtx, err := execCtx.TransactionContext.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	return validateTokenOwnerRange(execCtx, expectedOwner, authorityAcctIdx, authorityAcctIdx+1, instrCtx.NumberOfInstructionAccounts())
}

// requiredExtensionsForMint lists the account extensions a mint's own
// extensions demand on every holder account.
func requiredExtensionsForMint(mintState *MintState) ([]uint16, error) {
	mintExtTypes, err := mintState.Exts.ExtensionTypes()
	if err != nil {
		return nil, err
	}
	var required []uint16
	for _, mintExtType := range mintExtTypes {
		required = append(required, requiredAccountExtensions(mintExtType)...)
	}
	return required, nil
}

func tokenInitializeMint(execCtx *ExecutionCtx, decimals byte, mintAuthority solana.PublicKey, freezeAuthority *solana.PublicKey, rentFromSysvarAccount bool) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}

	numRequiredAccts := uint64(1)
	if rentFromSysvarAccount {
		numRequiredAccts = 2
	}
	err = instrCtx.CheckNumOfInstructionAccounts(numRequiredAccts)
	if err != nil {
		return err
	}

	var rent SysvarRent
	if rentFromSysvarAccount {
		rentAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 1)
		if err != nil {
			return err
		}
		rent, err = rentSysvarFromInstructionAcct(rentAcct)
		rentAcct.Drop()
		if err != nil {
			return err
		}
	} else {
		rent = ReadRentSysvar(&execCtx.Accounts)
	}

	mintAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer mintAcct.Drop()

	if !rent.IsExempt(mintAcct.Lamports(), uint64(len(mintAcct.Data()))) {
		return TokenErrNotRentExempt
	}

	data, err := mintAcct.DataMut()
	if err != nil {
		return err
	}

	mintState, err := unpackMintStateUninitialized(data)
	if err != nil {
		return err
	}

	extensionTypes, err := mintState.Exts.ExtensionTypes()
	if err != nil {
		return err
	}
	expectedLen, err := getAccountLenForExtensions(TokenAccountTypeMint, extensionTypes)
	if err != nil {
		return err
	}
	if expectedLen != uint64(len(data)) {
		return ErrInvalidAccountData
	}

	defaultStatePayload, err := mintState.Exts.Extension(ExtensionTypeDefaultAccountState)
	if err != nil {
		return err
	}
	if defaultStatePayload != nil {
		var defaultState DefaultAccountState
		err = unmarshalExtension(defaultStatePayload, &defaultState)
		if err != nil {
			return err
		}
		if defaultState.State > TokenAccountStateFrozen {
			return ErrInvalidAccountData
		}
		if defaultState.State == TokenAccountStateFrozen && freezeAuthority == nil {
			return TokenErrMintCannotFreeze
		}
	}

	mintState.Mint.MintAuthority = &mintAuthority
	mintState.Mint.Decimals = decimals
	mintState.Mint.IsInitialized = true
	mintState.Mint.FreezeAuthority = freezeAuthority

	err = mintState.PackBase()
	if err != nil {
		return err
	}
	return mintState.Exts.InitAccountType()
}

func tokenInitializeAccount(execCtx *ExecutionCtx, ownerProvided *solana.PublicKey, rentFromSysvarAccount bool) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}

	nextAcctIdx := uint64(2)

	var owner solana.PublicKey
	if ownerProvided != nil {
		owner = *ownerProvided
	} else {
		owner, err = extractAddress(txCtx, instrCtx, nextAcctIdx)
		if err != nil {
			return err
		}
		nextAcctIdx++
	}

	var rent SysvarRent
	if rentFromSysvarAccount {
		err = instrCtx.CheckNumOfInstructionAccounts(nextAcctIdx + 1)
		if err != nil {
			return err
		}
		rentAcct, err := instrCtx.BorrowInstructionAccount(txCtx, nextAcctIdx)
		if err != nil {
			return err
		}
		rent, err = rentSysvarFromInstructionAcct(rentAcct)
		rentAcct.Drop()
		if err != nil {
			return err
		}
	} else {
		err = instrCtx.CheckNumOfInstructionAccounts(2)
		if err != nil {
			return err
		}
		rent = ReadRentSysvar(&execCtx.Accounts)
	}

	newAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer newAcct.Drop()

	data, err := newAcct.DataMut()
	if err != nil {
		return err
	}
	dataLen := uint64(len(data))

	acctState, err := unpackTokenAccountStateUninitialized(data)
	if err != nil {
		return err
	}

	if !rent.IsExempt(newAcct.Lamports(), dataLen) {
		return TokenErrNotRentExempt
	}

	mintKey, err := extractAddress(txCtx, instrCtx, 1)
	if err != nil {
		return err
	}
	mintIdxInTx, err := instrCtx.IndexOfInstructionAccountInTransaction(1)
	if err != nil {
		return err
	}
	mintAcct, err := txCtx.AccountAtIndex(mintIdxInTx)
	if err != nil {
		return err
	}
	err = checkTokenProgramAccount(mintAcct.Owner)
	if err != nil {
		return err
	}

	mintState, err := unpackMintState(mintAcct.Data)
	if err != nil {
		return TokenErrInvalidMint
	}

	requiredExtensions, err := requiredExtensionsForMint(mintState)
	if err != nil {
		return err
	}
	requiredLen, err := getAccountLenForExtensions(TokenAccountTypeAccount, requiredExtensions)
	if err != nil {
		return err
	}
	if requiredLen > dataLen {
		return ErrInvalidAccountData
	}
	for _, extType := range requiredExtensions {
		payload, err := acctState.Exts.InitExtension(extType, true)
		if err != nil {
			return err
		}
		for i := range payload {
			payload[i] = 0
		}
	}

	startingState := byte(TokenAccountStateInitialized)
	defaultStatePayload, err := mintState.Exts.Extension(ExtensionTypeDefaultAccountState)
	if err != nil {
		return err
	}
	if defaultStatePayload != nil {
		var defaultState DefaultAccountState
		err = unmarshalExtension(defaultStatePayload, &defaultState)
		if err != nil {
			return err
		}
		if defaultState.State > TokenAccountStateFrozen {
			return ErrInvalidAccountData
		}
		startingState = defaultState.State
	}

	acctState.Account.Mint = mintKey
	acctState.Account.Owner = owner
	acctState.Account.CloseAuthority = nil
	acctState.Account.Delegate = nil
	acctState.Account.DelegatedAmount = 0
	acctState.Account.State = startingState

	if mintKey == NativeMintAddr {
		rentExemptReserve := rent.MinimumBalance(dataLen)
		acctState.Account.IsNative = &rentExemptReserve
		amount, err := safemath.CheckedSubU64(newAcct.Lamports(), rentExemptReserve)
		if err != nil {
			return TokenErrOverflow
		}
		acctState.Account.Amount = amount
	} else {
		acctState.Account.IsNative = nil
		acctState.Account.Amount = 0
	}

	err = acctState.PackBase()
	if err != nil {
		return err
	}
	return acctState.Exts.InitAccountType()
}

func tokenInitializeMultisig(execCtx *ExecutionCtx, m byte, rentFromSysvarAccount bool) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}

	signersStart := uint64(1)
	if rentFromSysvarAccount {
		signersStart = 2
	}
	err = instrCtx.CheckNumOfInstructionAccounts(signersStart)
	if err != nil {
		return err
	}

	var rent SysvarRent
	if rentFromSysvarAccount {
		rentAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 1)
		if err != nil {
			return err
		}
		rent, err = rentSysvarFromInstructionAcct(rentAcct)
		rentAcct.Drop()
		if err != nil {
			return err
		}
	} else {
		rent = ReadRentSysvar(&execCtx.Accounts)
	}

	multisigAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer multisigAcct.Drop()

	data, err := multisigAcct.DataMut()
	if err != nil {
		return err
	}

	multisig, err := unmarshalTokenMultisigUnchecked(data)
	if err != nil {
		return err
	}
	if multisig.IsInitialized {
		return TokenErrAlreadyInUse
	}

	if !rent.IsExempt(multisigAcct.Lamports(), uint64(len(data))) {
		return TokenErrNotRentExempt
	}

	numSigners := instrCtx.NumberOfInstructionAccounts() - signersStart
	multisig.M = m
	multisig.N = byte(numSigners)
	if !isValidSignerCount(multisig.N) {
		return TokenErrInvalidNumberOfProvidedSigners
	}
	if !isValidSignerCount(multisig.M) {
		return TokenErrInvalidNumberOfRequiredSigners
	}
	for i := uint64(0); i < numSigners; i++ {
		signerKey, err := extractAddress(txCtx, instrCtx, signersStart+i)
		if err != nil {
			return err
		}
		multisig.Signers[i] = signerKey
	}
	multisig.IsInitialized = true

	return multisig.Pack(data)
}

func tokenTransfer(execCtx *ExecutionCtx, amount uint64, expectedDecimals *byte, expectedFee *uint64) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}

	var dstAcctIdx, authorityAcctIdx uint64
	if expectedDecimals != nil {
		dstAcctIdx = 2
		authorityAcctIdx = 3
	} else {
		dstAcctIdx = 1
		authorityAcctIdx = 2
	}
	err = instrCtx.CheckNumOfInstructionAccounts(authorityAcctIdx + 1)
	if err != nil {
		return err
	}

	srcAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer srcAcct.Drop()

	srcData, err := srcAcct.DataMut()
	if err != nil {
		return err
	}
	srcState, err := unpackTokenAccountState(srcData)
	if err != nil {
		return err
	}

	if srcState.Account.IsFrozen() {
		return TokenErrAccountFrozen
	}
	if srcState.Account.Amount < amount {
		return TokenErrInsufficientFunds
	}

	var fee uint64
	if expectedDecimals != nil {
		mintKey, err := extractAddress(txCtx, instrCtx, 1)
		if err != nil {
			return err
		}
		if srcState.Account.Mint != mintKey {
			return TokenErrMintMismatch
		}

		mintIdxInTx, err := instrCtx.IndexOfInstructionAccountInTransaction(1)
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

		if mintState.Exts.HasExtension(ExtensionTypeNonTransferable) {
			return TokenErrNonTransferable
		}
		if *expectedDecimals != mintState.Mint.Decimals {
			return TokenErrMintDecimalsMismatch
		}

		feeConfigPayload, err := mintState.Exts.Extension(ExtensionTypeTransferFeeConfig)
		if err != nil {
			return err
		}
		if feeConfigPayload != nil {
			var feeConfig TransferFeeConfig
			err = unmarshalExtension(feeConfigPayload, &feeConfig)
			if err != nil {
				return err
			}
			clock := ReadClockSysvar(&execCtx.Accounts)
			fee, err = feeConfig.CalculateEpochFee(clock.Epoch, amount)
			if err != nil {
				return err
			}
		}
	} else {
		// the legacy path cannot compute a fee, so fee-bearing accounts
		// must use the checked variants
		if srcState.Exts.HasExtension(ExtensionTypeTransferFeeAmount) {
			return TokenErrMintRequiredForTransfer
		}
	}

	if expectedFee != nil && *expectedFee != fee {
		klog.Infof("calculated fee %d, received %d", fee, *expectedFee)
		return TokenErrFeeMismatch
	}

	srcKey := srcAcct.Key()
	dstKey, err := extractAddress(txCtx, instrCtx, dstAcctIdx)
	if err != nil {
		return err
	}
	selfTransfer := srcKey == dstKey

	authorityKey, err := extractAddress(txCtx, instrCtx, authorityAcctIdx)
	if err != nil {
		return err
	}

	if srcState.Account.Delegate != nil && *srcState.Account.Delegate == authorityKey {
		err = validateTokenOwner(execCtx, *srcState.Account.Delegate, authorityAcctIdx)
		if err != nil {
			return err
		}
		if srcState.Account.DelegatedAmount < amount {
			return TokenErrInsufficientFunds
		}
		if !selfTransfer {
			srcState.Account.DelegatedAmount, err = safemath.CheckedSubU64(srcState.Account.DelegatedAmount, amount)
			if err != nil {
				return TokenErrOverflow
			}
			if srcState.Account.DelegatedAmount == 0 {
				srcState.Account.Delegate = nil
			}
		}
	} else {
		err = validateTokenOwner(execCtx, srcState.Account.Owner, authorityAcctIdx)
		if err != nil {
			return err
		}
	}

	err = checkTokenProgramAccount(srcAcct.Owner())
	if err != nil {
		return err
	}
	dstIdxInTx, err := instrCtx.IndexOfInstructionAccountInTransaction(dstAcctIdx)
	if err != nil {
		return err
	}
	dstAcctRaw, err := txCtx.AccountAtIndex(dstIdxInTx)
	if err != nil {
		return err
	}
	err = checkTokenProgramAccount(dstAcctRaw.Owner)
	if err != nil {
		return err
	}

	// a self-transfer is validated in full but must not mutate balances,
	// and must not borrow the same account twice
	if selfTransfer {
		return nil
	}

	dstAcct, err := instrCtx.BorrowInstructionAccount(txCtx, dstAcctIdx)
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
	if srcState.Account.Mint != dstState.Account.Mint {
		return TokenErrMintMismatch
	}

	memoRequired, err := incomingTransferMemoRequired(dstState)
	if err != nil {
		return err
	}
	if memoRequired {
		err = checkPreviousSiblingInstructionIsMemo(execCtx)
		if err != nil {
			return err
		}
	}

	srcState.Account.Amount, err = safemath.CheckedSubU64(srcState.Account.Amount, amount)
	if err != nil {
		return TokenErrOverflow
	}
	creditedAmount, err := safemath.CheckedSubU64(amount, fee)
	if err != nil {
		return TokenErrOverflow
	}
	dstState.Account.Amount, err = safemath.CheckedAddU64(dstState.Account.Amount, creditedAmount)
	if err != nil {
		return TokenErrOverflow
	}

	if fee > 0 {
		feeAmountPayload, err := dstState.Exts.Extension(ExtensionTypeTransferFeeAmount)
		if err != nil {
			return err
		}
		if feeAmountPayload == nil {
			return TokenErrInvalidState
		}
		var feeAmount TransferFeeAmount
		err = unmarshalExtension(feeAmountPayload, &feeAmount)
		if err != nil {
			return err
		}
		feeAmount.WithheldAmount, err = safemath.CheckedAddU64(feeAmount.WithheldAmount, fee)
		if err != nil {
			return TokenErrOverflow
		}
		err = packExtension(feeAmountPayload, &feeAmount)
		if err != nil {
			return err
		}
	}

	if srcState.Account.IsNativeAccount() {
		newSrcLamports, err := safemath.CheckedSubU64(srcAcct.Lamports(), amount)
		if err != nil {
			return TokenErrOverflow
		}
		err = srcAcct.SetLamports(newSrcLamports)
		if err != nil {
			return err
		}
		newDstLamports, err := safemath.CheckedAddU64(dstAcct.Lamports(), amount)
		if err != nil {
			return TokenErrOverflow
		}
		err = dstAcct.SetLamports(newDstLamports)
		if err != nil {
			return err
		}
	}

	err = srcState.PackBase()
	if err != nil {
		return err
	}
	return dstState.PackBase()
}

func tokenApprove(execCtx *ExecutionCtx, amount uint64, expectedDecimals *byte) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}

	var delegateAcctIdx, ownerAcctIdx uint64
	if expectedDecimals != nil {
		delegateAcctIdx = 2
		ownerAcctIdx = 3
	} else {
		delegateAcctIdx = 1
		ownerAcctIdx = 2
	}
	err = instrCtx.CheckNumOfInstructionAccounts(ownerAcctIdx + 1)
	if err != nil {
		return err
	}

	srcAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer srcAcct.Drop()

	srcData, err := srcAcct.DataMut()
	if err != nil {
		return err
	}
	srcState, err := unpackTokenAccountState(srcData)
	if err != nil {
		return err
	}

	if srcState.Account.IsFrozen() {
		return TokenErrAccountFrozen
	}

	if expectedDecimals != nil {
		mintKey, err := extractAddress(txCtx, instrCtx, 1)
		if err != nil {
			return err
		}
		if srcState.Account.Mint != mintKey {
			return TokenErrMintMismatch
		}

		mintIdxInTx, err := instrCtx.IndexOfInstructionAccountInTransaction(1)
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
		if *expectedDecimals != mintState.Mint.Decimals {
			return TokenErrMintDecimalsMismatch
		}
	}

	err = validateTokenOwner(execCtx, srcState.Account.Owner, ownerAcctIdx)
	if err != nil {
		return err
	}

	delegateKey, err := extractAddress(txCtx, instrCtx, delegateAcctIdx)
	if err != nil {
		return err
	}
	srcState.Account.Delegate = &delegateKey
	srcState.Account.DelegatedAmount = amount

	return srcState.PackBase()
}

func tokenRevoke(execCtx *ExecutionCtx) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(2)
	if err != nil {
		return err
	}

	srcAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer srcAcct.Drop()

	srcData, err := srcAcct.DataMut()
	if err != nil {
		return err
	}
	srcState, err := unpackTokenAccountState(srcData)
	if err != nil {
		return err
	}

	if srcState.Account.IsFrozen() {
		return TokenErrAccountFrozen
	}
	if srcState.Account.Delegate == nil {
		return TokenErrInvalidState
	}

	authorityKey, err := extractAddress(txCtx, instrCtx, 1)
	if err != nil {
		return err
	}
	expectedOwner := srcState.Account.Owner
	if *srcState.Account.Delegate == authorityKey {
		expectedOwner = *srcState.Account.Delegate
	}
	err = validateTokenOwner(execCtx, expectedOwner, 1)
	if err != nil {
		return err
	}

	srcState.Account.Delegate = nil
	srcState.Account.DelegatedAmount = 0

	return srcState.PackBase()
}

func tokenSetAuthority(execCtx *ExecutionCtx, authorityType byte, newAuthority *solana.PublicKey) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(2)
	if err != nil {
		return err
	}

	targetAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer targetAcct.Drop()

	data, err := targetAcct.DataMut()
	if err != nil {
		return err
	}

	if acctState, err := unpackTokenAccountState(data); err == nil {
		if acctState.Account.IsFrozen() {
			return TokenErrAccountFrozen
		}

		switch authorityType {
		case TokenAuthorityTypeAccountOwner:
			err = validateTokenOwner(execCtx, acctState.Account.Owner, 1)
			if err != nil {
				return err
			}
			if acctState.Exts.HasExtension(ExtensionTypeImmutableOwner) {
				return TokenErrImmutableOwner
			}
			if newAuthority == nil {
				return TokenErrInvalidInstruction
			}
			acctState.Account.Owner = *newAuthority
			acctState.Account.Delegate = nil
			acctState.Account.DelegatedAmount = 0
			if acctState.Account.IsNativeAccount() {
				acctState.Account.CloseAuthority = nil
			}

		case TokenAuthorityTypeCloseAccount:
			expectedAuthority := acctState.Account.Owner
			if acctState.Account.CloseAuthority != nil {
				expectedAuthority = *acctState.Account.CloseAuthority
			}
			err = validateTokenOwner(execCtx, expectedAuthority, 1)
			if err != nil {
				return err
			}
			acctState.Account.CloseAuthority = newAuthority

		default:
			return TokenErrAuthorityTypeNotSupported
		}
		return acctState.PackBase()
	}

	mintState, err := unpackMintState(data)
	if err != nil {
		return ErrInvalidAccountData
	}

	switch authorityType {
	case TokenAuthorityTypeMintTokens:
		// a fixed supply cannot be undone by installing a new authority
		if mintState.Mint.MintAuthority == nil {
			return TokenErrFixedSupply
		}
		err = validateTokenOwner(execCtx, *mintState.Mint.MintAuthority, 1)
		if err != nil {
			return err
		}
		mintState.Mint.MintAuthority = newAuthority
		return mintState.PackBase()

	case TokenAuthorityTypeFreezeAccount:
		if mintState.Mint.FreezeAuthority == nil {
			return TokenErrMintCannotFreeze
		}
		err = validateTokenOwner(execCtx, *mintState.Mint.FreezeAuthority, 1)
		if err != nil {
			return err
		}
		mintState.Mint.FreezeAuthority = newAuthority
		return mintState.PackBase()

	case TokenAuthorityTypeCloseMint:
		payload, err := mintState.Exts.requireExtension(ExtensionTypeMintCloseAuthority)
		if err != nil {
			return err
		}
		var closeAuth MintCloseAuthority
		err = unmarshalExtension(payload, &closeAuth)
		if err != nil {
			return err
		}
		currentAuthority := pubkeyFromOptionalNonZero(closeAuth.CloseAuthority)
		if currentAuthority == nil {
			return TokenErrAuthorityTypeNotSupported
		}
		err = validateTokenOwner(execCtx, *currentAuthority, 1)
		if err != nil {
			return err
		}
		closeAuth.CloseAuthority = optionalNonZeroPubkey(newAuthority)
		return packExtension(payload, &closeAuth)

	case TokenAuthorityTypeTransferFeeConfig:
		payload, err := mintState.Exts.requireExtension(ExtensionTypeTransferFeeConfig)
		if err != nil {
			return err
		}
		var feeConfig TransferFeeConfig
		err = unmarshalExtension(payload, &feeConfig)
		if err != nil {
			return err
		}
		currentAuthority := pubkeyFromOptionalNonZero(feeConfig.TransferFeeConfigAuthority)
		if currentAuthority == nil {
			return TokenErrAuthorityTypeNotSupported
		}
		err = validateTokenOwner(execCtx, *currentAuthority, 1)
		if err != nil {
			return err
		}
		feeConfig.TransferFeeConfigAuthority = optionalNonZeroPubkey(newAuthority)
		return packExtension(payload, &feeConfig)

	case TokenAuthorityTypeWithheldWithdraw:
		payload, err := mintState.Exts.requireExtension(ExtensionTypeTransferFeeConfig)
		if err != nil {
			return err
		}
		var feeConfig TransferFeeConfig
		err = unmarshalExtension(payload, &feeConfig)
		if err != nil {
			return err
		}
		currentAuthority := pubkeyFromOptionalNonZero(feeConfig.WithdrawWithheldAuthority)
		if currentAuthority == nil {
			return TokenErrAuthorityTypeNotSupported
		}
		err = validateTokenOwner(execCtx, *currentAuthority, 1)
		if err != nil {
			return err
		}
		feeConfig.WithdrawWithheldAuthority = optionalNonZeroPubkey(newAuthority)
		return packExtension(payload, &feeConfig)

	case TokenAuthorityTypeInterestRate:
		payload, err := mintState.Exts.requireExtension(ExtensionTypeInterestBearingConfig)
		if err != nil {
			return err
		}
		var interestConfig InterestBearingConfig
		err = unmarshalExtension(payload, &interestConfig)
		if err != nil {
			return err
		}
		currentAuthority := pubkeyFromOptionalNonZero(interestConfig.RateAuthority)
		if currentAuthority == nil {
			return TokenErrAuthorityTypeNotSupported
		}
		err = validateTokenOwner(execCtx, *currentAuthority, 1)
		if err != nil {
			return err
		}
		interestConfig.RateAuthority = optionalNonZeroPubkey(newAuthority)
		return packExtension(payload, &interestConfig)

	default:
		return TokenErrAuthorityTypeNotSupported
	}
}

func tokenMintTo(execCtx *ExecutionCtx, amount uint64, expectedDecimals *byte) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(3)
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
	if dstState.Account.IsNativeAccount() {
		return TokenErrNativeNotSupported
	}

	mintKey, err := extractAddress(txCtx, instrCtx, 0)
	if err != nil {
		return err
	}
	if mintKey != dstState.Account.Mint {
		return TokenErrMintMismatch
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

	// non-transferable tokens may only land on accounts whose ownership
	// can never change
	if mintState.Exts.HasExtension(ExtensionTypeNonTransferable) &&
		!dstState.Exts.HasExtension(ExtensionTypeImmutableOwner) {
		return TokenErrNonTransferableNeedsImmutableOwnership
	}

	if expectedDecimals != nil && *expectedDecimals != mintState.Mint.Decimals {
		return TokenErrMintDecimalsMismatch
	}

	if mintState.Mint.MintAuthority == nil {
		return TokenErrFixedSupply
	}
	err = validateTokenOwner(execCtx, *mintState.Mint.MintAuthority, 2)
	if err != nil {
		return err
	}

	err = checkTokenProgramAccount(mintAcct.Owner())
	if err != nil {
		return err
	}
	err = checkTokenProgramAccount(dstAcct.Owner())
	if err != nil {
		return err
	}

	dstState.Account.Amount, err = safemath.CheckedAddU64(dstState.Account.Amount, amount)
	if err != nil {
		return TokenErrOverflow
	}
	mintState.Mint.Supply, err = safemath.CheckedAddU64(mintState.Mint.Supply, amount)
	if err != nil {
		return TokenErrOverflow
	}

	err = mintState.PackBase()
	if err != nil {
		return err
	}
	return dstState.PackBase()
}

func tokenBurn(execCtx *ExecutionCtx, amount uint64, expectedDecimals *byte) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(3)
	if err != nil {
		return err
	}

	srcAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer srcAcct.Drop()

	srcData, err := srcAcct.DataMut()
	if err != nil {
		return err
	}
	srcState, err := unpackTokenAccountState(srcData)
	if err != nil {
		return err
	}

	mintAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 1)
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

	if srcState.Account.IsFrozen() {
		return TokenErrAccountFrozen
	}
	if srcState.Account.IsNativeAccount() {
		return TokenErrNativeNotSupported
	}
	if srcState.Account.Amount < amount {
		return TokenErrInsufficientFunds
	}
	if mintAcct.Key() != srcState.Account.Mint {
		return TokenErrMintMismatch
	}

	if expectedDecimals != nil && *expectedDecimals != mintState.Mint.Decimals {
		return TokenErrMintDecimalsMismatch
	}

	// accounts parked on the system program or the incinerator are burnable
	// by anyone
	if !srcState.Account.isOwnedBySystemProgramOrIncinerator() {
		authorityKey, err := extractAddress(txCtx, instrCtx, 2)
		if err != nil {
			return err
		}
		if srcState.Account.Delegate != nil && *srcState.Account.Delegate == authorityKey {
			err = validateTokenOwner(execCtx, *srcState.Account.Delegate, 2)
			if err != nil {
				return err
			}
			if srcState.Account.DelegatedAmount < amount {
				return TokenErrInsufficientFunds
			}
			srcState.Account.DelegatedAmount, err = safemath.CheckedSubU64(srcState.Account.DelegatedAmount, amount)
			if err != nil {
				return TokenErrOverflow
			}
			if srcState.Account.DelegatedAmount == 0 {
				srcState.Account.Delegate = nil
			}
		} else {
			err = validateTokenOwner(execCtx, srcState.Account.Owner, 2)
			if err != nil {
				return err
			}
		}
	}

	err = checkTokenProgramAccount(srcAcct.Owner())
	if err != nil {
		return err
	}
	err = checkTokenProgramAccount(mintAcct.Owner())
	if err != nil {
		return err
	}

	srcState.Account.Amount, err = safemath.CheckedSubU64(srcState.Account.Amount, amount)
	if err != nil {
		return TokenErrOverflow
	}
	mintState.Mint.Supply, err = safemath.CheckedSubU64(mintState.Mint.Supply, amount)
	if err != nil {
		return TokenErrOverflow
	}

	err = srcState.PackBase()
	if err != nil {
		return err
	}
	return mintState.PackBase()
}

func tokenCloseAccount(execCtx *ExecutionCtx) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(3)
	if err != nil {
		return err
	}

	srcKey, err := extractAddress(txCtx, instrCtx, 0)
	if err != nil {
		return err
	}
	dstKey, err := extractAddress(txCtx, instrCtx, 1)
	if err != nil {
		return err
	}
	if srcKey == dstKey {
		return ErrInvalidAccountData
	}

	srcAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer srcAcct.Drop()

	srcData, err := srcAcct.DataMut()
	if err != nil {
		return err
	}

	if acctState, err := unpackTokenAccountState(srcData); err == nil {
		if !acctState.Account.IsNativeAccount() && acctState.Account.Amount != 0 {
			return TokenErrNonNativeHasBalance
		}

		authority := acctState.Account.Owner
		if acctState.Account.CloseAuthority != nil {
			authority = *acctState.Account.CloseAuthority
		}

		if !acctState.Account.isOwnedBySystemProgramOrIncinerator() {
			err = validateTokenOwner(execCtx, authority, 2)
			if err != nil {
				return err
			}
		} else if dstKey != IncineratorAddr {
			return ErrInvalidAccountData
		}

		feeAmountPayload, err := acctState.Exts.Extension(ExtensionTypeTransferFeeAmount)
		if err != nil {
			return err
		}
		if feeAmountPayload != nil {
			var feeAmount TransferFeeAmount
			err = unmarshalExtension(feeAmountPayload, &feeAmount)
			if err != nil {
				return err
			}
			err = feeAmount.Closable()
			if err != nil {
				return err
			}
		}
	} else if mintState, err := unpackMintState(srcData); err == nil {
		payload, err := mintState.Exts.requireExtension(ExtensionTypeMintCloseAuthority)
		if err != nil {
			return err
		}
		var closeAuth MintCloseAuthority
		err = unmarshalExtension(payload, &closeAuth)
		if err != nil {
			return err
		}
		authority := pubkeyFromOptionalNonZero(closeAuth.CloseAuthority)
		if authority == nil {
			return TokenErrAuthorityTypeNotSupported
		}
		err = validateTokenOwner(execCtx, *authority, 2)
		if err != nil {
			return err
		}

		if mintState.Mint.Supply != 0 {
			return TokenErrMintHasSupply
		}
	} else {
		return ErrUninitializedAccount
	}

	dstAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 1)
	if err != nil {
		return err
	}
	defer dstAcct.Drop()

	newDstLamports, err := safemath.CheckedAddU64(dstAcct.Lamports(), srcAcct.Lamports())
	if err != nil {
		return TokenErrOverflow
	}
	err = dstAcct.SetLamports(newDstLamports)
	if err != nil {
		return err
	}
	err = srcAcct.SetLamports(0)
	if err != nil {
		return err
	}

	for i := range srcData {
		srcData[i] = 0
	}
	return nil
}

func tokenToggleFreezeAccount(execCtx *ExecutionCtx, freeze bool) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(3)
	if err != nil {
		return err
	}

	srcAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer srcAcct.Drop()

	srcData, err := srcAcct.DataMut()
	if err != nil {
		return err
	}
	srcState, err := unpackTokenAccountState(srcData)
	if err != nil {
		return err
	}

	if freeze == srcState.Account.IsFrozen() {
		return TokenErrInvalidState
	}
	if srcState.Account.IsNativeAccount() {
		return TokenErrNativeNotSupported
	}

	mintKey, err := extractAddress(txCtx, instrCtx, 1)
	if err != nil {
		return err
	}
	if mintKey != srcState.Account.Mint {
		return TokenErrMintMismatch
	}

	mintIdxInTx, err := instrCtx.IndexOfInstructionAccountInTransaction(1)
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

	if mintState.Mint.FreezeAuthority == nil {
		return TokenErrMintCannotFreeze
	}
	err = validateTokenOwner(execCtx, *mintState.Mint.FreezeAuthority, 2)
	if err != nil {
		return err
	}

	if freeze {
		srcState.Account.State = TokenAccountStateFrozen
	} else {
		srcState.Account.State = TokenAccountStateInitialized
	}

	return srcState.PackBase()
}

func tokenSyncNative(execCtx *ExecutionCtx) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(1)
	if err != nil {
		return err
	}

	nativeAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 0)
	if err != nil {
		return err
	}
	defer nativeAcct.Drop()

	err = checkTokenProgramAccount(nativeAcct.Owner())
	if err != nil {
		return err
	}

	data, err := nativeAcct.DataMut()
	if err != nil {
		return err
	}
	acctState, err := unpackTokenAccountState(data)
	if err != nil {
		return err
	}

	if acctState.Account.IsNative == nil {
		return TokenErrNonNativeNotSupported
	}

	newAmount, err := safemath.CheckedSubU64(nativeAcct.Lamports(), *acctState.Account.IsNative)
	if err != nil {
		return TokenErrOverflow
	}
	if newAmount < acctState.Account.Amount {
		return TokenErrInvalidState
	}
	acctState.Account.Amount = newAmount

	return acctState.PackBase()
}

func tokenInitializeMintCloseAuthority(execCtx *ExecutionCtx, closeAuthority *solana.PublicKey) error {
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

	payload, err := mintState.Exts.InitExtension(ExtensionTypeMintCloseAuthority, true)
	if err != nil {
		return err
	}
	closeAuth := MintCloseAuthority{CloseAuthority: optionalNonZeroPubkey(closeAuthority)}
	return packExtension(payload, &closeAuth)
}

func tokenGetAccountDataSize(execCtx *ExecutionCtx, newExtensionTypes []uint16) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(1)
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
	err = checkTokenProgramAccount(mintAcct.Owner)
	if err != nil {
		return err
	}

	mintState, err := unpackMintState(mintAcct.Data)
	if err != nil {
		return TokenErrInvalidMint
	}

	accountExtensions, err := requiredExtensionsForMint(mintState)
	if err != nil {
		return err
	}
	// getAccountLenForExtensions dedupes, so plain concatenation is fine
	accountExtensions = append(accountExtensions, newExtensionTypes...)

	accountLen, err := getAccountLenForExtensions(TokenAccountTypeAccount, accountExtensions)
	if err != nil {
		return err
	}

	var returnData [8]byte
	binary.LittleEndian.PutUint64(returnData[:], accountLen)
	txCtx.SetReturnData(TokenProgramAddr, returnData[:])
	return nil
}

func tokenInitializeImmutableOwner(execCtx *ExecutionCtx) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(1)
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
	acctState, err := unpackTokenAccountStateUninitialized(data)
	if err != nil {
		return err
	}

	_, err = acctState.Exts.InitExtension(ExtensionTypeImmutableOwner, true)
	return err
}

func tokenAmountToUiAmount(execCtx *ExecutionCtx, amount uint64) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(1)
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
	err = checkTokenProgramAccount(mintAcct.Owner)
	if err != nil {
		return err
	}

	mintState, err := unpackMintState(mintAcct.Data)
	if err != nil {
		return TokenErrInvalidMint
	}

	var uiAmount string
	interestPayload, err := mintState.Exts.Extension(ExtensionTypeInterestBearingConfig)
	if err != nil {
		return err
	}
	if interestPayload != nil {
		var interestConfig InterestBearingConfig
		err = unmarshalExtension(interestPayload, &interestConfig)
		if err != nil {
			return err
		}
		clock := ReadClockSysvar(&execCtx.Accounts)
		uiAmount, err = interestConfig.AmountToUiAmount(amount, mintState.Mint.Decimals, clock.UnixTimestamp)
		if err != nil {
			return ErrInvalidArgument
		}
	} else {
		uiAmount = amountToUiAmountStringTrimmed(amount, mintState.Mint.Decimals)
	}

	txCtx.SetReturnData(TokenProgramAddr, []byte(uiAmount))
	return nil
}

func tokenUiAmountToAmount(execCtx *ExecutionCtx, uiAmount string) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(1)
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
	err = checkTokenProgramAccount(mintAcct.Owner)
	if err != nil {
		return err
	}

	mintState, err := unpackMintState(mintAcct.Data)
	if err != nil {
		return TokenErrInvalidMint
	}

	var amount uint64
	interestPayload, err := mintState.Exts.Extension(ExtensionTypeInterestBearingConfig)
	if err != nil {
		return err
	}
	if interestPayload != nil {
		var interestConfig InterestBearingConfig
		err = unmarshalExtension(interestPayload, &interestConfig)
		if err != nil {
			return err
		}
		clock := ReadClockSysvar(&execCtx.Accounts)
		amount, err = interestConfig.TryUiAmountIntoAmount(uiAmount, mintState.Mint.Decimals, clock.UnixTimestamp)
		if err != nil {
			return err
		}
	} else {
		amount, err = tryUiAmountIntoAmount(uiAmount, mintState.Mint.Decimals)
		if err != nil {
			return err
		}
	}

	var returnData [8]byte
	binary.LittleEndian.PutUint64(returnData[:], amount)
	txCtx.SetReturnData(TokenProgramAddr, returnData[:])
	return nil
}

func tokenCreateNativeMint(execCtx *ExecutionCtx) error {
	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}
	err = instrCtx.CheckNumOfInstructionAccounts(3)
	if err != nil {
		return err
	}

	payerKey, err := extractAddress(txCtx, instrCtx, 0)
	if err != nil {
		return err
	}
	nativeMintKey, err := extractAddress(txCtx, instrCtx, 1)
	if err != nil {
		return err
	}
	if nativeMintKey != NativeMintAddr {
		return TokenErrInvalidMint
	}

	nativeMintAcct, err := instrCtx.BorrowInstructionAccount(txCtx, 1)
	if err != nil {
		return err
	}
	nativeMintLamports := nativeMintAcct.Lamports()
	nativeMintAcct.Drop()

	rent := ReadRentSysvar(&execCtx.Accounts)
	newMinimumBalance := rent.MinimumBalance(TokenMintLen)
	lamportsDiff := safemath.SaturatingSubU64(newMinimumBalance, nativeMintLamports)

	err = execCtx.NativeInvoke(*newTransferInstruction(payerKey, NativeMintAddr, lamportsDiff), nil)
	if err != nil {
		return err
	}

	// the native mint signs its own allocation through program seeds
	programSigners := []solana.PublicKey{NativeMintAddr}
	err = execCtx.NativeInvoke(*newAllocateInstruction(NativeMintAddr, TokenMintLen), programSigners)
	if err != nil {
		return err
	}
	err = execCtx.NativeInvoke(*newAssignInstruction(NativeMintAddr, TokenProgramAddr), programSigners)
	if err != nil {
		return err
	}

	nativeMintAcct, err = instrCtx.BorrowInstructionAccount(txCtx, 1)
	if err != nil {
		return err
	}
	defer nativeMintAcct.Drop()

	data, err := nativeMintAcct.DataMut()
	if err != nil {
		return err
	}
	nativeMint := TokenMint{Decimals: NativeMintDecimals, IsInitialized: true}
	return nativeMint.Pack(data)
}

func tokenInitializeNonTransferableMint(execCtx *ExecutionCtx) error {
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

	_, err = mintState.Exts.InitExtension(ExtensionTypeNonTransferable, true)
	return err
}

func TokenProgramExecute(execCtx *ExecutionCtx) error {
	if execCtx.ComputeMeter.Consume(CUTokenProgramDefaultComputeUnits) {
		return ErrComputationalBudgetExceeded
	}

	txCtx := execCtx.TransactionContext
	instrCtx, err := txCtx.CurrentInstructionCtx()
	if err != nil {
		return err
	}

	decoder := bin.NewBinDecoder(instrCtx.Data)

	instructionType, err := decoder.ReadByte()
	if err != nil {
		return TokenErrInvalidInstruction
	}

	switch instructionType {

	case TokenInstrTypeInitializeMint:
		{
			klog.Infof("Instruction: InitializeMint")
			var initializeMint TokenInstrInitializeMint
			err = initializeMint.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenInitializeMint(execCtx, initializeMint.Decimals, initializeMint.MintAuthority, initializeMint.FreezeAuthority, true)
		}

	case TokenInstrTypeInitializeMint2:
		{
			klog.Infof("Instruction: InitializeMint2")
			var initializeMint TokenInstrInitializeMint
			err = initializeMint.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenInitializeMint(execCtx, initializeMint.Decimals, initializeMint.MintAuthority, initializeMint.FreezeAuthority, false)
		}

	case TokenInstrTypeInitializeAccount:
		{
			klog.Infof("Instruction: InitializeAccount")
			err = instrCtx.CheckNumOfInstructionAccounts(4)
			if err != nil {
				return err
			}
			return tokenInitializeAccount(execCtx, nil, true)
		}

	case TokenInstrTypeInitializeAccount2:
		{
			klog.Infof("Instruction: InitializeAccount2")
			var initializeAccount TokenInstrInitializeAccountOwner
			err = initializeAccount.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenInitializeAccount(execCtx, &initializeAccount.Owner, true)
		}

	case TokenInstrTypeInitializeAccount3:
		{
			klog.Infof("Instruction: InitializeAccount3")
			var initializeAccount TokenInstrInitializeAccountOwner
			err = initializeAccount.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenInitializeAccount(execCtx, &initializeAccount.Owner, false)
		}

	case TokenInstrTypeInitializeMultisig:
		{
			klog.Infof("Instruction: InitializeMultisig")
			var initializeMultisig TokenInstrInitializeMultisig
			err = initializeMultisig.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenInitializeMultisig(execCtx, initializeMultisig.M, true)
		}

	case TokenInstrTypeInitializeMultisig2:
		{
			klog.Infof("Instruction: InitializeMultisig2")
			var initializeMultisig TokenInstrInitializeMultisig
			err = initializeMultisig.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenInitializeMultisig(execCtx, initializeMultisig.M, false)
		}

	case TokenInstrTypeTransfer:
		{
			klog.Infof("Instruction: Transfer")
			var transfer TokenInstrAmount
			err = transfer.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenTransfer(execCtx, transfer.Amount, nil, nil)
		}

	case TokenInstrTypeTransferChecked:
		{
			klog.Infof("Instruction: TransferChecked")
			var transfer TokenInstrAmountDecimals
			err = transfer.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenTransfer(execCtx, transfer.Amount, &transfer.Decimals, nil)
		}

	case TokenInstrTypeApprove:
		{
			klog.Infof("Instruction: Approve")
			var approve TokenInstrAmount
			err = approve.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenApprove(execCtx, approve.Amount, nil)
		}

	case TokenInstrTypeApproveChecked:
		{
			klog.Infof("Instruction: ApproveChecked")
			var approve TokenInstrAmountDecimals
			err = approve.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenApprove(execCtx, approve.Amount, &approve.Decimals)
		}

	case TokenInstrTypeRevoke:
		{
			klog.Infof("Instruction: Revoke")
			return tokenRevoke(execCtx)
		}

	case TokenInstrTypeSetAuthority:
		{
			klog.Infof("Instruction: SetAuthority")
			var setAuthority TokenInstrSetAuthority
			err = setAuthority.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenSetAuthority(execCtx, setAuthority.AuthorityType, setAuthority.NewAuthority)
		}

	case TokenInstrTypeMintTo:
		{
			klog.Infof("Instruction: MintTo")
			var mintTo TokenInstrAmount
			err = mintTo.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenMintTo(execCtx, mintTo.Amount, nil)
		}

	case TokenInstrTypeMintToChecked:
		{
			klog.Infof("Instruction: MintToChecked")
			var mintTo TokenInstrAmountDecimals
			err = mintTo.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenMintTo(execCtx, mintTo.Amount, &mintTo.Decimals)
		}

	case TokenInstrTypeBurn:
		{
			klog.Infof("Instruction: Burn")
			var burn TokenInstrAmount
			err = burn.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenBurn(execCtx, burn.Amount, nil)
		}

	case TokenInstrTypeBurnChecked:
		{
			klog.Infof("Instruction: BurnChecked")
			var burn TokenInstrAmountDecimals
			err = burn.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenBurn(execCtx, burn.Amount, &burn.Decimals)
		}

	case TokenInstrTypeCloseAccount:
		{
			klog.Infof("Instruction: CloseAccount")
			return tokenCloseAccount(execCtx)
		}

	case TokenInstrTypeFreezeAccount:
		{
			klog.Infof("Instruction: FreezeAccount")
			return tokenToggleFreezeAccount(execCtx, true)
		}

	case TokenInstrTypeThawAccount:
		{
			klog.Infof("Instruction: ThawAccount")
			return tokenToggleFreezeAccount(execCtx, false)
		}

	case TokenInstrTypeSyncNative:
		{
			klog.Infof("Instruction: SyncNative")
			return tokenSyncNative(execCtx)
		}

	case TokenInstrTypeGetAccountDataSize:
		{
			klog.Infof("Instruction: GetAccountDataSize")
			var getAccountDataSize TokenInstrExtensionTypeList
			err = getAccountDataSize.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenGetAccountDataSize(execCtx, getAccountDataSize.ExtensionTypes)
		}

	case TokenInstrTypeInitializeImmutableOwner:
		{
			klog.Infof("Instruction: InitializeImmutableOwner")
			return tokenInitializeImmutableOwner(execCtx)
		}

	case TokenInstrTypeAmountToUiAmount:
		{
			klog.Infof("Instruction: AmountToUiAmount")
			var amountToUiAmount TokenInstrAmount
			err = amountToUiAmount.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenAmountToUiAmount(execCtx, amountToUiAmount.Amount)
		}

	case TokenInstrTypeUiAmountToAmount:
		{
			klog.Infof("Instruction: UiAmountToAmount")
			var uiAmountToAmount TokenInstrUiAmountToAmount
			err = uiAmountToAmount.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenUiAmountToAmount(execCtx, uiAmountToAmount.UiAmount)
		}

	case TokenInstrTypeInitializeMintCloseAuthority:
		{
			klog.Infof("Instruction: InitializeMintCloseAuthority")
			var initializeCloseAuthority TokenInstrInitializeMintCloseAuthority
			err = initializeCloseAuthority.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenInitializeMintCloseAuthority(execCtx, initializeCloseAuthority.CloseAuthority)
		}

	case TokenInstrTypeTransferFeeExtension:
		{
			return processTransferFeeInstruction(execCtx, decoder)
		}

	case TokenInstrTypeConfidentialTransferExtension:
		{
			// gated until zero-knowledge proof verification lands
			return ErrInvalidArgument
		}

	case TokenInstrTypeDefaultAccountStateExtension:
		{
			return processDefaultAccountStateInstruction(execCtx, decoder)
		}

	case TokenInstrTypeReallocate:
		{
			klog.Infof("Instruction: Reallocate")
			var reallocate TokenInstrExtensionTypeList
			err = reallocate.UnmarshalWithDecoder(decoder)
			if err != nil {
				return err
			}
			return tokenReallocate(execCtx, reallocate.ExtensionTypes)
		}

	case TokenInstrTypeMemoTransferExtension:
		{
			return processMemoTransferInstruction(execCtx, decoder)
		}

	case TokenInstrTypeCreateNativeMint:
		{
			klog.Infof("Instruction: CreateNativeMint")
			return tokenCreateNativeMint(execCtx)
		}

	case TokenInstrTypeInitializeNonTransferableMint:
		{
			klog.Infof("Instruction: InitializeNonTransferableMint")
			return tokenInitializeNonTransferableMint(execCtx)
		}

	case TokenInstrTypeInterestBearingMintExtension:
		{
			return processInterestBearingMintInstruction(execCtx, decoder)
		}

	default:
		return TokenErrInvalidInstruction
	}
}
