package sealevel

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/solwasm/tokenrt/pkg/accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extendedLen(t *testing.T, accountType byte, extensionTypes []uint16) uint64 {
	dataLen, err := getAccountLenForExtensions(accountType, extensionTypes)
	require.NoError(t, err)
	return dataLen
}

func tokenAcctStateFromTx(t *testing.T, execCtx *ExecutionCtx, idx uint64) *TokenAccountState {
	acct, err := execCtx.TransactionContext.AccountAtIndex(idx)
	require.NoError(t, err)
	acctState, err := unpackTokenAccountState(acct.Data)
	require.NoError(t, err)
	return acctState
}

func TestTokenExt_DefaultAccountState(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	firstAcct := solana.NewWallet().PublicKey()
	secondAcct := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	freezeAuthority := solana.NewWallet().PublicKey()
	mintAuthority := solana.NewWallet().PublicKey()

	mintLen := extendedLen(t, TokenAccountTypeMint, []uint16{ExtensionTypeDefaultAccountState})
	accts := []accounts.Account{
		tokenProgramAccount(),
		{Key: mint, Lamports: rentExemptBalance(mintLen), Data: make([]byte, mintLen), Owner: TokenProgramAddr},
		{Key: firstAcct, Lamports: rentExemptBalance(TokenAccountLen), Data: make([]byte, TokenAccountLen), Owner: TokenProgramAddr},
		{Key: secondAcct, Lamports: rentExemptBalance(TokenAccountLen), Data: make([]byte, TokenAccountLen), Owner: TokenProgramAddr},
		{Key: owner, Lamports: 1, Owner: SystemProgramAddr},
		{Key: freezeAuthority, Lamports: 1, Owner: SystemProgramAddr},
		{Key: mintAuthority, Lamports: 1, Owner: SystemProgramAddr},
	}
	execCtx := newTestExecCtx(accts)

	err := runTokenInstr(t, execCtx,
		[]byte{TokenInstrTypeDefaultAccountStateExtension, DefaultAccountStateInstrTypeInitialize, TokenAccountStateFrozen},
		[]AccountMeta{{Pubkey: mint, IsWritable: true}})
	require.NoError(t, err)

	err = runTokenInstr(t, execCtx, initializeMint2Data(t, 6, mintAuthority, &freezeAuthority),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}})
	require.NoError(t, err)

	// new accounts start out frozen
	err = runTokenInstr(t, execCtx, initializeAccount3Data(owner),
		[]AccountMeta{{Pubkey: firstAcct, IsWritable: true}, {Pubkey: mint}})
	require.NoError(t, err)
	assert.True(t, unpackTokenAcctFromTx(t, execCtx, 2).IsFrozen())

	err = runTokenInstr(t, execCtx, amountInstrData(t, TokenInstrTypeMintTo, 100),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}, {Pubkey: firstAcct, IsWritable: true}, {Pubkey: mintAuthority, IsSigner: true}})
	assert.Equal(t, TokenErrAccountFrozen, err)

	err = runTokenInstr(t, execCtx, []byte{TokenInstrTypeThawAccount},
		[]AccountMeta{{Pubkey: firstAcct, IsWritable: true}, {Pubkey: mint}, {Pubkey: freezeAuthority, IsSigner: true}})
	require.NoError(t, err)

	err = runTokenInstr(t, execCtx, amountInstrData(t, TokenInstrTypeMintTo, 100),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}, {Pubkey: firstAcct, IsWritable: true}, {Pubkey: mintAuthority, IsSigner: true}})
	require.NoError(t, err)

	// only the freeze authority may change the default
	err = runTokenInstr(t, execCtx,
		[]byte{TokenInstrTypeDefaultAccountStateExtension, DefaultAccountStateInstrTypeUpdate, TokenAccountStateInitialized},
		[]AccountMeta{{Pubkey: mint, IsWritable: true}, {Pubkey: owner, IsSigner: true}})
	assert.Equal(t, TokenErrOwnerMismatch, err)

	err = runTokenInstr(t, execCtx,
		[]byte{TokenInstrTypeDefaultAccountStateExtension, DefaultAccountStateInstrTypeUpdate, TokenAccountStateInitialized},
		[]AccountMeta{{Pubkey: mint, IsWritable: true}, {Pubkey: freezeAuthority, IsSigner: true}})
	require.NoError(t, err)

	err = runTokenInstr(t, execCtx, initializeAccount3Data(owner),
		[]AccountMeta{{Pubkey: secondAcct, IsWritable: true}, {Pubkey: mint}})
	require.NoError(t, err)
	assert.False(t, unpackTokenAcctFromTx(t, execCtx, 3).IsFrozen())
}

func TestTokenExt_DefaultFrozenRequiresFreezeAuthority(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	mintAuthority := solana.NewWallet().PublicKey()

	mintLen := extendedLen(t, TokenAccountTypeMint, []uint16{ExtensionTypeDefaultAccountState})
	accts := []accounts.Account{
		tokenProgramAccount(),
		{Key: mint, Lamports: rentExemptBalance(mintLen), Data: make([]byte, mintLen), Owner: TokenProgramAddr},
	}
	execCtx := newTestExecCtx(accts)

	err := runTokenInstr(t, execCtx,
		[]byte{TokenInstrTypeDefaultAccountStateExtension, DefaultAccountStateInstrTypeInitialize, TokenAccountStateFrozen},
		[]AccountMeta{{Pubkey: mint, IsWritable: true}})
	require.NoError(t, err)

	err = runTokenInstr(t, execCtx, initializeMint2Data(t, 6, mintAuthority, nil),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}})
	assert.Equal(t, TokenErrMintCannotFreeze, err)
}

func TestTokenExt_ImmutableOwner(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	tokenAcct := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	mintAuthority := solana.NewWallet().PublicKey()

	acctLen := extendedLen(t, TokenAccountTypeAccount, []uint16{ExtensionTypeImmutableOwner})
	accts := []accounts.Account{
		tokenProgramAccount(),
		{Key: mint, Lamports: rentExemptBalance(TokenMintLen), Data: make([]byte, TokenMintLen), Owner: TokenProgramAddr},
		{Key: tokenAcct, Lamports: rentExemptBalance(acctLen), Data: make([]byte, acctLen), Owner: TokenProgramAddr},
		{Key: owner, Lamports: 1, Owner: SystemProgramAddr},
		{Key: mintAuthority, Lamports: 1, Owner: SystemProgramAddr},
	}
	execCtx := newTestExecCtx(accts)

	err := runTokenInstr(t, execCtx, initializeMint2Data(t, 6, mintAuthority, nil),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}})
	require.NoError(t, err)

	// the immutable owner marker goes in before the account is initialized
	err = runTokenInstr(t, execCtx, []byte{TokenInstrTypeInitializeImmutableOwner},
		[]AccountMeta{{Pubkey: tokenAcct, IsWritable: true}})
	require.NoError(t, err)

	err = runTokenInstr(t, execCtx, initializeAccount3Data(owner),
		[]AccountMeta{{Pubkey: tokenAcct, IsWritable: true}, {Pubkey: mint}})
	require.NoError(t, err)

	newOwner := solana.NewWallet().PublicKey()
	setAuthority := TokenInstrSetAuthority{AuthorityType: TokenAuthorityTypeAccountOwner, NewAuthority: &newOwner}
	err = runTokenInstr(t, execCtx, mustMarshalInstr(t, &setAuthority),
		[]AccountMeta{{Pubkey: tokenAcct, IsWritable: true}, {Pubkey: owner, IsSigner: true}})
	assert.Equal(t, TokenErrImmutableOwner, err)
}

func TestTokenExt_NonTransferable(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	extAcct := solana.NewWallet().PublicKey()
	extAcct2 := solana.NewWallet().PublicKey()
	plainAcct := solana.NewWallet().PublicKey()
	rawAcct := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	mintAuthority := solana.NewWallet().PublicKey()

	mintLen := extendedLen(t, TokenAccountTypeMint, []uint16{ExtensionTypeNonTransferable})
	acctLen := extendedLen(t, TokenAccountTypeAccount, []uint16{ExtensionTypeImmutableOwner})

	// a token account initialized without the immutable owner marker, as legacy
	// holders of other mints would look
	rawAcctData := make([]byte, TokenAccountLen)
	rawState := TokenAccount{Mint: mint, Owner: owner, State: TokenAccountStateInitialized}
	require.NoError(t, rawState.Pack(rawAcctData))

	accts := []accounts.Account{
		tokenProgramAccount(),
		{Key: mint, Lamports: rentExemptBalance(mintLen), Data: make([]byte, mintLen), Owner: TokenProgramAddr},
		{Key: extAcct, Lamports: rentExemptBalance(acctLen), Data: make([]byte, acctLen), Owner: TokenProgramAddr},
		{Key: extAcct2, Lamports: rentExemptBalance(acctLen), Data: make([]byte, acctLen), Owner: TokenProgramAddr},
		{Key: plainAcct, Lamports: rentExemptBalance(TokenAccountLen), Data: make([]byte, TokenAccountLen), Owner: TokenProgramAddr},
		{Key: rawAcct, Lamports: rentExemptBalance(TokenAccountLen), Data: rawAcctData, Owner: TokenProgramAddr},
		{Key: owner, Lamports: 1, Owner: SystemProgramAddr},
		{Key: mintAuthority, Lamports: 1, Owner: SystemProgramAddr},
	}
	execCtx := newTestExecCtx(accts)

	err := runTokenInstr(t, execCtx, []byte{TokenInstrTypeInitializeNonTransferableMint},
		[]AccountMeta{{Pubkey: mint, IsWritable: true}})
	require.NoError(t, err)

	err = runTokenInstr(t, execCtx, initializeMint2Data(t, 6, mintAuthority, nil),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}})
	require.NoError(t, err)

	// a base-size buffer cannot hold the required immutable owner marker
	err = runTokenInstr(t, execCtx, initializeAccount3Data(owner),
		[]AccountMeta{{Pubkey: plainAcct, IsWritable: true}, {Pubkey: mint}})
	assert.Equal(t, ErrInvalidAccountData, err)

	err = runTokenInstr(t, execCtx, initializeAccount3Data(owner),
		[]AccountMeta{{Pubkey: extAcct, IsWritable: true}, {Pubkey: mint}})
	require.NoError(t, err)
	assert.True(t, tokenAcctStateFromTx(t, execCtx, 2).Exts.HasExtension(ExtensionTypeImmutableOwner))

	err = runTokenInstr(t, execCtx, initializeAccount3Data(owner),
		[]AccountMeta{{Pubkey: extAcct2, IsWritable: true}, {Pubkey: mint}})
	require.NoError(t, err)

	err = runTokenInstr(t, execCtx, amountInstrData(t, TokenInstrTypeMintTo, 100),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}, {Pubkey: rawAcct, IsWritable: true}, {Pubkey: mintAuthority, IsSigner: true}})
	assert.Equal(t, TokenErrNonTransferableNeedsImmutableOwnership, err)

	err = runTokenInstr(t, execCtx, amountInstrData(t, TokenInstrTypeMintTo, 100),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}, {Pubkey: extAcct, IsWritable: true}, {Pubkey: mintAuthority, IsSigner: true}})
	require.NoError(t, err)

	err = runTokenInstr(t, execCtx, amountDecimalsInstrData(t, TokenInstrTypeTransferChecked, 50, 6),
		[]AccountMeta{{Pubkey: extAcct, IsWritable: true}, {Pubkey: mint}, {Pubkey: extAcct2, IsWritable: true}, {Pubkey: owner, IsSigner: true}})
	assert.Equal(t, TokenErrNonTransferable, err)
}

func TestTokenExt_MemoTransfer(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	srcAcct := solana.NewWallet().PublicKey()
	dstAcct := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	mintAuthority := solana.NewWallet().PublicKey()

	dstLen := extendedLen(t, TokenAccountTypeAccount, []uint16{ExtensionTypeMemoTransfer})
	accts := []accounts.Account{
		tokenProgramAccount(),
		{Key: mint, Lamports: rentExemptBalance(TokenMintLen), Data: make([]byte, TokenMintLen), Owner: TokenProgramAddr},
		{Key: srcAcct, Lamports: rentExemptBalance(TokenAccountLen), Data: make([]byte, TokenAccountLen), Owner: TokenProgramAddr},
		{Key: dstAcct, Lamports: rentExemptBalance(dstLen), Data: make([]byte, dstLen), Owner: TokenProgramAddr},
		{Key: owner, Lamports: 1, Owner: SystemProgramAddr},
		{Key: mintAuthority, Lamports: 1, Owner: SystemProgramAddr},
	}
	execCtx := newTestExecCtx(accts)

	err := runTokenInstr(t, execCtx, initializeMint2Data(t, 6, mintAuthority, nil),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}})
	require.NoError(t, err)
	err = runTokenInstr(t, execCtx, initializeAccount3Data(owner),
		[]AccountMeta{{Pubkey: srcAcct, IsWritable: true}, {Pubkey: mint}})
	require.NoError(t, err)
	err = runTokenInstr(t, execCtx, initializeAccount3Data(owner),
		[]AccountMeta{{Pubkey: dstAcct, IsWritable: true}, {Pubkey: mint}})
	require.NoError(t, err)
	err = runTokenInstr(t, execCtx, amountInstrData(t, TokenInstrTypeMintTo, 1000),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}, {Pubkey: srcAcct, IsWritable: true}, {Pubkey: mintAuthority, IsSigner: true}})
	require.NoError(t, err)

	err = runTokenInstr(t, execCtx, []byte{TokenInstrTypeMemoTransferExtension, MemoTransferInstrTypeEnable},
		[]AccountMeta{{Pubkey: dstAcct, IsWritable: true}, {Pubkey: owner, IsSigner: true}})
	require.NoError(t, err)

	transferMetas := []AccountMeta{{Pubkey: srcAcct, IsWritable: true}, {Pubkey: dstAcct, IsWritable: true}, {Pubkey: owner, IsSigner: true}}
	transferData := amountInstrData(t, TokenInstrTypeTransfer, 100)

	// the transfer is the first instruction of its transaction, so there is no
	// preceding memo
	transferInstr := Instruction{ProgramId: TokenProgramAddr, Data: transferData}
	require.NoError(t, WriteInstructionsSysvar(&execCtx.Accounts, []Instruction{transferInstr}))

	err = runTokenInstr(t, execCtx, transferData, transferMetas)
	assert.Equal(t, TokenErrNoMemo, err)

	memoInstr := Instruction{ProgramId: MemoProgramV3Addr, Data: []byte("rent for august")}
	require.NoError(t, WriteInstructionsSysvar(&execCtx.Accounts, []Instruction{memoInstr, transferInstr}))
	require.NoError(t, SetCurrentInstructionIndex(&execCtx.Accounts, 1))

	err = runTokenInstr(t, execCtx, transferData, transferMetas)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), unpackTokenAcctFromTx(t, execCtx, 3).Amount)

	// once disabled, no memo is demanded
	err = runTokenInstr(t, execCtx, []byte{TokenInstrTypeMemoTransferExtension, MemoTransferInstrTypeDisable},
		[]AccountMeta{{Pubkey: dstAcct, IsWritable: true}, {Pubkey: owner, IsSigner: true}})
	require.NoError(t, err)
	require.NoError(t, SetCurrentInstructionIndex(&execCtx.Accounts, 0))

	err = runTokenInstr(t, execCtx, transferData, transferMetas)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), unpackTokenAcctFromTx(t, execCtx, 3).Amount)
}

func TestTokenExt_MintCloseAuthority(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	tokenAcct := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	mintAuthority := solana.NewWallet().PublicKey()
	closeAuthority := solana.NewWallet().PublicKey()
	dest := solana.NewWallet().PublicKey()

	mintLen := extendedLen(t, TokenAccountTypeMint, []uint16{ExtensionTypeMintCloseAuthority})
	accts := []accounts.Account{
		tokenProgramAccount(),
		{Key: mint, Lamports: rentExemptBalance(mintLen), Data: make([]byte, mintLen), Owner: TokenProgramAddr},
		{Key: tokenAcct, Lamports: rentExemptBalance(TokenAccountLen), Data: make([]byte, TokenAccountLen), Owner: TokenProgramAddr},
		{Key: owner, Lamports: 1, Owner: SystemProgramAddr},
		{Key: mintAuthority, Lamports: 1, Owner: SystemProgramAddr},
		{Key: closeAuthority, Lamports: 1, Owner: SystemProgramAddr},
		{Key: dest, Lamports: 1, Owner: SystemProgramAddr},
	}
	execCtx := newTestExecCtx(accts)

	initCloseAuth := TokenInstrInitializeMintCloseAuthority{CloseAuthority: &closeAuthority}
	err := runTokenInstr(t, execCtx, mustMarshalInstr(t, &initCloseAuth),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}})
	require.NoError(t, err)

	err = runTokenInstr(t, execCtx, initializeMint2Data(t, 0, mintAuthority, nil),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}})
	require.NoError(t, err)

	err = runTokenInstr(t, execCtx, initializeAccount3Data(owner),
		[]AccountMeta{{Pubkey: tokenAcct, IsWritable: true}, {Pubkey: mint}})
	require.NoError(t, err)
	err = runTokenInstr(t, execCtx, amountInstrData(t, TokenInstrTypeMintTo, 10),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}, {Pubkey: tokenAcct, IsWritable: true}, {Pubkey: mintAuthority, IsSigner: true}})
	require.NoError(t, err)

	closeMetas := []AccountMeta{{Pubkey: mint, IsWritable: true}, {Pubkey: dest, IsWritable: true}, {Pubkey: closeAuthority, IsSigner: true}}

	err = runTokenInstr(t, execCtx, []byte{TokenInstrTypeCloseAccount}, closeMetas)
	assert.Equal(t, TokenErrMintHasSupply, err)

	err = runTokenInstr(t, execCtx, amountInstrData(t, TokenInstrTypeBurn, 10),
		[]AccountMeta{{Pubkey: tokenAcct, IsWritable: true}, {Pubkey: mint, IsWritable: true}, {Pubkey: owner, IsSigner: true}})
	require.NoError(t, err)

	err = runTokenInstr(t, execCtx, []byte{TokenInstrTypeCloseAccount},
		[]AccountMeta{{Pubkey: mint, IsWritable: true}, {Pubkey: dest, IsWritable: true}, {Pubkey: owner, IsSigner: true}})
	assert.Equal(t, TokenErrOwnerMismatch, err)

	err = runTokenInstr(t, execCtx, []byte{TokenInstrTypeCloseAccount}, closeMetas)
	require.NoError(t, err)

	mintAcct, err := execCtx.TransactionContext.AccountAtIndex(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), mintAcct.Lamports)
	assert.Equal(t, make([]byte, mintLen), mintAcct.Data)

	destAcct, err := execCtx.TransactionContext.AccountAtIndex(6)
	require.NoError(t, err)
	assert.Equal(t, uint64(1)+rentExemptBalance(mintLen), destAcct.Lamports)
}

func TestTokenExt_InterestBearing(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	rateAuthority := solana.NewWallet().PublicKey()
	mintAuthority := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()

	mintLen := extendedLen(t, TokenAccountTypeMint, []uint16{ExtensionTypeInterestBearingConfig})
	accts := []accounts.Account{
		tokenProgramAccount(),
		{Key: mint, Lamports: rentExemptBalance(mintLen), Data: make([]byte, mintLen), Owner: TokenProgramAddr},
		{Key: rateAuthority, Lamports: 1, Owner: SystemProgramAddr},
		{Key: mintAuthority, Lamports: 1, Owner: SystemProgramAddr},
		{Key: other, Lamports: 1, Owner: SystemProgramAddr},
	}
	execCtx := newTestExecCtx(accts)

	initInterest := TokenInstrInitializeInterestBearingMint{RateAuthority: rateAuthority, Rate: 500}
	err := runTokenInstr(t, execCtx, mustMarshalInstr(t, &initInterest),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}})
	require.NoError(t, err)

	err = runTokenInstr(t, execCtx, initializeMint2Data(t, 0, mintAuthority, nil),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}})
	require.NoError(t, err)

	interestConfigFromTx := func() *InterestBearingConfig {
		acct, err := execCtx.TransactionContext.AccountAtIndex(1)
		require.NoError(t, err)
		mintState, err := unpackMintState(acct.Data)
		require.NoError(t, err)
		payload, err := mintState.Exts.Extension(ExtensionTypeInterestBearingConfig)
		require.NoError(t, err)
		require.NotNil(t, payload)
		var config InterestBearingConfig
		require.NoError(t, unmarshalExtension(payload, &config))
		return &config
	}

	config := interestConfigFromTx()
	assert.Equal(t, rateAuthority, config.RateAuthority)
	assert.Equal(t, testClock.UnixTimestamp, config.InitializationTimestamp)
	assert.Equal(t, testClock.UnixTimestamp, config.LastUpdateTimestamp)
	assert.Equal(t, int16(500), config.PreUpdateAverageRate)
	assert.Equal(t, int16(500), config.CurrentRate)

	// no time has passed since initialization, so no interest has accrued
	err = runTokenInstr(t, execCtx, amountInstrData(t, TokenInstrTypeAmountToUiAmount, 12345),
		[]AccountMeta{{Pubkey: mint}})
	require.NoError(t, err)
	programId, returnData := execCtx.TransactionContext.ReturnData()
	assert.Equal(t, TokenProgramAddr, programId)
	assert.Equal(t, "12345", string(returnData))

	uiData := append([]byte{TokenInstrTypeUiAmountToAmount}, []byte("12345")...)
	err = runTokenInstr(t, execCtx, uiData, []AccountMeta{{Pubkey: mint}})
	require.NoError(t, err)
	_, returnData = execCtx.TransactionContext.ReturnData()
	assert.Equal(t, uint64(12345), binary.LittleEndian.Uint64(returnData))

	updateData := []byte{TokenInstrTypeInterestBearingMintExtension, InterestBearingMintInstrTypeUpdateRate, 0xe8, 0x03}
	err = runTokenInstr(t, execCtx, updateData,
		[]AccountMeta{{Pubkey: mint, IsWritable: true}, {Pubkey: other, IsSigner: true}})
	assert.Equal(t, TokenErrOwnerMismatch, err)

	err = runTokenInstr(t, execCtx, updateData,
		[]AccountMeta{{Pubkey: mint, IsWritable: true}, {Pubkey: rateAuthority, IsSigner: true}})
	require.NoError(t, err)

	config = interestConfigFromTx()
	assert.Equal(t, int16(1000), config.CurrentRate)
	assert.Equal(t, int16(500), config.PreUpdateAverageRate)
	assert.Equal(t, testClock.UnixTimestamp, config.LastUpdateTimestamp)
}

func TestTokenExt_GetAccountDataSize(t *testing.T) {
	f := newFeeTestFixture(t)

	instrData := []byte{TokenInstrTypeGetAccountDataSize}
	instrData = binary.LittleEndian.AppendUint16(instrData, ExtensionTypeImmutableOwner)
	instrData = binary.LittleEndian.AppendUint16(instrData, ExtensionTypeMemoTransfer)

	err := runTokenInstr(t, f.execCtx, instrData, []AccountMeta{{Pubkey: f.mint}})
	require.NoError(t, err)

	expected := extendedLen(t, TokenAccountTypeAccount,
		[]uint16{ExtensionTypeTransferFeeAmount, ExtensionTypeImmutableOwner, ExtensionTypeMemoTransfer})
	_, returnData := f.execCtx.TransactionContext.ReturnData()
	assert.Equal(t, expected, binary.LittleEndian.Uint64(returnData))
}

func TestTokenExt_GetAccountDataSize_PlainMint(t *testing.T) {
	f := newTokenTestFixture(t)

	err := runTokenInstr(t, f.execCtx, []byte{TokenInstrTypeGetAccountDataSize},
		[]AccountMeta{{Pubkey: f.mint}})
	require.NoError(t, err)

	_, returnData := f.execCtx.TransactionContext.ReturnData()
	assert.Equal(t, uint64(TokenAccountLen), binary.LittleEndian.Uint64(returnData))
}

func TestTokenExt_Reallocate(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	tokenAcct := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	mintAuthority := solana.NewWallet().PublicKey()

	accts := []accounts.Account{
		tokenProgramAccount(),
		{Key: mint, Lamports: rentExemptBalance(TokenMintLen), Data: make([]byte, TokenMintLen), Owner: TokenProgramAddr},
		{Key: tokenAcct, Lamports: rentExemptBalance(TokenAccountLen), Data: make([]byte, TokenAccountLen), Owner: TokenProgramAddr},
		{Key: owner, Lamports: 1, Owner: SystemProgramAddr},
		{Key: payer, Lamports: 1000000, Owner: SystemProgramAddr},
		{Key: mintAuthority, Lamports: 1, Owner: SystemProgramAddr},
		systemProgramAccount(),
	}
	execCtx := newTestExecCtx(accts)

	err := runTokenInstr(t, execCtx, initializeMint2Data(t, 6, mintAuthority, nil),
		[]AccountMeta{{Pubkey: mint, IsWritable: true}})
	require.NoError(t, err)
	err = runTokenInstr(t, execCtx, initializeAccount3Data(owner),
		[]AccountMeta{{Pubkey: tokenAcct, IsWritable: true}, {Pubkey: mint}})
	require.NoError(t, err)

	reallocData := []byte{TokenInstrTypeReallocate}
	reallocData = binary.LittleEndian.AppendUint16(reallocData, ExtensionTypeImmutableOwner)
	reallocMetas := []AccountMeta{
		{Pubkey: tokenAcct, IsWritable: true},
		{Pubkey: payer, IsSigner: true, IsWritable: true},
		{Pubkey: SystemProgramAddr},
		{Pubkey: owner, IsSigner: true},
	}

	// mint-side extensions have no place on a token account
	badData := []byte{TokenInstrTypeReallocate}
	badData = binary.LittleEndian.AppendUint16(badData, ExtensionTypeTransferFeeConfig)
	err = runTokenInstr(t, execCtx, badData, reallocMetas)
	assert.Equal(t, TokenErrExtensionTypeMismatch, err)

	err = runTokenInstr(t, execCtx, reallocData, reallocMetas)
	require.NoError(t, err)

	newLen := extendedLen(t, TokenAccountTypeAccount, []uint16{ExtensionTypeImmutableOwner})
	acct, err := execCtx.TransactionContext.AccountAtIndex(2)
	require.NoError(t, err)
	assert.Equal(t, int(newLen), len(acct.Data))
	assert.Equal(t, byte(TokenAccountTypeAccount), acct.Data[TokenAccountLen])
	assert.Equal(t, rentExemptBalance(newLen), acct.Lamports)

	payerAcct, err := execCtx.TransactionContext.AccountAtIndex(4)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000000)-(rentExemptBalance(newLen)-rentExemptBalance(TokenAccountLen)), payerAcct.Lamports)

	// a second request for the same space is a no-op
	payerBefore := payerAcct.Lamports
	err = runTokenInstr(t, execCtx, reallocData, reallocMetas)
	require.NoError(t, err)
	acct, err = execCtx.TransactionContext.AccountAtIndex(2)
	require.NoError(t, err)
	assert.Equal(t, int(newLen), len(acct.Data))
	assert.Equal(t, payerBefore, payerAcct.Lamports)
}
