package sealevel

import (
	"github.com/gagliardetto/solana-go"
	"github.com/solwasm/tokenrt/pkg/base58"
)

var (
	NativeLoaderAddr  = base58.MustDecodeFromString("NativeLoader1111111111111111111111111111111")
	SystemProgramAddr = base58.MustDecodeFromString("11111111111111111111111111111111")
	SysvarOwnerAddr   = base58.MustDecodeFromString("Sysvar1111111111111111111111111111111111111")
	IncineratorAddr   = base58.MustDecodeFromString("1nc1nerator11111111111111111111111111111111")

	TokenProgramAddr       = base58.MustDecodeFromString("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	TokenLegacyProgramAddr = base58.MustDecodeFromString("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	NativeMintAddr         = base58.MustDecodeFromString("9pan9bMn5HatX4EJdBwg9VgCa7Uz5HL8N1m5D3NdXejP")

	MemoProgramV1Addr = base58.MustDecodeFromString("Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo")
	MemoProgramV3Addr = base58.MustDecodeFromString("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
)

// NativeMintDecimals is the decimals of the native wrapped mint.
const NativeMintDecimals = 9

func resolveNativeProgramById(programId solana.PublicKey) (func(execCtx *ExecutionCtx) error, error) {
	switch programId {
	case SystemProgramAddr:
		return SystemProgramExecute, nil
	case TokenProgramAddr:
		return TokenProgramExecute, nil
	}
	return nil, ErrUnsupportedProgramId
}
