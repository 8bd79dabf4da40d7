// Package decode pretty-prints raw token program instruction data.
package decode

import (
	"encoding/hex"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/solwasm/tokenrt/pkg/sealevel"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	Cmd = cobra.Command{
		Use:   "decode <instruction-data>",
		Short: "Decode token program instruction data",
		Args:  cobra.ExactArgs(1),
		Run:   run,
	}

	asHex bool
)

func init() {
	Cmd.Flags().BoolVar(&asHex, "hex", false, "treat the argument as hex instead of base58")
}

func run(c *cobra.Command, args []string) {
	var raw []byte
	var err error
	if asHex {
		raw, err = hex.DecodeString(args[0])
	} else {
		raw, err = base58.Decode(args[0])
	}
	if err != nil {
		klog.Exitf("bad instruction data: %v", err)
	}

	out, err := decodeInstruction(raw)
	if err != nil {
		klog.Exitf("malformed instruction: %v", err)
	}
	fmt.Println(out)
}

func fmtOptKey(key *solana.PublicKey) string {
	if key == nil {
		return "none"
	}
	return key.String()
}

func decodeInstruction(data []byte) (string, error) {
	decoder := bin.NewBinDecoder(data)
	instrType, err := decoder.ReadByte()
	if err != nil {
		return "", sealevel.TokenErrInvalidInstruction
	}

	switch instrType {
	case sealevel.TokenInstrTypeInitializeMint, sealevel.TokenInstrTypeInitializeMint2:
		var initMint sealevel.TokenInstrInitializeMint
		if err = initMint.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		name := "InitializeMint"
		if instrType == sealevel.TokenInstrTypeInitializeMint2 {
			name = "InitializeMint2"
		}
		return fmt.Sprintf("%s: decimals %d, mint authority %s, freeze authority %s",
			name, initMint.Decimals, initMint.MintAuthority, fmtOptKey(initMint.FreezeAuthority)), nil

	case sealevel.TokenInstrTypeInitializeAccount:
		return "InitializeAccount", nil

	case sealevel.TokenInstrTypeInitializeAccount2, sealevel.TokenInstrTypeInitializeAccount3:
		var initAcct sealevel.TokenInstrInitializeAccountOwner
		if err = initAcct.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		name := "InitializeAccount2"
		if instrType == sealevel.TokenInstrTypeInitializeAccount3 {
			name = "InitializeAccount3"
		}
		return fmt.Sprintf("%s: owner %s", name, initAcct.Owner), nil

	case sealevel.TokenInstrTypeInitializeMultisig, sealevel.TokenInstrTypeInitializeMultisig2:
		var initMultisig sealevel.TokenInstrInitializeMultisig
		if err = initMultisig.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		name := "InitializeMultisig"
		if instrType == sealevel.TokenInstrTypeInitializeMultisig2 {
			name = "InitializeMultisig2"
		}
		return fmt.Sprintf("%s: %d required signers", name, initMultisig.M), nil

	case sealevel.TokenInstrTypeTransfer, sealevel.TokenInstrTypeApprove,
		sealevel.TokenInstrTypeMintTo, sealevel.TokenInstrTypeBurn:
		var amount sealevel.TokenInstrAmount
		if err = amount.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		names := map[byte]string{
			sealevel.TokenInstrTypeTransfer: "Transfer",
			sealevel.TokenInstrTypeApprove:  "Approve",
			sealevel.TokenInstrTypeMintTo:   "MintTo",
			sealevel.TokenInstrTypeBurn:     "Burn",
		}
		return fmt.Sprintf("%s: amount %d", names[instrType], amount.Amount), nil

	case sealevel.TokenInstrTypeTransferChecked, sealevel.TokenInstrTypeApproveChecked,
		sealevel.TokenInstrTypeMintToChecked, sealevel.TokenInstrTypeBurnChecked:
		var amount sealevel.TokenInstrAmountDecimals
		if err = amount.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		names := map[byte]string{
			sealevel.TokenInstrTypeTransferChecked: "TransferChecked",
			sealevel.TokenInstrTypeApproveChecked:  "ApproveChecked",
			sealevel.TokenInstrTypeMintToChecked:   "MintToChecked",
			sealevel.TokenInstrTypeBurnChecked:     "BurnChecked",
		}
		return fmt.Sprintf("%s: amount %d, decimals %d", names[instrType], amount.Amount, amount.Decimals), nil

	case sealevel.TokenInstrTypeRevoke:
		return "Revoke", nil

	case sealevel.TokenInstrTypeSetAuthority:
		var setAuthority sealevel.TokenInstrSetAuthority
		if err = setAuthority.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		authorityTypes := []string{
			"MintTokens", "FreezeAccount", "AccountOwner", "CloseAccount",
			"TransferFeeConfig", "WithheldWithdraw", "CloseMint", "InterestRate",
		}
		return fmt.Sprintf("SetAuthority: %s to %s",
			authorityTypes[setAuthority.AuthorityType], fmtOptKey(setAuthority.NewAuthority)), nil

	case sealevel.TokenInstrTypeCloseAccount:
		return "CloseAccount", nil

	case sealevel.TokenInstrTypeFreezeAccount:
		return "FreezeAccount", nil

	case sealevel.TokenInstrTypeThawAccount:
		return "ThawAccount", nil

	case sealevel.TokenInstrTypeSyncNative:
		return "SyncNative", nil

	case sealevel.TokenInstrTypeGetAccountDataSize:
		var extList sealevel.TokenInstrExtensionTypeList
		if err = extList.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		return fmt.Sprintf("GetAccountDataSize: extensions %v", extList.ExtensionTypes), nil

	case sealevel.TokenInstrTypeInitializeImmutableOwner:
		return "InitializeImmutableOwner", nil

	case sealevel.TokenInstrTypeAmountToUiAmount:
		var amount sealevel.TokenInstrAmount
		if err = amount.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		return fmt.Sprintf("AmountToUiAmount: amount %d", amount.Amount), nil

	case sealevel.TokenInstrTypeUiAmountToAmount:
		var uiAmount sealevel.TokenInstrUiAmountToAmount
		if err = uiAmount.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		return fmt.Sprintf("UiAmountToAmount: %q", uiAmount.UiAmount), nil

	case sealevel.TokenInstrTypeInitializeMintCloseAuthority:
		var initCloseAuth sealevel.TokenInstrInitializeMintCloseAuthority
		if err = initCloseAuth.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		return fmt.Sprintf("InitializeMintCloseAuthority: %s", fmtOptKey(initCloseAuth.CloseAuthority)), nil

	case sealevel.TokenInstrTypeTransferFeeExtension:
		return decodeTransferFeeInstruction(decoder)

	case sealevel.TokenInstrTypeConfidentialTransferExtension:
		return "ConfidentialTransferExtension (not supported)", nil

	case sealevel.TokenInstrTypeDefaultAccountStateExtension:
		return decodeDefaultAccountStateInstruction(decoder)

	case sealevel.TokenInstrTypeReallocate:
		var extList sealevel.TokenInstrExtensionTypeList
		if err = extList.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		return fmt.Sprintf("Reallocate: extensions %v", extList.ExtensionTypes), nil

	case sealevel.TokenInstrTypeMemoTransferExtension:
		subType, err := decoder.ReadByte()
		if err != nil {
			return "", sealevel.TokenErrInvalidInstruction
		}
		switch subType {
		case sealevel.MemoTransferInstrTypeEnable:
			return "MemoTransfer: EnableRequiredMemoTransfers", nil
		case sealevel.MemoTransferInstrTypeDisable:
			return "MemoTransfer: DisableRequiredMemoTransfers", nil
		default:
			return "", sealevel.TokenErrInvalidInstruction
		}

	case sealevel.TokenInstrTypeCreateNativeMint:
		return "CreateNativeMint", nil

	case sealevel.TokenInstrTypeInitializeNonTransferableMint:
		return "InitializeNonTransferableMint", nil

	case sealevel.TokenInstrTypeInterestBearingMintExtension:
		return decodeInterestBearingInstruction(decoder)

	default:
		return "", sealevel.TokenErrInvalidInstruction
	}
}

func decodeTransferFeeInstruction(decoder *bin.Decoder) (string, error) {
	subType, err := decoder.ReadByte()
	if err != nil {
		return "", sealevel.TokenErrInvalidInstruction
	}

	switch subType {
	case sealevel.TransferFeeInstrTypeInitializeTransferFeeConfig:
		var initConfig sealevel.TokenInstrInitializeTransferFeeConfig
		if err = initConfig.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		return fmt.Sprintf("TransferFee: InitializeTransferFeeConfig: %d bps, max fee %d, config authority %s, withdraw authority %s",
			initConfig.TransferFeeBasisPoints, initConfig.MaximumFee,
			fmtOptKey(initConfig.TransferFeeConfigAuthority), fmtOptKey(initConfig.WithdrawWithheldAuthority)), nil

	case sealevel.TransferFeeInstrTypeTransferCheckedWithFee:
		var transfer sealevel.TokenInstrTransferCheckedWithFee
		if err = transfer.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		return fmt.Sprintf("TransferFee: TransferCheckedWithFee: amount %d, decimals %d, fee %d",
			transfer.Amount, transfer.Decimals, transfer.Fee), nil

	case sealevel.TransferFeeInstrTypeWithdrawWithheldTokensFromMint:
		return "TransferFee: WithdrawWithheldTokensFromMint", nil

	case sealevel.TransferFeeInstrTypeWithdrawWithheldTokensFromAccounts:
		var withdraw sealevel.TokenInstrWithdrawWithheldTokensFromAccounts
		if err = withdraw.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		return fmt.Sprintf("TransferFee: WithdrawWithheldTokensFromAccounts: %d token accounts", withdraw.NumTokenAccounts), nil

	case sealevel.TransferFeeInstrTypeHarvestWithheldTokensToMint:
		return "TransferFee: HarvestWithheldTokensToMint", nil

	case sealevel.TransferFeeInstrTypeSetTransferFee:
		var setFee sealevel.TokenInstrSetTransferFee
		if err = setFee.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		return fmt.Sprintf("TransferFee: SetTransferFee: %d bps, max fee %d",
			setFee.TransferFeeBasisPoints, setFee.MaximumFee), nil

	default:
		return "", sealevel.TokenErrInvalidInstruction
	}
}

func decodeDefaultAccountStateInstruction(decoder *bin.Decoder) (string, error) {
	subType, err := decoder.ReadByte()
	if err != nil {
		return "", sealevel.TokenErrInvalidInstruction
	}

	var state sealevel.TokenInstrDefaultAccountState
	if err = state.UnmarshalWithDecoder(decoder); err != nil {
		return "", err
	}
	stateNames := []string{"Uninitialized", "Initialized", "Frozen"}

	switch subType {
	case sealevel.DefaultAccountStateInstrTypeInitialize:
		return fmt.Sprintf("DefaultAccountState: Initialize: %s", stateNames[state.State]), nil
	case sealevel.DefaultAccountStateInstrTypeUpdate:
		return fmt.Sprintf("DefaultAccountState: Update: %s", stateNames[state.State]), nil
	default:
		return "", sealevel.TokenErrInvalidInstruction
	}
}

func decodeInterestBearingInstruction(decoder *bin.Decoder) (string, error) {
	subType, err := decoder.ReadByte()
	if err != nil {
		return "", sealevel.TokenErrInvalidInstruction
	}

	switch subType {
	case sealevel.InterestBearingMintInstrTypeInitialize:
		var initInterest sealevel.TokenInstrInitializeInterestBearingMint
		if err = initInterest.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		return fmt.Sprintf("InterestBearingMint: Initialize: rate %d bps, rate authority %s",
			initInterest.Rate, initInterest.RateAuthority), nil

	case sealevel.InterestBearingMintInstrTypeUpdateRate:
		var update sealevel.TokenInstrUpdateInterestRate
		if err = update.UnmarshalWithDecoder(decoder); err != nil {
			return "", err
		}
		return fmt.Sprintf("InterestBearingMint: UpdateRate: rate %d bps", update.Rate), nil

	default:
		return "", sealevel.TokenErrInvalidInstruction
	}
}
