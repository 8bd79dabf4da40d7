// Package inspect decodes raw token program account data from a file.
package inspect

import (
	"fmt"
	"os"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/solwasm/tokenrt/pkg/sealevel"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var Cmd = cobra.Command{
	Use:   "inspect <account-data-file>",
	Short: "Decode a token mint, account, or multisig record",
	Args:  cobra.ExactArgs(1),
	Run:   run,
}

var extensionNames = map[uint16]string{
	sealevel.ExtensionTypeTransferFeeConfig:           "TransferFeeConfig",
	sealevel.ExtensionTypeTransferFeeAmount:           "TransferFeeAmount",
	sealevel.ExtensionTypeMintCloseAuthority:          "MintCloseAuthority",
	sealevel.ExtensionTypeConfidentialTransferMint:    "ConfidentialTransferMint",
	sealevel.ExtensionTypeConfidentialTransferAccount: "ConfidentialTransferAccount",
	sealevel.ExtensionTypeDefaultAccountState:         "DefaultAccountState",
	sealevel.ExtensionTypeImmutableOwner:              "ImmutableOwner",
	sealevel.ExtensionTypeMemoTransfer:                "MemoTransfer",
	sealevel.ExtensionTypeNonTransferable:             "NonTransferable",
	sealevel.ExtensionTypeInterestBearingConfig:       "InterestBearingConfig",
}

func extensionName(extType uint16) string {
	name, ok := extensionNames[extType]
	if !ok {
		return fmt.Sprintf("Unknown(%d)", extType)
	}
	return name
}

func run(c *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		klog.Exitf("cannot read account data: %v", err)
	}

	if len(data) == sealevel.TokenMultisigLen {
		multisig, err := sealevel.UnpackTokenMultisig(data)
		if err != nil {
			klog.Exitf("malformed multisig record: %v", err)
		}
		printMultisig(multisig)
		return
	}

	if mintState, err := sealevel.UnpackMintState(data); err == nil {
		printMint(mintState)
		return
	}

	acctState, err := sealevel.UnpackTokenAccountState(data)
	if err != nil {
		klog.Exitf("unrecognized account data (%d bytes): %v", len(data), err)
	}
	printAccount(acctState)
}

func fmtOptKey(key *solana.PublicKey) string {
	if key == nil {
		return "none"
	}
	return key.String()
}

func printMint(state *sealevel.MintState) {
	fmt.Println("kind: mint")
	fmt.Printf("supply: %d\n", state.Mint.Supply)
	fmt.Printf("decimals: %d\n", state.Mint.Decimals)
	fmt.Printf("mint authority: %s\n", fmtOptKey(state.Mint.MintAuthority))
	fmt.Printf("freeze authority: %s\n", fmtOptKey(state.Mint.FreezeAuthority))
	printExtensions(&state.Exts)
}

func printAccount(state *sealevel.TokenAccountState) {
	fmt.Println("kind: account")
	fmt.Printf("mint: %s\n", state.Account.Mint)
	fmt.Printf("owner: %s\n", state.Account.Owner)
	fmt.Printf("amount: %d\n", state.Account.Amount)
	stateNames := []string{"uninitialized", "initialized", "frozen"}
	fmt.Printf("state: %s\n", stateNames[state.Account.State])
	if state.Account.IsNativeAccount() {
		fmt.Printf("native: yes, rent reserve %d\n", *state.Account.IsNative)
	}
	if state.Account.Delegate != nil {
		fmt.Printf("delegate: %s, delegated amount %d\n", state.Account.Delegate, state.Account.DelegatedAmount)
	}
	if state.Account.CloseAuthority != nil {
		fmt.Printf("close authority: %s\n", state.Account.CloseAuthority)
	}
	printExtensions(&state.Exts)
}

func printMultisig(multisig *sealevel.TokenMultisig) {
	fmt.Println("kind: multisig")
	fmt.Printf("required signers: %d of %d\n", multisig.M, multisig.N)
	for i := byte(0); i < multisig.N && i < sealevel.TokenMaxSigners; i++ {
		fmt.Printf("signer %d: %s\n", i+1, multisig.Signers[i])
	}
}

type extensionView interface {
	ExtensionTypes() ([]uint16, error)
	Extension(extType uint16) ([]byte, error)
}

func printExtensions(exts extensionView) {
	types, err := exts.ExtensionTypes()
	if err != nil || len(types) == 0 {
		return
	}

	fmt.Println("extensions:")
	for _, extType := range types {
		payload, err := exts.Extension(extType)
		if err != nil || payload == nil {
			fmt.Printf("  %s\n", extensionName(extType))
			continue
		}
		fmt.Printf("  %s%s\n", extensionName(extType), extensionDetail(extType, payload))
	}
}

// extensionDetail renders the decoded payload of extensions that carry state.
func extensionDetail(extType uint16, payload []byte) string {
	decoder := bin.NewBinDecoder(payload)

	switch extType {
	case sealevel.ExtensionTypeTransferFeeConfig:
		var config sealevel.TransferFeeConfig
		if err := config.UnmarshalWithDecoder(decoder); err != nil {
			return ""
		}
		return fmt.Sprintf(": %d bps (max %d), withheld %d",
			config.NewerTransferFee.TransferFeeBasisPoints, config.NewerTransferFee.MaximumFee, config.WithheldAmount)

	case sealevel.ExtensionTypeTransferFeeAmount:
		var withheld sealevel.TransferFeeAmount
		if err := withheld.UnmarshalWithDecoder(decoder); err != nil {
			return ""
		}
		return fmt.Sprintf(": withheld %d", withheld.WithheldAmount)

	case sealevel.ExtensionTypeMintCloseAuthority:
		var closeAuth sealevel.MintCloseAuthority
		if err := closeAuth.UnmarshalWithDecoder(decoder); err != nil {
			return ""
		}
		return fmt.Sprintf(": %s", closeAuth.CloseAuthority)

	case sealevel.ExtensionTypeDefaultAccountState:
		var state sealevel.DefaultAccountState
		if err := state.UnmarshalWithDecoder(decoder); err != nil {
			return ""
		}
		if state.State == sealevel.TokenAccountStateFrozen {
			return ": frozen"
		}
		return ": initialized"

	case sealevel.ExtensionTypeMemoTransfer:
		var memo sealevel.MemoTransfer
		if err := memo.UnmarshalWithDecoder(decoder); err != nil {
			return ""
		}
		if memo.RequireIncomingTransferMemos {
			return ": required"
		}
		return ": not required"

	case sealevel.ExtensionTypeInterestBearingConfig:
		var config sealevel.InterestBearingConfig
		if err := config.UnmarshalWithDecoder(decoder); err != nil {
			return ""
		}
		return fmt.Sprintf(": rate %d bps, rate authority %s", config.CurrentRate, config.RateAuthority)

	default:
		return ""
	}
}
