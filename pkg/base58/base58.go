package base58

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// MustDecodeFromString decodes a base58 string that is known to be a valid
// 32-byte address. Used for package-level address constants.
func MustDecodeFromString(s string) solana.PublicKey {
	decoded, err := base58.Decode(s)
	if err != nil {
		panic(fmt.Sprintf("invalid base58 constant %s: %s", s, err))
	}
	if len(decoded) != solana.PublicKeyLength {
		panic(fmt.Sprintf("base58 constant %s decodes to %d bytes", s, len(decoded)))
	}
	return solana.PublicKeyFromBytes(decoded)
}

func Encode(data []byte) string {
	return base58.Encode(data)
}

func Decode(s string) ([]byte, error) {
	return base58.Decode(s)
}
