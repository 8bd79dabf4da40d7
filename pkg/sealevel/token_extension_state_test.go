package sealevel

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferFee_CalculateFee(t *testing.T) {
	fee := TransferFee{TransferFeeBasisPoints: 100, MaximumFee: 5000}

	calculated, err := fee.CalculateFee(10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), calculated)

	// rounds up
	calculated, err = fee.CalculateFee(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), calculated)

	calculated, err = fee.CalculateFee(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), calculated)

	// capped at the configured maximum
	calculated, err = fee.CalculateFee(10000000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), calculated)

	zeroFee := TransferFee{TransferFeeBasisPoints: 0, MaximumFee: 5000}
	calculated, err = zeroFee.CalculateFee(10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), calculated)
}

func TestTransferFeeConfig_GetEpochFee(t *testing.T) {
	config := TransferFeeConfig{
		OlderTransferFee: TransferFee{Epoch: 0, TransferFeeBasisPoints: 10},
		NewerTransferFee: TransferFee{Epoch: 5, TransferFeeBasisPoints: 20},
	}

	assert.Equal(t, uint16(10), config.GetEpochFee(4).TransferFeeBasisPoints)
	assert.Equal(t, uint16(20), config.GetEpochFee(5).TransferFeeBasisPoints)
	assert.Equal(t, uint16(20), config.GetEpochFee(9).TransferFeeBasisPoints)
}

func TestTransferFeeAmount_Closable(t *testing.T) {
	withheld := TransferFeeAmount{}
	assert.NoError(t, withheld.Closable())

	withheld.WithheldAmount = 1
	assert.Equal(t, TokenErrAccountHasWithheldTransferFees, withheld.Closable())
}

func TestOptionalNonZeroPubkey(t *testing.T) {
	key := solana.NewWallet().PublicKey()

	assert.Equal(t, key, optionalNonZeroPubkey(&key))
	assert.Equal(t, solana.PublicKey{}, optionalNonZeroPubkey(nil))

	require.NotNil(t, pubkeyFromOptionalNonZero(key))
	assert.Equal(t, key, *pubkeyFromOptionalNonZero(key))
	assert.Nil(t, pubkeyFromOptionalNonZero(solana.PublicKey{}))
}

func TestTransferFeeConfig_PayloadRoundTrip(t *testing.T) {
	config := TransferFeeConfig{
		TransferFeeConfigAuthority: solana.NewWallet().PublicKey(),
		WithdrawWithheldAuthority:  solana.NewWallet().PublicKey(),
		WithheldAmount:             77,
		OlderTransferFee:           TransferFee{Epoch: 1, MaximumFee: 100, TransferFeeBasisPoints: 25},
		NewerTransferFee:           TransferFee{Epoch: 3, MaximumFee: 200, TransferFeeBasisPoints: 50},
	}

	payload := make([]byte, TransferFeeConfigLen)
	require.NoError(t, packExtension(payload, &config))

	var decoded TransferFeeConfig
	require.NoError(t, unmarshalExtension(payload, &decoded))
	assert.Equal(t, config, decoded)
}

func TestCompoundedInterest(t *testing.T) {
	assert.Equal(t, 1.0, compoundedInterest(0, 1000))
	assert.Equal(t, 1.0, compoundedInterest(500, 0))
	assert.Greater(t, compoundedInterest(500, 86400), 1.0)
	assert.Less(t, compoundedInterest(-500, 86400), 1.0)
}

func TestInterestBearingConfig_TimeWeightedAverageRate(t *testing.T) {
	config := InterestBearingConfig{
		InitializationTimestamp: 0,
		PreUpdateAverageRate:    100,
		LastUpdateTimestamp:     100,
		CurrentRate:             300,
	}

	// equal halves of the window average to the midpoint
	average, err := config.TimeWeightedAverageRate(200)
	require.NoError(t, err)
	assert.Equal(t, int16(200), average)

	// zero elapsed time keeps the current rate
	zeroSpan := InterestBearingConfig{InitializationTimestamp: 50, LastUpdateTimestamp: 50, CurrentRate: 42}
	average, err = zeroSpan.TimeWeightedAverageRate(50)
	require.NoError(t, err)
	assert.Equal(t, int16(42), average)

	// the clock may not run backwards
	_, err = config.TimeWeightedAverageRate(99)
	assert.Equal(t, TokenErrOverflow, err)
}

func TestInterestBearingConfig_UiAmountConversion(t *testing.T) {
	config := InterestBearingConfig{}

	ui, err := config.AmountToUiAmount(12345, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, "123.45", ui)

	amount, err := config.TryUiAmountIntoAmount("123.45", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(12345), amount)

	_, err = config.TryUiAmountIntoAmount("-5", 2, 0)
	assert.Equal(t, ErrInvalidArgument, err)

	_, err = config.TryUiAmountIntoAmount("not a number", 2, 0)
	assert.Equal(t, ErrInvalidArgument, err)
}
