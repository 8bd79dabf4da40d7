package sealevel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountToUiAmountString(t *testing.T) {
	assert.Equal(t, "1.234567", amountToUiAmountString(1234567, 6))
	assert.Equal(t, "0.000001", amountToUiAmountString(1, 6))
	assert.Equal(t, "0.00", amountToUiAmountString(0, 2))
	assert.Equal(t, "123", amountToUiAmountString(123, 0))
	assert.Equal(t, "1.500000", amountToUiAmountString(1500000, 6))
}

func TestAmountToUiAmountStringTrimmed(t *testing.T) {
	assert.Equal(t, "1.5", amountToUiAmountStringTrimmed(1500000, 6))
	assert.Equal(t, "1", amountToUiAmountStringTrimmed(1000000, 6))
	assert.Equal(t, "0", amountToUiAmountStringTrimmed(0, 2))
	assert.Equal(t, "123", amountToUiAmountStringTrimmed(123, 0))
	assert.Equal(t, "0.000001", amountToUiAmountStringTrimmed(1, 6))
}

func TestTryUiAmountIntoAmount(t *testing.T) {
	amount, err := tryUiAmountIntoAmount("1.5", 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(1500000), amount)

	amount, err = tryUiAmountIntoAmount("1", 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000000), amount)

	// a bare fraction is accepted
	amount, err = tryUiAmountIntoAmount(".5", 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), amount)

	amount, err = tryUiAmountIntoAmount("0", 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), amount)
}

func TestTryUiAmountIntoAmount_Rejections(t *testing.T) {
	// more fractional digits than the mint allows
	_, err := tryUiAmountIntoAmount("0.0000001", 6)
	assert.Equal(t, ErrInvalidArgument, err)

	_, err = tryUiAmountIntoAmount("1.2.3", 6)
	assert.Equal(t, ErrInvalidArgument, err)

	_, err = tryUiAmountIntoAmount("", 6)
	assert.Equal(t, ErrInvalidArgument, err)

	_, err = tryUiAmountIntoAmount(".", 6)
	assert.Equal(t, ErrInvalidArgument, err)

	_, err = tryUiAmountIntoAmount("abc", 6)
	assert.Equal(t, ErrInvalidArgument, err)

	_, err = tryUiAmountIntoAmount("-1", 6)
	assert.Equal(t, ErrInvalidArgument, err)

	// past the u64 range
	_, err = tryUiAmountIntoAmount("18446744073709551616", 0)
	assert.Equal(t, ErrInvalidArgument, err)
}
