package sealevel

import (
	"strconv"
	"strings"
)

func formatF64(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseF64(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// amountToUiAmountString renders a raw amount as a decimal string with the
// given number of fractional digits.
func amountToUiAmountString(amount uint64, decimals byte) string {
	digits := strconv.FormatUint(amount, 10)
	if decimals == 0 {
		return digits
	}

	// left-pad so there is at least one digit before the decimal point
	if len(digits) <= int(decimals) {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
	}

	splitAt := len(digits) - int(decimals)
	return digits[:splitAt] + "." + digits[splitAt:]
}

// amountToUiAmountStringTrimmed is amountToUiAmountString with trailing
// fractional zeros removed.
func amountToUiAmountStringTrimmed(amount uint64, decimals byte) string {
	s := amountToUiAmountString(amount, decimals)
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// tryUiAmountIntoAmount parses a decimal string back into a raw amount with
// the given number of fractional digits. Excess precision is rejected.
func tryUiAmountIntoAmount(uiAmount string, decimals byte) (uint64, error) {
	parts := strings.Split(uiAmount, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidArgument
	}

	wholePart := parts[0]
	var fractionPart string
	if len(parts) == 2 {
		fractionPart = parts[1]
	}

	if wholePart == "" && fractionPart == "" {
		return 0, ErrInvalidArgument
	}
	if len(fractionPart) > int(decimals) {
		return 0, ErrInvalidArgument
	}

	// pad the fraction out to the full precision and parse as one integer
	fractionPart += strings.Repeat("0", int(decimals)-len(fractionPart))

	amount, err := strconv.ParseUint(wholePart+fractionPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidArgument
	}
	return amount, nil
}
