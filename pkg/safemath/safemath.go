package safemath

import (
	"errors"
	"math"
	"math/bits"
)

var ErrOverflow = errors.New("arithmetic overflow")

func CheckedAddU64(a uint64, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

func CheckedSubU64(a uint64, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrOverflow
	}
	return diff, nil
}

func CheckedMulU64(a uint64, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

func CheckedAddU16(a uint16, b uint16) (uint16, error) {
	sum := uint32(a) + uint32(b)
	if sum > math.MaxUint16 {
		return 0, ErrOverflow
	}
	return uint16(sum), nil
}

func SaturatingAddU64(a uint64, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

func SaturatingSubU64(a uint64, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func SaturatingSubI64(a int64, b int64) int64 {
	diff := a - b
	if (a < 0) != (b < 0) && (diff < 0) != (a < 0) {
		if a < 0 {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return diff
}

// CeilDivU64W computes ceil((a * b) / d) in 128-bit intermediate precision.
// d must be nonzero; overflow of the final quotient back into 64 bits is an
// error.
func CeilDivU64W(a uint64, b uint64, d uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, ErrOverflow
	}
	quo, rem := bits.Div64(hi, lo, d)
	if rem != 0 {
		return CheckedAddU64(quo, 1)
	}
	return quo, nil
}
