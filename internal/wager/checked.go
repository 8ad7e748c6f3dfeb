package wager

import "math"

// Fund and rating arithmetic must never wrap silently. These helpers fail the
// whole operation on overflow instead.

func checkedAdd64(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrArithmeticOverflow
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, ErrArithmeticOverflow
	}
	return a + b, nil
}

func checkedSub64(a, b int64) (int64, error) {
	if b < 0 && a > math.MaxInt64+b {
		return 0, ErrArithmeticOverflow
	}
	if b > 0 && a < math.MinInt64+b {
		return 0, ErrArithmeticOverflow
	}
	return a - b, nil
}

func checkedMul64(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	result := a * b
	if result/b != a {
		return 0, ErrArithmeticOverflow
	}
	return result, nil
}

func saturatingAdd64(a, b int64) int64 {
	sum, err := checkedAdd64(a, b)
	if err != nil {
		if b > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return sum
}

// bpsShare returns total*bps/10000 with overflow checking.
func bpsShare(total, bps int64) (int64, error) {
	n, err := checkedMul64(total, bps)
	if err != nil {
		return 0, err
	}
	return n / bpsDenominator, nil
}
