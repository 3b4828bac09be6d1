package analysis

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// GCD returns the greatest common divisor of a and b.
func GCD[T constraints.Integer](a, b T) T {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the least common multiple of a and b. It does not check
// for overflow; see lcmAll.
func LCM[T constraints.Integer](a, b T) T {
	if a == 0 || b == 0 {
		return 0
	}
	return a / GCD(a, b) * b
}

// lcmAll folds LCM over positive values and fails instead of wrapping
// past math.MaxInt64.
func lcmAll(values []int64) (int64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("lcm of no values")
	}

	acc := int64(1)
	for _, v := range values {
		if v <= 0 {
			return 0, fmt.Errorf("lcm of non-positive value %d", v)
		}
		step := acc / GCD(acc, v)
		if step > math.MaxInt64/v {
			return 0, fmt.Errorf("lcm overflows int64 at %d", v)
		}
		acc = step * v
	}
	return acc, nil
}
