package utils

import "golang.org/x/exp/constraints"

// Clamp bounds value to the inclusive range [min, max].
func Clamp[T constraints.Integer | constraints.Float](min, value, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ZeroAdjust8 maps 0 to 1, leaving every other value untouched. Most
// bank controllers can't select bank 0 in the switchable window.
func ZeroAdjust8(v uint8) uint8 {
	if v == 0 {
		return 1
	}
	return v
}
