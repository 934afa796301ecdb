package utils

// Set returns value with every bit in mask set.
func Set(value, mask uint8) uint8 {
	return value | mask
}

// Reset returns value with every bit in mask cleared.
func Reset(value, mask uint8) uint8 {
	return value &^ mask
}

// Test returns true if any bit in mask is set in value.
func Test(value, mask uint8) bool {
	return value&mask != 0
}
