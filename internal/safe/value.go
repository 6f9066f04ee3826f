package safe

import (
	"math"
)

// IntToUint32 safely converts an int to uint32, clamping negative values to 0
// and values above math.MaxUint32 to math.MaxUint32.
// Returns the converted value and a boolean indicating whether clamping occurred.
func IntToUint32(val int) (uint32, bool) {
	if val < 0 {
		return 0, true
	}
	if uint64(val) > math.MaxUint32 {
		return math.MaxUint32, true
	}
	return uint32(val), false
}

// Uint32ToInt safely converts a uint32 value to int.
// On 32-bit platforms values above math.MaxInt32 are clamped.
// Returns the converted value and a boolean indicating whether clamping occurred.
func Uint32ToInt(val uint32) (int, bool) {
	if uint64(val) > uint64(math.MaxInt) {
		return math.MaxInt, true
	}
	return int(val), false
}

// Uint64ToUint32 safely converts an uint64 value to uint32, clamping to
// math.MaxUint32 if overflow would occur.
// Returns the converted value and a boolean indicating whether clamping occurred.
func Uint64ToUint32(val uint64) (uint32, bool) {
	if val > math.MaxUint32 {
		return math.MaxUint32, true
	}
	return uint32(val), false
}
