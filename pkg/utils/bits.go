package utils

import (
	"golang.org/x/exp/constraints"
)

// Returns an all ones bitmask of n bits of the given unsigned integer type
func AllOnes[T constraints.Unsigned](bits int) T {
	return (T(1) << bits) - T(1)
}

// Returns the two's complement representation of value truncated to the given
// number of bits. Negative values wrap modulo 2^bits.
func TwosComplement[T constraints.Unsigned, V constraints.Signed](value V, bits int) T {
	return T(value) & AllOnes[T](bits)
}

// Interprets the n least significant bits of value as a two's complement
// signed integer
func SignExtend[T constraints.Unsigned](value T, bits int) int64 {
	shift := 64 - bits
	return int64(uint64(value)<<shift) >> shift
}

// Checks whether value is representable as a two's complement integer of n bits
func FitsSigned[V constraints.Signed](value V, bits int) bool {
	min := -(int64(1) << (bits - 1))
	max := (int64(1) << (bits - 1)) - 1
	return int64(value) >= min && int64(value) <= max
}

// Checks whether value is representable as an unsigned integer of n bits
func FitsUnsigned[V constraints.Integer](value V, bits int) bool {
	return value >= 0 && uint64(value) <= uint64(AllOnes[uint64](bits))
}

// Implements a read/write view over an unsigned interger, allowing manipullating individual bits easily
type BitView[T constraints.Unsigned] struct {
	Bits *T
}

// Returns the viewed unsigned int value
func (v BitView[T]) Value() T {
	return *v.Bits
}

// Extracts a range of bits given a first bit and a width
func (v BitView[T]) Read(bit int, width int) T {
	mask := AllOnes[T](width)
	return (v.Value() >> bit) & mask
}

// Copies a value into a range of bits, given the start and width of the range.
// All most significant bits of the value not fitting into the destination range are ignored.
// Bits already set in the destination range are cleared first.
func (v BitView[T]) Write(value T, bit int, width int) {
	mask := AllOnes[T](width)
	*v.Bits = (*v.Bits &^ (mask << bit)) | ((value & mask) << bit)
}

// Copies the bits [from, from+width) of value into the range starting at bit
func (v BitView[T]) Scatter(value T, from int, bit int, width int) {
	v.Write(value>>from, bit, width)
}

// Reads width bits starting at bit and returns them shifted to position to
func (v BitView[T]) Gather(bit int, width int, to int) T {
	return v.Read(bit, width) << to
}

// Creates a bit view out of an unsigned int
func CreateBitView[T constraints.Unsigned](value *T) BitView[T] {
	return BitView[T]{
		Bits: value,
	}
}
