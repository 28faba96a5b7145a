package cpu

// DescriptorTablePointer is the packed limit:base pair LGDT/LIDT expect: a
// 2-byte limit immediately followed by an 8-byte base, with no padding. A Go
// struct of {uint16; uint64} would insert 6 bytes of alignment padding
// before the uint64 field, so the 10 bytes are laid out by hand instead.
type DescriptorTablePointer [10]byte

// PackDescriptorTablePointer assembles a DescriptorTablePointer from a table
// limit (byte size of the table minus one) and its base address.
func PackDescriptorTablePointer(limit uint16, base uint64) DescriptorTablePointer {
	var d DescriptorTablePointer
	d[0], d[1] = byte(limit), byte(limit>>8)
	for i := 0; i < 8; i++ {
		d[2+i] = byte(base >> (8 * i))
	}
	return d
}
