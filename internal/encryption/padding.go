package encryption

// Pad returns the number of filler bytes that bring n up to a multiple of
// alignment: (alignment - n%alignment) % alignment. alignment must be positive.
func Pad(alignment, n uint64) uint64 {
	return (alignment - n%alignment) % alignment
}

// zeroPad returns data extended with zero bytes to a multiple of BlockSize.
func zeroPad(data []byte) []byte {
	padding := Pad(BlockSize, uint64(len(data)))
	if padding == 0 {
		return data
	}

	return append(data, make([]byte, padding)...)
}
