package common

// WipeByteArray zeroes the buffer in place. Use it to clear passwords and
// other secrets once they are no longer needed. Nil-safe.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
