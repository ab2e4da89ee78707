package common

// WipeByteArray overwrites b with zeros. Used for password buffers read from
// the terminal. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// MaskToken shortens a token for display, keeping the first and last four
// characters. Short tokens are fully masked.
func MaskToken(token string) string {
	if len(token) <= 12 {
		return "****"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
