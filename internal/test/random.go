package test

import "math/rand/v2"

const loginAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomLogin returns a login that will not collide between test runs.
func RandomLogin() string {
	return "user-" + randomFrom(loginAlphabet, 8)
}

// RandomPassword returns a printable password of 16 to 31 characters.
func RandomPassword() string {
	buf := make([]byte, 16+rand.IntN(16))
	for i := range buf {
		buf[i] = byte('!' + rand.IntN('~'-'!'+1))
	}
	return string(buf)
}

func randomFrom(alphabet string, n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(buf)
}
