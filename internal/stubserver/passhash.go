package stubserver

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters, relaxed from production values so test runs stay fast.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 16 * 1024 // 16 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

func newSalt() []byte {
	b := make([]byte, saltLen)
	_, _ = rand.Read(b)
	return b
}

// hashPassword returns the Argon2id hash of password using the provided salt.
func hashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// verifyPassword verifies password against the expected hash and salt.
func verifyPassword(password string, salt, expected []byte) bool {
	got := hashPassword(password, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
