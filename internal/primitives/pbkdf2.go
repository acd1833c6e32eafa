package primitives

import (
	"crypto/sha512"

	"golang.org/x/crypto/pbkdf2"
)

// DefaultPBKDF2Iterations is the iteration count used for both master-key
// derivation and key-bundle passphrase protection.
const DefaultPBKDF2Iterations = 600_000

// PBKDF2SHA512 derives a keyLen-byte key from passphrase and salt using
// PBKDF2-HMAC-SHA512.
func PBKDF2SHA512(passphrase, salt []byte, iterations, keyLen int) []byte {
	return pbkdf2.Key(passphrase, salt, iterations, keyLen, sha512.New)
}
