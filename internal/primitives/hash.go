// Package primitives wraps the fixed set of cryptographic building
// blocks the container format is built from: two authenticated ciphers,
// RSA-OAEP key wrapping, a family of hash functions, HMAC-SHA512,
// PBKDF2-HMAC-SHA512, and LZMA compression. Nothing here chooses or
// negotiates algorithms; the algorithm set is fixed per format version.
package primitives

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// SHA256 returns the SHA-256 digest of data.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// SHA512 returns the SHA-512 digest of data.
func SHA512(data []byte) [64]byte {
	return sha512.Sum512(data)
}

// SHA3_256 returns the SHA3-256 digest of data.
func SHA3_256(data []byte) [32]byte {
	return sha3.Sum256(data)
}

// SHA3_512 returns the SHA3-512 digest of data.
func SHA3_512(data []byte) [64]byte {
	return sha3.Sum512(data)
}

// BLAKE2b_256 returns the unkeyed BLAKE2b-256 digest of data.
func BLAKE2b_256(data []byte) [32]byte {
	return blake2b.Sum256(data)
}

// HMACSHA512 computes HMAC-SHA512(key, data).
func HMACSHA512(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// ConstantTimeEqual reports whether a and b are equal using a
// constant-time comparison, independent of their byte content.
func ConstantTimeEqual(a, b []byte) bool {
	return hmac.Equal(a, b)
}
