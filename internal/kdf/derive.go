// Package kdf turns a passphrase into the master key and turns the
// master key into the family of labeled subkeys the pipeline needs.
//
// Master-key derivation is plain PBKDF2-HMAC-SHA512. Subkey derivation is
// a hand-rolled HKDF-Expand-shaped construction: PRK = HMAC-SHA512(key="",
// msg=master), then T_i = HMAC-SHA512(PRK, T_{i-1} || label || i) with a
// single-byte counter starting at 1 and T_0 empty, concatenated and
// truncated to the requested length. It is implemented by hand rather
// than via golang.org/x/crypto/hkdf because the exact byte layout here
// (counter width, label-before-counter ordering, T_{i-1} defined as
// exactly the last 64 bytes emitted) must stay bit-for-bit stable across
// versions for previously issued KeyBundles to keep deriving the same
// subkeys, a detail an off-the-shelf HKDF is not contractually bound to
// preserve.
package kdf

import (
	"crypto/hmac"
	"crypto/sha512"

	"github.com/redeaux-corp/docenc/internal/docerr"
	"github.com/redeaux-corp/docenc/internal/primitives"
)

// MasterKeySize is the length in bytes of a derived master key.
const MasterKeySize = 32

// DefaultIterations is the PBKDF2 iteration count used for master-key
// derivation.
const DefaultIterations = primitives.DefaultPBKDF2Iterations

// Subkey labels, used verbatim as the "label" input to DeriveSubkey.
// These strings are load-bearing: changing them changes every subkey
// derived from every future master key.
const (
	LabelAESKey  = "AES-256-GCM-KEY"
	LabelChaCha  = "CHACHA20-KEY"
	LabelHMACKey = "HMAC-SHA512-KEY"
)

// hmacBlockSize is the output size of HMAC-SHA512, and therefore the
// size of each T_i block in DeriveSubkey.
const hmacBlockSize = sha512.Size

// maxSubkeyLen is the largest length DeriveSubkey can produce before the
// single-byte counter wraps (255 blocks of 64 bytes each).
const maxSubkeyLen = 255 * hmacBlockSize

// DeriveMaster derives the 32-byte master key from a UTF-8 passphrase
// and a 32-byte salt using PBKDF2-HMAC-SHA512 at the given iteration
// count.
func DeriveMaster(passphrase, salt []byte, iterations int) []byte {
	return primitives.PBKDF2SHA512(passphrase, salt, iterations, MasterKeySize)
}

// DeriveSubkey expands master into a length-byte subkey bound to label.
// It panics if length exceeds what a single-byte counter can address;
// every call site in this module stays far below that bound, but a
// caller adding a new labeled subkey should check against maxSubkeyLen.
func DeriveSubkey(master []byte, label string, length int) ([]byte, error) {
	if length > maxSubkeyLen {
		return nil, docerr.New(docerr.InvalidInput, "requested subkey length exceeds single-byte counter range")
	}

	prk := hmacSHA512(nil, master)

	out := make([]byte, 0, length+hmacBlockSize)
	prev := []byte{}
	for counter := byte(1); len(out) < length; counter++ {
		msg := make([]byte, 0, len(prev)+len(label)+1)
		msg = append(msg, prev...)
		msg = append(msg, label...)
		msg = append(msg, counter)
		block := hmacSHA512(prk, msg)
		out = append(out, block...)
		prev = block
	}
	return out[:length], nil
}

func hmacSHA512(key, msg []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}
