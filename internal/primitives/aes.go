package primitives

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/redeaux-corp/docenc/internal/docerr"
)

// AESKeySize is the AES-256 key length in bytes.
const AESKeySize = 32

// AESIVSize is the container's non-standard GCM IV length. Standard GCM
// nonces are 12 bytes; this format fixes 16, so the cipher.AEAD must be
// constructed with cipher.NewGCMWithNonceSize rather than cipher.NewGCM.
const AESIVSize = 16

// AESTagSize is the GCM authentication tag length.
const AESTagSize = 16

// AESGCMSeal encrypts plaintext with a 256-bit key and a 16-byte IV,
// authenticating associatedData alongside it. The returned ciphertext has
// the tag appended, matching crypto/cipher.AEAD.Seal's convention; callers
// that need the tag split out use AESGCMSplit.
func AESGCMSeal(key, iv, plaintext, associatedData []byte) ([]byte, error) {
	aead, err := newAESGCM(key, iv)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, iv, plaintext, associatedData), nil
}

// AESGCMOpen decrypts ciphertext (tag included, per AESGCMSeal) and
// verifies associatedData. It returns an IntegrityFailure error, never
// partial plaintext, when authentication fails.
func AESGCMOpen(key, iv, ciphertext, associatedData []byte) ([]byte, error) {
	aead, err := newAESGCM(key, iv)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, iv, ciphertext, associatedData)
	if err != nil {
		return nil, docerr.Wrap(docerr.IntegrityFailure, "AES-GCM authentication failed", err)
	}
	return plaintext, nil
}

// AESGCMSplit separates a trailing GCM tag from ciphertext.
func AESGCMSplit(sealed []byte) (ciphertext, tag []byte, err error) {
	if len(sealed) < AESTagSize {
		return nil, nil, docerr.New(docerr.InvalidFormat, "sealed AES-GCM payload shorter than tag size")
	}
	split := len(sealed) - AESTagSize
	return sealed[:split], sealed[split:], nil
}

func newAESGCM(key, iv []byte) (cipher.AEAD, error) {
	if len(key) != AESKeySize {
		return nil, docerr.New(docerr.InvalidInput, "AES-256 key must be 32 bytes")
	}
	if len(iv) != AESIVSize {
		return nil, docerr.New(docerr.InvalidInput, "AES-GCM IV must be 16 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, docerr.Wrap(docerr.InvalidInput, "constructing AES block cipher", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, AESIVSize)
	if err != nil {
		return nil, docerr.Wrap(docerr.InvalidInput, "constructing AES-GCM with 16-byte nonce", err)
	}
	return aead, nil
}
