package keybundle

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/redeaux-corp/docenc/internal/docerr"
)

// sealStandardGCM and openStandardGCM use the standard 12-byte GCM
// nonce, unlike the container's non-standard 16-byte AES-IV: bundle
// protection wraps a self-contained blob rather than participating in
// the container's cipher chain, so there is no reason to deviate from
// the conventional nonce size here.
func sealStandardGCM(key, nonce, plaintext []byte) ([]byte, error) {
	aead, err := newStandardGCM(key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

func openStandardGCM(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := newStandardGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, docerr.Wrap(docerr.IntegrityFailure, "key bundle protection AES-GCM authentication failed", err)
	}
	return plaintext, nil
}

func newStandardGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, docerr.Wrap(docerr.InvalidInput, "constructing AES block cipher", err)
	}
	return cipher.NewGCM(block)
}
