package primitives

import (
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/redeaux-corp/docenc/internal/docerr"
)

// ChaChaKeySize is the ChaCha20-Poly1305 key length in bytes.
const ChaChaKeySize = chacha20poly1305.KeySize

// ChaChaNonceSize is the ChaCha20-Poly1305 nonce length in bytes.
const ChaChaNonceSize = chacha20poly1305.NonceSize

// ChaCha20Poly1305Seal encrypts plaintext with no associated data,
// returning ciphertext with the Poly1305 tag appended.
func ChaCha20Poly1305Seal(key, nonce, plaintext []byte) ([]byte, error) {
	aead, err := newChaCha(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != ChaChaNonceSize {
		return nil, docerr.New(docerr.InvalidInput, "ChaCha20-Poly1305 nonce must be 12 bytes")
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// ChaCha20Poly1305Open decrypts and authenticates ciphertext produced by
// ChaCha20Poly1305Seal.
func ChaCha20Poly1305Open(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := newChaCha(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != ChaChaNonceSize {
		return nil, docerr.New(docerr.InvalidInput, "ChaCha20-Poly1305 nonce must be 12 bytes")
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, docerr.Wrap(docerr.IntegrityFailure, "ChaCha20-Poly1305 authentication failed", err)
	}
	return plaintext, nil
}

func newChaCha(key []byte) (cipher.AEAD, error) {
	if len(key) != ChaChaKeySize {
		return nil, docerr.New(docerr.InvalidInput, "ChaCha20-Poly1305 key must be 32 bytes")
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, docerr.Wrap(docerr.InvalidInput, "constructing ChaCha20-Poly1305", err)
	}
	return aead, nil
}
