// Package keybundle defines the KeyBundle aggregate and its codec: the
// plaintext textual form, optional passphrase protection, and a content
// fingerprint used to spot-check a bundle file without attempting a
// full decrypt.
package keybundle

import (
	"crypto/rsa"
	"encoding/hex"

	"github.com/redeaux-corp/docenc/internal/primitives"
)

// Version is the key-bundle format version written by this package.
const Version = "1.0.0"

// Field lengths for every byte slice a KeyBundle carries.
const (
	MasterKeySize   = 32
	AESKeySize      = 32
	ChaChaKeySize   = 32
	HMACKeySize     = 64
	SaltSize        = 32
	AESIVSize       = 16
	ChaChaNonceSize = 12
)

// KeyBundle is the complete material required to decrypt one artifact.
// It is a pure value aggregate, single-writer, created once during
// encryption and loaded once for decryption.
type KeyBundle struct {
	MasterKey   []byte
	AESKey      []byte
	ChaChaKey   []byte
	HMACKey     []byte
	Salt        []byte
	AESIV       []byte
	ChaChaNonce []byte

	RSAPrivateKey *rsa.PrivateKey
	RSAPublicKey  *rsa.PublicKey

	Version string
}

// Fingerprint returns a hex SHA3-512 digest over every fixed-length
// field of b in canonical order. It lets an operator verify a .key file
// on disk has not been corrupted without attempting a decrypt; a
// mismatch on Load is an IntegrityFailure, checked independently of and
// before passphrase verification.
func (b *KeyBundle) Fingerprint() (string, error) {
	privPEM, err := primitives.EncodeRSAPrivateKeyPEM(b.RSAPrivateKey)
	if err != nil {
		return "", err
	}
	pubPEM, err := primitives.EncodeRSAPublicKeyPEM(b.RSAPublicKey)
	if err != nil {
		return "", err
	}

	var buf []byte
	buf = append(buf, b.MasterKey...)
	buf = append(buf, b.AESKey...)
	buf = append(buf, b.ChaChaKey...)
	buf = append(buf, b.HMACKey...)
	buf = append(buf, b.Salt...)
	buf = append(buf, b.AESIV...)
	buf = append(buf, b.ChaChaNonce...)
	buf = append(buf, privPEM...)
	buf = append(buf, pubPEM...)
	buf = append(buf, b.Version...)

	digest := primitives.SHA3_512(buf)
	return hex.EncodeToString(digest[:]), nil
}
