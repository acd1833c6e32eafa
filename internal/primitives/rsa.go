package primitives

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/binary"
	"encoding/pem"

	"github.com/redeaux-corp/docenc/internal/docerr"
)

// RSAKeyBits is the RSA modulus size used for key wrapping.
const RSAKeyBits = 4096

// rsaMaxChunk is the maximum OAEP(SHA-256) plaintext size for a 4096-bit
// modulus: k - 2*hLen - 2, with k = 512 and hLen = 32.
const rsaMaxChunk = 446

// rsaBlockSize is the RSA ciphertext block size for a 4096-bit modulus.
const rsaBlockSize = RSAKeyBits / 8

// GenerateRSAKeyPair creates a fresh 4096-bit RSA keypair. This is the
// costliest step in an encryption call and runs exactly once per
// KeyBundle.
func GenerateRSAKeyPair() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, RSAKeyBits)
	if err != nil {
		return nil, docerr.Wrap(docerr.IOError, "generating RSA-4096 keypair", err)
	}
	return key, nil
}

// EncodeRSAPrivateKeyPEM encodes priv as a PKCS#8 PEM block.
func EncodeRSAPrivateKeyPEM(priv *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, docerr.Wrap(docerr.IOError, "marshaling RSA private key", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// EncodeRSAPublicKeyPEM encodes pub as a SubjectPublicKeyInfo PEM block.
func EncodeRSAPublicKeyPEM(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, docerr.Wrap(docerr.IOError, "marshaling RSA public key", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// DecodeRSAPrivateKeyPEM parses a PKCS#8 PEM-encoded RSA private key.
func DecodeRSAPrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, docerr.New(docerr.InvalidFormat, "no PEM block found for RSA private key")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, docerr.Wrap(docerr.InvalidFormat, "parsing PKCS#8 RSA private key", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, docerr.New(docerr.InvalidFormat, "PEM block is not an RSA private key")
	}
	return rsaKey, nil
}

// DecodeRSAPublicKeyPEM parses a SubjectPublicKeyInfo PEM-encoded RSA
// public key.
func DecodeRSAPublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, docerr.New(docerr.InvalidFormat, "no PEM block found for RSA public key")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, docerr.Wrap(docerr.InvalidFormat, "parsing SubjectPublicKeyInfo RSA public key", err)
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, docerr.New(docerr.InvalidFormat, "PEM block is not an RSA public key")
	}
	return rsaKey, nil
}

// RSAWrap encrypts plaintext under pub using OAEP(MGF1-SHA256, SHA256,
// no label). Payloads at or under 446 bytes are emitted as a single raw
// 512-byte block with no length prefix; larger payloads are chunked into
// a sequence of (u16-BE length, ciphertext block) entries. The packed
// symmetric material this format actually wraps is always <= 446 bytes,
// so in practice only the single-block path is exercised, but the
// chunked path is kept so a future version that widens the bundle stays
// compatible.
func RSAWrap(pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	hash := sha256.New()
	if len(plaintext) <= rsaMaxChunk {
		block, err := rsa.EncryptOAEP(hash, rand.Reader, pub, plaintext, nil)
		if err != nil {
			return nil, docerr.Wrap(docerr.IntegrityFailure, "RSA-OAEP encryption failed", err)
		}
		return block, nil
	}

	var out []byte
	for off := 0; off < len(plaintext); off += rsaMaxChunk {
		end := off + rsaMaxChunk
		if end > len(plaintext) {
			end = len(plaintext)
		}
		block, err := rsa.EncryptOAEP(hash, rand.Reader, pub, plaintext[off:end], nil)
		if err != nil {
			return nil, docerr.Wrap(docerr.IntegrityFailure, "RSA-OAEP encryption failed", err)
		}
		lenPrefix := make([]byte, 2)
		binary.BigEndian.PutUint16(lenPrefix, uint16(len(block)))
		out = append(out, lenPrefix...)
		out = append(out, block...)
	}
	return out, nil
}

// RSAUnwrap decrypts a blob produced by RSAWrap. It chooses the raw
// single-block path when the blob is exactly one RSA block long, and the
// chunked length-prefixed path otherwise.
func RSAUnwrap(priv *rsa.PrivateKey, blob []byte) ([]byte, error) {
	hash := sha256.New()
	if len(blob) == rsaBlockSize {
		plaintext, err := rsa.DecryptOAEP(hash, rand.Reader, priv, blob, nil)
		if err != nil {
			return nil, docerr.Wrap(docerr.IntegrityFailure, "RSA-OAEP decryption failed", err)
		}
		return plaintext, nil
	}

	var out []byte
	for off := 0; off < len(blob); {
		if off+2 > len(blob) {
			return nil, docerr.New(docerr.InvalidFormat, "truncated RSA chunk length prefix")
		}
		chunkLen := int(binary.BigEndian.Uint16(blob[off : off+2]))
		off += 2
		if off+chunkLen > len(blob) {
			return nil, docerr.New(docerr.InvalidFormat, "RSA chunk length exceeds remaining buffer")
		}
		plaintext, err := rsa.DecryptOAEP(hash, rand.Reader, priv, blob[off:off+chunkLen], nil)
		if err != nil {
			return nil, docerr.Wrap(docerr.IntegrityFailure, "RSA-OAEP decryption failed", err)
		}
		out = append(out, plaintext...)
		off += chunkLen
	}
	return out, nil
}
