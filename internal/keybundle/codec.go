package keybundle

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"

	"github.com/redeaux-corp/docenc/internal/docerr"
	"github.com/redeaux-corp/docenc/internal/primitives"
)

// plaintextForm is the JSON-serializable textual mapping a KeyBundle
// marshals to. Every byte field is base64-encoded; RSA keys are kept as
// PEM text.
type plaintextForm struct {
	MasterKey   string `json:"master_key"`
	AESKey      string `json:"aes_key"`
	ChaChaKey   string `json:"chacha_key"`
	HMACKey     string `json:"hmac_key"`
	Salt        string `json:"salt"`
	AESIV       string `json:"aes_iv"`
	ChaChaNonce string `json:"chacha_nonce"`
	RSAPrivate  string `json:"rsa_private_key"`
	RSAPublic   string `json:"rsa_public_key"`
	Version     string `json:"version"`
	Fingerprint string `json:"fingerprint"`
}

// protectedForm is the passphrase-protected envelope around a
// marshaled plaintextForm.
type protectedForm struct {
	Encrypted bool   `json:"encrypted"`
	Salt      string `json:"salt"`
	IV        string `json:"iv"`
	Tag       string `json:"tag"`
	Data      string `json:"data"`
}

// protectedSaltSize, protectedIVSize size the passphrase-protection
// wrapper's own PBKDF2 salt and AES-GCM IV. The wrapper uses the
// standard 12-byte GCM nonce (not the container's non-standard 16-byte
// IV) since it protects a self-contained blob, not an artifact body.
const (
	protectedSaltSize = 32
	protectedIVSize   = 12
)

// Marshal renders b as its plaintext textual form.
func Marshal(b *KeyBundle) ([]byte, error) {
	privPEM, err := primitives.EncodeRSAPrivateKeyPEM(b.RSAPrivateKey)
	if err != nil {
		return nil, err
	}
	pubPEM, err := primitives.EncodeRSAPublicKeyPEM(b.RSAPublicKey)
	if err != nil {
		return nil, err
	}
	fingerprint, err := b.Fingerprint()
	if err != nil {
		return nil, err
	}

	form := plaintextForm{
		MasterKey:   base64.StdEncoding.EncodeToString(b.MasterKey),
		AESKey:      base64.StdEncoding.EncodeToString(b.AESKey),
		ChaChaKey:   base64.StdEncoding.EncodeToString(b.ChaChaKey),
		HMACKey:     base64.StdEncoding.EncodeToString(b.HMACKey),
		Salt:        base64.StdEncoding.EncodeToString(b.Salt),
		AESIV:       base64.StdEncoding.EncodeToString(b.AESIV),
		ChaChaNonce: base64.StdEncoding.EncodeToString(b.ChaChaNonce),
		RSAPrivate:  string(privPEM),
		RSAPublic:   string(pubPEM),
		Version:     b.Version,
		Fingerprint: fingerprint,
	}
	out, err := json.MarshalIndent(form, "", "  ")
	if err != nil {
		return nil, docerr.Wrap(docerr.IOError, "marshaling key bundle", err)
	}
	return out, nil
}

// Unmarshal parses a plaintext textual form produced by Marshal and
// verifies its fingerprint before returning the bundle.
func Unmarshal(data []byte) (*KeyBundle, error) {
	var form plaintextForm
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, docerr.Wrap(docerr.InvalidFormat, "parsing key bundle", err)
	}

	b := &KeyBundle{Version: form.Version}
	var err error
	if b.MasterKey, err = decodeField(form.MasterKey); err != nil {
		return nil, err
	}
	if b.AESKey, err = decodeField(form.AESKey); err != nil {
		return nil, err
	}
	if b.ChaChaKey, err = decodeField(form.ChaChaKey); err != nil {
		return nil, err
	}
	if b.HMACKey, err = decodeField(form.HMACKey); err != nil {
		return nil, err
	}
	if b.Salt, err = decodeField(form.Salt); err != nil {
		return nil, err
	}
	if b.AESIV, err = decodeField(form.AESIV); err != nil {
		return nil, err
	}
	if b.ChaChaNonce, err = decodeField(form.ChaChaNonce); err != nil {
		return nil, err
	}
	if b.RSAPrivateKey, err = primitives.DecodeRSAPrivateKeyPEM([]byte(form.RSAPrivate)); err != nil {
		return nil, err
	}
	if b.RSAPublicKey, err = primitives.DecodeRSAPublicKeyPEM([]byte(form.RSAPublic)); err != nil {
		return nil, err
	}

	fingerprint, err := b.Fingerprint()
	if err != nil {
		return nil, err
	}
	if fingerprint != form.Fingerprint {
		return nil, docerr.New(docerr.IntegrityFailure, "key bundle fingerprint mismatch")
	}

	return b, nil
}

func decodeField(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, docerr.Wrap(docerr.InvalidFormat, "decoding base64 key bundle field", err)
	}
	return b, nil
}

// Save renders b as its plaintext textual form and, if passphrase is
// non-empty, wraps it in the passphrase-protected envelope.
func Save(b *KeyBundle, passphrase string) ([]byte, error) {
	plaintext, err := Marshal(b)
	if err != nil {
		return nil, err
	}
	if passphrase == "" {
		return plaintext, nil
	}

	salt := make([]byte, protectedSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, docerr.Wrap(docerr.IOError, "generating bundle-protection salt", err)
	}
	iv := make([]byte, protectedIVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, docerr.Wrap(docerr.IOError, "generating bundle-protection IV", err)
	}

	key := primitives.PBKDF2SHA512([]byte(passphrase), salt, primitives.DefaultPBKDF2Iterations, 32)
	sealed, err := sealStandardGCM(key, iv, plaintext)
	if err != nil {
		return nil, err
	}
	ciphertext, tag := sealed[:len(sealed)-16], sealed[len(sealed)-16:]

	form := protectedForm{
		Encrypted: true,
		Salt:      base64.StdEncoding.EncodeToString(salt),
		IV:        base64.StdEncoding.EncodeToString(iv),
		Tag:       base64.StdEncoding.EncodeToString(tag),
		Data:      base64.StdEncoding.EncodeToString(ciphertext),
	}
	out, err := json.MarshalIndent(form, "", "  ")
	if err != nil {
		return nil, docerr.Wrap(docerr.IOError, "marshaling protected key bundle", err)
	}
	return out, nil
}

// Load parses bytes produced by Save. If the bytes are a passphrase-
// protected envelope, passphrase must match or Load fails with
// KeyError; a wrong passphrase is indistinguishable from a corrupt
// envelope at the GCM tag check, so both are surfaced as KeyError since
// that is, from the caller's perspective, a credential problem.
func Load(data []byte, passphrase string) (*KeyBundle, error) {
	var probe struct {
		Encrypted bool `json:"encrypted"`
	}
	if err := json.Unmarshal(data, &probe); err == nil && probe.Encrypted {
		var form protectedForm
		if err := json.Unmarshal(data, &form); err != nil {
			return nil, docerr.Wrap(docerr.InvalidFormat, "parsing protected key bundle", err)
		}

		salt, err := decodeField(form.Salt)
		if err != nil {
			return nil, err
		}
		iv, err := decodeField(form.IV)
		if err != nil {
			return nil, err
		}
		tag, err := decodeField(form.Tag)
		if err != nil {
			return nil, err
		}
		ciphertext, err := decodeField(form.Data)
		if err != nil {
			return nil, err
		}

		key := primitives.PBKDF2SHA512([]byte(passphrase), salt, primitives.DefaultPBKDF2Iterations, 32)
		plaintext, err := openStandardGCM(key, iv, append(ciphertext, tag...))
		if err != nil {
			return nil, docerr.Wrap(docerr.KeyError, "incorrect passphrase for protected key bundle", err)
		}
		return Unmarshal(plaintext)
	}

	return Unmarshal(data)
}
