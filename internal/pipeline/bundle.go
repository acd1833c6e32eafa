package pipeline

import (
	"crypto/rand"

	"github.com/redeaux-corp/docenc/internal/docerr"
	"github.com/redeaux-corp/docenc/internal/kdf"
	"github.com/redeaux-corp/docenc/internal/keybundle"
	"github.com/redeaux-corp/docenc/internal/primitives"
)

// NewBundle derives a fresh KeyBundle from passphrase: a random salt,
// PBKDF2-HMAC-SHA512 master key, the three labeled subkeys, random IV
// and nonce, and a freshly generated RSA-4096 keypair (the costliest
// step, run once per bundle).
func NewBundle(passphrase string, iterations int) (*keybundle.KeyBundle, error) {
	salt := make([]byte, keybundle.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, docerr.Wrap(docerr.IOError, "generating salt", err)
	}

	master := kdf.DeriveMaster([]byte(passphrase), salt, iterations)

	aesKey, err := kdf.DeriveSubkey(master, kdf.LabelAESKey, primitives.AESKeySize)
	if err != nil {
		return nil, err
	}
	chachaKey, err := kdf.DeriveSubkey(master, kdf.LabelChaCha, primitives.ChaChaKeySize)
	if err != nil {
		return nil, err
	}
	hmacKey, err := kdf.DeriveSubkey(master, kdf.LabelHMACKey, keybundle.HMACKeySize)
	if err != nil {
		return nil, err
	}

	aesIV := make([]byte, keybundle.AESIVSize)
	if _, err := rand.Read(aesIV); err != nil {
		return nil, docerr.Wrap(docerr.IOError, "generating AES IV", err)
	}
	chachaNonce := make([]byte, keybundle.ChaChaNonceSize)
	if _, err := rand.Read(chachaNonce); err != nil {
		return nil, docerr.Wrap(docerr.IOError, "generating ChaCha20 nonce", err)
	}

	rsaPriv, err := primitives.GenerateRSAKeyPair()
	if err != nil {
		return nil, err
	}

	return &keybundle.KeyBundle{
		MasterKey:     master,
		AESKey:        aesKey,
		ChaChaKey:     chachaKey,
		HMACKey:       hmacKey,
		Salt:          salt,
		AESIV:         aesIV,
		ChaChaNonce:   chachaNonce,
		RSAPrivateKey: rsaPriv,
		RSAPublicKey:  &rsaPriv.PublicKey,
		Version:       keybundle.Version,
	}, nil
}
