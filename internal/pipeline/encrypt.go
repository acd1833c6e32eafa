// Package pipeline orchestrates the encryption and decryption flows:
// compression, the two authenticated ciphers, the custom transform, RSA
// key wrapping, and HMAC integrity, composed in the exact order the
// format requires. This is the package an embedder (CLI, HTTP handler)
// depends on; nothing outside it reaches into the lower-level codec and
// primitive packages directly.
package pipeline

import (
	"time"

	"github.com/redeaux-corp/docenc/internal/container"
	"github.com/redeaux-corp/docenc/internal/docerr"
	"github.com/redeaux-corp/docenc/internal/filetype"
	"github.com/redeaux-corp/docenc/internal/keybundle"
	"github.com/redeaux-corp/docenc/internal/primitives"
	"github.com/redeaux-corp/docenc/internal/transform"
)

// LZMAPreset is the compression preset used by step 1 of Encrypt.
const LZMAPreset = 6

// EncryptInput bundles everything Encrypt needs about the plaintext
// payload being sealed.
type EncryptInput struct {
	Plaintext []byte
	FileType  filetype.Tag
	Filename  string
}

// Encrypt runs the full encryption pipeline and returns the encoded
// artifact bytes. bundle must come from NewBundle; Encrypt does not
// generate key material itself.
func Encrypt(in EncryptInput, bundle *keybundle.KeyBundle) ([]byte, error) {
	if !filetype.Valid(in.FileType) {
		return nil, docerr.New(docerr.InvalidInput, "unsupported file-type tag")
	}

	originalSize := uint64(len(in.Plaintext))

	// Step 1: compress, keep only if strictly smaller.
	payload := in.Plaintext
	compressed := false
	if candidate, err := primitives.LZMACompress(in.Plaintext, LZMAPreset); err == nil && len(candidate) < len(payload) {
		payload = candidate
		compressed = true
	}
	compressedSize := uint64(len(payload))

	// Step 2: AES-GCM, AD = filename.
	aesSealed, err := primitives.AESGCMSeal(bundle.AESKey, bundle.AESIV, payload, []byte(in.Filename))
	if err != nil {
		return nil, err
	}
	aesCiphertext, aesTag, err := primitives.AESGCMSplit(aesSealed)
	if err != nil {
		return nil, err
	}

	// Step 3: ChaCha20-Poly1305, no AD.
	chachaOut, err := primitives.ChaCha20Poly1305Seal(bundle.ChaChaKey, bundle.ChaChaNonce, aesCiphertext)
	if err != nil {
		return nil, err
	}

	// Step 4: custom transform, keyed by the master key.
	xf := transform.NewKeyed(bundle.MasterKey, len(chachaOut))
	encryptedBody := xf.Forward(chachaOut)

	// Step 5: pack symmetric material and RSA-wrap it.
	packed, err := packSymmetric(bundle)
	if err != nil {
		return nil, err
	}
	wrappedKeys, err := primitives.RSAWrap(bundle.RSAPublicKey, packed)
	if err != nil {
		return nil, err
	}

	// Step 6: HMAC over body + metadata.
	tag := computeTag(bundle.HMACKey, encryptedBody, string(in.FileType), in.Filename, originalSize, compressedSize)

	flags := container.FlagMultiLayer | container.FlagRSAProtected |
		container.FlagIntegrityCheck | container.FlagMetadataEncrypted
	if compressed {
		flags |= container.FlagCompressed
	}

	c := &container.Container{
		VersionMajor:   container.VersionMajor,
		VersionMinor:   container.VersionMinor,
		Flags:          flags,
		Timestamp:      time.Now().UTC(),
		FileType:       string(in.FileType),
		Filename:       in.Filename,
		OriginalSize:   originalSize,
		CompressedSize: compressedSize,
		Salt:           bundle.Salt,
		AESTag:         aesTag,
		WrappedKeys:    wrappedKeys,
		Body:           encryptedBody,
		HMAC:           tag,
	}

	return container.Encode(c)
}
