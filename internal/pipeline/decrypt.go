package pipeline

import (
	"strconv"
	"strings"

	"github.com/redeaux-corp/docenc/internal/container"
	"github.com/redeaux-corp/docenc/internal/docerr"
	"github.com/redeaux-corp/docenc/internal/keybundle"
	"github.com/redeaux-corp/docenc/internal/primitives"
	"github.com/redeaux-corp/docenc/internal/transform"
)

// DecryptOutput is the restored payload and the metadata recovered
// alongside it.
type DecryptOutput struct {
	Plaintext []byte
	FileType  string
	Filename  string
}

// Decrypt runs the full decryption pipeline. It returns an
// IntegrityFailure-kind error for every authentication or consistency
// check without revealing which sub-check failed.
func Decrypt(artifact []byte, bundle *keybundle.KeyBundle) (*DecryptOutput, error) {
	// Step 1: parse container.
	c, err := container.Decode(artifact)
	if err != nil {
		return nil, err
	}

	// Step 2: version must match the bundle's declared version.
	if !versionMatches(bundle.Version, c.VersionMajor, c.VersionMinor) {
		return nil, docerr.New(docerr.VersionMismatch, "container version does not match key bundle version")
	}

	// Step 3: recompute and verify HMAC before any decryption work.
	expectedTag := computeTag(bundle.HMACKey, c.Body, c.FileType, c.Filename, c.OriginalSize, c.CompressedSize)
	if !primitives.ConstantTimeEqual(expectedTag, c.HMAC) {
		return nil, docerr.New(docerr.IntegrityFailure, "integrity check failed")
	}

	// Step 4: RSA-unwrap the packed symmetric material and confirm it
	// matches the loaded bundle (this is what detects a bundle/artifact
	// mismatch).
	packedPlain, err := primitives.RSAUnwrap(bundle.RSAPrivateKey, c.WrappedKeys)
	if err != nil {
		return nil, docerr.New(docerr.IntegrityFailure, "integrity check failed")
	}
	packed, err := unpackSymmetric(packedPlain)
	if err != nil {
		return nil, docerr.New(docerr.IntegrityFailure, "integrity check failed")
	}
	if !symmetricMatches(packed, bundle) {
		return nil, docerr.New(docerr.IntegrityFailure, "integrity check failed")
	}

	// Step 5: reverse the custom transform.
	xf := transform.NewKeyed(bundle.MasterKey, len(c.Body))
	chachaOut := xf.Reverse(c.Body)

	// Step 6: ChaCha20-Poly1305 decrypt.
	aesCiphertext, err := primitives.ChaCha20Poly1305Open(bundle.ChaChaKey, bundle.ChaChaNonce, chachaOut)
	if err != nil {
		return nil, docerr.New(docerr.IntegrityFailure, "integrity check failed")
	}

	// Step 7: AES-GCM decrypt, AD = filename.
	sealed := append(append([]byte{}, aesCiphertext...), c.AESTag...)
	payload, err := primitives.AESGCMOpen(bundle.AESKey, bundle.AESIV, sealed, []byte(c.Filename))
	if err != nil {
		return nil, docerr.New(docerr.IntegrityFailure, "integrity check failed")
	}

	// Step 8: decompress if flagged.
	plaintext := payload
	if c.Compressed() {
		plaintext, err = primitives.LZMADecompress(payload)
		if err != nil {
			return nil, docerr.New(docerr.IntegrityFailure, "integrity check failed")
		}
	}

	// Step 9: size must match what encryption recorded.
	if uint64(len(plaintext)) != c.OriginalSize {
		return nil, docerr.New(docerr.IntegrityFailure, "integrity check failed")
	}

	return &DecryptOutput{
		Plaintext: plaintext,
		FileType:  c.FileType,
		Filename:  c.Filename,
	}, nil
}

func symmetricMatches(p *packedSymmetric, b *keybundle.KeyBundle) bool {
	return primitives.ConstantTimeEqual(p.AESKey, b.AESKey) &&
		primitives.ConstantTimeEqual(p.ChaChaKey, b.ChaChaKey) &&
		primitives.ConstantTimeEqual(p.HMACKey, b.HMACKey) &&
		primitives.ConstantTimeEqual(p.AESIV, b.AESIV) &&
		primitives.ConstantTimeEqual(p.ChaChaNonce, b.ChaChaNonce)
}

// versionMatches compares a key bundle's semantic version string
// against a container's major/minor version bytes, comparing only the
// major and minor components.
func versionMatches(bundleVersion string, major, minor byte) bool {
	parts := strings.SplitN(bundleVersion, ".", 3)
	if len(parts) < 2 {
		return false
	}
	bMajor, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	bMinor, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return byte(bMajor) == major && byte(bMinor) == minor
}
