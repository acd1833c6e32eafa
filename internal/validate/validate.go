// Package validate holds the input checks collaborators must run before
// handing bytes to the pipeline: supported extension, size bounds, and
// passphrase complexity, plus the auto-generated passphrase used when a
// caller supplies none.
package validate

import (
	"crypto/rand"
	"math/big"

	"github.com/redeaux-corp/docenc/internal/docerr"
	"github.com/redeaux-corp/docenc/internal/filetype"
)

// MaxFileSize is the largest plaintext payload this system accepts.
const MaxFileSize = 500 * 1024 * 1024 // 500 MiB

// AutoPassphraseLength is the length of an auto-generated passphrase.
const AutoPassphraseLength = 32

const autoPassphraseAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*()_+-=[]{}|;:,.<>?"

// Filename checks that filename is non-empty and has a supported
// extension.
func Filename(filename string) (filetype.Tag, error) {
	if filename == "" {
		return "", docerr.New(docerr.InvalidInput, "filename must not be empty")
	}
	tag, ok := filetype.FromFilename(filename)
	if !ok {
		return "", docerr.New(docerr.InvalidInput, "unsupported file extension")
	}
	return tag, nil
}

// PlaintextSize checks that data is non-empty and does not exceed
// MaxFileSize.
func PlaintextSize(data []byte) error {
	if len(data) == 0 {
		return docerr.New(docerr.InvalidInput, "input file is empty")
	}
	if len(data) > MaxFileSize {
		return docerr.New(docerr.InvalidInput, "input file exceeds maximum size of 500 MiB")
	}
	return nil
}

// Passphrase checks a user-supplied passphrase is not malformed: it
// must be valid UTF-8 (Go strings always are) and non-empty once
// trimmed is the caller's concern; here we only reject the null byte,
// which would silently truncate in some C-derived consumers of the
// textual key bundle form.
func Passphrase(passphrase string) error {
	for i := 0; i < len(passphrase); i++ {
		if passphrase[i] == 0 {
			return docerr.New(docerr.InvalidInput, "passphrase must not contain a null byte")
		}
	}
	return nil
}

// AutoPassphrase generates a random passphrase from the alphabet
// [A-Za-z0-9!@#$%^&*()_+-=[]{}|;:,.<>?], used whenever a caller
// supplies an empty passphrase.
func AutoPassphrase() (string, error) {
	out := make([]byte, AutoPassphraseLength)
	alphabetLen := big.NewInt(int64(len(autoPassphraseAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", docerr.Wrap(docerr.IOError, "generating random passphrase", err)
		}
		out[i] = autoPassphraseAlphabet[n.Int64()]
	}
	return string(out), nil
}
