// Package docerr defines the typed error kinds surfaced by every layer of
// the document-encryption core, from primitive wrappers up through the
// CLI and HTTP collaborators.
package docerr

import "fmt"

// Kind classifies an error so callers can branch on failure category
// without parsing message text.
type Kind string

const (
	// InvalidInput covers unsupported extensions, empty files, oversize
	// payloads, and malformed passphrases.
	InvalidInput Kind = "invalid_input"

	// InvalidFormat covers magic mismatch, truncated containers, and
	// length fields that exceed the remaining buffer.
	InvalidFormat Kind = "invalid_format"

	// VersionMismatch covers a container version that does not match
	// the version recorded in the key bundle used to decrypt it.
	VersionMismatch Kind = "version_mismatch"

	// IntegrityFailure covers HMAC mismatch, GCM/Poly1305 tag failure,
	// RSA-OAEP failure, post-decompress size mismatch, and symmetric-key
	// mismatch after RSA unwrap. The caller-visible message never
	// distinguishes which sub-check failed.
	IntegrityFailure Kind = "integrity_failure"

	// KeyError covers a wrong passphrase against a protected bundle or
	// a missing RSA key.
	KeyError Kind = "key_error"

	// IOError covers underlying read/write failures.
	IOError Kind = "io_error"
)

// Error is the typed error value returned by every package in this
// module. It wraps an underlying cause (kept for logs) while exposing a
// stable Kind and a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error that carries an underlying cause for logging,
// without leaking the cause's text into Error() beyond what Message
// already says is safe to reveal.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is a *Error of the given kind. It does not
// require err to be exactly *Error; it unwraps like errors.Is.
func Is(err error, kind Kind) bool {
	for err != nil {
		if de, ok := err.(*Error); ok {
			if de.Kind == kind {
				return true
			}
			err = de.Cause
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
