package docerr

import (
	"errors"
	"testing"
)

func TestErrorFormatsWithAndWithoutCause(t *testing.T) {
	bare := New(InvalidInput, "empty file")
	if bare.Error() != "invalid_input: empty file" {
		t.Fatalf("Error() = %q", bare.Error())
	}

	wrapped := Wrap(IOError, "reading artifact", errors.New("disk full"))
	want := "io_error: reading artifact: disk full"
	if wrapped.Error() != want {
		t.Fatalf("Error() = %q, want %q", wrapped.Error(), want)
	}
}

func TestUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("underlying")
	wrapped := Wrap(KeyError, "loading bundle", cause)
	if wrapped.Unwrap() != cause {
		t.Fatal("Unwrap did not return the wrapped cause")
	}
}

func TestIsWalksWrappedChain(t *testing.T) {
	inner := New(IntegrityFailure, "tag mismatch")
	outer := Wrap(KeyError, "bundle load failed", inner)

	if !Is(outer, KeyError) {
		t.Fatal("Is(outer, KeyError) = false, want true")
	}
	if !Is(outer, IntegrityFailure) {
		t.Fatal("Is(outer, IntegrityFailure) = false, want true")
	}
	if Is(outer, VersionMismatch) {
		t.Fatal("Is(outer, VersionMismatch) = true, want false")
	}
}
