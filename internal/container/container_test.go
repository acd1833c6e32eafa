package container

import (
	"bytes"
	"testing"
	"time"
)

func sampleContainer() *Container {
	return &Container{
		VersionMajor:   VersionMajor,
		VersionMinor:   VersionMinor,
		Flags:          FlagCompressed | FlagIntegrityCheck,
		Timestamp:      time.Unix(1700000000, 0).UTC(),
		FileType:       "pdf",
		Filename:       "report.pdf",
		OriginalSize:   4096,
		CompressedSize: 2048,
		Salt:           bytes.Repeat([]byte{0x01}, 32),
		AESTag:         bytes.Repeat([]byte{0x02}, 16),
		WrappedKeys:    bytes.Repeat([]byte{0x03}, 512),
		Body:           []byte("ciphertext goes here"),
		HMAC:           bytes.Repeat([]byte{0x04}, HMACSize),
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := sampleContainer()
	wire, err := Encode(c)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := []byte{0x44, 0x4F, 0x43, 0x45, 0x4E, 0x43}
	if !bytes.Equal(wire[:6], want) {
		t.Fatalf("magic bytes = % X, want % X", wire[:6], want)
	}

	got, err := Decode(wire)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.VersionMajor != c.VersionMajor || got.VersionMinor != c.VersionMinor {
		t.Fatal("version mismatch after round trip")
	}
	if got.Flags != c.Flags {
		t.Fatalf("Flags = %x, want %x", got.Flags, c.Flags)
	}
	if !got.Compressed() {
		t.Fatal("Compressed() = false, want true")
	}
	if got.FileType != c.FileType || got.Filename != c.Filename {
		t.Fatal("FileType/Filename mismatch after round trip")
	}
	if got.OriginalSize != c.OriginalSize || got.CompressedSize != c.CompressedSize {
		t.Fatal("size fields mismatch after round trip")
	}
	if !bytes.Equal(got.Salt, c.Salt) || !bytes.Equal(got.AESTag, c.AESTag) || !bytes.Equal(got.WrappedKeys, c.WrappedKeys) {
		t.Fatal("crypto-info fields mismatch after round trip")
	}
	if !bytes.Equal(got.Body, c.Body) {
		t.Fatal("Body mismatch after round trip")
	}
	if !bytes.Equal(got.HMAC, c.HMAC) {
		t.Fatal("HMAC mismatch after round trip")
	}
	if !got.Timestamp.Equal(c.Timestamp) {
		t.Fatalf("Timestamp = %v, want %v", got.Timestamp, c.Timestamp)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	c := sampleContainer()
	wire, err := Encode(c)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	wire[0] ^= 0xFF
	if _, err := Decode(wire); err == nil {
		t.Fatal("Decode accepted a corrupted magic header")
	}
}

func TestDecodeRejectsBadHeaderSeparator(t *testing.T) {
	c := sampleContainer()
	wire, err := Encode(c)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	sepOffset := 6 + 1 + 1 + 4 + 8
	wire[sepOffset] ^= 0xFF
	if _, err := Decode(wire); err == nil {
		t.Fatal("Decode accepted a corrupted section separator")
	}
}

func TestDecodeRejectsTruncatedBuffer(t *testing.T) {
	c := sampleContainer()
	wire, err := Encode(c)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(wire[:len(wire)-10]); err == nil {
		t.Fatal("Decode accepted a truncated buffer")
	}
}

func TestDecodeRejectsTamperedBody(t *testing.T) {
	c := sampleContainer()
	wire, err := Encode(c)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	idx := bytes.Index(wire, c.Body)
	if idx < 0 {
		t.Fatal("could not locate body in wire encoding")
	}
	tampered := append([]byte{}, wire...)
	tampered[idx] ^= 0xFF

	got, err := Decode(tampered)
	if err != nil {
		t.Fatalf("Decode should still parse structurally with a flipped body byte: %v", err)
	}
	if bytes.Equal(got.Body, c.Body) {
		t.Fatal("expected tampered body to differ from original")
	}
}

func TestDecodeRejectsTamperedHMAC(t *testing.T) {
	c := sampleContainer()
	wire, err := Encode(c)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	tampered := append([]byte{}, wire...)
	tampered[len(tampered)-1] ^= 0xFF

	got, err := Decode(tampered)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if bytes.Equal(got.HMAC, c.HMAC) {
		t.Fatal("expected tampered trailing HMAC to differ from original")
	}
}

func TestEncodeRejectsWrongHMACSize(t *testing.T) {
	c := sampleContainer()
	c.HMAC = c.HMAC[:HMACSize-1]
	if _, err := Encode(c); err == nil {
		t.Fatal("Encode accepted a short HMAC")
	}
}
