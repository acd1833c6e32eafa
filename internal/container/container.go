// Package container encodes and decodes the binary artifact layout: a
// versioned, section-delimited format with length-prefixed fields, a
// magic header, a flag set, and a trailing HMAC-SHA512 tag. The format
// is not streamable; Encode and Decode operate on full in-memory
// buffers.
package container

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/redeaux-corp/docenc/internal/docerr"
)

// Magic is the fixed 6-byte header that opens every artifact.
var Magic = [6]byte{0x44, 0x4F, 0x43, 0x45, 0x4E, 0x43} // "DOCENC"

// VersionMajor, VersionMinor are the format version this codec writes
// and the only version it accepts on decode.
const (
	VersionMajor byte = 0x01
	VersionMinor byte = 0x00
)

// Section separators, consumed positionally rather than searched for.
var (
	SepHeader  = [4]byte{0xFF, 0xFE, 0xFD, 0xFC}
	SepSection = [4]byte{0xFB, 0xFA, 0xF9, 0xF8}
)

// Flag bits. Only Compressed affects decode logic; the rest are
// advisory and always set by Encode.
const (
	FlagCompressed        uint32 = 1 << 0
	FlagMultiLayer        uint32 = 1 << 1
	FlagRSAProtected      uint32 = 1 << 2
	FlagIntegrityCheck    uint32 = 1 << 3
	FlagMetadataEncrypted uint32 = 1 << 4
)

// HMACSize is the fixed trailing tag length; it carries no length
// prefix in the wire format.
const HMACSize = 64

// Container is the fully parsed logical form of one encrypted artifact.
type Container struct {
	VersionMajor byte
	VersionMinor byte
	Flags        uint32
	Timestamp    time.Time

	FileType       string
	Filename       string
	OriginalSize   uint64
	CompressedSize uint64

	Salt         []byte
	AESTag       []byte
	WrappedKeys  []byte

	Body []byte

	HMAC []byte
}

// Compressed reports whether the Compressed flag bit is set.
func (c *Container) Compressed() bool {
	return c.Flags&FlagCompressed != 0
}

// Encode writes c to its binary wire format.
func Encode(c *Container) ([]byte, error) {
	var buf bytes.Buffer

	buf.Write(Magic[:])
	buf.WriteByte(c.VersionMajor)
	buf.WriteByte(c.VersionMinor)
	writeU32(&buf, c.Flags)
	writeU64(&buf, uint64(c.Timestamp.Unix()))
	buf.Write(SepHeader[:])

	if err := writeLPString(&buf, c.FileType); err != nil {
		return nil, err
	}
	if err := writeLPString(&buf, c.Filename); err != nil {
		return nil, err
	}
	writeU64(&buf, c.OriginalSize)
	writeU64(&buf, c.CompressedSize)
	buf.Write(SepSection[:])

	if err := writeLPBytes(&buf, c.Salt); err != nil {
		return nil, err
	}
	if err := writeLPBytes(&buf, c.AESTag); err != nil {
		return nil, err
	}
	if err := writeLPBytes(&buf, c.WrappedKeys); err != nil {
		return nil, err
	}
	buf.Write(SepSection[:])

	writeU64(&buf, uint64(len(c.Body)))
	buf.Write(c.Body)
	buf.Write(SepSection[:])

	if len(c.HMAC) != HMACSize {
		return nil, docerr.New(docerr.InvalidInput, "HMAC must be exactly 64 bytes")
	}
	buf.Write(c.HMAC)

	return buf.Bytes(), nil
}

// Decode parses the binary wire format into a Container. It validates
// the magic header and every length-prefixed field stays within the
// remaining buffer, but does not itself verify the HMAC or perform any
// cryptographic work. That is the decryption pipeline's job, and must
// happen before any key material derived from this Container is used.
func Decode(data []byte) (*Container, error) {
	r := &reader{buf: data}

	magic, err := r.take(6)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, Magic[:]) {
		return nil, docerr.New(docerr.InvalidFormat, "magic header mismatch")
	}

	versionMajor, err := r.byte()
	if err != nil {
		return nil, err
	}
	versionMinor, err := r.byte()
	if err != nil {
		return nil, err
	}
	flags, err := r.u32()
	if err != nil {
		return nil, err
	}
	timestamp, err := r.u64()
	if err != nil {
		return nil, err
	}
	if err := r.expect(SepHeader[:]); err != nil {
		return nil, err
	}

	fileType, err := r.lpString()
	if err != nil {
		return nil, err
	}
	filename, err := r.lpString()
	if err != nil {
		return nil, err
	}
	originalSize, err := r.u64()
	if err != nil {
		return nil, err
	}
	compressedSize, err := r.u64()
	if err != nil {
		return nil, err
	}
	if err := r.expect(SepSection[:]); err != nil {
		return nil, err
	}

	salt, err := r.lpBytes()
	if err != nil {
		return nil, err
	}
	aesTag, err := r.lpBytes()
	if err != nil {
		return nil, err
	}
	wrappedKeys, err := r.lpBytes()
	if err != nil {
		return nil, err
	}
	if err := r.expect(SepSection[:]); err != nil {
		return nil, err
	}

	bodyLen, err := r.u64()
	if err != nil {
		return nil, err
	}
	body, err := r.take(int(bodyLen))
	if err != nil {
		return nil, err
	}
	if err := r.expect(SepSection[:]); err != nil {
		return nil, err
	}

	hmacTag, err := r.take(HMACSize)
	if err != nil {
		return nil, err
	}

	return &Container{
		VersionMajor:   versionMajor,
		VersionMinor:   versionMinor,
		Flags:          flags,
		Timestamp:      time.Unix(int64(timestamp), 0).UTC(),
		FileType:       fileType,
		Filename:       filename,
		OriginalSize:   originalSize,
		CompressedSize: compressedSize,
		Salt:           salt,
		AESTag:         aesTag,
		WrappedKeys:    wrappedKeys,
		Body:           body,
		HMAC:           hmacTag,
	}, nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeLPString(buf *bytes.Buffer, s string) error {
	return writeLPBytes(buf, []byte(s))
}

func writeLPBytes(buf *bytes.Buffer, b []byte) error {
	if len(b) > 0xFFFF {
		return docerr.New(docerr.InvalidInput, "length-prefixed field exceeds u16 maximum")
	}
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(b)))
	buf.Write(lenBuf[:])
	buf.Write(b)
	return nil
}

// reader walks data positionally, validating every advance against the
// remaining buffer length before it happens.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, docerr.New(docerr.InvalidFormat, "truncated container: field exceeds remaining buffer")
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *reader) byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) lpBytes() ([]byte, error) {
	n, err := r.u16()
	if err != nil {
		return nil, err
	}
	return r.take(int(n))
}

func (r *reader) lpString() (string, error) {
	b, err := r.lpBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) expect(sep []byte) error {
	got, err := r.take(len(sep))
	if err != nil {
		return err
	}
	if !bytes.Equal(got, sep) {
		return docerr.New(docerr.InvalidFormat, "section separator mismatch")
	}
	return nil
}
