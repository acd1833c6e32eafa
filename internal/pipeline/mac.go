package pipeline

import (
	"bytes"
	"encoding/binary"

	"github.com/redeaux-corp/docenc/internal/primitives"
)

// tagInput builds the byte string HMAC-SHA512 covers: encrypted_body ||
// file_type || filename || u64-LE original_size || u64-LE
// compressed_size.
func tagInput(encryptedBody []byte, fileType, filename string, originalSize, compressedSize uint64) []byte {
	var buf bytes.Buffer
	buf.Write(encryptedBody)
	buf.WriteString(fileType)
	buf.WriteString(filename)
	var sizeBuf [8]byte
	binary.LittleEndian.PutUint64(sizeBuf[:], originalSize)
	buf.Write(sizeBuf[:])
	binary.LittleEndian.PutUint64(sizeBuf[:], compressedSize)
	buf.Write(sizeBuf[:])
	return buf.Bytes()
}

func computeTag(hmacKey, encryptedBody []byte, fileType, filename string, originalSize, compressedSize uint64) []byte {
	return primitives.HMACSHA512(hmacKey, tagInput(encryptedBody, fileType, filename, originalSize, compressedSize))
}
