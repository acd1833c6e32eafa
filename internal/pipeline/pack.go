package pipeline

import (
	"bytes"
	"encoding/binary"

	"github.com/redeaux-corp/docenc/internal/docerr"
	"github.com/redeaux-corp/docenc/internal/keybundle"
)

// packSymmetric serializes the symmetric material RSA wraps: a sequence
// of (u16 LE length, bytes) entries in the fixed order aes_key,
// chacha_key, hmac_key, aes_iv, chacha_nonce.
func packSymmetric(b *keybundle.KeyBundle) ([]byte, error) {
	var buf bytes.Buffer
	for _, field := range [][]byte{b.AESKey, b.ChaChaKey, b.HMACKey, b.AESIV, b.ChaChaNonce} {
		if len(field) > 0xFFFF {
			return nil, docerr.New(docerr.InvalidInput, "packed symmetric field exceeds u16 maximum")
		}
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(field)))
		buf.Write(lenBuf[:])
		buf.Write(field)
	}
	return buf.Bytes(), nil
}

// unpackSymmetric is the inverse of packSymmetric.
type packedSymmetric struct {
	AESKey      []byte
	ChaChaKey   []byte
	HMACKey     []byte
	AESIV       []byte
	ChaChaNonce []byte
}

func unpackSymmetric(data []byte) (*packedSymmetric, error) {
	fields := make([][]byte, 0, 5)
	pos := 0
	for i := 0; i < 5; i++ {
		if pos+2 > len(data) {
			return nil, docerr.New(docerr.InvalidFormat, "truncated packed symmetric field length")
		}
		n := int(binary.LittleEndian.Uint16(data[pos : pos+2]))
		pos += 2
		if pos+n > len(data) {
			return nil, docerr.New(docerr.InvalidFormat, "packed symmetric field exceeds remaining buffer")
		}
		fields = append(fields, data[pos:pos+n])
		pos += n
	}
	return &packedSymmetric{
		AESKey:      fields[0],
		ChaChaKey:   fields[1],
		HMACKey:     fields[2],
		AESIV:       fields[3],
		ChaChaNonce: fields[4],
	}, nil
}
