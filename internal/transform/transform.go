// Package transform implements the 16-round keyed substitution +
// permutation + XOR layer applied as the innermost wrap of the
// encryption pipeline. It is a reversible obfuscation layer, not
// additional cryptographic strength (AES-GCM and ChaCha20-Poly1305
// upstream already provide confidentiality and authenticity). The S-boxes
// and permutation are computed from the key at construction time rather
// than drawn from static tables.
package transform

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
)

// Rounds is the fixed round count.
const Rounds = 16

// NumSBoxes is the number of parallel S-boxes the substitution step
// cycles through.
const NumSBoxes = 8

// Keyed is a prepared transform: the S-boxes, their inverses, and the
// permutation vector, all derived once from a key and (for the
// permutation) a buffer length, then reused across every round.
type Keyed struct {
	sboxes        [NumSBoxes][256]byte
	inverseSboxes [NumSBoxes][256]byte
	perm          []int
	key           []byte
	n             int
}

// NewKeyed prepares a transform for a buffer of length n under key.
func NewKeyed(key []byte, n int) *Keyed {
	k := &Keyed{key: key, n: n}
	k.sboxes = buildSBoxes(key)
	for i, sbox := range k.sboxes {
		k.inverseSboxes[i] = invertSBox(sbox)
	}
	k.perm = buildPermutation(key, n)
	return k
}

// buildSBoxes derives the 8 S-boxes from key. For box i, the seed is
// SHA256(key || i as u32 BE); the box is a Fisher-Yates shuffle of
// [0..255] driven by that seed, walking j from 255 down to 1 and picking
// k = seed[j mod len(seed)] mod (j+1).
//
// The digest is 32 bytes (SHA-256); indices are taken modulo that
// length, cycling through the digest as j walks down from 255.
func buildSBoxes(key []byte) [NumSBoxes][256]byte {
	var boxes [NumSBoxes][256]byte
	for i := 0; i < NumSBoxes; i++ {
		seedInput := make([]byte, len(key)+4)
		copy(seedInput, key)
		binary.BigEndian.PutUint32(seedInput[len(key):], uint32(i))
		seed := sha256.Sum256(seedInput)

		var box [256]byte
		for v := 0; v < 256; v++ {
			box[v] = byte(v)
		}
		for j := 255; j >= 1; j-- {
			k := int(seed[j%len(seed)]) % (j + 1)
			box[j], box[k] = box[k], box[j]
		}
		boxes[i] = box
	}
	return boxes
}

func invertSBox(box [256]byte) [256]byte {
	var inv [256]byte
	for i, v := range box {
		inv[v] = byte(i)
	}
	return inv
}

// buildPermutation derives an index permutation over [0, n) from
// H = SHA512(key || "PERMUTATION"), walking j from n-1 down to 1 and
// picking k = (first 4 bytes of SHA256(H || j as u64 BE)) mod (j+1).
func buildPermutation(key []byte, n int) []int {
	hInput := make([]byte, len(key)+len("PERMUTATION"))
	copy(hInput, key)
	copy(hInput[len(key):], "PERMUTATION")
	h := sha512.Sum512(hInput)

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for j := n - 1; j >= 1; j-- {
		buf := make([]byte, len(h)+8)
		copy(buf, h[:])
		binary.BigEndian.PutUint64(buf[len(h):], uint64(j))
		digest := sha256.Sum256(buf)
		k := int(binary.BigEndian.Uint32(digest[:4])) % (j + 1)
		indices[j], indices[k] = indices[k], indices[j]
	}
	return indices
}

// roundKey generates the XOR key for round r over length bytes. Let
// M = SHA512(key || r as u32 BE); the key material is the concatenation
// of SHA512(M || c as u32 BE) for c = 0, 1, ..., truncated to length.
func roundKey(key []byte, r, length int) []byte {
	mInput := make([]byte, len(key)+4)
	copy(mInput, key)
	binary.BigEndian.PutUint32(mInput[len(key):], uint32(r))
	m := sha512.Sum512(mInput)

	out := make([]byte, 0, length+sha512.Size)
	for c := uint32(0); len(out) < length; c++ {
		chunkInput := make([]byte, len(m)+4)
		copy(chunkInput, m[:])
		binary.BigEndian.PutUint32(chunkInput[len(m):], c)
		chunk := sha512.Sum512(chunkInput)
		out = append(out, chunk[:]...)
	}
	return out[:length]
}

// Forward applies the 16-round forward transform to data in place and
// also returns it for chaining.
func (k *Keyed) Forward(data []byte) []byte {
	buf := make([]byte, len(data))
	copy(buf, data)

	for r := 0; r < Rounds; r++ {
		// Substitute.
		for i := range buf {
			box := (i + r) % NumSBoxes
			buf[i] = k.sboxes[box][buf[i]]
		}
		// Permute.
		permuted := make([]byte, len(buf))
		for i := range buf {
			permuted[k.perm[i]] = buf[i]
		}
		buf = permuted
		// XOR.
		rk := roundKey(k.key, r, len(buf))
		for i := range buf {
			buf[i] ^= rk[i]
		}
	}
	return buf
}

// Reverse undoes Forward: rounds execute from 15 down to 0, each
// reversing XOR, then inverse permutation, then inverse substitution.
func (k *Keyed) Reverse(data []byte) []byte {
	buf := make([]byte, len(data))
	copy(buf, data)

	for r := Rounds - 1; r >= 0; r-- {
		// Undo XOR.
		rk := roundKey(k.key, r, len(buf))
		for i := range buf {
			buf[i] ^= rk[i]
		}
		// Undo permutation.
		unpermuted := make([]byte, len(buf))
		for i := range buf {
			unpermuted[i] = buf[k.perm[i]]
		}
		buf = unpermuted
		// Undo substitution.
		for i := range buf {
			box := (i + r) % NumSBoxes
			buf[i] = k.inverseSboxes[box][buf[i]]
		}
	}
	return buf
}
