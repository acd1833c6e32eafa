package transform

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestForwardReverseBijective(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		[]byte("a"),
		[]byte("Hello, world!"),
		bytes.Repeat([]byte{0xAB}, 64),
		bytes.Repeat([]byte{0x00}, 1024),
	}
	key := []byte("a fixed test key for the transform")

	for _, data := range cases {
		xf := NewKeyed(key, len(data))
		forward := xf.Forward(data)
		back := xf.Reverse(forward)
		if !bytes.Equal(back, data) {
			t.Fatalf("Reverse(Forward(data)) != data for len=%d", len(data))
		}
	}
}

func TestForwardReverseBijectiveRandom(t *testing.T) {
	for trial := 0; trial < 20; trial++ {
		n := trial*37 + 1
		data := make([]byte, n)
		if _, err := rand.Read(data); err != nil {
			t.Fatalf("rand.Read: %v", err)
		}
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			t.Fatalf("rand.Read key: %v", err)
		}

		xf := NewKeyed(key, len(data))
		forward := xf.Forward(data)
		if bytes.Equal(forward, data) && n > 8 {
			t.Fatalf("forward transform left data unchanged for n=%d", n)
		}
		back := xf.Reverse(forward)
		if !bytes.Equal(back, data) {
			t.Fatalf("Reverse(Forward(data)) != data for n=%d", n)
		}
	}
}

func TestKeyedIsDeterministic(t *testing.T) {
	key := []byte("deterministic-key")
	data := []byte("some data to transform deterministically")

	a := NewKeyed(key, len(data)).Forward(data)
	b := NewKeyed(key, len(data)).Forward(data)
	if !bytes.Equal(a, b) {
		t.Fatal("Forward is not deterministic for identical key and length")
	}
}

func TestDifferentKeysProduceDifferentOutput(t *testing.T) {
	data := bytes.Repeat([]byte{0x55}, 128)
	a := NewKeyed([]byte("key-one"), len(data)).Forward(data)
	b := NewKeyed([]byte("key-two"), len(data)).Forward(data)
	if bytes.Equal(a, b) {
		t.Fatal("different keys produced identical transform output")
	}
}
