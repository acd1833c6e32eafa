package httpapi

import (
	"testing"
	"time"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := NewStore(time.Hour)
	defer s.Stop()

	s.Put(&Artifact{ID: "abc", Encrypted: []byte("ciphertext")})

	got, ok := s.Get("abc")
	if !ok {
		t.Fatal("Get did not find a just-Put artifact")
	}
	if string(got.Encrypted) != "ciphertext" {
		t.Fatalf("Encrypted = %q", got.Encrypted)
	}
}

func TestGetMissingReturnsFalse(t *testing.T) {
	s := NewStore(time.Hour)
	defer s.Stop()

	if _, ok := s.Get("nonexistent"); ok {
		t.Fatal("Get reported an artifact that was never Put")
	}
}

func TestGetExpiredReturnsFalse(t *testing.T) {
	s := NewStore(time.Hour)
	defer s.Stop()

	frozen := time.Now()
	s.now = func() time.Time { return frozen }
	s.Put(&Artifact{ID: "xyz"})

	s.now = func() time.Time { return frozen.Add(ArtifactTTL + time.Minute) }
	if _, ok := s.Get("xyz"); ok {
		t.Fatal("Get returned an artifact past its TTL")
	}
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	s := NewStore(time.Hour)
	defer s.Stop()

	frozen := time.Now()
	s.now = func() time.Time { return frozen }
	s.Put(&Artifact{ID: "one"})

	s.now = func() time.Time { return frozen.Add(ArtifactTTL + time.Minute) }
	s.sweep()

	s.mu.RLock()
	_, stillPresent := s.artifacts["one"]
	s.mu.RUnlock()
	if stillPresent {
		t.Fatal("sweep left an expired artifact in the map")
	}
}
