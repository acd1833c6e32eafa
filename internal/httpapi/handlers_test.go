package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer() *Server {
	nullLog := log.New(io.Discard, "", 0)
	return NewServer(nullLog, nullLog)
}

func multipartEncryptRequest(t *testing.T, filename string, content []byte, password string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if password != "" {
		if err := w.WriteField("password", password); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/encrypt", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer()
	defer s.store.Stop()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("Status = %q, want ok", resp.Status)
	}
}

func TestHandleEncryptDecryptRoundTrip(t *testing.T) {
	s := newTestServer()
	defer s.store.Stop()

	plaintext := []byte("quarterly figures, confidential")
	req := multipartEncryptRequest(t, "figures.txt", plaintext, "a strong passphrase")
	rec := httptest.NewRecorder()
	s.handleEncrypt(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("encrypt status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var encResp encryptResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &encResp); err != nil {
		t.Fatalf("decoding encrypt response: %v", err)
	}
	if encResp.FileID == "" {
		t.Fatal("encrypt response missing file_id")
	}
	if encResp.GeneratedPassword != "" {
		t.Fatal("expected no generated password when one was supplied")
	}

	artifact, ok := s.store.Get(encResp.FileID)
	if !ok {
		t.Fatal("encrypted artifact not found in store")
	}

	var decBody bytes.Buffer
	mw := multipart.NewWriter(&decBody)
	fw, err := mw.CreateFormFile("file", "figures.enc")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write(artifact.Encrypted)
	kw, err := mw.CreateFormFile("key", "figures.key")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	kw.Write(artifact.KeyBundle)
	if err := mw.WriteField("password", "a strong passphrase"); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	decReq := httptest.NewRequest(http.MethodPost, "/api/decrypt", &decBody)
	decReq.Header.Set("Content-Type", mw.FormDataContentType())
	decRec := httptest.NewRecorder()
	s.handleDecrypt(decRec, decReq)

	if decRec.Code != http.StatusOK {
		t.Fatalf("decrypt status = %d, body = %s", decRec.Code, decRec.Body.String())
	}
	var decResp decryptResponse
	if err := json.Unmarshal(decRec.Body.Bytes(), &decResp); err != nil {
		t.Fatalf("decoding decrypt response: %v", err)
	}
	if decResp.OriginalSize != len(plaintext) {
		t.Fatalf("OriginalSize = %d, want %d", decResp.OriginalSize, len(plaintext))
	}
}

func TestHandleEncryptGeneratesPassphraseWhenNoneSupplied(t *testing.T) {
	s := newTestServer()
	defer s.store.Stop()

	req := multipartEncryptRequest(t, "notes.txt", []byte("hello"), "")
	rec := httptest.NewRecorder()
	s.handleEncrypt(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp encryptResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.GeneratedPassword == "" {
		t.Fatal("expected a generated password when none was supplied")
	}
}

func TestHandleEncryptRejectsUnsupportedExtension(t *testing.T) {
	s := newTestServer()
	defer s.store.Stop()

	req := multipartEncryptRequest(t, "payload.exe", []byte("data"), "pw")
	rec := httptest.NewRecorder()
	s.handleEncrypt(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleDownloadUnknownID(t *testing.T) {
	s := newTestServer()
	defer s.store.Stop()

	req := httptest.NewRequest(http.MethodGet, "/api/download/does-not-exist/encrypted", nil)
	rec := httptest.NewRecorder()
	s.handleDownload(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestParseDownloadPath(t *testing.T) {
	id, kind, ok := parseDownloadPath("/api/download/abc123/encrypted")
	if !ok || id != "abc123" || kind != "encrypted" {
		t.Fatalf("parseDownloadPath = (%q, %q, %v)", id, kind, ok)
	}
	if _, _, ok := parseDownloadPath("/api/download/"); ok {
		t.Fatal("parseDownloadPath accepted a path with no id/kind")
	}
}
