package httpapi

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/redeaux-corp/docenc/internal/docerr"
	"github.com/redeaux-corp/docenc/internal/kdf"
	"github.com/redeaux-corp/docenc/internal/keybundle"
	"github.com/redeaux-corp/docenc/internal/pipeline"
	"github.com/redeaux-corp/docenc/internal/primitives"
	"github.com/redeaux-corp/docenc/internal/validate"
)

// maxUploadBytes bounds the multipart form the server will parse into
// memory before spilling to temp files; actual payload size is still
// bounded by validate.MaxFileSize.
const maxUploadBytes = 32 << 20

// Server wires the HTTP surface to a Store and a pair of loggers: an
// access log for completed requests and an error log for failures,
// scoped per Server instance rather than package-level globals.
type Server struct {
	store     *Store
	accessLog *log.Logger
	errorLog  *log.Logger
	startedAt time.Time
}

// NewServer constructs a Server with a fresh Store.
func NewServer(accessLog, errorLog *log.Logger) *Server {
	return &Server{
		store:     NewStore(time.Hour),
		accessLog: accessLog,
		errorLog:  errorLog,
		startedAt: time.Now(),
	}
}

// Routes registers the HTTP surface on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/encrypt", s.handleEncrypt)
	mux.HandleFunc("/api/decrypt", s.handleDecrypt)
	mux.HandleFunc("/api/download/", s.handleDownload)
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	UptimeMs  int64  `json:"uptime_ms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		UptimeMs:  time.Since(s.startedAt).Milliseconds(),
	})
}

type encryptResponse struct {
	FileID            string `json:"file_id"`
	OriginalSize      int    `json:"original_size"`
	EncryptedSize     int    `json:"encrypted_size"`
	GeneratedPassword string `json:"generated_password,omitempty"`
}

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	plaintext, err := io.ReadAll(file)
	if err != nil {
		s.errorLog.Printf("reading upload: %v", err)
		writeError(w, http.StatusInternalServerError, "reading upload failed")
		return
	}
	if err := validate.PlaintextSize(plaintext); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tag, err := validate.Filename(header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	password := r.FormValue("password")
	generated := ""
	if password == "" {
		generated, err = validate.AutoPassphrase()
		if err != nil {
			s.errorLog.Printf("generating passphrase: %v", err)
			writeError(w, http.StatusInternalServerError, "generating passphrase failed")
			return
		}
		password = generated
	}

	bundle, err := pipeline.NewBundle(password, kdf.DefaultIterations)
	if err != nil {
		s.errorLog.Printf("deriving key bundle: %v", err)
		writeError(w, http.StatusInternalServerError, "key derivation failed")
		return
	}
	artifact, err := pipeline.Encrypt(pipeline.EncryptInput{
		Plaintext: plaintext,
		FileType:  tag,
		Filename:  header.Filename,
	}, bundle)
	if err != nil {
		s.errorLog.Printf("encrypting: %v", err)
		writeError(w, http.StatusInternalServerError, "encryption failed")
		return
	}
	keyBytes, err := keybundle.Save(bundle, password)
	if err != nil {
		s.errorLog.Printf("saving key bundle: %v", err)
		writeError(w, http.StatusInternalServerError, "key bundle serialization failed")
		return
	}

	id := newFileID(artifact)
	s.store.Put(&Artifact{
		ID:        id,
		Encrypted: artifact,
		KeyBundle: keyBytes,
		FileType:  string(tag),
		Filename:  header.Filename,
		Password:  password,
	})

	s.accessLog.Printf("encrypt file_id=%s bytes=%d", id, len(plaintext))
	writeJSON(w, http.StatusOK, encryptResponse{
		FileID:            id,
		OriginalSize:      len(plaintext),
		EncryptedSize:     len(artifact),
		GeneratedPassword: generated,
	})
}

type decryptResponse struct {
	FileType     string `json:"file_type"`
	Filename     string `json:"filename"`
	OriginalSize int    `json:"original_size"`
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	encFile, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer encFile.Close()
	keyFile, _, err := r.FormFile("key")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing key field")
		return
	}
	defer keyFile.Close()

	artifact, err := io.ReadAll(encFile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reading uploaded artifact failed")
		return
	}
	keyBytes, err := io.ReadAll(keyFile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reading uploaded key bundle failed")
		return
	}

	password := r.FormValue("password")
	bundle, err := keybundle.Load(keyBytes, password)
	if err != nil {
		writeTypedError(w, err)
		return
	}

	result, err := pipeline.Decrypt(artifact, bundle)
	if err != nil {
		writeTypedError(w, err)
		return
	}

	id := newFileID(artifact)
	s.store.Put(&Artifact{
		ID:        id,
		Encrypted: artifact,
		KeyBundle: keyBytes,
		Decrypted: result.Plaintext,
		FileType:  result.FileType,
		Filename:  result.Filename,
	})

	s.accessLog.Printf("decrypt file_id=%s bytes=%d", id, len(result.Plaintext))
	writeJSON(w, http.StatusOK, decryptResponse{
		FileType:     result.FileType,
		Filename:     result.Filename,
		OriginalSize: len(result.Plaintext),
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, kind, ok := parseDownloadPath(r.URL.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	a, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "artifact not found or expired")
		return
	}

	var payload []byte
	switch kind {
	case "encrypted":
		payload = a.Encrypted
	case "key":
		payload = a.KeyBundle
	case "decrypted":
		payload = a.Decrypted
	default:
		writeError(w, http.StatusNotFound, "unknown artifact kind")
		return
	}
	if payload == nil {
		writeError(w, http.StatusNotFound, "artifact kind not available")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+"."+kind))
	w.Write(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message, Timestamp: time.Now().UTC().Format(time.RFC3339)})
}

// writeTypedError maps a docerr.Kind to an HTTP status, without
// revealing which integrity sub-check failed beyond the single message
// the core already returns.
func writeTypedError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if de, ok := err.(*docerr.Error); ok {
		switch de.Kind {
		case docerr.InvalidInput, docerr.InvalidFormat, docerr.VersionMismatch:
			status = http.StatusBadRequest
		case docerr.IntegrityFailure, docerr.KeyError:
			status = http.StatusUnprocessableEntity
		case docerr.IOError:
			status = http.StatusInternalServerError
		}
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newFileID(data []byte) string {
	digest := primitives.BLAKE2b_256(data)
	return hex.EncodeToString(digest[:8])
}

func parseDownloadPath(path string) (id, kind string, ok bool) {
	const prefix = "/api/download/"
	if len(path) <= len(prefix) {
		return "", "", false
	}
	rest := path[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return rest[:i], rest[i+1:], true
		}
	}
	return "", "", false
}
