package primitives

import (
	"bytes"

	"github.com/ulikunitz/xz/lzma"

	"github.com/redeaux-corp/docenc/internal/docerr"
)

// LZMACompress compresses data at the given preset (0-9, mirroring
// lzma.Writer's preset knobs via WriterConfig). The caller decides
// whether to keep the result; compression should only be applied when it
// strictly shrinks the payload.
func LZMACompress(data []byte, preset int) ([]byte, error) {
	cfg := lzma.WriterConfig{}
	if preset >= 6 {
		cfg.DictCap = 1 << 24
	}
	var buf bytes.Buffer
	w, err := cfg.NewWriter(&buf)
	if err != nil {
		return nil, docerr.Wrap(docerr.IOError, "constructing LZMA writer", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, docerr.Wrap(docerr.IOError, "LZMA compression failed", err)
	}
	if err := w.Close(); err != nil {
		return nil, docerr.Wrap(docerr.IOError, "closing LZMA writer", err)
	}
	return buf.Bytes(), nil
}

// LZMADecompress reverses LZMACompress.
func LZMADecompress(data []byte) ([]byte, error) {
	r, err := lzma.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, docerr.Wrap(docerr.InvalidFormat, "constructing LZMA reader", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, docerr.Wrap(docerr.InvalidFormat, "LZMA decompression failed", err)
	}
	return buf.Bytes(), nil
}
