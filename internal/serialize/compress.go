// Package serialize provides a small zstd-backed helper for compressing
// large DoAction result bodies. Action bodies are UTF-8 JSON; most fit
// comfortably under a wire frame uncompressed, but get-server-info can grow
// with the dataset count, so callers compress when it crosses a threshold.
package serialize

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// CompressThreshold is the body size, in bytes, above which DoAction
// compresses its JSON result body before sending it.
const CompressThreshold = 8192

// CompressBody zstd-compresses data. Used for DoAction result bodies that
// exceed CompressThreshold.
func CompressBody(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("serialize: failed to create zstd writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("serialize: failed to compress body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("serialize: failed to close zstd writer: %w", err)
	}
	return buf.Bytes(), nil
}

// DecompressBody reverses CompressBody.
func DecompressBody(data []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("serialize: failed to create zstd reader: %w", err)
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("serialize: failed to decompress body: %w", err)
	}
	return buf.Bytes(), nil
}
