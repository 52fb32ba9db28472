package core

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"
)

var bufferPool = sync.Pool{New: func() interface{} { return new(bytes.Buffer) }}

// --- Compression ---

func Compress(src []byte) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer bufferPool.Put(buf)
	buf.Reset()

	w := lz4.NewWriter(buf)
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("lz4 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 close: %w", err)
	}

	// Return strictly sized slice
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// MaxDecompressedSize bounds what Decompress will inflate.
const MaxDecompressedSize = 64 << 20

var ErrTooLarge = errors.New("decompressed data exceeds size limit")

func Decompress(src []byte) ([]byte, error) {
	return DecompressLimit(src, MaxDecompressedSize)
}

// DecompressLimit inflates src, failing with ErrTooLarge once the output
// passes limit bytes.
func DecompressLimit(src []byte, limit int64) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer bufferPool.Put(buf)
	buf.Reset()

	r := io.LimitReader(lz4.NewReader(bytes.NewReader(src)), limit+1)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("lz4 read: %w", err)
	}
	if int64(buf.Len()) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// --- Hashing ---

func Sum(data []byte) [32]byte {
	return blake3.Sum256(data)
}

func Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ChainHash links a blob to its predecessor: BLAKE3(blob || prev).
func ChainHash(blob []byte, prev string) string {
	combined := make([]byte, 0, len(blob)+len(prev))
	combined = append(combined, blob...)
	combined = append(combined, prev...)
	return Hash(combined)
}
