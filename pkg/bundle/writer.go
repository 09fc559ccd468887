package bundle

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/odvcencio/sigil/pkg/sig"
)

// Writer streams a bundle. The number of entries is fixed up front and
// checked by Finish.
type Writer struct {
	hasher   hash.Hash
	out      io.Writer
	hashedW  io.Writer
	expected uint32
	written  uint32
	seen     map[sig.TypeID]struct{}
	finished bool
}

// NewWriter writes the bundle header and returns a Writer for count entries.
func NewWriter(out io.Writer, count uint32) (*Writer, error) {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return nil, fmt.Errorf("bundle checksum: %w", err)
	}
	w := &Writer{
		hasher:   hasher,
		out:      out,
		hashedW:  io.MultiWriter(out, hasher),
		expected: count,
		seen:     make(map[sig.TypeID]struct{}, count),
	}
	header := Header{Version: supportedVersion, Count: count}
	if _, err := w.hashedW.Write(header.Marshal()); err != nil {
		return nil, fmt.Errorf("write bundle header: %w", err)
	}
	return w, nil
}

// WriteEntry appends the blob for id.
func (w *Writer) WriteEntry(id sig.TypeID, blob sig.Blob) error {
	if w.finished {
		return fmt.Errorf("bundle writer already finished")
	}
	if w.written >= w.expected {
		return fmt.Errorf("bundle entry count exceeded: expected %d", w.expected)
	}
	if id == "" {
		return fmt.Errorf("bundle entry: empty type name")
	}
	if _, dup := w.seen[id]; dup {
		return fmt.Errorf("bundle entry: duplicate type %s", id)
	}

	buf := sig.AppendUvarint(nil, uint64(len(id)))
	buf = append(buf, id...)
	buf = sig.AppendUvarint(buf, uint64(len(blob)))
	buf = append(buf, blob...)
	if _, err := w.hashedW.Write(buf); err != nil {
		return fmt.Errorf("write bundle entry %s: %w", id, err)
	}
	w.seen[id] = struct{}{}
	w.written++
	return nil
}

// Finish writes the checksum trailer and returns it hex-encoded.
func (w *Writer) Finish() (string, error) {
	if w.finished {
		return "", fmt.Errorf("bundle writer already finished")
	}
	if w.written != w.expected {
		return "", fmt.Errorf("bundle entry count mismatch: wrote %d expected %d", w.written, w.expected)
	}
	sum := w.hasher.Sum(nil)
	if _, err := w.out.Write(sum); err != nil {
		return "", fmt.Errorf("write bundle checksum: %w", err)
	}
	w.finished = true
	return hex.EncodeToString(sum), nil
}
