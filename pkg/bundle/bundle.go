// Package bundle stores many signature blobs in one checksummed file.
//
// Layout:
//
//	"SIGB" | version u32 BE | count u32 BE
//	count x (nameLen uvarint | name | blobLen uvarint | blob)
//	BLAKE2b-256 over every preceding byte
package bundle

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"

	"github.com/odvcencio/sigil/pkg/sig"
)

const (
	headerSize       = 12
	supportedVersion = 1
	checksumSize     = blake2b.Size256
)

var magic = [4]byte{'S', 'I', 'G', 'B'}

// Header is the fixed-size bundle header.
type Header struct {
	Version uint32
	Count   uint32
}

// Marshal serializes the header to its 12-byte form.
func (h Header) Marshal() []byte {
	buf := make([]byte, headerSize)
	copy(buf[:4], magic[:])
	binary.BigEndian.PutUint32(buf[4:8], h.Version)
	binary.BigEndian.PutUint32(buf[8:12], h.Count)
	return buf
}

// UnmarshalHeader parses a bundle header.
func UnmarshalHeader(data []byte) (*Header, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("bundle header too short: got %d bytes", len(data))
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return nil, fmt.Errorf("invalid bundle magic %q", data[:4])
	}
	version := binary.BigEndian.Uint32(data[4:8])
	if version != supportedVersion {
		return nil, fmt.Errorf("unsupported bundle version %d", version)
	}
	return &Header{
		Version: version,
		Count:   binary.BigEndian.Uint32(data[8:12]),
	}, nil
}

// Bundle is a decoded, verified bundle.
type Bundle struct {
	Header   Header
	Checksum string

	order []sig.TypeID
	blobs map[sig.TypeID]sig.Blob
}

// Get returns the blob stored for id.
func (b *Bundle) Get(id sig.TypeID) (sig.Blob, bool) {
	blob, ok := b.blobs[id]
	return blob, ok
}

// Names returns the stored type ids in file order.
func (b *Bundle) Names() []sig.TypeID {
	return append([]sig.TypeID(nil), b.order...)
}

// Len returns the number of stored blobs.
func (b *Bundle) Len() int { return len(b.order) }

// Read verifies the trailer checksum and decodes every entry.
func Read(data []byte) (*Bundle, error) {
	if len(data) < headerSize+checksumSize {
		return nil, fmt.Errorf("bundle too short: %d", len(data))
	}

	payload := data[:len(data)-checksumSize]
	trailer := data[len(data)-checksumSize:]
	sum := blake2b.Sum256(payload)
	if !bytes.Equal(sum[:], trailer) {
		return nil, fmt.Errorf("bundle checksum mismatch")
	}

	header, err := UnmarshalHeader(payload[:headerSize])
	if err != nil {
		return nil, err
	}
	// Each entry needs at least two length bytes.
	if uint64(header.Count) > uint64(len(payload)-headerSize)/2 {
		return nil, fmt.Errorf("bundle declares %d entries in %d bytes", header.Count, len(payload)-headerSize)
	}

	b := &Bundle{
		Header:   *header,
		Checksum: hex.EncodeToString(trailer),
		order:    make([]sig.TypeID, 0, header.Count),
		blobs:    make(map[sig.TypeID]sig.Blob, header.Count),
	}
	offset := headerSize
	for i := uint32(0); i < header.Count; i++ {
		name, n, err := readChunk(payload[offset:])
		if err != nil {
			return nil, fmt.Errorf("entry %d: name: %w", i, err)
		}
		offset += n
		blob, n, err := readChunk(payload[offset:])
		if err != nil {
			return nil, fmt.Errorf("entry %d: blob: %w", i, err)
		}
		offset += n

		id := sig.TypeID(name)
		if id == "" {
			return nil, fmt.Errorf("entry %d: empty type name", i)
		}
		if _, dup := b.blobs[id]; dup {
			return nil, fmt.Errorf("entry %d: duplicate type %s", i, id)
		}
		b.order = append(b.order, id)
		b.blobs[id] = sig.Blob(blob)
	}

	if offset != len(payload) {
		return nil, fmt.Errorf("bundle has trailing undecoded bytes: %d", len(payload)-offset)
	}
	return b, nil
}

// ReadFile reads and decodes the bundle at path.
func ReadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	b, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("read bundle %s: %w", path, err)
	}
	return b, nil
}

// ReadFrom reads a complete bundle stream from r.
func ReadFrom(r io.Reader) (*Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bundle stream: %w", err)
	}
	return Read(data)
}

func readChunk(data []byte) ([]byte, int, error) {
	size, n, err := sig.Uvarint(data)
	if err != nil {
		return nil, 0, err
	}
	if size > uint64(len(data)-n) {
		return nil, 0, fmt.Errorf("chunk of %d bytes truncated", size)
	}
	end := n + int(size)
	return data[n:end], end, nil
}
