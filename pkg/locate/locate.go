// Package locate finds the raw signature blob attached to a compiled type.
//
// A locator that has no blob for a type returns (nil, false, nil). Absence
// is not an error: callers fall back to whatever constructor information
// the host exposes directly. Errors are reserved for lookups that failed,
// such as unreadable files, and are never cached.
package locate

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/odvcencio/sigil/pkg/bundle"
	"github.com/odvcencio/sigil/pkg/sig"
)

// Locator retrieves signature blobs by type identity.
type Locator interface {
	Locate(id sig.TypeID) (sig.Blob, bool, error)
}

// Fingerprint returns the hex BLAKE2b-256 digest of a blob.
func Fingerprint(b sig.Blob) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Map is an in-memory locator, safe for concurrent use.
type Map struct {
	mu    sync.RWMutex
	blobs map[sig.TypeID]sig.Blob
}

// NewMap returns a Map holding a copy of blobs.
func NewMap(blobs map[sig.TypeID]sig.Blob) *Map {
	m := &Map{blobs: make(map[sig.TypeID]sig.Blob, len(blobs))}
	for id, b := range blobs {
		m.blobs[id] = b
	}
	return m
}

// Put stores or replaces the blob for id.
func (m *Map) Put(id sig.TypeID, b sig.Blob) {
	m.mu.Lock()
	if m.blobs == nil {
		m.blobs = make(map[sig.TypeID]sig.Blob)
	}
	m.blobs[id] = b
	m.mu.Unlock()
}

// Delete removes the blob for id.
func (m *Map) Delete(id sig.TypeID) {
	m.mu.Lock()
	delete(m.blobs, id)
	m.mu.Unlock()
}

func (m *Map) Locate(id sig.TypeID) (sig.Blob, bool, error) {
	m.mu.RLock()
	b, ok := m.blobs[id]
	m.mu.RUnlock()
	return b, ok, nil
}

// Dir serves blobs from a directory tree laid out by package:
// <root>/com/example/Person.sig, optionally compressed as .sig.zst or
// .sig.lz4.
type Dir struct {
	Root string
}

var dirCompressions = []Compression{CompressionNone, CompressionZstd, CompressionLZ4}

// Path returns the uncompressed blob path for id under root, without the
// compression suffix.
func Path(root string, id sig.TypeID) string {
	return filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(string(id), ".", "/")))
}

func (d Dir) Locate(id sig.TypeID) (sig.Blob, bool, error) {
	base := Path(d.Root, id)
	for _, c := range dirCompressions {
		path := base + c.Ext()
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, false, fmt.Errorf("locate %s: %w", id, err)
		}
		raw, err := Decompress(c, data)
		if err != nil {
			return nil, false, fmt.Errorf("locate %s: %s: %w", id, c, err)
		}
		return sig.Blob(raw), true, nil
	}
	return nil, false, nil
}

// Bundle serves blobs from a bundle file. The file is read on first use and
// kept once it has loaded successfully.
type Bundle struct {
	Path string

	mu     sync.Mutex
	loaded *bundle.Bundle
}

func (b *Bundle) load() (*bundle.Bundle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loaded != nil {
		return b.loaded, nil
	}
	loaded, err := bundle.ReadFile(b.Path)
	if err != nil {
		return nil, err
	}
	b.loaded = loaded
	return loaded, nil
}

func (b *Bundle) Locate(id sig.TypeID) (sig.Blob, bool, error) {
	loaded, err := b.load()
	if err != nil {
		return nil, false, fmt.Errorf("locate %s: %w", id, err)
	}
	blob, ok := loaded.Get(id)
	return blob, ok, nil
}

// Chain asks each locator in turn; the first that has the blob wins. An
// error stops the chain.
type Chain []Locator

func (c Chain) Locate(id sig.TypeID) (sig.Blob, bool, error) {
	for _, l := range c {
		b, ok, err := l.Locate(id)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return b, true, nil
		}
	}
	return nil, false, nil
}

// Open builds a chained locator from search paths: directories become Dir
// locators and regular files become Bundle locators.
func Open(paths []string) (Chain, error) {
	chain := make(Chain, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("open search path: %w", err)
		}
		if info.IsDir() {
			chain = append(chain, Dir{Root: p})
		} else {
			chain = append(chain, &Bundle{Path: p})
		}
	}
	return chain, nil
}
