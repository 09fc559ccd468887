package bundle

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/sigil/pkg/sig"
)

func writeTestBundle(t *testing.T, entries map[sig.TypeID]sig.Blob, order []sig.TypeID) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, uint32(len(order)))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for _, id := range order {
		if err := w.WriteEntry(id, entries[id]); err != nil {
			t.Fatalf("WriteEntry(%s): %v", id, err)
		}
	}
	if _, err := w.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return buf.Bytes()
}

func TestReadRoundTrip(t *testing.T) {
	entries := map[sig.TypeID]sig.Blob{
		"com.example.Person": {1, 2, 3},
		"com.example.Empty":  {},
	}
	order := []sig.TypeID{"com.example.Person", "com.example.Empty"}
	data := writeTestBundle(t, entries, order)

	b, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
	names := b.Names()
	if names[0] != order[0] || names[1] != order[1] {
		t.Fatalf("Names = %v, want %v", names, order)
	}
	blob, ok := b.Get("com.example.Person")
	if !ok || !bytes.Equal(blob, []byte{1, 2, 3}) {
		t.Fatalf("Get(Person) = %v, %v", blob, ok)
	}
	if _, ok := b.Get("com.example.Missing"); ok {
		t.Fatal("Get(Missing) reported a blob")
	}
	if len(b.Checksum) != 2*checksumSize {
		t.Fatalf("Checksum = %q", b.Checksum)
	}
}

func TestReadRejectsCorruption(t *testing.T) {
	data := writeTestBundle(t, map[sig.TypeID]sig.Blob{"a.B": {9}}, []sig.TypeID{"a.B"})
	data[headerSize+1] ^= 0xff
	_, err := Read(data)
	if err == nil || !strings.Contains(err.Error(), "checksum") {
		t.Fatalf("Read err = %v, want checksum mismatch", err)
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	if _, err := UnmarshalHeader([]byte("PACK\x00\x00\x00\x01\x00\x00\x00\x00")); err == nil {
		t.Fatal("expected magic error")
	}
}

func TestWriterRejectsDuplicatesAndCountMismatch(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, 2)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteEntry("a.B", sig.Blob{1}); err != nil {
		t.Fatalf("WriteEntry: %v", err)
	}
	if err := w.WriteEntry("a.B", sig.Blob{1}); err == nil {
		t.Fatal("expected duplicate entry error")
	}
	if _, err := w.Finish(); err == nil {
		t.Fatal("expected count mismatch error")
	}
}

func TestReadFile(t *testing.T) {
	data := writeTestBundle(t, map[sig.TypeID]sig.Blob{"a.B": {7}}, []sig.TypeID{"a.B"})
	path := filepath.Join(t.TempDir(), "sigs.sigb")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if blob, ok := b.Get("a.B"); !ok || blob[0] != 7 {
		t.Fatalf("Get(a.B) = %v, %v", blob, ok)
	}
}
