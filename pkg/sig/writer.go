package sig

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// RootName is the name given to the self-owned root symbol by Writer.
const RootName = "<root>"

// Writer assembles an entry table and encodes it as a signature blob.
// Entries may reference indices that are only filled later through
// Reserve/Fill, which is how forward references are produced.
type Writer struct {
	entries  []Entry
	names    map[nameKey]Ref
	packages map[string]Ref
	root     Ref
}

type nameKey struct {
	tag   Tag
	value string
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{
		names:    make(map[nameKey]Ref),
		packages: make(map[string]Ref),
		root:     NoRef,
	}
}

// Len returns the number of entries added or reserved so far.
func (w *Writer) Len() int { return len(w.entries) }

// Add appends e and returns its index.
func (w *Writer) Add(e Entry) Ref {
	w.entries = append(w.entries, e)
	return Ref(len(w.entries) - 1)
}

// Reserve allocates an index whose entry is supplied later with Fill.
func (w *Writer) Reserve() Ref {
	return w.Add(nil)
}

// Fill sets the entry at a reserved index.
func (w *Writer) Fill(r Ref, e Entry) error {
	if r < 0 || int(r) >= len(w.entries) {
		return fmt.Errorf("fill %d: index out of range", r)
	}
	if w.entries[r] != nil {
		return fmt.Errorf("fill %d: index already holds %s", r, w.entries[r].Tag())
	}
	w.entries[r] = e
	return nil
}

// TermName returns the index of a term name entry, adding it once.
func (w *Writer) TermName(s string) Ref { return w.name(TagTermName, s) }

// TypeName returns the index of a type name entry, adding it once.
func (w *Writer) TypeName(s string) Ref { return w.name(TagTypeName, s) }

func (w *Writer) name(tag Tag, s string) Ref {
	key := nameKey{tag: tag, value: s}
	if r, ok := w.names[key]; ok {
		return r
	}
	var r Ref
	if tag == TagTypeName {
		r = w.Add(&TypeName{Value: s})
	} else {
		r = w.Add(&TermName{Value: s})
	}
	w.names[key] = r
	return r
}

// Root returns the self-owned root module, creating it on first use.
func (w *Writer) Root() Ref {
	if w.root.Valid() {
		return w.root
	}
	name := w.TermName(RootName)
	r := w.Reserve()
	w.entries[r] = &Symbol{Kind: KindModule, Name: name, Owner: r, Flags: FlagPackage, Type: NoRef}
	w.root = r
	return r
}

// Symbol adds a symbol of kind named name owned by owner. Pass NoRef as typ
// for an untyped symbol.
func (w *Writer) Symbol(kind SymbolKind, name string, owner Ref, flags Flags, typ Ref) Ref {
	var n Ref
	if kind == KindClass || kind == KindTypeParam {
		n = w.TypeName(name)
	} else {
		n = w.TermName(name)
	}
	return w.Add(&Symbol{Kind: kind, Name: n, Owner: owner, Flags: flags, Type: typ})
}

// Package returns the module symbol for a dotted package path, creating the
// chain of modules below the root as needed. The empty path is the root.
func (w *Writer) Package(path string) Ref {
	if path == "" {
		return w.Root()
	}
	if r, ok := w.packages[path]; ok {
		return r
	}
	owner := w.Root()
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		owner = w.Package(path[:i])
	}
	simple := path[strings.LastIndexByte(path, '.')+1:]
	r := w.Symbol(KindModule, simple, owner, FlagPackage, NoRef)
	w.packages[path] = r
	return r
}

// Class adds a class symbol for id, creating its package chain.
func (w *Writer) Class(id TypeID, flags Flags) Ref {
	return w.Symbol(KindClass, id.Simple(), w.Package(id.Package()), flags, NoRef)
}

// ClassType adds a class type entry applying sym to args.
func (w *Writer) ClassType(sym Ref, args ...Ref) Ref {
	return w.Add(&ClassType{Symbol: sym, Args: args})
}

// Encode serializes the table. It fails when a reserved index was never
// filled; references themselves are not checked so that malformed blobs can
// be produced deliberately.
func (w *Writer) Encode() (Blob, error) {
	out := appendUvarint(nil, uint64(len(w.entries)))
	for i, e := range w.entries {
		if e == nil {
			return nil, fmt.Errorf("encode signature: entry %d reserved but never filled", i)
		}
		payload, err := encodePayload(e)
		if err != nil {
			return nil, fmt.Errorf("encode signature: entry %d: %w", i, err)
		}
		out = append(out, byte(e.Tag()))
		out = appendUvarint(out, uint64(len(payload)))
		out = append(out, payload...)
	}
	return out, nil
}

func appendRef(out []byte, r Ref) []byte {
	return appendUvarint(out, uint64(r))
}

func appendRefList(out []byte, refs []Ref) []byte {
	out = appendUvarint(out, uint64(len(refs)))
	for _, r := range refs {
		out = appendRef(out, r)
	}
	return out
}

func encodePayload(e Entry) ([]byte, error) {
	switch e := e.(type) {
	case *TermName:
		return []byte(e.Value), nil
	case *TypeName:
		return []byte(e.Value), nil
	case *StringLiteral:
		return []byte(e.Value), nil
	case *IntLiteral:
		return binary.BigEndian.AppendUint32(nil, uint32(e.Value)), nil
	case *LongLiteral:
		return binary.BigEndian.AppendUint64(nil, uint64(e.Value)), nil
	case *FloatLiteral:
		return binary.BigEndian.AppendUint32(nil, math.Float32bits(e.Value)), nil
	case *DoubleLiteral:
		return binary.BigEndian.AppendUint64(nil, math.Float64bits(e.Value)), nil
	case *Symbol:
		if e.Tag() == 0 {
			return nil, fmt.Errorf("symbol has unknown kind %d", e.Kind)
		}
		out := appendRef(nil, e.Name)
		out = appendRef(out, e.Owner)
		out = appendUvarint(out, uint64(e.Flags))
		if e.Type.Valid() {
			out = appendUvarint(out, uint64(e.Type)+1)
		} else {
			out = appendUvarint(out, 0)
		}
		return out, nil
	case *NoType:
		return nil, nil
	case *ThisType:
		return appendRef(nil, e.Symbol), nil
	case *SingleType:
		return appendRef(appendRef(nil, e.Prefix), e.Symbol), nil
	case *ClassType:
		return appendRefList(appendRef(nil, e.Symbol), e.Args), nil
	case *MethodType:
		return appendRefList(appendRef(nil, e.Result), e.Params), nil
	case *PolyType:
		return appendRefList(appendRef(nil, e.Result), e.TypeParams), nil
	case *Annotation:
		out := appendRef(nil, e.Target)
		out = appendRef(out, e.Type)
		return appendRefList(out, e.Args), nil
	}
	return nil, fmt.Errorf("unsupported entry %T", e)
}
