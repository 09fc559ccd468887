package sig

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// pendingEntry is the pass-1 form of an entry: payload scalars are parsed but
// cross-references are kept as raw integers until the table length is known.
type pendingEntry struct {
	tag   Tag
	span  Span
	refs  []uint64
	flags Flags
	typed bool // symbol carries a type reference (last element of refs)
	text  string
	bits  uint64
}

// Decode parses a signature blob into a linked Table.
//
// Pass 1 walks the blob once, assigning sequential indices and recording each
// entry's tag and byte span. Pass 2 converts every raw index into a checked
// Ref, which lets an entry refer to entries declared after it. On any error
// the returned table is nil.
func Decode(b Blob) (*Table, error) {
	c := &cursor{data: b}
	count, err := c.readUvarint()
	if err != nil {
		return nil, &DecodeError{Index: -1, Err: fmt.Errorf("entry count: %w", err)}
	}
	// Every entry needs at least a tag byte and a length byte.
	if count > uint64(c.remaining()/2) {
		return nil, &DecodeError{Index: -1, Err: fmt.Errorf("%w: %d entries declared, %d bytes remain", ErrTruncated, count, c.remaining())}
	}

	pending := make([]pendingEntry, 0, count)
	for i := 0; i < int(count); i++ {
		p, err := readPending(c)
		if err != nil {
			return nil, &DecodeError{Index: i, Offset: p.span.Start, Tag: p.tag, Err: err}
		}
		pending = append(pending, p)
	}
	if c.remaining() != 0 {
		return nil, &DecodeError{Index: -1, Err: fmt.Errorf("%w: %d trailing bytes after entry %d", ErrMalformed, c.remaining(), count)}
	}

	t := &Table{
		entries: make([]Entry, len(pending)),
		spans:   make([]Span, len(pending)),
	}
	l := linker{pending: pending}
	for i := range pending {
		e, err := l.link(&pending[i])
		if err != nil {
			return nil, &DecodeError{Index: i, Offset: pending[i].span.Start, Tag: pending[i].tag, Err: err}
		}
		t.entries[i] = e
		t.spans[i] = pending[i].span
	}
	return t, nil
}

func readPending(c *cursor) (pendingEntry, error) {
	p := pendingEntry{span: Span{Start: c.off}}

	tag, err := c.readByte()
	if err != nil {
		return p, err
	}
	p.tag = Tag(tag)
	if !p.tag.Known() {
		return p, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, tag)
	}

	length, err := c.readUvarint()
	if err != nil {
		return p, fmt.Errorf("entry length: %w", err)
	}
	if length > uint64(c.remaining()) {
		return p, fmt.Errorf("%w: entry declares %d payload bytes, %d remain", ErrTruncated, length, c.remaining())
	}
	payload, err := c.readBytes(int(length))
	if err != nil {
		return p, err
	}
	p.span.End = c.off

	if err := p.parse(payload); err != nil {
		return p, err
	}
	return p, nil
}

func (p *pendingEntry) parse(payload []byte) error {
	pc := &cursor{data: payload}

	switch {
	case p.tag.IsName() || p.tag == TagStringLit:
		if !utf8.Valid(payload) {
			return fmt.Errorf("%w: invalid UTF-8 text", ErrMalformed)
		}
		p.text = string(payload)
		return nil

	case p.tag == TagIntLit || p.tag == TagFloatLit:
		if len(payload) != 4 {
			return fmt.Errorf("%w: %s needs 4 bytes, got %d", ErrMalformed, p.tag, len(payload))
		}
		p.bits = uint64(binary.BigEndian.Uint32(payload))
		return nil

	case p.tag == TagLongLit || p.tag == TagDoubleLit:
		if len(payload) != 8 {
			return fmt.Errorf("%w: %s needs 8 bytes, got %d", ErrMalformed, p.tag, len(payload))
		}
		p.bits = binary.BigEndian.Uint64(payload)
		return nil

	case p.tag.IsSymbol():
		name, owner, flags, typ, err := readSymbolPayload(pc)
		if err != nil {
			return err
		}
		p.refs = []uint64{name, owner}
		p.flags = Flags(flags)
		if typ != 0 {
			p.typed = true
			p.refs = append(p.refs, typ-1)
		}

	case p.tag == TagNoType:

	case p.tag == TagThisType:
		if err := p.readRefs(pc, 1); err != nil {
			return err
		}

	case p.tag == TagSingleType:
		if err := p.readRefs(pc, 2); err != nil {
			return err
		}

	case p.tag == TagClassType, p.tag == TagMethodType, p.tag == TagPolyType:
		if err := p.readRefs(pc, 1); err != nil {
			return err
		}
		if err := p.readRefList(pc); err != nil {
			return err
		}

	case p.tag == TagAnnotation:
		if err := p.readRefs(pc, 2); err != nil {
			return err
		}
		if err := p.readRefList(pc); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: 0x%02x", ErrUnknownTag, uint8(p.tag))
	}

	if pc.remaining() != 0 {
		return fmt.Errorf("%w: %d unread payload bytes", ErrMalformed, pc.remaining())
	}
	return nil
}

func readSymbolPayload(pc *cursor) (name, owner, flags, typ uint64, err error) {
	if name, err = pc.readUvarint(); err != nil {
		return
	}
	if owner, err = pc.readUvarint(); err != nil {
		return
	}
	if flags, err = pc.readUvarint(); err != nil {
		return
	}
	typ, err = pc.readUvarint()
	return
}

func (p *pendingEntry) readRefs(pc *cursor, n int) error {
	for i := 0; i < n; i++ {
		v, err := pc.readUvarint()
		if err != nil {
			return err
		}
		p.refs = append(p.refs, v)
	}
	return nil
}

func (p *pendingEntry) readRefList(pc *cursor) error {
	n, err := pc.readUvarint()
	if err != nil {
		return fmt.Errorf("list length: %w", err)
	}
	if n > uint64(pc.remaining()) {
		return fmt.Errorf("%w: list of %d refs, %d bytes remain", ErrTruncated, n, pc.remaining())
	}
	return p.readRefs(pc, int(n))
}

type linker struct {
	pending []pendingEntry
}

func (l *linker) ref(raw uint64, what string, ok func(Tag) bool) (Ref, error) {
	if raw >= uint64(len(l.pending)) {
		return NoRef, fmt.Errorf("%w: %s -> %d (table has %d entries)", ErrDanglingReference, what, raw, len(l.pending))
	}
	if target := l.pending[raw].tag; !ok(target) {
		return NoRef, fmt.Errorf("%w: %s -> %d is %s", ErrMalformed, what, raw, target)
	}
	return Ref(raw), nil
}

func (l *linker) refList(raw []uint64, what string, ok func(Tag) bool) ([]Ref, error) {
	out := make([]Ref, len(raw))
	for i, r := range raw {
		ref, err := l.ref(r, what, ok)
		if err != nil {
			return nil, err
		}
		out[i] = ref
	}
	return out, nil
}

func anyTag(Tag) bool { return true }

func isTag(want Tag) func(Tag) bool {
	return func(t Tag) bool { return t == want }
}

func (l *linker) link(p *pendingEntry) (Entry, error) {
	switch p.tag {
	case TagTermName:
		return &TermName{Value: p.text}, nil
	case TagTypeName:
		return &TypeName{Value: p.text}, nil
	case TagStringLit:
		return &StringLiteral{Value: p.text}, nil
	case TagIntLit:
		return &IntLiteral{Value: int32(uint32(p.bits))}, nil
	case TagLongLit:
		return &LongLiteral{Value: int64(p.bits)}, nil
	case TagFloatLit:
		return &FloatLiteral{Value: math.Float32frombits(uint32(p.bits))}, nil
	case TagDoubleLit:
		return &DoubleLiteral{Value: math.Float64frombits(p.bits)}, nil
	case TagNoType:
		return &NoType{}, nil
	}

	if p.tag.IsSymbol() {
		name, err := l.ref(p.refs[0], "symbol name", Tag.IsName)
		if err != nil {
			return nil, err
		}
		owner, err := l.ref(p.refs[1], "symbol owner", Tag.IsSymbol)
		if err != nil {
			return nil, err
		}
		sym := &Symbol{Kind: symbolKindForTag(p.tag), Name: name, Owner: owner, Flags: p.flags, Type: NoRef}
		if p.typed {
			if sym.Type, err = l.ref(p.refs[2], "symbol type", Tag.IsType); err != nil {
				return nil, err
			}
		}
		return sym, nil
	}

	switch p.tag {
	case TagThisType:
		sym, err := l.ref(p.refs[0], "this symbol", Tag.IsSymbol)
		if err != nil {
			return nil, err
		}
		return &ThisType{Symbol: sym}, nil

	case TagSingleType:
		prefix, err := l.ref(p.refs[0], "single prefix", Tag.IsType)
		if err != nil {
			return nil, err
		}
		sym, err := l.ref(p.refs[1], "single symbol", Tag.IsSymbol)
		if err != nil {
			return nil, err
		}
		return &SingleType{Prefix: prefix, Symbol: sym}, nil

	case TagClassType:
		sym, err := l.ref(p.refs[0], "class symbol", Tag.IsSymbol)
		if err != nil {
			return nil, err
		}
		args, err := l.refList(p.refs[1:], "type argument", Tag.IsType)
		if err != nil {
			return nil, err
		}
		return &ClassType{Symbol: sym, Args: args}, nil

	case TagMethodType:
		result, err := l.ref(p.refs[0], "method result", Tag.IsType)
		if err != nil {
			return nil, err
		}
		params, err := l.refList(p.refs[1:], "method parameter", isTag(TagValParamSym))
		if err != nil {
			return nil, err
		}
		return &MethodType{Result: result, Params: params}, nil

	case TagPolyType:
		result, err := l.ref(p.refs[0], "poly result", Tag.IsType)
		if err != nil {
			return nil, err
		}
		tparams, err := l.refList(p.refs[1:], "type parameter", isTag(TagTypeParamSym))
		if err != nil {
			return nil, err
		}
		return &PolyType{Result: result, TypeParams: tparams}, nil

	case TagAnnotation:
		target, err := l.ref(p.refs[0], "annotation target", Tag.IsSymbol)
		if err != nil {
			return nil, err
		}
		typ, err := l.ref(p.refs[1], "annotation type", Tag.IsType)
		if err != nil {
			return nil, err
		}
		args, err := l.refList(p.refs[2:], "annotation argument", anyTag)
		if err != nil {
			return nil, err
		}
		return &Annotation{Target: target, Type: typ, Args: args}, nil
	}

	return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, uint8(p.tag))
}
