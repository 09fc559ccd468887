package sig

import (
	"errors"
	"math"
	"testing"
)

func encodeForTest(t *testing.T, w *Writer) Blob {
	t.Helper()
	blob, err := w.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return blob
}

func TestUvarintRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 1 << 35, math.MaxUint64} {
		buf := appendUvarint(nil, v)
		c := &cursor{data: buf}
		got, err := c.readUvarint()
		if err != nil {
			t.Fatalf("readUvarint(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("readUvarint = %d, want %d", got, v)
		}
		if c.remaining() != 0 {
			t.Fatalf("readUvarint(%d) left %d bytes", v, c.remaining())
		}
	}
}

func TestUvarintIsLittleEndianFirst(t *testing.T) {
	got := appendUvarint(nil, 300)
	want := []byte{0xac, 0x02}
	if string(got) != string(want) {
		t.Fatalf("appendUvarint(300) = %x, want %x", got, want)
	}
}

func TestUvarintRejectsOverflow(t *testing.T) {
	c := &cursor{data: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}}
	if _, err := c.readUvarint(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("readUvarint overflow err = %v, want ErrMalformed", err)
	}
}

func TestDecodeRoundTripsEveryEntryKind(t *testing.T) {
	w := NewWriter()
	person := w.Class("com.example.Person", FlagCase)
	intSym := w.Class("scala.Int", FlagFinal)
	intType := w.ClassType(intSym)
	param := w.Symbol(KindValParam, "age", person, FlagParam, intType)
	thisType := w.Add(&ThisType{Symbol: person})
	method := w.Add(&MethodType{Result: thisType, Params: []Ref{param}})
	ctor := w.Symbol(KindMethod, "<init>", person, FlagMethod|FlagConstructor, method)
	tparam := w.Symbol(KindTypeParam, "T", person, 0, NoRef)
	poly := w.Add(&PolyType{Result: method, TypeParams: []Ref{tparam}})
	single := w.Add(&SingleType{Prefix: thisType, Symbol: person})
	noType := w.Add(&NoType{})
	i32 := w.Add(&IntLiteral{Value: -7})
	i64 := w.Add(&LongLiteral{Value: math.MinInt64})
	f32 := w.Add(&FloatLiteral{Value: 1.5})
	f64 := w.Add(&DoubleLiteral{Value: -2.25})
	str := w.Add(&StringLiteral{Value: "héllo"})
	ann := w.Add(&Annotation{Target: ctor, Type: intType, Args: []Ref{i32, str}})

	table, err := Decode(encodeForTest(t, w))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if table.Len() != w.Len() {
		t.Fatalf("Len = %d, want %d", table.Len(), w.Len())
	}

	sym, ok := table.Symbol(ctor)
	if !ok {
		t.Fatalf("entry %d is %T, want *Symbol", ctor, table.Entry(ctor))
	}
	if sym.Kind != KindMethod || table.Name(sym.Name) != "<init>" || sym.Owner != person || sym.Type != method {
		t.Fatalf("ctor symbol = %+v", sym)
	}
	if !sym.Flags.Has(FlagConstructor) {
		t.Fatalf("ctor flags = %v, want constructor", sym.Flags.Names())
	}
	p, _ := table.Symbol(param)
	if p.Owner != person || p.Type != intType {
		t.Fatalf("param symbol = %+v", p)
	}
	if got := table.Entry(poly).(*PolyType); got.Result != method || len(got.TypeParams) != 1 || got.TypeParams[0] != tparam {
		t.Fatalf("poly = %+v", got)
	}
	if got := table.Entry(single).(*SingleType); got.Prefix != thisType || got.Symbol != person {
		t.Fatalf("single = %+v", got)
	}
	if _, ok := table.Entry(noType).(*NoType); !ok {
		t.Fatalf("entry %d = %T, want *NoType", noType, table.Entry(noType))
	}
	if got := table.Entry(i32).(*IntLiteral).Value; got != -7 {
		t.Fatalf("int literal = %d, want -7", got)
	}
	if got := table.Entry(i64).(*LongLiteral).Value; got != math.MinInt64 {
		t.Fatalf("long literal = %d, want %d", got, int64(math.MinInt64))
	}
	if got := table.Entry(f32).(*FloatLiteral).Value; got != 1.5 {
		t.Fatalf("float literal = %v, want 1.5", got)
	}
	if got := table.Entry(f64).(*DoubleLiteral).Value; got != -2.25 {
		t.Fatalf("double literal = %v, want -2.25", got)
	}
	if got := table.Entry(str).(*StringLiteral).Value; got != "héllo" {
		t.Fatalf("string literal = %q", got)
	}
	if got := table.Entry(ann).(*Annotation); got.Target != ctor || got.Type != intType || len(got.Args) != 2 {
		t.Fatalf("annotation = %+v", got)
	}

	span := table.Span(ann)
	if span.End <= span.Start {
		t.Fatalf("annotation span = %+v", span)
	}
}

func TestDecodeResolvesForwardReferences(t *testing.T) {
	w := NewWriter()
	name := w.TypeName("Late")
	cls := w.Reserve()
	// The owner is declared after the class that refers to it.
	owner := w.Package("pkg")
	if err := w.Fill(cls, &Symbol{Kind: KindClass, Name: name, Owner: owner, Type: NoRef}); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if owner <= cls {
		t.Fatalf("owner %d not declared after class %d", owner, cls)
	}

	table, err := Decode(encodeForTest(t, w))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	sym, ok := table.Symbol(cls)
	if !ok {
		t.Fatalf("entry %d = %T, want *Symbol", cls, table.Entry(cls))
	}
	if sym.Owner != owner {
		t.Fatalf("Owner = %d, want %d", sym.Owner, owner)
	}
	if table.Name(sym.Name) != "Late" {
		t.Fatalf("Name = %q, want Late", table.Name(sym.Name))
	}
}

func TestDecodeTruncatedFinalEntry(t *testing.T) {
	w := NewWriter()
	w.Class("com.example.Person", 0)
	blob := encodeForTest(t, w)

	table, err := Decode(blob[:len(blob)-1])
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("Decode err = %v, want ErrTruncated", err)
	}
	if table != nil {
		t.Fatalf("Decode returned partial table with %d entries", table.Len())
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err %T is not *DecodeError", err)
	}
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	blob := Blob{1, 0x7e, 0}
	if _, err := Decode(blob); !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("Decode err = %v, want ErrUnknownTag", err)
	}
}

func TestDecodeRejectsDanglingReference(t *testing.T) {
	w := NewWriter()
	w.Add(&ClassType{Symbol: 42})
	table, err := Decode(encodeForTest(t, w))
	if !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("Decode err = %v, want ErrDanglingReference", err)
	}
	if table != nil {
		t.Fatal("Decode returned a table on dangling reference")
	}
}

func TestDecodeRejectsWrongReferenceKind(t *testing.T) {
	w := NewWriter()
	name := w.TermName("x")
	w.Add(&ClassType{Symbol: name})
	if _, err := Decode(encodeForTest(t, w)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("Decode err = %v, want ErrMalformed", err)
	}
}

func TestDecodeRejectsBadLiteralWidth(t *testing.T) {
	blob := Blob{1, byte(TagIntLit), 2, 0, 1}
	if _, err := Decode(blob); !errors.Is(err, ErrMalformed) {
		t.Fatalf("Decode err = %v, want ErrMalformed", err)
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	w := NewWriter()
	w.TermName("x")
	blob := append(encodeForTest(t, w), 0)
	if _, err := Decode(blob); !errors.Is(err, ErrMalformed) {
		t.Fatalf("Decode err = %v, want ErrMalformed", err)
	}
}

func TestDecodeRejectsOversizedEntryCount(t *testing.T) {
	blob := Blob{0x80, 0x01, byte(TagNoType), 0}
	if _, err := Decode(blob); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Decode err = %v, want ErrTruncated", err)
	}
}

func TestDecodeEmptyTable(t *testing.T) {
	table, err := Decode(Blob{0})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("Len = %d, want 0", table.Len())
	}
}

func TestWriterEncodeRejectsUnfilledReserve(t *testing.T) {
	w := NewWriter()
	w.Reserve()
	if _, err := w.Encode(); err == nil {
		t.Fatal("expected error for unfilled reserved entry")
	}
}

func TestWriterPackageChain(t *testing.T) {
	w := NewWriter()
	a := w.Package("com.example")
	b := w.Package("com.example")
	if a != b {
		t.Fatalf("Package not deduplicated: %d != %d", a, b)
	}
	table, err := Decode(encodeForTest(t, w))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	sym, _ := table.Symbol(a)
	if table.Name(sym.Name) != "example" {
		t.Fatalf("package name = %q, want example", table.Name(sym.Name))
	}
	parent, _ := table.Symbol(sym.Owner)
	if table.Name(parent.Name) != "com" {
		t.Fatalf("parent name = %q, want com", table.Name(parent.Name))
	}
	root, _ := table.Symbol(parent.Owner)
	if root.Owner != parent.Owner {
		t.Fatalf("root is not self-owned: %+v", root)
	}
}

func TestTypeIDParts(t *testing.T) {
	id := TypeID("com.example.Person")
	if id.Package() != "com.example" || id.Simple() != "Person" {
		t.Fatalf("Package/Simple = %q/%q", id.Package(), id.Simple())
	}
	if TypeID("Top").Package() != "" || TypeID("Top").Simple() != "Top" {
		t.Fatal("top-level id split wrong")
	}
}
