package codec

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/odvcencio/sigil/pkg/descriptor"
	"github.com/odvcencio/sigil/pkg/graph"
	"github.com/odvcencio/sigil/pkg/sig"
)

func sampleDocs(t *testing.T) Docs {
	t.Helper()
	host := descriptor.StaticHost{
		"a.Pair": {
			{Params: []graph.Param{{Name: "left", Type: graph.Named("scala.Int")}}},
			{Params: []graph.Param{
				{Name: "left", Type: graph.Named("scala.Int")},
				{Name: "right", Type: graph.Named("scala.Option", graph.Named("scala.Int")), HasDefault: true},
			}},
		},
	}
	d, err := descriptor.New(descriptor.Options{Host: host}).Describe("a.Pair")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	return Docs{NewDoc(d)}
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatText, sampleDocs(t)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"a.Pair (host)",
		"  * (left: scala.Int, right: scala.Option[scala.Int] = ...)",
		"    1 right: scala.Option[scala.Int]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderJSONAndYAML(t *testing.T) {
	docs := sampleDocs(t)

	var buf bytes.Buffer
	if err := Render(&buf, FormatJSON, docs); err != nil {
		t.Fatalf("Render json: %v", err)
	}
	var fromJSON []Doc
	if err := json.Unmarshal(buf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if fromJSON[0].Primary != 1 || fromJSON[0].Fields[1].Type != "scala.Option[scala.Int]" {
		t.Fatalf("json doc = %+v", fromJSON[0])
	}

	buf.Reset()
	if err := Render(&buf, FormatYAML, docs); err != nil {
		t.Fatalf("Render yaml: %v", err)
	}
	var fromYAML []Doc
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if fromYAML[0].Type != "a.Pair" || !fromYAML[0].Fields[1].Default {
		t.Fatalf("yaml doc = %+v", fromYAML[0])
	}
}

func TestRenderCBORDeterministic(t *testing.T) {
	docs := sampleDocs(t)
	var a, b bytes.Buffer
	if err := Render(&a, FormatCBOR, docs); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := Render(&b, FormatCBOR, sampleDocs(t)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("CBOR output not deterministic")
	}
	var back []Doc
	if err := UnmarshalCBOR(a.Bytes(), &back); err != nil {
		t.Fatalf("UnmarshalCBOR: %v", err)
	}
	if back[0].Constructors[1].Params[1].Name != "right" {
		t.Fatalf("cbor doc = %+v", back[0])
	}
}

func TestTableDoc(t *testing.T) {
	w := sig.NewWriter()
	cls := w.Class("p.A", sig.FlagCase)
	w.ClassType(cls)
	blob, err := w.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	table, err := sig.Decode(blob)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	doc := NewTableDoc(table)
	if len(doc.Entries) != table.Len() {
		t.Fatalf("len(Entries) = %d, want %d", len(doc.Entries), table.Len())
	}
	last := doc.Entries[len(doc.Entries)-1]
	if last.Tag != sig.TagClassType.String() || last.Size == 0 {
		t.Fatalf("last entry = %+v", last)
	}

	var buf bytes.Buffer
	if err := Render(&buf, FormatText, doc); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), `"A"`) || !strings.Contains(buf.String(), "flags=") {
		t.Fatalf("table text:\n%s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"", "text", "JSON", "yaml", "cbor"} {
		if _, err := ParseFormat(s); err != nil {
			t.Fatalf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for xml")
	}
	if err := Render(&bytes.Buffer{}, FormatText, 42); err == nil {
		t.Fatal("expected error rendering int as text")
	}
}
