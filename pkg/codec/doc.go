// Package codec renders descriptors and entry tables for people and tools.
package codec

import (
	"fmt"
	"strings"

	"github.com/odvcencio/sigil/pkg/descriptor"
	"github.com/odvcencio/sigil/pkg/sig"
)

// Doc is the serializable view of a class descriptor.
type Doc struct {
	Type         string     `json:"type" yaml:"type" cbor:"type"`
	Source       string     `json:"source" yaml:"source" cbor:"source"`
	Fingerprint  string     `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty" cbor:"fingerprint,omitempty"`
	TypeParams   []string   `json:"typeParams,omitempty" yaml:"typeParams,omitempty" cbor:"typeParams,omitempty"`
	Primary      int        `json:"primary" yaml:"primary" cbor:"primary"`
	Constructors []CtorDoc  `json:"constructors" yaml:"constructors" cbor:"constructors"`
	Fields       []FieldDoc `json:"fields" yaml:"fields" cbor:"fields"`
}

// CtorDoc is one constructor candidate.
type CtorDoc struct {
	Marked bool       `json:"marked,omitempty" yaml:"marked,omitempty" cbor:"marked,omitempty"`
	Params []ParamDoc `json:"params" yaml:"params" cbor:"params"`
}

// ParamDoc is one constructor parameter.
type ParamDoc struct {
	Name    string `json:"name" yaml:"name" cbor:"name"`
	Type    string `json:"type" yaml:"type" cbor:"type"`
	Default bool   `json:"default,omitempty" yaml:"default,omitempty" cbor:"default,omitempty"`
}

// FieldDoc is one field of the primary constructor.
type FieldDoc struct {
	Index    int    `json:"index" yaml:"index" cbor:"index"`
	Name     string `json:"name" yaml:"name" cbor:"name"`
	Type     string `json:"type" yaml:"type" cbor:"type"`
	Accessor string `json:"accessor" yaml:"accessor" cbor:"accessor"`
	Default  bool   `json:"default,omitempty" yaml:"default,omitempty" cbor:"default,omitempty"`
}

// NewDoc builds the view of d.
func NewDoc(d *descriptor.ClassDescriptor) Doc {
	doc := Doc{
		Type:        string(d.Type),
		Source:      d.Source,
		Fingerprint: d.Fingerprint,
		TypeParams:  d.TypeParams,
		Primary:     d.Primary,
	}
	for _, c := range d.Constructors {
		cd := CtorDoc{Marked: c.Marked(), Params: make([]ParamDoc, 0, len(c.Params))}
		for _, p := range c.Params {
			cd.Params = append(cd.Params, ParamDoc{Name: p.Name, Type: p.Type.String(), Default: p.HasDefault})
		}
		doc.Constructors = append(doc.Constructors, cd)
	}
	for _, f := range d.Fields {
		doc.Fields = append(doc.Fields, FieldDoc{
			Index:    f.Index,
			Name:     f.Name,
			Type:     f.Type.String(),
			Accessor: f.Accessor,
			Default:  f.HasDefault,
		})
	}
	if doc.Fields == nil {
		doc.Fields = []FieldDoc{}
	}
	return doc
}

// Docs is a list of descriptor views.
type Docs []Doc

func (ds Docs) text(b *strings.Builder) {
	for i, d := range ds {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(b, "%s", d.Type)
		if len(d.TypeParams) > 0 {
			fmt.Fprintf(b, "[%s]", strings.Join(d.TypeParams, ", "))
		}
		fmt.Fprintf(b, " (%s)\n", d.Source)
		if d.Fingerprint != "" {
			fmt.Fprintf(b, "  fingerprint %s\n", d.Fingerprint)
		}
		for j, c := range d.Constructors {
			mark := " "
			if j == d.Primary {
				mark = "*"
			}
			params := make([]string, len(c.Params))
			for k, p := range c.Params {
				params[k] = p.Name + ": " + p.Type
				if p.Default {
					params[k] += " = ..."
				}
			}
			at := ""
			if c.Marked {
				at = "@primary "
			}
			fmt.Fprintf(b, "  %s %s(%s)\n", mark, at, strings.Join(params, ", "))
		}
		for _, f := range d.Fields {
			fmt.Fprintf(b, "    %d %s: %s", f.Index, f.Name, f.Type)
			if f.Accessor != f.Name {
				fmt.Fprintf(b, " via %s", f.Accessor)
			}
			b.WriteByte('\n')
		}
	}
}

// TableDoc is the serializable view of a decoded entry table.
type TableDoc struct {
	Entries []EntryDoc `json:"entries" yaml:"entries" cbor:"entries"`
}

// EntryDoc is one table entry.
type EntryDoc struct {
	Index  int    `json:"index" yaml:"index" cbor:"index"`
	Tag    string `json:"tag" yaml:"tag" cbor:"tag"`
	Offset int    `json:"offset" yaml:"offset" cbor:"offset"`
	Size   int    `json:"size" yaml:"size" cbor:"size"`
	Detail string `json:"detail" yaml:"detail" cbor:"detail"`
}

// NewTableDoc describes every entry of t.
func NewTableDoc(t *sig.Table) TableDoc {
	doc := TableDoc{Entries: make([]EntryDoc, 0, t.Len())}
	t.Each(func(r sig.Ref, e sig.Entry) bool {
		span := t.Span(r)
		doc.Entries = append(doc.Entries, EntryDoc{
			Index:  int(r),
			Tag:    e.Tag().String(),
			Offset: span.Start,
			Size:   span.End - span.Start,
			Detail: detail(t, e),
		})
		return true
	})
	return doc
}

func refs(rs []sig.Ref) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = fmt.Sprintf("#%d", r)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func detail(t *sig.Table, e sig.Entry) string {
	switch e := e.(type) {
	case *sig.TermName:
		return fmt.Sprintf("%q", e.Value)
	case *sig.TypeName:
		return fmt.Sprintf("%q", e.Value)
	case *sig.StringLiteral:
		return fmt.Sprintf("%q", e.Value)
	case *sig.IntLiteral:
		return fmt.Sprint(e.Value)
	case *sig.LongLiteral:
		return fmt.Sprint(e.Value)
	case *sig.FloatLiteral:
		return fmt.Sprint(e.Value)
	case *sig.DoubleLiteral:
		return fmt.Sprint(e.Value)
	case *sig.Symbol:
		s := fmt.Sprintf("%s %q owner=#%d", e.Kind, t.Name(e.Name), e.Owner)
		if names := e.Flags.Names(); len(names) > 0 {
			s += " flags=" + strings.Join(names, "|")
		}
		if e.Type.Valid() {
			s += fmt.Sprintf(" type=#%d", e.Type)
		}
		return s
	case *sig.ThisType:
		return fmt.Sprintf("sym=#%d", e.Symbol)
	case *sig.SingleType:
		return fmt.Sprintf("prefix=#%d sym=#%d", e.Prefix, e.Symbol)
	case *sig.ClassType:
		return fmt.Sprintf("sym=#%d args=%s", e.Symbol, refs(e.Args))
	case *sig.MethodType:
		return fmt.Sprintf("result=#%d params=%s", e.Result, refs(e.Params))
	case *sig.PolyType:
		return fmt.Sprintf("result=#%d tparams=%s", e.Result, refs(e.TypeParams))
	case *sig.Annotation:
		return fmt.Sprintf("target=#%d type=#%d args=%s", e.Target, e.Type, refs(e.Args))
	}
	return ""
}

func (td TableDoc) text(b *strings.Builder) {
	for _, e := range td.Entries {
		fmt.Fprintf(b, "%4d  %-12s %s\n", e.Index, e.Tag, e.Detail)
	}
}
