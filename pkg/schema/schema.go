// Package schema compiles YAML class definitions into signature blobs.
//
// It is the authoring side of the blob format: fixtures, the compile
// command, and tests that check descriptors against a known source graph
// all start from a Document.
package schema

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/odvcencio/sigil/pkg/graph"
	"github.com/odvcencio/sigil/pkg/sig"
)

// Document is one schema file.
type Document struct {
	Package string         `yaml:"package"`
	Marker  string         `yaml:"marker,omitempty"`
	Types   map[string]int `yaml:"types,omitempty"`
	Classes []Class        `yaml:"classes"`
}

// Class declares one class and its constructors.
type Class struct {
	Name         string        `yaml:"name"`
	Case         bool          `yaml:"case,omitempty"`
	TypeParams   []string      `yaml:"typeParams,omitempty"`
	Constructors []Constructor `yaml:"constructors"`
	Accessors    []string      `yaml:"accessors,omitempty"`
}

// Constructor is one declared constructor, in declaration order.
type Constructor struct {
	Marked  bool    `yaml:"marked,omitempty"`
	Private bool    `yaml:"private,omitempty"`
	Params  []Param `yaml:"params"`
}

// Param is one constructor parameter.
type Param struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default bool   `yaml:"default,omitempty"`
}

type alias struct {
	name  string
	arity int
}

var aliases = map[string]alias{
	"Int":     {"scala.Int", 0},
	"Long":    {"scala.Long", 0},
	"Float":   {"scala.Float", 0},
	"Double":  {"scala.Double", 0},
	"Boolean": {"scala.Boolean", 0},
	"Short":   {"scala.Short", 0},
	"Byte":    {"scala.Byte", 0},
	"Char":    {"scala.Char", 0},
	"String":  {"java.lang.String", 0},
	"List":    {"scala.collection.immutable.List", 1},
	"Seq":     {"scala.collection.immutable.Seq", 1},
	"Set":     {"scala.collection.immutable.Set", 1},
	"Option":  {"scala.Option", 1},
	"Map":     {"scala.collection.immutable.Map", 2},
}

// Parse decodes a schema document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseFile reads and parses the schema at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks names and parameter declarations.
func (d *Document) Validate() error {
	seen := make(map[string]bool)
	for i, c := range d.Classes {
		if c.Name == "" || strings.Contains(c.Name, ".") {
			return fmt.Errorf("class %d: invalid name %q", i, c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("class %s: declared twice", c.Name)
		}
		seen[c.Name] = true
		for j, ctor := range c.Constructors {
			names := make(map[string]bool)
			for _, p := range ctor.Params {
				if p.Name == "" || p.Type == "" {
					return fmt.Errorf("class %s: constructor %d: parameter needs name and type", c.Name, j)
				}
				if names[p.Name] {
					return fmt.Errorf("class %s: constructor %d: duplicate parameter %s", c.Name, j, p.Name)
				}
				names[p.Name] = true
			}
		}
	}
	return nil
}

// ID returns the full type identity of a class in the document.
func (d *Document) ID(c Class) sig.TypeID {
	if d.Package == "" {
		return sig.TypeID(c.Name)
	}
	return sig.TypeID(d.Package + "." + c.Name)
}

func (d *Document) marker() sig.TypeID {
	if d.Marker != "" {
		return sig.TypeID(d.Marker)
	}
	return graph.DefaultMarker
}

// Compile emits one blob per class.
func (d *Document) Compile() (map[sig.TypeID]sig.Blob, error) {
	out := make(map[sig.TypeID]sig.Blob, len(d.Classes))
	for _, c := range d.Classes {
		blob, err := d.compileClass(c)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", d.ID(c), err)
		}
		out[d.ID(c)] = blob
	}
	return out, nil
}

// IDs returns the type identities declared by the document, sorted.
func (d *Document) IDs() []sig.TypeID {
	ids := make([]sig.TypeID, 0, len(d.Classes))
	for _, c := range d.Classes {
		ids = append(ids, d.ID(c))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// classWriter tracks the symbols emitted for one class blob.
type classWriter struct {
	doc     *Document
	w       *sig.Writer
	self    sig.Ref
	tparams map[string]sig.Ref
	classes map[string]sig.Ref
	arity   map[string]int
}

func (d *Document) compileClass(c Class) (sig.Blob, error) {
	cw := &classWriter{
		doc:     d,
		w:       sig.NewWriter(),
		tparams: make(map[string]sig.Ref),
		classes: make(map[string]sig.Ref),
		arity:   make(map[string]int),
	}

	flags := sig.Flags(0)
	if c.Case {
		flags |= sig.FlagCase
	}
	id := d.ID(c)
	cw.self = cw.w.Class(id, flags)
	cw.classes[string(id)] = cw.self
	cw.arity[string(id)] = len(c.TypeParams)
	for _, tp := range c.TypeParams {
		if _, dup := cw.tparams[tp]; dup {
			return nil, fmt.Errorf("duplicate type parameter %s", tp)
		}
		cw.tparams[tp] = cw.w.Symbol(sig.KindTypeParam, tp, cw.self, 0, sig.NoRef)
	}

	paramTypes := make(map[string]sig.Ref)
	for i, ctor := range c.Constructors {
		ref, err := cw.constructor(ctor, paramTypes)
		if err != nil {
			return nil, fmt.Errorf("constructor %d: %w", i, err)
		}
		if ctor.Marked {
			markerType, err := cw.classType(typeExpr{Name: string(d.marker())})
			if err != nil {
				return nil, err
			}
			cw.w.Add(&sig.Annotation{Target: ref, Type: markerType})
		}
	}

	accessorFlag := sig.FlagParamAccessor
	if c.Case {
		accessorFlag = sig.FlagCaseAccessor
	}
	for _, name := range c.Accessors {
		typ, ok := paramTypes[name]
		if !ok {
			typ = sig.NoRef
		}
		cw.w.Symbol(sig.KindMethod, name, cw.self, sig.FlagMethod|accessorFlag, typ)
	}
	return cw.w.Encode()
}

func (cw *classWriter) constructor(ctor Constructor, paramTypes map[string]sig.Ref) (sig.Ref, error) {
	ref := cw.w.Reserve()
	params := make([]sig.Ref, len(ctor.Params))
	for i, p := range ctor.Params {
		expr, err := parseTypeExpr(p.Type)
		if err != nil {
			return sig.NoRef, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		typ, err := cw.classType(expr)
		if err != nil {
			return sig.NoRef, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		if _, ok := paramTypes[p.Name]; !ok {
			paramTypes[p.Name] = typ
		}
		flags := sig.FlagParam
		if p.Default {
			flags |= sig.FlagDefaultParam
		}
		params[i] = cw.w.Symbol(sig.KindValParam, p.Name, ref, flags, typ)
	}

	result := cw.w.Add(&sig.ThisType{Symbol: cw.self})
	mt := cw.w.Add(&sig.MethodType{Result: result, Params: params})
	flags := sig.FlagMethod | sig.FlagConstructor
	if ctor.Private {
		flags |= sig.FlagPrivate
	}
	err := cw.w.Fill(ref, &sig.Symbol{
		Kind:  sig.KindMethod,
		Name:  cw.w.TermName("<init>"),
		Owner: cw.self,
		Flags: flags,
		Type:  mt,
	})
	return ref, err
}

// resolveName maps a written type name to a full name and its declared
// type parameter count; -1 means the count is taken from first use.
func (cw *classWriter) resolveName(name string) (string, int) {
	if a, ok := aliases[name]; ok {
		return a.name, a.arity
	}
	full := name
	if !strings.Contains(name, ".") {
		for _, c := range cw.doc.Classes {
			if c.Name == name {
				return string(cw.doc.ID(c)), len(c.TypeParams)
			}
		}
		if cw.doc.Package != "" {
			full = cw.doc.Package + "." + name
		}
	}
	if n, ok := cw.doc.Types[full]; ok {
		return full, n
	}
	return full, -1
}

func (cw *classWriter) classType(t typeExpr) (sig.Ref, error) {
	if tp, ok := cw.tparams[t.Name]; ok {
		if len(t.Args) != 0 {
			return sig.NoRef, fmt.Errorf("type parameter %s takes no arguments", t.Name)
		}
		return cw.w.ClassType(tp), nil
	}

	full, declared := cw.resolveName(t.Name)
	sym, ok := cw.classes[full]
	if !ok {
		if declared < 0 {
			declared = len(t.Args)
		}
		sym = cw.w.Class(sig.TypeID(full), 0)
		for i := 0; i < declared; i++ {
			cw.w.Symbol(sig.KindTypeParam, typeParamName(i), sym, 0, sig.NoRef)
		}
		cw.classes[full] = sym
		cw.arity[full] = declared
	}
	if want := cw.arity[full]; want != len(t.Args) {
		return sig.NoRef, fmt.Errorf("%s takes %d type argument(s), got %d in %s", full, want, len(t.Args), t)
	}

	args := make([]sig.Ref, len(t.Args))
	for i, a := range t.Args {
		ref, err := cw.classType(a)
		if err != nil {
			return sig.NoRef, err
		}
		args[i] = ref
	}
	return cw.w.ClassType(sym, args...), nil
}

func typeParamName(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("T%d", i)
}
