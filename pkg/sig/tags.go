package sig

import "fmt"

// Tag is the one-byte discriminator at the start of every entry.
type Tag uint8

const (
	TagTermName     Tag = 1
	TagTypeName     Tag = 2
	TagTypeParamSym Tag = 4
	TagClassSym     Tag = 6
	TagModuleSym    Tag = 7
	TagMethodSym    Tag = 8
	TagValParamSym  Tag = 9
	TagNoType       Tag = 11
	TagThisType     Tag = 13
	TagSingleType   Tag = 14
	TagClassType    Tag = 16
	TagMethodType   Tag = 20
	TagPolyType     Tag = 21
	TagIntLit       Tag = 29
	TagLongLit      Tag = 30
	TagFloatLit     Tag = 31
	TagDoubleLit    Tag = 32
	TagStringLit    Tag = 33
	TagAnnotation   Tag = 43
)

var tagNames = map[Tag]string{
	TagTermName:     "TERM_NAME",
	TagTypeName:     "TYPE_NAME",
	TagTypeParamSym: "SYMBOL_TYPEPARAM",
	TagClassSym:     "SYMBOL_CLASS",
	TagModuleSym:    "SYMBOL_MODULE",
	TagMethodSym:    "SYMBOL_METHOD",
	TagValParamSym:  "SYMBOL_VALPARAM",
	TagNoType:       "TYPEREF_NONE",
	TagThisType:     "TYPEREF_THIS",
	TagSingleType:   "TYPEREF_SINGLE",
	TagClassType:    "TYPEREF_CLASS",
	TagMethodType:   "TYPEREF_METHOD",
	TagPolyType:     "TYPEREF_POLY",
	TagIntLit:       "LITERAL_INT",
	TagLongLit:      "LITERAL_LONG",
	TagFloatLit:     "LITERAL_FLOAT",
	TagDoubleLit:    "LITERAL_DOUBLE",
	TagStringLit:    "LITERAL_STRING",
	TagAnnotation:   "ANNOTATION",
}

// Known reports whether t belongs to the tag vocabulary.
func (t Tag) Known() bool {
	_, ok := tagNames[t]
	return ok
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TAG(%d)", uint8(t))
}

// IsSymbol reports whether t carries a symbol payload.
func (t Tag) IsSymbol() bool {
	switch t {
	case TagTypeParamSym, TagClassSym, TagModuleSym, TagMethodSym, TagValParamSym:
		return true
	}
	return false
}

// IsType reports whether t is one of the type reference variants.
func (t Tag) IsType() bool {
	switch t {
	case TagNoType, TagThisType, TagSingleType, TagClassType, TagMethodType, TagPolyType:
		return true
	}
	return false
}

// IsName reports whether t is a term or type name.
func (t Tag) IsName() bool {
	return t == TagTermName || t == TagTypeName
}

// IsLiteral reports whether t is a literal constant.
func (t Tag) IsLiteral() bool {
	switch t {
	case TagIntLit, TagLongLit, TagFloatLit, TagDoubleLit, TagStringLit:
		return true
	}
	return false
}

// SymbolKind classifies symbol entries.
type SymbolKind uint8

const (
	KindClass SymbolKind = iota + 1
	KindMethod
	KindValParam
	KindTypeParam
	KindModule
)

func (k SymbolKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	case KindValParam:
		return "valparam"
	case KindTypeParam:
		return "typeparam"
	case KindModule:
		return "module"
	default:
		return "unknown"
	}
}

func symbolKindForTag(t Tag) SymbolKind {
	switch t {
	case TagClassSym:
		return KindClass
	case TagMethodSym:
		return KindMethod
	case TagValParamSym:
		return KindValParam
	case TagTypeParamSym:
		return KindTypeParam
	case TagModuleSym:
		return KindModule
	}
	return 0
}

func tagForSymbolKind(k SymbolKind) Tag {
	switch k {
	case KindClass:
		return TagClassSym
	case KindMethod:
		return TagMethodSym
	case KindValParam:
		return TagValParamSym
	case KindTypeParam:
		return TagTypeParamSym
	case KindModule:
		return TagModuleSym
	}
	return 0
}

// Flags is the modifier bitset carried by every symbol.
type Flags uint64

const (
	FlagImplicit      Flags = 1 << 0
	FlagFinal         Flags = 1 << 1
	FlagPrivate       Flags = 1 << 2
	FlagProtected     Flags = 1 << 3
	FlagSealed        Flags = 1 << 4
	FlagCase          Flags = 1 << 6
	FlagAbstract      Flags = 1 << 7
	FlagMethod        Flags = 1 << 9
	FlagModule        Flags = 1 << 10
	FlagParam         Flags = 1 << 13
	FlagPackage       Flags = 1 << 14
	FlagLocal         Flags = 1 << 19
	FlagCaseAccessor  Flags = 1 << 24
	FlagDefaultParam  Flags = 1 << 25
	FlagParamAccessor Flags = 1 << 29
	FlagConstructor   Flags = 1 << 30
)

// Has reports whether every bit in mask is set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagImplicit, "implicit"},
	{FlagFinal, "final"},
	{FlagPrivate, "private"},
	{FlagProtected, "protected"},
	{FlagSealed, "sealed"},
	{FlagCase, "case"},
	{FlagAbstract, "abstract"},
	{FlagMethod, "method"},
	{FlagModule, "module"},
	{FlagParam, "param"},
	{FlagPackage, "package"},
	{FlagLocal, "local"},
	{FlagCaseAccessor, "caseaccessor"},
	{FlagDefaultParam, "defaultparam"},
	{FlagParamAccessor, "paramaccessor"},
	{FlagConstructor, "constructor"},
}

// Names returns the names of the set flags in bit order. Unknown bits are
// reported as a single hex entry.
func (f Flags) Names() []string {
	var out []string
	rest := f
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			out = append(out, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		out = append(out, fmt.Sprintf("0x%x", uint64(rest)))
	}
	return out
}
