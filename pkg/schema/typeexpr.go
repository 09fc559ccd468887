package schema

import (
	"fmt"
	"strings"
)

// typeExpr is a parsed type expression such as "Map[String, List[T]]".
type typeExpr struct {
	Name string
	Args []typeExpr
}

func (t typeExpr) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return t.Name + "[" + strings.Join(args, ", ") + "]"
}

func parseTypeExpr(s string) (typeExpr, error) {
	p := &exprParser{src: s}
	t, err := p.expr()
	if err != nil {
		return typeExpr{}, fmt.Errorf("type %q: %w", s, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return typeExpr{}, fmt.Errorf("type %q: unexpected %q at %d", s, p.src[p.pos:], p.pos)
	}
	return t, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func isNameByte(b byte) bool {
	return b == '_' || b == '.' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func (p *exprParser) expr() (typeExpr, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return typeExpr{}, fmt.Errorf("expected type name at %d", start)
	}
	t := typeExpr{Name: name}

	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '[' {
		return t, nil
	}
	p.pos++
	for {
		arg, err := p.expr()
		if err != nil {
			return typeExpr{}, err
		}
		t.Args = append(t.Args, arg)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return typeExpr{}, fmt.Errorf("unterminated type arguments")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return t, nil
		default:
			return typeExpr{}, fmt.Errorf("unexpected %q at %d", p.src[p.pos], p.pos)
		}
	}
}
