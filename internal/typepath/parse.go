package typepath

import (
	"errors"
	"fmt"
	"strings"
)

// Parse reads a type-path string into its structured form. Parsing is purely
// lexical; no name resolution happens here.
func Parse(s string) (Expr, error) {
	p := &parser{input: strings.TrimSpace(s)}
	if p.input == "" {
		return nil, errors.New("empty type path")
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("unexpected trailing input %q in type path %q", p.input[p.pos:], p.input)
	}
	return e, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) rest() string { return p.input[p.pos:] }

// eat consumes tok if it is next in the input.
func (p *parser) eat(tok string) bool {
	if strings.HasPrefix(p.rest(), tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

// eatChanKeyword consumes "chan" only when it is a keyword, not the prefix of
// an identifier such as "channels.T".
func (p *parser) eatChanKeyword() bool {
	r := p.rest()
	if !strings.HasPrefix(r, "chan") {
		return false
	}
	if len(r) > 4 && r[4] != ' ' && r[4] != '<' {
		return false
	}
	p.pos += 4
	return true
}

func (p *parser) parseExpr() (Expr, error) {
	p.skipSpaces()
	switch {
	case p.eat("*"):
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Pointer{Elem: elem}, nil

	case p.eat("[]"):
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Slice{Elem: elem}, nil

	case p.eat("map["):
		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpaces()
		if !p.eat("]") {
			return nil, fmt.Errorf("expected ']' after map key in %q", p.input)
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Map{Key: key, Value: value}, nil

	case p.eat("func("):
		return p.parseFunc()

	case p.eat("<-chan"):
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Chan{Dir: RecvOnly, Elem: elem}, nil

	case p.eatChanKeyword():
		dir := SendRecv
		if p.eat("<-") {
			dir = SendOnly
		}
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Chan{Dir: dir, Elem: elem}, nil

	case p.pos < len(p.input) && p.input[p.pos] == '[':
		// Array: everything up to the closing bracket is the length.
		p.pos++
		end := strings.IndexByte(p.rest(), ']')
		if end < 0 {
			return nil, fmt.Errorf("unterminated array length in %q", p.input)
		}
		length := strings.TrimSpace(p.rest()[:end])
		if length == "" {
			return nil, fmt.Errorf("missing array length in %q", p.input)
		}
		p.pos += end + 1
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Array{Len: length, Elem: elem}, nil

	default:
		return p.parsePath()
	}
}

func (p *parser) parseFunc() (Expr, error) {
	params, err := p.parseList(')')
	if err != nil {
		return nil, err
	}
	f := &Func{Params: params}
	p.skipSpaces()
	switch {
	case p.eat("("):
		results, err := p.parseList(')')
		if err != nil {
			return nil, err
		}
		f.Results = results
	case p.pos < len(p.input) && !strings.ContainsRune(",])", rune(p.input[p.pos])):
		result, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		f.Results = []Expr{result}
	}
	return f, nil
}

// parseList parses a comma-separated list of type expressions terminated by
// term. The terminator is consumed.
func (p *parser) parseList(term byte) ([]Expr, error) {
	var list []Expr
	p.skipSpaces()
	if p.eat(string(term)) {
		return list, nil
	}
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		p.skipSpaces()
		if p.eat(",") {
			continue
		}
		if p.eat(string(term)) {
			return list, nil
		}
		return nil, fmt.Errorf("expected ',' or %q in %q", string(term), p.input)
	}
}

func isPathByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '.', b == '/', b == '_', b == '-', b == '~':
		return true
	}
	return false
}

func (p *parser) parsePath() (Expr, error) {
	start := p.pos
	for p.pos < len(p.input) && isPathByte(p.input[p.pos]) {
		p.pos++
	}
	raw := p.input[start:p.pos]
	if raw == "" {
		return nil, fmt.Errorf("expected a type path at offset %d of %q", start, p.input)
	}
	path, err := splitRaw(raw)
	if err != nil {
		return nil, err
	}
	// Generic arguments attach without whitespace: "pkg.Name[A, B]".
	if p.pos < len(p.input) && p.input[p.pos] == '[' {
		p.pos++
		args, err := p.parseList(']')
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("empty type argument list in %q", p.input)
		}
		path.Args = args
	}
	return path, nil
}

// splitRaw separates a raw path into package path and type name. The type
// name is everything after the last dot that follows the last slash.
func splitRaw(raw string) (*Path, error) {
	if raw == "." {
		return &Path{Pkg: "."}, nil
	}
	slash := strings.LastIndexByte(raw, '/')
	dot := strings.LastIndexByte(raw, '.')
	if dot > slash {
		pkg, name := raw[:dot], raw[dot+1:]
		if pkg == "" || name == "" {
			return nil, fmt.Errorf("invalid type path %q", raw)
		}
		return &Path{Pkg: pkg, Name: name}, nil
	}
	if slash == -1 {
		// Bare identifier: a builtin or a type of the annotated package.
		return &Path{Name: raw}, nil
	}
	if strings.HasPrefix(raw, "./") && strings.Count(raw, "/") == 1 {
		// "./Name": a type in the module's root package.
		return &Path{Pkg: ".", Name: raw[2:]}, nil
	}
	return nil, fmt.Errorf("type path %q is missing a type name", raw)
}
