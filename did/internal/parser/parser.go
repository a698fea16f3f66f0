package parser

import (
	"strconv"
	"strings"

	"github.com/B3Pay/ic-reactor-go/did/internal/ast"
	"github.com/B3Pay/ic-reactor-go/did/internal/token"
	"github.com/B3Pay/ic-reactor-go/errors"
)

var annotations = map[string]bool{
	"query":           true,
	"composite_query": true,
	"oneway":          true,
}

type Parser struct {
	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse reads a whole interface description: definitions and imports,
// then at most one service declaration.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}

	for !p.done() {
		tok := p.peek()
		if tok.Type == token.Semi {
			p.next()
			continue
		}
		if tok.Type != token.Ident {
			return nil, p.unexpected(tok, "definition")
		}

		switch tok.Value {
		case "type":
			def, err := p.parseDef()
			if err != nil {
				return nil, err
			}
			prog.Defs = append(prog.Defs, def)
		case "import":
			imp, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			prog.Imports = append(prog.Imports, imp)
		case "service":
			if prog.Actor != nil {
				return nil, p.errorf(tok.Line, "duplicate service declaration")
			}
			actor, err := p.parseActor()
			if err != nil {
				return nil, err
			}
			prog.Actor = actor
		default:
			return nil, p.unexpected(tok, "'type', 'import' or 'service'")
		}
	}

	return prog, nil
}

func (p *Parser) parseDef() (ast.Def, error) {
	line := p.next().Line
	name, err := p.expect(token.Ident)
	if err != nil {
		return ast.Def{}, err
	}
	if _, err := p.expect(token.Equals); err != nil {
		return ast.Def{}, err
	}
	t, err := p.parseType()
	if err != nil {
		return ast.Def{}, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return ast.Def{}, err
	}
	return ast.Def{Name: name.Value, Type: t, Line: line}, nil
}

func (p *Parser) parseImport() (ast.Import, error) {
	imp := ast.Import{Line: p.next().Line}
	if p.peekKeyword("service") {
		p.next()
		imp.Service = true
	}
	path, err := p.expect(token.String)
	if err != nil {
		return imp, err
	}
	if imp.Path, err = p.text(path); err != nil {
		return imp, err
	}
	_, err = p.expect(token.Semi)
	return imp, err
}

func (p *Parser) parseActor() (*ast.Actor, error) {
	actor := &ast.Actor{Line: p.next().Line}
	if p.peek().Type == token.Ident {
		actor.Name = p.next().Value
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}

	if p.peek().Type == token.LParen {
		init, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Arrow); err != nil {
			return nil, err
		}
		actor.Init = init
	}

	switch tok := p.peek(); {
	case tok.Type == token.LBrace:
		svc, err := p.parseServiceBody()
		if err != nil {
			return nil, err
		}
		actor.Type = svc
	case tok.Type == token.Ident:
		p.next()
		actor.Type = &ast.Ref{Name: tok.Value, Line: tok.Line}
	default:
		return nil, p.unexpected(tok, "service body or type name")
	}

	if p.peek().Type == token.Semi {
		p.next()
	}
	if !p.done() {
		return nil, p.unexpected(p.peek(), "end of input after service")
	}
	return actor, nil
}

func (p *Parser) parseType() (ast.Type, error) {
	tok := p.peek()
	if tok.Type != token.Ident {
		return nil, p.unexpected(tok, "type")
	}
	p.next()

	switch tok.Value {
	case "opt":
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &ast.Opt{Elem: elem}, nil
	case "vec":
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &ast.Vec{Elem: elem}, nil
	case "record":
		fields, err := p.parseFields(false)
		if err != nil {
			return nil, err
		}
		return &ast.Record{Fields: fields}, nil
	case "variant":
		fields, err := p.parseFields(true)
		if err != nil {
			return nil, err
		}
		return &ast.Variant{Fields: fields}, nil
	case "func":
		return p.parseFuncType()
	case "service":
		return p.parseServiceBody()
	case "principal":
		return &ast.Principal{}, nil
	}
	return &ast.Ref{Name: tok.Value, Line: tok.Line}, nil
}

func (p *Parser) parseFields(variant bool) ([]ast.Field, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}

	var fields []ast.Field
	for p.peek().Type != token.RBrace {
		if p.done() {
			return nil, p.errorf(p.last().Line, "unexpected end of input")
		}
		f, err := p.parseField(variant)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)

		if p.peek().Type == token.Semi {
			p.next()
			continue
		}
		if p.peek().Type != token.RBrace {
			return nil, p.unexpected(p.peek(), "';' or '}'")
		}
	}
	p.next()
	return fields, nil
}

func (p *Parser) parseField(variant bool) (ast.Field, error) {
	tok := p.peek()
	f := ast.Field{Line: tok.Line}

	if p.peekAt(1).Type == token.Colon {
		name, err := p.label(tok)
		if err != nil {
			return f, err
		}
		p.next()
		p.next()
		f.Name = name
		f.Type, err = p.parseType()
		return f, err
	}

	if variant && (tok.Type == token.Ident || tok.Type == token.String) && p.endsField(p.peekAt(1)) {
		name, err := p.label(tok)
		if err != nil {
			return f, err
		}
		p.next()
		f.Name = name
		return f, nil
	}

	var err error
	f.Positional = true
	f.Type, err = p.parseType()
	return f, err
}

func (p *Parser) parseFuncType() (*ast.Func, error) {
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Arrow); err != nil {
		return nil, err
	}
	results, err := p.parseArgs()
	if err != nil {
		return nil, err
	}

	fn := &ast.Func{Args: args, Results: results}
	for p.peek().Type == token.Ident && annotations[p.peek().Value] {
		fn.Annotations = append(fn.Annotations, p.next().Value)
	}
	return fn, nil
}

func (p *Parser) parseArgs() ([]ast.Arg, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	var args []ast.Arg
	for p.peek().Type != token.RParen {
		if p.done() {
			return nil, p.errorf(p.last().Line, "unexpected end of input")
		}
		var arg ast.Arg
		if tok := p.peek(); (tok.Type == token.Ident || tok.Type == token.String) && p.peekAt(1).Type == token.Colon {
			name, err := p.label(tok)
			if err != nil {
				return nil, err
			}
			p.next()
			p.next()
			arg.Name = name
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		arg.Type = t
		args = append(args, arg)

		if p.peek().Type == token.Comma {
			p.next()
			continue
		}
		if p.peek().Type != token.RParen {
			return nil, p.unexpected(p.peek(), "',' or ')'")
		}
	}
	p.next()
	return args, nil
}

func (p *Parser) parseServiceBody() (*ast.Service, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}

	svc := &ast.Service{}
	for p.peek().Type != token.RBrace {
		if p.done() {
			return nil, p.errorf(p.last().Line, "unexpected end of input")
		}
		tok := p.next()
		if tok.Type != token.Ident && tok.Type != token.String {
			return nil, p.unexpected(tok, "method name")
		}
		name, err := p.label(tok)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}

		m := ast.Method{Name: name, Line: tok.Line}
		switch next := p.peek(); {
		case next.Type == token.LParen:
			if m.Type, err = p.parseFuncType(); err != nil {
				return nil, err
			}
		case next.Type == token.Ident && next.Value == "func":
			p.next()
			if m.Type, err = p.parseFuncType(); err != nil {
				return nil, err
			}
		case next.Type == token.Ident:
			p.next()
			m.Type = &ast.Ref{Name: next.Value, Line: next.Line}
		default:
			return nil, p.unexpected(next, "method type")
		}
		svc.Methods = append(svc.Methods, m)

		if p.peek().Type == token.Semi {
			p.next()
			continue
		}
		if p.peek().Type != token.RBrace {
			return nil, p.unexpected(p.peek(), "';' or '}'")
		}
	}
	p.next()
	return svc, nil
}

// label reads a field, argument or method name: an identifier, a quoted
// string or a numeric id.
func (p *Parser) label(tok token.Token) (string, error) {
	switch tok.Type {
	case token.Ident:
		return tok.Value, nil
	case token.String:
		return p.text(tok)
	case token.Number:
		n, err := strconv.ParseUint(strings.ReplaceAll(tok.Value, "_", ""), 0, 32)
		if err != nil {
			return "", p.errorf(tok.Line, "invalid field id %q", tok.Value)
		}
		return strconv.FormatUint(n, 10), nil
	}
	return "", p.unexpected(tok, "label")
}

func (p *Parser) text(tok token.Token) (string, error) {
	s, err := decodeString(tok.Value)
	if err != nil {
		return "", p.errorf(tok.Line, "%v", err)
	}
	return s, nil
}

func (p *Parser) endsField(tok token.Token) bool {
	return tok.Type == token.Semi || tok.Type == token.RBrace
}

func (p *Parser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) token.Token {
	if p.pos+offset >= len(p.tokens) {
		return token.Token{Type: token.Invalid, Line: p.last().Line}
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) last() token.Token {
	if len(p.tokens) == 0 {
		return token.Token{Line: 1}
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) peekKeyword(kw string) bool {
	tok := p.peek()
	return tok.Type == token.Ident && tok.Value == kw
}

func (p *Parser) next() token.Token {
	tok := p.peek()
	if !p.done() {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(typ token.Type) (token.Token, error) {
	tok := p.peek()
	if tok.Type != typ {
		return tok, p.unexpected(tok, typ.String())
	}
	p.pos++
	return tok, nil
}

func (p *Parser) unexpected(tok token.Token, want string) error {
	switch {
	case p.done():
		return p.errorf(tok.Line, "expected %s, got end of input", want)
	case tok.Type == token.Invalid && strings.HasPrefix(tok.Value, "\""):
		return p.errorf(tok.Line, "unterminated string")
	case tok.Type == token.Invalid:
		return p.errorf(tok.Line, "unexpected character %q", tok.Value)
	}
	return p.errorf(tok.Line, "expected %s, got %q", want, tok.Value)
}

func (p *Parser) errorf(line int, format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindParseError).
		Detail("line %d: "+format, append([]any{line}, args...)...).
		Build()
}
