package enginetest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/wippyai/jsbind"
)

// Expression AST. Small on purpose: just enough surface to drive the binding
// layer from script source.

type node interface{}

type numLit float64
type strLit string
type boolLit bool
type nullLit struct{}
type undefLit struct{}
type identRef string

type unaryExpr struct {
	operand node
	op      byte
}

type binaryExpr struct {
	lhs node
	rhs node
	op  byte
}

type callExpr struct {
	callee node
	args   []node
}

type throwStmt struct {
	expr node
}

// Lexer

type tokKind uint8

const (
	tEOF tokKind = iota
	tNumber
	tString
	tIdent
	tPunct
)

type token struct {
	str   string
	num   float64
	pos   int
	kind  tokKind
	punct byte
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && unicode.IsSpace(rune(l.src[l.pos])) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case c >= '0' && c <= '9' || c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.' ||
			l.src[l.pos] == 'e' || l.src[l.pos] == 'E' ||
			(l.pos > start && (l.src[l.pos] == '+' || l.src[l.pos] == '-') &&
				(l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E'))) {
			l.pos++
		}
		n, err := strconv.ParseFloat(l.src[start:l.pos], 64)
		if err != nil {
			return token{}, fmt.Errorf("invalid number at position %d", start)
		}
		return token{kind: tNumber, num: n, pos: start}, nil

	case c == '"' || c == '\'':
		quote := c
		l.pos++
		var b strings.Builder
		for {
			if l.pos >= len(l.src) {
				return token{}, fmt.Errorf("unterminated string at position %d", start)
			}
			ch := l.src[l.pos]
			if ch == quote {
				l.pos++
				return token{kind: tString, str: b.String(), pos: start}, nil
			}
			if ch == '\\' && l.pos+1 < len(l.src) {
				l.pos++
				switch l.src[l.pos] {
				case 'n':
					b.WriteByte('\n')
				case 't':
					b.WriteByte('\t')
				default:
					b.WriteByte(l.src[l.pos])
				}
				l.pos++
				continue
			}
			b.WriteByte(ch)
			l.pos++
		}

	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tIdent, str: l.src[start:l.pos], pos: start}, nil

	case strings.IndexByte("+-*/%(),;", c) >= 0:
		l.pos++
		return token{kind: tPunct, punct: c, pos: start}, nil

	default:
		return token{}, fmt.Errorf("unexpected character %q at position %d", c, start)
	}
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || c == '$' || unicode.IsLetter(rune(c)) }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }

// Parser: precedence climbing over additive and multiplicative tiers, unary
// minus, and postfix call.

type parser struct {
	lex lexer
	tok token
}

func parse(source string) ([]node, error) {
	p := &parser{lex: lexer{src: source}}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var prog []node
	for p.tok.kind != tEOF {
		if p.isPunct(';') {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}

		var stmt node
		if p.tok.kind == tIdent && p.tok.str == "throw" {
			if err := p.advance(); err != nil {
				return nil, err
			}
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt = throwStmt{expr: expr}
		} else {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt = expr
		}
		prog = append(prog, stmt)

		if p.tok.kind == tEOF {
			break
		}
		if !p.isPunct(';') {
			return nil, fmt.Errorf("expected ';' at position %d", p.tok.pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) isPunct(c byte) bool {
	return p.tok.kind == tPunct && p.tok.punct == c
}

func (p *parser) parseExpr() (node, error) {
	return p.parseAdditive()
}

func (p *parser) parseAdditive() (node, error) {
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.isPunct('+') || p.isPunct('-') {
		op := p.tok.punct
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		lhs = binaryExpr{op: op, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *parser) parseMultiplicative() (node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isPunct('*') || p.isPunct('/') || p.isPunct('%') {
		op := p.tok.punct
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = binaryExpr{op: op, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.isPunct('-') {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryExpr{op: '-', operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.isPunct('(') {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var args []node
		for !p.isPunct(')') {
			if len(args) > 0 {
				if !p.isPunct(',') {
					return nil, fmt.Errorf("expected ',' at position %d", p.tok.pos)
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr = callExpr{callee: expr, args: args}
	}
	return expr, nil
}

func (p *parser) parsePrimary() (node, error) {
	switch p.tok.kind {
	case tNumber:
		n := numLit(p.tok.num)
		return n, p.advance()
	case tString:
		s := strLit(p.tok.str)
		return s, p.advance()
	case tIdent:
		switch p.tok.str {
		case "true":
			return boolLit(true), p.advance()
		case "false":
			return boolLit(false), p.advance()
		case "null":
			return nullLit{}, p.advance()
		case "undefined":
			return undefLit{}, p.advance()
		case "throw":
			return nil, fmt.Errorf("unexpected 'throw' at position %d", p.tok.pos)
		}
		id := identRef(p.tok.str)
		return id, p.advance()
	case tPunct:
		if p.tok.punct == '(' {
			if err := p.advance(); err != nil {
				return nil, err
			}
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if !p.isPunct(')') {
				return nil, fmt.Errorf("expected ')' at position %d", p.tok.pos)
			}
			return expr, p.advance()
		}
	}
	return nil, fmt.Errorf("unexpected token at position %d", p.tok.pos)
}

// Evaluator. Every returned handle is owned by the caller; the threw flag
// carries exception state, never a Go panic.

func (e *Engine) run(prog []node) (jsbind.Raw, bool) {
	var result jsbind.Raw = hUndefined
	for _, stmt := range prog {
		if ts, ok := stmt.(throwStmt); ok {
			// The thrown value propagates whether or not its own
			// evaluation already threw.
			val, _ := e.evalNode(ts.expr)
			e.store.release(result)
			return val, true
		}

		val, threw := e.evalNode(stmt)
		if threw {
			e.store.release(result)
			return val, true
		}
		e.store.release(result)
		result = val
	}
	return result, false
}

func (e *Engine) evalNode(n node) (jsbind.Raw, bool) {
	switch v := n.(type) {
	case numLit:
		return e.Number(float64(v)), false
	case strLit:
		return e.String(string(v)), false
	case boolLit:
		return e.Boolean(bool(v)), false
	case nullLit:
		return hNull, false
	case undefLit:
		return hUndefined, false

	case identRef:
		ent := e.store.get(e.global)
		p, ok := ent.props[string(v)]
		if !ok {
			return e.NewError(jsbind.ErrorReference, string(v)+" is not defined"), true
		}
		e.store.acquire(p)
		return p, false

	case unaryExpr:
		operand, threw := e.evalNode(v.operand)
		if threw {
			return operand, true
		}
		n := e.ToNumber(operand)
		e.store.release(operand)
		return e.Number(-n), false

	case binaryExpr:
		return e.evalBinary(v)

	case callExpr:
		return e.evalCall(v)

	default:
		return e.typeError("unsupported expression")
	}
}

func (e *Engine) evalBinary(b binaryExpr) (jsbind.Raw, bool) {
	lhs, threw := e.evalNode(b.lhs)
	if threw {
		return lhs, true
	}
	rhs, threw := e.evalNode(b.rhs)
	if threw {
		e.store.release(lhs)
		return rhs, true
	}
	defer func() {
		e.store.release(lhs)
		e.store.release(rhs)
	}()

	if b.op == '+' && (e.IsString(lhs) || e.IsString(rhs)) {
		return e.String(e.ToString(lhs) + e.ToString(rhs)), false
	}

	l, r := e.ToNumber(lhs), e.ToNumber(rhs)
	switch b.op {
	case '+':
		return e.Number(l + r), false
	case '-':
		return e.Number(l - r), false
	case '*':
		return e.Number(l * r), false
	case '/':
		return e.Number(l / r), false
	case '%':
		return e.Number(math.Mod(l, r)), false
	default:
		return e.typeError("unsupported operator %q", string(b.op))
	}
}

func (e *Engine) evalCall(c callExpr) (jsbind.Raw, bool) {
	callee, threw := e.evalNode(c.callee)
	if threw {
		return callee, true
	}
	if !e.IsFunction(callee) {
		e.store.release(callee)
		return e.typeError("value is not a function")
	}

	args := make([]jsbind.Raw, 0, len(c.args))
	for _, a := range c.args {
		val, threw := e.evalNode(a)
		if threw {
			for _, arg := range args {
				e.store.release(arg)
			}
			e.store.release(callee)
			return val, true
		}
		args = append(args, val)
	}

	ret, threw := e.Call(callee, hUndefined, args)

	for _, arg := range args {
		e.store.release(arg)
	}
	e.store.release(callee)
	return ret, threw
}
