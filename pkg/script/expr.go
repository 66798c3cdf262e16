package script

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// -----------------------------------------------------------------------
// AST nodes
// -----------------------------------------------------------------------

type expr interface {
	exprNode()
}

// binaryExpr covers logical, comparison and arithmetic operators.
type binaryExpr struct {
	op    string
	left  expr
	right expr
}

func (*binaryExpr) exprNode() {}

type unaryExpr struct {
	op      string // "!" | "-"
	operand expr
}

func (*unaryExpr) exprNode() {}

// literalExpr holds a pre-parsed constant (bool, int or string).
type literalExpr struct {
	value any
}

func (*literalExpr) exprNode() {}

// varExpr references a store variable as Namespace.Variable, or one of the
// bare context identifiers ("self", "speaker").
type varExpr struct {
	name string
}

func (*varExpr) exprNode() {}

// callExpr is a builtin or user method invocation.
type callExpr struct {
	name string
	args []expr
}

func (*callExpr) exprNode() {}

// statement is a single instruction: an assignment or a bare call.
type statement struct {
	target string // empty for bare calls
	op     string // "=" | "+=" | "-="
	value  expr
}

// -----------------------------------------------------------------------
// Tokenizer
// -----------------------------------------------------------------------

type tokenKind int

const (
	tokWord tokenKind = iota // identifier (may contain dots) or keyword
	tokOp                    // == != <= >= < > = += -= && || ! + - * / %
	tokString
	tokNumber
	tokLParen
	tokRParen
	tokComma
	tokSemi
	tokEOF
)

type token struct {
	kind tokenKind
	val  string
}

func tokenize(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		ch := src[i]
		if unicode.IsSpace(rune(ch)) {
			i++
			continue
		}
		switch ch {
		case '(':
			tokens = append(tokens, token{tokLParen, "("})
			i++
			continue
		case ')':
			tokens = append(tokens, token{tokRParen, ")"})
			i++
			continue
		case ',':
			tokens = append(tokens, token{tokComma, ","})
			i++
			continue
		case ';':
			tokens = append(tokens, token{tokSemi, ";"})
			i++
			continue
		}
		// Two-character operators first.
		if i+1 < len(src) {
			two := src[i : i+2]
			switch two {
			case "==", "!=", "<=", ">=", "&&", "||", "+=", "-=":
				tokens = append(tokens, token{tokOp, two})
				i += 2
				continue
			}
		}
		if strings.ContainsRune("<>=!+-*/%", rune(ch)) {
			tokens = append(tokens, token{tokOp, string(ch)})
			i++
			continue
		}
		// String literals with basic escapes.
		if ch == '"' || ch == '\'' {
			quote := ch
			j := i + 1
			for j < len(src) && src[j] != quote {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(src) {
				return nil, fmt.Errorf("unterminated string starting at position %d", i)
			}
			inner := src[i+1 : j]
			inner = strings.ReplaceAll(inner, `\"`, `"`)
			inner = strings.ReplaceAll(inner, `\'`, `'`)
			inner = strings.ReplaceAll(inner, `\\`, `\`)
			tokens = append(tokens, token{tokString, inner})
			i = j + 1
			continue
		}
		if unicode.IsDigit(rune(ch)) {
			j := i
			for j < len(src) && unicode.IsDigit(rune(src[j])) {
				j++
			}
			tokens = append(tokens, token{tokNumber, src[i:j]})
			i = j
			continue
		}
		// Identifiers; dots are part of the word (Namespace.Variable).
		if unicode.IsLetter(rune(ch)) || ch == '_' {
			j := i
			for j < len(src) && (unicode.IsLetter(rune(src[j])) || unicode.IsDigit(rune(src[j])) || src[j] == '_' || src[j] == '.') {
				j++
			}
			tokens = append(tokens, token{tokWord, src[i:j]})
			i = j
			continue
		}
		return nil, fmt.Errorf("unexpected character %q at position %d", ch, i)
	}
	tokens = append(tokens, token{tokEOF, ""})
	return tokens, nil
}

// -----------------------------------------------------------------------
// Recursive-descent parser
// -----------------------------------------------------------------------

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) consume() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) expect(kind tokenKind, val string) error {
	t := p.peek()
	if t.kind != kind || (val != "" && t.val != val) {
		return fmt.Errorf("expected %q but got %q", val, t.val)
	}
	p.consume()
	return nil
}

func parseExpression(src string) (expr, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("unexpected token %q after expression", p.peek().val)
	}
	return node, nil
}

func parseStatements(src string) ([]statement, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	var stmts []statement
	for {
		for p.peek().kind == tokSemi {
			p.consume()
		}
		if p.peek().kind == tokEOF {
			break
		}
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
		if p.peek().kind == tokSemi {
			p.consume()
			continue
		}
		if p.peek().kind != tokEOF {
			return nil, fmt.Errorf("expected ';' but got %q", p.peek().val)
		}
	}
	return stmts, nil
}

// statement = word ("=" | "+=" | "-=") or_expr | call
func (p *parser) parseStatement() (statement, error) {
	t := p.peek()
	if t.kind != tokWord {
		return statement{}, fmt.Errorf("expected assignment target or call, got %q", t.val)
	}
	next := p.tokens[p.pos+1]
	if next.kind == tokLParen {
		call, err := p.parsePrimary()
		if err != nil {
			return statement{}, err
		}
		return statement{value: call}, nil
	}
	if next.kind == tokOp && (next.val == "=" || next.val == "+=" || next.val == "-=") {
		p.consume() // target
		op := p.consume().val
		rhs, err := p.parseOr()
		if err != nil {
			return statement{}, err
		}
		return statement{target: t.val, op: op, value: rhs}, nil
	}
	return statement{}, fmt.Errorf("expected assignment operator after %q, got %q", t.val, next.val)
}

// or_expr = and_expr ( "||" and_expr )*
func (p *parser) parseOr() (expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && p.peek().val == "||" {
		p.consume()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: "||", left: left, right: right}
	}
	return left, nil
}

// and_expr = cmp_expr ( "&&" cmp_expr )*
func (p *parser) parseAnd() (expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && p.peek().val == "&&" {
		p.consume()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: "&&", left: left, right: right}
	}
	return left, nil
}

// cmp_expr = add_expr [ ("==" | "!=" | "<" | "<=" | ">" | ">=") add_expr ]
func (p *parser) parseComparison() (expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t.kind == tokOp {
		switch t.val {
		case "==", "!=", "<", "<=", ">", ">=":
			p.consume()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return &binaryExpr{op: t.val, left: left, right: right}, nil
		}
	}
	return left, nil
}

// add_expr = mul_expr ( ("+" | "-") mul_expr )*
func (p *parser) parseAdditive() (expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().val == "+" || p.peek().val == "-") {
		op := p.consume().val
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, left: left, right: right}
	}
	return left, nil
}

// mul_expr = unary ( ("*" | "/" | "%") unary )*
func (p *parser) parseMultiplicative() (expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().val == "*" || p.peek().val == "/" || p.peek().val == "%") {
		op := p.consume().val
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, left: left, right: right}
	}
	return left, nil
}

// unary = ("!" | "-") unary | primary
func (p *parser) parseUnary() (expr, error) {
	t := p.peek()
	if t.kind == tokOp && (t.val == "!" || t.val == "-") {
		p.consume()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{op: t.val, operand: inner}, nil
	}
	return p.parsePrimary()
}

// primary = literal | word | word "(" args ")" | "(" or_expr ")"
func (p *parser) parsePrimary() (expr, error) {
	t := p.peek()
	switch t.kind {
	case tokString:
		p.consume()
		return &literalExpr{value: t.val}, nil
	case tokNumber:
		p.consume()
		n, err := strconv.Atoi(t.val)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", t.val)
		}
		return &literalExpr{value: n}, nil
	case tokLParen:
		p.consume()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokWord:
		p.consume()
		switch t.val {
		case "true":
			return &literalExpr{value: true}, nil
		case "false":
			return &literalExpr{value: false}, nil
		}
		if p.peek().kind == tokLParen {
			p.consume()
			var args []expr
			for p.peek().kind != tokRParen {
				arg, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.peek().kind == tokComma {
					p.consume()
				}
			}
			p.consume() // ')'
			return &callExpr{name: t.val, args: args}, nil
		}
		return &varExpr{name: t.val}, nil
	default:
		return nil, fmt.Errorf("expected operand, got %q", t.val)
	}
}
