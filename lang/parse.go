package lang

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/ardnew/scopexpr/log"
)

// Parse parses text as an expression with an optional top-level assignment:
//
//	Equation → [Target '='] Expr EOF
//	Target   → Path Index*
//	Expr     → Term (('+' | '-') Term)*
//	Term     → Factor (('*' | '/') Factor)*
//	Factor   → '-'? Power
//	Power    → Primary ('**' Factor)?
//	Primary  → Number | Path (Index+ | Call)? | '(' Expr ')'
//	Index    → '[' Expr (',' Expr)* ']'
//	Call     → '(' (Expr (',' Expr)*)? ')'
func Parse(ctx context.Context, text string) (Node, error) {
	return parseWith(ctx, text, log.Logger{}, (*parser).parseEquation)
}

// ParseSingleName parses text as a bare path with optional indices, the form
// accepted by single-name expressions.
func ParseSingleName(ctx context.Context, text string) (*Path, error) {
	n, err := parseWith(ctx, text, log.Logger{}, (*parser).parseSingle)
	if err != nil {
		return nil, err
	}

	return n.(*Path), nil
}

func parseWith(
	ctx context.Context,
	text string,
	logger log.Logger,
	rule func(*parser) (Node, error),
) (Node, error) {
	p := &parser{lex: newLexer(text), source: text}
	p.advance()

	n, err := rule(p)
	if err != nil {
		logger.TraceContext(ctx, "parse failed",
			slog.String("source", text),
			slog.Any("error", err))

		return nil, err
	}

	logger.TraceContext(ctx, "parse complete",
		slog.String("source", text))

	return n, nil
}

// parser holds the parser state: a lexer and one token of lookahead.
type parser struct {
	lex    *lexer
	source string
	tok    token
}

func (p *parser) advance() { p.tok = p.lex.next() }

func (p *parser) errorf(expected ...string) error {
	return &SyntaxError{
		Source:   p.source,
		Found:    p.tok.text,
		Expected: expected,
		Column:   p.tok.column(),
	}
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.tok
	if t.kind != kind {
		return t, p.errorf(kind.String())
	}

	p.advance()

	return t, nil
}

func (p *parser) expectEOF() error {
	if p.tok.kind != tokenEOF {
		return p.errorf("operator", tokenEOF.String())
	}

	return nil
}

func (p *parser) parseEquation() (Node, error) {
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.tok.kind == tokenAssign {
		target, ok := x.(*Path)
		if !ok || target.Call {
			return nil, p.errorf("operator", tokenEOF.String())
		}

		pos := p.tok.pos
		p.advance()

		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		x = &Assign{Target: target, Value: value, Pos: pos}
	}

	return x, p.expectEOF()
}

func (p *parser) parseSingle() (Node, error) {
	if p.tok.kind != tokenPath {
		return nil, p.errorf(tokenPath.String())
	}

	path, err := p.parsePathName()
	if err != nil {
		return nil, err
	}

	for p.tok.kind == tokenLBracket {
		group, err := p.parseIndex()
		if err != nil {
			return nil, err
		}

		path.Indices = append(path.Indices, group)
	}

	if p.tok.kind != tokenEOF {
		return nil, p.errorf(tokenLBracket.String(), tokenEOF.String())
	}

	return path, nil
}

func (p *parser) parseExpr() (Node, error) {
	x, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.tok.kind == tokenPlus || p.tok.kind == tokenMinus {
		op := p.tok
		p.advance()

		y, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		x = &Binary{X: x, Y: y, Op: op.text, Pos: op.pos}
	}

	return x, nil
}

func (p *parser) parseTerm() (Node, error) {
	x, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.tok.kind == tokenStar || p.tok.kind == tokenSlash {
		op := p.tok
		p.advance()

		y, err := p.parseFactor()
		if err != nil {
			return nil, err
		}

		x = &Binary{X: x, Y: y, Op: op.text, Pos: op.pos}
	}

	return x, nil
}

func (p *parser) parseFactor() (Node, error) {
	if p.tok.kind != tokenMinus {
		return p.parsePower()
	}

	pos := p.tok.pos
	p.advance()

	x, err := p.parsePower()
	if err != nil {
		return nil, err
	}

	return &Unary{X: x, Op: "-", Pos: pos}, nil
}

func (p *parser) parsePower() (Node, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	if p.tok.kind != tokenPower {
		return x, nil
	}

	op := p.tok
	p.advance()

	// Right-associative: the exponent is itself a factor.
	y, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	return &Binary{X: x, Y: y, Op: op.text, Pos: op.pos}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	switch p.tok.kind {
	case tokenNumber:
		return p.parseNumber()

	case tokenPath:
		return p.parsePath()

	case tokenLParen:
		pos := p.tok.pos
		p.advance()

		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}

		return &Group{X: x, Pos: pos}, nil

	default:
		return nil, p.errorf(
			tokenNumber.String(), tokenPath.String(), tokenLParen.String(),
		)
	}
}

func (p *parser) parseNumber() (Node, error) {
	t := p.tok

	if !strings.ContainsAny(t.text, ".eE") {
		if i, err := strconv.ParseInt(t.text, 10, 64); err == nil {
			p.advance()

			return &Number{
				Text: t.text, Value: float64(i), Integer: i, Int: true, Pos: t.pos,
			}, nil
		}
	}

	value, err := strconv.ParseFloat(t.text, 64)
	if err != nil || math.IsInf(value, 0) {
		return nil, p.errorf(tokenNumber.String())
	}

	p.advance()

	return &Number{Text: t.text, Value: value, Pos: t.pos}, nil
}

func (p *parser) parsePathName() (*Path, error) {
	t := p.tok

	if seg := reservedSegment(t.text); seg != "" {
		return nil, &SyntaxError{
			Source:   p.source,
			Found:    t.text,
			Expected: []string{"name not starting with " + strconv.Quote(reservedPrefix)},
			Column:   t.column(),
		}
	}

	p.advance()

	return &Path{Name: t.text, Pos: t.pos}, nil
}

func (p *parser) parsePath() (Node, error) {
	path, err := p.parsePathName()
	if err != nil {
		return nil, err
	}

	switch p.tok.kind {
	case tokenLBracket:
		for p.tok.kind == tokenLBracket {
			group, err := p.parseIndex()
			if err != nil {
				return nil, err
			}

			path.Indices = append(path.Indices, group)
		}

	case tokenLParen:
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}

		path.Args = args
		path.Call = true
	}

	return path, nil
}

func (p *parser) parseIndex() ([]Node, error) {
	if _, err := p.expect(tokenLBracket); err != nil {
		return nil, err
	}

	list, err := p.parseList(tokenRBracket)
	if err != nil {
		return nil, err
	}

	if len(list) == 0 {
		return nil, p.errorf(
			tokenNumber.String(), tokenPath.String(), tokenLParen.String(),
		)
	}

	_, err = p.expect(tokenRBracket)

	return list, err
}

func (p *parser) parseArgs() ([]Node, error) {
	if _, err := p.expect(tokenLParen); err != nil {
		return nil, err
	}

	list, err := p.parseList(tokenRParen)
	if err != nil {
		return nil, err
	}

	_, err = p.expect(tokenRParen)

	return list, err
}

// parseList parses comma-separated expressions up to (not including) end.
func (p *parser) parseList(end tokenKind) ([]Node, error) {
	if p.tok.kind == end {
		return nil, nil
	}

	var list []Node

	for {
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		list = append(list, x)

		if p.tok.kind != tokenComma {
			if p.tok.kind != end {
				return nil, p.errorf(tokenComma.String(), end.String())
			}

			return list, nil
		}

		p.advance()
	}
}
