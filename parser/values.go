package parser

import (
	"strings"

	"github.com/protolang-go/protoparse/ast"
	"github.com/protolang-go/protoparse/lexer"
)

// parseOptionStatement parses a standalone `option <name> = <value>;`.
func (p *Parser) parseOptionStatement() (*ast.Option, error) {
	if err := p.advance(); err != nil { // consume "option"
		return nil, err
	}
	opt, err := p.parseOptionNameAndValue()
	if err != nil {
		return nil, err
	}
	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}
	return opt, nil
}

// parseOptionNameAndValue parses `<name> = <value>` without a trailing
// terminator, shared between standalone options and compact option lists.
func (p *Parser) parseOptionNameAndValue() (*ast.Option, error) {
	pos := p.pos()
	name, isExt, err := p.parseOptionName()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &ast.Option{Name: name, IsExtension: isExt, Value: val, Pos: pos}, nil
}

// parseOptionName parses a plain dotted name ("foo.bar") or a parenthesised
// extension name ("(custom.ext).bar").
func (p *Parser) parseOptionName() (string, bool, error) {
	pos := p.pos()
	isExtension := false
	var sb strings.Builder

	// A missing name segment (leading, trailing, or doubled dot) is reported
	// as InvalidOptionName rather than a bare UnexpectedToken.
	consumeSegment := func() (string, ast.Position, error) {
		text, segPos, err := p.consumeIdent()
		if pe, ok := err.(*Error); ok && pe.Kind == UnexpectedToken {
			return "", segPos, newError(InvalidOptionName, pe.Pos, "malformed option name: %s", pe.Message)
		}
		return text, segPos, err
	}

	if p.tok.Kind == lexer.Punct && p.tok.Text == "(" {
		isExtension = true
		if err := p.advance(); err != nil {
			return "", false, err
		}
		sb.WriteString("(")
		first := true
		for {
			text, _, err := consumeSegment()
			if err != nil {
				return "", false, err
			}
			if !first {
				sb.WriteString(".")
			}
			sb.WriteString(text)
			first = false
			if p.tok.Kind == lexer.Punct && p.tok.Text == "." {
				if err := p.advance(); err != nil {
					return "", false, err
				}
				continue
			}
			break
		}
		if err := p.expectPunct(")"); err != nil {
			return "", false, err
		}
		sb.WriteString(")")
	} else {
		text, _, err := consumeSegment()
		if err != nil {
			return "", false, err
		}
		sb.WriteString(text)
	}

	for p.tok.Kind == lexer.Punct && p.tok.Text == "." {
		if err := p.advance(); err != nil {
			return "", false, err
		}
		text, _, err := consumeSegment()
		if err != nil {
			return "", false, err
		}
		sb.WriteString(".")
		sb.WriteString(text)
	}

	if sb.Len() == 0 {
		return "", false, newError(InvalidOptionName, pos, "empty option name")
	}
	return sb.String(), isExtension, nil
}

// parseValue parses any option value: string, signed number, bool,
// identifier, array literal, or message literal.
func (p *Parser) parseValue() (ast.Value, error) {
	switch {
	case p.tok.Kind == lexer.String:
		text := p.tok.Text
		if err := p.advance(); err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.StringValue, Str: text}, nil

	case p.tok.Kind == lexer.Integer:
		n := float64(p.tok.IntValue)
		if err := p.advance(); err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.NumberValue, Num: n}, nil

	case p.tok.Kind == lexer.Float:
		n := p.tok.FloatValue
		if err := p.advance(); err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.NumberValue, Num: n}, nil

	case p.tok.Kind == lexer.Punct && (p.tok.Text == "-" || p.tok.Text == "+"):
		neg := p.tok.Text == "-"
		if err := p.advance(); err != nil {
			return ast.Value{}, err
		}
		switch p.tok.Kind {
		case lexer.Integer:
			n := float64(p.tok.IntValue)
			if neg {
				n = -n
			}
			if err := p.advance(); err != nil {
				return ast.Value{}, err
			}
			return ast.Value{Kind: ast.NumberValue, Num: n}, nil
		case lexer.Float:
			n := p.tok.FloatValue
			if neg {
				n = -n
			}
			if err := p.advance(); err != nil {
				return ast.Value{}, err
			}
			return ast.Value{Kind: ast.NumberValue, Num: n}, nil
		default:
			return ast.Value{}, newError(UnexpectedToken, p.pos(), "got %s, want a number after sign", describe(p.tok))
		}

	case p.tok.Is("true"):
		if err := p.advance(); err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.BoolValue, Bool: true}, nil

	case p.tok.Is("false"):
		if err := p.advance(); err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.BoolValue, Bool: false}, nil

	case p.tok.Kind == lexer.Punct && p.tok.Text == "[":
		return p.parseArrayValue()

	case p.tok.Kind == lexer.Punct && p.tok.Text == "{":
		return p.parseMessageValue()

	case p.tok.Kind == lexer.Identifier:
		text := p.tok.Text
		if err := p.advance(); err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.IdentifierValue, Ident: text}, nil

	default:
		return ast.Value{}, newError(UnexpectedToken, p.pos(), "got %s, want an option value", describe(p.tok))
	}
}

func (p *Parser) parseArrayValue() (ast.Value, error) {
	if err := p.advance(); err != nil { // consume "["
		return ast.Value{}, err
	}
	var elems []ast.Value
	for !(p.tok.Kind == lexer.Punct && p.tok.Text == "]") {
		v, err := p.parseValue()
		if err != nil {
			return ast.Value{}, err
		}
		elems = append(elems, v)
		if p.tok.Kind == lexer.Punct && p.tok.Text == "," {
			if err := p.advance(); err != nil {
				return ast.Value{}, err
			}
			continue
		}
		break
	}
	if err := p.expectPunct("]"); err != nil {
		return ast.Value{}, err
	}
	return ast.Value{Kind: ast.ArrayValue, Elements: elems}, nil
}

// parseMessageValue parses a `{ name: value, [ext.name]: value ... }`
// message-literal option value. The colon before a value is optional, and
// entries may be separated by a comma, a semicolon, or nothing at all, per
// the protobuf text-format convention this grammar follows.
func (p *Parser) parseMessageValue() (ast.Value, error) {
	if err := p.advance(); err != nil { // consume "{"
		return ast.Value{}, err
	}
	var fields []ast.MessageFieldValue
	for !(p.tok.Kind == lexer.Punct && p.tok.Text == "}") {
		isExt := false
		var name string
		if p.tok.Kind == lexer.Punct && p.tok.Text == "[" {
			isExt = true
			if err := p.advance(); err != nil {
				return ast.Value{}, err
			}
			var sb strings.Builder
			first := true
			for {
				text, _, err := p.consumeIdent()
				if err != nil {
					return ast.Value{}, err
				}
				if !first {
					sb.WriteString(".")
				}
				sb.WriteString(text)
				first = false
				if p.tok.Kind == lexer.Punct && p.tok.Text == "." {
					if err := p.advance(); err != nil {
						return ast.Value{}, err
					}
					continue
				}
				break
			}
			name = sb.String()
			if err := p.expectPunct("]"); err != nil {
				return ast.Value{}, err
			}
		} else {
			text, _, err := p.consumeIdent()
			if err != nil {
				return ast.Value{}, err
			}
			name = text
		}

		if p.tok.Kind == lexer.Punct && p.tok.Text == ":" {
			if err := p.advance(); err != nil {
				return ast.Value{}, err
			}
		}
		val, err := p.parseValue()
		if err != nil {
			return ast.Value{}, err
		}
		fields = append(fields, ast.MessageFieldValue{Name: name, IsExtension: isExt, Value: val})

		if p.tok.Kind == lexer.Punct && (p.tok.Text == "," || p.tok.Text == ";") {
			if err := p.advance(); err != nil {
				return ast.Value{}, err
			}
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return ast.Value{}, err
	}
	return ast.Value{Kind: ast.MessageValue, Fields: fields}, nil
}

// parseCompactOptions parses a field's trailing `[ name = value, ... ]`.
func (p *Parser) parseCompactOptions() ([]*ast.Option, error) {
	if err := p.advance(); err != nil { // consume "["
		return nil, err
	}
	var opts []*ast.Option
	for {
		opt, err := p.parseOptionNameAndValue()
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
		if p.tok.Kind == lexer.Punct && p.tok.Text == "," {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return opts, nil
}
