/*
Package parser turns proto3 source text into an *ast.File, or a single
*Error describing the first rule it broke. Parsing is pure, synchronous,
and fails fast: there is no partial result and no recovery between errors.
Semantic checks (duplicate names, reserved collisions, the enum first-value
rule, and so on) run interleaved with syntactic parsing, at the point in the
grammar where the checked property first becomes knowable, rather than as a
separate pass over a finished tree.
*/
package parser

import (
	"fmt"

	"github.com/protolang-go/protoparse/ast"
	"github.com/protolang-go/protoparse/lexer"
)

// maxNestingDepth bounds how deeply messages may nest inside one another.
const maxNestingDepth = 100

// Parse parses a single proto3 source file and returns its AST, or the
// first *Error encountered.
func Parse(input string) (*ast.File, error) {
	p := &Parser{lex: lexer.New(input)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseFile()
}

// Parser holds the mutable state of a single parse: the lexer and the
// current look-ahead token. Other context (message nesting depth, whether
// the header section is still open) is passed as arguments or kept in local
// variables of the production that needs it.
type Parser struct {
	lex *lexer.Lexer
	tok lexer.Token
}

func (p *Parser) pos() ast.Position {
	return ast.Position{Line: p.tok.Line, Column: p.tok.Column}
}

// advance consumes the current token and loads the next one, translating
// any lexical failure into a *Error with a matching Kind.
func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		lexErr, ok := err.(*lexer.Error)
		if !ok {
			return wrapError(UnexpectedCharacter, p.pos(), err, "%s", err.Error())
		}
		return wrapError(ErrorKind(lexErr.Kind), ast.Position{Line: lexErr.Line, Column: lexErr.Column}, err, "%s", lexErr.Message)
	}
	p.tok = tok
	return nil
}

// peekSecond returns the token after the current one without consuming
// either, using the lexer's Save/Restore snapshot to implement the parser's
// one extra token of look-ahead (needed to tell a "map<" field type from a
// type named "map").
func (p *Parser) peekSecond() (lexer.Token, error) {
	state := p.lex.Save()
	tok, err := p.lex.Next()
	p.lex.Restore(state)
	return tok, err
}

// advanceExpectName consumes the current token (normally a keyword) and
// loads the next one, treating any lex failure as an InvalidName rather
// than a raw lex error: the token immediately following a declaration
// keyword is always expected to be that declaration's name, so a character
// the lexer cannot scan there (e.g. a non-ASCII letter) is best reported as
// a malformed name rather than a bare lexical complaint.
func (p *Parser) advanceExpectName() error {
	if err := p.advance(); err != nil {
		if pe, ok := err.(*Error); ok && isLexErrorKind(pe.Kind) {
			return newError(InvalidName, pe.Pos, "%s", pe.Message)
		}
		return err
	}
	return nil
}

func isLexErrorKind(k ErrorKind) bool {
	switch k {
	case UnexpectedCharacter, UnterminatedString, InvalidEscape, UnterminatedComment, InvalidNumber:
		return true
	default:
		return false
	}
}

func describe(tok lexer.Token) string {
	if tok.Kind == lexer.EOF {
		return "EOF"
	}
	return fmt.Sprintf("%s %q", tok.Kind, tok.Text)
}

func (p *Parser) expectPunct(text string) error {
	if p.tok.Kind != lexer.Punct || p.tok.Text != text {
		return newError(UnexpectedToken, p.pos(), "got %s, want %q", describe(p.tok), text)
	}
	return p.advance()
}

func (p *Parser) expectIdentText(text string) error {
	if p.tok.Kind != lexer.Identifier || p.tok.Text != text {
		return newError(UnexpectedToken, p.pos(), "got %s, want %q", describe(p.tok), text)
	}
	return p.advance()
}

func (p *Parser) expectSemicolon() error {
	if p.tok.Kind != lexer.Punct || p.tok.Text != ";" {
		return newError(MissingSemicolon, p.pos(), "got %s, want %q", describe(p.tok), ";")
	}
	return p.advance()
}

func (p *Parser) consumeIdent() (string, ast.Position, error) {
	if p.tok.Kind != lexer.Identifier {
		return "", ast.Position{}, newError(UnexpectedToken, p.pos(), "got %s, want identifier", describe(p.tok))
	}
	text, pos := p.tok.Text, p.pos()
	if err := p.advance(); err != nil {
		return "", ast.Position{}, err
	}
	return text, pos, nil
}

func (p *Parser) consumeString() (string, ast.Position, error) {
	if p.tok.Kind != lexer.String {
		return "", ast.Position{}, newError(UnexpectedToken, p.pos(), "got %s, want string literal", describe(p.tok))
	}
	text, pos := p.tok.Text, p.pos()
	if err := p.advance(); err != nil {
		return "", ast.Position{}, err
	}
	return text, pos, nil
}

func declareTypeName(names map[string]bool, name string, pos ast.Position) error {
	if names[name] {
		return newError(DuplicateTypeName, pos, "type %q already declared in this scope", name)
	}
	names[name] = true
	return nil
}

// parseFile is the top-level production: a sequence of syntax, package,
// import, option, message, enum, and service statements.
func (p *Parser) parseFile() (*ast.File, error) {
	f := &ast.File{Syntax: "proto3"}

	headerClosed := false
	sawPackage := false
	typeNames := map[string]bool{}
	optionNames := map[string]bool{}

	for p.tok.Kind != lexer.EOF {
		switch {
		case p.tok.Is("syntax"):
			if headerClosed {
				return nil, newError(SyntaxNotFirst, p.pos(), "syntax must be the first statement in the file")
			}
			if err := p.parseSyntax(f); err != nil {
				return nil, err
			}

		case p.tok.Is("package"):
			if sawPackage {
				return nil, newError(DuplicatePackage, p.pos(), "duplicate package declaration")
			}
			if err := p.parsePackage(f); err != nil {
				return nil, err
			}
			sawPackage = true
			headerClosed = true

		case p.tok.Is("import"):
			if err := p.parseImport(f); err != nil {
				return nil, err
			}
			headerClosed = true

		case p.tok.Is("option"):
			opt, err := p.parseOptionStatement()
			if err != nil {
				return nil, err
			}
			if optionNames[opt.Name] {
				return nil, newError(DuplicateOption, opt.Pos, "duplicate option %q", opt.Name)
			}
			optionNames[opt.Name] = true
			f.Options = append(f.Options, opt)
			headerClosed = true

		case p.tok.Is("message"):
			msg, err := p.parseMessage(1)
			if err != nil {
				return nil, err
			}
			if err := declareTypeName(typeNames, msg.Name, msg.Pos); err != nil {
				return nil, err
			}
			f.Messages = append(f.Messages, msg)
			headerClosed = true

		case p.tok.Is("enum"):
			enum, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			if err := declareTypeName(typeNames, enum.Name, enum.Pos); err != nil {
				return nil, err
			}
			f.Enums = append(f.Enums, enum)
			headerClosed = true

		case p.tok.Is("service"):
			svc, err := p.parseService()
			if err != nil {
				return nil, err
			}
			f.Services = append(f.Services, svc)
			headerClosed = true

		case p.tok.Kind == lexer.Punct && p.tok.Text == ";":
			if err := p.advance(); err != nil {
				return nil, err
			}

		default:
			return nil, newError(UnexpectedToken, p.pos(), "unexpected top-level token %s", describe(p.tok))
		}
	}
	return f, nil
}

func (p *Parser) parseSyntax(f *ast.File) error {
	pos := p.pos()
	if err := p.advance(); err != nil { // consume "syntax"
		return err
	}
	if err := p.expectPunct("="); err != nil {
		return err
	}
	val, _, err := p.consumeString()
	if err != nil {
		return err
	}
	if val != "proto3" {
		return newError(InvalidSyntaxValue, pos, "unsupported syntax %q: only \"proto3\" is supported", val)
	}
	f.Syntax = val
	return p.expectSemicolon()
}

func (p *Parser) parsePackage(f *ast.File) error {
	if err := p.advanceExpectName(); err != nil { // consume "package"
		return err
	}
	name, err := p.parseDottedPackageName()
	if err != nil {
		return err
	}
	f.Package = name
	return p.expectSemicolon()
}

// parseDottedPackageName parses "a.b.c", validating each segment's shape.
// Consecutive dots are rejected explicitly; every other malformed shape
// (missing segment at EOF, leading dot) surfaces as a structural
// UnexpectedToken, since the grammar simply has no identifier where one was
// expected.
func (p *Parser) parseDottedPackageName() (string, error) {
	var parts []string
	for {
		text, pos, err := p.consumeIdent()
		if err != nil {
			return "", err
		}
		if err := validateName(namePackageSegment, text, pos); err != nil {
			return "", err
		}
		parts = append(parts, text)

		if p.tok.Kind == lexer.Punct && p.tok.Text == "." {
			dotPos := p.pos()
			if err := p.advance(); err != nil {
				return "", err
			}
			if p.tok.Kind == lexer.Punct && p.tok.Text == "." {
				return "", newError(InvalidName, dotPos, "package name must not contain consecutive dots")
			}
			continue
		}
		break
	}
	joined := parts[0]
	for _, part := range parts[1:] {
		joined += "." + part
	}
	return joined, nil
}

func (p *Parser) parseImport(f *ast.File) error {
	if err := p.advance(); err != nil { // consume "import"
		return err
	}
	pos := p.pos()
	modifier := ast.ImportNone
	switch {
	case p.tok.Is("public"):
		modifier = ast.ImportPublic
		if err := p.advance(); err != nil {
			return err
		}
	case p.tok.Is("weak"):
		modifier = ast.ImportWeak
		if err := p.advance(); err != nil {
			return err
		}
	}
	path, _, err := p.consumeString()
	if err != nil {
		return err
	}
	f.Imports = append(f.Imports, &ast.Import{Path: path, Modifier: modifier, Pos: pos})
	return p.expectSemicolon()
}

// parseMessage parses a `message Name { ... }` block, recursing for nested
// messages. depth is the nesting depth of the message about to be parsed
// (1 for a top-level message).
func (p *Parser) parseMessage(depth int) (*ast.Message, error) {
	pos := p.pos()
	if depth > maxNestingDepth {
		return nil, newError(MaxNestingDepthExceeded, pos, "message nesting exceeds the maximum depth of %d", maxNestingDepth)
	}
	if err := p.advanceExpectName(); err != nil { // consume "message"
		return nil, err
	}
	name, namePos, err := p.consumeIdent()
	if err != nil {
		return nil, err
	}
	if err := validateName(nameMessage, name, namePos); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	msg := &ast.Message{Name: name, Pos: pos}
	fieldNumbers := map[int32]bool{}
	fieldNames := map[string]bool{}
	typeNames := map[string]bool{}

	for !(p.tok.Kind == lexer.Punct && p.tok.Text == "}") {
		if p.tok.Kind == lexer.EOF {
			return nil, newError(UnexpectedEOF, p.pos(), "unexpected end of file while parsing message %q", name)
		}
		switch {
		case p.tok.Is("message"):
			nested, err := p.parseMessage(depth + 1)
			if err != nil {
				return nil, err
			}
			if err := declareTypeName(typeNames, nested.Name, nested.Pos); err != nil {
				return nil, err
			}
			msg.Messages = append(msg.Messages, nested)

		case p.tok.Is("enum"):
			nested, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			if err := declareTypeName(typeNames, nested.Name, nested.Pos); err != nil {
				return nil, err
			}
			msg.Enums = append(msg.Enums, nested)

		case p.tok.Is("oneof"):
			oneof, err := p.parseOneof()
			if err != nil {
				return nil, err
			}
			for _, field := range oneof.Fields {
				if err := registerField(msg, fieldNumbers, fieldNames, field); err != nil {
					return nil, err
				}
			}
			msg.Oneofs = append(msg.Oneofs, oneof)

		case p.tok.Is("reserved"):
			reserved, err := p.parseReserved()
			if err != nil {
				return nil, err
			}
			for _, field := range msg.AllFields() {
				for _, r := range reserved {
					if r.Contains(field.Number) {
						return nil, newError(ReservedFieldCollision, field.Pos, "field number %d is reserved in message %q", field.Number, msg.Name)
					}
					if !r.IsRange && r.Name == field.Name {
						return nil, newError(ReservedNameCollision, field.Pos, "field name %q is reserved in message %q", field.Name, msg.Name)
					}
				}
			}
			msg.Reserved = append(msg.Reserved, reserved...)

		case p.tok.Is("option"):
			opt, err := p.parseOptionStatement()
			if err != nil {
				return nil, err
			}
			msg.Options = append(msg.Options, opt)

		case p.tok.Kind == lexer.Punct && p.tok.Text == ";":
			if err := p.advance(); err != nil {
				return nil, err
			}

		default:
			field, err := p.parseField()
			if err != nil {
				return nil, err
			}
			if err := registerField(msg, fieldNumbers, fieldNames, field); err != nil {
				return nil, err
			}
			msg.Fields = append(msg.Fields, field)
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return msg, nil
}

// registerField checks a newly parsed field against the uniqueness and
// reserved-collision invariants and records it if it passes. Here the field
// is checked against the Reserved entries already known at this point in the
// message body; a `reserved` statement that comes later is checked against
// the fields declared before it when that statement is parsed.
func registerField(msg *ast.Message, numbers map[int32]bool, names map[string]bool, f *ast.Field) error {
	if numbers[f.Number] {
		return newError(DuplicateFieldNumber, f.Pos, "field number %d already used in message %q", f.Number, msg.Name)
	}
	if names[f.Name] {
		return newError(DuplicateFieldName, f.Pos, "field name %q already used in message %q", f.Name, msg.Name)
	}
	for _, r := range msg.Reserved {
		if r.IsRange && r.Contains(f.Number) {
			return newError(ReservedFieldCollision, f.Pos, "field number %d is reserved in message %q", f.Number, msg.Name)
		}
		if !r.IsRange && r.Name == f.Name {
			return newError(ReservedNameCollision, f.Pos, "field name %q is reserved in message %q", f.Name, msg.Name)
		}
	}
	numbers[f.Number] = true
	names[f.Name] = true
	return nil
}

func (p *Parser) parseField() (*ast.Field, error) {
	pos := p.pos()
	repeated := false
	optional := false

	switch {
	case p.tok.Is("repeated"):
		repeated = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	case p.tok.Is("optional"):
		optional = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	case p.tok.Is("required"):
		return nil, newError(RequiredNotAllowed, pos, "proto3 does not support the %q label", "required")
	}

	ftype, err := p.parseFieldType()
	if err != nil {
		return nil, err
	}
	name, namePos, err := p.consumeIdent()
	if err != nil {
		return nil, err
	}
	if err := validateName(nameField, name, namePos); err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	number, err := p.parseFieldNumber()
	if err != nil {
		return nil, err
	}

	var opts []*ast.Option
	if p.tok.Kind == lexer.Punct && p.tok.Text == "[" {
		opts, err = p.parseCompactOptions()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}

	if ftype.Kind == ast.MapField && repeated {
		return nil, newError(InvalidMapValue, pos, "map field %q cannot carry the repeated label", name)
	}

	return &ast.Field{Name: name, Number: number, Type: ftype, Repeated: repeated, Optional: optional, Options: opts, Pos: pos}, nil
}

func (p *Parser) parseFieldNumber() (int32, error) {
	pos := p.pos()
	if p.tok.Kind != lexer.Integer {
		return 0, newError(UnexpectedToken, pos, "got %s, want a field number", describe(p.tok))
	}
	n := p.tok.IntValue
	if err := p.advance(); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, newError(InvalidFieldNumber, pos, "field number must not be zero")
	}
	if n > ast.MaxFieldNumber {
		return 0, newError(InvalidFieldNumber, pos, "field number %d exceeds the maximum of %d", n, ast.MaxFieldNumber)
	}
	if n >= ast.ReservedSystemRangeLo && n <= ast.ReservedSystemRangeHi {
		return 0, newError(InvalidFieldNumber, pos, "field number %d falls in the reserved range [%d, %d]", n, ast.ReservedSystemRangeLo, ast.ReservedSystemRangeHi)
	}
	return int32(n), nil
}

func (p *Parser) parseFieldType() (ast.FieldType, error) {
	if p.tok.Is("map") {
		next, err := p.peekSecond()
		if err == nil && next.Kind == lexer.Punct && next.Text == "<" {
			return p.parseMapType()
		}
	}
	if p.tok.Kind == lexer.Identifier {
		if k, ok := ast.ScalarKindByName(p.tok.Text); ok {
			if err := p.advance(); err != nil {
				return ast.FieldType{}, err
			}
			return ast.FieldType{Kind: ast.ScalarField, Scalar: k}, nil
		}
	}
	ref, err := p.parseTypeRef()
	if err != nil {
		return ast.FieldType{}, err
	}
	return ast.FieldType{Kind: ast.NamedField, Named: ref}, nil
}

func (p *Parser) parseTypeRef() (ast.TypeRef, error) {
	fq := false
	if p.tok.Kind == lexer.Punct && p.tok.Text == "." {
		fq = true
		if err := p.advance(); err != nil {
			return ast.TypeRef{}, err
		}
	}
	var parts []string
	for {
		text, _, err := p.consumeIdent()
		if err != nil {
			return ast.TypeRef{}, err
		}
		parts = append(parts, text)
		if p.tok.Kind == lexer.Punct && p.tok.Text == "." {
			if err := p.advance(); err != nil {
				return ast.TypeRef{}, err
			}
			continue
		}
		break
	}
	return ast.TypeRef{FullyQualified: fq, Parts: parts}, nil
}

func (p *Parser) parseMapType() (ast.FieldType, error) {
	if err := p.advance(); err != nil { // consume "map"
		return ast.FieldType{}, err
	}
	if err := p.expectPunct("<"); err != nil {
		return ast.FieldType{}, err
	}

	keyPos := p.pos()
	if p.tok.Kind != lexer.Identifier {
		return ast.FieldType{}, newError(InvalidMapKey, keyPos, "got %s, want a map key type", describe(p.tok))
	}
	keyName := p.tok.Text
	keyKind, ok := ast.ScalarKindByName(keyName)
	if err := p.advance(); err != nil {
		return ast.FieldType{}, err
	}
	if !ok || !keyKind.IsValidMapKey() {
		return ast.FieldType{}, newError(InvalidMapKey, keyPos, "%q is not a valid map key type", keyName)
	}

	if err := p.expectPunct(","); err != nil {
		return ast.FieldType{}, err
	}

	valuePos := p.pos()
	if p.tok.Is("map") {
		return ast.FieldType{}, newError(InvalidMapValue, valuePos, "a map value type cannot itself be a map")
	}
	valueType, err := p.parseFieldType()
	if err != nil {
		return ast.FieldType{}, err
	}
	if valueType.Kind == ast.MapField {
		return ast.FieldType{}, newError(InvalidMapValue, valuePos, "a map value type cannot itself be a map")
	}

	if err := p.expectPunct(">"); err != nil {
		return ast.FieldType{}, err
	}

	return ast.FieldType{Kind: ast.MapField, MapKey: keyKind, MapValue: &valueType}, nil
}

func (p *Parser) parseOneof() (*ast.Oneof, error) {
	pos := p.pos()
	if err := p.advanceExpectName(); err != nil { // consume "oneof"
		return nil, err
	}
	name, namePos, err := p.consumeIdent()
	if err != nil {
		return nil, err
	}
	if err := validateName(nameOneof, name, namePos); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	oneof := &ast.Oneof{Name: name, Pos: pos}
	for !(p.tok.Kind == lexer.Punct && p.tok.Text == "}") {
		if p.tok.Kind == lexer.EOF {
			return nil, newError(UnexpectedEOF, p.pos(), "unexpected end of file while parsing oneof %q", name)
		}
		if p.tok.Is("option") {
			if _, err := p.parseOptionStatement(); err != nil {
				return nil, err
			}
			continue
		}
		field, err := p.parseOneofField()
		if err != nil {
			return nil, err
		}
		oneof.Fields = append(oneof.Fields, field)
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	if len(oneof.Fields) == 0 {
		return nil, newError(EmptyOneof, pos, "oneof %q must declare at least one field", name)
	}
	return oneof, nil
}

func (p *Parser) parseOneofField() (*ast.Field, error) {
	pos := p.pos()
	if p.tok.Is("repeated") || p.tok.Is("optional") {
		return nil, newError(UnexpectedToken, pos, "oneof fields cannot carry the %q label", p.tok.Text)
	}
	if p.tok.Is("required") {
		return nil, newError(RequiredNotAllowed, pos, "proto3 does not support the %q label", "required")
	}

	ftype, err := p.parseFieldType()
	if err != nil {
		return nil, err
	}
	name, namePos, err := p.consumeIdent()
	if err != nil {
		return nil, err
	}
	if err := validateName(nameField, name, namePos); err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	number, err := p.parseFieldNumber()
	if err != nil {
		return nil, err
	}

	var opts []*ast.Option
	if p.tok.Kind == lexer.Punct && p.tok.Text == "[" {
		opts, err = p.parseCompactOptions()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}

	if ftype.Kind == ast.MapField {
		return nil, newError(InvalidMapValue, pos, "oneof field %q cannot be a map", name)
	}

	return &ast.Field{Name: name, Number: number, Type: ftype, Options: opts, Pos: pos}, nil
}

// parseReserved parses a `reserved ...;` statement, either a homogeneous
// list of numeric ranges or a homogeneous list of quoted names.
func (p *Parser) parseReserved() ([]*ast.Reserved, error) {
	if err := p.advance(); err != nil { // consume "reserved"
		return nil, err
	}
	if p.tok.Kind == lexer.String {
		return p.parseReservedNames()
	}
	return p.parseReservedRanges()
}

func (p *Parser) parseReservedNames() ([]*ast.Reserved, error) {
	var out []*ast.Reserved
	for {
		if p.tok.Kind != lexer.String {
			return nil, newError(UnexpectedToken, p.pos(), "got %s, want a reserved name", describe(p.tok))
		}
		pos := p.pos()
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		out = append(out, &ast.Reserved{Name: name, Pos: pos})
		if p.tok.Kind == lexer.Punct && p.tok.Text == "," {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) parseReservedRanges() ([]*ast.Reserved, error) {
	var out []*ast.Reserved
	for {
		pos := p.pos()
		lo, err := p.parseReservedNumber(false)
		if err != nil {
			return nil, err
		}
		hi := lo
		if p.tok.Is("to") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			hi, err = p.parseReservedNumber(true)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, &ast.Reserved{IsRange: true, Lo: lo, Hi: hi, Pos: pos})
		if p.tok.Kind == lexer.Punct && p.tok.Text == "," {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) parseReservedNumber(allowMax bool) (int32, error) {
	pos := p.pos()
	if allowMax && p.tok.Is("max") {
		if err := p.advance(); err != nil {
			return 0, err
		}
		return ast.MaxFieldNumber, nil
	}
	if p.tok.Kind != lexer.Integer {
		return 0, newError(UnexpectedToken, pos, "got %s, want a reserved number", describe(p.tok))
	}
	n := p.tok.IntValue
	if err := p.advance(); err != nil {
		return 0, err
	}
	if n == 0 || n > ast.MaxFieldNumber {
		return 0, newError(InvalidFieldNumber, pos, "reserved number %d is out of range", n)
	}
	return int32(n), nil
}

// parseEnum parses an `enum Name { ... }` block. The first-value-zero and
// duplicate-number checks are deferred until the closing brace, since
// whether allow_alias was set cannot be known until the whole body (where
// the option may appear anywhere) has been read.
func (p *Parser) parseEnum() (*ast.Enum, error) {
	pos := p.pos()
	if err := p.advanceExpectName(); err != nil { // consume "enum"
		return nil, err
	}
	name, namePos, err := p.consumeIdent()
	if err != nil {
		return nil, err
	}
	if err := validateName(nameEnum, name, namePos); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	enum := &ast.Enum{Name: name, Pos: pos}
	names := map[string]bool{}

	for !(p.tok.Kind == lexer.Punct && p.tok.Text == "}") {
		if p.tok.Kind == lexer.EOF {
			return nil, newError(UnexpectedEOF, p.pos(), "unexpected end of file while parsing enum %q", name)
		}
		switch {
		case p.tok.Is("option"):
			opt, err := p.parseOptionStatement()
			if err != nil {
				return nil, err
			}
			enum.Options = append(enum.Options, opt)

		case p.tok.Is("reserved"):
			reserved, err := p.parseReserved()
			if err != nil {
				return nil, err
			}
			enum.Reserved = append(enum.Reserved, reserved...)

		case p.tok.Kind == lexer.Punct && p.tok.Text == ";":
			if err := p.advance(); err != nil {
				return nil, err
			}

		default:
			value, err := p.parseEnumValue()
			if err != nil {
				return nil, err
			}
			if names[value.Name] {
				return nil, newError(DuplicateEnumValue, value.Pos, "enum value name %q already used in enum %q", value.Name, name)
			}
			for _, r := range enum.Reserved {
				if r.IsRange && r.Contains(value.Number) {
					return nil, newError(ReservedFieldCollision, value.Pos, "enum value number %d is reserved in enum %q", value.Number, name)
				}
				if !r.IsRange && r.Name == value.Name {
					return nil, newError(ReservedNameCollision, value.Pos, "enum value name %q is reserved in enum %q", value.Name, name)
				}
			}
			names[value.Name] = true
			enum.Values = append(enum.Values, value)
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}

	if len(enum.Values) == 0 {
		return nil, newError(EmptyEnum, pos, "enum %q must declare at least one value", name)
	}

	allowAlias := enum.AllowAlias()
	seenNumbers := map[int32]bool{}
	sawZero := false
	for _, v := range enum.Values {
		if v.Number == 0 {
			sawZero = true
		}
		if seenNumbers[v.Number] && !allowAlias {
			return nil, newError(DuplicateEnumValue, v.Pos, "enum value number %d already used in enum %q (allow_alias not set)", v.Number, name)
		}
		seenNumbers[v.Number] = true
	}
	if enum.Values[0].Number != 0 && !(allowAlias && sawZero) {
		return nil, newError(EnumFirstValueNotZero, enum.Values[0].Pos, "first value of enum %q must be zero unless allow_alias is set and some value is zero", name)
	}

	return enum, nil
}

func (p *Parser) parseEnumValue() (*ast.EnumValue, error) {
	pos := p.pos()
	name, _, err := p.consumeIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}

	neg := false
	if p.tok.Kind == lexer.Punct && (p.tok.Text == "-" || p.tok.Text == "+") {
		neg = p.tok.Text == "-"
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.tok.Kind != lexer.Integer {
		return nil, newError(UnexpectedToken, p.pos(), "got %s, want an enum value number", describe(p.tok))
	}
	n := int32(p.tok.IntValue)
	if neg {
		n = -n
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var opts []*ast.Option
	if p.tok.Kind == lexer.Punct && p.tok.Text == "[" {
		opts, err = p.parseCompactOptions()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}

	return &ast.EnumValue{Name: name, Number: n, Options: opts, Pos: pos}, nil
}

func (p *Parser) parseService() (*ast.Service, error) {
	pos := p.pos()
	if err := p.advanceExpectName(); err != nil { // consume "service"
		return nil, err
	}
	name, namePos, err := p.consumeIdent()
	if err != nil {
		return nil, err
	}
	if err := validateName(nameService, name, namePos); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	svc := &ast.Service{Name: name, Pos: pos}
	for !(p.tok.Kind == lexer.Punct && p.tok.Text == "}") {
		if p.tok.Kind == lexer.EOF {
			return nil, newError(UnexpectedEOF, p.pos(), "unexpected end of file while parsing service %q", name)
		}
		switch {
		case p.tok.Is("option"):
			opt, err := p.parseOptionStatement()
			if err != nil {
				return nil, err
			}
			svc.Options = append(svc.Options, opt)
		case p.tok.Is("rpc"):
			rpc, err := p.parseRpc()
			if err != nil {
				return nil, err
			}
			svc.Rpcs = append(svc.Rpcs, rpc)
		case p.tok.Kind == lexer.Punct && p.tok.Text == ";":
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			return nil, newError(UnexpectedToken, p.pos(), "unexpected token %s in service body", describe(p.tok))
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return svc, nil
}

func (p *Parser) parseRpc() (*ast.Rpc, error) {
	pos := p.pos()
	if err := p.advanceExpectName(); err != nil { // consume "rpc"
		return nil, err
	}
	name, namePos, err := p.consumeIdent()
	if err != nil {
		return nil, err
	}
	if err := validateName(nameRpc, name, namePos); err != nil {
		return nil, err
	}

	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	clientStreaming, inType, err := p.parseRpcType()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	if err := p.expectIdentText("returns"); err != nil {
		return nil, err
	}

	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	serverStreaming, outType, err := p.parseRpcType()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	rpc := &ast.Rpc{
		Name:            name,
		InputType:       inType,
		OutputType:      outType,
		ClientStreaming: clientStreaming,
		ServerStreaming: serverStreaming,
		Pos:             pos,
	}

	if p.tok.Kind == lexer.Punct && p.tok.Text == "{" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for !(p.tok.Kind == lexer.Punct && p.tok.Text == "}") {
			if p.tok.Kind == lexer.EOF {
				return nil, newError(UnexpectedEOF, p.pos(), "unexpected end of file while parsing rpc %q", name)
			}
			switch {
			case p.tok.Is("option"):
				opt, err := p.parseOptionStatement()
				if err != nil {
					return nil, err
				}
				rpc.Options = append(rpc.Options, opt)
			case p.tok.Kind == lexer.Punct && p.tok.Text == ";":
				if err := p.advance(); err != nil {
					return nil, err
				}
			default:
				return nil, newError(UnexpectedToken, p.pos(), "unexpected token %s in rpc body", describe(p.tok))
			}
		}
		if err := p.expectPunct("}"); err != nil {
			return nil, err
		}
	} else {
		if err := p.expectSemicolon(); err != nil {
			return nil, err
		}
	}
	return rpc, nil
}

// parseRpcType parses one `[stream] TypeName` inside an rpc's parens,
// recognizing "stream" as a contextual keyword by direct text comparison.
func (p *Parser) parseRpcType() (bool, ast.TypeRef, error) {
	if p.tok.Kind == lexer.Punct && p.tok.Text == ")" {
		return false, ast.TypeRef{}, newError(MissingType, p.pos(), "rpc argument list must name a type")
	}
	streaming := false
	if p.tok.Is("stream") {
		streaming = true
		if err := p.advance(); err != nil {
			return false, ast.TypeRef{}, err
		}
		if p.tok.Is("stream") {
			return false, ast.TypeRef{}, newError(InvalidStream, p.pos(), "duplicate %q keyword", "stream")
		}
	}
	ref, err := p.parseTypeRef()
	if err != nil {
		return false, ast.TypeRef{}, err
	}
	return streaming, ref, nil
}
