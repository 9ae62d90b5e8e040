package parser

import (
	"fmt"

	"github.com/protolang-go/protoparse/ast"
)

// ErrorKind is the closed taxonomy of failures the parser can report. Every
// Parse failure carries exactly one of these.
type ErrorKind int

const (
	// Lex errors, surfaced as-is from the lexer.
	UnexpectedCharacter ErrorKind = iota
	UnterminatedString
	InvalidEscape
	UnterminatedComment
	InvalidNumber

	// Shape errors.
	InvalidName
	InvalidFieldNumber
	InvalidOptionName
	InvalidStream
	InvalidMapKey
	InvalidMapValue

	// Structural errors.
	UnexpectedToken
	UnexpectedEOF
	MissingSemicolon
	MissingType
	EmptyEnum
	EmptyOneof
	EmptyBlockWhereRequired

	// Semantic errors.
	DuplicateFieldNumber
	DuplicateFieldName
	DuplicateEnumValue
	EnumFirstValueNotZero
	ReservedFieldCollision
	ReservedNameCollision
	DuplicateTypeName
	DuplicatePackage
	DuplicateOption
	RequiredNotAllowed
	SyntaxNotFirst
	InvalidSyntaxValue
	MaxNestingDepthExceeded
)

var errorKindNames = [...]string{
	UnexpectedCharacter:     "UnexpectedCharacter",
	UnterminatedString:      "UnterminatedString",
	InvalidEscape:           "InvalidEscape",
	UnterminatedComment:     "UnterminatedComment",
	InvalidNumber:           "InvalidNumber",
	InvalidName:             "InvalidName",
	InvalidFieldNumber:      "InvalidFieldNumber",
	InvalidOptionName:       "InvalidOptionName",
	InvalidStream:           "InvalidStream",
	InvalidMapKey:           "InvalidMapKey",
	InvalidMapValue:         "InvalidMapValue",
	UnexpectedToken:         "UnexpectedToken",
	UnexpectedEOF:           "UnexpectedEOF",
	MissingSemicolon:        "MissingSemicolon",
	MissingType:             "MissingType",
	EmptyEnum:               "EmptyEnum",
	EmptyOneof:              "EmptyOneof",
	EmptyBlockWhereRequired: "EmptyBlockWhereRequired",
	DuplicateFieldNumber:    "DuplicateFieldNumber",
	DuplicateFieldName:      "DuplicateFieldName",
	DuplicateEnumValue:      "DuplicateEnumValue",
	EnumFirstValueNotZero:   "EnumFirstValueNotZero",
	ReservedFieldCollision:  "ReservedFieldCollision",
	ReservedNameCollision:   "ReservedNameCollision",
	DuplicateTypeName:       "DuplicateTypeName",
	DuplicatePackage:        "DuplicatePackage",
	DuplicateOption:         "DuplicateOption",
	RequiredNotAllowed:      "RequiredNotAllowed",
	SyntaxNotFirst:          "SyntaxNotFirst",
	InvalidSyntaxValue:      "InvalidSyntaxValue",
	MaxNestingDepthExceeded: "MaxNestingDepthExceeded",
}

func (k ErrorKind) String() string {
	if int(k) < 0 || int(k) >= len(errorKindNames) {
		return "UnknownError"
	}
	return errorKindNames[k]
}

// Error is the single error type Parse ever returns. It carries the rule
// that fired, a human-readable message, and the source position at which
// the failure was detected.
type Error struct {
	Kind    ErrorKind
	Message string
	Pos     ast.Position
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrorKind, pos ast.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func wrapError(kind ErrorKind, pos ast.Position, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos, cause: cause}
}
