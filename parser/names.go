package parser

import "github.com/protolang-go/protoparse/ast"

// nameKind identifies which shape rule validateName should apply.
type nameKind int

const (
	nameMessage nameKind = iota
	nameEnum
	nameService
	nameRpc
	nameField
	nameOneof
	namePackageSegment
)

func (k nameKind) label() string {
	switch k {
	case nameMessage:
		return "message name"
	case nameEnum:
		return "enum name"
	case nameService:
		return "service name"
	case nameRpc:
		return "rpc name"
	case nameField:
		return "field name"
	case nameOneof:
		return "oneof name"
	case namePackageSegment:
		return "package segment"
	default:
		return "name"
	}
}

// validateName enforces the shape rule for the given kind of declaration
// name: type-ish names (message, enum, service, rpc) start with an
// uppercase letter; field-ish names (field, oneof, package segment) start
// with a lowercase letter or underscore.
func validateName(kind nameKind, text string, pos ast.Position) error {
	if text == "" {
		return newError(InvalidName, pos, "%s must not be empty", kind.label())
	}
	r := rune(text[0])
	switch kind {
	case nameMessage, nameEnum, nameService, nameRpc:
		if !(r >= 'A' && r <= 'Z') {
			return newError(InvalidName, pos, "%s %q must start with an uppercase letter", kind.label(), text)
		}
	case nameField, nameOneof, namePackageSegment:
		if !((r >= 'a' && r <= 'z') || r == '_') {
			return newError(InvalidName, pos, "%s %q must start with a lowercase letter or underscore", kind.label(), text)
		}
	}
	return nil
}
