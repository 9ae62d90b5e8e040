package ast

import "strings"

// TypeRef is a dotted identifier path naming a message or enum type, such as
// appears in a field's type or an RPC's input/output type. A leading dot
// (FullyQualified) denotes an absolute reference rooted at the top-level
// namespace, as opposed to one resolved relative to the current scope.
type TypeRef struct {
	FullyQualified bool
	Parts          []string
}

func (r TypeRef) String() string {
	s := strings.Join(r.Parts, ".")
	if r.FullyQualified {
		return "." + s
	}
	return s
}

// ScalarKind enumerates the fifteen proto3 built-in scalar field types.
type ScalarKind int

const (
	Double ScalarKind = iota
	Float
	Int32
	Int64
	Uint32
	Uint64
	Sint32
	Sint64
	Fixed32
	Fixed64
	Sfixed32
	Sfixed64
	Bool
	String
	Bytes
)

var scalarNames = [...]string{
	Double:   "double",
	Float:    "float",
	Int32:    "int32",
	Int64:    "int64",
	Uint32:   "uint32",
	Uint64:   "uint64",
	Sint32:   "sint32",
	Sint64:   "sint64",
	Fixed32:  "fixed32",
	Fixed64:  "fixed64",
	Sfixed32: "sfixed32",
	Sfixed64: "sfixed64",
	Bool:     "bool",
	String:   "string",
	Bytes:    "bytes",
}

func (k ScalarKind) String() string {
	if int(k) < 0 || int(k) >= len(scalarNames) {
		return "<invalid scalar>"
	}
	return scalarNames[k]
}

// ScalarKindByName looks up a scalar kind by its proto3 keyword, e.g. "int32".
func ScalarKindByName(name string) (ScalarKind, bool) {
	for k, n := range scalarNames {
		if n == name {
			return ScalarKind(k), true
		}
	}
	return 0, false
}

// IsValidMapKey reports whether a scalar kind may be used as a map key type.
// Proto3 excludes floating-point types, bytes, and message/enum types.
func (k ScalarKind) IsValidMapKey() bool {
	switch k {
	case Int32, Int64, Uint32, Uint64, Sint32, Sint64, Fixed32, Fixed64, Sfixed32, Sfixed64, Bool, String:
		return true
	default:
		return false
	}
}
