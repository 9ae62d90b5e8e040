package ast

// Enum represents an `enum Name { ... }` declaration, top-level or nested
// inside a message. A well-formed Enum always has at least one value.
type Enum struct {
	Name string

	Values   []*EnumValue
	Options  []*Option
	Reserved []*Reserved

	Pos Position
}

// AllowAlias reports whether the enum declared `option allow_alias = true;`.
// When true, enum value numbers need not be pairwise distinct.
func (e *Enum) AllowAlias() bool {
	for _, opt := range e.Options {
		if opt.Name == "allow_alias" {
			return opt.Value.Kind == BoolValue && opt.Value.Bool
		}
	}
	return false
}

// EnumValue represents a single `NAME = number;` entry within an enum.
type EnumValue struct {
	Name    string
	Number  int32
	Options []*Option
	Pos     Position
}
