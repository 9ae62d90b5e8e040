package ast

// FieldTypeKind discriminates the three shapes a field's type can take.
type FieldTypeKind int

const (
	ScalarField FieldTypeKind = iota
	NamedField
	MapField
)

// FieldType is a tagged union over a field's type. Exactly one group of
// fields is meaningful, selected by Kind:
//
//	ScalarField: Scalar
//	NamedField:  Named
//	MapField:    MapKey, MapValue
type FieldType struct {
	Kind FieldTypeKind

	Scalar ScalarKind // valid when Kind == ScalarField
	Named  TypeRef    // valid when Kind == NamedField

	MapKey   ScalarKind // valid when Kind == MapField
	MapValue *FieldType // valid when Kind == MapField; never itself a MapField
}

func (t FieldType) String() string {
	switch t.Kind {
	case ScalarField:
		return t.Scalar.String()
	case NamedField:
		return t.Named.String()
	case MapField:
		return "map<" + t.MapKey.String() + ", " + t.MapValue.String() + ">"
	default:
		return "<invalid type>"
	}
}

// Field represents a single field declaration, either a direct message field
// or a field nested inside a oneof (in which case Repeated and Optional are
// always false).
type Field struct {
	Name     string
	Number   int32
	Type     FieldType
	Repeated bool
	Optional bool
	Options  []*Option
	Pos      Position
}

// Oneof represents a `oneof name { ... }` block. Its fields may not carry
// the repeated or optional label.
type Oneof struct {
	Name   string
	Fields []*Field
	Pos    Position
}
