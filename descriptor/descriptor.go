/*
Package descriptor translates a parsed proto3 AST into the standard
google.protobuf.FileDescriptorProto wire shape, for consumers (code
generators, registries, reflection libraries) that want the AST in its
more widely supported form. The translation is one-way and
non-validating: it assumes its input already satisfies every invariant
the parser enforces, and never feeds back into parsing.

Field types that are bare dotted names (ast.NamedField) are emitted as
TYPE_MESSAGE, since the AST that feeds this package never resolves whether
a name refers to a message or an enum; a consumer that cares about the
distinction must resolve TypeName itself against the rest of the file set.
*/
package descriptor

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protolang-go/protoparse/ast"
)

// FromFile converts a parsed file into a FileDescriptorProto. name is the
// logical path to record as the descriptor's Name (e.g. "foo/bar.proto");
// the AST itself carries no notion of its own file path.
func FromFile(f *ast.File, name string) (*descriptorpb.FileDescriptorProto, error) {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:   proto.String(name),
		Syntax: proto.String(f.Syntax),
	}
	if f.Package != "" {
		fdp.Package = proto.String(f.Package)
	}
	for _, imp := range f.Imports {
		idx := int32(len(fdp.Dependency))
		fdp.Dependency = append(fdp.Dependency, imp.Path)
		switch imp.Modifier {
		case ast.ImportPublic:
			fdp.PublicDependency = append(fdp.PublicDependency, idx)
		case ast.ImportWeak:
			fdp.WeakDependency = append(fdp.WeakDependency, idx)
		}
	}
	for _, msg := range f.Messages {
		dp, err := messageDescriptor(msg)
		if err != nil {
			return nil, err
		}
		fdp.MessageType = append(fdp.MessageType, dp)
	}
	for _, enum := range f.Enums {
		edp, err := enumDescriptor(enum)
		if err != nil {
			return nil, err
		}
		fdp.EnumType = append(fdp.EnumType, edp)
	}
	for _, svc := range f.Services {
		sdp, err := serviceDescriptor(svc)
		if err != nil {
			return nil, err
		}
		fdp.Service = append(fdp.Service, sdp)
	}
	return fdp, nil
}

func messageDescriptor(m *ast.Message) (*descriptorpb.DescriptorProto, error) {
	dp := &descriptorpb.DescriptorProto{Name: proto.String(m.Name)}

	for _, field := range m.Fields {
		fdp, err := fieldDescriptor(field, m.Name, dp)
		if err != nil {
			return nil, err
		}
		dp.Field = append(dp.Field, fdp)
	}
	for oneofIdx, oneof := range m.Oneofs {
		dp.OneofDecl = append(dp.OneofDecl, &descriptorpb.OneofDescriptorProto{Name: proto.String(oneof.Name)})
		for _, field := range oneof.Fields {
			fdp, err := fieldDescriptor(field, m.Name, dp)
			if err != nil {
				return nil, err
			}
			fdp.OneofIndex = proto.Int32(int32(oneofIdx))
			dp.Field = append(dp.Field, fdp)
		}
	}
	for _, nested := range m.Messages {
		ndp, err := messageDescriptor(nested)
		if err != nil {
			return nil, err
		}
		dp.NestedType = append(dp.NestedType, ndp)
	}
	for _, enum := range m.Enums {
		edp, err := enumDescriptor(enum)
		if err != nil {
			return nil, err
		}
		dp.EnumType = append(dp.EnumType, edp)
	}
	for _, r := range m.Reserved {
		if r.IsRange {
			// DescriptorProto.ReservedRange uses a half-open interval.
			dp.ReservedRange = append(dp.ReservedRange, &descriptorpb.DescriptorProto_ReservedRange{
				Start: proto.Int32(r.Lo),
				End:   proto.Int32(r.Hi + 1),
			})
		} else {
			dp.ReservedName = append(dp.ReservedName, r.Name)
		}
	}
	return dp, nil
}

// fieldDescriptor converts a single field. For a map field, it also
// synthesizes the implicit "<FieldName>Entry" nested map-entry message onto
// parent, mirroring what protoc itself generates for `map<K, V>`.
func fieldDescriptor(f *ast.Field, parentName string, parent *descriptorpb.DescriptorProto) (*descriptorpb.FieldDescriptorProto, error) {
	fdp := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(f.Name),
		Number: proto.Int32(f.Number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
	}

	switch f.Type.Kind {
	case ast.ScalarField:
		t, err := scalarDescriptorType(f.Type.Scalar)
		if err != nil {
			return nil, err
		}
		fdp.Type = t.Enum()
		if f.Repeated {
			fdp.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
		}

	case ast.NamedField:
		fdp.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
		fdp.TypeName = proto.String(f.Type.Named.String())
		if f.Repeated {
			fdp.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
		}

	case ast.MapField:
		entryName := mapEntryName(f.Name)
		entry, err := mapEntryDescriptor(entryName, f.Type)
		if err != nil {
			return nil, err
		}
		parent.NestedType = append(parent.NestedType, entry)
		fdp.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
		fdp.TypeName = proto.String(entryName)
		fdp.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()

	default:
		return nil, fmt.Errorf("descriptor: unrecognized field type kind for %q.%s", parentName, f.Name)
	}

	return fdp, nil
}

func mapEntryName(fieldName string) string {
	if fieldName == "" {
		return "Entry"
	}
	r := rune(fieldName[0])
	if r >= 'a' && r <= 'z' {
		r = r - 'a' + 'A'
	}
	return string(r) + fieldName[1:] + "Entry"
}

func mapEntryDescriptor(entryName string, ft ast.FieldType) (*descriptorpb.DescriptorProto, error) {
	keyType, err := scalarDescriptorType(ft.MapKey)
	if err != nil {
		return nil, err
	}
	entry := &descriptorpb.DescriptorProto{
		Name: proto.String(entryName),
		Options: &descriptorpb.MessageOptions{
			MapEntry: proto.Bool(true),
		},
		Field: []*descriptorpb.FieldDescriptorProto{
			{
				Name:   proto.String("key"),
				Number: proto.Int32(1),
				Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
				Type:   keyType.Enum(),
			},
		},
	}
	valueField := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String("value"),
		Number: proto.Int32(2),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
	}
	switch ft.MapValue.Kind {
	case ast.ScalarField:
		t, err := scalarDescriptorType(ft.MapValue.Scalar)
		if err != nil {
			return nil, err
		}
		valueField.Type = t.Enum()
	case ast.NamedField:
		valueField.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
		valueField.TypeName = proto.String(ft.MapValue.Named.String())
	default:
		return nil, fmt.Errorf("descriptor: invalid map value type in %s", entryName)
	}
	entry.Field = append(entry.Field, valueField)
	return entry, nil
}

func enumDescriptor(e *ast.Enum) (*descriptorpb.EnumDescriptorProto, error) {
	edp := &descriptorpb.EnumDescriptorProto{Name: proto.String(e.Name)}
	for _, v := range e.Values {
		edp.Value = append(edp.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(v.Name),
			Number: proto.Int32(v.Number),
		})
	}
	if e.AllowAlias() {
		edp.Options = &descriptorpb.EnumOptions{AllowAlias: proto.Bool(true)}
	}
	for _, r := range e.Reserved {
		if r.IsRange {
			edp.ReservedRange = append(edp.ReservedRange, &descriptorpb.EnumDescriptorProto_EnumReservedRange{
				Start: proto.Int32(r.Lo),
				End:   proto.Int32(r.Hi),
			})
		} else {
			edp.ReservedName = append(edp.ReservedName, r.Name)
		}
	}
	return edp, nil
}

func serviceDescriptor(s *ast.Service) (*descriptorpb.ServiceDescriptorProto, error) {
	sdp := &descriptorpb.ServiceDescriptorProto{Name: proto.String(s.Name)}
	for _, rpc := range s.Rpcs {
		mdp := &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(rpc.Name),
			InputType:  proto.String(rpc.InputType.String()),
			OutputType: proto.String(rpc.OutputType.String()),
		}
		if rpc.ClientStreaming {
			mdp.ClientStreaming = proto.Bool(true)
		}
		if rpc.ServerStreaming {
			mdp.ServerStreaming = proto.Bool(true)
		}
		sdp.Method = append(sdp.Method, mdp)
	}
	return sdp, nil
}

func scalarDescriptorType(k ast.ScalarKind) (descriptorpb.FieldDescriptorProto_Type, error) {
	switch k {
	case ast.Double:
		return descriptorpb.FieldDescriptorProto_TYPE_DOUBLE, nil
	case ast.Float:
		return descriptorpb.FieldDescriptorProto_TYPE_FLOAT, nil
	case ast.Int32:
		return descriptorpb.FieldDescriptorProto_TYPE_INT32, nil
	case ast.Int64:
		return descriptorpb.FieldDescriptorProto_TYPE_INT64, nil
	case ast.Uint32:
		return descriptorpb.FieldDescriptorProto_TYPE_UINT32, nil
	case ast.Uint64:
		return descriptorpb.FieldDescriptorProto_TYPE_UINT64, nil
	case ast.Sint32:
		return descriptorpb.FieldDescriptorProto_TYPE_SINT32, nil
	case ast.Sint64:
		return descriptorpb.FieldDescriptorProto_TYPE_SINT64, nil
	case ast.Fixed32:
		return descriptorpb.FieldDescriptorProto_TYPE_FIXED32, nil
	case ast.Fixed64:
		return descriptorpb.FieldDescriptorProto_TYPE_FIXED64, nil
	case ast.Sfixed32:
		return descriptorpb.FieldDescriptorProto_TYPE_SFIXED32, nil
	case ast.Sfixed64:
		return descriptorpb.FieldDescriptorProto_TYPE_SFIXED64, nil
	case ast.Bool:
		return descriptorpb.FieldDescriptorProto_TYPE_BOOL, nil
	case ast.String:
		return descriptorpb.FieldDescriptorProto_TYPE_STRING, nil
	case ast.Bytes:
		return descriptorpb.FieldDescriptorProto_TYPE_BYTES, nil
	default:
		return 0, fmt.Errorf("descriptor: unrecognized scalar kind %v", k)
	}
}
