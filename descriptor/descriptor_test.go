package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protolang-go/protoparse/ast"
	"github.com/protolang-go/protoparse/parser"
)

func TestFromFileBasicMessage(t *testing.T) {
	f, err := parser.Parse(`syntax = "proto3";
package example.v1;
message Person {
	string name = 1;
	int32 age = 2;
	repeated string tags = 3;
}`)
	require.NoError(t, err)

	fdp, err := FromFile(f, "example/v1/person.proto")
	require.NoError(t, err)

	assert.Equal(t, "example/v1/person.proto", fdp.GetName())
	assert.Equal(t, "example.v1", fdp.GetPackage())
	assert.Equal(t, "proto3", fdp.GetSyntax())
	require.Len(t, fdp.MessageType, 1)

	msg := fdp.MessageType[0]
	assert.Equal(t, "Person", msg.GetName())
	require.Len(t, msg.Field, 3)
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_STRING, msg.Field[0].GetType())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL, msg.Field[0].GetLabel())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_INT32, msg.Field[1].GetType())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, msg.Field[2].GetLabel())
}

func TestFromFileMapFieldSynthesizesEntry(t *testing.T) {
	f, err := parser.Parse(`message Counters { map<string, int32> counts = 1; }`)
	require.NoError(t, err)

	fdp, err := FromFile(f, "counters.proto")
	require.NoError(t, err)

	msg := fdp.MessageType[0]
	require.Len(t, msg.Field, 1)
	assert.Equal(t, "CountsEntry", msg.Field[0].GetTypeName())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, msg.Field[0].GetLabel())

	require.Len(t, msg.NestedType, 1)
	entry := msg.NestedType[0]
	assert.Equal(t, "CountsEntry", entry.GetName())
	assert.True(t, entry.GetOptions().GetMapEntry())
	require.Len(t, entry.Field, 2)
	assert.Equal(t, "key", entry.Field[0].GetName())
	assert.Equal(t, "value", entry.Field[1].GetName())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_INT32, entry.Field[1].GetType())
}

func TestFromFileEnumWithAllowAlias(t *testing.T) {
	f, err := parser.Parse(`enum Status { option allow_alias = true; UNKNOWN = 0; OK = 1; DONE = 1; }`)
	require.NoError(t, err)

	fdp, err := FromFile(f, "status.proto")
	require.NoError(t, err)

	require.Len(t, fdp.EnumType, 1)
	enum := fdp.EnumType[0]
	assert.True(t, enum.GetOptions().GetAllowAlias())
	require.Len(t, enum.Value, 3)
}

func TestFromFileServiceWithStreaming(t *testing.T) {
	f, err := parser.Parse(`service Chat { rpc Stream (stream Msg) returns (stream Msg); }`)
	require.NoError(t, err)

	fdp, err := FromFile(f, "chat.proto")
	require.NoError(t, err)

	require.Len(t, fdp.Service, 1)
	method := fdp.Service[0].Method[0]
	assert.True(t, method.GetClientStreaming())
	assert.True(t, method.GetServerStreaming())
}

func TestFromFileReservedRanges(t *testing.T) {
	f := &ast.File{
		Syntax: "proto3",
		Messages: []*ast.Message{
			{
				Name: "Test",
				Reserved: []*ast.Reserved{
					{IsRange: true, Lo: 2, Hi: 4},
					{Name: "legacy"},
				},
			},
		},
	}
	fdp, err := FromFile(f, "test.proto")
	require.NoError(t, err)

	msg := fdp.MessageType[0]
	require.Len(t, msg.ReservedRange, 1)
	assert.Equal(t, int32(2), msg.ReservedRange[0].GetStart())
	assert.Equal(t, int32(5), msg.ReservedRange[0].GetEnd())
	assert.Equal(t, []string{"legacy"}, msg.ReservedName)
}
