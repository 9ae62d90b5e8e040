package ast

// Service represents a `service Name { ... }` declaration.
type Service struct {
	Name    string
	Rpcs    []*Rpc
	Options []*Option
	Pos     Position
}

// Rpc represents a single `rpc Name (...) returns (...);` declaration.
type Rpc struct {
	Name            string
	InputType       TypeRef
	OutputType      TypeRef
	ClientStreaming bool
	ServerStreaming bool
	Options         []*Option
	Pos             Position
}
