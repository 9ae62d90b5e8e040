package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allTokens(t *testing.T, input string) ([]Token, error) {
	t.Helper()
	l := New(input)
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

func TestIdentifiersAndPunctuation(t *testing.T) {
	toks, err := allTokens(t, "message Foo { string name = 1; }")
	require.NoError(t, err)

	var kinds []Kind
	var texts []string
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []Kind{
		Identifier, Identifier, Punct, Identifier, Identifier, Punct, Integer, Punct, Punct, EOF,
	}, kinds)
	assert.Equal(t, []string{
		"message", "Foo", "{", "string", "name", "=", "1", ";", "}", "",
	}, texts)
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input     string
		wantKind  Kind
		wantInt   uint64
		wantFloat float64
	}{
		{"0", Integer, 0, 0},
		{"19000", Integer, 19000, 0},
		{"0x1F", Integer, 31, 0},
		{"017", Integer, 15, 0}, // octal
		{"3.14", Float, 0, 3.14},
		{"1.", Float, 0, 1},
		{"1e10", Float, 0, 1e10},
		{"1.5e-3", Float, 0, 1.5e-3},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			toks, err := allTokens(t, tc.input)
			require.NoError(t, err)
			require.Len(t, toks, 2) // literal + EOF
			assert.Equal(t, tc.wantKind, toks[0].Kind)
			if tc.wantKind == Integer {
				assert.Equal(t, tc.wantInt, toks[0].IntValue)
			} else {
				assert.InDelta(t, tc.wantFloat, toks[0].FloatValue, 1e-9)
			}
		})
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`'hello'`, "hello"},
		{`"a\nb"`, "a\nb"},
		{`"a\tb\\c"`, "a\tb\\c"},
		{`"\x41"`, "A"},
		{`"A"`, "A"},
		{`"\0"`, "\x00"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			toks, err := allTokens(t, tc.input)
			require.NoError(t, err)
			require.Len(t, toks, 2)
			assert.Equal(t, String, toks[0].Kind)
			assert.Equal(t, tc.want, toks[0].Text)
		})
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	toks, err := allTokens(t, "// line comment\nmessage /* block\ncomment */ Foo {}")
	require.NoError(t, err)
	var texts []string
	for _, tok := range toks {
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []string{"message", "Foo", "{", "}", ""}, texts)
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, err := allTokens(t, "message Foo {} /* oops")
	require.Error(t, err)
	lexErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, UnterminatedComment, lexErr.Kind)
}

func TestUnterminatedString(t *testing.T) {
	_, err := allTokens(t, `"unterminated`)
	require.Error(t, err)
	lexErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, UnterminatedString, lexErr.Kind)
}

func TestInvalidEscape(t *testing.T) {
	_, err := allTokens(t, `"bad \q escape"`)
	require.Error(t, err)
	lexErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, InvalidEscape, lexErr.Kind)
}

func TestNonASCIIIdentifierRejected(t *testing.T) {
	_, err := allTokens(t, "message 测试 {}")
	require.Error(t, err)
	lexErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, UnexpectedCharacter, lexErr.Kind)
}

func TestLineAndColumnTracking(t *testing.T) {
	toks, err := allTokens(t, "message Foo {\n  string name = 1;\n}")
	require.NoError(t, err)
	// "name" is on line 2.
	var nameTok Token
	for _, tok := range toks {
		if tok.Text == "name" {
			nameTok = tok
		}
	}
	assert.Equal(t, 2, nameTok.Line)
	assert.Equal(t, 10, nameTok.Column)
}

func TestWhitespaceInsensitivity(t *testing.T) {
	a, err := allTokens(t, "message Foo{string name=1;}")
	require.NoError(t, err)
	b, err := allTokens(t, "message   Foo \t {\n string \n name \n = \n 1 ; \n }")
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Kind, b[i].Kind)
		assert.Equal(t, a[i].Text, b[i].Text)
	}
}
