package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeysUTF16(t *testing.T) {
	obj := map[string]any{
		"b": int64(2),
		"a": int64(1),
		"c": int64(3),
	}

	out, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, string(out))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{"op": "<&>"})
	require.NoError(t, err)
	assert.Equal(t, `{"op":"<&>"}`, string(out))
}

func TestMarshalCanonicalRejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"x": 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"x": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null is forbidden")
}

func TestMarshalCanonicalNestedDeterminism(t *testing.T) {
	obj := map[string]any{
		"kind": "binary",
		"left": map[string]any{"kind": "name", "ident": "x"},
		"right": map[string]any{
			"kind":  "int",
			"value": int64(42),
		},
	}

	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	second, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, first, second, "canonical output must be byte-identical across calls")
}

func TestMarshalCanonicalU2028NotEscaped(t *testing.T) {
	out, err := MarshalCanonical("line\u2028sep")
	require.NoError(t, err)
	assert.Equal(t, "\"line\u2028sep\"", string(out))
}

func TestMarshalCanonicalBackslashU2028TextStaysEscaped(t *testing.T) {
	// A literal backslash followed by the text u2028 is NOT the U+2028
	// character and must survive as an escaped backslash.
	out, err := MarshalCanonical(`path\u2028like`)
	require.NoError(t, err)
	assert.Equal(t, `"path\\u2028like"`, string(out))
}

func TestCompareKeysRFC8785SurrogateOrdering(t *testing.T) {
	// U+1D7F6 encodes as a surrogate pair starting 0xD835, which sorts
	// before BMP code point U+FB33 under UTF-16 ordering; byte comparison
	// of the UTF-8 encodings gives the opposite answer.
	assert.Equal(t, 1, compareKeysRFC8785("דּ", "\U0001D7F6"))
	assert.Equal(t, -1, compareKeysRFC8785("\U0001D7F6", "דּ"))
	assert.Equal(t, 0, compareKeysRFC8785("same", "same"))
	assert.Equal(t, -1, compareKeysRFC8785("ab", "abc"), "shorter string first on shared prefix")
}
