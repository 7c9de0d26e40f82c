package stdmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)
	assert.Greater(t, tbl.Len(), 10)

	e, ok := tbl.Lookup("json.dumps")
	require.True(t, ok)
	assert.Equal(t, "serde_json::to_string", e.Target)
	assert.Equal(t, "serde_json", e.Import)

	e, ok = tbl.Lookup("math.sqrt")
	require.True(t, ok)
	assert.Equal(t, "f64::sqrt", e.Target)
	assert.Empty(t, e.Import)

	_, ok = tbl.Lookup("socket.bind")
	assert.False(t, ok)
}

func TestApplyOverlayAddsAndOverrides(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)

	overlay := []byte(`
mappings:
  socket.bind:
    target: std::net::TcpListener::bind
  json.dumps:
    target: serde_json::to_string_pretty
    import: serde_json
`)
	require.NoError(t, tbl.ApplyOverlay(overlay))

	e, ok := tbl.Lookup("socket.bind")
	require.True(t, ok)
	assert.Equal(t, "std::net::TcpListener::bind", e.Target)

	e, _ = tbl.Lookup("json.dumps")
	assert.Equal(t, "serde_json::to_string_pretty", e.Target)
}

func TestApplyOverlayRejectsEmptyTarget(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)

	err = tbl.ApplyOverlay([]byte("mappings:\n  x.y:\n    import: z\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target must not be empty")
}

func TestApplyOverlayRejectsMalformedYAML(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)
	assert.Error(t, tbl.ApplyOverlay([]byte("mappings: [not a map")))
}
