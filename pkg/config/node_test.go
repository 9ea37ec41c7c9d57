package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseYAMLScalarsAndNesting(t *testing.T) {
	doc, err := ParseYAML([]byte(`
name: test
count: 3
ratio: 1.5
enabled: true
position: [1, 2, 3]
nested:
  inner: hello
`))
	require.NoError(t, err)

	name, ok := doc.Field("name")
	require.True(t, ok)
	s, err := name.String()
	require.NoError(t, err)
	require.Equal(t, "test", s)

	count, _ := doc.Field("count")
	i, err := count.Int()
	require.NoError(t, err)
	require.Equal(t, 3, i)

	ratio, _ := doc.Field("ratio")
	require.Equal(t, 1.5, ratio.FloatOr(0))

	enabled, _ := doc.Field("enabled")
	require.True(t, enabled.BoolOr(false))

	pos, _ := doc.Field("position")
	x, y, z, err := pos.Vec3()
	require.NoError(t, err)
	require.Equal(t, [3]float64{1, 2, 3}, [3]float64{x, y, z})

	nested, ok := doc.Field("nested")
	require.True(t, ok)
	inner, ok := nested.Field("inner")
	require.True(t, ok)
	s, err = inner.String()
	require.NoError(t, err)
	require.Equal(t, "hello", s)
}

func TestNodeMissingFieldDefaults(t *testing.T) {
	doc, err := ParseYAML([]byte(`foo: bar`))
	require.NoError(t, err)

	missing, ok := doc.Field("baz")
	require.False(t, ok)
	require.Equal(t, 42, missing.IntOr(42))
	require.Equal(t, "fallback", missing.StringOr("fallback"))
}

func TestCheckVersionMismatch(t *testing.T) {
	doc, err := ParseYAML([]byte(`version: "99"`))
	require.NoError(t, err)
	require.Error(t, checkVersion(doc))

	doc, err = ParseYAML([]byte(`version: "` + EngineVersion + `"`))
	require.NoError(t, err)
	require.NoError(t, checkVersion(doc))

	doc, err = ParseYAML([]byte(`foo: bar`))
	require.NoError(t, err)
	require.NoError(t, checkVersion(doc))
}
