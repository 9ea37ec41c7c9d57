package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const triangleOBJ = `
# a single triangle with a vertex normal and uv set
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
vt 0 0
vt 1 0
vt 0 1
f 1/1/1 2/2/1 3/3/1
`

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadMeshTriangle(t *testing.T) {
	path := writeTemp(t, "tri.obj", triangleOBJ)
	mesh, err := LoadMesh(path)
	require.NoError(t, err)
	require.Equal(t, 1, mesh.TriangleCount())
	require.True(t, mesh.HasNormals())
	require.True(t, mesh.HasUVs())
}

const quadOBJ = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func TestLoadMeshQuadIsFanTriangulated(t *testing.T) {
	path := writeTemp(t, "quad.obj", quadOBJ)
	mesh, err := LoadMesh(path)
	require.NoError(t, err)
	require.Equal(t, 2, mesh.TriangleCount())
	require.False(t, mesh.HasNormals())
	require.False(t, mesh.HasUVs())
}

func TestLoadMeshMissingFile(t *testing.T) {
	_, err := LoadMesh("does-not-exist.obj")
	require.Error(t, err)
}

func TestLoadMeshRejectsDegenerateFace(t *testing.T) {
	path := writeTemp(t, "bad.obj", "v 0 0 0\nv 1 0 0\nf 1 2\n")
	_, err := LoadMesh(path)
	require.Error(t, err)
}
