package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const triangleOBJ = `
v -1 0 0
v 1 0 0
v 0 1 0
`

func writeMesh(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tri.obj")
	require.NoError(t, os.WriteFile(path, []byte(triangleOBJ+"f 1 2 3\n"), 0o644))
	return path
}

func TestDecodeSceneBuildsSensorAndEmitter(t *testing.T) {
	meshPath := writeMesh(t)

	yamlDoc := `
version: "1"
accel: bvh
materials:
  white:
    type: diffuse
    albedo: [0.8, 0.8, 0.8]
primitives:
  - mesh: ` + meshPath + `
    material: white
  - mesh: ` + meshPath + `
    material: white
    translate: [0, 5, 0]
    emitter:
      radiance: [4, 4, 4]
      two_sided: true
  - sensor:
      type: pinhole
      eye: [0, 1, 5]
      target: [0, 1, 0]
      fov_deg: 40
  - light:
      type: point
      position: [2, 2, 2]
      intensity: [1, 1, 1]
`
	doc, err := ParseYAML([]byte(yamlDoc))
	require.NoError(t, err)

	sc, err := DecodeScene(doc, 64, 48)
	require.NoError(t, err)
	require.NotNil(t, sc)
	require.NotNil(t, sc.Primitives[sc.SensorPrimitiveIndex].Sensor)

	foundAreaEmitter := false
	foundPointEmitter := false
	for i := range sc.Primitives {
		switch sc.Primitives[i].Emitter.(type) {
		case nil:
		default:
			if sc.Primitives[i].MeshAsset != nil {
				foundAreaEmitter = true
			} else {
				foundPointEmitter = true
			}
		}
	}
	require.True(t, foundAreaEmitter, "expected an area emitter on the emissive mesh primitive")
	require.True(t, foundPointEmitter, "expected the non-mesh point light primitive")
}

func TestDecodeSceneRejectsMissingSensor(t *testing.T) {
	meshPath := writeMesh(t)
	doc, err := ParseYAML([]byte(`
primitives:
  - mesh: ` + meshPath + `
`))
	require.NoError(t, err)

	_, err = DecodeScene(doc, 64, 48)
	require.Error(t, err)
}

func TestDecodeSceneRejectsUnknownMaterial(t *testing.T) {
	meshPath := writeMesh(t)
	doc, err := ParseYAML([]byte(`
primitives:
  - mesh: ` + meshPath + `
    material: nonexistent
  - sensor:
      type: pinhole
      eye: [0, 0, 5]
      target: [0, 0, 0]
`))
	require.NoError(t, err)

	_, err = DecodeScene(doc, 64, 48)
	require.Error(t, err)
}

func TestDecodeRenderBuildsOptionsAndFactory(t *testing.T) {
	doc, err := ParseYAML([]byte(`
version: "1"
width: 100
height: 50
passes: 3
parallel: false
integrator:
  type: pt
  max_depth: 6
`))
	require.NoError(t, err)

	dr, err := DecodeRender(doc)
	require.NoError(t, err)
	require.Equal(t, 100, dr.Options.Width)
	require.Equal(t, 50, dr.Options.Height)
	require.Equal(t, 3, dr.Options.MaxPasses)
	require.False(t, dr.Options.Parallel)
	require.NotNil(t, dr.NewIntegrator)
	require.NotNil(t, dr.NewIntegrator())
}

func TestDecodeRenderForcesSerialForProgressiveIntegrators(t *testing.T) {
	doc, err := ParseYAML([]byte(`
integrator:
  type: vcm
  max_depth: 5
parallel: true
`))
	require.NoError(t, err)

	dr, err := DecodeRender(doc)
	require.NoError(t, err)
	require.False(t, dr.Options.Parallel, "vcm must force serial scheduling")
}
