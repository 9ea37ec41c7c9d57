package config

import (
	"fmt"
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/lights"
	"github.com/df07/go-progressive-raytracer/pkg/loaders"
	"github.com/df07/go-progressive-raytracer/pkg/material"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
)

func decodeAccelKind(s string) (scene.AccelKind, error) {
	switch s {
	case "bvh", "":
		return scene.AccelBVH, nil
	case "bvhxyz":
		return scene.AccelBVHXYZ, nil
	case "qbvh":
		return scene.AccelQBVH, nil
	case "naive":
		return scene.AccelNaive, nil
	default:
		return 0, fmt.Errorf("config: unknown accel kind %q", s)
	}
}

func decodeVec3(n Node) (core.Vec3, error) {
	x, y, z, err := n.Vec3()
	if err != nil {
		return core.Vec3{}, err
	}
	return core.NewVec3(x, y, z), nil
}

func decodeVec3Or(n Node, ok bool, def core.Vec3) (core.Vec3, error) {
	if !ok || n.Kind == KindNull {
		return def, nil
	}
	return decodeVec3(n)
}

// decodeMaterial builds a material.BSDF from a {type, ...} node. Supported
// types mirror pkg/material's BSDF sum type: diffuse, conductor, dielectric.
func decodeMaterial(n Node) (material.BSDF, error) {
	typeNode, ok := n.Field("type")
	if !ok {
		return nil, fmt.Errorf("material entry missing \"type\"")
	}
	kind, err := typeNode.String()
	if err != nil {
		return nil, err
	}

	switch kind {
	case "diffuse":
		albedoNode, ok := n.Field("albedo")
		albedo, err := decodeVec3Or(albedoNode, ok, core.NewVec3(0.8, 0.8, 0.8))
		if err != nil {
			return nil, err
		}
		return material.NewDiffuse(albedo), nil

	case "conductor":
		albedoNode, ok := n.Field("albedo")
		albedo, err := decodeVec3Or(albedoNode, ok, core.NewVec3(0.9, 0.9, 0.9))
		if err != nil {
			return nil, err
		}
		roughnessNode, _ := n.Field("roughness")
		return material.NewRoughConductor(albedo, roughnessNode.FloatOr(0.1)), nil

	case "dielectric":
		iorNode, _ := n.Field("ior")
		return material.NewDielectric(iorNode.FloatOr(1.5)), nil

	default:
		return nil, fmt.Errorf("unknown material type %q", kind)
	}
}

// decodeTransform reads optional "translate"/"rotate"/"scale" keys off a
// primitive entry and composes them as translate * rotate * scale, the
// conventional TRS order.
func decodeTransform(entry Node) (core.Transform, error) {
	m := core.Identity4()

	if scaleNode, ok := entry.Field("scale"); ok {
		s, err := decodeVec3(scaleNode)
		if err != nil {
			return core.Transform{}, fmt.Errorf("scale: %w", err)
		}
		m = core.Scale(s).Mul(m)
	}
	if rotateNode, ok := entry.Field("rotate"); ok {
		axisNode, _ := rotateNode.Field("axis")
		axis, err := decodeVec3Or(axisNode, true, core.NewVec3(0, 1, 0))
		if err != nil {
			return core.Transform{}, fmt.Errorf("rotate.axis: %w", err)
		}
		angleNode, _ := rotateNode.Field("angle")
		m = core.Rotate(axis, angleNode.FloatOr(0)).Mul(m)
	}
	if translateNode, ok := entry.Field("translate"); ok {
		t, err := decodeVec3(translateNode)
		if err != nil {
			return core.Transform{}, fmt.Errorf("translate: %w", err)
		}
		m = core.Translate(t).Mul(m)
	}

	return core.NewTransform(m), nil
}

type emitterSpec struct {
	radiance core.Vec3
	twoSided bool
}

func decodeAreaEmitterSpec(n Node) (*emitterSpec, error) {
	radianceNode, ok := n.Field("radiance")
	radiance, err := decodeVec3Or(radianceNode, ok, core.NewVec3(1, 1, 1))
	if err != nil {
		return nil, err
	}
	twoSidedNode, _ := n.Field("two_sided")
	return &emitterSpec{radiance: radiance, twoSided: twoSidedNode.BoolOr(false)}, nil
}

func triangleArea(v0, v1, v2 core.Vec3) float64 {
	return v1.Sub(v0).Cross(v2.Sub(v0)).Length() * 0.5
}

// singleFaceMesh extracts face f of mesh into its own 1-triangle
// TriangleMesh, so an AreaLight built over it matches scene.go's
// emitterWeight convention of approximating power from face 0's area.
func singleFaceMesh(mesh *geometry.TriangleMesh, f int) *geometry.TriangleMesh {
	v0, v1, v2 := mesh.FacePositions(f)
	positions := []core.Vec3{v0, v1, v2}

	var normals []core.Vec3
	if mesh.HasNormals() {
		i0, i1, i2 := mesh.FaceVertices(f)
		normals = []core.Vec3{mesh.Normals[i0], mesh.Normals[i1], mesh.Normals[i2]}
	}
	var uvs []core.Vec2
	if mesh.HasUVs() {
		i0, i1, i2 := mesh.FaceVertices(f)
		uvs = []core.Vec2{mesh.UVs[i0], mesh.UVs[i1], mesh.UVs[i2]}
	}
	return geometry.NewTriangleMesh(positions, normals, uvs, []int32{0, 1, 2})
}

// buildMeshPrimitives expands a loaded mesh into one scene.Primitive per
// face (spec.md section 3's Primitive.index addressing a face within a
// shared mesh asset). Emissive meshes get a dedicated 1-face sub-mesh and
// AreaLight per face instead of sharing the parent mesh, so each face's
// light contributes its own, exactly-areaed emitter rather than one light
// whose selection weight is only correct for a single triangle.
func buildMeshPrimitives(mesh *geometry.TriangleMesh, transform core.Transform, bsdf material.BSDF, emit *emitterSpec, nextID *int) []scene.Primitive {
	count := mesh.TriangleCount()
	out := make([]scene.Primitive, 0, count)
	for f := 0; f < count; f++ {
		prim := scene.Primitive{ID: *nextID, Index: f, Transform: transform, MeshAsset: mesh, BSDF: bsdf}
		if emit != nil {
			faceMesh := singleFaceMesh(mesh, f)
			v0, v1, v2 := faceMesh.FacePositions(0)
			worldArea := triangleArea(
				transform.ToWorld.MulPoint(v0),
				transform.ToWorld.MulPoint(v1),
				transform.ToWorld.MulPoint(v2),
			)
			prim.MeshAsset = faceMesh
			prim.Index = 0
			prim.Emitter = lights.NewAreaLight(faceMesh, transform.ToWorld, emit.radiance, emit.twoSided, worldArea)
		}
		out = append(out, prim)
		*nextID++
	}
	return out
}

func decodeSensor(n Node, width, height int) (lights.Sensor, error) {
	typeNode, ok := n.Field("type")
	if !ok {
		return nil, fmt.Errorf("sensor entry missing \"type\"")
	}
	kind, err := typeNode.String()
	if err != nil {
		return nil, err
	}

	eyeNode, _ := n.Field("eye")
	eye, err := decodeVec3Or(eyeNode, true, core.NewVec3(0, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("eye: %w", err)
	}
	targetNode, _ := n.Field("target")
	target, err := decodeVec3Or(targetNode, true, core.NewVec3(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	upNode, hasUp := n.Field("up")
	up, err := decodeVec3Or(upNode, hasUp, core.NewVec3(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("up: %w", err)
	}
	fovNode, _ := n.Field("fov_deg")
	fovDeg := fovNode.FloatOr(40)

	resXNode, _ := n.Field("width")
	resX := resXNode.IntOr(width)
	resYNode, _ := n.Field("height")
	resY := resYNode.IntOr(height)

	pinhole := lights.NewPinholeSensor(eye, target, up, fovDeg*math.Pi/180, resX, resY)

	switch kind {
	case "pinhole":
		return pinhole, nil
	case "thinlens":
		lensNode, _ := n.Field("lens_radius")
		focalNode, _ := n.Field("focal_distance")
		focalDefault := target.Sub(eye).Length()
		return lights.NewThinLensSensor(pinhole, lensNode.FloatOr(0), focalNode.FloatOr(focalDefault)), nil
	default:
		return nil, fmt.Errorf("unknown sensor type %q", kind)
	}
}

// decodeNonMeshLight builds a point, directional or environment Emitter —
// the three emitter kinds with no surface geometry of their own, attached
// directly to a scene.Primitive with MeshAsset left nil.
func decodeNonMeshLight(n Node) (lights.Emitter, error) {
	typeNode, ok := n.Field("type")
	if !ok {
		return nil, fmt.Errorf("light entry missing \"type\"")
	}
	kind, err := typeNode.String()
	if err != nil {
		return nil, err
	}

	switch kind {
	case "point":
		posNode, _ := n.Field("position")
		pos, err := decodeVec3Or(posNode, true, core.NewVec3(0, 0, 0))
		if err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		intensityNode, _ := n.Field("intensity")
		intensity, err := decodeVec3Or(intensityNode, true, core.NewVec3(1, 1, 1))
		if err != nil {
			return nil, fmt.Errorf("intensity: %w", err)
		}
		return lights.NewPointLight(pos, intensity), nil

	case "directional":
		dirNode, _ := n.Field("direction")
		dir, err := decodeVec3Or(dirNode, true, core.NewVec3(0, -1, 0))
		if err != nil {
			return nil, fmt.Errorf("direction: %w", err)
		}
		radianceNode, _ := n.Field("radiance")
		radiance, err := decodeVec3Or(radianceNode, true, core.NewVec3(1, 1, 1))
		if err != nil {
			return nil, fmt.Errorf("radiance: %w", err)
		}
		// A finite scene bound is assigned by the caller once all
		// primitives are known; DecodeScene patches this in a second pass.
		return lights.NewDirectionalLight(dir, radiance, core.SphereBound{Radius: 1}), nil

	case "environment":
		if imgNode, ok := n.Field("image"); ok {
			path, err := imgNode.String()
			if err != nil {
				return nil, err
			}
			img, err := loaders.LoadImage(path)
			if err != nil {
				return nil, err
			}
			return lights.NewEnvironmentLight(loaders.NewLatLongEnvironment(img), core.SphereBound{Radius: 1}), nil
		}
		colorNode, _ := n.Field("constant")
		color, err := decodeVec3Or(colorNode, true, core.NewVec3(0.5, 0.5, 0.5))
		if err != nil {
			return nil, fmt.Errorf("constant: %w", err)
		}
		return lights.NewEnvironmentLight(lights.ConstantEnvironment{Color: color}, core.SphereBound{Radius: 1}), nil

	default:
		return nil, fmt.Errorf("unknown light type %q", kind)
	}
}
