// Package scene assembles the immutable scene graph the renderer
// traverses: a flattened array of primitives (spec.md section 3), the
// acceleration structure over them, and the emitter/sensor selection
// distributions. Structurally this replaces the teacher's pointer-based
// Scene{Shapes []geometry.Shape, Lights []lights.Light} (pkg/scene/scene.go
// in the original) with an arena+index model per spec.md's REDESIGN FLAGS.
package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/accel"
	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/lights"
	"github.com/df07/go-progressive-raytracer/pkg/material"
)

// Primitive is the scene-graph atom: spec.md section 3's
// `{id, index, transform, normal_transform, mesh?, bsdf?, emitter?, light?, sensor?}`.
// Index selects one face of the shared TriangleMesh MeshAsset; the optional
// fields are asset-kind pointers, at most one of Emitter/Sensor set.
type Primitive struct {
	ID              int
	Index           int // face index within MeshAsset when MeshAsset != nil
	Transform       core.Transform
	MeshAsset       *geometry.TriangleMesh
	BSDF            material.BSDF
	Emitter         lights.Emitter
	Sensor          lights.Sensor
	emitterIndex    int // index into Scene.emitters when Emitter != nil, else -1
	worldFaceArea   float64
}

// Scene bundles everything a render needs: spec.md section 3's
// `{primitives[], sensor_primitive_index, emitter_distribution_by_type, scene_bound, scene_sphere_bound}`.
type Scene struct {
	Primitives           []Primitive
	SensorPrimitiveIndex int
	EmitterSampler       *lights.EmitterSampler
	// EmitterPrimitiveIndex[i] is the index into Primitives owning the i'th
	// emitter in EmitterSampler, the reverse of Primitive.emitterIndex —
	// pkg/subpath needs it to attach a Primitive reference to a light
	// subpath's first vertex.
	EmitterPrimitiveIndex []int
	Bound                 core.AABB
	SphereBound           core.SphereBound
	Accel                 accel.Accelerator
}

// AccelKind selects which acceleration structure Build constructs,
// matching spec.md 4.1's three variants.
type AccelKind int

const (
	AccelBVH AccelKind = iota
	AccelBVHXYZ
	AccelQBVH
	AccelNaive
)

// Build finalizes a scene from its primitive array: it computes world
// bounds, constructs the chosen acceleration structure, and builds the
// power-weighted emitter selection distribution. Grounded on the
// teacher's Scene.Preprocess (BVH construction + light sampler
// construction performed once, after all primitives/lights are known).
func Build(primitives []Primitive, sensorPrimitiveIndex int, kind AccelKind) (*Scene, error) {
	s := &Scene{Primitives: primitives, SensorPrimitiveIndex: sensorPrimitiveIndex}

	if sensorPrimitiveIndex < 0 || sensorPrimitiveIndex >= len(primitives) {
		return nil, fmt.Errorf("scene: sensor primitive index %d out of range [0,%d)", sensorPrimitiveIndex, len(primitives))
	}
	if primitives[sensorPrimitiveIndex].Sensor == nil {
		return nil, fmt.Errorf("scene: primitive %d designated as sensor has no Sensor asset", sensorPrimitiveIndex)
	}

	bound := core.EmptyAABB()
	for i := range primitives {
		bound = bound.Union(s.primitiveBounds(i))
	}
	s.Bound = bound
	s.SphereBound = bound.BoundingSphere()

	src := (*primitiveIntersector)(s)
	switch kind {
	case AccelBVHXYZ:
		s.Accel = accel.NewBVHXYZ(src, len(primitives))
	case AccelQBVH:
		s.Accel = accel.NewQBVH(src, len(primitives))
	case AccelNaive:
		s.Accel = accel.NewNaive(src, len(primitives))
	default:
		s.Accel = accel.NewBVH(src, len(primitives))
	}

	var emitters []lights.Emitter
	var weights []float64
	for i := range primitives {
		if primitives[i].Emitter == nil {
			continue
		}
		primitives[i].emitterIndex = len(emitters)
		emitters = append(emitters, primitives[i].Emitter)
		weights = append(weights, emitterWeight(primitives[i].Emitter))
		s.EmitterPrimitiveIndex = append(s.EmitterPrimitiveIndex, i)
	}
	s.EmitterSampler = lights.NewEmitterSampler(emitters, weights)

	return s, nil
}

// Intersect finds the nearest hit along ray within [tMin,tMax] and resolves
// its full shading geometry in one call — the single entry point
// pkg/subpath uses to grow a path vertex by vertex.
func (s *Scene) Intersect(ray core.Ray, tMin, tMax float64) (geometry.SurfaceGeometry, *Primitive, bool) {
	hit, ok := s.Accel.Hit(ray, tMin, tMax)
	if !ok {
		return geometry.SurfaceGeometry{}, nil, false
	}
	return s.ResolveHit(hit.PrimitiveIndex, ray, hit.T), &s.Primitives[hit.PrimitiveIndex], true
}

// Occluded reports whether anything blocks ray within [tMin,tMax], used for
// shadow rays in next-event estimation.
func (s *Scene) Occluded(ray core.Ray, tMin, tMax float64) bool {
	return s.Accel.Occluded(ray, tMin, tMax)
}

// EmitterSelectionProbability returns the probability EmitterSampler would
// assign to drawing the emitter owned by primitive p, the reverse lookup
// pkg/path's PDF algebra needs to convert an emitter endpoint back into
// full-path measure (spec.md section 4.3's p_A(y0) * P(emitter)).
func (s *Scene) EmitterSelectionProbability(p *Primitive) float64 {
	if p.Emitter == nil {
		return 0
	}
	return s.EmitterSampler.Probability(p.emitterIndex)
}

// emitterWeight approximates total emitted power for selection-probability
// purposes: luminance times a representative solid angle/area factor. An
// exact power integral would require numerically integrating each
// emitter's full emission profile; this first-moment approximation is the
// same one the teacher's SampleLight selection leaves to a uniform
// distribution (we go one step further and weight it, but don't chase
// exact radiometric power).
func emitterWeight(e lights.Emitter) float64 {
	switch v := e.(type) {
	case *lights.AreaLight:
		return v.Radiance.Luminance() * math.Max(v.Mesh.FaceArea(0), 1e-6)
	default:
		return 1.0
	}
}

func (s *Scene) primitiveBounds(i int) core.AABB {
	p := &s.Primitives[i]
	if p.MeshAsset == nil {
		return core.AABB{} // non-mesh primitives (none in the current asset set) would bound themselves here
	}
	v0, v1, v2 := p.MeshAsset.FacePositions(p.Index)
	local := core.NewAABBFromPoints(v0, v1, v2).Expand(1e-6)
	return core.NewAABBFromPoints(
		p.Transform.ToWorld.MulPoint(core.NewVec3(local.Min.X, local.Min.Y, local.Min.Z)),
		p.Transform.ToWorld.MulPoint(core.NewVec3(local.Max.X, local.Max.Y, local.Max.Z)),
		p.Transform.ToWorld.MulPoint(core.NewVec3(local.Min.X, local.Min.Y, local.Max.Z)),
		p.Transform.ToWorld.MulPoint(core.NewVec3(local.Min.X, local.Max.Y, local.Min.Z)),
		p.Transform.ToWorld.MulPoint(core.NewVec3(local.Max.X, local.Min.Y, local.Min.Z)),
		p.Transform.ToWorld.MulPoint(core.NewVec3(local.Max.X, local.Max.Y, local.Min.Z)),
		p.Transform.ToWorld.MulPoint(core.NewVec3(local.Max.X, local.Min.Y, local.Max.Z)),
		p.Transform.ToWorld.MulPoint(core.NewVec3(local.Min.X, local.Max.Y, local.Max.Z)),
	)
}

// primitiveIntersector adapts Scene to accel.Intersector without exposing
// the adaptation on Scene's own method set.
type primitiveIntersector Scene

func (s *primitiveIntersector) Bounds(i int) core.AABB {
	return (*Scene)(s).primitiveBounds(i)
}

func (s *primitiveIntersector) Hit(i int, ray core.Ray, invDir core.Vec3, tMin, tMax float64) (float64, bool) {
	p := &s.Primitives[i]
	if p.MeshAsset == nil {
		return 0, false
	}
	localOrigin := p.Transform.ToLocal.MulPoint(ray.Origin)
	localDir := p.Transform.ToLocal.MulVector(ray.Direction)
	localRay := core.NewRay(localOrigin, localDir)
	v0, v1, v2 := p.MeshAsset.FacePositions(p.Index)
	t, _, _, hit := geometry.IntersectTriangle(localRay, v0, v1, v2, tMin, tMax)
	return t, hit
}

// ResolveHit reconstructs full shading geometry for a (primitiveIndex, t)
// pair returned by Scene.Accel, the second phase of the two-phase
// intersection scheme accel.Intersector's minimal contract requires.
func (s *Scene) ResolveHit(primIndex int, ray core.Ray, t float64) geometry.SurfaceGeometry {
	p := &s.Primitives[primIndex]
	localOrigin := p.Transform.ToLocal.MulPoint(ray.Origin)
	localDir := p.Transform.ToLocal.MulVector(ray.Direction)
	localRay := core.NewRay(localOrigin, localDir)
	v0, v1, v2 := p.MeshAsset.FacePositions(p.Index)
	_, bu, bv, _ := geometry.IntersectTriangle(localRay, v0, v1, v2, 0, math.Inf(1))

	i0, i1, i2 := p.MeshAsset.FaceVertices(p.Index)
	localP := localRay.At(t)
	gn := geometry.FaceNormal(v0, v1, v2)

	var sn core.Vec3
	var uv core.Vec2
	if p.MeshAsset.HasNormals() {
		n0, n1, n2 := p.MeshAsset.Normals[i0], p.MeshAsset.Normals[i1], p.MeshAsset.Normals[i2]
		sn = n0.Multiply(1 - bu - bv).Add(n1.Multiply(bu)).Add(n2.Multiply(bv)).Normalize()
	} else {
		sn = gn
	}
	if p.MeshAsset.HasUVs() {
		uv0, uv1, uv2 := p.MeshAsset.UVs[i0], p.MeshAsset.UVs[i1], p.MeshAsset.UVs[i2]
		uv = core.NewVec2(
			uv0.X*(1-bu-bv)+uv1.X*bu+uv2.X*bv,
			uv0.Y*(1-bu-bv)+uv1.Y*bu+uv2.Y*bv,
		)
	}

	geom := geometry.BuildShadingFrame(p.Transform.ToWorld.MulPoint(localP), p.Transform.ToWorldNormal.MulVector(gn).Normalize(), p.Transform.ToWorldNormal.MulVector(sn).Normalize(), uv)
	geom.FaceIndex = p.Index
	return geom
}
