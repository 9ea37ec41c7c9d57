package scene

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/lights"
	"github.com/df07/go-progressive-raytracer/pkg/material"
)

// quadPrimitives builds the two triangles of a unit quad in the z=0 plane,
// spanning [-1,1]x[-1,1], as two Primitives sharing one TriangleMesh.
func quadPrimitives(bsdf material.BSDF) []Primitive {
	positions := []core.Vec3{
		core.NewVec3(-1, -1, 0),
		core.NewVec3(1, -1, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(-1, 1, 0),
	}
	indices := []int32{0, 1, 2, 0, 2, 3}
	mesh := geometry.NewTriangleMesh(positions, nil, nil, indices)
	identity := core.NewTransform(core.Identity4())
	return []Primitive{
		{ID: 0, Index: 0, Transform: identity, MeshAsset: mesh, BSDF: bsdf},
		{ID: 1, Index: 1, Transform: identity, MeshAsset: mesh, BSDF: bsdf},
	}
}

func sensorPrimitive(id int) Primitive {
	sensor := lights.NewPinholeSensor(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 40*math.Pi/180, 64, 64)
	return Primitive{ID: id, Index: -1, Transform: core.NewTransform(core.Identity4()), Sensor: sensor}
}

func TestBuildRejectsOutOfRangeSensorIndex(t *testing.T) {
	prims := append(quadPrimitives(material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8))), sensorPrimitive(2))
	if _, err := Build(prims, 5, AccelBVH); err == nil {
		t.Fatal("expected an error for an out-of-range sensor index")
	}
}

func TestBuildRejectsSensorlessPrimitive(t *testing.T) {
	prims := quadPrimitives(material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8)))
	if _, err := Build(prims, 0, AccelBVH); err == nil {
		t.Fatal("expected an error when the designated sensor primitive has no Sensor asset")
	}
}

func TestBuildComputesWorldBounds(t *testing.T) {
	prims := append(quadPrimitives(material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8))), sensorPrimitive(2))
	s, err := Build(prims, 2, AccelBVH)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.Bound.Min.X > -0.999 || s.Bound.Max.X < 0.999 {
		t.Errorf("world bound %v does not cover the quad's x extent", s.Bound)
	}
	if s.SphereBound.Radius <= 0 {
		t.Errorf("expected a positive bounding sphere radius, got %v", s.SphereBound.Radius)
	}
}

func TestResolveHitAgreesWithAccel(t *testing.T) {
	prims := append(quadPrimitives(material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8))), sensorPrimitive(2))
	s, err := Build(prims, 2, AccelBVH)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ray := core.NewRay(core.NewVec3(0.2, 0.3, 3), core.NewVec3(0, 0, -1))
	hit, ok := s.Accel.Hit(ray, 1e-4, math.Inf(1))
	if !ok {
		t.Fatal("expected the ray through the quad's interior to hit")
	}
	if math.Abs(hit.T-3) > 1e-6 {
		t.Errorf("t = %v, want 3", hit.T)
	}

	geom := s.ResolveHit(hit.PrimitiveIndex, ray, hit.T)
	if math.Abs(geom.P.Z) > 1e-6 {
		t.Errorf("resolved hit point %v should lie on the z=0 quad", geom.P)
	}
	if geom.Gn.Z < 0 {
		t.Errorf("resolved normal %v should face the ray origin (+z)", geom.Gn)
	}
}

func TestAccelMissesOutsideQuad(t *testing.T) {
	prims := append(quadPrimitives(material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8))), sensorPrimitive(2))
	s, err := Build(prims, 2, AccelBVH)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ray := core.NewRay(core.NewVec3(5, 5, 3), core.NewVec3(0, 0, -1))
	if _, ok := s.Accel.Hit(ray, 1e-4, math.Inf(1)); ok {
		t.Error("a ray well outside the quad's footprint should miss")
	}
}

func TestEmitterSamplerBuiltFromAreaLights(t *testing.T) {
	mesh := geometry.NewTriangleMesh(
		[]core.Vec3{core.NewVec3(-1, 2, -1), core.NewVec3(1, 2, -1), core.NewVec3(1, 2, 1), core.NewVec3(-1, 2, 1)},
		nil, nil, []int32{0, 1, 2, 0, 2, 3},
	)
	identity := core.NewTransform(core.Identity4())
	light := lights.NewAreaLight(mesh, identity.ToWorld, core.NewVec3(10, 10, 10), false, mesh.FaceArea(0)*2)
	prims := quadPrimitives(material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8)))
	prims = append(prims,
		Primitive{ID: 2, Index: 0, Transform: identity, MeshAsset: mesh, Emitter: light},
		sensorPrimitive(3),
	)
	s, err := Build(prims, 3, AccelBVH)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.EmitterSampler.Count() != 1 {
		t.Fatalf("expected exactly 1 emitter, got %d", s.EmitterSampler.Count())
	}
}
