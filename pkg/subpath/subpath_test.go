package subpath

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/lights"
	"github.com/df07/go-progressive-raytracer/pkg/material"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
)

// testScene builds a unit floor quad (z=0, diffuse), an area light quad
// floating above it, and a pinhole sensor looking down at the floor.
func testScene(t *testing.T) *scene.Scene {
	t.Helper()
	identity := core.NewTransform(core.Identity4())

	floorMesh := geometry.NewTriangleMesh(
		[]core.Vec3{core.NewVec3(-5, 0, -5), core.NewVec3(5, 0, -5), core.NewVec3(5, 0, 5), core.NewVec3(-5, 0, 5)},
		nil, nil, []int32{0, 1, 2, 0, 2, 3},
	)
	diffuse := material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8))

	lightMesh := geometry.NewTriangleMesh(
		[]core.Vec3{core.NewVec3(-1, 5, -1), core.NewVec3(1, 5, -1), core.NewVec3(1, 5, 1), core.NewVec3(-1, 5, 1)},
		nil, nil, []int32{0, 1, 2, 0, 2, 3},
	)
	area := lights.NewAreaLight(lightMesh, identity.ToWorld, core.NewVec3(20, 20, 20), true, lightMesh.FaceArea(0)*2)

	sensor := lights.NewPinholeSensor(core.NewVec3(0, 3, 8), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 50*math.Pi/180, 32, 32)

	prims := []scene.Primitive{
		{ID: 0, Index: 0, Transform: identity, MeshAsset: floorMesh, BSDF: diffuse},
		{ID: 1, Index: 1, Transform: identity, MeshAsset: floorMesh, BSDF: diffuse},
		{ID: 2, Index: 0, Transform: identity, MeshAsset: lightMesh, Emitter: area},
		{ID: 3, Index: 1, Transform: identity, MeshAsset: lightMesh, Emitter: area},
		{ID: 4, Index: -1, Transform: identity, Sensor: sensor},
	}
	s, err := scene.Build(prims, 4, scene.AccelBVH)
	if err != nil {
		t.Fatalf("scene.Build: %v", err)
	}
	return s
}

func TestTraceEyeSubpathHitsFloor(t *testing.T) {
	sc := testScene(t)
	rng := core.NewXorshift128Plus(1)

	var vertices []PathVertex
	TraceEyeFixedRasterPos(sc, rng, 4, 16, 16, func(step int, rasterPos core.Vec2, prev, curr PathVertex, throughput core.Vec3) bool {
		vertices = append(vertices, curr)
		return true
	})

	if len(vertices) < 2 {
		t.Fatalf("expected at least 2 vertices (sensor + floor hit), got %d", len(vertices))
	}
	if vertices[0].Type != VertexE {
		t.Errorf("first vertex type = %v, want VertexE", vertices[0].Type)
	}
	if math.Abs(vertices[1].Geom.P.Y) > 1e-6 {
		t.Errorf("second vertex %v should land on the floor (y=0)", vertices[1].Geom.P)
	}
	if vertices[1].Type != VertexD {
		t.Errorf("floor hit type = %v, want VertexD (diffuse)", vertices[1].Type)
	}
}

func TestTraceLightSubpathStartsAtEmitter(t *testing.T) {
	sc := testScene(t)
	rng := core.NewXorshift128Plus(2)

	var vertices []PathVertex
	var throughputs []core.Vec3
	Trace(sc, rng, 4, DirectionLE, func(step int, rasterPos core.Vec2, prev, curr PathVertex, throughput core.Vec3) bool {
		vertices = append(vertices, curr)
		throughputs = append(throughputs, throughput)
		return true
	})

	if len(vertices) == 0 {
		t.Fatal("expected at least one vertex from a light subpath")
	}
	if vertices[0].Type != VertexL {
		t.Errorf("first vertex type = %v, want VertexL", vertices[0].Type)
	}
	if math.Abs(vertices[0].Geom.P.Y-5) > 1e-6 {
		t.Errorf("emitter vertex %v should lie on the light quad (y=5)", vertices[0].Geom.P)
	}
	for i, tp := range throughputs {
		if tp.X < 0 || tp.Y < 0 || tp.Z < 0 {
			t.Errorf("vertex %d: negative throughput %v", i, tp)
		}
		if math.IsNaN(tp.X) || math.IsNaN(tp.Y) || math.IsNaN(tp.Z) {
			t.Errorf("vertex %d: NaN throughput %v", i, tp)
		}
	}
}

func TestTraceStopsWhenCallbackReturnsFalse(t *testing.T) {
	sc := testScene(t)
	rng := core.NewXorshift128Plus(3)

	count := 0
	TraceEyeFixedRasterPos(sc, rng, -1, 16, 16, func(step int, rasterPos core.Vec2, prev, curr PathVertex, throughput core.Vec3) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("expected the trace to stop right after the callback returns false, got %d vertices", count)
	}
}

func TestTraceFromEndpointRequiresTwoVertices(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected TraceFromEndpoint to panic when nv < 2")
		}
	}()
	sc := testScene(t)
	rng := core.NewXorshift128Plus(4)
	TraceFromEndpoint(sc, rng, PathVertex{}, PathVertex{}, 1, 4, DirectionEL, func(int, core.Vec2, PathVertex, PathVertex, core.Vec3) bool { return true })
}
