package path

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/lights"
	"github.com/df07/go-progressive-raytracer/pkg/material"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
	"github.com/df07/go-progressive-raytracer/pkg/subpath"
)

// testScene builds a diffuse floor quad, an area light above it and a
// pinhole sensor looking down at both, small enough that full eye/light
// subpaths reliably connect within a couple of bounces.
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

// sampleSubpaths retries until it finds a light subpath with >=2 vertices
// and an eye subpath with >=2 vertices, so s=1,t=1 connections are
// possible — a handful of rejected draws is expected for a small scene.
func sampleSubpaths(t *testing.T, sc *scene.Scene, seed uint32) (light, eye Subpath) {
	t.Helper()
	rng := core.NewXorshift128Plus(seed)
	for i := 0; i < 200; i++ {
		light = Sample(sc, rng, 4, subpath.DirectionLE)
		eye = Sample(sc, rng, 4, subpath.DirectionEL)
		if len(light) >= 2 && len(eye) >= 2 {
			return light, eye
		}
	}
	t.Fatal("could not sample subpaths with >=2 vertices each within 200 tries")
	return nil, nil
}

func TestConnectFullStrategy(t *testing.T) {
	sc := testScene(t)
	light, eye := sampleSubpaths(t, sc, 1)

	p, ok := Connect(sc, light, eye, 1, 1)
	if !ok {
		t.Fatal("expected a 1,1 connection between the light subpath's emitter vertex and the eye subpath's sensor vertex to succeed")
	}
	if len(p.Vertices) != 2 || p.S != 1 {
		t.Fatalf("got %d vertices, S=%d; want 2 vertices, S=1", len(p.Vertices), p.S)
	}
}

func TestConnectEyeHitsLightDirectly(t *testing.T) {
	sc := testScene(t)
	rng := core.NewXorshift128Plus(42)

	// Sample two-vertex eye subpaths until one's first hit lies on the light,
	// so s=0 connects; the test skips if none does.
	var eye Subpath
	for i := 0; i < 500; i++ {
		eye = Sample(sc, rng, 2, subpath.DirectionEL)
		if len(eye) >= 2 && eye[len(eye)-1].Primitive.Emitter != nil {
			break
		}
		eye = nil
	}
	if eye == nil {
		t.Skip("no eye subpath happened to hit the light within the sample budget")
	}

	p, ok := Connect(sc, nil, eye, 0, len(eye))
	if !ok {
		t.Fatal("expected Connect(s=0) to succeed when the eye subpath's last vertex is an emitter")
	}
	if p.Vertices[0].Type != subpath.VertexL {
		t.Errorf("first vertex type = %v, want VertexL", p.Vertices[0].Type)
	}
}

func TestConnectRejectsNonEmitterAtS0(t *testing.T) {
	sc := testScene(t)
	light, eye := sampleSubpaths(t, sc, 2)
	_ = light

	if eye[0].Primitive.Emitter != nil {
		t.Skip("eye subpath's first hit happened to be the light; not exercising the rejection path")
	}
	if _, ok := Connect(sc, nil, eye[:1], 0, 1); ok {
		t.Error("expected Connect(s=0) to fail when the eye subpath's only vertex is not an emitter")
	}
}

func TestContributionNonNegativeAndFinite(t *testing.T) {
	sc := testScene(t)
	light, eye := sampleSubpaths(t, sc, 3)

	p, ok := Connect(sc, light, eye, 1, 1)
	if !ok {
		t.Fatal("expected connection to succeed")
	}
	f := p.Contribution()
	if f.X < 0 || f.Y < 0 || f.Z < 0 {
		t.Errorf("negative contribution %v", f)
	}
	if math.IsNaN(f.X) || math.IsInf(f.X, 0) {
		t.Errorf("non-finite contribution %v", f)
	}
}

func TestPDFZeroForOutOfRangeStrategy(t *testing.T) {
	sc := testScene(t)
	light, eye := sampleSubpaths(t, sc, 4)

	p, ok := Connect(sc, light, eye, 1, 1)
	if !ok {
		t.Fatal("expected connection to succeed")
	}
	pdf := p.PDF(sc, 5, false, 0)
	if pdf.Value != 0 {
		t.Errorf("PDF for an unreachable strategy (s=5 on a 2-vertex path) = %v, want 0", pdf.Value)
	}
}

func TestMISWeightBDPTSumsToAtMostOne(t *testing.T) {
	sc := testScene(t)
	light, eye := sampleSubpaths(t, sc, 5)

	p, ok := Connect(sc, light, eye, 1, 1)
	if !ok {
		t.Fatal("expected connection to succeed")
	}
	n := len(p.Vertices)
	sum := 0.0
	for s := 0; s <= n; s++ {
		q := p
		q.S = s
		sum += q.MISWeightBDPT(sc)
	}
	if sum > float64(n+1)+1e-6 {
		t.Errorf("sum of per-strategy MIS weights = %v, suspiciously large for %d strategies", sum, n+1)
	}
	w := p.MISWeightBDPT(sc)
	if w < 0 || w > 1+1e-9 || math.IsNaN(w) {
		t.Errorf("MISWeightBDPT = %v, want a value in [0,1]", w)
	}
}

func TestMergeRejectsDeltaPosition(t *testing.T) {
	sc := testScene(t)
	light, eye := sampleSubpaths(t, sc, 6)

	// eye[0] is the pinhole sensor's lens point, a delta position, so a 1,1
	// merge must be rejected.
	if _, ok := Merge(light, eye, 1, 1); ok {
		t.Error("expected Merge(1,1) to reject the pinhole sensor's delta-position endpoint")
	}
}
