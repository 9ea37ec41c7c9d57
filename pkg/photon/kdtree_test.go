package photon

import (
	"testing"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

func vertsAt(positions ...core.Vec3) []Vertex {
	out := make([]Vertex, len(positions))
	for i, p := range positions {
		out[i] = Vertex{SubpathIndex: 0, VertexIndex: i, Position: p}
	}
	return out
}

func TestRangeQueryFindsNearbyVertices(t *testing.T) {
	verts := vertsAt(
		core.NewVec3(0, 0, 0),
		core.NewVec3(0.1, 0, 0),
		core.NewVec3(10, 0, 0),
		core.NewVec3(0, 5, 0),
	)
	tree := NewKdTree(verts)

	var found []Vertex
	tree.RangeQuery(core.NewVec3(0, 0, 0), 1.0, func(v Vertex) {
		found = append(found, v)
	})
	if len(found) != 2 {
		t.Fatalf("found %d vertices within radius 1, want 2", len(found))
	}
}

func TestRangeQueryEmptyTree(t *testing.T) {
	tree := NewKdTree(nil)
	called := false
	tree.RangeQuery(core.NewVec3(0, 0, 0), 1.0, func(Vertex) { called = true })
	if called {
		t.Error("RangeQuery on an empty tree should never invoke collect")
	}
}

func TestRangeQueryMatchesBruteForce(t *testing.T) {
	var positions []core.Vec3
	seed := uint32(1)
	next := func() float64 {
		seed = seed*1664525 + 1013904223
		return float64(seed%10000) / 10000.0
	}
	for i := 0; i < 200; i++ {
		positions = append(positions, core.NewVec3(next()*20-10, next()*20-10, next()*20-10))
	}
	verts := vertsAt(positions...)
	tree := NewKdTree(verts)

	query := core.NewVec3(1, 2, 3)
	radius := 4.0

	var gotIdx []int
	tree.RangeQuery(query, radius, func(v Vertex) { gotIdx = append(gotIdx, v.VertexIndex) })

	var wantCount int
	r2 := radius * radius
	for _, p := range positions {
		if p.Sub(query).LengthSquared() < r2 {
			wantCount++
		}
	}
	if len(gotIdx) != wantCount {
		t.Errorf("RangeQuery found %d, brute force found %d", len(gotIdx), wantCount)
	}
}
