package geometry

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

// TriangleMesh holds immutable parallel arrays of per-vertex data and a
// flat index buffer, exactly as spec.md section 3 describes ("Parallel
// arrays: positions, optional normals, optional texcoords, indices").
type TriangleMesh struct {
	Positions []core.Vec3 // len = N
	Normals   []core.Vec3 // len = N, or nil if absent
	UVs       []core.Vec2 // len = N, or nil if absent
	Indices   []int32     // len = 3*F, triples of vertex indices

	areaDist *core.DiscreteDistribution1D // lazily built by AreaDistribution
}

// NewTriangleMesh constructs a mesh from the parallel arrays; indices must
// be a multiple of 3.
func NewTriangleMesh(positions, normals []core.Vec3, uvs []core.Vec2, indices []int32) *TriangleMesh {
	return &TriangleMesh{Positions: positions, Normals: normals, UVs: uvs, Indices: indices}
}

// TriangleCount returns the number of triangles (faces) in the mesh.
func (m *TriangleMesh) TriangleCount() int { return len(m.Indices) / 3 }

// FaceVertices returns the three vertex indices of face f.
func (m *TriangleMesh) FaceVertices(f int) (i0, i1, i2 int32) {
	return m.Indices[3*f], m.Indices[3*f+1], m.Indices[3*f+2]
}

// FacePositions returns the three object-space vertex positions of face f.
func (m *TriangleMesh) FacePositions(f int) (v0, v1, v2 core.Vec3) {
	i0, i1, i2 := m.FaceVertices(f)
	return m.Positions[i0], m.Positions[i1], m.Positions[i2]
}

// HasNormals reports whether per-vertex shading normals were provided.
func (m *TriangleMesh) HasNormals() bool { return len(m.Normals) > 0 }

// HasUVs reports whether per-vertex texture coordinates were provided.
func (m *TriangleMesh) HasUVs() bool { return len(m.UVs) > 0 }

// FaceArea returns the object-space area of face f (callers apply the
// transform's Jacobian separately if an exact world-space area is needed;
// uniform scale is assumed elsewhere, matching the teacher's area lights).
func (m *TriangleMesh) FaceArea(f int) float64 {
	v0, v1, v2 := m.FacePositions(f)
	return v1.Sub(v0).Cross(v2.Sub(v0)).Length() * 0.5
}

// AreaDistribution returns (building lazily) the discrete distribution over
// triangle areas used to sample a point on the mesh uniformly by area
// (spec.md section 4, "Surface primitives").
func (m *TriangleMesh) AreaDistribution() *core.DiscreteDistribution1D {
	if m.areaDist == nil {
		weights := make([]float64, m.TriangleCount())
		for f := range weights {
			weights[f] = m.FaceArea(f)
		}
		m.areaDist = core.NewDiscreteDistribution1D(weights)
	}
	return m.areaDist
}

// SampleFace samples a face index proportional to its area and a uniform
// barycentric point on it via the standard sqrt trick. Returns the object
// space position, interpolated normal (or face normal if absent) and
// UV, plus the combined PDF over area measure.
func (m *TriangleMesh) SampleFace(u core.Vec2, faceU float64) (p, n core.Vec3, uv core.Vec2, pdfArea float64, faceIndex int) {
	dist := m.AreaDistribution()
	idx, facePDF := dist.Sample(faceU)
	if idx < 0 {
		return core.Vec3{}, core.Vec3{}, core.Vec2{}, 0, -1
	}
	v0, v1, v2 := m.FacePositions(idx)
	su := sqrtClamp(u.X)
	b0 := 1 - su
	b1 := u.Y * su
	b2 := 1 - b0 - b1
	p = v0.Multiply(b0).Add(v1.Multiply(b1)).Add(v2.Multiply(b2))

	n = FaceNormal(v0, v1, v2)
	if m.HasNormals() {
		i0, i1, i2 := m.FaceVertices(idx)
		n = m.Normals[i0].Multiply(b0).Add(m.Normals[i1].Multiply(b1)).Add(m.Normals[i2].Multiply(b2)).Normalize()
	}
	if m.HasUVs() {
		i0, i1, i2 := m.FaceVertices(idx)
		uv = core.NewVec2(m.UVs[i0].X*b0+m.UVs[i1].X*b1+m.UVs[i2].X*b2, m.UVs[i0].Y*b0+m.UVs[i1].Y*b1+m.UVs[i2].Y*b2)
	} else {
		uv = core.NewVec2(b1, b2)
	}

	area := m.FaceArea(idx)
	if area <= 0 {
		return p, n, uv, 0, idx
	}
	// pdf over area = P(face) / area(face)
	return p, n, uv, facePDF / area, idx
}

func sqrtClamp(x float64) float64 {
	if x < 0 {
		x = 0
	}
	return math.Sqrt(x)
}

// FaceNormal computes the (unnormalized-input) geometric normal of a triangle.
func FaceNormal(v0, v1, v2 core.Vec3) core.Vec3 {
	return v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
}
