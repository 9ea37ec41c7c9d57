// Package geometry implements the per-intersection surface frame and the
// triangle-mesh primitive the acceleration structure traces against
// (spec.md sections 3 and 4.1's SurfaceGeometry construction).
package geometry

import "github.com/df07/go-progressive-raytracer/pkg/core"

// SurfaceGeometry is the per-intersection frame produced by a ray-scene
// hit, exactly as spec.md section 3 defines it.
type SurfaceGeometry struct {
	P    core.Vec3 // hit position
	Gn   core.Vec3 // geometric normal
	Sn   core.Vec3 // shading normal
	Dpdu core.Vec3
	Dpdv core.Vec3
	Dndu core.Vec3
	Dndv core.Vec3
	UV   core.Vec2

	ToWorld core.Mat4 // columns (dpdu, dpdv, sn)
	ToLocal core.Mat4 // ToWorld^T

	Degenerate bool // true when the shading frame could not be built (NaN normal, etc.)
	Infinite   bool // true for a surface at infinity (directional/env virtual disk)
	FaceIndex  int
}

// Endpoint extracts the reduced view core.PDFValue conversions need.
func (g SurfaceGeometry) Endpoint() core.GeometryEndpoint {
	return core.GeometryEndpoint{P: g.P, N: g.Sn, Degenerate: g.Degenerate, Infinite: g.Infinite}
}

// BuildShadingFrame constructs dpdu/dpdv/ToWorld/ToLocal from a shading
// normal, falling back to the geometric normal if the shading normal is
// degenerate (NaN component), per spec.md section 4.1.
func BuildShadingFrame(p, gn, sn core.Vec3, uv core.Vec2) SurfaceGeometry {
	if isNaNVec(sn) || sn.IsBlack() {
		sn = gn
	}
	degenerate := isNaNVec(sn) || sn.IsBlack()
	onb := core.NewONB(sn)

	toWorld := core.Identity4()
	setCol(&toWorld, 0, onb.U)
	setCol(&toWorld, 1, onb.V)
	setCol(&toWorld, 2, onb.W)

	return SurfaceGeometry{
		P:       p,
		Gn:      gn.Normalize(),
		Sn:      onb.W,
		Dpdu:    onb.U,
		Dpdv:    onb.V,
		UV:      uv,
		ToWorld: toWorld,
		ToLocal: transpose3In4(toWorld),

		Degenerate: degenerate,
	}
}

func setCol(m *core.Mat4, col int, v core.Vec3) {
	m.M[col][0], m.M[col][1], m.M[col][2] = v.X, v.Y, v.Z
}

func transpose3In4(m core.Mat4) core.Mat4 {
	r := core.Identity4()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.M[i][j] = m.M[j][i]
		}
	}
	return r
}

func isNaNVec(v core.Vec3) bool {
	return v.X != v.X || v.Y != v.Y || v.Z != v.Z
}
