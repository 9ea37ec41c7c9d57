package lights

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
)

// AreaLight emits uniform Lambertian radiance from every face of a
// triangle mesh, grounded on the teacher's QuadLight/SphereLight (area
// sampling + solid-angle PDF conversion) but generalized to an arbitrary
// mesh via TriangleMesh.SampleFace/FaceArea.
type AreaLight struct {
	Mesh        *geometry.TriangleMesh
	ToWorld     core.Mat4
	Radiance    core.Vec3
	TwoSided    bool
	worldArea   float64
}

// NewAreaLight attaches a uniform emitter to a mesh; worldArea is the
// mesh's total surface area after the transform is applied (the caller
// supplies it since TriangleMesh itself is transform-agnostic).
func NewAreaLight(mesh *geometry.TriangleMesh, toWorld core.Mat4, radiance core.Vec3, twoSided bool, worldArea float64) *AreaLight {
	return &AreaLight{Mesh: mesh, ToWorld: toWorld, Radiance: radiance, TwoSided: twoSided, worldArea: worldArea}
}

func (a *AreaLight) emittedSide(n, dir core.Vec3) bool {
	cosTheta := n.Dot(dir.Negate())
	return a.TwoSided || cosTheta > 0
}

func (a *AreaLight) SampleDirect(point core.Vec3, u core.Vec2) (DirectSample, bool) {
	// u.X double-duties as the face-selection variate and the first
	// barycentric variate (the same trick the teacher's light samplers use
	// for their single combined `sample core.Vec2` argument).
	p, n, _, pdfAreaLocal, _ := a.Mesh.SampleFace(u, u.X)
	worldP := a.ToWorld.MulPoint(p)
	worldN := a.ToWorld.MulVector(n).Normalize()

	toLight := worldP.Sub(point)
	dist := toLight.Length()
	if dist < 1e-8 {
		return DirectSample{}, false
	}
	dir := toLight.Multiply(1.0 / dist)

	if !a.emittedSide(worldN, dir) {
		return DirectSample{}, false
	}

	cosLight := math.Abs(worldN.Dot(dir))
	if cosLight < 1e-8 {
		return DirectSample{}, false
	}
	pdfArea := pdfAreaLocal / jacobianAreaScale(a.ToWorld)
	solidAnglePDF := pdfArea * dist * dist / cosLight

	return DirectSample{
		P:     worldP,
		N:     worldN,
		Value: a.Radiance,
		PDF:   core.NewPDFValue(core.MeasureSolidAngle, solidAnglePDF),
	}, true
}

// PDFDirect cannot convert a bare (point, direction) pair to a
// solid-angle density without knowing which point on the mesh the
// direction hits: callers that already resolved that hit (pkg/path, via
// the acceleration structure) should use PDFDirectAtHit instead. This
// keeps the Emitter interface total for callers that don't need the
// BSDF-sampling MIS counterpart.
func (a *AreaLight) PDFDirect(point core.Vec3, dir core.Vec3) core.PDFValue {
	return core.NewPDFValue(core.MeasureSolidAngle, 0)
}

// PDFDirectAtHit converts the area-measure selection density at an
// already-intersected point on the mesh to the solid-angle density
// SampleDirect would have produced, for MIS against BSDF sampling when a
// continued path ray happens to hit this light.
func (a *AreaLight) PDFDirectAtHit(point, hitP, hitN core.Vec3) core.PDFValue {
	toLight := hitP.Sub(point)
	dist2 := toLight.LengthSquared()
	if dist2 < 1e-12 {
		return core.NewPDFValue(core.MeasureSolidAngle, 0)
	}
	dist := math.Sqrt(dist2)
	dir := toLight.Multiply(1.0 / dist)
	cosLight := math.Abs(hitN.Dot(dir))
	if cosLight < 1e-8 {
		return core.NewPDFValue(core.MeasureSolidAngle, 0)
	}
	pdfArea := 1.0 / a.worldArea
	return core.NewPDFValue(core.MeasureSolidAngle, pdfArea*dist2/cosLight)
}

func (a *AreaLight) SamplePositionAndDirection(uPos, uDir core.Vec2) (EndpointSample, bool) {
	faceU := uPos.X
	p, n, _, pdfAreaLocal, _ := a.Mesh.SampleFace(uPos, faceU)
	worldP := a.ToWorld.MulPoint(p)
	worldN := a.ToWorld.MulVector(n).Normalize()
	pdfArea := pdfAreaLocal / jacobianAreaScale(a.ToWorld)

	onb := core.NewONB(worldN)
	dir := core.RandomCosineDirectionONB(onb, uDir)
	cosTheta := dir.Dot(worldN)
	if cosTheta <= 0 {
		return EndpointSample{}, false
	}
	dirPDF := cosTheta / math.Pi

	return EndpointSample{
		P:      worldP,
		N:      worldN,
		Dir:    dir,
		Value:  a.Radiance,
		PDFPos: core.NewPDFValue(core.MeasureArea, pdfArea),
		PDFDir: core.NewPDFValue(core.MeasureProjectedSolidAngle, dirPDF),
	}, true
}

func (a *AreaLight) Le(p, n, dir core.Vec3) core.Vec3 {
	if !a.emittedSide(n, dir) {
		return core.Vec3{}
	}
	return a.Radiance
}

func (a *AreaLight) PDFEmission(p, n, dir core.Vec3) (core.PDFValue, core.PDFValue) {
	pdfArea := 1.0 / a.worldArea
	cosTheta := dir.Dot(n)
	dirPDF := 0.0
	if cosTheta > 0 {
		dirPDF = cosTheta / math.Pi
	}
	return core.NewPDFValue(core.MeasureArea, pdfArea), core.NewPDFValue(core.MeasureProjectedSolidAngle, dirPDF)
}

func (a *AreaLight) IsDeltaPosition() bool  { return false }
func (a *AreaLight) IsDeltaDirection() bool { return false }
func (a *AreaLight) IsInfinite() bool       { return false }

// jacobianAreaScale approximates the area scale factor of the mesh's
// to-world transform via the determinant of its linear part, used to map
// local-space area PDFs to world-space area PDFs without per-triangle
// recomputation. A uniform scale transform makes this exact; a shear
// transform makes it an approximation, matching the teacher's choice to
// ignore non-uniform-scale Jacobians in its own Quad/Sphere light area math.
func jacobianAreaScale(m core.Mat4) float64 {
	u := m.MulVector(core.Vec3{X: 1})
	v := m.MulVector(core.Vec3{Y: 1})
	w := m.MulVector(core.Vec3{Z: 1})
	vol := u.Dot(v.Cross(w))
	if vol <= 0 {
		return 1
	}
	return math.Cbrt(vol * vol)
}
