package core

import "math"

// Measure tags the unit a PDFValue is expressed in (spec.md section 3).
type Measure int

const (
	MeasureArea Measure = iota
	MeasureSolidAngle
	MeasureProjectedSolidAngle
	MeasureProdArea // product of per-vertex area measures along a path
	MeasureDiscrete
)

// GeometryEndpoint is the minimal surface information PDFValue conversions
// need from each of the two endpoints: position, shading normal, and the
// degenerate/infinite flags that suppress the cosine factor. It mirrors the
// relevant fields of geometry.SurfaceGeometry without importing that
// package (which itself depends on core), keeping the dependency graph
// acyclic: geometry -> core, not core -> geometry.
type GeometryEndpoint struct {
	P           Vec3
	N           Vec3
	Degenerate  bool
	Infinite    bool
}

// GeometryTerm computes G(x,y) = |cos(theta_x) cos(theta_y)| / ||x-y||^2,
// suppressing a cosine factor at any endpoint that is degenerate or at
// infinity (spec.md section 3).
func GeometryTerm(x, y GeometryEndpoint) float64 {
	d := y.P.Sub(x.P)
	dist2 := d.LengthSquared()
	if dist2 == 0 {
		return 0
	}
	dir := d.Normalize()

	cosX := 1.0
	if !x.Degenerate && !x.Infinite {
		cosX = math.Abs(x.N.Dot(dir))
	}
	cosY := 1.0
	if !y.Degenerate && !y.Infinite {
		cosY = math.Abs(y.N.Dot(dir.Negate()))
	}
	return cosX * cosY / dist2
}

// PDFValue is a tagged (measure, value) pair. Multiplication/conversion
// between incompatible measures is a programming error and panics, mirroring
// the original's LM_UNREACHABLE() assertion semantics (spec.md section 3).
type PDFValue struct {
	Measure Measure
	Value   float64
}

// NewPDFValue constructs a tagged PDF value.
func NewPDFValue(m Measure, v float64) PDFValue { return PDFValue{Measure: m, Value: v} }

// ConvertToArea converts a solid-angle or projected-solid-angle PDF (defined
// at endpoint `from`, over directions toward endpoint `to`) into an area
// measure PDF at `to`.
func (p PDFValue) ConvertToArea(from, to GeometryEndpoint) PDFValue {
	switch p.Measure {
	case MeasureArea, MeasureProdArea:
		return p
	case MeasureSolidAngle:
		d := to.P.Sub(from.P)
		dist2 := d.LengthSquared()
		if dist2 == 0 {
			return PDFValue{Measure: MeasureArea, Value: 0}
		}
		dir := d.Normalize()
		cosTo := 1.0
		if !to.Degenerate && !to.Infinite {
			cosTo = math.Abs(to.N.Dot(dir.Negate()))
		}
		return PDFValue{Measure: MeasureArea, Value: p.Value * cosTo / dist2}
	case MeasureProjectedSolidAngle:
		return PDFValue{Measure: MeasureArea, Value: p.Value * GeometryTerm(from, to)}
	default:
		panic("core: PDFValue.ConvertToArea: incompatible measure")
	}
}

// ConvertToProjSA converts an area measure PDF into projected-solid-angle
// measure using the geometry term between the two endpoints.
func (p PDFValue) ConvertToProjSA(from, to GeometryEndpoint) PDFValue {
	if p.Measure != MeasureArea && p.Measure != MeasureProdArea {
		panic("core: PDFValue.ConvertToProjSA: incompatible measure")
	}
	g := GeometryTerm(from, to)
	if g == 0 {
		return PDFValue{Measure: MeasureProjectedSolidAngle, Value: 0}
	}
	return PDFValue{Measure: MeasureProjectedSolidAngle, Value: p.Value / g}
}

// MulArea multiplies two area/prod-area measure PDFs, producing a
// MeasureProdArea result (accumulating per-vertex densities along a path).
func (p PDFValue) MulArea(o PDFValue) PDFValue {
	areaLike := func(m Measure) bool { return m == MeasureArea || m == MeasureProdArea }
	if !areaLike(p.Measure) || !areaLike(o.Measure) {
		panic("core: PDFValue.MulArea: incompatible measure")
	}
	return PDFValue{Measure: MeasureProdArea, Value: p.Value * o.Value}
}

// Scale multiplies the PDF value by a unitless scalar (e.g. a selection
// probability), keeping the measure unchanged.
func (p PDFValue) Scale(s float64) PDFValue { return PDFValue{Measure: p.Measure, Value: p.Value * s} }
