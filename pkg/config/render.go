package config

import (
	"fmt"

	"github.com/df07/go-progressive-raytracer/pkg/integrator"
	"github.com/df07/go-progressive-raytracer/pkg/renderer"
)

// DecodedRender is a render document's two outputs: the scheduler options
// and a factory that builds one Integrator instance per worker (the
// Integrator itself carries per-worker mutable progressive state, so the
// document describes how to build one rather than a single shared value).
type DecodedRender struct {
	Options renderer.RenderOptions
	NewIntegrator renderer.IntegratorFactory
}

// DecodeRender builds scheduler options and an integrator factory from a
// parsed render document.
func DecodeRender(doc Node) (DecodedRender, error) {
	if err := checkVersion(doc); err != nil {
		return DecodedRender{}, err
	}

	widthNode, _ := doc.Field("width")
	heightNode, _ := doc.Field("height")
	passesNode, _ := doc.Field("passes")
	workersNode, _ := doc.Field("workers")
	seedNode, _ := doc.Field("seed")
	splatNode, _ := doc.Field("splat_scale")
	parallelNode, _ := doc.Field("parallel")

	opts := renderer.RenderOptions{
		Width:      widthNode.IntOr(640),
		Height:     heightNode.IntOr(480),
		MaxPasses:  passesNode.IntOr(1),
		NumWorkers: workersNode.IntOr(0),
		Seed:       uint32(seedNode.IntOr(1)),
		SplatScale: splatNode.FloatOr(0),
		Parallel:   parallelNode.BoolOr(true),
	}

	integratorNode, ok := doc.Field("integrator")
	if !ok {
		return DecodedRender{}, fmt.Errorf("config: render document requires an \"integrator\" entry")
	}
	factory, forceSerial, err := decodeIntegratorFactory(integratorNode)
	if err != nil {
		return DecodedRender{}, fmt.Errorf("config: integrator: %w", err)
	}
	if forceSerial {
		opts.Parallel = false
	}

	return DecodedRender{Options: opts, NewIntegrator: factory}, nil
}

// decodeIntegratorFactory builds the IntegratorFactory for one of the six
// estimator kinds spec.md section 11 names. forceSerial reports whether
// the chosen estimator carries progressive state that requires
// RenderOptions.Parallel=false (SPPM, VCM — see pkg/renderer's Scheduler
// doc comment).
func decodeIntegratorFactory(n Node) (renderer.IntegratorFactory, bool, error) {
	typeNode, ok := n.Field("type")
	if !ok {
		return nil, false, fmt.Errorf("missing \"type\"")
	}
	kind, err := typeNode.String()
	if err != nil {
		return nil, false, err
	}

	maxDepthNode, _ := n.Field("max_depth")
	maxDepth := maxDepthNode.IntOr(8)

	switch kind {
	case "pt":
		return func() integrator.Integrator { return integrator.NewPathTracer(maxDepth) }, false, nil

	case "ptdirect":
		return func() integrator.Integrator { return integrator.NewDirectLighting(maxDepth) }, false, nil

	case "lt":
		numPathsNode, _ := n.Field("num_paths")
		numPaths := numPathsNode.IntOr(1)
		return func() integrator.Integrator { return integrator.NewLightTracer(maxDepth, numPaths) }, false, nil

	case "bdpt":
		return func() integrator.Integrator { return integrator.NewBDPT(maxDepth) }, false, nil

	case "sppm":
		photonsNode, _ := n.Field("photons_per_pass")
		radiusNode, _ := n.Field("initial_radius")
		alphaNode, _ := n.Field("alpha")
		photons := photonsNode.IntOr(100000)
		radius := radiusNode.FloatOr(0.1)
		alpha := alphaNode.FloatOr(0.7)
		return func() integrator.Integrator { return integrator.NewSPPM(maxDepth, photons, radius, alpha) }, true, nil

	case "vcm":
		lightSubpathsNode, _ := n.Field("light_subpaths")
		radiusNode, _ := n.Field("initial_radius")
		alphaNode, _ := n.Field("alpha")
		lightSubpaths := lightSubpathsNode.IntOr(1)
		radius := radiusNode.FloatOr(0.1)
		alpha := alphaNode.FloatOr(0.7)
		return func() integrator.Integrator { return integrator.NewVCM(maxDepth, lightSubpaths, radius, alpha) }, true, nil

	default:
		return nil, false, fmt.Errorf("unknown integrator type %q", kind)
	}
}
