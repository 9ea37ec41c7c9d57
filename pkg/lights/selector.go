package lights

import "github.com/df07/go-progressive-raytracer/pkg/core"

// EmitterSampler selects one emitter from the scene's flat emitter array
// using a power-weighted discrete distribution, grounded on the teacher's
// weighted light sampler (selection probability proportional to each
// light's total emitted power rather than uniform, which halves variance
// on scenes with one dominant light and several weak fill lights).
type EmitterSampler struct {
	Emitters []Emitter
	dist     *core.DiscreteDistribution1D
}

// NewEmitterSampler builds the selection distribution from each emitter's
// approximate power (luminance of its emission times a representative
// area/solid-angle weight, supplied by the caller since only the scene
// builder knows each emitter's world-space extent).
func NewEmitterSampler(emitters []Emitter, powerWeights []float64) *EmitterSampler {
	return &EmitterSampler{Emitters: emitters, dist: core.NewDiscreteDistribution1D(powerWeights)}
}

// Sample picks an emitter and returns it with its selection probability.
func (s *EmitterSampler) Sample(u float64) (Emitter, float64, int) {
	if len(s.Emitters) == 0 {
		return nil, 0, -1
	}
	idx, pdf := s.dist.Sample(u)
	return s.Emitters[idx], pdf, idx
}

// Probability returns the selection probability of a specific emitter
// index, used to reweight a BSDF-sampled hit's MIS PDF against NEE.
func (s *EmitterSampler) Probability(index int) float64 {
	if index < 0 || index >= s.dist.Count() {
		return 0
	}
	return s.dist.PDF(index)
}

func (s *EmitterSampler) Count() int { return len(s.Emitters) }
