package core

// PowerHeuristic implements the power heuristic (beta=2) for combining two
// sampling strategies, grounded on the teacher's core.PowerHeuristic.
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	if fPdf == 0 {
		return 0
	}
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	return (f * f) / (f*f + g*g)
}

// BalanceHeuristic implements the balance heuristic, kept for debugging MIS
// bugs per spec.md section 4.3 ("implementers may start with balance
// heuristic denominators for debugging").
func BalanceHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	if fPdf == 0 {
		return 0
	}
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	return f / (f + g)
}

// PowerHeuristicN generalizes PowerHeuristic to an arbitrary number of
// competing strategies, needed by BDPT/VCM where every (s,t[,merge])
// strategy that could have produced the same path competes at once
// (spec.md section 4.3's sum over s', merge').
func PowerHeuristicN(values []float64, index int) float64 {
	if values[index] <= 0 {
		return 0
	}
	num := values[index] * values[index]
	den := 0.0
	for _, v := range values {
		den += v * v
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// DiscreteDistribution1D is a piecewise-constant 1D distribution built from
// unnormalized weights (triangle areas, emitter power, ...), used both for
// sampling a triangle within a mesh and for sampling an emitter from the
// scene's emitter list (spec.md sections 4.4 and 6).
type DiscreteDistribution1D struct {
	weights []float64
	cdf     []float64 // cdf[i] = sum(weights[0..i]) (unnormalized), len = len(weights)
	total   float64
}

// NewDiscreteDistribution1D builds the CDF from unnormalized weights.
// A distribution over zero weights (all-zero or empty) samples uniformly.
func NewDiscreteDistribution1D(weights []float64) *DiscreteDistribution1D {
	d := &DiscreteDistribution1D{weights: append([]float64(nil), weights...)}
	d.cdf = make([]float64, len(weights))
	sum := 0.0
	for i, w := range weights {
		if w < 0 {
			w = 0
		}
		sum += w
		d.cdf[i] = sum
	}
	d.total = sum
	return d
}

// Sample picks an index proportional to its weight given u in [0,1),
// returning the index and its selection probability (PDF over the discrete
// measure, i.e. weight/total).
func (d *DiscreteDistribution1D) Sample(u float64) (index int, pdf float64) {
	n := len(d.weights)
	if n == 0 {
		return -1, 0
	}
	if d.total <= 0 {
		idx := int(u * float64(n))
		if idx >= n {
			idx = n - 1
		}
		return idx, 1.0 / float64(n)
	}
	target := u * d.total
	lo, hi := 0, n-1
	for lo < hi {
		mid := (lo + hi) / 2
		if d.cdf[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, d.weights[lo] / d.total
}

// PDF returns the selection probability of a given index.
func (d *DiscreteDistribution1D) PDF(index int) float64 {
	if index < 0 || index >= len(d.weights) {
		return 0
	}
	if d.total <= 0 {
		return 1.0 / float64(len(d.weights))
	}
	return d.weights[index] / d.total
}

// Count returns the number of entries.
func (d *DiscreteDistribution1D) Count() int { return len(d.weights) }

// TotalWeight returns the sum of unnormalized weights.
func (d *DiscreteDistribution1D) TotalWeight() float64 { return d.total }
