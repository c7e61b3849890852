package infodiff

// sample.go holds the random variate generators used when building
// networks and when pushing information across their connections.
// All of them are driven by a U01Source, which in a simulation run
// is an rngstream.RngStream owned by a single worker
import (
	"github.com/iti/rngstream"
	"golang.org/x/exp/slices"
	"math"
)

// U01Source is anything that delivers uniform samples from (0,1).
// *rngstream.RngStream satisfies it
type U01Source interface {
	RandU01() float64
}

var _ U01Source = (*rngstream.RngStream)(nil)

// expRV returns a sample of a exponentially distributed random number
func expRV(u01, rate float64) float64 {
	return -math.Log(1.0-u01) / rate
}

// bernoulli reports success with probability p
func bernoulli(u01, p float64) bool {
	return u01 < p
}

// randIntRange returns an integer uniformly distributed over [lo, hi]
func randIntRange(rng U01Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	span := hi - lo + 1
	k := lo + int(rng.RandU01()*float64(span))

	// RandU01 never returns 1.0, but guard against rounding at the top end
	if k > hi {
		k = hi
	}
	return k
}

// pcSampler draws from a piecewise-constant density defined over the
// unit-width intervals (d-1, d], d = lo..hi, where interval d carries
// relative weight weights[d-lo]
type pcSampler struct {
	lo, hi int
	cum    []float64 // cumulative (unnormalized) weights
}

// createPCSampler is a constructor.  Weights must be non-negative with
// a positive sum
func createPCSampler(lo int, weights []float64) *pcSampler {
	pcs := new(pcSampler)
	pcs.lo = lo
	pcs.hi = lo + len(weights) - 1
	pcs.cum = make([]float64, len(weights))

	total := 0.0
	for idx, w := range weights {
		total += w
		pcs.cum[idx] = total
	}
	return pcs
}

// sample inverts the cumulative weight at a uniform draw, places the
// sample uniformly inside the selected interval and rounds it up
func (pcs *pcSampler) sample(rng U01Source) int {
	total := pcs.cum[len(pcs.cum)-1]
	target := rng.RandU01() * total

	// first interval whose cumulative weight exceeds the target
	idx, _ := slices.BinarySearch(pcs.cum, target)
	for idx < len(pcs.cum)-1 && pcs.cum[idx] <= target {
		idx += 1
	}
	if idx >= len(pcs.cum) {
		idx = len(pcs.cum) - 1
	}

	// position inside the interval (d-1, d]
	below := 0.0
	if idx > 0 {
		below = pcs.cum[idx-1]
	}
	frac := 1.0
	if width := pcs.cum[idx] - below; width > 0.0 {
		frac = (target - below) / width
	}
	x := float64(pcs.lo+idx-1) + frac

	d := int(math.Ceil(x))
	if d < pcs.lo {
		d = pcs.lo
	} else if d > pcs.hi {
		d = pcs.hi
	}
	return d
}
