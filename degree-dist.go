package infodiff

// degree-dist.go holds the degree distributions from which the configuration
// model draws the target number of connections of each node.  The set of
// distributions is closed, so one struct carries a tag and switches on it

import (
	"errors"
	"fmt"
	"math"
)

// DegreeDistType identifies a family of degree distributions
type DegreeDistType int

const (
	ConstantDist DegreeDistType = iota
	UniformDist
	PowerLawDist
	PoissonDist
)

var ddtToStr map[DegreeDistType]string = map[DegreeDistType]string{ConstantDist: "constant",
	UniformDist: "uniform", PowerLawDist: "power_law", PoissonDist: "poisson"}

func (ddt DegreeDistType) String() string {
	str, present := ddtToStr[ddt]
	if !present {
		return fmt.Sprintf("DegreeDistType(%d)", int(ddt))
	}
	return str
}

// degreeDistFromStr returns the DegreeDistType named by the input string
func degreeDistFromStr(name string) (DegreeDistType, error) {
	switch name {
	case "constant", "const":
		return ConstantDist, nil
	case "uniform":
		return UniformDist, nil
	case "power_law", "power-law", "powerlaw":
		return PowerLawDist, nil
	case "poisson":
		return PoissonDist, nil
	}
	return ConstantDist, fmt.Errorf("degree distribution %q: %w", name, ErrUnknownDegreeDist)
}

var (
	// ErrUnknownDegreeDist is returned for a distribution name that is not recognized
	ErrUnknownDegreeDist = errors.New("unknown degree distribution")

	// ErrDegreeRange is returned when a distribution's minimum degree exceeds its maximum
	ErrDegreeRange = errors.New("invalid degree range")

	// ErrDistParameter is returned when a distribution parameter is out of its domain
	ErrDistParameter = errors.New("invalid degree distribution parameter")
)

// DegreeRange bounds the values a degree distribution may return
type DegreeRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// DegreeDist samples node degrees from one of the DegreeDistType families
type DegreeDist struct {
	kind    DegreeDistType
	rng     DegreeRange
	param   float64    // k_max for uniform, exponent for power law, mean for Poisson
	sampler *pcSampler // piecewise-constant form, power law and Poisson
	rngstrm U01Source
}

// CreateDegreeDist is a constructor.  kMin is the smallest degree, param is
// the family-specific parameter (ignored by constant, upper bound for uniform,
// exponent for power law, mean for Poisson) and numNodes is the size of the
// network the degrees are drawn for.  The maximum degree is derived here
func CreateDegreeDist(kind DegreeDistType, kMin int, param float64, numNodes int, rng U01Source) (*DegreeDist, error) {
	if kMin < 0 {
		return nil, fmt.Errorf("%s: k_min %d is negative: %w", kind, kMin, ErrDegreeRange)
	}
	if numNodes < 1 {
		return nil, fmt.Errorf("%s: %d nodes: %w", kind, numNodes, ErrDistParameter)
	}

	dd := new(DegreeDist)
	dd.kind = kind
	dd.param = param
	dd.rngstrm = rng
	dd.rng.Min = kMin

	switch kind {
	case ConstantDist:
		dd.rng.Max = kMin

	case UniformDist:
		if math.IsNaN(param) || param < 0 || param != math.Trunc(param) {
			return nil, fmt.Errorf("%s: k_max %v: %w", kind, param, ErrDistParameter)
		}
		dd.rng.Max = int(param)

	case PowerLawDist:
		if !(param > 0.0) {
			return nil, fmt.Errorf("%s: exponent %v must be positive: %w", kind, param, ErrDistParameter)
		}
		if kMin < 1 {
			return nil, fmt.Errorf("%s: k_min must be at least 1: %w", kind, ErrDegreeRange)
		}
		kMax, err := powerLawKMax(kMin, param, numNodes)
		if err != nil {
			return nil, err
		}
		dd.rng.Max = kMax

	case PoissonDist:
		if !(param > 0.0) || math.IsInf(param, 1) {
			return nil, fmt.Errorf("%s: mean %v must be positive: %w", kind, param, ErrDistParameter)
		}
		dd.rng.Max = poissonKMax(param, numNodes)

	default:
		return nil, fmt.Errorf("%s: %w", kind, ErrUnknownDegreeDist)
	}

	if dd.rng.Min > dd.rng.Max {
		return nil, fmt.Errorf("%s: k_min %d > k_max %d: %w", kind, dd.rng.Min, dd.rng.Max, ErrDegreeRange)
	}
	return dd, nil
}

// powerLawKMax truncates the power law at kMin * N^(1/(alpha-1)), the natural
// cutoff of a scale-free degree sequence over N nodes
func powerLawKMax(kMin int, alpha float64, numNodes int) (int, error) {
	kMax := math.Floor(float64(kMin) * math.Pow(float64(numNodes), 1.0/(alpha-1.0)))
	if math.IsNaN(kMax) || math.IsInf(kMax, 0) || kMax > float64(math.MaxInt32) {
		return 0, fmt.Errorf("%s: exponent %v gives no finite k_max: %w", PowerLawDist, alpha, ErrDistParameter)
	}
	return int(kMax), nil
}

// poissonKMax finds the smallest k such that the Poisson cumulative mass
// through k exceeds 1-1/N, i.e. sum_{j<=k} lambda^j/j! > e^lambda (1-1/N).
// The terms are computed in log space to stay finite for large lambda
func poissonKMax(lambda float64, numNodes int) int {
	bound := 1.0 - 1.0/float64(numNodes)
	logLambda := math.Log(lambda)

	cdf := 0.0
	kMax := -1
	for cdf <= bound {
		kMax += 1
		lg, _ := math.Lgamma(float64(kMax) + 1.0)
		term := math.Exp(float64(kMax)*logLambda - lambda - lg)
		cdf += term

		// past the mode the terms only shrink; once they vanish the sum is final
		if float64(kMax) > lambda && term == 0.0 {
			break
		}
	}
	if kMax < 0 {
		kMax = 0
	}
	return kMax
}

// GenerateDistribution precomputes the sampling structure.  It must be
// called before RandomDegree for the power-law and Poisson families
func (dd *DegreeDist) GenerateDistribution() {
	switch dd.kind {
	case PowerLawDist:
		weights := make([]float64, dd.rng.Max-dd.rng.Min+1)
		for d := dd.rng.Min; d <= dd.rng.Max; d++ {
			weights[d-dd.rng.Min] = math.Pow(float64(d), -dd.param)
		}
		dd.sampler = createPCSampler(dd.rng.Min, weights)

	case PoissonDist:
		// weights lambda^d/d!, scaled by the largest of them
		logW := make([]float64, dd.rng.Max-dd.rng.Min+1)
		logLambda := math.Log(dd.param)
		top := math.Inf(-1)
		for d := dd.rng.Min; d <= dd.rng.Max; d++ {
			lg, _ := math.Lgamma(float64(d) + 1.0)
			logW[d-dd.rng.Min] = float64(d)*logLambda - lg
			top = math.Max(top, logW[d-dd.rng.Min])
		}
		weights := make([]float64, len(logW))
		for idx, lw := range logW {
			weights[idx] = math.Exp(lw - top)
		}
		dd.sampler = createPCSampler(dd.rng.Min, weights)
	}
}

// RandomDegree draws one degree from [Min, Max]
func (dd *DegreeDist) RandomDegree() int {
	switch dd.kind {
	case ConstantDist:
		return dd.rng.Min
	case UniformDist:
		return randIntRange(dd.rngstrm, dd.rng.Min, dd.rng.Max)
	case PowerLawDist, PoissonDist:
		if dd.sampler == nil {
			dd.GenerateDistribution()
		}
		return dd.sampler.sample(dd.rngstrm)
	}
	panic(fmt.Errorf("degree distribution %s cannot be sampled", dd.kind))
}

// Kind returns the family of the distribution
func (dd *DegreeDist) Kind() DegreeDistType {
	return dd.kind
}

// Range returns the [Min, Max] bounds of the distribution
func (dd *DegreeDist) Range() DegreeRange {
	return dd.rng
}

// Parameter returns the family-specific parameter the distribution was built with
func (dd *DegreeDist) Parameter() float64 {
	return dd.param
}
