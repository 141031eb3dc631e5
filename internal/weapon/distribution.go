package weapon

import (
	"math"

	"github.com/starwake/engine/pkg/core"
)

// DistributionType is the shape of a weapon's inaccuracy spread.
type DistributionType int

const (
	Narrow DistributionType = iota
	Medium
	Wide
	Uniform
	Triangular
)

var distributionNames = map[string]DistributionType{
	"narrow":     Narrow,
	"medium":     Medium,
	"wide":       Wide,
	"uniform":    Uniform,
	"triangular": Triangular,
}

func (t DistributionType) String() string {
	for name, v := range distributionNames {
		if v == t {
			return name
		}
	}
	return "unknown"
}

// ParseDistributionType maps a data file keyword to a distribution type.
func ParseDistributionType(s string) (DistributionType, bool) {
	t, ok := distributionNames[s]
	return t, ok
}

// Distribution selects how inaccuracy offsets are drawn. Inverted pushes
// normal shapes toward the edges of the spread instead of the center.
type Distribution struct {
	Type     DistributionType
	Inverted bool
}

func (t DistributionType) sigma() float64 {
	switch t {
	case Narrow:
		return .13
	case Medium:
		return .234
	default:
		return .314
	}
}

// GenerateInaccuracy draws an angular offset in [-spread, spread].
func GenerateInaccuracy(rng Rand, spread float64, dist Distribution) core.Angle {
	if spread == 0 {
		return core.Angle{}
	}
	switch dist.Type {
	case Uniform:
		return core.NewAngle(2 * (rng.Float64() - .5) * spread)
	case Triangular:
		return core.NewAngle((rng.Float64() - rng.Float64()) * spread)
	}

	v := .5 + dist.Type.sigma()*rng.NormFloat64()
	v -= math.Floor(v)
	v -= .5
	if dist.Inverted {
		if v > 0 {
			v = .5 - v
		} else {
			v = -.5 - v
		}
	}
	return core.NewAngle(2 * spread * v)
}

// Inaccuracy returns a generator bound to rng, suitable for hardpoint injection.
func Inaccuracy(rng Rand) func(spread float64, dist Distribution) core.Angle {
	return func(spread float64, dist Distribution) core.Angle {
		return GenerateInaccuracy(rng, spread, dist)
	}
}
