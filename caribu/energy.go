package caribu

import (
	"fmt"
	"math"

	"github.com/christian34/caribu/kernel"
)

// Compute the energy budget of the light sources. qi is the total energy
// received by a horizontal unit area and qem the total energy emitted along
// the light directions. einc is the energy incident on the pattern (m²) and
// is nil when no pattern is defined.
func (s *Scene) IncidentEnergy() (qi, qem float64, einc *float64) {
	for _, l := range s.lights {
		qi += l.Energy
		qem += l.Energy / math.Abs(l.CosZenith())
	}
	if s.pattern != nil {
		e := qi * s.conv.DomainArea(math.Abs(s.pattern.Area()))
		einc = &e
	}
	return qi, qem, einc
}

// Compute the energy intercepted by the soil during a run. qi is the mean
// soil irradiance and einc the total energy intercepted over the pattern.
// An empty band selects the single band of a monochromatic run.
func (s *Scene) SoilEnergy(res *RunResult, band string) (qi, einc float64, err error) {
	if s.soil == nil {
		return 0, 0, fmt.Errorf("%w: soil energy needs a soil mesh; call AddSoil first", ErrPrecedence)
	}
	if res == nil || res.SoilAggregated == nil {
		return 0, 0, fmt.Errorf("%w: soil energy needs the result of a run with a soil mesh", ErrPrecedence)
	}
	if res.scene != s || res.generation != s.generation {
		return 0, 0, fmt.Errorf("%w: run %s was not computed on the current scene and soil", ErrPrecedence, res.ID)
	}

	band, err = res.resolveBand(band)
	if err != nil {
		return 0, 0, err
	}
	soil, found := res.SoilAggregated[band]
	if !found {
		return 0, 0, fmt.Errorf("%w: no soil results for band %q", ErrPrecedence, band)
	}

	qi = soil[kernel.ResultEi]
	einc = qi * s.conv.DomainArea(math.Abs(s.pattern.Area()))
	return qi, einc, nil
}
