package kernel

import "fmt"

// A Solver computes single band light interception.
type Solver interface {
	// First order interception. A non-nil req.Domain requests periodic
	// replication of the scene.
	Raycasting(req *Request) (*Output, error)

	Radiosity(req *Request) (*Output, error)

	MixedRadiosity(req *Request) (*Output, error)
}

// A MultiBandSolver computes several bands jointly. Outputs are keyed by
// band name.
type MultiBandSolver interface {
	RaycastingBands(req *MultiBandRequest) (map[string]*Output, error)
	RadiosityBands(req *MultiBandRequest) (map[string]*Output, error)
	MixedRadiosityBands(req *MultiBandRequest) (map[string]*Output, error)
}

// A Periodiser clips and replicates a .can geometry description so that it
// fits inside the .8 pattern and returns the resulting .can description.
type Periodiser interface {
	Periodise(can, pattern string) (string, error)
}

// Invoke the solver entry point that implements mode.
func Dispatch(s Solver, mode Mode, req *Request) (*Output, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	switch mode {
	case Raycasting:
		r := *req
		r.Domain = nil
		return s.Raycasting(&r)
	case PeriodicRaycasting:
		if req.Domain == nil {
			return nil, fmt.Errorf("kernel: %s requires a domain", mode)
		}
		return s.Raycasting(req)
	case Radiosity:
		return s.Radiosity(req)
	case MixedRadiosity:
		if req.Domain == nil {
			return nil, fmt.Errorf("kernel: %s requires a domain", mode)
		}
		return s.MixedRadiosity(req)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
}

// Invoke the multi band solver entry point that implements mode.
func DispatchBands(s MultiBandSolver, mode Mode, req *MultiBandRequest) (map[string]*Output, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	switch mode {
	case Raycasting:
		r := *req
		r.Domain = nil
		return s.RaycastingBands(&r)
	case PeriodicRaycasting:
		if req.Domain == nil {
			return nil, fmt.Errorf("kernel: %s requires a domain", mode)
		}
		return s.RaycastingBands(req)
	case Radiosity:
		return s.RadiosityBands(req)
	case MixedRadiosity:
		if req.Domain == nil {
			return nil, fmt.Errorf("kernel: %s requires a domain", mode)
		}
		return s.MixedRadiosityBands(req)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
}

type vectorized struct {
	solver Solver
}

// Adapt a single band solver into a MultiBandSolver that solves each band in
// turn.
func Vectorize(s Solver) MultiBandSolver {
	if mb, ok := s.(MultiBandSolver); ok {
		return mb
	}
	return &vectorized{solver: s}
}

func (v *vectorized) RaycastingBands(req *MultiBandRequest) (map[string]*Output, error) {
	return v.each(req, v.solver.Raycasting)
}

func (v *vectorized) RadiosityBands(req *MultiBandRequest) (map[string]*Output, error) {
	return v.each(req, v.solver.Radiosity)
}

func (v *vectorized) MixedRadiosityBands(req *MultiBandRequest) (map[string]*Output, error) {
	return v.each(req, v.solver.MixedRadiosity)
}

func (v *vectorized) each(req *MultiBandRequest, fn func(*Request) (*Output, error)) (map[string]*Output, error) {
	out := make(map[string]*Output, len(req.Bands))
	for _, band := range req.Bands {
		res, err := fn(req.Band(band))
		if err != nil {
			return nil, fmt.Errorf("band %q: %w", band, err)
		}
		out[band] = res
	}
	return out, nil
}
