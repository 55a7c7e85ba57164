package lookup

import "context"

// Recorder receives pipeline observations.
type Recorder interface {
	ObserveComputation(canonicalized bool, expressions int)
}

// CacheRecorder receives one observation per cache lookup.
type CacheRecorder interface {
	ObserveCache(hit bool)
}

// InstrumentedService reports every successful computation to a Recorder.
type InstrumentedService struct {
	next     Service
	recorder Recorder
}

// NewInstrumentedService wraps next with metrics reporting.
func NewInstrumentedService(next Service, recorder Recorder) *InstrumentedService {
	return &InstrumentedService{next: next, recorder: recorder}
}

func (s *InstrumentedService) Compute(ctx context.Context, rawURL string, bits int) (*Computation, error) {
	computation, err := s.next.Compute(ctx, rawURL, bits)
	if err != nil {
		return nil, err
	}

	s.recorder.ObserveComputation(computation.OK(), len(computation.Entries))

	return computation, nil
}

// Compile-time check.
var _ Service = (*InstrumentedService)(nil)
