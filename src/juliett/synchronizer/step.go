package synchronizer

import "code.vellumsync.dev/vellum/go/src/alfa/errors"

// Step advances the pipeline by one bounded unit of work. It is the only
// operation that mutates the session after construction besides the
// configuration setters, and it is illegal to call once eof is set.
func (s *Synchronizer) Step() (Code, error) {
	if s.eof {
		return CodeFinished, errors.Wrap(errors.ErrPipelineClosed)
	}

	if err := s.start(); err != nil {
		return CodeFinished, err
	}

	if s.direction == DirectionEncode {
		return s.stepEncode()
	}

	return s.stepDecode()
}

// Direction reports the direction fixed at construction.
func (s *Synchronizer) Direction() Direction {
	return s.direction
}
