package errors

import "fmt"

// Typed is implemented by sentinel and wrapped errors that carry a
// disambiguator type. The disambiguator is never instantiated; it exists
// purely so distinct error kinds get distinct Go types without each one
// needing a hand-written struct.
type Typed[DISAMB any] interface {
	error
	GetErrorType() DISAMB
}

type errorString[DISAMB any] struct {
	value string
}

func (err *errorString[_]) Error() string {
	return err.value
}

func (err *errorString[TYPE]) GetErrorType() TYPE {
	var disamb TYPE
	return disamb
}

func (err *errorString[DISAMB]) Is(target error) bool {
	_, ok := target.(*errorString[DISAMB])
	return ok
}

// NewWithType creates a sentinel error distinguishable by DISAMB.
func NewWithType[DISAMB any](text string) Typed[DISAMB] {
	return &errorString[DISAMB]{text}
}

// IsTyped reports whether err (or anything in its Unwrap chain) carries the
// DISAMB disambiguator.
func IsTyped[DISAMB any](err error) bool {
	var typed Typed[DISAMB]
	return As(err, &typed)
}

// MakeTypedSentinel creates a typed sentinel error and its checker function
// in one call, to cut the boilerplate of declaring both by hand at every
// call site.
func MakeTypedSentinel[DISAMB any](text string) (
	sentinel Typed[DISAMB],
	check func(error) bool,
) {
	sentinel = NewWithType[DISAMB](text)
	check = IsTyped[DISAMB]
	return sentinel, check
}

// Error kinds returned by the pipeline. Each is its own disambiguator type so that
// errors.As can select among them even after they have been wrapped with
// additional context by Wrap/Wrapf.
type (
	errInvalidArgumentDisamb  struct{}
	errBusyDisamb             struct{}
	errDirectionMismatchDisamb struct{}
	errNotReadyDisamb         struct{}
	errBadMessageDisamb       struct{}
	errPipelineClosedDisamb   struct{}
	errNotFoundDisamb         struct{}
)

var (
	ErrInvalidArgument, IsInvalidArgument   = MakeTypedSentinel[errInvalidArgumentDisamb]("invalid argument")
	ErrBusy, IsBusy                         = MakeTypedSentinel[errBusyDisamb]("busy")
	ErrDirectionMismatch, IsDirectionMismatch = MakeTypedSentinel[errDirectionMismatchDisamb]("direction mismatch")
	ErrNotReady, IsNotReady                 = MakeTypedSentinel[errNotReadyDisamb]("not ready")
	ErrBadMessage, IsBadMessage             = MakeTypedSentinel[errBadMessageDisamb]("bad message")
	ErrPipelineClosed, IsPipelineClosed     = MakeTypedSentinel[errPipelineClosedDisamb]("pipeline closed")
)

// ErrNotFound carries the identifier that could not be resolved: the
// NOT-FOUND kind, returned when a chunk is absent from every configured
// store.
type ErrNotFound struct {
	Value string
}

func (err ErrNotFound) Error() string {
	if err.Value == "" {
		return "not found"
	}

	return fmt.Sprintf("not found: %s", err.Value)
}

func (err ErrNotFound) Is(target error) bool {
	_, ok := target.(ErrNotFound)
	return ok
}

func (err ErrNotFound) GetErrorType() errNotFoundDisamb {
	return errNotFoundDisamb{}
}

func MakeErrNotFound(value fmt.Stringer) error {
	return ErrNotFound{Value: value.String()}
}

func MakeErrNotFoundString(s string) error {
	return ErrNotFound{Value: s}
}

func IsErrNotFound(err error) bool {
	return IsTyped[errNotFoundDisamb](err)
}
