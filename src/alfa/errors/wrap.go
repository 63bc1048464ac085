package errors

import (
	stderrors "errors"
	"io"

	"golang.org/x/xerrors"
)

// New mirrors errors.New, kept here so call sites only ever import one
// errors package.
func New(text string) error {
	return xerrors.New(text)
}

// Errorf mirrors fmt.Errorf/xerrors.Errorf: a %w verb wraps, capturing a
// Frame at the call site so %+v on the result prints a file:line.
func Errorf(format string, args ...any) error {
	return xerrors.Errorf(format, args...)
}

// Wrap annotates err with the caller's Frame without changing its text.
// Returns nil if err is nil, so callers can write
//
//	if err = errors.Wrap(err); err != nil { return err }
//
// immediately after an operation without a separate nil check.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	return xerrors.Errorf("%w", err)
}

// Wrapf annotates err with both a message and the caller's Frame.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	args = append(append([]any{}, args...), err)
	return xerrors.Errorf(format+": %w", args...)
}

// As delegates to the standard library; kept here so packages that use
// this errors package never need a second import for it.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is delegates to the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// DeferredCloser closes closer and, if closing fails and *errOut has not
// already been set to a non-nil error, records the close error into
// *errOut. It never overwrites an error that occurred before the close.
// Intended for:
//
//	defer errors.DeferredCloser(&err, file)
func DeferredCloser(errOut *error, closer io.Closer) {
	closeErr := closer.Close()
	if closeErr == nil {
		return
	}

	if *errOut == nil {
		*errOut = Wrap(closeErr)
	}
}

// PanicIfError panics on a non-nil error. Reserved for invariants that the
// hash primitive and pool wrappers rely on (a reset hash.Hash.Write never
// returning an error, for instance) where a returned error would indicate a
// programming mistake rather than a runtime condition the caller can act on.
func PanicIfError(err error) {
	if err != nil {
		panic(err)
	}
}
