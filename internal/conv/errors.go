package conv

import "github.com/pkg/errors"

// Failure kinds, distinguishable via errors.Is.
var (
	// ErrAllocation reports that workspace or all-ones memory could not
	// be obtained at the requested size.
	ErrAllocation = errors.New("allocation failed")
	// ErrBackend reports a failure from the underlying GEMM/GEMV call.
	ErrBackend = errors.New("numeric backend failure")
	// ErrValidation reports a precondition violation in the caller's
	// arguments (shapes, group counts, dtypes).
	ErrValidation = errors.New("invalid argument")
)

// Error annotates a failure with the operation that produced it.
type Error struct {
	Op   string // originating operation, e.g. "conv3d.Forward: gemm"
	Kind error  // one of the Err* sentinels
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Kind.Error()
}

// Is matches the error's kind so errors.Is(err, ErrValidation) works.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opError(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func validationf(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrValidation, Err: errors.Errorf(format, args...)}
}
