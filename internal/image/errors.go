package imagepkg

import "github.com/pkg/errors"

// ErrorKind classifies a CompositeError.
type ErrorKind int

const (
	InvalidDimensions ErrorKind = iota + 1
	DecodeFailure
	EncodeFailure
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidDimensions:
		return "invalid dimensions"
	case DecodeFailure:
		return "decode failure"
	case EncodeFailure:
		return "encode failure"
	}
	return "unknown"
}

// Sentinels for errors.Is.
var (
	ErrInvalidDimensions = &CompositeError{Kind: InvalidDimensions}
	ErrDecodeFailure     = &CompositeError{Kind: DecodeFailure}
	ErrEncodeFailure     = &CompositeError{Kind: EncodeFailure}
)

// CompositeError is returned by the pipeline and its codec boundary.
type CompositeError struct {
	Kind  ErrorKind
	cause error
}

func newError(kind ErrorKind, cause error) *CompositeError {
	return &CompositeError{Kind: kind, cause: cause}
}

func invalidDimensions(format string, args ...interface{}) *CompositeError {
	return newError(InvalidDimensions, errors.Errorf(format, args...))
}

func (e *CompositeError) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *CompositeError) Unwrap() error { return e.cause }

// Is matches any CompositeError of the same kind.
func (e *CompositeError) Is(target error) bool {
	t, ok := target.(*CompositeError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first CompositeError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var ce *CompositeError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}
