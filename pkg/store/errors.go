package store

import (
	"fmt"

	derrors "github.com/vango-dev/depot/internal/errors"
)

// Sentinel errors. Errors returned by this package carry the same code as
// one of these and match it with errors.Is.
var (
	ErrNoContainer          = derrors.New("D001")
	ErrCircularConstruction = derrors.New("D002")
	ErrDuplicateKey         = derrors.New("D003")
	ErrReadOnly             = derrors.New("D004")
	ErrResetUnsupported     = derrors.New("D005")
	ErrForeignRef           = derrors.New("D006")
	ErrUnknownAction        = derrors.New("D007")
	ErrInvalidID            = derrors.New("D008")
	ErrSetupFailed          = derrors.New("D009")
	ErrContainerDisposed    = derrors.New("D010")
)

func newError(code, format string, args ...any) *derrors.DepotError {
	return derrors.New(code).WithDetail(fmt.Sprintf(format, args...))
}

// PanicError carries a non-error value recovered from a panicking action.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("action panicked: %v", e.Value)
}

// asError converts a recovered panic value to an error.
func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r}
}
