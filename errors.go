package erisieve

import (
	"errors"
	"fmt"
)

var (
	// ErrNilBasis is returned when a sieve is created without a basis set.
	ErrNilBasis = errors.New("erisieve: nil basis set")

	// ErrNilEngine is returned when a sieve is created without an integral engine.
	ErrNilEngine = errors.New("erisieve: nil integral engine")

	// ErrCSAMDisabled is returned by the CSAM significance test when the
	// exchange tables were not built.
	ErrCSAMDisabled = errors.New("erisieve: CSAM screening not enabled")

	// ErrQQRUnsupported is returned for the QQR long-range test. The
	// estimator depends on shell extent data that has never been computed
	// correctly, so the test is rejected instead of returning meaningless
	// results.
	ErrQQRUnsupported = errors.New("erisieve: QQR screening is not supported")

	// ErrTablesNotBuilt is returned when a threshold is applied to a sieve
	// whose magnitude tables were never computed, such as a zero-value Sieve.
	ErrTablesNotBuilt = errors.New("erisieve: magnitude tables not built")

	// ErrDegenerateBasis is returned when every diagonal integral is zero,
	// leaving no maximum to normalize the threshold against.
	ErrDegenerateBasis = errors.New("erisieve: all shell pair integrals are zero")

	// ErrMissingEngineFactory is returned when a parallel build is requested
	// without a factory for per-worker integral engines.
	ErrMissingEngineFactory = errors.New("erisieve: parallel build requires an engine factory")
)

// ErrInvalidThreshold is a named error type for screening thresholds that
// cannot be applied.
type ErrInvalidThreshold struct {
	Threshold float64
}

// Error returns the error message for an invalid threshold.
func (e *ErrInvalidThreshold) Error() string {
	return fmt.Sprintf("erisieve: invalid screening threshold: %g", e.Threshold)
}

// ErrBasisTooLarge is a named error type for basis sets whose canonical pair
// index space exceeds the membership bitmap range.
type ErrBasisTooLarge struct {
	NFunctions int
}

// Error returns the error message for an oversized basis set.
func (e *ErrBasisTooLarge) Error() string {
	return fmt.Sprintf("erisieve: basis set with %d functions exceeds the pair index range", e.NFunctions)
}

// ErrZeroDiagonal is a named error type raised during the CSAM exchange
// build when a basis function has a zero self integral, which would make
// the normalization denominator undefined.
type ErrZeroDiagonal struct {
	Shell    int // Shell is the owning shell index
	Function int // Function is the global basis function index
}

// Error returns the error message for a zero diagonal integral.
func (e *ErrZeroDiagonal) Error() string {
	return fmt.Sprintf("erisieve: zero diagonal integral for function %d in shell %d", e.Function, e.Shell)
}
