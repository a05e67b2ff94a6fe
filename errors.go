package hypergeom

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// ComputeErrorCode classifies engine failures.
type ComputeErrorCode string

const (
	// ErrCodeConvergence: a series summation ran out of terms before
	// reaching tolerance.
	ErrCodeConvergence ComputeErrorCode = "CONVERGENCE"
	// ErrCodeIterationLimit: a tail walk would exceed the strategy's
	// iteration budget.
	ErrCodeIterationLimit ComputeErrorCode = "ITERATION_LIMIT"
	// ErrCodeSelector: no strategy can serve the request, or the
	// requested strategy does not exist.
	ErrCodeSelector ComputeErrorCode = "SELECTOR"
	// ErrCodeArithmetic: the decimal context trapped a hard fault, or
	// the query is outside the supported numeric range.
	ErrCodeArithmetic ComputeErrorCode = "ARITHMETIC"
)

// ComputeError describes a failed evaluation with enough context to
// reproduce it.
type ComputeError struct {
	// Code classifies the failure.
	Code ComputeErrorCode

	// Message is a human-readable description.
	Message string

	// Query is the evaluation that failed. The zero Query means the
	// failure happened before a query was involved.
	Query Query

	// Algorithm is the strategy in flight, Undetermined when the
	// failure happened before dispatch.
	Algorithm Algorithm

	// Iterations is the number of steps the walk needed, set on
	// iteration-limit failures.
	Iterations int64

	// Limit is the budget or tolerance that was exceeded, in display
	// form.
	Limit string

	// Err is the underlying error, if any.
	Err error
}

func (e *ComputeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Algorithm != Undetermined {
		msg = fmt.Sprintf("%s (algorithm %s)", msg, e.Algorithm)
	}
	if e.Query.M != 0 {
		msg = fmt.Sprintf("%s for k=%d m=%d n=%d sample=%d",
			msg, e.Query.K, e.Query.M, e.Query.N, e.Query.Sample)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ComputeError) Unwrap() error {
	return e.Err
}

// NewConvergenceError builds a ComputeError for a series that did not
// settle under tolerance.
func NewConvergenceError(q Query, alg Algorithm, tolerance *apd.Decimal, err error) *ComputeError {
	e := &ComputeError{
		Code:      ErrCodeConvergence,
		Message:   "series did not converge",
		Query:     q,
		Algorithm: alg,
		Err:       err,
	}
	if tolerance != nil {
		e.Limit = tolerance.String()
	}
	return e
}

// NewIterationLimitError builds a ComputeError for a tail walk longer
// than its budget.
func NewIterationLimitError(q Query, alg Algorithm, iterations, budget int64) *ComputeError {
	return &ComputeError{
		Code:       ErrCodeIterationLimit,
		Message:    fmt.Sprintf("tail walk needs %d iterations, budget is %d", iterations, budget),
		Query:      q,
		Algorithm:  alg,
		Iterations: iterations,
		Limit:      fmt.Sprintf("%d", budget),
	}
}

// NewSelectorError builds a ComputeError for an unservable strategy
// request.
func NewSelectorError(q Query, alg Algorithm, msg string) *ComputeError {
	return &ComputeError{
		Code:      ErrCodeSelector,
		Message:   msg,
		Query:     q,
		Algorithm: alg,
	}
}

// NewArithmeticError builds a ComputeError for a trapped decimal
// fault or an out-of-range query.
func NewArithmeticError(q Query, alg Algorithm, msg string, err error) *ComputeError {
	return &ComputeError{
		Code:      ErrCodeArithmetic,
		Message:   msg,
		Query:     q,
		Algorithm: alg,
		Err:       err,
	}
}

// IsConvergenceError reports whether err is a ComputeError with
// ErrCodeConvergence.
func IsConvergenceError(err error) bool {
	return hasCode(err, ErrCodeConvergence)
}

// IsIterationLimitError reports whether err is a ComputeError with
// ErrCodeIterationLimit.
func IsIterationLimitError(err error) bool {
	return hasCode(err, ErrCodeIterationLimit)
}

// IsSelectorError reports whether err is a ComputeError with
// ErrCodeSelector.
func IsSelectorError(err error) bool {
	return hasCode(err, ErrCodeSelector)
}

// IsArithmeticError reports whether err is a ComputeError with
// ErrCodeArithmetic.
func IsArithmeticError(err error) bool {
	return hasCode(err, ErrCodeArithmetic)
}

func hasCode(err error, code ComputeErrorCode) bool {
	var ce *ComputeError
	return errors.As(err, &ce) && ce.Code == code
}
