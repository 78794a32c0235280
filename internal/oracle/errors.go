package oracle

import "errors"

// FailureMessage is the only text a user sees when a reading fails
const FailureMessage = "분석 중 오류가 발생했습니다."

// ErrAnalysisFailed matches every *AnalysisFailure via errors.Is.
var ErrAnalysisFailed = errors.New("oracle: analysis failed")

// AnalysisFailure normalizes transport, timeout, parse, and shape errors into
// one user-safe error. The cause is kept for logs.
type AnalysisFailure struct {
	Cause error
}

func (e *AnalysisFailure) Error() string {
	return FailureMessage
}

func (e *AnalysisFailure) Unwrap() error {
	return e.Cause
}

func (e *AnalysisFailure) Is(target error) bool {
	return target == ErrAnalysisFailed
}

func fail(err error) error {
	return &AnalysisFailure{Cause: err}
}
