package pipeline

import "fmt"

// ProcessingError wraps a failure in one named stage of an import run.
type ProcessingError struct {
	Step    string
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Step, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Step, e.Message)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}
