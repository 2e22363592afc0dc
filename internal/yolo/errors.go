package yolo

import "fmt"

// ConfigFormatError reports a dataset config document that could not be
// interpreted as a YOLO class schema.
type ConfigFormatError struct {
	Message string
	Cause   error
}

func (e *ConfigFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid dataset config: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid dataset config: %s", e.Message)
}

func (e *ConfigFormatError) Unwrap() error {
	return e.Cause
}

// AnnotationFormatError reports a single annotation line that could not be
// parsed. Callers typically log it and continue with the next line.
type AnnotationFormatError struct {
	Line    string
	Message string
	Cause   error
}

func (e *AnnotationFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid annotation %q: %s: %v", e.Line, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid annotation %q: %s", e.Line, e.Message)
}

func (e *AnnotationFormatError) Unwrap() error {
	return e.Cause
}
