package yolo

import (
	"fmt"
	"strconv"
	"strings"
)

// Annotation is one parsed object annotation resolved against the dataset's
// class schema.
type Annotation struct {
	ClassID    int         `json:"class_id"`
	ClassName  string      `json:"class_name"`
	BBox       BoundingBox `json:"bbox"`
	Confidence *float64    `json:"confidence,omitempty"`
}

// ParseAnnotation parses a single YOLO annotation line of the form
// "class_id center_x center_y width height [confidence]". The class index is
// resolved against classNames; out-of-range indices are rejected.
func ParseAnnotation(line string, classNames []string) (Annotation, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Annotation{}, &AnnotationFormatError{
			Line:    line,
			Message: fmt.Sprintf("expected at least 5 fields, got %d", len(fields)),
		}
	}

	classID, err := strconv.Atoi(fields[0])
	if err != nil {
		return Annotation{}, &AnnotationFormatError{Line: line, Message: "class id is not an integer", Cause: err}
	}
	if classID < 0 || classID >= len(classNames) {
		return Annotation{}, &AnnotationFormatError{
			Line:    line,
			Message: fmt.Sprintf("class id %d outside schema of %d classes", classID, len(classNames)),
		}
	}

	coords := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return Annotation{}, &AnnotationFormatError{Line: line, Message: "box field is not a number", Cause: err}
		}
		coords[i] = v
	}

	box, err := NewBoundingBox(coords[0], coords[1], coords[2], coords[3])
	if err != nil {
		return Annotation{}, &AnnotationFormatError{Line: line, Message: "box out of range", Cause: err}
	}

	ann := Annotation{
		ClassID:   classID,
		ClassName: classNames[classID],
		BBox:      box,
	}

	if len(fields) >= 6 {
		conf, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return Annotation{}, &AnnotationFormatError{Line: line, Message: "confidence is not a number", Cause: err}
		}
		if conf < 0 || conf > 1 {
			return Annotation{}, &AnnotationFormatError{Line: line, Message: fmt.Sprintf("confidence %v outside [0, 1]", conf)}
		}
		ann.Confidence = &conf
	}

	return ann, nil
}
