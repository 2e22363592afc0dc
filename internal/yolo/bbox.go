package yolo

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// BoundingBox is a normalized YOLO box: center coordinates plus width and
// height, each in [0, 1] relative to the image dimensions.
type BoundingBox struct {
	CenterX float64 `json:"center_x" validate:"gte=0,lte=1"`
	CenterY float64 `json:"center_y" validate:"gte=0,lte=1"`
	Width   float64 `json:"width" validate:"gte=0,lte=1"`
	Height  float64 `json:"height" validate:"gte=0,lte=1"`
}

// NewBoundingBox builds a BoundingBox, rejecting any field outside [0, 1].
func NewBoundingBox(centerX, centerY, width, height float64) (BoundingBox, error) {
	box := BoundingBox{CenterX: centerX, CenterY: centerY, Width: width, Height: height}
	if err := validate.Struct(box); err != nil {
		return BoundingBox{}, fmt.Errorf("bounding box out of range: %w", err)
	}
	return box, nil
}
