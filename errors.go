package cpconv

import (
	"errors"
	"fmt"
)

var (
	// ErrNoGSD is returned when a dataset average GSD is requested but no image carries a GSD.
	ErrNoGSD = errors.New("no image in the dataset has a GSD value")

	// ErrNoAnnotations is returned when a subset would contain no annotations.
	ErrNoAnnotations = errors.New("no annotations of the requested category")

	// ErrInvalidPercent is returned for shift percentages outside [0, 100].
	ErrInvalidPercent = errors.New("the shift percentage must be in [0, 100]")
)

// MissingGSDError reports an image without GSD where no fallback GSD is available.
type MissingGSDError struct {
	ImageID int64
}

func (e *MissingGSDError) Error() string {
	return fmt.Sprintf("image %d has no GSD and no usable fallback GSD was given", e.ImageID)
}

// MissingCategorySizeError reports a category without an estimated average size.
type MissingCategorySizeError struct {
	CategoryID int64
}

func (e *MissingCategorySizeError) Error() string {
	return fmt.Sprintf("category %d has no average_size; estimate category sizes first",
		e.CategoryID)
}

// UnmatchedCategoryError reports a category whose name does not exist in the reference dataset.
type UnmatchedCategoryError struct {
	ID   int64
	Name string
}

func (e *UnmatchedCategoryError) Error() string {
	return fmt.Sprintf("category %d %q has no match in the reference categories", e.ID, e.Name)
}

// UnknownCategoryError reports an annotation that references a category which is not listed in
// the dataset.
type UnknownCategoryError struct {
	AnnotationID int64
	CategoryID   int64
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("annotation %d references unknown category %d", e.AnnotationID,
		e.CategoryID)
}

// MissingBBoxError reports an annotation without a bounding box.
type MissingBBoxError struct {
	AnnotationID int64
}

func (e *MissingBBoxError) Error() string {
	return fmt.Sprintf("annotation %d has no bbox", e.AnnotationID)
}

// MissingCenterpointError reports an annotation with neither a centerpoint nor an object center.
type MissingCenterpointError struct {
	AnnotationID int64
}

func (e *MissingCenterpointError) Error() string {
	return fmt.Sprintf("annotation %d has no centerpoint or object_center", e.AnnotationID)
}
