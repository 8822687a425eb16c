package cpconv

// The intermediate annotation representation used by the label format exporters.

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
)

// Keys for known annotation attributes.
const (
	AnnotationID = "AnnotationID" // The COCO annotation ID. Type int64.
	CategoryID   = "CategoryID"   // The COCO category ID. Type int64.
)

// Shape is the geometry of an Annotation.
type Shape int

// The known shapes.
const (
	ShapeRect Shape = iota
	ShapePoint
)

// ParseShape parses "bbox" or "center".
func ParseShape(s string) (Shape, error) {
	switch s {
	case "bbox", "":
		return ShapeRect, nil
	case "center":
		return ShapePoint, nil
	}
	return ShapeRect, fmt.Errorf("unknown geometry %q", s)
}

// Annotation is the intermediate representation of an object label.
type Annotation struct {
	Attributes map[string]interface{} // Additional attributes of this annotation.
	// Absolute x1, y1, x2, y2 offsets from the top-left corner. For points x1 == x2 and y1 == y2.
	Coords [4]float64
	Label  string
	Shape  Shape
}

// Width is the object width from a.Coords.
func (a Annotation) Width() float64 {
	return a.Coords[2] - a.Coords[0]
}

// Height is the object height from a.Coords.
func (a Annotation) Height() float64 {
	return a.Coords[3] - a.Coords[1]
}

// AnnotatedFile is the intermediate representation of file metadata.
type AnnotatedFile struct {
	Annotations []Annotation // The annotations.
	FilePath    string       // The annotated file.
	Width       int          // The image width, if known.
	Height      int          // The image height, if known.
}

// AnnotatedFiles is the annotation metadata for a list of files.
type AnnotatedFiles []AnnotatedFile

// FromCOCO converts the COCO dataset to the intermediate representation, one AnnotatedFile per
// image in image order. Image file names are joined to imageDir.
//
// With ShapeRect the annotation bboxes are used, with ShapePoint the centerpoints (or object
// centers). Annotations lacking the requested geometry or referencing unknown images or categories
// are skipped and logged.
func FromCOCO(d *COCODataset, imageDir string, shape Shape) AnnotatedFiles {
	labels := make(map[int64]string, len(d.Categories))
	for _, c := range d.Categories {
		labels[c.ID] = c.Name
	}
	byImage := d.annotationsByImage()

	data := make(AnnotatedFiles, 0, len(d.Images))
	skipped := 0
	converted := 0
	for _, img := range d.Images {
		f := AnnotatedFile{
			Annotations: make([]Annotation, 0, len(byImage[img.ID])),
			FilePath:    filepath.Join(imageDir, img.FileName),
			Width:       img.Width,
			Height:      img.Height,
		}
		for _, i := range byImage[img.ID] {
			a := d.Annotations[i]
			label, ok := labels[a.CategoryID]
			if !ok {
				skipped++
				continue
			}

			irObject := Annotation{
				Attributes: map[string]interface{}{
					AnnotationID: a.ID,
					CategoryID:   a.CategoryID,
				},
				Label: label,
				Shape: shape,
			}
			switch shape {
			case ShapePoint:
				c, ok := a.Center()
				if !ok {
					skipped++
					continue
				}
				irObject.Coords = [4]float64{c[0], c[1], c[0], c[1]}
			default:
				if a.BBox == nil {
					skipped++
					continue
				}
				b := *a.BBox
				irObject.Coords = [4]float64{b[0], b[1], b[0] + b.Width(), b[1] + b.Height()}
			}
			f.Annotations = append(f.Annotations, irObject)
			converted++
		}
		data = append(data, f)
	}

	if unlisted := len(d.Annotations) - converted - skipped; unlisted > 0 {
		log.Printf("Skipped %d annotations on images that are not listed", unlisted)
	}
	if skipped > 0 {
		log.Printf("Skipped %d annotations without the requested geometry or category", skipped)
	}
	return data
}

// MapLabels replaces label (sub-)strings with substitution values, as specified in mappings.
//
// The format of mappings is old=new.
func (data AnnotatedFiles) MapLabels(mappings []string) error {
	if len(mappings) == 0 {
		return nil
	}

	// Extract the individual old and new strings to map between.
	replacements := make([]string, 0, 2*len(mappings))
	for _, v := range mappings {
		a := strings.Split(v, "=")
		if len(a) != 2 {
			return fmt.Errorf("invalid mapping: %v", v)
		}
		replacements = append(replacements, a[0], a[1])
	}

	// Apply the replacements, in order, to all labels.
	count := 0
	for _, f := range data {
		for i := range f.Annotations {
			a := &f.Annotations[i]

			oldLabel := a.Label
			for j := 0; j < len(replacements); j += 2 {
				a.Label = strings.ReplaceAll(a.Label, replacements[j], replacements[j+1])
			}
			if a.Label != oldLabel {
				count++
			}
		}
	}

	log.Printf("The label mappings changed %d labels", count)
	return nil
}
