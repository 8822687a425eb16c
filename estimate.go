package cpconv

// Estimation of physical object sizes per category.

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/stat"
)

// SizeRule selects which box side is measured for size estimation.
type SizeRule int

const (
	// SizeRuleMaxSide measures the larger of box width and height.
	SizeRuleMaxSide SizeRule = iota
	// SizeRuleWidth measures the box width only. This reproduces the sizes computed by the
	// earlier centerpoint scripts.
	SizeRuleWidth
)

// ParseSizeRule parses "max" or "width".
func ParseSizeRule(s string) (SizeRule, error) {
	switch s {
	case "max", "":
		return SizeRuleMaxSide, nil
	case "width":
		return SizeRuleWidth, nil
	}
	return SizeRuleMaxSide, fmt.Errorf("unknown size rule %q", s)
}

func (r SizeRule) String() string {
	if r == SizeRuleWidth {
		return "width"
	}
	return "max"
}

func (r SizeRule) measure(b BBox) float64 {
	if r == SizeRuleWidth || b.Width() >= b.Height() {
		return b.Width()
	}
	return b.Height()
}

// CategoryEstimate is the size estimate for one category.
type CategoryEstimate struct {
	ID      int64
	Name    string
	Samples int // The number of annotations on images with GSD.
	// AverageSize is the mean object size in meters, or nil if there were no samples.
	AverageSize *float64
}

// EstimateCategorySizes computes the mean physical size of the objects of every category in d.
//
// Each annotation contributes its measured box side multiplied by the GSD of its image.
// Annotations on images without GSD are skipped. The estimates are returned in category order.
func EstimateCategorySizes(d *COCODataset, rule SizeRule) ([]CategoryEstimate, error) {
	samples := make(map[int64][]float64, len(d.Categories))
	for _, c := range d.Categories {
		samples[c.ID] = nil
	}

	gsds := newGSDIndex(d)
	skipped := 0
	for _, a := range d.Annotations {
		if _, ok := samples[a.CategoryID]; !ok {
			return nil, &UnknownCategoryError{AnnotationID: a.ID, CategoryID: a.CategoryID}
		}
		if a.BBox == nil {
			return nil, &MissingBBoxError{AnnotationID: a.ID}
		}
		gsd, ok := gsds[a.ImageID]
		if !ok {
			skipped++
			continue
		}
		samples[a.CategoryID] = append(samples[a.CategoryID], rule.measure(*a.BBox)*gsd)
	}
	if skipped > 0 {
		log.Printf("Skipped %d of %d annotations on images without GSD", skipped,
			len(d.Annotations))
	}

	estimates := make([]CategoryEstimate, len(d.Categories))
	for i, c := range d.Categories {
		s := samples[c.ID]
		estimates[i] = CategoryEstimate{ID: c.ID, Name: c.Name, Samples: len(s)}
		if len(s) > 0 {
			avg := stat.Mean(s, nil)
			estimates[i].AverageSize = &avg
		}
	}
	return estimates, nil
}

// ApplyCategorySizes returns a copy of d with the average sizes from estimates set on the
// matching categories. Categories without an estimate have their average size removed.
func ApplyCategorySizes(d *COCODataset, estimates []CategoryEstimate) *COCODataset {
	byID := make(map[int64]*float64, len(estimates))
	for _, e := range estimates {
		byID[e.ID] = e.AverageSize
	}

	out := d.Clone()
	for i := range out.Categories {
		out.Categories[i].AverageSize = byID[out.Categories[i].ID]
	}
	return out
}

// EstimateCategorySizesFile estimates the category sizes of the COCO file at path.
//
// If writeOut is true, the average sizes are stored in the categories of that file and the
// category lists of all matched files are replaced by the enriched categories, which keeps the
// category tables of e.g. train and val sets identical. Either all files are rewritten or none
// is.
func EstimateCategorySizesFile(path string, rule SizeRule, writeOut bool, matched ...string) (
	[]CategoryEstimate, error) {

	d, err := ReadCOCO(path)
	if err != nil {
		return nil, err
	}
	log.Printf("Estimating category sizes for %d annotations in %q", len(d.Annotations), path)

	estimates, err := EstimateCategorySizes(d, rule)
	if err != nil {
		return nil, fmt.Errorf("size estimation for %q failed: %w", path, err)
	}
	for _, e := range estimates {
		if e.AverageSize == nil {
			log.Printf("No size estimate available for category %d %q", e.ID, e.Name)
		}
	}
	if !writeOut {
		return estimates, nil
	}

	enriched := ApplyCategorySizes(d, estimates)
	paths := []string{path}
	outputs := []*COCODataset{enriched}
	for _, fp := range matched {
		m, err := ReadCOCO(fp)
		if err != nil {
			return nil, err
		}
		m = m.Clone()
		m.Categories = enriched.Categories
		paths = append(paths, fp)
		outputs = append(outputs, m)
	}

	if err := writeCOCOFiles(paths, outputs); err != nil {
		return nil, err
	}
	return estimates, nil
}
