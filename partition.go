package cpconv

// Annotation subsets for single-category vs. full-scene experiments.

import (
	"fmt"
	"log"
)

// SingleCategory returns the subset of d with only the annotations of category catID, that
// category alone in the category list, and only the images with at least one such annotation.
func SingleCategory(d *COCODataset, catID int64) (*COCODataset, error) {
	cat, ok := d.category(catID)
	if !ok {
		return nil, fmt.Errorf("category %d is not in the dataset", catID)
	}

	out := &COCODataset{Extra: d.Extra, Categories: []COCOCategory{cat}}
	onImage := make(map[int64]bool)
	for _, a := range d.Annotations {
		if a.CategoryID == catID {
			out.Annotations = append(out.Annotations, a)
			onImage[a.ImageID] = true
		}
	}
	if len(out.Annotations) == 0 {
		return nil, fmt.Errorf("%w %d %q", ErrNoAnnotations, catID, cat.Name)
	}

	for _, img := range d.Images {
		if onImage[img.ID] {
			out.Images = append(out.Images, img)
		}
	}
	return out, nil
}

// FullSceneReport compares a single-category subset with its full-scene counterpart.
type FullSceneReport struct {
	SingleImages         int
	SingleAnnotations    int
	FullSceneImages      int
	FullSceneAnnotations int
	RanOutOfSingleImages bool
}

// FullScene returns a subset of full with about as many annotations as single, built from the
// images of single in random order. Each image is added with all of its annotations from full,
// of every category, until the annotation count of single is reached.
func FullScene(full, single *COCODataset, rng Rand) (*COCODataset, FullSceneReport, error) {
	if len(single.Annotations) == 0 {
		return nil, FullSceneReport{}, ErrNoAnnotations
	}
	report := FullSceneReport{
		SingleImages:      len(single.Images),
		SingleAnnotations: len(single.Annotations),
	}

	candidates := make([]COCOImage, len(single.Images))
	copy(candidates, single.Images)
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	byImage := full.annotationsByImage()
	out := &COCODataset{Extra: full.Extra, Categories: full.Categories}
	for _, img := range candidates {
		if len(out.Annotations) >= report.SingleAnnotations {
			break
		}
		out.Images = append(out.Images, img)
		for _, i := range byImage[img.ID] {
			out.Annotations = append(out.Annotations, full.Annotations[i])
		}
	}
	if len(out.Annotations) < report.SingleAnnotations {
		report.RanOutOfSingleImages = true
		log.Printf("Ran out of images: the full-scene subset has %d of %d annotations",
			len(out.Annotations), report.SingleAnnotations)
	}

	report.FullSceneImages = len(out.Images)
	report.FullSceneAnnotations = len(out.Annotations)
	return out, report, nil
}
