package cpconv

// Reconstruction of square bounding boxes from centerpoints and estimated object sizes.

import (
	"math"
)

// SquareBox returns the square box centered on c whose side is the physical size in meters
// converted to pixels with gsd and rounded down.
func SquareBox(c Point, sizeMeters, gsd float64) BBox {
	side := math.Floor(sizeMeters / gsd)
	return BBox{c[0] - side/2, c[1] - side/2, side, side}
}

// ReconstructBoxes returns a copy of d where every annotation's bbox is replaced by a square box
// around its centerpoint (or object center), sized by the category's average size.
//
// Images without GSD use fallbackGSD. The first annotation that cannot be converted aborts the
// operation with a *MissingCenterpointError, *MissingCategorySizeError or *MissingGSDError.
func ReconstructBoxes(d *COCODataset, fallbackGSD *float64) (*COCODataset, error) {
	sizes := make(map[int64]float64, len(d.Categories))
	for _, c := range d.Categories {
		if c.AverageSize != nil && !math.IsNaN(*c.AverageSize) {
			sizes[c.ID] = *c.AverageSize
		}
	}
	gsds := newGSDIndex(d)

	out := d.Clone()
	for i := range out.Annotations {
		a := &out.Annotations[i]
		c, ok := a.Center()
		if !ok {
			return nil, &MissingCenterpointError{AnnotationID: a.ID}
		}
		size, ok := sizes[a.CategoryID]
		if !ok {
			return nil, &MissingCategorySizeError{CategoryID: a.CategoryID}
		}
		gsd, err := gsds.resolve(a.ImageID, fallbackGSD)
		if err != nil {
			return nil, err
		}

		box := SquareBox(c, size, gsd)
		a.BBox = &box
	}
	return out, nil
}
