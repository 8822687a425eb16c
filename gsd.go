package cpconv

// Ground sample distance (GSD) lookup.

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ImageGSD returns the GSD of img in meters per pixel. The second return value is false if the
// image has no acquisition data, an empty or null GSD entry, or a value that is not positive.
func ImageGSD(img COCOImage) (float64, bool) {
	if img.AcquisitionData == nil || len(img.AcquisitionData.GSD) == 0 {
		return 0, false
	}
	v := img.AcquisitionData.GSD[0]
	if v == nil || !validGSD(*v) {
		return 0, false
	}
	return *v, true
}

// AverageGSD returns the arithmetic mean of all per-image GSD values in d. It returns ErrNoGSD if
// no image has one.
func AverageGSD(d *COCODataset) (float64, error) {
	vals := make([]float64, 0, len(d.Images))
	for _, img := range d.Images {
		if gsd, ok := ImageGSD(img); ok {
			vals = append(vals, gsd)
		}
	}
	if len(vals) == 0 {
		return 0, ErrNoGSD
	}
	return stat.Mean(vals, nil), nil
}

// AverageGSDFile reads the COCO file at path and returns its average image GSD.
func AverageGSDFile(path string) (float64, error) {
	d, err := ReadCOCO(path)
	if err != nil {
		return 0, err
	}
	return AverageGSD(d)
}

func validGSD(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// gsdIndex maps image IDs to their GSD. Images without GSD are not in the map.
type gsdIndex map[int64]float64

func newGSDIndex(d *COCODataset) gsdIndex {
	idx := make(gsdIndex, len(d.Images))
	for _, img := range d.Images {
		if gsd, ok := ImageGSD(img); ok {
			idx[img.ID] = gsd
		}
	}
	return idx
}

// resolve returns the GSD of the image, else the fallback. A nil or invalid fallback results in
// a *MissingGSDError.
func (idx gsdIndex) resolve(imageID int64, fallback *float64) (float64, error) {
	if gsd, ok := idx[imageID]; ok {
		return gsd, nil
	}
	if fallback != nil && validGSD(*fallback) {
		return *fallback, nil
	}
	return 0, &MissingGSDError{ImageID: imageID}
}
