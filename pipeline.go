package cpconv

// File level pipeline stages. Each stage reads one COCO file, transforms it and writes the result
// to a new path that it returns, so that stages can be chained:
//
//	EstimateCategorySizesFile -> Convert(Geo)CenterpointsFile -> ReconstructBoxesFile

import (
	"fmt"
	"log"
)

// ConvertCenterpointsFile adds pixel jittered centerpoints to the annotations of the COCO file at
// path and writes the result to CenterpointPath(path, maxShift).
func ConvertCenterpointsFile(path string, maxShift int, rng Rand) (string, error) {
	d, err := ReadCOCO(path)
	if err != nil {
		return "", err
	}

	out, err := DeriveCenterpoints(d, maxShift, rng)
	if err != nil {
		return "", fmt.Errorf("centerpoint conversion of %q failed: %w", path, err)
	}

	outPath := CenterpointPath(path, maxShift)
	if err := WriteCOCO(outPath, out); err != nil {
		return "", err
	}
	log.Printf("Wrote centerpoints for %d annotations to %s", len(out.Annotations), outPath)
	return outPath, nil
}

// ConvertGeoCenterpointsFile adds GSD aware jittered object centers to the annotations of the
// COCO file at path and writes the result to GeoCenterpointPath.
func ConvertGeoCenterpointsFile(path string, g GeoJitter, rng Rand) (string, error) {
	d, err := ReadCOCO(path)
	if err != nil {
		return "", err
	}

	out, report, err := DeriveGeoCenterpoints(d, g, rng)
	if err != nil {
		return "", fmt.Errorf("centerpoint conversion of %q failed: %w", path, err)
	}
	log.Printf("Shifted points by %v meters on %d of %d images (%d of %d annotations)",
		g.ShiftMeters, report.JitteredImages, report.Images, report.JitteredAnnotations,
		report.Annotations)

	outPath := GeoCenterpointPath(path, g.ShiftMeters, g.Percent)
	if err := WriteCOCO(outPath, out); err != nil {
		return "", err
	}
	log.Printf("Wrote object centers for %d annotations to %s", len(out.Annotations), outPath)
	return outPath, nil
}

// ReconstructBoxesFile replaces the boxes in the COCO file at path by square boxes around the
// centerpoints and writes the result to SquarePath(path).
//
// If fallbackGSD is nil, the average GSD of the file is used for images without GSD. It is only
// required if an annotation lies on such an image.
func ReconstructBoxesFile(path string, fallbackGSD *float64) (string, error) {
	d, err := ReadCOCO(path)
	if err != nil {
		return "", err
	}

	if fallbackGSD == nil && needsFallbackGSD(d) {
		avg, err := AverageGSD(d)
		if err != nil {
			return "", fmt.Errorf("no fallback GSD for %q: %w", path, err)
		}
		fallbackGSD = &avg
	}

	out, err := ReconstructBoxes(d, fallbackGSD)
	if err != nil {
		return "", fmt.Errorf("box reconstruction of %q failed: %w", path, err)
	}

	outPath := SquarePath(path)
	if err := WriteCOCO(outPath, out); err != nil {
		return "", err
	}
	log.Printf("Wrote square boxes for %d annotations to %s", len(out.Annotations), outPath)
	return outPath, nil
}

// needsFallbackGSD reports whether any annotation of d is on an image without GSD.
func needsFallbackGSD(d *COCODataset) bool {
	gsds := newGSDIndex(d)
	for _, a := range d.Annotations {
		if _, ok := gsds[a.ImageID]; !ok {
			return true
		}
	}
	return false
}
