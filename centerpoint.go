package cpconv

// Conversion of bounding boxes to (optionally jittered) centerpoints.

import (
	"fmt"
	"log"
	"math"
)

// Rand is the source of randomness for jitter. *rand.Rand from math/rand satisfies it.
type Rand interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
	// Shuffle pseudo-randomizes the order of n elements.
	Shuffle(n int, swap func(i, j int))
}

// Center returns the center of b, with half the width and height rounded down.
func Center(b BBox) Point {
	return Point{b[0] + math.Floor(b.Width()/2), b[1] + math.Floor(b.Height()/2)}
}

// randomDirection picks one of +1, -1 and 0 with equal probability.
func randomDirection(rng Rand) float64 {
	switch rng.Intn(3) {
	case 0:
		return 1
	case 1:
		return -1
	}
	return 0
}

// shiftPoint moves p by dx, dy and clamps the result to non-negative coordinates.
func shiftPoint(p Point, dx, dy float64) Point {
	return Point{math.Max(0, p[0]+dx), math.Max(0, p[1]+dy)}
}

// jitterPoint shifts p independently along each axis. The direction is one of -1, 0, +1 and the
// magnitude is drawn from [1, maxShift]. A maxShift below 1 applies no shift and draws no random
// numbers. The result is always clamped to non-negative coordinates.
func jitterPoint(p Point, maxShift int, rng Rand) Point {
	if maxShift < 1 {
		return shiftPoint(p, 0, 0)
	}
	dirY := randomDirection(rng)
	dirX := randomDirection(rng)
	shiftY := float64(rng.Intn(maxShift) + 1)
	shiftX := float64(rng.Intn(maxShift) + 1)
	return shiftPoint(p, dirX*shiftX, dirY*shiftY)
}

// DeriveCenterpoints returns a copy of d where every annotation has a centerpoint derived from
// its bounding box and jittered by up to maxShift pixels per axis.
func DeriveCenterpoints(d *COCODataset, maxShift int, rng Rand) (*COCODataset, error) {
	out := d.Clone()
	for i := range out.Annotations {
		a := &out.Annotations[i]
		if a.BBox == nil {
			return nil, &MissingBBoxError{AnnotationID: a.ID}
		}
		cp := jitterPoint(Center(*a.BBox), maxShift, rng)
		a.Centerpoint = &cp
	}
	return out, nil
}

// GeoJitter configures the GSD aware centerpoint jitter.
type GeoJitter struct {
	ShiftMeters  float64  // The shift distance in meters.
	Percent      int      // The percentage of images to shift, in [0, 100].
	RandomAmount bool     // Draw the pixel shift per image from [1, ShiftMeters/GSD].
	FallbackGSD  *float64 // Used for images without GSD.
}

// JitterReport summarizes a GSD aware jitter run.
type JitterReport struct {
	Images              int
	JitteredImages      int
	Annotations         int
	JitteredAnnotations int
}

// imageOffset is the shift applied to all annotations of one image.
type imageOffset struct {
	dx, dy float64
}

// DeriveGeoCenterpoints returns a copy of d where every annotation has an object center derived
// from its bounding box.
//
// A random selection of g.Percent percent of the images is jittered: for each selected image the
// shift of g.ShiftMeters is converted to pixels with the image GSD and applied in one randomly
// chosen direction to all annotations on that image. The remaining images keep exact centers.
func DeriveGeoCenterpoints(d *COCODataset, g GeoJitter, rng Rand) (
	*COCODataset, JitterReport, error) {

	if g.Percent < 0 || g.Percent > 100 {
		return nil, JitterReport{}, fmt.Errorf("%w: %d", ErrInvalidPercent, g.Percent)
	}
	if g.ShiftMeters < 0 || math.IsNaN(g.ShiftMeters) {
		return nil, JitterReport{}, fmt.Errorf("invalid shift distance %v", g.ShiftMeters)
	}

	order := make([]int, len(d.Images))
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	numJittered := len(d.Images) * g.Percent / 100

	gsds := newGSDIndex(d)
	offsets := make(map[int64]imageOffset, numJittered)
	for _, idx := range order[:numJittered] {
		img := d.Images[idx]
		gsd, err := gsds.resolve(img.ID, g.FallbackGSD)
		if err != nil {
			return nil, JitterReport{}, err
		}

		shift := g.ShiftMeters / gsd
		if g.RandomAmount {
			// Bounded so that tiny GSD values cannot overflow the conversion.
			if maxShift := int(math.Min(math.Floor(shift), math.MaxInt32)); maxShift >= 1 {
				shift = float64(rng.Intn(maxShift) + 1)
			} else {
				shift = 0
			}
		}

		dirY := randomDirection(rng)
		dirX := randomDirection(rng)
		offsets[img.ID] = imageOffset{dx: dirX * shift, dy: dirY * shift}
	}

	report := JitterReport{
		Images:         len(d.Images),
		JitteredImages: numJittered,
		Annotations:    len(d.Annotations),
	}
	knownImages := make(map[int64]bool, len(d.Images))
	for _, img := range d.Images {
		knownImages[img.ID] = true
	}

	out := d.Clone()
	orphans := 0
	for i := range out.Annotations {
		a := &out.Annotations[i]
		if a.BBox == nil {
			return nil, JitterReport{}, &MissingBBoxError{AnnotationID: a.ID}
		}
		if !knownImages[a.ImageID] {
			orphans++
		}

		off, ok := offsets[a.ImageID]
		if ok {
			report.JitteredAnnotations++
		}
		c := shiftPoint(Center(*a.BBox), off.dx, off.dy)
		a.ObjectCenter = &c
	}
	if orphans > 0 {
		log.Printf("%d annotations reference images that are not listed; they keep exact centers",
			orphans)
	}

	return out, report, nil
}
