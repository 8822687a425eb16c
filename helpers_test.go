package cpconv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func box(x, y, w, h float64) *BBox {
	b := BBox{x, y, w, h}
	return &b
}

func pt(x, y float64) *Point {
	p := Point{x, y}
	return &p
}

// testImage returns an image with the given GSD, or without acquisition data if gsd is nil.
func testImage(id int64, gsd *float64) COCOImage {
	img := COCOImage{ID: id, FileName: "img.png", Width: 1000, Height: 1000}
	if gsd != nil {
		img.AcquisitionData = &AcquisitionData{GSD: []*float64{gsd}}
	}
	return img
}

// scriptedRand returns predefined values from Intn and leaves the order unchanged on Shuffle.
type scriptedRand struct {
	t    *testing.T
	ints []int
}

func (r *scriptedRand) Intn(n int) int {
	r.t.Helper()
	require.NotEmpty(r.t, r.ints, "unexpected random draw")
	v := r.ints[0]
	r.ints = r.ints[1:]
	require.Less(r.t, v, n)
	return v
}

func (r *scriptedRand) Shuffle(n int, swap func(i, j int)) {}

// noRand fails the test on any random draw.
type noRand struct {
	t *testing.T
}

func (r noRand) Intn(n int) int {
	r.t.Fatal("unexpected call to Intn")
	return 0
}

func (r noRand) Shuffle(n int, swap func(i, j int)) {
	r.t.Fatal("unexpected call to Shuffle")
}
