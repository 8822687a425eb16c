package cpconv

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageGSD(t *testing.T) {
	tests := []struct {
		name string
		img  COCOImage
		want float64
		ok   bool
	}{
		{"present", testImage(1, f64(0.25)), 0.25, true},
		{"no acquisition data", testImage(1, nil), 0, false},
		{"empty list", COCOImage{AcquisitionData: &AcquisitionData{}}, 0, false},
		{"null", COCOImage{AcquisitionData: &AcquisitionData{GSD: []*float64{nil}}}, 0, false},
		{"zero", testImage(1, f64(0)), 0, false},
		{"negative", testImage(1, f64(-0.1)), 0, false},
		{"NaN", testImage(1, f64(math.NaN())), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ImageGSD(tt.img)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAverageGSD(t *testing.T) {
	d := &COCODataset{Images: []COCOImage{
		testImage(1, f64(0.3)),
		testImage(2, nil),
		testImage(3, f64(0.5)),
		testImage(4, f64(0.4)),
	}}

	avg, err := AverageGSD(d)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, avg, 1e-12)
}

func TestAverageGSDWithoutValues(t *testing.T) {
	d := &COCODataset{Images: []COCOImage{testImage(1, nil)}}

	_, err := AverageGSD(d)
	assert.True(t, errors.Is(err, ErrNoGSD))
}

func TestGSDIndexResolve(t *testing.T) {
	d := &COCODataset{Images: []COCOImage{testImage(1, f64(0.2)), testImage(2, nil)}}
	idx := newGSDIndex(d)

	gsd, err := idx.resolve(1, f64(0.9))
	require.NoError(t, err)
	assert.Equal(t, 0.2, gsd)

	gsd, err = idx.resolve(2, f64(0.9))
	require.NoError(t, err)
	assert.Equal(t, 0.9, gsd)

	for _, fallback := range []*float64{nil, f64(0), f64(math.NaN())} {
		_, err = idx.resolve(2, fallback)
		var missing *MissingGSDError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, int64(2), missing.ImageID)
	}
}
