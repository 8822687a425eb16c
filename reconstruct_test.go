package cpconv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquareBox(t *testing.T) {
	assert.Equal(t, BBox{96, 46, 8, 8}, SquareBox(Point{100, 50}, 4, 0.5))
	// 3 m at 0.4 m/px is 7.5 px, rounded down to 7.
	assert.Equal(t, BBox{6.5, 6.5, 7, 7}, SquareBox(Point{10, 10}, 3, 0.4))
}

func reconstructDataset() *COCODataset {
	return &COCODataset{
		Images: []COCOImage{testImage(1, f64(0.5)), testImage(2, nil)},
		Annotations: []COCOAnnotation{
			{ID: 1, ImageID: 1, CategoryID: 1, BBox: box(0, 0, 3, 3), Centerpoint: pt(100, 50)},
			{ID: 2, ImageID: 2, CategoryID: 2, BBox: box(0, 0, 3, 3), ObjectCenter: pt(20, 30)},
		},
		Categories: []COCOCategory{
			{ID: 1, Name: "car", AverageSize: f64(4)},
			{ID: 2, Name: "truck", AverageSize: f64(10)},
		},
	}
}

func TestReconstructBoxes(t *testing.T) {
	d := reconstructDataset()

	out, err := ReconstructBoxes(d, f64(1))
	require.NoError(t, err)
	assert.Equal(t, BBox{96, 46, 8, 8}, *out.Annotations[0].BBox)
	assert.Equal(t, BBox{15, 25, 10, 10}, *out.Annotations[1].BBox)
	assert.Equal(t, BBox{0, 0, 3, 3}, *d.Annotations[0].BBox, "the input must not change")
}

func TestReconstructBoxesKeepsCenters(t *testing.T) {
	d := &COCODataset{Images: []COCOImage{testImage(1, f64(0.25))}, Categories: []COCOCategory{
		{ID: 1, Name: "car", AverageSize: f64(4.5)},
	}}
	for i := 0; i < 10; i++ {
		d.Annotations = append(d.Annotations, COCOAnnotation{
			ID: int64(i), ImageID: 1, CategoryID: 1, Centerpoint: pt(float64(30+i), float64(40+2*i)),
		})
	}

	out, err := ReconstructBoxes(d, nil)
	require.NoError(t, err)
	for i, a := range out.Annotations {
		assert.Equal(t, 18.0, a.BBox.Width())
		assert.Equal(t, *d.Annotations[i].Centerpoint, Center(*a.BBox))
	}
}

func TestReconstructBoxesErrors(t *testing.T) {
	t.Run("missing centerpoint", func(t *testing.T) {
		d := reconstructDataset()
		d.Annotations[0].Centerpoint = nil

		_, err := ReconstructBoxes(d, f64(1))
		var missing *MissingCenterpointError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, int64(1), missing.AnnotationID)
	})

	t.Run("missing category size", func(t *testing.T) {
		d := reconstructDataset()
		d.Categories[1].AverageSize = nil

		_, err := ReconstructBoxes(d, f64(1))
		var missing *MissingCategorySizeError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, int64(2), missing.CategoryID)
	})

	t.Run("missing GSD", func(t *testing.T) {
		_, err := ReconstructBoxes(reconstructDataset(), nil)
		var missing *MissingGSDError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, int64(2), missing.ImageID)
	})
}
