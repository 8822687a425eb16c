package cpconv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePipelineInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.json")
	d := &COCODataset{
		Images: []COCOImage{testImage(1, f64(0.5)), testImage(2, f64(0.25)), testImage(3, nil)},
		Annotations: []COCOAnnotation{
			{ID: 1, ImageID: 1, CategoryID: 1, BBox: box(10, 10, 8, 4)},
			{ID: 2, ImageID: 2, CategoryID: 1, BBox: box(40, 40, 16, 16)},
			{ID: 3, ImageID: 3, CategoryID: 1, BBox: box(100, 100, 10, 10)},
		},
		Categories: []COCOCategory{{ID: 1, Name: "car"}},
	}
	require.NoError(t, WriteCOCO(path, d))
	return path
}

func TestPixelPipeline(t *testing.T) {
	path := writePipelineInput(t)

	estimates, err := EstimateCategorySizesFile(path, SizeRuleMaxSide, true)
	require.NoError(t, err)
	require.NotNil(t, estimates[0].AverageSize)
	assert.InDelta(t, 4.0, *estimates[0].AverageSize, 1e-12) // mean(8*0.5, 16*0.25)

	cpPath, err := ConvertCenterpointsFile(path, 0, noRand{t})
	require.NoError(t, err)
	assert.Equal(t, CenterpointPath(path, 0), cpPath)

	squarePath, err := ReconstructBoxesFile(cpPath, nil)
	require.NoError(t, err)
	assert.Equal(t, SquarePath(cpPath), squarePath)

	out, err := ReadCOCO(squarePath)
	require.NoError(t, err)
	// Image 3 has no GSD and uses the file average of 0.375, 4/0.375 rounds down to 10.
	assert.Equal(t, BBox{10, 8, 8, 8}, *out.Annotations[0].BBox)
	assert.Equal(t, BBox{40, 40, 16, 16}, *out.Annotations[1].BBox)
	assert.Equal(t, BBox{100, 100, 10, 10}, *out.Annotations[2].BBox)
	assert.Equal(t, Point{14, 12}, *out.Annotations[0].Centerpoint)
}

func TestGeoPipeline(t *testing.T) {
	path := writePipelineInput(t)
	_, err := EstimateCategorySizesFile(path, SizeRuleMaxSide, true)
	require.NoError(t, err)

	// Images 1 and 2 are selected. Draws: image 1 moves +x, image 2 moves -y.
	rng := &scriptedRand{t: t, ints: []int{2, 0, 1, 2}}
	g := GeoJitter{ShiftMeters: 1, Percent: 67, FallbackGSD: f64(1)}
	cpPath, err := ConvertGeoCenterpointsFile(path, g, rng)
	require.NoError(t, err)
	assert.Equal(t, GeoCenterpointPath(path, 1, 67), cpPath)

	squarePath, err := ReconstructBoxesFile(cpPath, f64(1))
	require.NoError(t, err)

	out, err := ReadCOCO(squarePath)
	require.NoError(t, err)
	// 1 m is 2 px on image 1 and 4 px on image 2.
	assert.Equal(t, Point{16, 12}, *out.Annotations[0].ObjectCenter)
	assert.Equal(t, Point{48, 44}, *out.Annotations[1].ObjectCenter)
	assert.Equal(t, Point{105, 105}, *out.Annotations[2].ObjectCenter)
	// Image 3 uses the given fallback GSD of 1.
	assert.Equal(t, BBox{103, 103, 4, 4}, *out.Annotations[2].BBox)
}

func TestReconstructBoxesFileWithoutGSD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.json")
	require.NoError(t, WriteCOCO(path, &COCODataset{
		Images:      []COCOImage{testImage(1, nil)},
		Annotations: []COCOAnnotation{{ID: 1, ImageID: 1, CategoryID: 1, Centerpoint: pt(5, 5)}},
		Categories:  []COCOCategory{{ID: 1, Name: "car", AverageSize: f64(4)}},
	}))

	_, err := ReconstructBoxesFile(path, nil)
	assert.ErrorIs(t, err, ErrNoGSD)
}

func TestReconstructBoxesFileWithoutAnnotations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.json")
	require.NoError(t, WriteCOCO(path, &COCODataset{
		Images:     []COCOImage{testImage(1, nil)},
		Categories: []COCOCategory{{ID: 1, Name: "car", AverageSize: f64(4)}},
	}))

	squarePath, err := ReconstructBoxesFile(path, nil)
	require.NoError(t, err)

	out, err := ReadCOCO(squarePath)
	require.NoError(t, err)
	assert.Empty(t, out.Annotations)
	assert.Len(t, out.Images, 1)
}
