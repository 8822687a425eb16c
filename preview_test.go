package cpconv

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pixel(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestRenderPreviews(t *testing.T) {
	imgDir := t.TempDir()
	outDir := t.TempDir()
	white := color.NRGBA{255, 255, 255, 255}
	for _, name := range []string{"a.png", "b.png"} {
		require.NoError(t, imaging.Save(imaging.New(60, 40, white), filepath.Join(imgDir, name)))
	}

	data := AnnotatedFiles{
		{
			FilePath: filepath.Join(imgDir, "a.png"),
			Annotations: []Annotation{
				{Coords: [4]float64{5, 5, 20, 15}, Label: "car"},
				{Coords: [4]float64{40, 20, 40, 20}, Label: "truck", Shape: ShapePoint},
			},
		},
		{FilePath: filepath.Join(imgDir, "b.png")},
	}

	n, err := RenderPreviews(data, outDir, PreviewOptions{MaxFiles: 1, Encoding: "png"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	img, err := imaging.Open(filepath.Join(outDir, "a_preview.png"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 60, 40), img.Bounds())
	assert.Equal(t, labelColor("car"), pixel(img, 5, 5))
	assert.Equal(t, labelColor("car"), pixel(img, 19, 14))
	assert.Equal(t, white, pixel(img, 12, 10), "the box is not filled")
	assert.Equal(t, labelColor("truck"), pixel(img, 40, 20))
	assert.Equal(t, labelColor("truck"), pixel(img, 44, 20))
	assert.Equal(t, white, pixel(img, 45, 20))

	_, err = imaging.Open(filepath.Join(outDir, "b_preview.png"))
	assert.Error(t, err, "only MaxFiles previews are rendered")
}

func TestRenderPreviewsScalesDown(t *testing.T) {
	imgDir := t.TempDir()
	outDir := t.TempDir()
	path := filepath.Join(imgDir, "big.png")
	require.NoError(t, imaging.Save(imaging.New(400, 200, color.White), path))

	data := AnnotatedFiles{{FilePath: path}}
	n, err := RenderPreviews(data, outDir, PreviewOptions{MaxSide: 100, Encoding: "jpg"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	img, err := imaging.Open(filepath.Join(outDir, "big_preview.jpg"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 50), img.Bounds())
}

func TestRenderPreviewsErrors(t *testing.T) {
	_, err := RenderPreviews(AnnotatedFiles{{FilePath: "a.png"}}, t.TempDir(),
		PreviewOptions{Encoding: "gif"})
	assert.Error(t, err)

	data := AnnotatedFiles{{FilePath: filepath.Join(t.TempDir(), "missing.png")}}
	n, err := RenderPreviews(data, t.TempDir(), PreviewOptions{Encoding: "png"})
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestLabelColorIsStable(t *testing.T) {
	assert.Equal(t, labelColor("car"), labelColor("car"))
	assert.Contains(t, previewPalette, labelColor("boat"))
}
