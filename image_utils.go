package cpconv

import (
	"image"
	"image/color"
	"os"

	"github.com/disintegration/imaging"
)

// decodeImageConfig opens the file at path and returns the results of image.DecodeConfig.
func decodeImageConfig(path string) (config image.Config, format string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer file.Close()

	return image.DecodeConfig(file)
}

// loadImage reads and decodes the image at path into an editable copy.
func loadImage(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	return imaging.Clone(img), nil
}

// saveImage saves the image to path, encoding it according to the file extension of path.
func saveImage(path string, img image.Image, jpegQuality int) error {
	return imaging.Save(img, path, imaging.JPEGQuality(jpegQuality))
}

// fitImage scales img down so that its longer side is at most maxSide. Smaller images and a
// maxSide <= 0 leave img unchanged.
func fitImage(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if maxSide <= 0 || (b.Dx() <= maxSide && b.Dy() <= maxSide) {
		return img
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Box)
}

// drawRect draws the outline of r onto img with the given line thickness. Parts outside the image
// are clipped.
func drawRect(img *image.NRGBA, r image.Rectangle, c color.Color, thickness int) {
	r = r.Canon()
	t := thickness
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// drawCross draws a cross of the given arm length centered on p.
func drawCross(img *image.NRGBA, p image.Point, arm int, c color.Color, thickness int) {
	half := thickness / 2
	fillRect(img, image.Rect(p.X-arm, p.Y-half, p.X+arm+1, p.Y-half+thickness), c)
	fillRect(img, image.Rect(p.X-half, p.Y-arm, p.X-half+thickness, p.Y+arm+1), c)
}

// fillRect fills the part of r inside the image.
func fillRect(img *image.NRGBA, r image.Rectangle, c color.Color) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}
