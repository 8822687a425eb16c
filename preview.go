package cpconv

// Preview rendering of annotations for visual checks of jittered centerpoints and reconstructed
// boxes.

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"log"
	"math"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// PreviewOptions configures RenderPreviews.
type PreviewOptions struct {
	MaxFiles    int    // The maximum number of previews; <= 0 renders all files.
	MaxSide     int    // The maximum length of the longer preview side; <= 0 keeps the size.
	Encoding    string // "jpg" or "png".
	JPEGQuality int
}

// previewPalette holds well distinguishable label colors.
var previewPalette = []color.NRGBA{
	{230, 25, 75, 255},
	{60, 180, 75, 255},
	{255, 225, 25, 255},
	{0, 130, 200, 255},
	{245, 130, 48, 255},
	{145, 30, 180, 255},
	{70, 240, 240, 255},
	{240, 50, 230, 255},
}

// labelColor returns a stable color for label.
func labelColor(label string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	return previewPalette[h.Sum32()%uint32(len(previewPalette))]
}

// RenderPreviews draws the annotations of up to opts.MaxFiles files onto their images and writes
// the results to outDir. Boxes are drawn as outlines, points as crosses. Returns the number of
// previews written.
func RenderPreviews(data AnnotatedFiles, outDir string, opts PreviewOptions) (int, error) {
	var fileExt string
	switch strings.ToLower(opts.Encoding) {
	case "jpg", "jpeg", "":
		fileExt = ".jpg"
	case "png":
		fileExt = ".png"
	default:
		return 0, fmt.Errorf("unsupported output encoding %q", opts.Encoding)
	}
	if opts.JPEGQuality < 1 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 90
	}

	files := data
	if opts.MaxFiles > 0 && len(files) > opts.MaxFiles {
		files = files[:opts.MaxFiles]
	}
	if len(files) == 0 {
		return 0, nil
	}
	log.Printf("Rendering %d previews", len(files))

	// Limit the number of goroutines in flight, as they load potentially large images into memory.
	numTasks := 2 * runtime.NumCPU()
	if len(files) < numTasks {
		numTasks = len(files)
	}
	workQueue := make(chan *AnnotatedFile, 2*numTasks)
	errors := make(chan error, 1)

	var mu sync.Mutex
	written := 0
	var wg sync.WaitGroup
	wg.Add(numTasks)
	for i := 0; i < numTasks; i++ {
		go func() {
			defer wg.Done()
			for f := range workQueue {
				if err := renderPreview(f, outDir, fileExt, opts); err != nil {
					select {
					case errors <- err:
					default:
					}
					continue
				}
				mu.Lock()
				written++
				mu.Unlock()
			}
		}()
	}

	for i := range files {
		workQueue <- &files[i]
	}
	close(workQueue)
	wg.Wait()

	close(errors)
	if err, ok := <-errors; ok {
		return written, err
	}
	return written, nil
}

// renderPreview renders a single preview.
func renderPreview(f *AnnotatedFile, outDir, fileExt string, opts PreviewOptions) error {
	img, err := loadImage(f.FilePath)
	if err != nil {
		return fmt.Errorf("cannot load %q: %w", f.FilePath, err)
	}

	b := img.Bounds()
	longer := b.Dx()
	if b.Dy() > longer {
		longer = b.Dy()
	}
	// Keep lines visible after downscaling.
	thickness := 1
	if opts.MaxSide > 0 && longer > opts.MaxSide {
		thickness = int(math.Ceil(float64(longer) / float64(opts.MaxSide)))
	}

	for _, a := range f.Annotations {
		c := labelColor(a.Label)
		x1, y1 := int(math.Round(a.Coords[0])), int(math.Round(a.Coords[1]))
		if a.Shape == ShapePoint {
			drawCross(img, image.Pt(x1, y1), 4*thickness, c, thickness)
			continue
		}
		x2, y2 := int(math.Round(a.Coords[2])), int(math.Round(a.Coords[3]))
		drawRect(img, image.Rect(x1, y1, x2, y2), c, thickness)
	}

	inName := filepath.Base(f.FilePath)
	outName := strings.TrimSuffix(inName, filepath.Ext(inName)) + "_preview" + fileExt
	return saveImage(filepath.Join(outDir, outName), fitImage(img, opts.MaxSide), opts.JPEGQuality)
}
