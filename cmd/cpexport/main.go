// Exports COCO boxes or centerpoints to VIA, Sloth, KITTI and TFRecord label formats and renders
// annotation previews.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sensorable/cpconv"
)

var (
	convertTo format // The target format.

	labelPath                string       // The input COCO annotation file.
	imageDirPath             string       // The directory of the annotated images.
	labelOutFileOrDirPath    string       // The output label dir or file path, depending on the format.
	tfRecordLabelMapFilePath string       // The TFRecord label map file.
	numShardFiles            int          // The number of shard files to create.
	geometry                 cpconv.Shape // Export boxes or centerpoints.
	labelMappings            string       // A comma-separated string of label mappings.

	previewOutDirPath string                // The output directory for previews.
	previewOpts       cpconv.PreviewOptions // Preview rendering options.
)

type format int

// The known label formats.
const (
	Unknown format = iota // If an unknown format is specified.
	Kitti
	Sloth
	TFRecord
	VIA // VGG Image Annotator
)

func formatFrom(s string) format {
	switch s {
	case "kitti":
		return Kitti
	case "sloth":
		return Sloth
	case "tfrecord":
		return TFRecord
	case "via":
		return VIA
	}
	return Unknown
}

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr, "  kitti output options:\t\t-labels-out <dir>")
		_, _ = fmt.Fprintln(os.Stderr, "  sloth output options:\t\t-labels-out <file>")
		_, _ = fmt.Fprintln(os.Stderr, "  tfrecord output options:\t-labels-out <file>"+
			" -tfrecord-label-map-file [-num-shards]")
		_, _ = fmt.Fprintln(os.Stderr, "  via output options:\t\t-labels-out <file>")
		_, _ = fmt.Fprintln(os.Stderr, "  preview options:\t\t-preview-out <dir> [-preview-count]")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	printUsageAndExit := func(msg ...interface{}) {
		log.Print(msg...)
		flag.Usage()
		os.Exit(1)
	}

	to := flag.String("to", "", "The target `format` {kitti, sloth, tfrecord, via}; may be empty"+
		" when only rendering previews")
	flag.StringVar(&labelPath, "labels", labelPath, "The `path` to the COCO annotation file")
	flag.StringVar(&imageDirPath, "images", imageDirPath,
		"The `path` to the image directory (required for tfrecord and previews)")
	flag.StringVar(&labelOutFileOrDirPath, "labels-out", labelOutFileOrDirPath,
		"The `path` to the label output file (sloth, tfrecord, via) or directory (kitti)")
	flag.StringVar(&tfRecordLabelMapFilePath, "tfrecord-label-map-file", tfRecordLabelMapFilePath,
		"The TFRecord label map file `path`")
	flag.IntVar(&numShardFiles, "num-shards", 1,
		"The number of shard files to create (tfrecord only)")
	geom := flag.String("geometry", "bbox",
		"The annotation geometry to export {bbox, center}; center is not supported by kitti and"+
			" tfrecord")
	flag.StringVar(&labelMappings, "map-labels", labelMappings,
		"Comma-separated list of old=new label (sub-)string replacements")

	flag.StringVar(&previewOutDirPath, "preview-out", previewOutDirPath,
		"The `path` to the preview output directory (no previews if empty)")
	flag.IntVar(&previewOpts.MaxFiles, "preview-count", 20,
		"The maximum number of previews (zero renders all)")
	flag.IntVar(&previewOpts.MaxSide, "preview-size", 1024,
		"The maximum `length` of the longer preview side (zero keeps the image size)")
	flag.StringVar(&previewOpts.Encoding, "preview-enc", "jpg",
		"The `encoding` for previews {jpg, png}")
	flag.IntVar(&previewOpts.JPEGQuality, "jpeg-quality", 90,
		"The quality to use when encoding JPEGs [1, 100]")

	flag.Parse()

	var err error
	if geometry, err = cpconv.ParseShape(*geom); err != nil {
		printUsageAndExit(err)
	}

	if *to != "" {
		if convertTo = formatFrom(*to); convertTo == Unknown {
			printUsageAndExit("Unsupported output format")
		}
		if labelOutFileOrDirPath == "" {
			printUsageAndExit("Missing label output path argument")
		}
		if (convertTo == Kitti || convertTo == TFRecord) && geometry != cpconv.ShapeRect {
			printUsageAndExit("The output format only supports -geometry bbox")
		}
		if convertTo == TFRecord && tfRecordLabelMapFilePath == "" {
			printUsageAndExit("Missing -tfrecord-label-map-file argument")
		}
	} else if previewOutDirPath == "" {
		printUsageAndExit("Nothing to do: set -to or -preview-out")
	}

	if labelPath == "" {
		printUsageAndExit("Missing -labels input path")
	}
	if (convertTo == TFRecord || previewOutDirPath != "") && imageDirPath == "" {
		printUsageAndExit("Missing -images directory")
	}

	labelPath = filepath.Clean(labelPath)
	if labelOutFileOrDirPath != "" {
		labelOutFileOrDirPath = filepath.Clean(labelOutFileOrDirPath)
		if labelOutFileOrDirPath == labelPath {
			printUsageAndExit("The label input and output paths cannot be identical")
		}
	}
}

func main() {
	d, err := cpconv.ReadCOCO(labelPath)
	if err != nil {
		log.Fatal("Failed to parse the input: ", err)
	}

	data := cpconv.FromCOCO(d, imageDirPath, geometry)
	if labelMappings != "" {
		if err := data.MapLabels(strings.Split(labelMappings, ",")); err != nil {
			log.Fatal("Failed to map labels: ", err)
		}
	}

	switch convertTo {
	case Kitti:
		var kittiData []cpconv.KITTIAnnotatedFile
		if kittiData, err = cpconv.ToKitti(data); err == nil {
			err = cpconv.WriteKitti(labelOutFileOrDirPath, kittiData)
		}
	case Sloth:
		err = cpconv.WriteSloth(labelOutFileOrDirPath, cpconv.ToSloth(data))
	case TFRecord:
		err = cpconv.WriteTFRecord(labelOutFileOrDirPath, tfRecordLabelMapFilePath, data,
			d.Categories, numShardFiles)
	case VIA:
		err = cpconv.WriteVIA(labelOutFileOrDirPath, cpconv.ToVIA(data))
	}
	if err != nil {
		log.Fatal("Conversion failed: ", err)
	}
	if convertTo != Unknown {
		log.Printf("Successfully wrote labels for %d files to %s", len(data), labelOutFileOrDirPath)
	}

	if previewOutDirPath != "" {
		if err := os.MkdirAll(previewOutDirPath, 0755); err != nil {
			log.Fatal(err)
		}
		n, err := cpconv.RenderPreviews(data, previewOutDirPath, previewOpts)
		if err != nil {
			log.Fatal("Preview rendering failed: ", err)
		}
		log.Printf("Wrote %d previews to %s", n, previewOutDirPath)
	}
}
