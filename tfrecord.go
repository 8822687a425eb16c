package cpconv

// TFRecord object detection specific functionality.

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/ryszard/tfutils/go/example"
	"github.com/ryszard/tfutils/go/tfrecord"
	"github.com/ryszard/tfutils/proto/tensorflow/core/example" // package tensorflow
)

// TFFeatureMap maps feature names to their values. Values must be convertible to
// tensorflow.Feature.
type TFFeatureMap map[string]interface{}

// toTFRecord converts the intermediate representation for a single file to the TFRecord feature
// map. Box coordinates are normalised by the image size, which is read from the image file if the
// annotations do not carry it.
func toTFRecord(fileData AnnotatedFile) (TFFeatureMap, error) {
	width, height := fileData.Width, fileData.Height
	cfg, format, err := decodeImageConfig(fileData.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to decode the image metadata: %w", err)
	}
	if width <= 0 || height <= 0 {
		width, height = cfg.Width, cfg.Height
	}

	imgData, err := os.ReadFile(fileData.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read the image: %w", err)
	}

	// Prepare the feature map for the per file data.
	f := make(TFFeatureMap, 16)
	f["image/height"] = height
	f["image/width"] = width
	f["image/filename"] = filepath.Base(fileData.FilePath)
	f["image/source_id"] = fileData.FilePath
	f["image/encoded"] = imgData
	f["image/format"] = format

	// Prepare the per label data.
	numLabels := len(fileData.Annotations)
	xmins := make([]float32, numLabels)
	ymins := make([]float32, numLabels)
	xmaxs := make([]float32, numLabels)
	ymaxs := make([]float32, numLabels)
	classes := make([]string, numLabels)
	classIDs := make([]int64, numLabels)
	for i, a := range fileData.Annotations {
		if a.Shape != ShapeRect {
			return nil, fmt.Errorf("TFRecord object detection needs boxes, got points")
		}
		id, ok := a.Attributes[CategoryID].(int64)
		if !ok {
			return nil, fmt.Errorf("annotation %v has no category ID", a.Attributes[AnnotationID])
		}
		xmins[i] = float32(a.Coords[0]) / float32(width)
		ymins[i] = float32(a.Coords[1]) / float32(height)
		xmaxs[i] = float32(a.Coords[2]) / float32(width)
		ymaxs[i] = float32(a.Coords[3]) / float32(height)
		classes[i] = a.Label
		classIDs[i] = id
	}
	f["image/object/bbox/xmin"] = xmins
	f["image/object/bbox/ymin"] = ymins
	f["image/object/bbox/xmax"] = xmaxs
	f["image/object/bbox/ymax"] = ymaxs
	f["image/object/class/text"] = classes
	f["image/object/class/label"] = classIDs

	return f, nil
}

// WriteTFRecord does a streaming conversion, serialisation and file write for the annotation data
// to one or more TFRecord files stored under recordFilePath (with suffixes added when numShards>1).
//
// The COCO category IDs are used as class labels; the label map for categories is written to
// labelMapPath in prototxt format.
func WriteTFRecord(recordFilePath, labelMapPath string, data AnnotatedFiles,
	categories []COCOCategory, numShards int) (err error) {

	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("conversion to TensorFlow Example failed: %v", e)
		}
	}()

	if numShards <= 0 {
		numShards = 1
	}
	if len(data) == 0 {
		return fmt.Errorf("no files to write to %q", recordFilePath)
	}

	fmtShardSuffix := func(idx int) string {
		return fmt.Sprintf("-%05d-of-%05d", idx, numShards)
	}

	var shardFile *os.File
	defer func() {
		if shardFile != nil {
			closeWithErrCheck(shardFile, &err)
		}
	}()
	shardSize := int(math.Ceil(float64(len(data)) / float64(numShards)))
	shardIdx := -1
	written := 0

	// Convert and serialise one data element at a time.
	for i, fileData := range data {
		// Check if a new shard file needs to be opened for writing.
		if i%shardSize == 0 {
			shardIdx++

			if shardFile != nil {
				if err := shardFile.Close(); err != nil {
					return err
				}
				shardFile = nil
			}

			shardPath := recordFilePath
			if numShards > 1 {
				shardPath += fmtShardSuffix(shardIdx)
			}
			f, err := os.Create(shardPath)
			if err != nil {
				return fmt.Errorf("failed to create shard at %q: %w", shardPath, err)
			}
			shardFile = f
		}

		features, err := toTFRecord(fileData)
		if err != nil {
			log.Printf("Failed to convert %q: %v", fileData.FilePath, err)
			continue
		}
		if err := writeTFRecordExample(shardFile, example.New(features)); err != nil {
			return fmt.Errorf("failed to write example for %q: %w", fileData.FilePath, err)
		}
		written++
	}
	log.Printf("Wrote %d of %d examples to %d shard(s)", written, len(data), shardIdx+1)

	return writeTFRecordLabelMap(labelMapPath, categories)
}

// writeTFRecordExample serialises the example and writes it as a TFRecord to w.
func writeTFRecordExample(w io.Writer, e *tensorflow.Example) error {
	enc, err := proto.Marshal(e)
	if err != nil {
		return err
	}

	return tfrecord.Write(w, enc)
}

// formatTFRecordLabelMap returns the categories as a StringIntLabelMap in prototxt format, sorted
// by ID. IDs must be positive, as 0 is reserved for the background class.
func formatTFRecordLabelMap(categories []COCOCategory) ([]byte, error) {
	sorted := make([]COCOCategory, len(categories))
	copy(sorted, categories)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var buf bytes.Buffer
	for _, c := range sorted {
		if c.ID <= 0 || strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("invalid label map entry: %s: %d", c.Name, c.ID)
		}
		fmt.Fprintf(&buf, "item {\n  name: %q\n  id: %d\n}\n", c.Name, c.ID)
	}
	return buf.Bytes(), nil
}

// writeTFRecordLabelMap writes the label map for categories to path.
func writeTFRecordLabelMap(path string, categories []COCOCategory) error {
	text, err := formatTFRecordLabelMap(categories)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, text, 0644); err != nil {
		return fmt.Errorf("failed to write the label map %q: %w", path, err)
	}
	return nil
}
