package cpconv

// KITTI specific functionality. KITTI only describes boxes, so point annotations are rejected.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KITTIAnnotation is a single annotation within a KITTI file.
type KITTIAnnotation struct {
	Coords [4]float64 // x1, y1, x2, y2
	Label  string
}

// KITTIAnnotatedFile defines the KITTI annotation structure for a single file.
type KITTIAnnotatedFile struct {
	Annotations []KITTIAnnotation
	FilePath    string
}

// ToKitti converts the intermediate representation to KITTI format.
func ToKitti(data AnnotatedFiles) ([]KITTIAnnotatedFile, error) {
	kittiData := make([]KITTIAnnotatedFile, 0, len(data))
	for _, fileData := range data {
		kittiFileData := KITTIAnnotatedFile{
			Annotations: make([]KITTIAnnotation, len(fileData.Annotations)),
			FilePath:    fileData.FilePath,
		}
		for i, a := range fileData.Annotations {
			if a.Shape != ShapeRect {
				return nil, fmt.Errorf("KITTI labels need boxes, %q has points", fileData.FilePath)
			}
			// KITTI labels are space separated.
			label := strings.ReplaceAll(a.Label, " ", "_")
			kittiFileData.Annotations[i] = KITTIAnnotation{Coords: a.Coords, Label: label}
		}
		kittiData = append(kittiData, kittiFileData)
	}

	return kittiData, nil
}

// WriteKitti writes data to dirPath, one file per element.
func WriteKitti(dirPath string, data []KITTIAnnotatedFile) error {
	dirInfo, err := os.Stat(dirPath)
	if err != nil || !dirInfo.IsDir() {
		return fmt.Errorf("cannot access directory %q: %v", dirPath, err)
	}

	for _, fileData := range data {
		// Use the image file name with .txt extension as label file name.
		_, baseNoExt, _, err := splitPath(fileData.FilePath)
		if err != nil {
			return err
		}
		filePath := filepath.Join(dirPath, baseNoExt+".txt")

		var buf bytes.Buffer
		for _, a := range fileData.Annotations {
			fmt.Fprintf(&buf, "%s 0.0 0 0.0 %.2f %.2f %.2f %.2f 0.0 0.0 0.0 0.0 0.0 0.0 0.0\n",
				a.Label, a.Coords[0], a.Coords[1], a.Coords[2], a.Coords[3])
		}
		if err := writeFileAtomic(filePath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("cannot write file %q: %w", filePath, err)
		}
	}

	return nil
}
