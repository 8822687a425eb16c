package cpconv

// VGG Image Annotator (VIA) specific functionality.

import (
	"math"
	"os"
	"strconv"
)

// VIAShape describes a rectangular region.
type VIAShape struct {
	Name   string `json:"name"` // "rect"
	X      int32  `json:"x"`
	Y      int32  `json:"y"`
	Width  int32  `json:"width"`
	Height int32  `json:"height"`
}

// VIAPointShape describes a point region.
type VIAPointShape struct {
	Name string `json:"name"` // "point"
	Cx   int32  `json:"cx"`
	Cy   int32  `json:"cy"`
}

// VIARegionAnnotation is a single region annotation for a particular image in a VIA file.
type VIARegionAnnotation struct {
	Attributes map[string]string `json:"region_attributes"`
	Shape      interface{}       `json:"shape_attributes"` // VIAShape or VIAPointShape.
}

// VIAAnnotatedFile defines the VIA annotation structure for a single file.
type VIAAnnotatedFile struct {
	Annotations []VIARegionAnnotation `json:"regions"`
	Attributes  map[string]string     `json:"file_attributes"`
	FilePath    string                `json:"filename"`
	Size        int64                 `json:"size"`
}

// VIAOptionsAttribute defines attributes of type "radio" or "dropdown".
type VIAOptionsAttribute struct {
	Type           string            `json:"type"` // "radio" or "dropdown"
	Description    string            `json:"description"`
	Options        map[string]string `json:"options"`
	DefaultOptions map[string]bool   `json:"default_options"`
}

// VIATextAttribute defines attributes of type "text".
type VIATextAttribute struct {
	Type         string `json:"type"` // "text"
	Description  string `json:"description"`
	DefaultValue string `json:"default_value"`
}

// VIAAttributes defines the VIA attribute metadata.
type VIAAttributes struct {
	Region map[string]interface{} `json:"region"`
	File   map[string]interface{} `json:"file"`
}

// VIAProject defines the VIA project structure.
type VIAProject struct {
	Attributes    VIAAttributes               `json:"_via_attributes"`
	ImageMetadata map[string]VIAAnnotatedFile `json:"_via_img_metadata"`
	// Must exist for VIA to load the project. Default values will be used.
	Settings struct{} `json:"_via_settings"`
}

const viaLabelAttribute = "Label" // The attribute key used for labels.

func roundInt32(v float64) int32 {
	return int32(math.Round(v))
}

// ToVIA converts the intermediate representation to VIA format. Point annotations become VIA
// point regions.
func ToVIA(data AnnotatedFiles) VIAProject {
	viaData := VIAProject{
		Attributes: VIAAttributes{
			Region: make(map[string]interface{}),
			File:   make(map[string]interface{}),
		},
		ImageMetadata: make(map[string]VIAAnnotatedFile, len(data)),
	}

	labelAttr := VIAOptionsAttribute{
		Type:           "radio",
		Options:        make(map[string]string),
		DefaultOptions: make(map[string]bool),
	}
	for _, fileData := range data {
		viaFile := VIAAnnotatedFile{
			Annotations: make([]VIARegionAnnotation, 0, len(fileData.Annotations)),
			Attributes:  make(map[string]string), // Must not be nil as that becomes JSON null.
			FilePath:    fileData.FilePath,
		}
		if info, err := os.Stat(fileData.FilePath); err == nil {
			viaFile.Size = info.Size()
		}

		for _, a := range fileData.Annotations {
			viaObject := VIARegionAnnotation{
				Attributes: map[string]string{viaLabelAttribute: a.Label},
			}
			if a.Shape == ShapePoint {
				viaObject.Shape = VIAPointShape{
					Name: "point",
					Cx:   roundInt32(a.Coords[0]),
					Cy:   roundInt32(a.Coords[1]),
				}
			} else {
				viaObject.Shape = VIAShape{
					Name:   "rect",
					X:      roundInt32(a.Coords[0]),
					Y:      roundInt32(a.Coords[1]),
					Width:  roundInt32(a.Width()),
					Height: roundInt32(a.Height()),
				}
			}

			// Add additional attributes with values that can be converted to string.
			for k, v := range a.Attributes {
				var s string
				switch v := v.(type) {
				case int:
					s = strconv.Itoa(v)
				case int64:
					s = strconv.FormatInt(v, 10)
				case float64:
					s = strconv.FormatFloat(v, 'f', -1, 64)
				case string:
					s = v
				default:
					continue
				}
				viaObject.Attributes[k] = s
				if _, ok := viaData.Attributes.Region[k]; !ok {
					viaData.Attributes.Region[k] = VIATextAttribute{Type: "text"}
				}
			}

			labelAttr.Options[a.Label] = ""
			viaFile.Annotations = append(viaFile.Annotations, viaObject)
		}
		viaData.ImageMetadata[viaFile.FilePath] = viaFile
	}
	viaData.Attributes.Region[viaLabelAttribute] = labelAttr

	return viaData
}

// WriteVIA writes the VIA project data to outFile.
func WriteVIA(outFile string, data VIAProject) error {
	return writeJSONFile(outFile, data)
}
