package cpconv

// Sloth specific functionality.

// SlothAnnotation is a single annotation within a Sloth file. Points carry no size.
type SlothAnnotation struct {
	Class  string  `json:"class,omitempty"`
	Type   string  `json:"type,omitempty"` // slothRect or slothPoint
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// SlothAnnotatedFile defines the Sloth annotation structure for a single file.
type SlothAnnotatedFile struct {
	Annotations []SlothAnnotation `json:"annotations"`
	Class       string            `json:"class,omitempty"`
	FilePath    string            `json:"filename,omitempty"`
}

// Sloth annotation types.
const (
	slothRect  = "rect"
	slothPoint = "point"
	slothImage = "image" // The class of file entries.
)

func toSlothAnnotation(a Annotation) SlothAnnotation {
	if a.Shape == ShapePoint {
		return SlothAnnotation{Class: a.Label, Type: slothPoint, X: a.Coords[0], Y: a.Coords[1]}
	}
	return SlothAnnotation{
		Class:  a.Label,
		Type:   slothRect,
		X:      a.Coords[0],
		Y:      a.Coords[1],
		Width:  a.Width(),
		Height: a.Height(),
	}
}

// ToSloth converts the intermediate representation to Sloth format, one entry per file.
func ToSloth(data AnnotatedFiles) []SlothAnnotatedFile {
	out := make([]SlothAnnotatedFile, len(data))
	for i, f := range data {
		anns := make([]SlothAnnotation, 0, len(f.Annotations))
		for _, a := range f.Annotations {
			anns = append(anns, toSlothAnnotation(a))
		}
		out[i] = SlothAnnotatedFile{Annotations: anns, Class: slothImage, FilePath: f.FilePath}
	}
	return out
}

// WriteSloth writes the Sloth annotations to outFile.
func WriteSloth(outFile string, data []SlothAnnotatedFile) error {
	return writeJSONFile(outFile, data)
}
