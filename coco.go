package cpconv

// COCO specific functionality.

import (
	"encoding/json"
	"fmt"
	"os"
)

// BBox is an axis-aligned bounding box given as x, y, width, height in pixels, with x, y being
// the top-left corner.
type BBox [4]float64

// Width is the box width.
func (b BBox) Width() float64 {
	return b[2]
}

// Height is the box height.
func (b BBox) Height() float64 {
	return b[3]
}

// Point is an x, y position in pixels.
type Point [2]float64

// AcquisitionData holds the sensor metadata of a COCO image.
type AcquisitionData struct {
	// GSD holds the ground sample distance in meters per pixel as its first element. The element
	// may be null.
	GSD   []*float64                 `json:"GSD"`
	Extra map[string]json.RawMessage `json:"-"`
}

// COCOImage is a single entry of the images section.
type COCOImage struct {
	ID              int64                      `json:"id"`
	FileName        string                     `json:"file_name,omitempty"`
	Width           int                        `json:"width,omitempty"`
	Height          int                        `json:"height,omitempty"`
	AcquisitionData *AcquisitionData           `json:"acquisition_data,omitempty"`
	Extra           map[string]json.RawMessage `json:"-"`
}

// COCOAnnotation is a single object annotation.
//
// Centerpoint is written by the pixel jitter conversion and ObjectCenter by the GSD aware one.
type COCOAnnotation struct {
	ID           int64                      `json:"id"`
	ImageID      int64                      `json:"image_id"`
	CategoryID   int64                      `json:"category_id"`
	BBox         *BBox                      `json:"bbox,omitempty"`
	Centerpoint  *Point                     `json:"centerpoint,omitempty"`
	ObjectCenter *Point                     `json:"object_center,omitempty"`
	Extra        map[string]json.RawMessage `json:"-"`
}

// Center returns the centerpoint, falling back to the object center. The second return value is
// false if the annotation has neither.
func (a COCOAnnotation) Center() (Point, bool) {
	switch {
	case a.Centerpoint != nil:
		return *a.Centerpoint, true
	case a.ObjectCenter != nil:
		return *a.ObjectCenter, true
	}
	return Point{}, false
}

// COCOCategory is an object category. AverageSize is the estimated physical object size in
// meters and is nil until estimated.
type COCOCategory struct {
	ID          int64                      `json:"id"`
	Name        string                     `json:"name"`
	AverageSize *float64                   `json:"average_size,omitempty"`
	Extra       map[string]json.RawMessage `json:"-"`
}

// COCODataset is a COCO style annotation file. Top-level keys other than the three record
// sections are kept in Extra and written back unchanged.
type COCODataset struct {
	Images      []COCOImage                `json:"images"`
	Annotations []COCOAnnotation           `json:"annotations"`
	Categories  []COCOCategory             `json:"categories"`
	Extra       map[string]json.RawMessage `json:"-"`
}

// Clone returns a copy of d with its own record slices. Nested values such as Extra maps and
// geometry pointers are shared; transformations replace them instead of modifying them.
func (d *COCODataset) Clone() *COCODataset {
	c := &COCODataset{
		Images:      make([]COCOImage, len(d.Images)),
		Annotations: make([]COCOAnnotation, len(d.Annotations)),
		Categories:  make([]COCOCategory, len(d.Categories)),
		Extra:       d.Extra,
	}
	copy(c.Images, d.Images)
	copy(c.Annotations, d.Annotations)
	copy(c.Categories, d.Categories)
	return c
}

// category returns the category with the given ID.
func (d *COCODataset) category(id int64) (COCOCategory, bool) {
	for _, c := range d.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return COCOCategory{}, false
}

// annotationsByImage maps image IDs to the indices of their annotations in d.Annotations.
func (d *COCODataset) annotationsByImage() map[int64][]int {
	m := make(map[int64][]int, len(d.Images))
	for i, a := range d.Annotations {
		m[a.ImageID] = append(m[a.ImageID], i)
	}
	return m
}

// ReadCOCO reads and parses the COCO annotation file at path.
func ReadCOCO(path string) (*COCODataset, error) {
	enc, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var d COCODataset
	if err := json.Unmarshal(enc, &d); err != nil {
		return nil, fmt.Errorf("failed to parse COCO input from %q: %w", path, err)
	}
	return &d, nil
}

// WriteCOCO replaces the file at path with the encoded dataset. The previous file, if any, stays
// intact unless the new content was written completely.
func WriteCOCO(path string, d *COCODataset) error {
	enc, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode COCO output for %q: %w", path, err)
	}
	if err := writeFileAtomic(path, enc, 0644); err != nil {
		return fmt.Errorf("cannot write file %q: %w", path, err)
	}
	return nil
}

// writeCOCOFiles writes datasets[i] to paths[i]. Either all files are replaced or none is.
func writeCOCOFiles(paths []string, datasets []*COCODataset) error {
	encs := make([][]byte, len(datasets))
	for i, d := range datasets {
		enc, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("failed to encode COCO output for %q: %w", paths[i], err)
		}
		encs[i] = enc
	}
	if err := writeFilesAtomic(paths, encs, 0644); err != nil {
		return fmt.Errorf("cannot write files %q: %w", paths, err)
	}
	return nil
}

var (
	datasetKeys     = []string{"images", "annotations", "categories"}
	imageKeys       = []string{"id", "file_name", "width", "height", "acquisition_data"}
	acquisitionKeys = []string{"GSD"}
	annotationKeys  = []string{"id", "image_id", "category_id", "bbox", "centerpoint", "object_center"}
	categoryKeys    = []string{"id", "name", "average_size"}
)

// UnmarshalJSON implements json.Unmarshaler.
func (d *COCODataset) UnmarshalJSON(data []byte) error {
	type plain COCODataset
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, datasetKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*d = COCODataset(p)
	return nil
}

// MarshalJSON implements json.Marshaler. Empty sections are written as empty arrays.
func (d COCODataset) MarshalJSON() ([]byte, error) {
	type plain COCODataset
	p := plain(d)
	if p.Images == nil {
		p.Images = []COCOImage{}
	}
	if p.Annotations == nil {
		p.Annotations = []COCOAnnotation{}
	}
	if p.Categories == nil {
		p.Categories = []COCOCategory{}
	}
	return marshalWithExtra(p, d.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (img *COCOImage) UnmarshalJSON(data []byte) error {
	type plain COCOImage
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, imageKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*img = COCOImage(p)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (img COCOImage) MarshalJSON() ([]byte, error) {
	type plain COCOImage
	return marshalWithExtra(plain(img), img.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (ad *AcquisitionData) UnmarshalJSON(data []byte) error {
	type plain AcquisitionData
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, acquisitionKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*ad = AcquisitionData(p)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ad AcquisitionData) MarshalJSON() ([]byte, error) {
	type plain AcquisitionData
	return marshalWithExtra(plain(ad), ad.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *COCOAnnotation) UnmarshalJSON(data []byte) error {
	type plain COCOAnnotation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, annotationKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*a = COCOAnnotation(p)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (a COCOAnnotation) MarshalJSON() ([]byte, error) {
	type plain COCOAnnotation
	return marshalWithExtra(plain(a), a.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *COCOCategory) UnmarshalJSON(data []byte) error {
	type plain COCOCategory
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, categoryKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*c = COCOCategory(p)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c COCOCategory) MarshalJSON() ([]byte, error) {
	type plain COCOCategory
	return marshalWithExtra(plain(c), c.Extra)
}

// splitExtra returns all members of the JSON object in data whose keys are not listed in known.
func splitExtra(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// marshalWithExtra encodes v, which must encode to a JSON object, and merges the extra members
// into it. Members of v take precedence.
func marshalWithExtra(v interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	enc, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return enc, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(enc, &merged); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = raw
		}
	}
	return json.Marshal(merged)
}
