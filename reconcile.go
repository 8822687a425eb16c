package cpconv

import (
	"fmt"
	"log"
)

// ReconcileCategoryIDs returns a copy of target whose category IDs match those of ref.
//
// Categories are matched by name; the first reference category with a given name wins. Every
// target annotation is remapped, and the target category list is replaced by the reference list
// as is. Returns an *UnmatchedCategoryError if a target category name is not found in ref.
func ReconcileCategoryIDs(ref, target *COCODataset) (*COCODataset, error) {
	refIDs := make(map[string]int64, len(ref.Categories))
	for _, c := range ref.Categories {
		if _, ok := refIDs[c.Name]; !ok {
			refIDs[c.Name] = c.ID
		}
	}

	idMap := make(map[int64]int64, len(target.Categories))
	for _, c := range target.Categories {
		id, ok := refIDs[c.Name]
		if !ok {
			return nil, &UnmatchedCategoryError{ID: c.ID, Name: c.Name}
		}
		idMap[c.ID] = id
	}

	out := target.Clone()
	changed := 0
	for i := range out.Annotations {
		a := &out.Annotations[i]
		id, ok := idMap[a.CategoryID]
		if !ok {
			return nil, &UnknownCategoryError{AnnotationID: a.ID, CategoryID: a.CategoryID}
		}
		if id != a.CategoryID {
			changed++
		}
		a.CategoryID = id
	}

	out.Categories = make([]COCOCategory, len(ref.Categories))
	copy(out.Categories, ref.Categories)

	log.Printf("The category reconciliation changed %d annotations", changed)
	return out, nil
}

// ReconcileCategoryIDsFile makes the category IDs of the COCO file at targetPath match those of
// the file at refPath. The target file is replaced.
func ReconcileCategoryIDsFile(refPath, targetPath string) error {
	ref, err := ReadCOCO(refPath)
	if err != nil {
		return err
	}
	target, err := ReadCOCO(targetPath)
	if err != nil {
		return err
	}

	out, err := ReconcileCategoryIDs(ref, target)
	if err != nil {
		return fmt.Errorf("cannot reconcile %q with %q: %w", targetPath, refPath, err)
	}
	return WriteCOCO(targetPath, out)
}
