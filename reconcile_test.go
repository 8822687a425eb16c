package cpconv

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileCategoryIDs(t *testing.T) {
	ref := &COCODataset{Categories: []COCOCategory{
		{ID: 1, Name: "car"},
		{ID: 2, Name: "truck"},
	}}
	target := &COCODataset{
		Annotations: []COCOAnnotation{
			{ID: 1, CategoryID: 5},
			{ID: 2, CategoryID: 7},
			{ID: 3, CategoryID: 5},
		},
		Categories: []COCOCategory{
			{ID: 7, Name: "truck"},
			{ID: 5, Name: "car"},
		},
	}

	out, err := ReconcileCategoryIDs(ref, target)
	require.NoError(t, err)

	var got []int64
	for _, a := range out.Annotations {
		got = append(got, a.CategoryID)
	}
	assert.Equal(t, []int64{1, 2, 1}, got)
	if diff := cmp.Diff(ref.Categories, out.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(5), target.Annotations[0].CategoryID, "the input must not change")
}

func TestReconcileCategoryIDsFirstNameWins(t *testing.T) {
	ref := &COCODataset{Categories: []COCOCategory{
		{ID: 3, Name: "car"},
		{ID: 4, Name: "car"},
	}}
	target := &COCODataset{
		Annotations: []COCOAnnotation{{ID: 1, CategoryID: 9}},
		Categories:  []COCOCategory{{ID: 9, Name: "car"}},
	}

	out, err := ReconcileCategoryIDs(ref, target)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Annotations[0].CategoryID)
}

func TestReconcileCategoryIDsUnmatched(t *testing.T) {
	ref := &COCODataset{Categories: []COCOCategory{{ID: 1, Name: "car"}}}
	target := &COCODataset{Categories: []COCOCategory{{ID: 2, Name: "boat"}}}

	_, err := ReconcileCategoryIDs(ref, target)
	var unmatched *UnmatchedCategoryError
	require.True(t, errors.As(err, &unmatched))
	assert.Equal(t, "boat", unmatched.Name)
	assert.Equal(t, int64(2), unmatched.ID)
}

func TestReconcileCategoryIDsUnknownAnnotationCategory(t *testing.T) {
	ref := &COCODataset{Categories: []COCOCategory{{ID: 1, Name: "car"}}}
	target := &COCODataset{
		Annotations: []COCOAnnotation{{ID: 4, CategoryID: 8}},
		Categories:  []COCOCategory{{ID: 1, Name: "car"}},
	}

	_, err := ReconcileCategoryIDs(ref, target)
	var unknown *UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, int64(4), unknown.AnnotationID)
}

func TestReconcileCategoryIDsFile(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "train.json")
	targetPath := filepath.Join(dir, "val.json")
	require.NoError(t, WriteCOCO(refPath, &COCODataset{
		Categories: []COCOCategory{{ID: 1, Name: "car"}, {ID: 2, Name: "truck"}},
	}))
	require.NoError(t, WriteCOCO(targetPath, &COCODataset{
		Annotations: []COCOAnnotation{{ID: 1, CategoryID: 2, BBox: box(0, 0, 1, 1)}},
		Categories:  []COCOCategory{{ID: 2, Name: "car"}},
	}))

	require.NoError(t, ReconcileCategoryIDsFile(refPath, targetPath))

	out, err := ReadCOCO(targetPath)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Annotations[0].CategoryID)
	assert.Len(t, out.Categories, 2)
}
