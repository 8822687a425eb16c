package cpconv

// Output path conventions. Each stage writes next to its input, with a suffix describing the
// transformation in place of the file extension.

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// derivePath replaces the extension of the file name in path by suffix.
func derivePath(path, suffix string) string {
	dir, file := filepath.Split(path)
	file = strings.TrimSuffix(file, filepath.Ext(file))
	return dir + file + suffix
}

// CenterpointPath is the output path of the pixel jitter conversion of path.
func CenterpointPath(path string, maxShift int) string {
	return derivePath(path, fmt.Sprintf("_cp_%d.json", maxShift))
}

// GeoCenterpointPath is the output path of the GSD aware jitter conversion of path.
func GeoCenterpointPath(path string, shiftMeters float64, percent int) string {
	return derivePath(path, fmt.Sprintf("_cp_%s_meters_%d_percent.json",
		strconv.FormatFloat(shiftMeters, 'f', -1, 64), percent))
}

// SquarePath is the output path of the box reconstruction of path.
func SquarePath(path string) string {
	return derivePath(path, "_square.json")
}

// experimentName returns the name used for the category in experiment directory names.
func experimentName(categoryName string) string {
	return strings.ReplaceAll(categoryName, " ", "-")
}

// SingleCategoryPath is the output path of the single-category subset of the annotation file at
// path. The subset goes into a sibling of the experiment directory containing path, named after
// the category and the experiment: <root>/<category>_<experiment>/<file>.
func SingleCategoryPath(path, categoryName string) string {
	expDir, file := filepath.Split(filepath.Clean(path))
	expDir = filepath.Clean(expDir)
	root, exp := filepath.Split(expDir)
	return filepath.Join(root, experimentName(categoryName)+"_"+exp, file)
}

// FullScenePath is the output path of the full-scene subset that is comparable to the
// single-category subset at singlePath: <root>/Full-Scene_<category>_<experiment>/<file>.
func FullScenePath(singlePath string) string {
	expDir, file := filepath.Split(filepath.Clean(singlePath))
	expDir = filepath.Clean(expDir)
	root, exp := filepath.Split(expDir)
	return filepath.Join(root, "Full-Scene_"+exp, file)
}
