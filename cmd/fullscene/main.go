// Builds a single-category subset of a COCO annotation file and a full-scene subset with a
// comparable number of annotations from the same images.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/sensorable/cpconv"
)

var (
	annPath    string // The input annotation file.
	categoryID int64  // The category to focus on.
	seed       int64  // The random seed for the image order.
)

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr, "  -ann <file> -cat-id <id> [-seed <n>]")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	printUsageAndExit := func(msg ...interface{}) {
		log.Print(msg...)
		flag.Usage()
		os.Exit(1)
	}

	flag.StringVar(&annPath, "ann", annPath,
		"The `path` to the COCO annotations, inside an experiment directory")
	flag.Int64Var(&categoryID, "cat-id", 0, "The COCO category `id` to focus on")
	flag.Int64Var(&seed, "seed", 0, "The random `seed` (zero seeds from the clock)")
	flag.Parse()

	if annPath == "" {
		printUsageAndExit("Missing -ann annotation path")
	}
	var err error
	if annPath, err = filepath.Abs(annPath); err != nil {
		printUsageAndExit("Invalid annotation path: ", err)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
}

func main() {
	full, err := cpconv.ReadCOCO(annPath)
	if err != nil {
		log.Fatal("Failed to read the annotations: ", err)
	}

	log.Print("Generating single category dataset")
	single, err := cpconv.SingleCategory(full, categoryID)
	if err != nil {
		log.Fatal("Failed to build the single category dataset: ", err)
	}
	singlePath := cpconv.SingleCategoryPath(annPath, single.Categories[0].Name)

	log.Print("Generating comparable full scene dataset, random seed ", seed)
	fullScene, report, err := cpconv.FullScene(full, single, rand.New(rand.NewSource(seed)))
	if err != nil {
		log.Fatal("Failed to build the full scene dataset: ", err)
	}
	fullScenePath := cpconv.FullScenePath(singlePath)

	for path, d := range map[string]*cpconv.COCODataset{singlePath: single, fullScenePath: fullScene} {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			log.Fatal(err)
		}
		if err := cpconv.WriteCOCO(path, d); err != nil {
			log.Fatal("Failed to write the dataset: ", err)
		}
		log.Printf("Wrote %d images and %d annotations to %s", len(d.Images),
			len(d.Annotations), path)
	}

	fmt.Printf("Annotations in the single class dataset: %d\n", report.SingleAnnotations)
	fmt.Printf("Annotations in the full scene comparison dataset: %d\n",
		report.FullSceneAnnotations)
	fmt.Printf("Images in the single class dataset: %d\n", report.SingleImages)
	fmt.Printf("Images in the full scene comparison dataset: %d\n", report.FullSceneImages)
}
