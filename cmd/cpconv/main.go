// Converts geospatial COCO bounding box annotations to jittered centerpoints and back to square
// boxes sized by the estimated physical object size of each category.
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
	trainPath string // The train annotation file; category sizes are estimated from it.
	valPath   string // The optional val annotation file.
	reconcile bool   // Make the val category IDs match the train category IDs first.

	cfg *cpconv.RunConfig // The effective configuration.
)

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr, "  pixel jitter:\t-train <file> [-val <file>] -mode pixels -max-shift <px>")
		_, _ = fmt.Fprintln(os.Stderr, "  meter jitter:\t-train <file> [-val <file>] -mode meters -shift-meters <m>"+
			" [-shift-percent <0-100>]")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	printUsageAndExit := func(msg ...interface{}) {
		log.Print(msg...)
		flag.Usage()
		os.Exit(1)
	}

	flag.StringVar(&trainPath, "train", trainPath, "The `path` to the COCO train annotations")
	flag.StringVar(&valPath, "val", valPath, "The `path` to the COCO val annotations (optional)")
	flag.BoolVar(&reconcile, "reconcile", reconcile,
		"Make the val category IDs match the train category IDs (by name) before processing")
	configPath := flag.String("config", "",
		"The `path` to a JSON run configuration; flags given on the command line take precedence")

	mode := flag.String("mode", cpconv.ModePixels, "The jitter `mode` {pixels, meters}")
	maxShift := flag.Int("max-shift", 5, "The maximum centerpoint shift in `pixels` (pixels mode)")
	shiftMeters := flag.Float64("shift-meters", 5, "The centerpoint shift in `meters` (meters mode)")
	shiftPercent := flag.Int("shift-percent", 100,
		"The `percentage` of images whose points are shifted (meters mode)")
	randomAmount := flag.Bool("random-amount", true,
		"Draw the per-image pixel shift from [1, shift-meters/GSD] (meters mode)")
	avgGSD := flag.Float64("avg-gsd", 0,
		"The average image GSD in `meters` per pixel used for images without GSD"+
			" (zero computes it from the train annotations)")
	sizeRule := flag.String("size-rule", "max",
		"The box side measured for size estimation {max, width}")
	seed := flag.Int64("seed", 0, "The random `seed` (zero seeds from the clock)")

	flag.Parse()

	if *configPath != "" {
		var err error
		if cfg, err = cpconv.LoadRunConfig(*configPath); err != nil {
			log.Fatal("Failed to load the configuration: ", err)
		}
	} else {
		cfg = &cpconv.RunConfig{}
	}

	// Apply the flags that were set explicitly.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = mode
		case "max-shift":
			cfg.MaxShift = maxShift
		case "shift-meters":
			cfg.ShiftMeters = shiftMeters
		case "shift-percent":
			cfg.ShiftPercent = shiftPercent
		case "random-amount":
			cfg.RandomAmount = randomAmount
		case "avg-gsd":
			if *avgGSD != 0 {
				cfg.AverageGSD = avgGSD
			}
		case "size-rule":
			cfg.SizeRule = sizeRule
		case "seed":
			if *seed != 0 {
				cfg.Seed = seed
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		printUsageAndExit("Invalid arguments: ", err)
	}

	if trainPath == "" {
		printUsageAndExit("Missing -train annotation path")
	}
	trainPath = filepath.Clean(trainPath)
	if valPath != "" {
		valPath = filepath.Clean(valPath)
		if valPath == trainPath {
			printUsageAndExit("The train and val paths cannot be identical")
		}
	}
	if reconcile && valPath == "" {
		printUsageAndExit("Argument -reconcile requires -val")
	}
}

func main() {
	var matched []string
	if valPath != "" {
		matched = append(matched, valPath)
	}

	if reconcile {
		if err := cpconv.ReconcileCategoryIDsFile(trainPath, valPath); err != nil {
			log.Fatal("Category reconciliation failed: ", err)
		}
	}

	// Add size estimates in meters to the categories of all files.
	estimates, err := cpconv.EstimateCategorySizesFile(trainPath, cfg.GetSizeRule(), true,
		matched...)
	if err != nil {
		log.Fatal("Category size estimation failed: ", err)
	}
	fmt.Println("Estimated category sizes:")
	for _, e := range estimates {
		if e.AverageSize == nil {
			fmt.Printf("%s: no estimate available\n", e.Name)
			continue
		}
		fmt.Printf("%s: %.1f meters\n", e.Name, *e.AverageSize)
	}

	avgGSD := cfg.AverageGSD
	if avgGSD == nil {
		avg, err := cpconv.AverageGSDFile(trainPath)
		if err != nil {
			log.Fatal("Cannot compute the average image GSD: ", err)
		}
		avgGSD = &avg
	}
	log.Printf("Average image GSD: %v", *avgGSD)

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	log.Print("Random seed: ", seed)
	rng := rand.New(rand.NewSource(seed))

	for _, path := range append([]string{trainPath}, matched...) {
		var cpPath string
		switch cfg.GetMode() {
		case cpconv.ModeMeters:
			g := cpconv.GeoJitter{
				ShiftMeters:  cfg.GetShiftMeters(),
				Percent:      cfg.GetShiftPercent(),
				RandomAmount: cfg.GetRandomAmount(),
				FallbackGSD:  avgGSD,
			}
			cpPath, err = cpconv.ConvertGeoCenterpointsFile(path, g, rng)
		default:
			cpPath, err = cpconv.ConvertCenterpointsFile(path, cfg.GetMaxShift(), rng)
		}
		if err != nil {
			log.Fatal("Centerpoint conversion failed: ", err)
		}

		squarePath, err := cpconv.ReconstructBoxesFile(cpPath, avgGSD)
		if err != nil {
			log.Fatal("Box reconstruction failed: ", err)
		}
		fmt.Printf("%s -> %s -> %s\n", path, cpPath, squarePath)
	}
}
