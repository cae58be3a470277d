package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"lungseg/internal/models"
	"lungseg/pkg/config"
	"lungseg/pkg/nifti"
	"lungseg/pkg/segmentation"
	"lungseg/pkg/visualization"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Path to a chest CT scan (.nii or .nii.gz)")
	sliceIndex := flag.Int("slice", -1, "Axial slice index to segment (default: middle slice)")
	outputDir := flag.String("output", "results", "Directory for rendered images")
	configPath := flag.String("config", "lungseg.yaml", "Path to YAML configuration file")
	threshold := flag.Int("threshold", 0, "Air/tissue intensity cutoff, 30-90 (overrides config)")
	jumpSize := flag.Int("jump", 0, "Maximum bridgeable tissue gap in pixels, 11-24 (overrides config)")
	numCores := flag.Int("cores", 0, "Number of CPU cores for the row passes (overrides config)")
	allSlices := flag.Bool("all", false, "Segment every slice in the volume and print a per-slice area table")
	flag.Parse()

	// Validate inputs
	if *inputPath == "" {
		flag.Usage()
		log.Fatal("missing required -input flag")
	}

	// Load configuration, then let explicit flags win over file values
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *threshold != 0 {
		cfg.Segmentation.Threshold = *threshold
	}
	if *jumpSize != 0 {
		cfg.Segmentation.JumpSize = *jumpSize
	}
	if *numCores != 0 {
		cfg.Processing.NumCores = *numCores
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("LUNG SEGMENTATION AND AREA MEASUREMENT FROM 2D CHEST CT SLICES")
	fmt.Println("================================")

	// Step 1: Load the CT volume
	fmt.Println("Step 1: Loading CT volume...")
	startTime := time.Now()
	volume, err := nifti.Load(*inputPath)
	if err != nil {
		log.Fatalf("Failed to load CT volume: %v", err)
	}
	fmt.Printf("Loaded volume %dx%dx%d, voxel spacing %.3f x %.3f x %.3f mm\n",
		volume.Width, volume.Height, volume.Depth,
		volume.Spacing.X, volume.Spacing.Y, volume.Spacing.Z)

	segmenter, err := segmentation.NewSegmenter(cfg.Params())
	if err != nil {
		log.Fatalf("Failed to create segmenter: %v", err)
	}
	palette, err := cfg.Palette()
	if err != nil {
		log.Fatalf("Failed to build display palette: %v", err)
	}

	if *allSlices {
		runAllSlices(volume, segmenter, palette, *outputDir)
		fmt.Printf("\nTotal processing time: %.2f seconds\n", time.Since(startTime).Seconds())
		return
	}

	// Default to the middle slice, the most anatomically informative one
	idx := *sliceIndex
	if idx < 0 {
		idx = volume.Depth / 2
	}

	// Step 2: Extract and segment the slice
	fmt.Printf("Step 2: Segmenting slice %d...\n", idx)
	slice, err := nifti.ExtractSlice(volume, idx)
	if err != nil {
		log.Fatalf("Failed to extract slice: %v", err)
	}

	result, err := segmenter.Segment(slice)
	if err != nil {
		log.Fatalf("Segmentation failed: %v", err)
	}

	// Step 3: Render and save the side-by-side images
	fmt.Println("Step 3: Rendering results...")
	original := visualization.RenderGray(result.Normalized, slice.Width, slice.Height)
	segmented := visualization.Colorize(result.Labels, palette)

	originalPath := filepath.Join(*outputDir, fmt.Sprintf("slice_%03d_original.png", idx))
	segmentedPath := filepath.Join(*outputDir, fmt.Sprintf("slice_%03d_segmented.png", idx))
	if err := visualization.Save(original, originalPath); err != nil {
		log.Fatalf("Failed to save original image: %v", err)
	}
	if err := visualization.Save(segmented, segmentedPath); err != nil {
		log.Fatalf("Failed to save segmented image: %v", err)
	}

	fmt.Printf("\nSegmentation completed in %.2f seconds\n", time.Since(startTime).Seconds())
	fmt.Printf("Original image:  %s\n", originalPath)
	fmt.Printf("Segmented image: %s\n", segmentedPath)

	fmt.Printf("\nLung area: %.2f mm2 (%d pixels)\n", result.AreaMM2, result.LungPixels)
	if cfg.Output.Verbose && result.LungPixels > 0 {
		fmt.Printf("Lung intensity: mean %.1f, stddev %.1f, range [%d, %d]\n",
			result.Stats.Mean, result.Stats.StdDev, result.Stats.Min, result.Stats.Max)
	}
}

// runAllSlices segments every axial slice independently and prints the
// per-slice areas. Each slice is still a pure 2D segmentation; this is a
// batch loop, not a volumetric analysis.
func runAllSlices(volume *models.Volume, segmenter *segmentation.Segmenter, palette visualization.Palette, outputDir string) {
	fmt.Printf("Step 2: Segmenting all %d slices...\n", volume.Depth)
	fmt.Println("\nSlice   Lung pixels   Area (mm2)")
	fmt.Println("---------------------------------")

	totalArea := 0.0
	for z := 0; z < volume.Depth; z++ {
		slice, err := nifti.ExtractSlice(volume, z)
		if err != nil {
			log.Fatalf("Failed to extract slice %d: %v", z, err)
		}

		result, err := segmenter.Segment(slice)
		if err != nil {
			log.Fatalf("Segmentation of slice %d failed: %v", z, err)
		}

		segmented := visualization.Colorize(result.Labels, palette)
		path := filepath.Join(outputDir, fmt.Sprintf("slice_%03d_segmented.png", z))
		if err := visualization.Save(segmented, path); err != nil {
			log.Fatalf("Failed to save segmented slice %d: %v", z, err)
		}

		fmt.Printf("%5d   %11d   %10.2f\n", z, result.LungPixels, result.AreaMM2)
		totalArea += result.AreaMM2
	}

	fmt.Println("---------------------------------")
	fmt.Printf("Mean slice area: %.2f mm2\n", totalArea/float64(volume.Depth))
	fmt.Printf("Segmented images saved to: %s\n", outputDir)
}
