package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/leroyvn/mitsuba2/pkg/core"
	"github.com/leroyvn/mitsuba2/pkg/geometry"
	"github.com/leroyvn/mitsuba2/pkg/loaders"
	"github.com/leroyvn/mitsuba2/pkg/scene"
	"github.com/leroyvn/mitsuba2/pkg/sensor"
)

func main() {
	// Parse command line flags
	directionFlag := flag.String("direction", "0,0,1", "Sensor axis direction as 'x,y,z'")
	widthFlag := flag.Int("width", 1, "Film width (direction sampling: 1x1 single, Nx1 planar, NxM hemisphere)")
	heightFlag := flag.Int("height", 1, "Film height")
	flipFlag := flag.Bool("flip", false, "Flip sampled ray directions")
	targetFlag := flag.String("target", "", "Optional ray target point as 'x,y,z'")
	meshFlag := flag.String("target-mesh", "", "Optional glTF/GLB file whose surface is sampled for ray targets")
	samplesFlag := flag.Int("samples", 10000, "Number of sample rays to generate")
	seedFlag := flag.Int64("seed", 42, "Random seed")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Distant sensor probe")
		fmt.Println("Generates sample rays from a distant directional sensor over a demo")
		fmt.Println("scene and reports sampling statistics.")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	logger := log.New(os.Stderr, "", 0)

	direction, err := parseVec3(*directionFlag)
	if err != nil {
		logger.Printf("invalid -direction: %v", err)
		os.Exit(1)
	}

	// Demo scene: unit sphere above a ground quad
	sc := scene.NewScene(
		geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0),
		geometry.NewQuad(core.NewVec3(-5, 0, -5), core.NewVec3(10, 0, 0), core.NewVec3(0, 0, 10)),
	)

	config := sensor.DistantConfig{
		Direction:      &direction,
		FlipDirections: *flipFlag,
		Film:           sensor.NewFilm(*widthFlag, *heightFlag, nil),
		Logger:         logger,
	}

	switch {
	case *targetFlag != "" && *meshFlag != "":
		logger.Printf("only one of -target and -target-mesh may be given")
		os.Exit(1)
	case *targetFlag != "":
		point, err := parseVec3(*targetFlag)
		if err != nil {
			logger.Printf("invalid -target: %v", err)
			os.Exit(1)
		}
		config.RayTarget = point
	case *meshFlag != "":
		mesh, err := loaders.LoadGLTF(*meshFlag)
		if err != nil {
			logger.Printf("loading %s: %v", *meshFlag, err)
			os.Exit(1)
		}
		logger.Printf("loaded %d triangles from %s", len(mesh.Triangles), *meshFlag)
		config.RayTarget = mesh
	}

	distant, err := sensor.NewDistantSensor(config)
	if err != nil {
		logger.Printf("sensor construction failed: %v", err)
		os.Exit(1)
	}
	distant.SetScene(sc)

	fmt.Println(distant)
	runProbe(distant, sc, *samplesFlag, *seedFlag)
}

// runProbe generates sample rays and prints statistics about them
func runProbe(s sensor.Sensor, sc *scene.Scene, numSamples int, seed int64) {
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(seed)))

	var valid, sceneHits int
	var weightSum float64
	var meanDirection core.Vec3

	for i := 0; i < numSamples; i++ {
		sample := s.SampleRay(0, sampler.Get1D(), sampler.Get2D(), sampler.Get2D())
		if !sample.Valid {
			continue
		}

		valid++
		weightSum += sample.Weight.MaxComponent()
		meanDirection = meanDirection.Add(sample.Ray.Direction)

		if _, hit := sc.Hit(sample.Ray, core.RayEpsilon, 1e30); hit {
			sceneHits++
		}
	}

	fmt.Printf("samples:     %d\n", numSamples)
	fmt.Printf("valid:       %d (%.1f%%)\n", valid, 100*float64(valid)/float64(numSamples))
	if valid > 0 {
		meanDirection = meanDirection.Multiply(1 / float64(valid))
		fmt.Printf("scene hits:  %d (%.1f%% of valid)\n", sceneHits, 100*float64(sceneHits)/float64(valid))
		fmt.Printf("mean weight: %.6g\n", weightSum/float64(valid))
		fmt.Printf("mean dir:    (%.4f, %.4f, %.4f), |mean|=%.4f\n",
			meanDirection.X, meanDirection.Y, meanDirection.Z, meanDirection.Length())
	}
}

// parseVec3 parses a comma-separated vector like "0,0,1"
func parseVec3(s string) (core.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("expected 3 comma-separated components, got %d", len(parts))
	}

	var values [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("component %d: %w", i, err)
		}
		values[i] = v
	}

	return core.NewVec3(values[0], values[1], values[2]), nil
}
