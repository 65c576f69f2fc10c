// Command bvhbuild demonstrates the builder pipeline end to end: it
// generates a handful of procedural meshes, builds a sub-BVH for each
// in parallel, validates the result, and, when -cache-dir is set,
// writes it to a cache file (or loads it back if one already exists
// and loads cleanly).
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathijsteam/bvhforge"
	"github.com/mathijsteam/bvhforge/pkg/bvh"
	"github.com/mathijsteam/bvhforge/pkg/cache"
	"github.com/mathijsteam/bvhforge/pkg/mesh"
)

func main() {
	meshCount := flag.Int("meshes", 4, "number of procedural meshes to build")
	gridSize := flag.Int("grid", 12, "quads (two triangles each) per axis in each procedural mesh")
	useSpatial := flag.Bool("spatial", false, "use the spatial-split (SBVH) builder instead of binned SAH")
	cacheDir := flag.String("cache-dir", "", "directory to cache built sub-BVHs in; empty disables caching")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := bvhforge.NewDefaultLogger("bvhbuild", *debug)
	cfg := bvhforge.DefaultBuildConfig()
	cfg.Logger = log

	var wg sync.WaitGroup
	results := make([]bvh.Result, *meshCount)
	vertexSets := make([][]mesh.Vertex, *meshCount)
	buildErrs := make([]error, *meshCount)

	for i := 0; i < *meshCount; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			meshCfg := cfg
			meshCfg.Logger = log.WithPrefix(fmt.Sprintf("mesh-%d", i))
			results[i], vertexSets[i], buildErrs[i] = buildOne(i, *gridSize, *useSpatial, *cacheDir, meshCfg)
		}(i)
	}
	wg.Wait()

	failures := 0
	for i, err := range buildErrs {
		meshLog := log.WithPrefix(fmt.Sprintf("mesh-%d", i))
		if err != nil {
			meshLog.Errorf("build failed: %v", err)
			failures++
			continue
		}
		stats, err := bvh.Validate(results[i].Nodes, results[i].RootIndex, vertexSets[i], results[i].Triangles)
		if err != nil {
			meshLog.Errorf("validation failed: %v", err)
			failures++
			continue
		}
		meshLog.Infof("%d nodes, %d leaves, max depth %d, %d triangles", stats.NodeCount, stats.LeafCount, stats.MaxDepth, stats.TriangleCount)
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func buildOne(index, gridSize int, useSpatial bool, cacheDir string, cfg bvhforge.BuildConfig) (bvh.Result, []mesh.Vertex, error) {
	vertices, triangles := proceduralGrid(gridSize, float32(index)*float32(gridSize)*2)

	cachePath := ""
	if cacheDir != "" {
		cachePath = fmt.Sprintf("%s/mesh-%d.bvh", cacheDir, index)
		if f, err := os.Open(cachePath); err == nil {
			defer f.Close()
			if result, err := cache.Load(f); err == nil {
				cfg.Logger.Debugf("loaded from cache %s", cachePath)
				return result, vertices, nil
			}
		}
	}

	build := bvh.BuildBinnedBVH
	if useSpatial {
		build = bvh.BuildSpatialSplitBVH
	}
	result, err := build(vertices, triangles, cfg)
	if err != nil {
		return bvh.Result{}, nil, err
	}

	if cachePath != "" {
		f, err := os.Create(cachePath)
		if err != nil {
			return result, vertices, nil // caching is best-effort, not fatal to the build
		}
		defer f.Close()
		if err := cache.Save(f, result); err != nil {
			cfg.Logger.Warnf("failed to write cache %s: %v", cachePath, err)
		}
	}

	return result, vertices, nil
}

// proceduralGrid builds an n x n grid of disjoint two-triangle quads,
// offset along X by xOffset so meshes built for a demo run don't all
// overlap in space.
func proceduralGrid(n int, xOffset float32) ([]mesh.Vertex, []mesh.Triangle) {
	if n <= 0 {
		return nil, nil
	}
	const spacing = float32(1.0)

	vertices := make([]mesh.Vertex, 0, n*n*4)
	triangles := make([]mesh.Triangle, 0, n*n*2)

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			base := uint32(len(vertices))
			ox, oy := xOffset+float32(x)*spacing, float32(y)*spacing
			vertices = append(vertices,
				mesh.Vertex{Position: mgl32.Vec3{ox, oy, 0}},
				mesh.Vertex{Position: mgl32.Vec3{ox + spacing*0.8, oy, 0}},
				mesh.Vertex{Position: mgl32.Vec3{ox, oy + spacing*0.8, 0}},
				mesh.Vertex{Position: mgl32.Vec3{ox + spacing*0.8, oy + spacing*0.8, 0}},
			)
			triangles = append(triangles,
				mesh.Triangle{Indices: [3]uint32{base, base + 1, base + 2}},
				mesh.Triangle{Indices: [3]uint32{base + 1, base + 3, base + 2}},
			)
		}
	}
	return vertices, triangles
}
