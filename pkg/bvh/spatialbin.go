package bvh

import (
	"math"

	"github.com/mathijsteam/bvhforge/pkg/clip"
	"github.com/mathijsteam/bvhforge/pkg/geom"
	"github.com/mathijsteam/bvhforge/pkg/mesh"
	"github.com/mathijsteam/bvhforge/pkg/prim"
)

// spatialBin accumulates clipped primitive bounds touching it, plus
// the enter/exit counts the spatial SAH scan needs to know how many
// references would land on each side of a candidate split.
type spatialBin struct {
	enter      int
	exit       int
	bounds     geom.AABB
	leftPlane  float32
	rightPlane float32
}

// spatialSplit is the winning spatial-split candidate for one axis.
type spatialSplit struct {
	axis        int
	position    float32
	enterCount  int
	exitCount   int
	leftBounds  geom.AABB
	rightBounds geom.AABB
	sah         float32
}

// findSpatialSplit mirrors findObjectSplit's bin-then-scan structure
// but bins primitives by their full extent (not just centroid) and
// clips per-bin bounds to the triangle's actual footprint in that bin.
func findSpatialSplit(nodeBounds geom.AABB, vertices []mesh.Vertex, triangles []mesh.Triangle, refs []prim.Ref, lo, hi int, bins int, axes []int) *spatialSplit {
	if hi-lo < 4 {
		return nil
	}
	currentNodeSAH := nodeBounds.SurfaceArea() * float32(hi-lo)

	var best *spatialSplit
	for _, axis := range axes {
		if geom.Axis(nodeBounds.Size(), axis) <= smallestNormal {
			continue
		}

		spBins := binSpatial(nodeBounds, axis, vertices, triangles, refs, lo, hi, bins)

		left := make([]spatialBin, bins)
		right := make([]spatialBin, bins)
		accum := emptySpatialBin()
		// inclusive prefix scan: left[s] summarizes bins [0, s]
		for i := 0; i < bins; i++ {
			accum = mergeSpatialBins(accum, spBins[i])
			left[i] = accum
		}
		accum = emptySpatialBin()
		// inclusive suffix scan: right[s] summarizes bins [s, bins)
		for i := bins - 1; i >= 0; i-- {
			accum = mergeSpatialBins(accum, spBins[i])
			right[i] = accum
		}

		for split := 1; split < bins; split++ {
			mergedLeft := left[split-1]
			mergedRight := right[split]

			enterCount := mergedLeft.enter
			exitCount := mergedRight.exit
			if enterCount == 0 || exitCount == 0 {
				continue
			}

			sah := float32(enterCount)*mergedLeft.bounds.SurfaceArea() + float32(exitCount)*mergedRight.bounds.SurfaceArea()
			if (best == nil || sah < best.sah) && sah < currentNodeSAH {
				best = &spatialSplit{
					axis:        axis,
					position:    mergedLeft.rightPlane,
					enterCount:  enterCount,
					exitCount:   exitCount,
					leftBounds:  mergedLeft.bounds,
					rightBounds: mergedRight.bounds,
					sah:         sah,
				}
			}
		}
	}

	return best
}

func emptySpatialBin() spatialBin {
	return spatialBin{bounds: geom.Empty(), leftPlane: float32(math.Inf(1)), rightPlane: float32(math.Inf(-1))}
}

func mergeSpatialBins(a, b spatialBin) spatialBin {
	return spatialBin{
		enter:      a.enter + b.enter,
		exit:       a.exit + b.exit,
		bounds:     a.bounds.Union(b.bounds),
		leftPlane:  min32(a.leftPlane, b.leftPlane),
		rightPlane: max32(a.rightPlane, b.rightPlane),
	}
}

// binSpatial assigns each reference to every bin its bounds overlap
// along axis, clipping the triangle to each bin's axis-replaced slab
// so a bin's accumulated bounds never exceed the triangle's real
// footprint there.
func binSpatial(nodeBounds geom.AABB, axis int, vertices []mesh.Vertex, triangles []mesh.Triangle, refs []prim.Ref, lo, hi int, bins int) []spatialBin {
	extent := geom.Axis(nodeBounds.Size(), axis)
	nodeMin := geom.Axis(nodeBounds.Min, axis)
	k1 := float32(bins) / extent
	k1Inv := extent / float32(bins)

	out := make([]spatialBin, bins)
	for i := range out {
		if i == 0 {
			out[i].leftPlane = nodeMin
		} else {
			out[i].leftPlane = nodeMin + float32(i)*k1Inv
		}
		if i == bins-1 {
			out[i].rightPlane = geom.Axis(nodeBounds.Max, axis)
		} else {
			out[i].rightPlane = nodeMin + float32(i+1)*k1Inv
		}
		out[i].bounds = geom.Empty()
	}

	for i := lo; i < hi; i++ {
		ref := refs[i]
		primMin := geom.Axis(ref.Bounds.Min, axis)
		primMax := geom.Axis(ref.Bounds.Max, axis)

		xMin := k1 * (primMin - nodeMin)
		xMax := k1 * (primMax - nodeMin)
		leftBinID := clampBin(int(xMin), bins)
		rightBinID := clampBin(int(xMax), bins)

		for leftBinID > 0 && primMin <= out[leftBinID].leftPlane {
			leftBinID--
		}
		for leftBinID != bins-1 && primMin > out[leftBinID].rightPlane {
			leftBinID++
		}
		for rightBinID > 0 && primMax < out[rightBinID].leftPlane {
			rightBinID--
		}
		for rightBinID != bins-1 && primMax >= out[rightBinID].rightPlane {
			rightBinID++
		}
		if leftBinID > rightBinID {
			rightBinID = leftBinID
		}

		tri := triangles[ref.GlobalIndex]
		positions := tri.Positions(vertices)

		actualLeft, actualRight := bins, -1
		for binID := leftBinID; binID <= rightBinID; binID++ {
			binBounds := ref.Bounds
			binBounds.Min = geom.WithAxis(binBounds.Min, axis, out[binID].leftPlane)
			binBounds.Max = geom.WithAxis(binBounds.Max, axis, out[binID].rightPlane)

			clipped, ok := clip.Triangle(positions[0], positions[1], positions[2], binBounds)
			if !ok {
				continue
			}
			if binID < actualLeft {
				actualLeft = binID
			}
			if binID > actualRight {
				actualRight = binID
			}
			out[binID].bounds = out[binID].bounds.Union(clipped)
		}

		if actualLeft <= actualRight {
			out[actualLeft].enter++
			out[actualRight].exit++
		}
	}

	return out
}

func clampBin(x, bins int) int {
	if x < 0 {
		return 0
	}
	if x > bins-1 {
		return bins - 1
	}
	return x
}

// partitionSpatial splits refs[lo:hi] into left/right reference slices
// around split, clipping primitives straddling the plane into two
// tighter references (this is where SBVH's reference duplication comes
// from). It returns the new left and right slices, to be spliced back
// into the builder's growing reference array.
func partitionSpatial(vertices []mesh.Vertex, triangles []mesh.Triangle, refs []prim.Ref, lo, hi int, split *spatialSplit) (left, right []prim.Ref) {
	for i := lo; i < hi; i++ {
		ref := refs[i]
		min := geom.Axis(ref.Bounds.Min, split.axis)
		max := geom.Axis(ref.Bounds.Max, split.axis)

		switch {
		case min < split.position && max > split.position:
			tri := triangles[ref.GlobalIndex]
			positions := tri.Positions(vertices)

			leftClip := ref.Bounds
			leftClip.Max = geom.WithAxis(leftClip.Max, split.axis, split.position)
			rightClip := ref.Bounds
			rightClip.Min = geom.WithAxis(rightClip.Min, split.axis, split.position)

			if bounds, ok := clip.Triangle(positions[0], positions[1], positions[2], leftClip); ok {
				left = append(left, prim.Ref{GlobalIndex: ref.GlobalIndex, Bounds: bounds})
			}
			if bounds, ok := clip.Triangle(positions[0], positions[1], positions[2], rightClip); ok {
				right = append(right, prim.Ref{GlobalIndex: ref.GlobalIndex, Bounds: bounds})
			}
		case max <= split.position:
			left = append(left, ref)
		default:
			right = append(right, ref)
		}
	}
	return left, right
}
