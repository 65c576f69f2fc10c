package bvh

import (
	"math"

	"github.com/mathijsteam/bvhforge/pkg/geom"
	"github.com/mathijsteam/bvhforge/pkg/prim"
)

// objectBin accumulates the primitives whose centroid falls inside it.
// leftPlane/rightPlane are stored analytically rather than recomputed
// from the bin index at lookup time, so a primitive's bin assignment
// survives floating-point drift between the formula and the stored
// bound.
type objectBin struct {
	primCount  int
	bounds     geom.AABB
	leftPlane  float32
	rightPlane float32
}

// objectSplit is the winning object-split candidate for one axis.
type objectSplit struct {
	axis        int
	position    float32
	leftBounds  geom.AABB
	rightBounds geom.AABB
	sah         float32
}

// findObjectSplit scans all three axes (or just axis, when axes is a
// single-element slice, for the "fast" widest-axis-only variant) and
// returns the split with the lowest partial SAH, or nil when every
// axis is degenerate or every candidate split leaves one side empty.
func findObjectSplit(nodeBounds geom.AABB, refs []prim.Ref, lo, hi int, bins int, axes []int) *objectSplit {
	extent := nodeBounds.Size()
	var best *objectSplit

	for _, axis := range axes {
		if geom.Axis(extent, axis) <= smallestNormal {
			continue
		}

		objBins := binObjects(nodeBounds, axis, refs, lo, hi, bins)

		left := make([]objectBin, bins)
		right := make([]objectBin, bins)
		accum := objectBin{bounds: geom.Empty(), leftPlane: float32(math.Inf(1)), rightPlane: float32(math.Inf(-1))}
		for i := 0; i < bins; i++ {
			accum = mergeObjectBins(accum, objBins[i])
			left[i] = accum
		}
		accum = objectBin{bounds: geom.Empty(), leftPlane: float32(math.Inf(1)), rightPlane: float32(math.Inf(-1))}
		for i := bins - 1; i >= 0; i-- {
			accum = mergeObjectBins(accum, objBins[i])
			right[i] = accum
		}

		for split := 1; split < bins; split++ {
			mergedLeft := left[split-1]
			mergedRight := right[split]
			if mergedLeft.primCount == 0 || mergedRight.primCount == 0 {
				continue
			}

			sah := float32(mergedLeft.primCount)*mergedLeft.bounds.SurfaceArea() +
				float32(mergedRight.primCount)*mergedRight.bounds.SurfaceArea()
			if best == nil || sah < best.sah {
				best = &objectSplit{
					axis:        axis,
					position:    mergedLeft.rightPlane,
					leftBounds:  mergedLeft.bounds,
					rightBounds: mergedRight.bounds,
					sah:         sah,
				}
			}
		}
	}

	return best
}

func mergeObjectBins(a, b objectBin) objectBin {
	return objectBin{
		primCount:  a.primCount + b.primCount,
		bounds:     a.bounds.Union(b.bounds),
		leftPlane:  min32(a.leftPlane, b.leftPlane),
		rightPlane: max32(a.rightPlane, b.rightPlane),
	}
}

// binObjects assigns each of refs[lo:hi] to a bin by centroid position
// along axis, walking the stored plane boundaries to correct for
// floating-point drift between the direct-index formula and the
// analytic plane positions.
func binObjects(nodeBounds geom.AABB, axis int, refs []prim.Ref, lo, hi int, bins int) []objectBin {
	extent := geom.Axis(nodeBounds.Size(), axis)
	nodeMin := geom.Axis(nodeBounds.Min, axis)
	k1 := float32(bins) / extent
	k1Inv := extent / float32(bins)

	out := make([]objectBin, bins)
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
		center := geom.Axis(refs[i].Centroid(), axis)
		x := k1 * (center - nodeMin)
		binID := int(x)
		if binID > bins-1 {
			binID = bins - 1
		}
		if binID < 0 {
			binID = 0
		}

		for binID > 0 && center < out[binID].leftPlane {
			binID--
		}
		for binID != bins-1 && center >= out[binID].rightPlane {
			binID++
		}

		out[binID].primCount++
		out[binID].bounds = out[binID].bounds.Union(refs[i].Bounds)
	}

	return out
}

// partitionObjects reorders refs[lo:hi] in place around split,
// grouping every reference whose centroid on split.axis is less than
// split.position to the left, and returns the index of the first
// right-side element.
func partitionObjects(refs []prim.Ref, lo, hi int, split *objectSplit) int {
	i, j := lo, hi-1
	for i <= j {
		for i <= j && geom.Axis(refs[i].Centroid(), split.axis) < split.position {
			i++
		}
		for i <= j && geom.Axis(refs[j].Centroid(), split.axis) >= split.position {
			j--
		}
		if i < j {
			refs[i], refs[j] = refs[j], refs[i]
			i++
			j--
		}
	}
	return i
}

const smallestNormal = 1.1754944e-38
