// Package cache implements the persistent sub-BVH file format: a
// version-checked, little-endian dump of a built bvh.Result that lets
// a caller skip rebuilding an unchanged mesh across runs.
package cache

import (
	"encoding/binary"
	"io"

	"github.com/mathijsteam/bvhforge"
	"github.com/mathijsteam/bvhforge/pkg/bvh"
	"github.com/mathijsteam/bvhforge/pkg/mesh"
)

// formatVersion is bumped whenever the on-disk layout changes
// incompatibly. Save always writes the current version; Load rejects
// anything else with ErrFileVersionMismatch.
const formatVersion uint32 = 1

// maxCount bounds the node/triangle counts Load will accept before a
// header is declared corrupt, well above any build this module
// produces but far below a count that would exhaust memory trying to
// allocate the corresponding slice.
const maxCount = 1 << 28

// Save writes result in the format spec.md §6 describes: version,
// root index, N nodes, M triangles, trailing newline.
func Save(w io.Writer, result bvh.Result) error {
	if err := writeU32(w, formatVersion); err != nil {
		return err
	}
	if err := writeU32(w, result.RootIndex); err != nil {
		return err
	}

	if err := writeU32(w, uint32(len(result.Nodes))); err != nil {
		return err
	}
	for _, n := range result.Nodes {
		if _, err := w.Write(n.ToBytes()); err != nil {
			return err
		}
	}

	if err := writeU32(w, uint32(len(result.Triangles))); err != nil {
		return err
	}
	for _, tri := range result.Triangles {
		if err := writeTriangle(w, tri); err != nil {
			return err
		}
	}

	_, err := w.Write([]byte{'\n'})
	return err
}

// Load reads a file written by Save. It returns ErrFileVersionMismatch,
// ErrCountOverflow, or ErrShortRead rather than a bare io error, so a
// caller can distinguish "rebuild" from "disk is broken".
func Load(r io.Reader) (bvh.Result, error) {
	version, err := readU32(r)
	if err != nil {
		return bvh.Result{}, err
	}
	if version != formatVersion {
		return bvh.Result{}, bvhforge.ErrFileVersionMismatch
	}

	rootIndex, err := readU32(r)
	if err != nil {
		return bvh.Result{}, err
	}

	nodeCount, err := readCount(r)
	if err != nil {
		return bvh.Result{}, err
	}
	nodes := make([]bvh.SubBVHNode, nodeCount)
	nodeBuf := make([]byte, 48)
	for i := range nodes {
		if _, err := io.ReadFull(r, nodeBuf); err != nil {
			return bvh.Result{}, bvhforge.ErrShortRead
		}
		nodes[i] = bvh.NodeFromBytes(nodeBuf)
	}

	triangleCount, err := readCount(r)
	if err != nil {
		return bvh.Result{}, err
	}
	triangles := make([]mesh.Triangle, triangleCount)
	for i := range triangles {
		tri, err := readTriangle(r)
		if err != nil {
			return bvh.Result{}, err
		}
		triangles[i] = tri
	}

	trailer := make([]byte, 1)
	if _, err := io.ReadFull(r, trailer); err != nil || trailer[0] != '\n' {
		return bvh.Result{}, bvhforge.ErrShortRead
	}

	return bvh.Result{RootIndex: rootIndex, Nodes: nodes, Triangles: triangles}, nil
}

func readCount(r io.Reader) (int, error) {
	count, err := readU32(r)
	if err != nil {
		return 0, err
	}
	if count > maxCount {
		return 0, bvhforge.ErrCountOverflow
	}
	return int(count), nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, bvhforge.ErrShortRead
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// writeTriangle writes Indices (3xu32) and MaterialIndex (u32), 16
// bytes, matching the mesh.Triangle field order.
func writeTriangle(w io.Writer, tri mesh.Triangle) error {
	for _, idx := range tri.Indices {
		if err := writeU32(w, idx); err != nil {
			return err
		}
	}
	return writeU32(w, tri.MaterialIndex)
}

func readTriangle(r io.Reader) (mesh.Triangle, error) {
	var tri mesh.Triangle
	for i := range tri.Indices {
		v, err := readU32(r)
		if err != nil {
			return mesh.Triangle{}, err
		}
		tri.Indices[i] = v
	}
	materialIndex, err := readU32(r)
	if err != nil {
		return mesh.Triangle{}, err
	}
	tri.MaterialIndex = materialIndex
	return tri, nil
}
