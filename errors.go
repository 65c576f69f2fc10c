package bvhforge

import "errors"

// Sentinel errors returned by the builders and the cache loader. Wrap
// with fmt.Errorf("...: %w", err) to attach context; callers compare
// with errors.Is against these values.
var (
	// ErrMalformedInput is returned when a build is asked to run over
	// structurally impossible input: zero triangles, or a triangle
	// whose index refers outside the vertex buffer.
	ErrMalformedInput = errors.New("bvhforge: malformed input")

	// ErrFileVersionMismatch signals a cache file was written by an
	// incompatible format version. The caller should trigger a fresh
	// build rather than treat this as fatal.
	ErrFileVersionMismatch = errors.New("bvhforge: cache file version mismatch")

	// ErrShortRead signals a cache file ended before its declared node
	// or triangle count was satisfied.
	ErrShortRead = errors.New("bvhforge: short read in cache file")

	// ErrCountOverflow signals a cache file's declared node or triangle
	// count is implausibly large, most likely from a corrupted header.
	ErrCountOverflow = errors.New("bvhforge: node or triangle count overflow")
)
