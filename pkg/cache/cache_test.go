package cache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathijsteam/bvhforge"
	"github.com/mathijsteam/bvhforge/pkg/bvh"
	"github.com/mathijsteam/bvhforge/pkg/mesh"
)

func sampleResult() bvh.Result {
	vertices := []mesh.Vertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
	}
	triangles := []mesh.Triangle{{Indices: [3]uint32{0, 1, 2}, MaterialIndex: 7}}
	result, err := bvh.BuildBinnedBVH(vertices, triangles, bvhforge.DefaultBuildConfig())
	if err != nil {
		panic(err)
	}
	return result
}

func TestSaveThenLoadRoundTripsExactly(t *testing.T) {
	original := sampleResult()

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, original))

	loaded, err := Load(&buf)
	require.NoError(t, err)

	assert.Equal(t, original.RootIndex, loaded.RootIndex)
	assert.Equal(t, original.Triangles, loaded.Triangles)
	require.Len(t, loaded.Nodes, len(original.Nodes))
	for i := range original.Nodes {
		assert.Equal(t, original.Nodes[i].Bounds, loaded.Nodes[i].Bounds)
		assert.Equal(t, original.Nodes[i].IndexUnion, loaded.Nodes[i].IndexUnion)
		assert.Equal(t, original.Nodes[i].TriangleCount, loaded.Nodes[i].TriangleCount)
	}
}

func TestLoadRejectsWrongVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, sampleResult()))

	raw := buf.Bytes()
	raw[0] = 0xFF // corrupt the version field's low byte

	_, err := Load(bytes.NewReader(raw))
	assert.ErrorIs(t, err, bvhforge.ErrFileVersionMismatch)
}

func TestLoadRejectsTruncatedFile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, sampleResult()))

	truncated := buf.Bytes()[:buf.Len()-10]
	_, err := Load(bytes.NewReader(truncated))
	assert.ErrorIs(t, err, bvhforge.ErrShortRead)
}

func TestLoadRejectsImplausibleCount(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, sampleResult()))

	raw := buf.Bytes()
	// Node count field starts right after the 8-byte version+root header.
	raw[8], raw[9], raw[10], raw[11] = 0xFF, 0xFF, 0xFF, 0x7F

	_, err := Load(bytes.NewReader(raw))
	assert.ErrorIs(t, err, bvhforge.ErrCountOverflow)
}
