package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drawFixture is a camera at the origin looking down -Y plus a few materials.
type drawFixture struct {
	sorting     SortingSettings
	opaque      *Material
	opaque2     *Material
	transparent *Material
	legacy      *Material
	mesh        *Mesh
}

func newDrawFixture() *drawFixture {
	cam := NewCamera("test")
	cam.Position = mgl32.Vec3{}
	return &drawFixture{
		sorting:     NewSortingSettings(cam),
		opaque:      NewMaterial("opaque", DefaultShaders.Find(ShaderUnlit)),
		opaque2:     NewMaterial("opaque2", DefaultShaders.Find(ShaderUnlit)),
		transparent: NewMaterial("glass", DefaultShaders.Find(ShaderUnlitTransparent)),
		legacy:      NewMaterial("legacy", DefaultShaders.Find(ShaderLegacyDiffuse)),
		mesh:        NewCubeMesh(),
	}
}

func (f *drawFixture) at(name string, depth float32, mat *Material) *Renderer {
	r := NewRenderer(name, f.mesh, mat)
	r.Transform.SetPosition(mgl32.Vec3{0, -depth, 0})
	r.UpdateWorldAABB()
	return r
}

func names(calls []DrawCall) [][]string {
	out := make([][]string, len(calls))
	for i, c := range calls {
		for _, r := range c.Renderers {
			out[i] = append(out[i], r.Name)
		}
	}
	return out
}

func TestRenderQueueRanges(t *testing.T) {
	assert.True(t, RenderQueueRangeOpaque.Contains(RenderQueueGeometry))
	assert.True(t, RenderQueueRangeOpaque.Contains(RenderQueueGeometryEnd))
	assert.False(t, RenderQueueRangeOpaque.Contains(RenderQueueTransparent))
	assert.True(t, RenderQueueRangeTransparent.Contains(RenderQueueGeometryEnd+1))
	assert.False(t, RenderQueueRangeTransparent.Contains(RenderQueueGeometry))
	assert.True(t, RenderQueueRangeAll.Contains(RenderQueueBackground))
	assert.True(t, RenderQueueRangeAll.Contains(RenderQueueOverlay))
}

func TestDrawingSettingsPassNames(t *testing.T) {
	d := NewDrawingSettings(TagForwardBase, SortingSettings{})
	d.SetShaderPassName(2, TagAlways)
	assert.Equal(t, []ShaderTagID{TagForwardBase, ShaderTagNone, TagAlways}, d.ShaderPassNames())
	assert.Equal(t, TagAlways, d.ShaderPassName(2))
	assert.Equal(t, ShaderTagNone, d.ShaderPassName(7))
	assert.Panics(t, func() { d.SetShaderPassName(MaxShaderPasses, TagAlways) })
}

func TestBuildDrawCallsFiltersQueueAndPass(t *testing.T) {
	f := newDrawFixture()
	cull := &CullingResult{Renderers: []*Renderer{
		f.at("wall", 5, f.opaque),
		f.at("glass", 5, f.transparent),
		f.at("old", 5, f.legacy),
	}}

	drawing := NewDrawingSettings(TagSRPDefaultUnlit, f.sorting)
	drawing.Sorting.Criteria = SortCommonOpaque
	filter := NewFilteringSettings(RenderQueueRangeOpaque)
	assert.Equal(t, [][]string{{"wall"}}, names(BuildDrawCalls(cull, &drawing, &filter)))

	filter = NewFilteringSettings(RenderQueueRangeTransparent)
	assert.Equal(t, [][]string{{"glass"}}, names(BuildDrawCalls(cull, &drawing, &filter)))

	assert.Empty(t, BuildDrawCalls(&CullingResult{}, &drawing, &filter))
	assert.Empty(t, BuildDrawCalls(nil, &drawing, &filter))
}

func TestBuildDrawCallsFirstTagWins(t *testing.T) {
	f := newDrawFixture()
	cull := &CullingResult{Renderers: []*Renderer{f.at("old", 5, f.legacy)}}

	drawing := NewDrawingSettings(TagAlways, f.sorting)
	drawing.SetShaderPassName(1, TagForwardBase)
	filter := NewFilteringSettings(RenderQueueRangeAll)

	calls := BuildDrawCalls(cull, &drawing, &filter)
	require.Len(t, calls, 1)
	assert.Equal(t, TagAlways, calls[0].PassTag)
	assert.Equal(t, 1, calls[0].PassIndex, "Always is the second pass of Legacy/Diffuse")
}

func TestBuildDrawCallsOverrideMaterial(t *testing.T) {
	f := newDrawFixture()
	cull := &CullingResult{Renderers: []*Renderer{f.at("old", 5, f.legacy)}}
	errMat := NewMaterial("error", DefaultShaders.Find(ShaderInternalError))

	drawing := NewDrawingSettings(TagForwardBase, f.sorting)
	drawing.OverrideMaterial = errMat
	filter := NewFilteringSettings(RenderQueueRangeAll)

	calls := BuildDrawCalls(cull, &drawing, &filter)
	require.Len(t, calls, 1)
	assert.Same(t, errMat, calls[0].Material)
	assert.Equal(t, 0, calls[0].PassIndex)
	assert.Equal(t, TagForwardBase, calls[0].PassTag)
}

func TestBuildDrawCallsOpaqueFrontToBack(t *testing.T) {
	f := newDrawFixture()
	cull := &CullingResult{Renderers: []*Renderer{
		f.at("far", 400, f.opaque),
		f.at("near", 2, f.opaque2),
		f.at("mid", 40, f.opaque),
	}}
	drawing := NewDrawingSettings(TagSRPDefaultUnlit, f.sorting)
	drawing.Sorting.Criteria = SortCommonOpaque
	filter := NewFilteringSettings(RenderQueueRangeOpaque)

	assert.Equal(t, [][]string{{"near"}, {"mid"}, {"far"}}, names(BuildDrawCalls(cull, &drawing, &filter)))
}

func TestBuildDrawCallsTransparentBackToFront(t *testing.T) {
	f := newDrawFixture()
	cull := &CullingResult{Renderers: []*Renderer{
		f.at("near", 2, f.transparent),
		f.at("far", 30, f.transparent),
		f.at("mid", 10, f.transparent),
	}}
	drawing := NewDrawingSettings(TagSRPDefaultUnlit, f.sorting)
	drawing.Sorting.Criteria = SortCommonTransparent
	filter := NewFilteringSettings(RenderQueueRangeTransparent)

	assert.Equal(t, [][]string{{"far"}, {"mid"}, {"near"}}, names(BuildDrawCalls(cull, &drawing, &filter)))
}

func TestBuildDrawCallsRenderQueueFirst(t *testing.T) {
	f := newDrawFixture()
	alphaTest := NewMaterial("cutout", DefaultShaders.Find(ShaderUnlit))
	alphaTest.RenderQueue = RenderQueueAlphaTest
	cull := &CullingResult{Renderers: []*Renderer{
		f.at("cutout", 1, alphaTest),
		f.at("wall", 300, f.opaque),
	}}
	drawing := NewDrawingSettings(TagSRPDefaultUnlit, f.sorting)
	drawing.Sorting.Criteria = SortCommonOpaque
	filter := NewFilteringSettings(RenderQueueRangeOpaque)

	assert.Equal(t, [][]string{{"wall"}, {"cutout"}}, names(BuildDrawCalls(cull, &drawing, &filter)))
}

func TestBuildDrawCallsBatching(t *testing.T) {
	f := newDrawFixture()
	newCull := func() *CullingResult {
		return &CullingResult{Renderers: []*Renderer{
			f.at("a", 5, f.opaque),
			f.at("b", 5, f.opaque),
			f.at("c", 5, f.opaque),
		}}
	}
	filter := NewFilteringSettings(RenderQueueRangeOpaque)

	t.Run("disabled", func(t *testing.T) {
		drawing := NewDrawingSettings(TagSRPDefaultUnlit, f.sorting)
		calls := BuildDrawCalls(newCull(), &drawing, &filter)
		assert.Len(t, calls, 3)
		for _, c := range calls {
			assert.Equal(t, BatchNone, c.Batch)
		}
	})

	t.Run("dynamic", func(t *testing.T) {
		drawing := NewDrawingSettings(TagSRPDefaultUnlit, f.sorting)
		drawing.EnableDynamicBatching = true
		calls := BuildDrawCalls(newCull(), &drawing, &filter)
		require.Len(t, calls, 1)
		assert.Equal(t, BatchDynamic, calls[0].Batch)
		assert.Len(t, calls[0].Renderers, 3)
	})

	t.Run("dynamic breaks on property block", func(t *testing.T) {
		cull := newCull()
		block := NewPropertyBlock()
		block.SetColor(PropColor, mgl32.Vec4{1, 0, 0, 1})
		cull.Renderers[1].SetPropertyBlock(block)

		drawing := NewDrawingSettings(TagSRPDefaultUnlit, f.sorting)
		drawing.EnableDynamicBatching = true
		assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, names(BuildDrawCalls(cull, &drawing, &filter)))
	})

	t.Run("instancing needs material opt-in", func(t *testing.T) {
		drawing := NewDrawingSettings(TagSRPDefaultUnlit, f.sorting)
		drawing.EnableInstancing = true
		assert.Len(t, BuildDrawCalls(newCull(), &drawing, &filter), 3)
	})

	t.Run("instanced keeps property blocks", func(t *testing.T) {
		f.opaque.EnableInstancing = true
		defer func() { f.opaque.EnableInstancing = false }()
		cull := newCull()
		block := NewPropertyBlock()
		block.SetColor(PropColor, mgl32.Vec4{0, 1, 0, 1})
		cull.Renderers[0].SetPropertyBlock(block)

		drawing := NewDrawingSettings(TagSRPDefaultUnlit, f.sorting)
		drawing.EnableInstancing = true
		drawing.EnableDynamicBatching = true
		calls := BuildDrawCalls(cull, &drawing, &filter)
		require.Len(t, calls, 1)
		assert.Equal(t, BatchInstanced, calls[0].Batch)
	})

	t.Run("different materials never merge", func(t *testing.T) {
		cull := &CullingResult{Renderers: []*Renderer{
			f.at("a", 5, f.opaque),
			f.at("b", 5, f.opaque2),
		}}
		drawing := NewDrawingSettings(TagSRPDefaultUnlit, f.sorting)
		drawing.EnableDynamicBatching = true
		assert.Len(t, BuildDrawCalls(cull, &drawing, &filter), 2)
	})
}

func TestBuildDrawCallsDeterministic(t *testing.T) {
	f := newDrawFixture()
	var rs []*Renderer
	for i := 0; i < 20; i++ {
		mat := f.opaque
		if i%3 == 0 {
			mat = f.opaque2
		}
		rs = append(rs, f.at("r", float32(i%5)*7+1, mat))
	}
	cull := &CullingResult{Renderers: rs}
	drawing := NewDrawingSettings(TagSRPDefaultUnlit, f.sorting)
	drawing.Sorting.Criteria = SortCommonOpaque
	drawing.EnableDynamicBatching = true
	filter := NewFilteringSettings(RenderQueueRangeOpaque)

	assert.Equal(t, BuildDrawCalls(cull, &drawing, &filter), BuildDrawCalls(cull, &drawing, &filter))
}
