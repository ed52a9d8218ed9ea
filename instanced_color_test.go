package forward

import (
	"testing"

	"github.com/gekko3d/forward/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestInstancedColor(t *testing.T) {
	mat := core.NewMaterial("shared", core.DefaultShaders.Find(core.ShaderUnlit))
	red := core.NewRenderer("red", core.NewCubeMesh(), mat)
	blue := core.NewRenderer("blue", core.NewCubeMesh(), mat)
	plain := core.NewRenderer("plain", core.NewCubeMesh(), mat)

	redColor := NewInstancedColor(red, mgl32.Vec4{1, 0, 0, 1})
	NewInstancedColor(blue, mgl32.Vec4{0, 0, 1, 1})

	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, red.Color(InstanceColorID))
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 1}, blue.Color(InstanceColorID), "renderers keep their own copy of the shared block")
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, plain.Color(InstanceColorID))
	assert.True(t, red.HasPropertyBlock())
	assert.False(t, plain.HasPropertyBlock())
	assert.Same(t, red, redColor.Renderer())

	redColor.SetColor(mgl32.Vec4{0, 1, 0, 1})
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, red.Color(InstanceColorID))

	redColor.Color = mgl32.Vec4{1, 1, 0, 1}
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, red.Color(InstanceColorID), "edits apply on Validate")
	redColor.Validate()
	assert.Equal(t, mgl32.Vec4{1, 1, 0, 1}, red.Color(InstanceColorID))

	mc, _ := mat.GetColor(core.PropColor)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, mc, "the material is untouched")
}

func TestInstancedColorWithoutRenderer(t *testing.T) {
	c := NewInstancedColor(nil, mgl32.Vec4{1, 0, 0, 1})
	assert.NotPanics(t, c.Validate)
	assert.Nil(t, c.Renderer())
}

func TestInstancedColorBreaksDynamicBatching(t *testing.T) {
	scene := core.NewScene()
	mat := core.NewMaterial("shared", core.DefaultShaders.Find(core.ShaderUnlit))
	mat.EnableInstancing = true
	mesh := core.NewCubeMesh()
	for i, y := range []float32{-10, -10.5, -11} {
		r := core.NewRenderer(string(rune('a'+i)), mesh, mat)
		r.Transform.SetPosition(mgl32.Vec3{0, y, 0})
		scene.AddRenderer(r)
		NewInstancedColor(r, mgl32.Vec4{float32(i), 0, 0, 1})
	}

	render := func(cfg PipelineConfig) []core.DrawCall {
		ctx := newMockContext(scene)
		NewPipeline(cfg, nil).RenderOne(ctx, lookDownY("main"))
		return ctx.find("draw")[0].Calls
	}

	assert.Len(t, render(PipelineConfig{DynamicBatching: true}), 3)
	instanced := render(PipelineConfig{DynamicBatching: true, Instancing: true})
	if assert.Len(t, instanced, 1) {
		assert.Equal(t, core.BatchInstanced, instanced[0].Batch)
		assert.Len(t, instanced[0].Renderers, 3)
	}
}
