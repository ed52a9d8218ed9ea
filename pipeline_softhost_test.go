package forward_test

import (
	"testing"

	"github.com/gekko3d/forward"
	"github.com/gekko3d/forward/rt/core"
	"github.com/gekko3d/forward/rt/softhost"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineOnSoftHost(t *testing.T) {
	scene := core.NewScene()
	stone := core.NewMaterial("stone", core.DefaultShaders.Find(core.ShaderUnlit))
	mesh := core.NewCubeMesh()
	for i := 0; i < 4; i++ {
		r := core.NewRenderer("stone", mesh, stone)
		r.Transform.SetPosition(mgl32.Vec3{float32(i) - 1.5, -10, 0})
		scene.AddRenderer(r)
	}
	for i := 0; i < 6; i++ {
		l := core.NewLight("lamp", core.LightTypePoint)
		l.Transform.SetPosition(mgl32.Vec3{0, -5, float32(i)})
		l.Intensity = 2
		scene.AddLight(l)
	}

	host := softhost.New(scene, nil)
	p := forward.NewPipeline(forward.PipelineConfig{DynamicBatching: true}, nil)

	main := core.NewCamera("main")
	main.Position = mgl32.Vec3{}
	broken := core.NewCamera("broken")
	broken.Far = broken.Near
	mirror := core.NewCamera("mirror")
	mirror.Position = mgl32.Vec3{}
	mirror.Yaw = 3.14159
	mirror.ClearFlags = core.ClearFlagsColor

	p.Render(host, []*core.Camera{main, broken, mirror})

	frames := host.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, "main", frames[0].Camera)
	assert.Equal(t, "mirror", frames[1].Camera)

	calls, renderers := frames[0].DrawCalls()
	assert.Equal(t, 1, calls, "four stones batch into one call")
	assert.Equal(t, 4, renderers)
	_, renderers = frames[1].DrawCalls()
	assert.Zero(t, renderers, "nothing behind the origin")

	colors, ok := host.Global(forward.VisibleLightColorsID)
	require.True(t, ok)
	require.Len(t, colors, forward.MaxVisibleLights)

	prof := host.Profiler()
	assert.Zero(t, prof.Unbalanced())
	assert.Zero(t, prof.Depth())
	assert.Contains(t, prof.Order, forward.RenderCameraSample)
	assert.Equal(t, 2, prof.Counts["Frames"])

	clear := frames[1].Commands()[0]
	assert.False(t, clear.ClearDepth)
	assert.True(t, clear.ClearColor)
}

func TestPipelineOnSoftHostLightsAreCapped(t *testing.T) {
	scene := core.NewScene()
	for i := 0; i < 6; i++ {
		l := core.NewLight("sun", core.LightTypeDirectional)
		l.Color = mgl32.Vec3{1, 0.5, 0.25}
		scene.AddLight(l)
	}
	host := softhost.New(scene, nil)
	p := forward.NewPipeline(forward.PipelineConfig{}, nil)
	cam := core.NewCamera("main")

	require.True(t, p.RenderOne(host, cam))

	colors, _ := host.Global(forward.VisibleLightColorsID)
	dirs, _ := host.Global(forward.VisibleLightDirectionsOrPositionsID)
	for i := 0; i < forward.MaxVisibleLights; i++ {
		assert.Equal(t, mgl32.Vec4{1, 0.5, 0.25, 1}, colors[i])
		assert.Equal(t, mgl32.Vec4{0, 0, -1, 0}, dirs[i])
	}
	assert.Equal(t, forward.MaxVisibleLights, p.Lights().Active())
	packedColors, _, _ := p.Lights().Arrays()
	assert.Equal(t, colors, packedColors[:])
}
