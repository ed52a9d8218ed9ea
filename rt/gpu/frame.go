package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/forward"
	"github.com/gekko3d/forward/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// globalsData matches Globals in the WGSL sources.
type globalsData struct {
	ViewProj    mgl32.Mat4 // 0
	InvViewProj mgl32.Mat4 // 64
	LightColors [forward.MaxVisibleLights]mgl32.Vec4
	LightDirs   [forward.MaxVisibleLights]mgl32.Vec4
	LightAtten  [forward.MaxVisibleLights]mgl32.Vec4
	CameraPos   mgl32.Vec4 // 320
	SkyTop      mgl32.Vec4
	SkyHorizon  mgl32.Vec4
} // 368 bytes

const globalsSize = 368

// objectData matches Object in the WGSL sources; one per drawn renderer.
type objectData struct {
	Model mgl32.Mat4
	Color mgl32.Vec4
} // 80 bytes

const objectSize = 80

// clipDepthRemap maps OpenGL clip depth [-w,w] to the [0,w] range WebGPU
// expects.
var clipDepthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// frameState is the CPU side of one camera's frame: globals waiting to be
// written and clears waiting for the next render pass.
type frameState struct {
	globals    globalsData
	clearColor bool
	clearDepth bool
	background mgl32.Vec4
	unknown    map[core.PropertyID]bool
	profiler   *core.Profiler
}

func newFrameState(profiler *core.Profiler) *frameState {
	return &frameState{unknown: make(map[core.PropertyID]bool), profiler: profiler}
}

func (f *frameState) setCamera(camera *core.Camera, sky core.Skybox) {
	vp := clipDepthRemap.Mul4(camera.ViewProjection())
	f.globals.ViewProj = vp
	f.globals.InvViewProj = vp.Inv()
	f.globals.CameraPos = camera.Position.Vec4(1)
	f.globals.SkyTop = sky.Top
	f.globals.SkyHorizon = sky.Horizon
}

// apply executes cmds in order. It reports the globals it did not recognize.
func (f *frameState) apply(cmds []core.Command) (unknown []core.PropertyID) {
	for _, c := range cmds {
		switch c.Kind {
		case core.CmdClearRenderTarget:
			// Clears accumulate until a pass consumes them.
			f.clearColor = f.clearColor || c.ClearColor
			f.clearDepth = f.clearDepth || c.ClearDepth
			if c.ClearColor {
				f.background = c.Color
			}
		case core.CmdSetGlobalVectorArray:
			var dst *[forward.MaxVisibleLights]mgl32.Vec4
			switch c.Property {
			case forward.VisibleLightColorsID:
				dst = &f.globals.LightColors
			case forward.VisibleLightDirectionsOrPositionsID:
				dst = &f.globals.LightDirs
			case forward.VisibleLightAttenuationsID:
				dst = &f.globals.LightAtten
			}
			if dst == nil {
				if !f.unknown[c.Property] {
					f.unknown[c.Property] = true
					unknown = append(unknown, c.Property)
				}
				continue
			}
			copy(dst[:], c.Values)
		case core.CmdBeginSample:
			f.profiler.BeginScope(c.Name)
		case core.CmdEndSample:
			f.profiler.EndScope(c.Name)
		}
	}
	return unknown
}

// takeLoadOps returns the load ops of the next render pass and resets the
// pending clears.
func (f *frameState) takeLoadOps() (color, depth wgpu.LoadOp, clear wgpu.Color) {
	color, depth = wgpu.LoadOpLoad, wgpu.LoadOpLoad
	if f.clearColor {
		color = wgpu.LoadOpClear
		clear = wgpu.Color{
			R: float64(f.background[0]),
			G: float64(f.background[1]),
			B: float64(f.background[2]),
			A: float64(f.background[3]),
		}
	}
	if f.clearDepth {
		depth = wgpu.LoadOpClear
	}
	f.clearColor, f.clearDepth = false, false
	return
}

func (f *frameState) pendingClear() bool {
	return f.clearColor || f.clearDepth
}

type pipelineKind uint8

const (
	pipelineNone pipelineKind = iota
	pipelineOpaque
	pipelineTransparent
	pipelineError
)

// pipelineFor picks the GPU pipeline a material is drawn with. Materials
// whose shader has no SRPDefaultUnlit pass have none, except the error
// material.
// materialLabel names a material and its shader for log lines.
func materialLabel(mat *core.Material) string {
	if mat == nil {
		return "nil material"
	}
	if mat.Shader == nil {
		return fmt.Sprintf("material %q (no shader)", mat.Name)
	}
	return fmt.Sprintf("material %q (shader %q)", mat.Name, mat.Shader.Name)
}

func pipelineFor(mat *core.Material) pipelineKind {
	if mat == nil || mat.Shader == nil {
		return pipelineNone
	}
	if mat.Shader.Name == core.ShaderInternalError {
		return pipelineError
	}
	if mat.Shader.FindPass(core.TagSRPDefaultUnlit) < 0 {
		return pipelineNone
	}
	if mat.Queue() > core.RenderQueueGeometryEnd {
		return pipelineTransparent
	}
	return pipelineOpaque
}

// objectsFor returns the per-object data of a draw call. Renderers drawn
// with an override material take its color.
func objectsFor(call *core.DrawCall, dst []objectData) []objectData {
	for _, r := range call.Renderers {
		color := r.Color(core.PropColor)
		if call.Material != r.Material {
			if c, ok := call.Material.GetColor(core.PropColor); ok {
				color = c
			}
		}
		dst = append(dst, objectData{Model: r.Transform.ObjectToWorld(), Color: color})
	}
	return dst
}
