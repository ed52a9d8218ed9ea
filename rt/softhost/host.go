// Package softhost is a CPU-only forward.Context. It culls a core.Scene,
// plans draw calls and records everything it is asked to do, one Frame per
// Submit. Tests and the headless demo drive the pipeline through it.
package softhost

import (
	"fmt"
	"strings"

	"github.com/gekko3d/forward"
	"github.com/gekko3d/forward/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

type OpKind uint8

const (
	OpEmitEditorGeometry OpKind = iota + 1
	OpCull
	OpSetupCamera
	OpExecute
	OpDraw
	OpSkybox
	OpSubmit
)

func (k OpKind) String() string {
	switch k {
	case OpEmitEditorGeometry:
		return "emit-editor-geometry"
	case OpCull:
		return "cull"
	case OpSetupCamera:
		return "setup-camera"
	case OpExecute:
		return "execute"
	case OpDraw:
		return "draw"
	case OpSkybox:
		return "skybox"
	case OpSubmit:
		return "submit"
	}
	return "unknown"
}

// Op is one recorded call. Only the fields of its Kind are set.
type Op struct {
	Kind   OpKind
	Camera string

	// OpExecute
	Buffer   string
	Commands []core.Command

	// OpDraw
	Tags      []core.ShaderTagID
	Sorting   core.SortCriteria
	Filtering core.FilteringSettings
	Override  *core.Material
	Calls     []core.DrawCall

	// OpCull
	Renderers int
	Lights    int
}

// Frame is everything recorded between two submits.
type Frame struct {
	Camera string
	Ops    []Op
}

// Kinds lists the op kinds of the frame in order.
func (f *Frame) Kinds() []OpKind {
	out := make([]OpKind, len(f.Ops))
	for i, op := range f.Ops {
		out[i] = op.Kind
	}
	return out
}

// Commands flattens every executed buffer of the frame.
func (f *Frame) Commands() []core.Command {
	var out []core.Command
	for _, op := range f.Ops {
		if op.Kind == OpExecute {
			out = append(out, op.Commands...)
		}
	}
	return out
}

// Draws returns the draw ops of the frame.
func (f *Frame) Draws() []Op {
	var out []Op
	for _, op := range f.Ops {
		if op.Kind == OpDraw {
			out = append(out, op)
		}
	}
	return out
}

// DrawCalls counts draw calls and the renderers they cover.
func (f *Frame) DrawCalls() (calls, renderers int) {
	for _, op := range f.Draws() {
		calls += len(op.Calls)
		for _, c := range op.Calls {
			renderers += len(c.Renderers)
		}
	}
	return
}

func (f *Frame) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "frame %q:", f.Camera)
	for _, op := range f.Ops {
		switch op.Kind {
		case OpExecute:
			for _, c := range op.Commands {
				fmt.Fprintf(&sb, " %s", c)
			}
		case OpDraw:
			n := 0
			for _, c := range op.Calls {
				n += len(c.Renderers)
			}
			fmt.Fprintf(&sb, " draw%s(%d calls, %d renderers)", op.Filtering.RenderQueueRange, len(op.Calls), n)
		case OpCull:
			fmt.Fprintf(&sb, " cull(%d renderers, %d lights)", op.Renderers, op.Lights)
		default:
			fmt.Fprintf(&sb, " %s", op.Kind)
		}
	}
	return sb.String()
}

// Host records pipeline calls against Scene. It is not safe for concurrent
// use.
type Host struct {
	Scene *core.Scene

	logger   forward.Logger
	profiler *core.Profiler
	globals  map[core.PropertyID][]mgl32.Vec4

	camera  *core.Camera
	editor  bool
	pending []Op
	frames  []Frame
}

var _ forward.Context = (*Host)(nil)

func New(scene *core.Scene, logger forward.Logger) *Host {
	if scene == nil {
		scene = core.NewScene()
	}
	if logger == nil {
		logger = forward.NewNopLogger()
	}
	return &Host{
		Scene:    scene,
		logger:   logger,
		profiler: core.NewProfiler(),
		globals:  make(map[core.PropertyID][]mgl32.Vec4),
	}
}

func (h *Host) TryGetCullingParameters(camera *core.Camera) (core.CullingParameters, bool) {
	return camera.TryGetCullingParameters()
}

func (h *Host) EmitWorldGeometryForSceneView(camera *core.Camera) {
	h.editor = true
	h.record(Op{Kind: OpEmitEditorGeometry, Camera: camera.Name})
}

// Cull culls the scene. Editor geometry takes part only if it was emitted
// since the previous cull.
func (h *Host) Cull(params *core.CullingParameters) *core.CullingResult {
	h.profiler.BeginScope("Cull")
	res := h.Scene.Cull(params, h.editor && params.CameraType == core.CameraTypeSceneView)
	h.profiler.EndScope("Cull")
	h.editor = false
	h.record(Op{Kind: OpCull, Renderers: len(res.Renderers), Lights: len(res.VisibleLights)})
	return res
}

func (h *Host) SetupCameraProperties(camera *core.Camera) {
	h.camera = camera
	h.record(Op{Kind: OpSetupCamera, Camera: camera.Name})
}

func (h *Host) DrawRenderers(cull *core.CullingResult, drawing *core.DrawingSettings, filtering *core.FilteringSettings) {
	h.record(Op{
		Kind:      OpDraw,
		Tags:      drawing.ShaderPassNames(),
		Sorting:   drawing.Sorting.Criteria,
		Filtering: *filtering,
		Override:  drawing.OverrideMaterial,
		Calls:     core.BuildDrawCalls(cull, drawing, filtering),
	})
}

func (h *Host) DrawSkybox(camera *core.Camera) {
	h.record(Op{Kind: OpSkybox, Camera: camera.Name})
}

// ExecuteCommandBuffer records a copy of the buffer's commands.
func (h *Host) ExecuteCommandBuffer(cb *core.CommandBuffer) {
	h.record(Op{
		Kind:     OpExecute,
		Buffer:   cb.Name,
		Commands: append([]core.Command(nil), cb.Commands()...),
	})
}

// Submit applies the recorded commands in order and closes the frame.
func (h *Host) Submit() {
	h.record(Op{Kind: OpSubmit})
	for _, op := range h.pending {
		if op.Kind == OpExecute {
			h.apply(op.Commands)
		}
	}

	frame := Frame{Ops: h.pending}
	if h.camera != nil {
		frame.Camera = h.camera.Name
	}
	calls, renderers := frame.DrawCalls()
	h.profiler.AddCount("Frames", 1)
	h.profiler.AddCount("Draw Calls", calls)
	h.profiler.AddCount("Renderers", renderers)
	h.frames = append(h.frames, frame)
	h.pending = nil
	h.camera = nil

	if h.logger.DebugEnabled() {
		h.logger.Debugf("%s", &frame)
	}
}

func (h *Host) apply(cmds []core.Command) {
	for _, c := range cmds {
		switch c.Kind {
		case core.CmdSetGlobalVectorArray:
			h.globals[c.Property] = c.Values
		case core.CmdBeginSample:
			h.profiler.BeginScope(c.Name)
		case core.CmdEndSample:
			h.profiler.EndScope(c.Name)
		}
	}
}

func (h *Host) record(op Op) {
	h.pending = append(h.pending, op)
}

// Global returns the submitted value of a global vector array.
func (h *Host) Global(id core.PropertyID) ([]mgl32.Vec4, bool) {
	v, ok := h.globals[id]
	return v, ok
}

func (h *Host) Profiler() *core.Profiler { return h.profiler }

// Frames returns the submitted frames, oldest first.
func (h *Host) Frames() []Frame { return h.frames }

// Pending returns the ops recorded since the last submit.
func (h *Host) Pending() []Op { return h.pending }

// LastFrame returns the most recent submitted frame, or nil.
func (h *Host) LastFrame() *Frame {
	if len(h.frames) == 0 {
		return nil
	}
	return &h.frames[len(h.frames)-1]
}

// Reset drops recorded frames. Globals and profiler totals are kept.
func (h *Host) Reset() {
	h.frames = nil
	h.pending = nil
}
