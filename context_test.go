package forward

import (
	"github.com/gekko3d/forward/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

type mockOp struct {
	Kind     string
	Camera   string
	Commands []core.Command
	Tags     []core.ShaderTagID
	Sorting  core.SortCriteria
	Queue    core.RenderQueueRange
	Override *core.Material
	Calls    []core.DrawCall
	Cull     *core.CullingResult
}

// mockContext records every call the pipeline makes against a scene.
type mockContext struct {
	scene  *core.Scene
	reject map[string]bool
	editor bool
	ops    []mockOp
}

func newMockContext(scene *core.Scene) *mockContext {
	if scene == nil {
		scene = core.NewScene()
	}
	return &mockContext{scene: scene, reject: map[string]bool{}}
}

func (m *mockContext) TryGetCullingParameters(camera *core.Camera) (core.CullingParameters, bool) {
	if m.reject[camera.Name] {
		return core.CullingParameters{}, false
	}
	return camera.TryGetCullingParameters()
}

func (m *mockContext) EmitWorldGeometryForSceneView(camera *core.Camera) {
	m.editor = true
	m.ops = append(m.ops, mockOp{Kind: "emit", Camera: camera.Name})
}

func (m *mockContext) Cull(params *core.CullingParameters) *core.CullingResult {
	res := m.scene.Cull(params, m.editor)
	m.editor = false
	m.ops = append(m.ops, mockOp{Kind: "cull", Cull: res})
	return res
}

func (m *mockContext) SetupCameraProperties(camera *core.Camera) {
	m.ops = append(m.ops, mockOp{Kind: "setup", Camera: camera.Name})
}

func (m *mockContext) DrawRenderers(cull *core.CullingResult, drawing *core.DrawingSettings, filtering *core.FilteringSettings) {
	m.ops = append(m.ops, mockOp{
		Kind:     "draw",
		Tags:     drawing.ShaderPassNames(),
		Sorting:  drawing.Sorting.Criteria,
		Queue:    filtering.RenderQueueRange,
		Override: drawing.OverrideMaterial,
		Calls:    core.BuildDrawCalls(cull, drawing, filtering),
		Cull:     cull,
	})
}

func (m *mockContext) DrawSkybox(camera *core.Camera) {
	m.ops = append(m.ops, mockOp{Kind: "skybox", Camera: camera.Name})
}

func (m *mockContext) ExecuteCommandBuffer(cb *core.CommandBuffer) {
	m.ops = append(m.ops, mockOp{
		Kind:     "execute",
		Commands: append([]core.Command(nil), cb.Commands()...),
	})
}

func (m *mockContext) Submit() {
	m.ops = append(m.ops, mockOp{Kind: "submit"})
}

func (m *mockContext) kinds() []string {
	out := make([]string, len(m.ops))
	for i, op := range m.ops {
		out[i] = op.Kind
	}
	return out
}

func (m *mockContext) find(kind string) []mockOp {
	var out []mockOp
	for _, op := range m.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// commands flattens every executed command buffer in order.
func (m *mockContext) commands() []core.Command {
	var out []core.Command
	for _, op := range m.find("execute") {
		out = append(out, op.Commands...)
	}
	return out
}

func (m *mockContext) reset() { m.ops = nil }

// lookDownY returns a camera at the origin looking along -Y.
func lookDownY(name string) *core.Camera {
	cam := core.NewCamera(name)
	cam.Position = mgl32.Vec3{}
	return cam
}

func cubeAt(name string, y float32, mat *core.Material) *core.Renderer {
	r := core.NewRenderer(name, core.NewCubeMesh(), mat)
	r.Transform.SetPosition(mgl32.Vec3{0, y, 0})
	return r
}
