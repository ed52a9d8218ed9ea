package forward

import "github.com/gekko3d/forward/rt/core"

// Context is the host rendering context a Pipeline drives. Implementations
// own the scene, culling and GPU submission; see rt/softhost and rt/gpu.
//
// Draw, skybox and executed command buffers are recorded in call order and
// take effect on Submit. ExecuteCommandBuffer must copy what it needs: the
// pipeline clears and reuses the buffer right after.
type Context interface {
	TryGetCullingParameters(camera *core.Camera) (core.CullingParameters, bool)
	// EmitWorldGeometryForSceneView makes editor-only geometry take part in
	// the next Cull.
	EmitWorldGeometryForSceneView(camera *core.Camera)
	Cull(params *core.CullingParameters) *core.CullingResult
	SetupCameraProperties(camera *core.Camera)
	DrawRenderers(cull *core.CullingResult, drawing *core.DrawingSettings, filtering *core.FilteringSettings)
	DrawSkybox(camera *core.Camera)
	ExecuteCommandBuffer(cb *core.CommandBuffer)
	Submit()
}
