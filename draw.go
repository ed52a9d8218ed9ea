package forward

import "github.com/gekko3d/forward/rt/core"

// DrawPass is one draw invocation against a culling result.
type DrawPass struct {
	// Tags are tried in order on each renderer's shader; the first pass
	// found is used.
	Tags     []core.ShaderTagID
	Sorting  core.SortCriteria
	Queue    core.RenderQueueRange
	Override *core.Material
}

// DrawBatchPlanner turns DrawPass descriptions into host draw calls. One
// culling result serves every pass of a camera; the planner never culls.
type DrawBatchPlanner struct {
	DynamicBatching bool
	Instancing      bool
}

// Settings builds the drawing and filtering settings for pass as seen from
// camera.
func (p DrawBatchPlanner) Settings(camera *core.Camera, pass DrawPass) (core.DrawingSettings, core.FilteringSettings) {
	sorting := core.NewSortingSettings(camera)
	sorting.Criteria = pass.Sorting

	first := core.ShaderTagNone
	if len(pass.Tags) > 0 {
		first = pass.Tags[0]
	}
	drawing := core.NewDrawingSettings(first, sorting)
	for i := 1; i < len(pass.Tags); i++ {
		drawing.SetShaderPassName(i, pass.Tags[i])
	}
	drawing.EnableDynamicBatching = p.DynamicBatching
	drawing.EnableInstancing = p.Instancing
	drawing.OverrideMaterial = pass.Override

	return drawing, core.NewFilteringSettings(pass.Queue)
}

// Draw records pass on ctx. Nothing is submitted.
func (p DrawBatchPlanner) Draw(ctx Context, cull *core.CullingResult, camera *core.Camera, pass DrawPass) {
	drawing, filtering := p.Settings(camera, pass)
	ctx.DrawRenderers(cull, &drawing, &filtering)
}
