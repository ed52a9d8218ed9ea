package forward

import (
	"github.com/gekko3d/forward/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// legacyPassTags are the built-in pass tags this pipeline does not shade, in
// the order the fallback tries them.
var legacyPassTags = []core.ShaderTagID{
	core.TagForwardBase,
	core.TagPrepassBase,
	core.TagAlways,
	core.TagVertex,
	core.TagVertexLMRGBM,
	core.TagVertexLM,
}

// ErrorColorID is the color property of the diagnostic material.
var ErrorColorID = core.PropertyToID("_Color")

// ErrorColor is the magenta unsupported materials are drawn with.
var ErrorColor = mgl32.Vec4{1, 0, 1, 1}

// FallbackPass draws whatever the regular passes could not.
type FallbackPass interface {
	DrawFallback(ctx Context, cull *core.CullingResult, camera *core.Camera)
}

// NopFallback is the fallback of production builds: it draws nothing.
type NopFallback struct{}

func (NopFallback) DrawFallback(Context, *core.CullingResult, *core.Camera) {}

// ErrorFallback redraws renderers that only have legacy passes with a flat
// error material so they stand out during development.
type ErrorFallback struct {
	shaders  *core.ShaderLibrary
	logger   Logger
	material *core.Material
}

func NewErrorFallback(shaders *core.ShaderLibrary, logger Logger) *ErrorFallback {
	if shaders == nil {
		shaders = core.DefaultShaders
	}
	return &ErrorFallback{shaders: shaders, logger: namedLogger(logger, "fallback")}
}

// Material returns the error material, creating it on first use. The same
// material is returned for the life of the fallback.
func (f *ErrorFallback) Material() *core.Material {
	if f.material != nil {
		return f.material
	}
	shader := f.shaders.Find(core.ShaderInternalError)
	if shader == nil {
		f.logger.Warnf("shader %q not found, using a stand-in", core.ShaderInternalError)
		shader = &core.Shader{
			Name:        core.ShaderInternalError,
			Passes:      []core.ShaderPass{{Name: "ERROR", LightMode: core.TagAlways}},
			RenderQueue: core.RenderQueueGeometry,
		}
	}
	mat := core.NewMaterial("InternalError", shader)
	mat.HideFlags = core.HideAndDontSave
	mat.SetColor(ErrorColorID, ErrorColor)
	f.material = mat
	f.logger.Infof("created diagnostic material %s", mat.ID)
	return mat
}

func (f *ErrorFallback) DrawFallback(ctx Context, cull *core.CullingResult, camera *core.Camera) {
	DrawBatchPlanner{}.Draw(ctx, cull, camera, DrawPass{
		Tags:     legacyPassTags,
		Sorting:  core.SortCommonOpaque,
		Queue:    core.RenderQueueRangeAll,
		Override: f.Material(),
	})
}
