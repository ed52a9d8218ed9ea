package forward

import (
	"fmt"
	"strings"

	"github.com/gekko3d/forward/rt/core"
)

// RenderCameraSample names both the pipeline's command buffer and the
// profiling sample wrapped around each camera.
const RenderCameraSample = "Render Camera"

// DiagnosticsMode selects whether the error fallback pass runs.
type DiagnosticsMode uint8

const (
	// DiagnosticsAuto follows the build: on unless built with -tags production.
	DiagnosticsAuto DiagnosticsMode = iota
	DiagnosticsOn
	DiagnosticsOff
)

// Enabled reports whether the fallback pass runs. Production builds never
// run it, whatever the mode.
func (m DiagnosticsMode) Enabled() bool {
	return DiagnosticsBuild && m != DiagnosticsOff
}

func (m DiagnosticsMode) String() string {
	switch m {
	case DiagnosticsAuto:
		return "auto"
	case DiagnosticsOn:
		return "on"
	case DiagnosticsOff:
		return "off"
	}
	return fmt.Sprintf("DiagnosticsMode(%d)", uint8(m))
}

func (m DiagnosticsMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *DiagnosticsMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "auto":
		*m = DiagnosticsAuto
	case "on":
		*m = DiagnosticsOn
	case "off":
		*m = DiagnosticsOff
	default:
		return fmt.Errorf("%w: unknown diagnostics mode %q", ErrInvalidAsset, text)
	}
	return nil
}

// PipelineConfig is fixed when the pipeline is created.
type PipelineConfig struct {
	DynamicBatching bool
	Instancing      bool
	Diagnostics     DiagnosticsMode
	// Shaders resolves the diagnostic shader; nil means core.DefaultShaders.
	Shaders *core.ShaderLibrary
}

// Pipeline is a forward renderer. Each camera is culled once, then drawn in
// four passes from that one culling result: opaque, skybox, transparent and
// the diagnostic fallback.
//
// A Pipeline is not safe for concurrent use: it reuses one command buffer and
// one light table for every camera.
type Pipeline struct {
	config   PipelineConfig
	logger   Logger
	buffer   *core.CommandBuffer
	lights   PackedLights
	planner  DrawBatchPlanner
	fallback FallbackPass
	cull     *core.CullingResult
}

func NewPipeline(config PipelineConfig, logger Logger) *Pipeline {
	logger = namedLogger(logger, "pipeline")
	p := &Pipeline{
		config: config,
		logger: logger,
		buffer: core.NewCommandBuffer(RenderCameraSample),
		planner: DrawBatchPlanner{
			DynamicBatching: config.DynamicBatching,
			Instancing:      config.Instancing,
		},
		fallback: NopFallback{},
	}
	if config.Diagnostics.Enabled() {
		p.fallback = NewErrorFallback(config.Shaders, logger)
	}
	logger.Debugf("pipeline created: dynamic batching=%t instancing=%t diagnostics=%t",
		config.DynamicBatching, config.Instancing, config.Diagnostics.Enabled())
	return p
}

func (p *Pipeline) Config() PipelineConfig { return p.config }

// Fallback returns the fallback pass in use.
func (p *Pipeline) Fallback() FallbackPass { return p.fallback }

// Lights returns a copy of the light table as of the last rendered camera.
func (p *Pipeline) Lights() PackedLights { return p.lights }

// Render renders cameras one after the other, in order. A camera that cannot
// be culled is skipped; the others still render.
func (p *Pipeline) Render(ctx Context, cameras []*core.Camera) {
	for _, camera := range cameras {
		p.RenderOne(ctx, camera)
	}
}

// RenderOne renders a single camera and submits it. It reports false, having
// recorded nothing, when the camera has no valid culling parameters.
func (p *Pipeline) RenderOne(ctx Context, camera *core.Camera) bool {
	if ctx == nil {
		panic("forward: RenderOne called with a nil Context")
	}
	params, ok := ctx.TryGetCullingParameters(camera)
	if !ok {
		p.logger.Warnf("camera %q has no valid culling parameters, skipped", camera.Name)
		return false
	}

	if DiagnosticsBuild && camera.Type == core.CameraTypeSceneView {
		ctx.EmitWorldGeometryForSceneView(camera)
	}

	p.cull = ctx.Cull(&params)
	defer func() { p.cull = nil }()

	ctx.SetupCameraProperties(camera)

	clearFlags := camera.ClearFlags
	p.buffer.ClearRenderTarget(
		clearFlags == core.ClearFlagsDepth || clearFlags == core.ClearFlagsSkybox,
		clearFlags == core.ClearFlagsColor || clearFlags == core.ClearFlagsSkybox,
		camera.BackgroundColor,
	)

	active := p.lights.Collect(p.cull, MaxVisibleLights)

	p.buffer.BeginSample(RenderCameraSample)
	p.lights.Upload(p.buffer)
	// Globals must reach the context before the draws that read them.
	ctx.ExecuteCommandBuffer(p.buffer)
	p.buffer.Clear()

	unlit := []core.ShaderTagID{core.TagSRPDefaultUnlit}
	p.planner.Draw(ctx, p.cull, camera, DrawPass{
		Tags:    unlit,
		Sorting: core.SortCommonOpaque,
		Queue:   core.RenderQueueRangeOpaque,
	})

	ctx.DrawSkybox(camera)

	p.planner.Draw(ctx, p.cull, camera, DrawPass{
		Tags:    unlit,
		Sorting: core.SortCommonTransparent,
		Queue:   core.RenderQueueRangeTransparent,
	})

	p.fallback.DrawFallback(ctx, p.cull, camera)

	p.buffer.EndSample(RenderCameraSample)
	ctx.ExecuteCommandBuffer(p.buffer)
	p.buffer.Clear()

	ctx.Submit()

	p.logger.Debugf("camera %q: %d renderers, %d/%d lights packed",
		camera.Name, len(p.cull.Renderers), active, len(p.cull.VisibleLights))
	return true
}
