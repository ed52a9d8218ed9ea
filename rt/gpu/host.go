// Package gpu implements forward.Context on WebGPU.
package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/forward"
	"github.com/gekko3d/forward/rt/core"
)

const minObjectCapacity = 256

type gpuMesh struct {
	vertex     *wgpu.Buffer
	index      *wgpu.Buffer
	indexCount uint32
}

// Host renders a core.Scene into a target view. Each camera records into its
// own command encoder, which Submit finishes and submits. Host is not safe
// for concurrent use.
type Host struct {
	Scene  *core.Scene
	Device *wgpu.Device
	Queue  *wgpu.Queue

	logger    forward.Logger
	profiler  *core.Profiler
	pipelines *pipelineSet

	globalsBuf   *wgpu.Buffer
	objectsBuf   *wgpu.Buffer
	objectCap    int
	bindGroup    *wgpu.BindGroup
	skyBindGroup *wgpu.BindGroup

	depthTex  *wgpu.Texture
	depthView *wgpu.TextureView
	width     uint32
	height    uint32

	meshes  map[*core.Mesh]*gpuMesh
	warned  map[*core.Material]bool
	frame   *frameState
	objects []objectData
	target  *wgpu.TextureView
	encoder *wgpu.CommandEncoder
	editor  bool
}

var _ forward.Context = (*Host)(nil)

// NewHost creates the GPU resources for rendering into views of the given
// format and size.
func NewHost(device *wgpu.Device, format wgpu.TextureFormat, width, height uint32, scene *core.Scene, logger forward.Logger) (*Host, error) {
	if scene == nil {
		scene = core.NewScene()
	}
	if logger == nil {
		logger = forward.NewNopLogger()
	}
	pipelines, err := createPipelines(device, format)
	if err != nil {
		return nil, err
	}
	h := &Host{
		Scene:     scene,
		Device:    device,
		Queue:     device.GetQueue(),
		logger:    logger,
		profiler:  core.NewProfiler(),
		pipelines: pipelines,
		meshes:    make(map[*core.Mesh]*gpuMesh),
		warned:    make(map[*core.Material]bool),
	}
	h.frame = newFrameState(h.profiler)

	h.globalsBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ForwardGlobalsUB",
		Size:  globalsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("globals buffer: %w", err)
	}
	h.skyBindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "SkyboxBG",
		Layout: pipelines.skyLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: h.globalsBuf, Size: globalsSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("skybox bind group: %w", err)
	}
	if err := h.ensureObjectCapacity(minObjectCapacity); err != nil {
		return nil, err
	}
	if err := h.Resize(width, height); err != nil {
		return nil, err
	}
	return h, nil
}

// Resize recreates the depth buffer. Zero sizes are ignored.
func (h *Host) Resize(width, height uint32) error {
	if width == 0 || height == 0 || (width == h.width && height == h.height) {
		return nil
	}
	if h.depthView != nil {
		h.depthView.Release()
		h.depthTex.Release()
	}
	tex, err := h.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "ForwardDepth",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("depth texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		return fmt.Errorf("depth view: %w", err)
	}
	h.depthTex, h.depthView = tex, view
	h.width, h.height = width, height
	return nil
}

// SetTarget sets the view the next cameras render into, usually the current
// surface texture.
func (h *Host) SetTarget(view *wgpu.TextureView) {
	h.target = view
}

func (h *Host) Profiler() *core.Profiler { return h.profiler }

func (h *Host) TryGetCullingParameters(camera *core.Camera) (core.CullingParameters, bool) {
	return camera.TryGetCullingParameters()
}

func (h *Host) EmitWorldGeometryForSceneView(camera *core.Camera) {
	h.editor = true
}

// Cull culls the scene and makes sure the object buffer can hold every
// renderer it returns in all passes of the frame.
func (h *Host) Cull(params *core.CullingParameters) *core.CullingResult {
	h.profiler.BeginScope("Cull")
	res := h.Scene.Cull(params, h.editor && params.CameraType == core.CameraTypeSceneView)
	h.profiler.EndScope("Cull")
	h.editor = false

	// A renderer is drawn at most twice: by its own pass and by the fallback.
	if err := h.ensureObjectCapacity(2 * len(res.Renderers)); err != nil {
		panic(err)
	}
	return res
}

func (h *Host) SetupCameraProperties(camera *core.Camera) {
	if h.target == nil {
		panic("gpu: SetupCameraProperties called without a target view")
	}
	h.frame.setCamera(camera, h.Scene.Skybox)
	h.objects = h.objects[:0]
	encoder, err := h.Device.CreateCommandEncoder(nil)
	if err != nil {
		panic(fmt.Errorf("gpu: command encoder: %w", err))
	}
	h.encoder = encoder
}

func (h *Host) ExecuteCommandBuffer(cb *core.CommandBuffer) {
	for _, id := range h.frame.apply(cb.Commands()) {
		h.logger.Warnf("gpu: global %q is not bound by any shader", id.Name())
	}
}

func (h *Host) beginPass(label string) *wgpu.RenderPassEncoder {
	colorOp, depthOp, clear := h.frame.takeLoadOps()
	return h.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       h.target,
			LoadOp:     colorOp,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clear,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            h.depthView,
			DepthLoadOp:     depthOp,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
}

func endPass(pass *wgpu.RenderPassEncoder) {
	if err := pass.End(); err != nil {
		panic(fmt.Errorf("gpu: render pass: %w", err))
	}
	pass.Release()
}

func (h *Host) DrawRenderers(cull *core.CullingResult, drawing *core.DrawingSettings, filtering *core.FilteringSettings) {
	calls := core.BuildDrawCalls(cull, drawing, filtering)
	if len(calls) == 0 && !h.frame.pendingClear() {
		return
	}

	pass := h.beginPass("ForwardDraw")
	defer endPass(pass)

	drawn := 0
	for i := range calls {
		call := &calls[i]
		kind := pipelineFor(call.Material)
		if kind == pipelineNone {
			if !h.warned[call.Material] {
				h.warned[call.Material] = true
				h.logger.Warnf("gpu: no pipeline for %s", materialLabel(call.Material))
			}
			continue
		}
		mesh, err := h.uploadMesh(call.Mesh)
		if err != nil {
			panic(err)
		}
		first := uint32(len(h.objects))
		h.objects = objectsFor(call, h.objects)
		count := uint32(len(call.Renderers))

		pass.SetPipeline(h.pipelines.byKind[kind])
		pass.SetBindGroup(0, h.bindGroup, nil)
		pass.SetVertexBuffer(0, mesh.vertex, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(mesh.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		// Batched renderers share one draw; each reads its own transform
		// from the object buffer by instance index.
		pass.DrawIndexed(mesh.indexCount, count, 0, 0, first)
		drawn++
	}
	h.profiler.AddCount("Draw Calls", drawn)
}

// DrawSkybox fills the background with the scene's sky gradient when the
// camera clears to skybox.
func (h *Host) DrawSkybox(camera *core.Camera) {
	if camera.ClearFlags != core.ClearFlagsSkybox {
		return
	}
	pass := h.beginPass("Skybox")
	defer endPass(pass)
	pass.SetPipeline(h.pipelines.sky)
	pass.SetBindGroup(0, h.skyBindGroup, nil)
	pass.Draw(3, 1, 0, 0)
}

// Submit writes the frame's globals and objects and submits the encoder.
func (h *Host) Submit() {
	if h.encoder == nil {
		return
	}
	if h.frame.pendingClear() {
		endPass(h.beginPass("Clear"))
	}

	h.Queue.WriteBuffer(h.globalsBuf, 0, wgpu.ToBytes([]globalsData{h.frame.globals}))
	if len(h.objects) > 0 {
		h.Queue.WriteBuffer(h.objectsBuf, 0, wgpu.ToBytes(h.objects))
	}

	cmd, err := h.encoder.Finish(nil)
	if err != nil {
		panic(fmt.Errorf("gpu: finish: %w", err))
	}
	h.Queue.Submit(cmd)
	cmd.Release()
	h.encoder.Release()
	h.encoder = nil
	h.profiler.AddCount("Frames", 1)
}

func (h *Host) ensureObjectCapacity(n int) error {
	if n <= h.objectCap && h.objectsBuf != nil {
		return nil
	}
	capacity := max(n+n/2, minObjectCapacity)
	buf, err := h.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ForwardObjectsSB",
		Size:  uint64(capacity * objectSize),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("object buffer: %w", err)
	}
	bg, err := h.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "ForwardGlobalsBG",
		Layout: h.pipelines.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: h.globalsBuf, Size: globalsSize},
			{Binding: 1, Buffer: buf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		buf.Release()
		return fmt.Errorf("object bind group: %w", err)
	}
	if h.objectsBuf != nil {
		h.bindGroup.Release()
		h.objectsBuf.Release()
	}
	h.objectsBuf, h.bindGroup, h.objectCap = buf, bg, capacity
	h.logger.Debugf("gpu: object buffer holds %d objects", capacity)
	return nil
}

func (h *Host) uploadMesh(m *core.Mesh) (*gpuMesh, error) {
	if gm, ok := h.meshes[m]; ok {
		return gm, nil
	}
	vertex, err := h.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    m.Name + " Vertex Buffer",
		Contents: wgpu.ToBytes(m.Vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: mesh %q vertices: %w", m.Name, err)
	}
	index, err := h.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    m.Name + " Index Buffer",
		Contents: wgpu.ToBytes(m.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vertex.Release()
		return nil, fmt.Errorf("gpu: mesh %q indices: %w", m.Name, err)
	}
	gm := &gpuMesh{vertex: vertex, index: index, indexCount: uint32(len(m.Indices))}
	h.meshes[m] = gm
	return gm, nil
}

// Release frees every GPU resource the host created.
func (h *Host) Release() {
	for _, m := range h.meshes {
		m.vertex.Release()
		m.index.Release()
	}
	h.meshes = map[*core.Mesh]*gpuMesh{}
	if h.depthView != nil {
		h.depthView.Release()
		h.depthTex.Release()
	}
	if h.bindGroup != nil {
		h.bindGroup.Release()
	}
	if h.skyBindGroup != nil {
		h.skyBindGroup.Release()
	}
	if h.objectsBuf != nil {
		h.objectsBuf.Release()
	}
	if h.globalsBuf != nil {
		h.globalsBuf.Release()
	}
}
