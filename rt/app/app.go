// Package app runs a forward pipeline in a glfw window.
package app

import (
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/forward"
	"github.com/gekko3d/forward/rt/core"
	"github.com/gekko3d/forward/rt/gpu"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Host     *gpu.Host
	Pipeline *forward.Pipeline
	Scene    *core.Scene
	Cameras  []*core.Camera
	Logger   forward.Logger

	// OrbitSpeed turns the first camera around the origin, in radians per
	// second.
	OrbitSpeed float32

	pending chan *forward.PipelineAsset

	LastTime       float64
	LastRenderTime float64
	FrameCount     int
	FPS            float64
	FPSTime        float64
}

func NewApp(window *glfw.Window, scene *core.Scene, pipeline *forward.Pipeline, logger forward.Logger) *App {
	if logger == nil {
		logger = forward.NewNopLogger()
	}
	return &App{
		Window:   window,
		Scene:    scene,
		Pipeline: pipeline,
		Logger:   logger,
		pending:  make(chan *forward.PipelineAsset, 1),
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	a.Host, err = gpu.NewHost(a.Device, a.Config.Format, a.Config.Width, a.Config.Height, a.Scene, a.Logger)
	if err != nil {
		return fmt.Errorf("gpu host: %w", err)
	}
	a.updateAspect()

	a.LastTime = glfw.GetTime()
	return nil
}

func (a *App) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.Config.Width = uint32(w)
	a.Config.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	if err := a.Host.Resize(a.Config.Width, a.Config.Height); err != nil {
		a.Logger.Errorf("resize: %v", err)
	}
	a.updateAspect()
}

func (a *App) updateAspect() {
	if a.Config.Height == 0 {
		return
	}
	aspect := float32(a.Config.Width) / float32(a.Config.Height)
	for _, cam := range a.Cameras {
		cam.Aspect = aspect
	}
}

// ReloadPipeline asks the render loop to replace its pipeline with one built
// from asset. It may be called from any goroutine; only the latest request
// is kept.
func (a *App) ReloadPipeline(asset *forward.PipelineAsset) {
	for {
		select {
		case a.pending <- asset:
			return
		default:
		}
		select {
		case <-a.pending:
		default:
		}
	}
}

func (a *App) Update() {
	select {
	case asset := <-a.pending:
		a.Pipeline = asset.CreatePipeline(a.Logger)
		a.Logger.Infof("pipeline recreated: dynamic batching=%t instancing=%t diagnostics=%s",
			asset.DynamicBatching, asset.Instancing, asset.Diagnostics)
	default:
	}

	now := glfw.GetTime()
	dt := float32(now - a.LastTime)
	a.LastTime = now

	if a.OrbitSpeed != 0 && len(a.Cameras) > 0 {
		cam := a.Cameras[0]
		cam.Yaw += a.OrbitSpeed * dt
		r := float32(math.Hypot(float64(cam.Position.X()), float64(cam.Position.Y())))
		// Stay on the circle, facing the origin.
		cam.Position[0] = -r * float32(math.Sin(float64(cam.Yaw)))
		cam.Position[1] = r * float32(math.Cos(float64(cam.Yaw)))
	}
}

func (a *App) Render() {
	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Logger.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Logger.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	a.Host.SetTarget(view)
	a.Pipeline.Render(a.Host, a.Cameras)
	a.Host.SetTarget(nil)
	a.Surface.Present()

	now := glfw.GetTime()
	if a.LastRenderTime > 0 {
		a.FrameCount++
		a.FPSTime += now - a.LastRenderTime
		if a.FPSTime >= 1.0 {
			a.FPS = float64(a.FrameCount) / a.FPSTime
			a.FrameCount = 0
			a.FPSTime = 0
			a.Window.SetTitle(fmt.Sprintf("forward (%.0f fps)", a.FPS))
			if a.Logger.DebugEnabled() {
				a.Logger.Debugf("%s", a.Host.Profiler().GetStatsString())
			}
			a.Host.Profiler().Reset()
		}
	}
	a.LastRenderTime = now
}

func (a *App) Release() {
	if a.Host != nil {
		a.Host.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
