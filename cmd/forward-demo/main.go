package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"runtime"

	"github.com/gekko3d/forward"
	"github.com/gekko3d/forward/rt/app"
	"github.com/gekko3d/forward/rt/core"
	"github.com/gekko3d/forward/rt/softhost"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	assetPath := flag.String("asset", "", "Pipeline asset (TOML); created with defaults if missing")
	headless := flag.Bool("headless", false, "Render on the CPU recording host instead of opening a window")
	frames := flag.Int("frames", 3, "Frames to render in headless mode")
	sceneView := flag.Bool("scene-view", false, "Add an editor scene-view camera")
	orbit := flag.Float64("orbit", 0.2, "Main camera orbit speed in radians per second")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger := forward.NewDefaultLogger("forward", *debug)

	asset, err := loadAsset(*assetPath, logger)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	scene := buildScene()
	cameras := buildCameras(*sceneView)

	if *headless {
		host := runHeadless(scene, cameras, asset.CreatePipeline(logger), *frames)
		for i := range host.Frames() {
			logger.Infof("%s", &host.Frames()[i])
		}
		logger.Infof("%s", host.Profiler().GetStatsString())
		return
	}

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(1280, 720, "forward", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	application := app.NewApp(window, scene, asset.CreatePipeline(logger), logger)
	application.Cameras = cameras
	application.OrbitSpeed = float32(*orbit)
	if err := application.Init(); err != nil {
		panic(err)
	}
	defer application.Release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	if *assetPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := forward.WatchPipelineAsset(ctx, *assetPath, logger, application.ReloadPipeline); err != nil {
				logger.Errorf("%v", err)
			}
		}()
	}

	for !window.ShouldClose() {
		glfw.PollEvents()
		application.Update()
		application.Render()
	}
}

// loadAsset reads the asset at path, writing a default one first if the file
// does not exist. An empty path yields the default asset.
func loadAsset(path string, logger forward.Logger) (*forward.PipelineAsset, error) {
	def := &forward.PipelineAsset{DynamicBatching: true, Instancing: true}
	if path == "" {
		return def, nil
	}
	asset, err := forward.LoadPipelineAsset(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := def.Save(path); err != nil {
			return nil, err
		}
		logger.Infof("wrote default pipeline asset to %s", path)
		return def, nil
	}
	return asset, err
}

func runHeadless(scene *core.Scene, cameras []*core.Camera, pipeline *forward.Pipeline, frames int) *softhost.Host {
	host := softhost.New(scene, nil)
	for i := 0; i < frames; i++ {
		pipeline.Render(host, cameras)
	}
	return host
}
