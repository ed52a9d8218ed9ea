package main

import (
	"fmt"

	"github.com/gekko3d/forward"
	"github.com/gekko3d/forward/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// buildScene lays out a grid of tinted cubes on a floor, a row of glass
// cubes, one cube with a legacy shader and six lights, two more than the
// pipeline packs.
func buildScene() *core.Scene {
	scene := core.NewScene()
	shaders := core.DefaultShaders

	floorMat := core.NewMaterial("floor", shaders.Find(core.ShaderUnlit))
	floorMat.SetColor(core.PropColor, mgl32.Vec4{0.6, 0.6, 0.6, 1})
	floor := core.NewRenderer("floor", core.NewQuadMesh(), floorMat)
	floor.Transform.SetScale(mgl32.Vec3{40, 40, 1})
	floor.Transform.SetPosition(mgl32.Vec3{0, 0, -0.5})
	scene.AddRenderer(floor)

	cubeMesh := core.NewCubeMesh()
	stone := core.NewMaterial("stone", shaders.Find(core.ShaderUnlit))
	stone.EnableInstancing = true
	for x := -3; x <= 3; x++ {
		for y := -3; y <= 3; y++ {
			r := core.NewRenderer(fmt.Sprintf("cube %d,%d", x, y), cubeMesh, stone)
			r.Transform.SetPosition(mgl32.Vec3{float32(x) * 2.5, float32(y) * 2.5, 0})
			scene.AddRenderer(r)
			forward.NewInstancedColor(r, mgl32.Vec4{
				0.5 + float32(x)/6,
				0.5 + float32(y)/6,
				0.8,
				1,
			})
		}
	}

	glass := core.NewMaterial("glass", shaders.Find(core.ShaderUnlitTransparent))
	glass.SetColor(core.PropColor, mgl32.Vec4{0.4, 0.8, 1, 0.35})
	for i := -2; i <= 2; i++ {
		r := core.NewRenderer(fmt.Sprintf("glass %d", i), cubeMesh, glass)
		r.Transform.SetPosition(mgl32.Vec3{float32(i) * 3, 10, 1.5})
		r.Transform.SetScale(mgl32.Vec3{2, 0.2, 2})
		scene.AddRenderer(r)
	}

	legacy := core.NewRenderer("legacy", cubeMesh, core.NewMaterial("legacy", shaders.Find(core.ShaderLegacyDiffuse)))
	legacy.Transform.SetPosition(mgl32.Vec3{0, 0, 3})
	scene.AddRenderer(legacy)

	gizmo := core.NewRenderer("origin gizmo", cubeMesh, core.NewMaterial("gizmo", shaders.Find(core.ShaderUnlit)))
	gizmo.Transform.SetScale(mgl32.Vec3{0.2, 0.2, 6})
	gizmo.Transform.SetPosition(mgl32.Vec3{0, 0, 3})
	scene.AddEditorGeometry(gizmo)

	sun := core.NewLight("sun", core.LightTypeDirectional)
	sun.Color = mgl32.Vec3{1, 0.95, 0.85}
	sun.Intensity = 0.8
	sun.Transform.LookAlong(mgl32.Vec3{-0.3, 0.5, -1})
	scene.AddLight(sun)

	colors := []mgl32.Vec3{{1, 0.2, 0.2}, {0.2, 1, 0.2}, {0.2, 0.2, 1}, {1, 1, 0.2}, {0.2, 1, 1}}
	for i, c := range colors {
		l := core.NewLight(fmt.Sprintf("lamp %d", i), core.LightTypePoint)
		l.Color = c
		l.Intensity = 6
		l.Range = 8
		l.Transform.SetPosition(mgl32.Vec3{float32(i-2) * 5, -4, 2})
		scene.AddLight(l)
	}
	return scene
}

func buildCameras(sceneView bool) []*core.Camera {
	cam := core.NewCamera("main")
	cam.Position = mgl32.Vec3{0, 24, 12}
	cam.Pitch = -0.45
	cameras := []*core.Camera{cam}

	if sceneView {
		editor := core.NewCamera("scene view")
		editor.Type = core.CameraTypeSceneView
		editor.Position = mgl32.Vec3{0, 18, 6}
		editor.Pitch = -0.2
		editor.ClearFlags = core.ClearFlagsColor
		cameras = append(cameras, editor)
	}
	return cameras
}
