package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Skybox is the sky gradient drawn for cameras that clear to skybox.
type Skybox struct {
	Top     mgl32.Vec4
	Horizon mgl32.Vec4
}

type Scene struct {
	Renderers []*Renderer
	Lights    []*Light
	Skybox    Skybox

	// EditorGeometry is only visible to scene-view cameras, and only when the
	// host emitted it for the current cull.
	EditorGeometry []*Renderer
}

func NewScene() *Scene {
	return &Scene{
		Renderers: []*Renderer{},
		Skybox: Skybox{
			Top:     mgl32.Vec4{0.25, 0.45, 0.8, 1},
			Horizon: mgl32.Vec4{0.75, 0.82, 0.9, 1},
		},
	}
}

func (s *Scene) AddRenderer(r *Renderer) {
	s.Renderers = append(s.Renderers, r)
}

func (s *Scene) RemoveRenderer(r *Renderer) {
	for i, o := range s.Renderers {
		if o == r {
			s.Renderers = append(s.Renderers[:i], s.Renderers[i+1:]...)
			return
		}
	}
}

func (s *Scene) AddLight(l *Light) {
	s.Lights = append(s.Lights, l)
}

func (s *Scene) RemoveLight(l *Light) {
	for i, o := range s.Lights {
		if o == l {
			s.Lights = append(s.Lights[:i], s.Lights[i+1:]...)
			return
		}
	}
}

func (s *Scene) AddEditorGeometry(r *Renderer) {
	s.EditorGeometry = append(s.EditorGeometry, r)
}

// CullingResult is the visible set of one camera for one frame. It is never
// mutated after Cull returns it.
type CullingResult struct {
	Renderers      []*Renderer
	VisibleLights  []VisibleLight
	CameraPosition mgl32.Vec3
	CameraForward  mgl32.Vec3
}

// Cull returns the renderers and lights potentially visible through the
// frustum in params. Lights keep scene order. withEditor adds the editor
// geometry to the candidate renderers.
func (s *Scene) Cull(params *CullingParameters, withEditor bool) *CullingResult {
	res := &CullingResult{
		CameraPosition: params.Position,
		CameraForward:  params.Forward,
	}

	cullRenderer := func(r *Renderer) {
		r.UpdateWorldAABB()
		if r.WorldAABB != nil && AABBInFrustum(*r.WorldAABB, params.Planes) {
			res.Renderers = append(res.Renderers, r)
		}
	}
	for _, r := range s.Renderers {
		cullRenderer(r)
	}
	if withEditor {
		for _, r := range s.EditorGeometry {
			cullRenderer(r)
		}
	}

	for _, l := range s.Lights {
		if !l.Enabled {
			continue
		}
		if l.Type != LightTypeDirectional && !SphereInFrustum(l.Transform.Position, l.Range, params.Planes) {
			continue
		}
		res.VisibleLights = append(res.VisibleLights, newVisibleLight(l))
	}
	return res
}

// AABBInFrustum checks if an AABB is visible within the frustum defined by 6 planes.
// Planes are expected to be in Ax+By+Cz+D=0 form, with the normal pointing INSIDE.
func AABBInFrustum(aabb [2]mgl32.Vec3, planes [6]mgl32.Vec4) bool {
	for i := 0; i < 6; i++ {
		plane := planes[i]
		// Test the corner furthest along the normal: if even that one is
		// behind the plane, the whole box is outside.
		var p mgl32.Vec3
		for k := 0; k < 3; k++ {
			if plane[k] > 0 {
				p[k] = aabb[1][k]
			} else {
				p[k] = aabb[0][k]
			}
		}

		dist := plane[0]*p[0] + plane[1]*p[1] + plane[2]*p[2] + plane[3]
		if dist < 0 {
			return false
		}
	}
	return true
}

// SphereInFrustum reports whether a sphere touches the frustum. Planes must be
// normalized.
func SphereInFrustum(center mgl32.Vec3, radius float32, planes [6]mgl32.Vec4) bool {
	for _, plane := range planes {
		if plane.Dot(center.Vec4(1)) < -radius {
			return false
		}
	}
	return true
}
