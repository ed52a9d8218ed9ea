package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type CameraType uint8

const (
	CameraTypeGame CameraType = iota
	CameraTypeSceneView
	CameraTypePreview
)

func (t CameraType) String() string {
	switch t {
	case CameraTypeGame:
		return "game"
	case CameraTypeSceneView:
		return "scene-view"
	case CameraTypePreview:
		return "preview"
	}
	return "unknown"
}

// ClearFlags selects what a camera clears before drawing.
type ClearFlags uint8

const (
	// ClearFlagsSkybox clears depth and color, then draws the sky.
	ClearFlagsSkybox ClearFlags = iota + 1
	ClearFlagsColor
	ClearFlagsDepth
	ClearFlagsNothing
)

func (f ClearFlags) String() string {
	switch f {
	case ClearFlagsSkybox:
		return "skybox"
	case ClearFlagsColor:
		return "color"
	case ClearFlagsDepth:
		return "depth"
	case ClearFlagsNothing:
		return "nothing"
	}
	return "unknown"
}

// Camera is a read-only view description for one frame. It uses the Z-up
// convention: yaw turns around +Z and pitch lifts toward +Z.
type Camera struct {
	Name string
	Type CameraType

	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	// FieldOfView is the vertical angle in degrees, perspective only.
	FieldOfView      float32
	Orthographic     bool
	OrthographicSize float32 // half height of the view volume
	Aspect           float32
	Near             float32
	Far              float32

	ClearFlags      ClearFlags
	BackgroundColor mgl32.Vec4
}

func NewCamera(name string) *Camera {
	return &Camera{
		Name:            name,
		Type:            CameraTypeGame,
		Position:        mgl32.Vec3{0, 2, 20},
		FieldOfView:     60,
		Aspect:          16.0 / 9.0,
		Near:            0.1,
		Far:             1000,
		ClearFlags:      ClearFlagsSkybox,
		BackgroundColor: mgl32.Vec4{0.19, 0.3, 0.47, 0},
	}
}

func (c *Camera) GetForward() mgl32.Vec3 {
	// Z-up: Forward in XY plane, Z for pitch
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Pitch)) * math.Sin(float64(c.Yaw))),
		float32(-math.Cos(float64(c.Pitch)) * math.Cos(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
	}
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	eye := c.Position
	target := eye.Add(c.GetForward())
	up := mgl32.Vec3{0, 0, 1} // Z-up
	return mgl32.LookAtV(eye, target, up)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	if c.Orthographic {
		h := c.OrthographicSize
		w := h * c.Aspect
		return mgl32.Ortho(-w, w, -h, h, c.Near, c.Far)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FieldOfView), c.Aspect, c.Near, c.Far)
}

func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.GetProjectionMatrix().Mul4(c.GetViewMatrix())
}

// CullingParameters is everything Scene.Cull needs from a camera.
type CullingParameters struct {
	ViewProj   mgl32.Mat4
	Planes     [6]mgl32.Vec4
	Position   mgl32.Vec3
	Forward    mgl32.Vec3
	CameraType CameraType
}

// TryGetCullingParameters derives culling parameters from the camera. It
// reports false when the projection is degenerate and nothing can be culled
// against it.
func (c *Camera) TryGetCullingParameters() (CullingParameters, bool) {
	if !c.projectionValid() {
		return CullingParameters{}, false
	}
	vp := c.ViewProjection()
	for _, v := range vp {
		if !finite(v) {
			return CullingParameters{}, false
		}
	}
	if det := vp.Det(); det == 0 || !finite(det) {
		return CullingParameters{}, false
	}
	return CullingParameters{
		ViewProj:   vp,
		Planes:     ExtractFrustum(vp),
		Position:   c.Position,
		Forward:    c.GetForward(),
		CameraType: c.Type,
	}, true
}

func (c *Camera) projectionValid() bool {
	if !finite(c.Aspect) || c.Aspect <= 0 {
		return false
	}
	if !finite(c.Near) || !finite(c.Far) || c.Far <= c.Near {
		return false
	}
	if c.Orthographic {
		return finite(c.OrthographicSize) && c.OrthographicSize > 0
	}
	return c.Near > 0 && c.FieldOfView > 0 && c.FieldOfView < 180
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ExtractFrustum extracts the 6 planes of the frustum from the view-projection matrix.
// Returns planes in order: Left, Right, Bottom, Top, Near, Far.
// Plane is Ax + By + Cz + D = 0, normals point inside.
func ExtractFrustum(vp mgl32.Mat4) [6]mgl32.Vec4 {
	var planes [6]mgl32.Vec4

	row := func(r int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(r, 0), vp.At(r, 1), vp.At(r, 2), vp.At(r, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	planes[0] = r3.Add(r0) // Left
	planes[1] = r3.Sub(r0) // Right
	planes[2] = r3.Add(r1) // Bottom
	planes[3] = r3.Sub(r1) // Top
	planes[4] = r3.Add(r2) // Near (OpenGL-style -1..1)
	planes[5] = r3.Sub(r2) // Far

	for i := range planes {
		length := planes[i].Vec3().Len()
		if length > 0 {
			planes[i] = planes[i].Mul(1.0 / length)
		}
	}

	return planes
}
