package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type LightType uint8

const (
	LightTypeDirectional LightType = iota
	LightTypePoint
	LightTypeSpot
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	}
	return "unknown"
}

// Light is a scene light. Color is linear; intensity scales it linearly.
type Light struct {
	ID        uuid.UUID
	Name      string
	Type      LightType
	Color     mgl32.Vec3
	Intensity float32
	Range     float32 // point and spot
	SpotAngle float32 // full cone angle in degrees, spot only
	Transform *Transform
	Enabled   bool
}

func NewLight(name string, typ LightType) *Light {
	return &Light{
		ID:        uuid.New(),
		Name:      name,
		Type:      typ,
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 1,
		Range:     10,
		SpotAngle: 30,
		Transform: NewTransform(),
		Enabled:   true,
	}
}

// FinalColor is the linear color scaled by intensity, alpha included.
func (l *Light) FinalColor() mgl32.Vec4 {
	return l.Color.Vec4(1).Mul(l.Intensity)
}

// VisibleLight is a light that survived culling, frozen for one frame.
type VisibleLight struct {
	Type         LightType
	FinalColor   mgl32.Vec4
	LocalToWorld mgl32.Mat4
	Range        float32
	SpotAngle    float32
	Light        *Light
}

func newVisibleLight(l *Light) VisibleLight {
	return VisibleLight{
		Type:         l.Type,
		FinalColor:   l.FinalColor(),
		LocalToWorld: l.Transform.ObjectToWorld(),
		Range:        l.Range,
		SpotAngle:    l.SpotAngle,
		Light:        l,
	}
}
