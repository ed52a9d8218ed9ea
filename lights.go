package forward

import (
	"github.com/gekko3d/forward/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxVisibleLights is the number of light slots uploaded to shaders.
const MaxVisibleLights = 4

// attenuationEpsilon keeps 1/range² finite for zero-range lights.
const attenuationEpsilon = 0.00001

// Global shader arrays written by the light pass.
var (
	VisibleLightColorsID                = core.PropertyToID("_VisibleLightColors")
	VisibleLightDirectionsOrPositionsID = core.PropertyToID("_VisibleLightDirectionsOrPositions")
	VisibleLightAttenuationsID          = core.PropertyToID("_VisibleLightAttenuations")
)

// PackedLight is one light slot as shaders see it. Color is the only field
// that says whether the slot is in use: a slot past the active count has a
// zero color but keeps the direction and attenuation some earlier frame wrote
// there. Shaders must gate on Color.
type PackedLight struct {
	Color mgl32.Vec4
	// DirectionOrPosition is the direction toward a directional light (w=0),
	// or the world position of a point or spot light (w=1).
	DirectionOrPosition mgl32.Vec4
	// Attenuation.x is 1/range² for point and spot lights, 0 otherwise.
	Attenuation mgl32.Vec4
}

// PackedLights is the fixed-size light table of one pipeline. It is reused
// across frames and cameras, which is what makes stale slot data possible.
type PackedLights struct {
	Slots  [MaxVisibleLights]PackedLight
	active int
}

// Collect packs up to maxLights visible lights of cull into the table, in
// culling order, and returns how many slots are active. Extra lights are
// dropped. Colors of all remaining slots are zeroed; their other fields are
// left as they were.
func (p *PackedLights) Collect(cull *core.CullingResult, maxLights int) int {
	maxLights = min(max(maxLights, 0), len(p.Slots))
	n := 0
	if cull != nil {
		n = min(maxLights, len(cull.VisibleLights))
	}

	for i := 0; i < n; i++ {
		light := &cull.VisibleLights[i]
		slot := &p.Slots[i]
		slot.Color = light.FinalColor
		attenuation := mgl32.Vec4{}
		if light.Type == core.LightTypeDirectional {
			dir := light.LocalToWorld.Col(2)
			dir[0], dir[1], dir[2] = -dir[0], -dir[1], -dir[2]
			slot.DirectionOrPosition = dir
		} else {
			slot.DirectionOrPosition = light.LocalToWorld.Col(3)
			attenuation[0] = 1.0 / max(light.Range*light.Range, attenuationEpsilon)
		}
		slot.Attenuation = attenuation
	}
	for i := n; i < len(p.Slots); i++ {
		p.Slots[i].Color = mgl32.Vec4{}
	}
	p.active = n
	return n
}

// Active is the number of slots filled by the last Collect.
func (p PackedLights) Active() int { return p.active }

// Arrays splits the table into the three per-field arrays shaders read.
func (p PackedLights) Arrays() (colors, directionsOrPositions, attenuations [MaxVisibleLights]mgl32.Vec4) {
	for i, s := range p.Slots {
		colors[i] = s.Color
		directionsOrPositions[i] = s.DirectionOrPosition
		attenuations[i] = s.Attenuation
	}
	return
}

// Upload records the three light arrays as shader globals.
func (p *PackedLights) Upload(cb *core.CommandBuffer) {
	colors, dirs, atten := p.Arrays()
	cb.SetGlobalVectorArray(VisibleLightColorsID, colors[:])
	cb.SetGlobalVectorArray(VisibleLightDirectionsOrPositionsID, dirs[:])
	cb.SetGlobalVectorArray(VisibleLightAttenuationsID, atten[:])
}
