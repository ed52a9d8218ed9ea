package forward

import (
	"sync"

	"github.com/gekko3d/forward/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// InstanceColorID is the property InstancedColor writes.
var InstanceColorID = core.PropertyToID("_Color")

// One block serves every InstancedColor; renderers copy it on attach.
var (
	sharedBlockMu sync.Mutex
	sharedBlock   = core.NewPropertyBlock()
)

// InstancedColor tints a single renderer through a property block, leaving
// its material shared with other renderers. Renderers tinted this way are
// still instanced but no longer dynamically batched.
type InstancedColor struct {
	Color    mgl32.Vec4
	renderer *core.Renderer
}

// NewInstancedColor attaches color to r right away.
func NewInstancedColor(r *core.Renderer, color mgl32.Vec4) *InstancedColor {
	c := &InstancedColor{Color: color, renderer: r}
	c.Validate()
	return c
}

func (c *InstancedColor) Renderer() *core.Renderer { return c.renderer }

func (c *InstancedColor) SetColor(color mgl32.Vec4) {
	c.Color = color
	c.Validate()
}

// Validate pushes Color to the renderer. Call it after editing Color
// directly.
func (c *InstancedColor) Validate() {
	if c.renderer == nil {
		return
	}
	sharedBlockMu.Lock()
	defer sharedBlockMu.Unlock()
	sharedBlock.SetColor(InstanceColorID, c.Color)
	c.renderer.SetPropertyBlock(sharedBlock)
}
