package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// HideFlags control editor visibility and persistence of an object.
type HideFlags uint8

const (
	HideInHierarchy HideFlags = 1 << iota
	HideInInspector
	DontSaveInEditor
	NotEditable
	DontSaveInBuild
	DontUnloadUnusedAsset

	DontSave        = DontSaveInEditor | DontSaveInBuild | DontUnloadUnusedAsset
	HideAndDontSave = HideInHierarchy | DontSave | NotEditable
)

// PropColor is the shader property most materials expose for their tint.
var PropColor = PropertyToID("_Color")

// QueueFromShader makes a material use its shader's render queue.
const QueueFromShader = -1

type Material struct {
	ID               uuid.UUID
	Name             string
	Shader           *Shader
	RenderQueue      int
	EnableInstancing bool
	HideFlags        HideFlags

	colors map[PropertyID]mgl32.Vec4
}

func NewMaterial(name string, shader *Shader) *Material {
	return &Material{
		ID:          uuid.New(),
		Name:        name,
		Shader:      shader,
		RenderQueue: QueueFromShader,
		colors:      map[PropertyID]mgl32.Vec4{PropColor: {1, 1, 1, 1}},
	}
}

// Queue is the effective render queue of the material.
func (m *Material) Queue() int {
	if m.RenderQueue != QueueFromShader {
		return m.RenderQueue
	}
	if m.Shader != nil {
		return m.Shader.RenderQueue
	}
	return RenderQueueGeometry
}

func (m *Material) SetColor(id PropertyID, c mgl32.Vec4) {
	if m.colors == nil {
		m.colors = make(map[PropertyID]mgl32.Vec4)
	}
	m.colors[id] = c
}

func (m *Material) GetColor(id PropertyID) (mgl32.Vec4, bool) {
	c, ok := m.colors[id]
	return c, ok
}

// Saved reports whether the material is persisted with the scene.
func (m *Material) Saved() bool {
	return m.HideFlags&DontSaveInEditor == 0
}

// PropertyBlock holds per-renderer property overrides applied on top of the
// material without creating a new material.
type PropertyBlock struct {
	colors map[PropertyID]mgl32.Vec4
}

func NewPropertyBlock() *PropertyBlock {
	return &PropertyBlock{colors: make(map[PropertyID]mgl32.Vec4)}
}

func (b *PropertyBlock) SetColor(id PropertyID, c mgl32.Vec4) {
	if b.colors == nil {
		b.colors = make(map[PropertyID]mgl32.Vec4)
	}
	b.colors[id] = c
}

func (b *PropertyBlock) GetColor(id PropertyID) (mgl32.Vec4, bool) {
	if b == nil {
		return mgl32.Vec4{}, false
	}
	c, ok := b.colors[id]
	return c, ok
}

func (b *PropertyBlock) Clear() {
	for k := range b.colors {
		delete(b.colors, k)
	}
}

func (b *PropertyBlock) IsEmpty() bool {
	return b == nil || len(b.colors) == 0
}

// CopyFrom replaces the contents of b with those of src.
func (b *PropertyBlock) CopyFrom(src *PropertyBlock) {
	b.Clear()
	if src == nil {
		return
	}
	for k, v := range src.colors {
		b.SetColor(k, v)
	}
}
