package core

import (
	"sort"
	"sync"
)

// Render queue buckets. Lower queues draw first.
const (
	RenderQueueBackground  = 1000
	RenderQueueGeometry    = 2000
	RenderQueueAlphaTest   = 2450
	RenderQueueGeometryEnd = 2500
	RenderQueueTransparent = 3000
	RenderQueueOverlay     = 4000
	RenderQueueMax         = 5000
)

// Pass tags known to the pipeline and its diagnostics.
var (
	TagSRPDefaultUnlit = NewShaderTagID("SRPDefaultUnlit")
	TagForwardBase     = NewShaderTagID("ForwardBase")
	TagPrepassBase     = NewShaderTagID("PrepassBase")
	TagAlways          = NewShaderTagID("Always")
	TagVertex          = NewShaderTagID("Vertex")
	TagVertexLMRGBM    = NewShaderTagID("VertexLMRGBM")
	TagVertexLM        = NewShaderTagID("VertexLM")
)

// Built-in shader names.
const (
	ShaderUnlit            = "Forward/Unlit"
	ShaderUnlitTransparent = "Forward/UnlitTransparent"
	ShaderLegacyDiffuse    = "Legacy/Diffuse"
	ShaderLegacyVertexLit  = "Legacy/VertexLit"
	ShaderInternalError    = "Hidden/InternalErrorShader"
)

// ShaderPass is one technique of a shader, selected by its LightMode tag.
type ShaderPass struct {
	Name      string
	LightMode ShaderTagID
}

type Shader struct {
	Name        string
	Passes      []ShaderPass
	RenderQueue int
}

// FindPass returns the index of the first pass tagged with tag, or -1.
func (s *Shader) FindPass(tag ShaderTagID) int {
	if s == nil || tag == ShaderTagNone {
		return -1
	}
	for i, p := range s.Passes {
		if p.LightMode == tag {
			return i
		}
	}
	return -1
}

// ShaderLibrary resolves shaders by name.
type ShaderLibrary struct {
	mu      sync.RWMutex
	shaders map[string]*Shader
}

func NewShaderLibrary() *ShaderLibrary {
	return &ShaderLibrary{shaders: make(map[string]*Shader)}
}

// NewBuiltinShaderLibrary returns a library holding the built-in shaders.
func NewBuiltinShaderLibrary() *ShaderLibrary {
	lib := NewShaderLibrary()
	lib.Register(&Shader{
		Name:        ShaderUnlit,
		Passes:      []ShaderPass{{Name: "Unlit", LightMode: TagSRPDefaultUnlit}},
		RenderQueue: RenderQueueGeometry,
	})
	lib.Register(&Shader{
		Name:        ShaderUnlitTransparent,
		Passes:      []ShaderPass{{Name: "Unlit", LightMode: TagSRPDefaultUnlit}},
		RenderQueue: RenderQueueTransparent,
	})
	lib.Register(&Shader{
		Name: ShaderLegacyDiffuse,
		Passes: []ShaderPass{
			{Name: "FORWARD", LightMode: TagForwardBase},
			{Name: "META", LightMode: TagAlways},
		},
		RenderQueue: RenderQueueGeometry,
	})
	lib.Register(&Shader{
		Name: ShaderLegacyVertexLit,
		Passes: []ShaderPass{
			{Name: "VERTEX", LightMode: TagVertex},
			{Name: "LIGHTMAP", LightMode: TagVertexLM},
			{Name: "LIGHTMAP_RGBM", LightMode: TagVertexLMRGBM},
		},
		RenderQueue: RenderQueueGeometry,
	})
	lib.Register(&Shader{
		Name:        ShaderInternalError,
		Passes:      []ShaderPass{{Name: "ERROR", LightMode: TagAlways}},
		RenderQueue: RenderQueueGeometry,
	})
	return lib
}

// Register adds s, replacing any shader of the same name.
func (l *ShaderLibrary) Register(s *Shader) {
	l.mu.Lock()
	l.shaders[s.Name] = s
	l.mu.Unlock()
}

// Find returns the named shader or nil.
func (l *ShaderLibrary) Find(name string) *Shader {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.shaders[name]
}

func (l *ShaderLibrary) Names() []string {
	l.mu.RLock()
	names := make([]string, 0, len(l.shaders))
	for n := range l.shaders {
		names = append(names, n)
	}
	l.mu.RUnlock()
	sort.Strings(names)
	return names
}

// DefaultShaders is the process-wide library used when none is configured.
var DefaultShaders = NewBuiltinShaderLibrary()
