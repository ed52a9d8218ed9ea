package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// SortCriteria selects the keys draw calls are ordered by, most significant
// first: render queue, depth, then state grouping.
type SortCriteria uint32

const (
	SortNone                 SortCriteria = 0
	SortRenderQueue          SortCriteria = 1 << 1
	SortBackToFront          SortCriteria = 1 << 2
	SortQuantizedFrontToBack SortCriteria = 1 << 3
	SortOptimizeStateChanges SortCriteria = 1 << 4

	// SortCommonOpaque orders opaque geometry front to back for early depth
	// rejection, grouping by state within a depth bucket.
	SortCommonOpaque = SortRenderQueue | SortQuantizedFrontToBack | SortOptimizeStateChanges
	// SortCommonTransparent orders blended geometry back to front.
	SortCommonTransparent = SortRenderQueue | SortBackToFront | SortOptimizeStateChanges
)

func (c SortCriteria) Has(f SortCriteria) bool { return c&f == f }

// MaxShaderPasses bounds the pass tag list of one DrawingSettings.
const MaxShaderPasses = 16

// MaxDynamicBatchVertices is the largest mesh merged by dynamic batching.
const MaxDynamicBatchVertices = 300

type SortingSettings struct {
	Criteria       SortCriteria
	CameraPosition mgl32.Vec3
	CameraForward  mgl32.Vec3
}

func NewSortingSettings(camera *Camera) SortingSettings {
	return SortingSettings{
		CameraPosition: camera.Position,
		CameraForward:  camera.GetForward(),
	}
}

// DrawingSettings describes how matched renderers are drawn: which pass tags
// to look for, in priority order, how to sort, and how to batch.
type DrawingSettings struct {
	Sorting               SortingSettings
	EnableDynamicBatching bool
	EnableInstancing      bool

	// OverrideMaterial replaces the material of every matched renderer.
	OverrideMaterial          *Material
	OverrideMaterialPassIndex int

	passes []ShaderTagID
}

func NewDrawingSettings(tag ShaderTagID, sorting SortingSettings) DrawingSettings {
	d := DrawingSettings{Sorting: sorting}
	d.SetShaderPassName(0, tag)
	return d
}

// SetShaderPassName sets the tag tried at position index. Lower indices win.
func (d *DrawingSettings) SetShaderPassName(index int, tag ShaderTagID) {
	if index < 0 || index >= MaxShaderPasses {
		panic(fmt.Sprintf("shader pass index %d out of range [0,%d)", index, MaxShaderPasses))
	}
	for len(d.passes) <= index {
		d.passes = append(d.passes, ShaderTagNone)
	}
	d.passes[index] = tag
}

func (d *DrawingSettings) ShaderPassName(index int) ShaderTagID {
	if index < 0 || index >= len(d.passes) {
		return ShaderTagNone
	}
	return d.passes[index]
}

// ShaderPassNames returns a copy of the tag list.
func (d *DrawingSettings) ShaderPassNames() []ShaderTagID {
	return append([]ShaderTagID(nil), d.passes...)
}

// RenderQueueRange is an inclusive range of render queues.
type RenderQueueRange struct {
	Lower int
	Upper int
}

var (
	RenderQueueRangeOpaque      = RenderQueueRange{Lower: 0, Upper: RenderQueueGeometryEnd}
	RenderQueueRangeTransparent = RenderQueueRange{Lower: RenderQueueGeometryEnd + 1, Upper: RenderQueueMax}
	RenderQueueRangeAll         = RenderQueueRange{Lower: 0, Upper: RenderQueueMax}
)

func (r RenderQueueRange) Contains(queue int) bool {
	return queue >= r.Lower && queue <= r.Upper
}

func (r RenderQueueRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.Lower, r.Upper)
}

type FilteringSettings struct {
	RenderQueueRange RenderQueueRange
}

func NewFilteringSettings(r RenderQueueRange) FilteringSettings {
	return FilteringSettings{RenderQueueRange: r}
}

type BatchKind uint8

const (
	BatchNone BatchKind = iota
	BatchDynamic
	BatchInstanced
)

func (k BatchKind) String() string {
	switch k {
	case BatchDynamic:
		return "dynamic"
	case BatchInstanced:
		return "instanced"
	}
	return "none"
}

// DrawCall is one GPU draw: a material pass applied to one or more renderers
// sharing a mesh.
type DrawCall struct {
	Material  *Material
	PassIndex int
	// PassTag is the tag matched on the renderer's own material.
	PassTag   ShaderTagID
	Mesh      *Mesh
	Renderers []*Renderer
	Batch     BatchKind
}

type drawItem struct {
	r     *Renderer
	mat   *Material
	pass  int
	tag   ShaderTagID
	queue int
	depth float32
}

// BuildDrawCalls selects, sorts and batches the renderers of cull for one
// draw pass. A renderer is drawn with the first tag of drawing that its
// material's shader has a pass for; renderers matching none are skipped.
func BuildDrawCalls(cull *CullingResult, drawing *DrawingSettings, filtering *FilteringSettings) []DrawCall {
	if cull == nil {
		return nil
	}
	items := make([]drawItem, 0, len(cull.Renderers))
	for _, r := range cull.Renderers {
		if r.Material == nil || r.Mesh == nil {
			continue
		}
		queue := r.Material.Queue()
		if !filtering.RenderQueueRange.Contains(queue) {
			continue
		}
		tag, pass := matchPass(r.Material.Shader, drawing.passes)
		if pass < 0 {
			continue
		}
		it := drawItem{
			r:     r,
			mat:   r.Material,
			pass:  pass,
			tag:   tag,
			queue: queue,
			depth: r.Center().Sub(drawing.Sorting.CameraPosition).Dot(drawing.Sorting.CameraForward),
		}
		if drawing.OverrideMaterial != nil {
			it.mat = drawing.OverrideMaterial
			it.pass = drawing.OverrideMaterialPassIndex
		}
		items = append(items, it)
	}

	sortDrawItems(items, drawing.Sorting.Criteria)

	var calls []DrawCall
	for _, it := range items {
		if n := len(calls); n > 0 {
			if kind := mergeKind(&calls[n-1], it, drawing); kind != BatchNone {
				calls[n-1].Renderers = append(calls[n-1].Renderers, it.r)
				calls[n-1].Batch = kind
				continue
			}
		}
		calls = append(calls, DrawCall{
			Material:  it.mat,
			PassIndex: it.pass,
			PassTag:   it.tag,
			Mesh:      it.r.Mesh,
			Renderers: []*Renderer{it.r},
		})
	}
	return calls
}

func matchPass(shader *Shader, tags []ShaderTagID) (ShaderTagID, int) {
	for _, tag := range tags {
		if idx := shader.FindPass(tag); idx >= 0 {
			return tag, idx
		}
	}
	return ShaderTagNone, -1
}

// mergeKind reports how it can join call, or BatchNone if it cannot.
// Instancing takes precedence over dynamic batching.
func mergeKind(call *DrawCall, it drawItem, drawing *DrawingSettings) BatchKind {
	if call.Material != it.mat || call.Mesh != it.r.Mesh || call.PassIndex != it.pass {
		return BatchNone
	}
	want := BatchNone
	switch {
	case drawing.EnableInstancing && it.mat.EnableInstancing:
		want = BatchInstanced
	case drawing.EnableDynamicBatching && len(it.r.Mesh.Vertices) <= MaxDynamicBatchVertices:
		if it.r.HasPropertyBlock() || call.Renderers[0].HasPropertyBlock() {
			return BatchNone
		}
		want = BatchDynamic
	}
	if call.Batch != BatchNone && call.Batch != want {
		return BatchNone
	}
	return want
}

// quantizeDepth buckets view depth logarithmically so near objects sort
// finely and far ones coarsely, leaving room for state grouping.
func quantizeDepth(d float32) int32 {
	if d <= 0 {
		return 0
	}
	return int32(math.Floor(math.Log2(float64(d)+1) * 4))
}

func sortDrawItems(items []drawItem, criteria SortCriteria) {
	if criteria == SortNone {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if criteria.Has(SortRenderQueue) && a.queue != b.queue {
			return a.queue < b.queue
		}
		if criteria.Has(SortBackToFront) && a.depth != b.depth {
			return a.depth > b.depth
		}
		if criteria.Has(SortQuantizedFrontToBack) {
			qa, qb := quantizeDepth(a.depth), quantizeDepth(b.depth)
			if qa != qb {
				return qa < qb
			}
		}
		if criteria.Has(SortOptimizeStateChanges) {
			if sa, sb := shaderName(a.mat), shaderName(b.mat); sa != sb {
				return sa < sb
			}
			if a.mat != b.mat {
				return a.mat.ID.String() < b.mat.ID.String()
			}
			if a.r.Mesh != b.r.Mesh {
				return a.r.Mesh.ID.String() < b.r.Mesh.ID.String()
			}
		}
		return false
	})
}

func shaderName(m *Material) string {
	if m.Shader == nil {
		return ""
	}
	return m.Shader.Name
}
