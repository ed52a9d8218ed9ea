package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Vertex is the mesh vertex layout shared with the gpu host.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

type Mesh struct {
	ID       uuid.UUID
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Bounds   [2]mgl32.Vec3 // Min, Max in object space
}

func NewMesh(name string, vertices []Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		ID:       uuid.New(),
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	m.RecalculateBounds()
	return m
}

func (m *Mesh) RecalculateBounds() {
	if len(m.Vertices) == 0 {
		m.Bounds = [2]mgl32.Vec3{}
		return
	}
	minB, maxB := m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			minB[k] = min(minB[k], v.Position[k])
			maxB[k] = max(maxB[k], v.Position[k])
		}
	}
	m.Bounds = [2]mgl32.Vec3{minB, maxB}
}

// NewCubeMesh returns a unit cube centered on the origin with per-face normals.
func NewCubeMesh() *Mesh {
	faces := [6]struct{ n, u, v mgl32.Vec3 }{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}},
	}
	var vertices []Vertex
	var indices []uint32
	for _, f := range faces {
		base := uint32(len(vertices))
		c := f.n.Mul(0.5)
		u, v := f.u.Mul(0.5), f.v.Mul(0.5)
		vertices = append(vertices,
			Vertex{Position: c.Sub(u).Sub(v), Normal: f.n},
			Vertex{Position: c.Add(u).Sub(v), Normal: f.n},
			Vertex{Position: c.Add(u).Add(v), Normal: f.n},
			Vertex{Position: c.Sub(u).Add(v), Normal: f.n},
		)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh("Cube", vertices, indices)
}

// NewQuadMesh returns a unit quad in the XY plane facing +Z.
func NewQuadMesh() *Mesh {
	n := mgl32.Vec3{0, 0, 1}
	return NewMesh("Quad", []Vertex{
		{Position: mgl32.Vec3{-0.5, -0.5, 0}, Normal: n},
		{Position: mgl32.Vec3{0.5, -0.5, 0}, Normal: n},
		{Position: mgl32.Vec3{0.5, 0.5, 0}, Normal: n},
		{Position: mgl32.Vec3{-0.5, 0.5, 0}, Normal: n},
	}, []uint32{0, 1, 2, 0, 2, 3})
}

// Renderer is a drawable scene object: a mesh, a material and a transform.
type Renderer struct {
	ID        uuid.UUID
	Name      string
	Transform *Transform
	Mesh      *Mesh
	Material  *Material
	WorldAABB *[2]mgl32.Vec3 // Min, Max

	props  *PropertyBlock
	cached boundsKey
}

// boundsKey is everything WorldAABB was computed from. Fields assigned
// directly, without a setter, still invalidate the cache through it.
type boundsKey struct {
	mesh     *Mesh
	bounds   [2]mgl32.Vec3
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
}

func (r *Renderer) currentBounds() boundsKey {
	k := boundsKey{
		mesh:     r.Mesh,
		position: r.Transform.Position,
		rotation: r.Transform.Rotation,
		scale:    r.Transform.Scale,
	}
	if r.Mesh != nil {
		k.bounds = r.Mesh.Bounds
	}
	return k
}

func NewRenderer(name string, mesh *Mesh, material *Material) *Renderer {
	return &Renderer{
		ID:        uuid.New(),
		Name:      name,
		Transform: NewTransform(),
		Mesh:      mesh,
		Material:  material,
	}
}

// SetPropertyBlock copies the block's values onto the renderer. A nil or empty
// block removes any overrides.
func (r *Renderer) SetPropertyBlock(b *PropertyBlock) {
	if b.IsEmpty() {
		r.props = nil
		return
	}
	if r.props == nil {
		r.props = NewPropertyBlock()
	}
	r.props.CopyFrom(b)
}

// GetPropertyBlock copies the renderer's overrides into dst.
func (r *Renderer) GetPropertyBlock(dst *PropertyBlock) {
	dst.CopyFrom(r.props)
}

func (r *Renderer) HasPropertyBlock() bool {
	return !r.props.IsEmpty()
}

// Color resolves id against the property block first, then the material.
func (r *Renderer) Color(id PropertyID) mgl32.Vec4 {
	if c, ok := r.props.GetColor(id); ok {
		return c
	}
	if r.Material != nil {
		if c, ok := r.Material.GetColor(id); ok {
			return c
		}
	}
	return mgl32.Vec4{1, 1, 1, 1}
}

// UpdateWorldAABB refreshes the world bounds if the transform, the mesh or
// the mesh bounds changed. It reports whether the bounds were recomputed.
func (r *Renderer) UpdateWorldAABB() bool {
	key := r.currentBounds()
	if !r.Transform.Dirty && r.WorldAABB != nil && key == r.cached {
		return false
	}
	r.cached = key
	if r.Mesh == nil {
		r.WorldAABB = nil
		r.Transform.Dirty = false
		return true
	}

	minB, maxB := r.Mesh.Bounds[0], r.Mesh.Bounds[1]
	corners := [8]mgl32.Vec3{
		{minB.X(), minB.Y(), minB.Z()},
		{maxB.X(), minB.Y(), minB.Z()},
		{minB.X(), maxB.Y(), minB.Z()},
		{maxB.X(), maxB.Y(), minB.Z()},
		{minB.X(), minB.Y(), maxB.Z()},
		{maxB.X(), minB.Y(), maxB.Z()},
		{minB.X(), maxB.Y(), maxB.Z()},
		{maxB.X(), maxB.Y(), maxB.Z()},
	}

	o2w := r.Transform.ObjectToWorld()

	inf := float32(1e20)
	wMin := mgl32.Vec3{inf, inf, inf}
	wMax := mgl32.Vec3{-inf, -inf, -inf}
	for _, c := range corners {
		wc := o2w.Mul4x1(c.Vec4(1.0)).Vec3()
		wMin = mgl32.Vec3{min(wMin.X(), wc.X()), min(wMin.Y(), wc.Y()), min(wMin.Z(), wc.Z())}
		wMax = mgl32.Vec3{max(wMax.X(), wc.X()), max(wMax.Y(), wc.Y()), max(wMax.Z(), wc.Z())}
	}

	r.WorldAABB = &[2]mgl32.Vec3{wMin, wMax}
	r.Transform.Dirty = false
	return true
}

// Center is the midpoint of the world bounds, or the transform position when
// bounds are unknown.
func (r *Renderer) Center() mgl32.Vec3 {
	if r.WorldAABB == nil {
		return r.Transform.Position
	}
	return r.WorldAABB[0].Add(r.WorldAABB[1]).Mul(0.5)
}
