package core

import "sync"

// PropertyID is the handle of a shader property name such as "_Color".
type PropertyID int32

// ShaderTagID is the handle of a shader pass tag such as "SRPDefaultUnlit".
// The zero value is ShaderTagNone and never matches a pass.
type ShaderTagID int32

const ShaderTagNone ShaderTagID = 0

// nameTable interns names into dense, stable handles. Handles start at 1 so the
// zero value of either handle type stays unassigned.
type nameTable struct {
	mu    sync.Mutex
	ids   map[string]int32
	names []string
}

func newNameTable() *nameTable {
	return &nameTable{
		ids:   make(map[string]int32),
		names: []string{""},
	}
}

func (t *nameTable) intern(name string) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids[name]; ok {
		return id
	}
	id := int32(len(t.names))
	t.names = append(t.names, name)
	t.ids[name] = id
	return id
}

func (t *nameTable) name(id int32) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id <= 0 || int(id) >= len(t.names) {
		return ""
	}
	return t.names[id]
}

var (
	propertyNames = newNameTable()
	tagNames      = newNameTable()
)

// PropertyToID resolves a shader property name to its handle. The same name
// always yields the same handle for the lifetime of the process.
func PropertyToID(name string) PropertyID {
	return PropertyID(propertyNames.intern(name))
}

// Name returns the property name the handle was created from.
func (id PropertyID) Name() string { return propertyNames.name(int32(id)) }

// NewShaderTagID resolves a pass tag name to its handle.
func NewShaderTagID(name string) ShaderTagID {
	if name == "" {
		return ShaderTagNone
	}
	return ShaderTagID(tagNames.intern(name))
}

func (id ShaderTagID) Name() string { return tagNames.name(int32(id)) }

func (id ShaderTagID) String() string { return id.Name() }
