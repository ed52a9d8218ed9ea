package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type CommandKind uint8

const (
	CmdClearRenderTarget CommandKind = iota + 1
	CmdSetGlobalVectorArray
	CmdBeginSample
	CmdEndSample
)

func (k CommandKind) String() string {
	switch k {
	case CmdClearRenderTarget:
		return "clear"
	case CmdSetGlobalVectorArray:
		return "set-global-vector-array"
	case CmdBeginSample:
		return "begin-sample"
	case CmdEndSample:
		return "end-sample"
	}
	return "unknown"
}

// Command is one recorded operation. Only the fields of its Kind are set.
type Command struct {
	Kind CommandKind

	ClearDepth bool
	ClearColor bool
	Color      mgl32.Vec4

	Property PropertyID
	Values   []mgl32.Vec4

	Name string
}

func (c Command) String() string {
	switch c.Kind {
	case CmdClearRenderTarget:
		return fmt.Sprintf("clear(depth=%t, color=%t, %v)", c.ClearDepth, c.ClearColor, c.Color)
	case CmdSetGlobalVectorArray:
		return fmt.Sprintf("set-global(%s, %d)", c.Property.Name(), len(c.Values))
	case CmdBeginSample, CmdEndSample:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Name)
	}
	return c.Kind.String()
}

// CommandBuffer is a named, ordered list of deferred commands. Executing it on
// a context does not clear it; Clear resets it for reuse without freeing.
type CommandBuffer struct {
	Name string
	cmds []Command
}

func NewCommandBuffer(name string) *CommandBuffer {
	return &CommandBuffer{Name: name}
}

func (cb *CommandBuffer) ClearRenderTarget(clearDepth, clearColor bool, color mgl32.Vec4) {
	cb.cmds = append(cb.cmds, Command{
		Kind:       CmdClearRenderTarget,
		ClearDepth: clearDepth,
		ClearColor: clearColor,
		Color:      color,
	})
}

// SetGlobalVectorArray records a copy of values; later edits to the slice do
// not affect the command.
func (cb *CommandBuffer) SetGlobalVectorArray(id PropertyID, values []mgl32.Vec4) {
	cb.cmds = append(cb.cmds, Command{
		Kind:     CmdSetGlobalVectorArray,
		Property: id,
		Values:   append([]mgl32.Vec4(nil), values...),
	})
}

func (cb *CommandBuffer) BeginSample(name string) {
	cb.cmds = append(cb.cmds, Command{Kind: CmdBeginSample, Name: name})
}

func (cb *CommandBuffer) EndSample(name string) {
	cb.cmds = append(cb.cmds, Command{Kind: CmdEndSample, Name: name})
}

func (cb *CommandBuffer) Clear() {
	for i := range cb.cmds {
		cb.cmds[i] = Command{}
	}
	cb.cmds = cb.cmds[:0]
}

func (cb *CommandBuffer) Len() int { return len(cb.cmds) }

// Commands returns the recorded commands. The slice is only valid until the
// next call that modifies the buffer.
func (cb *CommandBuffer) Commands() []Command { return cb.cmds }
