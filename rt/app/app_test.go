package app

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/forward"
	"github.com/gekko3d/forward/rt/core"
	"github.com/stretchr/testify/assert"
)

func TestReloadPipelineKeepsLatest(t *testing.T) {
	a := NewApp(nil, core.NewScene(), nil, nil)

	a.ReloadPipeline(&forward.PipelineAsset{Instancing: true})
	a.ReloadPipeline(&forward.PipelineAsset{DynamicBatching: true})

	select {
	case got := <-a.pending:
		assert.True(t, got.DynamicBatching)
		assert.False(t, got.Instancing)
	default:
		t.Fatal("no pending pipeline")
	}
	assert.Empty(t, a.pending)
}

func TestUpdateAspect(t *testing.T) {
	a := NewApp(nil, core.NewScene(), nil, nil)
	a.Cameras = []*core.Camera{core.NewCamera("a"), core.NewCamera("b")}
	a.Config = &wgpu.SurfaceConfiguration{Width: 800, Height: 400}

	a.updateAspect()
	for _, cam := range a.Cameras {
		assert.Equal(t, float32(2), cam.Aspect)
	}

	a.Config.Height = 0
	a.updateAspect()
	assert.Equal(t, float32(2), a.Cameras[0].Aspect)
}
