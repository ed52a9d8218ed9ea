package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/forward/rt/core"
	"github.com/gekko3d/forward/rt/shaders"
)

const depthFormat = wgpu.TextureFormatDepth24Plus

type pipelineSet struct {
	layout    *wgpu.BindGroupLayout
	byKind    map[pipelineKind]*wgpu.RenderPipeline
	sky       *wgpu.RenderPipeline
	skyLayout *wgpu.BindGroupLayout
}

var meshLayout = wgpu.VertexBufferLayout{
	ArrayStride: uint64(unsafe.Sizeof(core.Vertex{})),
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
	},
}

var alphaBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

func createPipelines(device *wgpu.Device, format wgpu.TextureFormat) (*pipelineSet, error) {
	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ForwardGlobalsBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: globalsSize,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: objectSize,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("globals bind group layout: %w", err)
	}
	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "ForwardPipelineLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return nil, fmt.Errorf("forward pipeline layout: %w", err)
	}

	forwardModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "ForwardShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ForwardWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("forward shader: %w", err)
	}
	errorModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "ErrorShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ErrorWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("error shader: %w", err)
	}
	skyModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "SkyboxShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.SkyboxWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("skybox shader: %w", err)
	}

	meshPipeline := func(label string, module *wgpu.ShaderModule, blend *wgpu.BlendState, depthWrite bool) (*wgpu.RenderPipeline, error) {
		return device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
			Label:  label,
			Layout: pipelineLayout,
			Vertex: wgpu.VertexState{
				Module:     module,
				EntryPoint: "vs_main",
				Buffers:    []wgpu.VertexBufferLayout{meshLayout},
			},
			Fragment: &wgpu.FragmentState{
				Module:     module,
				EntryPoint: "fs_main",
				Targets: []wgpu.ColorTargetState{{
					Format:    format,
					Blend:     blend,
					WriteMask: wgpu.ColorWriteMaskAll,
				}},
			},
			Primitive: wgpu.PrimitiveState{
				Topology:  wgpu.PrimitiveTopologyTriangleList,
				FrontFace: wgpu.FrontFaceCCW,
				CullMode:  wgpu.CullModeNone,
			},
			DepthStencil: &wgpu.DepthStencilState{
				Format:            depthFormat,
				DepthWriteEnabled: depthWrite,
				DepthCompare:      wgpu.CompareFunctionLess,
				StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
				StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			},
			Multisample: wgpu.MultisampleState{
				Count: 1,
				Mask:  0xFFFFFFFF,
			},
		})
	}

	set := &pipelineSet{layout: layout, byKind: make(map[pipelineKind]*wgpu.RenderPipeline)}
	if set.byKind[pipelineOpaque], err = meshPipeline("ForwardOpaque", forwardModule, nil, true); err != nil {
		return nil, fmt.Errorf("opaque pipeline: %w", err)
	}
	if set.byKind[pipelineTransparent], err = meshPipeline("ForwardTransparent", forwardModule, alphaBlend, false); err != nil {
		return nil, fmt.Errorf("transparent pipeline: %w", err)
	}
	if set.byKind[pipelineError], err = meshPipeline("InternalError", errorModule, nil, true); err != nil {
		return nil, fmt.Errorf("error pipeline: %w", err)
	}

	set.skyLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "SkyboxBGL",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: globalsSize,
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("skybox bind group layout: %w", err)
	}
	skyPipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "SkyboxPipelineLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{set.skyLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("skybox pipeline layout: %w", err)
	}
	set.sky, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Skybox",
		Layout: skyPipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     skyModule,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     skyModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: false,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("skybox pipeline: %w", err)
	}
	return set, nil
}
