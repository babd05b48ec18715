package wgpu

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flexbatch"
	"github.com/gogpu/flexbatch/render"
)

// Embedded batch shader sources, one per position variant.
//
//go:embed shaders/batch2d.wgsl
var batch2DShaderSource string

//go:embed shaders/batch3d.wgsl
var batch3DShaderSource string

// batchUniformSize is the byte size of the batch uniform buffer:
// transform (mat4x4<f32>) = 64 bytes.
const batchUniformSize = 64

// Renderer errors.
var (
	// ErrNoTarget is returned when Submit is called before SetTarget.
	ErrNoTarget = errors.New("wgpu: no render target set")

	// ErrUnsupportedLayout is returned for vertex layouts the shipped
	// shaders cannot consume (multi-unit or 3D texture coordinates).
	ErrUnsupportedLayout = errors.New("wgpu: unsupported vertex layout")

	// ErrRendererClosed is returned when using a destroyed renderer.
	ErrRendererClosed = errors.New("wgpu: renderer is closed")
)

// RendererConfig holds pipeline parameters for a Renderer.
type RendererConfig struct {
	// Format is the color target format.
	// Default: BGRA8Unorm
	Format gputypes.TextureFormat

	// SampleCount is the MSAA sample count of the render target.
	// Default: 1
	SampleCount uint32
}

// DefaultRendererConfig returns the default pipeline parameters.
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		Format:      gputypes.TextureFormatBGRA8Unorm,
		SampleCount: 1,
	}
}

// Renderer turns batch flushes into GPU draw calls. It implements
// render.Queue: each Submit uploads one flush worth of vertex and index
// data, binds the flush's texture, records a single indexed draw into a
// render pass on the current target, submits, and waits for the fence.
//
// The pipeline is built once at construction for the vertex layout the
// batch was created with; 2D and 3D position variants select different
// shaders. Alpha blending uses premultiplied alpha, matching the fragment
// shader's output.
//
// The first Submit after BeginFrame clears the target; later submits in
// the same frame load it, so multiple flushes composite.
type Renderer struct {
	device   hal.Device
	queue    hal.Queue
	textures *Textures
	layout   flexbatch.VertexLayout

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler
	uniformBuf hal.Buffer

	target        hal.TextureView
	width, height uint32

	loadOp     gputypes.LoadOp
	clearValue gputypes.Color

	closed bool
}

// NewRenderer creates a renderer for the given vertex layout. The layout
// must be single-unit with 2D texture coordinates; both shipped polygon
// variants qualify.
func NewRenderer(dev *Device, textures *Textures, layout flexbatch.VertexLayout, cfg RendererConfig) (*Renderer, error) {
	if layout.Spec.Textures != 1 || layout.Spec.TexCoord3D {
		return nil, fmt.Errorf("%w: %d units, texcoord3d=%v",
			ErrUnsupportedLayout, layout.Spec.Textures, layout.Spec.TexCoord3D)
	}
	def := DefaultRendererConfig()
	if cfg.Format == 0 {
		cfg.Format = def.Format
	}
	if cfg.SampleCount == 0 {
		cfg.SampleCount = def.SampleCount
	}

	r := &Renderer{
		device:   dev.Hal(),
		queue:    dev.Queue(),
		textures: textures,
		layout:   layout,
		loadOp:   gputypes.LoadOpClear,
	}
	if err := r.createPipeline(cfg); err != nil {
		r.Destroy()
		return nil, err
	}
	r.SetTransform(identityTransform())
	return r, nil
}

// createPipeline compiles the variant shader and builds the bind group
// layout, sampler, uniform buffer, and render pipeline.
func (r *Renderer) createPipeline(cfg RendererConfig) error {
	source := batch2DShaderSource
	label := "flexbatch_2d"
	if r.layout.Spec.Position3D {
		source = batch3DShaderSource
		label = "flexbatch_3d"
	}

	shader, err := createShaderModule(r.device, label+"_shader", source)
	if err != nil {
		return err
	}
	r.shader = shader

	// Bind group layout:
	//   Binding 0: BatchUniforms (uniform buffer, vertex)
	//   Binding 1: batch texture (texture_2d, fragment)
	//   Binding 2: sampler (fragment)
	bindLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label + "_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	r.bindLayout = bindLayout

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout

	sampler, err := r.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label + "_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create sampler: %w", err)
	}
	r.sampler = sampler

	uniformBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_uniforms",
		Size:  batchUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}
	r.uniformBuf = uniformBuf

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label + "_pipeline",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.shader,
			EntryPoint: "vs_main",
			Buffers:    []gputypes.VertexBufferLayout{r.layout.Buffer},
		},
		Fragment: &hal.FragmentState{
			Module:     r.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    cfg.Format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: cfg.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create render pipeline: %w", err)
	}
	r.pipeline = pipeline

	return nil
}

// SetTarget points the renderer at a texture view to draw into. The caller
// retains ownership of the view.
func (r *Renderer) SetTarget(view hal.TextureView, width, height uint32) {
	r.target = view
	r.width = width
	r.height = height
}

// SetTransform uploads a column-major 4x4 transform mapping positions to
// clip space.
func (r *Renderer) SetTransform(m [16]float32) {
	if r.uniformBuf == nil {
		return
	}
	buf := make([]byte, batchUniformSize)
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	r.queue.WriteBuffer(r.uniformBuf, 0, buf)
}

// BeginFrame arms a clear with the given color for the next submission.
// Submissions after the first load the existing contents, so every flush
// in a frame composites onto the same target.
func (r *Renderer) BeginFrame(clearValue gputypes.Color) {
	r.loadOp = gputypes.LoadOpClear
	r.clearValue = clearValue
}

// Submit implements render.Queue. One flush becomes one indexed draw call.
func (r *Renderer) Submit(vertices []float32, indices []uint16, texIDs []flexbatch.TextureID) error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.target == nil {
		return ErrNoTarget
	}
	if len(indices) == 0 {
		return nil
	}
	view, ok := r.textures.View(texIDs[0])
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, texIDs[0])
	}

	vertBuf, err := r.createAndUpload("flexbatch_vertices", floatBytes(vertices),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	defer r.device.DestroyBuffer(vertBuf)

	idxBuf, err := r.createAndUpload("flexbatch_indices", indexBytes(indices),
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	defer r.device.DestroyBuffer(idxBuf)

	bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "flexbatch_bind",
		Layout: r.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: r.uniformBuf.NativeHandle(), Offset: 0, Size: batchUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: view.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: r.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group: %w", err)
	}
	defer r.device.DestroyBindGroup(bindGroup)

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "flexbatch_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("flexbatch_flush"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "flexbatch_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       r.target,
			LoadOp:     r.loadOp,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: r.clearValue,
		}},
	})
	rp.SetPipeline(r.pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, vertBuf, 0)
	rp.SetIndexBuffer(idxBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(uint32(len(indices)), 1, 0, 0, 0)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	if _, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	// The transient buffers are destroyed on return; the GPU must be done
	// with them first.
	if err := r.device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}

	r.loadOp = gputypes.LoadOpLoad
	return nil
}

// Destroy releases all GPU resources. Safe to call multiple times.
func (r *Renderer) Destroy() {
	if r.device == nil {
		return
	}
	if r.pipeline != nil {
		r.device.DestroyRenderPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.uniformBuf != nil {
		r.device.DestroyBuffer(r.uniformBuf)
		r.uniformBuf = nil
	}
	if r.sampler != nil {
		r.device.DestroySampler(r.sampler)
		r.sampler = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.bindLayout != nil {
		r.device.DestroyBindGroupLayout(r.bindLayout)
		r.bindLayout = nil
	}
	if r.shader != nil {
		r.device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
	r.closed = true
}

// createAndUpload creates a buffer and uploads data to it via the queue.
func (r *Renderer) createAndUpload(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s buffer: %w", label, err)
	}
	r.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// floatBytes serializes float32 values as little-endian bytes for GPU
// upload.
func floatBytes(vals []float32) []byte {
	data := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return data
}

// indexBytes serializes uint16 indices as little-endian bytes, padded to a
// 4-byte multiple as buffer copies require.
func indexBytes(indices []uint16) []byte {
	n := len(indices) * 2
	data := make([]byte, (n+3)&^3)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(data[i*2:], idx)
	}
	return data
}

// identityTransform returns the identity matrix in column-major order.
func identityTransform() [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

var _ render.Queue = (*Renderer)(nil)
