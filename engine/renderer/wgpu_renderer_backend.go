package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	frameGroup  = 0
	handleGroup = 1

	// pickRowPitch is the padded row size of a one-pixel texture-to-buffer copy.
	pickRowPitch = 256

	pickFormat  = wgpu.TextureFormatRGBA8Uint
	depthFormat = wgpu.TextureFormatDepth24Plus
)

type wgpuRendererBackendImpl struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount
	width, height int

	msaaTexture      *wgpu.Texture
	msaaTextureView  *wgpu.TextureView
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView
	pickTexture      *wgpu.Texture
	pickTextureView  *wgpu.TextureView
	pickDepthTexture *wgpu.Texture
	pickDepthView    *wgpu.TextureView
	pickReadback     *wgpu.Buffer

	vertexShader     shader.Shader
	frameLayout      *wgpu.BindGroupLayout
	handleLayout     *wgpu.BindGroupLayout
	frameDescriptor  wgpu.BindGroupLayoutDescriptor
	handleDescriptor wgpu.BindGroupLayoutDescriptor
	bindings         map[shader.AnnotationArg]int

	opaque      pipeline.Pipeline
	translucent pipeline.Pipeline
	pick        pipeline.Pipeline

	frameProvider  bind_group_provider.BindGroupProvider
	cameraBinding  int
	settingBinding int
	stylesSize     [2]uint32
	stylesWritten  bool
	uploads        int
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// wgpuResources are the GPU objects of one model: the handle bind group with its four lookup
// textures and the mesh buffers.
type wgpuResources struct {
	bind_group_provider.BindGroupProvider
	statesSize    [2]uint32
	statesWritten bool
}

// newWGPURendererBackend acquires the adapter and device for a surface and creates the shared
// pipelines. It panics if any of them can not be created; NewRenderer recovers the panic.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, mode PresentMode) *wgpuRendererBackendImpl {
	// wgpu-native and GLFW both require the frame thread
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		instance:    wgpu.CreateInstance(nil),
		sampleCount: sampleCount,
		presentMode: wgpu.PresentModeFifo,
	}
	if mode == PresentModeUncapped {
		w.presentMode = wgpu.PresentModeImmediate
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()

	capabilities := w.surface.GetCapabilities(w.adapter)
	if len(capabilities.Formats) == 0 {
		panic(errors.New("surface reports no formats"))
	}
	w.surfaceFormat = capabilities.Formats[0]
	w.alphaMode = capabilities.AlphaModes[0]

	if err := w.createPipelines(); err != nil {
		panic(err)
	}
	if err := w.createFrameProvider(); err != nil {
		panic(err)
	}
	return w
}

// createPipelines builds the opaque, translucent and pick pipelines of the model program. The
// bind group layouts are created once from the merged vertex and fragment descriptors and shared.
func (b *wgpuRendererBackendImpl) createPipelines() error {
	vs := shader.NewShader("model_vs", shader.ShaderTypeVertex, ModelShaderSource)
	fsOpaque := shader.NewShader("model_fs", shader.ShaderTypeFragment, ModelShaderSource, shader.WithEntryPoint("fs_main"))
	fsTranslucent := shader.NewShader("model_fs_translucent", shader.ShaderTypeFragment, ModelShaderSource, shader.WithEntryPoint("fs_translucent"))
	fsPick := shader.NewShader("model_fs_pick", shader.ShaderTypeFragment, ModelShaderSource, shader.WithEntryPoint("fs_pick"))
	b.vertexShader = vs

	merged := mergeBindGroupLayouts(vs.BindGroupLayoutDescriptors(), fsOpaque.BindGroupLayoutDescriptors())
	frameDesc, ok := merged[frameGroup]
	if !ok {
		return errors.New("model shader declares no frame bind group")
	}
	handleDesc, ok := merged[handleGroup]
	if !ok {
		return errors.New("model shader declares no handle bind group")
	}

	var err error
	if b.frameLayout, err = b.device.CreateBindGroupLayout(&frameDesc); err != nil {
		return fmt.Errorf("failed to create frame bind group layout: %w", err)
	}
	if b.handleLayout, err = b.device.CreateBindGroupLayout(&handleDesc); err != nil {
		return fmt.Errorf("failed to create handle bind group layout: %w", err)
	}
	b.frameDescriptor = frameDesc
	b.handleDescriptor = handleDesc

	b.bindings = make(map[shader.AnnotationArg]int)
	for _, role := range []shader.AnnotationArg{
		shader.AnnotationArgStyles,
		shader.AnnotationArgPositions,
		shader.AnnotationArgTransforms,
		shader.AnnotationArgDefaultStyles,
		shader.AnnotationArgProductStates,
	} {
		_, binding, ok := vs.Binding(role)
		if !ok {
			return fmt.Errorf("model shader declares no %s binding", role)
		}
		b.bindings[role] = binding
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Model Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.frameLayout, b.handleLayout},
	})
	if err != nil {
		return err
	}

	b.opaque = pipeline.NewPipeline("model_opaque",
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fsOpaque),
	)
	b.translucent = pipeline.NewPipeline("model_translucent",
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fsTranslucent),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithBlendEnabled(true),
	)
	b.pick = pipeline.NewPipeline("model_pick",
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fsPick),
		pipeline.WithOffscreenTarget(pickFormat),
	)
	for _, p := range []pipeline.Pipeline{b.opaque, b.translucent, b.pick} {
		if err := b.registerRenderPipeline(p, pipelineLayout); err != nil {
			return fmt.Errorf("failed to create pipeline %s: %w", p.PipelineKey(), err)
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) registerRenderPipeline(p pipeline.Pipeline, layout *wgpu.PipelineLayout) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return err
	}
	fs, err := b.device.CreateShaderModule(fragmentShader.Module())
	if err != nil {
		return err
	}

	var vertexLayouts []wgpu.VertexBufferLayout
	for i := range len(vertexShader.VertexLayouts()) {
		vertexLayouts = append(vertexLayouts, vertexShader.VertexLayouts()[i]...)
	}

	format := b.surfaceFormat
	samples := uint32(b.sampleCount)
	if p.Offscreen() {
		format = p.TargetFormat()
		samples = 1
	}
	target := wgpu.ColorTargetState{
		Format:    format,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}
	p.SetRenderPipeline(created)
	return nil
}

// createFrameProvider allocates the camera and settings uniforms and the shared style texture.
func (b *wgpuRendererBackendImpl) createFrameProvider() error {
	b.frameProvider = bind_group_provider.NewBindGroupProvider("Frame")
	b.cameraBinding, b.settingBinding = -1, -1
	for _, d := range b.vertexShader.Declarations() {
		if d.Type != shader.AnnotationTypeBindingGroup || *d.Group != frameGroup {
			continue
		}
		switch d.Args[2] {
		case shader.AnnotationArgCamera:
			b.cameraBinding = *d.Binding
		case shader.AnnotationArgRenderSettings:
			b.settingBinding = *d.Binding
		}
	}
	if b.cameraBinding < 0 || b.settingBinding < 0 {
		return errors.New("model shader declares no camera or settings uniform")
	}

	for _, entry := range b.frameDescriptor.Entries {
		binding := int(entry.Binding)
		if binding == b.bindings[shader.AnnotationArgStyles] {
			staging := common.NewLookupTexture(0, 1, common.TexelFormatRGBA8Unorm)
			tex, view, err := b.createTexture("Styles", staging)
			if err != nil {
				b.frameProvider.Release()
				return err
			}
			b.frameProvider.SetTexture(binding, tex, view)
			b.stylesSize = [2]uint32{staging.Width, staging.Height}
			continue
		}
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Frame Uniform Buffer",
			Size:  entry.Buffer.MinBindingSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			b.frameProvider.Release()
			return err
		}
		b.frameProvider.SetBuffer(binding, buf)
	}

	if err := b.bindFrame(b.frameProvider); err != nil {
		b.frameProvider.Release()
		return err
	}
	return nil
}

func (b *wgpuRendererBackendImpl) Configure(width, height int) {
	b.width, b.height = width, height
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   b.alphaMode,
	})
	b.releaseTargets()

	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}
	count := uint32(b.sampleCount)
	if count > 1 {
		b.msaaTexture, b.msaaTextureView = b.createTarget("MSAA Texture", size, count, b.surfaceFormat, wgpu.TextureUsageRenderAttachment)
	}
	b.depthTexture, b.depthTextureView = b.createTarget("Depth Texture", size, count, depthFormat, wgpu.TextureUsageRenderAttachment)
	b.pickTexture, b.pickTextureView = b.createTarget("Pick Texture", size, 1, pickFormat, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageCopySrc)
	b.pickDepthTexture, b.pickDepthView = b.createTarget("Pick Depth Texture", size, 1, depthFormat, wgpu.TextureUsageRenderAttachment)

	if b.pickReadback == nil {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Pick Readback Buffer",
			Size:  pickRowPitch,
			Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
		b.pickReadback = buf
	}
}

func (b *wgpuRendererBackendImpl) createTarget(label string, size wgpu.Extent3D, samples uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		panic(err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		panic(err)
	}
	return tex, view
}

func (b *wgpuRendererBackendImpl) releaseTargets() {
	for _, v := range []*wgpu.TextureView{b.msaaTextureView, b.depthTextureView, b.pickTextureView, b.pickDepthView} {
		if v != nil {
			v.Release()
		}
	}
	for _, t := range []*wgpu.Texture{b.msaaTexture, b.depthTexture, b.pickTexture, b.pickDepthTexture} {
		if t != nil {
			t.Release()
		}
	}
	b.msaaTexture, b.msaaTextureView = nil, nil
	b.depthTexture, b.depthTextureView = nil, nil
	b.pickTexture, b.pickTextureView = nil, nil
	b.pickDepthTexture, b.pickDepthView = nil, nil
}

func (b *wgpuRendererBackendImpl) Upload(data *geometry.PackedData) (geometry.Resources, error) {
	b.uploads++
	provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Model %d", b.uploads))
	states := initialStates(len(data.Products))

	textures := map[shader.AnnotationArg]common.TextureStagingData{
		shader.AnnotationArgPositions:     data.PositionTexture,
		shader.AnnotationArgTransforms:    data.TransformTexture,
		shader.AnnotationArgDefaultStyles: data.StyleTexture,
		shader.AnnotationArgProductStates: states,
	}
	for role, staging := range textures {
		tex, view, err := b.createTexture(provider.Label()+" "+string(role), staging)
		if err != nil {
			provider.Release()
			return nil, err
		}
		provider.SetTexture(b.bindings[role], tex, view)
	}

	vertexData := geometry.MarshalVertices(data.Vertices)
	indexData := common.SliceToBytes(data.Indices)
	vb, err := b.createBuffer(provider.Label()+" Vertex Buffer", vertexData, wgpu.BufferUsageVertex)
	if err != nil {
		provider.Release()
		return nil, err
	}
	ib, err := b.createBuffer(provider.Label()+" Index Buffer", indexData, wgpu.BufferUsageIndex)
	if err != nil {
		vb.Release()
		provider.Release()
		return nil, err
	}
	provider.SetMesh(vb, ib, len(data.Indices))

	if err := b.bindHandle(provider); err != nil {
		provider.Release()
		return nil, err
	}
	return &wgpuResources{
		BindGroupProvider: provider,
		statesSize:        [2]uint32{states.Width, states.Height},
	}, nil
}

// bindHandle (re)creates the handle bind group from the provider's texture views.
func (b *wgpuRendererBackendImpl) bindHandle(provider bind_group_provider.BindGroupProvider) error {
	entries := make([]wgpu.BindGroupEntry, 0, len(b.handleDescriptor.Entries))
	for _, entry := range b.handleDescriptor.Entries {
		view := provider.TextureView(int(entry.Binding))
		if view == nil {
			return fmt.Errorf("handle binding %d has no texture view", entry.Binding)
		}
		entries = append(entries, wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: view})
	}
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  b.handleLayout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	if old := provider.BindGroup(); old != nil {
		old.Release()
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) createBuffer(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	size := uint64(len(data))
	if size == 0 {
		size = 4
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		b.queue.WriteBuffer(buf, 0, data)
	}
	return buf, nil
}

func (b *wgpuRendererBackendImpl) createTexture(label string, staging common.TextureStagingData) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              staging.Width,
			Height:             staging.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        texelFormat(staging.Format),
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, nil, err
	}
	b.writeTexture(tex, staging)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}

func (b *wgpuRendererBackendImpl) writeTexture(tex *wgpu.Texture, staging common.TextureStagingData) {
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.Width * staging.Format.BytesPerTexel(),
			RowsPerImage: staging.Height,
		},
		&wgpu.Extent3D{
			Width:              staging.Width,
			Height:             staging.Height,
			DepthOrArrayLayers: 1,
		},
	)
}

// writeLookups uploads the frame uniforms and every changed lookup table. Tables of culled items
// are written too so that they are current when the model comes back into view.
func (b *wgpuRendererBackendImpl) writeLookups(frame *Frame) error {
	b.queue.WriteBuffer(b.frameProvider.Buffer(b.cameraBinding), 0, frame.Camera.Marshal())
	b.queue.WriteBuffer(b.frameProvider.Buffer(b.settingBinding), 0, frame.Settings.Marshal())

	stylesBinding := b.bindings[shader.AnnotationArgStyles]
	if (frame.StylesChanged || !b.stylesWritten) && len(frame.Styles.Pixels) > 0 {
		if err := b.replaceTexture(b.frameProvider, stylesBinding, &b.stylesSize, "Styles", frame.Styles, b.bindFrame); err != nil {
			return err
		}
		b.stylesWritten = true
	}

	statesBinding := b.bindings[shader.AnnotationArgProductStates]
	for i := range frame.Items {
		item := &frame.Items[i]
		res, err := wgpuData(item)
		if err != nil {
			return err
		}
		if (!item.StatesChanged && res.statesWritten) || len(item.States.Pixels) == 0 {
			continue
		}
		if err := b.replaceTexture(res, statesBinding, &res.statesSize, res.Label()+" product_states", item.States, b.bindHandle); err != nil {
			return err
		}
		res.statesWritten = true
	}
	return nil
}

// replaceTexture writes staging into the texture at binding, recreating the texture and its bind
// group when the size changed.
func (b *wgpuRendererBackendImpl) replaceTexture(
	provider bind_group_provider.BindGroupProvider,
	binding int,
	size *[2]uint32,
	label string,
	staging common.TextureStagingData,
	rebind func(bind_group_provider.BindGroupProvider) error,
) error {
	tex := provider.Texture(binding)
	if tex != nil && *size == [2]uint32{staging.Width, staging.Height} {
		b.writeTexture(tex, staging)
		return nil
	}
	newTex, view, err := b.createTexture(label, staging)
	if err != nil {
		return err
	}
	if old := provider.TextureView(binding); old != nil {
		old.Release()
	}
	if tex != nil {
		tex.Release()
	}
	provider.SetTexture(binding, newTex, view)
	*size = [2]uint32{staging.Width, staging.Height}
	return rebind(provider)
}

// bindFrame (re)creates the frame bind group from the provider's uniforms and style texture.
func (b *wgpuRendererBackendImpl) bindFrame(provider bind_group_provider.BindGroupProvider) error {
	entries := make([]wgpu.BindGroupEntry, 0, len(b.frameDescriptor.Entries))
	for _, entry := range b.frameDescriptor.Entries {
		binding := int(entry.Binding)
		if view := provider.TextureView(binding); view != nil {
			entries = append(entries, wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: view})
			continue
		}
		entries = append(entries, wgpu.BindGroupEntry{Binding: entry.Binding, Buffer: provider.Buffer(binding), Size: wgpu.WholeSize})
	}
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Frame Bind Group",
		Layout:  b.frameLayout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	if old := provider.BindGroup(); old != nil {
		old.Release()
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) Render(frame *Frame) error {
	if err := b.writeLookups(frame); err != nil {
		return err
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	// With MSAA the multisampled texture is drawn and resolved into the swapchain view.
	colour := wgpu.RenderPassColorAttachment{
		View:       view,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: clearColour(frame.Background),
	}
	if b.sampleCount > 1 {
		colour.View = b.msaaTextureView
		colour.ResolveTarget = view
		colour.StoreOp = wgpu.StoreOpDiscard
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{colour},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	for _, p := range []pipeline.Pipeline{b.opaque, b.translucent} {
		b.drawItems(pass, p, frame)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackendImpl) RenderPick(frame *Frame, x, y int) ([4]uint8, error) {
	var out [4]uint8
	if err := b.writeLookups(frame); err != nil {
		return out, err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return out, err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       b.pickTextureView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.pickDepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	b.drawItems(pass, b.pick, frame)
	pass.End()

	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  b.pickTexture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: uint32(x), Y: uint32(y)},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  pickRowPitch,
				RowsPerImage: 1,
			},
			Buffer: b.pickReadback,
		},
		&wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return out, err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	var status wgpu.BufferMapAsyncStatus
	err = b.pickReadback.MapAsync(wgpu.MapModeRead, 0, pickRowPitch, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	})
	if err != nil {
		return out, fmt.Errorf("failed to map pick buffer: %w", err)
	}
	b.device.Poll(true, nil)
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return out, fmt.Errorf("pick buffer mapping failed with status %v", status)
	}
	copy(out[:], b.pickReadback.GetMappedRange(0, 4))
	b.pickReadback.Unmap()
	return out, nil
}

// drawItems issues one indexed draw per visible item with the given pipeline.
func (b *wgpuRendererBackendImpl) drawItems(pass *wgpu.RenderPassEncoder, p pipeline.Pipeline, frame *Frame) {
	pass.SetPipeline(p.RenderPipeline())
	pass.SetBindGroup(frameGroup, b.frameProvider.BindGroup(), nil)
	for i := range frame.Items {
		item := &frame.Items[i]
		if item.Culled {
			continue
		}
		res := item.Resources.(*wgpuResources)
		if res.IndexCount() == 0 {
			continue
		}
		pass.SetBindGroup(handleGroup, res.BindGroup(), nil)
		pass.SetVertexBuffer(0, res.VertexBuffer(), 0, wgpu.WholeSize)
		pass.SetIndexBuffer(res.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(uint32(res.IndexCount()), 1, 0, 0, 0)
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.releaseTargets()
	if b.pickReadback != nil {
		b.pickReadback.Release()
		b.pickReadback = nil
	}
	if b.frameProvider != nil {
		b.frameProvider.Release()
	}
	for _, p := range []pipeline.Pipeline{b.opaque, b.translucent, b.pick} {
		if p != nil {
			p.Release()
		}
	}
	if b.frameLayout != nil {
		b.frameLayout.Release()
	}
	if b.handleLayout != nil {
		b.handleLayout.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}

func wgpuData(item *DrawItem) (*wgpuResources, error) {
	res, ok := item.Resources.(*wgpuResources)
	if !ok {
		return nil, fmt.Errorf("model %d was not uploaded by the wgpu backend: %w", item.ModelID, common.ErrConfiguration)
	}
	if res.Released() {
		return nil, fmt.Errorf("model %d: %w", item.ModelID, common.ErrReleased)
	}
	return res, nil
}

// initialStates is the product state table of a freshly uploaded model: every product Undefined
// with no style.
func initialStates(products int) common.TextureStagingData {
	tex := common.NewLookupTexture(products, 1, common.TexelFormatRGBA8Uint)
	for i := range products {
		tex.SetTexelBytes(i, [4]uint8{0xFF, 0xFF, 0, 0})
	}
	return tex
}

func texelFormat(f common.TexelFormat) wgpu.TextureFormat {
	switch f {
	case common.TexelFormatRGBA8Uint:
		return wgpu.TextureFormatRGBA8Uint
	case common.TexelFormatRGBA32Float:
		return wgpu.TextureFormatRGBA32Float
	default:
		return wgpu.TextureFormatRGBA8Unorm
	}
}

func clearColour(c [4]uint8) wgpu.Color {
	return wgpu.Color{
		R: float64(c[0]) / 255,
		G: float64(c[1]) / 255,
		B: float64(c[2]) / 255,
		A: float64(c[3]) / 255,
	}
}

// mergeBindGroupLayouts merges the bind group layout descriptors of a vertex and a fragment
// shader. Bindings present in both stages get the union of their visibilities.
//
// Parameters:
//   - vertexLayouts: bind group layout descriptors from the vertex shader
//   - fragmentLayouts: bind group layout descriptors from the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(
	vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor,
) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)
	for _, layouts := range []map[int]wgpu.BindGroupLayoutDescriptor{vertexLayouts, fragmentLayouts} {
		for g, desc := range layouts {
			existing, ok := merged[g]
			if !ok {
				merged[g] = wgpu.BindGroupLayoutDescriptor{
					Label:   desc.Label,
					Entries: append([]wgpu.BindGroupLayoutEntry(nil), desc.Entries...),
				}
				continue
			}
			byBinding := make(map[uint32]int, len(existing.Entries))
			for i, e := range existing.Entries {
				byBinding[e.Binding] = i
			}
			for _, e := range desc.Entries {
				if i, ok := byBinding[e.Binding]; ok {
					existing.Entries[i].Visibility |= e.Visibility
					continue
				}
				existing.Entries = append(existing.Entries, e)
			}
			sort.Slice(existing.Entries, func(i, j int) bool {
				return existing.Entries[i].Binding < existing.Entries[j].Binding
			})
			merged[g] = existing
		}
	}
	return merged
}
