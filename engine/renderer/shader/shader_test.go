package shader

import (
	"os"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadModelSource(t *testing.T) string {
	t.Helper()
	src, err := os.ReadFile("../assets/model.wgsl")
	require.NoError(t, err)
	return string(src)
}

func TestParseAnnotation(t *testing.T) {
	a, err := parseAnnotation("   // plain comment", 1)
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = parseAnnotation("//@oxy:group 0 1 storage_uniform settings render_settings", 3)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, AnnotationTypeBindingGroup, a.Type)
	assert.Equal(t, 0, *a.Group)
	assert.Equal(t, 1, *a.Binding)
	assert.Equal(t, []AnnotationArg{"storage_uniform", "settings", "render_settings"}, a.Args)

	a, err = parseAnnotation("//@oxy:provider 1 3 handle product_states", 4)
	require.NoError(t, err)
	assert.Equal(t, AnnotationTypeProvider, a.Type)
	assert.Equal(t, AnnotationArgProductStates, a.Args[1])

	for _, bad := range []string{
		"//@oxy:",
		"//@oxy:unknown x",
		"//@oxy:include",
		"//@oxy:group 0 x storage_uniform a camera",
		"//@oxy:group 0 0 constant a camera",
		"//@oxy:provider 0 0 scene styles",
		"//@oxy:provider 0 0 frame normals",
	} {
		_, err := parseAnnotation(bad, 1)
		assert.Error(t, err, bad)
	}
}

func TestPreProcessorRejectsUnknownStruct(t *testing.T) {
	_, err := NewPreProcessor().Process("//@oxy:include lights\n")
	assert.Error(t, err)

	_, err = NewPreProcessor().Process("//@oxy:group 0 0 storage_uniform l lights\n")
	assert.Error(t, err)
}

func TestPreProcessorGeneratesDeclarations(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:include camera\n//@oxy:group 0 0 storage_uniform camera camera\n")
	require.NoError(t, err)
	assert.Contains(t, out, "struct CameraUniform")
	assert.Contains(t, out, "@group(0) @binding(0) var<uniform> camera: CameraUniform;")
	require.Len(t, pp.Declarations(), 1)
}

func TestModelVertexShader(t *testing.T) {
	s := NewShader("model_vs", ShaderTypeVertex, loadModelSource(t))
	assert.Equal(t, "vs_main", s.EntryPoint())

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	layout := layouts[0][0]
	assert.Equal(t, uint64(32), layout.ArrayStride)
	require.Len(t, layout.Attributes, 6)
	assert.Equal(t, wgpu.VertexFormatUint32, layout.Attributes[0].Format)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[1].Format)
	assert.Equal(t, uint64(4), layout.Attributes[1].Offset)
	assert.Equal(t, wgpu.VertexFormatSint32, layout.Attributes[4].Format)
	assert.Equal(t, uint64(28), layout.Attributes[5].Offset)

	groups := s.BindGroupLayoutDescriptors()
	require.Len(t, groups, 2)
	frame := groups[0].Entries
	require.Len(t, frame, 3)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, frame[0].Buffer.Type)
	assert.Equal(t, uint64(144), frame[0].Buffer.MinBindingSize)
	assert.Equal(t, uint64(96), frame[1].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.TextureSampleTypeUnfilterableFloat, frame[2].Texture.SampleType)
	assert.Equal(t, wgpu.ShaderStageVertex, frame[0].Visibility)

	handle := groups[1].Entries
	require.Len(t, handle, 4)
	assert.Equal(t, wgpu.TextureSampleTypeUnfilterableFloat, handle[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, handle[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeUint, handle[3].Texture.SampleType)

	assert.Equal(t, "positions", s.BindGroupVarName(1, 0))
	assert.Equal(t, "", s.BindGroupVarName(3, 0))
}

func TestModelFragmentEntryPoints(t *testing.T) {
	src := loadModelSource(t)

	assert.Equal(t, "fs_main", NewShader("fs", ShaderTypeFragment, src).EntryPoint())
	pick := NewShader("pick", ShaderTypeFragment, src, WithEntryPoint("fs_pick"))
	assert.Equal(t, "fs_pick", pick.EntryPoint())
	assert.Empty(t, pick.VertexLayouts())
	assert.Equal(t, wgpu.ShaderStageFragment, pick.BindGroupLayoutDescriptors()[1].Entries[0].Visibility)
	assert.Equal(t, "pick", pick.Module().Label)
}

func TestShaderBindingRoles(t *testing.T) {
	s := NewShader("model_vs", ShaderTypeVertex, loadModelSource(t))

	group, binding, ok := s.Binding(AnnotationArgPositions)
	require.True(t, ok)
	assert.Equal(t, 1, group)
	assert.Equal(t, 0, binding)

	group, binding, ok = s.Binding(AnnotationArgStyles)
	require.True(t, ok)
	assert.Equal(t, [2]int{0, 2}, [2]int{group, binding})

	_, _, ok = NewShader("bare", ShaderTypeVertex, "@vertex fn main() -> @builtin(position) vec4<f32> { return vec4<f32>(); }").Binding(AnnotationArgPositions)
	assert.False(t, ok)
}

func TestShaderPanicsWithoutEntryPoint(t *testing.T) {
	assert.Panics(t, func() { NewShader("empty", ShaderTypeVertex, "") })
	assert.Panics(t, func() { NewShader("frag-only", ShaderTypeVertex, "@fragment fn f() {}") })
}

func TestSamplerKeepsFilterableTextures(t *testing.T) {
	src := `
@group(0) @binding(0) var tex: texture_2d<f32>;
@group(0) @binding(1) var samp: sampler;
@fragment fn f() {}
`
	groups, names := parseBindGroupLayouts(src, wgpu.ShaderStageFragment)
	require.Len(t, groups[0].Entries, 2)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, groups[0].Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, groups[0].Entries[1].Sampler.Type)
	assert.Equal(t, "samp", names[0][1])
}

func TestStructLayouts(t *testing.T) {
	structs := parseStructBlocks(stripComments(`
struct Inner { a: vec3<f32>, b: f32, };
/* struct Ignored { x: f32 } */
struct Outer { inner: Inner, list: array<vec4<f32>, 3>, flag: u32, };
`))
	sizes := computeStructSizes(structs)
	assert.Equal(t, wgslTypeLayout{16, 16}, sizes["Inner"])
	assert.Equal(t, wgslTypeLayout{80, 16}, sizes["Outer"])
	_, ignored := sizes["Ignored"]
	assert.False(t, ignored)
}
