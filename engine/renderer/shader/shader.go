package shader

import (
	"fmt"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage of a shader.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage.
	ShaderTypeFragment
)

type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[int][]wgpu.VertexBufferLayout
	declarations               []Annotation
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader defines the interface for a pre-processed WGSL shader stage. It exposes the processed
// source, the entry point and the layouts parsed from the source that are needed for pipeline creation.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used as the module label.
	Key() string

	// Source retrieves the processed WGSL source code.
	Source() string

	// ShaderType returns the stage of the shader.
	ShaderType() ShaderType

	// EntryPoint returns the entry point function name.
	EntryPoint() string

	// BindGroupLayoutDescriptors retrieves the bind group layout descriptors parsed from the source,
	// keyed by group index. Every entry is visible to this shader's stage only.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name declared at a group and binding, or "".
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name
	BindGroupVarName(group, binding int) string

	// VertexLayouts retrieves the vertex buffer layouts of a vertex shader, keyed by sequential index.
	// Empty for fragment shaders.
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// Declarations returns the group and provider annotations of the source.
	Declarations() []Annotation

	// Binding resolves the group and binding index declared for a provider binding role.
	//
	// Parameters:
	//   - role: the binding role, e.g. AnnotationArgPositions
	//
	// Returns:
	//   - group, binding: the declared slot
	//   - ok: false if no provider annotation declares the role
	Binding(role AnnotationArg) (group, binding int, ok bool)

	// Module returns the shader module descriptor built from the processed source.
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader pre-processes an annotated WGSL source and parses its layouts. A single source may hold
// several entry points; the first one of the requested stage is used unless WithEntryPoint is given.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the pipeline stage
//   - source: the annotated WGSL source, usually embedded from an assets directory
//   - options: functional options to configure the shader
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, source string, options ...ShaderBuilderOption) Shader {
	if source == "" {
		panic(fmt.Sprintf("shader: %s has no source", key))
	}
	s := &shader{
		key:        key,
		shaderType: shaderType,
	}
	for _, option := range options {
		option(s)
	}

	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to pre-process %q: %v", key, err))
	}
	s.source = processed
	s.declarations = slices.Clone(pp.Declarations())
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}

	if s.entryPoint == "" {
		s.entryPoint = parseEntryPoint(s.source, s.shaderType)
	}
	if s.entryPoint == "" {
		panic(fmt.Sprintf("shader: %s declares no entry point for its stage", key))
	}

	visibility := wgpu.ShaderStageFragment
	if shaderType == ShaderTypeVertex {
		visibility = wgpu.ShaderStageVertex
		s.vertexLayouts = parseVertexLayouts(s.source)
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(s.source, visibility)
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

func (s *shader) Binding(role AnnotationArg) (int, int, bool) {
	for _, d := range s.declarations {
		if d.Type == AnnotationTypeProvider && len(d.Args) == 2 && d.Args[1] == role {
			return *d.Group, *d.Binding, true
		}
	}
	return 0, 0, false
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
