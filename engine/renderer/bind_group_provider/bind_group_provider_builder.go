package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBuffer sets a buffer for a specific binding index.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the buffer to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer for the specified binding
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}

// WithMesh sets the vertex and index buffers of a model provider.
//
// Parameters:
//   - vertexBuffer: the vertex stream
//   - indexBuffer: the index buffer
//   - indexCount: the number of indices
//
// Returns:
//   - BindGroupProviderOption: a function that sets the mesh buffers
func WithMesh(vertexBuffer, indexBuffer *wgpu.Buffer, indexCount int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.SetMesh(vertexBuffer, indexBuffer, indexCount)
	}
}
