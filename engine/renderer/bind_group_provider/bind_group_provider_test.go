package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderReleaseIsIdempotent(t *testing.T) {
	p := NewBindGroupProvider("model 1", WithMesh(nil, nil, 36))
	p.SetTexture(0, nil, nil)

	assert.Equal(t, "model 1", p.Label())
	assert.Equal(t, 36, p.IndexCount())
	assert.False(t, p.Released())

	p.Release()
	assert.True(t, p.Released())
	assert.Nil(t, p.TextureView(0))
	assert.Nil(t, p.Buffer(0))

	p.Release()
	assert.True(t, p.Released())
}
