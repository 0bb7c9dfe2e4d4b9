package bind_group_provider

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// TextureWrite describes a full rewrite of the texture at a binding of a BindGroupProvider.
// Data must cover Width*Height texels of the texture's format.
type TextureWrite struct {
	Provider    BindGroupProvider
	Binding     int
	Data        []byte
	BytesPerRow uint32
	Width       uint32
	Height      uint32
}
