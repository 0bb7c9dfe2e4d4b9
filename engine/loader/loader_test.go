package loader

import (
	"bytes"
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload() *geometry.Payload {
	p := geometry.BoxPayload(
		geometry.Box{ID: 1, Type: common.TypeWall, Region: common.NewRegion(0, 0, 0, 1, 1, 1), Colour: [4]uint8{200, 10, 10, 255}},
		geometry.Box{ID: 2, Type: common.TypeSpace, Region: common.NewRegion(2, 0, 0, 3, 1, 1), Colour: [4]uint8{10, 200, 10, 100}},
	)
	// one instanced triangle so the transform table is exercised
	p.Transforms = []float32{
		1, 0, 0, 5,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	p.TriangleTransforms[0] = 0
	return p
}

func encode(t *testing.T, p *geometry.Payload) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, p))
	return buf.Bytes()
}

func TestEncodeDecode(t *testing.T) {
	want := testPayload()
	data := encode(t, want)
	assert.Equal(t, "BIMG", string(data[:4]))

	got, err := DecodeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, want.Positions, got.Positions)
	assert.Equal(t, want.Indices, got.Indices)
	assert.Equal(t, want.TriangleProducts, got.TriangleProducts)
	assert.Equal(t, want.TriangleTransforms, got.TriangleTransforms)
	assert.Equal(t, want.Transforms, got.Transforms)
	assert.Equal(t, want.Products, got.Products)
	assert.Equal(t, want.Styles, got.Styles)
	assert.Equal(t, want.Region, got.Region)
}

func TestDecodeRejectsMalformedFeeds(t *testing.T) {
	valid := encode(t, testPayload())

	badMagic := bytes.Clone(valid)
	copy(badMagic, "GLTF")

	badVersion := bytes.Clone(valid)
	binary.LittleEndian.PutUint32(badVersion[4:], 2)

	hugeCount := bytes.Clone(valid)
	binary.LittleEndian.PutUint32(hugeCount[8:], 0xFFFFFFFF)

	unknownProduct := testPayload()
	unknownProduct.TriangleProducts[3] = 99
	// Encode validates, so corrupt the product ID of the first triangle in the encoded bytes.
	corrupt := bytes.Clone(valid)
	p := testPayload()
	triProductOffset := feedHeaderSize + p.VertexCount()*24 + p.TriangleCount()*12
	binary.LittleEndian.PutUint32(corrupt[triProductOffset:], 99)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", valid[:10]},
		{"bad magic", badMagic},
		{"bad version", badVersion},
		{"truncated body", valid[:len(valid)-1]},
		{"count exceeds data", hugeCount},
		{"unknown product", corrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes(tt.data)
			assert.ErrorIs(t, err, common.ErrLoad)
		})
	}

	assert.ErrorIs(t, Encode(&bytes.Buffer{}, unknownProduct), common.ErrLoad, "Encode validates")
}

func TestSources(t *testing.T) {
	data := encode(t, testPayload())
	ctx := context.Background()
	l := NewLoader(BackendTypeFeed)

	t.Run("bytes", func(t *testing.T) {
		p, err := l.LoadSync(ctx, BytesSource("mem", data))
		require.NoError(t, err)
		assert.Len(t, p.Products, 2)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.bimg")
		require.NoError(t, os.WriteFile(path, data, 0o644))

		src := ParseSource(path)
		assert.Equal(t, path, src.Name())
		p, err := l.LoadSync(ctx, src)
		require.NoError(t, err)
		assert.Len(t, p.Products, 2)

		_, err = l.LoadSync(ctx, FileSource(filepath.Join(t.TempDir(), "missing.bimg")))
		assert.ErrorIs(t, err, common.ErrLoad)
	})

	t.Run("url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/model.bimg" {
				http.NotFound(w, r)
				return
			}
			w.Write(data)
		}))
		defer srv.Close()

		p, err := l.LoadSync(ctx, ParseSource(srv.URL+"/model.bimg"))
		require.NoError(t, err)
		assert.Len(t, p.Products, 2)

		_, err = l.LoadSync(ctx, URLSource(srv.URL+"/other", srv.Client()))
		assert.ErrorIs(t, err, common.ErrLoad)
	})
}

// chanDispatcher queues posted tasks for the test goroutine, like the viewer's pending queue.
type chanDispatcher chan func()

func (d chanDispatcher) Post(task func()) {
	d <- task
}

func TestLoadAsyncThroughDispatcher(t *testing.T) {
	data := encode(t, testPayload())
	d := make(chanDispatcher, 4)
	l := NewLoader(BackendTypeFeed, WithDispatcher(d), WithWorkers(2))

	var results []Result
	okID := l.Load(context.Background(), BytesSource("good", data), "first", func(r Result) {
		results = append(results, r)
	})
	badID := l.Load(context.Background(), BytesSource("bad", data[:20]), "second", func(r Result) {
		results = append(results, r)
	})
	assert.NotEqual(t, okID, badID)

	for range 2 {
		select {
		case task := <-d:
			task()
		case <-time.After(5 * time.Second):
			t.Fatal("load did not complete")
		}
	}
	assert.Equal(t, 0, l.Pending())
	require.Len(t, results, 2)

	byID := map[int]Result{}
	for _, r := range results {
		byID[r.RequestID] = r
	}
	assert.NoError(t, byID[okID].Err)
	assert.Equal(t, "first", byID[okID].Tag)
	assert.NotNil(t, byID[okID].Payload)
	assert.ErrorIs(t, byID[badID].Err, common.ErrLoad)
	assert.Nil(t, byID[badID].Payload)
	assert.Equal(t, "bad", byID[badID].Source)
}

func TestCache(t *testing.T) {
	data := encode(t, testPayload())
	ctx := context.Background()

	l := NewLoader(BackendTypeFeed)
	_, err := l.LoadSync(ctx, BytesSource("m", data))
	require.NoError(t, err)
	assert.Nil(t, l.Get("m"), "caching is off by default")

	l = NewLoader(BackendTypeFeed, WithCache(true))
	first, err := l.LoadSync(ctx, BytesSource("m", data))
	require.NoError(t, err)
	second, err := l.LoadSync(ctx, BytesSource("m", nil))
	require.NoError(t, err)
	assert.Same(t, first, second)

	l.Evict("m")
	assert.Nil(t, l.Get("m"))

	pre := testPayload()
	l = NewLoader(BackendTypeFeed, WithPayload("fixture", pre))
	got, err := l.LoadSync(ctx, BytesSource("fixture", nil))
	require.NoError(t, err)
	assert.Same(t, pre, got)
}
