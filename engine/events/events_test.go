package events

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversInRegistrationOrder(t *testing.T) {
	b := NewBus()
	var order []int
	for i := range 5 {
		b.On(Frame, func(Event) { order = append(order, i) })
	}
	b.On(Loaded, func(Event) { order = append(order, 99) })

	b.Fire(Event{Name: Frame})
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestBusIsolatesPanics(t *testing.T) {
	b := NewBus()
	var got []string
	b.On(Error, func(e Event) { got = append(got, "first:"+e.Err.Error()) })
	b.On(Error, func(Event) { panic("boom") })
	b.On(Error, func(e Event) { got = append(got, "third") })

	b.Fire(Event{Name: Error, Err: errors.New("bad feed")})
	assert.Equal(t, []string{"first:bad feed", "third"}, got)
}

func TestBusOff(t *testing.T) {
	b := NewBus()
	calls := 0
	token := b.On(Pick, func(Event) { calls++ })
	other := b.On(Pick, func(Event) { calls += 10 })

	assert.True(t, b.Off(Pick, token))
	assert.False(t, b.Off(Pick, token))
	assert.False(t, b.Off(Frame, other))
	assert.Equal(t, 1, b.Count(Pick))

	b.Fire(Event{Name: Pick, ProductID: 3})
	assert.Equal(t, 10, calls)
}

func TestBusOffDuringFire(t *testing.T) {
	b := NewBus()
	calls := 0
	var second uuid.UUID
	b.On(Frame, func(Event) { b.Off(Frame, second) })
	second = b.On(Frame, func(Event) { calls++ })

	b.Fire(Event{Name: Frame})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, b.Count(Frame))

	b.Fire(Event{Name: Frame})
	assert.Equal(t, 1, calls)
}

type recordingPlugin struct {
	name  string
	log   *[]string
	owner string
}

func (p *recordingPlugin) Init(owner string) {
	p.owner = owner
}

func (p *recordingPlugin) OnBeforeDraw() {
	*p.log = append(*p.log, p.name+":before")
}

func (p *recordingPlugin) OnAfterDraw() {
	*p.log = append(*p.log, p.name+":after")
}

func (p *recordingPlugin) OnAfterPick(int) {
	*p.log = append(*p.log, p.name+":pick")
}

func (p *recordingPlugin) OnRemove() {
	*p.log = append(*p.log, p.name+":removed")
}

type drawOnlyPlugin struct {
	log *[]string
}

func (p *drawOnlyPlugin) OnAfterDraw() {
	*p.log = append(*p.log, "draw-only:after")
	panic("plugin fault")
}

func TestPluginHostDispatch(t *testing.T) {
	var log []string
	h := NewPluginHost[string]()
	a := &recordingPlugin{name: "a", log: &log}
	d := &drawOnlyPlugin{log: &log}
	c := &recordingPlugin{name: "c", log: &log}

	require.True(t, h.Add(a, "viewer"))
	require.True(t, h.Add(d, "viewer"))
	require.True(t, h.Add(c, "viewer"))
	assert.False(t, h.Add(a, "viewer"))
	assert.Equal(t, "viewer", a.owner)

	h.BeforeDraw()
	h.AfterDraw()
	h.BeforePick()
	h.AfterPick(-1)
	assert.Equal(t, []string{
		"a:before", "c:before",
		"a:after", "draw-only:after", "c:after",
		"a:pick", "c:pick",
	}, log)

	log = nil
	assert.True(t, h.Remove(a))
	assert.False(t, h.Remove(a))
	h.BeforeDraw()
	assert.Equal(t, []string{"a:removed", "c:before"}, log)
	assert.Len(t, h.Plugins(), 2)
}

// selfRemovingPlugin unregisters itself from its host the first time it draws.
type selfRemovingPlugin struct {
	name string
	log  *[]string
	host PluginHost[string]
}

func (p *selfRemovingPlugin) OnBeforeDraw() {
	*p.log = append(*p.log, p.name)
	p.host.Remove(p)
}

func TestPluginHostRemoveDuringDispatch(t *testing.T) {
	var log []string
	h := NewPluginHost[string]()
	a := &selfRemovingPlugin{name: "a", log: &log, host: h}
	b := &recordingPlugin{name: "b", log: &log}
	c := &recordingPlugin{name: "c", log: &log}
	require.True(t, h.Add(a, "viewer"))
	require.True(t, h.Add(b, "viewer"))
	require.True(t, h.Add(c, "viewer"))

	h.BeforeDraw()
	assert.Equal(t, []string{"a", "b:before", "c:before"}, log, "every plugin runs once, in order")

	log = nil
	h.BeforeDraw()
	assert.Equal(t, []string{"b:before", "c:before"}, log)
	assert.Equal(t, []Plugin{b, c}, h.Plugins())
}

func TestPluginHostAddDuringDispatch(t *testing.T) {
	var log []string
	h := NewPluginHost[string]()
	late := &recordingPlugin{name: "late", log: &log}
	adder := &hookPlugin{before: func() { h.Add(late, "viewer") }}
	b := &recordingPlugin{name: "b", log: &log}
	require.True(t, h.Add(adder, "viewer"))
	require.True(t, h.Add(b, "viewer"))

	h.BeforeDraw()
	assert.Equal(t, []string{"b:before"}, log, "plugins added mid-dispatch wait for the next one")

	log = nil
	h.BeforeDraw()
	assert.Equal(t, []string{"b:before", "late:before"}, log)
}

type hookPlugin struct {
	before func()
}

func (p *hookPlugin) OnBeforeDraw() { p.before() }

type valuePlugin struct {
	tags []string
}

func (valuePlugin) OnBeforeDraw() {}

func TestPluginHostRejectsNonComparable(t *testing.T) {
	h := NewPluginHost[string]()
	assert.NotPanics(t, func() {
		assert.False(t, h.Add(valuePlugin{tags: []string{"x"}}, "viewer"))
		assert.False(t, h.Remove(valuePlugin{}))
		assert.False(t, h.Add(nil, "viewer"))
	})
	assert.Empty(t, h.Plugins())

	assert.True(t, h.Add(&valuePlugin{}, "viewer"), "a pointer to the same type is fine")
}
