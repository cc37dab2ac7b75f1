package dsl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apkaudio/openair/internal/logging"
	"github.com/apkaudio/openair/internal/sched"
	"github.com/apkaudio/openair/pkg/adapters/memory"
	"github.com/apkaudio/openair/pkg/compose"
	"github.com/apkaudio/openair/pkg/domain"
	"github.com/apkaudio/openair/pkg/mirror"
	"github.com/apkaudio/openair/pkg/ports"
)

func TestBuildProducesConfiguredNodes(t *testing.T) {
	b := New()
	b.Knob("cutoff").Range(20, 20000).Default(1000).Label("Cutoff")
	b.Actuator("gate").Duration(120)

	nodes := b.Build()
	require.Len(t, nodes, 2)

	knob := nodes[0]
	assert.Equal(t, domain.TypeKnob, knob.Type)
	assert.Equal(t, "cutoff", knob.Path)
	assert.Equal(t, 20.0, knob.Properties["min"])
	assert.Equal(t, 20000.0, knob.Properties["max"])
	assert.Equal(t, 1000.0, knob.Properties["default"])
	assert.Equal(t, "Cutoff", knob.Properties["label"])

	assert.Equal(t, 120.0, nodes[1].Properties["duration_ms"])
}

func TestGroupNestsChildren(t *testing.T) {
	b := New()
	synth := b.Group("synth")
	synth.Knob("cutoff")
	row := synth.Group("filters")
	row.Fader("resonance").Wrap()

	nodes := b.Build()
	require.Len(t, nodes, 1)
	require.Len(t, nodes[0].Children, 2)
	assert.Equal(t, domain.KindGroup, nodes[0].Kind())

	filters := nodes[0].Children[1]
	require.Len(t, filters.Children, 1)
	assert.Equal(t, true, filters.Children[0].Properties["wrap"])
}

func TestMultiFaderProperties(t *testing.T) {
	b := New()
	b.MultiFader("bus").Channels(3).PublishChannels().
		Set("channel_defaults", []float64{10, 20, 30})

	node := b.Build()[0]
	assert.Equal(t, domain.KindComposite, node.Kind())
	assert.Equal(t, 3, node.Properties["channels"])
	assert.Equal(t, true, node.Properties["publish_channels"])
	assert.Equal(t, []float64{10, 20, 30}, node.Properties["channel_defaults"])
}

// nullCanvas is the minimal canvas needed to drive the composition engine.
type nullCanvas struct {
	bounds ports.Rect
	next   *ports.Handle
}

func (c nullCanvas) Bounds() ports.Rect { return c.bounds }
func (c nullCanvas) DrawShape(ports.ShapeKind, ports.Geometry, ports.Style) (ports.Handle, error) {
	*c.next++
	return *c.next, nil
}
func (c nullCanvas) DrawText(ports.Point, string, ports.Style) (ports.Handle, error) {
	*c.next++
	return *c.next, nil
}
func (c nullCanvas) Redraw(ports.Handle, ports.Geometry, ports.Style) error        { return nil }
func (c nullCanvas) RedrawText(ports.Handle, ports.Point, string, ports.Style) error { return nil }
func (c nullCanvas) Embed(region ports.Rect) (ports.Canvas, error) {
	return nullCanvas{bounds: region, next: c.next}, nil
}

func TestBuilderLoadsIntoCompositionEngine(t *testing.T) {
	b := New()
	synth := b.Group("synth")
	synth.Knob("cutoff").Default(40)
	synth.Fader("level")

	nodes, err := b.Load()
	require.NoError(t, err)

	bus := memory.NewBus()
	loop := sched.New(64)
	m := mirror.New(bus, loop, mirror.WithLogger(logging.NewNop()))
	engine := compose.NewEngine(compose.Deps{
		Mirror: m,
		Theme:  domain.DarkTheme(),
		Sched:  loop,
		Logger: logging.NewNop(),
	})

	var h ports.Handle
	panel, err := engine.Build(context.Background(), nodes, nullCanvas{
		bounds: ports.Rect{Max: ports.Point{X: 100, Y: 100}},
		next:   &h,
	})
	require.NoError(t, err)
	defer panel.Close()

	assert.Equal(t, []string{"synth/cutoff", "synth/level"}, panel.Topics())
}
