package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apkaudio/openair/internal/logging"
	"github.com/apkaudio/openair/pkg/ports"
)

type fakePanel struct {
	topics  []string
	regions map[string]ports.Rect
}

func (p *fakePanel) Topics() []string { return p.topics }

func (p *fakePanel) Region(t string) (ports.Rect, bool) {
	r, ok := p.regions[t]
	return r, ok
}

func (p *fakePanel) WidgetAt(pos ports.Point) (string, bool) {
	for _, t := range p.topics {
		if p.regions[t].Contains(pos) {
			return t, true
		}
	}
	return "", false
}

type sentGesture struct {
	topic string
	g     ports.Gesture
}

type recordSink struct {
	sent []sentGesture
}

func (s *recordSink) Gesture(topic string, g ports.Gesture) error {
	s.sent = append(s.sent, sentGesture{topic: topic, g: g})
	return nil
}

// newTestRouter lays two widgets out as stacked rows: "mix/gain" on top,
// "mix/pan" below.
func newTestRouter() (*Router, *recordSink) {
	panel := &fakePanel{
		topics: []string{"mix/gain", "mix/pan"},
		regions: map[string]ports.Rect{
			"mix/gain": {Max: ports.Point{X: 100, Y: 50}},
			"mix/pan":  {Min: ports.Point{Y: 50}, Max: ports.Point{X: 100, Y: 100}},
		},
	}
	sink := &recordSink{}
	return NewRouter(panel, sink, WithRouterLogger(logging.NewNop())), sink
}

func TestRouterDragTranslatesToLocalCoordinates(t *testing.T) {
	r, sink := newTestRouter()

	r.Handle(Event{Kind: EventMouseDown, Pos: ports.Point{X: 10, Y: 60}})
	r.Handle(Event{Kind: EventMouseDrag, Pos: ports.Point{X: 10, Y: 55}})
	r.Handle(Event{Kind: EventMouseUp, Pos: ports.Point{X: 10, Y: 55}})

	require.Len(t, sink.sent, 3)
	assert.Equal(t, "mix/pan", sink.sent[0].topic)
	assert.Equal(t, ports.GestureDown, sink.sent[0].g.Kind)
	assert.Equal(t, ports.Point{X: 10, Y: 10}, sink.sent[0].g.Pos)
	assert.Equal(t, ports.GestureMove, sink.sent[1].g.Kind)
	assert.Equal(t, ports.Point{X: 10, Y: 5}, sink.sent[1].g.Pos)
	assert.Equal(t, ports.GestureUp, sink.sent[2].g.Kind)

	// The drag ended, so stray motion produces nothing.
	r.Handle(Event{Kind: EventMouseDrag, Pos: ports.Point{X: 10, Y: 40}})
	assert.Len(t, sink.sent, 3)
}

func TestRouterDragStaysPinnedToPressedWidget(t *testing.T) {
	r, sink := newTestRouter()

	r.Handle(Event{Kind: EventMouseDown, Pos: ports.Point{X: 10, Y: 60}})
	// The pointer crosses into the top widget mid-drag.
	r.Handle(Event{Kind: EventMouseDrag, Pos: ports.Point{X: 10, Y: 20}})

	require.Len(t, sink.sent, 2)
	assert.Equal(t, "mix/pan", sink.sent[1].topic)
	assert.Equal(t, ports.Point{X: 10, Y: -30}, sink.sent[1].g.Pos)
}

func TestRouterShiftDragEngagesFineAdjustment(t *testing.T) {
	r, sink := newTestRouter()

	r.Handle(Event{Kind: EventMouseDown, Pos: ports.Point{X: 10, Y: 10}})
	r.Handle(Event{Kind: EventMouseDrag, Pos: ports.Point{X: 10, Y: 8}, Shift: true})

	require.Len(t, sink.sent, 2)
	assert.Equal(t, ports.ModFine, sink.sent[1].g.Mods)
}

func TestRouterSecondaryAndCtrlClicks(t *testing.T) {
	r, sink := newTestRouter()

	r.Handle(Event{Kind: EventMouseDown, Pos: ports.Point{X: 10, Y: 10}, Button: ports.ButtonSecondary})
	require.Len(t, sink.sent, 1)
	assert.Equal(t, ports.ButtonSecondary, sink.sent[0].g.Button)

	r.Handle(Event{Kind: EventMouseDown, Pos: ports.Point{X: 10, Y: 10}, Ctrl: true})
	require.Len(t, sink.sent, 2)
	assert.Equal(t, ports.ModReset, sink.sent[1].g.Mods)

	// Neither click starts a drag.
	r.Handle(Event{Kind: EventMouseDrag, Pos: ports.Point{X: 10, Y: 20}})
	assert.Len(t, sink.sent, 2)
}

func TestRouterWheelTargetsWidgetUnderCursor(t *testing.T) {
	r, sink := newTestRouter()

	r.Handle(Event{Kind: EventMouseWheel, Pos: ports.Point{X: 10, Y: 60}, Steps: 1})

	require.Len(t, sink.sent, 1)
	assert.Equal(t, "mix/pan", sink.sent[0].topic)
	assert.Equal(t, ports.GestureWheel, sink.sent[0].g.Kind)
	assert.Equal(t, 1, sink.sent[0].g.Steps)
}

func TestRouterPressOutsideEveryWidgetIsIgnored(t *testing.T) {
	r, sink := newTestRouter()

	r.Handle(Event{Kind: EventMouseDown, Pos: ports.Point{X: 10, Y: 150}})
	r.Handle(Event{Kind: EventMouseWheel, Pos: ports.Point{X: 10, Y: 150}, Steps: 1})

	assert.Empty(t, sink.sent)
}

func TestRouterFocusKeysNudgeAndReset(t *testing.T) {
	r, sink := newTestRouter()

	r.Handle(Event{Kind: EventKey, Key: KeyUp})
	require.Len(t, sink.sent, 1)
	assert.Equal(t, "mix/gain", sink.sent[0].topic)
	assert.Equal(t, ports.GestureWheel, sink.sent[0].g.Kind)
	assert.Equal(t, 1, sink.sent[0].g.Steps)

	r.Handle(Event{Kind: EventKey, Key: KeyTab})
	r.Handle(Event{Kind: EventKey, Key: KeyDown})
	require.Len(t, sink.sent, 2)
	assert.Equal(t, "mix/pan", sink.sent[1].topic)
	assert.Equal(t, -1, sink.sent[1].g.Steps)

	r.Handle(Event{Kind: EventKey, Key: KeyBackTab})
	r.Handle(Event{Kind: EventKey, Key: KeyHome})
	require.Len(t, sink.sent, 3)
	assert.Equal(t, "mix/gain", sink.sent[2].topic)
	assert.Equal(t, ports.GestureDown, sink.sent[2].g.Kind)
	assert.Equal(t, ports.ModReset, sink.sent[2].g.Mods)
}

func TestRouterSpaceAndMClickFocusedWidget(t *testing.T) {
	r, sink := newTestRouter()

	r.Handle(Event{Kind: EventKey, Rune: ' '})
	require.Len(t, sink.sent, 2)
	assert.Equal(t, ports.GestureDown, sink.sent[0].g.Kind)
	assert.Equal(t, ports.ButtonPrimary, sink.sent[0].g.Button)
	assert.Equal(t, ports.GestureUp, sink.sent[1].g.Kind)
	// Clicks land at the widget's center.
	assert.Equal(t, ports.Point{X: 50, Y: 25}, sink.sent[0].g.Pos)

	r.Handle(Event{Kind: EventKey, Rune: 'm'})
	require.Len(t, sink.sent, 4)
	assert.Equal(t, ports.ButtonSecondary, sink.sent[2].g.Button)
}

func TestRouterManualEntryConfirms(t *testing.T) {
	r, sink := newTestRouter()

	r.Handle(Event{Kind: EventKey, Key: KeyEnter})
	require.Len(t, sink.sent, 1)
	assert.Equal(t, ports.GestureDown, sink.sent[0].g.Kind)
	assert.Equal(t, ports.ModEdit, sink.sent[0].g.Mods)

	r.Handle(Event{Kind: EventKey, Rune: '4'})
	r.Handle(Event{Kind: EventKey, Rune: '7'})
	r.Handle(Event{Kind: EventKey, Key: KeyBackspace})
	r.Handle(Event{Kind: EventKey, Rune: '2'})
	r.Handle(Event{Kind: EventKey, Key: KeyEnter})

	require.Len(t, sink.sent, 2)
	assert.Equal(t, ports.GestureConfirm, sink.sent[1].g.Kind)
	assert.Equal(t, "42", sink.sent[1].g.Text)
}

func TestRouterManualEntryRejectsUnparsableText(t *testing.T) {
	r, sink := newTestRouter()

	r.Handle(Event{Kind: EventKey, Key: KeyEnter})
	r.Handle(Event{Kind: EventKey, Rune: 'x'})
	r.Handle(Event{Kind: EventKey, Key: KeyEnter})

	// The entry stays open and keeps accepting text.
	require.Len(t, sink.sent, 1)
	r.Handle(Event{Kind: EventKey, Rune: '7'})
	r.Handle(Event{Kind: EventKey, Key: KeyEnter})

	require.Len(t, sink.sent, 2)
	assert.Equal(t, ports.GestureConfirm, sink.sent[1].g.Kind)
	assert.Equal(t, "7", sink.sent[1].g.Text)
}

func TestRouterManualEntryCancels(t *testing.T) {
	r, sink := newTestRouter()

	r.Handle(Event{Kind: EventKey, Key: KeyEnter})
	r.Handle(Event{Kind: EventKey, Rune: '9'})
	r.Handle(Event{Kind: EventKey, Key: KeyEscape})

	require.Len(t, sink.sent, 2)
	assert.Equal(t, ports.GestureCancel, sink.sent[1].g.Kind)
}

func TestRouterQuitKeys(t *testing.T) {
	panel := &fakePanel{
		topics:  []string{"mix/gain"},
		regions: map[string]ports.Rect{"mix/gain": {Max: ports.Point{X: 100, Y: 50}}},
	}
	sink := &recordSink{}
	quits := 0
	r := NewRouter(panel, sink,
		WithRouterLogger(logging.NewNop()),
		WithQuit(func() { quits++ }),
	)

	r.Handle(Event{Kind: EventKey, Rune: 'q'})
	r.Handle(Event{Kind: EventKey, Key: KeyCtrlC})
	assert.Equal(t, 2, quits)
	assert.Empty(t, sink.sent)

	// While editing, q is text, not quit.
	r.Handle(Event{Kind: EventKey, Key: KeyEnter})
	r.Handle(Event{Kind: EventKey, Rune: 'q'})
	assert.Equal(t, 2, quits)
}
