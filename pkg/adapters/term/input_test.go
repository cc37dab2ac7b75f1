package term

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apkaudio/openair/pkg/ports"
)

func decodeOne(t *testing.T, seq string) Event {
	t.Helper()
	ev, n, ok := decode([]byte(seq))
	require.True(t, ok, "sequence %q did not decode", seq)
	require.Equal(t, len(seq), n, "sequence %q not fully consumed", seq)
	return ev
}

func TestDecodeMouseReports(t *testing.T) {
	ev := decodeOne(t, "\x1b[<0;13;6M")
	assert.Equal(t, EventMouseDown, ev.Kind)
	assert.Equal(t, ports.Point{X: 12, Y: 5}, ev.Pos)
	assert.Equal(t, ports.ButtonPrimary, ev.Button)

	ev = decodeOne(t, "\x1b[<32;14;7M")
	assert.Equal(t, EventMouseDrag, ev.Kind)
	assert.Equal(t, ports.Point{X: 13, Y: 6}, ev.Pos)

	ev = decodeOne(t, "\x1b[<0;14;7m")
	assert.Equal(t, EventMouseUp, ev.Kind)

	ev = decodeOne(t, "\x1b[<2;5;5M")
	assert.Equal(t, EventMouseDown, ev.Kind)
	assert.Equal(t, ports.ButtonSecondary, ev.Button)
}

func TestDecodeMouseModifierBits(t *testing.T) {
	ev := decodeOne(t, "\x1b[<20;3;3M")
	assert.Equal(t, EventMouseDown, ev.Kind)
	assert.True(t, ev.Shift)
	assert.True(t, ev.Ctrl)
}

func TestDecodeWheelDirection(t *testing.T) {
	up := decodeOne(t, "\x1b[<64;8;8M")
	assert.Equal(t, EventMouseWheel, up.Kind)
	assert.Equal(t, 1, up.Steps)

	down := decodeOne(t, "\x1b[<65;8;8M")
	assert.Equal(t, EventMouseWheel, down.Kind)
	assert.Equal(t, -1, down.Steps)
}

func TestDecodeKeys(t *testing.T) {
	cases := []struct {
		seq string
		key Key
	}{
		{"\t", KeyTab},
		{"\x1b[Z", KeyBackTab},
		{"\x1b[A", KeyUp},
		{"\x1b[B", KeyDown},
		{"\x1b[C", KeyRight},
		{"\x1b[D", KeyLeft},
		{"\x1b[H", KeyHome},
		{"\r", KeyEnter},
		{"\n", KeyEnter},
		{"\x7f", KeyBackspace},
		{"\x03", KeyCtrlC},
	}
	for _, tc := range cases {
		ev := decodeOne(t, tc.seq)
		assert.Equal(t, EventKey, ev.Kind, "sequence %q", tc.seq)
		assert.Equal(t, tc.key, ev.Key, "sequence %q", tc.seq)
	}
}

func TestDecodeArrowWithModifiers(t *testing.T) {
	ev := decodeOne(t, "\x1b[1;2B")
	assert.Equal(t, KeyDown, ev.Key)
	assert.True(t, ev.Shift)
	assert.False(t, ev.Ctrl)

	ev = decodeOne(t, "\x1b[1;5A")
	assert.Equal(t, KeyUp, ev.Key)
	assert.True(t, ev.Ctrl)
}

func TestDecodeRunes(t *testing.T) {
	ev := decodeOne(t, "q")
	assert.Equal(t, 'q', ev.Rune)

	ev = decodeOne(t, "é")
	assert.Equal(t, 'é', ev.Rune)
}

func TestDecodeIncompleteSequenceWaits(t *testing.T) {
	_, n, ok := decode([]byte("\x1b[<0;13"))
	assert.Zero(t, n)
	assert.False(t, ok)

	_, n, ok = decode([]byte("\x1b"))
	assert.Zero(t, n)
	assert.False(t, ok)
}

func TestInputRunDecodesStream(t *testing.T) {
	in := strings.NewReader("\t\x1b[<0;3;4Mq")
	var events []Event
	err := NewInput(in, &strings.Builder{}).Run(context.Background(), func(ev Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, KeyTab, events[0].Key)
	assert.Equal(t, EventMouseDown, events[1].Kind)
	assert.Equal(t, ports.Point{X: 2, Y: 3}, events[1].Pos)
	assert.Equal(t, 'q', events[2].Rune)
}

func TestInputRunEmitsTrailingEscape(t *testing.T) {
	var events []Event
	err := NewInput(strings.NewReader("\x1b"), &strings.Builder{}).Run(context.Background(), func(ev Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, KeyEscape, events[0].Key)
}

func TestInputRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocked, release := blockingReader()
	defer release()
	err := NewInput(blocked, &strings.Builder{}).Run(ctx, func(Event) {})
	assert.ErrorIs(t, err, context.Canceled)
}

// blockingReader never yields bytes until released, pinning Run on its
// context instead of the read.
func blockingReader() (io.Reader, func()) {
	r, w := io.Pipe()
	return r, func() { _ = w.Close() }
}
