package term

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apkaudio/openair/pkg/ports"
)

// newBufferedSurface redirects frames into a buffer so Flush can be
// asserted on without touching the test process's terminal.
func newBufferedSurface(cols, rows int) (*Surface, *bytes.Buffer) {
	var buf bytes.Buffer
	s := NewSurfaceSize(cols, rows)
	s.out = termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))
	return s, &buf
}

// frame strips the leading clear-screen and cursor control sequences and
// returns the rendered rows.
func frame(buf *bytes.Buffer, rows int) []string {
	out := buf.String()
	for strings.HasPrefix(out, "\x1b[") {
		rest := out[2:]
		// A CSI sequence ends at its first final byte (0x40..0x7e).
		i := strings.IndexFunc(rest, func(r rune) bool { return r >= '@' && r <= '~' })
		if i < 0 {
			break
		}
		out = rest[i+1:]
	}
	lines := strings.Split(out, "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	return lines
}

func TestRootBoundsMatchGrid(t *testing.T) {
	s, _ := newBufferedSurface(40, 10)
	b := s.Root().Bounds()
	assert.Equal(t, 40.0, b.Width())
	assert.Equal(t, 10.0, b.Height())
}

func TestFlushRendersRectBorder(t *testing.T) {
	s, buf := newBufferedSurface(10, 5)
	_, err := s.Root().DrawShape(ports.ShapeRect, ports.Geometry{
		Rect: ports.Rect{Min: ports.Point{X: 0, Y: 0}, Max: ports.Point{X: 4, Y: 2}},
	}, ports.Style{Stroke: "#ffffff"})
	require.NoError(t, err)

	s.Flush()
	rows := frame(buf, 5)
	require.NotEmpty(t, rows)
	assert.True(t, strings.HasPrefix(rows[0], "+++++"), "top border: %q", rows[0])
	assert.True(t, strings.HasPrefix(rows[1], "+   +"), "hollow middle: %q", rows[1])
}

func TestFlushRendersFilledRect(t *testing.T) {
	s, buf := newBufferedSurface(10, 5)
	_, err := s.Root().DrawShape(ports.ShapeRect, ports.Geometry{
		Rect: ports.Rect{Min: ports.Point{X: 0, Y: 0}, Max: ports.Point{X: 3, Y: 1}},
	}, ports.Style{Fill: "#ff0000"})
	require.NoError(t, err)

	s.Flush()
	rows := frame(buf, 5)
	assert.True(t, strings.HasPrefix(rows[0], "####"), "filled row: %q", rows[0])
}

func TestFlushRendersLineFromRectEndpoints(t *testing.T) {
	s, buf := newBufferedSurface(10, 5)
	_, err := s.Root().DrawShape(ports.ShapeLine, ports.Geometry{
		Rect: ports.Rect{Min: ports.Point{X: 0, Y: 2}, Max: ports.Point{X: 9, Y: 2}},
	}, ports.Style{Stroke: "#ffffff"})
	require.NoError(t, err)

	s.Flush()
	rows := frame(buf, 5)
	assert.Equal(t, strings.Repeat("-", 10), rows[2])
}

func TestTextAnchoring(t *testing.T) {
	s, buf := newBufferedSurface(11, 3)
	root := s.Root()

	_, err := root.DrawText(ports.Point{X: 5, Y: 0}, "abc", ports.Style{Fill: "#fff", Anchor: "center"})
	require.NoError(t, err)
	_, err = root.DrawText(ports.Point{X: 5, Y: 1}, "abc", ports.Style{Fill: "#fff", Anchor: "e"})
	require.NoError(t, err)
	_, err = root.DrawText(ports.Point{X: 5, Y: 2}, "abc", ports.Style{Fill: "#fff"})
	require.NoError(t, err)

	s.Flush()
	rows := frame(buf, 3)
	assert.Equal(t, "    abc    ", rows[0])
	assert.Equal(t, "  abc      ", rows[1])
	assert.Equal(t, "     abc   ", rows[2])
}

func TestRedrawReplacesInPlace(t *testing.T) {
	s, buf := newBufferedSurface(10, 3)
	root := s.Root()

	h, err := root.DrawText(ports.Point{X: 0, Y: 0}, "50.0", ports.Style{Fill: "#fff"})
	require.NoError(t, err)
	require.NoError(t, root.RedrawText(h, ports.Point{X: 0, Y: 0}, "75.0", ports.Style{Fill: "#fff"}))

	s.Flush()
	rows := frame(buf, 3)
	assert.True(t, strings.HasPrefix(rows[0], "75.0"), "replaced text: %q", rows[0])
	assert.NotContains(t, rows[0], "50.0")
}

func TestRedrawUnknownHandleFails(t *testing.T) {
	s, _ := newBufferedSurface(10, 3)
	err := s.Root().Redraw(ports.Handle(99), ports.Geometry{}, ports.Style{})
	assert.Error(t, err)
}

func TestEmbedTranslatesCoordinates(t *testing.T) {
	s, buf := newBufferedSurface(10, 4)
	child, err := s.Root().Embed(ports.Rect{
		Min: ports.Point{X: 4, Y: 2},
		Max: ports.Point{X: 8, Y: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, child.Bounds().Width())

	_, err = child.DrawText(ports.Point{X: 0, Y: 0}, "x", ports.Style{Fill: "#fff"})
	require.NoError(t, err)

	s.Flush()
	rows := frame(buf, 4)
	assert.Equal(t, "    x     ", rows[2])
}

func TestEmbedRejectsOutOfBoundsRegion(t *testing.T) {
	s, _ := newBufferedSurface(10, 4)
	_, err := s.Root().Embed(ports.Rect{
		Min: ports.Point{X: 0, Y: 0},
		Max: ports.Point{X: 11, Y: 4},
	})
	assert.Error(t, err)

	_, err = s.Root().Embed(ports.Rect{
		Min: ports.Point{X: -1, Y: 0},
		Max: ports.Point{X: 5, Y: 2},
	})
	assert.Error(t, err)
}

func TestNestedEmbedCompoundsOffsets(t *testing.T) {
	s, buf := newBufferedSurface(12, 6)
	outer, err := s.Root().Embed(ports.Rect{
		Min: ports.Point{X: 2, Y: 1},
		Max: ports.Point{X: 10, Y: 5},
	})
	require.NoError(t, err)
	inner, err := outer.Embed(ports.Rect{
		Min: ports.Point{X: 3, Y: 2},
		Max: ports.Point{X: 6, Y: 4},
	})
	require.NoError(t, err)

	_, err = inner.DrawText(ports.Point{X: 0, Y: 0}, "z", ports.Style{Fill: "#fff"})
	require.NoError(t, err)

	s.Flush()
	rows := frame(buf, 6)
	assert.Equal(t, "     z      ", rows[3])
}
