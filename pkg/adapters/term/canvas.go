// Package term renders the panel to an ANSI terminal. It keeps a retained
// display list per surface and repaints a character cell grid on Flush.
package term

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/apkaudio/openair/pkg/ports"
)

type shape struct {
	handle ports.Handle
	kind   ports.ShapeKind
	geom   ports.Geometry
	style  ports.Style
	text   string
	isText bool
}

// Surface owns the terminal output and the shared display list. Views onto
// sub-regions are handed out through Embed.
type Surface struct {
	out    *termenv.Output
	cols   int
	rows   int
	bounds ports.Rect

	mu     sync.Mutex
	next   ports.Handle
	shapes map[ports.Handle]*shape
	order  []ports.Handle
}

// NewSurface creates a surface sized to the controlling terminal. Falls
// back to 80x24 when the size cannot be read, which covers pipes and tests.
func NewSurface() *Surface {
	cols, rows := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		cols, rows = w, h
	}
	return NewSurfaceSize(cols, rows)
}

// NewSurfaceSize creates a surface with a fixed cell grid.
func NewSurfaceSize(cols, rows int) *Surface {
	return &Surface{
		out:    termenv.NewOutput(os.Stdout),
		cols:   cols,
		rows:   rows,
		bounds: ports.Rect{Max: ports.Point{X: float64(cols), Y: float64(rows)}},
		shapes: make(map[ports.Handle]*shape),
	}
}

// Root returns the canvas covering the whole surface.
func (s *Surface) Root() ports.Canvas {
	return &view{surface: s, region: s.bounds}
}

func (s *Surface) add(sh *shape) ports.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	sh.handle = s.next
	s.shapes[sh.handle] = sh
	s.order = append(s.order, sh.handle)
	return sh.handle
}

func (s *Surface) update(h ports.Handle, fn func(*shape)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shapes[h]
	if !ok {
		return fmt.Errorf("unknown shape handle %d", h)
	}
	fn(sh)
	return nil
}

// Flush rasterizes the display list and writes one frame.
func (s *Surface) Flush() {
	s.mu.Lock()
	grid := make([]rune, s.cols*s.rows)
	colors := make([]string, s.cols*s.rows)
	for i := range grid {
		grid[i] = ' '
	}
	handles := make([]ports.Handle, len(s.order))
	copy(handles, s.order)
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	for _, h := range handles {
		s.raster(grid, colors, s.shapes[h])
	}
	s.mu.Unlock()

	var b strings.Builder
	for y := 0; y < s.rows; y++ {
		for x := 0; x < s.cols; x++ {
			i := y*s.cols + x
			if colors[i] != "" {
				b.WriteString(termenv.String(string(grid[i])).Foreground(s.out.Color(colors[i])).String())
			} else {
				b.WriteRune(grid[i])
			}
		}
		b.WriteByte('\n')
	}
	s.out.ClearScreen()
	s.out.MoveCursor(1, 1)
	fmt.Fprint(s.out, b.String())
}

func (s *Surface) set(grid []rune, colors []string, x, y int, r rune, color string) {
	if x < 0 || y < 0 || x >= s.cols || y >= s.rows {
		return
	}
	i := y*s.cols + x
	grid[i] = r
	colors[i] = color
}

func (s *Surface) raster(grid []rune, colors []string, sh *shape) {
	if sh.isText {
		x := int(sh.geom.Rect.Min.X)
		y := int(sh.geom.Rect.Min.Y)
		// Anchors follow the compass convention; anything with a
		// horizontal center component centers the run.
		switch sh.style.Anchor {
		case "center", "n", "s":
			x -= len(sh.text) / 2
		case "e", "ne", "se":
			x -= len(sh.text)
		}
		color := sh.style.Fill
		if color == "" {
			color = sh.style.Stroke
		}
		for i, r := range sh.text {
			s.set(grid, colors, x+i, y, r, color)
		}
		return
	}
	color := sh.style.Stroke
	if color == "" {
		color = sh.style.Fill
	}
	switch sh.kind {
	case ports.ShapeLine:
		if len(sh.geom.Points) >= 2 {
			for i := 0; i+1 < len(sh.geom.Points); i++ {
				s.line(grid, colors, sh.geom.Points[i], sh.geom.Points[i+1], color)
			}
		} else {
			// Lines without explicit vertices run corner to corner.
			s.line(grid, colors, sh.geom.Rect.Min, sh.geom.Rect.Max, color)
		}
	case ports.ShapeRect:
		s.rect(grid, colors, sh.geom.Rect, sh.style.Fill != "", color)
	case ports.ShapeArc, ports.ShapeCircle:
		s.arc(grid, colors, sh.geom, color)
	case ports.ShapePolygon:
		pts := sh.geom.Points
		for i := range pts {
			s.line(grid, colors, pts[i], pts[(i+1)%len(pts)], color)
		}
	}
}

func (s *Surface) line(grid []rune, colors []string, a, b ports.Point, color string) {
	steps := int(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := a.X + (b.X-a.X)*t
		y := a.Y + (b.Y-a.Y)*t
		s.set(grid, colors, int(x), int(y), lineRune(a, b), color)
	}
}

func lineRune(a, b ports.Point) rune {
	dx, dy := math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)
	switch {
	case dy < dx/2:
		return '-'
	case dx < dy/2:
		return '|'
	default:
		return '*'
	}
}

func (s *Surface) rect(grid []rune, colors []string, r ports.Rect, filled bool, color string) {
	x0, y0 := int(r.Min.X), int(r.Min.Y)
	x1, y1 := int(r.Max.X), int(r.Max.Y)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			edge := y == y0 || y == y1 || x == x0 || x == x1
			if filled || edge {
				ch := '#'
				if !filled {
					ch = '+'
				}
				s.set(grid, colors, x, y, ch, color)
			}
		}
	}
}

func (s *Surface) arc(grid []rune, colors []string, g ports.Geometry, color string) {
	cx := (g.Rect.Min.X + g.Rect.Max.X) / 2
	cy := (g.Rect.Min.Y + g.Rect.Max.Y) / 2
	rx := g.Rect.Width() / 2
	ry := g.Rect.Height() / 2
	start, extent := g.Start, g.Extent
	if extent == 0 {
		extent = 360
	}
	steps := int(math.Abs(extent))/4 + 2
	for i := 0; i <= steps; i++ {
		deg := start + extent*float64(i)/float64(steps)
		rad := deg * math.Pi / 180
		// Screen Y grows downward, canvas angles are counterclockwise.
		x := cx + rx*math.Cos(rad)
		y := cy - ry*math.Sin(rad)
		s.set(grid, colors, int(x), int(y), '.', color)
	}
}

// view is a rectangular window onto a surface. Coordinates given to it are
// region-local and translated before hitting the shared display list.
type view struct {
	surface *Surface
	region  ports.Rect
}

func (v *view) Bounds() ports.Rect {
	return ports.Rect{Max: ports.Point{X: v.region.Width(), Y: v.region.Height()}}
}

func (v *view) translate(g ports.Geometry) ports.Geometry {
	out := g
	out.Rect = ports.Rect{
		Min: ports.Point{X: g.Rect.Min.X + v.region.Min.X, Y: g.Rect.Min.Y + v.region.Min.Y},
		Max: ports.Point{X: g.Rect.Max.X + v.region.Min.X, Y: g.Rect.Max.Y + v.region.Min.Y},
	}
	if len(g.Points) > 0 {
		out.Points = make([]ports.Point, len(g.Points))
		for i, p := range g.Points {
			out.Points[i] = ports.Point{X: p.X + v.region.Min.X, Y: p.Y + v.region.Min.Y}
		}
	}
	return out
}

func (v *view) DrawShape(kind ports.ShapeKind, geom ports.Geometry, style ports.Style) (ports.Handle, error) {
	return v.surface.add(&shape{kind: kind, geom: v.translate(geom), style: style}), nil
}

func (v *view) DrawText(pos ports.Point, content string, style ports.Style) (ports.Handle, error) {
	geom := v.translate(ports.Geometry{Rect: ports.Rect{Min: pos, Max: pos}})
	return v.surface.add(&shape{geom: geom, style: style, text: content, isText: true}), nil
}

func (v *view) Redraw(h ports.Handle, geom ports.Geometry, style ports.Style) error {
	t := v.translate(geom)
	return v.surface.update(h, func(sh *shape) {
		sh.geom = t
		sh.style = style
	})
}

func (v *view) RedrawText(h ports.Handle, pos ports.Point, content string, style ports.Style) error {
	geom := v.translate(ports.Geometry{Rect: ports.Rect{Min: pos, Max: pos}})
	return v.surface.update(h, func(sh *shape) {
		sh.geom = geom
		sh.text = content
		sh.style = style
	})
}

func (v *view) Embed(region ports.Rect) (ports.Canvas, error) {
	b := v.Bounds()
	if region.Min.X < 0 || region.Min.Y < 0 || region.Max.X > b.Max.X || region.Max.Y > b.Max.Y {
		return nil, fmt.Errorf("embed region %+v exceeds canvas bounds %+v", region, b)
	}
	return &view{
		surface: v.surface,
		region: ports.Rect{
			Min: ports.Point{X: v.region.Min.X + region.Min.X, Y: v.region.Min.Y + region.Min.Y},
			Max: ports.Point{X: v.region.Min.X + region.Max.X, Y: v.region.Min.Y + region.Max.Y},
		},
	}, nil
}
