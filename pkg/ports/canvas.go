package ports

// Handle identifies a retained drawing element on a Canvas. Handles are
// stable for the lifetime of the element and support idempotent
// replace-in-place redraws.
type Handle int64

// NoHandle marks an element that has not been drawn yet.
const NoHandle Handle = 0

// ShapeKind selects the primitive a Canvas rasterizes.
type ShapeKind int

const (
	ShapeLine ShapeKind = iota
	ShapeRect
	ShapeArc
	ShapePolygon
	ShapeCircle
)

// Point is a position in canvas coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned region.
type Rect struct {
	Min, Max Point
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies inside the region. The minimum edges are
// inclusive, the maximum edges exclusive, so adjacent regions never both
// claim a point.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Geometry parameterizes a shape. Rect bounds lines, rectangles, arcs and
// circles; Points carries polygon vertices; Start and Extent are arc angles
// in degrees.
type Geometry struct {
	Rect   Rect
	Points []Point
	Start  float64
	Extent float64
}

// Style carries colors and stroke parameters. Colors are hex strings
// resolved by the canvas implementation.
type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	Anchor      string
}

// Canvas is the retained drawing capability consumed by widgets. All
// operations are idempotent replace-in-place given a handle.
type Canvas interface {
	// Bounds returns the drawable region of this canvas.
	Bounds() Rect

	// DrawShape creates a retained shape and returns its handle.
	DrawShape(kind ShapeKind, geom Geometry, style Style) (Handle, error)

	// DrawText creates a retained text element.
	DrawText(pos Point, text string, style Style) (Handle, error)

	// Redraw replaces an element's geometry and style in place.
	Redraw(h Handle, geom Geometry, style Style) error

	// RedrawText replaces a text element in place.
	RedrawText(h Handle, pos Point, text string, style Style) error

	// Embed creates a child canvas occupying a region of this one, e.g.
	// a knob embedded at a meter's pivot point.
	Embed(region Rect) (Canvas, error)
}
