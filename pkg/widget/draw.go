package widget

import "github.com/apkaudio/openair/pkg/ports"

// shape draws or replaces a retained shape, keeping the handle stable so
// redundant renders replace in place.
func shape(c ports.Canvas, h *ports.Handle, kind ports.ShapeKind, geom ports.Geometry, style ports.Style) error {
	if *h == ports.NoHandle {
		nh, err := c.DrawShape(kind, geom, style)
		if err != nil {
			return err
		}
		*h = nh
		return nil
	}
	return c.Redraw(*h, geom, style)
}

// text draws or replaces a retained text element.
func text(c ports.Canvas, h *ports.Handle, pos ports.Point, s string, style ports.Style) error {
	if *h == ports.NoHandle {
		nh, err := c.DrawText(pos, s, style)
		if err != nil {
			return err
		}
		*h = nh
		return nil
	}
	return c.RedrawText(*h, pos, s, style)
}
