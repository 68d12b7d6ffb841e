package fbdev

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

// GlyphWidth is the fixed advance of the UI font, exposed for layout.
const GlyphWidth = 7

// Clear fills the whole back buffer with one color.
func (d *Device) Clear(c color.RGBA) {
	draw.Draw(d.img, d.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// FillRect fills an axis-aligned rectangle, clipped to the buffer.
func (d *Device) FillRect(x, y, w, h int, c color.RGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(d.img.Bounds())
	draw.Draw(d.img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// FillCircle fills a circle by horizontal spans, like the original
// hardware UI did.
func (d *Device) FillCircle(cx, cy, r int, c color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		dx := 0
		for dx*dx+dy*dy <= r*r {
			dx++
		}
		d.FillRect(cx-dx+1, cy+dy, 2*dx-1, 1, c)
	}
}

// FillTriangle fills a triangle by sorting the vertices on y and
// interpolating span edges per scanline.
func (d *Device) FillTriangle(x0, y0, x1, y1, x2, y2 int, c color.RGBA) {
	if y0 > y1 {
		x0, y0, x1, y1 = x1, y1, x0, y0
	}
	if y0 > y2 {
		x0, y0, x2, y2 = x2, y2, x0, y0
	}
	if y1 > y2 {
		x1, y1, x2, y2 = x2, y2, x1, y1
	}

	edge := func(xa, ya, xb, yb, y int) int {
		if yb == ya {
			return xa
		}
		return xa + (xb-xa)*(y-ya)/(yb-ya)
	}

	for y := y0; y <= y2; y++ {
		a := edge(x0, y0, x2, y2, y)
		var b int
		if y < y1 {
			b = edge(x0, y0, x1, y1, y)
		} else {
			b = edge(x1, y1, x2, y2, y)
		}
		if a > b {
			a, b = b, a
		}
		d.FillRect(a, y, b-a+1, 1, c)
	}
}

// Text draws a string with its top-left corner at (x, y).
func (d *Device) Text(x, y int, s string, c color.RGBA) {
	drawer := font.Drawer{
		Dst:  d.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	drawer.DrawString(s)
}

// TextCenter draws a string horizontally centered on cx.
func (d *Device) TextCenter(cx, y int, s string, c color.RGBA) {
	d.Text(cx-len(s)*GlyphWidth/2, y, s, c)
}
