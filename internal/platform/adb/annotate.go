package adb

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/mj1618/android-cli/internal/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	boxColor     = color.RGBA{R: 255, G: 0, B: 0, A: 100}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// tapTargets returns the clickable nodes that have bounds, in pre-order.
func tapTargets(tree *model.Tree) []*model.Node {
	var out []*model.Node
	tree.Walk(func(n *model.Node, _ int) bool {
		if n.Clickable && n.Bounds != nil {
			out = append(out, n)
		}
		return true
	})
	return out
}

// annotate outlines each node and labels it with the device coordinates a
// tap would use. screencap images are in device pixels, so node bounds map
// onto the image directly.
func annotate(img image.Image, nodes []*model.Node) *image.RGBA {
	rgba := toRGBA(img)
	for _, n := range nodes {
		b := n.Bounds
		drawRectangle(rgba, b.X1, b.Y1, b.X2, b.Y2, boxColor)
		cx, cy := b.Center()
		drawTextWithOutline(rgba, fmt.Sprintf("(%d,%d)", cx, cy), cx, cy)
	}
	return rgba
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	r := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

// drawTextWithOutline centers text on (x, y) using the 7x13 bitmap face,
// with a one-pixel dark outline so it reads on any background.
func drawTextWithOutline(img *image.RGBA, text string, x, y int) {
	face := basicfont.Face7x13
	ox := x - len(text)*face.Advance/2
	oy := y + face.Ascent/2

	stamp := func(dx, dy int, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.P(ox+dx, oy+dy),
		}
		d.DrawString(text)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				stamp(dx, dy, outlineColor)
			}
		}
	}
	stamp(0, 0, textColor)
}
