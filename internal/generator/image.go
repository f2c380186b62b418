package generator

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	imageWidth    = 800
	imageHeight   = 400
	imageMaxChars = 400

	textMargin = 20
)

func writeImage(_ context.Context, content, path string) error {
	img := renderText(imageWidth, imageHeight, color.White, color.Black, truncate(content, imageMaxChars))
	return savePNG(img, path)
}

// renderSlide draws text at half resolution and scales it up so the
// fixed-size bitmap font stays legible on a video frame.
func renderSlide(width, height int, text string) image.Image {
	small := renderText(width/2, height/2, color.Black, color.White, text)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), small, small.Bounds(), draw.Src, nil)
	return dst
}

func renderText(width, height int, bg, fg color.Color, text string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
	}

	lineHeight := face.Metrics().Height.Ceil() + 2
	y := textMargin + face.Metrics().Ascent.Ceil()
	for _, line := range wrap(text, (width-2*textMargin)/face.Advance) {
		if y > height-textMargin {
			break
		}
		d.Dot = fixed.P(textMargin, y)
		d.DrawString(line)
		y += lineHeight
	}
	return img
}

// wrap splits text into lines of at most width runes, breaking on spaces
// where possible and keeping explicit newlines.
func wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		var current []rune
		for _, word := range strings.Fields(para) {
			w := []rune(word)
			for len(w) > width {
				if len(current) > 0 {
					lines = append(lines, string(current))
					current = nil
				}
				lines = append(lines, string(w[:width]))
				w = w[width:]
			}
			switch {
			case len(current) == 0:
				current = w
			case len(current)+1+len(w) <= width:
				current = append(append(current, ' '), w...)
			default:
				lines = append(lines, string(current))
				current = w
			}
		}
		lines = append(lines, string(current))
	}
	return lines
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
