package export

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/san-kum/driftfield/internal/render"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var captionColor = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}

// Frame renders s and stamps caption in the bottom-left corner when set.
func Frame(s *render.Scene, st render.Style, caption string) *image.RGBA {
	r := render.NewRaster(st)
	r.Render(s)
	img := r.Image()
	if img == nil || caption == "" {
		return img
	}

	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(captionColor),
		Face: face,
		Dot:  fixed.P(6, img.Rect.Dy()-6),
	}
	d.DrawString(caption)
	return img
}

// WritePNG renders s into a PNG file at path.
func WritePNG(path string, s *render.Scene, st render.Style, caption string) error {
	img := Frame(s, st, caption)
	if img == nil {
		return errEmptyScene
	}

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
