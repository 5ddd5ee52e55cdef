package preview

import (
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Options control projection and rasterization.
type Options struct {
	Size        int     // Output width and height in pixels
	Supersample int     // Render scale before filtering down to Size
	Margin      float32 // Border around the footprint in world units
	Ground      float32 // Height of the ground plane

	SkyVector [3]float32 // Zero selects the default light
	Body      int32
	Sequence  int
	Frame     float64

	Background color.RGBA
	Shadow     color.RGBA
	Edge       color.RGBA
}

// DefaultOptions returns a 256 pixel preview with 4x supersampling.
func DefaultOptions() Options {
	return Options{
		Size:        256,
		Supersample: 4,
		Margin:      8,
		Background:  color.RGBA{0xe8, 0xe4, 0xda, 0xff},
		Shadow:      color.RGBA{0x30, 0x30, 0x38, 0xff},
		Edge:        color.RGBA{0xd0, 0x40, 0x30, 0xff},
	}
}

// Render rasterizes the footprint, centered and scaled to fit.
func Render(fp *Footprint, opts Options) *image.RGBA {
	ss := max(opts.Supersample, 1)
	size := max(opts.Size, 1)
	big := size * ss

	ext := fp.Size()
	span := max(ext.X(), ext.Y()) + 2*opts.Margin
	if span <= 0 {
		span = 1
	}
	scale := float32(big) / span
	center := fp.Min.Add(fp.Max).Mul(0.5)
	half := float32(big) / 2

	// Ground +y points up the image.
	toPixel := func(p mgl32.Vec2) (float32, float32) {
		return half + (p.X()-center.X())*scale, half - (p.Y()-center.Y())*scale
	}

	canvas := image.NewRGBA(image.Rect(0, 0, big, big))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	z := vector.NewRasterizer(big, big)
	for _, tri := range fp.Faces {
		z.MoveTo(toPixel(tri[0]))
		z.LineTo(toPixel(tri[1]))
		z.LineTo(toPixel(tri[2]))
		z.ClosePath()
	}
	z.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Shadow), image.Point{})

	if len(fp.Edges) > 0 {
		z.Reset(big, big)
		width := float32(ss)
		for _, e := range fp.Edges {
			strokeEdge(z, toPixel, e, width)
		}
		z.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Edge), image.Point{})
	}

	if ss == 1 {
		return canvas
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return dst
}

// strokeEdge adds a quad of the given pixel width around edge e.
func strokeEdge(z *vector.Rasterizer, toPixel func(mgl32.Vec2) (float32, float32), e [2]mgl32.Vec2, width float32) {
	ax, ay := toPixel(e[0])
	bx, by := toPixel(e[1])
	d := mgl32.Vec2{bx - ax, by - ay}
	if d.Len() < 1e-6 {
		return
	}
	n := mgl32.Vec2{-d.Y(), d.X()}.Normalize().Mul(width / 2)
	z.MoveTo(ax+n.X(), ay+n.Y())
	z.LineTo(bx+n.X(), by+n.Y())
	z.LineTo(bx-n.X(), by-n.Y())
	z.LineTo(ax-n.X(), ay-n.Y())
	z.ClosePath()
}

// Encode writes img as lossless WebP.
func Encode(w io.Writer, img image.Image) error {
	return errors.Wrap(nativewebp.Encode(w, img, nil), "webp encode")
}

// Save writes img as a WebP file, creating parent directories.
func Save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create preview directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create preview")
	}
	defer f.Close()

	return Encode(f, img)
}
