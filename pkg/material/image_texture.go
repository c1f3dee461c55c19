package material

import (
	"image"
	"math"

	"github.com/df07/go-photon-raytracer/pkg/core"
)

// ImageTexture is a nearest-texel lookup into a decoded image. Row 0 is the
// top of the image, which is v = 1.
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Pixels[y*Width + x]
}

// NewImageTexture wraps row-major texels
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{Width: width, Height: height, Pixels: pixels}
}

// NewImageTextureFromImage converts a decoded image into texels in [0, 1]
func NewImageTextureFromImage(img image.Image) *ImageTexture {
	bounds := img.Bounds()
	texture := NewImageTexture(bounds.Dx(), bounds.Dy(), make([]core.Vec3, bounds.Dx()*bounds.Dy()))

	for y := 0; y < texture.Height; y++ {
		for x := 0; x < texture.Width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			texture.Pixels[y*texture.Width+x] = core.NewVec3(float64(r)/0xffff, float64(g)/0xffff, float64(b)/0xffff)
		}
	}
	return texture
}

// At returns the texel in column x of row y
func (t *ImageTexture) At(x, y int) core.Vec3 {
	return t.Pixels[y*t.Width+x]
}

// Evaluate returns the texel under uv; coordinates wrap around
func (t *ImageTexture) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return core.Vec3{}
	}
	u := uv.X - math.Floor(uv.X)
	v := uv.Y - math.Floor(uv.Y)

	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int((1-v)*float64(t.Height)), t.Height-1)
	return t.At(x, y)
}
