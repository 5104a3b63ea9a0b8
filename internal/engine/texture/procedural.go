package texture

import (
	"image"
	"math"
)

// Sizes of the generated images.
const (
	DlightImageSize   = 32
	FogImageWidth     = 256
	FogImageHeight    = 32
	ParticleImageSize = 16
	PlaceholderSize   = 64
)

// ParticleImageName names the image built by NewParticleImage.
const ParticleImageName = "*particle"

// NewDlightImage builds the dynamic light falloff texture: bright center fading to black at the rim.
func NewDlightImage() *Image {
	pix := image.NewRGBA(image.Rect(0, 0, DlightImageSize, DlightImageSize))
	half := float64(DlightImageSize) / 2
	for y := 0; y < DlightImageSize; y++ {
		for x := 0; x < DlightImageSize; x++ {
			dx := (float64(x) + 0.5 - half) / half
			dy := (float64(y) + 0.5 - half) / half
			f := 1 - (dx*dx + dy*dy)
			if f < 0 {
				f = 0
			}
			v := uint8(f*255 + 0.5)
			i := pix.PixOffset(x, y)
			pix.Pix[i], pix.Pix[i+1], pix.Pix[i+2], pix.Pix[i+3] = v, v, v, 255
		}
	}
	img := NewImage("*dlight", pix, 0)
	img.Clamp = true
	return img
}

// NewFogImage builds the fog ramp. S is distance from the viewer, T is depth inside the volume
// (0..1/32 is outside, 31/32 is fully inside).
func NewFogImage() *Image {
	pix := image.NewRGBA(image.Rect(0, 0, FogImageWidth, FogImageHeight))
	for y := 0; y < FogImageHeight; y++ {
		depth := (float64(y)+0.5)/FogImageHeight*32/30 - 1.0/30
		if depth < 0 {
			depth = 0
		}
		if depth > 1 {
			depth = 1
		}
		for x := 0; x < FogImageWidth; x++ {
			dist := float64(x) / (FogImageWidth - 1)
			a := math.Sqrt(dist) * depth
			i := pix.PixOffset(x, y)
			pix.Pix[i], pix.Pix[i+1], pix.Pix[i+2] = 255, 255, 255
			pix.Pix[i+3] = uint8(a*255 + 0.5)
		}
	}
	img := NewImage("*fog", pix, 0)
	img.Clamp = true
	return img
}

// NewParticleImage builds a soft round dot used for particles.
func NewParticleImage() *Image {
	pix := image.NewRGBA(image.Rect(0, 0, ParticleImageSize, ParticleImageSize))
	half := float64(ParticleImageSize) / 2
	for y := 0; y < ParticleImageSize; y++ {
		for x := 0; x < ParticleImageSize; x++ {
			dx := (float64(x) + 0.5 - half) / half
			dy := (float64(y) + 0.5 - half) / half
			f := 1 - math.Sqrt(dx*dx+dy*dy)
			if f < 0 {
				f = 0
			}
			i := pix.PixOffset(x, y)
			pix.Pix[i], pix.Pix[i+1], pix.Pix[i+2] = 255, 255, 255
			pix.Pix[i+3] = uint8(f*255 + 0.5)
		}
	}
	return NewImage(ParticleImageName, pix, 0)
}

func checker(size int) *image.RGBA {
	pix := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := uint8(64)
			if (x/8+y/8)%2 == 0 {
				v = 192
			}
			i := pix.PixOffset(x, y)
			pix.Pix[i], pix.Pix[i+1], pix.Pix[i+2], pix.Pix[i+3] = v, v, v, 255
		}
	}
	return pix
}
