package glstate

import (
	"image"

	"github.com/go-gl/gl/v2.1/gl"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/midgard-gl/internal/engine/texture"
)

func target(img *texture.Image) uint32 {
	if img.Target == texture.TargetRectangle {
		return tokTextureRectARB
	}
	return gl.TEXTURE_2D
}

// upload creates the GL texture of img, resampling it to its internal size.
// The pixels are released afterwards.
func (s *Submitter) upload(img *texture.Image) {
	pix := img.Pixels
	if pix == nil {
		pix = image.NewRGBA(image.Rect(0, 0, 1, 1))
		copy(pix.Pix, []uint8{255, 255, 255, 255})
	}
	if b := pix.Bounds(); img.InternalWidth > 0 && img.InternalHeight > 0 &&
		(b.Dx() != img.InternalWidth || b.Dy() != img.InternalHeight) {
		scaled := image.NewRGBA(image.Rect(0, 0, img.InternalWidth, img.InternalHeight))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), pix, b, draw.Src, nil)
		pix = scaled
	}

	tgt := target(img)
	gl.GenTextures(1, &img.ID)
	gl.BindTexture(tgt, img.ID)

	wrap := int32(gl.REPEAT)
	if img.Clamp || tgt == tokTextureRectARB {
		wrap = gl.CLAMP_TO_EDGE
	}
	gl.TexParameteri(tgt, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(tgt, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameteri(tgt, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(tgt, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	b := pix.Bounds()
	gl.TexImage2D(tgt, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix.Pix))
	img.Pixels = nil

	s.log.Debug("texture uploaded",
		zap.String("image", img.Name),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
		zap.Uint32("id", img.ID))
}

// Release deletes the GL textures of images.
func Release(images []*texture.Image) {
	for _, img := range images {
		if img != nil && img.ID != 0 {
			gl.DeleteTextures(1, &img.ID)
			img.ID = 0
		}
	}
}

func whitePixels() *image.RGBA {
	pix := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range pix.Pix {
		pix.Pix[i] = 255
	}
	return pix
}
