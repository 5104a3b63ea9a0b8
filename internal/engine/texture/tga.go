// Package texture provides image handles, decoding and procedural images for the renderer.
package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeGray         = 3  // Uncompressed grayscale
	TGATypeRLE          = 10 // RLE compressed true-color
	TGATypeRLEGray      = 11 // RLE compressed grayscale
)

const tgaTopToBottom = 0x20

// DecodeTGA decodes a TGA image file.
// Supports true-color (24/32 bit) and grayscale (8 bit) images, uncompressed or RLE.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	gray := imageType == TGATypeGray || imageType == TGATypeRLEGray
	switch imageType {
	case TGATypeUncompressed, TGATypeRLE:
		if bpp != 24 && bpp != 32 {
			return nil, fmt.Errorf("unsupported TGA bit depth %d for true-color", bpp)
		}
	case TGATypeGray, TGATypeRLEGray:
		if bpp != 8 {
			return nil, fmt.Errorf("unsupported TGA bit depth %d for grayscale", bpp)
		}
	default:
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}
	r := &tgaReader{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		width:       width,
		height:      height,
		bpp:         bpp / 8,
		gray:        gray,
		topToBottom: descriptor&tgaTopToBottom != 0,
	}
	pixelData := data[offset:]

	if imageType == TGATypeUncompressed || imageType == TGATypeGray {
		if len(pixelData) < width*height*r.bpp {
			return nil, fmt.Errorf("TGA pixel data truncated")
		}
		for i := 0; i < width*height; i++ {
			r.put(i, r.pixel(pixelData[i*r.bpp:]))
		}
		return r.img, nil
	}

	if err := r.decodeRLE(pixelData); err != nil {
		return nil, err
	}
	return r.img, nil
}

type tgaReader struct {
	img         *image.RGBA
	width       int
	height      int
	bpp         int
	gray        bool
	topToBottom bool
}

func (r *tgaReader) pixel(p []byte) color.RGBA {
	if r.gray {
		return color.RGBA{R: p[0], G: p[0], B: p[0], A: 255}
	}
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.bpp == 4 {
		c.A = p[3]
	}
	return c
}

func (r *tgaReader) put(idx int, c color.RGBA) {
	x := idx % r.width
	y := idx / r.width
	if !r.topToBottom {
		y = r.height - 1 - y
	}
	r.img.SetRGBA(x, y, c)
}

// decodeRLE decodes RLE-compressed pixel data. Truncated input leaves the rest transparent.
func (r *tgaReader) decodeRLE(data []byte) error {
	total := r.width * r.height
	idx := 0
	pos := 0

	for idx < total && pos < len(data) {
		packet := data[pos]
		pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if pos+r.bpp > len(data) {
				break
			}
			c := r.pixel(data[pos:])
			pos += r.bpp
			for i := 0; i < count && idx < total; i++ {
				r.put(idx, c)
				idx++
			}
			continue
		}
		for i := 0; i < count && idx < total; i++ {
			if pos+r.bpp > len(data) {
				return fmt.Errorf("TGA RLE raw packet truncated at pixel %d", idx)
			}
			r.put(idx, r.pixel(data[pos:]))
			pos += r.bpp
			idx++
		}
	}
	return nil
}

// ImageToRGBA converts any image.Image to *image.RGBA.
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba
}
