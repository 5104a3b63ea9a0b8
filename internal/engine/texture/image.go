package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // BMP decoder registration
)

// Target is the texture binding target.
type Target uint8

// Texture targets.
const (
	Target2D Target = iota
	// TargetRectangle addresses texels in pixels rather than normalized coordinates.
	TargetRectangle
)

// Image is a texture known to the renderer. Pixels are kept until the image is uploaded;
// ID is the GL texture name assigned by the uploader (0 = not uploaded).
type Image struct {
	Name           string
	Width          int
	Height         int
	InternalWidth  int
	InternalHeight int
	HasAlpha       bool
	Target         Target
	Clamp          bool

	Pixels *image.RGBA
	ID     uint32
}

// NewImage wraps decoded pixels into an Image, computing the internal (power of two) size.
func NewImage(name string, pix *image.RGBA, maxSize int) *Image {
	b := pix.Bounds()
	img := &Image{
		Name:   name,
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: pix,
	}
	img.InternalWidth = internalSize(img.Width, maxSize)
	img.InternalHeight = internalSize(img.Height, maxSize)
	img.HasAlpha = hasAlpha(pix)
	return img
}

// NewRectImage wraps pixels for the rectangle target; internal size equals image size.
func NewRectImage(name string, pix *image.RGBA) *Image {
	img := NewImage(name, pix, 0)
	img.Target = TargetRectangle
	img.InternalWidth = img.Width
	img.InternalHeight = img.Height
	return img
}

// NoAlpha reports whether img is missing or has no alpha channel. A nil image stands for white.
func NoAlpha(img *Image) bool {
	return img == nil || !img.HasAlpha
}

// DisplayName returns the image name, or "*white" for nil.
func DisplayName(img *Image) string {
	if img == nil {
		return "*white"
	}
	return img.Name
}

// Load reads and decodes an image file. TGA is decoded locally, other formats through image.Decode.
func Load(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return Decode(data, filepath.Base(path))
}

// LoadFS reads and decodes an image from a file system.
func LoadFS(fsys fs.FS, name string) (*image.RGBA, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return Decode(data, path.Base(name))
}

// Decode decodes image data; the file name selects the TGA decoder.
func Decode(data []byte, name string) (*image.RGBA, error) {
	var img image.Image
	var err error
	if strings.EqualFold(path.Ext(name), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return ImageToRGBA(img), nil
}

func internalSize(size, maxSize int) int {
	n := 1
	for n < size {
		n <<= 1
	}
	if maxSize > 0 && n > maxSize {
		n = maxSize
	}
	return n
}

func hasAlpha(pix *image.RGBA) bool {
	for i := 3; i < len(pix.Pix); i += 4 {
		if pix.Pix[i] != 255 {
			return true
		}
	}
	return false
}
