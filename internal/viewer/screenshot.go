package viewer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// shotTimeFormat keeps screenshot names sortable.
const shotTimeFormat = "2006-01-02_15-04-05"

// shots writes screenshots named after the active profile.
type shots struct {
	dir   string
	clock func() time.Time
}

// filename returns the path for a screenshot taken now with profile.
func (s *shots) filename(profile string) string {
	name := fmt.Sprintf("combview_%s_%s.png", profile, s.clock().Format(shotTimeFormat))
	if s.dir == "" {
		return name
	}
	return filepath.Join(s.dir, name)
}

// flipRows turns bottom-up RGBA rows into an image.
func flipRows(pix []byte, width, height int) (*image.RGBA, error) {
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pix))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pix[src:src+row])
	}
	return img, nil
}

// save encodes the back buffer pixels as PNG and returns the file name.
func (s *shots) save(pix []byte, width, height int, profile string) (string, error) {
	img, err := flipRows(pix, width, height)
	if err != nil {
		return "", err
	}
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return "", fmt.Errorf("creating screenshot dir: %w", err)
		}
	}
	name := s.filename(profile)
	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return name, nil
}
