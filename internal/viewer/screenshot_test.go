package viewer

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
}

func TestShotFilename(t *testing.T) {
	s := shots{dir: "out", clock: fixedClock}
	assert.Equal(t, filepath.Join("out", "combview_tnt2_2024-03-09_14-05-07.png"), s.filename("tnt2"))

	s.dir = ""
	assert.Equal(t, "combview_hardware_2024-03-09_14-05-07.png", s.filename(HardwareProfile))
}

func TestFlipRows(t *testing.T) {
	// Two rows, bottom row red, top row blue.
	pix := []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 0, 255, 255, 0, 0, 255, 255,
	}
	img, err := flipRows(pix, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), img.RGBAAt(0, 0).B)
	assert.Equal(t, uint8(255), img.RGBAAt(1, 1).R)

	_, err = flipRows(pix[:4], 2, 2)
	assert.ErrorContains(t, err, "size mismatch")
}

func TestShotSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := shots{dir: dir, clock: fixedClock}
	pix := make([]byte, 3*2*4)
	pix[0], pix[3] = 200, 255

	name, err := s.save(pix, 3, 2, "single")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(name))

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	r, _, _, _ := img.At(0, 1).RGBA()
	assert.Equal(t, uint32(200)<<8|200, r)
}
