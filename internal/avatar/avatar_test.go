package avatar

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCropsAndScales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 120))
	for x := 0; x < 300; x++ {
		for y := 0; y < 120; y++ {
			c := color.RGBA{R: 200, A: 255}
			if x >= 90 && x < 210 {
				c = color.RGBA{B: 200, A: 255}
			}
			src.Set(x, y, c)
		}
	}
	var raw bytes.Buffer
	require.NoError(t, png.Encode(&raw, src))

	out, err := Normalize(raw.Bytes())
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, Size, img.Bounds().Dx())
	assert.Equal(t, Size, img.Bounds().Dy())

	// The crop keeps only the blue centre band.
	r, _, b, _ := img.At(Size/2, Size/2).RGBA()
	assert.Greater(t, b, r)
	r, _, b, _ = img.At(2, 2).RGBA()
	assert.Greater(t, b, r)
}

func TestNormalizeAcceptsJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 80))
	var raw bytes.Buffer
	require.NoError(t, jpeg.Encode(&raw, src, nil))
	out, err := Normalize(raw.Bytes())
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, Size, cfg.Width)
}

func TestNormalizeRejects(t *testing.T) {
	_, err := Normalize(nil)
	assert.Error(t, err)
	_, err = Normalize([]byte("GIF89a not really"))
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = Normalize(make([]byte, MaxBytes+1))
	assert.ErrorIs(t, err, ErrTooLarge)
}
