// Package avatar normalizes uploaded profile photos.
package avatar

import (
	"bytes"
	"errors"
	"image"
	stddraw "image/draw"
	_ "image/jpeg"
	"image/png"
	"net/http"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	Size     = 256
	MaxBytes = 10 << 20
)

var (
	ErrUnsupported = errors.New("photo must be png, jpeg, or webp")
	ErrTooLarge    = errors.New("photo is larger than 10 MB")
)

// Normalize center-crops raw to a square and scales it to Size x Size PNG.
func Normalize(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, errors.New("photo file is empty")
	}
	if len(raw) > MaxBytes {
		return nil, ErrTooLarge
	}
	switch http.DetectContentType(raw) {
	case "image/png", "image/jpeg", "image/webp":
	default:
		return nil, ErrUnsupported
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		decoded, webpErr := webp.Decode(bytes.NewReader(raw))
		if webpErr != nil {
			return nil, errors.New("unable to decode photo")
		}
		img = decoded
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid image dimensions")
	}
	side := min(width, height)
	cropRect := image.Rect(0, 0, side, side)
	square := image.NewRGBA(cropRect)
	origin := image.Point{X: bounds.Min.X + (width-side)/2, Y: bounds.Min.Y + (height-side)/2}
	stddraw.Draw(square, cropRect, img, origin, stddraw.Src)

	out := image.NewRGBA(image.Rect(0, 0, Size, Size))
	xdraw.CatmullRom.Scale(out, out.Bounds(), square, square.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, errors.New("unable to encode photo")
	}
	return buf.Bytes(), nil
}
