package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"image/jpeg"

	"golang.org/x/image/draw"
)

const (
	ThumbnailSize    = 300
	thumbnailQuality = 80
)

// Thumbnail produces a 300x300 cover-fit JPEG at quality 80 from an
// arbitrary source image (spec §4.6 step 2). Grounded on the teacher's
// avatar pipeline's center-crop-then-scale shape, dropping the circular
// clip and switching the encoder to JPEG.
func Thumbnail(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	cropped := centerCropSquare(img)

	dst := image.NewRGBA(image.Rect(0, 0, ThumbnailSize, ThumbnailSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}

func centerCropSquare(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)
	return cropped
}
