package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestThumbnailProducesA300x300JPEG(t *testing.T) {
	src := encodePNG(t, solidImage(800, 600, color.RGBA{R: 10, G: 200, B: 30, A: 255}))

	out, err := Thumbnail(src)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode thumbnail jpeg: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != ThumbnailSize || b.Dy() != ThumbnailSize {
		t.Fatalf("expected a %dx%d thumbnail, got %dx%d", ThumbnailSize, ThumbnailSize, b.Dx(), b.Dy())
	}
}

func TestThumbnailHandlesPortraitAndLandscapeSources(t *testing.T) {
	cases := []struct {
		name string
		w, h int
	}{
		{"landscape", 1000, 400},
		{"portrait", 400, 1000},
		{"square", 500, 500},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			src := encodePNG(t, solidImage(c.w, c.h, color.RGBA{R: 1, G: 2, B: 3, A: 255}))
			out, err := Thumbnail(src)
			if err != nil {
				t.Fatalf("Thumbnail: %v", err)
			}
			decoded, err := jpeg.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if decoded.Bounds().Dx() != ThumbnailSize || decoded.Bounds().Dy() != ThumbnailSize {
				t.Fatalf("expected a square thumbnail for %s source", c.name)
			}
		})
	}
}

func TestThumbnailRejectsUndecodableInput(t *testing.T) {
	if _, err := Thumbnail([]byte("not an image")); err == nil {
		t.Fatal("expected an error for undecodable input")
	}
}
