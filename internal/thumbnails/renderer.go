package thumbnails

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
)

// ImageRenderer decodes a source image file and produces a square,
// box-downsampled JPEG bitmap. Decoder choice is explicitly out of scope
// for the cache contract itself (spec.md §6) — this is the default
// production Renderer, covering the image formats the standard library
// decodes natively; no third-party image-processing library appears
// anywhere in the retrieval pack to ground a richer one.
type ImageRenderer struct {
	// Quality is the JPEG encoding quality (1-100).
	Quality int
}

// NewImageRenderer returns a renderer with a sensible default JPEG quality.
func NewImageRenderer() *ImageRenderer {
	return &ImageRenderer{Quality: 85}
}

// Render decodes sourcePath and returns a JPEG bitmap whose longer edge is
// sizeHint and whose shorter edge keeps the source aspect ratio (neither
// cropped nor padded to a square).
func (r *ImageRenderer) Render(sourcePath string, sizeHint int) (Bitmap, error) {
	f, err := os.Open(sourcePath)
	if err != nil {
		return Bitmap{}, fmt.Errorf("thumbnails: open source: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return Bitmap{}, fmt.Errorf("thumbnails: decode %s: %w", sourcePath, err)
	}

	scaled := boxResize(src, sizeHint)

	var buf bytes.Buffer
	quality := r.Quality
	if quality <= 0 {
		quality = 85
	}
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return Bitmap{}, fmt.Errorf("thumbnails: encode: %w", err)
	}

	bounds := scaled.Bounds()
	return Bitmap{
		Bytes:  buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// boxResize downsamples src so its longer edge fits within maxDim, using
// box averaging (each destination pixel is the mean of its source region).
// Upscaling falls back to nearest-neighbor since thumbnails never need to
// exceed their source resolution in practice.
func boxResize(src image.Image, maxDim int) *image.RGBA {
	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 {
		maxDim = 256
	}

	dstW, dstH := maxDim, maxDim
	if srcW > srcH {
		dstH = srcH * maxDim / srcW
	} else if srcH > srcW {
		dstW = srcW * maxDim / srcH
	}
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xRatio := float64(srcW) / float64(dstW)
	yRatio := float64(srcH) / float64(dstH)

	for dy := 0; dy < dstH; dy++ {
		sy0 := int(float64(dy) * yRatio)
		sy1 := int(float64(dy+1) * yRatio)
		if sy1 <= sy0 {
			sy1 = sy0 + 1
		}
		for dx := 0; dx < dstW; dx++ {
			sx0 := int(float64(dx) * xRatio)
			sx1 := int(float64(dx+1) * xRatio)
			if sx1 <= sx0 {
				sx1 = sx0 + 1
			}
			dst.Set(dx, dy, averageRegion(src, bounds.Min.X+sx0, bounds.Min.Y+sy0, bounds.Min.X+sx1, bounds.Min.Y+sy1))
		}
	}
	return dst
}

func averageRegion(img image.Image, x0, y0, x1, y1 int) color.RGBA {
	var rSum, gSum, bSum, aSum, count uint64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			rSum += uint64(r >> 8)
			gSum += uint64(g >> 8)
			bSum += uint64(b >> 8)
			aSum += uint64(a >> 8)
			count++
		}
	}
	if count == 0 {
		return color.RGBA{}
	}
	return color.RGBA{
		R: uint8(rSum / count),
		G: uint8(gSum / count),
		B: uint8(bSum / count),
		A: uint8(aSum / count),
	}
}
