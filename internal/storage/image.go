package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	pictureSize    = 600
	pictureQuality = 80

	// maxSourcePixels bounds the decoded source (about 160 MB as RGBA).
	maxSourcePixels = 40_000_000
	// maxPictureSide bounds either side of the scaled output.
	maxPictureSide = 10 * pictureSize
)

// processPicture scales the image so that it covers a 600x600 box while
// keeping its aspect ratio, flattens transparency onto white and re-encodes
// it as JPEG.
func processPicture(data []byte) ([]byte, error) {
	header, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	w, h, err := pictureBounds(header.Width, header.Height)
	if err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	bounds := src.Bounds()

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: pictureQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// pictureBounds validates the source dimensions before anything is decoded
// and returns the scaled output size.
func pictureBounds(srcW, srcH int) (int, int, error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	if int64(srcW)*int64(srcH) > maxSourcePixels {
		return 0, 0, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, srcW, srcH, maxSourcePixels)
	}
	w, h := coverSize(srcW, srcH, pictureSize, pictureSize)
	if w == 0 || h == 0 || w > maxPictureSide || h > maxPictureSide {
		return 0, 0, fmt.Errorf("%w: aspect ratio of %dx%d is too extreme", ErrInvalidImage, srcW, srcH)
	}
	return w, h, nil
}

// coverSize returns the smallest size with the source aspect ratio that is
// at least boxW x boxH.
func coverSize(srcW, srcH, boxW, boxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	scale := math.Max(float64(boxW)/float64(srcW), float64(boxH)/float64(srcH))
	return int(math.Round(float64(srcW) * scale)), int(math.Round(float64(srcH) * scale))
}
