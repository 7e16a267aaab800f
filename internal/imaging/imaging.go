// Package imaging normalizes uploaded pictures before they reach the object
// store: decode any supported format, honor EXIF orientation, bound the
// dimensions, re-encode as JPEG.
package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
	"image/heic": true,
	"image/heif": true,
}

type SourceMeta struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

func AllowedContentType(contentType string) bool {
	return allowedContentTypes[strings.TrimSpace(strings.ToLower(contentType))]
}

func DetectContentType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	return http.DetectContentType(sample)
}

// isHeifFamily sniffs the ISO BMFF brand: [size:4][ftyp:4][brand:4].
func isHeifFamily(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	if string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "hevc", "hevx", "mif1", "msf1", "heif":
		return true
	default:
		return false
	}
}

func decodeAndAutoRotate(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if isHeifFamily(data) {
			if heicImg, heicErr := decodeHEIC(data); heicErr == nil {
				return heicImg, "heic", nil
			}
		}
		return nil, "", err
	}

	// Only JPEGs typically carry EXIF; decode failures are ignored.
	if strings.EqualFold(format, "jpeg") {
		if ex, exErr := exif.Decode(bytes.NewReader(data)); exErr == nil {
			if tag, tagErr := ex.Get(exif.Orientation); tagErr == nil {
				if orient, convErr := tag.Int(0); convErr == nil {
					img = applyOrientation(img, orient)
				}
			}
		}
	}

	return img, format, nil
}

func applyOrientation(img image.Image, orient int) image.Image {
	switch orient {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// EncodeJPEGFitInside decodes data, bounds it to maxSide on the longer edge
// without cropping, and re-encodes it as JPEG.
func EncodeJPEGFitInside(data []byte, maxSide, quality int) ([]byte, SourceMeta, error) {
	if maxSide <= 0 {
		return nil, SourceMeta{}, errors.New("maxSide must be > 0")
	}
	img, format, err := decodeAndAutoRotate(data)
	if err != nil {
		return nil, SourceMeta{}, err
	}

	bounds := img.Bounds()
	meta := SourceMeta{Width: bounds.Dx(), Height: bounds.Dy(), Format: format}

	resized := imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, SourceMeta{}, err
	}
	return buf.Bytes(), meta, nil
}
