package decoder

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"

	"github.com/imageloading/animatedcache/core"
	apperrors "github.com/imageloading/animatedcache/errors"
)

// JPEG decodes JPEG images using the standard library.
type JPEG struct{}

// NewJPEG returns an initialised JPEG decoder.
func NewJPEG() *JPEG { return &JPEG{} }

func (j *JPEG) CanDecode(format core.Format) bool {
	return format == core.FormatJPEG || format == core.FormatUnknown
}

func (j *JPEG) Decode(ctx context.Context, data []byte, _ core.ResponseMeta) (*core.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "jpeg.decode", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "jpeg.decode", err)
	}

	return core.NewPlain(img, stillMeta(img, core.FormatJPEG, int64(len(data)))), nil
}

// stillMeta builds Metadata for a single-frame raster.
func stillMeta(img image.Image, f core.Format, size int64) core.Metadata {
	bounds := img.Bounds()
	return core.Metadata{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Format:     f,
		ColorSpace: colorSpace(img),
		HasAlpha:   hasAlpha(img),
		SizeBytes:  size,
		FrameCount: 1,
	}
}

// colorSpace returns the colour space of an image.Image.
func colorSpace(img image.Image) core.ColorSpace {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return core.ColorSpaceGray
	case *image.RGBA, *image.NRGBA, *image.RGBA64:
		return core.ColorSpaceRGBA
	}
	return core.ColorSpaceRGB
}

func hasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		return true
	}
	return false
}
