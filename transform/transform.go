// Package transform provides built-in raster transforms and the decorator
// that protects animated images from them.
package transform

import (
	"context"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/imageloading/animatedcache/core"
	apperrors "github.com/imageloading/animatedcache/errors"
	"github.com/imageloading/animatedcache/utils"
)

// ── Resize ────────────────────────────────────────────────────────────────────

// Resize scales the raster to the given dimensions, preserving aspect ratio
// when one axis is 0.  Comparable: two Resize values with the same fields
// compare equal.
type Resize struct {
	Width, Height int
	// Resampler controls quality vs speed.  Defaults to draw.BiLinear.
	Resampler xdraw.Interpolator
}

func (s Resize) Name() string { return "resize" }

func (s Resize) Apply(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTransform, s.Name(), err)
	}

	src := img.Raster()
	if src == nil {
		return nil, apperrors.New(apperrors.CategoryTransform, s.Name(), apperrors.ErrEmptyInput)
	}

	srcB := src.Bounds()
	dstW, dstH := utils.ScaleDimensions(srcB.Dx(), srcB.Dy(), s.Width, s.Height)

	if dstW == srcB.Dx() && dstH == srcB.Dy() {
		return img, nil // nothing to do
	}
	if dstW <= 0 || dstH <= 0 {
		return nil, apperrors.New(apperrors.CategoryTransform, s.Name(), apperrors.ErrInvalidDimensions)
	}

	sampler := s.Resampler
	if sampler == nil {
		sampler = xdraw.BiLinear
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	sampler.Scale(dst, dst.Bounds(), src, srcB, xdraw.Over, nil)

	meta := img.Meta()
	meta.Width = dstW
	meta.Height = dstH
	meta.ColorSpace = core.ColorSpaceRGBA
	return core.NewPlain(dst, meta), nil
}

// ── Grayscale ─────────────────────────────────────────────────────────────────

// Grayscale converts the raster to grayscale.
type Grayscale struct{}

func (s Grayscale) Name() string { return "grayscale" }

func (s Grayscale) Apply(ctx context.Context, img *core.Image) (*core.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTransform, s.Name(), err)
	}

	src := img.Raster()
	if src == nil {
		return nil, apperrors.New(apperrors.CategoryTransform, s.Name(), apperrors.ErrEmptyInput)
	}

	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(x, y, color.GrayModel.Convert(src.At(x, y)))
		}
	}

	meta := img.Meta()
	meta.ColorSpace = core.ColorSpaceGray
	meta.HasAlpha = false
	return core.NewPlain(dst, meta), nil
}

// compile-time interface checks
var _ core.Transform = Resize{}
var _ core.Transform = Grayscale{}
