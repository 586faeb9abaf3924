// Package decoder provides format-specific image decoders.
package decoder

import (
	"bytes"
	"context"
	"fmt"
	"image/gif"

	"github.com/imageloading/animatedcache/core"
	apperrors "github.com/imageloading/animatedcache/errors"
	"github.com/imageloading/animatedcache/utils"
)

// GIF decodes GIF streams into the animated Image variant: the first frame
// becomes the poster raster and the encoded bytes are retained so the full
// animation can be built later.
type GIF struct{}

// NewGIF returns an initialised GIF decoder.
func NewGIF() *GIF { return &GIF{} }

func (g *GIF) CanDecode(format core.Format) bool {
	return format == core.FormatGIF || format == core.FormatUnknown
}

func (g *GIF) Decode(ctx context.Context, data []byte, _ core.ResponseMeta) (*core.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "gif.decode", err)
	}
	if !utils.IsAnimatedFormat(data) {
		return nil, apperrors.New(apperrors.CategoryDecode, "gif.decode",
			fmt.Errorf("%w: missing GIF signature", apperrors.ErrUnsupportedFormat))
	}

	all, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil || len(all.Image) == 0 {
		if err == nil {
			err = apperrors.ErrEmptyInput
		}
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "gif.decode", err)
	}

	poster := all.Image[0]
	// The logical screen descriptor gives the canvas size; the first frame
	// may be a smaller sub-rectangle of it.
	width, height := all.Config.Width, all.Config.Height
	if width == 0 || height == 0 {
		bounds := poster.Bounds()
		width, height = bounds.Dx(), bounds.Dy()
	}
	meta := core.Metadata{
		Width:      width,
		Height:     height,
		Format:     core.FormatGIF,
		ColorSpace: core.ColorSpaceRGBA,
		SizeBytes:  int64(len(data)),
		FrameCount: len(all.Image),
	}

	img, err := core.NewAnimated(poster, data, meta)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "gif.decode", err)
	}
	return img, nil
}
