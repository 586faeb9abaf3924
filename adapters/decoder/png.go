package decoder

import (
	"bytes"
	"context"
	"image/png"

	"github.com/imageloading/animatedcache/core"
	apperrors "github.com/imageloading/animatedcache/errors"
)

// PNG decodes PNG images using the standard library.
type PNG struct{}

func NewPNG() *PNG { return &PNG{} }

func (p *PNG) CanDecode(format core.Format) bool {
	return format == core.FormatPNG
}

func (p *PNG) Decode(ctx context.Context, data []byte, _ core.ResponseMeta) (*core.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "png.decode", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "png.decode", err)
	}

	return core.NewPlain(img, stillMeta(img, core.FormatPNG, int64(len(data)))), nil
}
