package decoder

import (
	"context"
	"fmt"

	"github.com/imageloading/animatedcache/core"
	apperrors "github.com/imageloading/animatedcache/errors"
	"github.com/imageloading/animatedcache/utils"
)

// Composite tries an ordered sequence of decoders and returns the first
// successful result.  Order is caller-specified and significant: it decides
// precedence when more than one decoder could match the payload.
type Composite struct {
	decoders []core.Decoder
}

// NewComposite builds a Composite over ds, tried in the given order.
func NewComposite(ds ...core.Decoder) *Composite {
	return &Composite{decoders: ds}
}

// Decode sniffs the payload format, then walks the decoder list.  A decoder
// failure (format mismatch or malformed payload) terminates that decoder's
// attempt only; the walk continues.  When every decoder fails, the last
// failure is returned wrapped, or ErrUnsupportedFormat if none matched.
func (c *Composite) Decode(ctx context.Context, data []byte, meta core.ResponseMeta) (*core.Image, error) {
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, "composite.decode", apperrors.ErrEmptyInput)
	}

	format := core.Format(utils.DetectFormat(data))
	if meta.ContentType != "" {
		format = contentTypeToFormat(meta.ContentType)
	}

	var lastErr error
	for _, d := range c.decoders {
		if !d.CanDecode(format) {
			continue
		}
		img, err := d.Decode(ctx, data, meta)
		if err == nil && img != nil {
			return img, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.Wrap(apperrors.CategoryDecode, "composite.decode", ctxErr)
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, apperrors.New(apperrors.CategoryDecode, "composite.decode",
		fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, format))
}

// CanDecode reports whether any member decoder accepts the format hint.
func (c *Composite) CanDecode(format core.Format) bool {
	for _, d := range c.decoders {
		if d.CanDecode(format) {
			return true
		}
	}
	return false
}

// contentTypeToFormat maps MIME types to Format values.
func contentTypeToFormat(ct string) core.Format {
	switch ct {
	case "image/gif":
		return core.FormatGIF
	case "image/jpeg", "image/jpg":
		return core.FormatJPEG
	case "image/png":
		return core.FormatPNG
	case "image/webp":
		return core.FormatWebP
	}
	return core.FormatUnknown
}
