package transform

import (
	"context"

	"github.com/imageloading/animatedcache/core"
)

// AnimatedBypass wraps another transform and passes animated images through
// untouched.  Resizing or recompressing animated content would discard the
// encoded byte buffer needed to build the full animation, so the wrapped
// transform only ever sees plain images.
//
// AnimatedBypass is a comparable value: two instances wrapping equal
// transforms compare equal with ==, which upstream pipelines use to
// deduplicate processing work.
type AnimatedBypass struct {
	Wrapped core.Transform
}

// Bypass wraps t in an AnimatedBypass.
func Bypass(t core.Transform) AnimatedBypass {
	return AnimatedBypass{Wrapped: t}
}

func (b AnimatedBypass) Name() string {
	if b.Wrapped == nil {
		return "animated_bypass"
	}
	return "animated_bypass(" + b.Wrapped.Name() + ")"
}

// Apply returns img unchanged when it is animated; otherwise it delegates to
// the wrapped transform and returns its result verbatim, errors included.
func (b AnimatedBypass) Apply(ctx context.Context, img *core.Image) (*core.Image, error) {
	if img != nil && img.IsAnimated() {
		return img, nil
	}
	if b.Wrapped == nil {
		return img, nil
	}
	return b.Wrapped.Apply(ctx, img)
}

var _ core.Transform = AnimatedBypass{}
