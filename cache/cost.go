package cache

import (
	"image"

	"github.com/imageloading/animatedcache/core"
)

// RasterCost estimates the resident byte size of the decoded raster:
// pixel bounds times bytes per pixel for the concrete raster type.
func RasterCost(img *core.Image) int64 {
	if img == nil || img.Raster() == nil {
		return 0
	}
	r := img.Raster()
	bounds := r.Bounds()
	return int64(bounds.Dx()) * int64(bounds.Dy()) * bytesPerPixel(r)
}

// AnimatedAwareCost is RasterCost plus, for animated images, the length of
// the retained encoded buffer.  The cache keeps the full encoded stream for
// the lifetime of an animated entry, not just the poster frame.
func AnimatedAwareCost(img *core.Image) int64 {
	cost := RasterCost(img)
	if img != nil && img.IsAnimated() {
		cost += int64(len(img.Encoded()))
	}
	return cost
}

func bytesPerPixel(r image.Image) int64 {
	switch r.(type) {
	case *image.Gray, *image.Paletted:
		return 1
	case *image.Gray16:
		return 2
	case *image.RGBA64, *image.NRGBA64:
		return 8
	default:
		// RGBA, NRGBA, YCbCr and everything else: assume 4.
		return 4
	}
}

// AllowAll is the default store policy: every image may be cached.
func AllowAll(*core.Image) bool { return true }

// DenyAnimated refuses storage of animated images; plain images pass.
func DenyAnimated(img *core.Image) bool {
	return img == nil || !img.IsAnimated()
}
