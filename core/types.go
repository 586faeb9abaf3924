package core

import (
	"fmt"
	"hash/fnv"
	"image"
)

// Format identifies an image codec.
type Format string

const (
	FormatGIF     Format = "gif"
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatWebP    Format = "webp"
	FormatUnknown Format = "unknown"
)

// ColorSpace represents the image colour model.
type ColorSpace string

const (
	ColorSpaceRGB  ColorSpace = "rgb"
	ColorSpaceRGBA ColorSpace = "rgba"
	ColorSpaceGray ColorSpace = "gray"
)

// Kind distinguishes the two Image variants.
type Kind string

const (
	KindPlain    Kind = "plain"
	KindAnimated Kind = "animated"
)

// Metadata holds information extracted during decode.
type Metadata struct {
	Width      int
	Height     int
	Format     Format
	ColorSpace ColorSpace
	HasAlpha   bool
	SizeBytes  int64

	// FrameCount is the number of frames in the encoded stream; 1 for
	// still images.
	FrameCount int
}

// Image is the decoded representation passed between decoders, transforms,
// the cache, and display slots.  It has exactly two variants:
//
//   - KindPlain: a decoded raster, nothing else.
//   - KindAnimated: a poster raster (the decoded first frame) plus the
//     original encoded byte stream, retained so the full animation can be
//     built later without re-fetching.
//
// An Image is immutable once constructed; transforms return new values.
type Image struct {
	kind    Kind
	raster  image.Image
	encoded []byte
	meta    Metadata
}

// NewPlain constructs a plain Image from a decoded raster.
func NewPlain(raster image.Image, meta Metadata) *Image {
	return &Image{kind: KindPlain, raster: raster, meta: meta}
}

// NewAnimated constructs an animated Image.  The poster must be a decode of
// the first frame of encoded, which must be non-empty.  The encoded bytes
// are copied so later mutation of the caller's buffer cannot corrupt the
// Image.
func NewAnimated(poster image.Image, encoded []byte, meta Metadata) (*Image, error) {
	if poster == nil {
		return nil, fmt.Errorf("animated image: nil poster raster")
	}
	if len(encoded) == 0 {
		return nil, fmt.Errorf("animated image: empty encoded buffer")
	}
	buf := make([]byte, len(encoded))
	copy(buf, encoded)
	return &Image{kind: KindAnimated, raster: poster, encoded: buf, meta: meta}, nil
}

// Kind returns the variant tag.  Switch on it wherever kind-specific
// behaviour is needed.
func (i *Image) Kind() Kind { return i.kind }

// IsAnimated reports whether the Image is the animated variant.
func (i *Image) IsAnimated() bool { return i.kind == KindAnimated }

// Raster returns the decoded pixels: the full raster for a plain Image, the
// poster frame for an animated one.
func (i *Image) Raster() image.Image { return i.raster }

// Encoded returns the original encoded byte stream of an animated Image, or
// nil for a plain one.  Callers must not modify the returned slice.
func (i *Image) Encoded() []byte { return i.encoded }

// Meta returns the metadata extracted at decode time.
func (i *Image) Meta() Metadata { return i.meta }

// RequestKey is a deterministic fingerprint of an image request, used as the
// cache key.  Equal requests always produce equal keys.
type RequestKey string

// NewRequestKey derives a key from a source URL and the processing
// parameters applied to it (transform names, dimensions, etc.).
func NewRequestKey(url string, params ...string) RequestKey {
	h := fnv.New64a()
	h.Write([]byte(url))
	for _, p := range params {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return RequestKey(fmt.Sprintf("%s#%016x", url, h.Sum64()))
}

// ResponseMeta carries hints that accompany a raw byte payload, such as the
// upstream-declared content type.
type ResponseMeta struct {
	ContentType string // optional; overrides byte sniffing when set
	SourceURL   string // optional logical origin, used for logging only
	Size        int64  // -1 if unknown
}

// Animation is the opaque drivable object produced by an Animator.  The
// rendering layer owns its concrete type; this package never inspects it.
type Animation interface{}
