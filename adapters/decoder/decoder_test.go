package decoder_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"testing"

	"github.com/imageloading/animatedcache/adapters/decoder"
	"github.com/imageloading/animatedcache/core"
	apperrors "github.com/imageloading/animatedcache/errors"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

func newGIF(t *testing.T, w, h, frames int) []byte {
	t.Helper()
	palette := color.Palette{color.Black, color.White}
	g := &gif.GIF{}
	for i := 0; i < frames; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, w, h), palette)
		frame.SetColorIndex(i%w, i%h, 1)
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, 5)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("encode test gif: %v", err)
	}
	return buf.Bytes()
}

func newJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 50, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

// stub is a scriptable decoder for composition tests.
type stub struct {
	img    *core.Image
	err    error
	called int
}

func (s *stub) CanDecode(core.Format) bool { return true }

func (s *stub) Decode(_ context.Context, _ []byte, _ core.ResponseMeta) (*core.Image, error) {
	s.called++
	return s.img, s.err
}

// ── GIF decoder ───────────────────────────────────────────────────────────────

func TestGIF_Decode_Animated(t *testing.T) {
	raw := newGIF(t, 40, 30, 3)

	img, err := decoder.NewGIF().Decode(context.Background(), raw, core.ResponseMeta{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !img.IsAnimated() {
		t.Fatalf("kind: got %s, want animated", img.Kind())
	}
	if got := img.Meta().FrameCount; got != 3 {
		t.Errorf("frame count: got %d, want 3", got)
	}
	if img.Meta().Width != 40 || img.Meta().Height != 30 {
		t.Errorf("poster dimensions: %dx%d, want 40x30", img.Meta().Width, img.Meta().Height)
	}
	if !bytes.Equal(img.Encoded(), raw) {
		t.Error("encoded bytes not retained")
	}
	if img.Raster() == nil {
		t.Error("poster raster is nil")
	}
}

func TestGIF_Decode_EncodedBufferIsolated(t *testing.T) {
	raw := newGIF(t, 8, 8, 1)

	img, err := decoder.NewGIF().Decode(context.Background(), raw, core.ResponseMeta{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	raw[len(raw)-1] ^= 0xFF
	if bytes.Equal(img.Encoded(), raw) {
		t.Error("image shares the caller's buffer")
	}
}

func TestGIF_Decode_CanvasFromScreenDescriptor(t *testing.T) {
	// First frame covers only an offset sub-rectangle of the 64x48 canvas.
	palette := color.Palette{color.Black, color.White}
	g := &gif.GIF{
		Config: image.Config{Width: 64, Height: 48},
		Image: []*image.Paletted{
			image.NewPaletted(image.Rect(10, 10, 30, 25), palette),
			image.NewPaletted(image.Rect(0, 0, 64, 48), palette),
		},
		Delay: []int{5, 5},
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("encode test gif: %v", err)
	}

	img, err := decoder.NewGIF().Decode(context.Background(), buf.Bytes(), core.ResponseMeta{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Meta().Width != 64 || img.Meta().Height != 48 {
		t.Errorf("canvas: got %dx%d, want 64x48",
			img.Meta().Width, img.Meta().Height)
	}
}

func TestGIF_Decode_RejectsNonGIF(t *testing.T) {
	_, err := decoder.NewGIF().Decode(context.Background(), newJPEG(t, 10, 10), core.ResponseMeta{})
	if !errors.Is(err, apperrors.ErrUnsupportedFormat) {
		t.Errorf("error: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestGIF_Decode_MalformedPayload(t *testing.T) {
	// Valid signature, truncated body.
	_, err := decoder.NewGIF().Decode(context.Background(), []byte("GIF89a\x01"), core.ResponseMeta{})
	if err == nil {
		t.Fatal("expected decode error for truncated gif")
	}
	if !apperrors.IsCategory(err, apperrors.CategoryDecode) {
		t.Errorf("category: got %v, want decode", err)
	}
}

// ── Composite ─────────────────────────────────────────────────────────────────

func TestComposite_ShortCircuit(t *testing.T) {
	want := core.NewPlain(image.NewRGBA(image.Rect(0, 0, 1, 1)), core.Metadata{})
	first := &stub{img: want}
	second := &stub{img: core.NewPlain(image.NewRGBA(image.Rect(0, 0, 2, 2)), core.Metadata{})}

	got, err := decoder.NewComposite(first, second).
		Decode(context.Background(), []byte("GIF89a"), core.ResponseMeta{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != want {
		t.Error("first decoder's result not returned")
	}
	if second.called != 0 {
		t.Error("second decoder invoked despite first success")
	}
}

func TestComposite_Fallthrough(t *testing.T) {
	want := core.NewPlain(image.NewRGBA(image.Rect(0, 0, 1, 1)), core.Metadata{})
	first := &stub{err: apperrors.New(apperrors.CategoryDecode, "stub", apperrors.ErrUnsupportedFormat)}
	second := &stub{img: want}

	got, err := decoder.NewComposite(first, second).
		Decode(context.Background(), []byte("GIF89a"), core.ResponseMeta{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != want {
		t.Error("fallthrough did not return second decoder's result")
	}
	if first.called != 1 || second.called != 1 {
		t.Errorf("call counts: first=%d second=%d, want 1 and 1", first.called, second.called)
	}
}

func TestComposite_AllFail(t *testing.T) {
	first := &stub{err: apperrors.New(apperrors.CategoryDecode, "stub", apperrors.ErrUnsupportedFormat)}
	second := &stub{err: apperrors.New(apperrors.CategoryDecode, "stub", apperrors.ErrUnsupportedFormat)}

	_, err := decoder.NewComposite(first, second).
		Decode(context.Background(), []byte("GIF89a"), core.ResponseMeta{})
	if !errors.Is(err, apperrors.ErrUnsupportedFormat) {
		t.Errorf("error: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestComposite_RealDecoders_GIFPrecedence(t *testing.T) {
	comp := decoder.NewComposite(decoder.NewGIF(), decoder.NewJPEG(), decoder.NewPNG())

	img, err := comp.Decode(context.Background(), newGIF(t, 16, 16, 2), core.ResponseMeta{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !img.IsAnimated() {
		t.Error("gif payload did not take the animated path")
	}

	plain, err := comp.Decode(context.Background(), newJPEG(t, 16, 16), core.ResponseMeta{})
	if err != nil {
		t.Fatalf("Decode jpeg: %v", err)
	}
	if plain.IsAnimated() {
		t.Error("jpeg payload decoded as animated")
	}
}

func TestComposite_ContentTypeHint(t *testing.T) {
	// A GIF payload with a misleading jpeg content type skips the GIF
	// decoder; nothing else can parse it.
	comp := decoder.NewComposite(decoder.NewGIF(), decoder.NewJPEG())
	_, err := comp.Decode(context.Background(), newGIF(t, 8, 8, 1),
		core.ResponseMeta{ContentType: "image/jpeg"})
	if err == nil {
		t.Error("expected decode failure under wrong content-type hint")
	}
}

func TestComposite_EmptyInput(t *testing.T) {
	_, err := decoder.NewComposite(decoder.NewGIF()).
		Decode(context.Background(), nil, core.ResponseMeta{})
	if !errors.Is(err, apperrors.ErrEmptyInput) {
		t.Errorf("error: got %v, want ErrEmptyInput", err)
	}
}
