package thumbnail

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/staticbay/assetpipe/asset"
	"github.com/staticbay/assetpipe/common/storage"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func savedImage(t *testing.T, store *storage.Memory, name string) image.Image {
	t.Helper()
	handle, err := store.Open(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to open stored thumbnail: %v", err)
	}
	defer handle.Close()
	img, _, err := image.Decode(handle)
	if err != nil {
		t.Fatalf("failed to decode stored thumbnail: %v", err)
	}
	return img
}

func mustMethod(t *testing.T, name string) Method {
	t.Helper()
	m, err := LookupMethod(name)
	if err != nil {
		t.Fatalf("LookupMethod failed: %v", err)
	}
	return m
}

func TestSaveResizesProportionally(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory("/media")
	source := asset.NewBufferURL("photo.png", "/static/photo.png", pngBytes(t, 100, 50))

	a := NewAsset(source, 50, 0, mustMethod(t, Proportional))
	if err := a.Save(ctx, store, "out.png", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	img := savedImage(t, store, "out.png")
	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 25 {
		t.Errorf("expected 50x25, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestSaveCropsToExactSize(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory("/media")
	source := asset.NewBufferURL("photo.png", "/static/photo.png", pngBytes(t, 100, 50))

	a := NewAsset(source, 40, 40, mustMethod(t, Crop))
	if err := a.Save(ctx, store, "out.png", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	img := savedImage(t, store, "out.png")
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 40 {
		t.Errorf("expected 40x40, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestSaveResizeUpscales(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory("/media")
	source := asset.NewBufferURL("icon.png", "/static/icon.png", pngBytes(t, 10, 10))

	a := NewAsset(source, 20, 20, mustMethod(t, Resize))
	if err := a.Save(ctx, store, "out.png", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	img := savedImage(t, store, "out.png")
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
		t.Errorf("expected 20x20, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestSavePassthroughCopiesVerbatim(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory("/media")
	original := pngBytes(t, 100, 50)
	source := asset.NewBufferURL("photo.png", "/static/photo.png", original)

	// An unconstrained proportional request keeps the source size, so the
	// stored bytes must be identical to the original, not a re-encode.
	a := NewAsset(source, 0, 0, mustMethod(t, Proportional))
	if err := a.Save(ctx, store, "out.png", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	handle, err := store.Open(ctx, "out.png")
	if err != nil {
		t.Fatalf("failed to open stored thumbnail: %v", err)
	}
	defer handle.Close()
	stored, err := io.ReadAll(handle)
	if err != nil {
		t.Fatalf("failed to read stored thumbnail: %v", err)
	}
	if !bytes.Equal(stored, original) {
		t.Error("no-op thumbnail should copy the source bytes verbatim")
	}
}

func TestSaveMetaReportsDisplaySize(t *testing.T) {
	ctx := context.Background()
	source := asset.NewBufferURL("photo.png", "/static/photo.png", pngBytes(t, 100, 50))

	a := NewAsset(source, 50, 0, mustMethod(t, Proportional))
	meta, err := a.SaveMeta(ctx)
	if err != nil {
		t.Fatalf("SaveMeta failed: %v", err)
	}
	if meta["width"] != 50 || meta["height"] != 25 {
		t.Errorf("expected 50x25 in metadata, got %v", meta)
	}
}

func TestIdentityParamsIncludeGeometry(t *testing.T) {
	source := asset.NewBufferURL("photo.png", "/static/photo.png", pngBytes(t, 10, 10))

	params, err := NewAsset(source, 64, 0, mustMethod(t, Crop)).IdentityParams()
	if err != nil {
		t.Fatalf("IdentityParams failed: %v", err)
	}
	if params["width"] != "64" {
		t.Errorf("expected width param 64, got %q", params["width"])
	}
	if params["height"] != "-1" {
		t.Errorf("expected unset height to hash as -1, got %q", params["height"])
	}
	if params["method"] != "crop" {
		t.Errorf("expected method param crop, got %q", params["method"])
	}
}

func TestIdentityDiffersAcrossGeometry(t *testing.T) {
	source := asset.NewBufferURL("photo.png", "/static/photo.png", pngBytes(t, 10, 10))

	small, err := asset.Identity(NewAsset(source, 32, 32, mustMethod(t, Crop)))
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	large, err := asset.Identity(NewAsset(source, 64, 64, mustMethod(t, Crop)))
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	if small == large {
		t.Error("different requested sizes must hash differently")
	}
}

func TestProportionalAndResizeShareHashKey(t *testing.T) {
	// Both map to the same plain scaling transform, so identical geometry
	// under either name reuses one cache entry.
	source := asset.NewBufferURL("photo.png", "/static/photo.png", pngBytes(t, 10, 10))

	p, err := asset.Identity(NewAsset(source, 32, 32, mustMethod(t, Proportional)))
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	r, err := asset.Identity(NewAsset(source, 32, 32, mustMethod(t, Resize)))
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	if p != r {
		t.Error("proportional and resize should share the hash key")
	}
}

func TestSaveDecodeErrorIsThumbnailError(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory("/media")
	source := asset.NewBufferURL("broken.png", "/static/broken.png", []byte("not an image"))

	err := NewAsset(source, 10, 10, mustMethod(t, Resize)).Save(ctx, store, "out.png", nil)
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if _, ok := err.(*ThumbnailError); !ok {
		t.Errorf("expected ThumbnailError, got %T: %v", err, err)
	}
}
