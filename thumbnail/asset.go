package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/staticbay/assetpipe/asset"
	"github.com/staticbay/assetpipe/common/storage"
)

// ThumbnailError reports a failed decode, transform or encode. Partial
// output is cleaned up before the error propagates.
type ThumbnailError struct {
	Message string
	Err     error
}

func (e *ThumbnailError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ThumbnailError) Unwrap() error {
	return e.Err
}

// ThumbnailAsset derives a resized image from a base asset. Each call is a
// pure function of (source bytes, requested geometry, method); the asset
// cache memoizes the result through its content-hash mechanism.
type ThumbnailAsset struct {
	base   asset.Asset
	width  int
	height int
	method Method

	// decode-once memo
	once    sync.Once
	img     image.Image
	imgSize Size
	imgErr  error
}

// NewAsset creates a thumbnail asset. A zero width or height means "derive
// from the source and the method's aspect policy".
func NewAsset(base asset.Asset, width, height int, method Method) *ThumbnailAsset {
	return &ThumbnailAsset{
		base:   base,
		width:  width,
		height: height,
		method: method,
	}
}

// Name returns the base asset's name
func (a *ThumbnailAsset) Name() string {
	return a.base.Name()
}

// Open returns the base asset's byte stream
func (a *ThumbnailAsset) Open(ctx context.Context) (io.ReadCloser, error) {
	return a.base.Open(ctx)
}

// Path returns the base asset's path
func (a *ThumbnailAsset) Path() (string, bool) {
	return a.base.Path()
}

// URL returns the base asset's URL
func (a *ThumbnailAsset) URL() (string, bool) {
	return a.base.URL()
}

// ModTime returns the base asset's modification time
func (a *ThumbnailAsset) ModTime() (time.Time, bool) {
	return a.base.ModTime()
}

// IdentityParams adds the thumbnail geometry to the base identity, so a
// different requested size or method is a different asset.
func (a *ThumbnailAsset) IdentityParams() (asset.Params, error) {
	params, err := a.base.IdentityParams()
	if err != nil {
		return nil, err
	}
	merged := asset.Params{}
	for k, v := range params {
		merged[k] = v
	}
	merged.SetInt("width", orMinusOne(a.width))
	merged.SetInt("height", orMinusOne(a.height))
	merged["method"] = a.method.hashKey
	return merged, nil
}

// SaveMeta records the realized display size so callers can lay the
// thumbnail out without decoding it.
func (a *ThumbnailAsset) SaveMeta(ctx context.Context) (asset.Meta, error) {
	_, originalSize, err := a.decode(ctx)
	if err != nil {
		return nil, err
	}
	display := a.method.displaySize(originalSize, Size{Width: a.width, Height: a.height})
	return asset.Meta{
		"width":  display.Width,
		"height": display.Height,
	}, nil
}

// Save materializes the thumbnail. When the computed data size equals the
// source size no transcoding happens: the original bytes are copied
// verbatim, so the stored object is byte-identical to the source.
func (a *ThumbnailAsset) Save(ctx context.Context, store storage.Storage, name string, meta asset.Meta) error {
	img, originalSize, err := a.decode(ctx)
	if err != nil {
		return err
	}

	display := a.method.displaySize(originalSize, Size{Width: a.width, Height: a.height})
	data := a.method.dataSize(display, display.Intersect(originalSize))

	if data == originalSize {
		return a.savePassthrough(ctx, store, name)
	}

	out := a.method.transform(img, originalSize, display, data)

	format := formatFromExt(path.Ext(name))

	// PNG has no CMYK mode.
	if format == "png" {
		if _, isCMYK := out.(*image.CMYK); isCMYK {
			out = toRGBA(out)
		}
	}

	if outputPath, ok := store.Path(name); ok {
		return encodeToPath(out, format, outputPath)
	}
	return encodeBuffered(ctx, out, format, store, name)
}

// decode opens and decodes the source image once, memoized for the
// lifetime of this asset instance.
func (a *ThumbnailAsset) decode(ctx context.Context) (image.Image, Size, error) {
	a.once.Do(func() {
		handle, err := a.base.Open(ctx)
		if err != nil {
			a.imgErr = &ThumbnailError{Message: "failed to open source image", Err: err}
			return
		}
		defer handle.Close()

		img, _, err := image.Decode(handle)
		if err != nil {
			a.imgErr = &ThumbnailError{Message: "failed to decode source image", Err: err}
			return
		}
		a.img = img
		a.imgSize = Size{
			Width:  img.Bounds().Dx(),
			Height: img.Bounds().Dy(),
		}
	})
	return a.img, a.imgSize, a.imgErr
}

// savePassthrough copies the original bytes without re-encoding
func (a *ThumbnailAsset) savePassthrough(ctx context.Context, store storage.Storage, name string) error {
	handle, err := a.base.Open(ctx)
	if err != nil {
		return &ThumbnailError{Message: "failed to open source image", Err: err}
	}
	defer handle.Close()

	if err := store.Save(ctx, name, handle); err != nil {
		return fmt.Errorf("failed to save thumbnail %s: %w", name, err)
	}
	return nil
}

// encodeToPath streams the encoded image straight to the storage path,
// deleting the incomplete file if encoding fails part way.
func encodeToPath(img image.Image, format, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create thumbnail file: %w", err)
	}

	if err := encode(f, img, format); err != nil {
		f.Close()
		os.Remove(outputPath)
		return &ThumbnailError{Message: "failed to encode thumbnail", Err: err}
	}

	if err := f.Close(); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("failed to finish thumbnail file: %w", err)
	}
	return nil
}

// encodeBuffered encodes into memory and hands the buffer to storage, for
// backends without filesystem paths.
func encodeBuffered(ctx context.Context, img image.Image, format string, store storage.Storage, name string) error {
	var buf bytes.Buffer
	if err := encode(&buf, img, format); err != nil {
		return &ThumbnailError{Message: "failed to encode thumbnail", Err: err}
	}
	if err := store.Save(ctx, name, &buf); err != nil {
		return fmt.Errorf("failed to save thumbnail %s: %w", name, err)
	}
	return nil
}

func encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 85})
	case "gif":
		return gif.Encode(w, img, nil)
	default:
		return png.Encode(w, img)
	}
}

// formatFromExt infers the output format from the stored extension,
// defaulting to PNG and normalizing JPG to JPEG.
func formatFromExt(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "jpeg"
	case "gif":
		return "gif"
	default:
		return "png"
	}
}

func toRGBA(img image.Image) image.Image {
	out := image.NewRGBA(img.Bounds())
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

func orMinusOne(v int) int {
	if v == 0 {
		return -1
	}
	return v
}
