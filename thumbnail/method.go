package thumbnail

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"golang.org/x/image/draw"
)

// Method names accepted by the engine.
const (
	Proportional = "proportional"
	Resize       = "resize"
	Crop         = "crop"
)

// ConfigurationError reports a resize method name that is not registered.
// Unknown names are programmer errors and are never silently defaulted.
type ConfigurationError struct {
	Method string
	Known  []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%q is not a valid thumbnail method, should be one of: %s",
		e.Method, strings.Join(e.Known, ", "))
}

// Method is a resize policy: a pair of size-adjustment functions plus a
// pixel transform. displaySize is what callers lay out against; dataSize is
// the pixel dimensions actually produced, which may be smaller under crop.
type Method struct {
	name    string
	hashKey string

	// displaySize computes the size reported to callers from the source
	// size and the requested size.
	displaySize func(reference, requested Size) Size

	// dataSize computes the produced pixel size from the display size and
	// the display size clamped to the source.
	dataSize func(display, clamped Size) Size

	// transform produces the output pixels
	transform func(src image.Image, srcSize, display, data Size) image.Image
}

// HashKey returns the discriminator mixed into the asset identity
func (m Method) HashKey() string {
	return m.hashKey
}

var methods = map[string]Method{
	Proportional: {
		name:        Proportional,
		hashKey:     "resize",
		displaySize: sizeProportional,
		dataSize: func(display, clamped Size) Size {
			return display
		},
		transform: plainResize,
	},
	Resize: {
		name:        Resize,
		hashKey:     "resize",
		displaySize: sizeExact,
		dataSize: func(display, clamped Size) Size {
			return display
		},
		transform: plainResize,
	},
	Crop: {
		name:        Crop,
		hashKey:     "crop",
		displaySize: sizeExact,
		// Crop never upscales: the produced size keeps the display aspect
		// but shrinks to what the source can fill.
		dataSize: func(display, clamped Size) Size {
			return clamped.Constrain(display)
		},
		transform: cropResize,
	},
}

// LookupMethod returns the named resize policy
func LookupMethod(name string) (Method, error) {
	m, ok := methods[name]
	if !ok {
		known := make([]string, 0, len(methods))
		for k := range methods {
			known = append(known, k)
		}
		sort.Strings(known)
		return Method{}, &ConfigurationError{Method: name, Known: known}
	}
	return m, nil
}

// plainResize scales to exactly the data size, ignoring aspect ratio
func plainResize(src image.Image, srcSize, display, data Size) image.Image {
	return scaleTo(src, data)
}

// cropResize scales the source so it proportionally covers the data size,
// then crops a centered window of exactly the data dimensions.
func cropResize(src image.Image, srcSize, display, data Size) image.Image {
	imageAspect := srcSize.Aspect()

	var preCrop Size
	if imageAspect > data.Aspect() {
		// Too wide: match height, overflow width.
		preCrop = Size{
			Width:  int(float64(data.Height) * imageAspect),
			Height: data.Height,
		}
	} else {
		// Too tall: match width, overflow height.
		preCrop = Size{
			Width:  data.Width,
			Height: int(float64(data.Width) / imageAspect),
		}
	}

	scaled := scaleTo(src, preCrop)

	offsetX := (preCrop.Width - data.Width) / 2
	offsetY := (preCrop.Height - data.Height) / 2

	out := image.NewRGBA(image.Rect(0, 0, data.Width, data.Height))
	draw.Copy(out, image.Point{}, scaled, image.Rect(
		offsetX,
		offsetY,
		offsetX+data.Width,
		offsetY+data.Height,
	), draw.Src, nil)
	return out
}

// scaleTo resamples src to the target size. Large reductions get a cheap
// bilinear draft pass first so the final kernel works on fewer pixels, the
// same trick decoders use for draft-mode loading.
func scaleTo(src image.Image, target Size) image.Image {
	bounds := src.Bounds()
	if bounds.Dx() == target.Width && bounds.Dy() == target.Height {
		return src
	}

	if bounds.Dx() >= target.Width*4 && bounds.Dy() >= target.Height*4 {
		draft := image.NewRGBA(image.Rect(0, 0, target.Width*2, target.Height*2))
		draw.ApproxBiLinear.Scale(draft, draft.Bounds(), src, bounds, draw.Src, nil)
		src = draft
		bounds = draft.Bounds()
	}

	out := image.NewRGBA(image.Rect(0, 0, target.Width, target.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), src, bounds, draw.Src, nil)
	return out
}
