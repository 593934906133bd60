package thumbnail

import "math"

// Size is an image size in pixels. A zero dimension means "unspecified"
// in requested sizes; realized sizes are always fully specified.
type Size struct {
	Width  int
	Height int
}

// Aspect returns the width/height ratio
func (s Size) Aspect() float64 {
	return float64(s.Width) / float64(s.Height)
}

// Intersect returns the component-wise minimum of two sizes
func (s Size) Intersect(other Size) Size {
	return Size{
		Width:  min(s.Width, other.Width),
		Height: min(s.Height, other.Height),
	}
}

// Constrain shrinks this size to fit the reference's aspect ratio without
// exceeding its own bounds.
func (s Size) Constrain(reference Size) Size {
	aspect := reference.Aspect()
	return Size{
		Width:  min(int(math.Round(float64(s.Height)*aspect)), s.Width),
		Height: min(int(math.Round(float64(s.Width)/aspect)), s.Height),
	}
}

// Scale returns a new size with the dimensions scaled independently
func (s Size) Scale(x, y float64) Size {
	return Size{
		Width:  int(math.Round(float64(s.Width) * x)),
		Height: int(math.Round(float64(s.Height) * y)),
	}
}

// replaceZero substitutes a fallback for an unspecified dimension
func replaceZero(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

// sizeExact ignores the reference aspect and fills unspecified dimensions
// from the reference.
func sizeExact(reference, requested Size) Size {
	return Size{
		Width:  replaceZero(requested.Width, reference.Width),
		Height: replaceZero(requested.Height, reference.Height),
	}
}

// sizeProportional fits the requested box to the reference aspect ratio.
// Unspecified dimensions default to unbounded before constraining.
func sizeProportional(reference, requested Size) Size {
	if requested.Width == 0 && requested.Height == 0 {
		return reference
	}
	unbounded := Size{
		Width:  replaceZero(requested.Width, math.MaxInt32),
		Height: replaceZero(requested.Height, math.MaxInt32),
	}
	return unbounded.Constrain(reference)
}
