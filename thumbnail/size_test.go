package thumbnail

import "testing"

func TestSizeProportional(t *testing.T) {
	source := Size{Width: 100, Height: 50}

	tests := []struct {
		name      string
		requested Size
		want      Size
	}{
		{"width only", Size{Width: 50}, Size{Width: 50, Height: 25}},
		{"height only", Size{Height: 25}, Size{Width: 50, Height: 25}},
		{"both unset", Size{}, Size{Width: 100, Height: 50}},
		{"both set, width binds", Size{Width: 50, Height: 40}, Size{Width: 50, Height: 25}},
		{"both set, height binds", Size{Width: 90, Height: 20}, Size{Width: 40, Height: 20}},
		{"upscale", Size{Width: 200}, Size{Width: 200, Height: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sizeProportional(source, tt.requested)
			if got != tt.want {
				t.Errorf("sizeProportional(%v, %v) = %v, want %v", source, tt.requested, got, tt.want)
			}
		})
	}
}

func TestSizeExact(t *testing.T) {
	source := Size{Width: 100, Height: 50}

	tests := []struct {
		name      string
		requested Size
		want      Size
	}{
		{"both set", Size{Width: 30, Height: 60}, Size{Width: 30, Height: 60}},
		{"width unset", Size{Height: 60}, Size{Width: 100, Height: 60}},
		{"height unset", Size{Width: 30}, Size{Width: 30, Height: 50}},
		{"both unset", Size{}, Size{Width: 100, Height: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sizeExact(source, tt.requested)
			if got != tt.want {
				t.Errorf("sizeExact(%v, %v) = %v, want %v", source, tt.requested, got, tt.want)
			}
		})
	}
}

func TestConstrainNeverExceedsBounds(t *testing.T) {
	// A 100x50 source clamped into a square display shrinks to the larger
	// square the source can fill.
	clamped := Size{Width: 100, Height: 50}
	got := clamped.Constrain(Size{Width: 200, Height: 200})
	want := Size{Width: 50, Height: 50}
	if got != want {
		t.Errorf("Constrain = %v, want %v", got, want)
	}
}

func TestIntersect(t *testing.T) {
	got := Size{Width: 100, Height: 50}.Intersect(Size{Width: 40, Height: 80})
	want := Size{Width: 40, Height: 50}
	if got != want {
		t.Errorf("Intersect = %v, want %v", got, want)
	}
}

func TestAspect(t *testing.T) {
	if got := (Size{Width: 100, Height: 50}).Aspect(); got != 2.0 {
		t.Errorf("Aspect = %v, want 2.0", got)
	}
}

func TestMethodDataSizes(t *testing.T) {
	original := Size{Width: 100, Height: 50}

	tests := []struct {
		method    string
		requested Size
		wantData  Size
	}{
		// Crop keeps the display aspect but never upscales.
		{Crop, Size{Width: 40, Height: 40}, Size{Width: 40, Height: 40}},
		{Crop, Size{Width: 200, Height: 200}, Size{Width: 50, Height: 50}},
		// Resize and proportional produce exactly the display size.
		{Resize, Size{Width: 30, Height: 60}, Size{Width: 30, Height: 60}},
		{Proportional, Size{Width: 200}, Size{Width: 200, Height: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			m, err := LookupMethod(tt.method)
			if err != nil {
				t.Fatalf("LookupMethod failed: %v", err)
			}
			display := m.displaySize(original, tt.requested)
			data := m.dataSize(display, display.Intersect(original))
			if data != tt.wantData {
				t.Errorf("data size = %v, want %v", data, tt.wantData)
			}
		})
	}
}

func TestLookupMethodUnknown(t *testing.T) {
	_, err := LookupMethod("stretch")
	if err == nil {
		t.Fatal("expected an error for an unknown method")
	}
	confErr, ok := err.(*ConfigurationError)
	if !ok {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
	if confErr.Method != "stretch" {
		t.Errorf("expected offending name in error, got %q", confErr.Method)
	}
	if len(confErr.Known) != 3 {
		t.Errorf("expected 3 known methods, got %v", confErr.Known)
	}
}
