package video

import (
	"context"
	"errors"
	"testing"

	"github.com/staticbay/assetpipe/asset"
	"github.com/staticbay/assetpipe/common/logger"
	"github.com/staticbay/assetpipe/common/storage"
)

func testAsset(t *testing.T, format string) *ThumbnailAsset {
	t.Helper()
	f, err := LookupFormat(format)
	if err != nil {
		t.Fatalf("LookupFormat failed: %v", err)
	}
	source := asset.NewBufferURL("clip.mp4", "/static/clip.mp4", []byte("fake video"))
	return NewAsset(source, f, MethodResize, 10, 320, 0, "ffmpeg", logger.New("error", "text"))
}

func TestSaveRequiresPathStorage(t *testing.T) {
	// The encoder writes directly to disk, so a storage backend without
	// filesystem paths must be rejected before anything runs.
	err := testAsset(t, "jpeg").Save(context.Background(), storage.NewMemory("/media"), "out.jpg", nil)
	if !errors.Is(err, ErrPathlessStorage) {
		t.Fatalf("expected ErrPathlessStorage, got %v", err)
	}
}

func TestSaveExtensionFollowsFormat(t *testing.T) {
	if got := testAsset(t, "jpeg").SaveExtension(); got != ".jpg" {
		t.Errorf("expected .jpg, got %q", got)
	}
	if got := testAsset(t, "webm").SaveExtension(); got != ".webm" {
		t.Errorf("expected .webm, got %q", got)
	}
}

func TestIdentityParamsIncludeTransform(t *testing.T) {
	params, err := testAsset(t, "jpeg").IdentityParams()
	if err != nil {
		t.Fatalf("IdentityParams failed: %v", err)
	}

	want := map[string]string{
		"position": "10",
		"width":    "320",
		"height":   "-1",
		"method":   "resize",
		"format":   "jpeg",
	}
	for k, v := range want {
		if params[k] != v {
			t.Errorf("param %s = %q, want %q", k, params[k], v)
		}
	}
	if params["url"] != "/static/clip.mp4" {
		t.Errorf("base identity missing, got %v", params)
	}
}

func TestIdentityDiffersAcrossPosition(t *testing.T) {
	f, err := LookupFormat("jpeg")
	if err != nil {
		t.Fatal(err)
	}
	source := asset.NewBufferURL("clip.mp4", "/static/clip.mp4", []byte("fake video"))
	log := logger.New("error", "text")

	early, err := asset.Identity(NewAsset(source, f, MethodResize, 5, 0, 0, "ffmpeg", log))
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	late, err := asset.Identity(NewAsset(source, f, MethodResize, 50, 0, 0, "ffmpeg", log))
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	if early == late {
		t.Error("different capture offsets must hash differently")
	}
}
