package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/staticbay/assetpipe/common/logger"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStaticResolvesNameAndURL(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "js/app.js", "var app = 1;")

	c := New([]string{root}, "/static/", logger.New("error", "text"))

	a, err := c.Static("js/app.js")
	if err != nil {
		t.Fatalf("Static failed: %v", err)
	}
	if a.Name() != "js/app.js" {
		t.Errorf("unexpected name %q", a.Name())
	}
	if url, ok := a.URL(); !ok || url != "/static/js/app.js" {
		t.Errorf("unexpected url %q", url)
	}
	if path, ok := a.Path(); !ok || path != filepath.Join(root, "js", "app.js") {
		t.Errorf("unexpected path %q", path)
	}

	handle, err := a.Open(context.Background())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer handle.Close()
	data, err := io.ReadAll(handle)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "var app = 1;" {
		t.Errorf("unexpected contents %q", data)
	}
}

func TestStaticUnknownName(t *testing.T) {
	c := New([]string{t.TempDir()}, "/static/", logger.New("error", "text"))

	if _, err := c.Static("missing.js"); err == nil {
		t.Fatal("expected an error for an unknown asset")
	}
}

func TestFirstRootWins(t *testing.T) {
	primary := t.TempDir()
	fallback := t.TempDir()
	writeFile(t, primary, "app.css", "primary")
	writeFile(t, fallback, "app.css", "fallback")
	writeFile(t, fallback, "extra.css", "extra")

	c := New([]string{primary, fallback}, "/static/", logger.New("error", "text"))

	a, err := c.Static("app.css")
	if err != nil {
		t.Fatal(err)
	}
	if path, _ := a.Path(); path != filepath.Join(primary, "app.css") {
		t.Errorf("expected the first root to win, got %q", path)
	}

	if _, err := c.Static("extra.css"); err != nil {
		t.Errorf("assets only in later roots should still resolve: %v", err)
	}
}

func TestResolveGlob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.js", "")
	writeFile(t, root, "a.js", "")
	writeFile(t, root, "c.css", "")

	c := New([]string{root}, "/static/", logger.New("error", "text"))

	assets, err := c.Resolve("*.js", nil, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}
	// Glob matches come back in sorted name order.
	if assets[0].Name() != "a.js" || assets[1].Name() != "b.js" {
		t.Errorf("unexpected order: %s, %s", assets[0].Name(), assets[1].Name())
	}
}

func TestResolveManifestGroupKeepsOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "")
	writeFile(t, root, "b.js", "")
	writeFile(t, root, "vendor.js", "")

	manifest := filepath.Join(t.TempDir(), "groups.json")
	if err := os.WriteFile(manifest, []byte(`{"site": ["vendor.js", "a.js"]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New([]string{root}, "/static/", logger.New("error", "text"))
	if err := c.LoadManifest(manifest); err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}

	assets, err := c.Resolve("site", nil, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}
	// Manifest order is the declared order, not sorted.
	if assets[0].Name() != "vendor.js" || assets[1].Name() != "a.js" {
		t.Errorf("manifest order not preserved: %s, %s", assets[0].Name(), assets[1].Name())
	}
}

func TestResolveIncludeExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "")
	writeFile(t, root, "a.min.js", "")
	writeFile(t, root, "b.js", "")

	c := New([]string{root}, "/static/", logger.New("error", "text"))

	assets, err := c.Resolve("*.js", []string{"a*"}, []string{"*.min.js"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(assets) != 1 || assets[0].Name() != "a.js" {
		names := make([]string, len(assets))
		for i, a := range assets {
			names[i] = a.Name()
		}
		t.Errorf("expected only a.js, got %v", names)
	}
}

func TestRefreshPicksUpNewFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "")

	c := New([]string{root}, "/static/", logger.New("error", "text"))
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}

	writeFile(t, root, "late.js", "")
	if _, err := c.Static("late.js"); err == nil {
		t.Fatal("files added after Init should not appear until Refresh")
	}

	if err := c.Refresh(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Static("late.js"); err != nil {
		t.Errorf("expected late.js after Refresh: %v", err)
	}
}
