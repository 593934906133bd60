package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/staticbay/assetpipe/common/logger"
)

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocal(root, "/media/", logger.New("error", "text"))
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	name := "assets/ab/cdef.txt"

	exists, err := s.Exists(ctx, name)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("nothing saved yet")
	}

	if err := s.Save(ctx, name, strings.NewReader("hello")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	exists, err = s.Exists(ctx, name)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("saved object should exist")
	}

	handle, err := s.Open(ctx, name)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer handle.Close()
	data, err := io.ReadAll(handle)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("unexpected contents %q", data)
	}
}

func TestLocalPathAndURL(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocal(root, "/media/", logger.New("error", "text"))
	if err != nil {
		t.Fatal(err)
	}

	path, ok := s.Path("assets/ab/cd.txt")
	if !ok {
		t.Fatal("local storage should report paths")
	}
	if !strings.HasPrefix(path, root) {
		t.Errorf("path %q should live under the root %q", path, root)
	}

	if url := s.URL("assets/ab/cd.txt"); url != "/media/assets/ab/cd.txt" {
		t.Errorf("unexpected url %q", url)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocal(root, "/media/", logger.New("error", "text"))
	if err != nil {
		t.Fatal(err)
	}

	path, ok := s.Path("../../etc/passwd")
	if !ok {
		t.Fatal("expected a path")
	}
	if !strings.HasPrefix(path, root) {
		t.Errorf("traversal escaped the root: %q", path)
	}
}

func TestLocalSaveLeavesNoPartialFile(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocal(root, "/media/", logger.New("error", "text"))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Save(ctx, "a/b.txt", failingReader{}); err == nil {
		t.Fatal("expected the save to fail")
	}

	if _, statErr := os.Stat(filepath.Join(root, "a", "b.txt")); !os.IsNotExist(statErr) {
		t.Error("a failed save must not leave the target file behind")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory("/media")

	if err := s.Save(ctx, "a.txt", strings.NewReader("hi")); err != nil {
		t.Fatal(err)
	}

	exists, err := s.Exists(ctx, "a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("saved object should exist")
	}

	handle, err := s.Open(ctx, "a.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer handle.Close()
	data, _ := io.ReadAll(handle)
	if string(data) != "hi" {
		t.Errorf("unexpected contents %q", data)
	}

	if _, ok := s.Path("a.txt"); ok {
		t.Error("memory storage must not report filesystem paths")
	}
	if url := s.URL("a.txt"); url != "/media/a.txt" {
		t.Errorf("unexpected url %q", url)
	}
}
