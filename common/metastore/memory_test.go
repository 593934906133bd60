package metastore

import (
	"context"
	"testing"

	"github.com/staticbay/assetpipe/common/cache"
	"github.com/staticbay/assetpipe/common/logger"
)

func newTestStore(t *testing.T, namespace string) *Memory {
	t.Helper()
	backing := cache.NewMemoryCache(logger.New("error", "text"))
	t.Cleanup(func() { backing.Close() })
	return NewMemory(backing, namespace)
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := newTestStore(t, "assets")

	_, found, err := m.Get(ctx, "missing")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("unexpected hit for a key that was never set")
	}

	if err := m.Set(ctx, "abc", []byte(`{"name":"x"}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, found, err := m.Get(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected a hit after Set")
	}
	if string(value) != `{"name":"x"}` {
		t.Errorf("unexpected value %q", value)
	}
}

func TestMemoryNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	backing := cache.NewMemoryCache(logger.New("error", "text"))
	t.Cleanup(func() { backing.Close() })

	a := NewMemory(backing, "a")
	b := NewMemory(backing, "b")

	if err := a.Set(ctx, "key", []byte("from a")); err != nil {
		t.Fatal(err)
	}

	if _, found, _ := b.Get(ctx, "key"); found {
		t.Error("namespaces sharing a backing cache must not see each other's keys")
	}
	if value, found, _ := a.Get(ctx, "key"); !found || string(value) != "from a" {
		t.Errorf("owning namespace lost its entry: found=%v value=%q", found, value)
	}
}
