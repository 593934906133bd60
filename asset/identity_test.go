package asset

import (
	"context"
	"errors"
	"testing"
)

func TestIdentityDeterministic(t *testing.T) {
	a := NewStatic("css/site.css", "/srv/static/css/site.css", "/static/css/site.css")

	first, err := Identity(a)
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	second, err := Identity(a)
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	if first != second {
		t.Errorf("identity not deterministic: %s != %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("expected a 64-char hex digest, got %q", first)
	}
}

func TestIdentityChangesWithParams(t *testing.T) {
	base := NewStatic("css/site.css", "/srv/static/css/site.css", "/static/css/site.css")
	otherPath := NewStatic("css/site.css", "/srv/other/css/site.css", "/static/css/site.css")
	otherURL := NewStatic("css/site.css", "/srv/static/css/site.css", "/cdn/css/site.css")

	baseID, err := Identity(base)
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}

	for name, a := range map[string]Asset{"path": otherPath, "url": otherURL} {
		id, err := Identity(a)
		if err != nil {
			t.Fatalf("Identity failed for %s variant: %v", name, err)
		}
		if id == baseID {
			t.Errorf("changing %s did not change the identity", name)
		}
	}
}

func TestIdentityRequiresSource(t *testing.T) {
	a := NewBuffer("inline.js", []byte("var x = 1;"))

	_, err := Identity(a)
	if err == nil {
		t.Fatal("expected an error for an asset with no path and no URL")
	}
	var identityErr *IdentityError
	if !errors.As(err, &identityErr) {
		t.Fatalf("expected IdentityError, got %T: %v", err, err)
	}
	if identityErr.AssetName != "inline.js" {
		t.Errorf("expected asset name in error, got %q", identityErr.AssetName)
	}
}

func TestIdentityBufferWithURL(t *testing.T) {
	a := NewBufferURL("inline.js", "/gen/inline.js", []byte("var x = 1;"))

	if _, err := Identity(a); err != nil {
		t.Fatalf("buffer with URL should be identifiable: %v", err)
	}
}

func TestContentKeyChecksumFallback(t *testing.T) {
	ctx := context.Background()

	// Buffers report no mtime, so the content checksum participates.
	a := NewBufferURL("inline.js", "/gen/inline.js", []byte("var x = 1;"))
	b := NewBufferURL("inline.js", "/gen/inline.js", []byte("var x = 2;"))

	keyA, err := ContentKey(ctx, a)
	if err != nil {
		t.Fatalf("ContentKey failed: %v", err)
	}
	keyA2, err := ContentKey(ctx, a)
	if err != nil {
		t.Fatalf("ContentKey failed: %v", err)
	}
	keyB, err := ContentKey(ctx, b)
	if err != nil {
		t.Fatalf("ContentKey failed: %v", err)
	}

	if keyA != keyA2 {
		t.Error("content key not deterministic for identical content")
	}
	if keyA == keyB {
		t.Error("different content produced the same content key")
	}

	id, err := Identity(a)
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	if id == keyA {
		t.Error("content key should differ from the bare identity")
	}
}

func TestGroupedIdentityOrderSensitive(t *testing.T) {
	a := NewStatic("js/a.js", "/srv/static/js/a.js", "/static/js/a.js")
	b := NewStatic("js/b.js", "/srv/static/js/b.js", "/static/js/b.js")

	forward, err := Identity(NewGrouped([]Asset{a, b}, ";"))
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	reversed, err := Identity(NewGrouped([]Asset{b, a}, ";"))
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}

	if forward == reversed {
		t.Error("reordering group members did not change the identity")
	}
}

func TestGroupedIdentityPrefixesMembers(t *testing.T) {
	a := NewStatic("js/a.js", "/srv/static/js/a.js", "/static/js/a.js")
	b := NewStatic("js/b.js", "/srv/static/js/b.js", "/static/js/b.js")

	params, err := NewGrouped([]Asset{a, b}, ";").IdentityParams()
	if err != nil {
		t.Fatalf("IdentityParams failed: %v", err)
	}

	for _, key := range []string{"0_path", "0_url", "1_path", "1_url"} {
		if _, ok := params[key]; !ok {
			t.Errorf("expected prefixed param %q, got %v", key, params)
		}
	}
}

func TestGroupedEmptyHasNoIdentity(t *testing.T) {
	_, err := NewGrouped(nil, ";").IdentityParams()
	var identityErr *IdentityError
	if !errors.As(err, &identityErr) {
		t.Fatalf("expected IdentityError for an empty group, got %v", err)
	}
}

func TestGroupedContentsJoin(t *testing.T) {
	ctx := context.Background()
	a := NewBufferURL("a.js", "/gen/a.js", []byte("var a = 1"))
	b := NewBufferURL("b.js", "/gen/b.js", []byte("var b = 2"))

	contents, err := NewGrouped([]Asset{a, b}, ";").Contents(ctx)
	if err != nil {
		t.Fatalf("Contents failed: %v", err)
	}
	if string(contents) != "var a = 1;var b = 2" {
		t.Errorf("unexpected joined contents: %q", contents)
	}
}
