package asset

import (
	"fmt"
	"os"
)

// StaticResolver resolves a catalog-relative name to a static asset. The
// catalog implements this; Adapt takes it as a collaborator so the asset
// package stays free of catalog knowledge.
type StaticResolver interface {
	Static(name string) (Asset, error)
}

// Adapt converts a raw input into an Asset. The accepted kinds form a
// closed set: an existing Asset is returned unchanged, an *os.File becomes
// a FileAsset, and a string is resolved as a static-asset name. Anything
// else is a construction-time error.
func Adapt(value any, static StaticResolver) (Asset, error) {
	switch v := value.(type) {
	case Asset:
		return v, nil
	case *os.File:
		return NewFile(v.Name()), nil
	case string:
		if static == nil {
			return nil, fmt.Errorf("cannot adapt %q: no static resolver configured", v)
		}
		resolved, err := static.Static(v)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve static asset %q: %w", v, err)
		}
		return resolved, nil
	default:
		return nil, fmt.Errorf("cannot adapt value of type %T into an asset", value)
	}
}

// AdaptAll adapts a slice of raw inputs, preserving order
func AdaptAll(values []any, static StaticResolver) ([]Asset, error) {
	assets := make([]Asset, len(values))
	for i, v := range values {
		a, err := Adapt(v, static)
		if err != nil {
			return nil, err
		}
		assets[i] = a
	}
	return assets, nil
}
