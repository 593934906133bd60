package asset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Identity returns the deterministic cache key of an asset: a digest over
// its sorted identity parameters. Two assets with the same identity refer
// to the same logical configuration regardless of content freshness.
func Identity(a Asset) (string, error) {
	params, err := a.IdentityParams()
	if err != nil {
		return "", err
	}
	return digest(params), nil
}

// ContentKey returns the digest that names the stored artifact. It extends
// the identity parameters with a freshness signal: the modification time
// when the asset can report one (cheap), or a checksum of the full content
// otherwise (slow path).
func ContentKey(ctx context.Context, a Asset) (string, error) {
	params, err := a.IdentityParams()
	if err != nil {
		return "", err
	}

	hashParams := Params{}
	for k, v := range params {
		hashParams[k] = v
	}

	if mtime, ok := a.ModTime(); ok {
		hashParams["mtime"] = strconv.FormatInt(mtime.UnixNano(), 10)
	} else {
		sum, err := contentChecksum(ctx, a)
		if err != nil {
			return "", err
		}
		hashParams["checksum"] = sum
	}

	return digest(hashParams), nil
}

// digest serializes params as sorted "key=value" pairs and hashes them.
// SHA-256 is for accidental-collision resistance, not security.
func digest(params Params) string {
	sum := sha256.Sum256([]byte(strings.Join(params.sortedPairs(), "&")))
	return hex.EncodeToString(sum[:])
}

func contentChecksum(ctx context.Context, a Asset) (string, error) {
	handle, err := a.Open(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to open asset %s for checksum: %w", a.Name(), err)
	}
	defer handle.Close()

	h := sha256.New()
	if _, err := io.Copy(h, handle); err != nil {
		return "", fmt.Errorf("failed to checksum asset %s: %w", a.Name(), err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
