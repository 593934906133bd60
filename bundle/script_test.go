package bundle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staticbay/assetpipe/asset"
	"github.com/staticbay/assetpipe/common/logger"
)

// fakeMinifier is a controllable minifier for bundle tests.
type fakeMinifier struct {
	fail   bool
	result []byte
	calls  int
}

func (m *fakeMinifier) Minify(ctx context.Context, contentType string, source []byte) ([]byte, error) {
	m.calls++
	if m.fail {
		return nil, &CompileError{Message: "minifier exploded"}
	}
	if m.result != nil {
		return m.result, nil
	}
	return source, nil
}

func scriptMembers() []asset.Asset {
	return []asset.Asset{
		asset.NewBufferURL("a.js", "/static/a.js", []byte("var a = 1")),
		asset.NewBufferURL("b.js", "/static/b.js", []byte("var b = 2")),
	}
}

func TestScriptCompileWrapsAndJoins(t *testing.T) {
	s := NewScript(scriptMembers(), nil, false, logger.New("error", "text"))

	compiled, err := s.compile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "(function(window){var a = 1;var b = 2}(window));", string(compiled))
}

func TestScriptCompileMinifies(t *testing.T) {
	m := &fakeMinifier{result: []byte("min")}
	s := NewScript(scriptMembers(), m, false, logger.New("error", "text"))

	compiled, err := s.compile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "min", string(compiled))
	assert.Equal(t, 1, m.calls)
}

func TestScriptMinifierFailureRaises(t *testing.T) {
	m := &fakeMinifier{fail: true}
	s := NewScript(scriptMembers(), m, false, logger.New("error", "text"))

	_, err := s.compile(context.Background())
	require.Error(t, err)
	var compileErr *CompileError
	assert.True(t, errors.As(err, &compileErr))
}

func TestScriptMinifierFailureFallsBackSilently(t *testing.T) {
	m := &fakeMinifier{fail: true}
	s := NewScript(scriptMembers(), m, true, logger.New("error", "text"))

	compiled, err := s.compile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "(function(window){var a = 1;var b = 2}(window));", string(compiled),
		"fail-silently must serve the unminified bundle")
}

func TestBundleIdentitiesDiffer(t *testing.T) {
	log := logger.New("error", "text")
	script := NewScript(scriptMembers(), nil, false, log)
	sheet := NewStylesheet(scriptMembers(), nil, nil, "/static/", nil, false, log)

	scriptID, err := asset.Identity(script)
	require.NoError(t, err)
	sheetID, err := asset.Identity(sheet)
	require.NoError(t, err)

	assert.NotEqual(t, scriptID, sheetID,
		"a script bundle and a stylesheet bundle of the same members are different assets")
}
