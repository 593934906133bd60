package bundle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"time"
)

// CompileError reports a failed bundle compilation. Detail carries the
// external tool's diagnostic output.
type CompileError struct {
	Message string
	Detail  string
}

func (e *CompileError) Error() string {
	return e.Message
}

// Minifier shrinks compiled bundle source. contentType identifies the
// language ("application/javascript" or "text/css").
type Minifier interface {
	Minify(ctx context.Context, contentType string, source []byte) ([]byte, error)
}

// CommandMinifier runs a local minifier process, feeding source on stdin
// and reading the result from stdout.
type CommandMinifier struct {
	args    []string
	timeout time.Duration
}

// NewCommandMinifier creates a subprocess minifier from its argv
func NewCommandMinifier(args []string, timeout time.Duration) *CommandMinifier {
	return &CommandMinifier{args: args, timeout: timeout}
}

func (m *CommandMinifier) Minify(ctx context.Context, contentType string, source []byte) ([]byte, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, m.args[0], m.args[1:]...)
	cmd.Stdin = bytes.NewReader(source)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &CompileError{
			Message: fmt.Sprintf("minifier failed: %v", err),
			Detail:  stderr.String(),
		}
	}
	return stdout.Bytes(), nil
}

// HTTPMinifier posts source to a remote minification service and reads the
// minified result from the response body.
type HTTPMinifier struct {
	url    string
	client *http.Client
}

// NewHTTPMinifier creates a remote minifier. timeout bounds the whole
// round trip.
func NewHTTPMinifier(url string, timeout time.Duration) *HTTPMinifier {
	return &HTTPMinifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (m *HTTPMinifier) Minify(ctx context.Context, contentType string, source []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("failed to build minifier request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, &CompileError{Message: fmt.Sprintf("minifier request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CompileError{Message: fmt.Sprintf("failed to read minifier response: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &CompileError{
			Message: fmt.Sprintf("minifier returned status %d", resp.StatusCode),
			Detail:  string(body),
		}
	}
	return body, nil
}
