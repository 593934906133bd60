package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/staticbay/assetpipe/asset"
	"github.com/staticbay/assetpipe/common/logger"
	"github.com/staticbay/assetpipe/common/storage"
)

// ErrPathlessStorage is returned when a video transform targets a storage
// backend that cannot expose filesystem paths. The external encoder writes
// straight to disk, so such backends are rejected up front.
var ErrPathlessStorage = errors.New("video processing requires a storage backend with filesystem paths")

var durationPattern = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)`)

// ThumbnailAsset derives a still frame or re-encoded clip from a source
// video by shelling out to ffmpeg. The transform never decodes frames in
// process; geometry is delegated to the encoder's filter graph.
type ThumbnailAsset struct {
	base   asset.Asset
	format Format
	method string
	width  int
	height int

	// position is the capture offset in seconds; -1 means "pick one",
	// resolved to a quarter of the probed duration at save time.
	position int

	ffmpeg string
	log    *logger.Logger
}

// NewAsset creates a video transform asset. position < 0 defers the capture
// offset to the source duration; zero width and height keep the source
// geometry.
func NewAsset(base asset.Asset, format Format, method string, position, width, height int, ffmpeg string, log *logger.Logger) *ThumbnailAsset {
	return &ThumbnailAsset{
		base:     base,
		format:   format,
		method:   method,
		width:    width,
		height:   height,
		position: position,
		ffmpeg:   ffmpeg,
		log:      log,
	}
}

// Name returns the base asset's name
func (a *ThumbnailAsset) Name() string {
	return a.base.Name()
}

// Open returns the base asset's byte stream
func (a *ThumbnailAsset) Open(ctx context.Context) (io.ReadCloser, error) {
	return a.base.Open(ctx)
}

// Path returns the base asset's path
func (a *ThumbnailAsset) Path() (string, bool) {
	return a.base.Path()
}

// URL returns the base asset's URL
func (a *ThumbnailAsset) URL() (string, bool) {
	return a.base.URL()
}

// ModTime returns the base asset's modification time
func (a *ThumbnailAsset) ModTime() (time.Time, bool) {
	return a.base.ModTime()
}

// IdentityParams adds the transform parameters to the base identity, so a
// different offset, geometry or output format is a different asset.
func (a *ThumbnailAsset) IdentityParams() (asset.Params, error) {
	params, err := a.base.IdentityParams()
	if err != nil {
		return nil, err
	}
	merged := asset.Params{}
	for k, v := range params {
		merged[k] = v
	}
	merged.SetInt("position", a.position)
	merged.SetInt("width", orMinusOne(a.width))
	merged.SetInt("height", orMinusOne(a.height))
	merged["method"] = a.method
	merged["format"] = a.format.name
	return merged, nil
}

// SaveExtension names the stored extension after the output format rather
// than the source container.
func (a *ThumbnailAsset) SaveExtension() string {
	return a.format.ext
}

// Save runs the encoder. The output goes straight to the storage path;
// partial output from a failed run is removed before the error propagates.
func (a *ThumbnailAsset) Save(ctx context.Context, store storage.Storage, name string, meta asset.Meta) error {
	outputPath, ok := store.Path(name)
	if !ok {
		return ErrPathlessStorage
	}

	inputPath, cleanup, err := a.inputPath(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	position := a.position
	if position < 0 {
		position = a.defaultPosition(ctx, inputPath)
	}

	filter, err := FilterExpr(a.method, a.width, a.height)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := []string{"-ss", strconv.Itoa(position), "-i", inputPath}
	if filter != "" {
		args = append(args, "-vf", filter)
	}
	args = append(args, a.format.args...)
	args = append(args, "-y", outputPath)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outputPath)
		return &VideoError{
			Message: fmt.Sprintf("failed to process video %s: %v", a.base.Name(), err),
			Detail:  stderr.String(),
		}
	}
	return nil
}

// inputPath resolves a filesystem path for the source video, spilling
// path-less sources to a scratch file the encoder can read.
func (a *ThumbnailAsset) inputPath(ctx context.Context) (string, func(), error) {
	if p, ok := a.base.Path(); ok {
		return p, func() {}, nil
	}

	handle, err := a.base.Open(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open source video %s: %w", a.base.Name(), err)
	}
	defer handle.Close()

	scratch := filepath.Join(os.TempDir(), "assetpipe-"+uuid.NewString()+filepath.Ext(a.base.Name()))
	f, err := os.Create(scratch)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create scratch file: %w", err)
	}

	if _, err := io.Copy(f, handle); err != nil {
		f.Close()
		os.Remove(scratch)
		return "", nil, fmt.Errorf("failed to spool source video %s: %w", a.base.Name(), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(scratch)
		return "", nil, fmt.Errorf("failed to finish scratch file: %w", err)
	}

	return scratch, func() { os.Remove(scratch) }, nil
}

// defaultPosition probes the source duration and captures at a quarter of
// it. An unparseable probe falls back to the first frame rather than
// failing the transform.
func (a *ThumbnailAsset) defaultPosition(ctx context.Context, inputPath string) int {
	duration, ok := a.probeDuration(ctx, inputPath)
	if !ok {
		a.log.Warn("could not determine video duration, capturing at start",
			"asset", a.base.Name())
		return 0
	}
	return int(duration.Seconds()) / 4
}

// probeDuration reads the stream duration out of the encoder's banner
// output. ffmpeg with no output file exits non-zero while still printing
// the input description, so the exit status is ignored here.
func (a *ThumbnailAsset) probeDuration(ctx context.Context, inputPath string) (time.Duration, bool) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.ffmpeg, "-i", inputPath)
	cmd.Stderr = &stderr
	_ = cmd.Run()

	return ParseDuration(stderr.String())
}

// ParseDuration extracts the HH:MM:SS duration from encoder banner output.
func ParseDuration(output string) (time.Duration, bool) {
	m := durationPattern.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second, true
}

func orMinusOne(v int) int {
	if v == 0 {
		return -1
	}
	return v
}
