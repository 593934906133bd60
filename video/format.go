package video

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// VideoError reports a failed probe or transcode. Detail carries the
// external tool's diagnostic stream so callers can log full diagnostics
// while showing the terse message.
type VideoError struct {
	Message string
	Detail  string
}

func (e *VideoError) Error() string {
	return e.Message
}

// ConfigurationError reports an unknown format or resize method name.
type ConfigurationError struct {
	Kind  string
	Name  string
	Known []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%q is not a valid %s, should be one of: %s",
		e.Name, e.Kind, strings.Join(e.Known, ", "))
}

// Format describes the produced output: a still frame extracted with an
// image codec, or a re-encoded video in a different container.
type Format struct {
	name       string
	ext        string
	args       []string
	stillFrame bool
}

// Name returns the registry name of the format
func (f Format) Name() string {
	return f.name
}

// Ext returns the stored file extension
func (f Format) Ext() string {
	return f.ext
}

var formats = map[string]Format{
	"jpeg": {
		name:       "jpeg",
		ext:        ".jpg",
		args:       []string{"-vframes", "1", "-an", "-f", "image2"},
		stillFrame: true,
	},
	"png": {
		name:       "png",
		ext:        ".png",
		args:       []string{"-vframes", "1", "-an", "-c:v", "png", "-f", "image2"},
		stillFrame: true,
	},
	"mp4": {
		name: "mp4",
		ext:  ".mp4",
		args: []string{"-c:v", "libx264", "-c:a", "aac", "-movflags", "+faststart", "-f", "mp4"},
	},
	"webm": {
		name: "webm",
		ext:  ".webm",
		args: []string{"-c:v", "libvpx-vp9", "-c:a", "libopus", "-f", "webm"},
	},
}

// LookupFormat returns the named output format
func LookupFormat(name string) (Format, error) {
	f, ok := formats[name]
	if !ok {
		return Format{}, &ConfigurationError{Kind: "video format", Name: name, Known: knownFormats()}
	}
	return f, nil
}

func knownFormats() []string {
	known := make([]string, 0, len(formats))
	for k := range formats {
		known = append(known, k)
	}
	sort.Strings(known)
	return known
}

// Resize method names accepted by the video engine.
const (
	MethodResize       = "resize"
	MethodProportional = "proportional"
	MethodCrop         = "crop"
	MethodPad          = "pad"
)

var resizeMethods = []string{MethodCrop, MethodPad, MethodProportional, MethodResize}

// FilterExpr builds the ffmpeg filter-graph expression for a resize method.
// The geometry is expressed over the tool's own iw/ih symbols because the
// engine never decodes the frames itself. A fully unspecified size yields
// an empty expression, meaning no filter at all.
func FilterExpr(method string, width, height int) (string, error) {
	if width == 0 && height == 0 {
		return "", nil
	}

	w := dimExpr(width, "iw")
	h := dimExpr(height, "ih")

	switch method {
	case MethodResize:
		return fmt.Sprintf("scale=%s:%s", w, h), nil
	case MethodProportional:
		return fmt.Sprintf("scale=%s:%s:force_original_aspect_ratio=decrease", w, h), nil
	case MethodCrop:
		return fmt.Sprintf("scale=%s:%s:force_original_aspect_ratio=increase,crop=%s:%s", w, h, w, h), nil
	case MethodPad:
		// Scale to fit, then center the frame on a fixed-size canvas.
		return fmt.Sprintf("scale=%s:%s:force_original_aspect_ratio=decrease,pad=%s:%s:(ow-iw)/2:(oh-ih)/2", w, h, w, h), nil
	default:
		return "", &ConfigurationError{Kind: "video resize method", Name: method, Known: resizeMethods}
	}
}

func dimExpr(value int, symbol string) string {
	if value == 0 {
		return symbol
	}
	return strconv.Itoa(value)
}
