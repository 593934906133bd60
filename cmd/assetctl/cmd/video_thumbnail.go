package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/staticbay/assetpipe/video"
)

var videoThumbnailCmd = &cobra.Command{
	Use:   "video-thumbnail <name>",
	Short: "Materialize a derivative of a static video",
	Long: `Extract a still frame (or re-encode a clip) from a static video and
print the stored path.

Examples:
  assetctl video-thumbnail clips/intro.mp4                  # Frame at a quarter of the duration
  assetctl video-thumbnail clips/intro.mp4 --position 10    # Frame at 10s
  assetctl video-thumbnail clips/intro.mp4 --format webm    # Re-encode`,
	Args: cobra.ExactArgs(1),
	RunE: runVideoThumbnail,
}

func init() {
	rootCmd.AddCommand(videoThumbnailCmd)

	videoThumbnailCmd.Flags().String("format", "jpeg", "output format (jpeg, png, mp4, webm)")
	videoThumbnailCmd.Flags().Int("position", -1, "capture offset in seconds (default: duration/4)")
	videoThumbnailCmd.Flags().Int("width", 0, "target width in pixels")
	videoThumbnailCmd.Flags().Int("height", 0, "target height in pixels")
	videoThumbnailCmd.Flags().String("method", video.MethodResize, "resize method (resize, proportional, crop, pad)")
	videoThumbnailCmd.Flags().Duration("timeout", 10*time.Minute, "processing timeout")
}

func runVideoThumbnail(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	position, _ := cmd.Flags().GetInt("position")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	method, _ := cmd.Flags().GetString("method")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	p, err := setupPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.Close(ctx)

	path, err := p.Videos.ThumbnailPath(ctx, args[0], video.Request{
		Format:   format,
		Position: position,
		Width:    width,
		Height:   height,
		Method:   method,
	})
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}
