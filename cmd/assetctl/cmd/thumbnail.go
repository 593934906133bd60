package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/staticbay/assetpipe/thumbnail"
)

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail <name>",
	Short: "Materialize a thumbnail of a static image",
	Long: `Derive a resized image from a static asset and print the stored URL.

Examples:
  assetctl thumbnail img/hero.jpg --width 320
  assetctl thumbnail img/avatar.png --width 64 --height 64 --method crop`,
	Args: cobra.ExactArgs(1),
	RunE: runThumbnail,
}

func init() {
	rootCmd.AddCommand(thumbnailCmd)

	thumbnailCmd.Flags().Int("width", 0, "target width in pixels")
	thumbnailCmd.Flags().Int("height", 0, "target height in pixels")
	thumbnailCmd.Flags().String("method", thumbnail.Proportional, "resize method (proportional, resize, crop)")
	thumbnailCmd.Flags().Duration("timeout", time.Minute, "materialization timeout")
}

func runThumbnail(cmd *cobra.Command, args []string) error {
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

	thumb, err := p.Thumbnails.Thumbnail(args[0], width, height, method)
	if err != nil {
		return err
	}

	url, err := thumb.URL(ctx)
	if err != nil {
		return err
	}
	w, h, err := thumb.Size(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%dx%d)\n", url, w, h)
	return nil
}
