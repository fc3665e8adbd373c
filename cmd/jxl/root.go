package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/akorchagin/jxl-coder/adapters/vipscodec"
	"github.com/akorchagin/jxl-coder/coder"
	"github.com/akorchagin/jxl-coder/config"
	"github.com/akorchagin/jxl-coder/hooks"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "jxl",
	Short: "JPEG XL decode/encode tool",
	Long: `jxl converts images to and from JPEG XL using the libvips codec
backend.  Decoding honors the stream's orientation and writes upright
PNG output; encoding accepts png, jpeg, gif, bmp, tiff, and webp input.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"jxl %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// newCoder builds a Coder over a fresh libvips backend.  The returned
// shutdown function must run before process exit.
func newCoder() (*coder.Coder, func(), error) {
	cfg := config.Default()
	if verbose {
		cfg.LogLevel = "debug"
	}

	codec := vipscodec.New(vipscodec.Config{Quality: cfg.DefaultQuality})
	c, err := coder.New(codec, cfg)
	if err != nil {
		codec.Shutdown()
		return nil, nil, err
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: hooks.Level(cfg.LogLevel),
	})
	c.SetLogger(hooks.NewSlogLogger(slog.New(handler)))
	return c, codec.Shutdown, nil
}
