package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	jxlcoder "github.com/akorchagin/jxl-coder"
	"github.com/akorchagin/jxl-coder/core"
	coderrors "github.com/akorchagin/jxl-coder/errors"
)

var infoFull bool

var infoCmd = &cobra.Command{
	Use:   "info <input.jxl>",
	Short: "Print stream metadata without decoding pixels",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoFull, "full", false, "decode pixel data and print the content signature")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	input := args[0]

	c, shutdown, err := newCoder()
	if err != nil {
		return err
	}
	defer shutdown()

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	defer f.Close()

	exc := coderrors.NewSink()
	img, err := c.Decode(cmd.Context(), f, core.DecodeOptions{
		Filename: input,
		Ping:     !infoFull,
	}, exc)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	caps := jxlcoder.Capabilities()
	fmt.Printf("  Format:      %s (%s)\n", caps.Format, caps.Description)
	fmt.Printf("  Geometry:    %dx%d\n", img.Columns, img.Rows)
	fmt.Printf("  Depth:       %d bits\n", img.Depth)
	fmt.Printf("  Alpha:       %v\n", img.HasAlpha)
	fmt.Printf("  Orientation: %s\n", img.Orientation)
	if icc := img.Profile("icc"); icc != nil {
		fmt.Printf("  ICC profile: %d bytes\n", len(icc))
	}
	if infoFull {
		fmt.Printf("  Signature:   %016x\n", img.Signature())
	}
	return nil
}
