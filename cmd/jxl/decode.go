package main

import (
	"fmt"
	"image/png"
	"os"
	"strings"

	"github.com/spf13/cobra"

	jxlcoder "github.com/akorchagin/jxl-coder"
	"github.com/akorchagin/jxl-coder/core"
	coderrors "github.com/akorchagin/jxl-coder/errors"
)

var decodeOut string

var decodeCmd = &cobra.Command{
	Use:   "decode <input.jxl>",
	Short: "Decode a JPEG XL file to PNG",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeOut, "out", "o", "", "output path (default: input with .png)")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := decodeOut
	if output == "" {
		output = strings.TrimSuffix(input, ".jxl") + ".png"
	}

	c, shutdown, err := newCoder()
	if err != nil {
		return err
	}
	defer shutdown()

	exc := coderrors.NewSink()
	img, err := jxlcoder.DecodeFile(cmd.Context(), c, input, exc)
	if err != nil {
		return fmt.Errorf("decode %s: %w", input, err)
	}

	std, err := img.ToImage()
	if err != nil {
		return fmt.Errorf("decode %s: %w", input, err)
	}
	std = core.Normalize(std, img.Orientation)

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := png.Encode(f, std); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", output, err)
	}

	fmt.Printf("%s -> %s (%dx%d)\n", input, output,
		std.Bounds().Dx(), std.Bounds().Dy())
	return nil
}
