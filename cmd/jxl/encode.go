package main

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/spf13/cobra"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	jxlcoder "github.com/akorchagin/jxl-coder"
	"github.com/akorchagin/jxl-coder/core"
	coderrors "github.com/akorchagin/jxl-coder/errors"
)

var (
	encodeOut     string
	encodeQuality int
)

var encodeCmd = &cobra.Command{
	Use:   "encode <input>",
	Short: "Encode an image file to JPEG XL",
	Long: `Encode reads png, jpeg, gif, bmp, tiff, or webp input and writes a
JPEG XL file.  Quality 100 selects lossless encoding.`,
	Args: cobra.ExactArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeOut, "out", "o", "", "output path (default: input with .jxl)")
	encodeCmd.Flags().IntVarP(&encodeQuality, "quality", "q", 0, "quality 1-100 (0 = default, 100 = lossless)")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := encodeOut
	if output == "" {
		if dot := strings.LastIndex(input, "."); dot > 0 {
			output = input[:dot] + ".jxl"
		} else {
			output = input + ".jxl"
		}
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	src, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	img, err := core.FromImage(src, input)
	if err != nil {
		return fmt.Errorf("convert %s: %w", input, err)
	}
	img.Quality = encodeQuality

	c, shutdown, err := newCoder()
	if err != nil {
		return err
	}
	defer shutdown()

	exc := coderrors.NewSink()
	if err := jxlcoder.EncodeFile(cmd.Context(), c, img, output, exc); err != nil {
		return fmt.Errorf("encode %s: %w", input, err)
	}

	fmt.Printf("%s (%s, %dx%d) -> %s\n", input, format,
		img.Columns, img.Rows, output)
	return nil
}
