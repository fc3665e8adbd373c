// Command jxl decodes, encodes, and inspects JPEG XL files through the
// libvips codec backend.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
