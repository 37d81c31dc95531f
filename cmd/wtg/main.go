// Command wtg is the Wang tile texture synthesizer's command-line
// front end: --tiles, --index, and --palette subcommands over the
// headerless raw image format, plus --serve for an HTTP preview.
package main

import (
	"os"

	"github.com/wangtiles/wangtiles/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
