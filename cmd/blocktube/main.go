// blocktube filters blocked content out of video platform page data.
package main

import (
	"os"

	"github.com/kushwahaPrashant24/blocktube/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
