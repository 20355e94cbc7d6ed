package main

import (
	"os"

	"github.com/dpshade/pocket-madlibs/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
