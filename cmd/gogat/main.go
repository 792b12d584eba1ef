package main

import (
	"os"

	"github.com/dshills/gogat/internal/cli"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cli.Version = version
	cli.BuildTime = buildTime
	os.Exit(cli.Execute())
}
