package main

import (
	"os"

	"github.com/ofir/maccabi-ics/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
