package main

import (
	"os"

	"github.com/cityevents/eventline/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
