package main

import (
	"os"

	"github.com/leftmike/nquery/cmd"
)

func main() {
	if cmd.Execute() != nil {
		os.Exit(1)
	}
}
