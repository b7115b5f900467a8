package main

import (
	"os"

	"github.com/catalogsmith/catalogsmith/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
