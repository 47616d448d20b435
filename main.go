package main

import (
	"os"

	"github.com/vkozyrev/ragdex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
