package main

import (
	"os"

	lorecmder "github.com/parchmentco/lore/cmd/lore"
)

func main() {
	cmd := lorecmder.NewLoreCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
