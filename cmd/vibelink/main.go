package main

import (
	"os"

	"github.com/vibelink/vibelink/cmd/vibelink/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
