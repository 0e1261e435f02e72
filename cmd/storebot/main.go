package main

import (
	"os"

	"github.com/villagegaming/storebot/cmd/storebot/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
