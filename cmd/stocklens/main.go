package main

import (
	"os"

	"github.com/wonny/stocklens/cmd/stocklens/commands"
)

// main is the entry point for the StockLens CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
