package main

import (
	"os"

	"github.com/yourusername/osrs-mcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
