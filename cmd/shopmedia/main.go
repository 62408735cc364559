package main

import (
	"github.com/wovenhouse/shopmedia/cmd/shopmedia/commands"
	"github.com/wovenhouse/shopmedia/internal/logging"
)

func main() {
	// Bootstrap logger; commands reconfigure it once config is loaded.
	logging.Setup("info", "text")

	commands.Execute()
}
