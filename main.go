package main

import (
	"github.com/diskforge/diskforge/cmd"

	// Register every format adapter via its package init() side effect.
	_ "github.com/diskforge/diskforge/adapters"
)

func main() {
	cmd.Execute()
}
