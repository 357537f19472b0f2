package main

import (
	"os"

	"github.com/wonny/scout/cmd/prospects/commands"
)

// main is the entry point for the prospects CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/prospects [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
