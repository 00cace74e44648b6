package main

import (
	"os"

	"github.com/wonny/muhtasib/backend/cmd/muhtasib/commands"
)

// main is the entry point for the muhtasib CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/muhtasib [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
