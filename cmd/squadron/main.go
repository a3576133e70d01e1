package main

import (
	"github.com/joho/godotenv"

	"squadron/internal/cli/cmd"
)

func main() {
	// Optional .env next to the binary; real deployments set SQUADRON_*
	// through the service manager.
	_ = godotenv.Load()

	cmd.Execute()
}
