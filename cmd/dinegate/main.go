package main

import (
	"github.com/joho/godotenv"

	"github.com/example/dinegate/cmd"
)

func main() {
	// Missing .env is fine; the environment itself is authoritative.
	_ = godotenv.Load()
	cmd.Execute()
}
