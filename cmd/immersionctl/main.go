package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"immersionfacile/cmd/immersionctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
