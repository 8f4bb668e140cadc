package main

import (
	"os"

	"ecolearn-challenge-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
