package main

import (
	"os"

	"github.com/DewclawArchery/teri-gateway/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
