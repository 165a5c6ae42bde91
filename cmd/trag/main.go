package main

import (
	"fmt"
	"os"

	"transcript-rag/cmd/trag/cmd"
	"transcript-rag/internal/config"
)

func main() {
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration warning: %v\n", err)
	}

	cmd.Execute()
}
