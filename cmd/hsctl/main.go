package main

import (
	"fmt"
	"os"

	"homeshare/internal/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hsctl:", err)
		os.Exit(1)
	}
}
